package imagesource

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"dashhost/dashlink"
)

// maxPoints caps the series sent to the renderer; the oldest samples fall
// off once a trip outgrows it.
const maxPoints = 512

type point struct {
	T int64   `json:"t"` // unix seconds
	V float64 `json:"v"`
}

// Remote fetches a rendered chart image from an HTTP endpoint. Each fetch
// POSTs the point series accumulated since the source was created and
// expects encoded image bytes back.
type Remote struct {
	URL    string
	Client *http.Client

	points []point
}

// NewRemote returns a Remote with the given request timeout. A zero
// timeout leaves the client without one.
func NewRemote(url string, timeout time.Duration) *Remote {
	return &Remote{
		URL:    url,
		Client: &http.Client{Timeout: timeout},
	}
}

// Observe appends one speed sample to the series sent with the next
// fetch. The scheduler calls this once per telemetry tick.
func (r *Remote) Observe(snap dashlink.Snapshot) {
	r.points = append(r.points, point{
		T: time.Now().Unix(),
		V: float64(snap.SpeedKMH),
	})
	if len(r.points) > maxPoints {
		r.points = r.points[len(r.points)-maxPoints:]
	}
}

// Fetch posts the accumulated series and returns the rendered image.
func (r *Remote) Fetch() ([]byte, error) {
	body, err := json.Marshal(r.points)
	if err != nil {
		return nil, err
	}
	client := r.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Post(r.URL, "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("invalid HTTP response code %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
