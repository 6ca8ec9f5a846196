package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"dashhost/dashlink"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) sleep(d time.Duration) { c.t = c.t.Add(d) }

type fakeSender struct {
	telemetry []dashlink.Snapshot
	images    [][]byte
	imageErr  error
	failAt    int // telemetry send index that fails, 0 = never
	cancel    context.CancelFunc
	limit     int
}

func (s *fakeSender) SendTelemetry(snap dashlink.Snapshot) error {
	s.telemetry = append(s.telemetry, snap)
	if s.failAt > 0 && len(s.telemetry) == s.failAt {
		return &dashlink.TransportError{Err: errors.New("broken pipe")}
	}
	if s.limit > 0 && len(s.telemetry) >= s.limit && s.cancel != nil {
		s.cancel()
	}
	return nil
}

func (s *fakeSender) SendImage(data []byte) error {
	if s.imageErr != nil {
		return s.imageErr
	}
	s.images = append(s.images, data)
	return nil
}

type fakeSource struct {
	speed int16
}

func (s *fakeSource) Snapshot() dashlink.Snapshot {
	s.speed++
	return dashlink.Snapshot{SpeedKMH: s.speed}
}

type fakeImages struct {
	fetches int
	data    []byte
	err     error
}

func (f *fakeImages) Fetch() ([]byte, error) {
	f.fetches++
	return f.data, f.err
}

func newTestScheduler(sender FrameSender, rateHz float64, feeds ...*Feed) (*Scheduler, *fakeClock) {
	s := New(sender, &fakeSource{}, rateHz, feeds...)
	clk := &fakeClock{t: time.Unix(0, 0)}
	s.now = clk.now
	s.sleep = clk.sleep
	return s, clk
}

func TestTelemetryPacing(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	sender := &fakeSender{cancel: cancel, limit: 8}

	feed := &Feed{Name: "local", Source: &fakeImages{data: []byte("png")}, Interval: 250 * time.Millisecond}
	off := &fakeImages{data: []byte("never")}

	// 10 Hz, so ticks land every 100ms of fake time.
	s, _ := newTestScheduler(sender, 10, feed, &Feed{Name: "off", Source: off, Interval: 0})
	assert.NoError(t, s.Run(ctx))

	assert.Len(t, sender.telemetry, 8)
	// Snapshots come from the source in order, one per tick.
	assert.EqualValues(t, 1, sender.telemetry[0].SpeedKMH)
	assert.EqualValues(t, 8, sender.telemetry[7].SpeedKMH)

	// Image deadlines at 250ms and 550ms fall on the ticks at 300ms and
	// 600ms; the disabled feed never fires.
	assert.Len(t, sender.images, 2)
	assert.Equal(t, 0, off.fetches)
}

func TestTransportErrorIsFatal(t *testing.T) {
	sender := &fakeSender{failAt: 3}
	s, _ := newTestScheduler(sender, 24)

	err := s.Run(context.Background())
	var te *dashlink.TransportError
	assert.True(t, errors.As(err, &te))
	assert.Len(t, sender.telemetry, 3)
}

func TestImageFetchFailureIsRetried(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	sender := &fakeSender{cancel: cancel, limit: 10}
	src := &fakeImages{err: errors.New("no such file")}
	feed := &Feed{Name: "local", Source: src, Interval: 200 * time.Millisecond}

	s, _ := newTestScheduler(sender, 10, feed)
	assert.NoError(t, s.Run(ctx))

	// Deadlines kept recurring even though every fetch failed.
	assert.True(t, src.fetches >= 2)
	assert.Empty(t, sender.images)
}

func TestOversizedImageIsNotFatal(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	sender := &fakeSender{cancel: cancel, limit: 6, imageErr: dashlink.ErrPayloadTooLarge}
	feed := &Feed{Name: "local", Source: &fakeImages{data: []byte("big")}, Interval: 100 * time.Millisecond}

	s, _ := newTestScheduler(sender, 10, feed)
	assert.NoError(t, s.Run(ctx))
	assert.Len(t, sender.telemetry, 6)
}

func TestObserverSeesEveryTick(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	sender := &fakeSender{cancel: cancel, limit: 5}
	src := &observingImages{}
	feed := &Feed{Name: "remote", Source: src, Interval: time.Hour}

	s, _ := newTestScheduler(sender, 10, feed)
	assert.NoError(t, s.Run(ctx))
	assert.Equal(t, 5, src.observed)
	assert.Equal(t, 0, src.fetches)
}

type observingImages struct {
	fakeImages
	observed int
}

func (o *observingImages) Observe(dashlink.Snapshot) { o.observed++ }
