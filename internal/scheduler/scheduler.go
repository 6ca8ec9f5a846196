// Package scheduler drives the transmission loop: telemetry at a fixed
// rate on one shared transport, with image refreshes interleaved on their
// own independent deadlines.
package scheduler

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"

	"dashhost/dashlink"
)

// TelemetrySource supplies one full snapshot per tick.
type TelemetrySource interface {
	Snapshot() dashlink.Snapshot
}

// ImageSource returns image bytes ready for the wire.
type ImageSource interface {
	Fetch() ([]byte, error)
}

// SnapshotObserver lets an image source accumulate telemetry between
// fetches; the remote chart source grows its point series this way.
type SnapshotObserver interface {
	Observe(dashlink.Snapshot)
}

// FrameSender is the outgoing half of the link as the loop sees it.
type FrameSender interface {
	SendTelemetry(dashlink.Snapshot) error
	SendImage([]byte) error
}

// Feed pairs an image source with its refresh interval. A zero or
// negative interval disables the feed: its deadline never comes due.
type Feed struct {
	Name     string
	Source   ImageSource
	Interval time.Duration

	deadline time.Time
}

// Scheduler owns the loop timing. All sends happen on the calling
// goroutine; there is nothing to lock.
type Scheduler struct {
	sender FrameSender
	source TelemetrySource
	period time.Duration
	feeds  []*Feed

	// Injectable clock for tests.
	now   func() time.Time
	sleep func(time.Duration)
}

// New returns a Scheduler sending telemetry at rateHz with the given
// image feeds.
func New(sender FrameSender, source TelemetrySource, rateHz float64, feeds ...*Feed) *Scheduler {
	return &Scheduler{
		sender: sender,
		source: source,
		period: time.Duration(float64(time.Second) / rateHz),
		feeds:  feeds,
		now:    time.Now,
		sleep:  time.Sleep,
	}
}

// Run drives the loop until ctx is cancelled or the transport fails. Each
// tick sends one snapshot, services whichever image deadlines have come
// due, then sleeps out the remainder of the period. A slow tick shortens
// or skips the next sleep; missed ticks are never made up, so the link
// never sees a burst of catch-up frames.
//
// Transport errors are fatal and returned; a failed image fetch or an
// oversized image is logged and retried naturally when its deadline next
// recurs.
func (s *Scheduler) Run(ctx context.Context) error {
	start := s.now()
	for _, f := range s.feeds {
		if f.Interval > 0 {
			f.deadline = start.Add(f.Interval)
		}
	}
	log.Infof("sending telemetry every %v (%d image feeds)", s.period, len(s.feeds))

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		tickStart := s.now()
		snap := s.source.Snapshot()
		if err := s.sender.SendTelemetry(snap); err != nil {
			return err
		}
		for _, f := range s.feeds {
			if o, ok := f.Source.(SnapshotObserver); ok {
				o.Observe(snap)
			}
		}

		for _, f := range s.feeds {
			if f.Interval <= 0 || tickStart.Before(f.deadline) {
				continue
			}
			if err := s.refresh(f); err != nil {
				return err
			}
			f.deadline = s.now().Add(f.Interval)
		}

		if d := s.period - s.now().Sub(tickStart); d > 0 {
			s.sleep(d)
		}
	}
}

// refresh fetches and sends one image. Only transport failures escape.
func (s *Scheduler) refresh(f *Feed) error {
	data, err := f.Source.Fetch()
	if err != nil {
		log.Warnf("%s image fetch failed: %v", f.Name, err)
		return nil
	}
	if err := s.sender.SendImage(data); err != nil {
		if errors.Is(err, dashlink.ErrPayloadTooLarge) {
			log.Errorf("%s image rejected: %v", f.Name, err)
			return nil
		}
		return err
	}
	log.Debugf("%s image sent (%d bytes)", f.Name, len(data))
	return nil
}
