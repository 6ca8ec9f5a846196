// Package simulator is a stand-in telemetry source for bench runs. Values
// drift with the phase of the clock instead of a RNG, the way the demo rig
// drives them, so two runs started together produce the same traffic.
package simulator

import (
	"time"

	"dashhost/dashlink"
)

const (
	maxSpeedKMH = 132
	maxRPM      = 8000
)

// Source evolves a plausible vehicle state and emits one snapshot per
// poll. It implements the scheduler's TelemetrySource.
type Source struct {
	start time.Time
	now   func() time.Time

	speed int
	rpm   int
	odo   int
	trip  int
}

// New returns a Source with the standard bench seed values.
func New() *Source {
	return newWithClock(time.Now)
}

func newWithClock(now func() time.Time) *Source {
	return &Source{
		start: now(),
		now:   now,
		speed: 80,
		rpm:   1800,
		odo:   123000,
		trip:  12340,
	}
}

// Snapshot advances the simulation one step and returns the current state.
func (s *Source) Snapshot() dashlink.Snapshot {
	now := s.now()
	sec := now.UnixNano() / int64(time.Second)

	if sec*2%7 == 0 {
		s.speed++
	}
	if sec*3%11 == 0 {
		s.speed--
	}
	s.speed = clamp(s.speed, 0, maxSpeedKMH)

	if sec*5%13 == 0 {
		s.rpm += 50
	}
	if sec*7%17 == 0 {
		s.rpm -= 50
	}
	s.rpm = clamp(s.rpm, 0, maxRPM)

	// Coarse accumulation, good enough for a demo stream.
	s.odo += s.speed
	s.trip += s.speed

	return dashlink.Snapshot{
		SpeedKMH:      int16(s.speed),
		EngineRPM:     int16(s.rpm),
		OdoM:          int32(s.odo),
		TripOdoM:      int32(s.trip),
		OutsideTempDC: 50,  // 5.0 C
		InsideTempDC:  220, // 22.0 C
		BatteryMV:     12150,
		ClockMin:      uint16(now.Hour()*60 + now.Minute()),
		TripMin:       uint16(now.Sub(s.start) / time.Minute),
		FuelDL:        360, // 36.0 l
		FuelCapDL:     520, // 52.0 l
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
