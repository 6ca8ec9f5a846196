package dashlink

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Telemetry command bytes. The payload is a tagged union: a snapshot
// carries the full field set, a reboot directive carries nothing.
const (
	CmdSnapshot byte = 0x00
	CmdReboot   byte = 0x01
)

const (
	// SnapshotPayloadSize is the encoded size of the snapshot variant:
	// the command byte plus eleven fixed width fields (2+2+4+4+2+2+2+2+2+2+2).
	SnapshotPayloadSize = 27
	// RebootPayloadSize is the encoded size of the reboot variant.
	RebootPayloadSize = 1

	minutesPerDay = 24 * 60
)

var (
	// ErrTruncatedPayload is returned when a payload buffer is shorter
	// than its command requires.
	ErrTruncatedPayload = errors.New("truncated payload")
	// ErrInvalidTimeFormat is returned for clock strings that are not
	// "HH:MM" within 00:00..23:59.
	ErrInvalidTimeFormat = errors.New("time must be HH:MM within 00:00..23:59")
)

// Snapshot is a point-in-time record of vehicle operating values. Field
// types match the wire widths, so out-of-range inputs wrap the way fixed
// width wire fields do instead of failing.
type Snapshot struct {
	SpeedKMH      int16  // km/h
	EngineRPM     int16  // rpm
	OdoM          int32  // meters
	TripOdoM      int32  // meters
	OutsideTempDC int16  // tenths of a degree C
	InsideTempDC  int16  // tenths of a degree C
	BatteryMV     int16  // millivolts
	ClockMin      uint16 // minutes since midnight
	TripMin       uint16 // trip elapsed minutes
	FuelDL        uint16 // tenths of a liter remaining
	FuelCapDL     uint16 // tenths of a liter capacity
}

// EncodeSnapshot serializes the snapshot variant: the command byte
// followed by the eleven fields, little-endian, 27 bytes total. The clock
// field wraps at midnight.
func EncodeSnapshot(s Snapshot) []byte {
	v := s
	v.ClockMin %= minutesPerDay
	var buf bytes.Buffer
	buf.Grow(SnapshotPayloadSize)
	buf.WriteByte(CmdSnapshot)
	// Writing a fixed width struct to a bytes.Buffer cannot fail.
	binary.Write(&buf, binary.LittleEndian, &v)
	return buf.Bytes()
}

// EncodeReboot serializes the reboot directive: just its command byte.
func EncodeReboot() []byte {
	return []byte{CmdReboot}
}

// Telemetry is one decoded telemetry payload. Snapshot is nil for the
// reboot directive.
type Telemetry struct {
	Command  byte
	Snapshot *Snapshot
}

// DecodeTelemetry parses a telemetry payload for the receiving side.
func DecodeTelemetry(payload []byte) (*Telemetry, error) {
	if len(payload) < RebootPayloadSize {
		return nil, ErrTruncatedPayload
	}
	switch payload[0] {
	case CmdSnapshot:
		if len(payload) != SnapshotPayloadSize {
			return nil, ErrTruncatedPayload
		}
		var s Snapshot
		if err := binary.Read(bytes.NewReader(payload[1:]), binary.LittleEndian, &s); err != nil {
			return nil, err
		}
		return &Telemetry{Command: CmdSnapshot, Snapshot: &s}, nil
	case CmdReboot:
		if len(payload) != RebootPayloadSize {
			return nil, fmt.Errorf("reboot payload has %d trailing bytes", len(payload)-1)
		}
		return &Telemetry{Command: CmdReboot}, nil
	}
	return nil, fmt.Errorf("unknown telemetry command 0x%02x", payload[0])
}

// ParseClock converts an "HH:MM" wall clock string to minutes since
// midnight.
func ParseClock(s string) (uint16, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return 0, ErrInvalidTimeFormat
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, ErrInvalidTimeFormat
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, ErrInvalidTimeFormat
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, ErrInvalidTimeFormat
	}
	return uint16(h*60 + m), nil
}
