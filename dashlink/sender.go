package dashlink

import (
	"errors"
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"
)

// MaxPayloadSize is the hard cap on a single frame payload. Oversized
// payloads are rejected, never truncated.
const MaxPayloadSize = 200 * 1024

// ErrPayloadTooLarge is returned when a payload exceeds MaxPayloadSize.
var ErrPayloadTooLarge = errors.New("payload exceeds maximum frame size")

// TransportError wraps an I/O failure on the underlying link.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport write: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Sender owns the outgoing half of the link: the transport handle and the
// frame sequence counter. It must be driven from a single goroutine.
type Sender struct {
	w   io.Writer
	cs  Checksum
	seq uint32
}

// NewSender returns a Sender writing to w. The sequence counter starts at
// 1. A nil checksum strategy disables the checksum field.
func NewSender(w io.Writer, cs Checksum) *Sender {
	if cs == nil {
		cs = NoChecksum()
	}
	return &Sender{w: w, cs: cs, seq: 1}
}

// Send writes one frame: the 20 byte header followed by the payload. The
// two writes carry no boundary meaning; the receiver sees a contiguous
// stream. A failed write still consumes the sequence number, so a receiver
// tracking sequences sees a gap rather than a duplicate.
func (s *Sender) Send(magic Magic, payload []byte) error {
	if len(payload) > MaxPayloadSize {
		return ErrPayloadTooLarge
	}
	hdr := EncodeHeader(Header{
		Magic:    magic,
		Length:   uint32(len(payload)),
		Checksum: s.cs.Sum(payload),
		Sequence: s.seq,
	})
	log.Debugf("%s=> seq=%d len=%d", magic, s.seq, len(payload))
	s.seq++
	if _, err := s.w.Write(hdr); err != nil {
		return &TransportError{Err: err}
	}
	if _, err := s.w.Write(payload); err != nil {
		return &TransportError{Err: err}
	}
	return nil
}

// SendTelemetry sends one telemetry snapshot frame.
func (s *Sender) SendTelemetry(snap Snapshot) error {
	return s.Send(MagicTelemetry, EncodeSnapshot(snap))
}

// SendReboot sends the reboot directive to the display.
func (s *Sender) SendReboot() error {
	return s.Send(MagicTelemetry, EncodeReboot())
}

// SendImage sends an image payload, either raw PNG bytes or a raw-pixel
// container from EncodeR565.
func (s *Sender) SendImage(data []byte) error {
	return s.Send(MagicImage, data)
}
