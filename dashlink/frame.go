package dashlink

import (
	"encoding/binary"
	"errors"
)

// Magic identifies the frame class on the wire. It is transmitted as its
// four ASCII bytes, first byte at the lowest address.
type Magic [4]byte

var (
	// MagicTelemetry tags the high frequency telemetry frames.
	MagicTelemetry = Magic{'M', 'S', 'G', 'F'}
	// MagicImage tags the low frequency image frames.
	MagicImage = Magic{'I', 'M', 'G', 'F'}
)

func (m Magic) String() string { return string(m[:]) }

// HeaderSize is the fixed size of the frame header in bytes.
const HeaderSize = 20

var (
	// ErrInvalidMagic is returned when a magic tag is not exactly 4 bytes.
	ErrInvalidMagic = errors.New("magic must be exactly 4 bytes")
	// ErrTruncatedHeader is returned when a header buffer is not exactly
	// HeaderSize bytes.
	ErrTruncatedHeader = errors.New("truncated header")
)

// ParseMagic converts a raw tag to a Magic, preserving byte order.
func ParseMagic(b []byte) (Magic, error) {
	var m Magic
	if len(b) != len(m) {
		return m, ErrInvalidMagic
	}
	copy(m[:], b)
	return m, nil
}

// Header is the fixed preamble of every frame. Type and Flags are reserved
// extension fields and are zero in the current contract; Checksum is zero
// unless a checksum strategy is enabled on the sender.
type Header struct {
	Magic    Magic
	Type     uint8
	Flags    uint8
	Reserved uint16
	Length   uint32
	Checksum uint32
	Sequence uint32
}

// EncodeHeader serializes a header to its 20 byte little-endian wire form.
func EncodeHeader(h Header) []byte {
	buf := make([]byte, HeaderSize)
	copy(buf[0:4], h.Magic[:])
	buf[4] = h.Type
	buf[5] = h.Flags
	binary.LittleEndian.PutUint16(buf[6:8], h.Reserved)
	binary.LittleEndian.PutUint32(buf[8:12], h.Length)
	binary.LittleEndian.PutUint32(buf[12:16], h.Checksum)
	binary.LittleEndian.PutUint32(buf[16:20], h.Sequence)
	return buf
}

// DecodeHeader parses a 20 byte header buffer. The buffer must contain
// exactly one header.
func DecodeHeader(b []byte) (Header, error) {
	var h Header
	if len(b) != HeaderSize {
		return h, ErrTruncatedHeader
	}
	copy(h.Magic[:], b[0:4])
	h.Type = b[4]
	h.Flags = b[5]
	h.Reserved = binary.LittleEndian.Uint16(b[6:8])
	h.Length = binary.LittleEndian.Uint32(b[8:12])
	h.Checksum = binary.LittleEndian.Uint32(b[12:16])
	h.Sequence = binary.LittleEndian.Uint32(b[16:20])
	return h, nil
}
