package dashlink

import (
	"bufio"
	"hash/crc32"
	"io"

	log "github.com/sirupsen/logrus"
)

// Frame is one decoded header-plus-payload unit read back from a stream.
type Frame struct {
	Header  Header
	Payload []byte
}

// DecoderStats counts what a Decoder has seen on its stream.
type DecoderStats struct {
	Frames       uint32
	Resyncs      uint32
	BytesSkipped uint64
	BadLength    uint32
	BadChecksum  uint32
}

// Decoder reads frames back out of a contiguous byte stream. It is the
// receiving counterpart of Sender: frame boundaries are recovered from the
// header alone, and on garbage the decoder resynchronizes by sliding one
// byte at a time until a known magic lines up.
type Decoder struct {
	r          *bufio.Reader
	maxLen     map[Magic]uint32
	requireCRC bool
	stats      DecoderStats
}

// NewDecoder returns a Decoder reading from r. Both frame classes default
// to the MaxPayloadSize length cap.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{
		r: bufio.NewReader(r),
		maxLen: map[Magic]uint32{
			MagicTelemetry: MaxPayloadSize,
			MagicImage:     MaxPayloadSize,
		},
	}
}

// SetMaxPayload tightens the payload length cap for one frame class.
// Frames declaring a larger length are dropped.
func (d *Decoder) SetMaxPayload(m Magic, n uint32) {
	d.maxLen[m] = n
}

// RequireChecksum makes the decoder drop frames whose checksum field is
// zero or does not match the CRC32 of the payload.
func (d *Decoder) RequireChecksum(require bool) {
	d.requireCRC = require
}

// Stats returns the stream counters so far.
func (d *Decoder) Stats() DecoderStats { return d.stats }

// Next returns the next well formed frame. Frames that fail the length
// cap or the checksum requirement are dropped and counted, not returned.
// A clean end of stream is io.EOF; a stream cut mid-header or mid-payload
// is ErrTruncatedHeader or ErrTruncatedPayload.
func (d *Decoder) Next() (*Frame, error) {
	for {
		hdr, err := d.syncHeader()
		if err != nil {
			return nil, err
		}
		if hdr.Length > d.maxLen[hdr.Magic] {
			// The declared length cannot be trusted, so do not skip by
			// it; resync from the byte after the magic.
			log.Warnf("dropping %s frame with length %d over cap", hdr.Magic, hdr.Length)
			d.stats.BadLength++
			continue
		}
		payload := make([]byte, hdr.Length)
		if _, err := io.ReadFull(d.r, payload); err != nil {
			return nil, ErrTruncatedPayload
		}
		if d.requireCRC {
			if hdr.Checksum == 0 || crc32.ChecksumIEEE(payload) != hdr.Checksum {
				log.Warnf("dropping %s frame seq=%d with bad checksum", hdr.Magic, hdr.Sequence)
				d.stats.BadChecksum++
				continue
			}
		}
		d.stats.Frames++
		return &Frame{Header: hdr, Payload: payload}, nil
	}
}

// syncHeader reads until a header with a known magic lines up at the
// window start, sliding one byte at a time over garbage.
func (d *Decoder) syncHeader() (Header, error) {
	buf := make([]byte, HeaderSize)
	if _, err := io.ReadFull(d.r, buf); err != nil {
		if err == io.EOF {
			return Header{}, io.EOF
		}
		return Header{}, ErrTruncatedHeader
	}
	resynced := false
	for {
		hdr, err := DecodeHeader(buf)
		if err == nil && d.knownMagic(hdr.Magic) {
			if resynced {
				d.stats.Resyncs++
			}
			return hdr, nil
		}
		if !resynced {
			log.Warnf("lost sync at %q, scanning for next frame", buf[:4])
			resynced = true
		}
		copy(buf, buf[1:])
		b, err := d.r.ReadByte()
		if err != nil {
			// Ran off the end while scanning garbage; there is no
			// recoverable frame left.
			return Header{}, io.EOF
		}
		buf[HeaderSize-1] = b
		d.stats.BytesSkipped++
	}
}

func (d *Decoder) knownMagic(m Magic) bool {
	_, ok := d.maxLen[m]
	return ok
}
