package comm

import (
	"io"
)

// MaxChannels is the number of logical channels.
const MaxChannels = 16

// Frame layout sizes.
const (
	// HeaderSize is size of sizeLow, sizeHigh and header byte.
	HeaderSize = 3
	// MinFrameSize is the minimum number of unescaped bytes before DELIM.
	MinFrameSize = HeaderSize + 1
	// MaxPayloadSize is the largest size the size field can carry.
	MaxPayloadSize = 0xffff
)

// Channel is the 4-bit logical channel id.
type Channel byte

// Masked returns the channel aliased into [0, 15].
func (c Channel) Masked() Channel {
	return c & 0x0f
}

// FoldChecksum compresses an 8-bit checksum into 4 bits by
// XOR-ing its nibbles.
func FoldChecksum(chksum byte) byte {
	return (chksum >> 4) ^ (chksum & 0x0f)
}

// HeaderByte composes the header byte for a payload size and channel.
func HeaderByte(size uint16, ch Channel) byte {
	return FoldChecksum(byte(size)^byte(size>>8))<<4 | byte(ch.Masked())
}

// Packet is a channel payload.
type Packet struct {
	Channel Channel
	Payload []byte
}

// Bytes returns the encoded frame including the delimiter.
func (p *Packet) Bytes() []byte {
	return AppendFrame(nil, p.Channel, p.Payload)
}

// WriteTo writes the encoded frame.
func (p *Packet) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(p.Bytes())
	return int64(n), err
}

// AppendFrame appends the wire encoding of a payload on a channel to dst.
// The payload size is truncated to 16 bits by the size field; callers are
// responsible for keeping it within MaxPayloadSize.
func AppendFrame(dst []byte, ch Channel, payload []byte) []byte {
	sink := sliceSink(dst)
	encodeFrame(&sink, ch, payload)
	return sink
}

func encodeFrame(sink ByteSink, ch Channel, payload []byte) error {
	size := uint16(len(payload))
	w := &escapeWriter{sink: sink}
	w.put(byte(size))
	w.put(byte(size >> 8))
	w.put(FoldChecksum(w.chksum)<<4 | byte(ch.Masked()))
	for _, b := range payload {
		w.put(b)
	}
	w.put(w.chksum)
	w.delim()
	return w.err
}
