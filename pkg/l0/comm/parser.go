package comm

// DefaultBufferSize is the default receive buffer capacity.
const DefaultBufferSize = 512

// ByteSource provides received bytes without blocking.
type ByteSource interface {
	// Available checks if ReadByte can return a byte without blocking.
	Available() bool
	// ReadByte returns the next byte, only valid when Available is true.
	ReadByte() (byte, error)
}

// Parser reassembles frames from received bytes.
// The receive state persists across calls so frames may arrive in
// arbitrarily small pieces. A Parser must only be used from one
// goroutine at a time.
type Parser struct {
	Registry *Registry
	Errors   *ErrorAccumulator
	Stats    *Stats

	buf    []byte
	bufLen int
	chksum byte
	esc    bool
}

// NewParser creates a Parser with a receive buffer of size bytes.
func NewParser(size int, registry *Registry, errs *ErrorAccumulator) *Parser {
	if size < MinFrameSize+1 {
		size = DefaultBufferSize
	}
	return &Parser{
		Registry: registry,
		Errors:   errs,
		buf:      make([]byte, size),
	}
}

// Capacity returns the size of the receive buffer.
func (p *Parser) Capacity() int {
	return len(p.buf)
}

// Pending returns the number of bytes accumulated for the current frame.
func (p *Parser) Pending() int {
	return p.bufLen
}

// Reset discards the partial frame.
func (p *Parser) Reset() {
	p.bufLen, p.chksum, p.esc = 0, 0, false
}

// ReadPackets consumes all bytes currently available from src.
// It returns as soon as nothing is available.
func (p *Parser) ReadPackets(src ByteSource) error {
	for src.Available() {
		b, err := src.ReadByte()
		if err != nil {
			return err
		}
		p.Parse(b)
	}
	return nil
}

// Parse consumes one byte from the wire.
func (p *Parser) Parse(b byte) {
	switch {
	case p.esc:
		p.esc = false
	case b == ESC:
		p.esc = true
		return
	case b == DELIM:
		// empty frames are ignored.
		if p.bufLen > 0 {
			p.validate()
		}
		p.Reset()
		return
	}

	p.buf[p.bufLen] = b
	p.chksum ^= b
	if p.bufLen++; p.bufLen == len(p.buf) {
		p.bufLen, p.chksum = 0, 0
		p.raise(FlagBufferFull)
	}
}

func (p *Parser) validate() {
	if p.bufLen < MinFrameSize {
		p.raise(FlagTooSmall)
		return
	}
	sizeLow, sizeHigh, header := p.buf[0], p.buf[1], p.buf[2]
	size := int(sizeLow) | int(sizeHigh)<<8
	if header>>4 != FoldChecksum(sizeLow^sizeHigh) {
		p.raise(FlagHeaderChecksum)
		return
	}
	if size != p.bufLen-MinFrameSize {
		p.raise(FlagSizeMismatch)
		return
	}
	if p.chksum != 0 {
		p.raise(FlagChecksum)
		return
	}
	ch := Channel(header & 0x0f)
	var h PacketHandler
	if p.Registry != nil {
		h = p.Registry.Get(ch)
	}
	if h == nil {
		p.raise(FlagUnregisteredChannel)
		p.Stats.undelivered(ch)
		return
	}
	p.Stats.received(ch)
	h.HandlePacket(ch, p.buf[HeaderSize:HeaderSize+size:HeaderSize+size])
}

func (p *Parser) raise(f ErrorFlags) {
	if p.Errors != nil {
		p.Errors.Raise(f)
	}
	p.Stats.failed(f)
}
