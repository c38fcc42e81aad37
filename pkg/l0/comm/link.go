package comm

import (
	"sync/atomic"

	"github.com/golang/glog"
)

// ByteReadWriter is the byte link the protocol runs on.
type ByteReadWriter interface {
	ByteSource
	ByteSink
}

// Link is one endpoint of the L0 protocol over a byte link.
type Link struct {
	registry Registry
	errors   ErrorAccumulator
	stats    Stats
	parser   *Parser
	writer   *Writer
	logger   *Logger
	src      ByteSource
	reading  int32
}

// Option configures a Link.
type Option func(*Link)

// WithBufferSize sets the receive buffer capacity.
func WithBufferSize(size int) Option {
	return func(l *Link) {
		l.parser = NewParser(size, &l.registry, &l.errors)
		l.parser.Stats = &l.stats
	}
}

// WithMaxPayload rejects outgoing payloads larger than n bytes.
func WithMaxPayload(n int) Option {
	return func(l *Link) {
		l.writer.MaxPayload = n
	}
}

// WithLogBuffers sets the number of scratch buffers for Log.
func WithLogBuffers(n int) Option {
	return func(l *Link) {
		l.logger = NewLogger(l.writer, &l.errors, n)
	}
}

// NewLink creates a Link over rw.
func NewLink(rw ByteReadWriter, opts ...Option) *Link {
	l := &Link{src: rw}
	l.writer = NewWriter(rw)
	l.writer.Stats = &l.stats
	l.parser = NewParser(DefaultBufferSize, &l.registry, &l.errors)
	l.parser.Stats = &l.stats
	l.logger = NewLogger(l.writer, &l.errors, DefaultLogBuffers)
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Init clears all channel handlers.
func (l *Link) Init() {
	l.registry.Reset()
}

// SetCallback sets the handler of a channel, replacing the existing one.
func (l *Link) SetCallback(ch Channel, h PacketHandler) {
	l.registry.Set(ch, h)
}

// SetCallbackFunc sets a func as the handler of a channel.
func (l *Link) SetCallbackFunc(ch Channel, fn func(Channel, []byte)) {
	l.registry.Set(ch, HandlePacketFunc(fn))
}

// ClearCallback removes the handler of a channel.
func (l *Link) ClearCallback(ch Channel) {
	l.registry.Clear(ch)
}

// WritePacket sends payload on channel ch.
func (l *Link) WritePacket(ch Channel, payload []byte) error {
	if glog.V(4) {
		glog.Infof("TX ch=%d len=%d", ch.Masked(), len(payload))
	}
	return l.writer.WritePacket(ch, payload)
}

// Log sends a formatted message on DebugChannel.
func (l *Link) Log(level Level, format string, args ...interface{}) error {
	return l.logger.Log(level, format, args...)
}

// ReadPackets processes all currently available input and dispatches
// valid packets to the handlers synchronously.
func (l *Link) ReadPackets() error {
	if !atomic.CompareAndSwapInt32(&l.reading, 0, 1) {
		return ErrConcurrentRead
	}
	defer atomic.StoreInt32(&l.reading, 0)
	return l.parser.ReadPackets(l.src)
}

// GetErrors returns accumulated error flags and clears them.
func (l *Link) GetErrors() ErrorFlags {
	return l.errors.Drain()
}

// Stats returns the traffic counters.
func (l *Link) Stats() *Stats {
	return &l.stats
}

// BufferSize returns the receive buffer capacity.
func (l *Link) BufferSize() int {
	return l.parser.Capacity()
}
