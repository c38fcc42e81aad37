package comm

import "sync"

// ByteSink accepts bytes to be transmitted.
// WriteByte may block while the transmit buffer is full but must not drop.
type ByteSink interface {
	WriteByte(byte) error
}

// Flusher is implemented by sinks which buffer written bytes.
type Flusher interface {
	Flush() error
}

// Writer sends packets as frames to a ByteSink.
// Concurrent calls are serialized so frames never interleave.
type Writer struct {
	Sink ByteSink
	// MaxPayload rejects larger payloads if not zero.
	// Payloads over MaxPayloadSize are always rejected as the size
	// field can not carry them.
	MaxPayload int
	Stats      *Stats

	lock sync.Mutex
}

// NewWriter creates a Writer.
func NewWriter(sink ByteSink) *Writer {
	return &Writer{Sink: sink}
}

// WritePacket sends payload on channel ch.
// The channel is masked to 4 bits. Payloads larger than MaxPayloadSize,
// or MaxPayload if set, are rejected with ErrPayloadTooLarge before any
// byte is written. On a sink error the partial frame is terminated and
// the first error is returned.
func (w *Writer) WritePacket(ch Channel, payload []byte) error {
	if len(payload) > MaxPayloadSize || (w.MaxPayload > 0 && len(payload) > w.MaxPayload) {
		return ErrPayloadTooLarge
	}
	w.lock.Lock()
	defer w.lock.Unlock()
	err := encodeFrame(w.Sink, ch, payload)
	if f, ok := w.Sink.(Flusher); ok {
		if ferr := f.Flush(); err == nil {
			err = ferr
		}
	}
	if err != nil {
		return err
	}
	w.Stats.sent(ch)
	return nil
}
