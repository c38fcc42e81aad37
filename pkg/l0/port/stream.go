package port

import (
	"bufio"
	"io"
	"sync"

	"github.com/golang/glog"

	"github.com/robotalks/robolink/pkg/l0/comm"
)

// DefaultQueueSize is the default number of received bytes held before
// the reader goroutine stops reading from the stream.
const DefaultQueueSize = 4096

// Stream adapts a blocking io.ReadWriter into a Port.
type Stream struct {
	rw     io.ReadWriter
	writer *bufio.Writer
	queue  chan byte

	closeCh   chan struct{}
	closeOnce sync.Once
	doneCh    chan struct{}
	lock      sync.Mutex
	err       error
}

// NewStream creates a Stream and starts reading from rw.
func NewStream(rw io.ReadWriter, queueSize int) *Stream {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	s := &Stream{
		rw:      rw,
		writer:  bufio.NewWriter(rw),
		queue:   make(chan byte, queueSize),
		closeCh: make(chan struct{}),
		doneCh:  make(chan struct{}),
	}
	go s.readLoop()
	return s
}

func (s *Stream) readLoop() {
	defer close(s.doneCh)
	buf := make([]byte, 256)
	for {
		n, err := s.rw.Read(buf)
		for _, b := range buf[:n] {
			select {
			case s.queue <- b:
			case <-s.closeCh:
				return
			}
		}
		if err != nil {
			glog.V(2).Infof("stream read stopped: %v", err)
			s.lock.Lock()
			s.err = err
			s.lock.Unlock()
			return
		}
	}
}

// Available implements comm.ByteSource.
func (s *Stream) Available() bool {
	return len(s.queue) > 0
}

// ReadByte implements comm.ByteSource.
func (s *Stream) ReadByte() (byte, error) {
	select {
	case b := <-s.queue:
		return b, nil
	default:
		return 0, comm.ErrNoData
	}
}

// WriteByte implements comm.ByteSink.
func (s *Stream) WriteByte(b byte) error {
	return s.writer.WriteByte(b)
}

// Flush writes buffered bytes to the stream.
func (s *Stream) Flush() error {
	return s.writer.Flush()
}

// Err returns the error which stopped reading, nil while still reading.
// io.EOF is returned when the stream ends.
func (s *Stream) Err() error {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.err
}

// Done is closed when the reader goroutine exits.
func (s *Stream) Done() <-chan struct{} {
	return s.doneCh
}

// Close implements io.Closer.
// The underlying stream is closed if it's an io.Closer.
func (s *Stream) Close() (err error) {
	s.closeOnce.Do(func() {
		close(s.closeCh)
		if closer, ok := s.rw.(io.Closer); ok {
			err = closer.Close()
		}
	})
	return
}
