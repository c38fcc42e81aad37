package port

import (
	"sync"
	"sync/atomic"

	"github.com/robotalks/robolink/pkg/l0/comm"
)

type byteQueue struct {
	lock sync.Mutex
	data []byte
}

func (q *byteQueue) push(p ...byte) {
	q.lock.Lock()
	q.data = append(q.data, p...)
	q.lock.Unlock()
}

func (q *byteQueue) pop() (byte, bool) {
	q.lock.Lock()
	defer q.lock.Unlock()
	if len(q.data) == 0 {
		return 0, false
	}
	b := q.data[0]
	q.data = q.data[1:]
	return b, true
}

func (q *byteQueue) len() int {
	q.lock.Lock()
	defer q.lock.Unlock()
	return len(q.data)
}

func (q *byteQueue) take() []byte {
	q.lock.Lock()
	defer q.lock.Unlock()
	data := q.data
	q.data = nil
	return data
}

// Buffer is an in-memory Port.
// Input is supplied by Feed, output is collected for Bytes.
type Buffer struct {
	in, out *byteQueue
	closed  int32
}

// NewBuffer creates a Buffer.
func NewBuffer() *Buffer {
	return &Buffer{in: &byteQueue{}, out: &byteQueue{}}
}

// Pipe creates two connected Buffers, bytes written to one are
// received by the other.
func Pipe() (*Buffer, *Buffer) {
	a, b := &byteQueue{}, &byteQueue{}
	return &Buffer{in: a, out: b}, &Buffer{in: b, out: a}
}

// Feed appends received bytes.
func (b *Buffer) Feed(p ...byte) {
	b.in.push(p...)
}

// Bytes returns and clears the bytes written so far.
func (b *Buffer) Bytes() []byte {
	return b.out.take()
}

// Available implements comm.ByteSource.
func (b *Buffer) Available() bool {
	return atomic.LoadInt32(&b.closed) == 0 && b.in.len() > 0
}

// ReadByte implements comm.ByteSource.
func (b *Buffer) ReadByte() (byte, error) {
	if atomic.LoadInt32(&b.closed) != 0 {
		return 0, ErrClosed
	}
	if v, ok := b.in.pop(); ok {
		return v, nil
	}
	return 0, comm.ErrNoData
}

// WriteByte implements comm.ByteSink.
func (b *Buffer) WriteByte(v byte) error {
	if atomic.LoadInt32(&b.closed) != 0 {
		return ErrClosed
	}
	b.out.push(v)
	return nil
}

// Close implements io.Closer.
func (b *Buffer) Close() error {
	atomic.StoreInt32(&b.closed, 1)
	return nil
}
