package comm

import (
	"errors"
	"strings"
	"sync/atomic"
)

var (
	// ErrPayloadTooLarge indicates the payload can't be sent in one frame.
	ErrPayloadTooLarge = errors.New("payload too large")
	// ErrConcurrentRead indicates ReadPackets was entered while another
	// invocation is still running.
	ErrConcurrentRead = errors.New("concurrent read")
	// ErrNoData is returned by a ByteSource when ReadByte is called while
	// nothing is available.
	ErrNoData = errors.New("no data available")
)

// ErrorFlags is a bitmap of failure categories.
type ErrorFlags uint8

// Failure categories.
const (
	// FlagTooSmall indicates a frame shorter than the minimum header size.
	FlagTooSmall ErrorFlags = 1 << iota
	// FlagHeaderChecksum indicates the size field checksum mismatched.
	FlagHeaderChecksum
	// FlagSizeMismatch indicates the declared payload size disagrees with
	// the number of bytes received.
	FlagSizeMismatch
	// FlagChecksum indicates the frame checksum is not zero.
	FlagChecksum
	// FlagUnregisteredChannel indicates a valid frame with no consumer.
	FlagUnregisteredChannel
	// FlagBufferFull indicates the receive buffer overflowed before a
	// delimiter was seen.
	FlagBufferFull
	// FlagOutOfMemory indicates a log message was dropped because no
	// scratch buffer was available.
	FlagOutOfMemory
)

// NumErrorCategories is the number of distinct failure categories.
const NumErrorCategories = 7

var flagNames = [NumErrorCategories]string{
	"TOO_SMALL",
	"HEADER_CHECKSUM",
	"SIZE_MISMATCH",
	"CHECKSUM",
	"UNREGISTEREDCHANNEL",
	"BUFFERFULL",
	"OUT_OF_MEMORY",
}

// Has checks if all bits in f are set.
func (e ErrorFlags) Has(f ErrorFlags) bool {
	return e&f == f
}

// String implements fmt.Stringer.
func (e ErrorFlags) String() string {
	if e == 0 {
		return "OK"
	}
	var names []string
	for n, name := range flagNames {
		if e&(1<<uint(n)) != 0 {
			names = append(names, name)
		}
	}
	return strings.Join(names, "|")
}

// ErrorAccumulator is a sticky bitmap of ErrorFlags.
// Flags are OR-accumulated until drained.
type ErrorAccumulator struct {
	flags uint32
}

// Raise sets the flags.
func (a *ErrorAccumulator) Raise(f ErrorFlags) {
	for {
		old := atomic.LoadUint32(&a.flags)
		if atomic.CompareAndSwapUint32(&a.flags, old, old|uint32(f)) {
			return
		}
	}
}

// Peek returns current flags without clearing them.
func (a *ErrorAccumulator) Peek() ErrorFlags {
	return ErrorFlags(atomic.LoadUint32(&a.flags))
}

// Drain returns current flags and clears them.
func (a *ErrorAccumulator) Drain() ErrorFlags {
	return ErrorFlags(atomic.SwapUint32(&a.flags, 0))
}
