package comm

import (
	"fmt"
)

// Level is the severity of a log message.
type Level byte

// Log levels.
const (
	LevelFinest Level = iota
	LevelFiner
	LevelFine
	LevelConfig
	LevelInfo
	LevelWarning
	LevelSevere
)

var levelNames = []string{"FINEST", "FINER", "FINE", "CONFIG", "INFO", "WARNING", "SEVERE"}

// String implements fmt.Stringer.
func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return fmt.Sprintf("LEVEL(%d)", byte(l))
}

// Log message limits.
const (
	// DebugChannel is reserved for log messages.
	DebugChannel Channel = 0
	// MaxLogText is the maximum length of log text, longer text is truncated.
	MaxLogText = 256
	// DefaultLogBuffers is the default number of scratch buffers.
	DefaultLogBuffers = 4
)

// Logger encodes log messages as packets on DebugChannel.
// Payload is one level byte followed by the formatted text.
type Logger struct {
	Writer *Writer
	Errors *ErrorAccumulator

	scratch chan []byte
}

// NewLogger creates a Logger with n scratch buffers.
func NewLogger(w *Writer, errs *ErrorAccumulator, n int) *Logger {
	if n <= 0 {
		n = DefaultLogBuffers
	}
	l := &Logger{Writer: w, Errors: errs, scratch: make(chan []byte, n)}
	for i := 0; i < n; i++ {
		l.scratch <- make([]byte, 0, MaxLogText+1)
	}
	return l
}

// Log formats and sends a message.
// If all scratch buffers are in use, the message is dropped and
// FlagOutOfMemory is raised. The returned error is from the sink only.
func (l *Logger) Log(level Level, format string, args ...interface{}) error {
	var buf []byte
	select {
	case buf = <-l.scratch:
	default:
		if l.Errors != nil {
			l.Errors.Raise(FlagOutOfMemory)
		}
		l.Writer.Stats.failed(FlagOutOfMemory)
		return nil
	}
	defer func() { l.scratch <- buf[:0] }()

	b := boundedBuffer{buf: append(buf[:0], byte(level))}
	fmt.Fprintf(&b, format, args...)
	buf = b.buf
	return l.Writer.WritePacket(DebugChannel, buf)
}

// boundedBuffer discards bytes exceeding its capacity.
type boundedBuffer struct {
	buf []byte
}

func (b *boundedBuffer) Write(p []byte) (int, error) {
	if room := cap(b.buf) - len(b.buf); room < len(p) {
		b.buf = append(b.buf, p[:room]...)
	} else {
		b.buf = append(b.buf, p...)
	}
	return len(p), nil
}
