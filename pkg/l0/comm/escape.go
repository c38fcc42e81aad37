package comm

// Reserved wire values.
const (
	// ESC makes the following byte literal.
	ESC byte = 0x11
	// DELIM terminates a frame.
	DELIM byte = '+'
)

// NeedsEscape checks if b must be prefixed with ESC inside a frame.
func NeedsEscape(b byte) bool {
	return b == ESC || b == DELIM
}

// AppendEscaped appends b to dst, escaped if needed.
func AppendEscaped(dst []byte, b byte) []byte {
	if NeedsEscape(b) {
		dst = append(dst, ESC)
	}
	return append(dst, b)
}

// EscapedLen returns the number of wire bytes needed for data.
func EscapedLen(data []byte) int {
	n := len(data)
	for _, b := range data {
		if NeedsEscape(b) {
			n++
		}
	}
	return n
}

// escapeWriter writes escaped bytes into a ByteSink and keeps the
// running checksum over the unescaped bytes. The first error is sticky.
type escapeWriter struct {
	sink   ByteSink
	chksum byte
	err    error
	// escaped is set when the last byte on the wire is a pending ESC.
	escaped bool
}

func (w *escapeWriter) put(b byte) {
	w.chksum ^= b
	if w.err != nil {
		return
	}
	if NeedsEscape(b) {
		if w.err = w.sink.WriteByte(ESC); w.err != nil {
			return
		}
		w.escaped = true
	}
	if w.err = w.sink.WriteByte(b); w.err == nil {
		w.escaped = false
	}
}

// delim terminates the frame. After a failed write, the partial frame
// is still terminated so the receiver drops it and resynchronizes.
func (w *escapeWriter) delim() {
	if w.err == nil {
		w.err = w.sink.WriteByte(DELIM)
		return
	}
	if w.escaped {
		w.sink.WriteByte(DELIM)
	}
	w.sink.WriteByte(DELIM)
}

// sliceSink is a ByteSink appending to a slice.
type sliceSink []byte

func (s *sliceSink) WriteByte(b byte) error {
	*s = append(*s, b)
	return nil
}
