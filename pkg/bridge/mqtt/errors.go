package mqtt

import (
	"errors"
	"fmt"
)

// ErrTimeout indicates the broker didn't acknowledge in time.
var ErrTimeout = errors.New("mqtt timeout")

// ErrInvalidChannel indicates a command topic without a valid channel.
type ErrInvalidChannel struct {
	Topic string
}

// Error implements error.
func (e *ErrInvalidChannel) Error() string {
	return fmt.Sprintf("invalid channel in topic: %q", e.Topic)
}
