// Package port provides byte links the L0 protocol runs on.
//
// A Port never blocks on read: received bytes are queued by a background
// goroutine and polled via Available/ReadByte.
package port

import (
	"errors"
	"io"

	"github.com/robotalks/robolink/pkg/l0/comm"
)

// Errors
var (
	ErrClosed = errors.New("port closed")
	ErrNoPort = errors.New("no matching serial port found")
)

// Port is a closable byte link.
type Port interface {
	comm.ByteReadWriter
	io.Closer
}
