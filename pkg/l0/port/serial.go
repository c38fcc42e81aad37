package port

import (
	"strings"

	"github.com/albenik/go-serial/v2"
	"github.com/albenik/go-serial/v2/enumerator"
	"github.com/golang/glog"
)

// DefaultBaudRate is the default serial baud rate.
const DefaultBaudRate = 115200

// serialReadTimeout bounds a single read in milliseconds so Close is
// noticed by the reader goroutine.
const serialReadTimeout = 100

// SerialPortInfo describes a serial port found on the system.
type SerialPortInfo = enumerator.PortDetails

// ListSerial lists serial ports with USB details.
func ListSerial() ([]*SerialPortInfo, error) {
	return enumerator.GetDetailedPortsList()
}

// DetectSerial finds the first USB serial port matching vid and pid.
// Hexadecimal ids are compared case-insensitively.
func DetectSerial(vid, pid string) (string, error) {
	ports, err := ListSerial()
	if err != nil {
		return "", err
	}
	if p := matchUSB(ports, vid, pid); p != nil {
		return p.Name, nil
	}
	return "", ErrNoPort
}

func matchUSB(ports []*SerialPortInfo, vid, pid string) *SerialPortInfo {
	for _, p := range ports {
		if p.IsUSB && strings.EqualFold(p.VID, vid) && strings.EqualFold(p.PID, pid) {
			return p
		}
	}
	return nil
}

// OpenSerial opens a serial port in 8N1 mode.
func OpenSerial(name string, baud int) (*Stream, error) {
	if baud <= 0 {
		baud = DefaultBaudRate
	}
	p, err := serial.Open(name,
		serial.WithBaudrate(baud),
		serial.WithDataBits(8),
		serial.WithParity(serial.NoParity),
		serial.WithStopBits(serial.OneStopBit),
		serial.WithReadTimeout(serialReadTimeout),
	)
	if err != nil {
		return nil, err
	}
	glog.Infof("serial %s opened at %d baud", name, baud)
	return NewStream(&serialReader{Port: p}, DefaultQueueSize), nil
}

// serialReader turns the zero-length reads on timeout into retries.
type serialReader struct {
	*serial.Port
}

func (r *serialReader) Read(p []byte) (int, error) {
	for {
		n, err := r.Port.Read(p)
		if n > 0 || err != nil {
			return n, err
		}
	}
}
