//go:build !linux

package transport

import (
	"errors"
	"io"
)

// SerialPort is only implemented on Linux.
type SerialPort struct {
	io.ReadWriteCloser
}

// OpenSerial reports that serial support is unavailable on this
// platform.
func OpenSerial(path string, baud int) (*SerialPort, error) {
	return nil, errors.New("serial transport is only supported on linux")
}
