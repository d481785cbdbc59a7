//go:build linux

package transport

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// SerialPort is a raw-mode tty carrying SBP frames, the usual physical
// attachment of a settings bus endpoint.
type SerialPort struct {
	fd   int
	path string
}

var baudRates = map[int]uint32{
	9600:    unix.B9600,
	19200:   unix.B19200,
	38400:   unix.B38400,
	57600:   unix.B57600,
	115200:  unix.B115200,
	230400:  unix.B230400,
	460800:  unix.B460800,
	921600:  unix.B921600,
	1000000: unix.B1000000,
}

// OpenSerial opens a serial device in raw 8N1 mode at the given baud
// rate. Pass the result to New to run a settings client over it.
func OpenSerial(path string, baud int) (*SerialPort, error) {
	speed, ok := baudRates[baud]
	if !ok {
		return nil, fmt.Errorf("unsupported baud rate %d", baud)
	}

	fd, err := unix.Open(path, unix.O_RDWR|unix.O_NOCTTY|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}

	tio, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("reading termios for %s: %w", path, err)
	}

	// Raw mode, 8N1, no flow control.
	tio.Iflag &^= unix.IGNBRK | unix.BRKINT | unix.PARMRK | unix.ISTRIP |
		unix.INLCR | unix.IGNCR | unix.ICRNL | unix.IXON
	tio.Oflag &^= unix.OPOST
	tio.Lflag &^= unix.ECHO | unix.ECHONL | unix.ICANON | unix.ISIG | unix.IEXTEN
	tio.Cflag &^= unix.CSIZE | unix.PARENB | unix.CSTOPB | unix.CRTSCTS
	tio.Cflag |= unix.CS8 | unix.CREAD | unix.CLOCAL
	tio.Cc[unix.VMIN] = 1
	tio.Cc[unix.VTIME] = 0
	tio.Ispeed = speed
	tio.Ospeed = speed
	tio.Cflag &^= unix.CBAUD
	tio.Cflag |= speed

	if err := unix.IoctlSetTermios(fd, unix.TCSETS, tio); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("configuring %s: %w", path, err)
	}

	return &SerialPort{fd: fd, path: path}, nil
}

// Read implements io.Reader.
func (p *SerialPort) Read(buf []byte) (int, error) {
	n, err := unix.Read(p.fd, buf)
	if err != nil {
		return 0, fmt.Errorf("reading %s: %w", p.path, err)
	}
	return n, nil
}

// Write implements io.Writer.
func (p *SerialPort) Write(buf []byte) (int, error) {
	n, err := unix.Write(p.fd, buf)
	if err != nil {
		return n, fmt.Errorf("writing %s: %w", p.path, err)
	}
	return n, nil
}

// Close implements io.Closer.
func (p *SerialPort) Close() error {
	return unix.Close(p.fd)
}
