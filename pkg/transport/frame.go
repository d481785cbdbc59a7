// Package transport carries settings traffic over a byte stream in SBP
// frames and adapts the stream to the settings client's host interface.
package transport

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Preamble opens every SBP frame.
const Preamble = 0x55

// frameOverhead is preamble + type(2) + sender(2) + len(1) + crc(2).
const frameOverhead = 8

// MaxPayload is the largest payload a frame can carry.
const MaxPayload = 255

// Frame is one SBP message unit.
// Layout: [0x55][type u16 LE][sender u16 LE][len u8][payload][crc u16 LE],
// with the CRC computed over type, sender, len and payload.
type Frame struct {
	Type    uint16
	Sender  uint16
	Payload []byte
}

// ErrCRC is returned by ReadFrame when a frame's checksum does not
// match; the reader resynchronizes on the next preamble.
var ErrCRC = errors.New("frame CRC mismatch")

// AppendFrame appends the framed message to dst.
func AppendFrame(dst []byte, f Frame) ([]byte, error) {
	if len(f.Payload) > MaxPayload {
		return nil, fmt.Errorf("payload too long: %d > %d", len(f.Payload), MaxPayload)
	}

	var hdr [5]byte
	binary.LittleEndian.PutUint16(hdr[0:2], f.Type)
	binary.LittleEndian.PutUint16(hdr[2:4], f.Sender)
	hdr[4] = byte(len(f.Payload))

	dst = append(dst, Preamble)
	dst = append(dst, hdr[:]...)
	dst = append(dst, f.Payload...)

	crc := crc16(0, hdr[:])
	crc = crc16(crc, f.Payload)
	var sum [2]byte
	binary.LittleEndian.PutUint16(sum[:], crc)
	return append(dst, sum[:]...), nil
}

// ReadFrame reads the next frame from r, scanning forward to the next
// preamble byte first so a stream corrupted mid-frame recovers at the
// following message. A checksum failure is reported as ErrCRC with the
// stream left positioned after the bad frame.
func ReadFrame(r *bufio.Reader) (Frame, error) {
	for {
		b, err := r.ReadByte()
		if err != nil {
			return Frame{}, err
		}
		if b == Preamble {
			break
		}
	}

	var hdr [5]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return Frame{}, err
	}

	n := int(hdr[4])
	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		return Frame{}, err
	}

	var sum [2]byte
	if _, err := io.ReadFull(r, sum[:]); err != nil {
		return Frame{}, err
	}

	crc := crc16(0, hdr[:])
	crc = crc16(crc, payload)
	if crc != binary.LittleEndian.Uint16(sum[:]) {
		return Frame{}, ErrCRC
	}

	return Frame{
		Type:    binary.LittleEndian.Uint16(hdr[0:2]),
		Sender:  binary.LittleEndian.Uint16(hdr[2:4]),
		Payload: payload,
	}, nil
}
