package websocket

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Opcode is the frame type.
type Opcode uint8

const (
	OpContinuation Opcode = 0x0
	OpText         Opcode = 0x1
	OpBinary       Opcode = 0x2
	OpClose        Opcode = 0x8
	OpPing         Opcode = 0x9
	OpPong         Opcode = 0xA
)

func (o Opcode) valid() bool {
	switch o {
	case OpContinuation, OpText, OpBinary, OpClose, OpPing, OpPong:
		return true
	}
	return false
}

func (o Opcode) control() bool {
	return o >= OpClose
}

func (o Opcode) String() string {
	switch o {
	case OpContinuation:
		return "continuation"
	case OpText:
		return "text"
	case OpBinary:
		return "binary"
	case OpClose:
		return "close"
	case OpPing:
		return "ping"
	case OpPong:
		return "pong"
	}
	return fmt.Sprintf("opcode(%#x)", uint8(o))
}

// maxControlPayload is the largest payload a control frame may carry.
const maxControlPayload = 125

var (
	ErrProtocol        = errors.New("websocket: protocol error")
	ErrMessageTooLarge = errors.New("websocket: message too large")
	ErrClosed          = errors.New("websocket: connection closed")
)

type frame struct {
	fin     bool
	op      Opcode
	masked  bool
	mask    [4]byte
	payload []byte
}

// readFrame reads one frame, rejecting payloads larger than limit.
func readFrame(r *bufio.Reader, limit int64) (frame, error) {
	var hdr [2]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return frame{}, err
	}

	f := frame{
		fin:    hdr[0]&0x80 != 0,
		op:     Opcode(hdr[0] & 0x0f),
		masked: hdr[1]&0x80 != 0,
	}
	if hdr[0]&0x70 != 0 {
		return f, fmt.Errorf("%w: reserved bits set", ErrProtocol)
	}
	if !f.op.valid() {
		return f, fmt.Errorf("%w: %s", ErrProtocol, f.op)
	}

	n := uint64(hdr[1] & 0x7f)
	switch n {
	case 126:
		var ext [2]byte
		if _, err := io.ReadFull(r, ext[:]); err != nil {
			return f, err
		}
		n = uint64(binary.BigEndian.Uint16(ext[:]))
	case 127:
		var ext [8]byte
		if _, err := io.ReadFull(r, ext[:]); err != nil {
			return f, err
		}
		n = binary.BigEndian.Uint64(ext[:])
	}

	if f.op.control() && (n > maxControlPayload || !f.fin) {
		return f, fmt.Errorf("%w: invalid %s frame", ErrProtocol, f.op)
	}
	if n > uint64(limit) {
		return f, ErrMessageTooLarge
	}

	if f.masked {
		if _, err := io.ReadFull(r, f.mask[:]); err != nil {
			return f, err
		}
	}
	f.payload = make([]byte, n)
	if _, err := io.ReadFull(r, f.payload); err != nil {
		return f, err
	}
	if f.masked {
		maskBytes(f.mask, f.payload)
	}
	return f, nil
}

// writeFrame encodes f in a single write.
func writeFrame(w io.Writer, f frame) error {
	n := len(f.payload)
	buf := make([]byte, 0, 14+n)

	b0 := byte(f.op)
	if f.fin {
		b0 |= 0x80
	}
	buf = append(buf, b0)

	var b1 byte
	if f.masked {
		b1 = 0x80
	}
	switch {
	case n <= 125:
		buf = append(buf, b1|byte(n))
	case n <= 0xffff:
		buf = append(buf, b1|126)
		buf = binary.BigEndian.AppendUint16(buf, uint16(n))
	default:
		buf = append(buf, b1|127)
		buf = binary.BigEndian.AppendUint64(buf, uint64(n))
	}

	if f.masked {
		buf = append(buf, f.mask[:]...)
	}
	start := len(buf)
	buf = append(buf, f.payload...)
	if f.masked {
		maskBytes(f.mask, buf[start:])
	}

	_, err := w.Write(buf)
	return err
}

func maskBytes(key [4]byte, b []byte) {
	for i := range b {
		b[i] ^= key[i%4]
	}
}
