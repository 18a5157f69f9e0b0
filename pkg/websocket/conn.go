package websocket

import (
	"bufio"
	"crypto/rand"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"
)

// Close status codes.
const (
	StatusNormal        = 1000
	StatusGoingAway     = 1001
	StatusProtocolError = 1002
	StatusTooLarge      = 1009
)

// DefaultReadLimit bounds incoming messages unless Options.ReadLimit is set.
const DefaultReadLimit = 1 << 20

// closeTimeout bounds the write of the close frame.
const closeTimeout = time.Second

// Conn is an established connection. Reads must come from one goroutine;
// writes may come from any.
type Conn struct {
	conn   net.Conn
	br     *bufio.Reader
	client bool
	limit  int64

	wmu    sync.Mutex
	closed bool
}

func newConn(c net.Conn, br *bufio.Reader, client bool, limit int64) *Conn {
	if limit <= 0 {
		limit = DefaultReadLimit
	}
	if br == nil {
		br = bufio.NewReader(c)
	}
	return &Conn{conn: c, br: br, client: client, limit: limit}
}

// ReadMessage returns the next text or binary message.
func (c *Conn) ReadMessage() (Opcode, []byte, error) {
	var (
		op      Opcode
		msg     []byte
		started bool
	)
	for {
		f, err := readFrame(c.br, c.limit)
		if err == nil && !c.client && !f.masked {
			err = fmt.Errorf("%w: unmasked client frame", ErrProtocol)
		}
		if err != nil {
			return 0, nil, c.fail(err)
		}

		switch f.op {
		case OpPing:
			if err := c.writeFrame(frame{fin: true, op: OpPong, payload: f.payload}); err != nil {
				return 0, nil, err
			}
			continue
		case OpPong:
			continue
		case OpClose:
			_ = c.Close(StatusNormal, "")
			return 0, nil, ErrClosed
		case OpContinuation:
			if !started {
				return 0, nil, c.fail(fmt.Errorf("%w: continuation without a message", ErrProtocol))
			}
			msg = append(msg, f.payload...)
		default:
			if started {
				return 0, nil, c.fail(fmt.Errorf("%w: interleaved message", ErrProtocol))
			}
			op, msg, started = f.op, f.payload, true
		}

		if int64(len(msg)) > c.limit {
			return 0, nil, c.fail(ErrMessageTooLarge)
		}
		if f.fin {
			return op, msg, nil
		}
	}
}

// fail closes the connection with the status matching err.
func (c *Conn) fail(err error) error {
	switch {
	case errors.Is(err, ErrProtocol):
		_ = c.Close(StatusProtocolError, "")
	case errors.Is(err, ErrMessageTooLarge):
		_ = c.Close(StatusTooLarge, "")
	}
	return err
}

// ReadJSON reads the next message into v.
func (c *Conn) ReadJSON(v any) error {
	_, data, err := c.ReadMessage()
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// WriteMessage sends one unfragmented message.
func (c *Conn) WriteMessage(op Opcode, data []byte) error {
	if op.control() && len(data) > maxControlPayload {
		return fmt.Errorf("%w: %s payload of %d bytes", ErrProtocol, op, len(data))
	}
	return c.writeFrame(frame{fin: true, op: op, payload: data})
}

// WriteJSON sends v as a text message.
func (c *Conn) WriteJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.WriteMessage(OpText, data)
}

func (c *Conn) writeFrame(f frame) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	if c.closed {
		return ErrClosed
	}
	return c.writeLocked(f)
}

func (c *Conn) writeLocked(f frame) error {
	if c.client {
		f.masked = true
		if _, err := rand.Read(f.mask[:]); err != nil {
			return err
		}
	}
	return writeFrame(c.conn, f)
}

// Close sends a close frame with code and reason and closes the
// connection. Closing twice is a no-op.
func (c *Conn) Close(code int, reason string) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true

	payload := binary.BigEndian.AppendUint16(nil, uint16(code))
	if len(reason) > maxControlPayload-2 {
		reason = reason[:maxControlPayload-2]
	}
	payload = append(payload, reason...)

	_ = c.conn.SetWriteDeadline(time.Now().Add(closeTimeout))
	_ = c.writeLocked(frame{fin: true, op: OpClose, payload: payload})
	return c.conn.Close()
}

// SetReadDeadline sets the deadline for the next reads.
func (c *Conn) SetReadDeadline(t time.Time) error {
	return c.conn.SetReadDeadline(t)
}

// RemoteAddr returns the address of the peer.
func (c *Conn) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}
