package transport

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"

	"github.com/hashicorp/go-hclog"

	"github.com/swift-nav/libsettings/pkg/settings"
)

// Conn frames settings messages over a byte stream and dispatches
// inbound frames to registered callbacks. It implements settings.Host.
//
// A single goroutine reads the stream; callbacks run on it, so a slow
// callback stalls dispatch but never loses ordering.
type Conn struct {
	rwc io.ReadWriteCloser
	log hclog.Logger

	writeMu sync.Mutex

	mu     sync.Mutex
	cbs    []*callbackNode
	closed bool

	done chan struct{}
}

type callbackNode struct {
	msgID uint16
	cb    settings.Callback
}

var _ settings.Host = (*Conn)(nil)

// ConnOption configures a Conn.
type ConnOption func(*Conn)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l hclog.Logger) ConnOption {
	return func(c *Conn) { c.log = l }
}

// New wraps a byte stream and starts the dispatch loop.
func New(rwc io.ReadWriteCloser, opts ...ConnOption) *Conn {
	c := &Conn{
		rwc:  rwc,
		log:  hclog.NewNullLogger(),
		done: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	go c.readLoop()
	return c
}

// Dial connects to a settings bus endpoint over TCP.
func Dial(addr string, opts ...ConnOption) (*Conn, error) {
	nc, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", addr, err)
	}
	return New(nc, opts...), nil
}

// Send transmits a frame with sender ID 0; use SendFrom to identify the
// sending process. Settings peers treat the write-response path as
// sender-agnostic, so the plain form is sufficient there.
func (c *Conn) Send(msgID uint16, payload []byte) error {
	return c.SendFrom(msgID, payload, 0)
}

// SendFrom transmits a frame with an explicit sender ID.
func (c *Conn) SendFrom(msgID uint16, payload []byte, senderID uint16) error {
	buf, err := AppendFrame(nil, Frame{Type: msgID, Sender: senderID, Payload: payload})
	if err != nil {
		return err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if _, err := c.rwc.Write(buf); err != nil {
		return fmt.Errorf("writing frame: %w", err)
	}
	return nil
}

// RegisterCallback subscribes cb to inbound frames of the given type.
func (c *Conn) RegisterCallback(msgID uint16, cb settings.Callback) (settings.CallbackHandle, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, errors.New("transport closed")
	}
	node := &callbackNode{msgID: msgID, cb: cb}
	c.cbs = append(c.cbs, node)
	return node, nil
}

// UnregisterCallback removes a callback registered earlier.
func (c *Conn) UnregisterCallback(handle settings.CallbackHandle) error {
	node, ok := handle.(*callbackNode)
	if !ok {
		return fmt.Errorf("foreign callback handle %T", handle)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for i, cur := range c.cbs {
		if cur == node {
			c.cbs = append(c.cbs[:i], c.cbs[i+1:]...)
			return nil
		}
	}
	return errors.New("callback not registered")
}

// Close shuts the stream down and waits for the dispatch loop to exit.
func (c *Conn) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	err := c.rwc.Close()
	<-c.done
	return err
}

func (c *Conn) readLoop() {
	defer close(c.done)

	br := bufio.NewReader(c.rwc)
	for {
		frame, err := ReadFrame(br)
		if err != nil {
			if errors.Is(err, ErrCRC) {
				c.log.Warn("dropping frame with bad CRC")
				continue
			}
			c.mu.Lock()
			closed := c.closed
			c.mu.Unlock()
			if !closed && !errors.Is(err, io.EOF) {
				c.log.Error("transport read failed", "error", err)
			}
			return
		}
		c.dispatch(frame)
	}
}

func (c *Conn) dispatch(frame Frame) {
	c.mu.Lock()
	var targets []settings.Callback
	for _, node := range c.cbs {
		if node.msgID == frame.Type {
			targets = append(targets, node.cb)
		}
	}
	c.mu.Unlock()

	for _, cb := range targets {
		cb(frame.Sender, frame.Payload)
	}
}
