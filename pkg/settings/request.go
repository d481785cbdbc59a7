package settings

import (
	"bytes"

	"github.com/swift-nav/libsettings/pkg/wire"
)

// request tracks one outstanding synchronous call. The originator links
// it into the client's request list before sending and removes it when
// the call finishes; inbound handlers locate it by matching the echoed
// payload prefix, fill in the response fields and signal the channel.
//
// All fields except the channel are guarded by the client lock. The
// channel is buffered so a handler never blocks on a waiter that has
// already timed out; a late reply is picked up by the next retry.
type request struct {
	msgID   uint16
	prefix  []byte
	pending bool
	matched bool

	// Response fields, populated by the handler that matched the reply.
	section    string
	name       string
	value      string
	typ        string
	valueValid bool
	done       bool
	status     wire.WriteResult

	signal chan struct{}
}

func newRequest(msgID uint16, payload []byte, headerLen int) *request {
	prefix := make([]byte, headerLen)
	copy(prefix, payload[:headerLen])
	return &request{
		msgID:   msgID,
		prefix:  prefix,
		pending: true,
		status:  wire.WriteTimeout,
		signal:  make(chan struct{}, 1),
	}
}

// addRequest links a request into the tracker. Callers hold the lock.
func (c *Client) addRequest(r *request) {
	c.requests = append(c.requests, r)
}

// removeRequest unlinks a request. Callers hold the lock. Removal
// happens exactly once, in the originator, after signal or timeout.
func (c *Client) removeRequest(r *request) {
	r.pending = false
	for i, cur := range c.requests {
		if cur == r {
			c.requests = append(c.requests[:i], c.requests[i+1:]...)
			return
		}
	}
}

// lookupRequest returns the first pending request whose match prefix is
// a byte prefix of payload. Callers hold the lock. Under contention the
// first match wins; originators choose prefixes unique enough to avoid
// ambiguity (section+name, or the 2-byte enumeration index).
func (c *Client) lookupRequest(payload []byte) *request {
	for _, r := range c.requests {
		if !r.pending {
			continue
		}
		if len(payload) >= len(r.prefix) && bytes.Equal(payload[:len(r.prefix)], r.prefix) {
			return r
		}
	}
	return nil
}

// signalRequest marks a request matched and wakes its waiter. The
// message ID must equal the ID the request was sent with; a mismatch
// leaves the request pending and reports false. Callers hold the lock
// and must have finished writing the request's response fields.
func (c *Client) signalRequest(r *request, msgID uint16) bool {
	if msgID != r.msgID {
		return false
	}

	r.matched = true
	r.pending = false

	select {
	case r.signal <- struct{}{}:
	default:
		// Already signaled; never signal twice.
		c.log.Warn("request signaled twice", "msg_id", msgID)
	}
	return true
}
