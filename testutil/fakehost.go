// Package testutil provides fakes and helpers for exercising the
// settings client without a transport.
package testutil

import (
	"errors"
	"sync"

	"github.com/swift-nav/libsettings/pkg/settings"
)

// SentMessage records one outbound message observed by the fake host.
type SentMessage struct {
	MsgID    uint16
	SenderID uint16
	Payload  []byte
}

// FakeHost implements settings.Host in memory. Tests inspect what the
// client sent and inject inbound messages; an optional responder hook
// answers each send synchronously, which is enough to drive the
// client's blocking operations from a single test goroutine plus the
// client's own waiter.
type FakeHost struct {
	mu        sync.Mutex
	cbs       []*fakeCallback
	sent      []SentMessage
	responder func(SentMessage)

	failSend     bool
	failRegister bool
}

type fakeCallback struct {
	msgID uint16
	cb    settings.Callback
}

// NewFakeHost creates an empty fake host.
func NewFakeHost() *FakeHost {
	return &FakeHost{}
}

// Respond installs a hook invoked on every send, typically to inject
// the reply a daemon or peer would produce.
func (h *FakeHost) Respond(fn func(SentMessage)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.responder = fn
}

// SetFailSend makes Send and SendFrom fail.
func (h *FakeHost) SetFailSend(fail bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.failSend = fail
}

// SetFailRegister makes RegisterCallback fail.
func (h *FakeHost) SetFailRegister(fail bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.failRegister = fail
}

// Send implements settings.Host.
func (h *FakeHost) Send(msgID uint16, payload []byte) error {
	return h.SendFrom(msgID, payload, 0)
}

// SendFrom implements settings.Host.
func (h *FakeHost) SendFrom(msgID uint16, payload []byte, senderID uint16) error {
	m := SentMessage{
		MsgID:    msgID,
		SenderID: senderID,
		Payload:  append([]byte(nil), payload...),
	}

	h.mu.Lock()
	if h.failSend {
		h.mu.Unlock()
		return errors.New("fake send error")
	}
	h.sent = append(h.sent, m)
	responder := h.responder
	h.mu.Unlock()

	if responder != nil {
		responder(m)
	}
	return nil
}

// RegisterCallback implements settings.Host.
func (h *FakeHost) RegisterCallback(msgID uint16, cb settings.Callback) (settings.CallbackHandle, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.failRegister {
		return nil, errors.New("fake register error")
	}
	node := &fakeCallback{msgID: msgID, cb: cb}
	h.cbs = append(h.cbs, node)
	return node, nil
}

// UnregisterCallback implements settings.Host.
func (h *FakeHost) UnregisterCallback(handle settings.CallbackHandle) error {
	node, ok := handle.(*fakeCallback)
	if !ok {
		return errors.New("foreign callback handle")
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, cur := range h.cbs {
		if cur == node {
			h.cbs = append(h.cbs[:i], h.cbs[i+1:]...)
			return nil
		}
	}
	return errors.New("callback not registered")
}

// Inject delivers an inbound message to every callback registered for
// its ID, the way a transport would on receiving a frame.
func (h *FakeHost) Inject(msgID, senderID uint16, payload []byte) {
	h.mu.Lock()
	var targets []settings.Callback
	for _, node := range h.cbs {
		if node.msgID == msgID {
			targets = append(targets, node.cb)
		}
	}
	h.mu.Unlock()

	for _, cb := range targets {
		cb(senderID, payload)
	}
}

// Sent returns a copy of every message sent so far.
func (h *FakeHost) Sent() []SentMessage {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]SentMessage(nil), h.sent...)
}

// SentTo returns the messages sent with the given message ID.
func (h *FakeHost) SentTo(msgID uint16) []SentMessage {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []SentMessage
	for _, m := range h.sent {
		if m.MsgID == msgID {
			out = append(out, m)
		}
	}
	return out
}

// Registrations returns the message ID of every registered callback, in
// registration order; an ID with several callbacks appears once per
// callback.
func (h *FakeHost) Registrations() []uint16 {
	h.mu.Lock()
	defer h.mu.Unlock()
	var ids []uint16
	for _, node := range h.cbs {
		ids = append(ids, node.msgID)
	}
	return ids
}
