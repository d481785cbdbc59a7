//go:build unit

package settings

import (
	"errors"
	"sync"
)

// stubHost is the in-package fake transport for white-box tests.
// Black-box tests use testutil.FakeHost instead, which cannot be
// imported here without a cycle.
type stubHost struct {
	mu           sync.Mutex
	cbs          map[uint16][]Callback
	handles      int
	sent         []stubSent
	responder    func(msgID uint16, payload []byte, senderID uint16)
	failSend     bool
	failRegister bool
}

type stubSent struct {
	msgID    uint16
	senderID uint16
	payload  []byte
}

type stubHandle struct {
	msgID uint16
	id    int
}

func newStubHost() *stubHost {
	return &stubHost{cbs: make(map[uint16][]Callback)}
}

func (h *stubHost) Send(msgID uint16, payload []byte) error {
	return h.SendFrom(msgID, payload, 0)
}

func (h *stubHost) SendFrom(msgID uint16, payload []byte, senderID uint16) error {
	h.mu.Lock()
	if h.failSend {
		h.mu.Unlock()
		return errors.New("stub send error")
	}
	h.sent = append(h.sent, stubSent{msgID, senderID, append([]byte(nil), payload...)})
	responder := h.responder
	h.mu.Unlock()

	if responder != nil {
		responder(msgID, payload, senderID)
	}
	return nil
}

func (h *stubHost) RegisterCallback(msgID uint16, cb Callback) (CallbackHandle, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.failRegister {
		return nil, errors.New("stub register error")
	}
	h.cbs[msgID] = append(h.cbs[msgID], cb)
	h.handles++
	return &stubHandle{msgID: msgID, id: h.handles}, nil
}

func (h *stubHost) UnregisterCallback(handle CallbackHandle) error {
	sh, ok := handle.(*stubHandle)
	if !ok {
		return errors.New("foreign handle")
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	list := h.cbs[sh.msgID]
	if len(list) == 0 {
		return errors.New("not registered")
	}
	h.cbs[sh.msgID] = list[:len(list)-1]
	return nil
}

func (h *stubHost) inject(msgID, senderID uint16, payload []byte) {
	h.mu.Lock()
	targets := append([]Callback(nil), h.cbs[msgID]...)
	h.mu.Unlock()
	for _, cb := range targets {
		cb(senderID, payload)
	}
}

func (h *stubHost) registrations() []uint16 {
	h.mu.Lock()
	defer h.mu.Unlock()
	var ids []uint16
	for id, list := range h.cbs {
		for range list {
			ids = append(ids, id)
		}
	}
	return ids
}

func (h *stubHost) sentTo(msgID uint16) []stubSent {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []stubSent
	for _, m := range h.sent {
		if m.msgID == msgID {
			out = append(out, m)
		}
	}
	return out
}
