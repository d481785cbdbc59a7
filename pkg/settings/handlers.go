package settings

import (
	"github.com/swift-nav/libsettings/pkg/wire"
)

// Inbound message handlers. Each runs on the transport's dispatch
// goroutine, takes the client lock to walk the request and settings
// lists, and signals the matched request only after its response fields
// are fully written.

// handleRegisterResp processes the daemon's acknowledgement of a
// REGISTER. The echoed value is authoritative: it is applied to the
// entry unless the entry is readonly, so a caller-supplied readonly
// value survives a stale persisted one.
func (c *Client) handleRegisterResp(senderID uint16, payload []byte) {
	if senderID != wire.DaemonSenderID {
		c.log.Warn("invalid sender", "sender_id", senderID, "expected", wire.DaemonSenderID)
		return
	}
	if len(payload) < 1 {
		c.log.Warn("register resp too short")
		return
	}

	status := wire.RegisterResult(payload[0])
	if status == wire.RegisterParseFailed {
		// Request may have been corrupted in transfer; stay quiet and
		// let the timeout drive a resend.
		return
	}

	body := payload[1:]

	c.mu.Lock()
	defer c.mu.Unlock()

	req := c.lookupRequest(body)
	if req == nil {
		c.log.Warn("register resp with no pending registration request")
		return
	}

	c.applyUpdate(body, skipReadonly)
	c.signalRequest(req, wire.MsgSettingsRegister)
}

// handleWrite processes a write request routed to us by the daemon.
// Watched entries are not ours to answer for; everything else gets a
// write response echoing the entry's current value and the status.
func (c *Client) handleWrite(senderID uint16, payload []byte) {
	if senderID != wire.DaemonSenderID {
		c.log.Warn("invalid sender", "sender_id", senderID, "expected", wire.DaemonSenderID)
		return
	}

	c.mu.Lock()

	fields, count := wire.Parse(payload)
	if count < wire.TokensValue {
		c.mu.Unlock()
		c.log.Warn("error parsing settings write message")
		return
	}

	s := c.lookupSetting(fields.Section, fields.Name)
	if s == nil || s.watchonly {
		c.mu.Unlock()
		return
	}

	var result wire.WriteResult
	if len(payload) > wire.MaxSettingLen {
		// A value this long could never be echoed back through the
		// enumeration path; refuse it outright.
		result = wire.WriteValueRejected
	} else {
		result = s.updateValue(fields.Value)
	}

	resp, err := c.formatWriteResponse(s, result)
	c.mu.Unlock()

	if err != nil {
		c.log.Error("error formatting settings write response", "error", err)
		return
	}
	if err := c.host.Send(wire.MsgSettingsWriteResp, resp); err != nil {
		c.log.Error("sending settings write response failed", "error", err)
	}
}

// formatWriteResponse renders status + section\0name\0value\0 from the
// entry's current storage. Callers hold the lock.
func (c *Client) formatWriteResponse(s *setting, result wire.WriteResult) ([]byte, error) {
	body, _, err := s.format(false)
	if err != nil {
		return nil, err
	}
	resp := make([]byte, 0, 1+len(body))
	resp = append(resp, byte(result))
	return append(resp, body...), nil
}

// handleWriteResp processes the status reply to our own write, or an
// informational response about a write some other controller issued.
// Accepted values are propagated to matching watched entries either
// way; entries we own were already updated by the WRITE handler.
func (c *Client) handleWriteResp(senderID uint16, payload []byte) {
	if len(payload) < 1 {
		c.log.Warn("write resp too short")
		return
	}

	status := wire.WriteResult(payload[0])
	body := payload[1:]

	c.mu.Lock()
	defer c.mu.Unlock()

	if status == wire.WriteOK {
		c.applyUpdate(body, skipOwned)
	} else {
		c.log.Warn("setting write rejected, not updating watched values", "status", status.String())
	}

	req := c.lookupRequest(body)
	if req == nil {
		return
	}
	req.status = status
	c.signalRequest(req, wire.MsgSettingsWrite)
}

// handleReadResp processes a read reply. Watched entries are synced
// from it (this is the watch priming path); the value and type tokens
// are recorded on the matched request. A reply without a value token
// means the daemon does not know the setting; the request still
// completes, with valueValid left unset.
func (c *Client) handleReadResp(senderID uint16, payload []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	req := c.lookupRequest(payload)
	if req == nil {
		return
	}

	fields, count := wire.Parse(payload)
	if count >= wire.TokensValue {
		c.applyUpdate(payload, skipReadonly|skipOwned)
		req.value = fields.Value
		req.valueValid = true
		if count >= wire.TokensType {
			req.typ = fields.Type
		}
	} else {
		c.log.Warn("read response has no value", "count", int(count))
	}

	c.signalRequest(req, wire.MsgSettingsReadReq)
}

// handleReadByIndexResp processes one enumeration step: a 2-byte index
// echoing the request, followed by the setting tuple.
func (c *Client) handleReadByIndexResp(senderID uint16, payload []byte) {
	if len(payload) < 2 {
		c.log.Warn("read by index resp too short")
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	req := c.lookupRequest(payload)
	if req == nil {
		return
	}

	fields, count := wire.Parse(payload[2:])
	if count > wire.TokensEmpty {
		req.section = fields.Section
		req.name = fields.Name
		req.value = fields.Value
		req.typ = fields.Type
	}

	c.signalRequest(req, wire.MsgSettingsReadByIndexReq)
}

// handleReadByIndexDone terminates the enumeration: every pending
// read-by-index request completes with its done bit set, collapsing
// any concurrent enumeration loops.
func (c *Client) handleReadByIndexDone(senderID uint16, payload []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, req := range c.requests {
		if !req.pending || req.msgID != wire.MsgSettingsReadByIndexReq {
			continue
		}
		req.section = ""
		req.name = ""
		req.value = ""
		req.typ = ""
		req.done = true
		c.signalRequest(req, wire.MsgSettingsReadByIndexReq)
	}
}

// applyUpdate parses a setting tuple and updates the matching entry,
// unless the filter excludes it. Callers hold the lock.
func (c *Client) applyUpdate(payload []byte, filter updateFilter) {
	fields, count := wire.Parse(payload)
	if count < wire.TokensValue {
		c.log.Warn("error parsing setting update")
		return
	}

	s := c.lookupSetting(fields.Section, fields.Name)
	if s == nil || s.skippedBy(filter) {
		return
	}

	if res := s.updateValue(fields.Value); res != wire.WriteOK {
		c.log.Warn("setting update rejected locally",
			"section", fields.Section, "name", fields.Name, "status", res.String())
	}
}
