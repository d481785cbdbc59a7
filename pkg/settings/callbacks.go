package settings

import (
	"fmt"

	"github.com/swift-nav/libsettings/pkg/wire"
)

// subscription records one transport callback registered with the host.
// The client registers each handled message ID with the host at most
// once; operations that need a kind of inbound traffic subscribe lazily
// and the registration stays in place until Close.
type subscription struct {
	msgID  uint16
	handle CallbackHandle
}

// subscribe ensures the handler for msgID is registered with the host.
// It reports whether the subscription already existed. The host's
// callback table is only ever touched under the client lock, so it
// never observes a partially linked subscription.
func (c *Client) subscribe(msgID uint16) (already bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false, ErrClosed
	}
	for _, sub := range c.subs {
		if sub.msgID == msgID {
			return true, nil
		}
	}

	handler := c.handlerFor(msgID)
	if handler == nil {
		return false, fmt.Errorf("no handler for msg id 0x%04X", msgID)
	}

	handle, err := c.host.RegisterCallback(msgID, handler)
	if err != nil {
		c.log.Error("error registering callback", "msg_id", msgID, "error", err)
		return false, fmt.Errorf("registering callback for msg id 0x%04X: %w", msgID, err)
	}

	c.subs = append(c.subs, &subscription{msgID: msgID, handle: handle})
	return false, nil
}

// unsubscribe removes the handler for msgID from the host. It reports
// whether a subscription was present.
func (c *Client) unsubscribe(msgID uint16) (found bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.unsubscribeLocked(msgID)
}

func (c *Client) unsubscribeLocked(msgID uint16) (found bool, err error) {
	for i, sub := range c.subs {
		if sub.msgID != msgID {
			continue
		}
		c.subs = append(c.subs[:i], c.subs[i+1:]...)
		if err := c.host.UnregisterCallback(sub.handle); err != nil {
			c.log.Error("error unregistering callback", "msg_id", msgID, "error", err)
			return true, fmt.Errorf("unregistering callback for msg id 0x%04X: %w", msgID, err)
		}
		return true, nil
	}
	return false, nil
}

// handlerFor maps a settings message ID to its inbound handler.
func (c *Client) handlerFor(msgID uint16) Callback {
	switch msgID {
	case wire.MsgSettingsRegisterResp:
		return c.handleRegisterResp
	case wire.MsgSettingsWrite:
		return c.handleWrite
	case wire.MsgSettingsWriteResp:
		return c.handleWriteResp
	case wire.MsgSettingsReadResp:
		return c.handleReadResp
	case wire.MsgSettingsReadByIndexResp:
		return c.handleReadByIndexResp
	case wire.MsgSettingsReadByIndexDone:
		return c.handleReadByIndexDone
	default:
		return nil
	}
}
