package settings

import (
	"fmt"
	"time"

	"github.com/swift-nav/libsettings/pkg/wire"
)

// performRequest runs one synchronous request/reply transaction: link a
// request descriptor whose match prefix is the leading headerLen bytes
// of the payload, then send and wait, resending on every timeout until
// the retry budget runs out. The descriptor stays linked across retries
// so a late reply to an earlier attempt still completes the call. The
// lock is never held while waiting; callbacks take it to match and fill
// the descriptor before signaling.
//
// The returned request carries the response fields written by whichever
// handler matched the reply. The only error is ErrTimeout.
func (c *Client) performRequest(msgID uint16, payload []byte, headerLen int, senderID uint16) (*request, error) {
	req := newRequest(msgID, payload, headerLen)

	c.mu.Lock()
	c.addRequest(req)
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.removeRequest(req)
		c.mu.Unlock()
	}()

	for try := 0; try < c.retries; try++ {
		if err := c.host.SendFrom(msgID, payload, senderID); err != nil {
			// Still wait: the reply to an earlier try may yet arrive,
			// and the next try resends.
			c.log.Warn("send failed", "msg_id", msgID, "error", err)
		}

		timer := time.NewTimer(c.timeout)
		select {
		case <-req.signal:
			timer.Stop()
			c.mu.Lock()
			matched := req.matched
			c.mu.Unlock()
			if matched {
				return req, nil
			}
		case <-timer.C:
			c.log.Warn("waiting for reply timed out",
				"msg_id", msgID, "try", try+1, "of", c.retries)
		}
	}

	c.log.Warn("request failed after retries", "msg_id", msgID, "tries", c.retries)
	return nil, fmt.Errorf("msg id 0x%04X: %w", msgID, ErrTimeout)
}

// register performs the REGISTER transaction for an owned entry. On
// success the daemon has echoed its authoritative value back and the
// REGISTER_RESP handler has already applied it to the entry.
func (c *Client) register(s *setting) error {
	c.mu.Lock()
	payload, headerLen, err := s.format(true)
	c.mu.Unlock()
	if err != nil {
		return err
	}
	if len(payload) > wire.MaxSettingLen {
		return fmt.Errorf("setting %s.%s: formatted payload exceeds enumeration ceiling (%d > %d)",
			s.section, s.name, len(payload), wire.MaxSettingLen)
	}

	_, err = c.performRequest(wire.MsgSettingsRegister, payload, headerLen, c.senderID)
	return err
}

// readWatchedValue primes a watched entry by reading its current value
// from the daemon. The READ_RESP handler syncs the entry. A completed
// read without a value token means the owner has not registered the
// setting yet; the entry stays uninitialized and the watch stands.
func (c *Client) readWatchedValue(s *setting) error {
	payload, err := wire.Format(s.section, s.name)
	if err != nil {
		return err
	}

	if _, err := c.subscribe(wire.MsgSettingsReadResp); err != nil {
		return err
	}

	req, err := c.performRequest(wire.MsgSettingsReadReq, payload, len(payload), wire.DaemonSenderID)
	if err != nil {
		return err
	}
	if !req.valueValid {
		c.log.Warn("watched setting not registered yet, value uninitialized",
			"section", s.section, "name", s.name)
	}
	return nil
}
