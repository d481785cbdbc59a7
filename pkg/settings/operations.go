package settings

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"

	"github.com/swift-nav/libsettings/pkg/types"
	"github.com/swift-nav/libsettings/pkg/wire"
)

// addSetting creates an entry, links it, subscribes the transport
// callbacks its role needs and runs the initializing transaction:
// registration for owned entries, a priming read for watched ones.
// A failed subscription or registration unwinds the entry so nothing
// half-registered remains; a failed priming read is only logged and the
// watch stands.
func (c *Client) addSetting(section, name string, storage []byte, typ types.Type,
	notify NotifyFunc, readonly, watchonly bool) error {

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.lookupSetting(section, name) != nil {
		c.mu.Unlock()
		return fmt.Errorf("%s.%s: %w", section, name, ErrDuplicateSetting)
	}
	s, err := newSetting(c.registry, section, name, storage, typ, notify, readonly, watchonly)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	c.insertSetting(s)
	c.mu.Unlock()

	unwind := func(err error) error {
		c.mu.Lock()
		c.removeSetting(s)
		c.mu.Unlock()
		return err
	}

	if watchonly {
		if _, err := c.subscribe(wire.MsgSettingsWriteResp); err != nil {
			return unwind(err)
		}
		if err := c.readWatchedValue(s); err != nil {
			c.log.Warn("unable to read watched setting to initial value",
				"section", section, "name", name, "error", err)
		}
		return nil
	}

	if _, err := c.subscribe(wire.MsgSettingsRegisterResp); err != nil {
		return unwind(err)
	}
	if _, err := c.subscribe(wire.MsgSettingsWrite); err != nil {
		return unwind(err)
	}
	if err := c.register(s); err != nil {
		c.log.Error("error registering setting with settings manager",
			"section", section, "name", name, "error", err)
		return unwind(err)
	}
	return nil
}

// Register registers an owned, writable setting. storage holds the
// proposed initial value and is updated in place from then on: first
// with the daemon's authoritative reply (a persisted value wins over
// the proposed one, firing notify once), later with accepted writes.
func (c *Client) Register(section, name string, storage []byte, typ types.Type, notify NotifyFunc) error {
	return c.addSetting(section, name, storage, typ, notify, false, false)
}

// RegisterReadonly registers an owned setting whose value cannot be
// written from the bus; inbound writes are rejected with a read-only
// status and the daemon's registration reply never overwrites storage.
func (c *Client) RegisterReadonly(section, name string, storage []byte, typ types.Type) error {
	return c.addSetting(section, name, storage, typ, nil, true, false)
}

// AddWatch tracks a setting owned by some other process. storage is
// primed with the current value (if the owner has registered it) and
// follows accepted writes from then on; notify fires on each update.
// The client never answers write requests for a watched setting.
func (c *Client) AddWatch(section, name string, storage []byte, typ types.Type, notify NotifyFunc) error {
	return c.addSetting(section, name, storage, typ, notify, false, true)
}

// Write asks the owner of section/name to adopt a new value, routed
// through the daemon. The value blob is interpreted by the codec of
// typ. The returned status is the owner's verdict, or WriteTimeout if
// no reply arrived within the retry budget.
func (c *Client) Write(section, name string, value []byte, typ types.Type) (wire.WriteResult, error) {
	if _, err := c.subscribe(wire.MsgSettingsWriteResp); err != nil {
		return 0, err
	}

	c.mu.Lock()
	// Transient entry, used only to serialize the value; never linked.
	s, err := newSetting(c.registry, section, name, value, typ, nil, false, false)
	if err != nil {
		c.mu.Unlock()
		return 0, err
	}
	payload, headerLen, err := s.format(false)
	c.mu.Unlock()
	if err != nil {
		return 0, err
	}

	req, err := c.performRequest(wire.MsgSettingsWrite, payload, headerLen, wire.DaemonSenderID)
	if err != nil {
		return wire.WriteTimeout, nil
	}
	return req.status, nil
}

// WriteInt writes an integer setting.
func (c *Client) WriteInt(section, name string, value int32) (wire.WriteResult, error) {
	blob := make([]byte, 4)
	types.EncodeInt32(blob, value)
	return c.Write(section, name, blob, types.Int)
}

// WriteFloat writes a single-precision float setting.
func (c *Client) WriteFloat(section, name string, value float32) (wire.WriteResult, error) {
	blob := make([]byte, 4)
	types.EncodeFloat32(blob, value)
	return c.Write(section, name, blob, types.Float)
}

// WriteString writes a string setting.
func (c *Client) WriteString(section, name, value string) (wire.WriteResult, error) {
	blob := make([]byte, len(value)+1)
	if !types.EncodeString(blob, value) {
		return 0, fmt.Errorf("string value does not fit")
	}
	return c.Write(section, name, blob, types.String)
}

// WriteBool writes a boolean setting.
func (c *Client) WriteBool(section, name string, value bool) (wire.WriteResult, error) {
	blob := make([]byte, 1)
	types.EncodeBool(blob, value)
	return c.Write(section, name, blob, types.Bool)
}

// Read fetches the current value of any setting on the bus and decodes
// it into the value blob using the codec of typ. If the response names
// a numeric type it must equal typ; an enum descriptor defers to the
// caller's expected type, since the remote name table is not available
// locally.
func (c *Client) Read(section, name string, value []byte, typ types.Type) error {
	payload, err := wire.Format(section, name)
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
		return fmt.Errorf("%s.%s: %w", section, name, ErrNoValue)
	}

	if req.typ != "" && !strings.HasPrefix(req.typ, "enum:") {
		parsed, err := strconv.Atoi(req.typ)
		if err != nil || types.Type(parsed) != typ {
			return fmt.Errorf("%s.%s: response type %q, expected %d: %w",
				section, name, req.typ, typ, ErrTypeMismatch)
		}
	}

	c.mu.Lock()
	codec, ok := c.registry.Lookup(typ)
	c.mu.Unlock()
	if !ok {
		return fmt.Errorf("%s.%s: %w (%d)", section, name, ErrUnknownType, typ)
	}
	if err := codec.FromText(value, req.value); err != nil {
		return fmt.Errorf("%s.%s: parsing value %q: %w", section, name, req.value, err)
	}
	return nil
}

// ReadInt reads an integer setting.
func (c *Client) ReadInt(section, name string) (int32, error) {
	blob := make([]byte, 4)
	if err := c.Read(section, name, blob, types.Int); err != nil {
		return 0, err
	}
	return types.DecodeInt32(blob), nil
}

// ReadFloat reads a single-precision float setting.
func (c *Client) ReadFloat(section, name string) (float32, error) {
	blob := make([]byte, 4)
	if err := c.Read(section, name, blob, types.Float); err != nil {
		return 0, err
	}
	return types.DecodeFloat32(blob), nil
}

// ReadString reads a string setting of up to maxLen bytes.
func (c *Client) ReadString(section, name string, maxLen int) (string, error) {
	blob := make([]byte, maxLen+1)
	if err := c.Read(section, name, blob, types.String); err != nil {
		return "", err
	}
	return types.DecodeString(blob), nil
}

// ReadBool reads a boolean setting.
func (c *Client) ReadBool(section, name string) (bool, error) {
	blob := make([]byte, 1)
	if err := c.Read(section, name, blob, types.Bool); err != nil {
		return false, err
	}
	return types.DecodeBool(blob), nil
}

// IndexResult is one entry of a read-by-index enumeration.
type IndexResult struct {
	Section string
	Name    string
	Value   string
	Type    string
}

// ReadByIndex fetches the idx-th setting known to the daemon. done
// reports the end of the enumeration, in which case the result is nil;
// otherwise the caller continues with idx+1.
func (c *Client) ReadByIndex(idx uint16) (result *IndexResult, done bool, err error) {
	if _, err := c.subscribe(wire.MsgSettingsReadByIndexResp); err != nil {
		return nil, false, err
	}
	if _, err := c.subscribe(wire.MsgSettingsReadByIndexDone); err != nil {
		return nil, false, err
	}

	payload := make([]byte, 2)
	binary.LittleEndian.PutUint16(payload, idx)

	req, err := c.performRequest(wire.MsgSettingsReadByIndexReq, payload, len(payload), wire.DaemonSenderID)
	if err != nil {
		return nil, false, err
	}
	if req.done {
		return nil, true, nil
	}
	return &IndexResult{
		Section: req.section,
		Name:    req.name,
		Value:   req.value,
		Type:    req.typ,
	}, false, nil
}

// ReadAll enumerates every setting known to the daemon, from index 0
// until the daemon reports the end.
func (c *Client) ReadAll() ([]IndexResult, error) {
	var all []IndexResult
	for idx := uint16(0); ; idx++ {
		res, done, err := c.ReadByIndex(idx)
		if err != nil {
			return all, err
		}
		if done {
			return all, nil
		}
		all = append(all, *res)
	}
}
