package settings

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/swift-nav/libsettings/pkg/types"
	"github.com/swift-nav/libsettings/pkg/wire"
)

// NotifyFunc is executed after a setting's storage has been updated
// with an accepted value. Returning anything other than wire.WriteOK
// reverts the storage to its previous contents and propagates the
// returned status in the write response.
//
// The callback runs with the client's internal lock held; it must not
// call back into blocking client operations.
type NotifyFunc func() wire.WriteResult

// setting is one registered or watched entry. Storage is caller-owned;
// the shadow buffer snapshots it across updates so a rejected write can
// be reverted byte for byte.
type setting struct {
	section string
	name    string
	storage []byte
	shadow  []byte
	typ     types.Type
	codec   types.Codec
	notify  NotifyFunc

	// readonly rejects every inbound write. watchonly marks an entry
	// this process does not own: it follows remote updates and never
	// emits a write response.
	readonly  bool
	watchonly bool
}

func newSetting(reg *types.Registry, section, name string, storage []byte, typ types.Type,
	notify NotifyFunc, readonly, watchonly bool) (*setting, error) {

	codec, ok := reg.Lookup(typ)
	if !ok {
		return nil, fmt.Errorf("setting %s.%s: %w (%d)", section, name, ErrUnknownType, typ)
	}
	if len(storage) == 0 {
		return nil, fmt.Errorf("setting %s.%s: empty storage", section, name)
	}

	return &setting{
		section:   section,
		name:      name,
		storage:   storage,
		shadow:    make([]byte, len(storage)),
		typ:       typ,
		codec:     codec,
		notify:    notify,
		readonly:  readonly,
		watchonly: watchonly,
	}, nil
}

// updateValue parses value into the setting's storage. The storage is
// snapshotted first and restored if parsing fails or the notify hook
// rejects the new value. For watchonly entries the notify result is
// advisory and never causes a revert.
func (s *setting) updateValue(value string) wire.WriteResult {
	if s.readonly {
		return wire.WriteReadOnly
	}

	copy(s.shadow, s.storage)
	if err := s.codec.FromText(s.storage, value); err != nil {
		copy(s.storage, s.shadow)
		return wire.WriteParseFailed
	}

	if s.notify == nil {
		return wire.WriteOK
	}

	res := s.notify()

	if s.watchonly {
		return wire.WriteOK
	}

	if res != wire.WriteOK {
		copy(s.storage, s.shadow)
	}
	return res
}

// format renders the setting as a message payload:
// section\0name\0value\0 with an optional trailing type descriptor.
// headerLen is the byte count through the NUL after the name, the
// prefix a reply echoes back for request correlation.
func (s *setting) format(includeType bool) (payload []byte, headerLen int, err error) {
	var buf bytes.Buffer

	buf.WriteString(s.section)
	buf.WriteByte(0)
	buf.WriteString(s.name)
	buf.WriteByte(0)
	headerLen = buf.Len()

	value, err := s.codec.ToText(s.storage)
	if err != nil {
		return nil, 0, fmt.Errorf("setting %s.%s: %w", s.section, s.name, err)
	}
	buf.WriteString(value)
	buf.WriteByte(0)

	if includeType {
		buf.WriteString(s.typeDescriptor())
		buf.WriteByte(0)
	}

	if buf.Len() > wire.MaxPayload {
		return nil, 0, fmt.Errorf("setting %s.%s: payload too long (%d bytes)", s.section, s.name, buf.Len())
	}
	return buf.Bytes(), headerLen, nil
}

// typeDescriptor is either the codec's own descriptor (enums) or the
// numeric type ID as decimal text.
func (s *setting) typeDescriptor() string {
	if fm, ok := s.codec.(types.TypeFormatter); ok {
		return fm.FormatType()
	}
	return strconv.Itoa(int(s.typ))
}

// updateFilter selects which entry kinds an inbound update is allowed
// to touch. Each handler applies a different mask: a registration reply
// must not clobber a readonly entry's caller-supplied value, an inbound
// write never touches watched entries, and a write response only syncs
// entries the local process does not own.
type updateFilter uint8

const (
	skipReadonly updateFilter = 1 << iota
	skipWatchonly
	skipOwned // neither readonly nor watchonly
)

func (s *setting) skippedBy(f updateFilter) bool {
	if f&skipReadonly != 0 && s.readonly {
		return true
	}
	if f&skipWatchonly != 0 && s.watchonly {
		return true
	}
	if f&skipOwned != 0 && !s.readonly && !s.watchonly {
		return true
	}
	return false
}

// lookupSetting finds an entry by identity. Callers hold the lock.
func (c *Client) lookupSetting(section, name string) *setting {
	for _, s := range c.settings {
		if s.section == section && s.name == name {
			return s
		}
	}
	return nil
}

// insertSetting appends an entry, keeping entries of the same section
// adjacent: the new entry lands after the last existing entry of its
// section, or at the tail for a new section. Callers hold the lock.
func (c *Client) insertSetting(s *setting) {
	at := len(c.settings)
	for i := len(c.settings) - 1; i >= 0; i-- {
		if c.settings[i].section == s.section {
			at = i + 1
			break
		}
	}
	c.settings = append(c.settings, nil)
	copy(c.settings[at+1:], c.settings[at:])
	c.settings[at] = s
}

// removeSetting unlinks an entry. Callers hold the lock.
func (c *Client) removeSetting(s *setting) {
	for i, cur := range c.settings {
		if cur == s {
			c.settings = append(c.settings[:i], c.settings[i+1:]...)
			return
		}
	}
}
