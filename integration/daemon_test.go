//go:build integration

package integration

import (
	"bufio"
	"errors"
	"net"
	"sync"

	"github.com/swift-nav/libsettings/pkg/transport"
	"github.com/swift-nav/libsettings/pkg/wire"
)

// fakeDaemon is a minimal settings manager: it accepts registrations,
// answers reads and enumerations from its table, routes writes to the
// owning link and fans write responses out to every link. It speaks
// real SBP frames, so clients connect through the full transport stack.
type fakeDaemon struct {
	mu    sync.Mutex
	links []*daemonLink
	table []daemonSetting
}

type daemonLink struct {
	conn    net.Conn
	writeMu sync.Mutex
}

type daemonSetting struct {
	section string
	name    string
	value   string
	typ     string
	owner   *daemonLink
}

func newFakeDaemon() *fakeDaemon {
	return &fakeDaemon{}
}

// attach returns the client side of a new pipe into the daemon.
func (d *fakeDaemon) attach() net.Conn {
	client, server := net.Pipe()
	link := &daemonLink{conn: server}

	d.mu.Lock()
	d.links = append(d.links, link)
	d.mu.Unlock()

	go d.serve(link)
	return client
}

func (d *fakeDaemon) serve(link *daemonLink) {
	br := bufio.NewReader(link.conn)
	for {
		frame, err := transport.ReadFrame(br)
		if err != nil {
			if errors.Is(err, transport.ErrCRC) {
				continue
			}
			return
		}
		d.handle(link, frame)
	}
}

func (d *fakeDaemon) send(link *daemonLink, msgID uint16, payload []byte) {
	buf, err := transport.AppendFrame(nil, transport.Frame{
		Type:    msgID,
		Sender:  wire.DaemonSenderID,
		Payload: payload,
	})
	if err != nil {
		return
	}
	link.writeMu.Lock()
	link.conn.Write(buf)
	link.writeMu.Unlock()
}

func (d *fakeDaemon) broadcast(msgID uint16, payload []byte) {
	d.mu.Lock()
	links := append([]*daemonLink(nil), d.links...)
	d.mu.Unlock()
	for _, link := range links {
		d.send(link, msgID, payload)
	}
}

func (d *fakeDaemon) lookup(section, name string) *daemonSetting {
	for i := range d.table {
		if d.table[i].section == section && d.table[i].name == name {
			return &d.table[i]
		}
	}
	return nil
}

func (d *fakeDaemon) handle(link *daemonLink, frame transport.Frame) {
	switch frame.Type {
	case wire.MsgSettingsRegister:
		d.handleRegister(link, frame.Payload)
	case wire.MsgSettingsReadReq:
		d.handleReadReq(link, frame.Payload)
	case wire.MsgSettingsWrite:
		d.handleWrite(link, frame.Payload)
	case wire.MsgSettingsWriteResp:
		d.handleWriteResp(link, frame.Payload)
	case wire.MsgSettingsReadByIndexReq:
		d.handleReadByIndexReq(link, frame.Payload)
	}
}

func (d *fakeDaemon) handleRegister(link *daemonLink, payload []byte) {
	fields, count := wire.Parse(payload)
	if count < wire.TokensValue {
		d.send(link, wire.MsgSettingsRegisterResp,
			append([]byte{byte(wire.RegisterParseFailed)}, payload...))
		return
	}

	d.mu.Lock()
	existing := d.lookup(fields.Section, fields.Name)
	var status wire.RegisterResult
	var echo []byte
	if existing != nil {
		status = wire.RegisterRegistered
		echo, _ = wire.Format(existing.section, existing.name, existing.value, existing.typ)
	} else {
		status = wire.RegisterOK
		d.table = append(d.table, daemonSetting{
			section: fields.Section,
			name:    fields.Name,
			value:   fields.Value,
			typ:     fields.Type,
			owner:   link,
		})
		echo = append([]byte(nil), payload...)
	}
	d.mu.Unlock()

	d.send(link, wire.MsgSettingsRegisterResp, append([]byte{byte(status)}, echo...))
}

func (d *fakeDaemon) handleReadReq(link *daemonLink, payload []byte) {
	fields, count := wire.Parse(payload)
	if count < wire.TokensName {
		return
	}

	d.mu.Lock()
	s := d.lookup(fields.Section, fields.Name)
	var resp []byte
	if s != nil {
		resp, _ = wire.Format(s.section, s.name, s.value, s.typ)
	} else {
		resp, _ = wire.Format(fields.Section, fields.Name)
	}
	d.mu.Unlock()

	d.send(link, wire.MsgSettingsReadResp, resp)
}

func (d *fakeDaemon) handleWrite(link *daemonLink, payload []byte) {
	fields, count := wire.Parse(payload)
	if count < wire.TokensValue {
		return
	}

	d.mu.Lock()
	s := d.lookup(fields.Section, fields.Name)
	var owner *daemonLink
	if s != nil {
		owner = s.owner
	}
	d.mu.Unlock()

	if owner == nil {
		resp, _ := wire.Format(fields.Section, fields.Name, fields.Value)
		d.send(link, wire.MsgSettingsWriteResp,
			append([]byte{byte(wire.WriteSettingRejected)}, resp...))
		return
	}
	d.send(owner, wire.MsgSettingsWrite, payload)
}

func (d *fakeDaemon) handleWriteResp(link *daemonLink, payload []byte) {
	if len(payload) < 1 {
		return
	}
	status := wire.WriteResult(payload[0])
	fields, count := wire.Parse(payload[1:])
	if count >= wire.TokensValue && status == wire.WriteOK {
		d.mu.Lock()
		if s := d.lookup(fields.Section, fields.Name); s != nil {
			s.value = fields.Value
		}
		d.mu.Unlock()
	}
	d.broadcast(wire.MsgSettingsWriteResp, payload)
}

func (d *fakeDaemon) handleReadByIndexReq(link *daemonLink, payload []byte) {
	if len(payload) < 2 {
		return
	}
	idx := int(payload[0]) | int(payload[1])<<8

	d.mu.Lock()
	var s *daemonSetting
	if idx < len(d.table) {
		s = &d.table[idx]
	}
	d.mu.Unlock()

	if s == nil {
		d.send(link, wire.MsgSettingsReadByIndexDone, nil)
		return
	}
	body, _ := wire.Format(s.section, s.name, s.value, s.typ)
	d.send(link, wire.MsgSettingsReadByIndexResp, append(payload[:2:2], body...))
}
