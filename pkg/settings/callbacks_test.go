//go:build unit

package settings

import (
	"testing"

	"github.com/swift-nav/libsettings/pkg/wire"
)

func TestSubscribeIdempotent(t *testing.T) {
	host := newStubHost()
	c := New(host, 1)

	already, err := c.subscribe(wire.MsgSettingsWriteResp)
	if err != nil {
		t.Fatal(err)
	}
	if already {
		t.Error("first subscribe reported already registered")
	}

	already, err = c.subscribe(wire.MsgSettingsWriteResp)
	if err != nil {
		t.Fatal(err)
	}
	if !already {
		t.Error("second subscribe did not report already registered")
	}

	// The transport saw exactly one registration.
	if ids := host.registrations(); len(ids) != 1 || ids[0] != wire.MsgSettingsWriteResp {
		t.Errorf("host registrations = %v", ids)
	}

	found, err := c.unsubscribe(wire.MsgSettingsWriteResp)
	if err != nil {
		t.Fatal(err)
	}
	if !found {
		t.Error("unsubscribe did not find the subscription")
	}
	if ids := host.registrations(); len(ids) != 0 {
		t.Errorf("host registrations after unsubscribe = %v", ids)
	}

	found, err = c.unsubscribe(wire.MsgSettingsWriteResp)
	if err != nil {
		t.Fatal(err)
	}
	if found {
		t.Error("second unsubscribe claimed to find a subscription")
	}
}

func TestSubscribeUnknownMsgID(t *testing.T) {
	c := New(newStubHost(), 1)
	if _, err := c.subscribe(0x9999); err == nil {
		t.Error("expected error for unhandled msg id")
	}
}

func TestSubscribeHostFailure(t *testing.T) {
	host := newStubHost()
	host.failRegister = true
	c := New(host, 1)

	if _, err := c.subscribe(wire.MsgSettingsWriteResp); err == nil {
		t.Fatal("expected registration failure")
	}
	// Nothing half-linked remains.
	if len(c.subs) != 0 {
		t.Error("failed subscribe left a subscription behind")
	}
}

func TestCloseUnregistersEverything(t *testing.T) {
	host := newStubHost()
	c := New(host, 1)

	for _, id := range []uint16{wire.MsgSettingsWrite, wire.MsgSettingsWriteResp, wire.MsgSettingsReadResp} {
		if _, err := c.subscribe(id); err != nil {
			t.Fatal(err)
		}
	}

	if err := c.Close(); err != nil {
		t.Fatal(err)
	}
	if ids := host.registrations(); len(ids) != 0 {
		t.Errorf("registrations after close = %v", ids)
	}

	if _, err := c.subscribe(wire.MsgSettingsWrite); err != ErrClosed {
		t.Errorf("subscribe after close = %v, expected ErrClosed", err)
	}
}
