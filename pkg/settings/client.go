// Package settings implements the client side of the SBP settings
// sub-protocol.
//
// The settings daemon acts as the manager for settings registration and
// answers read requests, while individual processes own their settings
// values and answer write requests with an accept/reject status. This
// package provides the client for both roles: a process can register
// settings it owns (responding to routed writes), watch settings owned
// by other processes (staying in sync with accepted updates), and act
// as a controller that reads, writes and enumerates settings across the
// bus.
//
// The client holds a list of unique settings, each either owned or
// watch-only. Owned settings answer write requests; watch-only settings
// are updated from write responses so they track successful updates as
// reported by their owners. Synchronous calls (register, read, write,
// enumerate) are built on an asynchronous message stream: each call
// links a request descriptor carrying a match prefix of its outbound
// payload, and inbound handlers correlate replies back to the waiting
// call by that prefix.
package settings

import (
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"

	"github.com/swift-nav/libsettings/pkg/types"
)

// Default request/reply pacing: each try waits this long, and the whole
// operation gives up after this many tries.
const (
	DefaultTimeout = 500 * time.Millisecond
	DefaultRetries = 5
)

// Client is a settings context. It composes the type registry, the
// settings list, the request tracker and the transport callback table,
// all serialized by one lock. Multiple independent clients may coexist
// as long as they use distinct sender IDs or distinct transports.
type Client struct {
	host     Host
	senderID uint16
	log      hclog.Logger
	timeout  time.Duration
	retries  int

	mu       sync.Mutex
	registry *types.Registry
	settings []*setting
	requests []*request
	subs     []*subscription
	closed   bool
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l hclog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithTimeout sets the per-try reply timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithRetries sets how many times a request is sent before the
// operation reports a timeout.
func WithRetries(n int) Option {
	return func(c *Client) { c.retries = n }
}

// New creates a settings client on the given host transport. senderID
// identifies this process on the bus.
func New(host Host, senderID uint16, opts ...Option) *Client {
	c := &Client{
		host:     host,
		senderID: senderID,
		log:      hclog.NewNullLogger(),
		timeout:  DefaultTimeout,
		retries:  DefaultRetries,
		registry: types.NewRegistry(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SenderID returns the client's own sender ID.
func (c *Client) SenderID() uint16 {
	return c.senderID
}

// RegisterEnum registers an enum type from its value names and returns
// the assigned type ID, to be used when registering or watching
// settings of that type.
func (c *Client) RegisterEnum(names ...string) (types.Type, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return 0, ErrClosed
	}
	return c.registry.RegisterEnum(names...)
}

// Close unregisters every transport callback and marks the client
// unusable. Pending operations finish by timing out. Unregistration
// failures are collected and returned together.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	subs := c.subs
	c.subs = nil
	c.mu.Unlock()

	var merr *multierror.Error
	for _, sub := range subs {
		if err := c.host.UnregisterCallback(sub.handle); err != nil {
			merr = multierror.Append(merr, err)
		}
	}
	return merr.ErrorOrNil()
}
