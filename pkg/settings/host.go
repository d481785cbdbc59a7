package settings

// Callback receives an inbound settings message: the SBP sender ID of
// the originating peer and the raw payload. The transport invokes it on
// whatever goroutine it reads messages from.
type Callback func(senderID uint16, payload []byte)

// CallbackHandle identifies a registered callback for later removal.
// Its concrete type belongs to the host.
type CallbackHandle any

// Host is the transport surface the settings client runs on. The client
// never touches a wire directly: it sends framed payloads through the
// host and receives inbound traffic through callbacks registered per
// message ID.
//
// Implementations must be safe for concurrent use. pkg/transport
// provides one over an io.ReadWriteCloser; testutil provides a fake.
type Host interface {
	// Send transmits a settings message with the host's own sender ID.
	Send(msgID uint16, payload []byte) error

	// SendFrom transmits a settings message with an explicit sender ID.
	// Requests addressed to the settings daemon are sent with the
	// daemon's ID so that peers can tell routed requests from local
	// ones.
	SendFrom(msgID uint16, payload []byte, senderID uint16) error

	// RegisterCallback subscribes cb to inbound messages with the given
	// ID and returns a handle for removal.
	RegisterCallback(msgID uint16, cb Callback) (CallbackHandle, error)

	// UnregisterCallback removes a previously registered callback.
	UnregisterCallback(handle CallbackHandle) error
}
