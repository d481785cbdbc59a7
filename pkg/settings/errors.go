package settings

import "errors"

var (
	// ErrDuplicateSetting is returned when a section/name pair is
	// registered or watched twice on the same client.
	ErrDuplicateSetting = errors.New("duplicate setting")

	// ErrUnknownType is returned when a setting references a type ID
	// with no registered codec.
	ErrUnknownType = errors.New("unknown setting type")

	// ErrTimeout is returned when no matching reply arrived within the
	// retry budget.
	ErrTimeout = errors.New("no reply within retry budget")

	// ErrTypeMismatch is returned by Read when the type descriptor in
	// the response disagrees with the caller's expected type.
	ErrTypeMismatch = errors.New("setting types don't match")

	// ErrNoValue is returned by Read when the response carried no value
	// token, meaning the setting is not registered with the daemon.
	ErrNoValue = errors.New("setting has no value")

	// ErrClosed is returned by operations on a closed client.
	ErrClosed = errors.New("settings client closed")
)
