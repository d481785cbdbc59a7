package wire

import "fmt"

// WriteResult is the status code of a settings write, carried as the
// leading byte of a WRITE_RESP payload and surfaced to callers.
type WriteResult uint8

const (
	WriteOK              WriteResult = 0
	WriteValueRejected   WriteResult = 1
	WriteSettingRejected WriteResult = 2
	WriteParseFailed     WriteResult = 3
	WriteReadOnly        WriteResult = 4
	WriteModifyDisabled  WriteResult = 5
	WriteServiceFailed   WriteResult = 6
	WriteTimeout         WriteResult = 7
)

var writeResultMessages = map[WriteResult]string{
	WriteOK:              "ok",
	WriteValueRejected:   "value rejected",
	WriteSettingRejected: "setting rejected",
	WriteParseFailed:     "parse failed",
	WriteReadOnly:        "read only",
	WriteModifyDisabled:  "modify disabled",
	WriteServiceFailed:   "service failed",
	WriteTimeout:         "timeout",
}

// String returns the human-readable status message.
func (r WriteResult) String() string {
	if msg, ok := writeResultMessages[r]; ok {
		return msg
	}
	return fmt.Sprintf("unknown write result (%d)", uint8(r))
}

// RegisterResult is the status code of a REGISTER_RESP message.
type RegisterResult uint8

const (
	// RegisterOK means the setting was registered and the requested
	// value was used.
	RegisterOK RegisterResult = 0
	// RegisterOKPerm means the daemon held a persisted value, which is
	// echoed back in place of the requested one.
	RegisterOKPerm RegisterResult = 1
	// RegisterRegistered means another process already owns the setting;
	// the value from memory is echoed back.
	RegisterRegistered RegisterResult = 2
	// RegisterParseFailed means the daemon could not parse the request.
	RegisterParseFailed RegisterResult = 3
)

var registerResultMessages = map[RegisterResult]string{
	RegisterOK:          "ok",
	RegisterOKPerm:      "ok, persisted value returned",
	RegisterRegistered:  "already registered",
	RegisterParseFailed: "parse failed",
}

// String returns the human-readable status message.
func (r RegisterResult) String() string {
	if msg, ok := registerResultMessages[r]; ok {
		return msg
	}
	return fmt.Sprintf("unknown register result (%d)", uint8(r))
}
