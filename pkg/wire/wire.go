// Package wire defines the vocabulary of the SBP settings sub-protocol:
// the message identifiers, the status codes carried in responses, and the
// NUL-delimited token grammar shared by every settings payload.
package wire

// Settings message identifiers.
const (
	MsgSettingsWrite           uint16 = 0x00A0
	MsgSettingsSave            uint16 = 0x00A1
	MsgSettingsReadByIndexReq  uint16 = 0x00A2
	MsgSettingsReadReq         uint16 = 0x00A4
	MsgSettingsReadResp        uint16 = 0x00A5
	MsgSettingsReadByIndexDone uint16 = 0x00A6
	MsgSettingsReadByIndexResp uint16 = 0x00A7
	MsgSettingsRegister        uint16 = 0x00AE
	MsgSettingsWriteResp       uint16 = 0x00AF
	MsgSettingsRegisterResp    uint16 = 0x01AF
)

// DaemonSenderID is the sender ID of the settings daemon. Settings
// messages that originate from the daemon carry this ID; messages
// claiming to be daemon traffic with any other ID are dropped.
const DaemonSenderID uint16 = 0x42

// MaxPayload is the SBP payload size ceiling.
const MaxPayload = 255

// ReadByIndexOverhead is the number of payload bytes a read-by-index
// response spends on fields other than the setting tokens (the 2-byte
// index plus the legacy trailing NUL). A setting whose formatted tokens
// exceed MaxSettingLen cannot be served by enumeration.
const ReadByIndexOverhead = 3

// MaxSettingLen is the largest formatted setting payload that still fits
// every response message kind.
const MaxSettingLen = MaxPayload - ReadByIndexOverhead
