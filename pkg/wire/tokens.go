package wire

import (
	"bytes"
	"fmt"
)

// TokenCount reports how many tokens a settings payload carried. The
// grammar is positional: the first token is always the section, the
// second the name, and so on.
type TokenCount int

const (
	// TokensInvalid marks a payload that is not a well formed token
	// stream (missing trailing NUL, or more than five terminators).
	TokensInvalid TokenCount = -1
	// TokensEmpty marks a zero-length payload.
	TokensEmpty TokenCount = 0
	// TokensSection means only the section token was present.
	TokensSection TokenCount = 1
	// TokensName means section and name tokens were present.
	TokensName TokenCount = 2
	// TokensValue means section, name and value tokens were present.
	TokensValue TokenCount = 3
	// TokensType means all four tokens were present.
	TokensType TokenCount = 4
	// TokensExtraNull means all four tokens plus the legacy trailing
	// empty string were present. Tolerated for compatibility with old
	// senders that terminate the payload twice.
	TokensExtraNull TokenCount = 5
)

// Fields holds the tokens parsed out of a settings payload. A field is
// meaningful only when the TokenCount returned alongside it says the
// corresponding position was present; an absent field is left empty.
type Fields struct {
	Section string
	Name    string
	Value   string
	Type    string
}

// Parse splits a settings payload into its NUL-terminated tokens.
// Token values reference positions of the input buffer content; the
// buffer itself is not retained.
func Parse(buf []byte) (Fields, TokenCount) {
	var f Fields

	if len(buf) == 0 {
		return f, TokensEmpty
	}
	if buf[len(buf)-1] != 0 {
		return f, TokensInvalid
	}

	slots := []*string{&f.Section, &f.Name, &f.Value, &f.Type}
	count := TokensEmpty
	start := 0
	for i, b := range buf {
		if b != 0 {
			continue
		}
		if int(count) < len(slots) {
			*slots[count] = string(buf[start:i])
		}
		start = i + 1
		count++
	}

	if count > TokensExtraNull {
		return Fields{}, TokensInvalid
	}
	return f, count
}

// Format concatenates up to four tokens into a settings payload, each
// terminated by a NUL. An error is returned if the result would exceed
// the SBP payload ceiling.
func Format(tokens ...string) ([]byte, error) {
	if len(tokens) > 4 {
		return nil, fmt.Errorf("settings payload holds at most 4 tokens, got %d", len(tokens))
	}

	var buf bytes.Buffer
	for _, tok := range tokens {
		buf.WriteString(tok)
		buf.WriteByte(0)
	}

	if buf.Len() > MaxPayload {
		return nil, fmt.Errorf("settings payload too long: %d > %d", buf.Len(), MaxPayload)
	}
	return buf.Bytes(), nil
}
