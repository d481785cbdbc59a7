package testutil

// Payload builds a NUL-delimited settings payload from tokens.
func Payload(tokens ...string) []byte {
	var buf []byte
	for _, tok := range tokens {
		buf = append(buf, tok...)
		buf = append(buf, 0)
	}
	return buf
}

// StatusPayload prepends a status byte to a token payload, the shape of
// register and write responses.
func StatusPayload(status byte, tokens ...string) []byte {
	return append([]byte{status}, Payload(tokens...)...)
}

// IndexPayload prepends a little-endian index to a token payload, the
// shape of read-by-index responses.
func IndexPayload(idx uint16, tokens ...string) []byte {
	buf := []byte{byte(idx), byte(idx >> 8)}
	return append(buf, Payload(tokens...)...)
}
