package inp

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// DecodePayload accepts a raw text or byte payload and returns
// newline-normalized UTF-8 text. Byte payloads are decoded with lossy
// replacement of ill-formed sequences and any leading BOM stripped.
// Anything that is neither text-like nor byte-like is a hard error
// naming the offending type.
func DecodePayload(payload any) (string, error) {
	switch v := payload.(type) {
	case string:
		return normalizeNewlines(v), nil
	case []byte:
		dec := unicode.UTF8BOM.NewDecoder()
		out, _, err := transform.Bytes(dec, v)
		if err != nil {
			// The UTF-8 decoder substitutes rather than fails; anything
			// else is a transform-layer problem worth surfacing.
			return "", fmt.Errorf("decode payload: %w", err)
		}
		return normalizeNewlines(string(out)), nil
	default:
		return "", fmt.Errorf("unsupported payload type %T: want string or []byte", payload)
	}
}

func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
