package dto

import (
	"encoding/hex"
	"encoding/json"

	"github.com/pkg/errors"
)

// HexBytes is an opaque blob carried as a lowercase hex string on the wire.
type HexBytes []byte

// MarshalJSON encodes the bytes as a hex string.
func (h HexBytes) MarshalJSON() ([]byte, error) {
	return json.Marshal(hex.EncodeToString(h))
}

// UnmarshalJSON decodes a hex string. JSON null leaves the value nil so
// `binding:"required"` can tell a missing field from an empty one.
func (h *HexBytes) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*h = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return errors.Wrap(err, "hex field must be a string")
	}
	b, err := ParseHex(s)
	if err != nil {
		return err
	}
	*h = b
	return nil
}

// String returns the hex form.
func (h HexBytes) String() string {
	return hex.EncodeToString(h)
}

// ParseHex decodes s, accepting an optional 0x prefix.
func ParseHex(s string) (HexBytes, error) {
	if len(s) >= 2 && (s[:2] == "0x" || s[:2] == "0X") {
		s = s[2:]
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid hex %q", s)
	}
	if b == nil {
		b = []byte{}
	}
	return HexBytes(b), nil
}
