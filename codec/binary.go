package codec

import (
	"encoding/base64"
	"fmt"

	json "github.com/goccy/go-json"
)

// Binary is the protocol's "binary" type: raw bytes carried as a base64
// string.
type Binary []byte

// MarshalJSON encodes b with standard base64 padding.
func (b Binary) MarshalJSON() ([]byte, error) {
	return json.Marshal(base64.StdEncoding.EncodeToString(b))
}

// UnmarshalJSON accepts a base64 string or null.
func (b *Binary) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*b = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("codec: binary: %w", err)
	}
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return fmt.Errorf("codec: binary: %w", err)
	}
	*b = raw
	return nil
}

func (b Binary) String() string { return base64.StdEncoding.EncodeToString(b) }
