// Package revision handles browser revisions: the build number a protocol
// definition was taken from, and the marker file written next to generated
// bindings.
package revision

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	json "github.com/goccy/go-json"
)

// Min is the smallest value accepted as a revision. Smaller numbers are
// release milestones, not revisions.
const Min = 1000000

// Revision is a browser build number. The zero value means unknown.
type Revision uint32

// InvalidError reports a string that is not a revision.
type InvalidError struct {
	Value string
}

func (e *InvalidError) Error() string {
	return fmt.Sprintf("revision: %q is not a revision (want a number >= %d; smaller values are milestones)", e.Value, Min)
}

// Parse reads a decimal revision.
func Parse(s string) (Revision, error) {
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil || n < Min {
		return 0, &InvalidError{Value: s}
	}
	return Revision(n), nil
}

// MustParse is Parse for constants.
func MustParse(s string) Revision {
	r, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return r
}

func (r Revision) String() string {
	if r == 0 {
		return ""
	}
	return strconv.FormatUint(uint64(r), 10)
}

// IsZero reports whether the revision is unknown.
func (r Revision) IsZero() bool { return r == 0 }

// Compare returns -1, 0 or +1.
func Compare(a, b Revision) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// AtLeast reports whether runtime is as new as the revision the bindings
// were generated from. An unknown generated revision accepts any runtime.
func AtLeast(runtime, generated Revision) bool {
	return generated.IsZero() || runtime >= generated
}

// MarshalJSON encodes the revision as a string, or null when unknown.
func (r Revision) MarshalJSON() ([]byte, error) {
	if r.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(r.String())
}

// UnmarshalJSON accepts a string or a number.
func (r *Revision) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*r = 0
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		s = string(data)
	}
	v, err := Parse(s)
	if err != nil {
		return err
	}
	*r = v
	return nil
}

// MarkerFile is the name of the marker written next to generated code.
const MarkerFile = "revision.json"

// Marker records what generated bindings were built from.
type Marker struct {
	Revision Revision `json:"revision"`
	Protocol struct {
		Major string `json:"major"`
		Minor string `json:"minor"`
	} `json:"protocol"`
}

// NewMarker builds a marker.
func NewMarker(rev Revision, major, minor string) Marker {
	var m Marker
	m.Revision = rev
	m.Protocol.Major = major
	m.Protocol.Minor = minor
	return m
}

// Encode renders the marker as indented JSON with a trailing newline.
func (m Marker) Encode() ([]byte, error) {
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("revision: encode marker: %w", err)
	}
	return append(b, '\n'), nil
}

// DecodeMarker parses a marker.
func DecodeMarker(data []byte) (Marker, error) {
	var m Marker
	if err := json.Unmarshal(data, &m); err != nil {
		return Marker{}, fmt.Errorf("revision: decode marker: %w", err)
	}
	return m, nil
}

// ReadMarker reads a marker file. A missing file yields os.ErrNotExist.
func ReadMarker(path string) (Marker, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Marker{}, err
		}
		return Marker{}, fmt.Errorf("revision: %w", err)
	}
	return DecodeMarker(data)
}

// WriteMarker writes a marker file.
func WriteMarker(path string, m Marker) error {
	b, err := m.Encode()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("revision: %w", err)
	}
	return nil
}
