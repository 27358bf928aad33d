package model

import (
	"database/sql/driver"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// DefaultWorkspaceColor is the color of the default workspace (#4285F4).
var DefaultWorkspaceColor = Color{0x42, 0x85, 0xF4}

// Color is a 3-byte RGB value. It is stored as a 3-byte BLOB and exposed as
// "#RRGGBB" at the JSON boundary.
type Color [3]byte

// ParseColor decodes "#RRGGBB" or "RRGGBB" (either case).
func ParseColor(s string) (Color, error) {
	var c Color
	raw := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(raw) != 6 {
		return c, InvalidArgumentf("invalid color %q: want #RRGGBB", s)
	}
	if _, err := hex.Decode(c[:], []byte(raw)); err != nil {
		return c, InvalidArgumentf("invalid color %q: want #RRGGBB", s)
	}
	return c, nil
}

// MustParseColor is like ParseColor but panics on error.
func MustParseColor(s string) Color {
	c, err := ParseColor(s)
	if err != nil {
		panic(err)
	}
	return c
}

// String returns the color as "#RRGGBB" in upper case.
func (c Color) String() string {
	return "#" + strings.ToUpper(hex.EncodeToString(c[:]))
}

// MarshalJSON encodes the color as a "#RRGGBB" string.
func (c Color) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// UnmarshalJSON decodes a "#RRGGBB" string.
func (c *Color) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("color: %w", err)
	}
	parsed, err := ParseColor(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Value implements driver.Valuer. Colors are stored as raw bytes.
func (c Color) Value() (driver.Value, error) {
	return c[:], nil
}

// Scan implements sql.Scanner.
func (c *Color) Scan(src any) error {
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("scan color: unexpected type %T", src)
	}
	if len(b) != len(c) {
		return fmt.Errorf("scan color: got %d bytes, want %d", len(b), len(c))
	}
	copy(c[:], b)
	return nil
}
