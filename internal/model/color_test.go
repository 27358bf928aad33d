package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want Color
	}{
		{"#4285F4", Color{0x42, 0x85, 0xF4}},
		{"4285f4", Color{0x42, 0x85, 0xF4}},
		{" #000000 ", Color{}},
		{"#ffffff", Color{0xFF, 0xFF, 0xFF}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseColor(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseColor_Invalid(t *testing.T) {
	for _, in := range []string{"", "#", "#12345", "#1234567", "#GG0000", "red"} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseColor(in)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidArgument)
		})
	}
}

func TestColor_String(t *testing.T) {
	assert.Equal(t, "#4285F4", DefaultWorkspaceColor.String())
	assert.Equal(t, "#0A0B0C", Color{0x0A, 0x0B, 0x0C}.String())
}

func TestColor_JSON(t *testing.T) {
	w := Workspace{ID: 3, Name: "Work", Color: MustParseColor("#ff8800")}

	data, err := json.Marshal(w)
	require.NoError(t, err)
	assert.JSONEq(t, `{"workspace_id":3,"name":"Work","color":"#FF8800"}`, string(data))

	var decoded Workspace
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, w, decoded)
}

func TestColor_UnmarshalJSONRejectsBadHex(t *testing.T) {
	var c Color
	err := json.Unmarshal([]byte(`"#12"`), &c)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestColor_ValueAndScan(t *testing.T) {
	v, err := DefaultWorkspaceColor.Value()
	require.NoError(t, err)
	assert.Equal(t, []byte{0x42, 0x85, 0xF4}, v)

	var c Color
	require.NoError(t, c.Scan([]byte{1, 2, 3}))
	assert.Equal(t, Color{1, 2, 3}, c)

	assert.Error(t, c.Scan([]byte{1, 2}))
	assert.Error(t, c.Scan("#010203"))
}

func TestMustParseColor_Panics(t *testing.T) {
	assert.Panics(t, func() { MustParseColor("nope") })
}
