package registry

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFileName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Notes", "notes.db"},
		{"My Notes", "my_notes.db"},
		{"  padded  ", "padded.db"},
		{"a/b\\c", "a_b_c.db"},
		{"../../etc/passwd", "____etc_passwd.db"},
		{"what?", "what_.db"},
		{"ÉCOLE", "école.db"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FileName(tt.name))
		})
	}
}

func TestWithinRoot(t *testing.T) {
	root := filepath.FromSlash("/data/dbs")

	tests := []struct {
		path string
		want bool
	}{
		{"/data/dbs/notes.db", true},
		{"/data/dbs/nested/notes.db", true},
		{"/data/dbs/..db", true},
		{"/data/dbs", false},
		{"/data", false},
		{"/data/other/notes.db", false},
		{"/data/dbs-evil/notes.db", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, withinRoot(root, filepath.FromSlash(tt.path)))
		})
	}
}
