package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	t.Setenv("BANKCAT_TEST_DIR", "/var/data")

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "plain path", in: "/tmp/bankcat.db", want: "/tmp/bankcat.db"},
		{name: "tilde prefix", in: "~/db/bankcat.db", want: filepath.Join(home, "db", "bankcat.db")},
		{name: "bare tilde", in: "~", want: home},
		{name: "env var", in: "$BANKCAT_TEST_DIR/bankcat.db", want: "/var/data/bankcat.db"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpandPath(tt.in))
		})
	}
}
