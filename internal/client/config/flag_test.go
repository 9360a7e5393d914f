package config

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{
			name: "all flags",
			args: []string{"cmd", "-a", "https://api.example/v1", "-t", "tok", "-course", "c-1", "-timeout", "5",
				"-l", "file:/tmp/l.db", "-log", "debug", "-logfmt", "json"},
			expected: &Config{
				BackendURL: "https://api.example/v1", AccessToken: "tok", CourseID: "c-1", RequestTimeout: 5 * time.Second,
				LedgerDSN: "file:/tmp/l.db", LogLevel: "debug", LogFormat: "json",
			},
		},
		{
			name:     "foreign flags are ignored",
			args:     []string{"cmd", "-c", "cfg.json", "--course=c-2", "-x", "1"},
			expected: &Config{CourseID: "c-2"},
		},
		{name: "incorrect timeout", args: []string{"cmd", "-timeout", "abc"}, expectPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args

			config := &Config{}

			if tt.expectPanic {
				require.Panics(t, func() { parseFlags(config) })
				return
			}
			require.NotPanics(t, func() { parseFlags(config) })
			assert.Empty(t, cmp.Diff(tt.expected, config))
		})
	}
}
