package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Run("positional graph path", func(t *testing.T) {
		var out bytes.Buffer
		cfg, shouldExit, err := Parse([]string{"graphs/chain.hcl"}, &out)
		require.NoError(t, err)
		assert.False(t, shouldExit)
		assert.Equal(t, "graphs/chain.hcl", cfg.GraphPath)
		assert.Equal(t, "json", cfg.LogFormat)
		assert.Equal(t, "info", cfg.LogLevel)
	})

	t.Run("graph flag wins over positional", func(t *testing.T) {
		var out bytes.Buffer
		cfg, _, err := Parse([]string{"-graph", "a.hcl", "b.hcl"}, &out)
		require.NoError(t, err)
		assert.Equal(t, "a.hcl", cfg.GraphPath)
	})

	t.Run("shorthand flag", func(t *testing.T) {
		var out bytes.Buffer
		cfg, _, err := Parse([]string{"-g", "a.hcl"}, &out)
		require.NoError(t, err)
		assert.Equal(t, "a.hcl", cfg.GraphPath)
	})

	t.Run("no path prints usage and exits cleanly", func(t *testing.T) {
		var out bytes.Buffer
		cfg, shouldExit, err := Parse(nil, &out)
		require.NoError(t, err)
		assert.True(t, shouldExit)
		assert.Nil(t, cfg)
		assert.Contains(t, out.String(), "Usage:")
	})

	t.Run("help exits cleanly", func(t *testing.T) {
		var out bytes.Buffer
		_, shouldExit, err := Parse([]string{"-h"}, &out)
		require.NoError(t, err)
		assert.True(t, shouldExit)
	})

	t.Run("log options are lowercased", func(t *testing.T) {
		var out bytes.Buffer
		cfg, _, err := Parse([]string{"-log-format", "TEXT", "-log-level", "DEBUG", "a.hcl"}, &out)
		require.NoError(t, err)
		assert.Equal(t, "text", cfg.LogFormat)
		assert.Equal(t, "debug", cfg.LogLevel)
	})

	t.Run("invalid log format", func(t *testing.T) {
		var out bytes.Buffer
		_, _, err := Parse([]string{"-log-format", "xml", "a.hcl"}, &out)
		var exitErr *ExitError
		require.ErrorAs(t, err, &exitErr)
		assert.Equal(t, 2, exitErr.Code)
		assert.Contains(t, exitErr.Message, "invalid log-format")
	})

	t.Run("invalid log level", func(t *testing.T) {
		var out bytes.Buffer
		_, _, err := Parse([]string{"-log-level", "loud", "a.hcl"}, &out)
		var exitErr *ExitError
		require.ErrorAs(t, err, &exitErr)
		assert.Equal(t, 2, exitErr.Code)
		assert.Contains(t, exitErr.Message, "invalid log-level")
	})

	t.Run("unknown flag", func(t *testing.T) {
		var out bytes.Buffer
		_, _, err := Parse([]string{"-bogus"}, &out)
		var exitErr *ExitError
		require.ErrorAs(t, err, &exitErr)
		assert.Equal(t, 2, exitErr.Code)
	})
}
