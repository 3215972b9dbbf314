package main

import (
	"flag"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/numkit/blasprobe/internal/mangle"
)

func TestBuildConvention(t *testing.T) {
	// Subtests share the process-wide flag set; they run in order and
	// each later one layers more explicit flags on top.

	t.Run("default preset", func(t *testing.T) {
		conv, err := buildConvention()
		require.NoError(t, err)
		assert.True(t, conv.TrailingUnderscore)
		assert.Equal(t, mangle.LP64, conv.Width)
		assert.Equal(t, "dgesv_", conv.Symbol("dgesv"))
	})

	t.Run("unknown preset", func(t *testing.T) {
		require.NoError(t, flag.Set("convention", "vendor-nobody-ships"))
		defer flag.Set("convention", "netlib")

		_, err := buildConvention()
		assert.Error(t, err)
	})

	t.Run("flag overrides", func(t *testing.T) {
		require.NoError(t, flag.Set("suffix", "64_"))
		require.NoError(t, flag.Set("ilp64", "true"))

		conv, err := buildConvention()
		require.NoError(t, err)
		assert.Equal(t, mangle.ILP64, conv.Width)
		assert.Equal(t, "dgemm_64_", conv.Symbol("dgemm"))
	})
}
