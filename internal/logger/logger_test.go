package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew(t *testing.T) {
	t.Run("Production honours the level", func(t *testing.T) {
		log, err := New("production", "warn")
		require.NoError(t, err)

		assert.False(t, log.Core().Enabled(zap.InfoLevel))
		assert.True(t, log.Core().Enabled(zap.WarnLevel))
	})

	t.Run("Development defaults to debug", func(t *testing.T) {
		log, err := New("development", "")
		require.NoError(t, err)

		assert.True(t, log.Core().Enabled(zap.DebugLevel))
	})

	t.Run("Unknown level", func(t *testing.T) {
		_, err := New("development", "loud")
		assert.Error(t, err)
	})
}
