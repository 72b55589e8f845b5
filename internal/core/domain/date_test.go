package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	t.Parallel()

	t.Run("Valid calendar days", func(t *testing.T) {
		for _, s := range []string{"2024-01-01", "2024-02-29", " 2025-12-31 "} {
			_, err := ParseDate(s)
			assert.NoError(t, err, s)
		}
	})

	t.Run("Malformed or out of range days", func(t *testing.T) {
		for _, s := range []string{"", "   ", "2024-13-01", "2023-02-29", "2024-02-30", "01/02/2024", "2024-1-1", "today"} {
			_, err := ParseDate(s)
			assert.ErrorIs(t, err, ErrInvalidDate, s)
		}
	})
}

func TestNormalizeDate(t *testing.T) {
	d, err := NormalizeDate(" 2024-03-05")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-05", d)
}
