package options

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type readerConfig struct {
	capacity        int
	allowIncomplete bool
	applied         []string
}

var errBadCapacity = errors.New("capacity must be positive")

func withCapacity(n int) Option[*readerConfig] {
	return New(func(c *readerConfig) error {
		if n <= 0 {
			return errBadCapacity
		}
		c.capacity = n
		c.applied = append(c.applied, "capacity")

		return nil
	})
}

func withAllowIncomplete() Option[*readerConfig] {
	return NoError(func(c *readerConfig) {
		c.allowIncomplete = true
		c.applied = append(c.applied, "allowIncomplete")
	})
}

func TestApply(t *testing.T) {
	t.Run("applies options in order", func(t *testing.T) {
		cfg := &readerConfig{}
		err := Apply(cfg, withCapacity(1024), withAllowIncomplete(), withCapacity(2048))

		require.NoError(t, err)
		require.Equal(t, 2048, cfg.capacity)
		require.True(t, cfg.allowIncomplete)
		require.Equal(t, []string{"capacity", "allowIncomplete", "capacity"}, cfg.applied)
	})

	t.Run("stops at first error", func(t *testing.T) {
		cfg := &readerConfig{}
		err := Apply(cfg, withCapacity(0), withAllowIncomplete())

		require.ErrorIs(t, err, errBadCapacity)
		require.False(t, cfg.allowIncomplete)
		require.Empty(t, cfg.applied)
	})

	t.Run("no options", func(t *testing.T) {
		cfg := &readerConfig{capacity: 7}
		require.NoError(t, Apply(cfg))
		require.Equal(t, 7, cfg.capacity)
	})

	t.Run("nil options are skipped", func(t *testing.T) {
		cfg := &readerConfig{}
		require.NoError(t, Apply(cfg, nil, withAllowIncomplete()))
		require.True(t, cfg.allowIncomplete)
	})
}
