package options

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

// buildConfig mimics the shape of the configuration structs the public
// packages drive through this plumbing.
type buildConfig struct {
	factor    int
	maxLevels int
	verbose   bool
}

func (c *buildConfig) setFactor(f int) error {
	if f < 2 {
		return errors.New("factor must be at least 2")
	}
	c.factor = f

	return nil
}

func TestNew(t *testing.T) {
	t.Run("applies fallible option", func(t *testing.T) {
		cfg := &buildConfig{}
		opt := New(func(c *buildConfig) error {
			return c.setFactor(4)
		})

		require.NoError(t, opt.apply(cfg))
		require.Equal(t, 4, cfg.factor)
	})

	t.Run("propagates validation error", func(t *testing.T) {
		cfg := &buildConfig{}
		opt := New(func(c *buildConfig) error {
			return c.setFactor(1)
		})

		err := opt.apply(cfg)
		require.Error(t, err)
		require.Contains(t, err.Error(), "factor must be at least 2")
	})
}

func TestNoError(t *testing.T) {
	cfg := &buildConfig{}
	opt := NoError(func(c *buildConfig) {
		c.verbose = true
	})

	require.NoError(t, opt.apply(cfg))
	require.True(t, cfg.verbose)
}

func TestApply(t *testing.T) {
	t.Run("applies options in order", func(t *testing.T) {
		cfg := &buildConfig{}
		err := Apply(cfg,
			New(func(c *buildConfig) error { return c.setFactor(2) }),
			NoError(func(c *buildConfig) { c.maxLevels = 40 }),
			New(func(c *buildConfig) error { return c.setFactor(8) }),
		)

		require.NoError(t, err)
		require.Equal(t, 8, cfg.factor, "later option should win")
		require.Equal(t, 40, cfg.maxLevels)
	})

	t.Run("stops at first error", func(t *testing.T) {
		cfg := &buildConfig{}
		err := Apply(cfg,
			New(func(c *buildConfig) error { return c.setFactor(2) }),
			New(func(c *buildConfig) error { return c.setFactor(0) }),
			NoError(func(c *buildConfig) { c.verbose = true }),
		)

		require.Error(t, err)
		require.Equal(t, 2, cfg.factor, "options before the failure stay applied")
		require.False(t, cfg.verbose, "options after the failure must not run")
	})

	t.Run("no options is a no-op", func(t *testing.T) {
		cfg := &buildConfig{factor: 2}
		require.NoError(t, Apply(cfg))
		require.Equal(t, 2, cfg.factor)
	})
}

func TestWithConstructorPattern(t *testing.T) {
	withFactor := func(f int) Option[*buildConfig] {
		return New(func(c *buildConfig) error { return c.setFactor(f) })
	}
	withMaxLevels := func(n int) Option[*buildConfig] {
		return NoError(func(c *buildConfig) { c.maxLevels = n })
	}

	cfg := &buildConfig{}
	require.NoError(t, Apply(cfg, withFactor(2), withMaxLevels(16)))
	require.Equal(t, 2, cfg.factor)
	require.Equal(t, 16, cfg.maxLevels)
}

func TestGenericTargets(t *testing.T) {
	t.Run("pointer to primitive", func(t *testing.T) {
		var budget int
		opt := NoError(func(n *int) { *n = 2048 })

		require.NoError(t, opt.apply(&budget))
		require.Equal(t, 2048, budget)
	})
}
