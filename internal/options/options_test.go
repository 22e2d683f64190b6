package options

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type tileConfig struct {
	TileSize int
	Name     string
}

func withTileSize(n int) Option[*tileConfig] {
	return New(func(c *tileConfig) error {
		if n <= 0 {
			return errors.New("tile size must be positive")
		}
		c.TileSize = n

		return nil
	})
}

func withName(name string) Option[*tileConfig] {
	return NoError(func(c *tileConfig) {
		c.Name = name
	})
}

func TestApply(t *testing.T) {
	cfg := &tileConfig{}

	err := Apply(cfg, withTileSize(512), withName("mtbs"))
	require.NoError(t, err)
	require.Equal(t, 512, cfg.TileSize)
	require.Equal(t, "mtbs", cfg.Name)
}

func TestApply_StopsAtFirstError(t *testing.T) {
	cfg := &tileConfig{}

	err := Apply(cfg, withName("first"), withTileSize(0), withName("never"))
	require.Error(t, err)
	require.Equal(t, "first", cfg.Name)
}

func TestApply_SkipsNil(t *testing.T) {
	cfg := &tileConfig{}

	require.NoError(t, Apply(cfg, nil, withName("x")))
	require.Equal(t, "x", cfg.Name)
}

func TestBuild_DoesNotMutateDefaults(t *testing.T) {
	defaults := tileConfig{TileSize: 64, Name: "default"}

	cfg, err := Build(defaults, withTileSize(128))
	require.NoError(t, err)
	require.Equal(t, 128, cfg.TileSize)
	require.Equal(t, "default", cfg.Name)
	require.Equal(t, 64, defaults.TileSize)

	cfg, err = Build(defaults, withTileSize(-1))
	require.Error(t, err)
	require.Equal(t, tileConfig{}, cfg)
}
