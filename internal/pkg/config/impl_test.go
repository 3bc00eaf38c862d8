package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vreid/fairway/internal/pkg/config"
)

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	games, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, "USD", games.Currency)
	assert.Equal(t, 5*time.Minute, games.WagerTTL)
	assert.Equal(t, 10, games.Capture.Samples)

	missing, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, games.Currency, missing.Currency)
}

func TestLoadOverrides(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "games.yaml")
	err := os.WriteFile(path, []byte(`
currency: EUR
wager_ttl: 90s
skins:
  base_pot: "2.50"
wolf:
  base_amount: 3
  lone_wolf_multiplier: 3
thresholds:
  closest_to_pin: 4
capture:
  samples: 6
`), 0600)
	require.NoError(t, err)

	games, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "EUR", games.Currency)
	assert.Equal(t, 90*time.Second, games.WagerTTL)
	assert.True(t, games.Skins.BasePot.Equal(decimal.RequireFromString("2.5")))
	assert.True(t, games.Wolf.BaseAmount.Equal(decimal.NewFromInt(3)))
	assert.True(t, games.Snake.Amount.Equal(decimal.NewFromInt(1)))
	assert.InDelta(t, 4.0, games.Thresholds.ClosestToPin, 1e-9)
	assert.InDelta(t, 10.0, games.Thresholds.LongestDrive, 1e-9)
	assert.Equal(t, 6, games.CaptureConfig().Samples)
	assert.Equal(t, 3, games.CaptureConfig().MinSamples)
}

func TestLoadRejectsBadYAML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "games.yaml")
	require.NoError(t, os.WriteFile(path, []byte("wager_ttl: [1, 2"), 0600))

	_, err := config.Load(path)
	require.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte("wager_ttl: 0s"), 0600))

	_, err = config.Load(path)
	require.Error(t, err)
}
