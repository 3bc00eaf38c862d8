package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/samber/do/v2"
	"github.com/shopspring/decimal"
	"github.com/vreid/fairway/internal/pkg/geo"
	"github.com/vreid/fairway/internal/pkg/sidegame"
	"github.com/vreid/fairway/internal/pkg/wager"
	"gopkg.in/yaml.v3"
)

type SkinsConfig struct {
	BasePot decimal.Decimal `yaml:"base_pot"`
}

type SnakeConfig struct {
	Amount decimal.Decimal `yaml:"amount"`
}

type CaptureConfig struct {
	Samples       int           `yaml:"samples"`
	Interval      time.Duration `yaml:"interval"`
	OutlierRadius float64       `yaml:"outlier_radius"`
	MinSamples    int           `yaml:"min_samples"`
	NearbyRadius  float64       `yaml:"nearby_radius"`
}

// Games holds the defaults applied to tournaments that do not set their own
// side-game stakes, plus the geo tuning used to verify shots.
type Games struct {
	Currency string        `yaml:"currency"`
	WagerTTL time.Duration `yaml:"wager_ttl"`

	Skins SkinsConfig         `yaml:"skins"`
	Wolf  sidegame.WolfConfig `yaml:"wolf"`
	Snake SnakeConfig         `yaml:"snake"`

	Thresholds wager.Thresholds `yaml:"thresholds"`
	Capture    CaptureConfig    `yaml:"capture"`
}

func Defaults() Games {
	capture := geo.DefaultCaptureConfig()

	return Games{
		Currency: "USD",
		WagerTTL: 5 * time.Minute, //nolint:mnd
		Skins:    SkinsConfig{BasePot: decimal.NewFromInt(1)},
		Wolf:     sidegame.DefaultWolfConfig(),
		Snake:    SnakeConfig{Amount: decimal.NewFromInt(1)},

		Thresholds: wager.DefaultThresholds(),
		Capture: CaptureConfig{
			Samples:       capture.Samples,
			Interval:      capture.Interval,
			OutlierRadius: capture.OutlierRadius,
			MinSamples:    capture.MinSamples,
			NearbyRadius:  geo.DefaultNearbyRadius,
		},
	}
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (Games, error) {
	games := Defaults()

	if path == "" {
		return games, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return games, nil
		}

		return Games{}, fmt.Errorf("failed to read games config: %w", err)
	}

	err = yaml.Unmarshal(b, &games)
	if err != nil {
		return Games{}, fmt.Errorf("failed to parse games config: %w", err)
	}

	if games.WagerTTL <= 0 {
		return Games{}, fmt.Errorf("invalid games config: wager_ttl must be positive, got %s", games.WagerTTL)
	}

	return games, nil
}

func NewGames(i do.Injector) (Games, error) {
	path := do.MustInvokeNamed[string](i, "games-config")

	return Load(path)
}

func (g Games) CaptureConfig() geo.CaptureConfig {
	return geo.CaptureConfig{
		Samples:       g.Capture.Samples,
		Interval:      g.Capture.Interval,
		OutlierRadius: g.Capture.OutlierRadius,
		MinSamples:    g.Capture.MinSamples,
	}
}
