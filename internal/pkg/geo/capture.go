package geo

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// LocationProvider supplies raw readings. Implementations wrap the device
// location API of the host application.
type LocationProvider interface {
	Sample(ctx context.Context) (Sample, error)
	HasOrientation() bool
}

type CaptureConfig struct {
	Samples       int
	Interval      time.Duration
	OutlierRadius float64
	MinSamples    int
}

func DefaultCaptureConfig() CaptureConfig {
	return CaptureConfig{
		Samples:       DefaultTargetSamples,
		Interval:      200 * time.Millisecond, //nolint:mnd
		OutlierRadius: DefaultOutlierRadius,
		MinSamples:    DefaultMinSamples,
	}
}

// CaptureService takes a burst of samples and reduces them to one graded
// measurement. It owns no global state; the host creates one per provider.
type CaptureService struct {
	Provider LocationProvider
	Config   CaptureConfig
}

func NewCaptureService(provider LocationProvider, config CaptureConfig) *CaptureService {
	if config.Samples <= 0 {
		config.Samples = DefaultTargetSamples
	}

	if config.OutlierRadius <= 0 {
		config.OutlierRadius = DefaultOutlierRadius
	}

	if config.MinSamples <= 0 {
		config.MinSamples = DefaultMinSamples
	}

	return &CaptureService{
		Provider: provider,
		Config:   config,
	}
}

// Capture collects the configured number of samples for playerID. If ctx is
// cancelled before the burst completes the partial samples are discarded and
// ErrInsufficientGPSData is returned.
func (s *CaptureService) Capture(ctx context.Context, playerID string) (ShotMeasurement, error) {
	samples := make([]Sample, 0, s.Config.Samples)

	for i := range s.Config.Samples {
		if i > 0 && s.Config.Interval > 0 {
			timer := time.NewTimer(s.Config.Interval)

			select {
			case <-ctx.Done():
				timer.Stop()

				return ShotMeasurement{}, fmt.Errorf("%w: capture cancelled after %d samples: %w",
					ErrInsufficientGPSData, len(samples), ctx.Err())
			case <-timer.C:
			}
		}

		sample, err := s.Provider.Sample(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return ShotMeasurement{}, fmt.Errorf("%w: capture cancelled after %d samples: %w",
					ErrInsufficientGPSData, len(samples), err)
			}

			return ShotMeasurement{}, fmt.Errorf("failed to read sample: %w", err)
		}

		if sample.Accuracy < 0 {
			continue
		}

		samples = append(samples, sample)
	}

	if err := ctx.Err(); err != nil {
		return ShotMeasurement{}, fmt.Errorf("%w: %w", ErrInsufficientGPSData, err)
	}

	estimate, err := EstimatePosition(samples, s.Config.OutlierRadius, s.Config.MinSamples)
	if err != nil {
		return ShotMeasurement{}, err
	}

	grade := Assess(ConfidenceInput{
		Accuracy:       estimate.Accuracy,
		HasOrientation: s.Provider.HasOrientation(),
		Stability:      Stability(estimate.Kept),
		SampleCount:    len(estimate.Kept),
		TargetSamples:  s.Config.Samples,
	})

	return ShotMeasurement{
		PlayerID:   playerID,
		Position:   estimate.Position,
		Accuracy:   estimate.Accuracy,
		CapturedAt: estimate.Kept[len(estimate.Kept)-1].CapturedAt,
		Grade:      grade,
		Method:     MethodMultiSample,
	}, nil
}

var ErrReplayExhausted = errors.New("no recorded samples left")

// ReplayProvider serves samples recorded elsewhere, in order. It lets a
// server run uploaded bursts through the same capture pipeline as a device.
type ReplayProvider struct {
	Samples     []Sample
	Orientation bool

	next int
}

func (p *ReplayProvider) Sample(ctx context.Context) (Sample, error) {
	if err := ctx.Err(); err != nil {
		return Sample{}, err //nolint:wrapcheck
	}

	if p.next >= len(p.Samples) {
		return Sample{}, ErrReplayExhausted
	}

	sample := p.Samples[p.next]
	p.next++

	return sample, nil
}

func (p *ReplayProvider) HasOrientation() bool {
	return p.Orientation
}
