package geo_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vreid/fairway/internal/pkg/geo"
)

type scriptedProvider struct {
	samples     []geo.Sample
	orientation bool
	calls       int
	onCall      func(n int)
}

func (p *scriptedProvider) Sample(ctx context.Context) (geo.Sample, error) {
	p.calls++

	if p.onCall != nil {
		p.onCall(p.calls)
	}

	if err := ctx.Err(); err != nil {
		return geo.Sample{}, err
	}

	return p.samples[(p.calls-1)%len(p.samples)], nil
}

func (p *scriptedProvider) HasOrientation() bool {
	return p.orientation
}

func TestCapture(t *testing.T) {
	t.Parallel()

	provider := &scriptedProvider{
		samples: []geo.Sample{
			sampleAt(offset(origin, 0, 0.5), 1.5, 0),
			sampleAt(offset(origin, 0, -0.5), 1.5, 1),
			sampleAt(offset(origin, 0.5, 0), 1.5, 2),
			sampleAt(offset(origin, -0.5, 0), 1.5, 3),
			sampleAt(offset(origin, 80, 0), 1.5, 4),
		},
		orientation: true,
	}

	service := geo.NewCaptureService(provider, geo.CaptureConfig{Samples: 10})

	shot, err := service.Capture(context.Background(), "alice")
	require.NoError(t, err)

	assert.Equal(t, 10, provider.calls)
	assert.Equal(t, "alice", shot.PlayerID)
	assert.Equal(t, geo.MethodMultiSample, shot.Method)
	assert.Equal(t, geo.GradeHigh, shot.Grade)
	assert.InDelta(t, 0, geo.Haversine(origin, shot.Position), 0.01)
}

func TestCaptureCancelledDiscardsSamples(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	provider := &scriptedProvider{
		samples: []geo.Sample{sampleAt(origin, 1, 0)},
		onCall: func(n int) {
			if n == 4 {
				cancel()
			}
		},
	}

	service := geo.NewCaptureService(provider, geo.CaptureConfig{Samples: 10})

	shot, err := service.Capture(ctx, "bob")
	require.ErrorIs(t, err, geo.ErrInsufficientGPSData)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Empty(t, shot.PlayerID)
	assert.Empty(t, shot.Grade)
}

func TestCaptureProviderFailure(t *testing.T) {
	t.Parallel()

	service := geo.NewCaptureService(failingProvider{}, geo.DefaultCaptureConfig())

	_, err := service.Capture(context.Background(), "carol")
	require.Error(t, err)
	assert.NotErrorIs(t, err, geo.ErrInsufficientGPSData)
}

type failingProvider struct{}

func (failingProvider) Sample(context.Context) (geo.Sample, error) {
	return geo.Sample{}, errors.New("sensor offline")
}

func (failingProvider) HasOrientation() bool {
	return false
}

func TestReplayProvider(t *testing.T) {
	t.Parallel()

	provider := &geo.ReplayProvider{
		Samples: []geo.Sample{
			sampleAt(offset(origin, 0, 1), 3, 0),
			sampleAt(offset(origin, 0, -1), 3, 1),
			sampleAt(offset(origin, 1, 0), 3, 2),
		},
	}

	service := geo.NewCaptureService(provider, geo.CaptureConfig{Samples: 3})

	shot, err := service.Capture(context.Background(), "bob")
	require.NoError(t, err)
	assert.InDelta(t, 0, geo.Haversine(origin, shot.Position), 1)
	assert.False(t, provider.HasOrientation())

	_, err = provider.Sample(context.Background())
	require.ErrorIs(t, err, geo.ErrReplayExhausted)
}
