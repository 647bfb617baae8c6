package generation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satindergrewal/harmonix/internal/catalog"
	"github.com/satindergrewal/harmonix/internal/synth"
)

func seed(v uint64) *uint64 { return &v }

func TestGenerate(t *testing.T) {
	svc := NewService(nil, 2, 60)

	res, err := svc.Generate(context.Background(), Request{
		Prompt:        "smooth jazz",
		Duration:      1,
		Temperature:   1.5,
		StyleModifier: "jazz-lora",
		Seed:          seed(7),
	})
	require.NoError(t, err)

	assert.Equal(t, synth.Jazz, res.Style)
	assert.Equal(t, uint64(7), res.Seed)
	assert.True(t, res.ModifierApplied)
	assert.Len(t, res.WAV, 44+2*synth.SampleRate)
	assert.Contains(t, res.Note, "jazz-lora")
	assert.Equal(t, "advanced_simulation", res.ModelType())
	assert.True(t, svc.Catalog().Loaded("jazz-lora"))
	assert.Zero(t, svc.InFlight())
}

func TestGenerateReplaysSeed(t *testing.T) {
	svc := NewService(catalog.Default(), 1, 0)
	req := Request{Prompt: "ambient pads", Duration: 1, Temperature: 2}

	first, err := svc.Generate(context.Background(), req)
	require.NoError(t, err)

	s := first.Seed
	req.Seed = &s
	again, err := svc.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, first.WAV, again.WAV)
}

func TestGenerateMaxDuration(t *testing.T) {
	svc := NewService(nil, 1, 30)
	_, err := svc.Generate(context.Background(), Request{Prompt: "rock", Duration: 31, Temperature: 1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, synth.ErrInvalidParameter))
}

func TestGenerateInvalidParams(t *testing.T) {
	svc := NewService(nil, 1, 0)
	_, err := svc.Generate(context.Background(), Request{Prompt: "", Duration: 1})
	assert.True(t, errors.Is(err, synth.ErrInvalidParameter))
	assert.False(t, svc.Catalog().Loaded(""))
}

func TestGenerateUnknownModifierNotMarked(t *testing.T) {
	svc := NewService(nil, 1, 0)
	res, err := svc.Generate(context.Background(), Request{Prompt: "piano", Duration: 1, Temperature: 1, StyleModifier: "mystery"})
	require.NoError(t, err)
	assert.True(t, res.ModifierApplied)
	assert.Zero(t, svc.Catalog().LoadedCount())
}

func TestGenerateHonorsContextWhileWaiting(t *testing.T) {
	svc := NewService(nil, 1, 0)

	// Hold the only slot.
	require.NoError(t, svc.sem.Acquire(context.Background(), 1))
	defer svc.sem.Release(1)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := svc.Generate(ctx, Request{Prompt: "jazz", Duration: 1, Temperature: 1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Zero(t, svc.InFlight())
}
