package storage

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/reactorsim/internal/engine"
	"github.com/san-kum/reactorsim/internal/kinetics"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func promptCritical(t *testing.T) *engine.Simulation {
	t.Helper()
	p := kinetics.DefaultParameters()
	p.ReactivityInsertionRate = 0.002
	p.ReactivityInsertionDuration = 4
	p.TotalSimulationTime = 10
	sim, err := engine.RunTo(context.Background(), p, p.TotalSimulationTime)
	require.NoError(t, err)
	return sim
}

func sameFloat(t *testing.T, want, got float64, msg string) {
	t.Helper()
	if math.IsNaN(want) {
		assert.True(t, math.IsNaN(got), "%s: expected NaN, got %g", msg, got)
		return
	}
	assert.Equal(t, want, got, msg)
}

func TestStore_SaveLoad(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	sim := promptCritical(t)

	before := time.Now().Add(-time.Second)
	id, err := s.Save(ctx, "excursion", sim)
	require.NoError(t, err)
	assert.Len(t, id, 36)

	meta, err := s.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, meta.ID)
	assert.Equal(t, "excursion", meta.Name)
	assert.Equal(t, "euler", meta.Integrator)
	assert.Equal(t, sim.Params(), meta.Params)
	assert.Equal(t, sim.Summary(), meta.Summary)
	assert.True(t, meta.CreatedAt.After(before))
	assert.True(t, meta.Summary.PromptCritical)

	samples, err := s.LoadSamples(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, sim.Samples(), samples)
}

func TestStore_DefaultName(t *testing.T) {
	s := newTestStore(t)
	id, err := s.Save(context.Background(), "", promptCritical(t))
	require.NoError(t, err)

	meta, err := s.Load(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id[:8], meta.Name)
}

func TestStore_PrefixLookup(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	id, err := s.Save(ctx, "a", promptCritical(t))
	require.NoError(t, err)

	meta, err := s.Load(ctx, id[:8])
	require.NoError(t, err)
	assert.Equal(t, id, meta.ID)
}

func TestStore_NotFound(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Load(ctx, "does-not-exist")
	assert.ErrorIs(t, err, ErrRunNotFound)
	_, err = s.LoadSamples(ctx, "does-not-exist")
	assert.ErrorIs(t, err, ErrRunNotFound)
	assert.ErrorIs(t, s.Delete(ctx, "does-not-exist"), ErrRunNotFound)
}

func TestStore_ListAndDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	runs, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, runs)

	id1, err := s.Save(ctx, "one", promptCritical(t))
	require.NoError(t, err)
	id2, err := s.Save(ctx, "two", promptCritical(t))
	require.NoError(t, err)

	runs, err = s.List(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	ids := []string{runs[0].ID, runs[1].ID}
	assert.ElementsMatch(t, []string{id1, id2}, ids)

	require.NoError(t, s.Delete(ctx, id1))
	runs, err = s.List(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, id2, runs[0].ID)

	_, err = s.LoadSamples(ctx, id1)
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestStore_NaNRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p := kinetics.DefaultParameters()
	p.InitialReactivity = 0.02
	p.ReactivityInsertionDuration = 0
	p.TotalSimulationTime = 60
	sim, err := engine.RunTo(ctx, p, p.TotalSimulationTime)
	require.NoError(t, err)
	last := sim.Last()
	require.True(t, math.IsNaN(last.Power) || math.IsNaN(last.Precursor), "run should overflow")

	id, err := s.Save(ctx, "overflow", sim)
	require.NoError(t, err)

	samples, err := s.LoadSamples(ctx, id)
	require.NoError(t, err)
	require.Len(t, samples, sim.Len())
	for i, want := range sim.Samples() {
		got := samples[i]
		assert.Equal(t, want.Time, got.Time)
		sameFloat(t, want.Power, got.Power, "power")
		sameFloat(t, want.ReactivityDollars, got.ReactivityDollars, "dollars")
		sameFloat(t, want.Precursor, got.Precursor, "precursor")
	}

	meta, err := s.Load(ctx, id)
	require.NoError(t, err)
	sameFloat(t, sim.Summary().FinalPower, meta.Summary.FinalPower, "final power")
}

func TestStore_Reopen(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir, nil)
	require.NoError(t, err)
	id, err := s.Save(context.Background(), "kept", promptCritical(t))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(dir, nil)
	require.NoError(t, err)
	defer s.Close()
	meta, err := s.Load(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "kept", meta.Name)
}
