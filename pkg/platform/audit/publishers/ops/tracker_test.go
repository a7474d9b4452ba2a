package ops

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audit "onboard/pkg/platform/audit"
	"onboard/pkg/platform/audit/store/memory"
)

func TestTracker_Track(t *testing.T) {
	store := memory.NewInMemoryStore()
	metrics := NewMetrics(prometheus.NewRegistry())
	sampler := NewSampler(1, map[string]float64{string(audit.EventIdentityMatched): 0})
	tracker := New(store, WithSampler(sampler), WithMetrics(metrics))

	tracker.Track(context.Background(), audit.OpsEvent{Subject: "c/r", Action: audit.EventClaimSubmitted})
	tracker.Track(context.Background(), audit.OpsEvent{Subject: "c/r", Action: audit.EventIdentityMatched})

	events, err := store.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, string(audit.EventClaimSubmitted), events[0].Action)
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.Tracked))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.Sampled))
}

func TestSampler_Rates(t *testing.T) {
	s := NewSampler(0.5, map[string]float64{"always": 7, "never": -1})
	s.random = func() float64 { return 0.49 }

	assert.True(t, s.ShouldSample("always"))
	assert.False(t, s.ShouldSample("never"))
	assert.True(t, s.ShouldSample("default"))

	s.random = func() float64 { return 0.51 }
	assert.False(t, s.ShouldSample("default"))
}
