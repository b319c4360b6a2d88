package pipeline_test

import (
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stratawatch/cii-engine/internal/cii"
	"github.com/stratawatch/cii-engine/internal/focal"
	"github.com/stratawatch/cii-engine/internal/geo"
	"github.com/stratawatch/cii-engine/internal/observability"
	"github.com/stratawatch/cii-engine/internal/pipeline"
)

func rawEnvelope(t *testing.T, source string, payload any) []byte {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	value, err := json.Marshal(pipeline.Envelope{Source: source, Payload: data})
	require.NoError(t, err)
	return value
}

func TestDispatcher_Dispatch(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		payload any
	}{
		{name: "protests", source: "protests", payload: []cii.UnrestEvent{{Country: "FR"}}},
		{name: "conflicts", source: "conflicts", payload: []cii.ConflictEvent{{Country: "UA", EventType: "battle"}}},
		{name: "ucdp", source: "ucdp", payload: map[string]cii.UcdpStatus{"UA": {Intensity: "war"}}},
		{name: "hapi", source: "hapi", payload: map[string]cii.HapiSummary{"SD": {EventsPoliticalViolence: 10}}},
		{name: "outages", source: "outages", payload: []cii.Outage{{Country: "IQ", Scope: "major"}}},
		{name: "displacement", source: "displacement", payload: []cii.DisplacementRecord{{OriginCountry: "SD", Outflow: 100}}},
		{name: "climate", source: "climate", payload: []cii.ClimateAnomaly{{Zone: "Sahel", Countries: []string{"ML"}, Stress: 5}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := newTestEngine()
			d := pipeline.NewDispatcher(engine, nil, nil)

			require.NoError(t, d.Dispatch(rawEnvelope(t, tt.source, tt.payload)))
			assert.Equal(t, int64(1), engine.Stats().Processed)
		})
	}
}

func TestDispatcher_Dispatch_Military(t *testing.T) {
	engine := newTestEngine()
	d := pipeline.NewDispatcher(engine, nil, nil)

	payload := map[string]any{
		"flights": []cii.MilitaryFlight{{OperatorCountry: "CN", Lat: 24, Lon: 120}},
		"vessels": []cii.MilitaryVessel{{OperatorCountry: "US", Lat: 12.6, Lon: 43.3}},
	}
	require.NoError(t, d.Dispatch(rawEnvelope(t, "military", payload)))
	assert.Equal(t, int64(2), engine.Stats().Processed)
}

func TestDispatcher_Dispatch_Errors(t *testing.T) {
	engine := newTestEngine()
	d := pipeline.NewDispatcher(engine, nil, nil)

	t.Run("malformed envelope", func(t *testing.T) {
		assert.Error(t, d.Dispatch([]byte("not-json{{{")))
	})

	t.Run("unknown source", func(t *testing.T) {
		assert.ErrorContains(t, d.Dispatch(rawEnvelope(t, "bogus", map[string]string{})), "bogus")
	})

	t.Run("payload shape mismatch", func(t *testing.T) {
		assert.Error(t, d.Dispatch(rawEnvelope(t, "protests", "not-a-list")))
	})
}

func TestDispatcher_FeedsConvergenceGrid(t *testing.T) {
	engine := newTestEngine()
	grid := geo.NewConvergenceGrid()
	d := pipeline.NewDispatcher(engine, grid, nil)

	require.NoError(t, d.Dispatch(rawEnvelope(t, "protests", []cii.UnrestEvent{{Country: "IQ", Lat: 33.3, Lon: 44.4}})))
	require.NoError(t, d.Dispatch(rawEnvelope(t, "conflicts", []cii.ConflictEvent{{Country: "IQ", EventType: "battle", Lat: 33.3, Lon: 44.4}})))
	require.NoError(t, d.Dispatch(rawEnvelope(t, "outages", []cii.Outage{{Country: "IQ", Scope: "major", Lat: 33.3, Lon: 44.4}})))

	alerts := grid.Detect(nil)
	require.Len(t, alerts, 1)
	assert.Equal(t, []string{"conflict", "outage", "protest"}, alerts[0].Types)
}

func TestDispatcher_AfterBatch_RunsFocalAnalysis(t *testing.T) {
	engine := newTestEngine()
	detector := focal.NewDetector(nil, slog.Default(), observability.NewMetricsForTesting())
	d := pipeline.NewDispatcher(engine, nil, detector)

	// No focal inputs yet: AfterBatch must not analyze.
	d.AfterBatch()
	assert.Nil(t, detector.LastSummary())

	clusters := []cii.NewsCluster{{Title: "Shelling intensifies across Lebanon", SourcesPerHour: 3}}
	require.NoError(t, d.Dispatch(rawEnvelope(t, "news", clusters)))
	require.NoError(t, d.Dispatch(rawEnvelope(t, "signals", map[string]focal.SignalCluster{
		"LB": {Types: map[string]int{"conflict": 2}, Total: 2},
	})))

	d.AfterBatch()
	summary := detector.LastSummary()
	require.NotNil(t, summary)
	assert.NotEmpty(t, summary.Points)

	// Inputs unchanged: the cached summary is reused, not recomputed.
	d.AfterBatch()
	assert.Same(t, summary, detector.LastSummary())
}
