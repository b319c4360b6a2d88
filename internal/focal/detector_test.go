package focal_test

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stratawatch/cii-engine/internal/cii"
	"github.com/stratawatch/cii-engine/internal/focal"
	"github.com/stratawatch/cii-engine/internal/observability"
)

func newTestDetector() *focal.Detector {
	return focal.NewDetector(nil, slog.Default(), observability.NewMetricsForTesting())
}

func findPoint(t *testing.T, points []focal.FocalPoint, entityID string) focal.FocalPoint {
	t.Helper()
	for i := range points {
		if points[i].EntityID == entityID {
			return points[i]
		}
	}
	t.Fatalf("no focal point for %s", entityID)
	return focal.FocalPoint{}
}

func TestAnalyze_CorrelatedEntity(t *testing.T) {
	d := newTestDetector()

	clusters := []cii.NewsCluster{
		{Title: "Shelling reported in southern Lebanon", Summary: "Cross-border exchanges continue."},
		{Title: "Lebanon border villages evacuated", Summary: ""},
	}
	signals := map[string]focal.SignalCluster{
		"LB": {Types: map[string]int{"conflict": 2, "military": 1}, Total: 3},
	}

	summary := d.Analyze(clusters, signals)
	require.NotNil(t, summary)
	require.NotEmpty(t, summary.Points)

	lb := findPoint(t, summary.Points, "country:LB")
	assert.Equal(t, "LB", lb.CountryCode)
	assert.Equal(t, 2, lb.Mentions)
	assert.Equal(t, 3, lb.SignalCount)
	assert.Equal(t, []string{"conflict", "military"}, lb.SignalTypes)
	assert.Equal(t, cii.UrgencyElevated, lb.Urgency)
	assert.Greater(t, lb.FocalScore, 50.0)
	assert.NotEmpty(t, lb.Narrative)
	assert.NotEmpty(t, lb.Evidence)
}

func TestAnalyze_HeadlinesRequireTitleMention(t *testing.T) {
	d := newTestDetector()

	clusters := []cii.NewsCluster{
		{Title: "Regional tensions rise", Summary: "Protests continue across Lebanon."},
		{Title: "Beirut port workers strike", Summary: ""},
	}

	summary := d.Analyze(clusters, nil)
	lb := findPoint(t, summary.Points, "country:LB")

	// The first cluster only mentions Lebanon in the body; the second title
	// hits via the "beirut" alias.
	assert.Equal(t, 2, lb.Mentions)
	assert.Equal(t, []string{"Beirut port workers strike"}, lb.TopHeadlines)
}

func TestAnalyze_OrgResolvesToSignalCountry(t *testing.T) {
	d := newTestDetector()

	clusters := []cii.NewsCluster{
		{Title: "Wagner Group expands operations", Summary: ""},
	}
	// RU carries no signals; ML does, so the org resolves there.
	signals := map[string]focal.SignalCluster{
		"ML": {Types: map[string]int{"conflict": 2}, Total: 2},
	}

	summary := d.Analyze(clusters, signals)
	wagner := findPoint(t, summary.Points, "org:wagner")
	assert.Equal(t, "ML", wagner.CountryCode)
}

func TestAnalyze_SignalOnlySynthesis(t *testing.T) {
	d := newTestDetector()

	signals := map[string]focal.SignalCluster{
		"SD": {Types: map[string]int{"conflict": 3, "outage": 1}, Total: 4, HighSeverity: 1},
		"FR": {Types: map[string]int{"protest": 1}, Total: 1},
	}

	summary := d.Analyze(nil, signals)
	require.Len(t, summary.Points, 1, "weak signal clusters are not synthesized")

	sd := summary.Points[0]
	assert.Equal(t, "country:SD", sd.EntityID)
	assert.Equal(t, "Sudan", sd.Name)
	assert.Zero(t, sd.Mentions)
	assert.Equal(t, 4, sd.SignalCount)
	assert.Contains(t, sd.Narrative, "no direct news focus")
}

func TestAnalyze_CriticalAIContext(t *testing.T) {
	d := newTestDetector()

	// Three signal types push urgency straight to critical.
	signals := map[string]focal.SignalCluster{
		"UA": {Types: map[string]int{"military": 2, "conflict": 5, "naval": 1}, Total: 8, HighSeverity: 3},
	}

	summary := d.Analyze(nil, signals)
	require.Len(t, summary.Points, 1)
	assert.Equal(t, cii.UrgencyCritical, summary.Points[0].Urgency)
	assert.Contains(t, summary.AIContext, "CRITICAL FOCAL POINTS:")
	assert.Contains(t, summary.AIContext, "Ukraine")
}

func TestCountryUrgency(t *testing.T) {
	d := newTestDetector()
	assert.Empty(t, d.CountryUrgency(), "no urgency before the first analysis")

	signals := map[string]focal.SignalCluster{
		"SD": {Types: map[string]int{"conflict": 3, "outage": 1}, Total: 4, HighSeverity: 1},
	}
	d.Analyze(nil, signals)

	urgency := d.CountryUrgency()
	require.Contains(t, urgency, "SD")

	// The returned map is a copy; mutating it must not affect the detector.
	urgency["SD"] = "tampered"
	assert.NotEqual(t, "tampered", d.CountryUrgency()["SD"])
}

func TestLastSummary(t *testing.T) {
	d := newTestDetector()
	assert.Nil(t, d.LastSummary())

	first := d.Analyze(nil, map[string]focal.SignalCluster{
		"SD": {Types: map[string]int{"conflict": 3, "outage": 1, "protest": 2}, Total: 6},
	})
	assert.Same(t, first, d.LastSummary())
}

func TestKeywordExtractor(t *testing.T) {
	x := focal.NewKeywordExtractor()

	t.Run("title hit outranks body hit", func(t *testing.T) {
		entities := x.Extract("Protests spread across Iran", "Unrest also reported in Iraq.")

		var ir, iq *focal.Entity
		for i := range entities {
			switch entities[i].ID {
			case "country:IR":
				ir = &entities[i]
			case "country:IQ":
				iq = &entities[i]
			}
		}
		require.NotNil(t, ir)
		require.NotNil(t, iq)
		assert.InDelta(t, 0.9, ir.Confidence, 0.001)
		assert.InDelta(t, 0.6, iq.Confidence, 0.001)
	})

	t.Run("org extraction", func(t *testing.T) {
		entities := x.Extract("NATO ministers convene emergency session", "")
		require.NotEmpty(t, entities)
		assert.Equal(t, "org:nato", entities[len(entities)-1].ID)
		assert.Equal(t, "org", entities[len(entities)-1].Type)
	})

	t.Run("no entities in neutral text", func(t *testing.T) {
		assert.Empty(t, x.Extract("Markets calm after quiet weekend", ""))
	})
}
