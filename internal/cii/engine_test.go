package cii_test

import (
	"log/slog"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stratawatch/cii-engine/internal/cii"
	"github.com/stratawatch/cii-engine/internal/geo"
	"github.com/stratawatch/cii-engine/internal/observability"
)

type stubBoundaries struct {
	code string
}

func (s *stubBoundaries) CountryAt(_, _ float64) string { return s.code }

type stubFocal struct {
	urgency map[string]string
}

func (s *stubFocal) CountryUrgency() map[string]string { return s.urgency }

func newTestEngine(opts ...cii.Option) *cii.Engine {
	return cii.New(geo.NewAttributor(nil), slog.Default(), observability.NewMetricsForTesting(), opts...)
}

func findScore(t *testing.T, scores []cii.CountryScore, code string) cii.CountryScore {
	t.Helper()
	for i := range scores {
		if scores[i].Code == code {
			return scores[i]
		}
	}
	t.Fatalf("no score for %s", code)
	return cii.CountryScore{}
}

func TestCalculateCII_BaselineOnly(t *testing.T) {
	e := newTestEngine()

	scores := e.CalculateCII()
	require.NotEmpty(t, scores)

	for i := 1; i < len(scores); i++ {
		assert.GreaterOrEqual(t, scores[i-1].Score, scores[i].Score, "snapshot must be sorted descending")
	}
	for i := range scores {
		assert.GreaterOrEqual(t, scores[i].Score, 0.0)
		assert.LessOrEqual(t, scores[i].Score, 100.0)
	}

	// With no live data the score is the weighted curated baseline.
	fr := findScore(t, scores, "FR")
	assert.InDelta(t, 9, fr.Score, 0.001) // round(22 * 0.4)
	assert.Equal(t, "France", fr.Name)
	assert.Equal(t, "low", fr.Level)
}

func TestCalculateCII_UcdpFloor(t *testing.T) {
	e := newTestEngine()
	e.IngestUcdp(map[string]cii.UcdpStatus{"UA": {Intensity: "war"}})

	ua := findScore(t, e.CalculateCII(), "UA")
	assert.InDelta(t, 70, ua.Score, 0.001)
	assert.Equal(t, "high", ua.Level)
}

func TestCalculateCII_TrendStableOnRepeat(t *testing.T) {
	e := newTestEngine()
	e.IngestUcdp(map[string]cii.UcdpStatus{"SD": {Intensity: "war"}})

	e.CalculateCII()
	for _, s := range e.CalculateCII() {
		assert.Equal(t, "stable", s.Trend, "country %s", s.Code)
		assert.Zero(t, s.Change24h, "country %s", s.Code)
	}
}

func TestCountryScore(t *testing.T) {
	t.Run("rising trend after new data", func(t *testing.T) {
		e := newTestEngine()
		e.CalculateCII()

		e.IngestUcdp(map[string]cii.UcdpStatus{"LB": {Intensity: "war"}})

		lb, ok := e.CountryScore("Lebanon")
		require.True(t, ok)
		assert.InDelta(t, 70, lb.Score, 0.001)
		assert.Equal(t, "rising", lb.Trend)
		assert.InDelta(t, 45, lb.Change24h, 0.001) // baseline-only pass scored 25
	})

	t.Run("unattributable input", func(t *testing.T) {
		e := newTestEngine()
		_, ok := e.CountryScore("Atlantis")
		assert.False(t, ok)
	})
}

func TestTopUnstableCountries(t *testing.T) {
	e := newTestEngine()
	top := e.TopUnstableCountries(5)
	require.Len(t, top, 5)
	assert.GreaterOrEqual(t, top[0].Score, top[4].Score)
}

func TestIngestProtests_Attribution(t *testing.T) {
	e := newTestEngine()
	e.IngestProtests([]cii.UnrestEvent{
		{Country: "France", Severity: "high", Fatalities: 1},
		{Country: "FRA"},
		{Country: "nowhere in particular"},
	})

	stats := e.Stats()
	assert.Equal(t, int64(3), stats.Processed)
	assert.Equal(t, int64(1), stats.Unmapped)

	fr, ok := e.CountryScore("FR")
	require.True(t, ok)
	assert.Greater(t, fr.Components.Unrest, 0.0)
}

func TestIngestMilitary_ForeignPresence(t *testing.T) {
	// Every coordinate resolves to TW, so the CN-operated flight also lands
	// two foreign-presence placeholders on TW.
	e := cii.New(geo.NewAttributor(&stubBoundaries{code: "TW"}),
		slog.Default(), observability.NewMetricsForTesting())

	e.IngestMilitary([]cii.MilitaryFlight{
		{Lat: 24.0, Lon: 120.5, OperatorCountry: "CN"},
	}, nil)

	cn, ok := e.CountryScore("CN")
	require.True(t, ok)
	assert.InDelta(t, 3, cn.Components.Security, 0.001)

	tw, ok := e.CountryScore("TW")
	require.True(t, ok)
	assert.InDelta(t, 6, tw.Components.Security, 0.001)
}

func TestIngestNews_MultiCountry(t *testing.T) {
	e := newTestEngine()
	e.IngestNews([]cii.NewsCluster{{
		Title:          "Ukraine and Russia trade strikes overnight",
		SourceCount:    6,
		SourcesPerHour: 3,
	}})

	for _, code := range []string{"UA", "RU"} {
		s, ok := e.CountryScore(code)
		require.True(t, ok)
		assert.Greater(t, s.Components.Information, 0.0, "country %s", code)
	}
}

func TestIngestDisplacement_ReplacesSnapshot(t *testing.T) {
	e := newTestEngine()

	e.IngestDisplacement([]cii.DisplacementRecord{{OriginCountry: "SD", Outflow: 2_000_000}})
	sd, ok := e.CountryScore("SD")
	require.True(t, ok)
	withBoost := sd.Score

	// A later snapshot without SD clears its outflow entirely.
	e.IngestDisplacement([]cii.DisplacementRecord{{OriginCountry: "UA", Outflow: 500_000}})
	sd, ok = e.CountryScore("SD")
	require.True(t, ok)
	assert.InDelta(t, withBoost-8, sd.Score, 0.001)
}

func TestFocalBoost(t *testing.T) {
	e := newTestEngine()
	e.AttachFocalSource(&stubFocal{urgency: map[string]string{"LB": cii.UrgencyCritical}})

	lb, ok := e.CountryScore("LB")
	require.True(t, ok)
	assert.InDelta(t, 33, lb.Score, 0.001) // round(62*0.4 + 8)
}

func TestLearningMode(t *testing.T) {
	start := time.Date(2026, time.March, 14, 12, 0, 0, 0, time.UTC)
	clock := clockwork.NewFakeClockAt(start)
	e := newTestEngine(cii.WithClock(clock), cii.WithLearningWindow(10*time.Minute))

	assert.False(t, e.InLearningMode(), "not in learning mode before StartLearning")
	assert.InDelta(t, 1, e.LearningProgress(), 0.001)

	e.StartLearning()
	assert.True(t, e.InLearningMode())
	assert.InDelta(t, 0, e.LearningProgress(), 0.001)

	clock.Advance(5 * time.Minute)
	assert.True(t, e.InLearningMode())
	assert.InDelta(t, 0.5, e.LearningProgress(), 0.001)

	clock.Advance(6 * time.Minute)
	assert.False(t, e.InLearningMode())
	assert.InDelta(t, 1, e.LearningProgress(), 0.001)
}

func TestLearningMode_CachedScoresBypass(t *testing.T) {
	e := newTestEngine(cii.WithLearningWindow(10 * time.Minute))
	e.StartLearning()
	require.True(t, e.InLearningMode())

	e.SetHasCachedScores(true)
	assert.False(t, e.InLearningMode())
	assert.InDelta(t, 1, e.LearningProgress(), 0.001)
}

func TestClearCountryData(t *testing.T) {
	e := newTestEngine()
	e.IngestUcdp(map[string]cii.UcdpStatus{"UA": {Intensity: "war"}})
	require.InDelta(t, 70, findScore(t, e.CalculateCII(), "UA").Score, 0.001)

	e.ClearCountryData()

	ua := findScore(t, e.CalculateCII(), "UA")
	assert.InDelta(t, 32, ua.Score, 0.001) // back to round(80*0.4)
	assert.Equal(t, "stable", ua.Trend, "previous scores were dropped too")

	// Ingest diagnostics survive the reset.
	assert.Equal(t, int64(1), e.Stats().Processed)
}

func TestResetStats(t *testing.T) {
	e := newTestEngine()
	e.IngestProtests([]cii.UnrestEvent{{Country: "FR"}})
	require.Equal(t, int64(1), e.Stats().Processed)

	e.ResetStats()
	assert.Zero(t, e.Stats().Processed)
	assert.Zero(t, e.Stats().Unmapped)
}
