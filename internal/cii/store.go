package cii

import (
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/stratawatch/cii-engine/internal/geo"
	"github.com/stratawatch/cii-engine/internal/observability"
)

// defaultLearningWindow is how long the in-memory aggregates are considered
// cold after a fresh start, absent server-side precomputed scores.
const defaultLearningWindow = 15 * time.Minute

// Engine holds all scoring state for one session: the per-country store,
// hotspot activity, previous scores, and ingest diagnostics. Constructed
// once and passed by reference — there is deliberately no package-level
// state, so test-isolated or multi-tenant instances are trivial.
//
// All ingest methods apply their batch atomically under one lock, so a
// concurrent score computation never observes a half-applied batch.
type Engine struct {
	clock      clockwork.Clock
	logger     *slog.Logger
	metrics    *observability.Metrics
	attributor *geo.Attributor
	hotspots   *geo.ActivityTracker

	mu        sync.Mutex
	countries map[string]*CountryData
	order     []string // insertion order, the sort tie-break
	previous  map[string]float64
	processed int64
	unmapped  int64

	learningStart   time.Time
	learningWindow  time.Duration
	hasCachedScores bool

	focal FocalSource
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock swaps the time source, for tests.
func WithClock(c clockwork.Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithLearningWindow overrides the bootstrap window length.
func WithLearningWindow(d time.Duration) Option {
	return func(e *Engine) { e.learningWindow = d }
}

// New creates an empty scoring engine.
func New(attributor *geo.Attributor, logger *slog.Logger, metrics *observability.Metrics, opts ...Option) *Engine {
	e := &Engine{
		clock:          clockwork.NewRealClock(),
		logger:         logger,
		metrics:        metrics,
		attributor:     attributor,
		hotspots:       geo.NewActivityTracker(),
		countries:      make(map[string]*CountryData),
		previous:       make(map[string]float64),
		learningWindow: defaultLearningWindow,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// AttachFocalSource connects the focal-point detector's urgency map.
// The detector analyzes on its own cadence, so scores may consult an
// urgency map that is minutes stale; that staleness is part of the
// contract, not a bug to tighten.
func (e *Engine) AttachFocalSource(src FocalSource) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.focal = src
}

// Hotspots exposes the activity tracker for collaborators that track raw
// coordinates directly.
func (e *Engine) Hotspots() *geo.ActivityTracker {
	return e.hotspots
}

// ensureCountryLocked returns the data bucket for a code, creating it and
// recording insertion order on first sight. Caller holds e.mu.
func (e *Engine) ensureCountryLocked(code string) *CountryData {
	if d, ok := e.countries[code]; ok {
		return d
	}
	d := &CountryData{}
	e.countries[code] = d
	e.order = append(e.order, code)
	return d
}

// attribute resolves a country hint plus coordinates to an ISO2 code.
// Exactly one code-or-name strategy runs, then point-in-polygon as the
// coordinate path.
func (e *Engine) attribute(country string, lat, lon float64) string {
	if country != "" {
		if code := e.attributor.EnsureISO2(country); code != "" {
			return code
		}
	}
	return e.attributor.CountryFromLocation(lat, lon)
}

// countItemLocked updates attribution diagnostics and metrics for one
// ingested item. Caller holds e.mu.
func (e *Engine) countItemLocked(source string, mapped bool) {
	e.processed++
	e.metrics.EventsIngested.WithLabelValues(source).Inc()
	if !mapped {
		e.unmapped++
		e.metrics.EventsUnmapped.Inc()
	}
}

// IngestProtests appends social unrest events. Unattributable events are
// dropped from country aggregation but still feed hotspot tracking, which
// works on raw coordinates.
func (e *Engine) IngestProtests(events []UnrestEvent) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i := range events {
		ev := events[i]
		e.hotspots.Track(ev.Lat, ev.Lon, 1)

		code := e.attribute(ev.Country, ev.Lat, ev.Lon)
		e.countItemLocked("protests", code != "")
		if code == "" {
			continue
		}
		d := e.ensureCountryLocked(code)
		d.Protests = append(d.Protests, ev)
	}
}

// IngestConflicts appends armed-conflict events.
func (e *Engine) IngestConflicts(events []ConflictEvent) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i := range events {
		ev := events[i]
		e.hotspots.Track(ev.Lat, ev.Lon, 1)

		code := e.attribute(ev.Country, ev.Lat, ev.Lon)
		e.countItemLocked("conflicts", code != "")
		if code == "" {
			continue
		}
		d := e.ensureCountryLocked(code)
		d.Conflicts = append(d.Conflicts, ev)
	}
}

// IngestUcdp overwrites per-country conflict-intensity classifications.
func (e *Engine) IngestUcdp(statuses map[string]UcdpStatus) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for country, status := range statuses {
		code := e.attributor.EnsureISO2(country)
		e.countItemLocked("ucdp", code != "")
		if code == "" {
			continue
		}
		s := status
		e.ensureCountryLocked(code).Ucdp = &s
	}
}

// IngestHapi overwrites per-country humanitarian aggregates.
func (e *Engine) IngestHapi(summaries map[string]HapiSummary) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for country, summary := range summaries {
		code := e.attributor.EnsureISO2(country)
		e.countItemLocked("hapi", code != "")
		if code == "" {
			continue
		}
		s := summary
		e.ensureCountryLocked(code).Hapi = &s
	}
}

// IngestMilitary appends tracked military flights and vessels. Attribution
// runs twice per asset: by operator, and by territory. When an asset sits
// inside another country's territory, two synthetic foreign-presence
// placeholders are appended to the territorial country, weighting foreign
// military presence above domestic activity.
func (e *Engine) IngestMilitary(flights []MilitaryFlight, vessels []MilitaryVessel) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i := range flights {
		f := flights[i]
		e.hotspots.Track(f.Lat, f.Lon, 1)

		operator := e.attributor.EnsureISO2(f.OperatorCountry)
		territory := e.attributor.CountryFromLocation(f.Lat, f.Lon)
		e.countItemLocked("military", operator != "" || territory != "")

		if operator != "" {
			e.ensureCountryLocked(operator).Flights = append(e.countries[operator].Flights, f)
		}
		if territory != "" && territory != operator {
			d := e.ensureCountryLocked(territory)
			d.Flights = append(d.Flights,
				MilitaryFlight{ForeignPresence: true},
				MilitaryFlight{ForeignPresence: true},
			)
		}
	}

	for i := range vessels {
		v := vessels[i]
		e.hotspots.Track(v.Lat, v.Lon, 1)

		operator := e.attributor.EnsureISO2(v.OperatorCountry)
		territory := e.attributor.CountryFromLocation(v.Lat, v.Lon)
		e.countItemLocked("military", operator != "" || territory != "")

		if operator != "" {
			e.ensureCountryLocked(operator).Vessels = append(e.countries[operator].Vessels, v)
		}
		if territory != "" && territory != operator {
			d := e.ensureCountryLocked(territory)
			d.Vessels = append(d.Vessels,
				MilitaryVessel{ForeignPresence: true},
				MilitaryVessel{ForeignPresence: true},
			)
		}
	}
}

// IngestNews appends clustered news stories. A single cluster can attribute
// to several countries at once, through pre-attributed codes and keyword
// matching over title plus summary.
func (e *Engine) IngestNews(clusters []NewsCluster) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i := range clusters {
		c := clusters[i]

		seen := make(map[string]bool)
		var codes []string
		for _, pre := range c.Countries {
			if code := e.attributor.EnsureISO2(pre); code != "" && !seen[code] {
				seen[code] = true
				codes = append(codes, code)
			}
		}
		for _, code := range e.attributor.MatchCountries(c.Title + " " + c.Summary) {
			if !seen[code] {
				seen[code] = true
				codes = append(codes, code)
			}
		}

		e.countItemLocked("news", len(codes) > 0)
		for _, code := range codes {
			d := e.ensureCountryLocked(code)
			d.News = append(d.News, c)
		}
	}
}

// IngestOutages appends internet outage reports.
func (e *Engine) IngestOutages(outages []Outage) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i := range outages {
		o := outages[i]
		e.hotspots.Track(o.Lat, o.Lon, 1)

		code := e.attribute(o.Country, o.Lat, o.Lon)
		e.countItemLocked("outages", code != "")
		if code == "" {
			continue
		}
		e.ensureCountryLocked(code).Outages = append(e.countries[code].Outages, o)
	}
}

// IngestDisplacement replaces displacement outflow wholesale: the upstream
// source always sends a full current snapshot, so every country resets to
// zero before the batch applies.
func (e *Engine) IngestDisplacement(records []DisplacementRecord) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, d := range e.countries {
		d.DisplacementOutflow = 0
	}

	for i := range records {
		r := records[i]
		code := e.attributor.EnsureISO2(r.OriginCountry)
		e.countItemLocked("displacement", code != "")
		if code == "" {
			continue
		}
		e.ensureCountryLocked(code).DisplacementOutflow += r.Outflow
	}
}

// IngestClimate replaces climate stress wholesale, taking the max across
// matching zones for countries that appear in several.
func (e *Engine) IngestClimate(anomalies []ClimateAnomaly) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, d := range e.countries {
		d.ClimateStress = 0
	}

	for i := range anomalies {
		a := anomalies[i]
		mapped := false
		for _, country := range a.Countries {
			code := e.attributor.EnsureISO2(country)
			if code == "" {
				continue
			}
			mapped = true
			d := e.ensureCountryLocked(code)
			if a.Stress > d.ClimateStress {
				d.ClimateStress = a.Stress
			}
		}
		e.countItemLocked("climate", mapped)
	}
}

// Stats returns attribution diagnostics.
func (e *Engine) Stats() IngestStats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return IngestStats{Processed: e.processed, Unmapped: e.unmapped}
}

// ResetStats zeroes the diagnostics without touching country data.
func (e *Engine) ResetStats() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.processed, e.unmapped = 0, 0
}

// ClearCountryData drops every accumulated aggregate: country data, hotspot
// activity, and previous scores. This is the only reset path; callers
// trigger it at session start.
func (e *Engine) ClearCountryData() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.countries = make(map[string]*CountryData)
	e.order = nil
	e.previous = make(map[string]float64)
	e.hotspots.Reset()
}
