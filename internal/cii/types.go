package cii

import "time"

// UnrestEvent is one protest or riot report (ACLED-style social unrest).
type UnrestEvent struct {
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
	Country    string  `json:"country"` // name or code, attributed on ingest
	Fatalities int     `json:"fatalities,omitempty"`
	Severity   string  `json:"severity,omitempty"` // "low", "medium", "high"
}

// ConflictEvent is one armed-conflict report.
type ConflictEvent struct {
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
	Country    string  `json:"country"`
	EventType  string  `json:"event_type"` // "battle", "explosion", "civilian_violence"
	Fatalities int     `json:"fatalities,omitempty"`
}

// UcdpStatus is the latest conflict-intensity classification for a country.
// Overwritten per ingest, never accumulated.
type UcdpStatus struct {
	Intensity string `json:"intensity"` // "war", "minor", "none"
}

// HapiSummary is the latest humanitarian aggregate for a country.
// Overwritten per ingest.
type HapiSummary struct {
	EventsPoliticalViolence int `json:"events_political_violence"`
	PeopleInNeed            int `json:"people_in_need,omitempty"`
	RefugeesHosted          int `json:"refugees_hosted,omitempty"`
}

// MilitaryFlight is one tracked military aircraft position. Synthetic
// placeholder entries (zero value with ForeignPresence set) represent
// foreign military detected inside a country's territory.
type MilitaryFlight struct {
	Callsign        string  `json:"callsign,omitempty"`
	Lat             float64 `json:"lat,omitempty"`
	Lon             float64 `json:"lon,omitempty"`
	OperatorCountry string  `json:"operator_country,omitempty"`
	ForeignPresence bool    `json:"foreign_presence,omitempty"`
}

// MilitaryVessel is one tracked military vessel position.
type MilitaryVessel struct {
	Name            string  `json:"name,omitempty"`
	Lat             float64 `json:"lat,omitempty"`
	Lon             float64 `json:"lon,omitempty"`
	OperatorCountry string  `json:"operator_country,omitempty"`
	ForeignPresence bool    `json:"foreign_presence,omitempty"`
}

// NewsCluster is one clustered news story from the upstream clustering
// collaborator. A single cluster can attribute to multiple countries.
type NewsCluster struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Summary        string    `json:"summary,omitempty"`
	SourceCount    int       `json:"source_count"`
	SourcesPerHour float64   `json:"sources_per_hour"`
	IsAlert        bool      `json:"is_alert,omitempty"`
	Countries      []string  `json:"countries,omitempty"` // optional pre-attributed codes
	FirstSeen      time.Time `json:"first_seen,omitempty"`
}

// Outage is one internet connectivity disruption report.
type Outage struct {
	Country string  `json:"country"`
	Scope   string  `json:"scope"` // "total", "major", "partial"
	Lat     float64 `json:"lat,omitempty"`
	Lon     float64 `json:"lon,omitempty"`
}

// DisplacementRecord is one origin-country outflow figure. The upstream
// source always sends a full snapshot, so ingestion replaces rather than
// accumulates.
type DisplacementRecord struct {
	OriginCountry string `json:"origin_country"`
	Outflow       int    `json:"outflow"`
}

// ClimateAnomaly is one climate-stress reading for a zone spanning one or
// more countries. Stress is pre-scaled to 0-15 by the upstream source.
type ClimateAnomaly struct {
	Zone      string   `json:"zone"`
	Countries []string `json:"countries"`
	Stress    float64  `json:"stress"`
}

// CountryData accumulates everything ingested for one country. Per-field
// policy: slices are append-only within a session, UcdpStatus/Hapi are
// overwritten with the latest value, and DisplacementOutflow/ClimateStress
// are rebuilt wholesale on every ingest batch of their source.
type CountryData struct {
	Protests  []UnrestEvent
	Conflicts []ConflictEvent
	Ucdp      *UcdpStatus
	Hapi      *HapiSummary
	Flights   []MilitaryFlight
	Vessels   []MilitaryVessel
	News      []NewsCluster
	Outages   []Outage

	DisplacementOutflow int
	ClimateStress       float64
}

// ComponentScores are the four 0-100 sub-scores feeding the blend.
type ComponentScores struct {
	Unrest      float64 `json:"unrest"`
	Conflict    float64 `json:"conflict"`
	Security    float64 `json:"security"`
	Information float64 `json:"information"`
}

// CountryScore is one entry of a CalculateCII snapshot.
type CountryScore struct {
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	Score       float64         `json:"score"`
	Level       string          `json:"level"` // low, normal, elevated, high, critical
	Trend       string          `json:"trend"` // rising, stable, falling
	Change24h   float64         `json:"change_24h"`
	Components  ComponentScores `json:"components"`
	LastUpdated time.Time       `json:"last_updated"`
}

// IngestStats are best-effort attribution diagnostics. The unmapped/processed
// ratio tells operators when the attribution tables have drifted from the
// upstream feeds; it is not an error signal.
type IngestStats struct {
	Processed int64 `json:"processed"`
	Unmapped  int64 `json:"unmapped"`
}

// Urgency tiers produced by the focal-point detector.
const (
	UrgencyWatch    = "watch"
	UrgencyElevated = "elevated"
	UrgencyCritical = "critical"
)

// FocalSource supplies per-country urgency from the focal-point detector.
// The detector runs on its own cadence, so the urgency map consulted during
// a score computation may be minutes stale relative to the country data just
// ingested. Consumers must tolerate that staleness.
type FocalSource interface {
	CountryUrgency() map[string]string
}
