// Package focal correlates news-entity mentions against per-country map
// signal clusters to surface "focal points": entities whose reporting volume
// and ground activity jointly exceed a relevance threshold. The ranked
// output drives AI summarization context and feeds back into the CII blend
// as a per-country urgency boost.
package focal

import "time"

// Entity is one extracted entity from news text.
type Entity struct {
	ID         string   // normalized: "country:IR", "org:nato"
	Type       string   // "country", "org"
	Name       string   // display: "Iran", "NATO"
	Aliases    []string // lowercase match terms, including the name
	Confidence float64  // 0.0-1.0
}

// EntityExtractor is the entity-extraction collaborator. The default
// implementation is cheap regex/keyword matching; callers can plug in
// something smarter.
type EntityExtractor interface {
	Extract(title, summary string) []Entity
}

// SignalCluster summarizes map-signal activity for one country, produced by
// the upstream signal aggregator.
type SignalCluster struct {
	Types        map[string]int `json:"types"` // signal type → count
	Total        int            `json:"total"`
	HighSeverity int            `json:"high_severity"`
}

// EntityMention aggregates news activity for one entity across a batch of
// clusters.
type EntityMention struct {
	Entity        Entity
	MentionCount  int
	AvgConfidence float64
	TopHeadlines  []string // max 3; only titles containing the entity verbatim
}

// FocalPoint is one ranked correlation result.
type FocalPoint struct {
	ID           string   `json:"id"`
	EntityID     string   `json:"entity_id"`
	EntityType   string   `json:"entity_type"`
	Name         string   `json:"name"`
	CountryCode  string   `json:"country_code,omitempty"`
	Mentions     int      `json:"mentions"`
	TopHeadlines []string `json:"top_headlines,omitempty"`
	SignalTypes  []string `json:"signal_types,omitempty"`
	SignalCount  int      `json:"signal_count"`
	HighSeverity int      `json:"high_severity"`
	FocalScore   float64  `json:"focal_score"`
	Urgency      string   `json:"urgency"`
	Narrative    string   `json:"narrative"`
	Evidence     []string `json:"evidence,omitempty"`
}

// Summary is the cached result of one Analyze pass. Consumers poll it on
// their own cadence and must tolerate staleness.
type Summary struct {
	Points      []FocalPoint `json:"points"`
	AIContext   string       `json:"ai_context"`
	GeneratedAt time.Time    `json:"generated_at"`
}
