package focal

import (
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/stratawatch/cii-engine/internal/cii"
	"github.com/stratawatch/cii-engine/internal/geo"
	"github.com/stratawatch/cii-engine/internal/observability"
)

const maxHeadlines = 3

// signalVocab maps a signal type to headline vocabulary that semantically
// matches it. A hit earns the extra correlation bonus.
var signalVocab = map[string]*regexp.Regexp{
	"military": regexp.MustCompile(`(?i)troop|missile|strike|airspace|jet|bomber|drone|deploy`),
	"naval":    regexp.MustCompile(`(?i)naval|fleet|warship|carrier|destroyer|maritime|blockade`),
	"protest":  regexp.MustCompile(`(?i)protest|demonstrat|riot|unrest|march|crackdown`),
	"outage":   regexp.MustCompile(`(?i)outage|blackout|internet|shutdown|connectivity`),
	"conflict": regexp.MustCompile(`(?i)clash|battle|shelling|offensive|airstrike|bombardment`),
}

// Detector correlates news clusters against map-signal summaries. The last
// computed summary is cached for consumers that poll on a different cadence
// (notably the CII focal boost).
type Detector struct {
	extractor EntityExtractor
	clock     clockwork.Clock
	logger    *slog.Logger
	metrics   *observability.Metrics

	mu          sync.Mutex
	last        *Summary
	lastUrgency map[string]string
}

// DetectorOption configures a Detector.
type DetectorOption func(*Detector)

// WithDetectorClock swaps the time source, for tests.
func WithDetectorClock(c clockwork.Clock) DetectorOption {
	return func(d *Detector) { d.clock = c }
}

// NewDetector creates a Detector. A nil extractor gets the default keyword
// extractor.
func NewDetector(extractor EntityExtractor, logger *slog.Logger, metrics *observability.Metrics, opts ...DetectorOption) *Detector {
	if extractor == nil {
		extractor = NewKeywordExtractor()
	}
	d := &Detector{
		extractor: extractor,
		clock:     clockwork.NewRealClock(),
		logger:    logger,
		metrics:   metrics,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Analyze recomputes focal points wholesale from the given news clusters and
// per-country signal summary, caches the result, and returns it.
func (d *Detector) Analyze(clusters []cii.NewsCluster, signals map[string]SignalCluster) *Summary {
	timer := d.metrics.StartFocalTimer()
	defer timer.ObserveDuration()

	mentions, order := d.aggregateMentions(clusters)

	var points []FocalPoint
	coveredCountries := make(map[string]bool)

	for _, id := range order {
		m := mentions[id]
		country := resolveCountry(m.Entity, signals)
		cluster := signals[country]
		if country != "" {
			coveredCountries[country] = true
		}

		point := d.buildPoint(m, country, cluster)
		points = append(points, point)
	}

	// Countries with live signals but no news focus still surface when the
	// signal side alone clears the bar.
	signalCodes := make([]string, 0, len(signals))
	for code := range signals {
		signalCodes = append(signalCodes, code)
	}
	sort.Strings(signalCodes)
	for _, code := range signalCodes {
		if coveredCountries[code] {
			continue
		}
		cluster := signals[code]
		if signalScore(cluster) <= 20 {
			continue
		}
		points = append(points, d.buildSignalOnlyPoint(code, cluster))
	}

	sort.SliceStable(points, func(i, j int) bool { return points[i].FocalScore > points[j].FocalScore })

	summary := &Summary{
		Points:      points,
		AIContext:   buildAIContext(points),
		GeneratedAt: d.clock.Now(),
	}

	d.mu.Lock()
	d.last = summary
	d.lastUrgency = urgencyByCountry(points)
	d.mu.Unlock()

	d.logger.Debug("focal analysis complete",
		"clusters", len(clusters),
		"signal_countries", len(signals),
		"focal_points", len(points),
	)
	return summary
}

// LastSummary returns the most recent Analyze result, or nil before the
// first pass.
func (d *Detector) LastSummary() *Summary {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.last
}

// CountryUrgency implements cii.FocalSource from the cached summary. May be
// stale relative to freshly ingested country data; that is the contract.
func (d *Detector) CountryUrgency() map[string]string {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make(map[string]string, len(d.lastUrgency))
	for code, urgency := range d.lastUrgency {
		out[code] = urgency
	}
	return out
}

// aggregateMentions folds per-cluster entity extraction into one mention
// record per entity. Headlines are only kept when the entity's name or an
// alias appears verbatim in the cluster title — entities inferred from body
// text never contribute a displayed headline.
func (d *Detector) aggregateMentions(clusters []cii.NewsCluster) (map[string]*EntityMention, []string) {
	mentions := make(map[string]*EntityMention)
	var order []string

	for i := range clusters {
		c := &clusters[i]
		for _, entity := range d.extractor.Extract(c.Title, c.Summary) {
			m, ok := mentions[entity.ID]
			if !ok {
				m = &EntityMention{Entity: entity}
				mentions[entity.ID] = m
				order = append(order, entity.ID)
			}
			m.MentionCount++
			m.AvgConfidence += (entity.Confidence - m.AvgConfidence) / float64(m.MentionCount)

			if len(m.TopHeadlines) < maxHeadlines && titleMentions(c.Title, entity) {
				m.TopHeadlines = append(m.TopHeadlines, c.Title)
			}
		}
	}
	return mentions, order
}

// titleMentions reports whether the title contains the entity name or any
// alias, case-insensitive.
func titleMentions(title string, e Entity) bool {
	lower := strings.ToLower(title)
	if strings.Contains(lower, strings.ToLower(e.Name)) {
		return true
	}
	for _, a := range e.Aliases {
		if strings.Contains(lower, a) {
			return true
		}
	}
	return false
}

// resolveCountry picks the map-signal country for an entity: the country
// itself, or the first related country carrying live signals, falling back
// to the first related country.
func resolveCountry(e Entity, signals map[string]SignalCluster) string {
	related := relatedCountries(e)
	for _, code := range related {
		if _, ok := signals[code]; ok {
			return code
		}
	}
	if len(related) > 0 {
		return related[0]
	}
	return ""
}

func newsScore(m *EntityMention) float64 {
	n := float64(m.MentionCount)
	return math.Min(20, n*4) + math.Min(10, (n/24)*2) + m.AvgConfidence*10
}

func signalScore(c SignalCluster) float64 {
	return float64(len(c.Types))*10 +
		math.Min(15, float64(c.Total)*3) +
		float64(c.HighSeverity)*5
}

// dominantSignalType returns the signal type with the highest count.
func dominantSignalType(c SignalCluster) string {
	best, bestCount := "", 0
	types := make([]string, 0, len(c.Types))
	for t := range c.Types {
		types = append(types, t)
	}
	sort.Strings(types)
	for _, t := range types {
		if c.Types[t] > bestCount {
			best, bestCount = t, c.Types[t]
		}
	}
	return best
}

// urgencyFor classifies from the pre-multiplier raw score. The multiplier is
// applied afterward, so a displayed score can sit just past a threshold the
// urgency tier does not reflect; that mismatch is inherited behavior.
func urgencyFor(raw float64, signalTypeCount int) string {
	switch {
	case raw > 70 || signalTypeCount >= 3:
		return cii.UrgencyCritical
	case raw > 50 || signalTypeCount >= 2:
		return cii.UrgencyElevated
	default:
		return cii.UrgencyWatch
	}
}

func urgencyMultiplier(urgency string) float64 {
	switch urgency {
	case cii.UrgencyCritical:
		return 1.3
	case cii.UrgencyElevated:
		return 1.15
	default:
		return 1.0
	}
}

func (d *Detector) buildPoint(m *EntityMention, country string, cluster SignalCluster) FocalPoint {
	news := newsScore(m)
	sig := signalScore(cluster)

	var evidence []string
	evidence = append(evidence, fmt.Sprintf("%d news mentions (avg confidence %.2f)", m.MentionCount, m.AvgConfidence))

	correlation := 0.0
	if m.MentionCount > 0 && cluster.Total > 0 {
		correlation = 10
		evidence = append(evidence, fmt.Sprintf("%d map signals across %d types", cluster.Total, len(cluster.Types)))

		if dominant := dominantSignalType(cluster); dominant != "" {
			if re, ok := signalVocab[dominant]; ok && headlinesMatch(m.TopHeadlines, re) {
				correlation += 5
				evidence = append(evidence, fmt.Sprintf("headline vocabulary matches dominant signal type %q", dominant))
			}
		}
	}

	raw := news + sig + correlation
	urgency := urgencyFor(raw, len(cluster.Types))
	score := math.Min(100, raw*urgencyMultiplier(urgency))

	return FocalPoint{
		ID:           uuid.NewString(),
		EntityID:     m.Entity.ID,
		EntityType:   m.Entity.Type,
		Name:         m.Entity.Name,
		CountryCode:  country,
		Mentions:     m.MentionCount,
		TopHeadlines: m.TopHeadlines,
		SignalTypes:  sortedTypes(cluster),
		SignalCount:  cluster.Total,
		HighSeverity: cluster.HighSeverity,
		FocalScore:   math.Round(score*10) / 10,
		Urgency:      urgency,
		Narrative:    narrative(m.Entity.Name, m.MentionCount, cluster, urgency),
		Evidence:     evidence,
	}
}

func (d *Detector) buildSignalOnlyPoint(code string, cluster SignalCluster) FocalPoint {
	raw := signalScore(cluster)
	urgency := urgencyFor(raw, len(cluster.Types))
	score := math.Min(100, raw*urgencyMultiplier(urgency))
	name := geo.NameFor(code)

	return FocalPoint{
		ID:           uuid.NewString(),
		EntityID:     "country:" + code,
		EntityType:   "country",
		Name:         name,
		CountryCode:  code,
		SignalTypes:  sortedTypes(cluster),
		SignalCount:  cluster.Total,
		HighSeverity: cluster.HighSeverity,
		FocalScore:   math.Round(score*10) / 10,
		Urgency:      urgency,
		Narrative: fmt.Sprintf("%s: no direct news focus, but %d signal types active on the map (%s), %d high severity.",
			name, len(cluster.Types), strings.Join(sortedTypes(cluster), ", "), cluster.HighSeverity),
		Evidence: []string{fmt.Sprintf("%d map signals across %d types, no news mentions", cluster.Total, len(cluster.Types))},
	}
}

func headlinesMatch(headlines []string, re *regexp.Regexp) bool {
	for _, h := range headlines {
		if re.MatchString(h) {
			return true
		}
	}
	return false
}

func sortedTypes(c SignalCluster) []string {
	types := make([]string, 0, len(c.Types))
	for t := range c.Types {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

func narrative(name string, mentions int, cluster SignalCluster, urgency string) string {
	if cluster.Total == 0 {
		return fmt.Sprintf("%s: %d news mentions with no corresponding map activity; media-driven attention.", name, mentions)
	}
	return fmt.Sprintf("%s: %d news mentions converging with %d map signals across %d types (%s); urgency %s.",
		name, mentions, cluster.Total, len(cluster.Types), strings.Join(sortedTypes(cluster), ", "), urgency)
}

// urgencyByCountry keeps the highest urgency per resolved country.
func urgencyByCountry(points []FocalPoint) map[string]string {
	rank := map[string]int{cii.UrgencyWatch: 0, cii.UrgencyElevated: 1, cii.UrgencyCritical: 2}
	out := make(map[string]string)
	for i := range points {
		code := points[i].CountryCode
		if code == "" {
			continue
		}
		if current, ok := out[code]; !ok || rank[points[i].Urgency] > rank[current] {
			out[code] = points[i].Urgency
		}
	}
	return out
}

// buildAIContext renders the critical and elevated tiers as a prompt block
// for downstream AI summarization.
func buildAIContext(points []FocalPoint) string {
	var critical, elevated []string
	for i := range points {
		line := fmt.Sprintf("- %s (score %.0f): %s", points[i].Name, points[i].FocalScore, points[i].Narrative)
		switch points[i].Urgency {
		case cii.UrgencyCritical:
			critical = append(critical, line)
		case cii.UrgencyElevated:
			elevated = append(elevated, line)
		}
	}

	var b strings.Builder
	if len(critical) > 0 {
		b.WriteString("CRITICAL FOCAL POINTS:\n")
		b.WriteString(strings.Join(critical, "\n"))
		b.WriteString("\n")
	}
	if len(elevated) > 0 {
		b.WriteString("ELEVATED FOCAL POINTS:\n")
		b.WriteString(strings.Join(elevated, "\n"))
		b.WriteString("\n")
	}
	return b.String()
}
