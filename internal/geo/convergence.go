package geo

import (
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// convergenceWindow is the rolling window over which cell activity counts.
const convergenceWindow = 24 * time.Hour

// minConvergenceTypes is the number of distinct signal types that must
// co-occur in one cell before an alert fires.
const minConvergenceTypes = 3

// ConvergenceAlert flags a grid cell where several independent signal types
// co-occur within the rolling window.
type ConvergenceAlert struct {
	ID          string    `json:"id"`
	CellKey     string    `json:"cell_key"`
	Lat         float64   `json:"lat"` // cell centroid
	Lon         float64   `json:"lon"`
	Types       []string  `json:"types"`
	TotalEvents int       `json:"total_events"`
	Score       float64   `json:"score"`
	Location    string    `json:"location,omitempty"`
	DetectedAt  time.Time `json:"detected_at"`
}

// AlertDedup suppresses repeat alerts for cells the consumer has already
// seen. The store is caller-owned: its lifetime spans Detect calls and
// decides how long a cell stays muted.
type AlertDedup interface {
	Seen(cellKey string) bool
	Mark(cellKey string)
}

// MapDedup is the simplest AlertDedup: an in-memory set with no expiry.
type MapDedup struct {
	mu   sync.Mutex
	seen map[string]bool
}

// NewMapDedup creates an empty dedup set.
func NewMapDedup() *MapDedup {
	return &MapDedup{seen: make(map[string]bool)}
}

func (d *MapDedup) Seen(cellKey string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.seen[cellKey]
}

func (d *MapDedup) Mark(cellKey string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seen[cellKey] = true
}

// gridCell accumulates per-type counts and last-seen timestamps for one
// 1°x1° cell.
type gridCell struct {
	counts   map[string]int
	lastSeen map[string]time.Time
}

// ConvergenceGrid accumulates multi-type event co-occurrence on a coarse
// 1°x1° lat/lon grid over a rolling 24h window.
type ConvergenceGrid struct {
	mu            sync.Mutex
	clock         clockwork.Clock
	cells         map[string]*gridCell
	nameLocations bool
}

// ConvergenceOption configures a ConvergenceGrid.
type ConvergenceOption func(*ConvergenceGrid)

// WithLocationNames enables reverse geocoding of cell centroids to
// human-readable location names on emitted alerts.
func WithLocationNames() ConvergenceOption {
	return func(g *ConvergenceGrid) { g.nameLocations = true }
}

// WithConvergenceClock swaps the time source, for tests.
func WithConvergenceClock(c clockwork.Clock) ConvergenceOption {
	return func(g *ConvergenceGrid) { g.clock = c }
}

// NewConvergenceGrid creates an empty grid.
func NewConvergenceGrid(opts ...ConvergenceOption) *ConvergenceGrid {
	g := &ConvergenceGrid{
		clock: clockwork.NewRealClock(),
		cells: make(map[string]*gridCell),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Ingest records one event of the given type at a coordinate.
func (g *ConvergenceGrid) Ingest(eventType string, lat, lon float64) {
	if eventType == "" || (lat == 0 && lon == 0) {
		return
	}

	key := cellKey(lat, lon)

	g.mu.Lock()
	defer g.mu.Unlock()

	cell, ok := g.cells[key]
	if !ok {
		cell = &gridCell{
			counts:   make(map[string]int),
			lastSeen: make(map[string]time.Time),
		}
		g.cells[key] = cell
	}
	cell.counts[eventType]++
	cell.lastSeen[eventType] = g.clock.Now()
}

// Detect prunes expired activity and returns an alert for every cell where
// at least three distinct types co-occur, skipping cells the dedup store has
// already seen. Alerts are sorted descending by score.
func (g *ConvergenceGrid) Detect(dedup AlertDedup) []ConvergenceAlert {
	g.mu.Lock()
	defer g.mu.Unlock()

	cutoff := g.clock.Now().Add(-convergenceWindow)
	g.pruneLocked(cutoff)

	var alerts []ConvergenceAlert
	for key, cell := range g.cells {
		if len(cell.counts) < minConvergenceTypes {
			continue
		}
		if dedup != nil && dedup.Seen(key) {
			continue
		}

		types := make([]string, 0, len(cell.counts))
		total := 0
		for t, n := range cell.counts {
			types = append(types, t)
			total += n
		}
		sort.Strings(types)

		lat, lon := cellCentroid(key)
		alert := ConvergenceAlert{
			ID:          uuid.NewString(),
			CellKey:     key,
			Lat:         lat,
			Lon:         lon,
			Types:       types,
			TotalEvents: total,
			Score:       convergenceScore(len(types), total),
			DetectedAt:  g.clock.Now(),
		}
		if g.nameLocations {
			alert.Location = locationName(lat, lon)
		}
		alerts = append(alerts, alert)

		if dedup != nil {
			dedup.Mark(key)
		}
	}

	sort.Slice(alerts, func(i, j int) bool { return alerts[i].Score > alerts[j].Score })
	return alerts
}

// pruneLocked drops per-type activity older than the window and deletes
// emptied cells. Caller holds g.mu.
func (g *ConvergenceGrid) pruneLocked(cutoff time.Time) {
	for key, cell := range g.cells {
		for t, seen := range cell.lastSeen {
			if seen.Before(cutoff) {
				delete(cell.counts, t)
				delete(cell.lastSeen, t)
			}
		}
		if len(cell.counts) == 0 {
			delete(g.cells, key)
		}
	}
}

func convergenceScore(typeCount, totalEvents int) float64 {
	return math.Min(100, float64(typeCount)*25+math.Min(25, float64(totalEvents)*2))
}

func cellKey(lat, lon float64) string {
	return fmt.Sprintf("%d,%d", int(math.Floor(lat)), int(math.Floor(lon)))
}

func cellCentroid(key string) (float64, float64) {
	var latCell, lonCell int
	fmt.Sscanf(key, "%d,%d", &latCell, &lonCell) //nolint:errcheck // keys are self-produced
	return float64(latCell) + 0.5, float64(lonCell) + 0.5
}

// locationName reverse geocodes a cell centroid for display: nearest named
// feature first, then a coarse region name, then raw coordinates.
func locationName(lat, lon float64) string {
	if site, ok := NearestSite(lat, lon, 400); ok {
		return fmt.Sprintf("near %s", site.Name)
	}
	if region := RegionName(lat, lon); region != "" {
		return region
	}
	return fmt.Sprintf("%.1f, %.1f", lat, lon)
}
