package geo

import (
	"math"
	"sync"
)

const earthRadiusKM = 6371.0

// Haversine returns the great-circle distance between two coordinates in km.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	return earthRadiusKM * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// Site is a named geographic feature with the country codes that accumulate
// activity when events land nearby.
type Site struct {
	Name  string
	Lat   float64
	Lon   float64
	Codes []string
}

// Radii and weight multipliers per feature class. An event inside the radius
// adds weight*multiplier to every associated country; overlapping features
// stack (contributions are additive, never deduplicated).
const (
	hotspotRadiusKM      = 150.0
	conflictZoneRadiusKM = 300.0
	waterwayRadiusKM     = 200.0

	conflictZoneWeight = 2.0
	waterwayWeight     = 1.5
)

// Hotspots are point features: flashpoint cities and border areas.
var Hotspots = []Site{
	{Name: "Gaza City", Lat: 31.5, Lon: 34.47, Codes: []string{"PS", "IL"}},
	{Name: "Kyiv", Lat: 50.45, Lon: 30.52, Codes: []string{"UA"}},
	{Name: "Kharkiv", Lat: 49.99, Lon: 36.23, Codes: []string{"UA"}},
	{Name: "Taipei", Lat: 25.03, Lon: 121.56, Codes: []string{"TW"}},
	{Name: "Korean DMZ", Lat: 38.32, Lon: 127.1, Codes: []string{"KP", "KR"}},
	{Name: "Kashmir Line of Control", Lat: 34.1, Lon: 74.8, Codes: []string{"IN", "PK"}},
	{Name: "Beirut", Lat: 33.89, Lon: 35.5, Codes: []string{"LB"}},
	{Name: "Khartoum", Lat: 15.5, Lon: 32.56, Codes: []string{"SD"}},
	{Name: "Port-au-Prince", Lat: 18.54, Lon: -72.34, Codes: []string{"HT"}},
	{Name: "Tripoli", Lat: 32.89, Lon: 13.19, Codes: []string{"LY"}},
	{Name: "Caracas", Lat: 10.48, Lon: -66.9, Codes: []string{"VE"}},
	{Name: "Tehran", Lat: 35.69, Lon: 51.39, Codes: []string{"IR"}},
	{Name: "Yerevan-Baku corridor", Lat: 39.8, Lon: 46.7, Codes: []string{"AM", "AZ"}},
	{Name: "Mogadishu", Lat: 2.05, Lon: 45.32, Codes: []string{"SO"}},
	{Name: "Goma", Lat: -1.68, Lon: 29.22, Codes: []string{"CD", "RW"}},
}

// ConflictZones are wide-area active conflicts; the larger radius and 2x
// weight reflect that any activity near them is significant.
var ConflictZones = []Site{
	{Name: "Donbas front", Lat: 48.0, Lon: 37.8, Codes: []string{"UA", "RU"}},
	{Name: "Gaza Strip", Lat: 31.4, Lon: 34.38, Codes: []string{"PS", "IL"}},
	{Name: "Southern Lebanon", Lat: 33.27, Lon: 35.2, Codes: []string{"LB", "IL"}},
	{Name: "Darfur", Lat: 13.45, Lon: 24.9, Codes: []string{"SD"}},
	{Name: "Sahel tri-border", Lat: 14.5, Lon: 0.5, Codes: []string{"ML", "BF", "NE"}},
	{Name: "Eastern DRC", Lat: -1.5, Lon: 29.0, Codes: []string{"CD"}},
	{Name: "Northwest Syria", Lat: 35.9, Lon: 36.6, Codes: []string{"SY", "TR"}},
	{Name: "Marib front", Lat: 15.46, Lon: 45.33, Codes: []string{"YE"}},
	{Name: "Rakhine State", Lat: 20.1, Lon: 93.6, Codes: []string{"MM"}},
	{Name: "Lake Chad basin", Lat: 13.0, Lon: 14.0, Codes: []string{"NG", "TD", "CM", "NE"}},
	{Name: "Tigray-Amhara border", Lat: 13.5, Lon: 38.8, Codes: []string{"ET", "ER"}},
	{Name: "Cabo Delgado", Lat: -12.3, Lon: 39.5, Codes: []string{"MZ"}},
}

// Waterways are strategic chokepoints; naval and shipping activity near them
// carries a 1.5x weight for the littoral states.
var Waterways = []Site{
	{Name: "Strait of Hormuz", Lat: 26.57, Lon: 56.25, Codes: []string{"IR", "OM", "AE"}},
	{Name: "Bab el-Mandeb", Lat: 12.58, Lon: 43.33, Codes: []string{"YE", "DJ", "ER"}},
	{Name: "Suez Canal", Lat: 30.46, Lon: 32.35, Codes: []string{"EG"}},
	{Name: "Taiwan Strait", Lat: 24.3, Lon: 119.3, Codes: []string{"TW", "CN"}},
	{Name: "Bosporus", Lat: 41.12, Lon: 29.06, Codes: []string{"TR"}},
	{Name: "Strait of Malacca", Lat: 2.5, Lon: 101.0, Codes: []string{"MY", "ID", "SG"}},
	{Name: "Kerch Strait", Lat: 45.25, Lon: 36.6, Codes: []string{"UA", "RU"}},
	{Name: "South China Sea (Spratlys)", Lat: 9.5, Lon: 114.0, Codes: []string{"CN", "PH", "VN"}},
	{Name: "Gibraltar", Lat: 35.96, Lon: -5.5, Codes: []string{"ES", "MA"}},
	{Name: "Panama Canal", Lat: 9.08, Lon: -79.68, Codes: []string{"PA"}},
}

// ActivityTracker accumulates event weight near named features per country.
// Counters never decay; the boost cap is the only limit on their influence.
type ActivityTracker struct {
	mu       sync.Mutex
	activity map[string]float64
}

// NewActivityTracker creates an empty tracker.
func NewActivityTracker() *ActivityTracker {
	return &ActivityTracker{activity: make(map[string]float64)}
}

// Track adds weight for every feature whose radius contains the event.
// A single event can credit multiple countries and multiple feature classes
// at once.
func (t *ActivityTracker) Track(lat, lon, weight float64) {
	if lat == 0 && lon == 0 {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.trackSites(Hotspots, lat, lon, hotspotRadiusKM, weight)
	t.trackSites(ConflictZones, lat, lon, conflictZoneRadiusKM, weight*conflictZoneWeight)
	t.trackSites(Waterways, lat, lon, waterwayRadiusKM, weight*waterwayWeight)
}

func (t *ActivityTracker) trackSites(sites []Site, lat, lon, radiusKM, weight float64) {
	for i := range sites {
		if Haversine(lat, lon, sites[i].Lat, sites[i].Lon) > radiusKM {
			continue
		}
		for _, code := range sites[i].Codes {
			t.activity[code] += weight
		}
	}
}

// Boost converts accumulated activity into a capped scoring boost.
func (t *ActivityTracker) Boost(code string) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	return math.Min(10, t.activity[code]*1.5)
}

// Activity returns the raw accumulated weight for a country.
func (t *ActivityTracker) Activity(code string) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.activity[code]
}

// Reset drops all accumulated activity.
func (t *ActivityTracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.activity = make(map[string]float64)
}

// NearestSite returns the closest named feature to a coordinate within
// maxKM, preferring conflict zones, then waterways, then hotspots. Used for
// convergence alert display names.
func NearestSite(lat, lon, maxKM float64) (Site, bool) {
	for _, sites := range [][]Site{ConflictZones, Waterways, Hotspots} {
		best := -1
		bestDist := maxKM
		for i := range sites {
			d := Haversine(lat, lon, sites[i].Lat, sites[i].Lon)
			if d <= bestDist {
				best = i
				bestDist = d
			}
		}
		if best >= 0 {
			return sites[best], true
		}
	}
	return Site{}, false
}
