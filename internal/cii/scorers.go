package cii

import "math"

// highVolumeMultiplier is the cutoff below which a country is treated as
// "high volume": raw counts switch from linear to log scaling and velocity
// thresholds rise, so countries with saturated media coverage (US, China,
// Russia) don't dominate purely on event volume.
const highVolumeMultiplier = 0.7

// Component blend weights. Conflict weighs heaviest; the remainder splits
// between unrest, information, and security presence.
const (
	weightUnrest      = 0.25
	weightConflict    = 0.30
	weightSecurity    = 0.20
	weightInformation = 0.25
)

// Baseline-vs-live blend: curated baseline risk anchors countries with thin
// data while live events drive the majority of the score.
const (
	weightBaseline   = 0.4
	weightEventScore = 0.6
)

// scoreUnrest scores social unrest from protests and internet outages.
// Each term saturates independently; a country can score purely on outages.
func scoreUnrest(d *CountryData, mult float64) float64 {
	score := 0.0

	if n := len(d.Protests); n > 0 {
		if mult < highVolumeMultiplier {
			score += math.Min(50, math.Log2(float64(n)+1)*12)
		} else {
			score += math.Min(50, float64(n)*8*mult)
		}

		fatalities := 0
		highSeverity := 0
		for i := range d.Protests {
			fatalities += d.Protests[i].Fatalities
			if d.Protests[i].Severity == "high" {
				highSeverity++
			}
		}
		score += math.Min(30, float64(fatalities)*5*mult)
		score += math.Min(20, float64(highSeverity)*10*mult)
	}

	if len(d.Outages) > 0 {
		var totals, majors, partials int
		for i := range d.Outages {
			switch d.Outages[i].Scope {
			case "total":
				totals++
			case "major":
				majors++
			default:
				partials++
			}
		}
		score += math.Min(50, float64(totals)*30+float64(majors)*15+float64(partials)*5)
	}

	return math.Min(100, score)
}

// scoreConflict scores armed conflict. Event-level reports and the HAPI
// humanitarian aggregate are alternative views of the same reality, so the
// two paths are combined with max, not addition: either source alone can
// drive the score.
func scoreConflict(d *CountryData, mult float64) float64 {
	if len(d.Conflicts) == 0 && d.Hapi == nil {
		return 0
	}

	eventScore := 0.0
	if len(d.Conflicts) > 0 {
		var battles, explosions, civilian, fatalities int
		for i := range d.Conflicts {
			switch d.Conflicts[i].EventType {
			case "battle":
				battles++
			case "explosion":
				explosions++
			case "civilian_violence":
				civilian++
			}
			fatalities += d.Conflicts[i].Fatalities
		}

		weighted := float64(battles*3+explosions*4+civilian*5) * mult
		eventScore += math.Min(50, weighted)
		eventScore += math.Min(40, math.Sqrt(float64(fatalities))*5*mult)
		if civilian > 0 {
			eventScore += 10
		}
		eventScore = math.Min(100, eventScore)
	}

	hapiScore := 0.0
	if d.Hapi != nil {
		hapiScore = math.Min(60, float64(d.Hapi.EventsPoliticalViolence)*3*mult)
	}

	return math.Max(eventScore, hapiScore)
}

// scoreSecurity scores military presence from tracked flights and vessels.
// Foreign-presence placeholder entries are counted like any other entry:
// they are pushed at twice the detected count on ingest, which deliberately
// weights foreign military inside a country's territory above that
// country's own activity.
func scoreSecurity(d *CountryData) float64 {
	score := math.Min(50, float64(len(d.Flights))*3) +
		math.Min(30, float64(len(d.Vessels))*5)
	return math.Min(100, score)
}

// scoreInformation scores news attention: matched cluster volume, reporting
// velocity above a per-volume-class threshold, and a flat boost when any
// matched cluster carries an alert flag.
func scoreInformation(d *CountryData, mult float64) float64 {
	n := len(d.News)
	if n == 0 {
		return 0
	}

	score := 0.0
	if mult < highVolumeMultiplier {
		score += math.Min(40, math.Log2(float64(n)+1)*10)
	} else {
		score += math.Min(40, float64(n)*8*mult)
	}

	velocityThreshold := 2.0
	if mult < highVolumeMultiplier {
		velocityThreshold = 5.0
	}
	total := 0.0
	for i := range d.News {
		total += d.News[i].SourcesPerHour
	}
	if avg := total / float64(n); avg > velocityThreshold {
		score += math.Min(40, (avg-velocityThreshold)*8)
	}

	for i := range d.News {
		if d.News[i].IsAlert {
			score += 20 * mult
			break
		}
	}

	return math.Min(100, score)
}

// ucdpFloor maps the UCDP conflict-intensity classification to a hard lower
// bound on the blended score. Applied after blending, not as a scorer input:
// a country classified "war" never scores below 70 no matter how thin the
// live event data is.
func ucdpFloor(d *CountryData) float64 {
	if d == nil || d.Ucdp == nil {
		return 0
	}
	switch d.Ucdp.Intensity {
	case "war":
		return 70
	case "minor":
		return 50
	default:
		return 0
	}
}

// levelFor maps a blended score to a display severity level.
func levelFor(score float64) string {
	switch {
	case score >= 80:
		return "critical"
	case score >= 65:
		return "high"
	case score >= 45:
		return "elevated"
	case score >= 25:
		return "normal"
	default:
		return "low"
	}
}
