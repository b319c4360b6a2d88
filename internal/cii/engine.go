package cii

import (
	"math"
	"sort"
)

// CalculateCII recomputes the full score snapshot from current state: every
// country ever ingested plus every curated baseline country, sorted
// descending by score (insertion order breaks ties).
//
// Side effect: previous scores are overwritten on every call, so calling
// twice without new data reports trend "stable" and zero change on the
// second call — the comparison baseline was just updated.
func (e *Engine) CalculateCII() []CountryScore {
	urgency := e.focalUrgency()

	timer := e.metrics.StartScoreTimer()
	defer timer.ObserveDuration()

	e.mu.Lock()
	defer e.mu.Unlock()

	codes := e.allCodesLocked()
	scores := make([]CountryScore, 0, len(codes))
	for _, code := range codes {
		scores = append(scores, e.scoreCountryLocked(code, urgency))
	}

	sort.SliceStable(scores, func(i, j int) bool { return scores[i].Score > scores[j].Score })
	return scores
}

// CountryScore recomputes the score for a single country. This runs the
// whole per-country pipeline independently of CalculateCII — including the
// previous-score overwrite — so calling both in the same tick can diverge
// if ingestion lands between the calls. Flagged as a consistency hazard;
// preserved because consumers rely on the cheap single-country path.
// The second return is false for codes that attribute to nothing.
func (e *Engine) CountryScore(country string) (CountryScore, bool) {
	code := e.attributor.EnsureISO2(country)
	if code == "" {
		return CountryScore{}, false
	}

	urgency := e.focalUrgency()

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.scoreCountryLocked(code, urgency), true
}

// TopUnstableCountries returns the highest-scoring countries, at most limit.
func (e *Engine) TopUnstableCountries(limit int) []CountryScore {
	scores := e.CalculateCII()
	if limit > 0 && len(scores) > limit {
		scores = scores[:limit]
	}
	return scores
}

// focalUrgency snapshots the detector's urgency map before taking the
// engine lock. May be stale relative to the data about to be scored.
func (e *Engine) focalUrgency() map[string]string {
	e.mu.Lock()
	src := e.focal
	e.mu.Unlock()

	if src == nil {
		return nil
	}
	return src.CountryUrgency()
}

// allCodesLocked unions ingested countries (insertion order) with the
// curated table (table order). Caller holds e.mu.
func (e *Engine) allCodesLocked() []string {
	seen := make(map[string]bool, len(e.order))
	codes := make([]string, 0, len(e.order)+len(curatedCodes()))
	for _, code := range e.order {
		seen[code] = true
		codes = append(codes, code)
	}
	for _, code := range curatedCodes() {
		if !seen[code] {
			codes = append(codes, code)
		}
	}
	return codes
}

// scoreCountryLocked computes one country's blended score and updates the
// previous-score map. Caller holds e.mu.
func (e *Engine) scoreCountryLocked(code string, urgency map[string]string) CountryScore {
	d := e.countries[code]
	if d == nil {
		d = &CountryData{}
	}

	mult := multiplierFor(code)
	components := ComponentScores{
		Unrest:      scoreUnrest(d, mult),
		Conflict:    scoreConflict(d, mult),
		Security:    scoreSecurity(d),
		Information: scoreInformation(d, mult),
	}

	eventScore := components.Unrest*weightUnrest +
		components.Conflict*weightConflict +
		components.Security*weightSecurity +
		components.Information*weightInformation

	boosts := e.hotspots.Boost(code) +
		newsUrgencyBoost(components.Information) +
		focalBoost(urgency[code]) +
		displacementBoost(d.DisplacementOutflow) +
		climateBoost(d.ClimateStress)

	blended := baselineFor(code)*weightBaseline + eventScore*weightEventScore + boosts
	score := math.Round(math.Min(100, math.Max(ucdpFloor(d), blended)))

	trend := "stable"
	change := 0.0
	if prev, ok := e.previous[code]; ok {
		change = score - prev
		switch {
		case change >= 5:
			trend = "rising"
		case change <= -5:
			trend = "falling"
		}
	}
	e.previous[code] = score

	return CountryScore{
		Code:        code,
		Name:        nameFor(code),
		Score:       score,
		Level:       levelFor(score),
		Trend:       trend,
		Change24h:   change,
		Components:  components,
		LastUpdated: e.clock.Now(),
	}
}

// newsUrgencyBoost stacks on top of the information component's own weight
// when media attention is unusually high.
func newsUrgencyBoost(information float64) float64 {
	switch {
	case information >= 70:
		return 5
	case information >= 50:
		return 3
	default:
		return 0
	}
}

func focalBoost(urgency string) float64 {
	switch urgency {
	case UrgencyCritical:
		return 8
	case UrgencyElevated:
		return 4
	default:
		return 0
	}
}

func displacementBoost(outflow int) float64 {
	switch {
	case outflow >= 1_000_000:
		return 8
	case outflow >= 100_000:
		return 4
	default:
		return 0
	}
}

// climateBoost passes the pre-scaled stress value through, clamped to its
// documented 0-15 range in case an upstream zone misbehaves.
func climateBoost(stress float64) float64 {
	return math.Min(15, math.Max(0, stress))
}

// StartLearning opens the bootstrap window: for its duration the in-memory
// aggregates are reported as cold. Purely a consumer-facing hint; it never
// gates score computation.
func (e *Engine) StartLearning() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.learningStart = e.clock.Now()
	e.metrics.LearningMode.Set(1)
}

// SetHasCachedScores marks that precomputed scores are available, which
// bypasses the learning window entirely.
func (e *Engine) SetHasCachedScores(cached bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.hasCachedScores = cached
}

// InLearningMode reports whether the engine is still inside its bootstrap
// window and no cached scores are available.
func (e *Engine) InLearningMode() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	in := e.inLearningModeLocked()
	if !in {
		e.metrics.LearningMode.Set(0)
	}
	return in
}

func (e *Engine) inLearningModeLocked() bool {
	if e.hasCachedScores || e.learningStart.IsZero() {
		return false
	}
	return e.clock.Now().Sub(e.learningStart) < e.learningWindow
}

// LearningProgress reports bootstrap progress in [0,1]. Cached scores or an
// unstarted window count as complete.
func (e *Engine) LearningProgress() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.hasCachedScores || e.learningStart.IsZero() {
		return 1
	}
	elapsed := e.clock.Now().Sub(e.learningStart)
	return math.Min(1, elapsed.Seconds()/e.learningWindow.Seconds())
}
