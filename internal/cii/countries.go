package cii

import "github.com/stratawatch/cii-engine/internal/geo"

// Thin bridge over the curated geo tables so scoring code reads naturally.

var curatedOrder = buildCuratedOrder()

func buildCuratedOrder() []string {
	codes := make([]string, len(geo.Profiles))
	for i := range geo.Profiles {
		codes[i] = geo.Profiles[i].Code
	}
	return codes
}

func curatedCodes() []string { return curatedOrder }

func multiplierFor(code string) float64 { return geo.MultiplierFor(code) }

func baselineFor(code string) float64 { return geo.BaselineFor(code) }

func nameFor(code string) string { return geo.NameFor(code) }
