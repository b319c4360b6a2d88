// Command genmock generates a synthetic envelope fixture covering every
// ingest source, for local development and the integration test suite. It
// writes the fixture to a JSON file and can optionally publish it straight
// to the ingest topic.
//
// Usage:
//
//	go run ./cmd/genmock -out data/mock/envelopes.json
//	go run ./cmd/genmock -out data/mock/envelopes.json -publish
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	kafkaadapter "github.com/stratawatch/cii-engine/internal/adapter/kafka"
	"github.com/stratawatch/cii-engine/internal/cii"
	"github.com/stratawatch/cii-engine/internal/config"
	"github.com/stratawatch/cii-engine/internal/focal"
	"github.com/stratawatch/cii-engine/internal/observability"
	"github.com/stratawatch/cii-engine/internal/pipeline"
)

var baseTime = time.Date(2026, time.March, 14, 12, 0, 0, 0, time.UTC)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output path for the envelope fixture")
	publish := flag.Bool("publish", false, "also publish the fixture to the ingest topic")
	seed := flag.Int64("seed", 1, "random seed for reproducible fixtures")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}

	rng := rand.New(rand.NewSource(*seed))
	envelopes, err := buildEnvelopes(rng)
	if err != nil {
		return err
	}

	if err := writeJSON(*out, envelopes); err != nil {
		return fmt.Errorf("writing fixture: %w", err)
	}
	log.Printf("wrote %d envelopes: %s", len(envelopes), *out)

	if !*publish {
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	writer := kafkaadapter.NewWriter(cfg, logger)
	defer writer.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := writer.PublishBatch(ctx, envelopes); err != nil {
		return fmt.Errorf("publishing fixture: %w", err)
	}
	log.Printf("published %d envelopes to %s", len(envelopes), cfg.KafkaIngestTopic)
	return nil
}

// buildEnvelopes produces one envelope per source, concentrated around a
// handful of real flashpoints so the scoring output is plausible.
func buildEnvelopes(rng *rand.Rand) ([]pipeline.Envelope, error) {
	protests := []cii.UnrestEvent{
		{Lat: jitter(rng, 48.8566), Lon: jitter(rng, 2.3522), Country: "France", Fatalities: 0, Severity: "medium"},
		{Lat: jitter(rng, 48.8566), Lon: jitter(rng, 2.3522), Country: "France", Fatalities: 2, Severity: "high"},
		{Lat: jitter(rng, 35.6892), Lon: jitter(rng, 51.389), Country: "Iran", Fatalities: 5, Severity: "high"},
		{Lat: jitter(rng, 33.8938), Lon: jitter(rng, 35.5018), Country: "LB", Fatalities: 0, Severity: "low"},
	}

	conflicts := []cii.ConflictEvent{
		{Lat: jitter(rng, 48.0159), Lon: jitter(rng, 37.8029), Country: "UA", EventType: "battle", Fatalities: 12},
		{Lat: jitter(rng, 48.0159), Lon: jitter(rng, 37.8029), Country: "UA", EventType: "explosion", Fatalities: 3},
		{Lat: jitter(rng, 31.5017), Lon: jitter(rng, 34.4668), Country: "PS", EventType: "civilian_violence", Fatalities: 8},
		{Lat: jitter(rng, 15.5527), Lon: jitter(rng, 32.5324), Country: "Sudan", EventType: "battle", Fatalities: 20},
	}

	ucdp := map[string]cii.UcdpStatus{
		"UA": {Intensity: "war"},
		"SD": {Intensity: "war"},
		"ML": {Intensity: "minor"},
	}

	hapi := map[string]cii.HapiSummary{
		"SD": {EventsPoliticalViolence: 40, PeopleInNeed: 24_800_000, RefugeesHosted: 900_000},
		"UA": {EventsPoliticalViolence: 25, PeopleInNeed: 14_600_000, RefugeesHosted: 0},
	}

	military := map[string]any{
		"flights": []cii.MilitaryFlight{
			{Callsign: "PLAAF01", Lat: jitter(rng, 24.0), Lon: jitter(rng, 120.5), OperatorCountry: "CN"},
			{Callsign: "PLAAF02", Lat: jitter(rng, 24.1), Lon: jitter(rng, 120.3), OperatorCountry: "CN"},
			{Callsign: "RFF7021", Lat: jitter(rng, 54.5), Lon: jitter(rng, 19.9), OperatorCountry: "RU"},
		},
		"vessels": []cii.MilitaryVessel{
			{Name: "IRIS Jamaran", Lat: jitter(rng, 26.5), Lon: jitter(rng, 56.25), OperatorCountry: "IR"},
			{Name: "USS Mason", Lat: jitter(rng, 12.6), Lon: jitter(rng, 43.3), OperatorCountry: "US"},
		},
	}

	news := []cii.NewsCluster{
		{
			Title:          "Strikes reported near Kharkiv as offensive intensifies",
			Summary:        "Multiple explosions reported in eastern Ukraine overnight.",
			SourceCount:    14,
			SourcesPerHour: 6.5,
			IsAlert:        true,
			Countries:      []string{"UA"},
			FirstSeen:      baseTime.Add(-2 * time.Hour),
		},
		{
			Title:          "NATO ministers meet over Baltic airspace incursions",
			Summary:        "Alliance response under discussion after repeated violations near Poland.",
			SourceCount:    8,
			SourcesPerHour: 3.1,
			Countries:      []string{},
			FirstSeen:      baseTime.Add(-5 * time.Hour),
		},
		{
			Title:          "Port disruptions in the Strait of Hormuz raise shipping costs",
			Summary:        "Tanker operators reroute as Iran steps up naval patrols.",
			SourceCount:    5,
			SourcesPerHour: 1.8,
			Countries:      []string{"IR"},
			FirstSeen:      baseTime.Add(-8 * time.Hour),
		},
	}

	signals := map[string]focal.SignalCluster{
		"UA": {Types: map[string]int{"conflict": 6, "military": 3}, Total: 9, HighSeverity: 4},
		"TW": {Types: map[string]int{"military": 5, "naval": 2}, Total: 7, HighSeverity: 1},
		"IR": {Types: map[string]int{"naval": 3, "protest": 2}, Total: 5, HighSeverity: 0},
	}

	outages := []cii.Outage{
		{Lat: jitter(rng, 33.3152), Lon: jitter(rng, 44.3661), Country: "IQ", Scope: "major"},
		{Lat: jitter(rng, 15.5527), Lon: jitter(rng, 32.5324), Country: "SD", Scope: "total"},
	}

	displacement := []cii.DisplacementRecord{
		{OriginCountry: "SD", Outflow: 9_100_000},
		{OriginCountry: "UA", Outflow: 3_700_000},
		{OriginCountry: "MM", Outflow: 2_600_000},
	}

	climate := []cii.ClimateAnomaly{
		{Zone: "Horn of Africa", Countries: []string{"ET", "SO", "KE"}, Stress: 11},
		{Zone: "Sahel", Countries: []string{"ML", "NE", "TD"}, Stress: 8},
	}

	sources := []struct {
		source  string
		payload any
	}{
		{"protests", protests},
		{"conflicts", conflicts},
		{"ucdp", ucdp},
		{"hapi", hapi},
		{"military", military},
		{"news", news},
		{"signals", signals},
		{"outages", outages},
		{"displacement", displacement},
		{"climate", climate},
	}

	envelopes := make([]pipeline.Envelope, 0, len(sources))
	for _, s := range sources {
		data, err := json.Marshal(s.payload)
		if err != nil {
			return nil, fmt.Errorf("marshal %s payload: %w", s.source, err)
		}
		envelopes = append(envelopes, pipeline.Envelope{Source: s.source, Payload: data})
	}
	return envelopes, nil
}

// jitter nudges a coordinate by up to ±0.2 degrees so events spread across
// neighboring grid cells instead of stacking on one point.
func jitter(rng *rand.Rand, v float64) float64 {
	return v + (rng.Float64()-0.5)*0.4
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}
