package pipeline

import (
	"encoding/json"
	"fmt"

	"github.com/stratawatch/cii-engine/internal/cii"
	"github.com/stratawatch/cii-engine/internal/focal"
	"github.com/stratawatch/cii-engine/internal/geo"
)

// Envelope is the typed wrapper upstream fetchers publish to the ingest
// topic: a source discriminator plus the source-shaped payload.
type Envelope struct {
	Source  string          `json:"source"`
	Payload json.RawMessage `json:"payload"`
}

// militaryPayload carries both asset classes in one envelope, matching how
// the upstream tracker publishes them.
type militaryPayload struct {
	Flights []cii.MilitaryFlight `json:"flights"`
	Vessels []cii.MilitaryVessel `json:"vessels"`
}

// Dispatcher routes decoded envelopes to the scoring engine and the
// convergence grid, and re-runs focal analysis whenever its inputs changed.
//
// News clusters accumulate for the session (mirroring the engine's
// append-only news store); the signal summary is replaced wholesale, since
// the aggregator always publishes a full snapshot.
type Dispatcher struct {
	engine   *cii.Engine
	grid     *geo.ConvergenceGrid
	detector *focal.Detector // nil disables focal analysis

	clusters    []cii.NewsCluster
	signals     map[string]focal.SignalCluster
	focalInputs bool // inputs changed since last AfterBatch
}

// NewDispatcher wires the dispatch targets. grid and detector may be nil.
func NewDispatcher(engine *cii.Engine, grid *geo.ConvergenceGrid, detector *focal.Detector) *Dispatcher {
	return &Dispatcher{
		engine:   engine,
		grid:     grid,
		detector: detector,
	}
}

// Dispatch decodes one envelope and applies it. Unknown sources and
// malformed payloads return an error; the caller drops the envelope and
// moves on — a bad message never stalls the loop.
func (d *Dispatcher) Dispatch(value []byte) error {
	var env Envelope
	if err := json.Unmarshal(value, &env); err != nil {
		return fmt.Errorf("decode envelope: %w", err)
	}

	switch env.Source {
	case "protests":
		var events []cii.UnrestEvent
		if err := json.Unmarshal(env.Payload, &events); err != nil {
			return fmt.Errorf("decode protests payload: %w", err)
		}
		d.engine.IngestProtests(events)
		for i := range events {
			d.gridIngest("protest", events[i].Lat, events[i].Lon)
		}

	case "conflicts":
		var events []cii.ConflictEvent
		if err := json.Unmarshal(env.Payload, &events); err != nil {
			return fmt.Errorf("decode conflicts payload: %w", err)
		}
		d.engine.IngestConflicts(events)
		for i := range events {
			d.gridIngest("conflict", events[i].Lat, events[i].Lon)
		}

	case "ucdp":
		var statuses map[string]cii.UcdpStatus
		if err := json.Unmarshal(env.Payload, &statuses); err != nil {
			return fmt.Errorf("decode ucdp payload: %w", err)
		}
		d.engine.IngestUcdp(statuses)

	case "hapi":
		var summaries map[string]cii.HapiSummary
		if err := json.Unmarshal(env.Payload, &summaries); err != nil {
			return fmt.Errorf("decode hapi payload: %w", err)
		}
		d.engine.IngestHapi(summaries)

	case "military":
		var payload militaryPayload
		if err := json.Unmarshal(env.Payload, &payload); err != nil {
			return fmt.Errorf("decode military payload: %w", err)
		}
		d.engine.IngestMilitary(payload.Flights, payload.Vessels)
		for i := range payload.Flights {
			d.gridIngest("military", payload.Flights[i].Lat, payload.Flights[i].Lon)
		}
		for i := range payload.Vessels {
			d.gridIngest("naval", payload.Vessels[i].Lat, payload.Vessels[i].Lon)
		}

	case "news":
		var clusters []cii.NewsCluster
		if err := json.Unmarshal(env.Payload, &clusters); err != nil {
			return fmt.Errorf("decode news payload: %w", err)
		}
		d.engine.IngestNews(clusters)
		d.clusters = append(d.clusters, clusters...)
		d.focalInputs = true

	case "signals":
		var signals map[string]focal.SignalCluster
		if err := json.Unmarshal(env.Payload, &signals); err != nil {
			return fmt.Errorf("decode signals payload: %w", err)
		}
		d.signals = signals
		d.focalInputs = true

	case "outages":
		var outages []cii.Outage
		if err := json.Unmarshal(env.Payload, &outages); err != nil {
			return fmt.Errorf("decode outages payload: %w", err)
		}
		d.engine.IngestOutages(outages)
		for i := range outages {
			d.gridIngest("outage", outages[i].Lat, outages[i].Lon)
		}

	case "displacement":
		var records []cii.DisplacementRecord
		if err := json.Unmarshal(env.Payload, &records); err != nil {
			return fmt.Errorf("decode displacement payload: %w", err)
		}
		d.engine.IngestDisplacement(records)

	case "climate":
		var anomalies []cii.ClimateAnomaly
		if err := json.Unmarshal(env.Payload, &anomalies); err != nil {
			return fmt.Errorf("decode climate payload: %w", err)
		}
		d.engine.IngestClimate(anomalies)

	default:
		return fmt.Errorf("unknown envelope source %q", env.Source)
	}

	return nil
}

// AfterBatch re-runs focal analysis if any news or signal input arrived in
// the batch just applied. Analysis cadence follows ingest cadence here,
// while score computation polls the cached summary independently.
func (d *Dispatcher) AfterBatch() {
	if d.detector == nil || !d.focalInputs {
		return
	}
	d.detector.Analyze(d.clusters, d.signals)
	d.focalInputs = false
}

func (d *Dispatcher) gridIngest(eventType string, lat, lon float64) {
	if d.grid == nil {
		return
	}
	d.grid.Ingest(eventType, lat, lon)
}
