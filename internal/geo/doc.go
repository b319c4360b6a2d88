// Package geo maps raw event locations onto canonical ISO 3166-1 alpha-2
// country codes and tracks activity near named geographic features.
//
// # Attribution strategy
//
// Incoming events carry a mixture of location hints: a free-text country
// name, an ISO2 or ISO3 code, or bare WGS-84 coordinates. Attribution tries
// exactly one strategy per hint type:
//
//	ISO2 code   → validated against the known-code set, uppercased.
//	ISO3 code   → iso3ToISO2 table.
//	Free text   → curated per-country keyword lists first (table order is
//	              the tie-break, first match wins), then the general
//	              name→code table.
//	Coordinates → point-in-polygon lookup through a BoundaryIndex
//	              collaborator. No centroid-distance fallback: a point in
//	              international waters attributes to nothing.
//
// Failed attributions are reported to the caller as an empty code; the
// caller decides whether to drop the event or route it elsewhere (hotspot
// tracking works on raw coordinates and never needs a country).
//
// # Named features
//
// Three static tables drive proximity tracking and convergence location
// naming: point hotspots (150 km radius), conflict-zone centers (300 km),
// and strategic waterways (200 km). Each entry lists the country codes that
// accumulate activity when an event lands inside the radius.
package geo
