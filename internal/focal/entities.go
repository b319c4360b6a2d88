package focal

import (
	"strings"

	"github.com/stratawatch/cii-engine/internal/geo"
)

// org is a non-country entity with the countries it most plausibly concerns.
// Related codes are ordered: resolution walks them and the first country
// carrying live map signals wins.
type org struct {
	id      string
	name    string
	aliases []string
	related []string
}

var orgs = []org{
	{id: "org:nato", name: "NATO", aliases: []string{"nato", "north atlantic treaty"}, related: []string{"UA", "US", "PL", "DE"}},
	{id: "org:un", name: "United Nations", aliases: []string{"united nations", "u.n.", "security council"}, related: []string{"SD", "CD", "PS"}},
	{id: "org:opec", name: "OPEC", aliases: []string{"opec"}, related: []string{"SA", "AE", "IQ", "VE"}},
	{id: "org:hezbollah", name: "Hezbollah", aliases: []string{"hezbollah"}, related: []string{"LB", "IL"}},
	{id: "org:wagner", name: "Wagner Group", aliases: []string{"wagner group", "wagner"}, related: []string{"RU", "ML", "CF", "LY"}},
	{id: "org:houthis", name: "Houthis", aliases: []string{"houthi", "ansar allah"}, related: []string{"YE", "SA"}},
	{id: "org:alshabaab", name: "Al-Shabaab", aliases: []string{"al-shabaab", "al shabaab"}, related: []string{"SO", "KE"}},
	{id: "org:rsf", name: "Rapid Support Forces", aliases: []string{"rapid support forces", "rsf"}, related: []string{"SD"}},
	{id: "org:m23", name: "M23", aliases: []string{"m23"}, related: []string{"CD", "RW"}},
	{id: "org:eu", name: "European Union", aliases: []string{"european union", "brussels"}, related: []string{"DE", "FR"}},
}

// KeywordExtractor is the default EntityExtractor: curated country keyword
// lists plus a small organization table, matched as lowercase substrings
// over title and summary. Title hits carry higher confidence than
// summary-only hits.
type KeywordExtractor struct{}

// NewKeywordExtractor creates the default extractor.
func NewKeywordExtractor() *KeywordExtractor {
	return &KeywordExtractor{}
}

func (x *KeywordExtractor) Extract(title, summary string) []Entity {
	lowerTitle := strings.ToLower(title)
	lowerBody := strings.ToLower(summary)

	var entities []Entity

	for i := range geo.Profiles {
		p := &geo.Profiles[i]
		conf, hit := matchConfidence(p.Keywords, lowerTitle, lowerBody)
		if !hit {
			continue
		}
		entities = append(entities, Entity{
			ID:         "country:" + p.Code,
			Type:       "country",
			Name:       p.Name,
			Aliases:    p.Keywords,
			Confidence: conf,
		})
	}

	for i := range orgs {
		o := &orgs[i]
		conf, hit := matchConfidence(o.aliases, lowerTitle, lowerBody)
		if !hit {
			continue
		}
		entities = append(entities, Entity{
			ID:         o.id,
			Type:       "org",
			Name:       o.name,
			Aliases:    o.aliases,
			Confidence: conf,
		})
	}

	return entities
}

// matchConfidence reports whether any alias appears in the title (0.9) or
// only in the body (0.6).
func matchConfidence(aliases []string, lowerTitle, lowerBody string) (float64, bool) {
	for _, a := range aliases {
		if strings.Contains(lowerTitle, a) {
			return 0.9, true
		}
	}
	for _, a := range aliases {
		if strings.Contains(lowerBody, a) {
			return 0.6, true
		}
	}
	return 0, false
}

// relatedCountries returns the ordered country candidates for an entity:
// the country itself, or the org's related list.
func relatedCountries(e Entity) []string {
	if e.Type == "country" {
		return []string{strings.TrimPrefix(e.ID, "country:")}
	}
	for i := range orgs {
		if orgs[i].id == e.ID {
			return orgs[i].related
		}
	}
	return nil
}
