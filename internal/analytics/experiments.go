package analytics

import (
	"trackline/internal/events"
)

// VariantResult summarizes one experiment variant's funnel.
type VariantResult struct {
	Variant        string  `json:"variant"`
	Visitors       int     `json:"visitors"`
	Conversions    int     `json:"conversions"`
	ConversionRate float64 `json:"conversion_rate"`
}

// variantAccumulator tracks distinct sessions per funnel stage.
type variantAccumulator struct {
	visitors    map[string]struct{}
	conversions map[string]struct{}
}

// Experiments groups variant-tagged events into per-variant funnels. A
// session counts as a visitor once it emits an experiment view, and as
// a conversion once it emits a conversion or preorder click for that
// variant. Every variant value observed in the slice gets a result,
// even when no funnel event carried it. Sessionless records are
// tolerated: they establish the variant but join neither distinct
// count. Variants appear in the order they were first seen.
func Experiments(evts []events.Event) []VariantResult {
	var order []string
	variants := make(map[string]*variantAccumulator)

	for _, e := range evts {
		variant := events.VariantFromMetadata(e.Metadata)
		if variant == "" {
			continue
		}

		acc, ok := variants[variant]
		if !ok {
			acc = &variantAccumulator{
				visitors:    make(map[string]struct{}),
				conversions: make(map[string]struct{}),
			}
			variants[variant] = acc
			order = append(order, variant)
		}

		if e.SessionID == "" {
			continue
		}
		switch e.EventName {
		case events.EventExperimentView:
			acc.visitors[e.SessionID] = struct{}{}
		case events.EventConversion, events.EventClickPreorder:
			acc.conversions[e.SessionID] = struct{}{}
		}
	}

	results := make([]VariantResult, 0, len(order))
	for _, variant := range order {
		acc := variants[variant]
		visitors := len(acc.visitors)
		conversions := len(acc.conversions)
		results = append(results, VariantResult{
			Variant:        variant,
			Visitors:       visitors,
			Conversions:    conversions,
			ConversionRate: roundRate(float64(conversions)*100, float64(visitors)),
		})
	}
	return results
}
