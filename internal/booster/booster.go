// Package booster models sealed-product configurations and computes per-card
// pull probabilities from them.
package booster

import "sort"

// PrintSheet is one named pool of cards a pack slot draws from.
type PrintSheet struct {
	// CardWeights maps card identifier to its relative draw weight on this sheet.
	CardWeights map[string]int

	// TotalWeight is the declared total weight. Probability math always uses
	// the computed sum of CardWeights; a mismatch here is a data-quality
	// warning, not an error.
	TotalWeight int
}

// ComputedTotal sums the sheet's card weights. This value, not TotalWeight,
// is authoritative for probability purposes.
func (s PrintSheet) ComputedTotal() int {
	total := 0
	for _, w := range s.CardWeights {
		total += w
	}
	return total
}

// Configuration is one sealed-product recipe for a set (e.g., "default", "draft").
type Configuration struct {
	// Name of the configuration within its set.
	Name string

	// Sheets maps sheet name to its print sheet.
	Sheets map[string]PrintSheet

	// PicksPerSheet maps sheet name to the number of cards drawn from that
	// sheet per pack. Every referenced sheet must exist in Sheets.
	PicksPerSheet map[string]int
}

// ExpectedPackSize is the total expected cards per pack: the sum of all pick
// counts. The probability map for a well-formed configuration sums to this.
func (c Configuration) ExpectedPackSize() int {
	total := 0
	for _, picks := range c.PicksPerSheet {
		total += picks
	}
	return total
}

// Select picks which configuration to analyze when a set has several.
// Priority: "default", then "draft", then the lexicographically first name so
// repeated runs stay deterministic. Returns false when none exist, which
// callers treat as booster data being absent for the set.
func Select(configs map[string]Configuration) (Configuration, bool) {
	if len(configs) == 0 {
		return Configuration{}, false
	}
	if cfg, ok := configs["default"]; ok {
		return cfg, true
	}
	if cfg, ok := configs["draft"]; ok {
		return cfg, true
	}
	names := make([]string, 0, len(configs))
	for name := range configs {
		names = append(names, name)
	}
	sort.Strings(names)
	return configs[names[0]], true
}
