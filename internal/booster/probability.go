package booster

import (
	"fmt"
	"sort"

	"github.com/ramonehamilton/mtg-sorter/internal/events"
)

// ConfigError reports a structurally broken configuration: a pick count that
// references a sheet the configuration does not define. It aborts the single
// probability computation; callers fall back to rarity weighting.
type ConfigError struct {
	Config string
	Sheet  string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("booster config %q references missing sheet %q", e.Config, e.Sheet)
}

// ComputeProbabilities converts a configuration into expected copies per pack
// for every card it references.
//
// For each sheet with pick count p, every (card, weight) entry contributes
// (weight / computedTotal) * p, accumulated across sheets when a card appears
// on more than one. Cards on no sheet get no entry and are treated as zero by
// consumers. Data-quality problems (declared totalWeight mismatch, zero-weight
// sheet) are returned as notices alongside the result, never as errors.
func ComputeProbabilities(cfg Configuration) (map[string]float64, []events.Notice, error) {
	// Validate sheet references up front so a dangling pick fails the whole
	// computation instead of producing a partial map.
	sheetNames := make([]string, 0, len(cfg.PicksPerSheet))
	for name := range cfg.PicksPerSheet {
		if _, ok := cfg.Sheets[name]; !ok {
			return nil, nil, &ConfigError{Config: cfg.Name, Sheet: name}
		}
		sheetNames = append(sheetNames, name)
	}
	sort.Strings(sheetNames)

	probabilities := make(map[string]float64)
	var notices []events.Notice

	for _, name := range sheetNames {
		sheet := cfg.Sheets[name]
		picks := cfg.PicksPerSheet[name]

		computed := sheet.ComputedTotal()
		if sheet.TotalWeight != 0 && sheet.TotalWeight != computed {
			notices = append(notices, events.Noticef(events.NoticeWeightMismatch,
				"sheet %q declares totalWeight %d but card weights sum to %d; using %d",
				name, sheet.TotalWeight, computed, computed))
		}
		if computed == 0 {
			// Legitimate when the sheet's pick count is zero too; either way
			// every card on it contributes nothing.
			notices = append(notices, events.Noticef(events.NoticeZeroWeightSheet,
				"sheet %q has zero total card weight; its %d pick(s) contribute no cards", name, picks))
			continue
		}

		for cardID, weight := range sheet.CardWeights {
			probabilities[cardID] += float64(weight) / float64(computed) * float64(picks)
		}
	}

	return probabilities, notices, nil
}
