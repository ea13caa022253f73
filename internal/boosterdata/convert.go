package boosterdata

import (
	"fmt"

	"github.com/ramonehamilton/mtg-sorter/internal/booster"
)

// convertConfigurations turns a raw MTGJSON set payload into the analyzer's
// booster configurations. Sheet entries are re-keyed from MTGJSON UUIDs to
// Scryfall IDs where the payload provides the mapping, so probabilities join
// cleanly with catalog cards.
func convertConfigurations(data setData) (map[string]booster.Configuration, error) {
	if len(data.Booster) == 0 {
		return nil, nil
	}

	scryfallByUUID := make(map[string]string, len(data.Cards))
	for _, rc := range data.Cards {
		if rc.Identifiers.ScryfallID != "" {
			scryfallByUUID[rc.UUID] = rc.Identifiers.ScryfallID
		}
	}

	configs := make(map[string]booster.Configuration, len(data.Booster))
	for name, raw := range data.Booster {
		if len(raw.Boosters) == 0 {
			continue
		}

		sheets := make(map[string]booster.PrintSheet, len(raw.Sheets))
		for sheetName, rawSheet := range raw.Sheets {
			weights := make(map[string]int, len(rawSheet.Cards))
			for uuid, weight := range rawSheet.Cards {
				key := uuid
				if id, ok := scryfallByUUID[uuid]; ok {
					key = id
				}
				weights[key] = weight
			}
			sheets[sheetName] = booster.PrintSheet{
				CardWeights: weights,
				TotalWeight: rawSheet.TotalWeight,
			}
		}

		// The most common pack layout defines how many picks each sheet
		// contributes to an expected pack.
		layout := raw.Boosters[0]
		for _, variant := range raw.Boosters[1:] {
			if variant.Weight > layout.Weight {
				layout = variant
			}
		}

		picks := make(map[string]int, len(layout.Contents))
		for sheetName, count := range layout.Contents {
			picks[sheetName] = count
		}

		configs[name] = booster.Configuration{
			Name:          name,
			Sheets:        sheets,
			PicksPerSheet: picks,
		}
	}

	if len(configs) == 0 {
		return nil, fmt.Errorf("booster data for %s has no usable pack layouts", data.Code)
	}
	return configs, nil
}
