// Package analysis turns card lists into weighted frequency breakdowns.
//
// Weighting is a strategy chosen once per run: true pull probabilities when
// booster data is available, a static rarity table when it is not, or plain
// counting when no weighting was asked for. Aggregation itself is
// mode-agnostic and only sees the resolved weight function.
package analysis

import (
	"github.com/ramonehamilton/mtg-sorter/internal/cards"
	"github.com/ramonehamilton/mtg-sorter/internal/events"
)

// Mode names a weighting strategy.
type Mode string

const (
	// ModeProbability weights each card by its expected copies per pack.
	ModeProbability Mode = "probability"

	// ModeRarity weights each card by a static per-rarity table.
	ModeRarity Mode = "rarity"

	// ModeCount gives every card weight 1.
	ModeCount Mode = "count"
)

// DefaultRarityWeights approximates relative pull frequency when real booster
// data is unavailable. One common-per-pack-slot is the unit.
func DefaultRarityWeights() map[cards.Rarity]float64 {
	return map[cards.Rarity]float64{
		cards.RarityCommon:   1.0,
		cards.RarityUncommon: 1.0 / 3.0,
		cards.RarityRare:     1.0 / 8.0,
		cards.RarityMythic:   1.0 / 16.0,
		cards.RaritySpecial:  1.0 / 8.0,
		cards.RarityUnknown:  1.0,
	}
}

// Weighter resolves the effective weight of a single card.
type Weighter interface {
	Weight(c *cards.Card) float64
}

// probabilityWeighter reads expected copies per pack from a probability map.
// Cards absent from the map were on no sheet and weigh zero.
type probabilityWeighter struct {
	probabilities map[string]float64
}

func (w probabilityWeighter) Weight(c *cards.Card) float64 {
	return w.probabilities[c.ScryfallID]
}

// rarityWeighter reads weights from a static rarity table.
type rarityWeighter struct {
	table map[cards.Rarity]float64
}

func (w rarityWeighter) Weight(c *cards.Card) float64 {
	if v, ok := w.table[c.Rarity]; ok {
		return v
	}
	return w.table[cards.RarityUnknown]
}

// countWeighter weighs every card as 1.
type countWeighter struct{}

func (countWeighter) Weight(*cards.Card) float64 { return 1 }

// ResolveWeighter selects the weighting strategy for one analysis run.
//
// ModeProbability with a nil probability map means booster data was
// unavailable for the whole set: the run degrades to the static table and a
// FallbackUsed notice is recorded exactly once. A non-nil map is used as-is
// even when individual cards are missing from it. The single-set-only
// constraint on probability mode is enforced by the caller before resolution.
func ResolveWeighter(mode Mode, probabilities map[string]float64, staticTable map[cards.Rarity]float64, collector *events.Collector) Weighter {
	if staticTable == nil {
		staticTable = DefaultRarityWeights()
	}

	switch mode {
	case ModeProbability:
		if probabilities == nil {
			if collector != nil {
				collector.AddOnce(events.Noticef(events.NoticeFallbackUsed,
					"booster data unavailable; using static rarity weights"))
			}
			return rarityWeighter{table: staticTable}
		}
		return probabilityWeighter{probabilities: probabilities}
	case ModeRarity:
		return rarityWeighter{table: staticTable}
	default:
		return countWeighter{}
	}
}
