// Package cards defines the card model shared by the analyzer and the sort planner.
package cards

import "strings"

// Rarity is a normalized card rarity as reported by Scryfall.
type Rarity string

// Known rarities. Anything else (promos, tokens, missing data) is RarityUnknown.
const (
	RarityCommon   Rarity = "common"
	RarityUncommon Rarity = "uncommon"
	RarityRare     Rarity = "rare"
	RarityMythic   Rarity = "mythic"
	RaritySpecial  Rarity = "special"
	RarityUnknown  Rarity = ""
)

// ParseRarity normalizes a raw rarity string. Unrecognized values map to RarityUnknown.
func ParseRarity(s string) Rarity {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "common":
		return RarityCommon
	case "uncommon":
		return RarityUncommon
	case "rare":
		return RarityRare
	case "mythic":
		return RarityMythic
	case "special", "bonus":
		return RaritySpecial
	default:
		return RarityUnknown
	}
}

// Card is a single catalog or inventory card entry.
//
// ScryfallID is the stable join key between catalog records and booster sheet
// data. Quantity is only meaningful for owned inventory; catalog analysis
// treats every entry as a single instance.
type Card struct {
	// ScryfallID is the card's unique identifier (a UUID string).
	ScryfallID string

	// Name is the display name. Its first character is the default grouping key.
	Name string

	// SetCode is the uppercase code of the set this printing belongs to.
	SetCode string

	// Rarity of this printing.
	Rarity Rarity

	// Quantity is the owned copy count. Never negative.
	Quantity int

	// Sorted marks the card as physically sorted. Mutated only by user action,
	// never by analysis or plan building.
	Sorted bool
}

// MarkSorted flips the sorted flag. Plan trees hold card pointers, so the
// change is visible in an existing plan without rebuilding it.
func (c *Card) MarkSorted(sorted bool) {
	c.Sorted = sorted
}

// FirstLetter returns the card name's first character folded to uppercase.
// Names starting with anything outside A-Z bucket under "#".
func (c *Card) FirstLetter() string {
	name := strings.TrimSpace(c.Name)
	if name == "" {
		return "#"
	}
	ch := name[0]
	if ch >= 'a' && ch <= 'z' {
		ch -= 'a' - 'A'
	}
	if ch < 'A' || ch > 'Z' {
		return "#"
	}
	return string(ch)
}

// TotalQuantity sums owned copies across a card list.
func TotalQuantity(list []*Card) int {
	total := 0
	for _, c := range list {
		total += c.Quantity
	}
	return total
}
