// Package planner builds hierarchical sorting plans from an owned-card
// inventory and an ordered list of grouping criteria.
package planner

import (
	"fmt"
	"strings"

	"github.com/ramonehamilton/mtg-sorter/internal/cards"
)

// KeyFunc derives a grouping key for a card. ok reports whether the key is
// defined for this card; undefined keys bucket the card under Unknown rather
// than aborting the build.
type KeyFunc func(c *cards.Card) (key string, ok bool)

// Criterion is one named grouping level of a sorting plan.
type Criterion struct {
	// Name prefixes every group label at this level, e.g. "Letter: A".
	Name string

	// Key derives the grouping key.
	Key KeyFunc
}

// UnknownKey is the reserved bucket for cards a criterion cannot key.
const UnknownKey = "Unknown"

// Built-in criteria, keyed by name. The planner accepts arbitrary criteria;
// these cover what the CLI exposes.
func builtinCriteria() []Criterion {
	return []Criterion{
		{Name: "Letter", Key: letterKey},
		{Name: "Rarity", Key: rarityKey},
		{Name: "Set", Key: setKey},
		{Name: "Name", Key: nameKey},
	}
}

// Criteria returns the built-in criteria in display order.
func Criteria() []Criterion {
	return builtinCriteria()
}

// CriterionByName looks up a built-in criterion. Matching is case-insensitive
// and accepts "First Letter" as an alias for "Letter".
func CriterionByName(name string) (Criterion, bool) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	if normalized == "first letter" {
		normalized = "letter"
	}
	for _, c := range builtinCriteria() {
		if strings.ToLower(c.Name) == normalized {
			return c, true
		}
	}
	return Criterion{}, false
}

// ParseOrder resolves a list of criterion names into criteria, rejecting
// empty input, unknown names, and duplicates.
func ParseOrder(names []string) ([]Criterion, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("sort order cannot be empty")
	}

	seen := make(map[string]bool, len(names))
	criteria := make([]Criterion, 0, len(names))
	for _, name := range names {
		criterion, ok := CriterionByName(name)
		if !ok {
			return nil, fmt.Errorf("unknown sort criterion: %q", name)
		}
		if seen[criterion.Name] {
			return nil, fmt.Errorf("duplicate sort criterion: %q", criterion.Name)
		}
		seen[criterion.Name] = true
		criteria = append(criteria, criterion)
	}
	return criteria, nil
}

func letterKey(c *cards.Card) (string, bool) {
	if strings.TrimSpace(c.Name) == "" {
		return "", false
	}
	return c.FirstLetter(), true
}

func rarityKey(c *cards.Card) (string, bool) {
	if c.Rarity == cards.RarityUnknown {
		return "", false
	}
	r := string(c.Rarity)
	return strings.ToUpper(r[:1]) + r[1:], true
}

func setKey(c *cards.Card) (string, bool) {
	if c.SetCode == "" {
		return "", false
	}
	return strings.ToUpper(c.SetCode), true
}

func nameKey(c *cards.Card) (string, bool) {
	name := strings.TrimSpace(c.Name)
	if name == "" {
		return "", false
	}
	return name, true
}
