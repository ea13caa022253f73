package planner

import (
	"context"
	"fmt"
	"sort"

	"github.com/ramonehamilton/mtg-sorter/internal/cards"
)

// RootLabel names the synthetic root group of every plan.
const RootLabel = "All Cards"

// SortGroup is a node in the sorting plan tree. Inner nodes hold children,
// leaves hold the card references themselves. Groups never copy card state:
// they point into the caller's inventory, so marking a card sorted is
// immediately visible in an existing tree.
type SortGroup struct {
	// Label describes the group, e.g. "Letter: A" or "Rarity: Mythic".
	Label string

	// CriterionIndex is the position in the criteria order this node's parent
	// split by. The root carries -1.
	CriterionIndex int

	// Unknown marks a group created for cards the criterion could not key.
	// A group whose key genuinely equals the Unknown label is not marked.
	Unknown bool

	// Cards directly in this group. Non-empty only at leaf depth.
	Cards []*cards.Card

	// Children in deterministic (lexicographic key) order. Empty at leaves.
	Children []*SortGroup
}

// IsLeaf reports whether the group holds cards directly.
func (g *SortGroup) IsLeaf() bool {
	return len(g.Children) == 0
}

// TotalQuantity sums owned copies under this group, walking the live tree.
func (g *SortGroup) TotalQuantity() int {
	total := cards.TotalQuantity(g.Cards)
	for _, child := range g.Children {
		total += child.TotalQuantity()
	}
	return total
}

// SortedQuantity sums owned copies of cards currently flagged sorted. It is
// read lazily from the cards, so no rebuild is needed after MarkSorted.
func (g *SortGroup) SortedQuantity() int {
	total := 0
	for _, c := range g.Cards {
		if c.Sorted {
			total += c.Quantity
		}
	}
	for _, child := range g.Children {
		total += child.SortedQuantity()
	}
	return total
}

// UnsortedQuantity is the remaining work under this group.
func (g *SortGroup) UnsortedQuantity() int {
	return g.TotalQuantity() - g.SortedQuantity()
}

// BrokenCriterionError reports a level where no card could be keyed at all,
// which almost always means the criterion itself is wrong for this inventory.
// Individual unkeyable cards are bucketed under Unknown instead.
type BrokenCriterionError struct {
	Criterion string
	GroupPath string
}

func (e *BrokenCriterionError) Error() string {
	return fmt.Sprintf("criterion %q matched no card under %q; every card would be Unknown", e.Criterion, e.GroupPath)
}

// BuildPlan partitions the inventory into a plan tree following the criteria
// order. An empty criteria list yields a single-leaf root holding all cards in
// input order. The input slice is snapshotted; later appends by the caller do
// not leak into the tree. Cancellation is honored between top-level groups and
// discards the partial tree.
func BuildPlan(ctx context.Context, inventory []*cards.Card, criteria []Criterion) (*SortGroup, error) {
	snapshot := make([]*cards.Card, len(inventory))
	copy(snapshot, inventory)

	root := &SortGroup{Label: RootLabel, CriterionIndex: -1}
	if err := partition(ctx, root, snapshot, criteria, 0); err != nil {
		return nil, err
	}
	return root, nil
}

// partition splits group's card set by criteria[depth], recursing until the
// criteria are exhausted.
func partition(ctx context.Context, group *SortGroup, list []*cards.Card, criteria []Criterion, depth int) error {
	if depth == len(criteria) {
		group.Cards = list
		return nil
	}

	criterion := criteria[depth]

	// Grouping preserves input order within each key.
	byKey := make(map[string][]*cards.Card)
	downgraded := make(map[string]bool)
	unknown := 0
	for _, c := range list {
		key, ok := criterion.Key(c)
		if !ok {
			key = UnknownKey
			downgraded[key] = true
			unknown++
		}
		byKey[key] = append(byKey[key], c)
	}

	if len(list) > 0 && unknown == len(list) {
		return &BrokenCriterionError{Criterion: criterion.Name, GroupPath: group.Label}
	}

	keys := make([]string, 0, len(byKey))
	for key := range byKey {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return err
		}

		child := &SortGroup{
			Label:          fmt.Sprintf("%s: %s", criterion.Name, key),
			CriterionIndex: depth,
			Unknown:        downgraded[key],
		}
		if err := partition(ctx, child, byKey[key], criteria, depth+1); err != nil {
			return err
		}
		group.Children = append(group.Children, child)
	}

	return nil
}

// CardsAtPath walks the tree by group labels and returns every card under the
// reached node. A nil path returns all cards; a label that matches nothing
// returns nil.
func CardsAtPath(root *SortGroup, path []string) []*cards.Card {
	node := root
	for _, label := range path {
		var next *SortGroup
		for _, child := range node.Children {
			if child.Label == label {
				next = child
				break
			}
		}
		if next == nil {
			return nil
		}
		node = next
	}
	return collectCards(node)
}

func collectCards(group *SortGroup) []*cards.Card {
	out := make([]*cards.Card, 0, len(group.Cards))
	out = append(out, group.Cards...)
	for _, child := range group.Children {
		out = append(out, collectCards(child)...)
	}
	return out
}
