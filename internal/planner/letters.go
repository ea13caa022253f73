package planner

import (
	"sort"

	"github.com/ramonehamilton/mtg-sorter/internal/cards"
)

// PileMode selects how letter piles are formed for physical sorting.
type PileMode string

const (
	// PileSimple makes one pile per starting letter.
	PileSimple PileMode = "simple"

	// PileGrouped merges consecutive low-count letters until each pile
	// reaches the threshold.
	PileGrouped PileMode = "grouped"

	// PileOptimal packs low-count letters into piles by best-fit-decreasing,
	// at most maxLettersPerPile letters per pile.
	PileOptimal PileMode = "optimal"
)

// DefaultPileThreshold is the minimum owned-copy count that keeps a letter as
// its own pile.
const DefaultPileThreshold = 20

// maxLettersPerPile caps how many letters the optimal packer merges into one
// pile; more than three letter ranges gets unwieldy to leaf through.
const maxLettersPerPile = 3

const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// Pile is one physical stack of cards keyed by one or more starting letters.
type Pile struct {
	// Letters is the pile key, e.g. "A" or "XYZ".
	Letters string

	// Cards in the pile, in input order.
	Cards []*cards.Card
}

// TotalQuantity sums owned copies in the pile.
func (p *Pile) TotalQuantity() int {
	return cards.TotalQuantity(p.Cards)
}

// UnsortedQuantity sums owned copies not yet flagged sorted.
func (p *Pile) UnsortedQuantity() int {
	total := 0
	for _, c := range p.Cards {
		if !c.Sorted {
			total += c.Quantity
		}
	}
	return total
}

// BuildLetterPiles plans per-letter piles for one set's inventory. It returns
// the piles sorted by key plus the letter-to-pile mapping used. Cards whose
// name starts outside A-Z always form their own "#" pile; a non-positive
// threshold falls back to DefaultPileThreshold.
func BuildLetterPiles(inventory []*cards.Card, mode PileMode, threshold int) ([]*Pile, map[string]string) {
	if threshold <= 0 {
		threshold = DefaultPileThreshold
	}

	counts := letterQuantities(inventory)

	var mapping map[string]string
	switch mode {
	case PileGrouped:
		mapping = groupedMapping(counts, threshold)
	case PileOptimal:
		mapping = optimalMapping(counts, threshold)
	default:
		mapping = identityMapping()
	}

	piles := make(map[string]*Pile)
	for _, c := range inventory {
		letter := c.FirstLetter()
		key, ok := mapping[letter]
		if !ok {
			key = letter
		}
		pile := piles[key]
		if pile == nil {
			pile = &Pile{Letters: key}
			piles[key] = pile
		}
		pile.Cards = append(pile.Cards, c)
	}

	keys := make([]string, 0, len(piles))
	for key := range piles {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	out := make([]*Pile, 0, len(keys))
	for _, key := range keys {
		out = append(out, piles[key])
	}
	return out, mapping
}

// letterQuantities counts owned copies per starting letter.
func letterQuantities(inventory []*cards.Card) map[string]int {
	counts := make(map[string]int)
	for _, c := range inventory {
		counts[c.FirstLetter()] += c.Quantity
	}
	return counts
}

func identityMapping() map[string]string {
	mapping := make(map[string]string, len(alphabet)+1)
	for _, letter := range alphabet {
		mapping[string(letter)] = string(letter)
	}
	mapping["#"] = "#"
	return mapping
}

// groupedMapping merges runs of consecutive low-count letters. A run is
// flushed once its total reaches the threshold or the next letter is not
// small, so merged piles stay alphabetically contiguous ("ABC", not "AQZ").
func groupedMapping(counts map[string]int, threshold int) map[string]string {
	mapping := map[string]string{"#": "#"}

	buffer := ""
	bufferTotal := 0
	flush := func() {
		for _, ch := range buffer {
			mapping[string(ch)] = buffer
		}
		buffer = ""
		bufferTotal = 0
	}

	for i := 0; i < len(alphabet); i++ {
		letter := string(alphabet[i])
		count := counts[letter]

		if count > 0 && count < threshold {
			buffer += letter
			bufferTotal += count

			nextSmall := false
			if i < len(alphabet)-1 {
				next := counts[string(alphabet[i+1])]
				nextSmall = next > 0 && next < threshold
			}
			if bufferTotal >= threshold || !nextSmall {
				flush()
			}
			continue
		}

		flush()
		mapping[letter] = letter
	}
	flush()

	return mapping
}

// optimalMapping keeps high-count letters as their own piles and bin-packs
// the low-count ones, best-fit decreasing, at most maxLettersPerPile each.
func optimalMapping(counts map[string]int, threshold int) map[string]string {
	mapping := map[string]string{"#": "#"}

	type letterCount struct {
		letter string
		count  int
	}

	var low []letterCount
	for _, ch := range alphabet {
		letter := string(ch)
		count := counts[letter]
		switch {
		case count >= threshold:
			mapping[letter] = letter
		case count > 0:
			low = append(low, letterCount{letter, count})
		default:
			mapping[letter] = letter
		}
	}

	// Best-fit decreasing: place each letter into the fullest bin it still
	// fits, opening a new bin when none fits.
	sort.Slice(low, func(i, j int) bool {
		if low[i].count != low[j].count {
			return low[i].count > low[j].count
		}
		return low[i].letter < low[j].letter
	})

	type bin struct {
		letters []letterCount
		total   int
	}
	var bins []*bin

	for _, lc := range low {
		var best *bin
		bestRemaining := -1
		for _, b := range bins {
			if len(b.letters) >= maxLettersPerPile {
				continue
			}
			if b.total+lc.count > threshold {
				continue
			}
			remaining := threshold - (b.total + lc.count)
			if bestRemaining == -1 || remaining < bestRemaining {
				bestRemaining = remaining
				best = b
			}
		}
		if best == nil {
			best = &bin{}
			bins = append(bins, best)
		}
		best.letters = append(best.letters, lc)
		best.total += lc.count
	}

	for _, b := range bins {
		letters := make([]string, 0, len(b.letters))
		for _, lc := range b.letters {
			letters = append(letters, lc.letter)
		}
		sort.Strings(letters)
		key := ""
		for _, l := range letters {
			key += l
		}
		for _, l := range letters {
			mapping[l] = key
		}
	}

	return mapping
}
