package planner

import (
	"reflect"
	"testing"

	"github.com/ramonehamilton/mtg-sorter/internal/cards"
)

func cardNamed(name string, qty int) *cards.Card {
	return &cards.Card{ScryfallID: name, Name: name, Quantity: qty}
}

func pileKeys(piles []*Pile) []string {
	keys := make([]string, 0, len(piles))
	for _, p := range piles {
		keys = append(keys, p.Letters)
	}
	return keys
}

func TestBuildLetterPilesSimple(t *testing.T) {
	inv := []*cards.Card{
		cardNamed("Ajani", 3),
		cardNamed("Beast", 2),
		cardNamed("angel", 1),
		cardNamed("9th Bridge Patrol", 1),
	}

	piles, mapping := BuildLetterPiles(inv, PileSimple, 0)

	want := []string{"#", "A", "B"}
	if got := pileKeys(piles); !reflect.DeepEqual(got, want) {
		t.Fatalf("pile keys = %v, want %v", got, want)
	}
	if mapping["A"] != "A" {
		t.Errorf("mapping[A] = %q, want A", mapping["A"])
	}

	// Case-folded names share a letter pile.
	if got := piles[1].TotalQuantity(); got != 4 {
		t.Errorf("pile A quantity = %d, want 4", got)
	}
}

func TestBuildLetterPilesGroupedMergesConsecutiveRuns(t *testing.T) {
	inv := []*cards.Card{
		cardNamed("Ajani", 50), // A stays alone, above threshold
		cardNamed("Bear", 5),   // B, C, D are a small consecutive run
		cardNamed("Cat", 5),
		cardNamed("Dog", 5),
		cardNamed("Zebra", 3), // isolated small letter still gets flushed
	}

	piles, mapping := BuildLetterPiles(inv, PileGrouped, 20)

	if mapping["A"] != "A" {
		t.Errorf("mapping[A] = %q, want A", mapping["A"])
	}
	for _, letter := range []string{"B", "C", "D"} {
		if mapping[letter] != "BCD" {
			t.Errorf("mapping[%s] = %q, want BCD", letter, mapping[letter])
		}
	}
	if mapping["Z"] != "Z" {
		t.Errorf("mapping[Z] = %q, want Z", mapping["Z"])
	}

	want := []string{"A", "BCD", "Z"}
	if got := pileKeys(piles); !reflect.DeepEqual(got, want) {
		t.Fatalf("pile keys = %v, want %v", got, want)
	}

	var bcd *Pile
	for _, p := range piles {
		if p.Letters == "BCD" {
			bcd = p
		}
	}
	if bcd.TotalQuantity() != 15 {
		t.Errorf("BCD pile quantity = %d, want 15", bcd.TotalQuantity())
	}
}

func TestBuildLetterPilesGroupedFlushesAtThreshold(t *testing.T) {
	inv := []*cards.Card{
		cardNamed("Bear", 12),
		cardNamed("Cat", 10),
		cardNamed("Dog", 10),
		cardNamed("Eel", 10),
	}

	_, mapping := BuildLetterPiles(inv, PileGrouped, 20)

	// B+C reach the threshold together; D+E form the next pile.
	if mapping["B"] != "BC" || mapping["C"] != "BC" {
		t.Errorf("mapping B=%q C=%q, want both BC", mapping["B"], mapping["C"])
	}
	if mapping["D"] != "DE" || mapping["E"] != "DE" {
		t.Errorf("mapping D=%q E=%q, want both DE", mapping["D"], mapping["E"])
	}
}

func TestBuildLetterPilesOptimalRespectsLetterCap(t *testing.T) {
	inv := []*cards.Card{
		cardNamed("Asp", 4),
		cardNamed("Bat", 4),
		cardNamed("Cow", 4),
		cardNamed("Dove", 4),
		cardNamed("Eel", 4),
	}

	piles, mapping := BuildLetterPiles(inv, PileOptimal, 20)

	// All five letters are small, but a pile may hold at most three letters.
	pileLetters := make(map[string]int)
	for _, letter := range []string{"A", "B", "C", "D", "E"} {
		pileLetters[mapping[letter]]++
	}
	for key, n := range pileLetters {
		if n > maxLettersPerPile {
			t.Errorf("pile %q holds %d letters, cap is %d", key, n, maxLettersPerPile)
		}
	}
	if len(piles) < 2 {
		t.Errorf("expected at least 2 piles under the letter cap, got %d", len(piles))
	}
}

func TestBuildLetterPilesOptimalKeepsBigLettersAlone(t *testing.T) {
	inv := []*cards.Card{
		cardNamed("Ajani", 30),
		cardNamed("Bear", 2),
		cardNamed("Cat", 2),
	}

	_, mapping := BuildLetterPiles(inv, PileOptimal, 20)

	if mapping["A"] != "A" {
		t.Errorf("mapping[A] = %q, want A", mapping["A"])
	}
	if mapping["B"] != "BC" || mapping["C"] != "BC" {
		t.Errorf("mapping B=%q C=%q, want both BC", mapping["B"], mapping["C"])
	}
}

func TestBuildLetterPilesGroupedSingleCopyInventory(t *testing.T) {
	// Catalog-backed inventories start with one copy per card, so a small
	// set must still trigger low-count merging rather than one pile per letter.
	inv := []*cards.Card{
		cardNamed("Abzan Banner", 1),
		cardNamed("Bear's Companion", 1),
		cardNamed("Crater's Claws", 1),
	}

	piles, mapping := BuildLetterPiles(inv, PileGrouped, 20)

	want := []string{"ABC"}
	if got := pileKeys(piles); !reflect.DeepEqual(got, want) {
		t.Fatalf("pile keys = %v, want %v", got, want)
	}
	if mapping["A"] != "ABC" {
		t.Errorf("mapping[A] = %q, want ABC", mapping["A"])
	}
	if got := piles[0].TotalQuantity(); got != 3 {
		t.Errorf("pile quantity = %d, want 3", got)
	}
}

func TestPileUnsortedQuantity(t *testing.T) {
	a := cardNamed("Ajani", 3)
	b := cardNamed("Angel", 2)
	piles, _ := BuildLetterPiles([]*cards.Card{a, b}, PileSimple, 0)

	if got := piles[0].UnsortedQuantity(); got != 5 {
		t.Fatalf("UnsortedQuantity() = %d, want 5", got)
	}
	a.MarkSorted(true)
	if got := piles[0].UnsortedQuantity(); got != 2 {
		t.Errorf("UnsortedQuantity() after MarkSorted = %d, want 2", got)
	}
}
