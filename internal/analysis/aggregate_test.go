package analysis

import (
	"context"
	"math"
	"testing"

	"github.com/ramonehamilton/mtg-sorter/internal/cards"
	"github.com/ramonehamilton/mtg-sorter/internal/events"
)

const tolerance = 1e-6

func testCards() []*cards.Card {
	return []*cards.Card{
		{ScryfallID: "a1", Name: "Ajani", Rarity: cards.RarityMythic},
		{ScryfallID: "a2", Name: "Abzan Banner", Rarity: cards.RarityCommon},
		{ScryfallID: "b1", Name: "Beast", Rarity: cards.RarityRare},
		{ScryfallID: "n1", Name: "9th Bridge Patrol", Rarity: cards.RarityCommon},
	}
}

func TestAggregateByFirstLetter(t *testing.T) {
	list := testCards()

	result, err := Aggregate(context.Background(), list, FirstLetterKey, countWeighter{})
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}

	want := map[string]int{"A": 2, "B": 1, "#": 1}
	if len(result) != len(want) {
		t.Fatalf("got %d buckets %v, want %d", len(result), result, len(want))
	}
	for key, count := range want {
		if result[key].RawCount != count {
			t.Errorf("bucket[%s].RawCount = %d, want %d", key, result[key].RawCount, count)
		}
	}

	if result.TotalCount() != len(list) {
		t.Errorf("TotalCount() = %d, want %d", result.TotalCount(), len(list))
	}
}

func TestAggregateWeightedTotalsMatch(t *testing.T) {
	list := testCards()
	weighter := ResolveWeighter(ModeRarity, nil, nil, nil)

	result, err := Aggregate(context.Background(), list, FirstLetterKey, weighter)
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}

	wantScore := 0.0
	for _, c := range list {
		wantScore += weighter.Weight(c)
	}
	if math.Abs(result.TotalScore()-wantScore) > tolerance {
		t.Errorf("TotalScore() = %v, want %v", result.TotalScore(), wantScore)
	}
}

func TestAggregateDoesNotMutateCards(t *testing.T) {
	list := testCards()
	list[0].Quantity = 4
	before := *list[0]

	if _, err := Aggregate(context.Background(), list, FirstLetterKey, countWeighter{}); err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}

	if *list[0] != before {
		t.Errorf("Aggregate mutated card: got %+v, want %+v", *list[0], before)
	}
}

func TestAggregateCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := Aggregate(ctx, testCards(), FirstLetterKey, countWeighter{})
	if err == nil {
		t.Fatal("expected cancellation error")
	}
	if result != nil {
		t.Errorf("expected nil result on cancellation, got %v", result)
	}
}

func TestResolveWeighterProbability(t *testing.T) {
	probs := map[string]float64{"a1": 0.0625, "a2": 2.5}
	weighter := ResolveWeighter(ModeProbability, probs, nil, nil)

	list := testCards()
	if got := weighter.Weight(list[0]); math.Abs(got-0.0625) > tolerance {
		t.Errorf("Weight(a1) = %v, want 0.0625", got)
	}
	// Card on no sheet weighs zero.
	if got := weighter.Weight(list[2]); got != 0 {
		t.Errorf("Weight(b1) = %v, want 0", got)
	}
}

func TestResolveWeighterFallbackNoticeOnce(t *testing.T) {
	var collector events.Collector
	weighter := ResolveWeighter(ModeProbability, nil, nil, &collector)

	table := DefaultRarityWeights()
	for _, c := range testCards() {
		want := table[c.Rarity]
		if got := weighter.Weight(c); math.Abs(got-want) > tolerance {
			t.Errorf("Weight(%s) = %v, want static table value %v", c.Name, got, want)
		}
	}

	notices := collector.Notices()
	if len(notices) != 1 {
		t.Fatalf("got %d notices, want exactly 1", len(notices))
	}
	if notices[0].Kind != events.NoticeFallbackUsed {
		t.Errorf("notice kind = %s, want %s", notices[0].Kind, events.NoticeFallbackUsed)
	}
}

func TestResolveWeighterCountMode(t *testing.T) {
	weighter := ResolveWeighter(ModeCount, nil, nil, nil)
	for _, c := range testCards() {
		if got := weighter.Weight(c); got != 1 {
			t.Errorf("Weight(%s) = %v, want 1", c.Name, got)
		}
	}
}
