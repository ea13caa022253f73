package analysis

import (
	"context"
	"sort"

	"github.com/ramonehamilton/mtg-sorter/internal/cards"
)

// cancelCheckStride is how many cards are processed between context checks
// during aggregation over large inventories.
const cancelCheckStride = 256

// Bucket holds the accumulated totals for one grouping key.
type Bucket struct {
	// RawCount is the number of cards that mapped to this key.
	RawCount int

	// WeightedScore is the sum of the resolved weights of those cards.
	WeightedScore float64
}

// Result maps grouping key to its bucket. Iteration order is undefined;
// presentation layers sort keys themselves (see SortedKeys).
type Result map[string]Bucket

// SortedKeys returns the result's keys in lexicographic order.
func (r Result) SortedKeys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// TotalCount sums RawCount over all buckets.
func (r Result) TotalCount() int {
	total := 0
	for _, b := range r {
		total += b.RawCount
	}
	return total
}

// TotalScore sums WeightedScore over all buckets.
func (r Result) TotalScore() float64 {
	total := 0.0
	for _, b := range r {
		total += b.WeightedScore
	}
	return total
}

// KeyFunc derives a grouping key from a card.
type KeyFunc func(c *cards.Card) string

// FirstLetterKey is the default grouping key for set analysis: the name's
// first character uppercased, with non-letters bucketed under "#".
func FirstLetterKey(c *cards.Card) string {
	return c.FirstLetter()
}

// Aggregate groups cards by keyFn, accumulating a raw count and the weighted
// score per key. It never mutates its inputs, so a UI thread may read the
// same card slice concurrently. Cancellation is checked periodically; on
// cancel the partial result is discarded and ctx.Err() returned.
func Aggregate(ctx context.Context, list []*cards.Card, keyFn KeyFunc, weighter Weighter) (Result, error) {
	result := make(Result)

	for i, c := range list {
		if i%cancelCheckStride == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		key := keyFn(c)
		bucket := result[key]
		bucket.RawCount++
		bucket.WeightedScore += weighter.Weight(c)
		result[key] = bucket
	}

	return result, nil
}
