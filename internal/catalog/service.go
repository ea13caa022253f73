package catalog

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/ramonehamilton/mtg-sorter/internal/cards"
	"github.com/ramonehamilton/mtg-sorter/internal/storage"
)

// SetNotFoundError reports a set code unknown to the catalog.
type SetNotFoundError struct {
	Code string
}

func (e *SetNotFoundError) Error() string {
	return fmt.Sprintf("set %q not found", e.Code)
}

// CardNotFoundError reports a card name absent from a set.
type CardNotFoundError struct {
	SetCode string
	Name    string
}

func (e *CardNotFoundError) Error() string {
	return fmt.Sprintf("card %q not found in set %s", e.Name, e.SetCode)
}

// Fetcher is the remote half of the catalog, satisfied by *Client.
// Tests substitute an in-memory fake.
type Fetcher interface {
	SearchSetCards(ctx context.Context, setCode string) ([]scryfallCard, error)
}

// Service returns a set's normalized card records, cache first.
type Service struct {
	fetcher Fetcher
	repo    *storage.SetCardRepository
	ttl     time.Duration
}

// NewService creates a catalog service. A zero ttl means cached sets never
// expire.
func NewService(fetcher Fetcher, repo *storage.SetCardRepository, ttl time.Duration) *Service {
	return &Service{fetcher: fetcher, repo: repo, ttl: ttl}
}

// SetCards returns the set's cards ordered by name. Cache hits skip the
// network entirely; misses fetch, normalize, and persist before returning.
// An unknown set code yields *SetNotFoundError.
func (s *Service) SetCards(ctx context.Context, setCode string) ([]*cards.Card, error) {
	setCode = strings.ToUpper(strings.TrimSpace(setCode))
	if setCode == "" {
		return nil, &SetNotFoundError{Code: setCode}
	}

	cached, err := s.repo.IsSetCached(ctx, setCode, s.ttl)
	if err != nil {
		return nil, fmt.Errorf("check set cache: %w", err)
	}
	if cached {
		return s.repo.CardsBySet(ctx, setCode)
	}

	log.Printf("[Catalog] Cache miss for %s, fetching from Scryfall", setCode)
	raw, err := s.fetcher.SearchSetCards(ctx, strings.ToLower(setCode))
	if err != nil {
		var notFound *NotFoundError
		if errors.As(err, &notFound) {
			return nil, &SetNotFoundError{Code: setCode}
		}
		return nil, fmt.Errorf("fetch set %s: %w", setCode, err)
	}
	if len(raw) == 0 {
		return nil, &SetNotFoundError{Code: setCode}
	}

	// Each catalog entry starts as one owned, unsorted copy; quantities are
	// adjusted per card afterwards.
	list := make([]*cards.Card, 0, len(raw))
	for _, rc := range raw {
		list = append(list, &cards.Card{
			ScryfallID: rc.ID,
			Name:       rc.Name,
			SetCode:    setCode,
			Rarity:     cards.ParseRarity(rc.Rarity),
			Quantity:   1,
		})
	}

	if err := s.repo.SaveCards(ctx, setCode, list, time.Now()); err != nil {
		return nil, fmt.Errorf("cache set %s: %w", setCode, err)
	}
	log.Printf("[Catalog] Cached %d cards for %s", len(list), setCode)

	// Read back through the repository so callers always see the same
	// (name-ordered) sequence regardless of cache state.
	return s.repo.CardsBySet(ctx, setCode)
}

// MarkSorted flags a card of the set as sorted or unsorted. The set is
// fetched first if not cached, so the flag always lands on a real record.
func (s *Service) MarkSorted(ctx context.Context, setCode, cardName string, sorted bool) error {
	setCode = strings.ToUpper(strings.TrimSpace(setCode))
	if _, err := s.SetCards(ctx, setCode); err != nil {
		return err
	}

	updated, err := s.repo.SetSorted(ctx, setCode, cardName, sorted)
	if err != nil {
		return fmt.Errorf("mark card sorted: %w", err)
	}
	if !updated {
		return &CardNotFoundError{SetCode: setCode, Name: cardName}
	}
	return nil
}

// SetQuantity records how many copies of a card the user owns.
func (s *Service) SetQuantity(ctx context.Context, setCode, cardName string, quantity int) error {
	setCode = strings.ToUpper(strings.TrimSpace(setCode))
	if _, err := s.SetCards(ctx, setCode); err != nil {
		return err
	}

	updated, err := s.repo.SetQuantity(ctx, setCode, cardName, quantity)
	if err != nil {
		return fmt.Errorf("set card quantity: %w", err)
	}
	if !updated {
		return &CardNotFoundError{SetCode: setCode, Name: cardName}
	}
	return nil
}
