package boosterdata

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/ramonehamilton/mtg-sorter/internal/booster"
	"github.com/ramonehamilton/mtg-sorter/internal/storage"
)

// ErrUnavailable means the set exists but no booster configuration can be
// found for it, even via its parent set. Callers should fall back to static
// rarity weighting.
var ErrUnavailable = errors.New("booster configuration unavailable")

// maxParentHops bounds the parent-set chain walked when a child set (a
// promo or commander subset) carries no booster data of its own.
const maxParentHops = 3

// Fetcher is the remote half of the booster source, satisfied by *Client.
// Tests substitute an in-memory fake.
type Fetcher interface {
	FetchSet(ctx context.Context, setCode string) ([]byte, error)
}

// Service returns a set's booster configurations, cache first.
type Service struct {
	fetcher Fetcher
	repo    *storage.BoosterConfigRepository
	ttl     time.Duration
}

// NewService creates a booster-data service. A zero ttl means cached
// payloads never expire.
func NewService(fetcher Fetcher, repo *storage.BoosterConfigRepository, ttl time.Duration) *Service {
	return &Service{fetcher: fetcher, repo: repo, ttl: ttl}
}

// Configurations returns every booster configuration MTGJSON publishes for
// the set, keyed by configuration name. A set with no booster data falls
// back to its parent set; if that also has none, ErrUnavailable is returned.
func (s *Service) Configurations(ctx context.Context, setCode string) (map[string]booster.Configuration, error) {
	setCode = strings.ToUpper(strings.TrimSpace(setCode))
	if setCode == "" {
		return nil, ErrUnavailable
	}

	if rec, ok, err := s.repo.Get(ctx, setCode, s.ttl); err != nil {
		return nil, fmt.Errorf("check booster cache: %w", err)
	} else if ok {
		data, err := parsePayload(rec.RawJSON)
		if err != nil {
			return nil, fmt.Errorf("cached booster data for %s: %w", setCode, err)
		}
		return convertConfigurations(data)
	}

	log.Printf("[BoosterData] Cache miss for %s, fetching from MTGJSON", setCode)

	code := setCode
	for hop := 0; hop <= maxParentHops; hop++ {
		raw, err := s.fetcher.FetchSet(ctx, code)
		if err != nil {
			var notFound *NotFoundError
			if errors.As(err, &notFound) {
				return nil, fmt.Errorf("%w: set %s unknown to MTGJSON", ErrUnavailable, code)
			}
			return nil, fmt.Errorf("fetch booster data for %s: %w", code, err)
		}

		data, err := parsePayload(raw)
		if err != nil {
			return nil, err
		}

		if len(data.Booster) > 0 {
			configs, err := convertConfigurations(data)
			if err != nil {
				return nil, err
			}
			if err := s.repo.Save(ctx, storage.BoosterConfigRecord{
				SetCode:   setCode,
				RawJSON:   raw,
				SourceSet: code,
				FetchedAt: time.Now(),
			}); err != nil {
				return nil, fmt.Errorf("cache booster data for %s: %w", setCode, err)
			}
			if code != setCode {
				log.Printf("[BoosterData] %s has no booster data, using parent set %s", setCode, code)
			}
			return configs, nil
		}

		if data.ParentCode == "" {
			break
		}
		code = strings.ToUpper(data.ParentCode)
	}

	return nil, fmt.Errorf("%w: no booster data for %s or its parents", ErrUnavailable, setCode)
}
