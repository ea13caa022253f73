// Package catalog is the card-catalog collaborator: it fetches a set's
// normalized card records from Scryfall and caches them locally.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/ramonehamilton/mtg-sorter/internal/httpapi"
)

const (
	defaultBaseURL   = "https://api.scryfall.com"
	defaultRateDelay = 100 * time.Millisecond // 10 req/sec
	requestTimeout   = 30 * time.Second
)

// Client is a Scryfall API client.
type Client struct {
	api     *httpapi.Client
	baseURL string
}

// ClientOptions configures a Client. Zero values take defaults.
type ClientOptions struct {
	BaseURL   string
	UserAgent string
	RateDelay time.Duration
}

// NewClient creates a Scryfall client.
func NewClient(opts ClientOptions) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "mtg-sorter/1.0"
	}
	if opts.RateDelay <= 0 {
		opts.RateDelay = defaultRateDelay
	}
	return &Client{
		api:     httpapi.NewClient(opts.UserAgent, opts.RateDelay, requestTimeout),
		baseURL: opts.BaseURL,
	}
}

// searchResult is one page of a Scryfall card search.
type searchResult struct {
	TotalCards int            `json:"total_cards"`
	HasMore    bool           `json:"has_more"`
	NextPage   string         `json:"next_page"`
	Data       []scryfallCard `json:"data"`
}

// scryfallCard carries the subset of Scryfall's card object this tool needs.
type scryfallCard struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	SetCode string `json:"set"`
	Rarity  string `json:"rarity"`
}

// NotFoundError reports a 404 from the API.
type NotFoundError struct {
	URL string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("resource not found: %s", e.URL)
}

// apiError is Scryfall's error response body.
type apiError struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Details string `json:"details"`
}

func (e *apiError) Error() string {
	return fmt.Sprintf("scryfall API error %d (%s): %s", e.Status, e.Code, e.Details)
}

// SearchSetCards fetches every card of a set, following pagination.
func (c *Client) SearchSetCards(ctx context.Context, setCode string) ([]scryfallCard, error) {
	query := url.Values{}
	query.Set("q", fmt.Sprintf("set:%s", setCode))
	query.Set("unique", "cards")
	pageURL := fmt.Sprintf("%s/cards/search?%s", c.baseURL, query.Encode())

	var all []scryfallCard
	for pageURL != "" {
		var page searchResult
		if err := c.getJSON(ctx, pageURL, &page); err != nil {
			return nil, fmt.Errorf("search cards for set %s: %w", setCode, err)
		}
		all = append(all, page.Data...)

		pageURL = ""
		if page.HasMore && page.NextPage != "" {
			pageURL = page.NextPage
		}
	}
	return all, nil
}

// getJSON performs a GET and decodes the response, translating Scryfall's
// error responses into their typed forms.
func (c *Client) getJSON(ctx context.Context, requestURL string, result any) error {
	body, err := c.api.Get(ctx, requestURL)
	if err != nil {
		var statusErr *httpapi.StatusError
		if errors.As(err, &statusErr) {
			if statusErr.StatusCode == http.StatusNotFound {
				return &NotFoundError{URL: requestURL}
			}
			var apiErr apiError
			if json.Unmarshal(statusErr.Body, &apiErr) == nil && apiErr.Details != "" {
				return &apiErr
			}
			return fmt.Errorf("API request failed with status %d: %s", statusErr.StatusCode, string(statusErr.Body))
		}
		return err
	}

	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("parse JSON response: %w", err)
	}
	return nil
}
