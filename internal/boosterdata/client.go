// Package boosterdata is the booster-config collaborator: it fetches raw
// MTGJSON booster configuration for a set and caches it locally.
package boosterdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ramonehamilton/mtg-sorter/internal/httpapi"
)

const (
	defaultBaseURL   = "https://mtgjson.com/api/v5"
	defaultRateDelay = 200 * time.Millisecond
	requestTimeout   = 60 * time.Second
)

// Client is an MTGJSON API client.
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

// NewClient creates an MTGJSON client.
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

// NotFoundError reports a set MTGJSON does not know.
type NotFoundError struct {
	SetCode string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("MTGJSON has no data for set %q", e.SetCode)
}

// setPayload is the envelope of an MTGJSON per-set response.
type setPayload struct {
	Data setData `json:"data"`
}

// setData carries the subset of MTGJSON's set object this tool needs.
type setData struct {
	Code       string                `json:"code"`
	Name       string                `json:"name"`
	ParentCode string                `json:"parentCode"`
	Booster    map[string]rawBooster `json:"booster"`
	Cards      []rawCard             `json:"cards"`
}

// rawBooster is one booster configuration as MTGJSON serializes it.
type rawBooster struct {
	Sheets   map[string]rawSheet `json:"sheets"`
	Boosters []rawBoosterVariant `json:"boosters"`
}

// rawSheet is one print sheet: card UUID -> weight, plus the declared total.
type rawSheet struct {
	Cards       map[string]int `json:"cards"`
	TotalWeight int            `json:"totalWeight"`
	Foil        bool           `json:"foil"`
}

// rawBoosterVariant is one pack layout; contents maps sheet name -> picks.
type rawBoosterVariant struct {
	Contents map[string]int `json:"contents"`
	Weight   int            `json:"weight"`
}

// rawCard links an MTGJSON card UUID to its Scryfall identifier so sheet
// entries can be re-keyed onto the catalog's identifier space.
type rawCard struct {
	UUID        string `json:"uuid"`
	Name        string `json:"name"`
	Identifiers struct {
		ScryfallID string `json:"scryfallId"`
	} `json:"identifiers"`
}

// FetchSet downloads one set's MTGJSON payload.
func (c *Client) FetchSet(ctx context.Context, setCode string) ([]byte, error) {
	setCode = strings.ToUpper(strings.TrimSpace(setCode))
	requestURL := fmt.Sprintf("%s/%s.json", c.baseURL, setCode)

	body, err := c.api.Get(ctx, requestURL)
	if err != nil {
		var statusErr *httpapi.StatusError
		if errors.As(err, &statusErr) {
			if statusErr.StatusCode == http.StatusNotFound {
				return nil, &NotFoundError{SetCode: setCode}
			}
			return nil, fmt.Errorf("MTGJSON request failed with status %d", statusErr.StatusCode)
		}
		return nil, err
	}
	return body, nil
}

// parsePayload decodes a raw per-set payload.
func parsePayload(raw []byte) (setData, error) {
	var payload setPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return setData{}, fmt.Errorf("parse MTGJSON payload: %w", err)
	}
	return payload.Data, nil
}
