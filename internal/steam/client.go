// Package steam is a client for the Steam Web API and storefront endpoints.
package steam

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/mcoot/spendboard/internal/model"
)

// CurrencyFree is reported for free-to-play items
const CurrencyFree = "FREE"

// ErrMissingAPIKey is returned by calls that need a Web API key when none is set
var ErrMissingAPIKey = errors.New("steam API key not configured")

// OwnedItem is a game in a user's library
type OwnedItem struct {
	AppID model.AppID `json:"appid"`
	Name  string      `json:"name"`
}

// PriceInfo is the localized store price of an item
type PriceInfo struct {
	// PriceMinor is the final price in minor units (cents)
	PriceMinor int64
	Currency   string
	Image      string
	// Formatted is the store's own display string, if any
	Formatted string
}

// IsFree reports whether the item costs nothing
func (p *PriceInfo) IsFree() bool {
	return p.Currency == CurrencyFree || p.PriceMinor == 0
}

// Amount returns the price in major units
func (p *PriceInfo) Amount() float64 {
	return float64(p.PriceMinor) / 100
}

// SearchItem is a single store search hit
type SearchItem struct {
	AppID     model.AppID
	Name      string
	TinyImage string
}

// Client talks to the Steam Web API and store
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// NewClient creates a Steam client
func NewClient(cfg Config, httpClient *http.Client) *Client {
	defaults := DefaultConfig()
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = defaults.APIBaseURL
	}
	if cfg.StoreBaseURL == "" {
		cfg.StoreBaseURL = defaults.StoreBaseURL
	}
	if cfg.Language == "" {
		cfg.Language = defaults.Language
	}
	if cfg.SearchLimit <= 0 {
		cfg.SearchLimit = defaults.SearchLimit
	}
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = defaults.Timeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{cfg: cfg, httpClient: httpClient}
}

// Configured reports whether library lookups can be made
func (c *Client) Configured() bool {
	return c.cfg.APIKey != ""
}

type ownedGamesResponse struct {
	Response struct {
		GameCount int         `json:"game_count"`
		Games     []OwnedItem `json:"games"`
	} `json:"response"`
}

// GetOwnedItems lists the games in a user's library. Free games that were
// played are excluded, matching what counts as a purchase.
func (c *Client) GetOwnedItems(ctx context.Context, steamID string) ([]OwnedItem, error) {
	if !c.Configured() {
		return nil, ErrMissingAPIKey
	}

	q := url.Values{}
	q.Set("key", c.cfg.APIKey)
	q.Set("steamid", steamID)
	q.Set("include_appinfo", "true")
	q.Set("include_played_free_games", "false")
	q.Set("format", "json")

	var body ownedGamesResponse
	if err := c.getJSON(ctx, c.cfg.APIBaseURL, "/IPlayerService/GetOwnedGames/v1/", q, &body); err != nil {
		return nil, err
	}
	return body.Response.Games, nil
}

type appDetails struct {
	Success bool `json:"success"`
	Data    struct {
		IsFree        bool   `json:"is_free"`
		HeaderImage   string `json:"header_image"`
		PriceOverview *struct {
			Currency       string `json:"currency"`
			Final          int64  `json:"final"`
			FinalFormatted string `json:"final_formatted"`
		} `json:"price_overview"`
	} `json:"data"`
}

// GetItemPriceInfo returns the localized price of an app. A nil result with a
// nil error means the store has no price for it.
func (c *Client) GetItemPriceInfo(ctx context.Context, appID model.AppID, region string) (*PriceInfo, error) {
	id := strconv.FormatInt(int64(appID), 10)

	q := url.Values{}
	q.Set("appids", id)
	q.Set("cc", region)
	q.Set("l", c.cfg.Language)

	var body map[string]appDetails
	if err := c.getJSON(ctx, c.cfg.StoreBaseURL, "/api/appdetails", q, &body); err != nil {
		return nil, err
	}

	details, ok := body[id]
	if !ok || !details.Success {
		return nil, nil
	}

	if details.Data.IsFree {
		return &PriceInfo{Currency: CurrencyFree, Image: details.Data.HeaderImage}, nil
	}

	po := details.Data.PriceOverview
	if po == nil {
		return nil, nil
	}

	currency := po.Currency
	if currency == "" {
		currency = model.CurrencyUSD
	}

	return &PriceInfo{
		PriceMinor: po.Final,
		Currency:   currency,
		Image:      details.Data.HeaderImage,
		Formatted:  po.FinalFormatted,
	}, nil
}

type storeSearchResponse struct {
	Total int `json:"total"`
	Items []struct {
		ID        model.AppID `json:"id"`
		Name      string      `json:"name"`
		TinyImage string      `json:"tiny_image"`
	} `json:"items"`
}

// SearchCatalog searches the store and returns at most SearchLimit items
func (c *Client) SearchCatalog(ctx context.Context, query, region string) ([]SearchItem, error) {
	q := url.Values{}
	q.Set("term", query)
	q.Set("l", c.cfg.Language)
	q.Set("cc", region)

	var body storeSearchResponse
	if err := c.getJSON(ctx, c.cfg.StoreBaseURL, "/api/storesearch/", q, &body); err != nil {
		return nil, err
	}

	items := body.Items
	if len(items) > c.cfg.SearchLimit {
		items = items[:c.cfg.SearchLimit]
	}

	result := make([]SearchItem, len(items))
	for i, it := range items {
		result[i] = SearchItem{AppID: it.ID, Name: it.Name, TinyImage: it.TinyImage}
	}
	return result, nil
}

func (c *Client) getJSON(ctx context.Context, base, path string, q url.Values, out any) error {
	endpoint := strings.TrimSuffix(base, "/") + path + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("steam request %s failed: %w", path, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("steam %s returned %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode steam %s response: %w", path, err)
	}
	return nil
}
