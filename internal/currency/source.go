package currency

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultRatesURL is the public USD based exchange rate endpoint
const DefaultRatesURL = "https://open.er-api.com/v6/latest/USD"

// HTTPRateSource fetches rate tables from an open.er-api.com compatible endpoint
type HTTPRateSource struct {
	url        string
	httpClient *http.Client
}

type ratesResponse struct {
	Result string             `json:"result"`
	Rates  map[string]float64 `json:"rates"`
}

// NewHTTPRateSource creates a rate source. An empty url uses DefaultRatesURL.
func NewHTTPRateSource(url string, httpClient *http.Client) *HTTPRateSource {
	if url == "" {
		url = DefaultRatesURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPRateSource{url: url, httpClient: httpClient}
}

// Fetch implements RateFetcher
func (s *HTTPRateSource) Fetch(ctx context.Context) (map[string]float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("exchange rate request failed: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("exchange rate API returned %d", resp.StatusCode)
	}

	var body ratesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode exchange rates: %w", err)
	}
	if body.Result != "" && body.Result != "success" {
		return nil, fmt.Errorf("exchange rate API result %q", body.Result)
	}

	return body.Rates, nil
}
