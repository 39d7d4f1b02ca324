// Package currency converts store prices to USD using cached exchange rates.
package currency

import (
	"context"
	"errors"
	"log/slog"
	"maps"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"github.com/mcoot/spendboard/internal/dependencies/clock"
)

const (
	// CodeUSD is the base currency of the rate table
	CodeUSD = "USD"
	// CodeFree marks free-to-play items in catalog price data
	CodeFree = "FREE"

	// DefaultTTL is how long a fetched rate table is served before refreshing
	DefaultTTL = time.Hour
)

var errEmptyRates = errors.New("rate source returned no rates")

// RateFetcher returns a table of currency code to units per USD
type RateFetcher func(ctx context.Context) (map[string]float64, error)

// FallbackRates returns the approximate table used when no rates were ever fetched
func FallbackRates() map[string]float64 {
	return map[string]float64{
		"USD": 1,
		"UYU": 43,
		"ARS": 1200,
		"CLP": 950,
		"COP": 4200,
		"MXN": 17,
		"BRL": 5,
		"EUR": 0.92,
		"GBP": 0.79,
	}
}

// Converter converts amounts to USD. It is safe for concurrent use; concurrent
// refreshes of an expired table collapse into a single fetch.
type Converter struct {
	fetch  RateFetcher
	clock  clock.Clock
	ttl    time.Duration
	logger *slog.Logger

	mu        sync.RWMutex
	rates     map[string]float64
	fetchedAt time.Time

	group singleflight.Group
}

// NewConverter creates a Converter. A zero ttl uses DefaultTTL.
func NewConverter(fetch RateFetcher, clk clock.Clock, ttl time.Duration, logger *slog.Logger) *Converter {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Converter{
		fetch:  fetch,
		clock:  clk,
		ttl:    ttl,
		logger: logger.With(slog.String("component", "currency")),
	}
}

// ConvertToUSD converts amount in the given currency to USD, rounded to the cent.
// It never fails: unknown currencies and zero rates return the amount unchanged.
func (c *Converter) ConvertToUSD(ctx context.Context, amount float64, from string) float64 {
	if from == CodeUSD || from == CodeFree || amount == 0 {
		return amount
	}

	rate, ok := c.table(ctx)[from]
	if !ok || rate == 0 {
		return amount
	}

	usd, _ := decimal.NewFromFloat(amount).
		Div(decimal.NewFromFloat(rate)).
		Round(2).
		Float64()
	return usd
}

// Rates returns a copy of the rate table currently in use
func (c *Converter) Rates(ctx context.Context) map[string]float64 {
	return maps.Clone(c.table(ctx))
}

func (c *Converter) table(ctx context.Context) map[string]float64 {
	c.mu.RLock()
	cached := c.rates
	fresh := cached != nil && c.clock.Now().Sub(c.fetchedAt) < c.ttl
	c.mu.RUnlock()

	if fresh {
		return cached
	}

	v, _, _ := c.group.Do("rates", func() (any, error) {
		rates, err := c.fetch(ctx)
		if err == nil && len(rates) == 0 {
			err = errEmptyRates
		}
		if err != nil {
			c.logger.Warn("exchange rate refresh failed",
				slog.String("error", err.Error()),
				slog.Bool("has_cached", cached != nil),
			)
			return nil, err
		}

		c.mu.Lock()
		c.rates = rates
		c.fetchedAt = c.clock.Now()
		c.mu.Unlock()

		c.logger.Info("exchange rates refreshed", slog.Int("currencies", len(rates)))
		return rates, nil
	})

	if rates, ok := v.(map[string]float64); ok && rates != nil {
		return rates
	}
	if cached != nil {
		return cached
	}
	return FallbackRates()
}
