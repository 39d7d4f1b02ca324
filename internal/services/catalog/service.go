// Package catalog searches the Steam store and prices results in USD.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"github.com/mcoot/spendboard/internal/model"
	"github.com/mcoot/spendboard/internal/steam"
)

// ErrQueryRequired is returned for an empty search query
var ErrQueryRequired = errors.New("search query is required")

// Display labels for results without a regular price
const (
	DisplayFree        = "Free"
	DisplayUnavailable = "N/A"
)

// Store is the storefront used for search and pricing
type Store interface {
	SearchCatalog(ctx context.Context, query, region string) ([]steam.SearchItem, error)
	GetItemPriceInfo(ctx context.Context, appID model.AppID, region string) (*steam.PriceInfo, error)
}

// Converter normalizes store prices to USD
type Converter interface {
	ConvertToUSD(ctx context.Context, amount float64, from string) float64
}

// Pacer spaces out storefront requests
type Pacer interface {
	Wait(ctx context.Context) error
}

// Result is a search hit with its USD price
type Result struct {
	AppID model.AppID `json:"appid"`
	Name  string      `json:"name"`
	// Price is the USD price; zero for free or unpriced items
	Price         float64 `json:"price"`
	DisplayPrice  string  `json:"display_price"`
	OriginalPrice string  `json:"original_price"`
	Currency      string  `json:"currency"`
	Image         string  `json:"image"`
}

// Service performs catalog searches
type Service struct {
	store     Store
	converter Converter
	pacer     Pacer
	logger    *slog.Logger
}

// New creates a new catalog Service
func New(store Store, converter Converter, pacer Pacer, logger *slog.Logger) *Service {
	return &Service{
		store:     store,
		converter: converter,
		pacer:     pacer,
		logger:    logger.With(slog.String("component", "catalog-service")),
	}
}

// Search returns the top store results for query, priced for region
func (s *Service) Search(ctx context.Context, query, region string) ([]Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrQueryRequired
	}
	if region == "" {
		region = model.DefaultRegion
	}
	region = strings.ToUpper(region)

	if err := s.pacer.Wait(ctx); err != nil {
		return nil, err
	}
	items, err := s.store.SearchCatalog(ctx, query, region)
	if err != nil {
		return nil, fmt.Errorf("store search failed: %w", err)
	}

	results := make([]Result, 0, len(items))
	for _, item := range items {
		if err := s.pacer.Wait(ctx); err != nil {
			return nil, err
		}
		results = append(results, s.price(ctx, item, region))
	}
	return results, nil
}

func (s *Service) price(ctx context.Context, item steam.SearchItem, region string) Result {
	result := Result{
		AppID:         item.AppID,
		Name:          item.Name,
		DisplayPrice:  DisplayUnavailable,
		OriginalPrice: DisplayUnavailable,
		Currency:      DisplayUnavailable,
		Image:         item.TinyImage,
	}

	info, err := s.store.GetItemPriceInfo(ctx, item.AppID, region)
	if err != nil {
		s.logger.Warn("price lookup failed",
			slog.Int64("appid", int64(item.AppID)),
			slog.String("error", err.Error()),
		)
		return result
	}
	if info == nil {
		return result
	}

	if info.Image != "" {
		result.Image = info.Image
	}
	result.Currency = info.Currency

	if info.IsFree() {
		result.DisplayPrice = DisplayFree
		result.OriginalPrice = DisplayFree
		return result
	}

	result.Price = s.converter.ConvertToUSD(ctx, info.Amount(), info.Currency)
	result.DisplayPrice = FormatUSD(result.Price)
	result.OriginalPrice = info.Formatted
	if result.OriginalPrice == "" {
		result.OriginalPrice = decimal.New(info.PriceMinor, -2).StringFixed(2) + " " + info.Currency
	}
	return result
}

// FormatUSD renders a USD amount for display, e.g. "$12.34". The amount is
// rounded to the nearest cent.
func FormatUSD(amount float64) string {
	cents := decimal.NewFromFloat(amount).Shift(2).Round(0).IntPart()
	return money.New(cents, money.USD).Display()
}
