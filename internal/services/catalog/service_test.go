package catalog_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/spendboard/internal/currency"
	"github.com/mcoot/spendboard/internal/dependencies/mocks"
	"github.com/mcoot/spendboard/internal/model"
	"github.com/mcoot/spendboard/internal/pacing"
	"github.com/mcoot/spendboard/internal/services/catalog"
	"github.com/mcoot/spendboard/internal/steam"
	"github.com/mcoot/spendboard/internal/testutil"
)

type fakeStore struct {
	items     []steam.SearchItem
	searchErr error
	prices    map[model.AppID]*steam.PriceInfo
	priceErr  map[model.AppID]error

	lastRegion string
	searches   int
}

func (f *fakeStore) SearchCatalog(_ context.Context, _, region string) ([]steam.SearchItem, error) {
	f.lastRegion = region
	f.searches++
	return f.items, f.searchErr
}

func (f *fakeStore) GetItemPriceInfo(_ context.Context, appID model.AppID, _ string) (*steam.PriceInfo, error) {
	if err := f.priceErr[appID]; err != nil {
		return nil, err
	}
	return f.prices[appID], nil
}

type ServiceSuite struct {
	suite.Suite
	store     *fakeStore
	mockClock *mocks.MockClock
	service   *catalog.Service
	ctx       context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.store = &fakeStore{
		prices:   map[model.AppID]*steam.PriceInfo{},
		priceErr: map[model.AppID]error{},
	}
	s.mockClock = mocks.NewMockClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	logger := testutil.NopLogger()

	rates := func(context.Context) (map[string]float64, error) {
		return map[string]float64{"USD": 1, "UYU": 40}, nil
	}
	converter := currency.NewConverter(rates, s.mockClock, time.Hour, logger)
	s.service = catalog.New(s.store, converter, pacing.New(s.mockClock, pacing.DefaultInterval), logger)
	s.ctx = context.Background()
}

func (s *ServiceSuite) TestEmptyQueryRejected() {
	_, err := s.service.Search(s.ctx, "   ", "US")
	s.ErrorIs(err, catalog.ErrQueryRequired)
}

func (s *ServiceSuite) TestSearchPricesResults() {
	s.store.items = []steam.SearchItem{
		{AppID: 1, Name: "Paid", TinyImage: "tiny1"},
		{AppID: 2, Name: "Free", TinyImage: "tiny2"},
		{AppID: 3, Name: "Unpriced", TinyImage: "tiny3"},
		{AppID: 4, Name: "Broken", TinyImage: "tiny4"},
	}
	s.store.prices[1] = &steam.PriceInfo{PriceMinor: 80000, Currency: "UYU", Image: "header1", Formatted: "$U 800"}
	s.store.prices[2] = &steam.PriceInfo{Currency: steam.CurrencyFree, Image: "header2"}
	s.store.priceErr[4] = errors.New("timeout")

	results, err := s.service.Search(s.ctx, "game", "uy")
	s.Require().NoError(err)
	s.Require().Len(results, 4)
	s.Equal("UY", s.store.lastRegion)

	s.Equal(20.0, results[0].Price)
	s.Equal("$20.00", results[0].DisplayPrice)
	s.Equal("$U 800", results[0].OriginalPrice)
	s.Equal("UYU", results[0].Currency)
	s.Equal("header1", results[0].Image)

	s.Equal(catalog.DisplayFree, results[1].DisplayPrice)
	s.Equal(0.0, results[1].Price)
	s.Equal(steam.CurrencyFree, results[1].Currency)

	s.Equal(catalog.DisplayUnavailable, results[2].DisplayPrice)
	s.Equal("tiny3", results[2].Image)

	s.Equal(catalog.DisplayUnavailable, results[3].DisplayPrice)
}

func (s *ServiceSuite) TestOriginalPriceFallsBackToAmount() {
	s.store.items = []steam.SearchItem{{AppID: 1, Name: "Paid"}}
	s.store.prices[1] = &steam.PriceInfo{PriceMinor: 1999, Currency: "USD"}

	results, err := s.service.Search(s.ctx, "paid", "")
	s.Require().NoError(err)

	s.Equal("19.99 USD", results[0].OriginalPrice)
	s.Equal("$19.99", results[0].DisplayPrice)
	s.Equal(model.DefaultRegion, s.store.lastRegion)
}

func (s *ServiceSuite) TestSearchFailure() {
	s.store.searchErr = errors.New("store down")
	_, err := s.service.Search(s.ctx, "x", "US")
	s.Error(err)
}

func (s *ServiceSuite) TestSearchPacesLookups() {
	s.store.items = []steam.SearchItem{{AppID: 1}, {AppID: 2}, {AppID: 3}}

	_, err := s.service.Search(s.ctx, "x", "US")
	s.Require().NoError(err)
	// The search itself and each of the three lookups share the pacer
	s.Equal(3, s.mockClock.WaitCount())
	for _, d := range s.mockClock.Waits {
		s.Equal(pacing.DefaultInterval, d)
	}
}

func (s *ServiceSuite) TestSearchHonoursCancelledContext() {
	s.store.items = []steam.SearchItem{{AppID: 1}}
	ctx, cancel := context.WithCancel(s.ctx)
	cancel()

	_, err := s.service.Search(ctx, "x", "US")
	s.ErrorIs(err, context.Canceled)
	s.Zero(s.store.searches)
}

func (s *ServiceSuite) TestFormatUSDRoundsToNearestCent() {
	tests := []struct {
		amount float64
		want   string
	}{
		{19.99, "$19.99"},
		{0.29, "$0.29"},
		{4.35, "$4.35"},
		{1.15, "$1.15"},
		{12.345, "$12.35"},
		{0, "$0.00"},
	}

	for _, tt := range tests {
		s.Equal(tt.want, catalog.FormatUSD(tt.amount), "amount %v", tt.amount)
	}
}

func (s *ServiceSuite) TestFormatUSD() {
	s.Equal("$1,234.50", catalog.FormatUSD(1234.5))
	s.Equal("$0.00", catalog.FormatUSD(0))
}
