package currency

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/spendboard/internal/dependencies/mocks"
	"github.com/mcoot/spendboard/internal/testutil"
)

type stubFetcher struct {
	calls atomic.Int32
	rates map[string]float64
	err   error
}

func (f *stubFetcher) fetch(context.Context) (map[string]float64, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return f.rates, nil
}

type ConverterSuite struct {
	suite.Suite
	clock     *mocks.MockClock
	fetcher   *stubFetcher
	converter *Converter
	ctx       context.Context
}

func TestConverterSuite(t *testing.T) {
	suite.Run(t, new(ConverterSuite))
}

func (s *ConverterSuite) SetupTest() {
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.fetcher = &stubFetcher{rates: map[string]float64{"USD": 1, "ARS": 1000, "EUR": 0.8, "XXX": 0}}
	s.converter = NewConverter(s.fetcher.fetch, s.clock, time.Hour, testutil.NopLogger())
	s.ctx = context.Background()
}

// Short-circuit tests

func (s *ConverterSuite) TestUSDIsReturnedUnchanged() {
	for _, amount := range []float64{0, 0.01, 9.99, 1234.567} {
		s.Equal(amount, s.converter.ConvertToUSD(s.ctx, amount, "USD"))
	}
	s.Equal(int32(0), s.fetcher.calls.Load())
}

func (s *ConverterSuite) TestZeroAmountIsReturnedUnchanged() {
	s.Equal(0.0, s.converter.ConvertToUSD(s.ctx, 0, "ARS"))
	s.Equal(0.0, s.converter.ConvertToUSD(s.ctx, 0, "NOPE"))
	s.Equal(int32(0), s.fetcher.calls.Load())
}

func (s *ConverterSuite) TestFreeIsReturnedUnchanged() {
	s.Equal(5.0, s.converter.ConvertToUSD(s.ctx, 5, "FREE"))
	s.Equal(int32(0), s.fetcher.calls.Load())
}

// Conversion tests

func (s *ConverterSuite) TestConvertsUsingRate() {
	s.Equal(2.5, s.converter.ConvertToUSD(s.ctx, 2500, "ARS"))
	s.Equal(12.5, s.converter.ConvertToUSD(s.ctx, 10, "EUR"))
}

func (s *ConverterSuite) TestRoundsToNearestCent() {
	s.Equal(3.33, s.converter.ConvertToUSD(s.ctx, 3330.4, "ARS"))
	s.Equal(3.34, s.converter.ConvertToUSD(s.ctx, 3335, "ARS"))
}

func (s *ConverterSuite) TestUnknownCurrencyIsReturnedUnchanged() {
	s.Equal(42.0, s.converter.ConvertToUSD(s.ctx, 42, "JPY"))
}

func (s *ConverterSuite) TestZeroRateIsReturnedUnchanged() {
	s.Equal(42.0, s.converter.ConvertToUSD(s.ctx, 42, "XXX"))
}

// Cache tests

func (s *ConverterSuite) TestRatesAreCachedWithinTTL() {
	s.converter.ConvertToUSD(s.ctx, 1000, "ARS")
	s.clock.Advance(59 * time.Minute)
	s.converter.ConvertToUSD(s.ctx, 1000, "ARS")

	s.Equal(int32(1), s.fetcher.calls.Load())
}

func (s *ConverterSuite) TestRatesAreRefreshedAfterTTL() {
	s.converter.ConvertToUSD(s.ctx, 1000, "ARS")

	s.fetcher.rates = map[string]float64{"ARS": 500}
	s.clock.Advance(61 * time.Minute)

	s.Equal(2.0, s.converter.ConvertToUSD(s.ctx, 1000, "ARS"))
	s.Equal(int32(2), s.fetcher.calls.Load())
}

func (s *ConverterSuite) TestRefreshFailureServesLastGoodTable() {
	s.converter.ConvertToUSD(s.ctx, 1000, "ARS")

	s.fetcher.err = errors.New("boom")
	s.clock.Advance(2 * time.Hour)

	s.Equal(1.0, s.converter.ConvertToUSD(s.ctx, 1000, "ARS"))
}

func (s *ConverterSuite) TestFailedRefreshIsRetriedOnNextCall() {
	s.fetcher.err = errors.New("boom")
	s.converter.ConvertToUSD(s.ctx, 1000, "ARS")
	s.converter.ConvertToUSD(s.ctx, 1000, "ARS")

	s.Equal(int32(2), s.fetcher.calls.Load())
}

func (s *ConverterSuite) TestFallbackTableWhenNeverFetched() {
	s.fetcher.err = errors.New("offline")

	s.Equal(2.0, s.converter.ConvertToUSD(s.ctx, 2400, "ARS"))
	s.Equal(FallbackRates(), s.converter.Rates(s.ctx))
}

func (s *ConverterSuite) TestEmptyTableIsTreatedAsFailure() {
	s.fetcher.rates = map[string]float64{}

	s.Equal(1.0, s.converter.ConvertToUSD(s.ctx, 43, "UYU"))
}

func (s *ConverterSuite) TestRatesReturnsCopy() {
	rates := s.converter.Rates(s.ctx)
	rates["ARS"] = 1

	s.Equal(2.5, s.converter.ConvertToUSD(s.ctx, 2500, "ARS"))
}

func (s *ConverterSuite) TestConcurrentCallersShareOneFetch() {
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.converter.ConvertToUSD(s.ctx, 1000, "ARS")
		}()
	}
	wg.Wait()

	s.Equal(int32(1), s.fetcher.calls.Load())
}
