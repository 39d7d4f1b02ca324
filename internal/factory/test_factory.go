package factory

import (
	"context"
	"time"

	"github.com/mcoot/spendboard/internal/dependencies/mocks"
	"github.com/mcoot/spendboard/internal/services/auth"
	"github.com/mcoot/spendboard/internal/steam"
	"github.com/mcoot/spendboard/internal/storage/memory"
	"github.com/mcoot/spendboard/internal/testutil"
)

// Test credentials accepted by every TestApp
const (
	TestAdminPassword = "admin-password"
	TestCronSecret    = "cron-secret"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock *mocks.MockClock
	Memory    *memory.Storage
	// Rates is the exchange table served to the converter
	Rates map[string]float64
}

// NewTestApp creates an App configured for testing with mocked dependencies.
// The Steam client is unconfigured.
func NewTestApp() *TestApp {
	return NewTestAppWithSteam(steam.Config{})
}

// NewTestAppWithSteam creates a TestApp whose Steam client uses cfg, typically
// pointed at an httptest server
func NewTestAppWithSteam(cfg steam.Config) *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC))
	rates := map[string]float64{"USD": 1, "ARS": 1000, "EUR": 0.9}

	app, err := newWithDependencies(dependencies{
		store:       store,
		storageKind: StorageTypeMemory,
		clock:       mockClock,
		steam:       steam.NewClient(cfg, nil),
		rates: func(context.Context) (map[string]float64, error) {
			return rates, nil
		},
		authConfig: auth.Config{
			AdminPassword:   TestAdminPassword,
			SessionSecret:   "test-session-secret",
			CronSecret:      TestCronSecret,
			SessionDuration: auth.DefaultConfig().SessionDuration,
		},
	}, testutil.NopLogger())
	if err != nil {
		panic(err)
	}

	return &TestApp{
		App:       app,
		MockClock: mockClock,
		Memory:    store,
		Rates:     rates,
	}
}
