package steam

import "time"

// Config holds Steam Web API and store settings
type Config struct {
	// APIKey is the Steam Web API key, required for library lookups
	APIKey string

	// APIBaseURL is the Steam Web API root (e.g., https://api.steampowered.com)
	APIBaseURL string
	// StoreBaseURL is the storefront root (e.g., https://store.steampowered.com)
	StoreBaseURL string

	// Language for store metadata
	Language string

	// SearchLimit caps the number of store search results
	SearchLimit int

	Timeout time.Duration
}

// DefaultConfig returns sensible defaults for the public Steam endpoints
func DefaultConfig() Config {
	return Config{
		APIBaseURL:   "https://api.steampowered.com",
		StoreBaseURL: "https://store.steampowered.com",
		Language:     "english",
		SearchLimit:  5,
		Timeout:      30 * time.Second,
	}
}
