package response

import (
	"time"

	"github.com/mcoot/spendboard/internal/model"
	"github.com/mcoot/spendboard/internal/services/auth"
	"github.com/mcoot/spendboard/internal/services/catalog"
	"github.com/mcoot/spendboard/internal/services/ranking"
	"github.com/mcoot/spendboard/internal/services/reconcile"
)

// Health is the response for the health endpoint
type Health struct {
	Status   string `json:"status"`
	Storage  string `json:"storage"`
	Degraded bool   `json:"degraded"`
}

// AuthResponse is the response for the login endpoint
type AuthResponse struct {
	SessionToken string    `json:"session_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// AuthResponseFromSession creates an AuthResponse from a session
func AuthResponseFromSession(s *auth.Session) AuthResponse {
	return AuthResponse{
		SessionToken: s.Token,
		ExpiresAt:    s.ExpiresAt,
	}
}

// Leaderboard is the ranked standings
type Leaderboard struct {
	Standings []ranking.Standing `json:"standings"`
}

// Trophies lists recorded trophies
type Trophies struct {
	Trophies []*model.Trophy `json:"trophies"`
}

// Pending lists pending purchases
type Pending struct {
	Pending []*model.PendingPurchase `json:"pending"`
}

// Search lists catalog search results
type Search struct {
	Results []catalog.Result `json:"results"`
}

// Sync is the response for a library sync
type Sync struct {
	NewGames int                         `json:"new_games"`
	Results  []reconcile.ParticipantSync `json:"results"`
}

// SyncFromReport converts a reconcile.SyncReport
func SyncFromReport(r *reconcile.SyncReport) Sync {
	results := r.Results
	if results == nil {
		results = []reconcile.ParticipantSync{}
	}
	return Sync{
		NewGames: r.NewGames(),
		Results:  results,
	}
}

// Returns is the response for return detection
type Returns struct {
	Removed        []reconcile.RemovedItem `json:"removed"`
	RemovedPending []reconcile.RemovedItem `json:"removed_pending"`
}

// ReturnsFromReport converts a reconcile.ReturnsReport
func ReturnsFromReport(r *reconcile.ReturnsReport) Returns {
	out := Returns{
		Removed:        r.Removed,
		RemovedPending: r.RemovedPending,
	}
	if out.Removed == nil {
		out.Removed = []reconcile.RemovedItem{}
	}
	if out.RemovedPending == nil {
		out.RemovedPending = []reconcile.RemovedItem{}
	}
	return out
}
