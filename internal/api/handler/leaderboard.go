package handler

import (
	"net/http"

	"github.com/mcoot/spendboard/internal/api/response"
	"github.com/mcoot/spendboard/internal/services/ranking"
)

// LeaderboardHandler serves standings and trophies
type LeaderboardHandler struct {
	rankingService *ranking.Service
}

// NewLeaderboardHandler creates a new leaderboard handler
func NewLeaderboardHandler(rankingService *ranking.Service) *LeaderboardHandler {
	return &LeaderboardHandler{
		rankingService: rankingService,
	}
}

// Get handles GET /api/v1/leaderboard
func (h *LeaderboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	standings, err := h.rankingService.Standings(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.Leaderboard{Standings: standings})
}

// Trophies handles GET /api/v1/trophies
func (h *LeaderboardHandler) Trophies(w http.ResponseWriter, r *http.Request) {
	trophies, err := h.rankingService.Trophies(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.Trophies{Trophies: trophies})
}
