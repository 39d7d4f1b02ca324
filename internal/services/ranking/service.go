// Package ranking computes the spending leaderboard and closes months into trophies.
package ranking

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mcoot/spendboard/internal/dependencies/clock"
	"github.com/mcoot/spendboard/internal/model"
	"github.com/mcoot/spendboard/internal/storage"
)

// ParticipantTotal pairs a participant with their summed spend
type ParticipantTotal struct {
	Participant *model.Participant
	Total       float64
}

// Ranking is a participant's place in the sorted order
type Ranking struct {
	Position      int                 `json:"position"`
	ParticipantID model.ParticipantID `json:"participant_id"`
	Participant   string              `json:"participant"`
	Total         float64             `json:"total"`
}

// Rank orders participants by total descending. Ties keep their input order.
// Positions are 1-based.
func Rank(totals []ParticipantTotal) []Ranking {
	sorted := slices.Clone(totals)
	slices.SortStableFunc(sorted, func(a, b ParticipantTotal) int {
		return cmp.Compare(b.Total, a.Total)
	})

	rankings := make([]Ranking, len(sorted))
	for i, t := range sorted {
		rankings[i] = Ranking{
			Position:      i + 1,
			ParticipantID: t.Participant.ID,
			Participant:   t.Participant.Name,
			Total:         t.Total,
		}
	}
	return rankings
}

// Standing is one leaderboard row
type Standing struct {
	Position    int                `json:"position"`
	Participant *model.Participant `json:"participant"`
	Total       float64            `json:"total"`
	Purchases   []*model.Purchase  `json:"purchases"`
	Trophies    []*model.Trophy    `json:"trophies"`
}

// CloseReport describes a completed month close
type CloseReport struct {
	Month    int             `json:"month"`
	Year     int             `json:"year"`
	Rankings []Ranking       `json:"rankings"`
	Trophies []*model.Trophy `json:"trophies"`
}

// Service serves the leaderboard and closes months
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger
}

// New creates a new ranking Service
func New(store storage.Storage, clk clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		storage: store,
		clock:   clk,
		logger:  logger.With(slog.String("component", "ranking-service")),
	}
}

// Totals sums each participant's current purchases, in participant order
func (s *Service) Totals(ctx context.Context) ([]ParticipantTotal, error) {
	participants, err := s.storage.ListParticipants(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}

	purchases, err := s.storage.ListPurchases(ctx, storage.PurchaseFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list purchases: %w", err)
	}

	return totalsFor(participants, purchases), nil
}

func totalsFor(participants []*model.Participant, purchases []*model.Purchase) []ParticipantTotal {
	sums := make(map[model.ParticipantID]decimal.Decimal, len(participants))
	for _, pur := range purchases {
		sums[pur.ParticipantID] = sums[pur.ParticipantID].Add(decimal.NewFromFloat(pur.Price))
	}

	totals := make([]ParticipantTotal, len(participants))
	for i, p := range participants {
		totals[i] = ParticipantTotal{
			Participant: p,
			Total:       sums[p.ID].Round(2).InexactFloat64(),
		}
	}
	return totals
}

// Standings returns the ranked leaderboard with each participant's purchases and trophies
func (s *Service) Standings(ctx context.Context) ([]Standing, error) {
	participants, err := s.storage.ListParticipants(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}

	purchases, err := s.storage.ListPurchases(ctx, storage.PurchaseFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list purchases: %w", err)
	}

	trophies, err := s.storage.ListTrophies(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list trophies: %w", err)
	}

	byID := make(map[model.ParticipantID]*model.Participant, len(participants))
	for _, p := range participants {
		byID[p.ID] = p
	}

	purchasesBy := make(map[model.ParticipantID][]*model.Purchase)
	for _, pur := range purchases {
		purchasesBy[pur.ParticipantID] = append(purchasesBy[pur.ParticipantID], pur)
	}
	trophiesBy := make(map[model.ParticipantID][]*model.Trophy)
	for _, t := range trophies {
		trophiesBy[t.ParticipantID] = append(trophiesBy[t.ParticipantID], t)
	}

	rankings := Rank(totalsFor(participants, purchases))
	standings := make([]Standing, len(rankings))
	for i, r := range rankings {
		standings[i] = Standing{
			Position:    r.Position,
			Participant: byID[r.ParticipantID],
			Total:       r.Total,
			Purchases:   nonNil(purchasesBy[r.ParticipantID]),
			Trophies:    nonNil(trophiesBy[r.ParticipantID]),
		}
	}
	return standings, nil
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

// CloseMonth ranks participants by their current totals and records trophies
// for the given month: ranks 1-3 when the total is positive, and a shame
// trophy for last place when there are at least two participants. A month
// that already has trophies is refused.
func (s *Service) CloseMonth(ctx context.Context, month, year int) (*CloseReport, error) {
	if !model.ValidPeriod(month, year) {
		return nil, model.ErrInvalidPeriod
	}

	existing, err := s.storage.ListTrophies(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list trophies: %w", err)
	}
	for _, t := range existing {
		if t.Month == month && t.Year == year {
			return nil, model.ErrMonthAlreadyClosed
		}
	}

	totals, err := s.Totals(ctx)
	if err != nil {
		return nil, err
	}

	rankings := Rank(totals)
	report := &CloseReport{
		Month:    month,
		Year:     year,
		Rankings: rankings,
		Trophies: []*model.Trophy{},
	}

	for _, r := range rankings {
		if r.Position > model.PositionThird {
			break
		}
		if r.Total <= 0 {
			continue
		}
		t, err := s.award(ctx, r, month, year, r.Position)
		if err != nil {
			return report, err
		}
		report.Trophies = append(report.Trophies, t)
	}

	if len(rankings) >= 2 {
		last := rankings[len(rankings)-1]
		t, err := s.award(ctx, last, month, year, model.PositionShame)
		if err != nil {
			return report, err
		}
		report.Trophies = append(report.Trophies, t)
	}

	s.logger.Info("month closed",
		slog.Int("month", month),
		slog.Int("year", year),
		slog.Int("trophies", len(report.Trophies)),
	)
	return report, nil
}

func (s *Service) award(ctx context.Context, r Ranking, month, year, position int) (*model.Trophy, error) {
	t := &model.Trophy{
		ParticipantID: r.ParticipantID,
		Month:         month,
		Year:          year,
		Position:      position,
		TotalSpent:    r.Total,
	}
	if err := s.storage.InsertTrophy(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to record trophy for %s: %w", r.Participant, err)
	}
	return t, nil
}

// PreviousMonth returns the calendar month before the one containing now
func PreviousMonth(now time.Time) (month, year int) {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	prev := first.AddDate(0, -1, 0)
	return int(prev.Month()), prev.Year()
}

// ClosePreviousMonth closes the month before the current one
func (s *Service) ClosePreviousMonth(ctx context.Context) (*CloseReport, error) {
	month, year := PreviousMonth(s.clock.Now())
	return s.CloseMonth(ctx, month, year)
}

// Trophies returns every recorded trophy
func (s *Service) Trophies(ctx context.Context) ([]*model.Trophy, error) {
	trophies, err := s.storage.ListTrophies(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list trophies: %w", err)
	}
	return nonNil(trophies), nil
}
