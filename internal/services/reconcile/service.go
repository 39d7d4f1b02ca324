// Package reconcile keeps purchase records in step with participants' Steam libraries.
package reconcile

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mcoot/spendboard/internal/dependencies/clock"
	"github.com/mcoot/spendboard/internal/model"
	"github.com/mcoot/spendboard/internal/steam"
	"github.com/mcoot/spendboard/internal/storage"
)

// Catalog is the external library catalog
type Catalog interface {
	Configured() bool
	GetOwnedItems(ctx context.Context, steamID string) ([]steam.OwnedItem, error)
	GetItemPriceInfo(ctx context.Context, appID model.AppID, region string) (*steam.PriceInfo, error)
}

// Converter normalizes store prices to USD
type Converter interface {
	ConvertToUSD(ctx context.Context, amount float64, from string) float64
}

// Pacer spaces out catalog price lookups
type Pacer interface {
	Wait(ctx context.Context) error
}

// ParticipantSync is the outcome of syncing one participant
type ParticipantSync struct {
	ParticipantID model.ParticipantID `json:"participant_id"`
	Participant   string              `json:"participant"`
	NewGames      int                 `json:"new_games"`
	SkippedFree   int                 `json:"skipped_free"`
	FirstSync     bool                `json:"first_sync"`
	Error         string              `json:"error,omitempty"`
}

// SyncReport summarizes a library sync run
type SyncReport struct {
	Results []ParticipantSync `json:"results"`
}

// NewGames returns the number of pending purchases queued across all participants
func (r *SyncReport) NewGames() int {
	total := 0
	for _, res := range r.Results {
		total += res.NewGames
	}
	return total
}

// RemovedItem identifies a record deleted as returned
type RemovedItem struct {
	Participant string `json:"participant"`
	Game        string `json:"game"`
}

// ReturnsReport summarizes a return detection run
type ReturnsReport struct {
	Removed        []RemovedItem `json:"removed"`
	RemovedPending []RemovedItem `json:"removed_pending"`
}

// Service is the library reconciliation engine
type Service struct {
	storage   storage.Storage
	catalog   Catalog
	converter Converter
	pacer     Pacer
	clock     clock.Clock
	logger    *slog.Logger
}

// New creates a new reconciliation Service
func New(
	store storage.Storage,
	catalog Catalog,
	converter Converter,
	pacer Pacer,
	clk clock.Clock,
	logger *slog.Logger,
) *Service {
	return &Service{
		storage:   store,
		catalog:   catalog,
		converter: converter,
		pacer:     pacer,
		clock:     clk,
		logger:    logger.With(slog.String("component", "reconcile-service")),
	}
}

// SyncLibraries compares every linked participant's library against their
// baseline, queues pending purchases for new paid games and moves the baseline
// forward. Participants are processed one at a time.
func (s *Service) SyncLibraries(ctx context.Context) (*SyncReport, error) {
	if !s.catalog.Configured() {
		return nil, model.ErrCatalogNotConfigured
	}

	participants, err := s.storage.ListParticipants(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}

	report := &SyncReport{Results: []ParticipantSync{}}
	for _, p := range participants {
		if !p.HasSteam() {
			continue
		}

		result, err := s.syncParticipant(ctx, p)
		if err != nil {
			// Only cancellation aborts the run
			return report, err
		}
		report.Results = append(report.Results, result)
	}

	s.logger.Info("library sync complete",
		slog.Int("participants", len(report.Results)),
		slog.Int("new_games", report.NewGames()),
	)
	return report, nil
}

func (s *Service) syncParticipant(ctx context.Context, p *model.Participant) (ParticipantSync, error) {
	result := ParticipantSync{ParticipantID: p.ID, Participant: p.Name}
	logger := s.logger.With(slog.String("participant", p.Name))

	owned, err := s.catalog.GetOwnedItems(ctx, *p.SteamID)
	if err != nil {
		logger.Warn("failed to fetch library", slog.String("error", err.Error()))
		result.Error = err.Error()
		return result, nil
	}
	if len(owned) == 0 {
		// Private profile or empty library; leave the baseline alone
		return result, nil
	}

	ownedIDs := make([]model.AppID, len(owned))
	for i, item := range owned {
		ownedIDs[i] = item.AppID
	}

	if !p.HasBaseline() {
		if err := s.storage.UpdateKnownIdentifiers(ctx, p.ID, ownedIDs); err != nil {
			logger.Error("failed to save baseline", slog.String("error", err.Error()))
			result.Error = err.Error()
			return result, nil
		}
		logger.Info("baseline established", slog.Int("games", len(ownedIDs)))
		result.FirstSync = true
		return result, nil
	}

	known := p.KnownSet()
	var queued []*model.PendingPurchase

	for _, item := range owned {
		if _, ok := known[item.AppID]; ok {
			continue
		}

		if err := s.pacer.Wait(ctx); err != nil {
			return result, err
		}

		pending, ok := s.pricePending(ctx, p, item, logger)
		if !ok {
			result.SkippedFree++
			continue
		}
		queued = append(queued, pending)
	}

	// The baseline moves forward even when some lookups failed
	if err := s.storage.UpdateKnownIdentifiers(ctx, p.ID, ownedIDs); err != nil {
		logger.Error("failed to update baseline", slog.String("error", err.Error()))
		result.Error = err.Error()
	}

	if len(queued) > 0 {
		if err := s.storage.InsertPendingPurchases(ctx, queued); err != nil {
			logger.Error("failed to queue pending purchases", slog.String("error", err.Error()))
			result.Error = err.Error()
			return result, nil
		}
		result.NewGames = len(queued)
		logger.Info("queued pending purchases", slog.Int("count", len(queued)))
	}

	return result, nil
}

// pricePending resolves a new game's price. It reports false for free,
// unpriced or unresolvable items.
func (s *Service) pricePending(ctx context.Context, p *model.Participant, item steam.OwnedItem, logger *slog.Logger) (*model.PendingPurchase, bool) {
	info, err := s.catalog.GetItemPriceInfo(ctx, item.AppID, p.Region())
	if err != nil {
		logger.Warn("price lookup failed",
			slog.Int64("appid", int64(item.AppID)),
			slog.String("error", err.Error()),
		)
		return nil, false
	}
	if info == nil || info.IsFree() {
		return nil, false
	}

	appID := item.AppID
	pending := &model.PendingPurchase{
		ParticipantID: p.ID,
		GameName:      item.Name,
		GameAppID:     &appID,
		Price:         s.converter.ConvertToUSD(ctx, info.Amount(), info.Currency),
		Currency:      model.CurrencyUSD,
		DetectedAt:    s.clock.Now(),
	}
	if info.Image != "" {
		image := info.Image
		pending.GameImage = &image
	}
	return pending, true
}

// DetectReturns deletes purchases and pending purchases whose game is no longer
// in the participant's library baseline. Participants without a baseline are
// skipped.
func (s *Service) DetectReturns(ctx context.Context) (*ReturnsReport, error) {
	participants, err := s.storage.ListParticipants(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}

	purchases, err := s.storage.ListPurchases(ctx, storage.PurchaseFilter{WithAppIDOnly: true})
	if err != nil {
		return nil, fmt.Errorf("failed to list purchases: %w", err)
	}

	pending, err := s.storage.ListPendingPurchases(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending purchases: %w", err)
	}

	report := &ReturnsReport{Removed: []RemovedItem{}, RemovedPending: []RemovedItem{}}

	for _, p := range participants {
		if !p.HasSteam() || !p.HasBaseline() {
			continue
		}
		known := p.KnownSet()

		for _, pur := range purchases {
			if pur.ParticipantID != p.ID || pur.GameAppID == nil {
				continue
			}
			if _, ok := known[*pur.GameAppID]; ok {
				continue
			}
			if err := s.storage.DeletePurchase(ctx, pur.ID); err != nil {
				s.logger.Warn("failed to delete returned purchase",
					slog.Int64("purchase_id", int64(pur.ID)),
					slog.String("error", err.Error()),
				)
				continue
			}
			s.logger.Info("removed returned purchase",
				slog.String("participant", p.Name),
				slog.String("game", pur.GameName),
			)
			report.Removed = append(report.Removed, RemovedItem{Participant: p.Name, Game: pur.GameName})
		}

		for _, pp := range pending {
			if pp.ParticipantID != p.ID || pp.GameAppID == nil {
				continue
			}
			if _, ok := known[*pp.GameAppID]; ok {
				continue
			}
			if err := s.storage.DeletePendingPurchase(ctx, pp.ID); err != nil {
				s.logger.Warn("failed to delete returned pending purchase",
					slog.Int64("pending_id", int64(pp.ID)),
					slog.String("error", err.Error()),
				)
				continue
			}
			s.logger.Info("removed returned pending purchase",
				slog.String("participant", p.Name),
				slog.String("game", pp.GameName),
			)
			report.RemovedPending = append(report.RemovedPending, RemovedItem{Participant: p.Name, Game: pp.GameName})
		}
	}

	return report, nil
}
