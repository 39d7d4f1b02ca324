// Package purchase manages confirmed purchases and the pending approval queue.
package purchase

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/mcoot/spendboard/internal/dependencies/clock"
	"github.com/mcoot/spendboard/internal/model"
	"github.com/mcoot/spendboard/internal/storage"
)

// ErrGameNameRequired is returned when a purchase has no game name
var ErrGameNameRequired = errors.New("game name is required")

// NewPurchase is an admin's direct purchase entry
type NewPurchase struct {
	ParticipantID model.ParticipantID
	GameName      string
	GameImage     *string
	GameAppID     *model.AppID
	Price         float64
}

// NewPending is a purchase suggested for approval
type NewPending struct {
	ParticipantID model.ParticipantID
	GameName      string
	GameImage     *string
	GameAppID     *model.AppID
	Price         float64
	Currency      string
}

// Service handles purchase entry and pending approval
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger
}

// New creates a new purchase Service
func New(store storage.Storage, clk clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		storage: store,
		clock:   clk,
		logger:  logger.With(slog.String("component", "purchase-service")),
	}
}

func validate(name string, price float64) error {
	if strings.TrimSpace(name) == "" {
		return ErrGameNameRequired
	}
	if price < 0 {
		return model.ErrInvalidPrice
	}
	return nil
}

// Add records a purchase for an existing participant
func (s *Service) Add(ctx context.Context, in NewPurchase) (*model.Purchase, error) {
	if err := validate(in.GameName, in.Price); err != nil {
		return nil, err
	}
	if _, err := s.storage.GetParticipant(ctx, in.ParticipantID); err != nil {
		return nil, err
	}

	p := &model.Purchase{
		ParticipantID: in.ParticipantID,
		GameName:      strings.TrimSpace(in.GameName),
		GameImage:     in.GameImage,
		GameAppID:     in.GameAppID,
		Price:         in.Price,
	}
	if err := s.storage.InsertPurchase(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to insert purchase: %w", err)
	}

	s.logger.Info("purchase added",
		slog.Int64("participant_id", int64(p.ParticipantID)),
		slog.String("game", p.GameName),
	)
	return p, nil
}

// Delete removes a purchase
func (s *Service) Delete(ctx context.Context, id model.PurchaseID) error {
	return s.storage.DeletePurchase(ctx, id)
}

// UpdatePrice changes a purchase's price
func (s *Service) UpdatePrice(ctx context.Context, id model.PurchaseID, price float64) error {
	if price < 0 {
		return model.ErrInvalidPrice
	}
	return s.storage.UpdatePurchasePrice(ctx, id, price)
}

// ListPending returns pending purchases, most recently detected first
func (s *Service) ListPending(ctx context.Context) ([]*model.PendingPurchase, error) {
	pending, err := s.storage.ListPendingPurchases(ctx)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(pending, func(a, b *model.PendingPurchase) int {
		return b.DetectedAt.Compare(a.DetectedAt)
	})
	return pending, nil
}

// Suggest queues a purchase for admin approval
func (s *Service) Suggest(ctx context.Context, in NewPending) (*model.PendingPurchase, error) {
	if err := validate(in.GameName, in.Price); err != nil {
		return nil, err
	}
	if _, err := s.storage.GetParticipant(ctx, in.ParticipantID); err != nil {
		return nil, err
	}

	p := &model.PendingPurchase{
		ParticipantID: in.ParticipantID,
		GameName:      strings.TrimSpace(in.GameName),
		GameImage:     in.GameImage,
		GameAppID:     in.GameAppID,
		Price:         in.Price,
		Currency:      cmp.Or(strings.ToUpper(in.Currency), model.CurrencyUSD),
		DetectedAt:    s.clock.Now(),
	}
	if err := s.storage.InsertPendingPurchases(ctx, []*model.PendingPurchase{p}); err != nil {
		return nil, fmt.Errorf("failed to queue suggestion: %w", err)
	}

	s.logger.Info("purchase suggested",
		slog.Int64("participant_id", int64(p.ParticipantID)),
		slog.String("game", p.GameName),
	)
	return p, nil
}

// Approve promotes a pending purchase, optionally overriding its price. The
// pending entry is removed only after the purchase is recorded.
func (s *Service) Approve(ctx context.Context, id model.PendingPurchaseID, priceOverride *float64) (*model.Purchase, error) {
	if priceOverride != nil && *priceOverride < 0 {
		return nil, model.ErrInvalidPrice
	}

	pending, err := s.storage.GetPendingPurchase(ctx, id)
	if err != nil {
		return nil, err
	}

	p := pending.ToPurchase()
	if priceOverride != nil {
		p.Price = *priceOverride
	}
	if err := s.storage.InsertPurchase(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to insert purchase: %w", err)
	}

	if err := s.storage.DeletePendingPurchase(ctx, id); err != nil && !errors.Is(err, model.ErrPendingNotFound) {
		s.logger.Error("approved purchase left in pending queue",
			slog.Int64("pending_id", int64(id)),
			slog.String("error", err.Error()),
		)
		return p, fmt.Errorf("failed to remove pending purchase: %w", err)
	}

	s.logger.Info("pending purchase approved",
		slog.Int64("pending_id", int64(id)),
		slog.String("game", p.GameName),
	)
	return p, nil
}

// Reject discards a pending purchase
func (s *Service) Reject(ctx context.Context, id model.PendingPurchaseID) error {
	if err := s.storage.DeletePendingPurchase(ctx, id); err != nil {
		return err
	}
	s.logger.Info("pending purchase rejected", slog.Int64("pending_id", int64(id)))
	return nil
}
