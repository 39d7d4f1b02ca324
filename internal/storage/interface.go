package storage

import (
	"context"

	"github.com/mcoot/spendboard/internal/model"
)

// PurchaseFilter narrows ListPurchases results
type PurchaseFilter struct {
	// ParticipantID limits results to one participant when set
	ParticipantID *model.ParticipantID
	// WithAppIDOnly drops purchases that have no Steam app id
	WithAppIDOnly bool
}

// Matches reports whether a purchase passes the filter
func (f PurchaseFilter) Matches(p *model.Purchase) bool {
	if f.ParticipantID != nil && p.ParticipantID != *f.ParticipantID {
		return false
	}
	if f.WithAppIDOnly && p.GameAppID == nil {
		return false
	}
	return true
}

// Storage defines the interface for data persistence.
// List operations return records ordered by id ascending.
type Storage interface {
	// Participant operations
	ListParticipants(ctx context.Context) ([]*model.Participant, error)
	GetParticipant(ctx context.Context, id model.ParticipantID) (*model.Participant, error)
	// SaveParticipant creates the participant when ID is zero (assigning an id) and
	// replaces it otherwise
	SaveParticipant(ctx context.Context, p *model.Participant) error
	UpdateKnownIdentifiers(ctx context.Context, id model.ParticipantID, appIDs []model.AppID) error

	// Purchase operations
	ListPurchases(ctx context.Context, filter PurchaseFilter) ([]*model.Purchase, error)
	InsertPurchase(ctx context.Context, p *model.Purchase) error
	DeletePurchase(ctx context.Context, id model.PurchaseID) error
	UpdatePurchasePrice(ctx context.Context, id model.PurchaseID, price float64) error

	// Pending purchase operations
	ListPendingPurchases(ctx context.Context) ([]*model.PendingPurchase, error)
	GetPendingPurchase(ctx context.Context, id model.PendingPurchaseID) (*model.PendingPurchase, error)
	InsertPendingPurchases(ctx context.Context, items []*model.PendingPurchase) error
	DeletePendingPurchase(ctx context.Context, id model.PendingPurchaseID) error

	// Trophy operations
	// InsertTrophy returns model.ErrDuplicateTrophy if the participant already holds
	// a trophy for the same month, year and position
	InsertTrophy(ctx context.Context, t *model.Trophy) error
	ListTrophies(ctx context.Context) ([]*model.Trophy, error)

	// Ping checks that the backing store is reachable
	Ping(ctx context.Context) error
	Close() error
}
