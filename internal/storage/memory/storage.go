// Package memory provides a volatile in-process store. Data does not survive a
// restart; it backs the server when the remote store is unreachable.
package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/mcoot/spendboard/internal/model"
	"github.com/mcoot/spendboard/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	participants map[model.ParticipantID]*model.Participant
	purchases    map[model.PurchaseID]*model.Purchase
	pending      map[model.PendingPurchaseID]*model.PendingPurchase
	trophies     map[model.TrophyID]*model.Trophy
	trophyIndex  map[trophyKey]model.TrophyID

	nextParticipant int64
	nextPurchase    int64
	nextPending     int64
	nextTrophy      int64
}

type trophyKey struct {
	participantID model.ParticipantID
	month         int
	year          int
	position      int
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		participants: make(map[model.ParticipantID]*model.Participant),
		purchases:    make(map[model.PurchaseID]*model.Purchase),
		pending:      make(map[model.PendingPurchaseID]*model.PendingPurchase),
		trophies:     make(map[model.TrophyID]*model.Trophy),
		trophyIndex:  make(map[trophyKey]model.TrophyID),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// sortedValues returns the map values ordered by key
func sortedValues[K ~int64, V any](m map[K]*V, clone func(*V) *V) []*V {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	out := make([]*V, 0, len(keys))
	for _, k := range keys {
		out = append(out, clone(m[k]))
	}
	return out
}

// Participant operations

func cloneParticipant(p *model.Participant) *model.Participant {
	c := *p
	c.KnownAppIDs = slices.Clone(p.KnownAppIDs)
	return &c
}

func (s *Storage) ListParticipants(ctx context.Context) ([]*model.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedValues(s.participants, cloneParticipant), nil
}

func (s *Storage) GetParticipant(ctx context.Context, id model.ParticipantID) (*model.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.participants[id]
	if !ok {
		return nil, model.ErrParticipantNotFound
	}
	return cloneParticipant(p), nil
}

func (s *Storage) SaveParticipant(ctx context.Context, p *model.Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == 0 {
		s.nextParticipant++
		p.ID = model.ParticipantID(s.nextParticipant)
	} else if int64(p.ID) > s.nextParticipant {
		s.nextParticipant = int64(p.ID)
	}
	s.participants[p.ID] = cloneParticipant(p)
	return nil
}

func (s *Storage) UpdateKnownIdentifiers(ctx context.Context, id model.ParticipantID, appIDs []model.AppID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.participants[id]
	if !ok {
		return model.ErrParticipantNotFound
	}
	p.KnownAppIDs = slices.Clone(appIDs)
	return nil
}

// Purchase operations

func clonePurchase(p *model.Purchase) *model.Purchase {
	c := *p
	return &c
}

func (s *Storage) ListPurchases(ctx context.Context, filter storage.PurchaseFilter) ([]*model.Purchase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := sortedValues(s.purchases, clonePurchase)
	return slices.DeleteFunc(all, func(p *model.Purchase) bool {
		return !filter.Matches(p)
	}), nil
}

func (s *Storage) InsertPurchase(ctx context.Context, p *model.Purchase) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextPurchase++
	p.ID = model.PurchaseID(s.nextPurchase)
	s.purchases[p.ID] = clonePurchase(p)
	return nil
}

func (s *Storage) DeletePurchase(ctx context.Context, id model.PurchaseID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.purchases[id]; !ok {
		return model.ErrPurchaseNotFound
	}
	delete(s.purchases, id)
	return nil
}

func (s *Storage) UpdatePurchasePrice(ctx context.Context, id model.PurchaseID, price float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.purchases[id]
	if !ok {
		return model.ErrPurchaseNotFound
	}
	p.Price = price
	return nil
}

// Pending purchase operations

func clonePending(p *model.PendingPurchase) *model.PendingPurchase {
	c := *p
	return &c
}

func (s *Storage) ListPendingPurchases(ctx context.Context) ([]*model.PendingPurchase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedValues(s.pending, clonePending), nil
}

func (s *Storage) GetPendingPurchase(ctx context.Context, id model.PendingPurchaseID) (*model.PendingPurchase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.pending[id]
	if !ok {
		return nil, model.ErrPendingNotFound
	}
	return clonePending(p), nil
}

func (s *Storage) InsertPendingPurchases(ctx context.Context, items []*model.PendingPurchase) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range items {
		s.nextPending++
		item.ID = model.PendingPurchaseID(s.nextPending)
		s.pending[item.ID] = clonePending(item)
	}
	return nil
}

func (s *Storage) DeletePendingPurchase(ctx context.Context, id model.PendingPurchaseID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.pending[id]; !ok {
		return model.ErrPendingNotFound
	}
	delete(s.pending, id)
	return nil
}

// Trophy operations

func cloneTrophy(t *model.Trophy) *model.Trophy {
	c := *t
	return &c
}

func (s *Storage) InsertTrophy(ctx context.Context, t *model.Trophy) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := trophyKey{participantID: t.ParticipantID, month: t.Month, year: t.Year, position: t.Position}
	if _, exists := s.trophyIndex[key]; exists {
		return model.ErrDuplicateTrophy
	}
	s.nextTrophy++
	t.ID = model.TrophyID(s.nextTrophy)
	s.trophies[t.ID] = cloneTrophy(t)
	s.trophyIndex[key] = t.ID
	return nil
}

func (s *Storage) ListTrophies(ctx context.Context) ([]*model.Trophy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedValues(s.trophies, cloneTrophy), nil
}

// Ping always succeeds for the in-process store
func (s *Storage) Ping(ctx context.Context) error {
	return nil
}

// Close is a no-op
func (s *Storage) Close() error {
	return nil
}
