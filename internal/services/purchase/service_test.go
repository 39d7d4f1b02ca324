package purchase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/spendboard/internal/dependencies/mocks"
	"github.com/mcoot/spendboard/internal/model"
	"github.com/mcoot/spendboard/internal/services/purchase"
	"github.com/mcoot/spendboard/internal/storage"
	"github.com/mcoot/spendboard/internal/storage/memory"
	"github.com/mcoot/spendboard/internal/testutil"
)

// brokenInsertStore fails every purchase insert
type brokenInsertStore struct {
	*memory.Storage
}

func (brokenInsertStore) InsertPurchase(context.Context, *model.Purchase) error {
	return errors.New("write failed")
}

type ServiceSuite struct {
	suite.Suite
	store       *memory.Storage
	mockClock   *mocks.MockClock
	service     *purchase.Service
	participant *model.Participant
	ctx         context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.store = memory.New()
	s.mockClock = mocks.NewMockClock(time.Date(2026, 2, 14, 9, 0, 0, 0, time.UTC))
	s.service = purchase.New(s.store, s.mockClock, testutil.NopLogger())
	s.ctx = context.Background()

	s.participant = &model.Participant{Name: "Alice"}
	s.Require().NoError(s.store.SaveParticipant(s.ctx, s.participant))
}

func (s *ServiceSuite) purchases() []*model.Purchase {
	list, err := s.store.ListPurchases(s.ctx, storage.PurchaseFilter{})
	s.Require().NoError(err)
	return list
}

func priceOf(v float64) *float64 { return &v }

// Add tests

func (s *ServiceSuite) TestAddPurchase() {
	p, err := s.service.Add(s.ctx, purchase.NewPurchase{ParticipantID: s.participant.ID, GameName: "  Hades ", Price: 24.99})
	s.Require().NoError(err)

	s.Equal("Hades", p.GameName)
	s.NotZero(p.ID)
	s.Len(s.purchases(), 1)
}

func (s *ServiceSuite) TestAddValidation() {
	_, err := s.service.Add(s.ctx, purchase.NewPurchase{ParticipantID: s.participant.ID, GameName: " ", Price: 1})
	s.ErrorIs(err, purchase.ErrGameNameRequired)

	_, err = s.service.Add(s.ctx, purchase.NewPurchase{ParticipantID: s.participant.ID, GameName: "X", Price: -1})
	s.ErrorIs(err, model.ErrInvalidPrice)

	_, err = s.service.Add(s.ctx, purchase.NewPurchase{ParticipantID: 404, GameName: "X", Price: 1})
	s.ErrorIs(err, model.ErrParticipantNotFound)

	s.Empty(s.purchases())
}

func (s *ServiceSuite) TestAddFreePurchaseAllowed() {
	_, err := s.service.Add(s.ctx, purchase.NewPurchase{ParticipantID: s.participant.ID, GameName: "Free", Price: 0})
	s.NoError(err)
}

// Update/Delete tests

func (s *ServiceSuite) TestUpdatePrice() {
	p, _ := s.service.Add(s.ctx, purchase.NewPurchase{ParticipantID: s.participant.ID, GameName: "X", Price: 10})

	s.Require().NoError(s.service.UpdatePrice(s.ctx, p.ID, 7.5))
	s.Equal(7.5, s.purchases()[0].Price)

	s.ErrorIs(s.service.UpdatePrice(s.ctx, p.ID, -2), model.ErrInvalidPrice)
	s.ErrorIs(s.service.UpdatePrice(s.ctx, 999, 2), model.ErrPurchaseNotFound)
}

func (s *ServiceSuite) TestDelete() {
	p, _ := s.service.Add(s.ctx, purchase.NewPurchase{ParticipantID: s.participant.ID, GameName: "X", Price: 10})

	s.Require().NoError(s.service.Delete(s.ctx, p.ID))
	s.Empty(s.purchases())
	s.ErrorIs(s.service.Delete(s.ctx, p.ID), model.ErrPurchaseNotFound)
}

// Suggest tests

func (s *ServiceSuite) TestSuggestDefaultsToUSD() {
	p, err := s.service.Suggest(s.ctx, purchase.NewPending{ParticipantID: s.participant.ID, GameName: "Celeste", Price: 19.99})
	s.Require().NoError(err)

	s.Equal(model.CurrencyUSD, p.Currency)
	s.Equal(s.mockClock.Now(), p.DetectedAt)

	pending, err := s.service.ListPending(s.ctx)
	s.Require().NoError(err)
	s.Len(pending, 1)
}

func (s *ServiceSuite) TestSuggestRequiresExistingParticipant() {
	_, err := s.service.Suggest(s.ctx, purchase.NewPending{ParticipantID: 77, GameName: "X"})
	s.ErrorIs(err, model.ErrParticipantNotFound)
}

func (s *ServiceSuite) TestListPendingNewestFirst() {
	_, _ = s.service.Suggest(s.ctx, purchase.NewPending{ParticipantID: s.participant.ID, GameName: "Old"})
	s.mockClock.Advance(time.Hour)
	_, _ = s.service.Suggest(s.ctx, purchase.NewPending{ParticipantID: s.participant.ID, GameName: "New"})

	pending, err := s.service.ListPending(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(pending, 2)
	s.Equal("New", pending[0].GameName)
	s.Equal("Old", pending[1].GameName)
}

// Approve/Reject tests

func (s *ServiceSuite) TestApproveMovesPendingToPurchases() {
	app := model.AppID(620)
	pending, _ := s.service.Suggest(s.ctx, purchase.NewPending{ParticipantID: s.participant.ID, GameName: "Portal 2", GameAppID: &app, Price: 9.99})

	p, err := s.service.Approve(s.ctx, pending.ID, nil)
	s.Require().NoError(err)

	s.Equal(9.99, p.Price)
	s.Equal(app, *p.GameAppID)
	s.Len(s.purchases(), 1)

	left, _ := s.service.ListPending(s.ctx)
	s.Empty(left)
}

func (s *ServiceSuite) TestApproveWithPriceOverride() {
	pending, _ := s.service.Suggest(s.ctx, purchase.NewPending{ParticipantID: s.participant.ID, GameName: "X", Price: 9.99})

	p, err := s.service.Approve(s.ctx, pending.ID, priceOf(4.99))
	s.Require().NoError(err)
	s.Equal(4.99, p.Price)
}

func (s *ServiceSuite) TestApproveRejectsNegativeOverride() {
	pending, _ := s.service.Suggest(s.ctx, purchase.NewPending{ParticipantID: s.participant.ID, GameName: "X", Price: 9.99})

	_, err := s.service.Approve(s.ctx, pending.ID, priceOf(-1))
	s.ErrorIs(err, model.ErrInvalidPrice)
	s.Empty(s.purchases())
}

func (s *ServiceSuite) TestApproveMissing() {
	_, err := s.service.Approve(s.ctx, 12, nil)
	s.ErrorIs(err, model.ErrPendingNotFound)
}

func (s *ServiceSuite) TestApproveInsertFailureKeepsPending() {
	pending, _ := s.service.Suggest(s.ctx, purchase.NewPending{ParticipantID: s.participant.ID, GameName: "X", Price: 1})
	service := purchase.New(brokenInsertStore{s.store}, s.mockClock, testutil.NopLogger())

	_, err := service.Approve(s.ctx, pending.ID, nil)
	s.Error(err)

	left, _ := s.service.ListPending(s.ctx)
	s.Len(left, 1)
}

func (s *ServiceSuite) TestReject() {
	pending, _ := s.service.Suggest(s.ctx, purchase.NewPending{ParticipantID: s.participant.ID, GameName: "X", Price: 1})

	s.Require().NoError(s.service.Reject(s.ctx, pending.ID))
	s.ErrorIs(s.service.Reject(s.ctx, pending.ID), model.ErrPendingNotFound)
	s.Empty(s.purchases())
}
