package ranking_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/spendboard/internal/dependencies/mocks"
	"github.com/mcoot/spendboard/internal/model"
	"github.com/mcoot/spendboard/internal/services/ranking"
	"github.com/mcoot/spendboard/internal/storage/memory"
	"github.com/mcoot/spendboard/internal/testutil"
)

// failingTrophyStore rejects trophy writes
type failingTrophyStore struct {
	*memory.Storage
}

func (failingTrophyStore) InsertTrophy(context.Context, *model.Trophy) error {
	return errors.New("write failed")
}

type ServiceSuite struct {
	suite.Suite
	store     *memory.Storage
	mockClock *mocks.MockClock
	service   *ranking.Service
	ctx       context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.store = memory.New()
	s.mockClock = mocks.NewMockClock(time.Date(2026, 4, 1, 0, 5, 0, 0, time.UTC))
	s.service = ranking.New(s.store, s.mockClock, testutil.NopLogger())
	s.ctx = context.Background()
}

// withTotals creates one participant per total, each with a single purchase of that amount
func (s *ServiceSuite) withTotals(totals ...float64) []*model.Participant {
	participants := make([]*model.Participant, len(totals))
	for i, total := range totals {
		p := &model.Participant{Name: string(rune('A' + i))}
		s.Require().NoError(s.store.SaveParticipant(s.ctx, p))
		if total > 0 {
			s.Require().NoError(s.store.InsertPurchase(s.ctx, &model.Purchase{ParticipantID: p.ID, GameName: "g", Price: total}))
		}
		participants[i] = p
	}
	return participants
}

func (s *ServiceSuite) trophies() []*model.Trophy {
	list, err := s.store.ListTrophies(s.ctx)
	s.Require().NoError(err)
	return list
}

// Standings tests

func (s *ServiceSuite) TestStandingsRanksByTotal() {
	ps := s.withTotals(10, 30)
	s.Require().NoError(s.store.InsertPurchase(s.ctx, &model.Purchase{ParticipantID: ps[0].ID, GameName: "h", Price: 5.55}))
	s.Require().NoError(s.store.InsertTrophy(s.ctx, &model.Trophy{ParticipantID: ps[0].ID, Month: 1, Year: 2026, Position: 1}))

	standings, err := s.service.Standings(s.ctx)
	s.Require().NoError(err)

	s.Require().Len(standings, 2)
	s.Equal("B", standings[0].Participant.Name)
	s.Equal(30.0, standings[0].Total)
	s.Empty(standings[0].Trophies)
	s.NotNil(standings[0].Trophies)

	s.Equal(2, standings[1].Position)
	s.Equal(15.55, standings[1].Total)
	s.Len(standings[1].Purchases, 2)
	s.Len(standings[1].Trophies, 1)
}

// CloseMonth tests

func (s *ServiceSuite) TestCloseMonthAwardsTopThreeAndShame() {
	ps := s.withTotals(30, 10, 30, 0)

	report, err := s.service.CloseMonth(s.ctx, 3, 2026)
	s.Require().NoError(err)

	s.Equal([]model.ParticipantID{ps[0].ID, ps[2].ID, ps[1].ID, ps[3].ID}, []model.ParticipantID{
		report.Rankings[0].ParticipantID,
		report.Rankings[1].ParticipantID,
		report.Rankings[2].ParticipantID,
		report.Rankings[3].ParticipantID,
	})

	trophies := s.trophies()
	s.Require().Len(trophies, 4)
	s.Equal(ps[0].ID, trophies[0].ParticipantID)
	s.Equal(model.PositionFirst, trophies[0].Position)
	s.Equal(30.0, trophies[0].TotalSpent)
	s.Equal(ps[2].ID, trophies[1].ParticipantID)
	s.Equal(model.PositionSecond, trophies[1].Position)
	s.Equal(ps[1].ID, trophies[2].ParticipantID)
	s.Equal(model.PositionThird, trophies[2].Position)
	s.Equal(ps[3].ID, trophies[3].ParticipantID)
	s.True(trophies[3].IsShame())

	for _, t := range trophies {
		s.Equal(3, t.Month)
		s.Equal(2026, t.Year)
	}
	s.Len(report.Trophies, 4)
}

func (s *ServiceSuite) TestCloseMonthAllZeroOnlyShame() {
	ps := s.withTotals(0, 0, 0)

	report, err := s.service.CloseMonth(s.ctx, 3, 2026)
	s.Require().NoError(err)

	s.Require().Len(report.Trophies, 1)
	s.True(report.Trophies[0].IsShame())
	s.Equal(ps[2].ID, report.Trophies[0].ParticipantID)
}

func (s *ServiceSuite) TestCloseMonthSingleParticipant() {
	s.withTotals(12)

	report, err := s.service.CloseMonth(s.ctx, 3, 2026)
	s.Require().NoError(err)

	s.Require().Len(report.Trophies, 1)
	s.Equal(model.PositionFirst, report.Trophies[0].Position)
}

func (s *ServiceSuite) TestCloseMonthSingleParticipantZeroSpend() {
	s.withTotals(0)

	report, err := s.service.CloseMonth(s.ctx, 3, 2026)
	s.Require().NoError(err)
	s.Empty(report.Trophies)
}

func (s *ServiceSuite) TestCloseMonthNoParticipants() {
	report, err := s.service.CloseMonth(s.ctx, 3, 2026)
	s.Require().NoError(err)
	s.Empty(report.Trophies)
	s.Empty(report.Rankings)
}

func (s *ServiceSuite) TestCloseMonthRefusesSecondClose() {
	s.withTotals(5, 1)

	report, err := s.service.CloseMonth(s.ctx, 3, 2026)
	s.Require().NoError(err)
	// 1st, 2nd (positive total) and shame for last place
	s.Require().Len(report.Trophies, 3)

	_, err = s.service.CloseMonth(s.ctx, 3, 2026)
	s.ErrorIs(err, model.ErrMonthAlreadyClosed)
	s.Len(s.trophies(), 3)

	_, err = s.service.CloseMonth(s.ctx, 4, 2026)
	s.NoError(err)
}

func (s *ServiceSuite) TestCloseMonthInvalidPeriod() {
	_, err := s.service.CloseMonth(s.ctx, 13, 2026)
	s.ErrorIs(err, model.ErrInvalidPeriod)

	_, err = s.service.CloseMonth(s.ctx, 0, 2026)
	s.ErrorIs(err, model.ErrInvalidPeriod)

	_, err = s.service.CloseMonth(s.ctx, 5, 0)
	s.ErrorIs(err, model.ErrInvalidPeriod)
}

func (s *ServiceSuite) TestCloseMonthWriteFailureIsFatal() {
	s.withTotals(5, 1)
	service := ranking.New(failingTrophyStore{s.store}, s.mockClock, testutil.NopLogger())

	_, err := service.CloseMonth(s.ctx, 3, 2026)
	s.Error(err)
}

func (s *ServiceSuite) TestClosePreviousMonth() {
	s.mockClock.Set(time.Date(2026, 1, 1, 0, 5, 0, 0, time.UTC))
	s.withTotals(5, 1)

	report, err := s.service.ClosePreviousMonth(s.ctx)
	s.Require().NoError(err)

	s.Equal(12, report.Month)
	s.Equal(2025, report.Year)
}

func (s *ServiceSuite) TestTrophiesEmptyIsNonNil() {
	trophies, err := s.service.Trophies(s.ctx)
	s.Require().NoError(err)
	s.NotNil(trophies)
	s.Empty(trophies)
}

func (s *ServiceSuite) TestTrophiesListsClosedMonths() {
	s.withTotals(20, 10)
	_, err := s.service.CloseMonth(s.ctx, 3, 2026)
	s.Require().NoError(err)

	trophies, err := s.service.Trophies(s.ctx)
	s.Require().NoError(err)
	s.Len(trophies, 3)
}
