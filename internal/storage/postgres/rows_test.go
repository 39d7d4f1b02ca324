package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/spendboard/internal/model"
)

func strPtr(v string) *string { return &v }

func TestParticipantRowRoundTrip(t *testing.T) {
	p := &model.Participant{
		ID:          3,
		Name:        "Alice",
		AvatarURL:   strPtr("/avatars/alice.png"),
		CountryCode: strPtr("UY"),
		SteamID:     strPtr("7656"),
		KnownAppIDs: []model.AppID{10, 20},
	}

	row := participantToRow(p)
	assert.Equal(t, []int64{10, 20}, row.KnownAppIDs)
	assert.Equal(t, p, row.toModel())
}

func TestParticipantRowEmptyBaseline(t *testing.T) {
	row := participantToRow(&model.Participant{Name: "Bob"})
	assert.NotNil(t, row.KnownAppIDs)
	assert.Empty(t, row.toModel().KnownAppIDs)
}

func TestPurchaseRowNilAppID(t *testing.T) {
	p := &model.Purchase{ID: 1, ParticipantID: 2, GameName: "Manual", Price: 3.5}

	row := purchaseToRow(p)
	assert.Nil(t, row.GameAppID)
	assert.Equal(t, p, row.toModel())
}

func TestPendingRowRoundTrip(t *testing.T) {
	app := model.AppID(620)
	p := &model.PendingPurchase{
		ID:            4,
		ParticipantID: 1,
		GameName:      "Portal 2",
		GameAppID:     &app,
		Price:         9.99,
		Currency:      model.CurrencyUSD,
		DetectedAt:    time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC),
	}

	row := pendingToRow(p)
	require.NotNil(t, row.GameAppID)
	assert.Equal(t, int64(620), *row.GameAppID)
	assert.Equal(t, p, row.toModel())
}

func TestTrophyRowRoundTrip(t *testing.T) {
	tr := &model.Trophy{ID: 9, ParticipantID: 1, Month: 12, Year: 2025, Position: model.PositionShame, TotalSpent: 0}
	assert.Equal(t, tr, trophyToRow(tr).toModel())
}

func TestTableNames(t *testing.T) {
	assert.Equal(t, "participants", participantRow{}.TableName())
	assert.Equal(t, "purchases", purchaseRow{}.TableName())
	assert.Equal(t, "pending_purchases", pendingRow{}.TableName())
	assert.Equal(t, "trophies", trophyRow{}.TableName())
}
