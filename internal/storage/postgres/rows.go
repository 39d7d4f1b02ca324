package postgres

import (
	"time"

	"github.com/mcoot/spendboard/internal/model"
)

// participantRow maps the participants table
type participantRow struct {
	ID          int64   `gorm:"primaryKey"`
	Name        string  `gorm:"not null"`
	AvatarURL   *string `gorm:"column:avatar_url"`
	CountryCode *string `gorm:"column:country_code;size:2"`
	SteamID     *string `gorm:"column:steam_id"`
	KnownAppIDs []int64 `gorm:"column:known_appids;serializer:json;type:jsonb"`
}

func (participantRow) TableName() string { return "participants" }

// purchaseRow maps the purchases table
type purchaseRow struct {
	ID            int64   `gorm:"primaryKey"`
	ParticipantID int64   `gorm:"column:participant_id;not null;index"`
	GameName      string  `gorm:"column:game_name;not null"`
	GameImage     *string `gorm:"column:game_image"`
	GameAppID     *int64  `gorm:"column:game_appid;index"`
	Price         float64 `gorm:"not null;check:price >= 0"`
	CreatedAt     time.Time
}

func (purchaseRow) TableName() string { return "purchases" }

// pendingRow maps the pending_purchases table
type pendingRow struct {
	ID            int64     `gorm:"primaryKey"`
	ParticipantID int64     `gorm:"column:participant_id;not null;index"`
	GameName      string    `gorm:"column:game_name;not null"`
	GameAppID     *int64    `gorm:"column:game_appid"`
	GameImage     *string   `gorm:"column:game_image"`
	Price         float64   `gorm:"not null"`
	Currency      string    `gorm:"not null;default:USD"`
	DetectedAt    time.Time `gorm:"column:detected_at;not null"`
}

func (pendingRow) TableName() string { return "pending_purchases" }

// trophyRow maps the trophies table. One trophy per participant, period and position.
type trophyRow struct {
	ID            int64   `gorm:"primaryKey"`
	ParticipantID int64   `gorm:"column:participant_id;not null;uniqueIndex:idx_trophy_period"`
	Month         int     `gorm:"not null;uniqueIndex:idx_trophy_period"`
	Year          int     `gorm:"not null;uniqueIndex:idx_trophy_period"`
	Position      int     `gorm:"not null;uniqueIndex:idx_trophy_period"`
	TotalSpent    float64 `gorm:"column:total_spent;not null"`
}

func (trophyRow) TableName() string { return "trophies" }

func appIDsToInts(ids []model.AppID) []int64 {
	out := make([]int64, len(ids))
	for i, id := range ids {
		out[i] = int64(id)
	}
	return out
}

func intsToAppIDs(ids []int64) []model.AppID {
	out := make([]model.AppID, len(ids))
	for i, id := range ids {
		out[i] = model.AppID(id)
	}
	return out
}

func appIDPtrToInt(id *model.AppID) *int64 {
	if id == nil {
		return nil
	}
	v := int64(*id)
	return &v
}

func intPtrToAppID(id *int64) *model.AppID {
	if id == nil {
		return nil
	}
	v := model.AppID(*id)
	return &v
}

func participantToRow(p *model.Participant) *participantRow {
	return &participantRow{
		ID:          int64(p.ID),
		Name:        p.Name,
		AvatarURL:   p.AvatarURL,
		CountryCode: p.CountryCode,
		SteamID:     p.SteamID,
		KnownAppIDs: appIDsToInts(p.KnownAppIDs),
	}
}

func (r *participantRow) toModel() *model.Participant {
	return &model.Participant{
		ID:          model.ParticipantID(r.ID),
		Name:        r.Name,
		AvatarURL:   r.AvatarURL,
		CountryCode: r.CountryCode,
		SteamID:     r.SteamID,
		KnownAppIDs: intsToAppIDs(r.KnownAppIDs),
	}
}

func purchaseToRow(p *model.Purchase) *purchaseRow {
	return &purchaseRow{
		ID:            int64(p.ID),
		ParticipantID: int64(p.ParticipantID),
		GameName:      p.GameName,
		GameImage:     p.GameImage,
		GameAppID:     appIDPtrToInt(p.GameAppID),
		Price:         p.Price,
	}
}

func (r *purchaseRow) toModel() *model.Purchase {
	return &model.Purchase{
		ID:            model.PurchaseID(r.ID),
		ParticipantID: model.ParticipantID(r.ParticipantID),
		GameName:      r.GameName,
		GameImage:     r.GameImage,
		GameAppID:     intPtrToAppID(r.GameAppID),
		Price:         r.Price,
	}
}

func pendingToRow(p *model.PendingPurchase) *pendingRow {
	return &pendingRow{
		ID:            int64(p.ID),
		ParticipantID: int64(p.ParticipantID),
		GameName:      p.GameName,
		GameAppID:     appIDPtrToInt(p.GameAppID),
		GameImage:     p.GameImage,
		Price:         p.Price,
		Currency:      p.Currency,
		DetectedAt:    p.DetectedAt,
	}
}

func (r *pendingRow) toModel() *model.PendingPurchase {
	return &model.PendingPurchase{
		ID:            model.PendingPurchaseID(r.ID),
		ParticipantID: model.ParticipantID(r.ParticipantID),
		GameName:      r.GameName,
		GameAppID:     intPtrToAppID(r.GameAppID),
		GameImage:     r.GameImage,
		Price:         r.Price,
		Currency:      r.Currency,
		DetectedAt:    r.DetectedAt,
	}
}

func trophyToRow(t *model.Trophy) *trophyRow {
	return &trophyRow{
		ID:            int64(t.ID),
		ParticipantID: int64(t.ParticipantID),
		Month:         t.Month,
		Year:          t.Year,
		Position:      t.Position,
		TotalSpent:    t.TotalSpent,
	}
}

func (r *trophyRow) toModel() *model.Trophy {
	return &model.Trophy{
		ID:            model.TrophyID(r.ID),
		ParticipantID: model.ParticipantID(r.ParticipantID),
		Month:         r.Month,
		Year:          r.Year,
		Position:      r.Position,
		TotalSpent:    r.TotalSpent,
	}
}
