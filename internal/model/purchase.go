package model

import "time"

// PurchaseID uniquely identifies a confirmed purchase
type PurchaseID int64

// PendingPurchaseID uniquely identifies a pending purchase
type PendingPurchaseID int64

// CurrencyUSD is the currency every stored price is normalized to
const CurrencyUSD = "USD"

// Purchase is a confirmed game purchase, priced in USD
type Purchase struct {
	ID            PurchaseID    `json:"id"`
	ParticipantID ParticipantID `json:"participant_id"`
	GameName      string        `json:"game_name"`
	GameImage     *string       `json:"game_image"`
	GameAppID     *AppID        `json:"game_appid"`
	Price         float64       `json:"price"`
}

// PendingPurchase is a detected or suggested purchase awaiting approval
type PendingPurchase struct {
	ID            PendingPurchaseID `json:"id"`
	ParticipantID ParticipantID     `json:"participant_id"`
	GameName      string            `json:"game_name"`
	GameAppID     *AppID            `json:"game_appid"`
	GameImage     *string           `json:"game_image"`
	Price         float64           `json:"price"`
	Currency      string            `json:"currency"`
	DetectedAt    time.Time         `json:"detected_at"`
}

// ToPurchase converts an approved pending purchase into a purchase
func (p *PendingPurchase) ToPurchase() *Purchase {
	return &Purchase{
		ParticipantID: p.ParticipantID,
		GameName:      p.GameName,
		GameImage:     p.GameImage,
		GameAppID:     p.GameAppID,
		Price:         p.Price,
	}
}
