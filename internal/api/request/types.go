package request

// LoginRequest is the request body for admin login
type LoginRequest struct {
	Password string `json:"password"`
}

// AddPurchaseRequest is the request body for recording a purchase
type AddPurchaseRequest struct {
	ParticipantID int64    `json:"participant_id"`
	GameName      string   `json:"game_name"`
	GameImage     *string  `json:"game_image,omitempty"`
	GameAppID     *int64   `json:"game_appid,omitempty"`
	Price         *float64 `json:"price"`
}

// UpdatePriceRequest is the request body for changing a purchase's price
type UpdatePriceRequest struct {
	Price *float64 `json:"price"`
}

// SuggestRequest is the request body for suggesting a pending purchase
type SuggestRequest struct {
	ParticipantID int64    `json:"participant_id"`
	GameName      string   `json:"game_name"`
	GameImage     *string  `json:"game_image,omitempty"`
	GameAppID     *int64   `json:"game_appid,omitempty"`
	Price         *float64 `json:"price"`
	Currency      string   `json:"currency,omitempty"`
}

// ApproveRequest is the optional request body for approving a pending purchase
type ApproveRequest struct {
	Price *float64 `json:"price,omitempty"`
}

// CloseMonthRequest is the optional request body for closing a month.
// Zero values select the previous calendar month.
type CloseMonthRequest struct {
	Month int `json:"month,omitempty"`
	Year  int `json:"year,omitempty"`
}
