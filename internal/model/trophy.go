package model

// TrophyID uniquely identifies a trophy record
type TrophyID int64

// Trophy positions. Positions 1-3 are rank trophies; PositionShame marks last place.
const (
	PositionFirst  = 1
	PositionSecond = 2
	PositionThird  = 3
	PositionShame  = 5
)

// Trophy records a participant's placement for a closed month
type Trophy struct {
	ID            TrophyID      `json:"id"`
	ParticipantID ParticipantID `json:"participant_id"`
	Month         int           `json:"month"`
	Year          int           `json:"year"`
	Position      int           `json:"position"`
	TotalSpent    float64       `json:"total_spent"`
}

// IsShame reports whether this is the last-place marker
func (t *Trophy) IsShame() bool {
	return t.Position == PositionShame
}

// ValidPeriod reports whether month and year describe a closable month
func ValidPeriod(month, year int) bool {
	return month >= 1 && month <= 12 && year > 0
}
