package redis

import (
	"fmt"

	"github.com/mcoot/spendboard/internal/model"
)

// Key prefix for all leaderboard data
const keyPrefix = "spendboard"

// Entity kinds, used for record keys, id sequences and indexes
const (
	kindParticipant = "participant"
	kindPurchase    = "purchase"
	kindPending     = "pending"
	kindTrophy      = "trophy"
)

// recordKey returns the Redis key holding the JSON record of an entity
func recordKey(kind string, id int64) string {
	return fmt.Sprintf("%s:%s:%d", keyPrefix, kind, id)
}

// seqKey returns the Redis key of the id counter for an entity kind
func seqKey(kind string) string {
	return fmt.Sprintf("%s:seq:%s", keyPrefix, kind)
}

// indexKey returns the Redis key for the ZSET of ids of an entity kind, scored by id
func indexKey(kind string) string {
	return fmt.Sprintf("%s:idx:%s", keyPrefix, kind)
}

// trophyPeriodKey returns the uniqueness key for a trophy slot
func trophyPeriodKey(t *model.Trophy) string {
	return fmt.Sprintf("%s:idx:trophy_key:%d:%d:%d:%d", keyPrefix, t.ParticipantID, t.Year, t.Month, t.Position)
}
