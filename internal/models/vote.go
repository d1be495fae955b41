package models

import (
	"time"

	"github.com/uptrace/bun"
)

// PetVote is the all-time popularity ledger, one row per (voter, pet).
type PetVote struct {
	bun.BaseModel `bun:"table:pet_vote"`
	ID            int64     `bun:"id,pk,autoincrement" json:"id"`
	VoterID       int64     `bun:"voter_id" json:"voter_id"`
	PetID         int64     `bun:"pet_id" json:"pet_id"`
	CreatedAt     time.Time `bun:"created_at,default:current_timestamp" json:"created_at"`
}

// DailyVote is the separate per-feature ledger, one row per (voter, feature).
type DailyVote struct {
	bun.BaseModel  `bun:"table:daily_vote"`
	ID             int64     `bun:"id,pk,autoincrement" json:"id"`
	VoterID        int64     `bun:"voter_id" json:"voter_id"`
	DailyFeatureID int64     `bun:"daily_feature_id" json:"daily_feature_id"`
	CreatedAt      time.Time `bun:"created_at,default:current_timestamp" json:"created_at"`
}
