package models

import (
	"time"

	"github.com/uptrace/bun"
)

type DailyFeature struct {
	bun.BaseModel `bun:"table:daily_feature"`
	ID            int64     `bun:"id,pk,autoincrement" json:"id"`
	Date          string    `bun:"date" json:"date"` // "2006-01-02", UTC
	PetID         int64     `bun:"pet_id" json:"pet_id"`
	VoteCount     int64     `bun:"vote_count" json:"vote_count"`
	PrizeAwarded  bool      `bun:"prize_awarded" json:"prize_awarded"`
	CreatedAt     time.Time `bun:"created_at,default:current_timestamp" json:"created_at"`

	Pet *Pet `bun:"rel:belongs-to,join:pet_id=id" json:"pet,omitempty"`
}

type WeeklyDraw struct {
	bun.BaseModel  `bun:"table:weekly_draw"`
	ID             int64     `bun:"id,pk,autoincrement" json:"id"`
	WeekStart      string    `bun:"week_start" json:"week_start"` // Monday, "2006-01-02", UTC
	PetID          int64     `bun:"pet_id" json:"pet_id"`
	DailyFeatureID int64     `bun:"daily_feature_id" json:"daily_feature_id"`
	PrizeAmount    int64     `bun:"prize_amount" json:"prize_amount"`
	PrizeAwarded   bool      `bun:"prize_awarded" json:"prize_awarded"`
	CreatedAt      time.Time `bun:"created_at,default:current_timestamp" json:"created_at"`
}
