package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	REFERRAL_STATUS_PENDING   = "pending"
	REFERRAL_STATUS_COMPLETED = "completed"
	REFERRAL_STATUS_REWARDED  = "rewarded"
)

type ReferralCode struct {
	bun.BaseModel `bun:"table:referral_code"`
	ID            int64     `bun:"id,pk,autoincrement" json:"id"`
	UserID        int64     `bun:"user_id" json:"user_id"`
	Code          string    `bun:"code" json:"code"`
	CreatedAt     time.Time `bun:"created_at,default:current_timestamp" json:"created_at"`
}

type Referral struct {
	bun.BaseModel  `bun:"table:referral"`
	ID             int64     `bun:"id,pk,autoincrement" json:"id"`
	ReferrerID     int64     `bun:"referrer_id" json:"referrer_id"`
	Code           string    `bun:"code" json:"code"`
	ReferredUserID *int64    `bun:"referred_user_id" json:"referred_user_id"`
	Status         string    `bun:"status" json:"status"`
	RewardGranted  bool      `bun:"reward_granted" json:"reward_granted"`
	CreatedAt      time.Time `bun:"created_at,default:current_timestamp" json:"created_at"`
	UpdatedAt      time.Time `bun:"updated_at" json:"updated_at"`
}

// ReferralStats is a derived cache, only mutated by the referral ledger's
// own transitions.
type ReferralStats struct {
	bun.BaseModel          `bun:"table:referral_stats"`
	UserID                 int64 `bun:"user_id,pk" json:"user_id"`
	TotalReferrals         int64 `bun:"total_referrals" json:"total_referrals"`
	PendingReferrals       int64 `bun:"pending_referrals" json:"pending_referrals"`
	FreeGenerationsEarned  int64 `bun:"free_generations_earned" json:"free_generations_earned"`
}
