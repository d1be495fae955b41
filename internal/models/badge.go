package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	METRIC_PET_VOTES   = "pet-votes"
	METRIC_VOTES_CAST  = "votes-cast"
	METRIC_GENERATIONS = "generations"
	METRIC_MINTS       = "mints"
	METRIC_REFERRALS   = "referrals"
	METRIC_FEATURED    = "featured"

	BADGE_FIRST_VOTE    = "first-vote"
	BADGE_POPULAR_PET   = "popular-pet"
	BADGE_BELOVED_PET   = "beloved-pet"
	BADGE_CREATOR       = "creator"
	BADGE_COLLECTOR     = "collector"
	BADGE_AMBASSADOR    = "ambassador"
	BADGE_FEATURED_PET  = "featured-pet"
)

type Badge struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Metric    string `json:"metric"`
	Threshold int64  `json:"threshold"`
	PerPet    bool   `json:"per_pet"`
}

// Badges is the static catalog. Thresholds are evaluated against monotonic
// counters, so a granted badge is never revoked.
var Badges = []Badge{
	{ID: BADGE_FIRST_VOTE, Title: "First Vote", Metric: METRIC_VOTES_CAST, Threshold: 1},
	{ID: BADGE_POPULAR_PET, Title: "Popular Pet", Metric: METRIC_PET_VOTES, Threshold: 10, PerPet: true},
	{ID: BADGE_BELOVED_PET, Title: "Beloved Pet", Metric: METRIC_PET_VOTES, Threshold: 50, PerPet: true},
	{ID: BADGE_CREATOR, Title: "Creator", Metric: METRIC_GENERATIONS, Threshold: 1, PerPet: true},
	{ID: BADGE_COLLECTOR, Title: "Collector", Metric: METRIC_MINTS, Threshold: 1, PerPet: true},
	{ID: BADGE_AMBASSADOR, Title: "Ambassador", Metric: METRIC_REFERRALS, Threshold: 3},
	{ID: BADGE_FEATURED_PET, Title: "Featured Pet", Metric: METRIC_FEATURED, Threshold: 1, PerPet: true},
}

// UserBadge: pet_id is 0 for user-level badges so the unique index has a
// single shared slot per (user, badge).
type UserBadge struct {
	bun.BaseModel `bun:"table:user_badge"`
	ID            int64     `bun:"id,pk,autoincrement" json:"id"`
	UserID        int64     `bun:"user_id" json:"user_id"`
	BadgeID       string    `bun:"badge_id" json:"badge_id"`
	PetID         int64     `bun:"pet_id" json:"pet_id"`
	AwardedAt     time.Time `bun:"awarded_at,default:current_timestamp" json:"awarded_at"`
}
