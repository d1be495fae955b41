package services

import (
	"errors"
	"fmt"
	"time"
)

var ErrAlreadyVoted = errors.New("already voted")
var ErrNoEligiblePets = errors.New("no eligible pets")
var ErrNoEntriesThisWeek = errors.New("no entries this week")
var ErrPetMinted = errors.New("pet has a minted artifact")
var ErrPetNotReady = errors.New("pet has no artwork")

const (
	CONFIG_SERVER_MODE                = "SERVER_MODE"
	CONFIG_CRONJOB_TIME_DAILY_FEATURE = "CRONJOB_TIME_DAILY_FEATURE"
	CONFIG_CRONJOB_TIME_WEEKLY_DRAW   = "CRONJOB_TIME_WEEKLY_DRAW"
	CONFIG_FEATURE_MIN_VOTES          = "FEATURE_MIN_VOTES"
	CONFIG_FEATURE_COOLDOWN_DAYS      = "FEATURE_COOLDOWN_DAYS"
	CONFIG_WEEKLY_PRIZE_AMOUNT        = "WEEKLY_PRIZE_AMOUNT"
	CONFIG_REFERRAL_REWARD_AMOUNT     = "REFERRAL_REWARD_AMOUNT"
	CONFIG_PET_LEADERBOARD_LIMIT      = "PET_LEADERBOARD_LIMIT"

	SERVER_MODE_DEVELOPMENT = "development"
	SERVER_MODE_STAGING     = "staging"
	SERVER_MODE_PRODUCTION  = "production"

	DEFAULT_CRON_DAILY_FEATURE = "0 0 * * *"
	DEFAULT_CRON_WEEKLY_DRAW   = "5 0 * * 1"

	DEFAULT_FEATURE_MIN_VOTES     = 5
	DEFAULT_FEATURE_COOLDOWN_DAYS = 7
	DEFAULT_WEEKLY_PRIZE_AMOUNT   = 100
	DEFAULT_REFERRAL_REWARD       = 1
	PET_LEADERBOARD_DEFAULT_LIMIT = 20

	// free generation allowances per pet
	GENERATION_ALLOWANCE        = 2
	REGENERATION_ALLOWANCE_MINT = 1

	VOTE_RATE_LIMIT_PER_MINUTE  = 30
	CLICK_RATE_LIMIT_PER_MINUTE = 60

	CACHE_TTL_5_SECONDS = 5 * time.Second
	CACHE_TTL_1_MIN     = 1 * time.Minute
	CACHE_TTL_5_MINS    = 5 * time.Minute
	CACHE_TTL_1_HOUR    = 1 * time.Hour
)

func DBKeyConfig(key string) string {
	return fmt.Sprintf("config:%s", key)
}

func DBKeyPet(petID int64) string {
	return fmt.Sprintf("pet:%d", petID)
}

func DBKeyPetLeaderboard(limit int) string {
	return fmt.Sprintf("pet:leaderboard:%d", limit)
}

func DBKeyDailyFeature(date string) string {
	return fmt.Sprintf("daily_feature:%s", date)
}

func DBKeyWeeklyDraw(weekStart string) string {
	return fmt.Sprintf("weekly_draw:%s", weekStart)
}

func DBKeyReferralStats(userID int64) string {
	return fmt.Sprintf("referral:stats:%d", userID)
}

func DBKeyUserBadges(userID int64) string {
	return fmt.Sprintf("user:badges:%d", userID)
}

func LimitKeyVote(voterID int64) string {
	return fmt.Sprintf("limit:vote:%d", voterID)
}

func LimitKeyReferralClick(code string) string {
	return fmt.Sprintf("limit:referral_click:%s", code)
}
