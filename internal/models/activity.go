package models

import "time"

const (
	ACTIVITY_VOTE       = "vote"
	ACTIVITY_DAILY_VOTE = "daily-vote"
	ACTIVITY_GENERATION = "generation"
	ACTIVITY_MINT       = "mint"
	ACTIVITY_FEATURED   = "featured"
)

// Activity entries live in a best-effort redis feed, not in Postgres.
type Activity struct {
	UserID    int64             `json:"user_id" msgpack:"user_id"`
	PetID     *int64            `json:"pet_id" msgpack:"pet_id"`
	Type      string            `json:"type" msgpack:"type"`
	Metadata  map[string]string `json:"metadata" msgpack:"metadata"`
	CreatedAt time.Time         `json:"created_at" msgpack:"created_at"`
}
