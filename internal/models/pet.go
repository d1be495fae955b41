package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Pet struct {
	bun.BaseModel   `bun:"table:pet"`
	ID              int64     `bun:"id,pk,autoincrement" json:"id"`
	OwnerID         int64     `bun:"owner_id" json:"owner_id"`
	Name            string    `bun:"name" json:"name"`
	ImageURL        *string   `bun:"image_url" json:"image_url"`
	HasArtwork      bool      `bun:"has_artwork" json:"has_artwork"`
	Minted          bool      `bun:"minted" json:"minted"`
	VoteCount       int64     `bun:"vote_count" json:"vote_count"`
	GenerationCount int64     `bun:"generation_count" json:"generation_count"`
	MintCount       int64     `bun:"mint_count" json:"mint_count"`
	CreatedAt       time.Time `bun:"created_at,default:current_timestamp" json:"created_at"`
	UpdatedAt       time.Time `bun:"updated_at" json:"updated_at"`
}
