package models

import (
	"time"

	"github.com/uptrace/bun"
)

// CardSet is a named print run. Many cards reference one set.
type CardSet struct {
	bun.BaseModel `bun:"table:card_sets,alias:cs"`

	ID        int64     `bun:"id,pk,autoincrement"`
	SetID     string    `bun:"set_code,notnull,unique"`
	Name      string    `bun:"name,notnull"`
	Series    string    `bun:"series"`
	PtcgoCode string    `bun:"ptcgo_code"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`

	// Relations
	Cards []*Card `bun:"rel:has-many,join:id=set_id"`
}
