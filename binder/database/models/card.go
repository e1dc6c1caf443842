package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Card is the root record. CardID is the stable textual identifier from the
// dataset and the only identifier that ever crosses the engine boundary;
// the numeric row id stays internal.
type Card struct {
	bun.BaseModel `bun:"table:cards,alias:c"`

	ID        int64    `bun:"id,pk,autoincrement"`
	CardID    string   `bun:"card_id,notnull,unique"`
	Name      string   `bun:"name,notnull"`
	Supertype string   `bun:"supertype,notnull"`
	Subtypes  []string `bun:"subtypes,type:jsonb"`

	// HP is free-form text in the dataset ("100", "100+", "100×").
	HP                   string `bun:"hp"`
	ConvertedRetreatCost *int   `bun:"converted_retreat_cost"`

	Types       []string `bun:"types,type:jsonb"`
	Weaknesses  []string `bun:"weaknesses,type:jsonb"`
	Resistances []string `bun:"resistances,type:jsonb"`
	EvolvesTo   []string `bun:"evolves_to,type:jsonb"`
	Rules       []string `bun:"rules,type:jsonb"`

	EvolvesFrom    string `bun:"evolves_from"`
	Artist         string `bun:"artist"`
	FlavorText     string `bun:"flavor_text"`
	Rarity         string `bun:"rarity"`
	RegulationMark string `bun:"regulation_mark"`
	Number         string `bun:"number"`

	SetID     int64     `bun:"set_id,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`

	// Relations
	Set *CardSet `bun:"rel:belongs-to,join:set_id=id"`
}
