package models

import "github.com/uptrace/bun"

// Attack is a catalog entry shared across cards, unique by name. The
// catalog carries the damage expression; cost lives on the join record
// because the same attack can cost differently on different cards.
type Attack struct {
	bun.BaseModel `bun:"table:attacks,alias:at"`

	ID     int64  `bun:"id,pk,autoincrement"`
	Name   string `bun:"name,notnull,unique"`
	Text   string `bun:"text"`
	Damage string `bun:"damage"`
}

// CardAttack links a card to an attack and carries the per-relationship
// cost attributes.
type CardAttack struct {
	bun.BaseModel `bun:"table:card_attacks,alias:cat"`

	ID                  int64    `bun:"id,pk,autoincrement"`
	CardID              int64    `bun:"card_id,notnull"`
	AttackID            int64    `bun:"attack_id,notnull"`
	Cost                []string `bun:"cost,type:jsonb"`
	ConvertedEnergyCost int      `bun:"converted_energy_cost,notnull,default:0"`

	// Relations
	Card   *Card   `bun:"rel:belongs-to,join:card_id=id"`
	Attack *Attack `bun:"rel:belongs-to,join:attack_id=id"`
}
