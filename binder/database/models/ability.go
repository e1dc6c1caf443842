package models

import "github.com/uptrace/bun"

// Ability is a catalog entry shared across cards, unique by name.
type Ability struct {
	bun.BaseModel `bun:"table:abilities,alias:ab"`

	ID   int64  `bun:"id,pk,autoincrement"`
	Name string `bun:"name,notnull,unique"`
	Text string `bun:"text"`
}

// CardAbility links a card to an ability in its catalog.
type CardAbility struct {
	bun.BaseModel `bun:"table:card_abilities,alias:cab"`

	ID        int64 `bun:"id,pk,autoincrement"`
	CardID    int64 `bun:"card_id,notnull"`
	AbilityID int64 `bun:"ability_id,notnull"`

	// Relations
	Card    *Card    `bun:"rel:belongs-to,join:card_id=id"`
	Ability *Ability `bun:"rel:belongs-to,join:ability_id=id"`
}
