package repositories

import (
	"context"
	"fmt"

	"github.com/deckbinder/deckbinder/binder/database/models"
	"github.com/uptrace/bun"
)

// CatalogRepository manages the de-duplicated ability and attack catalogs
// and their join records.
type CatalogRepository interface {
	GetOrCreateAbility(ctx context.Context, name, text string) (*models.Ability, error)
	GetOrCreateAttack(ctx context.Context, name, text, damage string) (*models.Attack, error)
	ReplaceCardAbilities(ctx context.Context, cardID int64, abilityIDs []int64) error
	ReplaceCardAttacks(ctx context.Context, cardID int64, links []*models.CardAttack) error
}

type catalogRepository struct {
	*BaseRepository
	db *bun.DB
}

func NewCatalogRepository(db *bun.DB) CatalogRepository {
	return &catalogRepository{BaseRepository: NewBaseRepository(db), db: db}
}

// GetOrCreateAbility returns the catalog entry for name, creating it on
// first sight. Text from the latest import wins.
func (r *catalogRepository) GetOrCreateAbility(ctx context.Context, name, text string) (*models.Ability, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	ability := &models.Ability{Name: name, Text: text}
	_, err := r.db.NewInsert().
		Model(ability).
		On("CONFLICT (name) DO UPDATE").
		Set("text = EXCLUDED.text").
		Returning("id").
		Exec(ctx)

	if err != nil {
		return nil, fmt.Errorf("failed to upsert ability %q: %w", name, err)
	}
	return ability, nil
}

func (r *catalogRepository) GetOrCreateAttack(ctx context.Context, name, text, damage string) (*models.Attack, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	attack := &models.Attack{Name: name, Text: text, Damage: damage}
	_, err := r.db.NewInsert().
		Model(attack).
		On("CONFLICT (name) DO UPDATE").
		Set("text = EXCLUDED.text").
		Set("damage = EXCLUDED.damage").
		Returning("id").
		Exec(ctx)

	if err != nil {
		return nil, fmt.Errorf("failed to upsert attack %q: %w", name, err)
	}
	return attack, nil
}

// ReplaceCardAbilities rewrites a card's ability links; re-importing a set
// must not duplicate join rows.
func (r *catalogRepository) ReplaceCardAbilities(ctx context.Context, cardID int64, abilityIDs []int64) error {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*models.CardAbility)(nil)).
			Where("card_id = ?", cardID).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to clear card abilities: %w", err)
		}
		if len(abilityIDs) == 0 {
			return nil
		}
		links := make([]*models.CardAbility, len(abilityIDs))
		for i, id := range abilityIDs {
			links[i] = &models.CardAbility{CardID: cardID, AbilityID: id}
		}
		if _, err := tx.NewInsert().Model(&links).Exec(ctx); err != nil {
			return fmt.Errorf("failed to insert card abilities: %w", err)
		}
		return nil
	})
}

func (r *catalogRepository) ReplaceCardAttacks(ctx context.Context, cardID int64, links []*models.CardAttack) error {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*models.CardAttack)(nil)).
			Where("card_id = ?", cardID).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to clear card attacks: %w", err)
		}
		if len(links) == 0 {
			return nil
		}
		for _, link := range links {
			link.CardID = cardID
		}
		if _, err := tx.NewInsert().Model(&links).Exec(ctx); err != nil {
			return fmt.Errorf("failed to insert card attacks: %w", err)
		}
		return nil
	})
}
