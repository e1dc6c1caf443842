package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/deckbinder/deckbinder/binder/config"
	"github.com/deckbinder/deckbinder/binder/database/models"
	"github.com/uptrace/bun"
)

type CardRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Card, error)
	GetByCardID(ctx context.Context, cardID string) (*models.Card, error)
	GetByName(ctx context.Context, name string) ([]*models.Card, error)
	GetByIDs(ctx context.Context, ids []int64) ([]*models.Card, error)
	GetBySetID(ctx context.Context, setID int64) ([]*models.Card, error)
	GetByCardIDs(ctx context.Context, cardIDs []string) ([]*models.Card, error)
	AllNames(ctx context.Context) ([]string, error)
	GetCardCount(ctx context.Context) (int64, error)
	BulkUpsert(ctx context.Context, cards []*models.Card) (int, error)
}

type cardRepository struct {
	*BaseRepository
	db *bun.DB
}

func NewCardRepository(db *bun.DB) CardRepository {
	return &cardRepository{BaseRepository: NewBaseRepository(db), db: db}
}

func (r *cardRepository) GetByID(ctx context.Context, id int64) (*models.Card, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	card := new(models.Card)
	err := r.db.NewSelect().
		Model(card).
		Where("c.id = ?", id).
		Scan(ctx)

	if err != nil {
		return nil, r.HandleErrorWithID("get", "card", id, err)
	}
	return card, nil
}

func (r *cardRepository) GetByCardID(ctx context.Context, cardID string) (*models.Card, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	card := new(models.Card)
	err := r.db.NewSelect().
		Model(card).
		Where("card_id = ?", cardID).
		Scan(ctx)

	if err != nil {
		return nil, r.HandleErrorWithID("get", "card", cardID, err)
	}
	return card, nil
}

func (r *cardRepository) GetByName(ctx context.Context, name string) ([]*models.Card, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	var cards []*models.Card
	err := r.db.NewSelect().
		Model(&cards).
		Where("LOWER(name) = LOWER(?)", name).
		Order("card_id ASC").
		Scan(ctx)

	return cards, err
}

func (r *cardRepository) GetByIDs(ctx context.Context, ids []int64) ([]*models.Card, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	var cards []*models.Card
	err := r.db.NewSelect().
		Model(&cards).
		Where("c.id IN (?)", bun.In(ids)).
		Order("c.id ASC").
		Scan(ctx)

	return cards, err
}

func (r *cardRepository) GetBySetID(ctx context.Context, setID int64) ([]*models.Card, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	var cards []*models.Card
	err := r.db.NewSelect().
		Model(&cards).
		Where("set_id = ?", setID).
		Order("number ASC").
		Scan(ctx)

	return cards, err
}

func (r *cardRepository) GetByCardIDs(ctx context.Context, cardIDs []string) ([]*models.Card, error) {
	if len(cardIDs) == 0 {
		return nil, nil
	}

	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	var cards []*models.Card
	err := r.db.NewSelect().
		Model(&cards).
		Where("card_id IN (?)", bun.In(cardIDs)).
		Order("c.id ASC").
		Scan(ctx)

	return cards, err
}

func (r *cardRepository) AllNames(ctx context.Context) ([]string, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	var names []string
	err := r.db.NewSelect().
		Model((*models.Card)(nil)).
		ColumnExpr("DISTINCT name").
		OrderExpr("name ASC").
		Scan(ctx, &names)

	return names, err
}

func (r *cardRepository) GetCardCount(ctx context.Context) (int64, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	count, err := r.db.NewSelect().
		Model((*models.Card)(nil)).
		Count(ctx)

	return int64(count), err
}

// BulkUpsert loads a dataset batch, updating already-present cards in
// place. Batches are capped to keep statement parameter counts within the
// backend's limits.
func (r *cardRepository) BulkUpsert(ctx context.Context, cards []*models.Card) (int, error) {
	ctx, cancel := r.WithCustomTimeout(ctx, config.ImportTimeout)
	defer cancel()

	if len(cards) == 0 {
		return 0, nil
	}

	now := time.Now()
	total := 0

	for i := 0; i < len(cards); i += config.ImportBatchSize {
		end := i + config.ImportBatchSize
		if end > len(cards) {
			end = len(cards)
		}
		batch := cards[i:end]

		for _, card := range batch {
			card.CreatedAt = now
			card.UpdatedAt = now
		}

		res, err := r.db.NewInsert().
			Model(&batch).
			On("CONFLICT (card_id) DO UPDATE").
			Set("name = EXCLUDED.name").
			Set("supertype = EXCLUDED.supertype").
			Set("subtypes = EXCLUDED.subtypes").
			Set("hp = EXCLUDED.hp").
			Set("converted_retreat_cost = EXCLUDED.converted_retreat_cost").
			Set("types = EXCLUDED.types").
			Set("weaknesses = EXCLUDED.weaknesses").
			Set("resistances = EXCLUDED.resistances").
			Set("evolves_from = EXCLUDED.evolves_from").
			Set("evolves_to = EXCLUDED.evolves_to").
			Set("rules = EXCLUDED.rules").
			Set("artist = EXCLUDED.artist").
			Set("flavor_text = EXCLUDED.flavor_text").
			Set("rarity = EXCLUDED.rarity").
			Set("regulation_mark = EXCLUDED.regulation_mark").
			Set("number = EXCLUDED.number").
			Set("set_id = EXCLUDED.set_id").
			Set("updated_at = EXCLUDED.updated_at").
			Exec(ctx)

		if err != nil {
			return total, fmt.Errorf("failed to upsert card batch: %w", err)
		}

		affected, err := res.RowsAffected()
		if err != nil {
			return total, err
		}
		total += int(affected)
	}

	return total, nil
}
