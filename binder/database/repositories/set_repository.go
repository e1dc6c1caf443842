package repositories

import (
	"context"
	"time"

	"github.com/deckbinder/deckbinder/binder/database/models"
	"github.com/uptrace/bun"
)

type CardSetRepository interface {
	GetByID(ctx context.Context, id int64) (*models.CardSet, error)
	GetByCode(ctx context.Context, setCode string) (*models.CardSet, error)
	GetAll(ctx context.Context) ([]*models.CardSet, error)
	Upsert(ctx context.Context, set *models.CardSet) error
}

type cardSetRepository struct {
	*BaseRepository
	db *bun.DB
}

func NewCardSetRepository(db *bun.DB) CardSetRepository {
	return &cardSetRepository{BaseRepository: NewBaseRepository(db), db: db}
}

func (r *cardSetRepository) GetByID(ctx context.Context, id int64) (*models.CardSet, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	set := new(models.CardSet)
	err := r.db.NewSelect().
		Model(set).
		Where("cs.id = ?", id).
		Scan(ctx)

	if err != nil {
		return nil, r.HandleErrorWithID("get", "card set", id, err)
	}
	return set, nil
}

func (r *cardSetRepository) GetByCode(ctx context.Context, setCode string) (*models.CardSet, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	set := new(models.CardSet)
	err := r.db.NewSelect().
		Model(set).
		Where("set_code = ?", setCode).
		Scan(ctx)

	if err != nil {
		return nil, r.HandleErrorWithID("get", "card set", setCode, err)
	}
	return set, nil
}

func (r *cardSetRepository) GetAll(ctx context.Context) ([]*models.CardSet, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	var sets []*models.CardSet
	err := r.db.NewSelect().
		Model(&sets).
		Order("series ASC").
		Order("name ASC").
		Scan(ctx)

	return sets, err
}

// Upsert inserts the set or refreshes its metadata, filling in the numeric
// row id either way.
func (r *cardSetRepository) Upsert(ctx context.Context, set *models.CardSet) error {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	now := time.Now()
	set.CreatedAt = now
	set.UpdatedAt = now

	_, err := r.db.NewInsert().
		Model(set).
		On("CONFLICT (set_code) DO UPDATE").
		Set("name = EXCLUDED.name").
		Set("series = EXCLUDED.series").
		Set("ptcgo_code = EXCLUDED.ptcgo_code").
		Set("updated_at = EXCLUDED.updated_at").
		Returning("id").
		Exec(ctx)

	return err
}
