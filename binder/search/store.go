package search

import "context"

// CardRef is the minimal projection used for name resolution and ordering.
type CardRef struct {
	Key    int64
	CardID string
	Name   string
}

// CardSummary carries the per-category fields duplicate collapsing needs.
type CardSummary struct {
	Key       int64
	CardID    string
	Name      string
	Supertype string
	HP        string
	Rules     []string
}

// AttackDetail is one attack as it appears on one card, cost included.
type AttackDetail struct {
	Name   string
	Damage string
	Cost   []string
}

// Store is the record-lookup capability the engine runs against. The bun
// implementation lives in the database gateway; tests use an in-memory one.
//
// Implementations must honor ctx cancellation and may not return partial
// results on error.
type Store interface {
	// SelectKeys returns the primary keys of rows in table matching pred.
	SelectKeys(ctx context.Context, table Table, pred Pred) ([]int64, error)

	// SelectRefs returns the values of an int64 reference column for rows
	// matching pred. Duplicates may be returned.
	SelectRefs(ctx context.Context, table Table, refColumn string, pred Pred) ([]int64, error)

	// SelectText returns the raw text of column for the given keys. Keys
	// with a null column value are omitted.
	SelectText(ctx context.Context, table Table, keys []int64, column string) (map[int64]string, error)

	// SelectList returns the decoded list content of a list column for the
	// given keys. Malformed stored lists degrade to a single-element list
	// holding the raw value.
	SelectList(ctx context.Context, table Table, keys []int64, column string) (map[int64][]string, error)

	// CardRefs resolves card keys to identifier and display name.
	CardRefs(ctx context.Context, keys []int64) ([]CardRef, error)

	// CardSummaries resolves card keys to collapse-ready summaries.
	CardSummaries(ctx context.Context, keys []int64) ([]CardSummary, error)

	// AttacksForCards returns every attack (with per-card cost) for the
	// given card keys, keyed by card.
	AttacksForCards(ctx context.Context, cardKeys []int64) (map[int64][]AttackDetail, error)
}
