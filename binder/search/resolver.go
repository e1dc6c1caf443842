package search

import (
	"context"
	"fmt"
)

// resolveToCards maps matching primary keys in a secondary table forward to
// card keys. The join tables are walked with two sequential lookups rather
// than a relational join so the calling contract stays the same on stores
// without one. Results are deduplicated: a card can have many qualifying
// attacks.
func resolveToCards(ctx context.Context, s Store, table Table, keys []int64) ([]int64, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	switch table {
	case TableCards:
		return dedupeKeys(keys), nil

	case TableSets:
		cards, err := selectChunkedKeys(ctx, s, TableCards, "set_id", keys)
		if err != nil {
			return nil, err
		}
		return dedupeKeys(cards), nil

	case TableAbilities:
		return resolveThroughJoin(ctx, s, TableCardAbilities, "ability_id", keys)

	case TableAttacks:
		return resolveThroughJoin(ctx, s, TableCardAttacks, "attack_id", keys)

	case TableCardAbilities, TableCardAttacks:
		cards, err := selectChunkedRefs(ctx, s, table, "card_id", "id", keys)
		if err != nil {
			return nil, err
		}
		return dedupeKeys(cards), nil

	default:
		return nil, fmt.Errorf("unknown table %q", table)
	}
}

// resolveThroughJoin hops from catalog keys to the cards referencing them
// through the join table.
func resolveThroughJoin(ctx context.Context, s Store, joinTable Table, refColumn string, keys []int64) ([]int64, error) {
	cards, err := selectChunkedRefs(ctx, s, joinTable, "card_id", refColumn, keys)
	if err != nil {
		return nil, err
	}
	return dedupeKeys(cards), nil
}

func selectChunkedKeys(ctx context.Context, s Store, table Table, column string, keys []int64) ([]int64, error) {
	var out []int64
	for _, chunk := range chunkKeys(keys, lookupBatchSize) {
		got, err := s.SelectKeys(ctx, table, In{Column: column, Keys: chunk})
		if err != nil {
			return nil, fmt.Errorf("resolve %s by %s: %w", table, column, err)
		}
		out = append(out, got...)
	}
	return out, nil
}

func selectChunkedRefs(ctx context.Context, s Store, table Table, refColumn, matchColumn string, keys []int64) ([]int64, error) {
	var out []int64
	for _, chunk := range chunkKeys(keys, lookupBatchSize) {
		got, err := s.SelectRefs(ctx, table, refColumn, In{Column: matchColumn, Keys: chunk})
		if err != nil {
			return nil, fmt.Errorf("resolve %s.%s: %w", table, refColumn, err)
		}
		out = append(out, got...)
	}
	return out, nil
}
