package search

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

const (
	supertypePokemon = "pokémon"
	supertypeTrainer = "trainer"
	supertypeEnergy  = "energy"
)

// RemoveCardDuplicates filters functionally identical entries out of an
// already-resolved result list, keeping the first occurrence. What counts
// as identical depends on the category:
//
//   - Pokémon: same name, same hp and the same multiset of attacks (name,
//     damage and cost list, cost order ignored).
//   - Trainer: same name and same rules text after whitespace
//     normalization.
//   - Energy: never collapsed; identical basic energy prints are still
//     distinct items to browse.
//
// Attack lookups are batched per chunk of distinct cards, never per card.
func (e *Engine) RemoveCardDuplicates(ctx context.Context, cards []CardSummary) ([]CardSummary, error) {
	if len(cards) == 0 {
		return cards, nil
	}

	var pokemonKeys []int64
	for _, c := range cards {
		if category(c.Supertype) == supertypePokemon {
			pokemonKeys = append(pokemonKeys, c.Key)
		}
	}

	attacks := make(map[int64][]AttackDetail, len(pokemonKeys))
	for _, chunk := range chunkKeys(dedupeKeys(pokemonKeys), lookupBatchSize) {
		got, err := e.store.AttacksForCards(ctx, chunk)
		if err != nil {
			return nil, fmt.Errorf("resolve attacks for duplicate check: %w", err)
		}
		for k, v := range got {
			attacks[k] = v
		}
	}

	seen := make(map[string]struct{}, len(cards))
	out := make([]CardSummary, 0, len(cards))
	for _, c := range cards {
		var key string
		switch category(c.Supertype) {
		case supertypeEnergy:
			out = append(out, c)
			continue
		case supertypePokemon:
			key = "p|" + strings.ToLower(c.Name) + "|" + collapseSpace(c.HP) + "|" + attackFingerprint(attacks[c.Key])
		case supertypeTrainer:
			key = "t|" + strings.ToLower(c.Name) + "|" + collapseSpace(strings.Join(c.Rules, " "))
		default:
			// Unknown category: fall back to identifier equality, which
			// keeps every distinct record.
			key = "u|" + c.CardID
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, c)
	}
	return out, nil
}

func category(supertype string) string {
	return strings.ToLower(NormalizeTerm(supertype))
}

// attackFingerprint builds an order-independent key for a card's attacks.
// Costs are sorted within each attack and attacks sorted among themselves,
// so two cards with the same attacks in a different order compare equal.
func attackFingerprint(atks []AttackDetail) string {
	parts := make([]string, len(atks))
	for i, a := range atks {
		cost := append([]string(nil), a.Cost...)
		sort.Strings(cost)
		parts[i] = strings.ToLower(a.Name) + "/" + collapseSpace(a.Damage) + "/" + strings.Join(cost, ",")
	}
	sort.Strings(parts)
	return strings.Join(parts, ";")
}
