package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func summaries(t *testing.T, store *memStore, keys ...int64) []CardSummary {
	t.Helper()
	got, err := store.CardSummaries(context.Background(), keys)
	require.NoError(t, err)
	byKey := make(map[int64]CardSummary, len(got))
	for _, s := range got {
		byKey[s.Key] = s
	}
	out := make([]CardSummary, 0, len(keys))
	for _, k := range keys {
		out = append(out, byKey[k])
	}
	return out
}

func TestRemoveCardDuplicatesPokemonReprints(t *testing.T) {
	store := fixtureStore()
	e := New(store)

	// The two Pikachu prints share name, hp and the Gnaw attack; only the
	// first survives. Raichu differs and stays.
	in := summaries(t, store, 1, 3, 2)
	out, err := e.RemoveCardDuplicates(context.Background(), in)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "sv1-25", out[0].CardID)
	assert.Equal(t, "sv1-26", out[1].CardID)
}

func TestRemoveCardDuplicatesAttackDifferenceKeepsBoth(t *testing.T) {
	store := fixtureStore()
	// Same name and hp as card 1, but a different attack.
	store.add(TableCards, 7, map[string]any{
		"card_id": "sv2-25", "name": "Pikachu", "supertype": "Pokémon",
		"hp": "60", "set_id": int64(1),
	})
	store.attacks[7] = []AttackDetail{{Name: "Quick Attack", Damage: "20", Cost: []string{"Colorless"}}}
	e := New(store)

	out, err := e.RemoveCardDuplicates(context.Background(), summaries(t, store, 1, 7))
	require.NoError(t, err)
	assert.Len(t, out, 2)
}

func TestRemoveCardDuplicatesAttackOrderIgnored(t *testing.T) {
	store := fixtureStore()
	store.add(TableCards, 8, map[string]any{
		"card_id": "a-1", "name": "Duo", "supertype": "Pokémon", "hp": "90", "set_id": int64(1),
	})
	store.add(TableCards, 9, map[string]any{
		"card_id": "a-2", "name": "Duo", "supertype": "Pokémon", "hp": "90", "set_id": int64(1),
	})
	store.attacks[8] = []AttackDetail{
		{Name: "First", Damage: "10", Cost: []string{"Fire", "Colorless"}},
		{Name: "Second", Damage: "30", Cost: []string{"Water"}},
	}
	store.attacks[9] = []AttackDetail{
		{Name: "Second", Damage: "30", Cost: []string{"Water"}},
		{Name: "First", Damage: "10", Cost: []string{"Colorless", "Fire"}},
	}
	e := New(store)

	out, err := e.RemoveCardDuplicates(context.Background(), summaries(t, store, 8, 9))
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "a-1", out[0].CardID)
}

func TestRemoveCardDuplicatesTrainerRules(t *testing.T) {
	store := fixtureStore()
	store.add(TableCards, 10, map[string]any{
		"card_id": "b-1", "name": "Rare Candy", "supertype": "Trainer",
		"rules":   []string{"Choose 1 of your  Benched Basic Pokémon and evolve it."},
		"set_id":  int64(2),
	})
	store.add(TableCards, 11, map[string]any{
		"card_id": "b-2", "name": "Rare Candy", "supertype": "Trainer",
		"rules":   []string{"Discard your hand."},
		"set_id":  int64(2),
	})
	e := New(store)

	// Rules text compares after whitespace normalization, so the reprint
	// with doubled spaces collapses into the original. Different rules
	// keep the card.
	out, err := e.RemoveCardDuplicates(context.Background(), summaries(t, store, 4, 10, 11))
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "sv1-80", out[0].CardID)
	assert.Equal(t, "b-2", out[1].CardID)
}

func TestRemoveCardDuplicatesEnergyNeverCollapsed(t *testing.T) {
	store := fixtureStore()
	store.add(TableCards, 12, map[string]any{
		"card_id": "c-1", "name": "Basic Lightning Energy", "supertype": "Energy", "set_id": int64(2),
	})
	e := New(store)

	out, err := e.RemoveCardDuplicates(context.Background(), summaries(t, store, 5, 12))
	require.NoError(t, err)
	assert.Len(t, out, 2)
}

func TestRemoveCardDuplicatesIdempotent(t *testing.T) {
	store := fixtureStore()
	e := New(store)

	in := summaries(t, store, 1, 2, 3, 4, 5, 6)
	once, err := e.RemoveCardDuplicates(context.Background(), in)
	require.NoError(t, err)
	twice, err := e.RemoveCardDuplicates(context.Background(), once)
	require.NoError(t, err)
	assert.Equal(t, once, twice)
}

func TestRemoveCardDuplicatesEmptyInput(t *testing.T) {
	e := New(fixtureStore())

	out, err := e.RemoveCardDuplicates(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestCategoryNormalizesSpelling(t *testing.T) {
	assert.Equal(t, supertypePokemon, category("Pokemon"))
	assert.Equal(t, supertypePokemon, category("POKÉMON"))
	assert.Equal(t, supertypeTrainer, category("Trainer"))
	assert.Equal(t, supertypeEnergy, category(" Energy "))
	assert.Equal(t, "stadium", category("Stadium"))
}
