package search

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryNoFilters(t *testing.T) {
	e := New(fixtureStore())

	res, err := e.Query(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, res.CardIDs)
	assert.Contains(t, res.Trace.Steps, "no filters applied")

	// Filters that normalize to empty count as omitted, not as match-all.
	res, err = e.Query(context.Background(), []Filter{
		{Config: Fields["name"], Value: Text("   ")},
		{Config: Fields["types"], Value: Multi{}},
	})
	require.NoError(t, err)
	assert.Empty(t, res.CardIDs)
	assert.Contains(t, res.Trace.Steps, "no filters applied")
}

func TestQueryByName(t *testing.T) {
	e := New(fixtureStore())

	res, err := e.Query(context.Background(), []Filter{
		{Config: Fields["name"], Value: Text("pikachu")},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"sv1-25", "ju-60"}, res.CardIDs)
}

func TestQueryHPComparison(t *testing.T) {
	e := New(fixtureStore())

	res, err := e.Query(context.Background(), []Filter{
		{Config: Fields["hp"], Value: NumberText{Raw: "100", Op: OpGTE}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"sv1-50", "sv1-26"}, res.CardIDs)
}

func TestQueryMultiselectUnionsWithinList(t *testing.T) {
	e := New(fixtureStore())

	res, err := e.Query(context.Background(), []Filter{
		{Config: Fields["types"], Value: Multi{"Fire", "Lightning"}},
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"sv1-25", "ju-60", "sv1-26", "sv1-50"}, res.CardIDs)
}

func TestQueryIntersectsAcrossTables(t *testing.T) {
	e := New(fixtureStore())

	res, err := e.Query(context.Background(), []Filter{
		{Config: Fields["name"], Value: Text("Pikachu")},
		{Config: Fields["setName"], Value: Text("Jungle")},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"ju-60"}, res.CardIDs)
}

func TestQueryAbilityExists(t *testing.T) {
	e := New(fixtureStore())

	res, err := e.Query(context.Background(), []Filter{
		{Config: Fields["hasAbility"], Value: Exists{}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"sv1-26"}, res.CardIDs)
}

func TestQueryAttackNameResolvesThroughJoin(t *testing.T) {
	e := New(fixtureStore())

	res, err := e.Query(context.Background(), []Filter{
		{Config: Fields["attackName"], Value: Text("Gnaw")},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"sv1-25", "ju-60"}, res.CardIDs)
}

func TestQueryIntersectionShortCircuit(t *testing.T) {
	store := fixtureStore()
	e := New(store)

	res, err := e.Query(context.Background(), []Filter{
		{Config: Fields["name"], Value: Text("Mewtwo")},
		{Config: Fields["setName"], Value: Text("Jungle")},
	})
	require.NoError(t, err)
	assert.Empty(t, res.CardIDs)
	assert.Contains(t, res.Trace.Steps, "empty group short-circuit")
}

func TestQueryGlobalORPolicy(t *testing.T) {
	// One OR-marked filter anywhere switches the cross-group combination
	// to a union of every group's matches.
	e := New(fixtureStore())

	res, err := e.Query(context.Background(), []Filter{
		{Config: Fields["name"], Value: Text("Candy")},
		{Config: orMarked(Fields["setName"]), Value: Text("Jungle")},
	})
	require.NoError(t, err)
	assert.Contains(t, res.Trace.Steps, "combine: union")
	assert.ElementsMatch(t, []string{"sv1-80", "ju-60"}, res.CardIDs)

	// The same filters without the OR mark intersect the two groups and
	// come up empty, since Jungle holds no Candy.
	resScoped, err := e.Query(context.Background(), []Filter{
		{Config: Fields["name"], Value: Text("Candy")},
		{Config: Fields["setName"], Value: Text("Jungle")},
	})
	require.NoError(t, err)
	assert.Contains(t, resScoped.Trace.Steps, "combine: intersection")
	assert.Empty(t, resScoped.CardIDs)
}

func TestQueryORSupersetOfAND(t *testing.T) {
	e := New(fixtureStore())

	andFilters := []Filter{
		{Config: Fields["name"], Value: Text("Pikachu")},
		{Config: Fields["setName"], Value: Text("Scarlet")},
	}
	orFilters := []Filter{
		{Config: Fields["name"], Value: Text("Pikachu")},
		{Config: orMarked(Fields["setName"]), Value: Text("Scarlet")},
	}

	andRes, err := e.Query(context.Background(), andFilters)
	require.NoError(t, err)
	orRes, err := e.Query(context.Background(), orFilters)
	require.NoError(t, err)

	assert.Subset(t, orRes.CardIDs, andRes.CardIDs)
	assert.Greater(t, len(orRes.CardIDs), len(andRes.CardIDs))
}

func TestQueryDeterministicOrdering(t *testing.T) {
	e := New(fixtureStore())
	filters := []Filter{{Config: Fields["supertype"], Value: Text("Pokémon")}}

	first, err := e.Query(context.Background(), filters)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := e.Query(context.Background(), filters)
		require.NoError(t, err)
		assert.Equal(t, first.CardIDs, again.CardIDs)
	}

	// Names sort case-insensitively; equal names fall back to key order.
	assert.Equal(t, []string{"sv1-50", "sv1-25", "ju-60", "sv1-26"}, first.CardIDs)
}

func TestQueryTableFailureAbortsAndNamesTable(t *testing.T) {
	store := fixtureStore()
	store.failOn(TableSets, errors.New("connection reset"))
	e := New(store)

	res, err := e.Query(context.Background(), []Filter{
		{Config: Fields["name"], Value: Text("Pikachu")},
		{Config: Fields["setName"], Value: Text("Jungle")},
	})
	require.Error(t, err)
	assert.Empty(t, res.CardIDs)

	var te *tableError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, TableSets, te.table)

	joined := strings.Join(res.Trace.Steps, "; ")
	assert.Contains(t, joined, "card_sets")
}

func TestGroupByTable(t *testing.T) {
	groups := groupByTable([]Filter{
		{Config: Fields["name"], Value: Text("a")},
		{Config: Fields["setName"], Value: Text("b")},
		{Config: orMarked(Fields["hp"]), Value: NumberText{Raw: "60"}},
		{Config: Fields["setSeries"], Value: Text("c")},
	})
	require.Len(t, groups, 2)
	assert.Equal(t, TableCards, groups[0].table)
	assert.Len(t, groups[0].and, 1)
	assert.Len(t, groups[0].or, 1)
	assert.Equal(t, TableSets, groups[1].table)
	assert.Len(t, groups[1].and, 2)
}
