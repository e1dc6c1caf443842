package repositories

import (
	"testing"

	"github.com/deckbinder/deckbinder/binder/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

func TestPredSQL(t *testing.T) {
	tests := []struct {
		name     string
		pred     search.Pred
		wantSQL  string
		wantArgs []any
	}{
		{
			name:     "contains",
			pred:     search.Contains{Column: "name", Term: "Pikachu"},
			wantSQL:  "CAST(name AS TEXT) ILIKE ?",
			wantArgs: []any{"%Pikachu%"},
		},
		{
			name:     "contains escapes like metacharacters",
			pred:     search.Contains{Column: "name", Term: "50%_off"},
			wantSQL:  "CAST(name AS TEXT) ILIKE ?",
			wantArgs: []any{`%50\%\_off%`},
		},
		{
			name:     "eq",
			pred:     search.Eq{Column: "hp", Value: "100+"},
			wantSQL:  "hp = ?",
			wantArgs: []any{"100+"},
		},
		{
			name:     "compare guards null",
			pred:     search.Compare{Column: "converted_energy_cost", Op: search.OpGTE, N: 2},
			wantSQL:  "(converted_energy_cost IS NOT NULL AND converted_energy_cost >= ?)",
			wantArgs: []any{2},
		},
		{
			name:     "in",
			pred:     search.In{Column: "set_id", Keys: []int64{1, 2}},
			wantSQL:  "set_id IN (?)",
			wantArgs: []any{bun.In([]int64{1, 2})},
		},
		{
			name:    "empty in matches nothing",
			pred:    search.In{Column: "set_id"},
			wantSQL: "FALSE",
		},
		{
			name:    "not null",
			pred:    search.NotNull{Column: "hp"},
			wantSQL: "hp IS NOT NULL",
		},
		{
			name: "and",
			pred: search.And{
				search.Contains{Column: "name", Term: "a"},
				search.NotNull{Column: "hp"},
			},
			wantSQL:  "(CAST(name AS TEXT) ILIKE ? AND hp IS NOT NULL)",
			wantArgs: []any{"%a%"},
		},
		{
			name: "or",
			pred: search.Or{
				search.Eq{Column: "damage", Value: "30x"},
				search.Eq{Column: "damage", Value: "30×"},
			},
			wantSQL:  "(damage = ? OR damage = ?)",
			wantArgs: []any{"30x", "30×"},
		},
		{
			name:    "empty and is vacuously true",
			pred:    search.And{},
			wantSQL: "TRUE",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args, err := predSQL(tt.pred)
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, sql)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestPredSQLRejectsBadIdentifiers(t *testing.T) {
	_, _, err := predSQL(search.Contains{Column: "name; DROP TABLE cards", Term: "x"})
	require.Error(t, err)

	_, _, err = predSQL(search.Eq{Column: "Name", Value: "x"})
	require.Error(t, err)
}

func TestDecodeList(t *testing.T) {
	assert.Equal(t, []string{"Fire", "Colorless"}, decodeList("card_attacks", "cost", 1, []byte(`["Fire","Colorless"]`)))
	assert.Nil(t, decodeList("cards", "rules", 1, []byte("")))
	assert.Nil(t, decodeList("cards", "rules", 1, []byte("null")))

	// Malformation degrades to the raw value instead of failing.
	assert.Equal(t, []string{`["Fire"`}, decodeList("card_attacks", "cost", 1, []byte(`["Fire"`)))
	assert.Equal(t, []string{"Colorless"}, decodeList("card_attacks", "cost", 1, []byte("Colorless")))
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `50\%`, escapeLike("50%"))
	assert.Equal(t, `a\_b`, escapeLike("a_b"))
	assert.Equal(t, `a\\b`, escapeLike(`a\b`))
	assert.Equal(t, "plain", escapeLike("plain"))
}
