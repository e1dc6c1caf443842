package search

import (
	"context"
	"fmt"
	"strings"
)

// memRow is one stored record: a primary key plus named column values.
// Column values are string, int, []string or nil (null).
type memRow struct {
	key  int64
	cols map[string]any
}

// memStore is an in-memory Store used by the engine tests. Rows keep
// insertion order; failTable makes every lookup against that table fail.
type memStore struct {
	tables    map[Table][]memRow
	attacks   map[int64][]AttackDetail
	failTable Table
	failErr   error
}

func newMemStore() *memStore {
	return &memStore{
		tables:  make(map[Table][]memRow),
		attacks: make(map[int64][]AttackDetail),
	}
}

func (m *memStore) add(table Table, key int64, cols map[string]any) {
	m.tables[table] = append(m.tables[table], memRow{key: key, cols: cols})
}

func (m *memStore) failOn(table Table, err error) {
	m.failTable = table
	m.failErr = err
}

func (m *memStore) checkFail(table Table) error {
	if m.failTable == table && m.failErr != nil {
		return m.failErr
	}
	return nil
}

func (r memRow) value(column string) (any, bool) {
	if column == "id" {
		return r.key, true
	}
	v, ok := r.cols[column]
	return v, ok
}

func stringify(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case []string:
		return strings.Join(v, ",")
	default:
		return fmt.Sprint(v)
	}
}

func (r memRow) matches(p Pred) bool {
	switch p := p.(type) {
	case Contains:
		v, ok := r.value(p.Column)
		if !ok || v == nil {
			return false
		}
		return strings.Contains(strings.ToLower(stringify(v)), strings.ToLower(p.Term))

	case Eq:
		v, ok := r.value(p.Column)
		if !ok || v == nil {
			return false
		}
		return stringify(v) == stringify(p.Value)

	case Compare:
		v, ok := r.value(p.Column)
		if !ok || v == nil {
			return false
		}
		n, ok := v.(int)
		if !ok {
			return false
		}
		switch p.Op {
		case OpGTE:
			return n >= p.N
		case OpLTE:
			return n <= p.N
		default:
			return n == p.N
		}

	case In:
		v, ok := r.value(p.Column)
		if !ok || v == nil {
			return false
		}
		var n int64
		switch v := v.(type) {
		case int64:
			n = v
		case int:
			n = int64(v)
		default:
			return false
		}
		for _, k := range p.Keys {
			if k == n {
				return true
			}
		}
		return false

	case NotNull:
		v, ok := r.value(p.Column)
		return ok && v != nil

	case And:
		for _, sub := range p {
			if !r.matches(sub) {
				return false
			}
		}
		return true

	case Or:
		for _, sub := range p {
			if r.matches(sub) {
				return true
			}
		}
		return false
	}
	return false
}

func (m *memStore) SelectKeys(ctx context.Context, table Table, pred Pred) ([]int64, error) {
	if err := m.checkFail(table); err != nil {
		return nil, err
	}
	var out []int64
	for _, r := range m.tables[table] {
		if r.matches(pred) {
			out = append(out, r.key)
		}
	}
	return out, nil
}

func (m *memStore) SelectRefs(ctx context.Context, table Table, refColumn string, pred Pred) ([]int64, error) {
	if err := m.checkFail(table); err != nil {
		return nil, err
	}
	var out []int64
	for _, r := range m.tables[table] {
		if !r.matches(pred) {
			continue
		}
		v, ok := r.value(refColumn)
		if !ok || v == nil {
			continue
		}
		switch v := v.(type) {
		case int64:
			out = append(out, v)
		case int:
			out = append(out, int64(v))
		}
	}
	return out, nil
}

func (m *memStore) SelectText(ctx context.Context, table Table, keys []int64, column string) (map[int64]string, error) {
	if err := m.checkFail(table); err != nil {
		return nil, err
	}
	want := make(map[int64]struct{}, len(keys))
	for _, k := range keys {
		want[k] = struct{}{}
	}
	out := make(map[int64]string)
	for _, r := range m.tables[table] {
		if _, ok := want[r.key]; !ok {
			continue
		}
		v, ok := r.value(column)
		if !ok || v == nil {
			continue
		}
		out[r.key] = stringify(v)
	}
	return out, nil
}

func (m *memStore) SelectList(ctx context.Context, table Table, keys []int64, column string) (map[int64][]string, error) {
	if err := m.checkFail(table); err != nil {
		return nil, err
	}
	want := make(map[int64]struct{}, len(keys))
	for _, k := range keys {
		want[k] = struct{}{}
	}
	out := make(map[int64][]string)
	for _, r := range m.tables[table] {
		if _, ok := want[r.key]; !ok {
			continue
		}
		v, ok := r.value(column)
		if !ok || v == nil {
			continue
		}
		switch v := v.(type) {
		case []string:
			out[r.key] = v
		case string:
			out[r.key] = []string{v}
		}
	}
	return out, nil
}

func (m *memStore) CardRefs(ctx context.Context, keys []int64) ([]CardRef, error) {
	if err := m.checkFail(TableCards); err != nil {
		return nil, err
	}
	want := make(map[int64]struct{}, len(keys))
	for _, k := range keys {
		want[k] = struct{}{}
	}
	var out []CardRef
	for _, r := range m.tables[TableCards] {
		if _, ok := want[r.key]; !ok {
			continue
		}
		out = append(out, CardRef{
			Key:    r.key,
			CardID: stringify(r.cols["card_id"]),
			Name:   stringify(r.cols["name"]),
		})
	}
	return out, nil
}

func (m *memStore) CardSummaries(ctx context.Context, keys []int64) ([]CardSummary, error) {
	if err := m.checkFail(TableCards); err != nil {
		return nil, err
	}
	want := make(map[int64]struct{}, len(keys))
	for _, k := range keys {
		want[k] = struct{}{}
	}
	var out []CardSummary
	for _, r := range m.tables[TableCards] {
		if _, ok := want[r.key]; !ok {
			continue
		}
		s := CardSummary{
			Key:       r.key,
			CardID:    stringify(r.cols["card_id"]),
			Name:      stringify(r.cols["name"]),
			Supertype: stringify(r.cols["supertype"]),
		}
		if hp, ok := r.cols["hp"].(string); ok {
			s.HP = hp
		}
		if rules, ok := r.cols["rules"].([]string); ok {
			s.Rules = rules
		}
		out = append(out, s)
	}
	return out, nil
}

func (m *memStore) AttacksForCards(ctx context.Context, cardKeys []int64) (map[int64][]AttackDetail, error) {
	if err := m.checkFail(TableCardAttacks); err != nil {
		return nil, err
	}
	out := make(map[int64][]AttackDetail)
	for _, k := range cardKeys {
		if atks, ok := m.attacks[k]; ok {
			out[k] = atks
		}
	}
	return out, nil
}

// fixtureStore builds the small catalog most engine tests run against.
//
// Cards: two Pikachu prints (same stats), Raichu (ability holder),
// Charizard ex, a Rare Candy trainer and a basic Energy.
func fixtureStore() *memStore {
	m := newMemStore()

	m.add(TableSets, 1, map[string]any{"name": "Scarlet & Violet", "series": "Scarlet & Violet", "ptcgo_code": "SVI"})
	m.add(TableSets, 2, map[string]any{"name": "Jungle", "series": "Base", "ptcgo_code": "JU"})

	m.add(TableCards, 1, map[string]any{
		"card_id": "sv1-25", "name": "Pikachu", "supertype": "Pokémon",
		"hp": "60", "types": []string{"Lightning"}, "set_id": int64(1),
	})
	m.add(TableCards, 2, map[string]any{
		"card_id": "sv1-26", "name": "Raichu", "supertype": "Pokémon",
		"hp": "120", "types": []string{"Lightning"}, "set_id": int64(1),
		"evolves_from": "Pikachu",
	})
	m.add(TableCards, 3, map[string]any{
		"card_id": "ju-60", "name": "Pikachu", "supertype": "Pokémon",
		"hp": "60", "types": []string{"Lightning"}, "set_id": int64(2),
	})
	m.add(TableCards, 4, map[string]any{
		"card_id": "sv1-80", "name": "Rare Candy", "supertype": "Trainer",
		"rules": []string{"Choose 1 of your Benched Basic Pokémon and evolve it."},
		"set_id": int64(1),
	})
	m.add(TableCards, 5, map[string]any{
		"card_id": "sv1-81", "name": "Basic Lightning Energy", "supertype": "Energy",
		"set_id": int64(1),
	})
	m.add(TableCards, 6, map[string]any{
		"card_id": "sv1-50", "name": "Charizard ex", "supertype": "Pokémon",
		"hp": "330", "types": []string{"Fire"}, "set_id": int64(1),
	})

	m.add(TableAbilities, 1, map[string]any{"name": "Static", "text": "Whenever this Pokémon is attacked, flip a coin."})
	m.add(TableCardAbilities, 1, map[string]any{"card_id": int64(2), "ability_id": int64(1)})

	m.add(TableAttacks, 1, map[string]any{"name": "Gnaw", "damage": "10"})
	m.add(TableAttacks, 2, map[string]any{"name": "Thunderbolt", "damage": "100"})
	m.add(TableAttacks, 3, map[string]any{"name": "Burning Darkness", "damage": "180+"})

	m.add(TableCardAttacks, 1, map[string]any{
		"card_id": int64(1), "attack_id": int64(1),
		"cost": []string{"Colorless"}, "converted_energy_cost": 1,
	})
	m.add(TableCardAttacks, 2, map[string]any{
		"card_id": int64(2), "attack_id": int64(2),
		"cost": []string{"Lightning", "Lightning", "Colorless"}, "converted_energy_cost": 3,
	})
	m.add(TableCardAttacks, 3, map[string]any{
		"card_id": int64(3), "attack_id": int64(1),
		"cost": []string{"Colorless"}, "converted_energy_cost": 1,
	})
	m.add(TableCardAttacks, 4, map[string]any{
		"card_id": int64(6), "attack_id": int64(3),
		"cost": []string{"Fire", "Fire"}, "converted_energy_cost": 2,
	})

	m.attacks[1] = []AttackDetail{{Name: "Gnaw", Damage: "10", Cost: []string{"Colorless"}}}
	m.attacks[2] = []AttackDetail{{Name: "Thunderbolt", Damage: "100", Cost: []string{"Lightning", "Lightning", "Colorless"}}}
	m.attacks[3] = []AttackDetail{{Name: "Gnaw", Damage: "10", Cost: []string{"Colorless"}}}
	m.attacks[6] = []AttackDetail{{Name: "Burning Darkness", Damage: "180+", Cost: []string{"Fire", "Fire"}}}

	return m
}
