package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"log/slog"

	"github.com/deckbinder/deckbinder/binder/config"
	"github.com/deckbinder/deckbinder/binder/search"
	"github.com/uptrace/bun"
)

// SearchStore is the bun-backed record-lookup capability the search engine
// runs against. Every predicate the engine emits translates to a WHERE
// clause; nothing here knows about filters, only predicates.
type SearchStore struct {
	db *bun.DB
}

func NewSearchStore(db *bun.DB) *SearchStore {
	return &SearchStore{db: db}
}

var _ search.Store = (*SearchStore)(nil)

var identRE = regexp.MustCompile(`^[a-z_]+$`)

func ident(name string) (string, error) {
	if !identRE.MatchString(name) {
		return "", fmt.Errorf("invalid identifier %q", name)
	}
	return name, nil
}

// escapeLike neutralizes LIKE metacharacters in a user-supplied term.
func escapeLike(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(term)
}

// predSQL renders a predicate tree to a WHERE expression with positional
// placeholders.
func predSQL(p search.Pred) (string, []any, error) {
	switch p := p.(type) {
	case search.Contains:
		col, err := ident(p.Column)
		if err != nil {
			return "", nil, err
		}
		return "CAST(" + col + " AS TEXT) ILIKE ?", []any{"%" + escapeLike(p.Term) + "%"}, nil

	case search.Eq:
		col, err := ident(p.Column)
		if err != nil {
			return "", nil, err
		}
		return col + " = ?", []any{p.Value}, nil

	case search.Compare:
		col, err := ident(p.Column)
		if err != nil {
			return "", nil, err
		}
		var op string
		switch p.Op {
		case search.OpEq:
			op = "="
		case search.OpGTE:
			op = ">="
		case search.OpLTE:
			op = "<="
		default:
			return "", nil, fmt.Errorf("unsupported comparison operator %q", p.Op)
		}
		return "(" + col + " IS NOT NULL AND " + col + " " + op + " ?)", []any{p.N}, nil

	case search.In:
		col, err := ident(p.Column)
		if err != nil {
			return "", nil, err
		}
		if len(p.Keys) == 0 {
			return "FALSE", nil, nil
		}
		return col + " IN (?)", []any{bun.In(p.Keys)}, nil

	case search.NotNull:
		col, err := ident(p.Column)
		if err != nil {
			return "", nil, err
		}
		return col + " IS NOT NULL", nil, nil

	case search.And:
		return joinPreds(p, " AND ")

	case search.Or:
		return joinPreds(p, " OR ")

	default:
		return "", nil, fmt.Errorf("unknown predicate %T", p)
	}
}

func joinPreds(preds []search.Pred, sep string) (string, []any, error) {
	if len(preds) == 0 {
		return "TRUE", nil, nil
	}
	parts := make([]string, 0, len(preds))
	var args []any
	for _, sub := range preds {
		sql, subArgs, err := predSQL(sub)
		if err != nil {
			return "", nil, err
		}
		parts = append(parts, sql)
		args = append(args, subArgs...)
	}
	return "(" + strings.Join(parts, sep) + ")", args, nil
}

func (s *SearchStore) SelectKeys(ctx context.Context, table search.Table, pred search.Pred) ([]int64, error) {
	return s.selectColumn(ctx, table, "id", pred)
}

func (s *SearchStore) SelectRefs(ctx context.Context, table search.Table, refColumn string, pred search.Pred) ([]int64, error) {
	return s.selectColumn(ctx, table, refColumn, pred)
}

func (s *SearchStore) selectColumn(ctx context.Context, table search.Table, column string, pred search.Pred) ([]int64, error) {
	ctx, cancel := context.WithTimeout(ctx, config.SearchTimeout)
	defer cancel()

	tbl, err := ident(string(table))
	if err != nil {
		return nil, err
	}
	col, err := ident(column)
	if err != nil {
		return nil, err
	}
	where, args, err := predSQL(pred)
	if err != nil {
		return nil, err
	}

	var keys []int64
	err = s.db.NewSelect().
		Table(tbl).
		ColumnExpr(col).
		Where(where, args...).
		OrderExpr(col + " ASC").
		Scan(ctx, &keys)
	if err != nil {
		return nil, fmt.Errorf("select %s.%s: %w", tbl, col, err)
	}
	return keys, nil
}

func (s *SearchStore) SelectText(ctx context.Context, table search.Table, keys []int64, column string) (map[int64]string, error) {
	if len(keys) == 0 {
		return map[int64]string{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, config.SearchTimeout)
	defer cancel()

	tbl, err := ident(string(table))
	if err != nil {
		return nil, err
	}
	col, err := ident(column)
	if err != nil {
		return nil, err
	}

	var rows []struct {
		ID    int64  `bun:"id"`
		Value string `bun:"value"`
	}
	err = s.db.NewSelect().
		Table(tbl).
		ColumnExpr("id").
		ColumnExpr("CAST(" + col + " AS TEXT) AS value").
		Where("id IN (?)", bun.In(keys)).
		Where(col + " IS NOT NULL").
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("select %s.%s values: %w", tbl, col, err)
	}

	out := make(map[int64]string, len(rows))
	for _, row := range rows {
		out[row.ID] = row.Value
	}
	return out, nil
}

func (s *SearchStore) SelectList(ctx context.Context, table search.Table, keys []int64, column string) (map[int64][]string, error) {
	raw, err := s.SelectText(ctx, table, keys, column)
	if err != nil {
		return nil, err
	}
	out := make(map[int64][]string, len(raw))
	for k, v := range raw {
		out[k] = decodeList(string(table), column, k, []byte(v))
	}
	return out, nil
}

// decodeList parses a serialized string array. A corrupt value degrades to
// a single-element list holding the raw string so one bad record cannot
// fail a whole search.
func decodeList(table, column string, key int64, raw []byte) []string {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return nil
	}
	var list []string
	if err := json.Unmarshal([]byte(trimmed), &list); err != nil {
		slog.Warn("Malformed list value, keeping raw",
			slog.String("type", "db"),
			slog.String("table", table),
			slog.String("column", column),
			slog.Int64("key", key),
			slog.Any("error", err),
		)
		return []string{trimmed}
	}
	return list
}

func (s *SearchStore) CardRefs(ctx context.Context, keys []int64) ([]search.CardRef, error) {
	if len(keys) == 0 {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, config.SearchTimeout)
	defer cancel()

	var rows []struct {
		ID     int64  `bun:"id"`
		CardID string `bun:"card_id"`
		Name   string `bun:"name"`
	}
	err := s.db.NewSelect().
		Table("cards").
		ColumnExpr("id, card_id, name").
		Where("id IN (?)", bun.In(keys)).
		OrderExpr("id ASC").
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("select card refs: %w", err)
	}

	refs := make([]search.CardRef, len(rows))
	for i, row := range rows {
		refs[i] = search.CardRef{Key: row.ID, CardID: row.CardID, Name: row.Name}
	}
	return refs, nil
}

func (s *SearchStore) CardSummaries(ctx context.Context, keys []int64) ([]search.CardSummary, error) {
	if len(keys) == 0 {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, config.SearchTimeout)
	defer cancel()

	var rows []struct {
		ID        int64  `bun:"id"`
		CardID    string `bun:"card_id"`
		Name      string `bun:"name"`
		Supertype string `bun:"supertype"`
		HP        string `bun:"hp"`
		Rules     string `bun:"rules"`
	}
	err := s.db.NewSelect().
		Table("cards").
		ColumnExpr("id, card_id, name, supertype").
		ColumnExpr("COALESCE(hp, '') AS hp").
		ColumnExpr("COALESCE(CAST(rules AS TEXT), '') AS rules").
		Where("id IN (?)", bun.In(keys)).
		OrderExpr("id ASC").
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("select card summaries: %w", err)
	}

	summaries := make([]search.CardSummary, len(rows))
	for i, row := range rows {
		summaries[i] = search.CardSummary{
			Key:       row.ID,
			CardID:    row.CardID,
			Name:      row.Name,
			Supertype: row.Supertype,
			HP:        row.HP,
			Rules:     decodeList("cards", "rules", row.ID, []byte(row.Rules)),
		}
	}
	return summaries, nil
}

func (s *SearchStore) AttacksForCards(ctx context.Context, cardKeys []int64) (map[int64][]search.AttackDetail, error) {
	if len(cardKeys) == 0 {
		return map[int64][]search.AttackDetail{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, config.SearchTimeout)
	defer cancel()

	var rows []struct {
		CardID  int64  `bun:"card_id"`
		Name    string `bun:"name"`
		Damage  string `bun:"damage"`
		CostRaw string `bun:"cost_raw"`
	}
	err := s.db.NewSelect().
		Table("card_attacks").
		ColumnExpr("card_attacks.card_id").
		ColumnExpr("attacks.name, COALESCE(attacks.damage, '') AS damage").
		ColumnExpr("COALESCE(CAST(card_attacks.cost AS TEXT), '') AS cost_raw").
		Join("JOIN attacks ON attacks.id = card_attacks.attack_id").
		Where("card_attacks.card_id IN (?)", bun.In(cardKeys)).
		OrderExpr("card_attacks.card_id ASC, card_attacks.id ASC").
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("select attacks for cards: %w", err)
	}

	out := make(map[int64][]search.AttackDetail)
	for _, row := range rows {
		out[row.CardID] = append(out[row.CardID], search.AttackDetail{
			Name:   row.Name,
			Damage: row.Damage,
			Cost:   decodeList("card_attacks", "cost", row.CardID, []byte(row.CostRaw)),
		})
	}
	return out, nil
}
