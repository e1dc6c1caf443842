package search

import (
	"context"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"
)

// FreeQuery fans a single phrase out across every field in the catalog
// (or the caller's allow-list) and unions the hits. A single search box is
// always disjunctive across fields.
func (e *Engine) FreeQuery(ctx context.Context, phrase string, fields []FieldConfig) (*Result, error) {
	res := &Result{}

	phrase = NormalizeTerm(phrase)
	if phrase == "" {
		res.Trace.add("empty phrase")
		return res, nil
	}
	if fields == nil {
		fields = FreeTextFields()
	}

	number, convErr := strconv.Atoi(strings.TrimSpace(phrase))
	isNumber := convErr == nil

	perField := make([][]int64, len(fields))
	g, gctx := errgroup.WithContext(ctx)
	searched := 0
	for i, fc := range fields {
		pred, ok := freeTextPred(fc, phrase, number, isNumber)
		if !ok {
			continue
		}
		searched++
		i, fc, pred := i, fc, pred
		g.Go(func() error {
			keys, err := e.store.SelectKeys(gctx, fc.Table, pred)
			if err != nil {
				return &tableError{table: fc.Table, err: err}
			}
			cards, err := resolveToCards(gctx, e.store, fc.Table, keys)
			if err != nil {
				return &tableError{table: fc.Table, err: err}
			}
			perField[i] = cards
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		res.Trace.add("free-text query failed")
		return res, err
	}

	var combined []int64
	for _, cards := range perField {
		combined = unionKeys(combined, cards)
	}
	res.Trace.addf("searched %d fields, %d cards matched", searched, len(combined))

	ids, err := e.orderedCardIDs(ctx, combined)
	if err != nil {
		res.Trace.add("name resolution failed")
		return res, err
	}
	res.CardIDs = ids
	return res, nil
}

// freeTextPred builds the per-field predicate for a phrase. Numeric columns
// participate only when the phrase parses as a number.
func freeTextPred(fc FieldConfig, phrase string, number int, isNumber bool) (Pred, bool) {
	switch {
	case fc.Kind == KindNumber && fc.Storage == StorageInt:
		if !isNumber {
			return nil, false
		}
		return Compare{Column: fc.Column, Op: OpEq, N: number}, true

	case fc.Kind == KindNumber && fc.Storage == StorageText:
		if !isNumber {
			return nil, false
		}
		return Eq{Column: fc.Column, Value: phrase}, true

	case fc.Storage == StorageJSONArray:
		return Contains{Column: fc.Column, Term: phrase}, true

	case fc.Kind == KindExists:
		return nil, false

	default:
		return Contains{Column: fc.Column, Term: phrase}, true
	}
}
