package search

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"
)

// Engine resolves structured and free-text card queries against a Store.
// It is stateless between invocations; every call re-executes fully.
type Engine struct {
	store    Store
	compiler compiler
}

func New(store Store) *Engine {
	return &Engine{store: store, compiler: compiler{store: store}}
}

// Result is what an orchestrator call returns: the matching card
// identifiers, name-sorted, plus a trace of what was evaluated. The trace
// is diagnostic output, not something that can be re-executed.
type Result struct {
	CardIDs []string
	Trace   Trace
}

// Trace records the evaluation steps of one query.
type Trace struct {
	Steps []string
}

func (t *Trace) add(step string) {
	t.Steps = append(t.Steps, step)
}

func (t *Trace) addf(format string, args ...any) {
	t.add(fmt.Sprintf(format, args...))
}

func (t Trace) String() string {
	return strings.Join(t.Steps, "; ")
}

type tableError struct {
	table Table
	err   error
}

func (e *tableError) Error() string {
	return fmt.Sprintf("table %s: %v", e.table, e.err)
}

func (e *tableError) Unwrap() error { return e.err }

type tableGroup struct {
	table Table
	and   []Filter
	or    []Filter
}

// Query resolves an ordered list of filters into the matching card
// identifier list. Filters with empty values are dropped; when nothing
// remains the result is deliberately empty rather than the whole catalog.
func (e *Engine) Query(ctx context.Context, filters []Filter) (*Result, error) {
	res := &Result{}

	applied := make([]Filter, 0, len(filters))
	for _, f := range filters {
		f.Value = normalizeValue(f.Value)
		if f.Empty() {
			continue
		}
		applied = append(applied, f)
	}
	if len(applied) == 0 {
		res.Trace.add("no filters applied")
		return res, nil
	}

	groups := groupByTable(applied)
	anyOr := false
	for _, f := range applied {
		if f.Config.Combine == CombineOr {
			anyOr = true
			break
		}
	}

	// Groups have no interdependency until combination, so their round
	// trips run concurrently. A failing table cancels the rest.
	perGroup := make([][]int64, len(groups))
	g, gctx := errgroup.WithContext(ctx)
	for i, grp := range groups {
		i, grp := i, grp
		g.Go(func() error {
			keys, err := e.compiler.compileGroup(gctx, grp.table, grp.and, grp.or)
			if err != nil {
				return &tableError{table: grp.table, err: err}
			}
			cards, err := resolveToCards(gctx, e.store, grp.table, keys)
			if err != nil {
				return &tableError{table: grp.table, err: err}
			}
			perGroup[i] = cards
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		var te *tableError
		if errors.As(err, &te) {
			res.Trace.addf("query failed for table %s", te.table)
		} else {
			res.Trace.add("query failed")
		}
		return res, err
	}

	for i, grp := range groups {
		res.Trace.addf("table %s matched %d cards (and=%d or=%d)",
			grp.table, len(perGroup[i]), len(grp.and), len(grp.or))
	}

	// A single OR-marked filter anywhere flips the cross-group combinator
	// to union for the whole request.
	var combined []int64
	if anyOr {
		res.Trace.add("combine: union")
		for _, cards := range perGroup {
			combined = unionKeys(combined, cards)
		}
	} else {
		res.Trace.add("combine: intersection")
		for i, cards := range perGroup {
			if len(cards) == 0 {
				// An empty operand forces an empty intersection; no point
				// touching the store again.
				res.Trace.add("empty group short-circuit")
				return res, nil
			}
			if i == 0 {
				combined = dedupeKeys(cards)
				continue
			}
			combined = intersectKeys(combined, cards)
		}
		if len(combined) == 0 {
			return res, nil
		}
	}

	ids, err := e.orderedCardIDs(ctx, combined)
	if err != nil {
		res.Trace.add("name resolution failed")
		return res, err
	}
	res.CardIDs = ids
	res.Trace.addf("resolved %d cards", len(ids))
	return res, nil
}

// groupByTable buckets filters by target table, splitting each bucket into
// its AND and OR-marked subsets. Group order follows first appearance so
// traces are stable.
func groupByTable(filters []Filter) []tableGroup {
	index := make(map[Table]int)
	var groups []tableGroup
	for _, f := range filters {
		i, ok := index[f.Config.Table]
		if !ok {
			i = len(groups)
			index[f.Config.Table] = i
			groups = append(groups, tableGroup{table: f.Config.Table})
		}
		if f.Config.Combine == CombineOr {
			groups[i].or = append(groups[i].or, f)
		} else {
			groups[i].and = append(groups[i].and, f)
		}
	}
	return groups
}

// orderedCardIDs resolves card keys to identifiers sorted case-insensitively
// by display name. Ties keep ascending key order so identical queries return
// identically ordered results. Name resolution is chunked to respect the
// store's batch limits; chunking does not affect ordering.
func (e *Engine) orderedCardIDs(ctx context.Context, keys []int64) ([]string, error) {
	keys = sortKeys(dedupeKeys(keys))

	refs := make([]CardRef, 0, len(keys))
	for _, chunk := range chunkKeys(keys, lookupBatchSize) {
		got, err := e.store.CardRefs(ctx, chunk)
		if err != nil {
			return nil, fmt.Errorf("resolve card names: %w", err)
		}
		refs = append(refs, got...)
	}

	byKey := make(map[int64]CardRef, len(refs))
	for _, r := range refs {
		byKey[r.Key] = r
	}
	ordered := make([]CardRef, 0, len(refs))
	for _, k := range keys {
		if r, ok := byKey[k]; ok {
			ordered = append(ordered, r)
		}
	}

	sort.SliceStable(ordered, func(i, j int) bool {
		return strings.ToLower(ordered[i].Name) < strings.ToLower(ordered[j].Name)
	})

	ids := make([]string, len(ordered))
	for i, r := range ordered {
		ids[i] = r.CardID
	}
	return ids, nil
}
