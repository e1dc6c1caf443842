package search

import (
	"context"
	"fmt"
)

// lookupBatchSize caps IN-list sizes on key-batched round trips so the
// backing store's parameter limits are respected.
const lookupBatchSize = 1000

type compiler struct {
	store Store
}

// textCompare is a numeric comparison against a text-stored column that the
// store cannot express directly; it runs post-fetch against the raw values.
type textCompare struct {
	column string
	op     Operator
	n      int
	valid  bool
}

// costSlots is the combined exact-cost predicate: the cost list must have
// exactly total entries and contain every slot token, each consuming one
// occurrence.
type costSlots struct {
	column string
	total  int
	slots  []string
}

// compileGroup computes the matching primary keys for one table: the AND
// subset compiled as a conjunction, the OR-marked subset as one combined
// disjunction, and the two intersected.
func (c *compiler) compileGroup(ctx context.Context, table Table, and, or []Filter) ([]int64, error) {
	andKeys, andOK, err := c.compileAll(ctx, table, and)
	if err != nil {
		return nil, err
	}
	orKeys, orOK, err := c.compileAny(ctx, table, or)
	if err != nil {
		return nil, err
	}
	switch {
	case andOK && orOK:
		return intersectKeys(andKeys, orKeys), nil
	case andOK:
		return andKeys, nil
	case orOK:
		return orKeys, nil
	default:
		return nil, nil
	}
}

// compileAll resolves a conjunction of filters. The second return is false
// when the filters impose no constraint at all.
func (c *compiler) compileAll(ctx context.Context, table Table, filters []Filter) ([]int64, bool, error) {
	if len(filters) == 0 {
		return nil, false, nil
	}

	var preds And
	var fallbacks []textCompare
	check, rest := splitCostSlots(table, filters)

	for _, f := range rest {
		pred, fb := filterPred(f)
		if fb != nil {
			if !fb.valid {
				// A digitless comparison value can never match.
				return []int64{}, true, nil
			}
			fallbacks = append(fallbacks, *fb)
			continue
		}
		preds = append(preds, pred)
	}
	if check != nil {
		if len(check.slots) > check.total {
			// More slot tokens than the stated total cost: unsatisfiable,
			// not an error.
			return []int64{}, true, nil
		}
		preds = append(preds, Compare{Column: "converted_energy_cost", Op: OpEq, N: check.total})
	}

	// Every store-expressible predicate runs first so the post-fetch passes
	// only scan an already-reduced candidate set.
	var base Pred
	switch {
	case len(preds) > 0:
		base = And(preds)
	case len(fallbacks) > 0:
		base = NotNull{Column: fallbacks[0].column}
	case check != nil:
		base = NotNull{Column: check.column}
	default:
		return nil, false, nil
	}

	keys, err := c.store.SelectKeys(ctx, table, base)
	if err != nil {
		return nil, false, fmt.Errorf("select %s keys: %w", table, err)
	}
	for _, fb := range fallbacks {
		keys, err = c.applyTextCompare(ctx, table, keys, fb)
		if err != nil {
			return nil, false, err
		}
	}
	if check != nil {
		keys, err = c.applyCostSlots(ctx, table, keys, *check)
		if err != nil {
			return nil, false, err
		}
	}
	return keys, true, nil
}

// compileAny resolves the OR-marked subset as a single combined predicate.
func (c *compiler) compileAny(ctx context.Context, table Table, filters []Filter) ([]int64, bool, error) {
	if len(filters) == 0 {
		return nil, false, nil
	}

	var preds Or
	var fallbacks []textCompare
	for _, f := range filters {
		pred, fb := filterPred(f)
		if fb != nil {
			if fb.valid {
				fallbacks = append(fallbacks, *fb)
			}
			continue
		}
		preds = append(preds, pred)
	}

	var keys []int64
	if len(preds) > 0 {
		got, err := c.store.SelectKeys(ctx, table, preds)
		if err != nil {
			return nil, false, fmt.Errorf("select %s keys: %w", table, err)
		}
		keys = got
	}
	for _, fb := range fallbacks {
		candidates, err := c.store.SelectKeys(ctx, table, NotNull{Column: fb.column})
		if err != nil {
			return nil, false, fmt.Errorf("select %s keys: %w", table, err)
		}
		matched, err := c.applyTextCompare(ctx, table, candidates, fb)
		if err != nil {
			return nil, false, err
		}
		keys = unionKeys(keys, matched)
	}
	return dedupeKeys(keys), true, nil
}

// filterPred builds the store predicate for one filter, or a textCompare
// when the comparison needs the post-fetch fallback.
func filterPred(f Filter) (Pred, *textCompare) {
	col := f.Config.Column
	switch v := f.Value.(type) {
	case Text:
		words := splitWords(string(v))
		if len(words) == 1 {
			return Contains{Column: col, Term: words[0]}, nil
		}
		and := make(And, 0, len(words))
		for _, w := range words {
			and = append(and, Contains{Column: col, Term: w})
		}
		return and, nil

	case NumberInt:
		op := v.Op
		if op == "" {
			op = OpEq
		}
		return Compare{Column: col, Op: op, N: v.N}, nil

	case NumberText:
		op := v.Op
		if op == "" {
			op = OpEq
		}
		if op == "×" {
			op = OpTimes
		}
		switch op {
		case OpPlus:
			return Eq{Column: col, Value: v.Raw + "+"}, nil
		case OpTimes:
			// The dataset is inconsistent about the multiplier glyph, so an
			// exact match has to try both spellings.
			return Or{
				Eq{Column: col, Value: v.Raw + "x"},
				Eq{Column: col, Value: v.Raw + "×"},
			}, nil
		case OpGTE, OpLTE:
			n, ok := numericFromText(v.Raw)
			return nil, &textCompare{column: col, op: op, n: n, valid: ok}
		default:
			return Eq{Column: col, Value: v.Raw}, nil
		}

	case Multi:
		or := make(Or, 0, len(v))
		for _, tok := range v {
			or = append(or, Contains{Column: col, Term: tok})
		}
		return or, nil

	case Exists:
		return NotNull{Column: "id"}, nil
	}
	return NotNull{Column: "id"}, nil
}

// splitCostSlots detects the exact-cost/slot-token pairing on the attack
// join table. Matching the two independently would accept rows where a
// token appears but the total list length differs, so they compile into one
// combined structural check.
func splitCostSlots(table Table, filters []Filter) (*costSlots, []Filter) {
	if table != TableCardAttacks {
		return nil, filters
	}
	var total *NumberInt
	var slots Multi
	var slotCol string
	for _, f := range filters {
		switch v := f.Value.(type) {
		case NumberInt:
			if f.Config.Column == "converted_energy_cost" && (v.Op == "" || v.Op == OpEq) {
				vv := v
				total = &vv
			}
		case Multi:
			if f.Config.Column == "cost" {
				slots = v
				slotCol = f.Config.Column
			}
		}
	}
	if total == nil || slots == nil {
		return nil, filters
	}
	rest := make([]Filter, 0, len(filters))
	for _, f := range filters {
		if f.Config.Column == "converted_energy_cost" || f.Config.Column == "cost" {
			continue
		}
		rest = append(rest, f)
	}
	return &costSlots{column: slotCol, total: total.N, slots: slots}, rest
}

// applyTextCompare keeps the keys whose raw column value, digits only,
// satisfies the comparison. Values without digits never match.
func (c *compiler) applyTextCompare(ctx context.Context, table Table, keys []int64, fb textCompare) ([]int64, error) {
	out := make([]int64, 0, len(keys))
	for _, chunk := range chunkKeys(keys, lookupBatchSize) {
		vals, err := c.store.SelectText(ctx, table, chunk, fb.column)
		if err != nil {
			return nil, fmt.Errorf("select %s.%s values: %w", table, fb.column, err)
		}
		for _, k := range chunk {
			raw, ok := vals[k]
			if !ok {
				continue
			}
			n, ok := numericFromText(raw)
			if !ok {
				continue
			}
			if (fb.op == OpGTE && n >= fb.n) || (fb.op == OpLTE && n <= fb.n) {
				out = append(out, k)
			}
		}
	}
	return out, nil
}

// applyCostSlots keeps the keys whose decoded cost list has exactly total
// entries and covers the slot multiset, each slot consuming one occurrence.
func (c *compiler) applyCostSlots(ctx context.Context, table Table, keys []int64, check costSlots) ([]int64, error) {
	required := make(map[string]int, len(check.slots))
	for _, tok := range check.slots {
		required[tok]++
	}

	out := make([]int64, 0, len(keys))
	for _, chunk := range chunkKeys(keys, lookupBatchSize) {
		lists, err := c.store.SelectList(ctx, table, chunk, check.column)
		if err != nil {
			return nil, fmt.Errorf("select %s.%s lists: %w", table, check.column, err)
		}
		for _, k := range chunk {
			list, ok := lists[k]
			if !ok || len(list) != check.total {
				continue
			}
			have := make(map[string]int, len(list))
			for _, tok := range list {
				have[tok]++
			}
			satisfied := true
			for tok, n := range required {
				if have[tok] < n {
					satisfied = false
					break
				}
			}
			if satisfied {
				out = append(out, k)
			}
		}
	}
	return out, nil
}

func chunkKeys(keys []int64, size int) [][]int64 {
	if len(keys) == 0 {
		return nil
	}
	chunks := make([][]int64, 0, (len(keys)+size-1)/size)
	for start := 0; start < len(keys); start += size {
		end := start + size
		if end > len(keys) {
			end = len(keys)
		}
		chunks = append(chunks, keys[start:end])
	}
	return chunks
}
