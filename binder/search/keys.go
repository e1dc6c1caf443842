package search

import "sort"

// dedupeKeys removes duplicates, preserving first-seen order.
func dedupeKeys(keys []int64) []int64 {
	if len(keys) == 0 {
		return keys
	}
	seen := make(map[int64]struct{}, len(keys))
	out := keys[:0:0]
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

// intersectKeys keeps the members of a that also appear in b.
func intersectKeys(a, b []int64) []int64 {
	inB := make(map[int64]struct{}, len(b))
	for _, k := range b {
		inB[k] = struct{}{}
	}
	out := make([]int64, 0, len(a))
	for _, k := range a {
		if _, ok := inB[k]; ok {
			out = append(out, k)
		}
	}
	return dedupeKeys(out)
}

// unionKeys merges two key sets, preserving first-seen order.
func unionKeys(a, b []int64) []int64 {
	return dedupeKeys(append(append([]int64{}, a...), b...))
}

// sortKeys puts keys in ascending order so downstream ordering is
// deterministic regardless of how the sets were combined.
func sortKeys(keys []int64) []int64 {
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
