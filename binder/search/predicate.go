package search

// Pred is the predicate IR handed to the Store. It stays within what the
// record-lookup boundary supports: equality, comparison, substring,
// set-membership and boolean combination.
type Pred interface {
	isPred()
}

// Contains is a case-insensitive substring match on a column. For list
// columns the match runs against the serialized form.
type Contains struct {
	Column string
	Term   string
}

// Eq is an exact match.
type Eq struct {
	Column string
	Value  any
}

// Compare is an operator-aware comparison on an int column. Null values
// never match.
type Compare struct {
	Column string
	Op     Operator
	N      int
}

// In matches rows whose column value is one of Keys.
type In struct {
	Column string
	Keys   []int64
}

// NotNull matches rows with a non-null column value.
type NotNull struct {
	Column string
}

// And matches when every member matches.
type And []Pred

// Or matches when any member matches.
type Or []Pred

func (Contains) isPred() {}
func (Eq) isPred()       {}
func (Compare) isPred()  {}
func (In) isPred()       {}
func (NotNull) isPred()  {}
func (And) isPred()      {}
func (Or) isPred()       {}
