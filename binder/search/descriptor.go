package search

// Table identifies one record table known to the engine.
type Table string

const (
	TableCards         Table = "cards"
	TableSets          Table = "card_sets"
	TableAbilities     Table = "abilities"
	TableAttacks       Table = "attacks"
	TableCardAbilities Table = "card_abilities"
	TableCardAttacks   Table = "card_attacks"
)

// Kind is the value kind a filterable field accepts.
type Kind int

const (
	KindText Kind = iota
	KindNumber
	KindMultiselect
	KindExists
)

// Storage describes how a column is physically stored.
type Storage int

const (
	StorageText Storage = iota
	StorageInt
	StorageJSONArray
)

// Combine is the combination mode a filter participates in.
type Combine int

const (
	CombineAnd Combine = iota
	CombineOr
)

// Operator qualifies numeric filter values.
type Operator string

const (
	OpEq    Operator = "="
	OpGTE   Operator = ">="
	OpLTE   Operator = "<="
	OpPlus  Operator = "+"
	OpTimes Operator = "x"
)

// FieldConfig declares one filterable field: the caller-facing key, the
// value kind it accepts and the table/column it targets.
type FieldConfig struct {
	Key     string
	Kind    Kind
	Table   Table
	Column  string
	Storage Storage
	Combine Combine
}

// Value is the closed set of filter value variants. Every compiler branch
// switches over these types exhaustively.
type Value interface {
	isValue()
}

// Text matches a column by case-insensitive substring. Multi-word values
// are split and every word must appear, in any order.
type Text string

// NumberInt compares an int-stored column against N under Op.
type NumberInt struct {
	N  int
	Op Operator
}

// NumberText compares a text-stored numeric column (values like "100",
// "100+", "100×") against Raw under Op.
type NumberText struct {
	Raw string
	Op  Operator
}

// Multi matches when the column's list content contains any listed token.
type Multi []string

// Exists matches rows that simply exist; used for "has any"-style filters
// on join tables.
type Exists struct{}

func (Text) isValue()       {}
func (NumberInt) isValue()  {}
func (NumberText) isValue() {}
func (Multi) isValue()      {}
func (Exists) isValue()     {}

// Filter pairs a field config with a value.
type Filter struct {
	Config FieldConfig
	Value  Value
}

// Empty reports whether the filter carries no usable value and must be
// dropped before grouping.
func (f Filter) Empty() bool {
	switch v := f.Value.(type) {
	case nil:
		return true
	case Text:
		return string(v) == ""
	case NumberText:
		return v.Raw == ""
	case Multi:
		return len(v) == 0
	default:
		return false
	}
}

// Fields is the catalog of filterable fields. Keys are what the form layer
// sends; everything else is internal to the engine.
var Fields = map[string]FieldConfig{
	"name":           {Key: "name", Kind: KindText, Table: TableCards, Column: "name"},
	"supertype":      {Key: "supertype", Kind: KindText, Table: TableCards, Column: "supertype"},
	"subtypes":       {Key: "subtypes", Kind: KindMultiselect, Table: TableCards, Column: "subtypes", Storage: StorageJSONArray},
	"hp":             {Key: "hp", Kind: KindNumber, Table: TableCards, Column: "hp", Storage: StorageText},
	"types":          {Key: "types", Kind: KindMultiselect, Table: TableCards, Column: "types", Storage: StorageJSONArray},
	"weaknesses":     {Key: "weaknesses", Kind: KindMultiselect, Table: TableCards, Column: "weaknesses", Storage: StorageJSONArray},
	"resistances":    {Key: "resistances", Kind: KindMultiselect, Table: TableCards, Column: "resistances", Storage: StorageJSONArray},
	"evolvesFrom":    {Key: "evolvesFrom", Kind: KindText, Table: TableCards, Column: "evolves_from"},
	"evolvesTo":      {Key: "evolvesTo", Kind: KindMultiselect, Table: TableCards, Column: "evolves_to", Storage: StorageJSONArray},
	"rules":          {Key: "rules", Kind: KindText, Table: TableCards, Column: "rules", Storage: StorageJSONArray},
	"artist":         {Key: "artist", Kind: KindText, Table: TableCards, Column: "artist"},
	"flavorText":     {Key: "flavorText", Kind: KindText, Table: TableCards, Column: "flavor_text"},
	"rarity":         {Key: "rarity", Kind: KindText, Table: TableCards, Column: "rarity"},
	"regulationMark": {Key: "regulationMark", Kind: KindText, Table: TableCards, Column: "regulation_mark"},
	"number":         {Key: "number", Kind: KindText, Table: TableCards, Column: "number"},
	"retreatCost":    {Key: "retreatCost", Kind: KindNumber, Table: TableCards, Column: "converted_retreat_cost", Storage: StorageInt},

	"setName":   {Key: "setName", Kind: KindText, Table: TableSets, Column: "name"},
	"setSeries": {Key: "setSeries", Kind: KindText, Table: TableSets, Column: "series"},
	"setCode":   {Key: "setCode", Kind: KindText, Table: TableSets, Column: "ptcgo_code"},

	"abilityName": {Key: "abilityName", Kind: KindText, Table: TableAbilities, Column: "name"},
	"abilityText": {Key: "abilityText", Kind: KindText, Table: TableAbilities, Column: "text"},
	"hasAbility":  {Key: "hasAbility", Kind: KindExists, Table: TableCardAbilities, Column: "id"},

	"attackName":   {Key: "attackName", Kind: KindText, Table: TableAttacks, Column: "name"},
	"attackText":   {Key: "attackText", Kind: KindText, Table: TableAttacks, Column: "text"},
	"attackDamage": {Key: "attackDamage", Kind: KindNumber, Table: TableAttacks, Column: "damage", Storage: StorageText},

	// Cost lives on the join record: the same catalog attack can cost
	// differently on different cards.
	"attackCost":      {Key: "attackCost", Kind: KindMultiselect, Table: TableCardAttacks, Column: "cost", Storage: StorageJSONArray},
	"attackCostValue": {Key: "attackCostValue", Kind: KindNumber, Table: TableCardAttacks, Column: "converted_energy_cost", Storage: StorageInt},
}

// freeTextFields is the default catalog the free-text orchestrator fans a
// phrase out across. Order is fixed so traces stay deterministic.
var freeTextFields = []FieldConfig{
	Fields["name"],
	Fields["supertype"],
	Fields["subtypes"],
	Fields["hp"],
	Fields["types"],
	Fields["evolvesFrom"],
	Fields["evolvesTo"],
	Fields["rules"],
	Fields["artist"],
	Fields["flavorText"],
	Fields["rarity"],
	Fields["regulationMark"],
	Fields["number"],
	Fields["retreatCost"],
	Fields["setName"],
	Fields["setSeries"],
	Fields["setCode"],
	Fields["abilityName"],
	Fields["abilityText"],
	Fields["attackName"],
	Fields["attackText"],
	Fields["attackDamage"],
	Fields["attackCost"],
	Fields["attackCostValue"],
}

// FreeTextFields returns the default free-text field catalog.
func FreeTextFields() []FieldConfig {
	out := make([]FieldConfig, len(freeTextFields))
	copy(out, freeTextFields)
	return out
}
