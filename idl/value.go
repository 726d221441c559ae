package idl

// ValueKind discriminates the constant value tree.
type ValueKind int

const (
	ValueString ValueKind = iota
	ValueInt
	ValueDouble
	ValueIdentifier
	ValueList
	ValueMap
)

// Value is one node of a constant value tree. Scalars carry their
// literal; ValueList carries ordered elements; ValueMap carries ordered
// key/value entries (map and struct literals both arrive as ValueMap,
// struct literals keyed by field name).
type Value struct {
	Kind ValueKind

	Str  string
	Int  int64
	Dbl  float64
	List []*Value
	Map  []MapEntry
}

// MapEntry is one ordered key/value pair of a ValueMap.
type MapEntry struct {
	Key   *Value
	Value *Value
}
