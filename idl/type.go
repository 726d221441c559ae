// Package idl holds the immutable data model for a parsed Twine IDL
// program. The front end emits a JSON intermediate representation of an
// already-validated program; Decode turns that into the closed set of
// node types consumed by the gen package. Nothing here is mutated after
// decoding.
package idl

// Kind discriminates the Type union. The set is closed: every consumer
// switches exhaustively over it.
type Kind int

const (
	Void Kind = iota
	Bool
	Byte
	I16
	I32
	I64
	Double
	String
	EnumRef
	StructRef
	TypedefRef
	List
	Set
	Map
)

var kindNames = map[Kind]string{
	Void:       "void",
	Bool:       "bool",
	Byte:       "byte",
	I16:        "i16",
	I32:        "i32",
	I64:        "i64",
	Double:     "double",
	String:     "string",
	EnumRef:    "enum",
	StructRef:  "struct",
	TypedefRef: "typedef",
	List:       "list",
	Set:        "set",
	Map:        "map",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// Type is one node of the type union. Which fields are meaningful
// depends on Kind:
//
//	String              Binary distinguishes raw byte sequences from text
//	EnumRef, StructRef  Name refers to the declaration (possibly module-qualified)
//	TypedefRef          Name is the alias, Target the aliased type
//	List, Set           Elem
//	Map                 Key, Value
type Type struct {
	Kind   Kind
	Name   string
	Binary bool

	Target *Type
	Elem   *Type
	Key    *Type
	Value  *Type

	// Exception marks a StructRef that refers to an exception
	// declaration. Wire treatment is identical to a struct.
	Exception bool
}

// TrueType follows typedef aliases to the underlying type. Declaration
// contexts want the alias name; codec dispatch wants the resolved shape.
func (t *Type) TrueType() *Type {
	for t.Kind == TypedefRef {
		t = t.Target
	}
	return t
}

// IsBase reports whether t is one of the wire-primitive types.
func (t *Type) IsBase() bool {
	switch t.Kind {
	case Bool, Byte, I16, I32, I64, Double, String:
		return true
	}
	return false
}

// IsContainer reports whether t is a list, set, or map.
func (t *Type) IsContainer() bool {
	switch t.Kind {
	case List, Set, Map:
		return true
	}
	return false
}
