package idl

import "sort"

// Requiredness of a struct field.
type Requiredness int

const (
	Default Requiredness = iota
	Required
	Optional
)

// Field is one member of a record or one argument/throw of a function.
// Keys are unique within a record, may be negative, and need not be
// contiguous.
type Field struct {
	Name         string
	Key          int32
	Type         *Type
	Requiredness Requiredness
	DefaultValue *Value
	Doc          string
}

// Struct is a record declaration: a struct or an exception. Both get
// identical wire treatment.
type Struct struct {
	Name        string
	Fields      []*Field // declaration order
	IsException bool
	Doc         string
}

// SortedFields returns the fields sorted ascending by wire key. The
// declaration-order slice is left untouched; constructors use
// declaration order, writers use key order.
func (s *Struct) SortedFields() []*Field {
	sorted := make([]*Field, len(s.Fields))
	copy(sorted, s.Fields)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Key < sorted[j].Key
	})
	return sorted
}

// EnumMember is one named enum constant. Value is nil when the IDL left
// it implicit.
type EnumMember struct {
	Name  string
	Value *int64
	Doc   string
}

// Enum is an enum declaration.
type Enum struct {
	Name    string
	Members []EnumMember
	Doc     string
}

// ResolvedMember pairs a member name with its resolved integer value.
type ResolvedMember struct {
	Name  string
	Value int64
}

// ResolvedValues applies the implicit-value rule: a member without an
// explicit value gets previous+1, and the very first implicit value is
// 0. Explicit values need not be unique or monotonic; order is never
// changed.
func (e *Enum) ResolvedValues() []ResolvedMember {
	resolved := make([]ResolvedMember, 0, len(e.Members))
	value := int64(-1)
	for _, m := range e.Members {
		if m.Value != nil {
			value = *m.Value
		} else {
			value++
		}
		resolved = append(resolved, ResolvedMember{Name: m.Name, Value: value})
	}
	return resolved
}

// Typedef is an alias declaration.
type Typedef struct {
	Alias string
	Type  *Type
	Doc   string
}

// Const is a named constant declaration.
type Const struct {
	Name  string
	Type  *Type
	Value *Value
	Doc   string
}

// Function is one RPC of a service. ReturnType is nil for void.
type Function struct {
	Name       string
	ReturnType *Type
	Arguments  []*Field
	Throws     []*Field
	Oneway     bool
	Doc        string
}

// IsVoid reports whether the function returns nothing.
func (f *Function) IsVoid() bool {
	return f.ReturnType == nil || f.ReturnType.Kind == Void
}

// ArgsStruct synthesizes the envelope record carrying the function's
// arguments on the wire.
func (f *Function) ArgsStruct() *Struct {
	return &Struct{
		Name:   f.Name + "_args",
		Fields: f.Arguments,
	}
}

// ResultStruct synthesizes the envelope record carrying the reply: the
// success value at key 0 (absent for void) followed by the declared
// exceptions. Exactly zero or one of these fields is populated on any
// given response.
func (f *Function) ResultStruct() *Struct {
	fields := make([]*Field, 0, len(f.Throws)+1)
	if !f.IsVoid() {
		fields = append(fields, &Field{Name: "success", Key: 0, Type: f.ReturnType})
	}
	fields = append(fields, f.Throws...)
	return &Struct{
		Name:   f.Name + "_result",
		Fields: fields,
	}
}

// Service is a service declaration. Extends names the parent service
// (possibly module-qualified); Parent is the resolved pointer when the
// parent lives in the same program.
type Service struct {
	Name      string
	Extends   string
	Parent    *Service
	Functions []*Function
	Doc       string
}

// AllFunctions collects the transitive union of the service's own
// functions and every inherited one, own functions first.
func (s *Service) AllFunctions() []*Function {
	all := make([]*Function, 0, len(s.Functions))
	all = append(all, s.Functions...)
	for parent := s.Parent; parent != nil; parent = parent.Parent {
		all = append(all, parent.Functions...)
	}
	return all
}

// Program is one IDL compilation unit: the namespace identity, the
// modules it includes, and every declaration.
type Program struct {
	Name       string
	Namespace  string
	Includes   []string
	Typedefs   []*Typedef
	Enums      []*Enum
	Consts     []*Const
	Structs    []*Struct
	Exceptions []*Struct
	Services   []*Service
}
