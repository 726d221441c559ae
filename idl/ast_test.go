package idl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func int64p(v int64) *int64 { return &v }

func TestEnumResolvedValues(t *testing.T) {
	e := &Enum{
		Name: "Color",
		Members: []EnumMember{
			{Name: "RED"},
			{Name: "GREEN"},
			{Name: "BLUE", Value: int64p(5)},
			{Name: "CYAN"},
		},
	}

	resolved := e.ResolvedValues()
	require.Len(t, resolved, 4)
	assert.Equal(t, int64(0), resolved[0].Value)
	assert.Equal(t, int64(1), resolved[1].Value)
	assert.Equal(t, int64(5), resolved[2].Value)
	assert.Equal(t, int64(6), resolved[3].Value)
}

func TestEnumResolvedValuesKeepsOrder(t *testing.T) {
	// Explicit values need not be monotonic and are never re-ordered.
	e := &Enum{
		Name: "Priority",
		Members: []EnumMember{
			{Name: "HIGH", Value: int64p(10)},
			{Name: "LOW", Value: int64p(2)},
			{Name: "LOWER"},
		},
	}

	resolved := e.ResolvedValues()
	assert.Equal(t, "HIGH", resolved[0].Name)
	assert.Equal(t, int64(10), resolved[0].Value)
	assert.Equal(t, int64(2), resolved[1].Value)
	assert.Equal(t, int64(3), resolved[2].Value)
}

func TestSortedFields(t *testing.T) {
	s := &Struct{
		Name: "Work",
		Fields: []*Field{
			{Name: "op", Key: 3, Type: &Type{Kind: I32}},
			{Name: "num1", Key: 1, Type: &Type{Kind: I32}},
			{Name: "comment", Key: 4, Type: &Type{Kind: String}},
		},
	}

	sorted := s.SortedFields()
	assert.Equal(t, []int32{1, 3, 4}, []int32{sorted[0].Key, sorted[1].Key, sorted[2].Key})
	// declaration order is untouched
	assert.Equal(t, int32(3), s.Fields[0].Key)
}

func TestTrueType(t *testing.T) {
	inner := &Type{Kind: I32}
	alias := &Type{Kind: TypedefRef, Name: "MyInteger", Target: inner}
	aliasOfAlias := &Type{Kind: TypedefRef, Name: "MyOtherInteger", Target: alias}

	assert.Equal(t, inner, alias.TrueType())
	assert.Equal(t, inner, aliasOfAlias.TrueType())
	assert.Equal(t, inner, inner.TrueType())
}

func TestResultStruct(t *testing.T) {
	ouch := &Field{Name: "ouch", Key: 1, Type: &Type{Kind: StructRef, Name: "InvalidOperation", Exception: true}}
	fn := &Function{
		Name:       "calculate",
		ReturnType: &Type{Kind: I32},
		Throws:     []*Field{ouch},
	}

	result := fn.ResultStruct()
	require.Len(t, result.Fields, 2)
	assert.Equal(t, "calculate_result", result.Name)
	assert.Equal(t, "success", result.Fields[0].Name)
	assert.Equal(t, int32(0), result.Fields[0].Key)
	assert.Equal(t, "ouch", result.Fields[1].Name)
}

func TestResultStructVoid(t *testing.T) {
	fn := &Function{Name: "zip"}
	result := fn.ResultStruct()
	assert.Empty(t, result.Fields)
	assert.True(t, fn.IsVoid())
}

func TestAllFunctions(t *testing.T) {
	base := &Service{
		Name:      "SharedService",
		Functions: []*Function{{Name: "getStruct"}},
	}
	calc := &Service{
		Name:      "Calculator",
		Extends:   "SharedService",
		Parent:    base,
		Functions: []*Function{{Name: "ping"}, {Name: "add"}},
	}

	all := calc.AllFunctions()
	require.Len(t, all, 3)
	assert.Equal(t, "ping", all[0].Name)
	assert.Equal(t, "getStruct", all[2].Name)
}
