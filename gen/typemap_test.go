package gen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twinekit/twinegen/errors"
	"github.com/twinekit/twinegen/idl"
)

func TestGoType(t *testing.T) {
	tests := []struct {
		name string
		typ  *idl.Type
		want string
	}{
		{"bool", &idl.Type{Kind: idl.Bool}, "bool"},
		{"byte", &idl.Type{Kind: idl.Byte}, "int8"},
		{"i16", &idl.Type{Kind: idl.I16}, "int16"},
		{"i64", &idl.Type{Kind: idl.I64}, "int64"},
		{"string", &idl.Type{Kind: idl.String}, "string"},
		{"binary", &idl.Type{Kind: idl.String, Binary: true}, "[]byte"},
		{"enum", &idl.Type{Kind: idl.EnumRef, Name: "color"}, "Color"},
		{"struct", &idl.Type{Kind: idl.StructRef, Name: "work"}, "*Work"},
		{
			"list of i32",
			&idl.Type{Kind: idl.List, Elem: &idl.Type{Kind: idl.I32}},
			"[]int32",
		},
		{
			"set of i32",
			&idl.Type{Kind: idl.Set, Elem: &idl.Type{Kind: idl.I32}},
			"map[int32]bool",
		},
		{
			"map of string to list of i64",
			&idl.Type{
				Kind:  idl.Map,
				Key:   &idl.Type{Kind: idl.String},
				Value: &idl.Type{Kind: idl.List, Elem: &idl.Type{Kind: idl.I64}},
			},
			"map[string][]int64",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := goType(tt.typ)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGoTypeVoid(t *testing.T) {
	_, err := goType(&idl.Type{Kind: idl.Void})
	assert.ErrorIs(t, err, errors.ErrVoidField)
}

func TestGoKeyType(t *testing.T) {
	got, err := goKeyType(&idl.Type{Kind: idl.String, Binary: true})
	require.NoError(t, err)
	assert.Equal(t, "string", got, "binary keys degrade to string")

	_, err = goKeyType(&idl.Type{Kind: idl.List, Elem: &idl.Type{Kind: idl.I32}})
	assert.ErrorIs(t, err, errors.ErrInvalidKeyType)

	alias := &idl.Type{
		Kind:   idl.TypedefRef,
		Name:   "id_set",
		Target: &idl.Type{Kind: idl.Set, Elem: &idl.Type{Kind: idl.I32}},
	}
	_, err = goKeyType(alias)
	assert.ErrorIs(t, err, errors.ErrInvalidKeyType, "aliases resolve before the key check")
}

func TestWireConst(t *testing.T) {
	tests := []struct {
		typ  *idl.Type
		want string
	}{
		{&idl.Type{Kind: idl.Bool}, "twine.TypeBool"},
		{&idl.Type{Kind: idl.String}, "twine.TypeString"},
		{&idl.Type{Kind: idl.String, Binary: true}, "twine.TypeBinary"},
		{&idl.Type{Kind: idl.EnumRef, Name: "color"}, "twine.TypeI32"},
		{&idl.Type{Kind: idl.StructRef, Name: "work"}, "twine.TypeStruct"},
		{&idl.Type{Kind: idl.Set, Elem: &idl.Type{Kind: idl.I32}}, "twine.TypeSet"},
		{
			&idl.Type{
				Kind:   idl.TypedefRef,
				Name:   "my_integer",
				Target: &idl.Type{Kind: idl.I32},
			},
			"twine.TypeI32",
		},
	}
	for _, tt := range tests {
		got, err := wireConst(tt.typ)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestCanBeNil(t *testing.T) {
	assert.True(t, canBeNil(&idl.Type{Kind: idl.StructRef, Name: "work"}))
	assert.True(t, canBeNil(&idl.Type{Kind: idl.List, Elem: &idl.Type{Kind: idl.I32}}))
	assert.True(t, canBeNil(&idl.Type{Kind: idl.String, Binary: true}))
	assert.False(t, canBeNil(&idl.Type{Kind: idl.String}))
	assert.False(t, canBeNil(&idl.Type{Kind: idl.I32}))
	assert.False(t, canBeNil(&idl.Type{Kind: idl.EnumRef, Name: "color"}))
}
