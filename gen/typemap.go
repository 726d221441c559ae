package gen

import (
	"github.com/twinekit/twinegen/errors"
	"github.com/twinekit/twinegen/idl"
)

// Type mapping from IDL types to Go type expressions. Records are
// always reference types in emitted code (never inlined by value) so
// they can represent "not present".

// goType maps a type to its Go declaration expression.
func goType(t *idl.Type) (string, error) {
	switch t.Kind {
	case idl.Void:
		return "", errors.Wrap(errors.ErrVoidField, "void has no value representation")
	case idl.Bool:
		return "bool", nil
	case idl.Byte:
		return "int8", nil
	case idl.I16:
		return "int16", nil
	case idl.I32:
		return "int32", nil
	case idl.I64:
		return "int64", nil
	case idl.Double:
		return "float64", nil
	case idl.String:
		if t.Binary {
			return "[]byte", nil
		}
		return "string", nil
	case idl.EnumRef, idl.TypedefRef:
		return Publicize(t.Name), nil
	case idl.StructRef:
		return "*" + Publicize(t.Name), nil
	case idl.List:
		elem, err := goType(t.Elem)
		if err != nil {
			return "", err
		}
		return "[]" + elem, nil
	case idl.Set:
		elem, err := goKeyType(t.Elem)
		if err != nil {
			return "", err
		}
		return "map[" + elem + "]bool", nil
	case idl.Map:
		key, err := goKeyType(t.Key)
		if err != nil {
			return "", err
		}
		value, err := goType(t.Value)
		if err != nil {
			return "", err
		}
		return "map[" + key + "]" + value, nil
	}
	return "", errors.Wrapf(errors.ErrUnknownType, "type kind %d", t.Kind)
}

// goKeyType maps a type used as a Go map key (set elements included).
// Container types cannot key a Go map and fail generation; binary
// strings degrade to string since []byte is not comparable.
func goKeyType(t *idl.Type) (string, error) {
	resolved := t.TrueType()
	if resolved.IsContainer() {
		return "", errors.Wrapf(errors.ErrInvalidKeyType, "%s cannot be a map key", resolved.Kind)
	}
	if resolved.Kind == idl.String && resolved.Binary {
		return "string", nil
	}
	return goType(t)
}

// wireConst returns the runtime type-tag expression written into
// field and container headers. Binary keeps its own tag so peers can
// distinguish raw bytes from text.
func wireConst(t *idl.Type) (string, error) {
	switch resolved := t.TrueType(); resolved.Kind {
	case idl.Void:
		return "", errors.Wrap(errors.ErrVoidField, "void has no wire tag")
	case idl.Bool:
		return "twine.TypeBool", nil
	case idl.Byte:
		return "twine.TypeByte", nil
	case idl.I16:
		return "twine.TypeI16", nil
	case idl.I32:
		return "twine.TypeI32", nil
	case idl.I64:
		return "twine.TypeI64", nil
	case idl.Double:
		return "twine.TypeDouble", nil
	case idl.String:
		if resolved.Binary {
			return "twine.TypeBinary", nil
		}
		return "twine.TypeString", nil
	case idl.EnumRef:
		// enums travel as 32-bit integers
		return "twine.TypeI32", nil
	case idl.StructRef:
		return "twine.TypeStruct", nil
	case idl.Map:
		return "twine.TypeMap", nil
	case idl.Set:
		return "twine.TypeSet", nil
	case idl.List:
		return "twine.TypeList", nil
	}
	return "", errors.Wrapf(errors.ErrUnknownType, "no wire tag for %s", t.Kind)
}

// canBeNil reports whether the mapped Go representation has a nil
// state: records, containers, and binary strings do; scalars and enums
// do not (enums use the out-of-range sentinel instead).
func canBeNil(t *idl.Type) bool {
	switch resolved := t.TrueType(); resolved.Kind {
	case idl.StructRef, idl.List, idl.Set, idl.Map:
		return true
	case idl.String:
		return resolved.Binary
	}
	return false
}
