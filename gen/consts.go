package gen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/twinekit/twinegen/errors"
	"github.com/twinekit/twinegen/idl"
)

// generateConstants emits the constants unit. Base-type and enum
// constants become Go consts; everything else becomes a var assigned
// inside a single init block, because container and record literals
// are not Go constant expressions.
func (g *Generator) generateConstants() (string, error) {
	w := &writer{}
	g.fileHeader(w)

	var initBody []string
	for _, c := range g.program.Consts {
		name := Publicize(c.Name)
		resolved := c.Type.TrueType()
		if resolved.IsBase() || resolved.Kind == idl.EnumRef {
			expr, pre, err := g.renderConstValue(c.Type, c.Value, 0)
			if err != nil {
				return "", errors.Wrapf(err, "constant %s", c.Name)
			}
			if len(pre) != 0 {
				return "", errors.Wrapf(errors.ErrNoLiteralForType, "constant %s needs statement context", c.Name)
			}
			g.docComment(w, c.Doc)
			w.p("const %s = %s", name, expr)
		} else {
			typ, err := goType(c.Type)
			if err != nil {
				return "", errors.Wrapf(err, "constant %s", c.Name)
			}
			expr, pre, err := g.renderConstValue(c.Type, c.Value, 1)
			if err != nil {
				return "", errors.Wrapf(err, "constant %s", c.Name)
			}
			g.docComment(w, c.Doc)
			w.p("var %s %s", name, typ)
			initBody = append(initBody, pre...)
			initBody = append(initBody, fmt.Sprintf("%s = %s", name, expr))
		}
	}

	w.nl()
	w.p("func init() {")
	w.in()
	for _, line := range initBody {
		for _, part := range strings.Split(line, "\n") {
			w.p("%s", part)
		}
	}
	w.out()
	w.p("}")
	return w.String(), nil
}

// renderConstValue renders a typed value tree into Go literal syntax.
// It returns the literal expression plus any statements that must run
// before the expression is evaluated: a record field whose value is
// itself a record or container is first bound to a fresh temporary,
// and the literal references the temporary by name.
func (g *Generator) renderConstValue(t *idl.Type, v *idl.Value, depth int) (string, []string, error) {
	resolved := t.TrueType()

	switch resolved.Kind {
	case idl.String:
		if v.Kind == idl.ValueIdentifier {
			return g.identifierExpr(v.Str), nil, nil
		}
		if resolved.Binary {
			return "[]byte(" + strconv.Quote(v.Str) + ")", nil, nil
		}
		return strconv.Quote(v.Str), nil, nil

	case idl.Bool:
		if v.Kind == idl.ValueIdentifier {
			return g.identifierExpr(v.Str), nil, nil
		}
		if v.Int > 0 {
			return "true", nil, nil
		}
		return "false", nil, nil

	case idl.Byte, idl.I16, idl.I32, idl.I64, idl.EnumRef:
		if v.Kind == idl.ValueIdentifier {
			return g.identifierExpr(v.Str), nil, nil
		}
		return strconv.FormatInt(v.Int, 10), nil, nil

	case idl.Double:
		if v.Kind == idl.ValueIdentifier {
			return g.identifierExpr(v.Str), nil, nil
		}
		if v.Kind == idl.ValueInt {
			return strconv.FormatInt(v.Int, 10), nil, nil
		}
		return strconv.FormatFloat(v.Dbl, 'g', -1, 64), nil, nil

	case idl.StructRef:
		return g.renderStructValue(resolved, v, depth)

	case idl.Map:
		keyType, err := goKeyType(resolved.Key)
		if err != nil {
			return "", nil, err
		}
		valueType, err := goType(resolved.Value)
		if err != nil {
			return "", nil, err
		}
		var sb strings.Builder
		var pre []string
		sb.WriteString("map[" + keyType + "]" + valueType + "{\n")
		for _, entry := range v.Map {
			k, kpre, err := g.renderConstValue(resolved.Key, entry.Key, depth+1)
			if err != nil {
				return "", nil, err
			}
			val, vpre, err := g.renderConstValue(resolved.Value, entry.Value, depth+1)
			if err != nil {
				return "", nil, err
			}
			pre = append(pre, kpre...)
			pre = append(pre, vpre...)
			sb.WriteString(indentOf(depth+1) + k + ": " + val + ",\n")
		}
		sb.WriteString(indentOf(depth) + "}")
		return sb.String(), pre, nil

	case idl.List:
		elemType, err := goType(resolved.Elem)
		if err != nil {
			return "", nil, err
		}
		var sb strings.Builder
		var pre []string
		sb.WriteString("[]" + elemType + "{\n")
		for _, el := range v.List {
			expr, epre, err := g.renderConstValue(resolved.Elem, el, depth+1)
			if err != nil {
				return "", nil, err
			}
			pre = append(pre, epre...)
			sb.WriteString(indentOf(depth+1) + expr + ",\n")
		}
		sb.WriteString(indentOf(depth) + "}")
		return sb.String(), pre, nil

	case idl.Set:
		elemType, err := goKeyType(resolved.Elem)
		if err != nil {
			return "", nil, err
		}
		var sb strings.Builder
		var pre []string
		sb.WriteString("map[" + elemType + "]bool{\n")
		for _, el := range v.List {
			expr, epre, err := g.renderConstValue(resolved.Elem, el, depth+1)
			if err != nil {
				return "", nil, err
			}
			pre = append(pre, epre...)
			sb.WriteString(indentOf(depth+1) + expr + ": true,\n")
		}
		sb.WriteString(indentOf(depth) + "}")
		return sb.String(), pre, nil
	}

	return "", nil, errors.Wrapf(errors.ErrNoLiteralForType, "type %s", resolved.Kind)
}

// renderStructValue renders a record literal. Scalar and enum fields
// inline; a record or container field is bound to a temporary first
// and the literal names the temporary.
func (g *Generator) renderStructValue(t *idl.Type, v *idl.Value, depth int) (string, []string, error) {
	decl := g.findStruct(t.Name)
	if decl == nil {
		return "", nil, errors.Newf("no declaration for record type %s", t.Name)
	}

	var sb strings.Builder
	var pre []string
	sb.WriteString("&" + Publicize(t.Name) + "{\n")
	for _, entry := range v.Map {
		if entry.Key.Kind != idl.ValueString {
			return "", nil, errors.Newf("record %s literal keyed by non-name", t.Name)
		}
		fieldName := entry.Key.Str
		var field *idl.Field
		for _, f := range decl.Fields {
			if f.Name == fieldName {
				field = f
				break
			}
		}
		if field == nil {
			return "", nil, errors.Newf("record %s has no field %s", t.Name, fieldName)
		}

		resolved := field.Type.TrueType()
		goName := Publicize(SafeName(fieldName))
		if resolved.IsBase() || resolved.Kind == idl.EnumRef {
			expr, epre, err := g.renderConstValue(field.Type, entry.Value, depth+1)
			if err != nil {
				return "", nil, err
			}
			if len(epre) != 0 {
				return "", nil, errors.Newf("scalar field %s produced statements", fieldName)
			}
			sb.WriteString(indentOf(depth+1) + goName + ": " + expr + ",\n")
			continue
		}

		expr, epre, err := g.renderConstValue(field.Type, entry.Value, depth)
		if err != nil {
			return "", nil, err
		}
		temp := g.names.Temp("v")
		pre = append(pre, epre...)
		pre = append(pre, temp+" := "+expr)
		sb.WriteString(indentOf(depth+1) + goName + ": " + temp + ",\n")
	}
	sb.WriteString(indentOf(depth) + "}")
	return sb.String(), pre, nil
}

// identifierExpr maps an IDL identifier reference to its generated Go
// name. "Enum.MEMBER" becomes the flattened enum constant; a
// module-qualified name keeps its module prefix.
func (g *Generator) identifierExpr(ident string) string {
	dot := strings.LastIndexByte(ident, '.')
	if dot < 0 {
		return Publicize(ident)
	}
	head := ident[:dot]
	for _, e := range g.program.Enums {
		if e.Name == head {
			return Publicize(head) + "_" + ident[dot+1:]
		}
	}
	return Publicize(ident)
}

func (g *Generator) findStruct(name string) *idl.Struct {
	for _, s := range g.program.Structs {
		if s.Name == name {
			return s
		}
	}
	for _, x := range g.program.Exceptions {
		if x.Name == name {
			return x
		}
	}
	return nil
}

func indentOf(depth int) string {
	return strings.Repeat("\t", depth)
}
