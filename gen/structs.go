package gen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/twinekit/twinegen/errors"
	"github.com/twinekit/twinegen/idl"
)

// methodSuffix names a per-field codec method from its wire key.
// Negative keys get an underscore so the name stays a valid
// identifier distinguishable from the positive key.
func methodSuffix(key int32) string {
	if key < 0 {
		return "_" + strconv.FormatInt(int64(-key), 10)
	}
	return strconv.FormatInt(int64(key), 10)
}

// generateStruct emits a record: field declarations, constructor,
// presence helpers, the Read/Write codec pair, and a stringer.
// isResult selects the first-match-wins write path RPC result
// envelopes require.
func (g *Generator) generateStruct(w *writer, s *idl.Struct, isResult bool) error {
	name := Publicize(s.Name)
	g.fieldsDocComment(w, s.Doc, "Attributes", s.Fields)

	if err := g.structDefinition(w, s, name); err != nil {
		return err
	}
	if err := g.structConstructor(w, s, name); err != nil {
		return err
	}
	if err := g.issetHelpers(w, s, name); err != nil {
		return err
	}
	if err := g.structReader(w, s, name); err != nil {
		return err
	}
	if err := g.structWriter(w, s, name, isResult); err != nil {
		return err
	}

	w.p("func (p *%s) String() string {", name)
	w.in()
	w.p("if p == nil {")
	w.p("\treturn \"<nil>\"")
	w.p("}")
	w.p("return fmt.Sprintf(\"%s(%%+v)\", *p)", name)
	w.out()
	w.p("}")
	w.nl()
	return nil
}

// structDefinition emits the type declaration. Two intentional paths:
// when the lowest key is non-negative the fields appear in key order
// with a marker comment on every gap in the key sequence; when the
// lowest key is negative the gap logic is skipped entirely and fields
// appear in declaration order.
func (g *Generator) structDefinition(w *writer, s *idl.Struct, name string) error {
	sorted := s.SortedFields()

	w.p("type %s struct {", name)
	w.in()
	if len(sorted) == 0 || sorted[0].Key >= 0 {
		nextKey := int32(0)
		for _, f := range sorted {
			for ; nextKey != f.Key; nextKey++ {
				if nextKey != 0 {
					w.p("// unused field # %d", nextKey)
				}
			}
			typ, err := goType(f.Type)
			if err != nil {
				return errors.Wrapf(err, "field %s", f.Name)
			}
			tag := fmt.Sprintf("%s,%d", f.Name, f.Key)
			if f.Requiredness == idl.Required {
				tag += ",required"
			}
			w.p("%s %s `twine:\"%s\"`", Publicize(SafeName(f.Name)), typ, tag)
			nextKey++
		}
	} else {
		for _, f := range s.Fields {
			typ, err := goType(f.Type)
			if err != nil {
				return errors.Wrapf(err, "field %s", f.Name)
			}
			w.p("%s %s", Publicize(SafeName(f.Name)), typ)
		}
	}
	w.out()
	w.p("}")
	w.nl()
	return nil
}

// structConstructor emits the zero-value constructor: declared
// defaults are applied, and enum-typed fields without a default get
// the out-of-range unset sentinel. Default values that need statement
// context bind their temporaries ahead of the return literal.
func (g *Generator) structConstructor(w *writer, s *idl.Struct, name string) error {
	type fieldInit struct {
		goName string
		expr   string
	}
	var inits []fieldInit
	var pre []string

	for _, f := range s.Fields {
		goName := Publicize(SafeName(f.Name))
		switch {
		case f.DefaultValue != nil:
			expr, fpre, err := g.renderConstValue(f.Type, f.DefaultValue, 2)
			if err != nil {
				return errors.Wrapf(err, "field %s default", f.Name)
			}
			pre = append(pre, fpre...)
			inits = append(inits, fieldInit{goName, expr})
		case f.Type.TrueType().Kind == idl.EnumRef:
			inits = append(inits, fieldInit{goName, "math.MinInt32 - 1"})
		}
	}

	w.p("func New%s() *%s {", name, name)
	w.in()
	for _, line := range pre {
		for _, part := range strings.Split(line, "\n") {
			w.p("%s", part)
		}
	}
	if len(inits) == 0 {
		w.p("return &%s{}", name)
	} else {
		w.p("return &%s{", name)
		for _, in := range inits {
			if in.expr == "math.MinInt32 - 1" {
				w.p("\t%s: %s, // unset sentinel", in.goName, in.expr)
			} else {
				w.p("\t%s: %s,", in.goName, in.expr)
			}
		}
		w.p("}")
	}
	w.out()
	w.p("}")
	w.nl()
	return nil
}

// issetHelpers emits a presence query for every optional field and
// for every enum-typed field regardless of requiredness: enums cannot
// natively represent "absent" and compare against the sentinel.
func (g *Generator) issetHelpers(w *writer, s *idl.Struct, name string) error {
	for _, f := range s.Fields {
		resolved := f.Type.TrueType()
		if f.Requiredness != idl.Optional && resolved.Kind != idl.EnumRef {
			continue
		}
		goName := Publicize(SafeName(f.Name))
		w.p("func (p *%s) IsSet%s() bool {", name, goName)
		w.in()

		switch resolved.Kind {
		case idl.String:
			if resolved.Binary {
				// default values are ignored for binary
				w.p("return p.%s != nil", goName)
			} else {
				check := `""`
				if f.DefaultValue != nil {
					check = strconv.Quote(f.DefaultValue.Str)
				}
				w.p("return p.%s != %s", goName, check)
			}
		case idl.Bool:
			check := "false"
			if f.DefaultValue != nil && f.DefaultValue.Int > 0 {
				check = "true"
			}
			w.p("return p.%s != %s", goName, check)
		case idl.Byte, idl.I16, idl.I32, idl.I64:
			var check int64
			if f.DefaultValue != nil {
				check = f.DefaultValue.Int
			}
			w.p("return p.%s != %d", goName, check)
		case idl.Double:
			var check float64
			if f.DefaultValue != nil {
				check = f.DefaultValue.Dbl
			}
			w.p("return p.%s != %s", goName, strconv.FormatFloat(check, 'g', -1, 64))
		case idl.EnumRef:
			w.p("return int64(p.%s) != math.MinInt32 - 1", goName)
		case idl.StructRef:
			w.p("return p.%s != nil", goName)
		case idl.List, idl.Set, idl.Map:
			hasDefault := f.DefaultValue != nil &&
				(len(f.DefaultValue.List) > 0 || len(f.DefaultValue.Map) > 0)
			if hasDefault {
				w.p("return p.%s != nil", goName)
			} else {
				w.p("return p.%s != nil && len(p.%s) > 0", goName, goName)
			}
		default:
			return errors.Wrapf(errors.ErrUnknownType, "presence query for field %s", f.Name)
		}

		w.out()
		w.p("}")
		w.nl()
	}
	return nil
}

// structReader emits Read plus one ReadField method per field. Read
// loops over wire field headers until the stop marker, dispatching on
// the wire key; unknown keys are skipped by wire type so foreign
// fields never abort the read.
func (g *Generator) structReader(w *writer, s *idl.Struct, name string) error {
	w.p("func (p *%s) Read(iprot twine.Protocol) error {", name)
	w.in()
	w.p("if _, err := iprot.ReadStructBegin(); err != nil {")
	w.p("\treturn fmt.Errorf(\"%%T read error: %%w\", p, err)")
	w.p("}")
	w.p("for {")
	w.in()
	w.p("_, fieldTypeID, fieldID, err := iprot.ReadFieldBegin()")
	w.p("if err != nil {")
	w.p("\treturn fmt.Errorf(\"%%T field %%d read error: %%w\", p, fieldID, err)")
	w.p("}")
	w.p("if fieldTypeID == twine.TypeStop {")
	w.p("\tbreak")
	w.p("}")
	if len(s.Fields) > 0 {
		w.p("switch fieldID {")
		for _, f := range s.Fields {
			w.p("case %d:", f.Key)
			w.p("\tif err := p.ReadField%s(iprot); err != nil {", methodSuffix(f.Key))
			w.p("\t\treturn err")
			w.p("\t}")
		}
		w.p("default:")
		w.p("\tif err := iprot.Skip(fieldTypeID); err != nil {")
		w.p("\t\treturn err")
		w.p("\t}")
		w.p("}")
	} else {
		w.p("if err := iprot.Skip(fieldTypeID); err != nil {")
		w.p("\treturn err")
		w.p("}")
	}
	w.p("if err := iprot.ReadFieldEnd(); err != nil {")
	w.p("\treturn err")
	w.p("}")
	w.out()
	w.p("}")
	w.p("if err := iprot.ReadStructEnd(); err != nil {")
	w.p("\treturn fmt.Errorf(\"%%T read struct end error: %%w\", p, err)")
	w.p("}")
	w.p("return nil")
	w.out()
	w.p("}")
	w.nl()

	for _, f := range s.Fields {
		w.p("func (p *%s) ReadField%s(iprot twine.Protocol) error {", name, methodSuffix(f.Key))
		w.in()
		target := "p." + Publicize(SafeName(f.Name))
		if err := g.deserializeValue(w, f.Type, target, false, fmt.Sprintf("field %d", f.Key)); err != nil {
			return errors.Wrapf(err, "field %s", f.Name)
		}
		w.p("return nil")
		w.out()
		w.p("}")
		w.nl()
	}
	return nil
}

// deserializeValue emits type-directed decoding of one value into
// target. declare chooses := over = for the first binding of a local.
func (g *Generator) deserializeValue(w *writer, t *idl.Type, target string, declare bool, errLabel string) error {
	resolved := t.TrueType()
	switch {
	case resolved.Kind == idl.Void:
		return errors.Wrapf(errors.ErrVoidField, "cannot decode %s", target)

	case resolved.Kind == idl.StructRef:
		eq := " = "
		if declare {
			eq = " := "
		}
		w.p("%s%s%s()", target, eq, NewPrefix(resolved.Name))
		w.p("if err := %s.Read(iprot); err != nil {", target)
		w.p("\treturn fmt.Errorf(\"%%T error reading struct: %%w\", %s, err)", target)
		w.p("}")
		return nil

	case resolved.IsContainer():
		return g.deserializeContainer(w, resolved, target, declare)

	case resolved.IsBase() || resolved.Kind == idl.EnumRef:
		if declare {
			typ, err := goType(t)
			if err != nil {
				return err
			}
			w.p("var %s %s", target, typ)
		}
		read, err := readCall(resolved)
		if err != nil {
			return err
		}
		w.p("if v, err := iprot.%s; err != nil {", read)
		w.p("\treturn fmt.Errorf(\"error reading %s: %%w\", err)", errLabel)
		w.p("} else {")
		// decoded values coerce back to the declared name type
		if resolved.Kind == idl.EnumRef || t.Kind == idl.TypedefRef {
			w.p("\t%s = %s(v)", target, Publicize(t.Name))
		} else {
			w.p("\t%s = v", target)
		}
		w.p("}")
		return nil
	}
	return errors.Wrapf(errors.ErrUnknownType, "cannot decode %s", target)
}

func readCall(t *idl.Type) (string, error) {
	switch t.Kind {
	case idl.String:
		if t.Binary {
			return "ReadBinary()", nil
		}
		return "ReadString()", nil
	case idl.Bool:
		return "ReadBool()", nil
	case idl.Byte:
		return "ReadByte()", nil
	case idl.I16:
		return "ReadI16()", nil
	case idl.I32:
		return "ReadI32()", nil
	case idl.I64:
		return "ReadI64()", nil
	case idl.Double:
		return "ReadDouble()", nil
	case idl.EnumRef:
		return "ReadI32()", nil
	}
	return "", errors.Wrapf(errors.ErrUnknownType, "no read call for %s", t.Kind)
}

// deserializeContainer reads the container header (element tags plus a
// size hint), loops size times decoding elements, then reads the
// footer. Sets materialize as a presence map.
func (g *Generator) deserializeContainer(w *writer, t *idl.Type, target string, declare bool) error {
	eq := " = "
	if declare {
		eq = " := "
	}

	switch t.Kind {
	case idl.Map:
		keyType, err := goKeyType(t.Key)
		if err != nil {
			return err
		}
		valueType, err := goType(t.Value)
		if err != nil {
			return err
		}
		w.p("_, _, size, err := iprot.ReadMapBegin()")
		w.p("if err != nil {")
		w.p("\treturn fmt.Errorf(\"error reading map begin: %%w\", err)")
		w.p("}")
		w.p("%s%smake(map[%s]%s, size)", target, eq, keyType, valueType)
		w.p("for i := 0; i < size; i++ {")
		w.in()
		key := g.names.Temp("_key")
		val := g.names.Temp("_val")
		if err := g.deserializeValue(w, t.Key, key, true, key); err != nil {
			return err
		}
		if err := g.deserializeValue(w, t.Value, val, true, val); err != nil {
			return err
		}
		w.p("%s[%s] = %s", target, key, val)
		w.out()
		w.p("}")
		w.p("if err := iprot.ReadMapEnd(); err != nil {")
		w.p("\treturn fmt.Errorf(\"error reading map end: %%w\", err)")
		w.p("}")

	case idl.Set:
		elemType, err := goKeyType(t.Elem)
		if err != nil {
			return err
		}
		w.p("_, size, err := iprot.ReadSetBegin()")
		w.p("if err != nil {")
		w.p("\treturn fmt.Errorf(\"error reading set begin: %%w\", err)")
		w.p("}")
		w.p("%s%smake(map[%s]bool, size)", target, eq, elemType)
		w.p("for i := 0; i < size; i++ {")
		w.in()
		elem := g.names.Temp("_elem")
		if err := g.deserializeValue(w, t.Elem, elem, true, elem); err != nil {
			return err
		}
		w.p("%s[%s] = true", target, elem)
		w.out()
		w.p("}")
		w.p("if err := iprot.ReadSetEnd(); err != nil {")
		w.p("\treturn fmt.Errorf(\"error reading set end: %%w\", err)")
		w.p("}")

	case idl.List:
		elemType, err := goType(t.Elem)
		if err != nil {
			return err
		}
		w.p("_, size, err := iprot.ReadListBegin()")
		w.p("if err != nil {")
		w.p("\treturn fmt.Errorf(\"error reading list begin: %%w\", err)")
		w.p("}")
		w.p("%s%smake([]%s, 0, size)", target, eq, elemType)
		w.p("for i := 0; i < size; i++ {")
		w.in()
		elem := g.names.Temp("_elem")
		if err := g.deserializeValue(w, t.Elem, elem, true, elem); err != nil {
			return err
		}
		w.p("%s = append(%s, %s)", target, target, elem)
		w.out()
		w.p("}")
		w.p("if err := iprot.ReadListEnd(); err != nil {")
		w.p("\treturn fmt.Errorf(\"error reading list end: %%w\", err)")
		w.p("}")

	default:
		return errors.Wrapf(errors.ErrUnknownType, "not a container: %s", t.Kind)
	}
	return nil
}

// structWriter emits Write plus one writeField method per field. Write
// walks fields in ascending key order for deterministic wire layout.
// Result envelopes instead select exactly one populated field: cases
// test in reverse key order, and the lowest key (the success field)
// writes unconditionally as the default.
func (g *Generator) structWriter(w *writer, s *idl.Struct, name string, isResult bool) error {
	sorted := s.SortedFields()

	w.p("func (p *%s) Write(oprot twine.Protocol) error {", name)
	w.in()
	w.p("if err := oprot.WriteStructBegin(\"%s\"); err != nil {", s.Name)
	w.p("\treturn fmt.Errorf(\"%%T write struct begin error: %%w\", p, err)")
	w.p("}")

	if isResult && len(sorted) > 0 {
		w.p("switch {")
		for i := len(sorted) - 1; i >= 0; i-- {
			f := sorted[i]
			if canBeNil(f.Type) && f.Key != 0 {
				w.p("case p.%s != nil:", Publicize(SafeName(f.Name)))
			} else {
				w.p("default:")
			}
			w.p("\tif err := p.writeField%s(oprot); err != nil {", methodSuffix(f.Key))
			w.p("\t\treturn err")
			w.p("\t}")
		}
		w.p("}")
	} else {
		for _, f := range sorted {
			w.p("if err := p.writeField%s(oprot); err != nil {", methodSuffix(f.Key))
			w.p("\treturn err")
			w.p("}")
		}
	}

	w.p("if err := oprot.WriteFieldStop(); err != nil {")
	w.p("\treturn fmt.Errorf(\"%%T write field stop error: %%w\", p, err)")
	w.p("}")
	w.p("if err := oprot.WriteStructEnd(); err != nil {")
	w.p("\treturn fmt.Errorf(\"%%T write struct end error: %%w\", p, err)")
	w.p("}")
	w.p("return nil")
	w.out()
	w.p("}")
	w.nl()

	for _, f := range sorted {
		if err := g.writeFieldMethod(w, f, name); err != nil {
			return errors.Wrapf(err, "field %s", f.Name)
		}
	}
	return nil
}

// writeFieldMethod emits one per-field writer: fields with an absent
// representation are only written when present, and optional/enum
// fields are additionally guarded by their presence query.
func (g *Generator) writeFieldMethod(w *writer, f *idl.Field, name string) error {
	goName := Publicize(SafeName(f.Name))
	nilable := canBeNil(f.Type)
	guarded := f.Requiredness == idl.Optional || f.Type.TrueType().Kind == idl.EnumRef

	w.p("func (p *%s) writeField%s(oprot twine.Protocol) (err error) {", name, methodSuffix(f.Key))
	w.in()
	if nilable {
		w.p("if p.%s != nil {", goName)
		w.in()
	}
	if guarded {
		w.p("if p.IsSet%s() {", goName)
		w.in()
	}

	tag, err := wireConst(f.Type)
	if err != nil {
		return err
	}
	w.p("if err := oprot.WriteFieldBegin(\"%s\", %s, %d); err != nil {", f.Name, tag, f.Key)
	w.p("\treturn fmt.Errorf(\"%%T write field begin error %d:%s: %%w\", p, err)", f.Key, f.Name)
	w.p("}")
	if err := g.serializeValue(w, f.Type, "p."+goName, fmt.Sprintf("%s (%d)", f.Name, f.Key)); err != nil {
		return err
	}
	w.p("if err := oprot.WriteFieldEnd(); err != nil {")
	w.p("\treturn fmt.Errorf(\"%%T write field end error %d:%s: %%w\", p, err)", f.Key, f.Name)
	w.p("}")

	if guarded {
		w.out()
		w.p("}")
	}
	if nilable {
		w.out()
		w.p("}")
	}
	w.p("return err")
	w.out()
	w.p("}")
	w.nl()
	return nil
}

// serializeValue emits type-directed encoding of one value.
func (g *Generator) serializeValue(w *writer, t *idl.Type, name, errLabel string) error {
	resolved := t.TrueType()
	switch {
	case resolved.Kind == idl.Void:
		return errors.Wrapf(errors.ErrVoidField, "cannot encode %s", name)

	case resolved.Kind == idl.StructRef:
		w.p("if err := %s.Write(oprot); err != nil {", name)
		w.p("\treturn fmt.Errorf(\"%%T error writing struct: %%w\", %s, err)", name)
		w.p("}")
		return nil

	case resolved.IsContainer():
		return g.serializeContainer(w, resolved, name)

	case resolved.IsBase() || resolved.Kind == idl.EnumRef:
		write, err := writeCall(resolved, name)
		if err != nil {
			return err
		}
		w.p("if err := oprot.%s; err != nil {", write)
		w.p("\treturn fmt.Errorf(\"%s field write error: %%w\", err)", errLabel)
		w.p("}")
		return nil
	}
	return errors.Wrapf(errors.ErrUnknownType, "cannot encode %s", name)
}

func writeCall(t *idl.Type, name string) (string, error) {
	switch t.Kind {
	case idl.String:
		if t.Binary {
			return "WriteBinary(" + name + ")", nil
		}
		return "WriteString(string(" + name + "))", nil
	case idl.Bool:
		return "WriteBool(bool(" + name + "))", nil
	case idl.Byte:
		return "WriteByte(int8(" + name + "))", nil
	case idl.I16:
		return "WriteI16(int16(" + name + "))", nil
	case idl.I32:
		return "WriteI32(int32(" + name + "))", nil
	case idl.I64:
		return "WriteI64(int64(" + name + "))", nil
	case idl.Double:
		return "WriteDouble(float64(" + name + "))", nil
	case idl.EnumRef:
		return "WriteI32(int32(" + name + "))", nil
	}
	return "", errors.Wrapf(errors.ErrUnknownType, "no write call for %s", t.Kind)
}

// serializeContainer writes the header carrying element tags and size,
// the elements, and the footer.
func (g *Generator) serializeContainer(w *writer, t *idl.Type, name string) error {
	switch t.Kind {
	case idl.Map:
		keyTag, err := wireConst(t.Key)
		if err != nil {
			return err
		}
		valueTag, err := wireConst(t.Value)
		if err != nil {
			return err
		}
		w.p("if err := oprot.WriteMapBegin(%s, %s, len(%s)); err != nil {", keyTag, valueTag, name)
		w.p("\treturn fmt.Errorf(\"error writing map begin: %%w\", err)")
		w.p("}")
		w.p("for k, v := range %s {", name)
		w.in()
		if err := g.serializeValue(w, t.Key, "k", "map key"); err != nil {
			return err
		}
		if err := g.serializeValue(w, t.Value, "v", "map value"); err != nil {
			return err
		}
		w.out()
		w.p("}")
		w.p("if err := oprot.WriteMapEnd(); err != nil {")
		w.p("\treturn fmt.Errorf(\"error writing map end: %%w\", err)")
		w.p("}")

	case idl.Set:
		elemTag, err := wireConst(t.Elem)
		if err != nil {
			return err
		}
		w.p("if err := oprot.WriteSetBegin(%s, len(%s)); err != nil {", elemTag, name)
		w.p("\treturn fmt.Errorf(\"error writing set begin: %%w\", err)")
		w.p("}")
		w.p("for v := range %s {", name)
		w.in()
		if err := g.serializeValue(w, t.Elem, "v", "set element"); err != nil {
			return err
		}
		w.out()
		w.p("}")
		w.p("if err := oprot.WriteSetEnd(); err != nil {")
		w.p("\treturn fmt.Errorf(\"error writing set end: %%w\", err)")
		w.p("}")

	case idl.List:
		elemTag, err := wireConst(t.Elem)
		if err != nil {
			return err
		}
		w.p("if err := oprot.WriteListBegin(%s, len(%s)); err != nil {", elemTag, name)
		w.p("\treturn fmt.Errorf(\"error writing list begin: %%w\", err)")
		w.p("}")
		w.p("for _, v := range %s {", name)
		w.in()
		if err := g.serializeValue(w, t.Elem, "v", "list element"); err != nil {
			return err
		}
		w.out()
		w.p("}")
		w.p("if err := oprot.WriteListEnd(); err != nil {")
		w.p("\treturn fmt.Errorf(\"error writing list end: %%w\", err)")
		w.p("}")

	default:
		return errors.Wrapf(errors.ErrUnknownType, "not a container: %s", t.Kind)
	}
	return nil
}
