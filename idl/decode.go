package idl

import (
	"encoding/json"
	"io"
	"os"

	"github.com/twinekit/twinegen/errors"
)

// The JSON IR wire form. Kept separate from the exported AST so the
// exported types stay free of serialization concerns.

type jsonProgram struct {
	Name       string        `json:"name"`
	Namespace  string        `json:"namespace,omitempty"`
	Includes   []string      `json:"includes,omitempty"`
	Typedefs   []jsonTypedef `json:"typedefs,omitempty"`
	Enums      []jsonEnum    `json:"enums,omitempty"`
	Constants  []jsonConst   `json:"constants,omitempty"`
	Structs    []jsonStruct  `json:"structs,omitempty"`
	Exceptions []jsonStruct  `json:"exceptions,omitempty"`
	Services   []jsonService `json:"services,omitempty"`
}

type jsonType struct {
	Kind      string    `json:"kind"`
	Name      string    `json:"name,omitempty"`
	Binary    bool      `json:"binary,omitempty"`
	Exception bool      `json:"exception,omitempty"`
	Target    *jsonType `json:"target,omitempty"`
	Elem      *jsonType `json:"elem,omitempty"`
	Key       *jsonType `json:"key,omitempty"`
	Value     *jsonType `json:"value,omitempty"`
}

type jsonValue struct {
	Kind       string          `json:"kind"`
	String     string          `json:"string,omitempty"`
	Int        int64           `json:"int,omitempty"`
	Double     float64         `json:"double,omitempty"`
	Identifier string          `json:"identifier,omitempty"`
	List       []jsonValue     `json:"list,omitempty"`
	Map        []jsonValuePair `json:"map,omitempty"`
}

type jsonValuePair struct {
	Key   jsonValue `json:"key"`
	Value jsonValue `json:"value"`
}

type jsonField struct {
	Name     string     `json:"name"`
	Key      int32      `json:"key"`
	Type     jsonType   `json:"type"`
	Required string     `json:"required,omitempty"`
	Default  *jsonValue `json:"default,omitempty"`
	Doc      string     `json:"doc,omitempty"`
}

type jsonTypedef struct {
	Alias string   `json:"alias"`
	Type  jsonType `json:"type"`
	Doc   string   `json:"doc,omitempty"`
}

type jsonEnum struct {
	Name    string           `json:"name"`
	Members []jsonEnumMember `json:"members"`
	Doc     string           `json:"doc,omitempty"`
}

type jsonEnumMember struct {
	Name  string `json:"name"`
	Value *int64 `json:"value,omitempty"`
	Doc   string `json:"doc,omitempty"`
}

type jsonConst struct {
	Name  string    `json:"name"`
	Type  jsonType  `json:"type"`
	Value jsonValue `json:"value"`
	Doc   string    `json:"doc,omitempty"`
}

type jsonStruct struct {
	Name   string      `json:"name"`
	Fields []jsonField `json:"fields,omitempty"`
	Doc    string      `json:"doc,omitempty"`
}

type jsonService struct {
	Name      string         `json:"name"`
	Extends   string         `json:"extends,omitempty"`
	Functions []jsonFunction `json:"functions,omitempty"`
	Doc       string         `json:"doc,omitempty"`
}

type jsonFunction struct {
	Name      string      `json:"name"`
	Returns   *jsonType   `json:"returns,omitempty"`
	Arguments []jsonField `json:"arguments,omitempty"`
	Throws    []jsonField `json:"throws,omitempty"`
	Oneway    bool        `json:"oneway,omitempty"`
	Doc       string      `json:"doc,omitempty"`
}

// Decode reads a program's JSON IR and builds the AST. The IR is
// produced by an already-validated front end; Decode checks shape, not
// semantics.
func Decode(r io.Reader) (*Program, error) {
	var jp jsonProgram
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&jp); err != nil {
		return nil, errors.Wrap(err, "decoding program IR")
	}
	return jp.build()
}

// DecodeFile reads and decodes the JSON IR at path.
func DecodeFile(path string) (*Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening IR file %s", path)
	}
	defer f.Close()
	return Decode(f)
}

func (jp *jsonProgram) build() (*Program, error) {
	p := &Program{
		Name:      jp.Name,
		Namespace: jp.Namespace,
		Includes:  jp.Includes,
	}

	for _, jt := range jp.Typedefs {
		t, err := jt.Type.build()
		if err != nil {
			return nil, errors.Wrapf(err, "typedef %s", jt.Alias)
		}
		p.Typedefs = append(p.Typedefs, &Typedef{Alias: jt.Alias, Type: t, Doc: jt.Doc})
	}

	for _, je := range jp.Enums {
		e := &Enum{Name: je.Name, Doc: je.Doc}
		for _, jm := range je.Members {
			e.Members = append(e.Members, EnumMember{Name: jm.Name, Value: jm.Value, Doc: jm.Doc})
		}
		p.Enums = append(p.Enums, e)
	}

	for _, jc := range jp.Constants {
		t, err := jc.Type.build()
		if err != nil {
			return nil, errors.Wrapf(err, "constant %s", jc.Name)
		}
		v, err := jc.Value.build()
		if err != nil {
			return nil, errors.Wrapf(err, "constant %s", jc.Name)
		}
		p.Consts = append(p.Consts, &Const{Name: jc.Name, Type: t, Value: v, Doc: jc.Doc})
	}

	for _, js := range jp.Structs {
		s, err := js.build(false)
		if err != nil {
			return nil, err
		}
		p.Structs = append(p.Structs, s)
	}

	for _, js := range jp.Exceptions {
		s, err := js.build(true)
		if err != nil {
			return nil, err
		}
		p.Exceptions = append(p.Exceptions, s)
	}

	byName := make(map[string]*Service, len(jp.Services))
	for _, jsvc := range jp.Services {
		svc := &Service{Name: jsvc.Name, Extends: jsvc.Extends, Doc: jsvc.Doc}
		for _, jf := range jsvc.Functions {
			fn, err := jf.build()
			if err != nil {
				return nil, errors.Wrapf(err, "service %s", jsvc.Name)
			}
			svc.Functions = append(svc.Functions, fn)
		}
		p.Services = append(p.Services, svc)
		byName[svc.Name] = svc
	}

	// Parent pointers resolve only within this program; a qualified
	// Extends keeps its name and embeds by reference in generated code.
	for _, svc := range p.Services {
		if svc.Extends != "" {
			svc.Parent = byName[svc.Extends]
		}
	}

	return p, nil
}

func (js *jsonStruct) build(isException bool) (*Struct, error) {
	s := &Struct{Name: js.Name, IsException: isException, Doc: js.Doc}
	for _, jf := range js.Fields {
		f, err := jf.build()
		if err != nil {
			return nil, errors.Wrapf(err, "struct %s", js.Name)
		}
		s.Fields = append(s.Fields, f)
	}
	return s, nil
}

func (jf *jsonField) build() (*Field, error) {
	t, err := jf.Type.build()
	if err != nil {
		return nil, errors.Wrapf(err, "field %s", jf.Name)
	}
	f := &Field{Name: jf.Name, Key: jf.Key, Type: t, Doc: jf.Doc}
	switch jf.Required {
	case "required":
		f.Requiredness = Required
	case "optional":
		f.Requiredness = Optional
	case "", "default":
		f.Requiredness = Default
	default:
		return nil, errors.Newf("field %s: unknown requiredness %q", jf.Name, jf.Required)
	}
	if jf.Default != nil {
		v, err := jf.Default.build()
		if err != nil {
			return nil, errors.Wrapf(err, "field %s default", jf.Name)
		}
		f.DefaultValue = v
	}
	return f, nil
}

func (jf *jsonFunction) build() (*Function, error) {
	fn := &Function{Name: jf.Name, Oneway: jf.Oneway, Doc: jf.Doc}
	if jf.Returns != nil {
		t, err := jf.Returns.build()
		if err != nil {
			return nil, errors.Wrapf(err, "function %s return", jf.Name)
		}
		fn.ReturnType = t
	}
	for _, ja := range jf.Arguments {
		a, err := ja.build()
		if err != nil {
			return nil, errors.Wrapf(err, "function %s", jf.Name)
		}
		fn.Arguments = append(fn.Arguments, a)
	}
	for _, jx := range jf.Throws {
		x, err := jx.build()
		if err != nil {
			return nil, errors.Wrapf(err, "function %s throws", jf.Name)
		}
		fn.Throws = append(fn.Throws, x)
	}
	return fn, nil
}

func (jt *jsonType) build() (*Type, error) {
	t := &Type{Name: jt.Name, Binary: jt.Binary, Exception: jt.Exception}
	switch jt.Kind {
	case "void":
		t.Kind = Void
	case "bool":
		t.Kind = Bool
	case "byte":
		t.Kind = Byte
	case "i16":
		t.Kind = I16
	case "i32":
		t.Kind = I32
	case "i64":
		t.Kind = I64
	case "double":
		t.Kind = Double
	case "string":
		t.Kind = String
	case "enum":
		t.Kind = EnumRef
	case "struct":
		t.Kind = StructRef
	case "exception":
		t.Kind = StructRef
		t.Exception = true
	case "typedef":
		t.Kind = TypedefRef
		if jt.Target == nil {
			return nil, errors.Newf("typedef reference %s has no target", jt.Name)
		}
		target, err := jt.Target.build()
		if err != nil {
			return nil, err
		}
		t.Target = target
	case "list", "set":
		if jt.Kind == "list" {
			t.Kind = List
		} else {
			t.Kind = Set
		}
		if jt.Elem == nil {
			return nil, errors.Newf("%s type has no element type", jt.Kind)
		}
		elem, err := jt.Elem.build()
		if err != nil {
			return nil, err
		}
		t.Elem = elem
	case "map":
		t.Kind = Map
		if jt.Key == nil || jt.Value == nil {
			return nil, errors.New("map type missing key or value type")
		}
		key, err := jt.Key.build()
		if err != nil {
			return nil, err
		}
		value, err := jt.Value.build()
		if err != nil {
			return nil, err
		}
		t.Key = key
		t.Value = value
	default:
		return nil, errors.Wrapf(errors.ErrUnknownType, "type kind %q", jt.Kind)
	}
	return t, nil
}

func (jv *jsonValue) build() (*Value, error) {
	v := &Value{}
	switch jv.Kind {
	case "string":
		v.Kind = ValueString
		v.Str = jv.String
	case "int":
		v.Kind = ValueInt
		v.Int = jv.Int
	case "double":
		v.Kind = ValueDouble
		v.Dbl = jv.Double
	case "identifier":
		v.Kind = ValueIdentifier
		v.Str = jv.Identifier
	case "list":
		v.Kind = ValueList
		for i := range jv.List {
			el, err := jv.List[i].build()
			if err != nil {
				return nil, err
			}
			v.List = append(v.List, el)
		}
	case "map":
		v.Kind = ValueMap
		for i := range jv.Map {
			key, err := jv.Map[i].Key.build()
			if err != nil {
				return nil, err
			}
			val, err := jv.Map[i].Value.build()
			if err != nil {
				return nil, err
			}
			v.Map = append(v.Map, MapEntry{Key: key, Value: val})
		}
	default:
		return nil, errors.Newf("unknown value kind %q", jv.Kind)
	}
	return v, nil
}
