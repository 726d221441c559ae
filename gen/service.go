package gen

import (
	"strings"

	"github.com/twinekit/twinegen/errors"
	"github.com/twinekit/twinegen/idl"
)

// generateService emits one source unit for a service: the handler
// interface, the RPC client, the argument/result envelope structs, and
// the server-side processor.
func (g *Generator) generateService(svc *idl.Service) (string, error) {
	w := &writer{}
	g.fileHeader(w)

	if err := g.serviceInterface(w, svc); err != nil {
		return "", err
	}
	if err := g.serviceClient(w, svc); err != nil {
		return "", err
	}
	if err := g.serviceProcessor(w, svc); err != nil {
		return "", err
	}
	if err := g.serviceHelpers(w, svc); err != nil {
		return "", err
	}
	return w.String(), nil
}

// extendsRef resolves the Go name of the extended service. A qualified
// parent keeps its include prefix on the package side of the name.
func extendsRef(extends string) string {
	if i := strings.LastIndex(extends, "."); i >= 0 {
		return extends[:i+1] + Publicize(extends[i+1:])
	}
	return Publicize(extends)
}

// extendsNew names a constructor of the extended service. The New goes
// after the package qualifier, not before it.
func extendsNew(extends, suffix string) string {
	if i := strings.LastIndex(extends, "."); i >= 0 {
		return extends[:i+1] + "New" + Publicize(extends[i+1:]) + suffix
	}
	return "New" + Publicize(extends) + suffix
}

// functionSignature renders the interface-side signature. Non-void
// functions return the value first, declared throws follow as typed
// exception pointers, and err is always last.
func (g *Generator) functionSignature(fn *idl.Function) (string, error) {
	var b strings.Builder
	b.WriteString(Publicize(fn.Name))
	b.WriteString("(")
	for i, arg := range fn.Arguments {
		if i > 0 {
			b.WriteString(", ")
		}
		typ, err := goType(arg.Type)
		if err != nil {
			return "", errors.Wrapf(err, "argument %s", arg.Name)
		}
		b.WriteString(Privatize(SafeName(arg.Name)))
		b.WriteString(" ")
		b.WriteString(typ)
	}
	b.WriteString(") (")
	if !fn.IsVoid() {
		ret, err := goType(fn.ReturnType)
		if err != nil {
			return "", errors.Wrapf(err, "return of %s", fn.Name)
		}
		b.WriteString("r ")
		b.WriteString(ret)
		b.WriteString(", ")
	}
	for _, exc := range fn.Throws {
		typ, err := goType(exc.Type)
		if err != nil {
			return "", errors.Wrapf(err, "throws %s", exc.Name)
		}
		b.WriteString(Privatize(SafeName(exc.Name)))
		b.WriteString(" ")
		b.WriteString(typ)
		b.WriteString(", ")
	}
	b.WriteString("err error)")
	return b.String(), nil
}

func (g *Generator) serviceInterface(w *writer, svc *idl.Service) error {
	name := Publicize(svc.Name)
	g.docComment(w, svc.Doc)
	w.p("type %s interface {", name)
	w.in()
	if svc.Extends != "" {
		w.p("%s", extendsRef(svc.Extends))
		w.nl()
	}
	for _, fn := range svc.Functions {
		g.fieldsDocComment(w, fn.Doc, "Parameters", fn.Arguments)
		sig, err := g.functionSignature(fn)
		if err != nil {
			return err
		}
		w.p("%s", sig)
	}
	w.out()
	w.p("}")
	w.nl()
	return nil
}

// serviceClient emits the client struct and its two constructors. A
// derived service client embeds the parent client and inherits its
// transport state.
func (g *Generator) serviceClient(w *writer, svc *idl.Service) error {
	name := Publicize(svc.Name)

	w.p("type %sClient struct {", name)
	w.in()
	if svc.Extends != "" {
		w.p("*%sClient", extendsRef(svc.Extends))
	} else {
		w.p("Transport twine.Transport")
		w.p("ProtocolFactory twine.ProtocolFactory")
		w.p("InputProtocol twine.Protocol")
		w.p("OutputProtocol twine.Protocol")
		w.p("SeqId int32")
	}
	w.out()
	w.p("}")
	w.nl()

	w.p("func New%sClientFactory(t twine.Transport, f twine.ProtocolFactory) *%sClient {", name, name)
	w.in()
	if svc.Extends != "" {
		w.p("return &%sClient{%sClient: %s(t, f)}",
			name, clientFieldName(svc.Extends), extendsNew(svc.Extends, "ClientFactory"))
	} else {
		w.p("return &%sClient{", name)
		w.p("\tTransport: t,")
		w.p("\tProtocolFactory: f,")
		w.p("\tInputProtocol: nil,")
		w.p("\tOutputProtocol: nil,")
		w.p("\tSeqId: 0,")
		w.p("}")
	}
	w.out()
	w.p("}")
	w.nl()

	w.p("func New%sClientProtocol(t twine.Transport, iprot twine.Protocol, oprot twine.Protocol) *%sClient {", name, name)
	w.in()
	if svc.Extends != "" {
		w.p("return &%sClient{%sClient: %s(t, iprot, oprot)}",
			name, clientFieldName(svc.Extends), extendsNew(svc.Extends, "ClientProtocol"))
	} else {
		w.p("return &%sClient{", name)
		w.p("\tTransport: t,")
		w.p("\tProtocolFactory: nil,")
		w.p("\tInputProtocol: iprot,")
		w.p("\tOutputProtocol: oprot,")
		w.p("\tSeqId: 0,")
		w.p("}")
	}
	w.out()
	w.p("}")
	w.nl()

	for _, fn := range svc.Functions {
		if err := g.clientMethod(w, svc, fn); err != nil {
			return errors.Wrapf(err, "function %s", fn.Name)
		}
	}
	return nil
}

// clientFieldName is the embedded-field name of a parent client inside
// a derived client literal, without the package qualifier.
func clientFieldName(extends string) string {
	if i := strings.LastIndex(extends, "."); i >= 0 {
		return Publicize(extends[i+1:])
	}
	return Publicize(extends)
}

// clientMethod emits the public call wrapper, the request sender, and
// the response receiver. One-way functions send and return without a
// receive side.
func (g *Generator) clientMethod(w *writer, svc *idl.Service, fn *idl.Function) error {
	name := Publicize(svc.Name)
	pubName := Publicize(fn.Name)

	g.fieldsDocComment(w, fn.Doc, "Parameters", fn.Arguments)
	sig, err := g.functionSignature(fn)
	if err != nil {
		return err
	}
	w.p("func (p *%sClient) %s {", name, sig)
	w.in()
	w.p("if err = p.send%s(%s); err != nil {", pubName, argNameList(fn.Arguments))
	w.p("\treturn")
	w.p("}")
	if fn.Oneway {
		w.p("return")
	} else {
		w.p("return p.recv%s()", pubName)
	}
	w.out()
	w.p("}")
	w.nl()

	if err := g.clientSend(w, svc, fn); err != nil {
		return err
	}
	if !fn.Oneway {
		if err := g.clientRecv(w, svc, fn); err != nil {
			return err
		}
	}
	return nil
}

func argNameList(args []*idl.Field) string {
	names := make([]string, len(args))
	for i, arg := range args {
		names[i] = Privatize(SafeName(arg.Name))
	}
	return strings.Join(names, ", ")
}

func (g *Generator) clientSend(w *writer, svc *idl.Service, fn *idl.Function) error {
	name := Publicize(svc.Name)
	pubName := Publicize(fn.Name)
	argsName := Publicize(fn.ArgsStruct().Name)

	kind := "twine.Call"
	if fn.Oneway {
		kind = "twine.Oneway"
	}

	decls, err := argDeclList(fn.Arguments)
	if err != nil {
		return err
	}
	w.p("func (p *%sClient) send%s(%s) (err error) {", name, pubName, decls)
	w.in()
	w.p("oprot := p.OutputProtocol")
	w.p("if oprot == nil {")
	w.p("\toprot = p.ProtocolFactory.GetProtocol(p.Transport)")
	w.p("\tp.OutputProtocol = oprot")
	w.p("}")
	w.p("p.SeqId++")
	w.p("if err = oprot.WriteMessageBegin(\"%s\", %s, p.SeqId); err != nil {", fn.Name, kind)
	w.p("\treturn")
	w.p("}")
	args := g.names.Temp("args")
	w.p("%s := New%s()", args, argsName)
	for _, arg := range fn.Arguments {
		w.p("%s.%s = %s", args, Publicize(SafeName(arg.Name)), Privatize(SafeName(arg.Name)))
	}
	w.p("if err = %s.Write(oprot); err != nil {", args)
	w.p("\treturn")
	w.p("}")
	w.p("if err = oprot.WriteMessageEnd(); err != nil {")
	w.p("\treturn")
	w.p("}")
	w.p("return oprot.Flush()")
	w.out()
	w.p("}")
	w.nl()
	return nil
}

func argDeclList(args []*idl.Field) (string, error) {
	decls := make([]string, len(args))
	for i, arg := range args {
		typ, err := goType(arg.Type)
		if err != nil {
			return "", errors.Wrapf(err, "argument %s", arg.Name)
		}
		decls[i] = Privatize(SafeName(arg.Name)) + " " + typ
	}
	return strings.Join(decls, ", "), nil
}

// clientRecv decodes the reply envelope: remote application exceptions
// surface as errors, sequence mismatches abort, declared throws come
// back as their typed fields, and the success value is unwrapped last.
func (g *Generator) clientRecv(w *writer, svc *idl.Service, fn *idl.Function) error {
	name := Publicize(svc.Name)
	pubName := Publicize(fn.Name)
	resultName := Publicize(fn.ResultStruct().Name)

	var throwTail strings.Builder
	for _, exc := range fn.Throws {
		throwTail.WriteString(Privatize(SafeName(exc.Name)))
		throwTail.WriteString(" ")
		typ, err := goType(exc.Type)
		if err != nil {
			return errors.Wrapf(err, "throws %s", exc.Name)
		}
		throwTail.WriteString(typ)
		throwTail.WriteString(", ")
	}

	retDecl := "(err error)"
	if !fn.IsVoid() || len(fn.Throws) > 0 {
		var b strings.Builder
		b.WriteString("(")
		if !fn.IsVoid() {
			ret, err := goType(fn.ReturnType)
			if err != nil {
				return errors.Wrapf(err, "return of %s", fn.Name)
			}
			b.WriteString("value " + ret + ", ")
		}
		b.WriteString(throwTail.String())
		b.WriteString("err error)")
		retDecl = b.String()
	}

	w.p("func (p *%sClient) recv%s() %s {", name, pubName, retDecl)
	w.in()
	w.p("iprot := p.InputProtocol")
	w.p("if iprot == nil {")
	w.p("\tiprot = p.ProtocolFactory.GetProtocol(p.Transport)")
	w.p("\tp.InputProtocol = iprot")
	w.p("}")
	w.p("_, mTypeID, seqID, err := iprot.ReadMessageBegin()")
	w.p("if err != nil {")
	w.p("\treturn")
	w.p("}")
	w.p("if mTypeID == twine.Exception {")
	errVar := g.names.Temp("error")
	w.p("\t%s := twine.NewApplicationException(twine.ExceptionUnknown, \"Unknown exception\")", errVar)
	w.p("\tif err = %s.Read(iprot); err != nil {", errVar)
	w.p("\t\treturn")
	w.p("\t}")
	w.p("\tif err = iprot.ReadMessageEnd(); err != nil {")
	w.p("\t\treturn")
	w.p("\t}")
	w.p("\terr = %s", errVar)
	w.p("\treturn")
	w.p("}")
	w.p("if p.SeqId != seqID {")
	w.p("\terr = twine.NewApplicationException(twine.ExceptionBadSequenceID, \"%s failed: out of sequence response\")", fn.Name)
	w.p("\treturn")
	w.p("}")
	result := g.names.Temp("result")
	w.p("%s := New%s()", result, resultName)
	w.p("if err = %s.Read(iprot); err != nil {", result)
	w.p("\treturn")
	w.p("}")
	w.p("if err = iprot.ReadMessageEnd(); err != nil {")
	w.p("\treturn")
	w.p("}")
	if !fn.IsVoid() {
		w.p("value = %s.Success", result)
	}
	for _, exc := range fn.Throws {
		w.p("if %s.%s != nil {", result, Publicize(SafeName(exc.Name)))
		w.p("\t%s = %s.%s", Privatize(SafeName(exc.Name)), result, Publicize(SafeName(exc.Name)))
		w.p("}")
	}
	w.p("return")
	w.out()
	w.p("}")
	w.nl()
	return nil
}

// serviceHelpers emits the argument envelope for every function and
// the result envelope for every round-trip function.
func (g *Generator) serviceHelpers(w *writer, svc *idl.Service) error {
	for _, fn := range svc.Functions {
		args := fn.ArgsStruct()
		if err := g.generateStruct(w, args, false); err != nil {
			return errors.Wrapf(err, "args of %s", fn.Name)
		}
		if fn.Oneway {
			continue
		}
		result := fn.ResultStruct()
		if err := g.generateStruct(w, result, true); err != nil {
			return errors.Wrapf(err, "result of %s", fn.Name)
		}
	}
	return nil
}
