package gen

import (
	"fmt"
	"strings"

	"github.com/twinekit/twinegen/errors"
	"github.com/twinekit/twinegen/idl"
)

// generateRemote emits a standalone main package that dials a server
// and invokes any function of the service from the command line,
// inherited functions included. Scalar arguments are coerced from
// their string form; structs and containers are decoded from their
// JSON form through an in-memory transport.
func (g *Generator) generateRemote(svc *idl.Service) (string, error) {
	w := &writer{}
	fns := svc.AllFunctions()

	w.p("// Code generated by twinegen. DO NOT EDIT.")
	w.nl()
	w.p("package main")
	w.nl()
	w.p("import (")
	w.p("\t\"flag\"")
	w.p("\t\"fmt\"")
	w.p("\t\"math\"")
	w.p("\t\"net\"")
	w.p("\t\"net/url\"")
	w.p("\t\"os\"")
	w.p("\t\"strconv\"")
	w.p("\t\"strings\"")
	w.nl()
	w.p("\t\"%s\"", g.opts.RuntimeImport)
	w.p("\t\"%s\"", g.opts.PackagePrefix+g.dir)
	w.p(")")
	w.nl()
	w.p("var _ = math.MinInt32")
	w.p("var _ = strconv.Atoi")
	w.p("var _ = strings.Contains")
	w.nl()

	w.p("func Usage() {")
	w.in()
	w.p("fmt.Fprintln(os.Stderr, \"Usage of \", os.Args[0], \" [-h host:port] [-u url] [-framed] [-http] function [arg1 [arg2...]]:\")")
	w.p("flag.PrintDefaults()")
	w.p("fmt.Fprintln(os.Stderr, \"\\nFunctions:\")")
	for _, fn := range fns {
		sig, err := idlSignature(fn)
		if err != nil {
			return "", errors.Wrapf(err, "function %s", fn.Name)
		}
		w.p("fmt.Fprintln(os.Stderr, %q)", "  "+sig)
	}
	w.p("fmt.Fprintln(os.Stderr)")
	w.p("os.Exit(1)")
	w.out()
	w.p("}")
	w.nl()

	w.p("func main() {")
	w.in()
	w.p("flag.Usage = Usage")
	w.p("var host string")
	w.p("var port int")
	w.p("var protocol string")
	w.p("var urlString string")
	w.p("var framed bool")
	w.p("var useHTTP bool")
	w.p("var parsedURL *url.URL")
	w.p("var trans twine.Transport")
	w.p("flag.StringVar(&host, \"h\", \"localhost\", \"Specify host\")")
	w.p("flag.IntVar(&port, \"p\", 9090, \"Specify port\")")
	w.p("flag.StringVar(&protocol, \"P\", \"binary\", \"Specify the protocol (binary, compact, simplejson, json)\")")
	w.p("flag.StringVar(&urlString, \"u\", \"\", \"Specify the url\")")
	w.p("flag.BoolVar(&framed, \"framed\", false, \"Use framed transport\")")
	w.p("flag.BoolVar(&useHTTP, \"http\", false, \"Use http\")")
	w.p("flag.Parse()")
	w.nl()
	w.p("if len(urlString) > 0 {")
	w.p("\tvar err error")
	w.p("\tparsedURL, err = url.Parse(urlString)")
	w.p("\tif err != nil {")
	w.p("\t\tfmt.Fprintln(os.Stderr, \"Error parsing URL: \", err)")
	w.p("\t\tflag.Usage()")
	w.p("\t}")
	w.p("\thost = parsedURL.Host")
	w.p("\tuseHTTP = len(parsedURL.Scheme) <= 0 || parsedURL.Scheme == \"http\"")
	w.p("} else if useHTTP {")
	w.p("\tvar err error")
	w.p("\tparsedURL, err = url.Parse(fmt.Sprint(\"http://\", host, \":\", port))")
	w.p("\tif err != nil {")
	w.p("\t\tfmt.Fprintln(os.Stderr, \"Error parsing URL: \", err)")
	w.p("\t\tflag.Usage()")
	w.p("\t}")
	w.p("}")
	w.nl()
	w.p("cmd := flag.Arg(0)")
	w.p("var err error")
	w.p("if useHTTP {")
	w.p("\ttrans, err = twine.NewHTTPClient(parsedURL.String())")
	w.p("} else {")
	w.p("\tportStr := fmt.Sprint(port)")
	w.p("\tif strings.Contains(host, \":\") {")
	w.p("\t\thost, portStr, err = net.SplitHostPort(host)")
	w.p("\t\tif err != nil {")
	w.p("\t\t\tfmt.Fprintln(os.Stderr, \"error with host:\", err)")
	w.p("\t\t\tos.Exit(1)")
	w.p("\t\t}")
	w.p("\t}")
	w.p("\ttrans, err = twine.NewSocket(net.JoinHostPort(host, portStr))")
	w.p("\tif err != nil {")
	w.p("\t\tfmt.Fprintln(os.Stderr, \"error resolving address:\", err)")
	w.p("\t\tos.Exit(1)")
	w.p("\t}")
	w.p("\tif framed {")
	w.p("\t\ttrans = twine.NewFramedTransport(trans)")
	w.p("\t}")
	w.p("}")
	w.p("if err != nil {")
	w.p("\tfmt.Fprintln(os.Stderr, \"Error creating transport\", err)")
	w.p("\tos.Exit(1)")
	w.p("}")
	w.p("defer trans.Close()")
	w.p("var protocolFactory twine.ProtocolFactory")
	w.p("switch protocol {")
	w.p("case \"compact\":")
	w.p("\tprotocolFactory = twine.NewCompactProtocolFactory()")
	w.p("case \"simplejson\":")
	w.p("\tprotocolFactory = twine.NewSimpleJSONProtocolFactory()")
	w.p("case \"json\":")
	w.p("\tprotocolFactory = twine.NewJSONProtocolFactory()")
	w.p("case \"binary\", \"\":")
	w.p("\tprotocolFactory = twine.NewBinaryProtocolFactory()")
	w.p("default:")
	w.p("\tfmt.Fprintln(os.Stderr, \"Invalid protocol specified: \", protocol)")
	w.p("\tUsage()")
	w.p("\tos.Exit(1)")
	w.p("}")
	w.p("client := %s.New%sClientFactory(trans, protocolFactory)", g.pkg, Publicize(svc.Name))
	w.p("if err := trans.Open(); err != nil {")
	w.p("\tfmt.Fprintln(os.Stderr, \"Error opening socket to \", host, \":\", port, \" \", err)")
	w.p("\tos.Exit(1)")
	w.p("}")
	w.nl()
	w.p("switch cmd {")
	for _, fn := range fns {
		if err := g.remoteCase(w, fn); err != nil {
			return "", errors.Wrapf(err, "function %s", fn.Name)
		}
	}
	w.p("case \"\":")
	w.p("\tUsage()")
	w.p("default:")
	w.p("\tfmt.Fprintln(os.Stderr, \"Invalid function \", cmd)")
	w.p("}")
	w.out()
	w.p("}")
	return w.String(), nil
}

// remoteCase emits one command dispatch arm: arity check, one coercion
// block per argument, and the call with its results printed.
func (g *Generator) remoteCase(w *writer, fn *idl.Function) error {
	w.p("case \"%s\":", fn.Name)
	w.in()
	w.p("if flag.NArg()-1 != %d {", len(fn.Arguments))
	w.p("\tfmt.Fprintln(os.Stderr, \"%s requires %d args\")", Publicize(fn.Name), len(fn.Arguments))
	w.p("\tflag.Usage()")
	w.p("}")

	values := make([]string, len(fn.Arguments))
	for i, arg := range fn.Arguments {
		value, err := g.remoteArg(w, fn, arg, i)
		if err != nil {
			return err
		}
		values[i] = value
	}
	w.p("fmt.Print(client.%s(%s))", Publicize(fn.Name), strings.Join(values, ", "))
	w.p("fmt.Print(\"\\n\")")
	w.out()
	return nil
}

// remoteArg coerces command argument i+1 into the value passed to the
// client call and returns the name of the resulting variable.
func (g *Generator) remoteArg(w *writer, fn *idl.Function, arg *idl.Field, i int) (string, error) {
	resolved := arg.Type.TrueType()
	argValue := fmt.Sprintf("argvalue%d", i)
	flagArg := fmt.Sprintf("flag.Arg(%d)", i+1)

	switch resolved.Kind {
	case idl.String:
		if resolved.Binary {
			w.p("%s := []byte(%s)", argValue, flagArg)
		} else {
			w.p("%s := %s", argValue, flagArg)
		}

	case idl.Bool:
		w.p("%s := %s == \"true\"", argValue, flagArg)

	case idl.Byte:
		tmp := g.names.Temp("tmp")
		errVar := g.names.Temp("err")
		w.p("%s, %s := strconv.Atoi(%s)", tmp, errVar, flagArg)
		w.p("if %s != nil {", errVar)
		w.p("\tUsage()")
		w.p("\treturn")
		w.p("}")
		w.p("%s := int8(%s)", argValue, tmp)

	case idl.I16:
		tmp := g.names.Temp("tmp")
		errVar := g.names.Temp("err")
		w.p("%s, %s := strconv.Atoi(%s)", tmp, errVar, flagArg)
		w.p("if %s != nil {", errVar)
		w.p("\tUsage()")
		w.p("\treturn")
		w.p("}")
		w.p("%s := int16(%s)", argValue, tmp)

	case idl.I32:
		tmp := g.names.Temp("tmp")
		errVar := g.names.Temp("err")
		w.p("%s, %s := strconv.Atoi(%s)", tmp, errVar, flagArg)
		w.p("if %s != nil {", errVar)
		w.p("\tUsage()")
		w.p("\treturn")
		w.p("}")
		w.p("%s := int32(%s)", argValue, tmp)

	case idl.I64:
		errVar := g.names.Temp("err")
		w.p("%s, %s := strconv.ParseInt(%s, 10, 64)", argValue, errVar, flagArg)
		w.p("if %s != nil {", errVar)
		w.p("\tUsage()")
		w.p("\treturn")
		w.p("}")

	case idl.Double:
		errVar := g.names.Temp("err")
		w.p("%s, %s := strconv.ParseFloat(%s, 64)", argValue, errVar, flagArg)
		w.p("if %s != nil {", errVar)
		w.p("\tUsage()")
		w.p("\treturn")
		w.p("}")

	case idl.EnumRef:
		tmp := g.names.Temp("tmp")
		errVar := g.names.Temp("err")
		w.p("%s, %s := strconv.Atoi(%s)", tmp, errVar, flagArg)
		w.p("if %s != nil {", errVar)
		w.p("\tUsage()")
		w.p("\treturn")
		w.p("}")
		w.p("%s := %s.%s(%s)", argValue, g.pkg, Publicize(resolved.Name), tmp)

	case idl.StructRef:
		mbTrans := g.names.Temp("mbTrans")
		errVar := g.names.Temp("err")
		factory := g.names.Temp("factory")
		jsProt := g.names.Temp("jsProt")
		w.p("%s := twine.NewMemoryBuffer()", mbTrans)
		w.p("defer %s.Close()", mbTrans)
		w.p("_, %s := %s.WriteString(%s)", errVar, mbTrans, flagArg)
		w.p("if %s != nil {", errVar)
		w.p("\tUsage()")
		w.p("\treturn")
		w.p("}")
		w.p("%s := twine.NewSimpleJSONProtocolFactory()", factory)
		w.p("%s := %s.GetProtocol(%s)", jsProt, factory, mbTrans)
		w.p("%s := %s.%s()", argValue, g.pkg, NewPrefix(resolved.Name))
		w.p("if err := %s.Read(%s); err != nil {", argValue, jsProt)
		w.p("\tUsage()")
		w.p("\treturn")
		w.p("}")

	case idl.List, idl.Set, idl.Map:
		// containers lack a direct literal form on the command line;
		// borrow the argument struct's field reader to decode JSON
		mbTrans := g.names.Temp("mbTrans")
		errVar := g.names.Temp("err")
		factory := g.names.Temp("factory")
		jsProt := g.names.Temp("jsProt")
		container := g.names.Temp("containerStruct")
		w.p("%s := twine.NewMemoryBuffer()", mbTrans)
		w.p("defer %s.Close()", mbTrans)
		w.p("_, %s := %s.WriteString(%s)", errVar, mbTrans, flagArg)
		w.p("if %s != nil {", errVar)
		w.p("\tUsage()")
		w.p("\treturn")
		w.p("}")
		w.p("%s := twine.NewSimpleJSONProtocolFactory()", factory)
		w.p("%s := %s.GetProtocol(%s)", jsProt, factory, mbTrans)
		w.p("%s := %s.New%s()", container, g.pkg, Publicize(fn.ArgsStruct().Name))
		w.p("if err := %s.ReadField%s(%s); err != nil {", container, methodSuffix(arg.Key), jsProt)
		w.p("\tUsage()")
		w.p("\treturn")
		w.p("}")
		w.p("%s := %s.%s", argValue, container, Publicize(SafeName(arg.Name)))

	default:
		return "", errors.Wrapf(errors.ErrUnknownType, "cannot coerce argument %s", arg.Name)
	}

	// typedef arguments pass through the named alias
	if arg.Type.Kind == idl.TypedefRef {
		value := fmt.Sprintf("value%d", i)
		w.p("%s := %s.%s(%s)", value, g.pkg, Publicize(arg.Type.Name), argValue)
		return value, nil
	}
	return argValue, nil
}

// idlSignature renders a function the way it appears in its source
// interface file, for the Usage listing.
func idlSignature(fn *idl.Function) (string, error) {
	var b strings.Builder
	ret, err := idlTypeName(fn.ReturnType)
	if err != nil {
		return "", err
	}
	b.WriteString(ret)
	b.WriteString(" ")
	b.WriteString(fn.Name)
	b.WriteString("(")
	for i, arg := range fn.Arguments {
		if i > 0 {
			b.WriteString(", ")
		}
		typ, err := idlTypeName(arg.Type)
		if err != nil {
			return "", err
		}
		b.WriteString(typ)
		b.WriteString(" ")
		b.WriteString(arg.Name)
	}
	b.WriteString(")")
	return b.String(), nil
}

func idlTypeName(t *idl.Type) (string, error) {
	if t == nil {
		return "void", nil
	}
	switch t.Kind {
	case idl.Void:
		return "void", nil
	case idl.Bool:
		return "bool", nil
	case idl.Byte:
		return "byte", nil
	case idl.I16:
		return "i16", nil
	case idl.I32:
		return "i32", nil
	case idl.I64:
		return "i64", nil
	case idl.Double:
		return "double", nil
	case idl.String:
		if t.Binary {
			return "binary", nil
		}
		return "string", nil
	case idl.EnumRef, idl.StructRef, idl.TypedefRef:
		return t.Name, nil
	case idl.List:
		elem, err := idlTypeName(t.Elem)
		if err != nil {
			return "", err
		}
		return "list<" + elem + ">", nil
	case idl.Set:
		elem, err := idlTypeName(t.Elem)
		if err != nil {
			return "", err
		}
		return "set<" + elem + ">", nil
	case idl.Map:
		key, err := idlTypeName(t.Key)
		if err != nil {
			return "", err
		}
		value, err := idlTypeName(t.Value)
		if err != nil {
			return "", err
		}
		return "map<" + key + "," + value + ">", nil
	}
	return "", errors.Wrapf(errors.ErrUnknownType, "no source form for %s", t.Kind)
}
