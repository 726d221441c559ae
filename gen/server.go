package gen

import (
	"strings"

	"github.com/twinekit/twinegen/errors"
	"github.com/twinekit/twinegen/idl"
)

// serviceProcessor emits the server half of a service: the dispatch
// table keyed by wire method name, and one process type per function.
// A derived service embeds its parent's processor and inherits the
// parent's registered functions through the shared map.
func (g *Generator) serviceProcessor(w *writer, svc *idl.Service) error {
	name := Publicize(svc.Name)

	w.p("type %sProcessor struct {", name)
	w.in()
	if svc.Extends != "" {
		w.p("*%sProcessor", extendsRef(svc.Extends))
	} else {
		w.p("processorMap map[string]twine.ProcessorFunction")
		w.p("handler %s", name)
		w.p("listener twine.HandlerListener")
	}
	w.out()
	w.p("}")
	w.nl()

	if svc.Extends == "" {
		w.p("func (p *%sProcessor) AddToProcessorMap(key string, processor twine.ProcessorFunction) {", name)
		w.p("\tp.processorMap[key] = processor")
		w.p("}")
		w.nl()
		w.p("func (p *%sProcessor) GetProcessorFunction(key string) (twine.ProcessorFunction, bool) {", name)
		w.p("\tprocessor, ok := p.processorMap[key]")
		w.p("\treturn processor, ok")
		w.p("}")
		w.nl()
		w.p("func (p *%sProcessor) ProcessorMap() map[string]twine.ProcessorFunction {", name)
		w.p("\treturn p.processorMap")
		w.p("}")
		w.nl()
	}

	w.p("func New%sProcessor(handler %s, listener twine.HandlerListener) *%sProcessor {", name, name, name)
	w.in()
	if svc.Extends != "" {
		w.p("self := &%sProcessor{%sProcessor: %s(handler, listener)}",
			name, clientFieldName(svc.Extends), extendsNew(svc.Extends, "Processor"))
	} else {
		w.p("self := &%sProcessor{", name)
		w.p("\tprocessorMap: make(map[string]twine.ProcessorFunction),")
		w.p("\thandler: handler,")
		w.p("\tlistener: listener,")
		w.p("}")
	}
	for _, fn := range svc.Functions {
		w.p("self.AddToProcessorMap(\"%s\", &%s{handler: handler, listener: listener})",
			fn.Name, processFuncName(svc, fn))
	}
	w.p("return self")
	w.out()
	w.p("}")
	w.nl()

	if svc.Extends == "" {
		g.processorReceive(w, name)
	}

	for _, fn := range svc.Functions {
		if err := g.processFunction(w, svc, fn); err != nil {
			return errors.Wrapf(err, "function %s", fn.Name)
		}
	}
	return nil
}

// processFuncName is the unexported per-function process type.
func processFuncName(svc *idl.Service, fn *idl.Function) string {
	return Privatize(svc.Name) + "Processor" + Publicize(fn.Name)
}

// processorReceive emits the envelope dispatch loop body. Unknown
// methods drain the argument struct and answer with an application
// exception so the connection stays usable.
func (g *Generator) processorReceive(w *writer, name string) {
	w.p("func (p *%sProcessor) Receive(request twine.Request) (bool, error) {", name)
	w.in()
	w.p("iprot := request.InputProtocol()")
	w.p("name, _, seqID, err := iprot.ReadMessageBegin()")
	w.p("if err != nil {")
	w.p("\treturn false, err")
	w.p("}")
	w.p("if processor, ok := p.GetProcessorFunction(name); ok {")
	w.p("\treturn processor.Process(seqID, request)")
	w.p("}")
	w.p("iprot.Skip(twine.TypeStruct)")
	w.p("iprot.ReadMessageEnd()")
	w.p("oprot := request.OutputProtocol()")
	w.p("exc := twine.NewApplicationException(twine.ExceptionUnknownMethod, \"Unknown function \"+name)")
	w.p("oprot.WriteMessageBegin(name, twine.Exception, seqID)")
	w.p("exc.Write(oprot)")
	w.p("oprot.WriteMessageEnd()")
	w.p("oprot.Flush()")
	w.p("return false, exc")
	w.out()
	w.p("}")
	w.nl()
}

// processFunction emits the per-function process type. The handler
// runs inside a recovering closure so a panicking handler degrades to
// an internal-error reply rather than tearing down the server loop.
// One-way functions skip the result and reply entirely. Listener hooks
// fire only when a listener is configured.
func (g *Generator) processFunction(w *writer, svc *idl.Service, fn *idl.Function) error {
	typeName := processFuncName(svc, fn)
	svcName := Publicize(svc.Name)
	pubName := Publicize(fn.Name)
	argsName := Publicize(fn.ArgsStruct().Name)

	w.p("type %s struct {", typeName)
	w.in()
	w.p("handler %s", svcName)
	w.p("listener twine.HandlerListener")
	w.out()
	w.p("}")
	w.nl()

	w.p("func (p *%s) Process(seqID int32, request twine.Request) (bool, error) {", typeName)
	w.in()
	w.p("iprot := request.InputProtocol()")
	if !fn.Oneway {
		w.p("oprot := request.OutputProtocol()")
	}
	args := g.names.Temp("args")
	w.p("%s := New%s()", args, argsName)
	w.p("if err := %s.Read(iprot); err != nil {", args)
	w.p("\tiprot.ReadMessageEnd()")
	if fn.Oneway {
		w.p("\treturn false, err")
	} else {
		w.p("\texc := twine.NewApplicationException(twine.ExceptionProtocolError, err.Error())")
		w.p("\toprot.WriteMessageBegin(\"%s\", twine.Exception, seqID)", fn.Name)
		w.p("\texc.Write(oprot)")
		w.p("\toprot.WriteMessageEnd()")
		w.p("\toprot.Flush()")
		w.p("\treturn false, err")
	}
	w.p("}")
	w.p("iprot.ReadMessageEnd()")

	argRefs := make([]string, len(fn.Arguments))
	for i, arg := range fn.Arguments {
		argRefs[i] = args + "." + Publicize(SafeName(arg.Name))
	}
	preArgs := ""
	if len(argRefs) > 0 {
		preArgs = ", " + strings.Join(argRefs, ", ")
	}
	w.p("if p.listener != nil {")
	w.p("\tp.listener.PreHandle(request, \"%s\"%s)", fn.Name, preArgs)
	w.p("}")

	var result string
	if !fn.Oneway {
		result = g.names.Temp("result")
		w.p("%s := New%s()", result, Publicize(fn.ResultStruct().Name))
	}
	w.p("var handlerErr error")
	w.p("defer func() {")
	w.p("\tif p.listener != nil {")
	w.p("\t\tp.listener.Completed(request, \"%s\", handlerErr)", fn.Name)
	w.p("\t}")
	w.p("}()")
	w.p("func() {")
	w.in()
	w.p("defer func() {")
	w.p("\tif r := recover(); r != nil {")
	w.p("\t\thandlerErr = fmt.Errorf(\"handler panic: %%v\", r)")
	w.p("\t}")
	w.p("}()")

	// assign handler returns straight into the result envelope
	var lhs []string
	if !fn.IsVoid() {
		lhs = append(lhs, result+".Success")
	}
	for _, exc := range fn.Throws {
		lhs = append(lhs, result+"."+Publicize(SafeName(exc.Name)))
	}
	lhs = append(lhs, "handlerErr")
	w.p("%s = p.handler.%s(%s)", strings.Join(lhs, ", "), pubName, strings.Join(argRefs, ", "))
	w.out()
	w.p("}()")

	if fn.Oneway {
		w.p("if p.listener != nil {")
		w.p("\tp.listener.PostHandle(request, \"%s\", handlerErr)", fn.Name)
		w.p("}")
		w.p("return handlerErr == nil, handlerErr")
		w.out()
		w.p("}")
		w.nl()
		return nil
	}

	postArgs := "handlerErr"
	if !fn.IsVoid() {
		postArgs += ", " + result + ".Success"
	}
	w.p("if p.listener != nil {")
	w.p("\tp.listener.PostHandle(request, \"%s\", %s)", fn.Name, postArgs)
	w.p("}")
	w.p("if handlerErr != nil {")
	w.p("\texc := twine.NewApplicationException(twine.ExceptionInternalError, \"Internal error processing %s: \"+handlerErr.Error())", fn.Name)
	w.p("\toprot.WriteMessageBegin(\"%s\", twine.Exception, seqID)", fn.Name)
	w.p("\texc.Write(oprot)")
	w.p("\toprot.WriteMessageEnd()")
	w.p("\toprot.Flush()")
	w.p("\treturn false, handlerErr")
	w.p("}")
	w.p("var err, err2 error")
	w.p("if err2 = oprot.WriteMessageBegin(\"%s\", twine.Reply, seqID); err2 != nil {", fn.Name)
	w.p("\terr = err2")
	w.p("}")
	w.p("if err2 = %s.Write(oprot); err == nil && err2 != nil {", result)
	w.p("\terr = err2")
	w.p("}")
	w.p("if err2 = oprot.WriteMessageEnd(); err == nil && err2 != nil {")
	w.p("\terr = err2")
	w.p("}")
	w.p("if err2 = oprot.Flush(); err == nil && err2 != nil {")
	w.p("\terr = err2")
	w.p("}")
	w.p("return err == nil, err")
	w.out()
	w.p("}")
	w.nl()
	return nil
}
