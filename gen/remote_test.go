package gen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twinekit/twinegen/idl"
)

func generateRemoteUnit(t *testing.T, svc *idl.Service) string {
	t.Helper()
	g := New(&idl.Program{Name: "tutorial", Services: []*idl.Service{svc}}, Options{})
	unit, err := g.generateRemote(svc)
	require.NoError(t, err)
	return unit
}

func TestRemoteSkeleton(t *testing.T) {
	unit := generateRemoteUnit(t, calculatorService())

	assert.True(t, strings.HasPrefix(unit, "// Code generated by twinegen. DO NOT EDIT."))
	assert.Contains(t, unit, "package main")
	assert.Contains(t, unit, `flag.StringVar(&host, "h", "localhost", "Specify host")`)
	assert.Contains(t, unit, `flag.IntVar(&port, "p", 9090, "Specify port")`)
	assert.Contains(t, unit, `flag.BoolVar(&framed, "framed", false, "Use framed transport")`)
	assert.Contains(t, unit, `flag.BoolVar(&useHTTP, "http", false, "Use http")`)

	assert.Contains(t, unit, "twine.NewCompactProtocolFactory()")
	assert.Contains(t, unit, "twine.NewSimpleJSONProtocolFactory()")
	assert.Contains(t, unit, "twine.NewBinaryProtocolFactory()")
	assert.Contains(t, unit, "trans = twine.NewFramedTransport(trans)")
	assert.Contains(t, unit, "client := tutorial.NewCalculatorClientFactory(trans, protocolFactory)")
}

func TestRemoteUsageListsFunctions(t *testing.T) {
	unit := generateRemoteUnit(t, calculatorService())

	assert.Contains(t, unit, `"  void ping()"`)
	assert.Contains(t, unit, `"  i32 add(i32 num1, i32 num2)"`)
	assert.Contains(t, unit, `"  i32 calculate(i32 logid, Work w)"`)
	assert.Contains(t, unit, `"  void zip()"`)

	usage := unit[strings.Index(unit, "func Usage() {"):]
	usage = usage[:strings.Index(usage, "\n}\n")]
	assert.Contains(t, usage, "os.Exit(1)", "bad invocations exit non-zero")
}

func TestRemoteScalarCoercion(t *testing.T) {
	svc := &idl.Service{Name: "Kitchen", Functions: []*idl.Function{{
		Name: "mix",
		Arguments: []*idl.Field{
			{Name: "flag", Key: 1, Type: &idl.Type{Kind: idl.Bool}},
			{Name: "small", Key: 2, Type: &idl.Type{Kind: idl.Byte}},
			{Name: "short", Key: 3, Type: &idl.Type{Kind: idl.I16}},
			{Name: "wide", Key: 4, Type: &idl.Type{Kind: idl.I64}},
			{Name: "ratio", Key: 5, Type: &idl.Type{Kind: idl.Double}},
			{Name: "label", Key: 6, Type: &idl.Type{Kind: idl.String}},
		},
	}}}
	unit := generateRemoteUnit(t, svc)

	assert.Contains(t, unit, `argvalue0 := flag.Arg(1) == "true"`)
	assert.Contains(t, unit, "argvalue1 := int8(tmp0)")
	assert.Contains(t, unit, "argvalue2 := int16(tmp2)", "16-bit arguments coerce through int16")
	assert.Contains(t, unit, "argvalue3, err4 := strconv.ParseInt(flag.Arg(4), 10, 64)")
	assert.Contains(t, unit, "argvalue4, err5 := strconv.ParseFloat(flag.Arg(5), 64)")
	assert.Contains(t, unit, "argvalue5 := flag.Arg(6)")
	assert.Contains(t, unit, "fmt.Print(client.Mix(argvalue0, argvalue1, argvalue2, argvalue3, argvalue4, argvalue5))")
}

func TestRemoteEnumCoercion(t *testing.T) {
	svc := &idl.Service{Name: "Painter", Functions: []*idl.Function{{
		Name: "paint",
		Arguments: []*idl.Field{
			{Name: "color", Key: 1, Type: &idl.Type{Kind: idl.EnumRef, Name: "Color"}},
		},
	}}}
	unit := generateRemoteUnit(t, svc)

	assert.Contains(t, unit, "tmp0, err1 := strconv.Atoi(flag.Arg(1))")
	assert.Contains(t, unit, "argvalue0 := tutorial.Color(tmp0)")
}

func TestRemoteStructCoercion(t *testing.T) {
	unit := generateRemoteUnit(t, calculatorService())

	assert.Contains(t, unit, "twine.NewMemoryBuffer()")
	assert.Contains(t, unit, "twine.NewSimpleJSONProtocolFactory()")
	assert.Contains(t, unit, "tutorial.NewWork()")
}

func TestRemoteContainerCoercion(t *testing.T) {
	svc := &idl.Service{Name: "Counter", Functions: []*idl.Function{{
		Name: "tally",
		Arguments: []*idl.Field{
			{Name: "votes", Key: 1, Type: &idl.Type{
				Kind: idl.List, Elem: &idl.Type{Kind: idl.I32},
			}},
		},
	}}}
	unit := generateRemoteUnit(t, svc)

	assert.Contains(t, unit, "tutorial.NewTallyArgs()")
	assert.Contains(t, unit, ".ReadField1(")
	assert.Contains(t, unit, ".Votes")
}

func TestRemoteTypedefCoercion(t *testing.T) {
	svc := &idl.Service{Name: "Counter", Functions: []*idl.Function{{
		Name: "bump",
		Arguments: []*idl.Field{
			{Name: "by", Key: 1, Type: &idl.Type{
				Kind:   idl.TypedefRef,
				Name:   "MyInteger",
				Target: &idl.Type{Kind: idl.I32},
			}},
		},
	}}}
	unit := generateRemoteUnit(t, svc)

	assert.Contains(t, unit, "argvalue0 := int32(tmp0)")
	assert.Contains(t, unit, "value0 := tutorial.MyInteger(argvalue0)")
	assert.Contains(t, unit, "fmt.Print(client.Bump(value0))")
}

func TestRemoteInheritedFunctions(t *testing.T) {
	parent := &idl.Service{Name: "SharedService", Functions: []*idl.Function{{Name: "getStruct"}}}
	child := &idl.Service{Name: "Calculator", Extends: "SharedService", Parent: parent,
		Functions: []*idl.Function{{Name: "ping"}}}
	g := New(&idl.Program{Name: "tutorial", Services: []*idl.Service{parent, child}}, Options{})
	unit, err := g.generateRemote(child)
	require.NoError(t, err)

	assert.Contains(t, unit, `case "ping":`)
	assert.Contains(t, unit, `case "getStruct":`, "inherited functions dispatch too")
	assert.Contains(t, unit, "fmt.Print(client.GetStruct())")
}
