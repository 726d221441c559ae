package gen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twinekit/twinegen/idl"
)

// calculatorService mirrors the shape of a small arithmetic service:
// a void ping, a two-argument add, a throwing calculate, and a one-way
// zip.
func calculatorService() *idl.Service {
	return &idl.Service{
		Name: "Calculator",
		Functions: []*idl.Function{
			{Name: "ping"},
			{
				Name:       "add",
				ReturnType: &idl.Type{Kind: idl.I32},
				Arguments: []*idl.Field{
					{Name: "num1", Key: 1, Type: &idl.Type{Kind: idl.I32}},
					{Name: "num2", Key: 2, Type: &idl.Type{Kind: idl.I32}},
				},
			},
			{
				Name:       "calculate",
				ReturnType: &idl.Type{Kind: idl.I32},
				Arguments: []*idl.Field{
					{Name: "logid", Key: 1, Type: &idl.Type{Kind: idl.I32}},
					{Name: "w", Key: 2, Type: &idl.Type{Kind: idl.StructRef, Name: "Work"}},
				},
				Throws: []*idl.Field{
					{Name: "ouch", Key: 1, Type: &idl.Type{Kind: idl.StructRef, Name: "InvalidOperation"}},
				},
			},
			{Name: "zip", Oneway: true},
		},
	}
}

func generateServiceUnit(t *testing.T, svc *idl.Service) string {
	t.Helper()
	g := New(&idl.Program{Name: "tutorial", Services: []*idl.Service{svc}}, Options{})
	unit, err := g.generateService(svc)
	require.NoError(t, err)
	return unit
}

func TestServiceInterface(t *testing.T) {
	unit := generateServiceUnit(t, calculatorService())

	assert.Contains(t, unit, "type Calculator interface {")
	assert.Contains(t, unit, "Ping() (err error)")
	assert.Contains(t, unit, "Add(num1 int32, num2 int32) (r int32, err error)")
	assert.Contains(t, unit, "Calculate(logid int32, w *Work) (r int32, ouch *InvalidOperation, err error)")
	assert.Contains(t, unit, "Zip() (err error)")
}

func TestServiceInterfaceExtends(t *testing.T) {
	svc := &idl.Service{Name: "Calculator", Extends: "shared.SharedService"}
	unit := generateServiceUnit(t, svc)
	assert.Contains(t, unit, "type Calculator interface {\n\tshared.SharedService\n")
}

func TestServiceClient(t *testing.T) {
	unit := generateServiceUnit(t, calculatorService())

	assert.Contains(t, unit, "type CalculatorClient struct {")
	assert.Contains(t, unit, "Transport twine.Transport")
	assert.Contains(t, unit, "SeqId int32")
	assert.Contains(t, unit, "func NewCalculatorClientFactory(t twine.Transport, f twine.ProtocolFactory) *CalculatorClient {")
	assert.Contains(t, unit, "func NewCalculatorClientProtocol(t twine.Transport, iprot twine.Protocol, oprot twine.Protocol) *CalculatorClient {")

	assert.Contains(t, unit, "func (p *CalculatorClient) Add(num1 int32, num2 int32) (r int32, err error) {")
	assert.Contains(t, unit, "func (p *CalculatorClient) sendAdd(num1 int32, num2 int32) (err error) {")
	assert.Contains(t, unit, "p.SeqId++")
	assert.Contains(t, unit, `if err = oprot.WriteMessageBegin("add", twine.Call, p.SeqId); err != nil {`)
	assert.Contains(t, unit, "return oprot.Flush()")
}

func TestServiceClientRecv(t *testing.T) {
	unit := generateServiceUnit(t, calculatorService())

	assert.Contains(t, unit, "func (p *CalculatorClient) recvAdd() (value int32, err error) {")
	assert.Contains(t, unit, "if mTypeID == twine.Exception {")
	assert.Contains(t, unit, `twine.NewApplicationException(twine.ExceptionUnknown, "Unknown exception")`)
	assert.Contains(t, unit, "if p.SeqId != seqID {")
	assert.Contains(t, unit, "twine.ExceptionBadSequenceID")

	assert.Contains(t, unit, "func (p *CalculatorClient) recvCalculate() (value int32, ouch *InvalidOperation, err error) {")
	assert.Contains(t, unit, ".Ouch != nil {")
}

func TestServiceOnewayClient(t *testing.T) {
	unit := generateServiceUnit(t, calculatorService())

	assert.Contains(t, unit, "func (p *CalculatorClient) sendZip() (err error) {")
	assert.Contains(t, unit, `oprot.WriteMessageBegin("zip", twine.Oneway, p.SeqId)`)
	assert.NotContains(t, unit, "recvZip", "one-way calls have no receive side")
	assert.NotContains(t, unit, "ZipResult", "one-way calls have no result envelope")
}

func TestServiceEnvelopeStructs(t *testing.T) {
	unit := generateServiceUnit(t, calculatorService())

	assert.Contains(t, unit, "type AddArgs struct {")
	assert.Contains(t, unit, "type AddResult struct {")
	assert.Contains(t, unit, "Success int32 `twine:\"success,0\"`")
	assert.Contains(t, unit, "type ZipArgs struct {")
	assert.Contains(t, unit, "type CalculateResult struct {")
}

func TestServiceProcessor(t *testing.T) {
	unit := generateServiceUnit(t, calculatorService())

	assert.Contains(t, unit, "type CalculatorProcessor struct {")
	assert.Contains(t, unit, "processorMap map[string]twine.ProcessorFunction")
	assert.Contains(t, unit, "func NewCalculatorProcessor(handler Calculator, listener twine.HandlerListener) *CalculatorProcessor {")
	assert.Contains(t, unit, `self.AddToProcessorMap("add", &calculatorProcessorAdd{handler: handler, listener: listener})`)
	assert.Contains(t, unit, "func (p *CalculatorProcessor) Receive(request twine.Request) (bool, error) {")
	assert.Contains(t, unit, "twine.ExceptionUnknownMethod")
}

func TestServiceProcessFunction(t *testing.T) {
	unit := generateServiceUnit(t, calculatorService())

	assert.Contains(t, unit, "type calculatorProcessorAdd struct {")
	assert.Contains(t, unit, "func (p *calculatorProcessorAdd) Process(seqID int32, request twine.Request) (bool, error) {")
	assert.Contains(t, unit, "twine.ExceptionProtocolError")
	assert.Contains(t, unit, `p.listener.PreHandle(request, "add"`)
	assert.Contains(t, unit, "if r := recover(); r != nil {")
	assert.Contains(t, unit, "twine.ExceptionInternalError")
	assert.Contains(t, unit, `oprot.WriteMessageBegin("add", twine.Reply, seqID)`)

	idx := strings.Index(unit, "func (p *calculatorProcessorCalculate) Process")
	require.Greater(t, idx, 0)
	body := unit[idx:]
	assert.Contains(t, body, ".Ouch, handlerErr = p.handler.Calculate(",
		"declared throws assign straight into the result envelope")
}

func TestServiceOnewayProcessFunction(t *testing.T) {
	unit := generateServiceUnit(t, calculatorService())

	idx := strings.Index(unit, "func (p *calculatorProcessorZip) Process")
	require.Greater(t, idx, 0)
	end := strings.Index(unit[idx:], "\n}\n")
	require.Greater(t, end, 0)
	body := unit[idx : idx+end]

	assert.NotContains(t, body, "twine.Reply", "one-way functions send no reply envelope")
	assert.NotContains(t, body, "Result()", "one-way functions build no result envelope")
	assert.Contains(t, body, "return handlerErr == nil, handlerErr")
}

func TestServiceProcessListenerGuards(t *testing.T) {
	unit := generateServiceUnit(t, calculatorService())

	assert.Contains(t, unit, "if p.listener != nil {\n\t\tp.listener.PreHandle(request, \"add\"")
	assert.Contains(t, unit, "if p.listener != nil {\n\t\t\tp.listener.Completed(request, \"add\", handlerErr)")
	assert.Contains(t, unit, "if p.listener != nil {\n\t\tp.listener.PostHandle(request, \"add\", handlerErr, ")
	assert.Contains(t, unit, "if p.listener != nil {\n\t\tp.listener.PostHandle(request, \"zip\", handlerErr)")

	// every hook invocation sits behind a guard
	assert.Equal(t, strings.Count(unit, "p.listener.PreHandle(")+
		strings.Count(unit, "p.listener.PostHandle(")+
		strings.Count(unit, "p.listener.Completed("),
		strings.Count(unit, "if p.listener != nil {"))
}

func TestServiceExtendsQualifiedParent(t *testing.T) {
	svc := &idl.Service{Name: "Calculator", Extends: "shared.SharedService",
		Functions: []*idl.Function{{Name: "ping"}}}
	unit := generateServiceUnit(t, svc)

	assert.Contains(t, unit, "type CalculatorClient struct {\n\t*shared.SharedServiceClient\n}")
	assert.Contains(t, unit, "SharedServiceClient: shared.NewSharedServiceClientFactory(t, f)")
	assert.Contains(t, unit, "SharedServiceClient: shared.NewSharedServiceClientProtocol(t, iprot, oprot)")
	assert.Contains(t, unit, "SharedServiceProcessor: shared.NewSharedServiceProcessor(handler, listener)")
	assert.NotContains(t, unit, "Newshared.", "the constructor name goes after the module qualifier")
}

func TestServiceProcessorExtends(t *testing.T) {
	parent := &idl.Service{Name: "SharedService", Functions: []*idl.Function{{Name: "getStruct"}}}
	child := &idl.Service{Name: "Calculator", Extends: "SharedService", Parent: parent,
		Functions: []*idl.Function{{Name: "ping"}}}
	g := New(&idl.Program{Name: "tutorial", Services: []*idl.Service{parent, child}}, Options{})
	unit, err := g.generateService(child)
	require.NoError(t, err)

	assert.Contains(t, unit, "type CalculatorProcessor struct {\n\t*SharedServiceProcessor\n}")
	assert.Contains(t, unit, "SharedServiceProcessor: NewSharedServiceProcessor(handler, listener)")
	assert.NotContains(t, unit, "func (p *CalculatorProcessor) Receive",
		"derived processors inherit dispatch from the parent")
	assert.Contains(t, unit, "type CalculatorClient struct {\n\t*SharedServiceClient\n}")
}
