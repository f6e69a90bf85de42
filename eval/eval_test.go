// Copyright © 2018 The ELPS authors

package eval_test

import (
	"fmt"
	"math"
	"testing"

	"github.com/luthersystems/eescope/alias"
	"github.com/luthersystems/eescope/eetest"
	"github.com/luthersystems/eescope/eval"
	"github.com/luthersystems/eescope/symbols"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testFrame is the paused Run(count: 3, name: "abc") with total = 10 and
// widget at 0x1000.
type testFrame struct {
	f    *eetest.Fixture
	heap map[uint64]*eval.Object
}

func newTestFrame(f *eetest.Fixture) *testFrame {
	widget := f.Compilation.GetTypeByMetadataName("App.Widget")
	exc := f.Compilation.GetTypeByMetadataName("App.NotFoundException")
	return &testFrame{
		f: f,
		heap: map[uint64]*eval.Object{
			0x1000: {Address: 0x1000, Type: widget, Fields: []eval.Field{
				{Name: "Id", Value: eval.Value{Type: f.Compilation.Special(symbols.SpecialInt32), V: int64(1)}},
			}},
			0x2000: {Address: 0x2000, Type: exc, Display: "App.NotFoundException: widget 7"},
		},
	}
}

func (fr *testFrame) ParameterValue(p *symbols.Parameter) (eval.Value, error) {
	switch p.Name() {
	case "count":
		return eval.Value{Type: p.Type(), V: int64(3)}, nil
	case "name":
		return eval.Value{Type: p.Type(), V: "abc"}, nil
	}
	return eval.Value{}, fmt.Errorf("%s: %w", p.Name(), eval.ErrUnavailable)
}

func (fr *testFrame) LocalValue(l *symbols.SourceLocal) (eval.Value, error) {
	switch l.Name() {
	case "total":
		return eval.Value{Type: l.Type(), V: int64(10)}, nil
	case "widget":
		return eval.ObjectValue(fr.heap[0x1000]), nil
	}
	return eval.Value{}, fmt.Errorf("%s: %w", l.Name(), eval.ErrUnavailable)
}

func (fr *testFrame) ObjectAt(address uint64) (*eval.Object, error) {
	obj, ok := fr.heap[address]
	if !ok {
		return nil, fmt.Errorf("%w 0x%x", eval.ErrNoObject, address)
	}
	return obj, nil
}

func testAliases() []alias.Descriptor {
	return []alias.Descriptor{
		{Name: "$exception", Kind: alias.Exception, Type: "App.NotFoundException", Payload: 0x2000},
		{Name: "$ReturnValue", Kind: alias.ReturnValue, Type: "int", Payload: 42},
		{Name: "$ReturnValue2", Kind: alias.ReturnValue, Type: "string", Payload: "done"},
		{Name: "$1", Kind: alias.ObjectID, Type: "App.Widget", Payload: uint64(0x1000)},
		{Name: "$2", Kind: alias.ObjectID, Type: "App.Widget", Payload: 0x3000},
		{Name: "big", Kind: alias.Variable, Type: "ulong", Payload: uint64(math.MaxUint64)},
		{Name: "ratio", Kind: alias.Variable, Type: "double", Payload: 0.5},
		{Name: "flag", Kind: alias.Variable, Type: "bool", Payload: true},
		{Name: "nothing", Kind: alias.Variable, Type: "string"},
	}
}

func run(t *testing.T, f *eetest.Fixture, text string) (*eval.Result, error) {
	t.Helper()
	bound, err := f.Bind(t, text, testAliases())
	require.NoError(t, err, text)
	return eval.Evaluate(newTestFrame(f), bound)
}

func TestEvaluate(t *testing.T) {
	t.Parallel()
	f := eetest.NewFixture()
	tests := []struct {
		text    string
		display string
	}{
		{"1 + 2 * 3", "7"},
		{"(1 + 2) * 3", "9"},
		{"7 / 2", "3"},
		{"-7 % 3", "-1"},
		{"7.0 / 2", "3.5"},
		{"5.5 % 2", "1.5"},
		{"count", "3"},
		{"count * total", "30"},
		{"total / 4", "2"},
		{"name", `"abc"`},
		{"name + count", `"abc3"`},
		{"name + null", `"abc"`},
		{"\"x\" + ratio", `"x0.5"`},
		{"\"x\" + flag", `"xTrue"`},
		{"\"w=\" + widget", `"w={App.Widget}"`},
		{"$exception", "App.NotFoundException: widget 7"},
		{"$ReturnValue + 1", "43"},
		{"$returnvalue", "42"},
		{"$ReturnValue2", `"done"`},
		{"$returnvalue2 + \"!\"", `"done!"`},
		{"$1", "{App.Widget}"},
		{"0x1000", "{App.Widget}"},
		{"0X1000 == $1", "True"},
		{"0x1000 == widget", "True"},
		{"0x2000 == $1", "False"},
		{"$exception != null", "True"},
		{"nothing == null", "True"},
		{"nothing", "null"},
		{"null", "null"},
		{"big", "18446744073709551615"},
		{"big + big", "18446744073709551614"},
		{"big == big", "True"},
		{"ratio * 4", "2"},
		{"1e300 * 1e300", "∞"},
		{"2147483647 + 1", "-2147483648"},
		{"-(-2147483647 - 1)", "-2147483648"},
		{"9223372036854775807 + 1", "-9223372036854775808"},
		{"count < total && total <= 10", "True"},
		{"count > 3 || !flag", "False"},
		{"1.5 >= 1", "True"},
		{"name == \"abc\"", "True"},
		{"name != \"abc\"", "False"},
		{"flag == true", "True"},
	}
	for _, test := range tests {
		res, err := run(t, f, test.text)
		require.NoError(t, err, test.text)
		assert.Equal(t, test.display, res.Value.String(), test.text)
		assert.Empty(t, res.Declared, test.text)
	}
}

func TestEvaluate_ShortCircuit(t *testing.T) {
	t.Parallel()
	f := eetest.NewFixture()
	res, err := run(t, f, "false && 1 / (count - 3) == 0")
	require.NoError(t, err)
	assert.Equal(t, false, res.Value.V)

	res, err = run(t, f, "true || $2 == null")
	require.NoError(t, err)
	assert.Equal(t, true, res.Value.V)
}

func TestEvaluate_Declarations(t *testing.T) {
	t.Parallel()
	f := eetest.NewFixture()
	tests := []struct {
		text   string
		values []string
	}{
		{"int a = 1, b = a + 1;", []string{"1", "2"}},
		{"long x = count", []string{"3"}},
		{"double d = total", []string{"10"}},
		{"int z;", []string{"0"}},
		{"string s;", []string{"null"}},
		{"var w = $1", []string{"{App.Widget}"}},
		{"object o = count", []string{"3"}},
		{"const string greeting = \"hi \" + 2", []string{`"hi 2"`}},
		{"ref int r = count", []string{"3"}},
		{"int total = 5, sum = total + count", []string{"5", "8"}},
	}
	for _, test := range tests {
		res, err := run(t, f, test.text)
		require.NoError(t, err, test.text)
		require.Len(t, res.Declared, len(test.values), test.text)
		for i, v := range test.values {
			assert.Equal(t, v, res.Declared[i].Value.String(), test.text)
		}
		assert.Equal(t, res.Declared[len(res.Declared)-1].Value, res.Value, test.text)
	}

	res, err := run(t, f, "double d = count")
	require.NoError(t, err)
	assert.Equal(t, float64(3), res.Value.V)
	assert.Equal(t, symbols.SpecialDouble, res.Value.Type.Special())

	res, err = run(t, f, "object o = count")
	require.NoError(t, err)
	assert.Equal(t, symbols.SpecialInt32, res.Value.Type.Special())
}

func TestEvaluate_RuntimeErrors(t *testing.T) {
	t.Parallel()
	f := eetest.NewFixture()
	tests := []struct {
		text string
		err  error
		col  int
	}{
		{"count / 0", eval.ErrDivideByZero, 1},
		{"1 + total % (count - 3)", eval.ErrDivideByZero, 5},
		{"big / (big - big)", eval.ErrDivideByZero, 1},
		{"0x3000", eval.ErrNoObject, 1},
		{"1 + 0xdead", eval.ErrNoObject, 5},
		{"$2", eval.ErrNoObject, 1},
		{"items", eval.ErrUnavailable, 1},
	}
	for _, test := range tests {
		_, err := run(t, f, test.text)
		require.Error(t, err, test.text)
		assert.ErrorIs(t, err, test.err, test.text)
		var rterr *eval.RuntimeError
		require.ErrorAs(t, err, &rterr, test.text)
		assert.Equal(t, test.col, rterr.Source.Col, test.text)
	}

	// Floating point division by zero is not an error.
	res, err := run(t, f, "ratio / 0")
	require.NoError(t, err)
	assert.True(t, math.IsInf(res.Value.V.(float64), 1))
}

func TestEvaluator_RemembersLocals(t *testing.T) {
	t.Parallel()
	f := eetest.NewFixture()
	bound, err := f.Bind(t, "int a = 2, b = a * a", nil)
	require.NoError(t, err)
	e := eval.New(newTestFrame(f))
	res, err := e.Run(bound)
	require.NoError(t, err)
	require.Len(t, res.Declared, 2)
	assert.Equal(t, "a", res.Declared[0].Local.Name())
	assert.Equal(t, int64(4), res.Declared[1].Value.V)
}

func TestFromPayload(t *testing.T) {
	t.Parallel()
	f := eetest.NewFixture()
	c := f.Compilation
	frame := newTestFrame(f)
	widget := c.GetTypeByMetadataName("App.Widget")
	tests := []struct {
		typ     *symbols.TypeSymbol
		payload interface{}
		display string
		fails   bool
	}{
		{c.Special(symbols.SpecialInt32), 7, "7", false},
		{c.Special(symbols.SpecialInt32), int64(math.MaxInt32) + 1, "", true},
		{c.Special(symbols.SpecialInt64), int64(math.MinInt64), "-9223372036854775808", false},
		{c.Special(symbols.SpecialUInt64), 5, "5", false},
		{c.Special(symbols.SpecialUInt64), -5, "", true},
		{c.Special(symbols.SpecialDouble), 2, "2", false},
		{c.Special(symbols.SpecialDouble), 0.25, "0.25", false},
		{c.Special(symbols.SpecialBoolean), false, "False", false},
		{c.Special(symbols.SpecialBoolean), "yes", "", true},
		{c.Special(symbols.SpecialString), "s", `"s"`, false},
		{c.Special(symbols.SpecialString), nil, "null", false},
		{c.Special(symbols.SpecialInt32), nil, "", true},
		{widget, 0x1000, "{App.Widget}", false},
		{widget, 0x1234, "", true},
		{widget, "0x1000", "", true},
		{c.ObjectType(), 0x2000, "App.NotFoundException: widget 7", false},
		{symbols.NewErrorType("x", "missing"), 1, "", true},
	}
	for i, test := range tests {
		v, err := eval.FromPayload(test.typ, test.payload, frame)
		if test.fails {
			assert.Error(t, err, "%d", i)
			continue
		}
		require.NoError(t, err, "%d", i)
		assert.Equal(t, test.display, v.String(), "%d", i)
	}

	v, err := eval.FromPayload(widget, frame.heap[0x1000], nil)
	require.NoError(t, err)
	assert.Same(t, frame.heap[0x1000], v.Object())

	_, err = eval.FromPayload(widget, 0x1000, nil)
	assert.ErrorIs(t, err, eval.ErrNoObject)
}

func TestObject_Describe(t *testing.T) {
	t.Parallel()
	f := eetest.NewFixture()
	frame := newTestFrame(f)
	assert.Equal(t, "{App.Widget} { Id = 1 }", frame.heap[0x1000].Describe())
	assert.Equal(t, "App.NotFoundException: widget 7", frame.heap[0x2000].Describe())
	id, ok := frame.heap[0x1000].Field("Id")
	require.True(t, ok)
	assert.Equal(t, int64(1), id.V)
	_, ok = frame.heap[0x1000].Field("Name")
	assert.False(t, ok)
}
