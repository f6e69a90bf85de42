// Copyright © 2018 The ELPS authors

package eval

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/luthersystems/eescope/symbols"
)

// Value is a runtime value.  V holds int64 for int and long values, uint64,
// float64, string, bool, *Object or nil for null.  Type is the runtime type
// of the value and is nil for null.
type Value struct {
	Type *symbols.TypeSymbol
	V    interface{}
}

// Null is the null reference.
var Null = Value{}

// IsNull reports whether v is the null reference.
func (v Value) IsNull() bool { return v.V == nil }

// Object returns the heap object referenced by v, or nil.
func (v Value) Object() *Object {
	obj, _ := v.V.(*Object)
	return obj
}

// String returns the value as a debugger displays it.  Strings are quoted.
func (v Value) String() string {
	if s, ok := v.V.(string); ok {
		return strconv.Quote(s)
	}
	return v.Text()
}

// Text returns the value unquoted.
func (v Value) Text() string {
	switch x := v.V.(type) {
	case nil:
		return "null"
	case bool:
		if x {
			return "True"
		}
		return "False"
	case int64:
		return strconv.FormatInt(x, 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case float64:
		return formatDouble(x)
	case string:
		return x
	case *Object:
		return x.String()
	}
	return fmt.Sprint(v.V)
}

func formatDouble(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "∞"
	case math.IsInf(f, -1):
		return "-∞"
	}
	return strconv.FormatFloat(f, 'G', -1, 64)
}

// Object is an object on the heap of the paused program.
type Object struct {
	Address uint64
	Type    *symbols.TypeSymbol
	// Display overrides the type name as the text of the object.
	Display string
	Fields  []Field
}

// Field is a named member of an object.
type Field struct {
	Name  string
	Value Value
}

func (obj *Object) String() string {
	if obj.Display != "" {
		return obj.Display
	}
	return "{" + obj.Type.FullName() + "}"
}

// Field returns the field named name.
func (obj *Object) Field(name string) (Value, bool) {
	for _, f := range obj.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return Value{}, false
}

// Describe returns a one line summary of the object and its fields.
func (obj *Object) Describe() string {
	if len(obj.Fields) == 0 {
		return obj.String()
	}
	parts := make([]string, len(obj.Fields))
	for i, f := range obj.Fields {
		parts[i] = f.Name + " = " + f.Value.String()
	}
	return obj.String() + " { " + strings.Join(parts, ", ") + " }"
}

// ObjectValue returns a reference to obj.
func ObjectValue(obj *Object) Value {
	if obj == nil {
		return Null
	}
	return Value{Type: obj.Type, V: obj}
}

// Heap resolves object addresses.
type Heap interface {
	// ObjectAt returns the object at address.  It returns an error wrapping
	// ErrNoObject when no object lives there.
	ObjectAt(address uint64) (*Object, error)
}

// FromPayload converts a stored payload to a value of type typ.  Payloads of
// numeric types may be any Go integer or float.  A numeric payload of a
// reference type is the address of an object on heap.
func FromPayload(typ *symbols.TypeSymbol, payload interface{}, heap Heap) (Value, error) {
	switch p := payload.(type) {
	case nil:
		if typ != nil && typ.IsValueType() {
			return Value{}, fmt.Errorf("value of type %v is missing", typ)
		}
		return Null, nil
	case Value:
		return p, nil
	case *Object:
		return ObjectValue(p), nil
	}
	if typ == nil || typ.IsError() {
		return Value{}, fmt.Errorf("payload %v has no type", payload)
	}
	switch typ.Special() {
	case symbols.SpecialBoolean:
		if b, ok := payload.(bool); ok {
			return Value{Type: typ, V: b}, nil
		}
	case symbols.SpecialString:
		if s, ok := payload.(string); ok {
			return Value{Type: typ, V: s}, nil
		}
	case symbols.SpecialInt32:
		if n, ok := toInt64(payload); ok && n >= math.MinInt32 && n <= math.MaxInt32 {
			return Value{Type: typ, V: n}, nil
		}
	case symbols.SpecialInt64:
		if n, ok := toInt64(payload); ok {
			return Value{Type: typ, V: n}, nil
		}
	case symbols.SpecialUInt64:
		if n, ok := toUint64(payload); ok {
			return Value{Type: typ, V: n}, nil
		}
	case symbols.SpecialDouble:
		if f, ok := toFloat64(payload); ok {
			return Value{Type: typ, V: f}, nil
		}
	default:
		if typ.IsValueType() {
			break
		}
		address, ok := toUint64(payload)
		if !ok {
			break
		}
		if heap == nil {
			return Value{}, fmt.Errorf("%w at 0x%x", ErrNoObject, address)
		}
		obj, err := heap.ObjectAt(address)
		if err != nil {
			return Value{}, err
		}
		return ObjectValue(obj), nil
	}
	return Value{}, fmt.Errorf("cannot use %T %v as a value of type %v", payload, payload, typ)
}

func toInt64(x interface{}) (int64, bool) {
	switch n := x.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint64:
		if n > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	case uint:
		if uint64(n) > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	}
	return 0, false
}

func toUint64(x interface{}) (uint64, bool) {
	switch n := x.(type) {
	case uint64:
		return n, true
	case uint:
		return uint64(n), true
	case int, int32, int64:
		i, _ := toInt64(n)
		if i < 0 {
			return 0, false
		}
		return uint64(i), true
	}
	return 0, false
}

func toFloat64(x interface{}) (float64, bool) {
	switch n := x.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	}
	if i, ok := toInt64(x); ok {
		return float64(i), true
	}
	if u, ok := toUint64(x); ok {
		return float64(u), true
	}
	return 0, false
}
