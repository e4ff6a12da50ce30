// Package runtime holds the value model and mutable stores used while a
// script plays: script-scoped variables and per-character fields.
package runtime

import (
	"fmt"
	"strconv"
)

// Kind identifies the runtime value category.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	default:
		return fmt.Sprintf("unknown_kind_%d", int(k))
	}
}

// Value is the shared behaviour for all runtime values.
type Value interface {
	Kind() Kind
}

// NullValue is the absent value: unset fields, non-strict missing reads.
type NullValue struct{}

func (NullValue) Kind() Kind { return KindNull }

type BoolValue struct {
	Val bool
}

func (v BoolValue) Kind() Kind { return KindBool }

type IntValue struct {
	Val int64
}

func (v IntValue) Kind() Kind { return KindInt }

type FloatValue struct {
	Val float64
}

func (v FloatValue) Kind() Kind { return KindFloat }

type StringValue struct {
	Val string
}

func (v StringValue) Kind() Kind { return KindString }

// Null is the canonical absent value.
var Null = NullValue{}

// Truthy converts a value to its boolean interpretation: null and zero
// values are false, everything else true.
func Truthy(v Value) bool {
	switch val := v.(type) {
	case NullValue, nil:
		return false
	case BoolValue:
		return val.Val
	case IntValue:
		return val.Val != 0
	case FloatValue:
		return val.Val != 0
	case StringValue:
		return val.Val != ""
	default:
		return false
	}
}

// Stringify renders a value for text interpolation. Null renders empty so a
// missing field never injects the word "null" into dialogue; integral floats
// drop their fraction.
func Stringify(v Value) string {
	switch val := v.(type) {
	case NullValue, nil:
		return ""
	case BoolValue:
		if val.Val {
			return "true"
		}
		return "false"
	case IntValue:
		return strconv.FormatInt(val.Val, 10)
	case FloatValue:
		return strconv.FormatFloat(val.Val, 'f', -1, 64)
	case StringValue:
		return val.Val
	default:
		return ""
	}
}

// ToNative converts a value to its JSON-native representation for snapshot
// encoding.
func ToNative(v Value) any {
	switch val := v.(type) {
	case BoolValue:
		return val.Val
	case IntValue:
		return val.Val
	case FloatValue:
		return val.Val
	case StringValue:
		return val.Val
	default:
		return nil
	}
}

// FromNative converts a decoded JSON value back into a runtime value.
// Integral float64 numbers become IntValue, matching Stringify semantics.
func FromNative(v any) Value {
	switch val := v.(type) {
	case nil:
		return Null
	case bool:
		return BoolValue{Val: val}
	case int64:
		return IntValue{Val: val}
	case int:
		return IntValue{Val: int64(val)}
	case float64:
		if val == float64(int64(val)) {
			return IntValue{Val: int64(val)}
		}
		return FloatValue{Val: val}
	case string:
		return StringValue{Val: val}
	default:
		return Null
	}
}
