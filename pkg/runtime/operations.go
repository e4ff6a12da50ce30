package runtime

import "fmt"

// Add implements `+`: string concatenation when either side is a string,
// numeric addition otherwise.
func Add(a, b Value) (Value, error) {
	if a.Kind() == KindString || b.Kind() == KindString {
		return StringValue{Val: Stringify(a) + Stringify(b)}, nil
	}
	return arithmetic("+", a, b)
}

// Arithmetic implements `-`, `*`, `/` and `%` on numbers. Integer division
// stays integral when exact and widens to float otherwise.
func Arithmetic(op string, a, b Value) (Value, error) {
	if op == "+" {
		return Add(a, b)
	}
	return arithmetic(op, a, b)
}

func arithmetic(op string, a, b Value) (Value, error) {
	ai, aIsInt := asInt(a)
	bi, bIsInt := asInt(b)
	if aIsInt && bIsInt {
		switch op {
		case "+":
			return IntValue{Val: ai + bi}, nil
		case "-":
			return IntValue{Val: ai - bi}, nil
		case "*":
			return IntValue{Val: ai * bi}, nil
		case "%":
			if bi == 0 {
				return nil, fmt.Errorf("modulo by zero")
			}
			return IntValue{Val: ai % bi}, nil
		case "/":
			if bi == 0 {
				return nil, fmt.Errorf("division by zero")
			}
			if ai%bi == 0 {
				return IntValue{Val: ai / bi}, nil
			}
			return FloatValue{Val: float64(ai) / float64(bi)}, nil
		}
	}
	af, aOK := asFloat(a)
	bf, bOK := asFloat(b)
	if !aOK || !bOK {
		return nil, fmt.Errorf("operator %q needs numbers, got %s and %s", op, a.Kind(), b.Kind())
	}
	switch op {
	case "+":
		return FloatValue{Val: af + bf}, nil
	case "-":
		return FloatValue{Val: af - bf}, nil
	case "*":
		return FloatValue{Val: af * bf}, nil
	case "/":
		if bf == 0 {
			return nil, fmt.Errorf("division by zero")
		}
		return FloatValue{Val: af / bf}, nil
	case "%":
		return nil, fmt.Errorf("operator %q needs integers", op)
	}
	return nil, fmt.Errorf("unknown operator %q", op)
}

// Equal compares two values, coercing across int and float.
func Equal(a, b Value) bool {
	if af, ok := asFloat(a); ok {
		if bf, ok := asFloat(b); ok {
			return af == bf
		}
		return false
	}
	switch av := a.(type) {
	case NullValue:
		_, isNull := b.(NullValue)
		return isNull
	case BoolValue:
		bv, ok := b.(BoolValue)
		return ok && av.Val == bv.Val
	case StringValue:
		bv, ok := b.(StringValue)
		return ok && av.Val == bv.Val
	}
	return false
}

// Compare orders two values: numeric ordering for numbers, lexicographic for
// strings. Mixed or unordered kinds are an error.
func Compare(a, b Value) (int, error) {
	if af, ok := asFloat(a); ok {
		if bf, ok := asFloat(b); ok {
			switch {
			case af < bf:
				return -1, nil
			case af > bf:
				return 1, nil
			default:
				return 0, nil
			}
		}
	}
	if as, ok := a.(StringValue); ok {
		if bs, ok := b.(StringValue); ok {
			switch {
			case as.Val < bs.Val:
				return -1, nil
			case as.Val > bs.Val:
				return 1, nil
			default:
				return 0, nil
			}
		}
	}
	return 0, fmt.Errorf("cannot order %s and %s", a.Kind(), b.Kind())
}

// Negate implements unary minus.
func Negate(v Value) (Value, error) {
	switch val := v.(type) {
	case IntValue:
		return IntValue{Val: -val.Val}, nil
	case FloatValue:
		return FloatValue{Val: -val.Val}, nil
	default:
		return nil, fmt.Errorf("cannot negate %s", v.Kind())
	}
}

func asInt(v Value) (int64, bool) {
	if iv, ok := v.(IntValue); ok {
		return iv.Val, true
	}
	return 0, false
}

func asFloat(v Value) (float64, bool) {
	switch val := v.(type) {
	case IntValue:
		return float64(val.Val), true
	case FloatValue:
		return val.Val, true
	default:
		return 0, false
	}
}
