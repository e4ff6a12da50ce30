package runtime

import "testing"

func TestArithmeticStaysIntegral(t *testing.T) {
	v, err := Arithmetic("+", IntValue{Val: 2}, IntValue{Val: 3})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if iv, ok := v.(IntValue); !ok || iv.Val != 5 {
		t.Fatalf("expected int 5, got %#v", v)
	}
	v, err = Arithmetic("/", IntValue{Val: 6}, IntValue{Val: 3})
	if err != nil {
		t.Fatalf("div: %v", err)
	}
	if iv, ok := v.(IntValue); !ok || iv.Val != 2 {
		t.Fatalf("expected int 2, got %#v", v)
	}
}

func TestDivisionWidensWhenInexact(t *testing.T) {
	v, err := Arithmetic("/", IntValue{Val: 7}, IntValue{Val: 2})
	if err != nil {
		t.Fatalf("div: %v", err)
	}
	if fv, ok := v.(FloatValue); !ok || fv.Val != 3.5 {
		t.Fatalf("expected float 3.5, got %#v", v)
	}
}

func TestDivisionByZero(t *testing.T) {
	if _, err := Arithmetic("/", IntValue{Val: 1}, IntValue{Val: 0}); err == nil {
		t.Fatal("expected division by zero error")
	}
	if _, err := Arithmetic("%", IntValue{Val: 1}, IntValue{Val: 0}); err == nil {
		t.Fatal("expected modulo by zero error")
	}
}

func TestAddConcatenatesStrings(t *testing.T) {
	v, err := Add(StringValue{Val: "gold: "}, IntValue{Val: 7})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if sv, ok := v.(StringValue); !ok || sv.Val != "gold: 7" {
		t.Fatalf("expected \"gold: 7\", got %#v", v)
	}
}

func TestArithmeticRejectsNonNumbers(t *testing.T) {
	if _, err := Arithmetic("-", StringValue{Val: "a"}, IntValue{Val: 1}); err == nil {
		t.Fatal("expected error subtracting a string")
	}
}

func TestEqualCoercesNumerics(t *testing.T) {
	if !Equal(IntValue{Val: 2}, FloatValue{Val: 2.0}) {
		t.Fatal("expected 2 == 2.0")
	}
	if Equal(IntValue{Val: 2}, StringValue{Val: "2"}) {
		t.Fatal("expected 2 != \"2\"")
	}
	if !Equal(Null, NullValue{}) {
		t.Fatal("expected null == null")
	}
}

func TestCompare(t *testing.T) {
	cmp, err := Compare(IntValue{Val: 1}, FloatValue{Val: 1.5})
	if err != nil || cmp != -1 {
		t.Fatalf("expected -1, got %d (%v)", cmp, err)
	}
	cmp, err = Compare(StringValue{Val: "b"}, StringValue{Val: "a"})
	if err != nil || cmp != 1 {
		t.Fatalf("expected 1, got %d (%v)", cmp, err)
	}
	if _, err := Compare(StringValue{Val: "a"}, IntValue{Val: 1}); err == nil {
		t.Fatal("expected ordering error for mixed kinds")
	}
}

func TestTruthy(t *testing.T) {
	truthy := []Value{BoolValue{Val: true}, IntValue{Val: -1}, FloatValue{Val: 0.5}, StringValue{Val: "x"}}
	falsy := []Value{Null, BoolValue{}, IntValue{}, FloatValue{}, StringValue{}}
	for _, v := range truthy {
		if !Truthy(v) {
			t.Fatalf("expected %#v to be truthy", v)
		}
	}
	for _, v := range falsy {
		if Truthy(v) {
			t.Fatalf("expected %#v to be falsy", v)
		}
	}
}

func TestStringify(t *testing.T) {
	cases := []struct {
		v    Value
		want string
	}{
		{Null, ""},
		{BoolValue{Val: true}, "true"},
		{IntValue{Val: 42}, "42"},
		{FloatValue{Val: 2.5}, "2.5"},
		{FloatValue{Val: 3.0}, "3"},
		{StringValue{Val: "hi"}, "hi"},
	}
	for _, c := range cases {
		if got := Stringify(c.v); got != c.want {
			t.Fatalf("Stringify(%#v): expected %q, got %q", c.v, c.want, got)
		}
	}
}

func TestFromNativeIntegralFloats(t *testing.T) {
	if v, ok := FromNative(float64(3)).(IntValue); !ok || v.Val != 3 {
		t.Fatalf("expected IntValue 3, got %#v", FromNative(float64(3)))
	}
	if v, ok := FromNative(3.5).(FloatValue); !ok || v.Val != 3.5 {
		t.Fatalf("expected FloatValue 3.5, got %#v", FromNative(3.5))
	}
	if _, ok := FromNative(nil).(NullValue); !ok {
		t.Fatal("expected NullValue for nil")
	}
}

func TestStoreRoundTripNative(t *testing.T) {
	s := NewStore()
	s.SetVar("gold", IntValue{Val: 7})
	s.SetField("em", "name", StringValue{Val: "Emily"})

	restored := NewStore()
	restored.RestoreNative(s.VarsNative(), s.CharactersNative())

	if v, ok := restored.Var("gold"); !ok || v.(IntValue).Val != 7 {
		t.Fatalf("expected gold=7, got %#v", v)
	}
	if v, ok := restored.Field("em", "name"); !ok || v.(StringValue).Val != "Emily" {
		t.Fatalf("expected em.name=Emily, got %#v", v)
	}
}
