package value

import "testing"

func TestCompareCrossType(t *testing.T) {
	cases := []struct {
		a, b Value
		want int
	}{
		{Min, Max, -1},
		{Max, Min, 1},
		{Min, Null, -1},
		{Null, Number(0), -1},
		{Number(1), String("a"), -1},
		{String("z"), Bool(false), -1},
		{Bool(true), Max, -1},
		{Number(1), Number(1), 0},
		{Number(-1), Number(1), -1},
		{String("abc"), String("abd"), -1},
		{Bool(false), Bool(true), -1},
	}
	for _, c := range cases {
		if got := Compare(c.a, c.b); got != c.want {
			t.Errorf("Compare(%v, %v) = %d, want %d", c.a, c.b, got, c.want)
		}
	}
}

func TestCompareArray(t *testing.T) {
	a := Array([]Value{Number(1), Number(2)})
	b := Array([]Value{Number(1), Number(3)})
	if Compare(a, b) >= 0 {
		t.Errorf("expected a < b")
	}
	c := Array([]Value{Number(1)})
	if Compare(c, a) >= 0 {
		t.Errorf("expected shorter prefix array to sort first")
	}
}

func TestFromInterface(t *testing.T) {
	if v := FromInterface(nil); v.Kind() != KindNull {
		t.Errorf("nil should map to Null")
	}
	if v := FromInterface(3.0); v.Kind() != KindNumber || v.AsFloat() != 3.0 {
		t.Errorf("float64 should map to Number")
	}
	if v := FromInterface([]interface{}{1.0, "a"}); v.Kind() != KindArray || len(v.AsArray()) != 2 {
		t.Errorf("slice should map to Array")
	}
}

func TestEncodeOrderMatchesCompare(t *testing.T) {
	vals := []Value{Min, Null, Number(-5), Number(0), Number(5), String("a"), String("ab"), Bool(false), Bool(true), Max}
	for i := 0; i < len(vals); i++ {
		for j := i + 1; j < len(vals); j++ {
			a, b := Encode(vals[i]), Encode(vals[j])
			cmpVal := Compare(vals[i], vals[j])
			cmpEnc := compareBytes(a, b)
			if (cmpVal < 0) != (cmpEnc < 0) {
				t.Errorf("encode order mismatch for %v vs %v: value cmp %d, byte cmp %d", vals[i], vals[j], cmpVal, cmpEnc)
			}
		}
	}
}

func compareBytes(a, b []byte) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}
