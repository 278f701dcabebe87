package survey

import "testing"

func TestCanonicalSortsByKey(t *testing.T) {
	p := NewParams().
		Set("store_id", String("045")).
		Set("order_id", String("123456"))

	want := "order_id=123456&store_id=045"
	if got := Canonical(p); got != want {
		t.Errorf("Canonical() = %q, want %q", got, want)
	}
}

func TestCanonicalOrderIndependent(t *testing.T) {
	a := NewParams().
		Set("store_id", String("045")).
		Set("order_id", String("123456")).
		Set("ts", String("2024-05-01T12:30:00Z"))
	b := NewParams().
		Set("ts", String("2024-05-01T12:30:00Z")).
		Set("order_id", String("123456")).
		Set("store_id", String("045"))

	if Canonical(a) != Canonical(b) {
		t.Errorf("insertion order leaked into canonical form: %q vs %q", Canonical(a), Canonical(b))
	}
}

func TestCanonicalEmpty(t *testing.T) {
	if got := Canonical(NewParams()); got != "" {
		t.Errorf("Canonical(empty) = %q, want empty string", got)
	}
	if got := Canonical(nil); got != "" {
		t.Errorf("Canonical(nil) = %q, want empty string", got)
	}
}

func TestCanonicalValueCoercion(t *testing.T) {
	tests := []struct {
		name  string
		value Value
		want  string
	}{
		{"string", String("abc"), "k=abc"},
		{"int", Int(42), "k=42"},
		{"float whole", Float(10), "k=10"},
		{"float fraction", Float(1.5), "k=1.5"},
		{"bool", Bool(true), "k=true"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewParams().Set("k", tt.value)
			if got := Canonical(p); got != tt.want {
				t.Errorf("Canonical() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParamsSetReplacesInPlace(t *testing.T) {
	p := NewParams().
		Set("store_id", String("045")).
		Set("order_id", String("123456")).
		Set("store_id", String("046"))

	if p.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", p.Len())
	}
	pairs := p.Pairs()
	if pairs[0].Key != "store_id" || pairs[0].Value.Text() != "046" {
		t.Errorf("Set did not replace in place: %+v", pairs)
	}
}

func TestParamsCloneIsIndependent(t *testing.T) {
	p := NewParams().Set("a", String("1"))
	c := p.Clone()
	c.Set("b", String("2"))

	if p.Len() != 1 {
		t.Errorf("mutating clone changed original, Len() = %d", p.Len())
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("clone lost original entry")
	}
}
