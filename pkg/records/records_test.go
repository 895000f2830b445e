package records

import "testing"

func TestIsNull(t *testing.T) {
	rec := Record{"a": "x", "b": nil, "c": "", "d": 0}

	tests := []struct {
		col  string
		want bool
	}{
		{"a", false},
		{"b", true},
		{"c", true}, // empty strings count as null
		{"d", false},
		{"missing", true},
	}
	for _, tt := range tests {
		if got := rec.IsNull(tt.col); got != tt.want {
			t.Errorf("IsNull(%q) = %v, want %v", tt.col, got, tt.want)
		}
	}
}

func TestFloat(t *testing.T) {
	rec := Record{
		"f": 1.5, "i": 42, "i64": int64(7), "s": "3.25",
		"bad": "abc", "null": nil, "b": true,
	}

	tests := []struct {
		col  string
		want float64
		ok   bool
	}{
		{"f", 1.5, true},
		{"i", 42, true},
		{"i64", 7, true},
		{"s", 3.25, true},
		{"bad", 0, false},
		{"null", 0, false},
		{"b", 0, false},
	}
	for _, tt := range tests {
		got, ok := rec.Float(tt.col)
		if got != tt.want || ok != tt.ok {
			t.Errorf("Float(%q) = %v,%v, want %v,%v", tt.col, got, ok, tt.want, tt.ok)
		}
	}
}

func TestString(t *testing.T) {
	rec := Record{"s": "hi", "i": 42, "null": nil}
	if s, ok := rec.String("s"); !ok || s != "hi" {
		t.Errorf("String(s) = %q,%v", s, ok)
	}
	if _, ok := rec.String("i"); ok {
		t.Error("String(i) should not coerce numbers")
	}
	if _, ok := rec.String("null"); ok {
		t.Error("String(null) should report not ok")
	}
}

func TestText(t *testing.T) {
	if got := Text(nil); got != "<null>" {
		t.Errorf("Text(nil) = %q", got)
	}
	if got := Text("x"); got != "x" {
		t.Errorf("Text(x) = %q", got)
	}
	if got := Text(42); got != "42" {
		t.Errorf("Text(42) = %q", got)
	}
}
