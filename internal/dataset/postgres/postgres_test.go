package postgres

import (
	"io"
	"testing"
)

// Factory-opened sources are released through io.Closer.
var _ io.Closer = (*Source)(nil)

func TestQueryBuilding(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{
			"qualified table",
			Config{Table: "public.customers"},
			`SELECT * FROM "public"."customers"`,
		},
		{
			"column projection with quote escaping",
			Config{Table: "t", Columns: []string{"a", `b"c`}},
			`SELECT "a", "b""c" FROM "t"`,
		},
		{
			"explicit query wins",
			Config{Table: "ignored", Query: "SELECT 1"},
			"SELECT 1",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Source{cfg: tt.cfg}
			if got := s.query(); got != tt.want {
				t.Errorf("query() = %q, want %q", got, tt.want)
			}
		})
	}
}
