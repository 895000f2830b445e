package sqlds

import (
	"io"
	"testing"
)

// Factory-opened sources are released through io.Closer.
var _ io.Closer = (*Source)(nil)

func TestQueryFromTable(t *testing.T) {
	bracket := func(v string) string { return "[" + v + "]" }

	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{
			"plain table",
			Config{Table: "users"},
			"SELECT * FROM users",
		},
		{
			"qualified table is quoted part by part",
			Config{Table: "dbo.users", QuoteIdent: bracket},
			"SELECT * FROM [dbo].[users]",
		},
		{
			"column projection",
			Config{Table: "users", Columns: []string{"id", "email"}, QuoteIdent: bracket},
			"SELECT [id], [email] FROM [users]",
		},
		{
			"explicit query wins",
			Config{Table: "ignored", Query: "SELECT 1"},
			"SELECT 1",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(nil, tt.cfg)
			if got := s.query(); got != tt.want {
				t.Errorf("query() = %q, want %q", got, tt.want)
			}
		})
	}
}
