// Package csvds provides a CSV-file dataset source. The file is read once at
// open time and sliced into fixed-size partitions; headers are normalized to
// lowercase ASCII identifiers so rule specs can target columns without
// worrying about accents or stray whitespace in the source header.
package csvds

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/ysing58/dataquality/internal/dataset"
	"github.com/ysing58/dataquality/pkg/records"
)

// Config holds CSV source configuration.
type Config struct {
	Path      string
	Delimiter string // single character; default ","
	HasHeader bool   // when false, columns are named col1..colN
	// PartitionSize is the number of rows per partition.
	PartitionSize int
}

// Open reads the CSV file into an in-memory partitioned dataset. Empty fields
// become nil so NotNull rules see them as null.
func Open(cfg Config) (dataset.Dataset, error) {
	f, err := os.Open(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("csvds: open: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	if cfg.Delimiter != "" {
		r.Comma = rune(cfg.Delimiter[0])
	}
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("csvds: read %s: %w", cfg.Path, err)
	}
	if len(rows) == 0 {
		return dataset.NewMemory(), nil
	}

	var columns []string
	if cfg.HasHeader {
		for _, h := range rows[0] {
			columns = append(columns, NormalizeColumn(h))
		}
		rows = rows[1:]
	} else {
		for i := range rows[0] {
			columns = append(columns, fmt.Sprintf("col%d", i+1))
		}
	}

	recs := make([]records.Record, 0, len(rows))
	for _, row := range rows {
		rec := make(records.Record, len(columns))
		for i, col := range columns {
			if i >= len(row) || strings.TrimSpace(row[i]) == "" {
				rec[col] = nil
				continue
			}
			rec[col] = strings.TrimSpace(row[i])
		}
		recs = append(recs, rec)
	}

	size := cfg.PartitionSize
	if size <= 0 {
		size = dataset.DefaultPartitionSize
	}
	return dataset.Chunk(recs, size), nil
}

// NormalizeColumn converts arbitrary header text into a lowercase ASCII
// identifier:
//  1. lowercase
//  2. strip accents (NFD → remove Mn → NFC)
//  3. keep [a-z0-9_]; convert space/dash/dot to underscore; drop others
//  4. fallback to "col" if empty
func NormalizeColumn(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))

	// Decompose → remove nonspacing marks (accents) → recompose.
	t := transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		norm.NFC,
	)
	ascii, _, _ := transform.String(t, s)

	var b strings.Builder
	prevUnderscore := false
	for _, r := range ascii {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			prevUnderscore = false
		case r == '_' || r == ' ' || r == '-' || r == '.':
			if !prevUnderscore {
				b.WriteRune('_')
				prevUnderscore = true
			}
		}
	}
	out := strings.Trim(b.String(), "_")
	if out == "" {
		return "col"
	}
	return out
}

// init registers the "csv" source with the dataset factory.
func init() {
	dataset.Register("csv", func(_ context.Context, cfg dataset.Config) (dataset.Dataset, error) {
		return Open(Config{
			Path:          cfg.Path,
			Delimiter:     cfg.Delimiter,
			HasHeader:     cfg.HasHeader,
			PartitionSize: cfg.Rows(),
		})
	})
}
