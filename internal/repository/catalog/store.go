// Package catalog loads the catalog table from its CSV source. The table is
// read once at startup and is immutable for the process lifetime; row order
// defines the integer identifier space shared with the vector indices.
package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/jewelux/gemdex/internal/domain"
	domcat "github.com/jewelux/gemdex/internal/domain/catalog"
)

// Required columns. Any other column must name a known attribute.
const (
	colPath        = "path"
	colCategory    = "category"
	colDescription = "description"
)

// Table is the loaded, immutable catalog.
type Table struct {
	items   []domcat.Item
	skipped int
}

// Load reads the catalog CSV. Rows that fail validation are skipped, counted
// and logged individually — a partially bad table still serves, but nothing
// is silently swallowed. Unknown non-required columns fail the load outright
// so schema drift is caught at startup.
func Load(path string, logger *zap.Logger) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read catalog header: %w", err)
	}

	cols, attrCols, err := mapHeader(header)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidSchema, err)
	}

	t := &Table{}
	for row := 0; ; row++ {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read catalog row %d: %w", row, err)
		}

		item, err := rowToItem(len(t.items), record, cols, attrCols)
		if err != nil {
			t.skipped++
			logger.Warn("Skipping catalog row", zap.Int("row", row), zap.Error(err))
			continue
		}
		t.items = append(t.items, item)
	}

	if len(t.items) == 0 {
		return nil, fmt.Errorf("%w: catalog %s has no usable rows", domain.ErrInvalidSchema, path)
	}

	logger.Info("Catalog loaded",
		zap.String("path", path),
		zap.Int("items", len(t.items)),
		zap.Int("skipped", t.skipped),
	)
	return t, nil
}

// Items returns all catalog rows in identifier order.
func (t *Table) Items() []domcat.Item { return t.items }

// Item returns the row with the given identifier.
func (t *Table) Item(id int) (*domcat.Item, bool) {
	if id < 0 || id >= len(t.items) {
		return nil, false
	}
	return &t.items[id], true
}

// Size returns the number of loaded rows.
func (t *Table) Size() int { return len(t.items) }

// Skipped returns how many source rows failed validation during load.
func (t *Table) Skipped() int { return t.skipped }

// Descriptions returns the description column in identifier order, the
// corpus for the lexical model.
func (t *Table) Descriptions() []string {
	out := make([]string, len(t.items))
	for i := range t.items {
		out[i] = t.items[i].Description()
	}
	return out
}

func mapHeader(header []string) (map[string]int, map[domcat.Attribute]int, error) {
	cols := make(map[string]int, len(header))
	attrCols := make(map[domcat.Attribute]int)
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(name))
		switch name {
		case colPath, colCategory, colDescription:
			cols[name] = i
		default:
			attr, err := domcat.ParseAttribute(name)
			if err != nil {
				return nil, nil, fmt.Errorf("column %d: %w", i, err)
			}
			attrCols[attr] = i
		}
	}
	for _, required := range []string{colPath, colCategory, colDescription} {
		if _, ok := cols[required]; !ok {
			return nil, nil, fmt.Errorf("missing required column %q", required)
		}
	}
	return cols, attrCols, nil
}

func rowToItem(id int, record []string, cols map[string]int, attrCols map[domcat.Attribute]int) (domcat.Item, error) {
	field := func(i int) string {
		if i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var attrs map[domcat.Attribute]string
	if len(attrCols) > 0 {
		attrs = make(map[domcat.Attribute]string, len(attrCols))
		for attr, i := range attrCols {
			if v := field(i); v != "" {
				attrs[attr] = v
			}
		}
	}

	return domcat.New(id, field(cols[colPath]), field(cols[colCategory]), field(cols[colDescription]), attrs)
}
