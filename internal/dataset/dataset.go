// Package dataset holds the in-memory tabular model for one uploaded file.
// A Dataset is owned by the single analysis run that produced it and is
// never shared across requests.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Canonical column names after normalization. Note that title-casing turns
// "Customer ID" into "Customer Id".
const (
	ColOrderDate  = "Order Date"
	ColProduct    = "Product"
	ColCustomerID = "Customer Id"
	ColQuantity   = "Quantity"
	ColUnitPrice  = "Unit Price"
	ColRegion     = "Region"
	ColCategory   = "Category"
	ColRevenue    = "Total Revenue"
)

// Row is one record keyed by column name. Values stay raw strings until the
// pipeline coerces them.
type Row map[string]string

// Dataset is an ordered sequence of rows plus the header in file order.
type Dataset struct {
	Columns []string
	Rows    []Row
}

// NormalizeName trims surrounding whitespace and title-cases a column name.
// It is idempotent.
func NormalizeName(name string) string {
	return cases.Title(language.English).String(strings.TrimSpace(name))
}

// NormalizeColumns rewrites every column name, and every row key, to its
// normalized form. Running it twice yields the same column set.
func (d *Dataset) NormalizeColumns() {
	renames := make(map[string]string, len(d.Columns))
	for i, col := range d.Columns {
		norm := NormalizeName(col)
		if norm != col {
			renames[col] = norm
		}
		d.Columns[i] = norm
	}
	if len(renames) == 0 {
		return
	}
	for _, row := range d.Rows {
		for old, norm := range renames {
			if v, ok := row[old]; ok {
				delete(row, old)
				row[norm] = v
			}
		}
	}
}

// HasColumn reports whether the dataset header contains the given column.
func (d *Dataset) HasColumn(name string) bool {
	for _, col := range d.Columns {
		if col == name {
			return true
		}
	}
	return false
}

// ReadCSV decodes a comma-separated file whose first row is the header.
// Short rows are tolerated; missing trailing cells stay absent from the row.
func ReadCSV(r io.Reader) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("csv: empty file")
	}
	if err != nil {
		return nil, fmt.Errorf("csv: read header: %w", err)
	}

	ds := &Dataset{Columns: make([]string, len(header))}
	copy(ds.Columns, header)

	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv: read row %d: %w", len(ds.Rows)+2, err)
		}
		row := make(Row, len(header))
		for i, cell := range record {
			if i >= len(header) {
				break
			}
			row[header[i]] = cell
		}
		ds.Rows = append(ds.Rows, row)
	}

	return ds, nil
}
