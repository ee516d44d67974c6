package pipeline

import (
	"strconv"
	"strings"
	"time"

	"bizpulse/internal/dataset"
)

// dateLayouts are tried in order when parsing the order-date column.
var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"01/02/2006",
	"2006/01/02",
	"2006.01.02",
	time.RFC3339,
	"2006-01",
}

// Record is one coerced sales transaction.
type Record struct {
	OrderDate  time.Time
	Month      string
	Product    string
	CustomerID string
	Region     string
	Category   string
	Quantity   float64
	UnitPrice  float64
	Revenue    float64

	// revenueOK marks a provided revenue value that parsed cleanly;
	// Derive recomputes the cell when it did not.
	revenueOK bool
}

// Batch is the output of normalization: the retained records plus which
// optional columns the upload carried.
type Batch struct {
	Records         []Record
	Dropped         int
	HasDate         bool
	HasRegion       bool
	HasCustomer     bool
	HasQuantity     bool
	HasUnitPrice    bool
	RevenueProvided bool
}

// Normalize coerces every row. Rows whose date, quantity, or unit price fail
// to parse are dropped; the count removed is reported as a warning rather
// than a fatal error. When the date column is absent entirely, records fall
// into a single "Unknown" month bucket instead of failing.
func (p *Pipeline) Normalize(ds *dataset.Dataset) *Batch {
	ds.NormalizeColumns()

	b := &Batch{
		HasDate:         ds.HasColumn(dataset.ColOrderDate),
		HasRegion:       ds.HasColumn(dataset.ColRegion),
		HasCustomer:     ds.HasColumn(dataset.ColCustomerID),
		HasQuantity:     ds.HasColumn(dataset.ColQuantity),
		HasUnitPrice:    ds.HasColumn(dataset.ColUnitPrice),
		RevenueProvided: ds.HasColumn(dataset.ColRevenue),
	}
	b.Records = make([]Record, 0, len(ds.Rows))

	for _, row := range ds.Rows {
		rec, err := b.coerceRow(row)
		if err != nil {
			b.Dropped++
			continue
		}
		b.Records = append(b.Records, rec)
	}

	if b.Dropped > 0 {
		p.logger.Warn("dropped rows with unparseable values",
			"dropped", b.Dropped,
			"retained", len(b.Records),
		)
	}
	return b
}

func (b *Batch) coerceRow(row dataset.Row) (Record, error) {
	rec := Record{
		Product:    strings.TrimSpace(row[dataset.ColProduct]),
		CustomerID: strings.TrimSpace(row[dataset.ColCustomerID]),
		Region:     strings.TrimSpace(row[dataset.ColRegion]),
		Category:   strings.TrimSpace(row[dataset.ColCategory]),
	}

	if b.HasDate {
		t, err := parseDate(row[dataset.ColOrderDate])
		if err != nil {
			return Record{}, &RowCoercionError{Field: dataset.ColOrderDate, Value: row[dataset.ColOrderDate]}
		}
		rec.OrderDate = t
	}

	if b.HasQuantity {
		q, err := parseNumeric(row[dataset.ColQuantity])
		if err != nil {
			return Record{}, &RowCoercionError{Field: dataset.ColQuantity, Value: row[dataset.ColQuantity]}
		}
		rec.Quantity = q
	}

	if b.HasUnitPrice {
		u, err := parseNumeric(row[dataset.ColUnitPrice])
		if err != nil {
			return Record{}, &RowCoercionError{Field: dataset.ColUnitPrice, Value: row[dataset.ColUnitPrice]}
		}
		rec.UnitPrice = u
	}

	if b.RevenueProvided {
		if rev, err := parseNumeric(row[dataset.ColRevenue]); err == nil {
			rec.Revenue = rev
			rec.revenueOK = true
		}
	}

	return rec, nil
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// parseNumeric strips currency symbols, thousands separators, and any other
// non-numeric characters before parsing.
func parseNumeric(s string) (float64, error) {
	var sb strings.Builder
	for _, r := range strings.TrimSpace(s) {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			sb.WriteRune(r)
		}
	}
	return strconv.ParseFloat(sb.String(), 64)
}
