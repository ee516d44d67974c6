package pipeline

import (
	"bizpulse/internal/dataset"
)

const unknownMonth = "Unknown"

// Derive fills the revenue and month-bucket columns. A revenue column
// already present in the upload is trusted and left unchanged; otherwise
// revenue = quantity × unit price. Either way, quantity and unit price must
// exist as columns or the run is terminal.
func (p *Pipeline) Derive(b *Batch) error {
	var missing []string
	if !b.HasQuantity {
		missing = append(missing, dataset.ColQuantity)
	}
	if !b.HasUnitPrice {
		missing = append(missing, dataset.ColUnitPrice)
	}
	if len(missing) > 0 {
		return &MissingColumnsError{Columns: missing}
	}

	if b.RevenueProvided {
		p.logger.Info("revenue column provided in upload, not recomputing")
	}

	for i := range b.Records {
		rec := &b.Records[i]

		if !b.RevenueProvided || !rec.revenueOK {
			rec.Revenue = rec.Quantity * rec.UnitPrice
		}

		if b.HasDate {
			rec.Month = rec.OrderDate.Format("2006-01")
		} else {
			rec.Month = unknownMonth
		}
	}
	return nil
}
