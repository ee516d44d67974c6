package pipeline

import "bizpulse/internal/dataset"

// RequiredColumns is the fixed set an upload must contain, in canonical
// (normalized) form.
var RequiredColumns = []string{
	dataset.ColOrderDate,
	dataset.ColProduct,
	dataset.ColCustomerID,
	dataset.ColQuantity,
	dataset.ColUnitPrice,
}

// Validate checks that every required column is present. Column names are
// compared in normalized form so validation does not depend on whether
// NormalizeColumns already ran. No side effects.
func (p *Pipeline) Validate(ds *dataset.Dataset) error {
	present := make(map[string]bool, len(ds.Columns))
	for _, col := range ds.Columns {
		present[dataset.NormalizeName(col)] = true
	}

	var missing []string
	for _, col := range RequiredColumns {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return &MissingColumnsError{Columns: missing}
	}
	return nil
}
