package pipeline

import (
	"fmt"
	"strings"
)

// MissingColumnsError reports required columns absent from an upload. It is
// terminal for the run: no summary tables are produced.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Columns, ", "))
}

// RowCoercionError reports a single record whose date or numeric fields
// failed to parse. It is recovered locally: the record is dropped and the
// run continues.
type RowCoercionError struct {
	Field string
	Value string
}

func (e *RowCoercionError) Error() string {
	return fmt.Sprintf("cannot coerce %s value %q", e.Field, e.Value)
}
