package models

import (
	"errors"
	"fmt"
)

// ErrNoSymbols is returned by the registry build when the source dataset
// yields no usable symbols. Recoverable: callers report success with zero
// work, not an error.
var ErrNoSymbols = errors.New("no symbols found")

// SchemaError indicates a dataset is missing an expected shape (no data
// sources, or a required property absent from its rows). Fatal for the
// enclosing operation and reported distinctly from generic failures.
type SchemaError struct {
	Dataset string
	Detail  string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("record store schema error (dataset %s): %s", e.Dataset, e.Detail)
}

// InvalidTimezoneError indicates the caller supplied an unknown IANA
// timezone name.
type InvalidTimezoneError struct {
	Name string
}

func (e *InvalidTimezoneError) Error() string {
	return fmt.Sprintf("invalid timezone: %q", e.Name)
}
