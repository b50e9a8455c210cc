package tables

import (
	"errors"
	"fmt"
)

var (
	// ErrStructure is the umbrella for every "expected layout not found" failure.
	ErrStructure = errors.New("statement structure not found")

	ErrNoHeading  = errors.New("heading not found")
	ErrNoTable    = errors.New("no table follows heading")
	ErrNoDateRow  = errors.New("no Date row")
	ErrEmptyTable = errors.New("table has no rows")
)

// StructureError reports a missing heading, table or Date row.
// It matches both ErrStructure and the specific cause under errors.Is.
type StructureError struct {
	Heading string
	Err     error
}

func (e *StructureError) Error() string {
	if e.Heading == "" {
		return fmt.Sprintf("%v: %v", ErrStructure, e.Err)
	}
	return fmt.Sprintf("%v: %q: %v", ErrStructure, e.Heading, e.Err)
}

func (e *StructureError) Unwrap() []error {
	return []error{ErrStructure, e.Err}
}

func structureError(heading string, cause error) error {
	return &StructureError{Heading: heading, Err: cause}
}
