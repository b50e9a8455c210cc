package ingest

import (
	"errors"
	"fmt"
)

var (
	// ErrFetch marks every failure to obtain a filing document.
	ErrFetch = errors.New("document unavailable")
	// ErrNoDocument means the filing record names no primary document.
	ErrNoDocument = errors.New("no primary document")
	// ErrEmptyDocument means the fetch succeeded but returned nothing.
	ErrEmptyDocument = errors.New("empty document")
	// ErrTickerNotFound means the CIK directory has no entry for a ticker.
	ErrTickerNotFound = errors.New("ticker not found")
)

// FetchError describes a failed request. Status is zero for transport failures.
type FetchError struct {
	URL       string
	Accession string
	Status    int
	Err       error
}

func (e *FetchError) Error() string {
	target := e.URL
	if target == "" {
		target = e.Accession
	}
	switch {
	case e.Status != 0:
		return fmt.Sprintf("fetch %s: SEC returned status %d", target, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("fetch %s: %v", target, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", target, ErrFetch)
}

func (e *FetchError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrFetch}
	}
	return []error{ErrFetch, e.Err}
}
