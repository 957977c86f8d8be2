package catalog

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrInvalidInput  = errors.New("invalid input")
	// ErrNoFilter is matched by a ConfigurationError raised because a search
	// carried no usable criterion.
	ErrNoFilter = errors.New("at least one filter criterion required")
)

// ConfigurationError rejects a search before any store call is made.
type ConfigurationError struct {
	Reason      string
	noCriterion bool
}

func NoFilterError() *ConfigurationError {
	return &ConfigurationError{Reason: ErrNoFilter.Error(), noCriterion: true}
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Reason
}

func (e *ConfigurationError) Is(target error) bool {
	return (e.noCriterion && target == ErrNoFilter) || target == ErrInvalidInput
}

// IndexQueryError is one failed secondary index query. The filter engine
// logs and drops these.
type IndexQueryError struct {
	Index     string
	Condition string
	Err       error
}

func (e *IndexQueryError) Error() string {
	return fmt.Sprintf("query index %s (%s): %v", e.Index, e.Condition, e.Err)
}

func (e *IndexQueryError) Unwrap() error {
	return e.Err
}

// HydrationError is a failed batch read. It fails the whole search.
type HydrationError struct {
	Batch int
	Size  int
	Err   error
}

func (e *HydrationError) Error() string {
	return fmt.Sprintf("hydrate batch %d (%d ids): %v", e.Batch, e.Size, e.Err)
}

func (e *HydrationError) Unwrap() error {
	return e.Err
}

type NotFoundError struct {
	SKU string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("product %q not found", e.SKU)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

type AlreadyExistsError struct {
	SKU string
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("product %q already exists", e.SKU)
}

func (e *AlreadyExistsError) Is(target error) bool {
	return target == ErrAlreadyExists
}
