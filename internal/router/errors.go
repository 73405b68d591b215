package router

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError reports a malformed query before any source is
// contacted.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("[VALIDATION_ERROR] %s: %s", e.Field, e.Message)
}

// NoDataFoundError means every source answered cleanly but none had
// rows for the player.
type NoDataFoundError struct {
	Player string
	Season int
	Tried  []string
}

func (e *NoDataFoundError) Error() string {
	return fmt.Sprintf("[NO_DATA_FOUND] no statistics for %q season %d (tried: %s)",
		e.Player, e.Season, strings.Join(e.Tried, ", "))
}

// DataRetrievalFailedError means at least one source failed while the
// fallback chain was exhausted, so absence of data cannot be trusted.
type DataRetrievalFailedError struct {
	Player string
	Season int
	Tried  []string
	Causes []error
}

func (e *DataRetrievalFailedError) Error() string {
	msgs := make([]string, 0, len(e.Causes))
	for _, c := range e.Causes {
		msgs = append(msgs, c.Error())
	}
	return fmt.Sprintf("[DATA_RETRIEVAL_FAILED] could not retrieve statistics for %q season %d (tried: %s): %s",
		e.Player, e.Season, strings.Join(e.Tried, ", "), strings.Join(msgs, "; "))
}

func (e *DataRetrievalFailedError) Unwrap() []error { return e.Causes }

// IsValidation reports whether err is a query validation failure.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsNoDataFound reports whether err means the sources were reachable
// but empty.
func IsNoDataFound(err error) bool {
	var n *NoDataFoundError
	return errors.As(err, &n)
}

// IsDataRetrievalFailed reports whether err hides a source failure.
func IsDataRetrievalFailed(err error) bool {
	var d *DataRetrievalFailedError
	return errors.As(err, &d)
}
