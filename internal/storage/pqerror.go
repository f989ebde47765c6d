package storage

import (
	"errors"

	"github.com/lib/pq"
)

// pqErrorCode extracts the SQLSTATE code from err if it wraps a
// *pq.Error, or "" otherwise.
func pqErrorCode(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}
