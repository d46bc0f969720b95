// Package validation holds the pure input validators. Each validator is an
// ordered list of (predicate, field, message) rules; every rule is
// evaluated independently and failures are collected, never raised.
package validation

import (
	"time"

	"github.com/vehicare/vehicare-api/internal/models"
)

type rule struct {
	field   string
	message string
	ok      func() bool
}

func evaluate(rules []rule) []models.FieldError {
	var violations []models.FieldError
	for _, r := range rules {
		if !r.ok() {
			violations = append(violations, models.FieldError{Field: r.field, Message: r.message})
		}
	}
	return violations
}

// startOfDay truncates a timestamp to its calendar date.
func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
