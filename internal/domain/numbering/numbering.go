// Package numbering renders and parses budget sequential numbers ("2026-007").
//
// Numbers are reserved by the repositories inside the transaction that
// inserts the budget; this package only knows the textual format.
package numbering

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"marcenaria_mdf/internal/domain/errs"
)

var ErrInvalidNumber = fmt.Errorf("%w: invalid sequential number", errs.ErrValidation)

// Format renders year and seq as YYYY-NNN. Sequences above 999 keep all their digits.
func Format(year, seq int) string {
	return fmt.Sprintf("%d-%03d", year, seq)
}

// Parse is the inverse of Format.
func Parse(s string) (year, seq int, err error) {
	y, n, ok := strings.Cut(strings.TrimSpace(s), "-")
	if !ok || len(y) != 4 || len(n) < 3 {
		return 0, 0, ErrInvalidNumber
	}
	year, err = strconv.Atoi(y)
	if err != nil {
		return 0, 0, ErrInvalidNumber
	}
	seq, err = strconv.Atoi(n)
	if err != nil || seq < 1 {
		return 0, 0, ErrInvalidNumber
	}
	return year, seq, nil
}

// YearOf returns the numbering year for a creation instant in loc.
func YearOf(t time.Time, loc *time.Location) int {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Year()
}
