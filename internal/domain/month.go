// internal/domain/month.go
package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// MonthNumber converts a month path parameter to 1..12. It accepts a
// number ("2") or an English month name in any letter case ("February",
// "march").
func MonthNumber(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		if n < 1 || n > 12 {
			return 0, fmt.Errorf("%w: month %d out of range", ErrInvalidInput, n)
		}
		return n, nil
	}
	for m := time.January; m <= time.December; m++ {
		if strings.EqualFold(s, m.String()) {
			return int(m), nil
		}
	}
	return 0, fmt.Errorf("%w: invalid month name %q", ErrInvalidInput, s)
}
