package pipeline

import (
	"strconv"
	"strings"
)

// Stage payloads arrive from shop-floor terminals that send counts as
// numbers, numeric strings, empty strings or nothing at all. Count and
// Quantity absorb all of those: anything that does not parse becomes zero
// so a half-filled form still produces a row.

// Count is an integer amount of boxes or sheets.
type Count int64

func (c *Count) UnmarshalJSON(data []byte) error {
	f, ok := coerceNumber(data)
	if !ok {
		*c = 0
		return nil
	}
	*c = Count(f)
	return nil
}

// Quantity is a fractional amount, used for merma (scrap).
type Quantity float64

func (q *Quantity) UnmarshalJSON(data []byte) error {
	f, ok := coerceNumber(data)
	if !ok {
		*q = 0
		return nil
	}
	*q = Quantity(f)
	return nil
}

func coerceNumber(data []byte) (float64, bool) {
	s := strings.TrimSpace(string(data))
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	if s == "" || s == "null" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
