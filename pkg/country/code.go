// Package country contains the data model of factbook: country codes,
// dated metrics, partial records contributed by every data source and
// the unified per-country record written to disk.
//
// The package is pure: no I/O, no network, no logging.
package country

import (
	"fmt"
	"slices"
	"strings"
)

// Code is an ISO 3166-1 alpha-3 country code in upper case.
// It is the join key across all data sources.
type Code string

// NewCode normalizes s to upper case and validates it.
func NewCode(s string) (Code, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) != 3 {
		return "", fmt.Errorf("country code '%s' must have 3 letters", s)
	}
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return "", fmt.Errorf("country code '%s' must contain only letters", s)
		}
	}
	return Code(s), nil
}

// String implements fmt.Stringer.
func (c Code) String() string {
	return string(c)
}

// SortedCodes returns keys of a map keyed by Code in ascending order.
func SortedCodes[T any](m map[Code]T) []Code {
	res := make([]Code, 0, len(m))
	for k := range m {
		res = append(res, k)
	}
	slices.Sort(res)
	return res
}
