// Package rank computes ordinal rankings of countries by a metric.
package rank

import (
	"cmp"
	"slices"

	"github.com/gnames/factbook/pkg/country"
)

// Assign ranks items by the value returned by key in descending order.
// Items without a value go last. Ties and items without a value are
// ordered by id in ascending order. The rank is a 1-based position and
// is passed to set for every item.
//
// The result does not depend on the order of items, so running Assign
// again on already ranked items gives the same ranks.
func Assign[T any](
	items []T,
	key func(T) *float64,
	id func(T) string,
	set func(T, int),
) {
	sorted := slices.Clone(items)
	slices.SortFunc(sorted, func(a, b T) int {
		ka, kb := key(a), key(b)
		switch {
		case ka == nil && kb == nil:
		case ka == nil:
			return 1
		case kb == nil:
			return -1
		case *ka != *kb:
			return cmp.Compare(*kb, *ka)
		}
		return cmp.Compare(id(a), id(b))
	})

	for i, v := range sorted {
		set(v, i+1)
	}
}

// RealGDP sets real_gdp_rank of every country.
func RealGDP(cs []*country.Country) {
	Assign(cs,
		func(c *country.Country) *float64 { return c.RealGDP.Normalize().Value },
		func(c *country.Country) string { return c.Code.String() },
		func(c *country.Country, r int) { c.RealGDPRank = &r },
	)
}
