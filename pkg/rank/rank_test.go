package rank_test

import (
	"math/rand/v2"
	"testing"

	"github.com/gnames/factbook/pkg/country"
	"github.com/gnames/factbook/pkg/rank"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withGDP(code country.Code, gdp *float64) *country.Country {
	c := &country.Country{Code: code}
	if gdp != nil {
		c.RealGDP = country.NewMetric(*gdp, 2023)
	}
	return c
}

func gdp(v float64) *float64 {
	return &v
}

func ranks(cs []*country.Country) map[country.Code]int {
	res := make(map[country.Code]int, len(cs))
	for _, c := range cs {
		res[c.Code] = *c.RealGDPRank
	}
	return res
}

func TestRealGDP(t *testing.T) {
	cs := []*country.Country{
		withGDP("AAA", gdp(500)),
		withGDP("BBB", nil),
		withGDP("CCC", gdp(1200)),
	}
	rank.RealGDP(cs)
	assert.Equal(t, map[country.Code]int{"CCC": 1, "AAA": 2, "BBB": 3}, ranks(cs))

	// input order is preserved
	assert.Equal(t, country.Code("AAA"), cs[0].Code)
}

func TestRealGDPTies(t *testing.T) {
	cs := []*country.Country{
		withGDP("ZZZ", gdp(100)),
		withGDP("MMM", nil),
		withGDP("AAA", gdp(100)),
		withGDP("BBB", nil),
		withGDP("QQQ", gdp(300)),
	}
	rank.RealGDP(cs)
	assert.Equal(t, map[country.Code]int{
		"QQQ": 1, "AAA": 2, "ZZZ": 3, "BBB": 4, "MMM": 5,
	}, ranks(cs))
}

func TestRealGDPHalfMetricIsNull(t *testing.T) {
	cs := []*country.Country{
		{Code: "AAA", RealGDP: country.Metric{Value: gdp(1e12)}},
		withGDP("BBB", gdp(1)),
	}
	rank.RealGDP(cs)
	assert.Equal(t, map[country.Code]int{"BBB": 1, "AAA": 2}, ranks(cs))
}

func TestRealGDPIdempotent(t *testing.T) {
	var cs []*country.Country
	for i := range 50 {
		code := country.Code([]byte{'A' + byte(i/26), 'A' + byte(i%26), 'X'})
		var v *float64
		if i%7 != 0 {
			v = gdp(float64(i % 11))
		}
		cs = append(cs, withGDP(code, v))
	}

	rank.RealGDP(cs)
	first := ranks(cs)

	rank.RealGDP(cs)
	assert.Equal(t, first, ranks(cs))

	shuffled := make([]*country.Country, len(cs))
	copy(shuffled, cs)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	rank.RealGDP(shuffled)
	assert.Equal(t, first, ranks(shuffled))

	// ranks are a bijection onto 1..N
	seen := make(map[int]bool)
	for _, r := range first {
		require.GreaterOrEqual(t, r, 1)
		require.LessOrEqual(t, r, len(cs))
		seen[r] = true
	}
	assert.Len(t, seen, len(cs))
}

func TestAssignEmpty(t *testing.T) {
	var cs []*country.Country
	assert.NotPanics(t, func() { rank.RealGDP(cs) })
}
