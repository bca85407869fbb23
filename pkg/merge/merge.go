// Package merge joins partial records from all data sources into unified
// country records.
//
// Identity and geography come from the registry and are never overwritten.
// Other sources are applied as overlays that only fill empty fields.
package merge

import (
	"fmt"
	"math"
	"time"

	"dario.cat/mergo"
	"github.com/gnames/factbook/pkg/config"
	"github.com/gnames/factbook/pkg/country"
	"github.com/gnames/factbook/pkg/pipeline"
)

// Input contains everything the merge needs for one build.
type Input struct {
	// Registry defines the universe of the build.
	Registry map[country.Code]country.RegistryPart

	Indicators map[country.Code]country.IndicatorPart
	Graph      map[country.Code]country.GraphPart
	Summaries  map[country.Code]string

	// Attributions credit sources in the records they contributed to.
	Attributions map[pipeline.SourceID]country.Attribution

	// Placeholder replaces a missing summary. If empty,
	// config.SummaryPlaceholder is used.
	Placeholder string

	Edition   string
	BuildID   string
	UpdatedAt time.Time
}

// Merge creates one record per registry code, in ascending code order.
// Codes that are present in other sources but not in the registry are
// ignored.
func Merge(in Input) ([]*country.Country, error) {
	placeholder := in.Placeholder
	if placeholder == "" {
		placeholder = config.SummaryPlaceholder
	}

	codes := country.SortedCodes(in.Registry)
	res := make([]*country.Country, 0, len(codes))
	for _, code := range codes {
		c, err := mergeOne(code, in, placeholder)
		if err != nil {
			return nil, err
		}
		res = append(res, c)
	}
	return res, nil
}

func mergeOne(
	code country.Code,
	in Input,
	placeholder string,
) (*country.Country, error) {
	reg := in.Registry[code]
	res := fromRegistry(code, reg)
	srcs := []pipeline.SourceID{pipeline.SourceRegistry}

	if ip, ok := in.Indicators[code]; ok {
		ov := fromIndicators(ip)
		if err := mergo.Merge(&res, ov); err != nil {
			return nil, fmt.Errorf("merge indicators of %s: %w", code, err)
		}
		if hasMetrics(ip) {
			srcs = append(srcs, pipeline.SourceIndicators)
		}
	}

	if gp, ok := in.Graph[code]; ok && !gp.IsEmpty() {
		ov := fromGraph(gp)
		if err := mergo.Merge(&res, ov); err != nil {
			return nil, fmt.Errorf("merge graph of %s: %w", code, err)
		}
		srcs = append(srcs, pipeline.SourceGraph)
	}

	if s := in.Summaries[code]; s != "" && s != placeholder {
		res.Summary = s
		srcs = append(srcs, pipeline.SourceSummary)
	}

	normalize(&res, placeholder)
	res.PopulationDensity = Density(res.Population, reg.Population, res.AreaKm2)

	res.Edition = in.Edition
	res.BuildID = in.BuildID
	res.UpdatedAt = in.UpdatedAt
	res.Sources = attributions(srcs, in.Attributions)
	return &res, nil
}

func fromRegistry(code country.Code, p country.RegistryPart) country.Country {
	return country.Country{
		Code:         code,
		NameCommon:   p.NameCommon,
		NameOfficial: p.NameOfficial,
		FlagURL:      p.FlagURL,
		FlagAlt:      p.FlagAlt,
		Region:       p.Region,
		Subregion:    p.Subregion,
		Capital:      p.Capital,
		AreaKm2:      p.AreaKm2,
		Landlocked:   p.Landlocked,
		Timezones:    p.Timezones,
		Currency:     p.Currency,
		Languages:    p.Languages,
		Demonym:      p.Demonym,
		InternetTLD:  p.InternetTLD,
		CallingCode:  p.CallingCode,
	}
}

func fromIndicators(p country.IndicatorPart) country.Country {
	var res country.Country
	for _, ind := range country.Indicators {
		*res.Metric(ind) = p.Get(ind)
	}
	return res
}

func fromGraph(p country.GraphPart) country.Country {
	return country.Country{
		GovernmentForms:      p.GovernmentForms,
		HeadOfState:          p.HeadOfState,
		HeadOfGovernment:     p.HeadOfGovernment,
		Legislature:          p.Legislature,
		IndependenceYear:     p.IndependenceYear,
		IndependenceFrom:     p.IndependenceFrom,
		AgriculturalProducts: p.AgriculturalProducts,
	}
}

func hasMetrics(p country.IndicatorPart) bool {
	for _, ind := range country.Indicators {
		if !p.Get(ind).IsNull() {
			return true
		}
	}
	return false
}

// normalize replaces missing lists with empty ones, so they are
// serialized as [] and not as null, and fixes half-populated metrics.
func normalize(c *country.Country, placeholder string) {
	for _, v := range []*[]string{
		&c.Timezones,
		&c.Languages,
		&c.InternetTLD,
		&c.GovernmentForms,
		&c.AgriculturalProducts,
	} {
		if *v == nil {
			*v = []string{}
		}
	}

	for _, ind := range country.Indicators {
		m := c.Metric(ind)
		*m = m.Normalize()
	}

	if c.Summary == "" {
		c.Summary = placeholder
	}
}

// Density calculates population per square kilometer rounded to one
// decimal place. A dated population figure is preferred over the raw one.
// It returns nil if the area is unknown or not positive, or if there is
// no population figure.
func Density(pop country.Metric, rawPop, area *float64) *float64 {
	if area == nil || *area <= 0 {
		return nil
	}

	var p float64
	switch {
	case !pop.IsNull():
		p = *pop.Value
	case rawPop != nil:
		p = *rawPop
	default:
		return nil
	}

	res := math.Round(p/(*area)*10) / 10
	return &res
}

func attributions(
	srcs []pipeline.SourceID,
	known map[pipeline.SourceID]country.Attribution,
) []country.Attribution {
	res := make([]country.Attribution, 0, len(srcs))
	for _, v := range srcs {
		if a, ok := known[v]; ok {
			res = append(res, a)
		}
	}
	return res
}
