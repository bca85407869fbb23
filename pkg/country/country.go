package country

import "time"

// Country is the unified record of one country. It is the join of all
// partial records plus computed fields and build metadata. It is
// serialized as one detail file per country.
type Country struct {
	Code         Code     `json:"code"`
	NameCommon   string   `json:"name_common"`
	NameOfficial string   `json:"name_official"`
	FlagURL      string   `json:"flag_url"`
	FlagAlt      string   `json:"flag_alt"`
	Region       string   `json:"region"`
	Subregion    *string  `json:"subregion"`
	Capital      string   `json:"capital"`
	AreaKm2      *float64 `json:"area_km2"`
	Landlocked   bool     `json:"landlocked"`
	Timezones    []string `json:"timezones"`
	Currency     string   `json:"currency"`
	Languages    []string `json:"languages"`
	Demonym      *string  `json:"demonym"`
	InternetTLD  []string `json:"internet_tld"`
	CallingCode  *string  `json:"calling_code"`

	Population        Metric   `json:"population"`
	PopulationDensity *float64 `json:"population_density_per_km2"`
	PopulationGrowth  Metric   `json:"population_growth_percent"`
	UrbanPopulation   Metric   `json:"urban_population_percent"`
	LifeExpectancy    Metric   `json:"life_expectancy_years"`
	FertilityRate     Metric   `json:"fertility_rate"`
	LiteracyRate      Metric   `json:"literacy_rate_percent"`
	InfantMortality   Metric   `json:"infant_mortality_per_1000"`
	GDP               Metric   `json:"gdp_usd"`
	GDPPerCapita      Metric   `json:"gdp_per_capita_usd"`
	GDPGrowth         Metric   `json:"gdp_growth_percent"`
	RealGDP           Metric   `json:"real_gdp_usd"`
	RealGDPRank       *int     `json:"real_gdp_rank"`
	InflationCPI      Metric   `json:"inflation_cpi_percent"`
	UnemploymentRate  Metric   `json:"unemployment_percent"`

	GovernmentForms      []string `json:"government_forms"`
	HeadOfState          *string  `json:"head_of_state"`
	HeadOfGovernment     *string  `json:"head_of_government"`
	Legislature          *string  `json:"legislature"`
	IndependenceYear     *int     `json:"independence_year"`
	IndependenceFrom     *string  `json:"independence_from"`
	AgriculturalProducts []string `json:"agriculture_products"`

	Summary string `json:"summary"`

	Edition   string        `json:"edition"`
	BuildID   string        `json:"build_id"`
	UpdatedAt time.Time     `json:"updated_at"`
	Sources   []Attribution `json:"sources"`
}

// Attribution credits a data source used for a record.
type Attribution struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// IndexEntry is a lightweight projection of Country used for
// listing and search.
type IndexEntry struct {
	Code       Code   `json:"code"`
	NameCommon string `json:"name_common"`
	FlagURL    string `json:"flag_url"`
	Region     string `json:"region"`
}

// IndexEntry creates the listing projection of the record.
func (c *Country) IndexEntry() IndexEntry {
	return IndexEntry{
		Code:       c.Code,
		NameCommon: c.NameCommon,
		FlagURL:    c.FlagURL,
		Region:     c.Region,
	}
}

// Metric returns a pointer to the Metric field that corresponds to
// the indicator, or nil for an unknown indicator.
func (c *Country) Metric(ind Indicator) *Metric {
	switch ind {
	case Population:
		return &c.Population
	case PopulationGrowth:
		return &c.PopulationGrowth
	case UrbanPopulation:
		return &c.UrbanPopulation
	case LifeExpectancy:
		return &c.LifeExpectancy
	case FertilityRate:
		return &c.FertilityRate
	case LiteracyRate:
		return &c.LiteracyRate
	case InfantMortality:
		return &c.InfantMortality
	case GDP:
		return &c.GDP
	case GDPPerCapita:
		return &c.GDPPerCapita
	case GDPGrowth:
		return &c.GDPGrowth
	case RealGDP:
		return &c.RealGDP
	case InflationCPI:
		return &c.InflationCPI
	case UnemploymentRate:
		return &c.UnemploymentRate
	}
	return nil
}

// Metrics returns all indicator metrics of the record keyed by indicator.
func (c *Country) Metrics() map[Indicator]Metric {
	res := make(map[Indicator]Metric, len(Indicators))
	for _, ind := range Indicators {
		res[ind] = *c.Metric(ind)
	}
	return res
}
