package country

// Indicator is a key of a statistical indicator. Every indicator maps
// to one Metric field of Country.
type Indicator string

const (
	Population       Indicator = "population"
	PopulationGrowth Indicator = "population_growth_percent"
	UrbanPopulation  Indicator = "urban_population_percent"
	LifeExpectancy   Indicator = "life_expectancy_years"
	FertilityRate    Indicator = "fertility_rate"
	LiteracyRate     Indicator = "literacy_rate_percent"
	InfantMortality  Indicator = "infant_mortality_per_1000"
	GDP              Indicator = "gdp_usd"
	GDPPerCapita     Indicator = "gdp_per_capita_usd"
	GDPGrowth        Indicator = "gdp_growth_percent"
	RealGDP          Indicator = "real_gdp_usd"
	InflationCPI     Indicator = "inflation_cpi_percent"
	UnemploymentRate Indicator = "unemployment_percent"
)

// Indicators lists all indicators in the order they are fetched.
var Indicators = []Indicator{
	Population,
	PopulationGrowth,
	UrbanPopulation,
	LifeExpectancy,
	FertilityRate,
	LiteracyRate,
	InfantMortality,
	GDP,
	GDPPerCapita,
	GDPGrowth,
	RealGDP,
	InflationCPI,
	UnemploymentRate,
}

// RegistryPart holds identity and geography fields of one country as
// provided by the country registry. These fields are ground truth.
type RegistryPart struct {
	Code         Code
	NameCommon   string
	NameOfficial string
	Capital      string
	Region       string
	Subregion    *string
	AreaKm2      *float64
	Landlocked   bool
	Timezones    []string
	Currency     string
	Languages    []string
	FlagURL      string
	FlagAlt      string
	Demonym      *string
	InternetTLD  []string
	CallingCode  *string

	// Population is a raw population figure without an observation
	// year. It is used only when no dated figure is available.
	Population *float64

	UNMember bool
}

// IndicatorPart holds the most recent observation of every indicator
// known for a country. Missing keys mean no data.
type IndicatorPart map[Indicator]Metric

// Get returns the metric for an indicator or a null metric.
func (p IndicatorPart) Get(ind Indicator) Metric {
	if p == nil {
		return NullMetric()
	}
	m, ok := p[ind]
	if !ok {
		return NullMetric()
	}
	return m.Normalize()
}

// GraphPart holds government and history fields of a country from the
// knowledge graph.
type GraphPart struct {
	GovernmentForms      []string
	HeadOfState          *string
	HeadOfGovernment     *string
	Legislature          *string
	IndependenceYear     *int
	IndependenceFrom     *string
	AgriculturalProducts []string
}

// IsEmpty returns true if the part carries no data.
func (p GraphPart) IsEmpty() bool {
	return len(p.GovernmentForms) == 0 &&
		p.HeadOfState == nil &&
		p.HeadOfGovernment == nil &&
		p.Legislature == nil &&
		p.IndependenceYear == nil &&
		p.IndependenceFrom == nil &&
		len(p.AgriculturalProducts) == 0
}
