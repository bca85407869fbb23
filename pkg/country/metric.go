package country

// Metric is a statistical value paired with the year it was observed.
// Both fields are either set or nil.
type Metric struct {
	Value *float64 `json:"value"`
	Year  *int     `json:"year"`
}

// NewMetric creates a Metric observed in the given year.
func NewMetric(value float64, year int) Metric {
	return Metric{Value: &value, Year: &year}
}

// NullMetric creates a Metric for unavailable data.
func NullMetric() Metric {
	return Metric{}
}

// IsNull returns true if the metric carries no observation.
func (m Metric) IsNull() bool {
	return m.Value == nil
}

// Valid checks that value and year are either both set or both nil.
func (m Metric) Valid() bool {
	return (m.Value == nil) == (m.Year == nil)
}

// Normalize turns a half-populated Metric into a null one.
func (m Metric) Normalize() Metric {
	if !m.Valid() {
		return NullMetric()
	}
	return m
}

// Newer returns true if m was observed later than other. A non-null
// metric is newer than a null one.
func (m Metric) Newer(other Metric) bool {
	if m.IsNull() {
		return false
	}
	if other.IsNull() {
		return true
	}
	return *m.Year > *other.Year
}
