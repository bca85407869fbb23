// Package pipeline defines contracts between the build orchestrator and
// data source adapters, the failure taxonomy, build states and the build
// report.
package pipeline

import (
	"context"

	"github.com/gnames/factbook/pkg/country"
)

// SourceID identifies one of the external data providers.
type SourceID string

const (
	SourceRegistry   SourceID = "registry"
	SourceIndicators SourceID = "indicators"
	SourceGraph      SourceID = "knowledge_graph"
	SourceSummary    SourceID = "summary"
)

// Sources lists all data sources in report order.
var Sources = []SourceID{
	SourceRegistry,
	SourceIndicators,
	SourceGraph,
	SourceSummary,
}

// Adapters follow the same contract: the returned map is never nil.
// On a total failure it is empty and the error explains why. On a partial
// failure it contains what was retrieved and the error lists what was not.
// Adapters do not decide whether a failure is fatal.

// RegistrySource provides identity and geography of countries. Its
// output, after the universe filter, is the authoritative set of
// countries of a build.
type RegistrySource interface {
	FetchRegistry(ctx context.Context) (map[country.Code]country.RegistryPart, error)
}

// IndicatorSource provides dated statistical indicators.
type IndicatorSource interface {
	FetchIndicators(ctx context.Context) (map[country.Code]country.IndicatorPart, error)
}

// GraphSource provides government and history fields from a knowledge
// graph.
type GraphSource interface {
	FetchGraph(ctx context.Context) (map[country.Code]country.GraphPart, error)
}

// SummarySource provides a free-text synopsis for a country display name.
// On failure it returns a placeholder text together with the error.
type SummarySource interface {
	FetchSummary(ctx context.Context, name string) (string, error)
}

// Attributor is implemented by sources that can credit themselves in
// the output records.
type Attributor interface {
	Attribution() country.Attribution
}

// Builder runs one complete build.
type Builder interface {
	// Build fetches, merges, ranks and writes all artifacts. The report
	// is returned also for a fatal failure.
	Build(ctx context.Context) (*Report, error)
}
