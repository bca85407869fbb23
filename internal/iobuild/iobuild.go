// Package iobuild implements the build orchestrator. It drives a build
// through its states, fetches data sources, merges and ranks records,
// writes artifacts and reports what every source contributed.
package iobuild

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gnames/factbook/internal/iometrics"
	"github.com/gnames/factbook/pkg/config"
	"github.com/gnames/factbook/pkg/country"
	"github.com/gnames/factbook/pkg/merge"
	"github.com/gnames/factbook/pkg/pipeline"
	"github.com/gnames/factbook/pkg/rank"
	"github.com/gnames/gnuuid"
)

// Sources contains the data source adapters of a build.
type Sources struct {
	Registry   pipeline.RegistrySource
	Indicators pipeline.IndicatorSource
	Graph      pipeline.GraphSource
	Summary    pipeline.SummarySource
}

// Writer persists records of a build.
type Writer interface {
	Write(cs []*country.Country) error
}

type builder struct {
	cfg     *config.Config
	src     Sources
	writer  Writer
	metrics *iometrics.Metrics
	now     func() time.Time

	state  pipeline.State
	report *pipeline.Report
}

// Option configures the builder.
type Option func(*builder)

// OptMetrics sets the metrics collector of builds.
func OptMetrics(m *iometrics.Metrics) Option {
	return func(b *builder) {
		b.metrics = m
	}
}

// OptClock replaces the clock used for timestamps.
func OptClock(now func() time.Time) Option {
	return func(b *builder) {
		b.now = now
	}
}

// New creates a Builder.
func New(
	cfg *config.Config,
	src Sources,
	w Writer,
	opts ...Option,
) pipeline.Builder {
	res := &builder{
		cfg:    cfg,
		src:    src,
		writer: w,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(res)
	}
	return res
}

// Edition returns the configured edition label or generates one from
// the year of the build.
func Edition(cfg *config.Config, t time.Time) string {
	if cfg.Build.Edition != "" {
		return cfg.Build.Edition
	}
	return fmt.Sprintf("%d Edition", t.Year())
}

// Build implements pipeline.Builder.
func (b *builder) Build(ctx context.Context) (*pipeline.Report, error) {
	start := b.now().UTC()
	edition := Edition(b.cfg, start)
	b.state = pipeline.StateInit
	b.report = &pipeline.Report{
		ID:        gnuuid.New(edition + "|" + start.Format(time.RFC3339Nano)),
		Edition:   edition,
		StartedAt: start,
		State:     pipeline.StateInit,
	}
	slog.Info("Starting build",
		"id", b.report.ID.String(), "edition", edition)

	err := b.run(ctx)
	if err != nil {
		b.fail(err)
	}
	b.finish()
	return b.report, err
}

func (b *builder) run(ctx context.Context) error {
	if err := b.move(pipeline.StateFetchSources); err != nil {
		return err
	}
	data, err := b.fetch(ctx)
	if err != nil {
		return err
	}
	if err = ctx.Err(); err != nil {
		return CancelledError(err)
	}

	if err = b.move(pipeline.StateMerge); err != nil {
		return err
	}
	cs, err := merge.Merge(merge.Input{
		Registry:     data.registry,
		Indicators:   data.indicators,
		Graph:        data.graph,
		Summaries:    data.summaries,
		Attributions: b.attributions(),
		Edition:      b.report.Edition,
		BuildID:      b.report.ID.String(),
		UpdatedAt:    b.report.StartedAt,
	})
	if err != nil {
		return MergeError(err)
	}

	if err = b.move(pipeline.StateComputeDerived); err != nil {
		return err
	}
	rank.RealGDP(cs)

	if err = b.move(pipeline.StateWrite); err != nil {
		return err
	}
	if err = b.writer.Write(cs); err != nil {
		return err
	}
	b.report.Countries = len(cs)

	return b.move(pipeline.StateDone)
}

func (b *builder) move(next pipeline.State) error {
	if !b.state.CanMove(next) {
		return StateError(b.state, next, nil)
	}
	slog.Info("Build state", "from", b.state, "to", next)
	b.state = next
	b.report.State = next
	return nil
}

func (b *builder) fail(err error) {
	slog.Error("Build failed", "state", b.state, "error", err)
	if b.state.CanMove(pipeline.StateFatal) {
		b.state = pipeline.StateFatal
	}
	b.report.State = pipeline.StateFatal
}

func (b *builder) finish() {
	r := b.report
	r.FinishedAt = b.now().UTC()
	r.Degraded = len(r.DegradedSources()) > 0

	for _, v := range r.DegradedSources() {
		slog.Warn("Source degraded",
			"source", v.Source,
			"status", v.Status,
			"records", v.Records,
			"failures", v.Failures,
			"failure", v.Failure,
			"error", v.Error,
		)
	}

	if b.metrics != nil {
		b.metrics.ObserveReport(r)
		if path := b.cfg.MetricsFile; path != "" {
			if err := b.metrics.WriteFile(path); err != nil {
				slog.Warn("Cannot write metrics", "path", path, "error", err)
			}
		}
	}

	slog.Info("Build finished",
		"id", r.ID.String(),
		"state", r.State,
		"countries", r.Countries,
		"degraded", r.Degraded,
		"duration", r.FinishedAt.Sub(r.StartedAt).String(),
	)
	if !b.cfg.Quiet {
		PrintReport(r)
	}
}

func (b *builder) attributions() map[pipeline.SourceID]country.Attribution {
	res := make(map[pipeline.SourceID]country.Attribution)
	add := func(id pipeline.SourceID, src any) {
		if a, ok := src.(pipeline.Attributor); ok {
			res[id] = a.Attribution()
		}
	}
	add(pipeline.SourceRegistry, b.src.Registry)
	add(pipeline.SourceIndicators, b.src.Indicators)
	add(pipeline.SourceGraph, b.src.Graph)
	add(pipeline.SourceSummary, b.src.Summary)
	return res
}
