package iobuild

import (
	"context"
	"log/slog"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/gnames/factbook/internal/ioindicators"
	"github.com/gnames/factbook/pkg/config"
	"github.com/gnames/factbook/pkg/country"
	"github.com/gnames/factbook/pkg/pipeline"
	"golang.org/x/sync/errgroup"
)

type fetched struct {
	registry   map[country.Code]country.RegistryPart
	indicators map[country.Code]country.IndicatorPart
	graph      map[country.Code]country.GraphPart
	summaries  map[country.Code]string
}

// fetch gets the universe from the registry first and then the rest of
// the sources concurrently. Only an empty universe is fatal.
func (b *builder) fetch(ctx context.Context) (fetched, error) {
	var res fetched

	start := time.Now()
	reg, err := b.src.Registry.FetchRegistry(ctx)
	b.addSource(pipeline.NewSourceReport(
		pipeline.SourceRegistry, len(reg), 0, err, time.Since(start),
	))
	if len(reg) == 0 {
		if err == nil {
			err = pipeline.ErrSchema
		}
		return res, UniverseError(err)
	}
	res.registry = reg

	var indRep, graphRep, sumRep pipeline.SourceReport

	// every goroutine owns its result, so no locking is needed
	var g errgroup.Group
	g.Go(func() error {
		start := time.Now()
		ind, err := b.src.Indicators.FetchIndicators(ctx)
		res.indicators = ind
		indRep = pipeline.NewSourceReport(
			pipeline.SourceIndicators, len(ind),
			ioindicators.Failures(err), err, time.Since(start),
		)
		return nil
	})
	g.Go(func() error {
		start := time.Now()
		gr, err := b.src.Graph.FetchGraph(ctx)
		res.graph = gr
		graphRep = pipeline.NewSourceReport(
			pipeline.SourceGraph, len(gr), 0, err, time.Since(start),
		)
		return nil
	})
	g.Go(func() error {
		start := time.Now()
		sums, ok, lastErr := b.fetchSummaries(ctx, reg)
		res.summaries = sums
		sumRep = pipeline.NewSourceReport(
			pipeline.SourceSummary, ok, len(reg)-ok, lastErr, time.Since(start),
		)
		return nil
	})
	_ = g.Wait()

	b.addSource(indRep)
	b.addSource(graphRep)
	b.addSource(sumRep)
	return res, nil
}

func (b *builder) addSource(r pipeline.SourceReport) {
	b.report.Sources = append(b.report.Sources, r)
	slog.Info("Fetched source",
		"source", r.Source,
		"status", r.Status,
		"records", r.Records,
		"duration", r.Duration.String(),
	)
}

type summarySlot struct {
	text string
	err  error
}

// fetchSummaries calls the summary source once per country with bounded
// concurrency. A failure of one country does not affect others. It
// returns summaries, the number of successful calls and the last error.
func (b *builder) fetchSummaries(
	ctx context.Context,
	reg map[country.Code]country.RegistryPart,
) (map[country.Code]string, int, error) {
	codes := country.SortedCodes(reg)
	slots := make([]summarySlot, len(codes))

	var bar *pb.ProgressBar
	if !b.cfg.Quiet {
		bar = pb.Full.Start(len(codes))
		bar.Set("prefix", "Fetching summaries: ")
		bar.Set(pb.CleanOnFinish, true)
	}

	var g errgroup.Group
	g.SetLimit(max(b.cfg.Summary.Concurrency, 1))
	for i, code := range codes {
		g.Go(func() error {
			text, err := b.src.Summary.FetchSummary(ctx, reg[code].NameCommon)
			if err != nil {
				slog.Debug("No summary", "code", code, "error", err)
				text = config.SummaryPlaceholder
			}
			slots[i] = summarySlot{text: text, err: err}
			if bar != nil {
				bar.Increment()
			}
			return nil
		})
	}
	_ = g.Wait()
	if bar != nil {
		bar.Finish()
	}

	res := make(map[country.Code]string, len(codes))
	var ok int
	var lastErr error
	for i, code := range codes {
		res[code] = slots[i].text
		if slots[i].err != nil {
			lastErr = slots[i].err
			continue
		}
		ok++
	}
	return res, ok, lastErr
}
