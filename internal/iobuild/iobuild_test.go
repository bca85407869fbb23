package iobuild_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gnames/factbook/internal/ioartifact"
	"github.com/gnames/factbook/internal/iobuild"
	"github.com/gnames/factbook/internal/iometrics"
	"github.com/gnames/factbook/pkg/config"
	"github.com/gnames/factbook/pkg/country"
	"github.com/gnames/factbook/pkg/errcode"
	"github.com/gnames/factbook/pkg/pipeline"
	"github.com/gnames/gn"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const outDir = "/data"

func ptr[T any](v T) *T {
	return &v
}

type fakeRegistry struct {
	data map[country.Code]country.RegistryPart
	err  error
}

func (f fakeRegistry) FetchRegistry(
	context.Context,
) (map[country.Code]country.RegistryPart, error) {
	if f.data == nil {
		return map[country.Code]country.RegistryPart{}, f.err
	}
	return f.data, f.err
}

func (f fakeRegistry) Attribution() country.Attribution {
	return country.Attribution{Label: "Registry", URL: "https://registry.test"}
}

type fakeIndicators struct {
	data map[country.Code]country.IndicatorPart
	err  error
}

func (f fakeIndicators) FetchIndicators(
	context.Context,
) (map[country.Code]country.IndicatorPart, error) {
	if f.data == nil {
		return map[country.Code]country.IndicatorPart{}, f.err
	}
	return f.data, f.err
}

type fakeGraph struct {
	data map[country.Code]country.GraphPart
	err  error
}

func (f fakeGraph) FetchGraph(
	context.Context,
) (map[country.Code]country.GraphPart, error) {
	if f.data == nil {
		return map[country.Code]country.GraphPart{}, f.err
	}
	return f.data, f.err
}

type fakeSummary struct {
	calls    atomic.Int32
	inFlight atomic.Int32
	maxSeen  atomic.Int32
	timeout  map[string]bool
}

func (f *fakeSummary) FetchSummary(
	ctx context.Context,
	name string,
) (string, error) {
	f.calls.Add(1)
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		m := f.maxSeen.Load()
		if n <= m || f.maxSeen.CompareAndSwap(m, n) {
			break
		}
	}
	time.Sleep(2 * time.Millisecond)

	if f.timeout[name] {
		return config.SummaryPlaceholder,
			fmt.Errorf("summary of %s: %w", name, context.DeadlineExceeded)
	}
	return name + " is a country.", nil
}

type failingWriter struct{}

func (failingWriter) Write([]*country.Country) error {
	return ioartifact.WriteError("/data/index.json", errors.New("disk full"))
}

func registry() map[country.Code]country.RegistryPart {
	return map[country.Code]country.RegistryPart{
		"AAA": {Code: "AAA", NameCommon: "Alpha", AreaKm2: ptr(100.0)},
		"BBB": {Code: "BBB", NameCommon: "Beta", AreaKm2: ptr(0.0)},
		"CCC": {Code: "CCC", NameCommon: "Gamma", AreaKm2: ptr(50.0)},
		"ZZZ": {Code: "ZZZ", NameCommon: "Zeta", AreaKm2: ptr(10.0)},
	}
}

func indicators() map[country.Code]country.IndicatorPart {
	return map[country.Code]country.IndicatorPart{
		"AAA": {
			country.RealGDP:    country.NewMetric(500, 2023),
			country.Population: country.NewMetric(1000, 2023),
		},
		"BBB": {country.Population: country.NewMetric(1000, 2023)},
		"CCC": {country.RealGDP: country.NewMetric(1200, 2023)},
	}
}

func testConfig() *config.Config {
	cfg := config.New()
	cfg.Update([]config.Option{
		config.OptQuiet(true),
		config.OptSummaryConcurrency(2),
		config.OptBuildEdition("Test Edition"),
	})
	return cfg
}

func clock() func() time.Time {
	t := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func TestBuild(t *testing.T) {
	fs := afero.NewMemMapFs()
	sum := &fakeSummary{timeout: map[string]bool{"Zeta": true}}
	src := iobuild.Sources{
		Registry:   fakeRegistry{data: registry()},
		Indicators: fakeIndicators{data: indicators()},
		Graph:      fakeGraph{},
		Summary:    sum,
	}
	m := iometrics.New()
	b := iobuild.New(testConfig(), src, ioartifact.NewWriter(fs, outDir),
		iobuild.OptMetrics(m), iobuild.OptClock(clock()))

	r, err := b.Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, pipeline.StateDone, r.State)
	assert.Equal(t, 4, r.Countries)
	assert.Equal(t, "Test Edition", r.Edition)
	assert.True(t, r.Degraded)
	assert.Equal(t, int32(4), sum.calls.Load())
	assert.LessOrEqual(t, sum.maxSeen.Load(), int32(2))

	s, ok := r.Source(pipeline.SourceSummary)
	require.True(t, ok)
	assert.Equal(t, pipeline.StatusDegraded, s.Status)
	assert.Equal(t, 3, s.Records)
	assert.Equal(t, 1, s.Failures)
	assert.Equal(t, pipeline.FailureTransport, s.Failure)

	s, ok = r.Source(pipeline.SourceGraph)
	require.True(t, ok)
	assert.Equal(t, pipeline.StatusUnavailable, s.Status)

	rd := ioartifact.NewReader(fs, outDir)
	codes, err := rd.Index()
	require.NoError(t, err)
	assert.Equal(t, []country.Code{"AAA", "BBB", "CCC", "ZZZ"}, codes)

	cs, err := rd.All()
	require.NoError(t, err)
	byCode := make(map[country.Code]*country.Country)
	for _, c := range cs {
		byCode[c.Code] = c
		assert.Equal(t, r.ID.String(), c.BuildID)
		assert.Equal(t, "Test Edition", c.Edition)
		assert.Equal(t, []string{}, c.GovernmentForms)
		assert.Nil(t, c.HeadOfState)
	}

	assert.Equal(t, config.SummaryPlaceholder, byCode["ZZZ"].Summary)
	assert.Equal(t, "Alpha is a country.", byCode["AAA"].Summary)

	assert.Equal(t, 10.0, *byCode["AAA"].PopulationDensity)
	assert.Nil(t, byCode["BBB"].PopulationDensity)

	assert.Equal(t, 1, *byCode["CCC"].RealGDPRank)
	assert.Equal(t, 2, *byCode["AAA"].RealGDPRank)
	assert.Equal(t, 3, *byCode["BBB"].RealGDPRank)
	assert.Equal(t, 4, *byCode["ZZZ"].RealGDPRank)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Builds.WithLabelValues("done")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.Countries))
	assert.Equal(t, 1.0, testutil.ToFloat64(
		m.SourceStatus.WithLabelValues("knowledge_graph", "unavailable")))
	assert.Equal(t, 0.0, testutil.ToFloat64(
		m.SourceStatus.WithLabelValues("knowledge_graph", "ok")))
}

func TestBuildIDIsDeterministic(t *testing.T) {
	build := func() *pipeline.Report {
		src := iobuild.Sources{
			Registry:   fakeRegistry{data: registry()},
			Indicators: fakeIndicators{},
			Graph:      fakeGraph{},
			Summary:    &fakeSummary{},
		}
		b := iobuild.New(testConfig(), src,
			ioartifact.NewWriter(afero.NewMemMapFs(), outDir),
			iobuild.OptClock(clock()))
		r, err := b.Build(context.Background())
		require.NoError(t, err)
		return r
	}
	assert.Equal(t, build().ID, build().ID)
}

func TestBuildRegistryFailure(t *testing.T) {
	fs := afero.NewMemMapFs()
	sum := &fakeSummary{}
	src := iobuild.Sources{
		Registry:   fakeRegistry{err: fmt.Errorf("down: %w", pipeline.ErrTransport)},
		Indicators: fakeIndicators{data: indicators()},
		Graph:      fakeGraph{},
		Summary:    sum,
	}
	m := iometrics.New()
	b := iobuild.New(testConfig(), src, ioartifact.NewWriter(fs, outDir),
		iobuild.OptMetrics(m))

	r, err := b.Build(context.Background())
	require.Error(t, err)
	assert.Equal(t, pipeline.StateFatal, r.State)
	assert.False(t, r.Succeeded())

	gnErr, ok := err.(*gn.Error)
	require.True(t, ok)
	assert.Equal(t, errcode.BuildUniverseError, gnErr.Code)
	assert.ErrorIs(t, gnErr.Err, pipeline.ErrTransport)

	assert.Equal(t, int32(0), sum.calls.Load())
	exists, err := afero.Exists(fs, filepath.Join(outDir, ioartifact.IndexFile))
	require.NoError(t, err)
	assert.False(t, exists)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Builds.WithLabelValues("fatal")))
}

func TestBuildRegistryPartial(t *testing.T) {
	src := iobuild.Sources{
		Registry: fakeRegistry{
			data: registry(),
			err:  fmt.Errorf("extras: %w", pipeline.ErrTransport),
		},
		Indicators: fakeIndicators{},
		Graph:      fakeGraph{},
		Summary:    &fakeSummary{},
	}
	b := iobuild.New(testConfig(), src,
		ioartifact.NewWriter(afero.NewMemMapFs(), outDir))
	r, err := b.Build(context.Background())
	require.NoError(t, err)
	s, _ := r.Source(pipeline.SourceRegistry)
	assert.Equal(t, pipeline.StatusDegraded, s.Status)
}

func TestBuildWriteFailure(t *testing.T) {
	src := iobuild.Sources{
		Registry:   fakeRegistry{data: registry()},
		Indicators: fakeIndicators{},
		Graph:      fakeGraph{},
		Summary:    &fakeSummary{},
	}
	b := iobuild.New(testConfig(), src, failingWriter{})

	r, err := b.Build(context.Background())
	require.Error(t, err)
	assert.Equal(t, pipeline.StateFatal, r.State)
	gnErr, ok := err.(*gn.Error)
	require.True(t, ok)
	assert.Equal(t, errcode.ArtifactWriteError, gnErr.Code)
}

func TestBuildCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	src := iobuild.Sources{
		Registry:   fakeRegistry{data: registry()},
		Indicators: fakeIndicators{},
		Graph:      fakeGraph{},
		Summary:    &fakeSummary{},
	}
	fs := afero.NewMemMapFs()
	b := iobuild.New(testConfig(), src, ioartifact.NewWriter(fs, outDir))

	r, err := b.Build(ctx)
	require.Error(t, err)
	assert.Equal(t, pipeline.StateFatal, r.State)
	gnErr, ok := err.(*gn.Error)
	require.True(t, ok)
	assert.Equal(t, errcode.BuildCancelledError, gnErr.Code)
}

func TestBuildMetricsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "factbook.prom")
	cfg := testConfig()
	cfg.Update([]config.Option{config.OptMetricsFile(path)})

	src := iobuild.Sources{
		Registry:   fakeRegistry{data: registry()},
		Indicators: fakeIndicators{data: indicators()},
		Graph:      fakeGraph{},
		Summary:    &fakeSummary{},
	}
	b := iobuild.New(cfg, src,
		ioartifact.NewWriter(afero.NewMemMapFs(), outDir),
		iobuild.OptMetrics(iometrics.New()))
	_, err := b.Build(context.Background())
	require.NoError(t, err)

	exists, err := afero.Exists(afero.NewOsFs(), path)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestBuildsShareMetrics(t *testing.T) {
	m := iometrics.New()
	for range 2 {
		src := iobuild.Sources{
			Registry:   fakeRegistry{data: registry()},
			Indicators: fakeIndicators{data: indicators()},
			Graph:      fakeGraph{},
			Summary:    &fakeSummary{},
		}
		b := iobuild.New(testConfig(), src,
			ioartifact.NewWriter(afero.NewMemMapFs(), outDir),
			iobuild.OptMetrics(m), iobuild.OptClock(clock()))
		_, err := b.Build(context.Background())
		require.NoError(t, err)
	}
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Builds.WithLabelValues("done")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.Countries))
}

func TestEdition(t *testing.T) {
	cfg := config.New()
	ts := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2027 Edition", iobuild.Edition(cfg, ts))
	cfg.Update([]config.Option{config.OptBuildEdition("Spring")})
	assert.Equal(t, "Spring", iobuild.Edition(cfg, ts))
}
