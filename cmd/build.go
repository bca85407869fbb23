/*
Copyright © 2025 Dmitry Mozzherin <dmozzherin@gmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gnames/factbook/internal/ioartifact"
	"github.com/gnames/factbook/internal/iobuild"
	"github.com/gnames/factbook/internal/iofs"
	"github.com/gnames/factbook/internal/iograph"
	"github.com/gnames/factbook/internal/iohttp"
	"github.com/gnames/factbook/internal/ioindicators"
	"github.com/gnames/factbook/internal/iometrics"
	"github.com/gnames/factbook/internal/ioregistry"
	"github.com/gnames/factbook/internal/iosummary"
	"github.com/gnames/factbook/pkg/config"
	"github.com/gnames/factbook/pkg/pipeline"
	"github.com/gnames/gn"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// getBuildCmd returns the build command.
func getBuildCmd() *cobra.Command {
	var flags buildFlags

	buildCmd := &cobra.Command{
		Use:   "build",
		Short: "Builds country records from all data sources",
		Long: `Fetch data from all sources, merge it into one record per country,
compute real GDP ranks and write the output set.

This command:
  1. Fetches the country universe from REST Countries
  2. Fetches World Bank indicators, Wikidata facts and Wikipedia
     summaries concurrently
  3. Merges them into one record per country
  4. Ranks countries by real GDP
  5. Regenerates the output directory:
     - countries/<CODE>.json
     - index.json
     - all-countries.json

Failure of an enriching source degrades the build but does not stop it.
The build fails only if the country universe cannot be fetched or the
output cannot be written.

Examples:
  # Build with settings from config.yaml
  factbook build

  # Build into a custom directory with a fixed edition label
  factbook build -o ./site/data -e "2026 Edition"

  # Include territories and write metrics for node_exporter
  factbook build --all-countries --metrics-file ./factbook.prom`,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runBuild(cmd, flags.options(cmd))
			if err != nil {
				gn.PrintErrorMessage(err)
			}
			return err
		},
	}

	flags.register(buildCmd)

	return buildCmd
}

func runBuild(cmd *cobra.Command, opts []config.Option) error {
	cfg.Update(opts)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_, err := buildOnce(ctx, cfg, iometrics.New())
	return err
}

// buildOnce wires all sources and runs a single build. Metrics are
// accumulated in m, so repeated builds share the same counters.
func buildOnce(
	ctx context.Context,
	cfg *config.Config,
	m *iometrics.Metrics,
) (*pipeline.Report, error) {
	universe, err := iofs.LoadUniverse(cfg.HomeDir)
	if err != nil {
		return nil, err
	}

	if !cfg.Quiet {
		gn.Info("Building country records into <em>%s</em>", cfg.Build.OutputDir)
	}
	b := newBuilder(cfg, universe, m, time.Now())
	rep, err := b.Build(ctx)
	if err != nil {
		return rep, err
	}
	slog.Info("Output set is ready", "dir", cfg.Build.OutputDir)
	return rep, nil
}

func newBuilder(
	cfg *config.Config,
	universe pipeline.Universe,
	m *iometrics.Metrics,
	now time.Time,
) pipeline.Builder {
	client := iohttp.New(cfg.HTTP, iohttp.OptRecorder(m))
	src := iobuild.Sources{
		Registry:   ioregistry.New(cfg, client, universe),
		Indicators: ioindicators.New(cfg, client, now.Year()),
		Graph:      iograph.New(cfg, client),
		Summary:    iosummary.New(cfg, client),
	}
	w := ioartifact.NewWriter(afero.NewOsFs(), cfg.Build.OutputDir)
	return iobuild.New(cfg, src, w, iobuild.OptMetrics(m))
}
