package cmd

import (
	"fmt"
	"os"

	app "github.com/gnames/factbook/pkg"
	"github.com/gnames/factbook/pkg/config"
	"github.com/spf13/cobra"
)

func versionFlag(cmd *cobra.Command) {
	hasVersionFlag, _ := cmd.Flags().GetBool("version")
	if hasVersionFlag {
		fmt.Printf("\nversion: %s\nbuild: %s\n\n", app.Version, app.Build)
		os.Exit(0)
	}
}

// buildFlags keeps values of flags shared by build and schedule commands.
type buildFlags struct {
	outputDir    string
	edition      string
	years        int
	concurrency  int
	allCountries bool
	quiet        bool
	metricsFile  string
}

func (f *buildFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(
		&f.outputDir, "output-dir", "o", "",
		"directory for generated country files",
	)
	cmd.Flags().StringVarP(
		&f.edition, "edition", "e", "",
		"edition label of records (default: '<year> Edition')",
	)
	cmd.Flags().IntVarP(
		&f.years, "years", "y", 0,
		"number of recent years searched for indicator values",
	)
	cmd.Flags().IntVarP(
		&f.concurrency, "concurrency", "c", 0,
		"maximum number of simultaneous summary requests",
	)
	cmd.Flags().BoolVar(
		&f.allCountries, "all-countries", false,
		"include territories, not only UN member states",
	)
	cmd.Flags().BoolVarP(
		&f.quiet, "quiet", "q", false,
		"no progress bar and build summary",
	)
	cmd.Flags().StringVar(
		&f.metricsFile, "metrics-file", "",
		"write Prometheus metrics of a build to this file",
	)
}

// options converts explicitly set flags to config options.
func (f *buildFlags) options(cmd *cobra.Command) []config.Option {
	var res []config.Option
	fl := cmd.Flags()
	if fl.Changed("output-dir") {
		res = append(res, config.OptBuildOutputDir(f.outputDir))
	}
	if fl.Changed("edition") {
		res = append(res, config.OptBuildEdition(f.edition))
	}
	if fl.Changed("years") {
		res = append(res, config.OptIndicatorsYearWindow(f.years))
	}
	if fl.Changed("concurrency") {
		res = append(res, config.OptSummaryConcurrency(f.concurrency))
	}
	if fl.Changed("all-countries") {
		unOnly := !f.allCountries
		res = append(res, config.OptBuildUNMembersOnly(&unOnly))
	}
	if fl.Changed("quiet") {
		res = append(res, config.OptQuiet(f.quiet))
	}
	if fl.Changed("metrics-file") {
		res = append(res, config.OptMetricsFile(f.metricsFile))
	}
	return res
}
