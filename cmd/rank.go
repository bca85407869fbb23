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
	"log/slog"

	"github.com/dustin/go-humanize"
	"github.com/gnames/factbook/internal/ioartifact"
	"github.com/gnames/factbook/pkg/config"
	"github.com/gnames/factbook/pkg/rank"
	"github.com/gnames/gn"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// getRankCmd returns the rank command.
func getRankCmd() *cobra.Command {
	var outputDir string

	rankCmd := &cobra.Command{
		Use:   "rank",
		Short: "Recomputes real GDP ranks of an existing output set",
		Long: `Read all country records of an existing output set, rank them by
real GDP and write the set back.

Ranking does not contact any data source. Running it on an output set
produced by 'factbook build' changes nothing, because build already
ranks the records.

Examples:
  factbook rank
  factbook rank -o ./site/data`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("output-dir") {
				cfg.Update([]config.Option{config.OptBuildOutputDir(outputDir)})
			}
			n, err := rerank(afero.NewOsFs(), cfg.Build.OutputDir)
			if err != nil {
				gn.PrintErrorMessage(err)
				return err
			}
			gn.Info("Ranked <em>%s</em> countries in <em>%s</em>",
				humanize.Comma(int64(n)), cfg.Build.OutputDir)
			return nil
		},
	}

	rankCmd.Flags().StringVarP(
		&outputDir, "output-dir", "o", "",
		"directory with generated country files",
	)

	return rankCmd
}

// rerank reads records from dir, assigns real GDP ranks and rewrites
// the output set. It returns the number of records.
func rerank(fs afero.Fs, dir string) (int, error) {
	cs, err := ioartifact.NewReader(fs, dir).All()
	if err != nil {
		return 0, err
	}

	rank.RealGDP(cs)

	if err = ioartifact.NewWriter(fs, dir).Write(cs); err != nil {
		return 0, err
	}
	slog.Info("Recomputed ranks", "dir", dir, "countries", len(cs))
	return len(cs), nil
}
