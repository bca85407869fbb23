package iobuild

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gnames/factbook/pkg/pipeline"
	"github.com/gnames/gn"
	"github.com/gnames/gnfmt"
)

// PrintReport shows the outcome of a build to the user.
func PrintReport(r *pipeline.Report) {
	fmt.Println(strings.Repeat("─", 60))
	for _, v := range r.Sources {
		msg := fmt.Sprintf("%-16s %-12s records: %s",
			v.Source, v.Status, humanize.Comma(int64(v.Records)))
		if v.Failures > 0 {
			msg += fmt.Sprintf(", failures: %s", humanize.Comma(int64(v.Failures)))
		}
		if v.Status == pipeline.StatusOK {
			gn.Info(msg)
			continue
		}
		gn.Warn(msg)
	}
	fmt.Println(strings.Repeat("─", 60))

	dur := r.FinishedAt.Sub(r.StartedAt).Seconds()
	if !r.Succeeded() {
		gn.Warn(`Build <em>%s</em> failed in state %s
Elapsed time: <em>%s</em>`,
			r.Edition, r.State, gnfmt.TimeString(dur))
		return
	}

	gn.Info(`Build <em>%s</em> complete
Countries: %s, degraded sources: %d
Elapsed time: <em>%s</em>`,
		r.Edition,
		humanize.Comma(int64(r.Countries)),
		len(r.DegradedSources()),
		gnfmt.TimeString(dur),
	)
}
