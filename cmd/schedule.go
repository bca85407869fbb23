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
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gnames/factbook/internal/iometrics"
	"github.com/gnames/factbook/pkg/config"
	"github.com/gnames/factbook/pkg/errcode"
	"github.com/gnames/gn"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
)

// getScheduleCmd returns the schedule command.
func getScheduleCmd() *cobra.Command {
	var (
		flags buildFlags
		expr  string
	)

	scheduleCmd := &cobra.Command{
		Use:   "schedule",
		Short: "Runs builds on a cron schedule",
		Long: `Run 'factbook build' repeatedly according to a cron expression
until interrupted with Ctrl-C or SIGTERM.

The expression is taken from --cron, or from 'schedule' in config.yaml
(default '@weekly'). Standard 5-field expressions and descriptors like
'@daily' or '@every 12h' are accepted. A run is skipped if the previous
one is still in progress. A failed build does not stop the schedule.

Build flags are the same as for 'factbook build'.

Examples:
  factbook schedule
  factbook schedule --cron "0 3 * * 1" -q --metrics-file ./factbook.prom`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := flags.options(cmd)
			if cmd.Flags().Changed("cron") {
				opts = append(opts, config.OptSchedule(expr))
			}
			err := runSchedule(cmd, opts)
			if err != nil {
				gn.PrintErrorMessage(err)
			}
			return err
		},
	}

	flags.register(scheduleCmd)
	scheduleCmd.Flags().StringVar(
		&expr, "cron", "",
		"cron expression of builds (default from config)",
	)

	return scheduleCmd
}

func runSchedule(cmd *cobra.Command, opts []config.Option) error {
	cfg.Update(opts)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := iometrics.New()
	job := func() {
		if _, err := buildOnce(ctx, cfg, m); err != nil {
			slog.Error("Scheduled build failed", "error", err)
			gn.PrintErrorMessage(err)
		}
	}

	c, err := newScheduler(cfg.Schedule, job)
	if err != nil {
		return err
	}

	c.Start()
	for _, v := range c.Entries() {
		gn.Info("Next build at <em>%s</em>", v.Next.Format("2006-01-02 15:04 MST"))
	}
	slog.Info("Scheduler started", "schedule", cfg.Schedule)

	<-ctx.Done()
	gn.Info("Stopping scheduler, waiting for a running build...")
	<-c.Stop().Done()
	slog.Info("Scheduler stopped")
	return nil
}

// newScheduler creates a cron scheduler with a single job. Overlapping
// runs are skipped and panics are recovered.
func newScheduler(expr string, job func()) (*cron.Cron, error) {
	logger := cronLogger{}
	c := cron.New(
		cron.WithLogger(logger),
		cron.WithChain(
			cron.Recover(logger),
			cron.SkipIfStillRunning(logger),
		),
	)
	if _, err := c.AddFunc(strings.TrimSpace(expr), job); err != nil {
		return nil, &gn.Error{
			Code: errcode.ScheduleExpressionError,
			Msg:  "Cannot use schedule <em>'%s'</em>",
			Vars: []any{expr},
			Err:  err,
		}
	}
	return c, nil
}

// cronLogger sends scheduler messages to slog.
type cronLogger struct{}

func (cronLogger) Info(msg string, kv ...any) {
	slog.Debug(msg, kv...)
}

func (cronLogger) Error(err error, msg string, kv ...any) {
	slog.Error(msg, append(kv, "error", err)...)
}

var _ cron.Logger = cronLogger{}
