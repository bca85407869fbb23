package config

import (
	"fmt"
	"maps"
	"net/url"
	"slices"
	"strings"

	"github.com/gnames/gn"
)

// Update applies a slice of Option functions to the Config.
// This is the only way to modify a Config after creation.
// Invalid options are rejected with warnings - config remains in valid state.
func (c *Config) Update(opts []Option) {
	for _, opt := range opts {
		opt(c)
	}
}

// ToOptions converts the Config to a slice of Option functions.
// Only includes persistent fields appropriate for config.yaml.
// Excludes runtime-only fields (HomeDir, Quiet).
// Used for round-tripping config.yaml ↔ Config conversions.
func (c *Config) ToOptions() []Option {
	var res []Option
	var s string
	var i int

	s = c.HTTP.UserAgent
	if s != "" {
		res = append(res, OptHTTPUserAgent(s))
	}
	i = c.HTTP.TimeoutSec
	if i > 0 {
		res = append(res, OptHTTPTimeoutSec(i))
	}
	i = c.HTTP.GraphTimeoutSec
	if i > 0 {
		res = append(res, OptHTTPGraphTimeoutSec(i))
	}
	// zero cannot be told apart from a missing key in config.yaml
	i = c.HTTP.MaxRetries
	if i > 0 {
		res = append(res, OptHTTPMaxRetries(i))
	}

	s = c.Endpoints.Registry
	if s != "" {
		res = append(res, OptEndpointRegistry(s))
	}
	s = c.Endpoints.Indicators
	if s != "" {
		res = append(res, OptEndpointIndicators(s))
	}
	s = c.Endpoints.Graph
	if s != "" {
		res = append(res, OptEndpointGraph(s))
	}
	s = c.Endpoints.Summary
	if s != "" {
		res = append(res, OptEndpointSummary(s))
	}

	i = c.Indicators.YearWindow
	if i > 0 {
		res = append(res, OptIndicatorsYearWindow(i))
	}

	i = c.Summary.Concurrency
	if i > 0 {
		res = append(res, OptSummaryConcurrency(i))
	}
	i = c.Summary.MaxLength
	if i > 0 {
		res = append(res, OptSummaryMaxLength(i))
	}

	s = c.Build.OutputDir
	if s != "" {
		res = append(res, OptBuildOutputDir(s))
	}
	s = c.Build.Edition
	if s != "" {
		res = append(res, OptBuildEdition(s))
	}
	if c.Build.UNMembersOnly != nil {
		res = append(res, OptBuildUNMembersOnly(c.Build.UNMembersOnly))
	}

	s = c.Log.Format
	if s != "" {
		res = append(res, OptLogFormat(s))
	}
	s = c.Log.Level
	if s != "" {
		res = append(res, OptLogLevel(s))
	}
	s = c.Log.Destination
	if s != "" {
		res = append(res, OptLogDestination(s))
	}

	i = c.JobsNumber
	if i > 0 {
		res = append(res, OptJobsNumber(i))
	}
	s = c.MetricsFile
	if s != "" {
		res = append(res, OptMetricsFile(s))
	}
	s = c.Schedule
	if s != "" {
		res = append(res, OptSchedule(s))
	}
	return res
}

func warn(msg string, vars ...any) {
	gn.Warn(msg, vars...)
}

func isValidString(name, s string) bool {
	res := s != ""
	if !res {
		warn("<em>%s</em> cannot be empty, ignoring", name)
	}
	return res
}

func isValidInt(name string, i int) bool {
	res := i > 0
	if !res {
		warn("<em>%s</em> has to be positive number, ignoring %d", name, i)
	}
	return res
}

func isValidNonNegative(name string, i int) bool {
	res := i >= 0
	if !res {
		warn("<em>%s</em> cannot be negative, ignoring %d", name, i)
	}
	return res
}

func isValidURL(name, s string) bool {
	if !isValidString(name, s) {
		return false
	}
	u, err := url.Parse(s)
	if err != nil || u.Host == "" ||
		(u.Scheme != "http" && u.Scheme != "https") {
		warn("<em>%s</em> is not a valid http(s) URL, ignoring '%s'", name, s)
		return false
	}
	return true
}

func isValidEnum(name, val string) bool {
	s := struct{}{}
	data := map[string]map[string]struct{}{
		"Log.Level":       {"debug": s, "info": s, "warn": s, "error": s},
		"Log.Format":      {"json": s, "text": s, "tint": s},
		"Log.Destination": {"file": s, "stderr": s, "stdout": s},
	}
	vals := slices.Sorted(maps.Keys(data[name]))
	var lines []string
	for _, v := range vals {
		line := fmt.Sprintf("  * %s", v)
		lines = append(lines, line)
	}
	if _, ok := data[name][val]; ok {
		return true
	}
	warn(
		"<em>%s</em> does not support '%s' as a value. "+
			"Valid values are: \n%s\nIgnoring...",
		name, val, strings.Join(lines, "\n"),
	)
	return false
}
