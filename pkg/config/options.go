package config

import (
	"strings"

	"github.com/robfig/cron/v3"
)

// Option is a function that modifies a Config.
// Options validate inputs and reject invalid values with warnings.
type Option func(*Config)

// OptHTTPUserAgent sets the User-Agent header sent to external services.
func OptHTTPUserAgent(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("HTTP User Agent", s) {
			c.HTTP.UserAgent = s
		}
	}
}

// OptHTTPTimeoutSec sets a per-call timeout in seconds.
func OptHTTPTimeoutSec(i int) Option {
	return func(c *Config) {
		if isValidInt("HTTP Timeout", i) {
			c.HTTP.TimeoutSec = i
		}
	}
}

// OptHTTPGraphTimeoutSec sets the timeout of the knowledge-graph query.
func OptHTTPGraphTimeoutSec(i int) Option {
	return func(c *Config) {
		if isValidInt("HTTP Graph Timeout", i) {
			c.HTTP.GraphTimeoutSec = i
		}
	}
}

// OptHTTPMaxRetries sets the number of retries for transient failures.
// Zero disables retries.
func OptHTTPMaxRetries(i int) Option {
	return func(c *Config) {
		if isValidNonNegative("HTTP Max Retries", i) {
			c.HTTP.MaxRetries = i
		}
	}
}

// OptEndpointRegistry sets the base URL of the country registry.
func OptEndpointRegistry(s string) Option {
	s = normURL(s)
	return func(c *Config) {
		if isValidURL("Endpoints Registry", s) {
			c.Endpoints.Registry = s
		}
	}
}

// OptEndpointIndicators sets the base URL of the indicator service.
func OptEndpointIndicators(s string) Option {
	s = normURL(s)
	return func(c *Config) {
		if isValidURL("Endpoints Indicators", s) {
			c.Endpoints.Indicators = s
		}
	}
}

// OptEndpointGraph sets the SPARQL endpoint of the knowledge graph.
func OptEndpointGraph(s string) Option {
	s = normURL(s)
	return func(c *Config) {
		if isValidURL("Endpoints Graph", s) {
			c.Endpoints.Graph = s
		}
	}
}

// OptEndpointSummary sets the base URL of the summary service.
func OptEndpointSummary(s string) Option {
	s = normURL(s)
	return func(c *Config) {
		if isValidURL("Endpoints Summary", s) {
			c.Endpoints.Summary = s
		}
	}
}

// OptIndicatorsYearWindow sets how many recent years are searched
// for indicator observations.
func OptIndicatorsYearWindow(i int) Option {
	return func(c *Config) {
		if isValidInt("Indicators Year Window", i) {
			c.Indicators.YearWindow = i
		}
	}
}

// OptSummaryConcurrency sets the cap of simultaneous summary requests.
func OptSummaryConcurrency(i int) Option {
	return func(c *Config) {
		if isValidInt("Summary Concurrency", i) {
			c.Summary.Concurrency = i
		}
	}
}

// OptSummaryMaxLength sets the maximum length of a summary.
func OptSummaryMaxLength(i int) Option {
	return func(c *Config) {
		if isValidInt("Summary Max Length", i) {
			c.Summary.MaxLength = i
		}
	}
}

// OptBuildOutputDir sets the directory for generated artifacts.
func OptBuildOutputDir(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Build Output Dir", s) {
			c.Build.OutputDir = s
		}
	}
}

// OptBuildEdition sets the edition label of the build.
func OptBuildEdition(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Build Edition", s) {
			c.Build.Edition = s
		}
	}
}

// OptBuildUNMembersOnly sets whether only UN member states are emitted.
// Uses pointer to distinguish between unset (nil) and false.
func OptBuildUNMembersOnly(b *bool) Option {
	return func(c *Config) {
		if b != nil {
			c.Build.UNMembersOnly = b
		}
	}
}

// OptLogLevel sets the logging level.
// Valid values: "debug", "info", "warn", "error".
func OptLogLevel(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return func(c *Config) {
		if isValidEnum("Log.Level", s) {
			c.Log.Level = s
		}
	}
}

// OptLogFormat sets the log output format.
// Valid values: "json", "text", "tint".
func OptLogFormat(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return func(c *Config) {
		if isValidEnum("Log.Format", s) {
			c.Log.Format = s
		}
	}
}

// OptLogDestination sets where logs are written.
// Valid values: "file", "stderr", "stdout".
func OptLogDestination(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return func(c *Config) {
		if isValidEnum("Log.Destination", s) {
			c.Log.Destination = s
		}
	}
}

// OptJobsNumber sets the number of concurrent indicator requests.
// Default is runtime.NumCPU().
func OptJobsNumber(i int) Option {
	return func(c *Config) {
		if isValidInt("Jobs Number", i) {
			c.JobsNumber = i
		}
	}
}

// OptMetricsFile sets the path of the Prometheus textfile.
func OptMetricsFile(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Metrics File", s) {
			c.MetricsFile = s
		}
	}
}

// OptSchedule sets the cron expression of the schedule command.
// Standard 5-field expressions and descriptors like "@daily" are accepted.
func OptSchedule(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if !isValidString("Schedule", s) {
			return
		}
		if _, err := cron.ParseStandard(s); err != nil {
			warn("<em>Schedule</em> '%s' is not a valid cron expression, ignoring", s)
			return
		}
		c.Schedule = s
	}
}

// OptQuiet disables progress bars and console chatter.
// Runtime-only field - not in ToOptions().
func OptQuiet(b bool) Option {
	return func(c *Config) {
		c.Quiet = b
	}
}

// OptHomeDir sets the home directory for config, cache, and log locations.
// Set once at startup from os.UserHomeDir().
// Runtime-only field - not in ToOptions().
func OptHomeDir(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Home Directory", s) {
			c.HomeDir = s
		}
	}
}

func normURL(s string) string {
	s = strings.TrimSpace(s)
	return strings.TrimRight(s, "/")
}
