// Package config provides configuration management for factbook.
//
// This package has no I/O dependencies (no file operations, no network calls).
// Validation functions may write user-facing warnings via gn.Warn().
//
// # Configuration Sources
//
// Precedence (highest to lowest): CLI flags > env vars > config.yaml > defaults
//
// # Design Principles
//
// - Default config (from New()) is always valid - no validation needed
// - All mutations go through Option functions - the only way to modify Config
// - Invalid options are rejected with gn.Warn() - config remains in valid state
// - ToOptions() converts persistent fields (those in config.yaml)
// - Environment variables match ToOptions() fields exactly
//
// # Persistent vs Runtime Fields
//
// Persistent fields (in ToOptions, config.yaml, and env vars):
//   - HTTP: user_agent, timeout_sec, graph_timeout_sec, max_retries
//   - Endpoints: registry, indicators, graph, summary
//   - Indicators: year_window
//   - Summary: concurrency, max_length
//   - Build: output_dir, edition, un_members_only
//   - Log: level, format, destination
//   - General: jobs_number, metrics_file, schedule
//
// Runtime-only fields (CLI flags only):
//   - Quiet (per-command)
//   - HomeDir (set once at startup)
//
// # Environment Variables
//
// Use FACTBOOK_ prefix with underscores for nesting:
//
//	FACTBOOK_HTTP_USER_AGENT="factbook/0.1 (me@example.org)"
//	FACTBOOK_BUILD_OUTPUT_DIR=./data
//	FACTBOOK_SUMMARY_CONCURRENCY=4
//	FACTBOOK_LOG_LEVEL=info
package config

import (
	"runtime"
)

// Config represents the complete factbook configuration.
type Config struct {
	// HTTP contains settings shared by all outbound requests.
	HTTP HTTPConfig `mapstructure:"http" yaml:"http"`

	// Endpoints contains base URLs of the external data providers.
	Endpoints EndpointsConfig `mapstructure:"endpoints" yaml:"endpoints"`

	// Indicators contains settings of the statistical indicators source.
	Indicators IndicatorsConfig `mapstructure:"indicators" yaml:"indicators"`

	// Summary contains settings of the free-text summary source.
	Summary SummaryConfig `mapstructure:"summary" yaml:"summary"`

	// Build contains settings of the produced artifacts.
	Build BuildConfig `mapstructure:"build" yaml:"build"`

	Log LogConfig `mapstructure:"log" yaml:"log"`

	// JobsNumber is the number of concurrent World Bank indicator
	// requests.
	JobsNumber int `mapstructure:"jobs_number" yaml:"jobs_number"`

	// MetricsFile is a path where Prometheus metrics of the last build
	// are written in text exposition format. Empty disables metrics export.
	MetricsFile string `mapstructure:"metrics_file" yaml:"metrics_file"`

	// Schedule is a cron expression used by the schedule command.
	Schedule string `mapstructure:"schedule" yaml:"schedule"`

	// Quiet disables the progress bar and console chatter.
	Quiet bool

	// HomeDir determines where config, cache and logs directories reside.
	// It must be set by CLI during init, there is no default value for it.
	HomeDir string
}

// HTTPConfig contains settings for outbound HTTP calls.
type HTTPConfig struct {
	// UserAgent identifies the pipeline to external services.
	// Wikimedia services require a descriptive User-Agent with contact
	// information.
	UserAgent string `mapstructure:"user_agent" yaml:"user_agent"`

	// TimeoutSec is a per-call timeout in seconds.
	TimeoutSec int `mapstructure:"timeout_sec" yaml:"timeout_sec"`

	// GraphTimeoutSec is a timeout for the knowledge-graph query,
	// which is a single large query and needs more time than the rest.
	GraphTimeoutSec int `mapstructure:"graph_timeout_sec" yaml:"graph_timeout_sec"`

	// MaxRetries is the number of retries for transient failures
	// (network errors, 429 and 5xx responses).
	MaxRetries int `mapstructure:"max_retries" yaml:"max_retries"`
}

// EndpointsConfig contains base URLs of the data providers.
type EndpointsConfig struct {
	// Registry is the country registry service (REST Countries).
	Registry string `mapstructure:"registry" yaml:"registry"`

	// Indicators is the statistical indicator service (World Bank).
	Indicators string `mapstructure:"indicators" yaml:"indicators"`

	// Graph is the SPARQL endpoint of the knowledge graph (Wikidata).
	Graph string `mapstructure:"graph" yaml:"graph"`

	// Summary is the encyclopedic summary service (Wikipedia REST).
	Summary string `mapstructure:"summary" yaml:"summary"`
}

// IndicatorsConfig contains statistical indicator settings.
type IndicatorsConfig struct {
	// YearWindow is how many recent years are searched for the latest
	// non-empty observation of an indicator.
	YearWindow int `mapstructure:"year_window" yaml:"year_window"`
}

// SummaryConfig contains free-text summary settings.
type SummaryConfig struct {
	// Concurrency caps simultaneous in-flight summary requests.
	Concurrency int `mapstructure:"concurrency" yaml:"concurrency"`

	// MaxLength is the maximum number of characters of a summary
	// before it gets truncated with an ellipsis.
	MaxLength int `mapstructure:"max_length" yaml:"max_length"`
}

// BuildConfig contains settings of generated artifacts.
type BuildConfig struct {
	// OutputDir is where detail records and index files are written.
	OutputDir string `mapstructure:"output_dir" yaml:"output_dir"`

	// Edition is a label attached to every record. If empty, it is
	// generated from the build year, e.g. "2026 Edition".
	Edition string `mapstructure:"edition" yaml:"edition"`

	// UNMembersOnly limits the country universe to UN member states.
	// Uses pointer to distinguish between unset (nil) and false.
	UNMembersOnly *bool `mapstructure:"un_members_only" yaml:"un_members_only"`
}

// LogConfig provides typical settings for application logs.
type LogConfig struct {
	// Format can be 'json', 'text' or 'tint' (user-facing and colored).
	Format string `mapstructure:"format"      yaml:"format"`
	// Level of logging -- 'error', 'warn', 'info', 'debug'
	Level string `mapstructure:"level"       yaml:"level"`
	// Destination can be a log file (to default place), STDERR or STDOUT
	Destination string `mapstructure:"destination" yaml:"destination"`
}

// New creates a Config with sensible default values.
// The returned config is always valid and ready to use.
// Default values can be overridden using Option functions via Update().
func New() *Config {
	unOnly := true
	res := &Config{
		HTTP: HTTPConfig{
			UserAgent:       "factbook/0.1 (https://github.com/gnames/factbook)",
			TimeoutSec:      20,
			GraphTimeoutSec: 90,
			MaxRetries:      3,
		},
		Endpoints: EndpointsConfig{
			Registry:   "https://restcountries.com/v3.1",
			Indicators: "https://api.worldbank.org/v2",
			Graph:      "https://query.wikidata.org/sparql",
			Summary:    "https://en.wikipedia.org/api/rest_v1",
		},
		Indicators: IndicatorsConfig{
			YearWindow: 10,
		},
		Summary: SummaryConfig{
			Concurrency: 4,
			MaxLength:   600,
		},
		Build: BuildConfig{
			OutputDir:     "data",
			UNMembersOnly: &unOnly,
		},
		Log: LogConfig{
			Format: "json",
			Level:  "info",
			// log file is appended across runs
			Destination: "file",
		},
		JobsNumber: runtime.NumCPU(),
		Schedule:   "@weekly",
	}

	return res
}

// UNMembersOnly returns the effective universe filter setting.
func (c *Config) UNMembersOnly() bool {
	if c.Build.UNMembersOnly == nil {
		return true
	}
	return *c.Build.UNMembersOnly
}
