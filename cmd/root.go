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
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/gnames/factbook/internal/iofs"
	"github.com/gnames/factbook/internal/iologger"
	app "github.com/gnames/factbook/pkg"
	"github.com/gnames/factbook/pkg/config"
	"github.com/gnames/gn"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	homeDir string
	cfg     *config.Config
)

// getRootCmd returns the root command with all subcommands attached.
func getRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Version: fmt.Sprintf("version: %s\nbuild:   %s", app.Version, app.Build),
		Use:     "factbook",
		Short:   "Factbook builds static country profiles from public data",
		Long: `Factbook collects country data from public sources and turns it
into a static set of JSON files for a country factbook website.

Sources:
  - REST Countries: names, capitals, flags, currencies, languages
  - World Bank Open Data: population, economy, health, environment
  - Wikidata: government, leaders, independence, agriculture
  - Wikipedia: short encyclopedic summaries

Commands:
  - build: fetch all sources, merge, rank and write the output set
  - rank: recompute real GDP ranks of an existing output set
  - schedule: run builds on a cron schedule

Configuration precedence (highest to lowest):
  1. CLI flags
  2. Environment variables (FACTBOOK_*, also read from .env)
  3. Config file (~/.config/factbook/config.yaml)
  4. Built-in defaults`,
		PersistentPreRunE: bootstrap,
		RunE:              runRoot,
		SilenceErrors:     true,
		SilenceUsage:      true,
	}

	// Remove the automatic "factbook version" prefix
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	// Override version flag to use -V (consistent with other gn projects)
	rootCmd.Flags().BoolP("version", "V", false, "version for factbook")

	rootCmd.AddCommand(
		getBuildCmd(),
		getRankCmd(),
		getScheduleCmd(),
	)

	return rootCmd
}

func bootstrap(cmd *cobra.Command, args []string) error {
	var err error

	// .env is optional, real environment variables take precedence
	if err = godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("Cannot load .env file", "error", err)
	}

	homeDir, err = os.UserHomeDir()
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	if err = iofs.EnsureDirs(homeDir); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	// Initialize logging with hardcoded defaults
	// Will be reconfigured later with user's config settings
	defaultLog := config.LogConfig{
		Format:      "json",
		Level:       "info",
		Destination: "file",
	}
	if err = iologger.Init(config.LogDir(homeDir), defaultLog); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	if err = iofs.EnsureConfigFile(homeDir); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}
	if err = iofs.EnsureUniverseFile(homeDir); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	var cfgViper *config.Config
	if cfgViper, err = initConfig(homeDir); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	cfg = config.New()
	cfg.Update(cfgViper.ToOptions())
	cfg.Update([]config.Option{config.OptHomeDir(homeDir)})

	if err = iologger.Init(config.LogDir(cfg.HomeDir), cfg.Log); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	slog.Info("Configuration loaded",
		"config_file", config.ConfigFilePath(homeDir))

	return nil
}

func runRoot(cmd *cobra.Command, args []string) error {
	versionFlag(cmd)
	return cmd.Help()
}

// Execute runs the root command. This is called by main.main().
func Execute() {
	if err := getRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func initConfig(home string) (*config.Config, error) {
	var err error
	cfgPath := config.ConfigFilePath(home)
	v := viper.New()
	v.SetConfigFile(cfgPath)

	initEnvVars(v)

	if err = v.ReadInConfig(); err != nil {
		return nil, iofs.ReadFileError(cfgPath, err)
	}

	var res config.Config
	if err = v.Unmarshal(&res); err != nil {
		return nil, iofs.ParseFileError(cfgPath, err)
	}

	return &res, nil
}

func initEnvVars(v *viper.Viper) {
	// Environment variables are bound one by one, so it is clear which
	// of them are allowed. They match fields of config.ToOptions().
	v.SetEnvPrefix("FACTBOOK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// HTTP configuration
	v.BindEnv("http.user_agent", "FACTBOOK_HTTP_USER_AGENT")
	v.BindEnv("http.timeout_sec", "FACTBOOK_HTTP_TIMEOUT_SEC")
	v.BindEnv("http.graph_timeout_sec", "FACTBOOK_HTTP_GRAPH_TIMEOUT_SEC")
	v.BindEnv("http.max_retries", "FACTBOOK_HTTP_MAX_RETRIES")

	// Endpoints
	v.BindEnv("endpoints.registry", "FACTBOOK_ENDPOINTS_REGISTRY")
	v.BindEnv("endpoints.indicators", "FACTBOOK_ENDPOINTS_INDICATORS")
	v.BindEnv("endpoints.graph", "FACTBOOK_ENDPOINTS_GRAPH")
	v.BindEnv("endpoints.summary", "FACTBOOK_ENDPOINTS_SUMMARY")

	// Sources
	v.BindEnv("indicators.year_window", "FACTBOOK_INDICATORS_YEAR_WINDOW")
	v.BindEnv("summary.concurrency", "FACTBOOK_SUMMARY_CONCURRENCY")
	v.BindEnv("summary.max_length", "FACTBOOK_SUMMARY_MAX_LENGTH")

	// Build configuration
	v.BindEnv("build.output_dir", "FACTBOOK_BUILD_OUTPUT_DIR")
	v.BindEnv("build.edition", "FACTBOOK_BUILD_EDITION")
	v.BindEnv("build.un_members_only", "FACTBOOK_BUILD_UN_MEMBERS_ONLY")

	// Log configuration
	v.BindEnv("log.level", "FACTBOOK_LOG_LEVEL")
	v.BindEnv("log.format", "FACTBOOK_LOG_FORMAT")
	v.BindEnv("log.destination", "FACTBOOK_LOG_DESTINATION")

	// General configuration
	v.BindEnv("jobs_number", "FACTBOOK_JOBS_NUMBER")
	v.BindEnv("metrics_file", "FACTBOOK_METRICS_FILE")
	v.BindEnv("schedule", "FACTBOOK_SCHEDULE")

	v.AutomaticEnv()
}
