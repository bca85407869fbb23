package cmd

import (
	"testing"

	"github.com/gnames/factbook/pkg/config"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestGetBuildCmd_Exists verifies getBuildCmd returns
// a valid command.
func TestGetBuildCmd_Exists(t *testing.T) {
	cmd := getBuildCmd()
	require.NotNil(t, cmd)
	assert.Equal(t, "build", cmd.Use)
	assert.NotNil(t, cmd.RunE)
	assert.Contains(t, cmd.Long, "all-countries.json")
}

// TestGetBuildCmd_Flags verifies flags and their short forms.
func TestGetBuildCmd_Flags(t *testing.T) {
	tests := []struct {
		name, short string
	}{
		{"output-dir", "o"},
		{"edition", "e"},
		{"years", "y"},
		{"concurrency", "c"},
		{"all-countries", ""},
		{"quiet", "q"},
		{"metrics-file", ""},
	}

	cmd := getBuildCmd()
	for _, v := range tests {
		flag := cmd.Flags().Lookup(v.name)
		require.NotNil(t, flag, v.name)
		assert.Equal(t, v.short, flag.Shorthand, v.name)
		assert.NotEmpty(t, flag.Usage, v.name)
	}
}

// TestBuildFlagsOptions verifies only changed flags become options.
func TestBuildFlagsOptions(t *testing.T) {
	var flags buildFlags
	cmd := &cobra.Command{Use: "test"}
	flags.register(cmd)

	require.NoError(t, cmd.ParseFlags([]string{
		"-o", "/tmp/site",
		"-e", "Test Edition",
		"-y", "5",
		"-c", "2",
		"--all-countries",
		"-q",
		"--metrics-file", "/tmp/factbook.prom",
	}))

	c := config.New()
	c.Update(flags.options(cmd))

	assert.Equal(t, "/tmp/site", c.Build.OutputDir)
	assert.Equal(t, "Test Edition", c.Build.Edition)
	assert.Equal(t, 5, c.Indicators.YearWindow)
	assert.Equal(t, 2, c.Summary.Concurrency)
	assert.False(t, c.UNMembersOnly())
	assert.True(t, c.Quiet)
	assert.Equal(t, "/tmp/factbook.prom", c.MetricsFile)
}

// TestBuildFlagsDefaults verifies defaults stay when no flags are given.
func TestBuildFlagsDefaults(t *testing.T) {
	var flags buildFlags
	cmd := &cobra.Command{Use: "test"}
	flags.register(cmd)
	require.NoError(t, cmd.ParseFlags(nil))

	assert.Empty(t, flags.options(cmd))

	c := config.New()
	c.Update(flags.options(cmd))
	assert.Equal(t, config.New(), c)
}
