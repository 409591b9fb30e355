package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/accessmon/config"
)

func TestParseFlags_Defaults(t *testing.T) {
	cli, err := parseFlags(nil, io.Discard)
	require.NoError(t, err)

	defaults := config.DefaultConfig()
	assert.Equal(t, "-", cli.InputPath)
	assert.Equal(t, "-", cli.OutputPath)
	assert.False(t, cli.Append)
	assert.Equal(t, "info", cli.LogLevel)
	assert.Equal(t, "text", cli.LogFormat)
	assert.Equal(t, 0, cli.MetricsPort)
	assert.Empty(t, cli.ConfigPaths)
	assert.Empty(t, cli.explicit)
	assert.Equal(t, defaults.StatsWindow, cli.StatsWindow)
	assert.Equal(t, defaults.ChronologyPolicy, cli.ChronologyPolicy)
}

func TestParseFlags_EnvFallback(t *testing.T) {
	t.Setenv("ACCESSMON_INPUT", "access.csv")
	t.Setenv("ACCESSMON_OUTPUT", "report.log")
	t.Setenv("ACCESSMON_APPEND", "true")
	t.Setenv("ACCESSMON_METRICS_PORT", "9100")
	t.Setenv("ACCESSMON_LOG_FORMAT", "json")
	t.Setenv("ACCESSMON_CONFIG", "base.yaml, local.json")

	cli, err := parseFlags(nil, io.Discard)
	require.NoError(t, err)

	assert.Equal(t, "access.csv", cli.InputPath)
	assert.Equal(t, "report.log", cli.OutputPath)
	assert.True(t, cli.Append)
	assert.Equal(t, 9100, cli.MetricsPort)
	assert.Equal(t, "json", cli.LogFormat)
	assert.Equal(t, []string{"base.yaml", "local.json"}, cli.ConfigPaths)
}

func TestParseFlags_ConfigFlagReplacesEnv(t *testing.T) {
	t.Setenv("ACCESSMON_CONFIG", "env.yaml")

	cli, err := parseFlags([]string{"-c", "first.json", "--config", "second.yaml"}, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, []string{"first.json", "second.yaml"}, cli.ConfigPaths)
}

func TestParseFlags_ExplicitFlags(t *testing.T) {
	cli, err := parseFlags([]string{"--alert-rate", "5", "-i", "in.csv", "--debug"}, io.Discard)
	require.NoError(t, err)

	assert.True(t, cli.explicit["alert-rate"])
	assert.True(t, cli.explicit["i"])
	assert.False(t, cli.explicit["alert-window"])
	assert.Equal(t, int64(5), cli.AlertRate)
	assert.Equal(t, "in.csv", cli.InputPath)
	assert.Equal(t, "debug", cli.LogLevel)
}

func TestParseFlags_Errors(t *testing.T) {
	var stderr bytes.Buffer

	_, err := parseFlags([]string{"--no-such-flag"}, &stderr)
	assert.Error(t, err)

	_, err = parseFlags([]string{"extra"}, io.Discard)
	assert.Error(t, err)

	_, err = parseFlags([]string{"--alert-rate", "ten"}, io.Discard)
	assert.Error(t, err)
}

func TestValidateFlags(t *testing.T) {
	input := filepath.Join(t.TempDir(), "access.csv")
	require.NoError(t, os.WriteFile(input, []byte("x"), 0644))

	valid := func() *CLIConfig {
		return &CLIConfig{InputPath: "-", OutputPath: "-", LogLevel: "info", LogFormat: "text"}
	}

	tests := []struct {
		name    string
		mutate  func(c *CLIConfig)
		wantErr bool
	}{
		{"defaults", func(*CLIConfig) {}, false},
		{"existing input", func(c *CLIConfig) { c.InputPath = input }, false},
		{"missing input", func(c *CLIConfig) { c.InputPath = input + ".missing" }, true},
		{"bad level", func(c *CLIConfig) { c.LogLevel = "trace" }, true},
		{"bad format", func(c *CLIConfig) { c.LogFormat = "xml" }, true},
		{"bad port", func(c *CLIConfig) { c.MetricsPort = 70000 }, true},
		{"append to stdout", func(c *CLIConfig) { c.Append = true }, true},
		{"append to file", func(c *CLIConfig) { c.Append = true; c.OutputPath = "out.log" }, false},
		{"version skips checks", func(c *CLIConfig) { c.LogLevel = "trace"; c.ShowVersion = true }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := validateFlags(c)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadConfiguration_Precedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accessmon.yaml")
	require.NoError(t, os.WriteFile(path, []byte("stats_window: 20\nalert_window: 60\nalert_rate: 5\n"), 0644))

	t.Setenv("ACCESSMON_ALERT_RATE", "7")
	t.Setenv("ACCESSMON_ALERT_WINDOW", "90")

	cli, err := parseFlags([]string{"-c", path, "--alert-window", "30"}, io.Discard)
	require.NoError(t, err)

	cfg, err := loadConfiguration(cli)
	require.NoError(t, err)

	assert.Equal(t, int64(20), cfg.StatsWindow, "file over default")
	assert.Equal(t, int64(7), cfg.AlertRate, "env over file")
	assert.Equal(t, int64(30), cfg.AlertWindow, "flag over env")
	assert.Equal(t, config.DefaultConfig().MaxTimestampError, cfg.MaxTimestampError)
}

func TestLoadConfiguration_InvalidFlagValue(t *testing.T) {
	cli, err := parseFlags([]string{"--chronology-policy", "ignore"}, io.Discard)
	require.NoError(t, err)

	_, err = loadConfiguration(cli)
	assert.Error(t, err)
}
