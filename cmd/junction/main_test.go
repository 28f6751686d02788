package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags_Defaults(t *testing.T) {
	opts, err := parseFlags(nil, &bytes.Buffer{})
	require.NoError(t, err)

	assert.Equal(t, "intersection", opts.name)
	assert.NotZero(t, opts.seed)
	assert.Equal(t, 0, opts.cycles)
	assert.False(t, opts.simulate)

	config := opts.config()
	assert.Equal(t, 10*time.Second, config.GreenDuration)
	assert.Equal(t, time.Second, config.PollInterval)
	assert.Equal(t, 2*time.Second, config.CycleDelay)
	assert.Equal(t, 5, config.ClearanceThreshold)
	assert.NoError(t, config.Validate())
}

func TestParseFlags_Units(t *testing.T) {
	opts, err := parseFlags([]string{
		"--time-unit=100ms", "--green-units=20", "--poll-units=2", "--delay-units=0", "--threshold=3", "--name=oak",
	}, &bytes.Buffer{})
	require.NoError(t, err)

	config := opts.config()
	assert.Equal(t, "oak", config.Name)
	assert.Equal(t, 2*time.Second, config.GreenDuration)
	assert.Equal(t, 200*time.Millisecond, config.PollInterval)
	assert.Equal(t, time.Duration(0), config.CycleDelay)
	assert.Equal(t, 3, config.ClearanceThreshold)
}

func TestParseFlags_Errors(t *testing.T) {
	_, err := parseFlags([]string{"--cycles=-1"}, &bytes.Buffer{})
	assert.Error(t, err)

	_, err = parseFlags([]string{"--no-such-flag"}, &bytes.Buffer{})
	assert.Error(t, err)

	help := &bytes.Buffer{}
	_, err = parseFlags([]string{"--help"}, help)
	assert.True(t, errors.Is(err, pflag.ErrHelp))
	assert.Contains(t, help.String(), "--green-units")
}

func TestRun_Simulated(t *testing.T) {
	out := &bytes.Buffer{}

	err := run(context.Background(), []string{"--simulate", "--cycles=25", "--seed=7", "--validate"}, out)
	require.NoError(t, err)

	summary := out.String()
	for _, lane := range []string{"left=", "right=", "top=", "bottom="} {
		assert.True(t, strings.Contains(summary, lane), "summary %q missing %s", summary, lane)
	}
}

func TestRun_InvalidConfiguration(t *testing.T) {
	err := run(context.Background(), []string{"--simulate", "--cycles=1", "--green-units=0"}, &bytes.Buffer{})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "GreenDuration")
}

func TestRun_InvalidLogLevel(t *testing.T) {
	err := run(context.Background(), []string{"--log-level=loud"}, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestRun_WritesDOTFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "final.dot")

	err := run(context.Background(), []string{"--simulate", "--cycles=4", "--seed=11", "--name=elm", "--dot", path}, &bytes.Buffer{})
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	dot := string(content)
	assert.True(t, strings.HasPrefix(dot, "digraph Intersection {"))
	assert.Contains(t, dot, `label="elm: cycle 4, `)
	assert.Contains(t, dot, "fillcolor=palegreen")
}

func TestRun_DOTFileError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "final.dot")

	err := run(context.Background(), []string{"--simulate", "--cycles=1", "--dot", path}, &bytes.Buffer{})
	assert.Error(t, err)
}
