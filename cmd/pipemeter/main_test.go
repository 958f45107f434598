package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bamsammich/pipemeter/internal/config"
	"github.com/bamsammich/pipemeter/internal/event"
	"github.com/bamsammich/pipemeter/internal/meter"
)

func ptr[T any](v T) *T { return &v }

func parseFlags(t *testing.T, args ...string) (*options, func(config.DefaultsConfig) error) {
	t.Helper()
	opts := &options{}
	cmd := newRootCmd(opts)
	require.NoError(t, cmd.ParseFlags(args))
	return opts, func(d config.DefaultsConfig) error { return applyConfigDefaults(cmd, d, opts) }
}

func TestApplyConfigDefaults(t *testing.T) {
	defaults := config.DefaultsConfig{
		LineMode:  ptr(true),
		Null:      ptr(true),
		DirectIO:  ptr(true),
		RateLimit: ptr("2M"),
		Interval:  ptr("250ms"),
		Hash:      ptr("xxhash"),
	}

	t.Run("fills unset flags", func(t *testing.T) {
		opts, apply := parseFlags(t)
		require.NoError(t, apply(defaults))

		assert.True(t, opts.lineMode)
		assert.True(t, opts.null)
		assert.True(t, opts.directIO)
		assert.Equal(t, int64(2<<20), opts.rateLimit.Bytes)
		assert.Equal(t, 250*time.Millisecond, opts.interval)
		assert.Equal(t, "xxhash", opts.hash)
	})

	t.Run("command line wins", func(t *testing.T) {
		opts, apply := parseFlags(t,
			"--line-mode=false", "-0=false", "--direct-io=false",
			"-L", "10K", "-i", "2s", "--hash", "blake3")
		require.NoError(t, apply(defaults))

		assert.False(t, opts.lineMode)
		assert.False(t, opts.null)
		assert.False(t, opts.directIO)
		assert.Equal(t, int64(10<<10), opts.rateLimit.Bytes)
		assert.Equal(t, 2*time.Second, opts.interval)
		assert.Equal(t, "blake3", opts.hash)
	})

	t.Run("empty config keeps flag defaults", func(t *testing.T) {
		opts, apply := parseFlags(t)
		require.NoError(t, apply(config.DefaultsConfig{}))

		assert.False(t, opts.lineMode)
		assert.Zero(t, opts.rateLimit.Bytes)
		assert.Equal(t, time.Second, opts.interval)
		assert.Empty(t, opts.hash)
	})

	t.Run("bad values", func(t *testing.T) {
		_, apply := parseFlags(t)
		assert.ErrorContains(t, apply(config.DefaultsConfig{RateLimit: ptr("fast")}), "rate_limit")

		_, apply = parseFlags(t)
		assert.ErrorContains(t, apply(config.DefaultsConfig{Interval: ptr("soon")}), "interval")
	})
}

func TestSizeFlags(t *testing.T) {
	opts, _ := parseFlags(t, "-s", "1.5K", "-S", "-l")
	assert.Equal(t, int64(1536), opts.size.Bytes)
	assert.True(t, opts.stopAtSize)
	assert.True(t, opts.lineMode)

	cmd := newRootCmd(&options{})
	assert.Error(t, cmd.ParseFlags([]string{"--size", "-3"}))
}

func TestVersion(t *testing.T) {
	var out bytes.Buffer
	cmd := newRootCmd(&options{})
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--version"})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "pipemeter dev\n", out.String())
}

func TestUnknownHashIsUsageError(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	assert.Equal(t, 1, run([]string{"--hash", "md5", os.DevNull}))
}

func TestExitFor(t *testing.T) {
	var st meter.Status
	assert.NoError(t, exitFor(&st, nil))

	var exitErr *exitError
	require.ErrorAs(t, exitFor(&st, context.Canceled), &exitErr)
	assert.Equal(t, 1, exitErr.code)

	st.Add(meter.KindIO)
	st.Add(meter.KindInputIsOutput)
	require.ErrorAs(t, exitFor(&st, errors.New("write: broken pipe")), &exitErr)
	assert.Equal(t, 6, exitErr.code)
	assert.Equal(t, "exit code 6", exitErr.Error())
}

func TestLogEvent(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	logEvent(logger, event.Event{
		Type:  event.InputFinished,
		Input: "a.log",
		Index: 2,
		Size:  42,
		Error: errors.New("short read"),
	})

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "pipemeter.event", rec["msg"])
	assert.Equal(t, "InputFinished", rec["type"])
	assert.Equal(t, "a.log", rec["input"])
	assert.InDelta(t, 2, rec["index"], 0)
	assert.InDelta(t, 42, rec["size"], 0)
	assert.Equal(t, "short read", rec["error"])
}

func TestTeeEventsForwardsAll(t *testing.T) {
	in := make(chan event.Event, 2)
	in <- event.Event{Type: event.InputOpened}
	in <- event.Event{Type: event.InputFinished}
	close(in)

	var got []event.Type
	for ev := range teeEvents(in) {
		got = append(got, ev.Type)
	}
	assert.Equal(t, []event.Type{event.InputOpened, event.InputFinished}, got)
}

func TestGenDocs(t *testing.T) {
	dir := t.TempDir()
	cmd := newRootCmd(&options{})
	cmd.SetArgs([]string{"gen-docs", "--format", "markdown", "--dir", dir})
	require.NoError(t, cmd.Execute())
	assert.FileExists(t, filepath.Join(dir, "pipemeter.md"))

	cmd = newRootCmd(&options{})
	cmd.SetArgs([]string{"gen-docs", "--format", "pdf", "--dir", dir})
	assert.ErrorContains(t, cmd.Execute(), "unknown format")
}
