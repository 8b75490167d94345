package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/require"

	"fsyncprof/internal/timeline"
)

var sampleLog = []string{
	`0.500000:0020:A:warn:threadname:NtSetInformationThread Thread renamed to L"Worker"`,
	"1.000000:0020:A:trace:fsync:__fsync_wait_objects Waiting for any of 1 handles: 0x10, alertable 0, timeout INFINITE.",
	"1.000500:0020:B:trace:fsync:fsync_set_event 0x10.",
	"1.000800:0020:A:trace:fsync:__fsync_wait_objects Woken up by handle 0x10 [0].",
}

const sampleFragments = `{"name":"event 10","ph":"i","tid":"B","pid":"fsync signal","ts":1000500},
{"name":"any 10 [signal by B]","ph":"X","tid":"A (Worker)","pid":"fsync wait","ts":1000000,"dur":800},
`

func writeLog(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fsync.log")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
	return path
}

func execute(args ...string) (string, string, error) {
	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--ui", "off"}, args...))
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestConvertWritesFragments(t *testing.T) {
	path := writeLog(t, sampleLog...)

	stdout, stderr, err := execute(path, "--quiet")
	require.NoError(t, err)
	require.Equal(t, sampleFragments, stdout)
	require.Empty(t, stderr)
}

func TestConvertSummary(t *testing.T) {
	path := writeLog(t, sampleLog...)

	_, stderr, err := execute(path, "--timings")
	require.NoError(t, err)
	require.Contains(t, stderr, "4 lines, 4 matched")
	require.Contains(t, stderr, "waits 1, timeouts 0, signals 1, reads 0")
	require.Contains(t, stderr, "timings:")
	require.Contains(t, stderr, "convert")
}

func TestConvertWindowToDocument(t *testing.T) {
	path := writeLog(t, sampleLog...)
	out := filepath.Join(t.TempDir(), "profile.json")

	stdout, _, err := execute(path, "--quiet", "--format", "document", "-o", out,
		"--start", "1.0005", "--duration", "0.0001")
	require.NoError(t, err)
	require.Empty(t, stdout)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Equal(t, "{\"traceEvents\":[\n"+
		`{"name":"event 10","ph":"i","tid":"B","pid":"fsync signal","ts":1000500}`+
		"\n]}\n", string(data))

	var doc struct {
		TraceEvents []map[string]any `json:"traceEvents"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	require.Len(t, doc.TraceEvents, 1)
}

func TestConvertAppends(t *testing.T) {
	path := writeLog(t, sampleLog...)
	out := filepath.Join(t.TempDir(), "profile.json")
	require.NoError(t, os.WriteFile(out, []byte("[\n"), 0o644))

	for range 2 {
		_, _, err := execute(path, "--quiet", "-o", out, "--append")
		require.NoError(t, err)
	}
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Equal(t, "[\n"+sampleFragments+sampleFragments, string(data))
}

func TestAppendRejectsDocument(t *testing.T) {
	path := writeLog(t, sampleLog...)
	out := filepath.Join(t.TempDir(), "profile.json")

	_, _, err := execute(path, "--format", "document", "-o", out, "--append")
	require.ErrorContains(t, err, "--append")
}

func TestConvertViolationKeepsEarlierOutput(t *testing.T) {
	path := writeLog(t,
		"1.000000:0020:B:trace:fsync:fsync_set_event 0x10.",
		"1.000100:0020:A:trace:fsync:__fsync_wait_objects Waiting for any of 1 handles: 0x10, alertable 0, timeout INFINITE.",
		"1.000200:0020:A:trace:fsync:__fsync_wait_objects Waiting for any of 1 handles: 0x11, alertable 0, timeout INFINITE.",
	)

	stdout, _, err := execute(path, "--quiet", "--context", "2")
	require.Error(t, err)
	require.True(t, errors.Is(err, timeline.ErrDuplicateWait))
	require.Equal(t, `{"name":"event 10","ph":"i","tid":"B","pid":"fsync signal","ts":1000000},`+"\n", stdout)

	var lineErr *timeline.LineError
	require.True(t, errors.As(err, &lineErr))
	require.Equal(t, 3, lineErr.Line)
	require.Len(t, lineErr.Context, 2)

	orig := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = orig }()

	var report bytes.Buffer
	reportError(&report, err)
	text := report.String()
	require.True(t, strings.HasPrefix(text, "error: line 3: "))
	require.Contains(t, text, "preceding lines:")
	require.Contains(t, text, "      1 | 1.000000:0020:B:trace:fsync:fsync_set_event 0x10.")
	require.Contains(t, text, "      3 > 1.000200:0020:A")
}

func TestConvertUnmatchedWake(t *testing.T) {
	path := writeLog(t, "1.000800:0020:A:trace:fsync:__fsync_wait_objects Woken up by handle 0x10 [0].")

	_, _, err := execute(path, "--quiet")
	require.True(t, errors.Is(err, timeline.ErrUnmatchedWake))
	require.ErrorContains(t, err, "line 1")
}

func TestConvertGzipLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fsync.log.gz")
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(strings.Join(sampleLog, "\n") + "\n"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	stdout, _, err := execute(path, "--quiet")
	require.NoError(t, err)
	require.Equal(t, sampleFragments, stdout)
}

func TestConvertUsesCache(t *testing.T) {
	path := writeLog(t, sampleLog...)
	cacheDir := t.TempDir()

	first, _, err := execute(path, "--quiet", "--cache", "--cache-dir", cacheDir)
	require.NoError(t, err)
	entries, err := filepath.Glob(filepath.Join(cacheDir, "runs", "*.mp"))
	require.NoError(t, err)
	require.Len(t, entries, 1)

	second, stderr, err := execute(path, "--cache", "--cache-dir", cacheDir)
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, sampleFragments, second)
	require.Contains(t, stderr, "4 lines")

	// Different options use a different entry.
	_, _, err = execute(path, "--quiet", "--cache", "--cache-dir", cacheDir, "--no-reads")
	require.NoError(t, err)
	entries, err = filepath.Glob(filepath.Join(cacheDir, "runs", "*.mp"))
	require.NoError(t, err)
	require.Len(t, entries, 2)
}

func TestConfigFileAndFlagOverride(t *testing.T) {
	path := writeLog(t, sampleLog...)
	cfg := filepath.Join(t.TempDir(), "fsyncprof.toml")
	require.NoError(t, os.WriteFile(cfg, []byte(`
[window]
start = 5.0
duration = 1.0

[buckets]
wait = "waits"
signal = "signals"

[output]
format = "ndjson"
`), 0o644))

	// The configured window excludes everything.
	stdout, _, err := execute(path, "--quiet", "--config", cfg)
	require.NoError(t, err)
	require.Empty(t, stdout)

	stdout, _, err = execute(path, "--quiet", "--config", cfg, "--duration", "0")
	require.NoError(t, err)
	require.Equal(t, `{"name":"event 10","ph":"i","tid":"B","pid":"signals","ts":1000500}
{"name":"any 10 [signal by B]","ph":"X","tid":"A (Worker)","pid":"waits","ts":1000000,"dur":800}
`, stdout)
}

func TestCheckReportsOpenWaits(t *testing.T) {
	path := writeLog(t, append(sampleLog,
		"2.000000:0020:A:trace:fsync:__fsync_wait_objects Waiting for all of 2 handles: 0x20 0x21, alertable 0, timeout INFINITE.",
		"2.000100:0020:C:trace:fsync:fsync_release_semaphore 0x30, count 1, prev 0.",
	)...)

	stdout, stderr, err := execute("check", path, "--log-level", "error")
	require.NoError(t, err)
	require.Contains(t, stdout, "fsync.log: ok")
	require.Contains(t, stdout, "open wait A (Worker): all 20, 21 since 2000000 us")
	require.Contains(t, stdout, "1 signaled handles were never waited on")
	require.Contains(t, stderr, "6 lines, 6 matched")
}

func TestCheckFailsOnViolation(t *testing.T) {
	path := writeLog(t, "1.000000:0020:A:trace:fsync:__fsync_wait_objects Wait timed out.")

	_, _, err := execute("check", path, "--quiet")
	require.True(t, errors.Is(err, timeline.ErrUnmatchedWake))
}

func TestVersionJSON(t *testing.T) {
	stdout, _, err := execute("version", "--format", "json", "--full")
	require.NoError(t, err)

	var info buildInfo
	require.NoError(t, json.Unmarshal([]byte(stdout), &info))
	require.Equal(t, "fsyncprof", info.Tool)
	require.NotEmpty(t, info.Version)
	require.NotEmpty(t, info.GoVersion)
	require.NotEmpty(t, info.GitCommit)

	stdout, _, err = execute("version", "--format", "json")
	require.NoError(t, err)
	require.NotContains(t, stdout, "git_commit")
}

func TestReadBuildInfoFallsBackToVCS(t *testing.T) {
	info := readBuildInfo(func() (*debug.BuildInfo, bool) {
		return &debug.BuildInfo{Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "abc123"},
			{Key: "vcs.time", Value: "2026-01-02T03:04:05Z"},
		}}, true
	})
	require.Equal(t, "abc123", info.GitCommit)
	require.Equal(t, "2026-01-02T03:04:05Z", info.BuildDate)

	info = readBuildInfo(func() (*debug.BuildInfo, bool) { return nil, false })
	require.Equal(t, "unknown", info.GitCommit)
}

func TestInvalidFlags(t *testing.T) {
	path := writeLog(t, sampleLog...)

	_, _, err := execute(path, "--format", "xml")
	require.Error(t, err)
	_, _, err = execute(path, "--start", "-1")
	require.Error(t, err)

	cmd := newRootCmd()
	cmd.SetArgs([]string{"--ui", "sometimes", path})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	require.ErrorContains(t, cmd.Execute(), "invalid --ui value")
}
