package irtool

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/irstream/format"
	"github.com/arloliu/irstream/ir"
)

const baseTs = 1_700_000_000_123 // 2023-11-14 22:13:20.123 UTC

var sampleEvents = []struct {
	ts  int64
	msg string
}{
	{baseTs, " INFO server started on port 8080"},
	{baseTs + 1000, " WARN disk 91% full"},
	{baseTs + 3000, " INFO request 42 served in 0.5 s"},
}

const sampleText = `2023-11-14 22:13:20.123+00:00 INFO server started on port 8080
2023-11-14 22:13:21.123+00:00 WARN disk 91% full
2023-11-14 22:13:23.123+00:00 INFO request 42 served in 0.5 s
`

func writeSample(t *testing.T, ct format.CompressionType) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "sample.clp")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w, err := ir.NewWriter(f, ir.NewMetadata(baseTs, "yyyy-MM-dd HH:mm:ss.SSS", "UTC"), ir.WithOutputCompression(ct))
	require.NoError(t, err)
	for _, ev := range sampleEvents {
		require.NoError(t, w.WriteLogEvent(ev.ts, ev.msg))
	}
	require.NoError(t, w.Close())

	return path
}

func run(t *testing.T, stdin io.Reader, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	if stdin != nil {
		cmd.SetIn(stdin)
	}
	err := cmd.Execute()

	return stdout.String(), stderr.String(), err
}

func TestDecode(t *testing.T) {
	path := writeSample(t, format.CompressionZstd)

	t.Run("text", func(t *testing.T) {
		out, _, err := run(t, nil, "decode", path)
		require.NoError(t, err)
		require.Equal(t, sampleText, out)
	})

	t.Run("stdin", func(t *testing.T) {
		data, err := os.ReadFile(path)
		require.NoError(t, err)

		out, _, err := run(t, bytes.NewReader(data), "decode", "-")
		require.NoError(t, err)
		require.Equal(t, sampleText, out)
	})

	t.Run("json with time zone and limit", func(t *testing.T) {
		out, _, err := run(t, nil, "decode", "--json", "--timezone", "Asia/Tokyo", "--limit", "1", path)
		require.NoError(t, err)

		var rec eventRecord
		require.NoError(t, json.Unmarshal([]byte(out), &rec))
		require.Equal(t, eventRecord{
			File:      path,
			Index:     0,
			Timestamp: baseTs,
			Time:      "2023-11-15 07:13:20.123+09:00",
			Message:   " INFO server started on port 8080",
		}, rec)
	})

	t.Run("debug logging", func(t *testing.T) {
		_, stderr, err := run(t, nil, "--log-level", "debug", "--log-format", "json", "decode", path)
		require.NoError(t, err)
		require.Contains(t, stderr, `"msg":"IR preamble decoded"`)
		require.Contains(t, stderr, `"msg":"file processed"`)
	})

	t.Run("errors", func(t *testing.T) {
		_, _, err := run(t, nil, "--log-level", "loud", "decode", path)
		require.Error(t, err)

		_, _, err = run(t, nil, "decode", "--compression", "gzip", path)
		require.Error(t, err)

		_, _, err = run(t, nil, "decode", "--timezone", "Nowhere/Special", path)
		require.Error(t, err)

		_, _, err = run(t, nil, "decode", filepath.Join(t.TempDir(), "missing.clp"))
		require.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestSearch(t *testing.T) {
	path := writeSample(t, format.CompressionS2)
	lines := strings.SplitAfter(sampleText, "\n")

	queryFile := filepath.Join(t.TempDir(), "query.yaml")
	require.NoError(t, os.WriteFile(queryFile, []byte(`
lower_bound: 1700000000000
upper_bound: 1700000002000
wildcards:
  - pattern: "*server*"
`), 0o600))

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"substring", []string{"-p", "info"}, lines[0] + lines[2]},
		{"case sensitive", []string{"-p", "info", "--case-sensitive"}, ""},
		{"full match", []string{"-p", "*disk ??% full", "--full-match"}, lines[1]},
		{"alternatives", []string{"-p", "port", "-p", "disk"}, lines[0] + lines[1]},
		{"time range", []string{"--since", "2023-11-14T22:13:21Z", "--until", "2023-11-14T22:13:21.5Z"}, lines[1]},
		{"epoch bounds", []string{"--lower", "1700000001000", "--upper", "1700000004000", "-p", "INFO"}, lines[2]},
		{"zero margin", []string{"--upper", "1700000000500", "--margin", "0s"}, lines[0]},
		{"query file", []string{"--query", queryFile}, lines[0]},
		{"query file with override", []string{"--query", queryFile, "--upper", "1700000005000", "-p", "request"}, lines[0] + lines[2]},
		{"count", []string{"-p", "INFO", "--count"}, "2\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append(append([]string{"search"}, tt.args...), path)
			out, _, err := run(t, nil, args...)
			require.NoError(t, err)
			require.Equal(t, tt.want, out)
		})
	}

	t.Run("invalid", func(t *testing.T) {
		_, _, err := run(t, nil, "search", "--lower", "10", "--upper", "5", path)
		require.Error(t, err)

		_, _, err = run(t, nil, "search", "--since", "yesterday", path)
		require.Error(t, err)

		_, _, err = run(t, nil, "search", "--lower", "10", "--since", "2023-11-14T22:13:21Z", path)
		require.Error(t, err)
	})
}

func TestEncode(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		for _, compression := range []string{"none", "zstd", "s2", "lz4"} {
			t.Run(compression, func(t *testing.T) {
				out := filepath.Join(t.TempDir(), "encoded.clp")
				_, _, err := run(t, strings.NewReader(sampleText), "encode", "-o", out, "--compression", compression)
				require.NoError(t, err)

				decoded, _, err := run(t, nil, "decode", out)
				require.NoError(t, err)
				require.Equal(t, sampleText, decoded)
			})
		}
	})

	t.Run("lines without timestamps", func(t *testing.T) {
		saved := nowFunc
		nowFunc = func() time.Time { return time.UnixMilli(baseTs) }
		defer func() { nowFunc = saved }()

		input := filepath.Join(t.TempDir(), "plain.log")
		require.NoError(t, os.WriteFile(input, []byte("first\n2023-11-14 22:13:25.000+00:00 second\nthird"), 0o600))

		out := filepath.Join(t.TempDir(), "encoded.clp")
		_, _, err := run(t, nil, "encode", "-o", out, input)
		require.NoError(t, err)

		decoded, _, err := run(t, nil, "decode", out)
		require.NoError(t, err)
		require.Equal(t, "2023-11-14 22:13:20.123+00:00first\n"+
			"2023-11-14 22:13:25.000+00:00 second\n"+
			"2023-11-14 22:13:25.000+00:00third\n", decoded)
	})

	t.Run("to stdout", func(t *testing.T) {
		encoded, _, err := run(t, strings.NewReader(sampleText), "encode", "--compression", "none")
		require.NoError(t, err)
		require.True(t, strings.HasPrefix(encoded, "\xfd\x2f\xb5\x29"))
	})

	t.Run("invalid compression", func(t *testing.T) {
		_, _, err := run(t, strings.NewReader(sampleText), "encode", "--compression", "auto")
		require.Error(t, err)
	})

	t.Run("output close error", func(t *testing.T) {
		outFile := &failingCloseFile{err: errors.New("quota exceeded")}
		saved := createFile
		createFile = func(string) (io.WriteCloser, error) { return outFile, nil }
		defer func() { createFile = saved }()

		_, _, err := run(t, strings.NewReader(sampleText), "encode", "-o", "encoded.clp", "--compression", "none")
		require.ErrorIs(t, err, outFile.err)
		require.True(t, outFile.closed)
		require.True(t, bytes.HasPrefix(outFile.Bytes(), []byte{0xFD, 0x2F, 0xB5, 0x29}))
	})

	t.Run("output closed on input error", func(t *testing.T) {
		outFile := &failingCloseFile{}
		saved := createFile
		createFile = func(string) (io.WriteCloser, error) { return outFile, nil }
		defer func() { createFile = saved }()

		_, _, err := run(t, nil, "encode", "-o", "encoded.clp", filepath.Join(t.TempDir(), "missing.log"))
		require.ErrorIs(t, err, os.ErrNotExist)
		require.True(t, outFile.closed)
	})
}

type failingCloseFile struct {
	bytes.Buffer
	err    error
	closed bool
}

func (f *failingCloseFile) Close() error {
	f.closed = true
	return f.err
}

func TestStats(t *testing.T) {
	path := writeSample(t, format.CompressionLZ4)

	out, _, err := run(t, nil, "stats", "--metrics", "--top", "2", path)
	require.NoError(t, err)

	require.Regexp(t, `compression:\s+LZ4\n`, out)
	require.Regexp(t, `timezone:\s+UTC\n`, out)
	require.Regexp(t, `events:\s+3\n`, out)
	require.Regexp(t, `earliest:\s+2023-11-14 22:13:20.123\+00:00\n`, out)
	require.Regexp(t, `latest:\s+2023-11-14 22:13:23.123\+00:00\n`, out)
	require.Regexp(t, `logtypes:\s+3\n`, out)
	require.Contains(t, out, "COUNT")
	require.Len(t, regexp.MustCompile(`(?m)^1\s+[0-9a-f]{16}\s+\S`).FindAllString(out, -1), 2)
	require.Contains(t, out, "irstream_decoder_events_decoded_total 3")
	require.Contains(t, out, "# TYPE irstream_buffer_refills_total counter")
}

func TestSplitTimestamp(t *testing.T) {
	tests := []struct {
		line string
		ts   int64
		msg  string
		ok   bool
	}{
		{"2023-11-14 22:13:20.123+00:00 hello\n", baseTs, " hello\n", true},
		{"2023-11-15 07:13:20.123+09:00x", baseTs, "x", true},
		{"2023-11-14 22:13:20.123+00:00", baseTs, "", true},
		{"2023-11-14T22:13:20.123Z hello", 0, "", false},
		{"short", 0, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			ts, msg, ok := splitTimestamp(tt.line)
			require.Equal(t, tt.ok, ok)
			require.Equal(t, tt.ts, ts)
			require.Equal(t, tt.msg, msg)
		})
	}
}
