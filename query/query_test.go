package query

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/irstream/errs"
)

type event struct {
	ts  int64
	msg string
}

func (e event) Timestamp() int64 { return e.ts }
func (e event) Message() string  { return e.msg }

func TestNew_TerminationTimestamp(t *testing.T) {
	tests := []struct {
		name        string
		lower       int64
		upper       int64
		opts        []Option
		termination int64
	}{
		{"explicit margin", 100, 200, []Option{WithTerminationMargin(60_000)}, 60_200},
		{"default margin", 100, 200, nil, 200 + DefaultTerminationMargin},
		{"zero margin", 100, 200, []Option{WithTerminationMargin(0)}, 200},
		{"saturates", 0, math.MaxInt64 - 10, nil, math.MaxInt64},
		{"unbounded", DefaultLowerBound, DefaultUpperBound, nil, math.MaxInt64},
		{"equal bounds", 5, 5, []Option{WithTerminationMargin(1)}, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := New(tt.lower, tt.upper, nil, tt.opts...)
			require.NoError(t, err)
			require.Equal(t, tt.termination, q.TerminationTimestamp())
			require.Equal(t, tt.termination-tt.upper, q.TerminationMargin())
			require.Equal(t, tt.lower, q.LowerBound())
			require.Equal(t, tt.upper, q.UpperBound())
		})
	}
}

func TestNew_Invalid(t *testing.T) {
	_, err := New(200, 100, nil)
	require.ErrorIs(t, err, errs.ErrInvalidQuery)

	_, err = New(100, 200, nil, WithTerminationMargin(-1))
	require.ErrorIs(t, err, errs.ErrInvalidQuery)
}

func TestQuery_MatchesTimeRange(t *testing.T) {
	q, err := New(100, 200, nil)
	require.NoError(t, err)

	require.False(t, q.MatchesTimeRange(99))
	require.True(t, q.MatchesTimeRange(100))
	require.True(t, q.MatchesTimeRange(150))
	require.True(t, q.MatchesTimeRange(200))
	require.False(t, q.MatchesTimeRange(201))
}

func TestQuery_IsSafelyPast(t *testing.T) {
	q, err := New(100, 200, nil, WithTerminationMargin(60_000))
	require.NoError(t, err)

	require.False(t, q.IsSafelyPast(201))
	require.False(t, q.IsSafelyPast(60_200))
	require.True(t, q.IsSafelyPast(60_201))

	require.False(t, NewDefault().IsSafelyPast(math.MaxInt64))
}

func TestQuery_MatchesWildcards(t *testing.T) {
	q, err := New(0, 1000, []WildcardQuery{
		FullString("*disk full*", false),
		Substring("Timeout", true),
	})
	require.NoError(t, err)

	tests := []struct {
		msg  string
		want bool
	}{
		{"ERROR: DISK FULL on /dev/sda", true},
		{"connection Timeout after 30s", true},
		{"connection timeout after 30s", false},
		{"all good", false},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, q.MatchesWildcards(tt.msg), tt.msg)
	}

	require.True(t, NewDefault().MatchesWildcards("anything"))
}

func TestQuery_Matches(t *testing.T) {
	q, err := New(100, 200, []WildcardQuery{Substring("error", false)})
	require.NoError(t, err)

	require.True(t, q.Matches(event{150, "an Error occurred"}))
	require.False(t, q.Matches(event{250, "an Error occurred"}))
	require.False(t, q.Matches(event{150, "fine"}))
}

func TestQuery_Immutable(t *testing.T) {
	wildcards := []WildcardQuery{Substring("a", false)}
	q, err := New(0, 10, wildcards)
	require.NoError(t, err)

	wildcards[0].Pattern = "b"
	require.Equal(t, "a", q.Wildcards()[0].Pattern)

	got := q.Wildcards()
	got[0].Pattern = "c"
	require.Equal(t, "a", q.Wildcards()[0].Pattern)
}

func TestQuery_Fingerprint(t *testing.T) {
	a, err := New(0, 10, []WildcardQuery{Substring("x", false)})
	require.NoError(t, err)
	b, err := New(0, 10, []WildcardQuery{Substring("x", false)})
	require.NoError(t, err)
	c, err := New(0, 10, []WildcardQuery{Substring("x", true)})
	require.NoError(t, err)

	require.Equal(t, a.Fingerprint(), b.Fingerprint())
	require.NotEqual(t, a.Fingerprint(), c.Fingerprint())
	require.NotEqual(t, a.Fingerprint(), NewDefault().Fingerprint())
}

func TestWildcardQuery_PartialMatchEquivalence(t *testing.T) {
	messages := []string{"", "abc", "xxabcxx", "ABC", "a?c", `a\c`}
	patterns := []string{"abc", "a?c", "a*c", `a\?c`, ""}

	for _, p := range patterns {
		for _, m := range messages {
			for _, cs := range []bool{true, false} {
				partial := WildcardQuery{Pattern: p, CaseSensitive: cs, PartialMatch: true}
				full := WildcardQuery{Pattern: "*" + p + "*", CaseSensitive: cs}
				require.Equal(t, full.Matches(m), partial.Matches(m), "pattern %q message %q", p, m)
			}
		}
	}

	require.True(t, Substring(`a\`, true).Matches(`xa\c`))
}

func TestBuilder(t *testing.T) {
	b := NewBuilder()
	require.Equal(t, DefaultLowerBound, b.LowerBound())
	require.Equal(t, DefaultUpperBound, b.UpperBound())
	require.Equal(t, DefaultTerminationMargin, b.TerminationMargin())
	require.Empty(t, b.Wildcards())

	q, err := b.SetLowerBound(100).
		SetUpperBound(200).
		SetTerminationMargin(10).
		AddWildcard(Substring("a", false)).
		AddWildcards(FullString("b", true), FullString("c", true)).
		Build()
	require.NoError(t, err)
	require.Equal(t, int64(210), q.TerminationTimestamp())
	require.Len(t, q.Wildcards(), 3)

	_, err = b.SetLowerBound(300).Build()
	require.ErrorIs(t, err, errs.ErrInvalidQuery)

	b.ResetLowerBound()
	require.Equal(t, DefaultLowerBound, b.LowerBound())

	b.Reset()
	require.Equal(t, DefaultUpperBound, b.UpperBound())
	require.Equal(t, DefaultTerminationMargin, b.TerminationMargin())
	require.Empty(t, b.Wildcards())
}

func TestConfig(t *testing.T) {
	t.Run("epoch bounds", func(t *testing.T) {
		cfg, err := ParseConfig([]byte(`
lower_bound: 100
upper_bound: 200
termination_margin: 1m
wildcards:
  - pattern: "*reset*"
  - pattern: ERROR
    case_sensitive: true
    partial_match: true
`))
		require.NoError(t, err)

		q, err := cfg.Build()
		require.NoError(t, err)
		require.Equal(t, int64(100), q.LowerBound())
		require.Equal(t, int64(200), q.UpperBound())
		require.Equal(t, int64(60_200), q.TerminationTimestamp())
		require.Equal(t, []WildcardQuery{
			{Pattern: "*reset*"},
			{Pattern: "ERROR", CaseSensitive: true, PartialMatch: true},
		}, q.Wildcards())
	})

	t.Run("timestamp bounds", func(t *testing.T) {
		cfg, err := ParseConfig([]byte("since: 2024-03-01T10:00:00Z\nuntil: 2024-03-01T11:00:00Z\n"))
		require.NoError(t, err)

		q, err := cfg.Build()
		require.NoError(t, err)
		since := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
		require.Equal(t, since.UnixMilli(), q.LowerBound())
		require.Equal(t, since.Add(time.Hour).UnixMilli(), q.UpperBound())
		require.Equal(t, DefaultTerminationMargin, q.TerminationMargin())
	})

	t.Run("empty", func(t *testing.T) {
		cfg, err := ParseConfig(nil)
		require.NoError(t, err)

		q, err := cfg.Build()
		require.NoError(t, err)
		require.Equal(t, NewDefault().Fingerprint(), q.Fingerprint())
	})

	t.Run("invalid yaml", func(t *testing.T) {
		_, err := ParseConfig([]byte("lower_bound: [1"))
		require.ErrorIs(t, err, errs.ErrInvalidQuery)
	})

	t.Run("load from file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "query.yaml")
		require.NoError(t, os.WriteFile(path, []byte("upper_bound: 5\n"), 0o600))

		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		q, err := cfg.Build()
		require.NoError(t, err)
		require.Equal(t, int64(5), q.UpperBound())

		_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
		require.Error(t, err)
	})
}
