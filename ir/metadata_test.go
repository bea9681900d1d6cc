package ir

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/irstream/errs"
	"github.com/arloliu/irstream/format"
)

func TestMetadata_JSONRoundTrip(t *testing.T) {
	m := NewMetadata(1_700_000_000_123, "yyyy-MM-dd HH:mm:ss", "UTC")

	data, err := m.MarshalJSON()
	require.NoError(t, err)

	var fields map[string]string
	require.NoError(t, json.Unmarshal(data, &fields))
	require.Equal(t, "1700000000123", fields[format.MetadataReferenceTimestampKey])
	require.Equal(t, format.CurrentVersion, fields[format.MetadataVersionKey])
	require.Equal(t, format.VariablesSchemaID, fields[format.MetadataVariablesSchemaIDKey])
	require.Equal(t, format.VariableEncodingMethodsID, fields[format.MetadataVariableEncodingMethodsIDKey])
	require.Equal(t, format.TimestampPatternSyntax, fields[format.MetadataTimestampPatternSyntaxKey])

	parsed, err := parseMetadata(data)
	require.NoError(t, err)
	require.Equal(t, m.ReferenceTimestamp(), parsed.ReferenceTimestamp())
	require.Equal(t, m.TimestampFormat(), parsed.TimestampFormat())
	require.Equal(t, m.TimezoneID(), parsed.TimezoneID())
	require.Equal(t, m.Version(), parsed.Version())
	require.True(t, parsed.IsFourByteEncoding())
}

func TestMetadata_Accessors(t *testing.T) {
	m := NewMetadata(1_700_000_000_123, "yyyy-MM-dd HH:mm:ss", "Asia/Tokyo")

	require.Equal(t, int64(1_700_000_000_123), m.ReferenceTimestamp())
	require.Equal(t, "yyyy-MM-dd HH:mm:ss", m.TimestampFormat())
	require.Equal(t, "Asia/Tokyo", m.TimezoneID())
	require.Equal(t, format.CurrentVersion, m.Version())
	require.True(t, m.IsFourByteEncoding())
}

func TestParseMetadata_Errors(t *testing.T) {
	tests := []struct {
		name string
		json string
		err  error
	}{
		{"not json", `{"VERSION":`, errs.ErrMetadataCorrupted},
		{"missing version", `{"REFERENCE_TIMESTAMP":"0","TIMESTAMP_PATTERN":"","TZ_ID":"UTC"}`, errs.ErrMetadataCorrupted},
		{"missing reference timestamp", `{"VERSION":"0.0.1","TIMESTAMP_PATTERN":"","TZ_ID":"UTC"}`, errs.ErrMetadataCorrupted},
		{"numeric reference timestamp", `{"VERSION":"0.0.1","REFERENCE_TIMESTAMP":5,"TIMESTAMP_PATTERN":"","TZ_ID":"UTC"}`, errs.ErrMetadataCorrupted},
		{"invalid reference timestamp", `{"VERSION":"0.0.1","REFERENCE_TIMESTAMP":"abc","TIMESTAMP_PATTERN":"","TZ_ID":"UTC"}`, errs.ErrMetadataCorrupted},
		{"missing pattern", `{"VERSION":"0.0.1","REFERENCE_TIMESTAMP":"0","TZ_ID":"UTC"}`, errs.ErrMetadataCorrupted},
		{"missing timezone", `{"VERSION":"0.0.1","REFERENCE_TIMESTAMP":"0","TIMESTAMP_PATTERN":""}`, errs.ErrMetadataCorrupted},
		{"invalid version", `{"VERSION":"v1","REFERENCE_TIMESTAMP":"0","TIMESTAMP_PATTERN":"","TZ_ID":"UTC"}`, errs.ErrUnsupportedVersion},
		{"too old", `{"VERSION":"0.0.0","REFERENCE_TIMESTAMP":"0","TIMESTAMP_PATTERN":"","TZ_ID":"UTC"}`, errs.ErrUnsupportedVersion},
		{"too new", `{"VERSION":"0.1.0","REFERENCE_TIMESTAMP":"0","TIMESTAMP_PATTERN":"","TZ_ID":"UTC"}`, errs.ErrUnsupportedVersion},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseMetadata([]byte(tt.json))
			require.ErrorIs(t, err, tt.err)
		})
	}
}

func TestParseVersion(t *testing.T) {
	tests := []struct {
		in   string
		want [3]uint64
		ok   bool
	}{
		{"0.0.1", [3]uint64{0, 0, 1}, true},
		{"10.2.33", [3]uint64{10, 2, 33}, true},
		{"1.0", [3]uint64{}, false},
		{"1.0.0.0", [3]uint64{}, false},
		{"01.0.0", [3]uint64{}, false},
		{"1..0", [3]uint64{}, false},
		{"a.b.c", [3]uint64{}, false},
		{"-1.0.0", [3]uint64{}, false},
	}

	for _, tt := range tests {
		got, ok := parseVersion(tt.in)
		require.Equal(t, tt.ok, ok, tt.in)
		if tt.ok {
			require.Equal(t, tt.want, got)
		}
	}

	require.Equal(t, -1, compareVersions([3]uint64{0, 0, 1}, [3]uint64{0, 1, 0}))
	require.Equal(t, 0, compareVersions([3]uint64{1, 2, 3}, [3]uint64{1, 2, 3}))
	require.Equal(t, 1, compareVersions([3]uint64{2, 0, 0}, [3]uint64{1, 9, 9}))
}

func TestMetadata_Location(t *testing.T) {
	require.Equal(t, time.UTC, NewMetadata(0, "", "").Location())
	require.Equal(t, time.UTC, NewMetadata(0, "", "Not/AZone").Location())
	require.Equal(t, "UTC", NewMetadata(0, "", "UTC").Location().String())
	require.Contains(t, NewMetadata(5, "", "UTC").String(), "ref_timestamp=5")
}
