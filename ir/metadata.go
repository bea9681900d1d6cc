package ir

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // streams name zones of the producing host

	"github.com/arloliu/irstream/errs"
	"github.com/arloliu/irstream/format"
)

// Metadata is the stream-level information carried by the preamble.
//
// Metadata is immutable and shared by every LogEvent decoded from the same stream.
type Metadata struct {
	refTimestamp       int64
	timestampFormat    string
	timezoneID         string
	version            string
	isFourByteEncoding bool
	location           *time.Location
}

// NewMetadata creates the metadata of a four-byte encoded stream at the current protocol version.
//
// Parameters:
//   - refTimestamp: reference timestamp in milliseconds since the Unix epoch; the first
//     event's timestamp delta is relative to it
//   - timestampFormat: timestamp pattern of the original log, kept for reference only
//   - timezoneID: IANA time zone name used when formatting timestamps
func NewMetadata(refTimestamp int64, timestampFormat, timezoneID string) *Metadata {
	return newMetadata(refTimestamp, timestampFormat, timezoneID, format.CurrentVersion)
}

func newMetadata(refTimestamp int64, timestampFormat, timezoneID, version string) *Metadata {
	loc, err := time.LoadLocation(timezoneID)
	if err != nil || timezoneID == "" {
		loc = time.UTC
	}

	return &Metadata{
		refTimestamp:       refTimestamp,
		timestampFormat:    timestampFormat,
		timezoneID:         timezoneID,
		version:            version,
		isFourByteEncoding: true,
		location:           loc,
	}
}

// ReferenceTimestamp returns the Unix epoch milliseconds the first event's delta is relative to.
func (m *Metadata) ReferenceTimestamp() int64 { return m.refTimestamp }

// TimestampFormat returns the timestamp pattern recorded by the producer.
func (m *Metadata) TimestampFormat() string { return m.timestampFormat }

// TimezoneID returns the IANA time zone name used to format timestamps.
func (m *Metadata) TimezoneID() string { return m.timezoneID }

// Version returns the IR format version string.
func (m *Metadata) Version() string { return m.version }

// IsFourByteEncoding reports whether the stream uses four-byte encoding.
func (m *Metadata) IsFourByteEncoding() bool { return m.isFourByteEncoding }

// Location returns the time zone named by TimezoneID, or UTC if the name is unknown on this
// system.
func (m *Metadata) Location() *time.Location {
	return m.location
}

func (m *Metadata) String() string {
	return fmt.Sprintf("Metadata{ref_timestamp=%d, timestamp_format=%q, timezone_id=%q, version=%s}",
		m.refTimestamp, m.timestampFormat, m.timezoneID, m.version)
}

// metadataJSON is the wire form of the metadata block.
type metadataJSON struct {
	Version                   string `json:"VERSION"`
	ReferenceTimestamp        string `json:"REFERENCE_TIMESTAMP"`
	TimestampPattern          string `json:"TIMESTAMP_PATTERN"`
	TimestampPatternSyntax    string `json:"TIMESTAMP_PATTERN_SYNTAX"`
	TimezoneID                string `json:"TZ_ID"`
	VariablesSchemaID         string `json:"VARIABLES_SCHEMA_ID"`
	VariableEncodingMethodsID string `json:"VARIABLE_ENCODING_METHODS_ID"`
}

// MarshalJSON encodes the metadata block written after the magic number.
func (m *Metadata) MarshalJSON() ([]byte, error) {
	return json.Marshal(metadataJSON{
		Version:                   m.version,
		ReferenceTimestamp:        strconv.FormatInt(m.refTimestamp, 10),
		TimestampPattern:          m.timestampFormat,
		TimestampPatternSyntax:    format.TimestampPatternSyntax,
		TimezoneID:                m.timezoneID,
		VariablesSchemaID:         format.VariablesSchemaID,
		VariableEncodingMethodsID: format.VariableEncodingMethodsID,
	})
}

// parseMetadata decodes and validates a JSON metadata block.
func parseMetadata(data []byte) (*Metadata, error) {
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrMetadataCorrupted, err)
	}

	version, err := stringField(fields, format.MetadataVersionKey)
	if err != nil {
		return nil, err
	}
	if err := validateVersion(version); err != nil {
		return nil, err
	}

	refStr, err := stringField(fields, format.MetadataReferenceTimestampKey)
	if err != nil {
		return nil, err
	}
	refTimestamp, err := strconv.ParseInt(refStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid reference timestamp %q", errs.ErrMetadataCorrupted, refStr)
	}

	timestampFormat, err := stringField(fields, format.MetadataTimestampPatternKey)
	if err != nil {
		return nil, err
	}
	timezoneID, err := stringField(fields, format.MetadataTimezoneIDKey)
	if err != nil {
		return nil, err
	}

	return newMetadata(refTimestamp, timestampFormat, timezoneID, version), nil
}

func stringField(fields map[string]any, key string) (string, error) {
	v, ok := fields[key]
	if !ok {
		return "", fmt.Errorf("%w: missing %s", errs.ErrMetadataCorrupted, key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s is not a string", errs.ErrMetadataCorrupted, key)
	}

	return s, nil
}

// validateVersion checks that version is a MAJOR.MINOR.PATCH string between
// format.MinimumVersion and format.CurrentVersion.
func validateVersion(version string) error {
	v, ok := parseVersion(version)
	if !ok {
		return fmt.Errorf("%w: invalid version %q", errs.ErrUnsupportedVersion, version)
	}
	minimum, _ := parseVersion(format.MinimumVersion)
	current, _ := parseVersion(format.CurrentVersion)

	if compareVersions(v, minimum) < 0 {
		return fmt.Errorf("%w: version %s is too old", errs.ErrUnsupportedVersion, version)
	}
	if compareVersions(v, current) > 0 {
		return fmt.Errorf("%w: version %s is too new", errs.ErrUnsupportedVersion, version)
	}

	return nil
}

func parseVersion(s string) ([3]uint64, bool) {
	var v [3]uint64
	parts := strings.Split(s, ".")
	if len(parts) != len(v) {
		return v, false
	}
	for i, p := range parts {
		if p == "" || (len(p) > 1 && p[0] == '0') {
			return v, false
		}
		n, err := strconv.ParseUint(p, 10, 64)
		if err != nil {
			return v, false
		}
		v[i] = n
	}

	return v, true
}

func compareVersions(a, b [3]uint64) int {
	for i := range a {
		switch {
		case a[i] < b[i]:
			return -1
		case a[i] > b[i]:
			return 1
		}
	}

	return 0
}
