package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want time.Time
	}{
		{
			name: "rfc3339 millis",
			raw:  "2025-01-02T03:04:05.000Z",
			want: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		},
		{
			name: "postgres short offset",
			raw:  "2025-10-14 10:34:05.346+07",
			want: time.Date(2025, 10, 14, 3, 34, 5, 346000000, time.UTC),
		},
		{
			name: "dbeaver style",
			raw:  "2025-10-14 10:34:05.346 +0700",
			want: time.Date(2025, 10, 14, 3, 34, 5, 346000000, time.UTC),
		},
		{
			name: "date only",
			raw:  "2025-01-05",
			want: time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := ParseTimestamp(tt.raw)
			got, ok := ts.Time()
			require.True(t, ok, "expected %q to parse", tt.raw)
			assert.True(t, got.Equal(tt.want), "got %v, want %v", got, tt.want)
			assert.Equal(t, tt.raw, ts.Raw())
		})
	}
}

func TestParseTimestamp_Unparsable(t *testing.T) {
	ts := ParseTimestamp("yesterday-ish")
	assert.False(t, ts.Valid())
	assert.False(t, ts.Absent())
	assert.Equal(t, int64(0), ts.UnixMilli())
	assert.Equal(t, "yesterday-ish", ts.Raw())

	empty := ParseTimestamp("  ")
	assert.True(t, empty.Absent())
}

func TestTimestampScan(t *testing.T) {
	when := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	var ts Timestamp
	require.NoError(t, ts.Scan(when))
	got, ok := ts.Time()
	require.True(t, ok)
	assert.True(t, got.Equal(when))

	require.NoError(t, ts.Scan(nil))
	assert.True(t, ts.Absent())

	assert.Error(t, ts.Scan(42))
}
