package util

import (
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeRFC3339(t *testing.T) {
	s := "2024-10-10T10:10:10Z"
	got, ok := ParseTime(s)
	require.True(t, ok)
	assert.Equal(t, s, got.UTC().Format(time.RFC3339))

	got, ok = ParseTime("2024-10-10T10:10:10.123456789Z")
	require.True(t, ok)
	assert.Equal(t, 123456789, got.Nanosecond())
}

func TestParseTimeUnix(t *testing.T) {
	ts := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC).Unix()
	got, ok := ParseTime(strconv.FormatInt(ts, 10))
	require.True(t, ok)
	assert.Equal(t, ts, got.Unix())

	_, ok = ParseTime("-5")
	assert.False(t, ok)
}

func TestParseDateTruncatesToDay(t *testing.T) {
	want := time.Date(2013, 4, 29, 0, 0, 0, 0, time.UTC)
	for _, s := range []string{"2013-04-29 23:59:59", "2013-04-29", "2013-04-29T12:00:00Z", "04/29/2013", " 2013/04/29 "} {
		got, ok := ParseDate(s)
		require.True(t, ok, s)
		assert.True(t, got.Equal(want), "%q: got %v", s, got)
	}
	_, ok := ParseDate("not a date")
	assert.False(t, ok)
}

func TestParseDateRange(t *testing.T) {
	f, to, err := ParseDateRange("2021-01-01", "")
	require.NoError(t, err)
	assert.False(t, f.IsZero())
	assert.True(t, to.IsZero())

	cases := []struct {
		from, to string
		field    string
	}{
		{"2021-02-01", "2021-01-01", "from"},
		{"yesterday", "", "from"},
		{"", "someday", "to"},
	}
	for _, tc := range cases {
		_, _, err := ParseDateRange(tc.from, tc.to)
		var de *DateError
		require.True(t, errors.As(err, &de), "%q..%q", tc.from, tc.to)
		assert.Equal(t, tc.field, de.Field)
	}
}

func TestParseIntDefault(t *testing.T) {
	assert.Equal(t, 14, ParseIntDefault(" 14 ", 30))
	assert.Equal(t, 30, ParseIntDefault("x", 30))
	assert.Equal(t, 30, ParseIntDefault("", 30))
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"BTC", "ETH", "DOGE"}, SplitList("BTC, ETH;; DOGE"))
	assert.Empty(t, SplitList(" , "))
}
