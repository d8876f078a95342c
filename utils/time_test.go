package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCombineDateTime_FullFragment(t *testing.T) {
	got, ok := CombineDateTime("2024-03-01", "09:00:00", time.UTC)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC), got)
}

func TestCombineDateTime_ShortFragmentNormalized(t *testing.T) {
	got, ok := CombineDateTime("2024-03-01", "17:30", time.UTC)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 3, 1, 17, 30, 0, 0, time.UTC), got)
}

func TestCombineDateTime_LegacyAMPMFallback(t *testing.T) {
	got, ok := CombineDateTime("2024-03-01", "5:30:00 PM", time.UTC)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 3, 1, 17, 30, 0, 0, time.UTC), got)
}

func TestCombineDateTime_Malformed(t *testing.T) {
	for _, tc := range []struct{ date, frag string }{
		{"", "09:00:00"},
		{"2024-03-01", ""},
		{"not-a-date", "09:00:00"},
		{"2024-03-01", "nonsense"},
		{"2024-13-40", "09:00:00"},
	} {
		_, ok := CombineDateTime(tc.date, tc.frag, time.UTC)
		assert.False(t, ok, "date=%q frag=%q", tc.date, tc.frag)
	}
}

func TestCombineDateTime_RespectsLocation(t *testing.T) {
	manila, err := time.LoadLocation("Asia/Manila")
	require.NoError(t, err)

	got, ok := CombineDateTime("2024-03-01", "09:00:00", manila)
	require.True(t, ok)
	assert.Equal(t, "2024-03-01T01:00:00Z", got.UTC().Format(time.RFC3339))
}

func TestToFragment_ZeroPadded(t *testing.T) {
	tm := time.Date(2024, 3, 1, 7, 5, 9, 0, time.UTC)
	assert.Equal(t, "07:05:09", ToFragment(tm))
}

func TestFragmentRoundTrip(t *testing.T) {
	tm := time.Date(2024, 3, 1, 17, 30, 0, 0, time.UTC)
	frag := ToFragment(tm)
	back, ok := CombineDateTime(DateKey(tm), frag, time.UTC)
	require.True(t, ok)
	assert.True(t, back.Equal(tm))
}

func TestParseDateKey(t *testing.T) {
	got, ok := ParseDateKey("2024-03-01", time.UTC)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), got)

	_, ok = ParseDateKey("03/01/2024", time.UTC)
	assert.False(t, ok)
}
