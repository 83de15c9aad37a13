package dates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParseFormats(t *testing.T) {
	want := day(2023, time.March, 7)
	inputs := []string{
		"2023-03-07",
		"2023-03-07T10:11:12",
		"2023-03-07T10:11:12.123456",
		"2023-03-07T10:11:12Z",
		"2023-03-07 10:11:12",
		"07/03/2023",
		"7/3/2023",
		"07-03-2023",
		"2023/03/07",
		"2023/3/7",
		"  2023-03-07  ",
	}
	for _, in := range inputs {
		got, ok := Parse(in)
		if assert.True(t, ok, in) {
			assert.True(t, want.Equal(got), "%s parsed as %s", in, got)
		}
	}
}

func TestParseRejects(t *testing.T) {
	for _, in := range []string{"", "   ", "null", "Invalid Date", "31/02/2023", "2023-13-01", "yesterday", "03.07.2023"} {
		_, ok := Parse(in)
		assert.False(t, ok, in)
	}
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "2021-12-31", Format("31/12/2021"))
	assert.Equal(t, "", Format("garbage"))
	assert.Equal(t, "", Format(""))
}

func TestFormatTime(t *testing.T) {
	assert.Equal(t, "", FormatTime(nil))
	ts := time.Date(2024, 5, 6, 7, 8, 0, 0, time.UTC)
	assert.Equal(t, "2024-05-06 07:08", FormatTime(&ts))
}

func TestRangeInclusive(t *testing.T) {
	r := Range{From: day(2024, 1, 1), To: day(2024, 1, 31)}

	assert.True(t, r.Contains("2024-01-01"))
	assert.True(t, r.Contains("31/01/2024"))
	assert.False(t, r.Contains("2023-12-31"))
	assert.False(t, r.Contains("2024-02-01"))
}

func TestRangeRejectsMissingAndUnparsable(t *testing.T) {
	r := Range{From: day(2024, 1, 1)}

	assert.False(t, r.Contains(""))
	assert.False(t, r.Contains("n/a"))
	assert.True(t, r.Contains("2030-01-01"))
}

func TestRangeActiveAndEqual(t *testing.T) {
	assert.False(t, Range{}.Active())
	assert.True(t, Range{To: day(2024, 1, 1)}.Active())
	assert.True(t, Range{From: day(2024, 1, 1)}.Equal(Range{From: day(2024, 1, 1)}))
	assert.False(t, Range{From: day(2024, 1, 1)}.Equal(Range{}))
}

func TestParseRange(t *testing.T) {
	r, ok := ParseRange("2024-01-01", "")
	assert.True(t, ok)
	assert.True(t, r.From.Equal(day(2024, 1, 1)))
	assert.True(t, r.To.IsZero())

	_, ok = ParseRange("soon", "")
	assert.False(t, ok)

	r, ok = ParseRange("", "")
	assert.True(t, ok)
	assert.False(t, r.Active())
}
