// internal/domain/analytics/service_test.go
package analytics

import (
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestFillDailySeries(t *testing.T) {
	start := time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC)
	byDay := map[string]int64{
		"2026-08-25": 3,
		"2026-08-27": 7,
	}

	series := FillDailySeries(byDay, start, 4)

	assert.Len(t, series, 4)
	assert.Equal(t, TimeSeriesData{Date: "2026-08-25", Value: 3}, series[0])
	assert.Equal(t, TimeSeriesData{Date: "2026-08-26", Value: 0}, series[1])
	assert.Equal(t, TimeSeriesData{Date: "2026-08-27", Value: 7}, series[2])
	assert.Equal(t, TimeSeriesData{Date: "2026-08-28", Value: 0}, series[3])
}

func TestFillDailySeriesEmpty(t *testing.T) {
	start := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)
	series := FillDailySeries(nil, start, 2)

	assert.Len(t, series, 2)
	for _, point := range series {
		assert.Zero(t, point.Value)
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 10))
	assert.Equal(t, "abcde", truncate("abcdefgh", 5))
	assert.Equal(t, "", truncate("", 5))
}

func TestTruncateKeepsRunesWhole(t *testing.T) {
	// "選" is 3 bytes; cutting mid-rune must back up, not emit invalid UTF-8
	s := "ab選擇"
	got := truncate(s, 4)
	assert.Equal(t, "ab", got)
	assert.True(t, utf8.ValidString(got))

	got = truncate(s, 5)
	assert.Equal(t, "ab選", got)
	assert.True(t, utf8.ValidString(got))
}
