package dto

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonthFilterRange(t *testing.T) {
	now := time.Date(2025, time.March, 14, 10, 0, 0, 0, time.UTC)

	start, end := MonthFilter{}.Range(now)
	assert.Equal(t, time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC), end)

	start, end = MonthFilter{Month: 12, Year: 2024}.Range(now)
	assert.Equal(t, time.Date(2024, time.December, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC), end)
}

func TestParseDateAndDay(t *testing.T) {
	d, err := ParseDate("2025-02-03")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.February, 3, 0, 0, 0, 0, time.UTC), d)

	_, err = ParseDate("03/02/2025")
	assert.Error(t, err)

	loc := time.FixedZone("IST", 5*3600+1800)
	assert.Equal(t, d, Day(time.Date(2025, time.February, 3, 4, 0, 0, 0, time.UTC).In(loc)))
}
