package dshield

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDateFullUTC(t *testing.T) {
	now := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	got, err := ParseDate("2018-01-02T15:04:05Z", false, now)
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2018, 1, 2, 15, 4, 5, 0, time.UTC)))
}

func TestParseDateOnlyDefaultsLowTime(t *testing.T) {
	now := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	got, err := ParseDate("2018-01-02Z", false, now)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Hour())
	assert.Equal(t, 0, got.Minute())
}

func TestParseDateOnlyDefaultsHighTime(t *testing.T) {
	now := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	got, err := ParseDate("2018-01-02Z", true, now)
	require.NoError(t, err)
	assert.Equal(t, 23, got.Hour())
	assert.Equal(t, 59, got.Minute())
	assert.Equal(t, 59, got.Second())
}

func TestParseDateCompactForm(t *testing.T) {
	now := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	got, err := ParseDate("20180102T150405Z", false, now)
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2018, 1, 2, 15, 4, 5, 0, time.UTC)))
}

func TestParseDateMalformed(t *testing.T) {
	now := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err := ParseDate("not-a-date", false, now)
	assert.Error(t, err)
}
