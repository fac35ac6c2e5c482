package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseIntStrict(t *testing.T) {
	num, err := ParseIntStrict("42")
	assert.NoError(t, err)
	assert.Equal(t, int64(42), num)

	_, err = ParseIntStrict("")
	assert.Error(t, err)

	_, err = ParseIntStrict("4.2")
	assert.Error(t, err)
}

func TestRoundToPercent(t *testing.T) {
	assert.Equal(t, 0, RoundToPercent(0.0))
	assert.Equal(t, 0, RoundToPercent(0.004))
	assert.Equal(t, 1, RoundToPercent(0.005))
	assert.Equal(t, 50, RoundToPercent(0.5))
	assert.Equal(t, 100, RoundToPercent(0.996))
	assert.Equal(t, 100, RoundToPercent(1.0))
}

func TestDateKeysUTC(t *testing.T) {
	// 2023-11-14 22:13:20 UTC
	assert.Equal(t, "20231114", GetDateOnlyFromTimestampZ(1700000000))
	assert.Equal(t, "202311", GetMonthOnlyFromTimestampZ(1700000000))
}
