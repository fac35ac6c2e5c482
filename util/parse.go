package util

import (
	"fmt"
	"strconv"
)

// ParseIntStrict parses a base-10 integer column value, rejecting empty strings.
func ParseIntStrict(value string) (int64, error) {
	if value == "" {
		return 0, fmt.Errorf("empty value for integer column")
	}
	num, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid integer value %q: %v", value, err)
	}
	return num, nil
}

// RoundToPercent converts a probability in [0,1] to the nearest integer percentage.
func RoundToPercent(probability float64) int {
	pct := probability * 100.0
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return int(pct + 0.5)
}
