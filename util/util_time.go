package util

import (
	"time"
)

// Datetime related utility functions.
// General convention - suffix Z if utc based, no suffix if localTime.
const (
	DATETIME_FORMAT_YYYYMMDD_HYPHEN string = "2006-01-02"
	DATETIME_FORMAT_YYYYMMDD        string = "20060102"
	DATETIME_FORMAT_YYYYMM          string = "200601"
)

// TimeNowZ Return current time in UTC. Should be used everywhere to avoid local timezone.
func TimeNowZ() time.Time {
	return time.Now().UTC()
}

// TimeNowUnix Returns current epoch time.
func TimeNowUnix() int64 {
	return TimeNowZ().Unix()
}

// GetDateOnlyFromTimestampZ Returns date in YYYYMMDD format for given epoch seconds.
func GetDateOnlyFromTimestampZ(timestamp int64) string {
	return time.Unix(timestamp, 0).UTC().Format(DATETIME_FORMAT_YYYYMMDD)
}

// GetMonthOnlyFromTimestampZ Returns calendar month in YYYYMM format for given epoch seconds.
func GetMonthOnlyFromTimestampZ(timestamp int64) string {
	return time.Unix(timestamp, 0).UTC().Format(DATETIME_FORMAT_YYYYMM)
}

func GetBeginningOfDayTimestampZ(timestamp int64) int64 {
	t := time.Unix(timestamp, 0).UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location()).Unix()
}
