package util

import (
	"time"
)

func GetTimeByMillis(millis int64) time.Time {
	return time.Unix(0, millis*int64(time.Millisecond))
}

func GetMillisByTime(t time.Time) int64 {
	return t.UnixNano() / int64(time.Millisecond)
}
