package timeapi

import "time"

const timestampLayout = "2006-01-02T15:04:05"

// FormatTimestamp renders t as "YYYY-MM-DDTHH:MM:SSZ". t is expected in UTC.
func FormatTimestamp(t time.Time) string {
	return t.Format(timestampLayout) + "Z"
}

// FormatAdjusted renders t followed by the caller's offset string verbatim.
// t must already include the offset; no zone conversion happens here.
func FormatAdjusted(t time.Time, suffix string) string {
	return t.Format(timestampLayout) + suffix
}
