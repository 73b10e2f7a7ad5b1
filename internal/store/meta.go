package store

import "time"

// String returns meta[key] when it is a string.
func String(meta map[string]any, key string) string {
	s, _ := meta[key].(string)
	return s
}

// Int returns meta[key] as an int, accepting the numeric types YAML and
// JSON decoders produce.
func Int(meta map[string]any, key string) int {
	switch n := meta[key].(type) {
	case int:
		return n
	case int64:
		return int(n)
	case uint64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}

// Time returns meta[key] as a time, parsing RFC 3339 strings.
func Time(meta map[string]any, key string) time.Time {
	switch t := meta[key].(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse(time.RFC3339Nano, t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

// FormatTime renders t for a metadata header.
func FormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
