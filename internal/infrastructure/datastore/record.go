package datastore

import "time"

// TimeLayout matches the ISO-8601 millisecond shape the web app already
// stores in existing db.json files (e.g. 2024-01-02T03:04:05.678Z).
const TimeLayout = "2006-01-02T15:04:05.000Z07:00"

// NowISO returns the current UTC time in the persisted timestamp format.
func NowISO() string {
	return time.Now().UTC().Format(TimeLayout)
}

// StringField returns rec[key] when it is a string, otherwise "".
// Record identifiers are matched as strings; a record whose id is some
// other JSON type simply never matches a path parameter.
func StringField(rec Record, key string) string {
	if v, ok := rec[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// Merge shallow-merges patch onto rec, overwriting existing keys.
func Merge(rec Record, patch Record) {
	for k, v := range patch {
		rec[k] = v
	}
}
