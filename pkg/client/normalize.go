package client

import (
	"encoding/json"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// Overridable in tests.
var timeNow = time.Now

// FlexTime accepts the two date encodings the backend has been observed to
// produce: an ISO-8601 string, or a numeric component array
// [year, month, day, hour, minute, second, nanosecond] with a 1-based month
// and optional trailing components. Elements may arrive as JSON numbers or
// as numeric strings. A value that parses as neither falls back to the
// current time rather than failing the whole record.
type FlexTime struct {
	time.Time
}

func (t *FlexTime) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		t.Time = time.Time{}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		parsed, err := parseTimeString(s)
		if err != nil {
			log().Warn("unparseable date string, using current time", zap.String("value", s))
			t.Time = timeNow()
			return nil
		}
		t.Time = parsed
		return nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err == nil {
		parsed, err := parseTimeArray(raw)
		if err != nil {
			log().Warn("unparseable date array, using current time", zap.String("value", string(data)))
			t.Time = timeNow()
			return nil
		}
		t.Time = parsed
		return nil
	}

	log().Warn("unrecognized date encoding, using current time", zap.String("value", string(data)))
	t.Time = timeNow()
	return nil
}

func (t FlexTime) MarshalJSON() ([]byte, error) {
	if t.Time.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Time)
}

func parseTimeString(s string) (time.Time, error) {
	if parsed, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return parsed, nil
	}
	// Some responses omit the timezone suffix.
	return time.Parse("2006-01-02T15:04:05", s)
}

func parseTimeArray(raw []json.RawMessage) (time.Time, error) {
	if len(raw) < 3 || len(raw) > 7 {
		return time.Time{}, strconv.ErrSyntax
	}

	parts := make([]int64, 7)
	for i, elem := range raw {
		n, err := parseComponent(elem)
		if err != nil {
			return time.Time{}, err
		}
		parts[i] = n
	}

	// Nanoseconds are truncated to millisecond precision.
	millis := parts[6] / 1_000_000
	return time.Date(
		int(parts[0]), time.Month(parts[1]), int(parts[2]),
		int(parts[3]), int(parts[4]), int(parts[5]),
		int(millis)*1_000_000, time.UTC,
	), nil
}

// parseComponent accepts a JSON number or a numeric string.
func parseComponent(data json.RawMessage) (int64, error) {
	var n int64
	if err := json.Unmarshal(data, &n); err == nil {
		return n, nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return 0, err
	}
	return strconv.ParseInt(s, 10, 64)
}

// pick returns the first key present in the record, preferring the earlier
// names. Backend responses mix camelCase and snake_case for the same field.
func pick(record map[string]json.RawMessage, keys ...string) json.RawMessage {
	for _, k := range keys {
		if v, ok := record[k]; ok {
			return v
		}
	}
	return nil
}

func unmarshalField(record map[string]json.RawMessage, out interface{}, keys ...string) {
	if v := pick(record, keys...); v != nil {
		// A single bad field keeps its zero value rather than failing
		// the record.
		_ = json.Unmarshal(v, out)
	}
}
