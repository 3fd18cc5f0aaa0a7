package utils

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

func ToString(i interface{}, defaultVal string) string {
	switch value := i.(type) {
	case nil:
		return defaultVal
	case string:
		return value
	case []byte:
		return string(value)
	case int:
		return strconv.Itoa(value)
	case int32:
		return strconv.FormatInt(int64(value), 10)
	case int64:
		return strconv.FormatInt(value, 10)
	case float32:
		return strconv.FormatFloat(float64(value), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(value)
	case time.Time:
		return value.Format(time.RFC3339)
	case json.Number:
		return value.String()
	case fmt.Stringer:
		return value.String()
	case map[string]interface{}, []interface{}:
		b, err := json.Marshal(value)
		if err != nil {
			return defaultVal
		}
		return string(b)
	default:
		return fmt.Sprintf("%v", value)
	}
}

func ToInt64(i interface{}, defaultVal int64) int64 {
	switch value := i.(type) {
	case int:
		return int64(value)
	case int32:
		return int64(value)
	case int64:
		return value
	case float32:
		return int64(value)
	case float64:
		return int64(value)
	case json.Number:
		if v, err := value.Int64(); err == nil {
			return v
		}
	case string:
		if v, err := strconv.ParseInt(value, 10, 64); err == nil {
			return v
		}
	case bool:
		if value {
			return 1
		}
		return 0
	}
	return defaultVal
}

func ToFloat(i interface{}, defaultVal float64) float64 {
	switch value := i.(type) {
	case int:
		return float64(value)
	case int32:
		return float64(value)
	case int64:
		return float64(value)
	case float32:
		return float64(value)
	case float64:
		return value
	case json.Number:
		if v, err := value.Float64(); err == nil {
			return v
		}
	case string:
		if v, err := strconv.ParseFloat(value, 64); err == nil {
			return v
		}
	}
	return defaultVal
}

func ToBool(i interface{}, defaultVal bool) bool {
	switch value := i.(type) {
	case bool:
		return value
	case string:
		if v, err := strconv.ParseBool(value); err == nil {
			return v
		}
	case int:
		return value != 0
	case int64:
		return value != 0
	case float64:
		return value != 0
	}
	return defaultVal
}

// ToStringMap converts decoded JSON objects to map[string]interface{}.
func ToStringMap(i interface{}) map[string]interface{} {
	switch value := i.(type) {
	case map[string]interface{}:
		return value
	case map[string]string:
		m := make(map[string]interface{}, len(value))
		for k, v := range value {
			m[k] = v
		}
		return m
	}
	return nil
}

// UnixMilli converts milliseconds since epoch to UTC time; zero maps to the zero time.
func UnixMilli(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}

func ToUnixMilli(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}
