package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ToInt converts various types to int using explicit type switching.
// It handles standard integer types, floats, strings, and byte slices.
// Unparseable values yield 0.
func ToInt(val any) int {
	switch v := val.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case int32:
		return int(v)
	case int16:
		return int(v)
	case int8:
		return int(v)
	case uint:
		return int(v)
	case uint64:
		return int(v)
	case uint32:
		return int(v)
	case uint16:
		return int(v)
	case uint8:
		return int(v)
	case float64:
		return int(v)
	case float32:
		return int(v)
	case string:
		i, _ := strconv.Atoi(strings.TrimSpace(v))
		return i
	case []byte:
		i, _ := strconv.Atoi(strings.TrimSpace(string(v)))
		return i
	default:
		s := fmt.Sprintf("%v", v)
		i, _ := strconv.Atoi(s)
		return i
	}
}

// ToString converts various types to string.
func ToString(val any) string {
	switch v := val.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// ParseYear extracts a calendar year from a loosely typed value.
// Accepted forms are numbers (1545), numeric strings ("1545"), and dates
// whose first dash-separated segment is the year ("1545-03-12").
// The second return value is false for nil, empty, or unparseable input.
func ParseYear(val any) (int, bool) {
	switch v := val.(type) {
	case nil:
		return 0, false
	case time.Time:
		if v.IsZero() {
			return 0, false
		}
		return v.Year(), true
	case string, []byte:
		s := strings.TrimSpace(ToString(v))
		if s == "" {
			return 0, false
		}
		if head, _, ok := strings.Cut(s, "-"); ok && head != "" {
			s = head
		}
		year, err := strconv.Atoi(s)
		if err != nil {
			return 0, false
		}
		return year, true
	case float64:
		return int(v), true
	default:
		year := ToInt(v)
		if year == 0 && ToString(v) != "0" {
			return 0, false
		}
		return year, true
	}
}
