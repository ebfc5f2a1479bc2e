package common

import (
	"strconv"
	"strings"
)

// ParseInt64Default converts value to an int64, returning def when empty or invalid.
func ParseInt64Default(value string, def int64) int64 {
	value = strings.TrimSpace(value)
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return def
	}
	return parsed
}
