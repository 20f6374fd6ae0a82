package envutil

import (
	"os"
	"strconv"
	"strings"
)

func Bool(key string) bool {
	return ParseBool(os.Getenv(key))
}

func ParseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "t", "yes", "y", "on":
		return true
	default:
		return false
	}
}

// Int returns the integer value of key, or fallback when unset or invalid.
func Int(key string, fallback int) int {
	value, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return fallback
	}
	return value
}
