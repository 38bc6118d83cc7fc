package utils

import "os"

// ParseWithFallback reads key from the environment, returning fallback
// when the variable is unset or empty.
func ParseWithFallback(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}
