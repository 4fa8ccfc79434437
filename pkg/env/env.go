// Package env reads process environment variables that live outside
// the envconfig-managed configuration, such as bootstrap logging knobs.
package env

import (
	"os"
	"strings"
)

// Get returns the trimmed value of key, or fallback when the variable
// is unset or blank.
func Get(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}
