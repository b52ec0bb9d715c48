// Package env reads individual environment variables where pulling in the
// full config struct would be circular, such as logger setup.
package env

import (
	"os"
	"strings"
)

// Get returns the variable's value, or fallback when it is unset or blank.
func Get(key, fallback string) string {
	val, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(val) == "" {
		return fallback
	}
	return val
}
