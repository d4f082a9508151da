// Package env reads process environment variables with fallbacks. Structured
// configuration lives in pkg/config; this covers the few knobs consulted
// before config is loaded.
package env

import "os"

// Get returns the variable's value, or fallback when unset or empty.
func Get(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}
