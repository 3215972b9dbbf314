package mangle

import (
	"os"
	"strings"
)

// EnvPrefix is prepended to every environment variable the probe reads.
const EnvPrefix = "BLASPROBE_"

// getEnvString returns the value of the environment variable with the
// given key (prefixed with EnvPrefix), or the default value if not set.
func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		return val
	}
	return defaultVal
}

// getEnvBool returns the value of the environment variable with the given
// key (prefixed with EnvPrefix) parsed as bool, or the default value if
// not set. Accepts "true", "1", "yes" as true; "false", "0", "no" as
// false (case-insensitive).
func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		switch strings.ToLower(val) {
		case "true", "1", "yes":
			return true
		case "false", "0", "no":
			return false
		}
	}
	return defaultVal
}

// FromEnv builds a Convention starting from base and applying any
// BLASPROBE_* overrides. CONVENTION selects a preset wholesale; PREFIX,
// SUFFIX, UNDERSCORE and ILP64 then adjust individual fields. The result
// still needs Validate before use.
func FromEnv(base Convention) Convention {
	if name := os.Getenv(EnvPrefix + "CONVENTION"); name != "" {
		if p, ok := Preset(name); ok {
			base = p
		}
	}
	base.Prefix = getEnvString("PREFIX", base.Prefix)
	base.Suffix = getEnvString("SUFFIX", base.Suffix)
	base.TrailingUnderscore = getEnvBool("UNDERSCORE", base.TrailingUnderscore)
	if getEnvBool("ILP64", base.Width == ILP64) {
		base.Width = ILP64
	} else {
		base.Width = LP64
	}
	return base
}
