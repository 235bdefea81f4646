package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

// envRefPattern matches ${env://NAME} and ${env://NAME:-fallback}.
var envRefPattern = regexp.MustCompile(`\$\{env://([A-Za-z_][A-Za-z0-9_]*)(:-([^}]*))?\}`)

// envRef is one parsed ${env://...} reference.
type envRef struct {
	name        string
	fallback    string
	hasFallback bool
}

// parseEnvRef splits the inside of a reference ("NAME" or "NAME:-fallback").
func parseEnvRef(body string) envRef {
	name, fallback, ok := strings.Cut(body, ":-")
	return envRef{name: name, fallback: fallback, hasFallback: ok}
}

// ExpandEnv replaces every ${env://NAME} and ${env://NAME:-fallback} in
// content with the value of the named environment variable. An unset or empty
// variable falls back to its default; references without a default that
// cannot be resolved are collected and reported together.
func ExpandEnv(content string) (string, error) {
	var missing []string

	out := envRefPattern.ReplaceAllStringFunc(content, func(match string) string {
		ref := parseEnvRef(strings.TrimSuffix(strings.TrimPrefix(match, "${env://"), "}"))

		if v := os.Getenv(ref.name); v != "" {
			return v
		}
		if ref.hasFallback {
			return ref.fallback
		}
		missing = append(missing, ref.name)
		return match
	})

	if len(missing) > 0 {
		return "", fmt.Errorf("environment variable substitution failed: required variables not set: %s",
			strings.Join(missing, ", "))
	}
	return out, nil
}

// HasEnvRefs reports whether content contains any ${env://...} reference.
func HasEnvRefs(content string) bool {
	return envRefPattern.MatchString(content)
}
