package config

import (
	"fmt"
	"os"
	"strings"
)

// ResolveSecret reads a secret value using the *_FILE convention: if
// INKDRIFT_ADMIN_PASS_FILE is set, the secret is read from that file path;
// otherwise the value of INKDRIFT_ADMIN_PASS itself is used. The auth
// credentials (INKDRIFT_ADMIN_*, INKDRIFT_PLAYER_*) and PGPASSWORD resolve
// this way. Returns empty string when neither variable is set, and an error
// only when the named file cannot be read.
func ResolveSecret(envName string) (string, error) {
	// The *_FILE variant takes precedence
	fileEnv := envName + "_FILE"
	if filePath := os.Getenv(fileEnv); filePath != "" {
		content, err := os.ReadFile(filePath)
		if err != nil {
			return "", fmt.Errorf("failed to read secret from %s=%s: %w", fileEnv, filePath, err)
		}
		return strings.TrimSpace(string(content)), nil
	}

	return os.Getenv(envName), nil
}

// MustResolveSecret is like ResolveSecret but exits the process when the
// secret file is unreadable. For secrets the server cannot start without.
func MustResolveSecret(envName string) string {
	value, err := ResolveSecret(envName)
	if err != nil {
		// Log error without exposing secret content
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	return value
}
