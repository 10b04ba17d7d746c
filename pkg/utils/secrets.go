package utils

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultSecretsDir is the Docker secrets mount point.
const DefaultSecretsDir = "/run/secrets"

// ErrSecretNotFound is returned when the secret file does not exist.
var ErrSecretNotFound = errors.New("secret not found")

// ReadSecret reads a secret from <dir>/<secretName>. An empty dir means DefaultSecretsDir.
func ReadSecret(dir, secretName string) (string, error) {
	if dir == "" {
		dir = DefaultSecretsDir
	}
	filePath := filepath.Join(dir, secretName)
	secretBytes, err := os.ReadFile(filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrSecretNotFound, filePath)
		}
		return "", fmt.Errorf("failed to read secret file %s: %w", filePath, err)
	}
	secret := strings.TrimSpace(string(secretBytes))
	if secret == "" {
		return "", fmt.Errorf("secret file %s is empty", filePath)
	}
	return secret, nil
}
