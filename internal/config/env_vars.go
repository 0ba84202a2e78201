package config

import (
	"os"
	"path/filepath"
	"strings"
)

// ENROLLCTL_API_BASEURL maps to api.baseurl
var envKeyReplacer = strings.NewReplacer(".", "_")

func defaultStoragePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "session.db")
	}
	return filepath.Join(home, ".enrollctl", "session.db")
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
