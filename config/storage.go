package config

import (
	"encoding/json"
	"log"
	"os"
	"strings"
)

// StorageConfig lists the object storage locations the service may target.
type StorageConfig struct {
	Locations []StorageLocationConfig `json:"locations"`
}

// StorageLocationConfig describes one named object storage location.
type StorageLocationConfig struct {
	Alias    string `json:"alias"`
	Host     string `json:"host"`
	Port     string `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
	UseSSL   bool   `json:"use_ssl"`
	Bucket   string `json:"bucket"`
}

// loadStorageConfig reads the storage location list from STORAGE_LOCATIONS
// (a JSON array), falling back to a single location built from the MINIO_*
// variables.
func loadStorageConfig() StorageConfig {
	raw := strings.TrimSpace(os.Getenv("STORAGE_LOCATIONS"))
	if raw != "" {
		var locations []StorageLocationConfig
		if err := json.Unmarshal([]byte(raw), &locations); err != nil {
			log.Fatalf("invalid STORAGE_LOCATIONS: %v", err)
		}
		return StorageConfig{Locations: locations}
	}

	return StorageConfig{
		Locations: []StorageLocationConfig{
			{
				Alias:    getEnv("STORAGE_ALIAS", "inbox"),
				Host:     getEnv("MINIO_HOST", "localhost"),
				Port:     getEnv("MINIO_PORT", "9000"),
				Username: getEnv("MINIO_USERNAME", "minioadmin"),
				Password: getEnv("MINIO_PASSWORD", "minioadmin"),
				UseSSL:   getEnvBool("MINIO_USE_SSL", false),
				Bucket:   getEnv("BUCKET_NAME", "inbox"),
			},
		},
	}
}
