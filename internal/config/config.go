// Package config reads the deployment configuration from the
// environment. Required names fail fast at startup.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/juju/errors"

	"github.com/smaartit/GroceryRestockingSystem/internal/listcache"
)

// Config holds table names, index names and queue wiring.
type Config struct {
	PantryTable  string
	GroceryTable string

	PantryNameIndex  string
	GroceryNameIndex string

	// QuarantineQueueURL is optional; when empty, terminally
	// failed pipeline records are logged and dropped.
	QuarantineQueueURL string

	CacheTTL time.Duration
}

// Load builds the configuration from environment variables.
func Load() (*Config, error) {
	pantryTable := os.Getenv("PANTRY_TABLE")
	if pantryTable == "" {
		return nil, errors.New("PANTRY_TABLE environment variable is not set")
	}

	groceryTable := os.Getenv("GROCERY_TABLE")
	if groceryTable == "" {
		return nil, errors.New("GROCERY_TABLE environment variable is not set")
	}

	cfg := &Config{
		PantryTable:        pantryTable,
		GroceryTable:       groceryTable,
		PantryNameIndex:    envOr("PANTRY_NAME_INDEX", "NameKeyIndex"),
		GroceryNameIndex:   envOr("GROCERY_NAME_INDEX", "NameKeyIndex"),
		QuarantineQueueURL: os.Getenv("DLQ_URL"),
		CacheTTL:           listcache.DefaultTTL,
	}

	if ttl := os.Getenv("CACHE_TTL_SECONDS"); ttl != "" {
		seconds, err := strconv.Atoi(ttl)
		if err != nil || seconds <= 0 {
			return nil, errors.NotValidf("CACHE_TTL_SECONDS %q", ttl)
		}
		cfg.CacheTTL = time.Duration(seconds) * time.Second
	}

	return cfg, nil
}

func envOr(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
