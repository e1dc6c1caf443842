package binder

import (
	"fmt"
	"os"

	"log/slog"

	"github.com/deckbinder/deckbinder/binder/database"
	"github.com/pelletier/go-toml/v2"
)

func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err = toml.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type Config struct {
	Log     LogConfig         `toml:"log"`
	DB      database.DBConfig `toml:"db"`
	Dataset DatasetConfig     `toml:"dataset"`
	Spaces  SpacesConfig      `toml:"spaces"`
}

type LogConfig struct {
	Level slog.Level `toml:"level"`
}

// DatasetConfig points at the versioned card dataset to import.
type DatasetConfig struct {
	Dir     string `toml:"dir"`
	Version string `toml:"version"`
}

// SpacesConfig configures the S3-compatible bucket dataset snapshots are
// published to.
type SpacesConfig struct {
	Key      string `toml:"key"`
	Secret   string `toml:"secret"`
	Region   string `toml:"region"`
	Endpoint string `toml:"endpoint"`
	Bucket   string `toml:"bucket"`
	Root     string `toml:"root"`
}
