package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ntlab/bmipgen/internal/config"
	"github.com/ntlab/bmipgen/internal/db"
	"github.com/spf13/viper"
)

func openDB() (*sql.DB, string, func(), error) {
	workDir, err := os.Getwd()
	if err != nil {
		return nil, "", func() {}, err
	}
	stateDir := filepath.Join(workDir, ".bmipgen")
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return nil, "", func() {}, err
	}
	dbPath := filepath.Join(stateDir, "bmipgen.db")
	catalogDB, err := db.Open(dbPath)
	if err != nil {
		return nil, "", func() {}, err
	}
	return catalogDB, stateDir, func() { _ = catalogDB.Close() }, nil
}

// loadConfig returns the defaults merged with the config file, when one
// exists. The raw file contents are schema-validated before decoding.
func loadConfig() (config.Config, error) {
	cfg := config.Default()
	path := viper.GetString("config")
	if path == "" {
		path = filepath.Join(".bmipgen", "config.json")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	raw := map[string]any{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if err := config.ValidateSettings(raw); err != nil {
		return cfg, err
	}
	viper.SetConfigFile(path)
	viper.SetConfigType("json")
	if err := viper.ReadInConfig(); err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
