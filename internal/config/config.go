// Package config resolves the runtime settings shared by every binary.
// Values come from the environment (optionally seeded from a .env file by the
// caller); defaults mirror the desktop installation's directory layout.
package config

import (
	"os"
	"path/filepath"
)

// Config holds the resolved runtime settings.
type Config struct {
	DataDir        string // inventory, registry and placement files
	GraphicsDir    string // floor-plan images
	StaticDir      string // web frontend bundle; empty disables the static mount
	Port           string // HTTP listen port
	AllowedOrigins string // comma-separated CORS allow list; empty allows all
}

// FromEnv reads the configuration from environment variables, filling in the
// defaults of the original installation: the data directory under the user's
// Documents folder and graphics/ beneath it.
func FromEnv() Config {
	cfg := Config{
		DataDir:        os.Getenv("DATA_DIR"),
		GraphicsDir:    os.Getenv("GRAPHICS_DIR"),
		StaticDir:      os.Getenv("STATIC_DIR"),
		Port:           os.Getenv("SERVER_PORT"),
		AllowedOrigins: os.Getenv("ALLOWED_ORIGINS"),
	}
	if cfg.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		cfg.DataDir = filepath.Join(home, "Documents", "Yuuruii", "AgustinaFalcon")
	}
	if cfg.GraphicsDir == "" {
		cfg.GraphicsDir = filepath.Join(cfg.DataDir, "graphics")
	}
	if cfg.Port == "" {
		cfg.Port = "6284"
	}
	return cfg
}

// InventoryFile returns the path of the global inventory file.
func (c Config) InventoryFile() string {
	return filepath.Join(c.DataDir, "inventario_global.json")
}
