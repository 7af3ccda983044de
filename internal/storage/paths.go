// Package storage keeps saved games, user preferences and statistics in a
// BadgerDB database.
package storage

import (
	"os"
	"path/filepath"
	"runtime"
)

const appName = "chessplay"

// DataDirEnv overrides the data directory when set.
const DataDirEnv = "CHESSPLAY_DATA_DIR"

// GetDataDir returns the platform-specific data directory for the application.
// - macOS: ~/Library/Application Support/chessplay/
// - Linux: ~/.local/share/chessplay/
// - Windows: %APPDATA%/chessplay/
func GetDataDir() (string, error) {
	dataDir := os.Getenv(DataDirEnv)
	if dataDir == "" {
		baseDir, err := baseDataDir()
		if err != nil {
			return "", err
		}
		dataDir = filepath.Join(baseDir, appName)
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", err
	}
	return dataDir, nil
}

func baseDataDir() (string, error) {
	switch runtime.GOOS {
	case "darwin":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(homeDir, "Library", "Application Support"), nil

	case "windows":
		if dir := os.Getenv("APPDATA"); dir != "" {
			return dir, nil
		}
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(homeDir, "AppData", "Roaming"), nil

	default:
		// Check XDG_DATA_HOME first
		if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
			return dir, nil
		}
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(homeDir, ".local", "share"), nil
	}
}

// GetDatabaseDir returns the directory for storing the BadgerDB database.
func GetDatabaseDir() (string, error) {
	dataDir, err := GetDataDir()
	if err != nil {
		return "", err
	}

	dbDir := filepath.Join(dataDir, "db")
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return "", err
	}
	return dbDir, nil
}
