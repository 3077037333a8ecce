// Package storage persists game records, result statistics and preferences in BadgerDB.
package storage

import (
	"os"
	"path/filepath"
	"runtime"
)

const appName = "funzone"

// DataDirEnv names the variable that overrides the platform data directory.
const DataDirEnv = "FUNZONE_DATA_DIR"

// Subdirectories of the data directory.
const (
	dbSubdir     = "db"
	exportSubdir = "exports"
)

// platformDataRoot is where applications keep per-user data on this OS:
// ~/Library/Application Support on macOS, %APPDATA% on Windows and
// $XDG_DATA_HOME (or ~/.local/share) elsewhere.
func platformDataRoot() (string, error) {
	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, "Library", "Application Support"), nil
	case "windows":
		if dir := os.Getenv("APPDATA"); dir != "" {
			return dir, nil
		}
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, "AppData", "Roaming"), nil
	default:
		if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
			return dir, nil
		}
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".local", "share"), nil
	}
}

// GetDataDir returns the application data directory, creating it if needed.
// FUNZONE_DATA_DIR takes precedence over the platform location.
func GetDataDir() (string, error) {
	dir := os.Getenv(DataDirEnv)
	if dir == "" {
		root, err := platformDataRoot()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(root, appName)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return dir, nil
}

// subdir returns name under the data directory, creating it if needed.
func subdir(name string) (string, error) {
	base, err := GetDataDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(base, name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return dir, nil
}

// GetExportDir returns the directory board images are written to by default.
func GetExportDir() (string, error) {
	return subdir(exportSubdir)
}

// GetDatabaseDir returns the directory for storing the BadgerDB database.
func GetDatabaseDir() (string, error) {
	return subdir(dbSubdir)
}
