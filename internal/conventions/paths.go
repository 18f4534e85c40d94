package conventions

import "path/filepath"

const (
	// DefaultDataDir is the default vgrid data directory name (relative to home).
	DefaultDataDir = ".vgrid"
	// DBFile is the sheet store database filename.
	DBFile = "vgrid.db"
	// ConfigFile is the optional YAML configuration filename.
	ConfigFile = "config.yaml"
	// LogFile is where the interactive sessions log, so logs don't corrupt the screen.
	LogFile = "vgrid.log"
)

// DBPath returns the path of the sheet store database.
func DBPath(dataDir string) string {
	return filepath.Join(dataDir, DBFile)
}

// ConfigPath returns the path of the configuration file.
func ConfigPath(dataDir string) string {
	return filepath.Join(dataDir, ConfigFile)
}

// LogPath returns the path of the interactive session log file.
func LogPath(dataDir string) string {
	return filepath.Join(dataDir, LogFile)
}
