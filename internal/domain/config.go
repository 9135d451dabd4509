package domain

import (
	_ "embed"
	"path/filepath"
)

//go:embed config_template.toml
var configTemplateContent string

// Store types.
const (
	StoreJSON = "json"
	StoreGit  = "git"
)

// StoreKeyEnv names the environment variable holding the key for an
// encrypted git store.
const StoreKeyEnv = "PLANR_STORE_KEY"

// Config represents the application configuration.
// Fields are ordered to minimize memory padding.
type Config struct {
	Warnings []string    `toml:"-"`
	Tasks    TasksConfig `toml:"tasks"`
	Log      LogConfig   `toml:"log"`
	Board    BoardConfig `toml:"board"`
}

// TasksConfig holds settings for task storage from [tasks] section.
type TasksConfig struct {
	Store     string `toml:"store,omitempty"`     // Storage backend: "json" (default) or "git"
	Namespace string `toml:"namespace,omitempty"` // Git namespace for refs (default: "planr")
	Encrypt   bool   `toml:"encrypt,omitempty"`   // Seal git store blobs with the key in PLANR_STORE_KEY
}

// LogConfig holds logging settings from [log] section.
type LogConfig struct {
	Level string `toml:"level,omitempty"` // debug, info, warn, error
}

// BoardConfig holds settings for the board TUI from [board] section.
type BoardConfig struct {
	TimeFormat string `toml:"time_format,omitempty"` // Go layout for earliest-start/due columns
	ShowSlack  bool   `toml:"show_slack,omitempty"`  // Show CPM slack next to each task
}

// Defaults.
const (
	DefaultNamespace  = "planr"
	DefaultLogLevel   = "info"
	DefaultTimeFormat = "01-02 15:04"
)

// NewDefaultConfig returns a Config populated with default values.
func NewDefaultConfig() *Config {
	return &Config{
		Tasks: TasksConfig{
			Store:     StoreJSON,
			Namespace: DefaultNamespace,
		},
		Log: LogConfig{
			Level: DefaultLogLevel,
		},
		Board: BoardConfig{
			TimeFormat: DefaultTimeFormat,
			ShowSlack:  true,
		},
	}
}

// ConfigTemplate returns the commented template written by "config init".
func ConfigTemplate() string {
	return configTemplateContent
}

// Directory and file names.
const (
	DataDirName    = ".planr"      // Per-project data directory
	AppDirName     = "planr"       // Directory name under the global config home
	ConfigFileName = "config.toml" // Config file name
	StoreFileName  = "tasks.json"  // JSON store file name
	GlobalLogName  = "planr.log"   // Global log file name
	LogsDirName    = "logs"        // Logs directory under the data dir
)

// RepoDataDir returns the data directory path for a project root.
func RepoDataDir(root string) string {
	return filepath.Join(root, DataDirName)
}

// RepoConfigPath returns the project config path.
func RepoConfigPath(root string) string {
	return filepath.Join(RepoDataDir(root), ConfigFileName)
}

// GlobalDir returns the global planr directory path.
// configHome is typically XDG_CONFIG_HOME or ~/.config (resolved by caller).
func GlobalDir(configHome string) string {
	return filepath.Join(configHome, AppDirName)
}

// GlobalConfigPath returns the global config path.
func GlobalConfigPath(configHome string) string {
	return filepath.Join(GlobalDir(configHome), ConfigFileName)
}
