// Package config provides configuration loading functionality.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/pelletier/go-toml/v2"

	"github.com/runoshun/planr/internal/domain"
)

// Ensure Loader implements domain.ConfigLoader.
var _ domain.ConfigLoader = (*Loader)(nil)

// Loader loads configuration from TOML files.
type Loader struct {
	dataDir       string // Path to .planr directory
	globalConfDir string // Path to global config directory (e.g., ~/.config/planr)
}

// NewLoader creates a new Loader.
func NewLoader(dataDir string) *Loader {
	return &Loader{
		dataDir:       dataDir,
		globalConfDir: defaultGlobalConfigDir(),
	}
}

// NewLoaderWithGlobalDir creates a new Loader with a custom global config directory.
// This is useful for testing.
func NewLoaderWithGlobalDir(dataDir, globalConfDir string) *Loader {
	return &Loader{
		dataDir:       dataDir,
		globalConfDir: globalConfDir,
	}
}

// defaultGlobalConfigDir returns the default global config directory.
func defaultGlobalConfigDir() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return domain.GlobalDir(configHome)
}

// fileConfig holds the values one file sets. Unset values stay zero or nil
// so they do not override lower layers.
type fileConfig struct {
	showSlack  *bool
	encrypt    *bool
	store      string
	namespace  string
	level      string
	timeFormat string
	warnings   []string
}

// Load returns the merged configuration (default <- global <- repo).
func (l *Loader) Load() (*domain.Config, error) {
	global, err := l.loadGlobalFile()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	repo, err := l.loadFile(filepath.Join(l.dataDir, domain.ConfigFileName))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	cfg := domain.NewDefaultConfig()
	apply(cfg, global)
	apply(cfg, repo)
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadGlobal returns the default configuration with only the global file applied.
func (l *Loader) LoadGlobal() (*domain.Config, error) {
	global, err := l.loadGlobalFile()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	cfg := domain.NewDefaultConfig()
	apply(cfg, global)
	return cfg, nil
}

func (l *Loader) loadGlobalFile() (*fileConfig, error) {
	if l.globalConfDir == "" {
		return nil, os.ErrNotExist
	}
	return l.loadFile(filepath.Join(l.globalConfDir, domain.ConfigFileName))
}

// loadFile loads a configuration from a file.
func (l *Loader) loadFile(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return parseRaw(raw), nil
}

// parseRaw converts the raw map to a fileConfig and collects warnings
// for unknown sections and keys.
func parseRaw(raw map[string]any) *fileConfig {
	res := &fileConfig{}
	var warnings []string

	for section, value := range raw {
		m, ok := value.(map[string]any)
		if !ok {
			warnings = append(warnings, fmt.Sprintf("unknown key: %s", section))
			continue
		}
		switch section {
		case "tasks":
			for k, v := range m {
				switch k {
				case "store":
					res.store = stringValue(v)
				case "namespace":
					res.namespace = stringValue(v)
				case "encrypt":
					if b, ok := v.(bool); ok {
						res.encrypt = &b
					}
				default:
					warnings = append(warnings, fmt.Sprintf("unknown key in [tasks]: %s", k))
				}
			}
		case "log":
			for k, v := range m {
				switch k {
				case "level":
					res.level = stringValue(v)
				default:
					warnings = append(warnings, fmt.Sprintf("unknown key in [log]: %s", k))
				}
			}
		case "board":
			for k, v := range m {
				switch k {
				case "time_format":
					res.timeFormat = stringValue(v)
				case "show_slack":
					if b, ok := v.(bool); ok {
						res.showSlack = &b
					}
				default:
					warnings = append(warnings, fmt.Sprintf("unknown key in [board]: %s", k))
				}
			}
		default:
			warnings = append(warnings, fmt.Sprintf("unknown section: %s", section))
		}
	}

	sort.Strings(warnings)
	res.warnings = warnings
	return res
}

func stringValue(v any) string {
	s, _ := v.(string)
	return s
}

// apply overlays the values set in fc onto cfg.
func apply(cfg *domain.Config, fc *fileConfig) {
	if fc == nil {
		return
	}
	cfg.Warnings = append(cfg.Warnings, fc.warnings...)
	if fc.store != "" {
		cfg.Tasks.Store = fc.store
	}
	if fc.namespace != "" {
		cfg.Tasks.Namespace = fc.namespace
	}
	if fc.encrypt != nil {
		cfg.Tasks.Encrypt = *fc.encrypt
	}
	if fc.level != "" {
		cfg.Log.Level = fc.level
	}
	if fc.timeFormat != "" {
		cfg.Board.TimeFormat = fc.timeFormat
	}
	if fc.showSlack != nil {
		cfg.Board.ShowSlack = *fc.showSlack
	}
}

func validate(cfg *domain.Config) error {
	switch cfg.Tasks.Store {
	case domain.StoreJSON, domain.StoreGit:
		return nil
	default:
		return fmt.Errorf("%w: %q", domain.ErrUnknownStore, cfg.Tasks.Store)
	}
}
