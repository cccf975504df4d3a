package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/Paintersrp/retag/internal/i18n"
	"github.com/Paintersrp/retag/internal/logging"
)

// Config is the persisted settings file.
type Config struct {
	VaultDir            string          `yaml:"vaultdir"              json:"vault_dir"`
	AutoRefresh         bool            `yaml:"auto_refresh"          json:"auto_refresh"`
	FolderCollapseState map[string]bool `yaml:"folder_collapse_state" json:"folder_collapse_state"`
	Language            string          `yaml:"language"              json:"language"`
	StampUpdated        bool            `yaml:"stamp_updated"         json:"stamp_updated"`
	Workers             int             `yaml:"workers"               json:"workers"`
	IgnoredFolders      []string        `yaml:"ignored_folders"       json:"ignored_folders"`
	LogLevel            string          `yaml:"log_level"             json:"log_level"`

	home string `yaml:"-"`
}

const (
	defaultLanguage = string(i18n.Default)
	defaultLogLevel = "info"
)

// Default returns the settings used for keys missing from the file.
func Default() *Config {
	return &Config{
		AutoRefresh:         true,
		FolderCollapseState: make(map[string]bool),
		Language:            defaultLanguage,
		LogLevel:            defaultLogLevel,
	}
}

func (cfg *Config) ensureDefaults() {
	if cfg.FolderCollapseState == nil {
		cfg.FolderCollapseState = make(map[string]bool)
	}
	if strings.TrimSpace(cfg.Language) == "" {
		cfg.Language = defaultLanguage
	}
	if strings.TrimSpace(cfg.LogLevel) == "" {
		cfg.LogLevel = defaultLogLevel
	}
	if cfg.IgnoredFolders == nil {
		cfg.IgnoredFolders = []string{}
	}
}

// Validate checks the enumerated and numeric settings.
func (cfg *Config) Validate() error {
	languages := make([]interface{}, 0, len(i18n.Languages))
	for _, l := range i18n.Languages {
		languages = append(languages, string(l))
	}
	levels := make([]interface{}, 0, len(logging.Levels))
	for _, l := range logging.Levels {
		levels = append(levels, l)
	}

	return validation.ValidateStruct(cfg,
		validation.Field(&cfg.Language, validation.Required, validation.In(languages...)),
		validation.Field(&cfg.Workers, validation.Min(0)),
		validation.Field(&cfg.LogLevel, validation.Required, validation.In(levels...)),
	)
}

// Load reads the settings file under home. An empty file yields defaults.
func Load(home string) (*Config, error) {
	path := GetConfigPath(home)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if len(strings.TrimSpace(string(data))) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	}
	cfg.home = home
	cfg.ensureDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings in %s: %w", path, err)
	}

	cfg.syncViper()
	return cfg, nil
}

// syncViper publishes file values as viper defaults so bound flags and
// RETAG_ environment variables take precedence.
func (cfg *Config) syncViper() {
	viper.SetDefault("vaultdir", cfg.VaultDir)
	viper.SetDefault("auto_refresh", cfg.AutoRefresh)
	viper.SetDefault("language", cfg.Language)
	viper.SetDefault("stamp_updated", cfg.StampUpdated)
	viper.SetDefault("workers", cfg.Workers)
	viper.SetDefault("log_level", cfg.LogLevel)
	if cfg.IgnoredFolders == nil {
		viper.SetDefault("ignored_folders", []string{})
	} else {
		viper.SetDefault("ignored_folders", append([]string(nil), cfg.IgnoredFolders...))
	}
}

// EffectiveVaultDir is the vault directory after flag and environment
// overrides.
func (cfg *Config) EffectiveVaultDir() string {
	if v := strings.TrimSpace(viper.GetString("vaultdir")); v != "" {
		return v
	}
	return cfg.VaultDir
}

// EffectiveLogLevel is the log level after flag and environment overrides.
func (cfg *Config) EffectiveLogLevel() string {
	if v := strings.TrimSpace(viper.GetString("log_level")); v != "" {
		return v
	}
	return cfg.LogLevel
}

// Home returns the directory the settings were loaded from.
func (cfg *Config) Home() string {
	return cfg.home
}

func (cfg *Config) GetConfigPath() string {
	if cfg.home != "" {
		return GetConfigPath(cfg.home)
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return GetConfigPath(homeDir)
}

// Save validates and writes the settings file.
func (cfg *Config) Save() error {
	cfg.ensureDefaults()
	if err := cfg.Validate(); err != nil {
		return err
	}

	cfg.syncViper()

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	configPath := cfg.GetConfigPath()
	if configPath == "" {
		return &ConfigInitError{msg: "cannot resolve settings path"}
	}
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0o644)
}

// SetFolderCollapsed re-reads the settings file, changes only the collapsed
// flag of path, and writes it back. Other keys keep whatever is on disk.
func (cfg *Config) SetFolderCollapsed(path string, collapsed bool) error {
	if cfg.FolderCollapseState == nil {
		cfg.FolderCollapseState = make(map[string]bool)
	}
	cfg.FolderCollapseState[path] = collapsed

	current, err := Load(cfg.home)
	if err != nil {
		return fmt.Errorf("reloading settings: %w", err)
	}
	current.FolderCollapseState[path] = collapsed
	return current.Save()
}

// CollapsedFolders lists the paths recorded as collapsed, sorted.
func (cfg *Config) CollapsedFolders() []string {
	var out []string
	for path, collapsed := range cfg.FolderCollapseState {
		if collapsed {
			out = append(out, path)
		}
	}
	sort.Strings(out)
	return out
}

// Translator returns the message lookup for the configured language.
func (cfg *Config) Translator() i18n.Translator {
	if v := viper.GetString("language"); i18n.Valid(v) {
		return i18n.New(v)
	}
	return i18n.New(cfg.Language)
}

func (cfg *Config) SetLanguage(code string) error {
	if !i18n.Valid(code) {
		return fmt.Errorf("invalid language: %q. Please choose from %s.", code, validLanguageList())
	}
	cfg.Language = code
	return cfg.Save()
}

func validLanguageList() string {
	names := make([]string, 0, len(i18n.Languages))
	for _, l := range i18n.Languages {
		names = append(names, string(l))
	}
	return strings.Join(names, ", ")
}
