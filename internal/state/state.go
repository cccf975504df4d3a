package state

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/spf13/viper"

	"github.com/Paintersrp/retag/internal/bulk"
	"github.com/Paintersrp/retag/internal/config"
	"github.com/Paintersrp/retag/internal/constants"
	"github.com/Paintersrp/retag/internal/logging"
	"github.com/Paintersrp/retag/internal/vault"
)

// State bundles what every command needs: settings, the vault store and,
// for interactive sessions, a watcher.
type State struct {
	Config  *config.Config
	Store   *vault.FS
	Watcher *vault.Watcher
	Status  *ChangeStatus
	Home    string
	Vault   string
}

// Opener hands a command its State.
type Opener func() (*State, error)

// Session builds the State on first use, after flags have been parsed, and
// reuses it for the rest of the process.
type Session struct {
	once sync.Once
	open func() (*State, error)
	st   *State
	err  error
}

func NewSession() *Session {
	return &Session{open: NewState}
}

func (s *Session) Open() (*State, error) {
	s.once.Do(func() {
		s.st, s.err = s.open()
	})
	return s.st, s.err
}

// Close releases the State if one was opened.
func (s *Session) Close() error {
	if s == nil || s.st == nil {
		return nil
	}
	return s.st.Close()
}

func NewState() (*State, error) {
	home, err := GetHomeDir()
	if err != nil {
		return nil, err
	}

	cfg, err := LoadConfig(home)
	if err != nil {
		return nil, err
	}

	vaultDir := cfg.EffectiveVaultDir()
	store, err := vault.NewFS(vaultDir, vault.WithIgnoredFolders(cfg.IgnoredFolders...))
	if err != nil {
		return nil, fmt.Errorf("failed to open vault: %w", err)
	}

	return &State{
		Config: cfg,
		Store:  store,
		Status: &ChangeStatus{},
		Home:   home,
		Vault:  vaultDir,
	}, nil
}

func GetHomeDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory. err: %s", err)
	}

	return home, nil
}

func LoadConfig(home string) (*config.Config, error) {
	viper.AddConfigPath(home + constants.ConfigDir)
	viper.SetConfigName(constants.ConfigFile)
	viper.SetConfigType(constants.ConfigFileType)

	if err := config.EnsureConfigExists(home); err != nil {
		return nil, err
	}

	return config.Load(home)
}

// BulkOptions resolves the batch settings after flag and environment
// overrides.
func (s *State) BulkOptions() bulk.Options {
	return bulk.Options{
		AutoRefresh:  viper.GetBool("auto_refresh"),
		StampUpdated: viper.GetBool("stamp_updated"),
		Workers:      viper.GetInt("workers"),
	}
}

// InitLogging opens the log file at the configured level. tui suppresses
// console output.
func (s *State) InitLogging(tui bool, consoleLevel string) error {
	return logging.Init(logging.Config{
		Level:        s.Config.EffectiveLogLevel(),
		ConsoleLevel: consoleLevel,
		TUIMode:      tui,
	})
}

// StartWatcher begins tracking on-disk changes to notes. Calling it again is
// a no-op.
func (s *State) StartWatcher() error {
	if s.Watcher != nil {
		return nil
	}

	w, err := vault.Watch(s.Store)
	if err != nil {
		return fmt.Errorf("failed to create vault watcher: %w", err)
	}
	w.OnChange(s.Status.Record)
	s.Watcher = w
	return nil
}

// Close releases the watcher and the log file.
func (s *State) Close() error {
	if s == nil {
		return nil
	}

	var errs []error
	if s.Watcher != nil {
		if err := s.Watcher.Close(); err != nil && !errors.Is(err, vault.ErrClosed) {
			errs = append(errs, err)
		}
		s.Watcher = nil
	}
	if err := logging.Close(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) == 0 {
		return nil
	}
	return errors.Join(errs...)
}
