package settings

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/erikgeiser/promptkit/confirmation"
	"github.com/erikgeiser/promptkit/selection"
	"github.com/erikgeiser/promptkit/textinput"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Paintersrp/retag/internal/config"
	"github.com/Paintersrp/retag/internal/i18n"
	"github.com/Paintersrp/retag/internal/state"
)

type Options struct {
	AutoRefresh  bool
	StampUpdated bool
	Language     string
	Workers      int
	VaultDir     string
}

const workersLabel = "Workers"

var (
	isTerminal = func() bool {
		return term.IsTerminal(int(os.Stdin.Fd()))
	}
	promptSettings = runPrompt
)

func NewCmdSettings() *cobra.Command {
	opts := &Options{}

	cmd := &cobra.Command{
		Use:     "settings",
		Aliases: []string{"s"},
		Short:   "Show or change settings",
		Long: heredoc.Doc(`
			With flags, updates those settings and saves the file. Without flags,
			opens a settings menu when attached to a terminal and prints the
			current settings otherwise.
		`),
		Example: heredoc.Doc(`
			retag settings
			retag settings --language en --workers 4
			retag settings --auto-refresh=false --vault-dir ~/notes
		`),
		RunE: func(cmd *cobra.Command, args []string) error {
			home, err := state.GetHomeDir()
			if err != nil {
				return err
			}
			return run(home, cmd.OutOrStdout(), cmd.Flags().Changed, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.AutoRefresh, "auto-refresh", true, "Refresh the note list after edits and on-disk changes")
	cmd.Flags().BoolVar(&opts.StampUpdated, "stamp-updated", false, "Write an updated timestamp into rewritten headers")
	cmd.Flags().StringVar(&opts.Language, "language", "", "Display language (zh or en)")
	cmd.Flags().IntVar(&opts.Workers, "workers", 0, "Notes rewritten concurrently, 0 for no limit")
	cmd.Flags().StringVar(&opts.VaultDir, "vault-dir", "", "Vault directory to save in the settings file")
	return cmd
}

// load opens the settings file, tolerating a missing vault directory so it
// can be set from here.
func load(home string) (*config.Config, error) {
	if err := config.EnsureConfigExists(home); err != nil {
		var initErr *config.ConfigInitError
		if !errors.As(err, &initErr) {
			return nil, err
		}
	}
	return config.Load(home)
}

func run(home string, out io.Writer, changed func(string) bool, opts *Options) error {
	cfg, err := load(home)
	if err != nil {
		return err
	}
	prevLang := cfg.Language

	dirty := applyFlags(cfg, changed, opts)
	if !dirty {
		if !isTerminal() {
			printSettings(out, cfg)
			return nil
		}
		if dirty, err = promptSettings(cfg); err != nil {
			return err
		}
		if !dirty {
			printSettings(out, cfg)
			return nil
		}
	}

	if err := cfg.Save(); err != nil {
		return err
	}

	tr := i18n.New(cfg.Language)
	if cfg.Language != prevLang {
		fmt.Fprintln(out, tr.T(i18n.LanguageChanged))
	}
	fmt.Fprintln(out, tr.T(i18n.SettingsSaved))
	printSettings(out, cfg)
	return nil
}

func applyFlags(cfg *config.Config, changed func(string) bool, opts *Options) bool {
	dirty := false
	if changed("auto-refresh") {
		cfg.AutoRefresh = opts.AutoRefresh
		dirty = true
	}
	if changed("stamp-updated") {
		cfg.StampUpdated = opts.StampUpdated
		dirty = true
	}
	if changed("language") {
		cfg.Language = opts.Language
		dirty = true
	}
	if changed("workers") {
		cfg.Workers = opts.Workers
		dirty = true
	}
	if changed("vault-dir") {
		cfg.VaultDir = opts.VaultDir
		dirty = true
	}
	return dirty
}

func printSettings(out io.Writer, cfg *config.Config) {
	fmt.Fprintf(out, "vaultdir: %s\n", cfg.VaultDir)
	fmt.Fprintf(out, "auto_refresh: %t\n", cfg.AutoRefresh)
	fmt.Fprintf(out, "language: %s\n", cfg.Language)
	fmt.Fprintf(out, "stamp_updated: %t\n", cfg.StampUpdated)
	fmt.Fprintf(out, "workers: %d\n", cfg.Workers)
	if len(cfg.IgnoredFolders) > 0 {
		fmt.Fprintf(out, "ignored_folders: %s\n", strings.Join(cfg.IgnoredFolders, ", "))
	}
	if collapsed := cfg.CollapsedFolders(); len(collapsed) > 0 {
		fmt.Fprintf(out, "collapsed folders: %s\n", strings.Join(collapsed, ", "))
	}
}

// runPrompt edits one setting chosen from a menu.
func runPrompt(cfg *config.Config) (bool, error) {
	tr := cfg.Translator()

	menu := selection.New(tr.T(i18n.CommandName), []string{
		tr.T(i18n.AutoRefresh),
		tr.T(i18n.Language),
		tr.T(i18n.StampUpdated),
		workersLabel,
	})
	menu.Filter = nil

	choice, err := menu.RunPrompt()
	if err != nil {
		return false, err
	}

	switch choice {
	case tr.T(i18n.AutoRefresh):
		v, err := confirmation.New(tr.T(i18n.RefreshDesc), boolValue(cfg.AutoRefresh)).RunPrompt()
		if err != nil {
			return false, err
		}
		cfg.AutoRefresh = v
	case tr.T(i18n.Language):
		codes := make([]string, len(i18n.Languages))
		for i, l := range i18n.Languages {
			codes[i] = string(l)
		}
		langSel := selection.New(tr.T(i18n.LanguageDesc), codes)
		langSel.Filter = nil
		v, err := langSel.RunPrompt()
		if err != nil {
			return false, err
		}
		cfg.Language = v
	case tr.T(i18n.StampUpdated):
		v, err := confirmation.New(tr.T(i18n.StampUpdated), boolValue(cfg.StampUpdated)).RunPrompt()
		if err != nil {
			return false, err
		}
		cfg.StampUpdated = v
	case workersLabel:
		input := textinput.New(workersLabel)
		input.InitialValue = strconv.Itoa(cfg.Workers)
		input.Validate = func(s string) error {
			n, err := strconv.Atoi(strings.TrimSpace(s))
			if err != nil || n < 0 {
				return errors.New("enter a whole number, 0 for no limit")
			}
			return nil
		}
		v, err := input.RunPrompt()
		if err != nil {
			return false, err
		}
		cfg.Workers, _ = strconv.Atoi(strings.TrimSpace(v))
	default:
		return false, nil
	}
	return true, nil
}

func boolValue(b bool) confirmation.Value {
	if b {
		return confirmation.Yes
	}
	return confirmation.No
}
