/*
Copyright © 2024 Ryan Painter paintersrp@gmail.com

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package tag

import (
	"fmt"
	"io"

	"github.com/MakeNowJust/heredoc/v2"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/Paintersrp/retag/internal/logging"
	"github.com/Paintersrp/retag/internal/state"
	"github.com/Paintersrp/retag/internal/tui/tagger"
)

func NewCmdTag(open state.Opener) *cobra.Command {
	var selectAll bool

	cmd := &cobra.Command{
		Use:     "tag",
		Aliases: []string{"t"},
		Short:   "Open the interactive bulk tag editor",
		Long: heredoc.Doc(`
			Browse the vault as a folder tree, tick notes or folders, then enter
			the tags to add and to remove. Tags already used in the vault are
			suggested while typing. ctrl+s applies the edit to every selected note.
		`),
		Example: heredoc.Doc(`
			retag tag
			retag tag --select-all
		`),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := open()
			if err != nil {
				return err
			}
			return run(s, cmd.OutOrStdout(), selectAll)
		},
	}

	cmd.Flags().BoolVar(&selectAll, "select-all", false, "Start with every note selected")
	return cmd
}

func run(s *state.State, out io.Writer, selectAll bool) error {
	if err := s.InitLogging(true, ""); err != nil {
		return err
	}
	log := logging.Get("tag")

	opts := tagger.Options{
		Store:      s.Store,
		Collapse:   s.Config.FolderCollapseState,
		Persister:  s.Config,
		Bulk:       s.BulkOptions(),
		Translator: s.Config.Translator(),
		SelectAll:  selectAll,
	}
	if opts.Bulk.AutoRefresh {
		if err := s.StartWatcher(); err != nil {
			log.Warn("watching vault failed", "error", err)
		} else {
			opts.Poll = s.StatusCmd
		}
	}

	m, err := tagger.New(opts)
	if err != nil {
		return err
	}

	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("error running program: %w", err)
	}
	if m.Done() {
		fmt.Fprintln(out, m.Status())
	}
	return nil
}
