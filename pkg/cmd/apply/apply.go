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
package apply

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/erikgeiser/promptkit/confirmation"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Paintersrp/retag/internal/bulk"
	"github.com/Paintersrp/retag/internal/constants"
	"github.com/Paintersrp/retag/internal/frontmatter"
	"github.com/Paintersrp/retag/internal/fzf"
	"github.com/Paintersrp/retag/internal/i18n"
	"github.com/Paintersrp/retag/internal/selection"
	"github.com/Paintersrp/retag/internal/state"
	"github.com/Paintersrp/retag/internal/tree"
	"github.com/Paintersrp/retag/internal/vault"
)

type Options struct {
	Add    string
	Remove string
	All    bool
	Pick   bool
	Query  string
	DryRun bool
	Yes    bool
}

var (
	isTerminal = func() bool {
		return term.IsTerminal(int(os.Stdin.Fd()))
	}
	confirmApply = func(prompt string) (bool, error) {
		return confirmation.New(prompt, confirmation.Yes).RunPrompt()
	}
	pickDocuments = func(store vault.Store, header, query string) ([]vault.Document, error) {
		return fzf.NewPicker(store, header).Pick(query)
	}
)

func NewCmdApply(open state.Opener) *cobra.Command {
	opts := &Options{}

	cmd := &cobra.Command{
		Use:     "apply [note or folder...]",
		Aliases: []string{"a"},
		Short:   "Add and remove tags on notes from the command line",
		Long: heredoc.Doc(`
			Apply one tag edit to a set of notes. Arguments are note paths or
			folders, relative to the vault or absolute inside it; a folder selects
			every note beneath it. Tags are comma separated and a leading '#' is
			optional.
		`),
		Example: heredoc.Doc(`
			retag apply notes/idea.md --add "project, idea"
			retag apply projects archive/2023 --add done --remove wip
			retag apply --all --remove draft --dry-run
			retag apply --pick --query meeting --add minutes
		`),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := open()
			if err != nil {
				return err
			}
			if err := s.InitLogging(false, "warn"); err != nil {
				return err
			}
			return run(cmd.Context(), s, cmd.OutOrStdout(), cmd.ErrOrStderr(), args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Add, "add", "a", "", "Comma separated tags to add")
	cmd.Flags().StringVarP(&opts.Remove, "remove", "r", "", "Comma separated tags to remove")
	cmd.Flags().BoolVar(&opts.All, "all", false, "Select every note in the vault")
	cmd.Flags().BoolVarP(&opts.Pick, "pick", "p", false, "Choose notes with a fuzzy finder")
	cmd.Flags().StringVarP(&opts.Query, "query", "q", "", "Initial fuzzy finder query")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Show the resulting tags without writing")
	cmd.Flags().BoolVarP(&opts.Yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

func run(ctx context.Context, s *state.State, out, errOut io.Writer, args []string, opts *Options) error {
	if ctx == nil {
		ctx = context.Background()
	}
	tr := s.Config.Translator()

	docs, err := resolve(s.Store, args, opts, tr.T(i18n.CommandName))
	if err != nil {
		if errors.Is(err, fzf.ErrAborted) {
			fmt.Fprintln(out, tr.T(i18n.Aborted))
			return nil
		}
		return err
	}

	if err := bulk.Validate(docs, opts.Add, opts.Remove); err != nil {
		return errors.New(describe(tr, err))
	}

	if !opts.Yes && !opts.DryRun && isTerminal() {
		ok, err := confirmApply(tr.T(i18n.ConfirmApply, len(docs)))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(out, tr.T(i18n.Aborted))
			return nil
		}
	}

	bulkOpts := s.BulkOptions()
	bulkOpts.DryRun = opts.DryRun
	report, err := bulk.New(s.Store, bulkOpts).Apply(ctx, docs, opts.Add, opts.Remove)
	if err != nil {
		var batch *bulk.BatchError
		if errors.As(err, &batch) {
			fmt.Fprintln(errOut, batch.Detail())
			if report != nil && report.Processed > 0 {
				fmt.Fprintln(out, tr.T(i18n.FileProcessed, report.Processed))
			}
			return errors.New(tr.T(i18n.OperationFailed, batch.Error()))
		}
		return errors.New(describe(tr, err))
	}

	if report.DryRun {
		fmt.Fprintln(out, tr.T(i18n.DryRunResult, report.Processed))
		for _, res := range report.Results {
			fmt.Fprintf(out, "  %s: [%s]\n", res.Doc.Path, strings.Join(resultTags(res.NewText), ", "))
		}
		return nil
	}

	fmt.Fprintln(out, tr.T(i18n.FileProcessed, report.Processed))
	return nil
}

// resolve turns arguments and selection flags into documents, deduplicated
// and in the order they were named.
func resolve(store *vault.FS, args []string, opts *Options, header string) ([]vault.Document, error) {
	sel := selection.New(nil, nil)

	if opts.All || len(args) > 0 {
		docs, err := store.ListDocuments()
		if err != nil {
			return nil, fmt.Errorf("error listing files: %w", err)
		}
		if opts.All {
			sel.SelectAll(docs)
		}

		root := tree.Build(docs)
		for _, arg := range args {
			rel, err := vaultRelative(store.Root(), arg)
			if err != nil {
				return nil, err
			}
			if strings.HasSuffix(rel, constants.NoteExt) {
				doc, err := store.Lookup(rel)
				if err != nil {
					return nil, err
				}
				sel.ToggleFile(doc, true)
				continue
			}

			folder := root.Find(rel)
			if folder == nil {
				return nil, fmt.Errorf("no note or folder named %q in the vault", arg)
			}
			sel.ToggleFolder(folder, true)
		}
	}

	if opts.Pick {
		picked, err := pickDocuments(store, header, opts.Query)
		if err != nil {
			return nil, err
		}
		for _, doc := range picked {
			sel.ToggleFile(doc, true)
		}
	}

	return sel.Selected(), nil
}

func describe(tr i18n.Translator, err error) string {
	switch {
	case errors.Is(err, bulk.ErrNoSelection):
		return tr.T(i18n.NoFileSelected)
	case errors.Is(err, bulk.ErrNoTags):
		return tr.T(i18n.NoTagsInput)
	case errors.Is(err, bulk.ErrUnknown):
		return tr.T(i18n.OperationFailed, tr.T(i18n.UnknownError))
	}
	return tr.T(i18n.OperationFailed, err)
}

func resultTags(text string) []string {
	h, err := frontmatter.Parse(text)
	if err != nil || h == nil || !h.HasTags {
		return nil
	}
	return frontmatter.CurrentTags(h.Tags)
}
