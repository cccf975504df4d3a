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
package tags

import (
	"fmt"
	"io"
	"sort"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/Paintersrp/retag/internal/i18n"
	"github.com/Paintersrp/retag/internal/state"
	"github.com/Paintersrp/retag/internal/tagindex"
	"github.com/Paintersrp/retag/internal/vault"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#0AF")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#334455"))
)

// headerRow is the row index lipgloss tables pass to StyleFunc for headers.
const headerRow = 0

func NewCmdTags(open state.Opener) *cobra.Command {
	var (
		query string
		limit int
	)

	cmd := &cobra.Command{
		Use:   "tags",
		Short: "List the tags used across the vault",
		Long: heredoc.Doc(`
			Without a query, prints every tag with the number of times it is used,
			counting both header tags and inline #tags. With a query, prints the
			suggestions the editor would offer for it.
		`),
		Example: heredoc.Doc(`
			retag tags
			retag tags --limit 20
			retag tags --query pro
		`),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := open()
			if err != nil {
				return err
			}
			if err := s.InitLogging(false, "warn"); err != nil {
				return err
			}
			return run(s.Store, s.Config.Translator(), cmd.OutOrStdout(), query, limit)
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "Show suggestions for a partial tag")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum number of tags to show")
	return cmd
}

func run(store vault.Store, tr i18n.Translator, out io.Writer, query string, limit int) error {
	if query != "" {
		index, err := tagindex.Collect(store)
		if err != nil {
			return err
		}
		for _, tag := range index.Suggest(query, limit) {
			fmt.Fprintln(out, "#"+tag)
		}
		return nil
	}

	registry, err := store.KnownTags()
	if err != nil {
		return err
	}
	if len(registry) == 0 {
		fmt.Fprintln(out, tr.T(i18n.NoTagsKnown))
		return nil
	}
	fmt.Fprintln(out, renderTable(registry, limit))
	return nil
}

type tagCount struct {
	tag   string
	count int
}

// sortedCounts orders tags by use, most used first, then by name.
func sortedCounts(registry map[string]int) []tagCount {
	counts := make([]tagCount, 0, len(registry))
	for tag, n := range registry {
		counts = append(counts, tagCount{tag: tag, count: n})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].count != counts[j].count {
			return counts[i].count > counts[j].count
		}
		return counts[i].tag < counts[j].tag
	})
	return counts
}

func renderTable(registry map[string]int, limit int) string {
	counts := sortedCounts(registry)
	if limit > 0 && len(counts) > limit {
		counts = counts[:limit]
	}

	rows := make([][]string, len(counts))
	for i, c := range counts {
		rows[i] = []string{c.tag, humanize.Comma(int64(c.count))}
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers("Tag", "Uses").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == headerRow {
				return headerStyle
			}
			return cellStyle
		})
	return t.Render()
}
