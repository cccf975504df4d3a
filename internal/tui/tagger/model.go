// Package tagger is the interactive bulk tag editor.
package tagger

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Paintersrp/retag/internal/bulk"
	"github.com/Paintersrp/retag/internal/i18n"
	"github.com/Paintersrp/retag/internal/logging"
	"github.com/Paintersrp/retag/internal/preview"
	"github.com/Paintersrp/retag/internal/selection"
	"github.com/Paintersrp/retag/internal/state"
	"github.com/Paintersrp/retag/internal/tagindex"
	"github.com/Paintersrp/retag/internal/tree"
	"github.com/Paintersrp/retag/internal/vault"
)

const (
	pollInterval   = 2 * time.Second
	minPreviewWide = 100
	chromeLines    = 14
)

type focus int

const (
	focusTree focus = iota
	focusAdd
	focusRemove
)

// Options configure a Model.
type Options struct {
	Store vault.Store
	// Collapse is the persisted collapsed flag per folder path.
	Collapse   map[string]bool
	Persister  selection.CollapsePersister
	Bulk       bulk.Options
	Translator i18n.Translator
	// SelectAll starts with every document selected.
	SelectAll bool
	// Poll, when set, schedules the next change status refresh.
	Poll func(interval time.Duration) tea.Cmd
}

type row struct {
	folder *tree.Folder
	doc    *vault.Document
	depth  int
}

type appliedMsg struct {
	report *bulk.Report
	err    error
}

type Model struct {
	store   vault.Store
	docs    []vault.Document
	root    *tree.Folder
	index   *tagindex.Index
	sel     *selection.State
	runner  *bulk.Orchestrator
	refresh bool
	tr      i18n.Translator
	keys    keyMap
	poll    func(time.Duration) tea.Cmd
	log     *logging.Logger

	add    textinput.Model
	remove textinput.Model
	focus  focus

	rows   []row
	cursor int
	offset int

	suggestions []string
	suggestion  int

	showPreview bool
	previews    map[string]string

	width      int
	height     int
	status     string
	statusErr  bool
	changeLine string
	changeSeq  uint64
	running    bool
	done       bool
	report     *bulk.Report
}

func New(opts Options) (*Model, error) {
	if opts.Store == nil {
		return nil, errors.New("tagger: nil store")
	}

	m := &Model{
		store:      opts.Store,
		sel:        selection.New(opts.Collapse, opts.Persister),
		runner:     bulk.New(opts.Store, opts.Bulk),
		refresh:    opts.Bulk.AutoRefresh,
		tr:         opts.Translator,
		keys:       newKeyMap(),
		poll:       opts.Poll,
		log:        logging.Get("tagger"),
		suggestion: -1,
		previews:   make(map[string]string),
	}

	if err := m.load(); err != nil {
		return nil, err
	}
	if opts.SelectAll {
		m.sel.SelectAll(m.docs)
	}

	m.add = newInput(m.tr.T(i18n.Example) + "project, idea")
	m.remove = newInput(m.tr.T(i18n.Example) + "draft")
	m.rebuildRows()
	return m, nil
}

func newInput(placeholder string) textinput.Model {
	in := textinput.New()
	in.Prompt = "> "
	in.Placeholder = placeholder
	in.CharLimit = 512
	in.Width = 48
	return in
}

// load reads the document list and folder tree from the store. The tag index
// is built on the first load only. Selected documents that no longer exist
// are dropped.
func (m *Model) load() error {
	docs, err := m.store.ListDocuments()
	if err != nil {
		return fmt.Errorf("error listing files: %w", err)
	}
	if m.index == nil {
		index, err := tagindex.Collect(m.store)
		if err != nil {
			return err
		}
		m.index = index
	}

	m.docs = docs
	m.root = tree.Build(docs)
	clear(m.previews)

	if m.sel.Len() > 0 {
		present := make(map[string]bool, len(docs))
		for _, d := range docs {
			present[d.Path] = true
		}
		kept := m.sel.Selected()
		m.sel.UnselectAll()
		for _, d := range kept {
			if present[d.Path] {
				m.sel.ToggleFile(d, true)
			}
		}
	}
	return nil
}

func (m *Model) Init() tea.Cmd {
	if m.poll == nil {
		return nil
	}
	return m.poll(pollInterval)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeInputs()
		m.scroll()
		return m, nil
	case state.ChangeStatusMsg:
		if msg.Seq != m.changeSeq && m.refresh && !m.running {
			if err := m.load(); err != nil {
				m.setError(err.Error())
			} else {
				m.rebuildRows()
			}
			m.changeSeq = msg.Seq
		}
		m.changeLine = msg.Line
		if m.poll == nil {
			return m, nil
		}
		return m, m.poll(pollInterval)
	case appliedMsg:
		return m.handleApplied(msg)
	case tea.KeyMsg:
		return m.handleKeys(msg)
	}
	return m, nil
}

func (m *Model) handleApplied(msg appliedMsg) (tea.Model, tea.Cmd) {
	m.running = false
	m.report = msg.report
	if msg.err != nil {
		var batch *bulk.BatchError
		if errors.As(msg.err, &batch) {
			m.log.Warn("batch failed", "failed", len(batch.Failures))
			m.setError(m.tr.T(i18n.OperationFailed, batch.Error()))
			return m, nil
		}
		m.setError(m.describe(msg.err))
		return m, nil
	}

	processed := 0
	if msg.report != nil {
		processed = msg.report.Processed
	}
	m.done = true
	m.setStatus(m.tr.T(i18n.FileProcessed, processed))
	return m, tea.Quit
}

func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.submit):
		return m, m.submit()
	case key.Matches(msg, m.keys.nextFocus):
		return m, m.setFocus((m.focus + 1) % 3)
	case key.Matches(msg, m.keys.prevFocus):
		return m, m.setFocus((m.focus + 2) % 3)
	case key.Matches(msg, m.keys.dismiss):
		if m.focus == focusAdd && len(m.suggestions) > 0 {
			m.suggestions = nil
			m.suggestion = -1
			return m, nil
		}
		return m, tea.Quit
	}

	switch m.focus {
	case focusTree:
		m.handleTreeKeys(msg)
		return m, nil
	case focusAdd:
		if handled := m.handleSuggestionKeys(msg); handled {
			return m, nil
		}
		var cmd tea.Cmd
		m.add, cmd = m.add.Update(msg)
		m.updateSuggestions()
		return m, cmd
	default:
		var cmd tea.Cmd
		m.remove, cmd = m.remove.Update(msg)
		return m, cmd
	}
}

func (m *Model) handleTreeKeys(msg tea.KeyMsg) {
	switch {
	case key.Matches(msg, m.keys.up):
		m.moveCursor(-1)
	case key.Matches(msg, m.keys.down):
		m.moveCursor(1)
	case key.Matches(msg, m.keys.toggle):
		m.toggleCurrent()
	case key.Matches(msg, m.keys.toggleExpand):
		if r, ok := m.current(); ok && r.folder != nil {
			m.setExpanded(r.folder, !m.sel.IsExpanded(r.folder.Path))
		}
	case key.Matches(msg, m.keys.expand):
		if r, ok := m.current(); ok && r.folder != nil {
			m.setExpanded(r.folder, true)
		}
	case key.Matches(msg, m.keys.collapse):
		m.collapseCurrent()
	case key.Matches(msg, m.keys.selectAll):
		m.sel.SelectAll(m.docs)
	case key.Matches(msg, m.keys.unselectAll):
		m.sel.UnselectAll()
	case key.Matches(msg, m.keys.togglePreview):
		m.showPreview = !m.showPreview
	}
}

func (m *Model) handleSuggestionKeys(msg tea.KeyMsg) bool {
	if len(m.suggestions) == 0 {
		return false
	}
	switch {
	case key.Matches(msg, m.keys.nextSuggestion):
		m.suggestion = (m.suggestion + 1) % len(m.suggestions)
		return true
	case key.Matches(msg, m.keys.prevSuggestion):
		if m.suggestion <= 0 {
			m.suggestion = len(m.suggestions) - 1
		} else {
			m.suggestion--
		}
		return true
	case key.Matches(msg, m.keys.accept):
		i := m.suggestion
		if i < 0 {
			i = 0
		}
		m.acceptSuggestion(m.suggestions[i])
		return true
	}
	return false
}

func (m *Model) setFocus(f focus) tea.Cmd {
	m.focus = f
	m.add.Blur()
	m.remove.Blur()
	m.suggestions = nil
	m.suggestion = -1

	switch f {
	case focusAdd:
		cmd := m.add.Focus()
		m.updateSuggestions()
		return cmd
	case focusRemove:
		return m.remove.Focus()
	}
	return nil
}

// byteCaret converts the input's rune cursor into a byte offset.
func byteCaret(value string, pos int) int {
	runes := []rune(value)
	if pos > len(runes) {
		pos = len(runes)
	}
	return len(string(runes[:pos]))
}

func (m *Model) updateSuggestions() {
	if m.focus != focusAdd {
		return
	}
	value := m.add.Value()
	token := tagindex.CurrentToken(value, byteCaret(value, m.add.Position()))
	next := m.index.Suggest(token, 0)
	if !slices.Equal(next, m.suggestions) {
		m.suggestion = -1
	}
	m.suggestions = next
}

func (m *Model) acceptSuggestion(tag string) {
	value := m.add.Value()
	updated, caret := tagindex.Complete(value, byteCaret(value, m.add.Position()), tag)
	m.add.SetValue(updated)
	m.add.SetCursor(utf8.RuneCountInString(updated[:caret]))
	m.suggestions = nil
	m.suggestion = -1
}

func (m *Model) submit() tea.Cmd {
	if m.running {
		return nil
	}
	docs := m.sel.Selected()
	addRaw, removeRaw := m.add.Value(), m.remove.Value()

	if err := bulk.Validate(docs, addRaw, removeRaw); err != nil {
		m.setError(m.describe(err))
		return nil
	}

	m.running = true
	m.setStatus(m.tr.T(i18n.Selected, len(docs)) + " …")
	runner := m.runner
	return func() tea.Msg {
		report, err := runner.Apply(context.Background(), docs, addRaw, removeRaw)
		return appliedMsg{report: report, err: err}
	}
}

func (m *Model) describe(err error) string {
	switch {
	case errors.Is(err, bulk.ErrNoSelection):
		return m.tr.T(i18n.NoFileSelected)
	case errors.Is(err, bulk.ErrNoTags):
		return m.tr.T(i18n.NoTagsInput)
	case errors.Is(err, bulk.ErrUnknown):
		return m.tr.T(i18n.OperationFailed, m.tr.T(i18n.UnknownError))
	}
	return m.tr.T(i18n.OperationFailed, err)
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.statusErr = false
}

func (m *Model) setError(s string) {
	m.status = s
	m.statusErr = true
}

func (m *Model) current() (row, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return row{}, false
	}
	return m.rows[m.cursor], true
}

func (m *Model) moveCursor(delta int) {
	m.cursor += delta
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	m.scroll()
}

func (m *Model) toggleCurrent() {
	r, ok := m.current()
	if !ok {
		return
	}
	if r.doc != nil {
		m.sel.ToggleFile(*r.doc, !m.sel.IsSelected(*r.doc))
		return
	}
	m.sel.ToggleFolder(r.folder, !m.sel.IsFolderFullySelected(r.folder))
}

func (m *Model) setExpanded(f *tree.Folder, expanded bool) {
	if f.IsRoot() || m.sel.IsExpanded(f.Path) == expanded {
		return
	}
	if err := m.sel.ToggleFolderExpansion(f.Path); err != nil {
		m.log.Warn("persisting folder state failed", "folder", f.Path, "error", err)
		m.setError(m.tr.T(i18n.OperationFailed, err))
	}
	m.rebuildRows()
}

// collapseCurrent folds the folder under the cursor, or jumps to the parent
// folder row when the cursor is on a file or an already folded folder.
func (m *Model) collapseCurrent() {
	r, ok := m.current()
	if !ok {
		return
	}
	if r.folder != nil && !r.folder.IsRoot() && m.sel.IsExpanded(r.folder.Path) {
		m.setExpanded(r.folder, false)
		return
	}
	for i := m.cursor - 1; i >= 0; i-- {
		if m.rows[i].folder != nil && m.rows[i].depth < r.depth {
			m.cursor = i
			m.scroll()
			return
		}
	}
}

// rebuildRows flattens the visible part of the tree. The root row sits at
// depth 0 and is always open.
func (m *Model) rebuildRows() {
	rows := []row{{folder: m.root}}
	m.root.Walk(func(n tree.Node, depth int) bool {
		switch n := n.(type) {
		case *tree.Folder:
			rows = append(rows, row{folder: n, depth: depth + 1})
			return m.sel.IsExpanded(n.Path)
		case *tree.File:
			doc := n.Doc
			rows = append(rows, row{doc: &doc, depth: depth + 1})
		}
		return true
	})
	m.rows = rows
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	m.scroll()
}

func (m *Model) treeHeight() int {
	if m.height <= 0 {
		return len(m.rows)
	}
	h := m.height - chromeLines - len(m.suggestions)
	if h < 3 {
		h = 3
	}
	return h
}

func (m *Model) scroll() {
	h := m.treeHeight()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+h {
		m.offset = m.cursor - h + 1
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

func (m *Model) resizeInputs() {
	w := m.width - 8
	if m.showPreview && m.width >= minPreviewWide {
		w = m.width/2 - 8
	}
	if w < 20 {
		w = 20
	}
	m.add.Width = w
	m.remove.Width = w
}

// Done reports whether the batch finished without failures.
func (m *Model) Done() bool {
	return m.done
}

// Report is the last batch report, if any.
func (m *Model) Report() *bulk.Report {
	return m.report
}

// Status is the last notice shown to the user.
func (m *Model) Status() string {
	return m.status
}

func (m *Model) View() string {
	left := strings.Join([]string{
		titleStyle.Render(m.tr.T(i18n.CommandName)),
		m.renderInputs(),
		treeStyle.Render(m.renderTree()),
		m.renderFooter(),
	}, "\n")

	if m.showPreview && m.width >= minPreviewWide {
		if pane := m.renderPreview(); pane != "" {
			left = lipgloss.JoinHorizontal(lipgloss.Top, left, previewStyle.Render(pane))
		}
	}
	return appStyle.Render(left)
}

func (m *Model) renderInputs() string {
	var b strings.Builder

	label := labelStyle
	if m.focus == focusAdd {
		label = focusedLabelStyle
	}
	b.WriteString(label.Render(m.tr.T(i18n.AddTags)) + " " + descStyle.Render(m.tr.T(i18n.TagDesc)) + "\n")
	b.WriteString(m.add.View() + "\n")
	if m.focus == focusAdd && len(m.suggestions) > 0 {
		token := tagindex.CurrentToken(m.add.Value(), byteCaret(m.add.Value(), m.add.Position()))
		for i, s := range m.suggestions {
			style := suggestionStyle
			if i == m.suggestion {
				style = activeSuggestionStyle
			}
			b.WriteString(style.Render("#"+highlight(s, token)) + "\n")
		}
	}

	label = labelStyle
	if m.focus == focusRemove {
		label = focusedLabelStyle
	}
	b.WriteString(label.Render(m.tr.T(i18n.RemoveTags)) + " " + descStyle.Render(m.tr.T(i18n.RemoveTagDesc)) + "\n")
	b.WriteString(m.remove.View())
	return b.String()
}

func highlight(tag, token string) string {
	lower := strings.ToLower(tag)
	if token == "" || len(lower) != len(tag) {
		return tag
	}
	i := strings.Index(lower, strings.ToLower(token))
	if i < 0 {
		return tag
	}
	j := i + len(token)
	return tag[:i] + matchStyle.Render(tag[i:j]) + tag[j:]
}

func (m *Model) renderTree() string {
	end := m.offset + m.treeHeight()
	if end > len(m.rows) {
		end = len(m.rows)
	}

	lines := make([]string, 0, end-m.offset)
	for i := m.offset; i < end; i++ {
		line := m.renderRow(m.rows[i])
		if i == m.cursor && m.focus == focusTree {
			line = cursorStyle.Render(line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderRow(r row) string {
	indent := strings.Repeat("  ", r.depth)
	if r.doc != nil {
		return indent + "  " + checkbox(m.sel.IsSelected(*r.doc)) + " " + r.doc.Basename
	}

	icon := "▶"
	if r.folder.IsRoot() || m.sel.IsExpanded(r.folder.Path) {
		icon = "▼"
	}
	name := r.folder.Name
	if r.folder.IsRoot() {
		name = m.tr.T(i18n.FolderName, 0)
	}
	return indent + icon + " " + checkbox(m.sel.IsFolderFullySelected(r.folder)) + " " + name
}

func checkbox(on bool) string {
	if on {
		return "[x]"
	}
	return "[ ]"
}

func (m *Model) renderFooter() string {
	lines := []string{descStyle.Render(m.tr.T(i18n.Selected, m.sel.Len()))}
	if m.changeLine != "" {
		lines = append(lines, descStyle.Render(m.changeLine))
	}
	if m.status != "" {
		style := statusStyle
		if m.statusErr {
			style = errorStyle
		}
		lines = append(lines, style.Render(m.status))
	}
	lines = append(lines, helpStyle.Render(m.tr.T(i18n.Help)))
	return strings.Join(lines, "\n")
}

func (m *Model) renderPreview() string {
	r, ok := m.current()
	if !ok || r.doc == nil {
		return ""
	}
	if out, ok := m.previews[r.doc.Path]; ok {
		return out
	}

	content, err := m.store.ReadText(*r.doc)
	if err != nil {
		return "Error reading file"
	}
	out := preview.Truncate(preview.Render(content, m.width/2-4), m.height-4)
	m.previews[r.doc.Path] = out
	return out
}
