package ui

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dpshade/pocket-notes/internal/clipboard"
	"github.com/dpshade/pocket-notes/internal/config"
	"github.com/dpshade/pocket-notes/internal/errors"
	"github.com/dpshade/pocket-notes/internal/models"
	"github.com/dpshade/pocket-notes/internal/query"
	"github.com/dpshade/pocket-notes/internal/renderer"
	"github.com/dpshade/pocket-notes/internal/service"
)

// ViewMode represents the current view in the TUI
type ViewMode int

const (
	ViewList ViewMode = iota
	ViewDetail
	ViewForm
)

// Options configures the TUI
type Options struct {
	// PageSizes are the sizes cycled with the page-size key
	PageSizes []int
	// PageSize is the initial page size; a saved preference wins
	PageSize int
	// PrefsDir holds preferences.yaml; empty disables persistence
	PrefsDir  string
	Clipboard clipboard.Writer
	Logger    *slog.Logger
}

// extractDoneMsg carries the result of one extraction request
type extractDoneMsg struct {
	seq  int
	text string
	err  error
}

// tickMsg is sent to clear the status message
type tickMsg time.Time

// clearStatusCmd returns a command that clears the status message after a delay
func clearStatusCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Model represents the TUI application state
type Model struct {
	service    *service.Service
	clip       clipboard.Writer
	logger     *slog.Logger
	errHandler *errors.TUIErrorHandler
	keys       KeyMap
	viewMode   ViewMode

	// List state
	search      textinput.Model
	searching   bool
	highlight   query.HighlightFilter
	tagFilter   []string
	page        int
	pageSize    int
	pageSizes   []int
	cursor      int
	result      query.Result
	suggestions []query.Suggestion
	tagPicker   *TagPickerModal

	// Detail state
	selectedID string
	viewport   viewport.Model

	// Form state
	form       *NoteForm
	extractSeq int

	// Theme
	dark     bool
	prefsDir string

	// Window dimensions
	width  int
	height int

	// Status messages
	statusMsg     string
	statusColor   string
	statusTimeout int

	showExpandedHelp bool
}

// NewModel creates a new TUI model
func NewModel(svc *service.Service, opts Options) Model {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Clipboard == nil {
		opts.Clipboard = clipboard.System{}
	}
	if len(opts.PageSizes) == 0 {
		opts.PageSizes = query.DefaultPageSizes
	}
	if opts.PageSize <= 0 {
		opts.PageSize = query.DefaultPageSize
	}

	dark := true
	if opts.PrefsDir != "" {
		prefs, err := config.LoadPreferences(opts.PrefsDir)
		if err != nil {
			opts.Logger.Warn("ignoring unreadable preferences", "error", err)
		} else {
			dark = prefs.IsDark()
			if prefs.PageSize > 0 {
				opts.PageSize = prefs.PageSize
			}
		}
	}
	applyTheme(dark)

	search := textinput.New()
	search.Placeholder = "Search titles"
	search.Prompt = "/ "
	search.CharLimit = 200

	vp := viewport.New(80, 20)
	vp.Style = lipgloss.NewStyle()

	m := Model{
		service:    svc,
		clip:       opts.Clipboard,
		logger:     opts.Logger,
		errHandler: errors.NewTUIErrorHandler(false, opts.Logger),
		keys:       keys,
		viewMode:   ViewList,
		search:     search,
		highlight:  query.HighlightAll,
		page:       1,
		pageSize:   opts.PageSize,
		pageSizes:  opts.PageSizes,
		tagPicker:  NewTagPickerModal(svc.Vocabulary()),
		viewport:   vp,
		dark:       dark,
		prefsDir:   opts.PrefsDir,
	}
	m.refresh()
	return m
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		if m.statusTimeout > 0 {
			m.statusTimeout--
			if m.statusTimeout == 0 {
				m.statusMsg = ""
			} else {
				return m, clearStatusCmd()
			}
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.tagPicker.SetSize(msg.Width, msg.Height)
		m.viewport.Width = max(msg.Width-8, 40)
		m.viewport.Height = max(msg.Height-10, 5)
		if m.form != nil {
			m.form.Resize(msg.Width, msg.Height)
		}
		if m.viewMode == ViewDetail {
			m.renderDetail()
		}
		return m, nil

	case extractDoneMsg:
		return m.handleExtractDone(msg)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.viewMode {
		case ViewDetail:
			return m.updateDetail(msg)
		case ViewForm:
			return m.updateForm(msg)
		default:
			return m.updateList(msg)
		}
	}

	if m.viewMode == ViewForm && m.form != nil {
		return m, m.form.Update(msg)
	}
	return m, nil
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.tagPicker.IsActive() {
		var cmd tea.Cmd
		m.tagPicker, cmd = m.tagPicker.Update(msg)
		if m.tagPicker.ShouldApply() {
			m.tagFilter = m.tagPicker.Selected()
			m.page = 1
			m.refresh()
		}
		return m, cmd
	}

	if m.searching {
		switch msg.Type {
		case tea.KeyEnter, tea.KeyEsc:
			m.searching = false
			m.search.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		m.page = 1
		m.refresh()
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.ExpandHelp):
		m.showExpandedHelp = !m.showExpandedHelp
	case key.Matches(msg, m.keys.Search):
		m.searching = true
		cmd := m.search.Focus()
		return m, cmd
	case key.Matches(msg, m.keys.Back):
		if m.search.Value() != "" {
			m.search.SetValue("")
			m.page = 1
			m.refresh()
		}
	case key.Matches(msg, m.keys.Up):
		m.cursor = max(m.cursor-1, 0)
	case key.Matches(msg, m.keys.Down):
		m.cursor = min(m.cursor+1, max(len(m.result.Items)-1, 0))
	case key.Matches(msg, m.keys.PrevPage):
		m.goToPage(m.page - 1)
	case key.Matches(msg, m.keys.NextPage):
		m.goToPage(m.page + 1)
	case key.Matches(msg, m.keys.Filter):
		m.highlight = m.highlight.Next()
		m.page = 1
		m.refresh()
	case key.Matches(msg, m.keys.Tags):
		m.tagPicker.Show(m.tagFilter)
	case key.Matches(msg, m.keys.PageSize):
		m.cyclePageSize()
		cmd := m.savePreferences()
		return m, cmd
	case key.Matches(msg, m.keys.Highlight):
		if item, ok := m.currentItem(); ok {
			cmd := m.toggleHighlight(item.Template.ID)
			return m, cmd
		}
	case key.Matches(msg, m.keys.Enter):
		if item, ok := m.currentItem(); ok {
			m.openDetail(item.Template.ID)
		}
	case key.Matches(msg, m.keys.New):
		m.openForm(NewNoteForm(m.service.Vocabulary()))
		cmd := m.form.title.Focus()
		return m, cmd
	case key.Matches(msg, m.keys.Edit):
		if item, ok := m.currentItem(); ok {
			m.openForm(NewEditForm(m.service.Vocabulary(), item.Template))
		}
	case key.Matches(msg, m.keys.Copy):
		if item, ok := m.currentItem(); ok {
			cmd := m.copyText(renderer.NewRenderer(item.Template).RenderText())
			return m, cmd
		}
	case key.Matches(msg, m.keys.Suggest):
		if len(m.result.Items) == 0 && len(m.suggestions) > 0 {
			if t, err := m.service.Get(m.suggestions[0].Index); err == nil {
				m.openDetail(t.ID)
			}
		}
	case key.Matches(msg, m.keys.Theme):
		cmd := m.toggleTheme()
		return m, cmd
	default:
		// Digits jump to a page shown in the pager window
		if s := msg.String(); len(s) == 1 && s[0] >= '1' && s[0] <= '9' {
			m.goToPage(int(s[0] - '0'))
		}
	}
	return m, nil
}

func (m Model) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	t, err := m.service.GetByID(m.selectedID)
	if err != nil {
		m.viewMode = ViewList
		m.refresh()
		cmd := m.setError(err)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Back), key.Matches(msg, m.keys.PrevPage):
		m.viewMode = ViewList
		m.refresh()
	case key.Matches(msg, m.keys.ExpandHelp):
		m.showExpandedHelp = !m.showExpandedHelp
	case key.Matches(msg, m.keys.Copy):
		cmd := m.copyText(renderer.NewRenderer(t).RenderText())
		return m, cmd
	case key.Matches(msg, m.keys.Highlight):
		cmd := m.toggleHighlight(t.ID)
		m.renderDetail()
		return m, cmd
	case key.Matches(msg, m.keys.Edit):
		m.openForm(NewEditForm(m.service.Vocabulary(), t))
	case key.Matches(msg, m.keys.Theme):
		cmd := m.toggleTheme()
		m.renderDetail()
		return m, cmd
	default:
		// Digits copy one subtopic description
		if s := msg.String(); len(s) == 1 && s[0] >= '1' && s[0] <= '9' {
			text, err := renderer.NewRenderer(t).RenderSubtopic(int(s[0] - '1'))
			if err != nil {
				cmd := m.setError(err)
				return m, cmd
			}
			cmd := m.copyText(text)
			return m, cmd
		}
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyEsc {
		editID := m.form.EditID()
		m.form = nil
		if editID != "" {
			m.openDetail(editID)
		} else {
			m.viewMode = ViewList
			m.refresh()
		}
		return m, nil
	}

	cmd := m.form.Update(msg)

	if path, ok := m.form.TakeExtractRequest(); ok {
		m.extractSeq++
		return m, tea.Batch(cmd, extractCmd(m.service, m.extractSeq, path))
	}
	if m.form.TakeSubmit() {
		saveCmd := m.submitForm()
		return m, tea.Batch(cmd, saveCmd)
	}
	return m, cmd
}

// submitForm validates and saves the form, then opens the saved note
func (m *Model) submitForm() tea.Cmd {
	draft := m.form.Draft()
	if result := m.service.Validate(draft); !result.Valid {
		m.form.SetErrors(result.FieldErrors())
		return m.setError(result.ToAppError())
	}
	m.form.SetErrors(nil)

	var (
		t   models.Template
		err error
	)
	if m.form.IsEdit() {
		t, err = m.service.UpdateByID(m.form.EditID(), draft)
	} else {
		t, err = m.service.Create(draft)
	}
	if err != nil {
		return m.setError(err)
	}

	status := "Note saved"
	if !m.form.IsEdit() {
		status = "Note created"
		// A new note is first in the collection
		m.page = 1
		m.cursor = 0
	}
	m.form = nil
	m.openDetail(t.ID)
	return m.setStatus(status, string(ColorSuccess))
}

// extractCmd reads and extracts a document off the update loop
func extractCmd(svc *service.Service, seq int, path string) tea.Cmd {
	return func() tea.Msg {
		data, err := os.ReadFile(path)
		if err != nil {
			return extractDoneMsg{seq: seq, err: errors.Wrap(err, errors.ErrCodeInvalidInput, "cannot read file").WithContext("path", path)}
		}
		text, err := svc.ExtractText(context.Background(), data, path)
		return extractDoneMsg{seq: seq, text: text, err: err}
	}
}

func (m Model) handleExtractDone(msg extractDoneMsg) (tea.Model, tea.Cmd) {
	if m.form == nil || msg.seq != m.extractSeq {
		m.logger.Debug("dropping stale extraction result", "seq", msg.seq, "latest", m.extractSeq)
		return m, nil
	}
	if msg.err != nil {
		m.form.ExtractionFailed()
		cmd := m.setError(msg.err)
		return m, cmd
	}
	m.form.SetParsedText(msg.text)
	cmd := m.setStatus(fmt.Sprintf("Extracted %d characters", len([]rune(msg.text))), string(ColorSuccess))
	return m, cmd
}

func (m *Model) openForm(f *NoteForm) {
	m.form = f
	m.form.Resize(m.width, m.height)
	m.viewMode = ViewForm
}

func (m *Model) openDetail(id string) {
	m.selectedID = id
	m.viewMode = ViewDetail
	m.viewport.GotoTop()
	m.renderDetail()
}

// renderDetail renders the selected note into the viewport
func (m *Model) renderDetail() {
	t, err := m.service.GetByID(m.selectedID)
	if err != nil {
		m.viewport.SetContent("")
		return
	}
	r := renderer.NewRenderer(t)
	content, err := r.RenderStyled(m.dark, max(m.viewport.Width-2, 20))
	if err != nil {
		m.logger.Warn("markdown rendering failed", "error", err)
		content = r.RenderMarkdown()
	}
	m.viewport.SetContent(content)
}

// refresh re-runs the query for the current filters, keeping page and cursor in range
func (m *Model) refresh() {
	spec := query.Spec{
		SearchTerm: m.search.Value(),
		Highlight:  m.highlight,
		Tags:       m.tagFilter,
		Page:       m.page,
		PageSize:   m.pageSize,
	}
	m.result = m.service.Query(spec)
	if m.result.TotalPages > 0 && m.page > m.result.TotalPages {
		m.page = m.result.TotalPages
		spec.Page = m.page
		m.result = m.service.Query(spec)
	}
	m.cursor = min(m.cursor, max(len(m.result.Items)-1, 0))

	m.suggestions = nil
	if m.result.TotalItems == 0 && strings.TrimSpace(m.search.Value()) != "" {
		m.suggestions = m.service.SuggestTitles(m.search.Value(), 3)
	}
}

func (m *Model) goToPage(page int) {
	if page < 1 || page > m.result.TotalPages || page == m.page {
		return
	}
	m.page = page
	m.cursor = 0
	m.refresh()
}

func (m *Model) cyclePageSize() {
	i := slices.Index(m.pageSizes, m.pageSize)
	m.pageSize = m.pageSizes[(i+1)%len(m.pageSizes)]
	m.page = 1
	m.cursor = 0
	m.refresh()
}

func (m *Model) currentItem() (query.Item, bool) {
	if m.cursor < 0 || m.cursor >= len(m.result.Items) {
		return query.Item{}, false
	}
	return m.result.Items[m.cursor], true
}

func (m *Model) toggleHighlight(id string) tea.Cmd {
	t, err := m.service.ToggleHighlightByID(id)
	if err != nil {
		return m.setError(err)
	}
	m.refresh()
	if t.Highlighted {
		return m.setStatus("★ Highlighted", string(ColorAccent))
	}
	return m.setStatus("Highlight removed", string(ColorTextMuted))
}

func (m *Model) copyText(text string) tea.Cmd {
	msg, err := clipboard.CopyWithFallbackTo(m.clip, text)
	if err != nil {
		return m.setError(err)
	}
	return m.setStatus(msg, string(ColorSuccess))
}

func (m *Model) toggleTheme() tea.Cmd {
	m.dark = !m.dark
	applyTheme(m.dark)
	return m.savePreferences()
}

func (m *Model) savePreferences() tea.Cmd {
	if m.prefsDir == "" {
		return nil
	}
	theme := config.ThemeLight
	if m.dark {
		theme = config.ThemeDark
	}
	if err := config.SavePreferences(m.prefsDir, &config.Preferences{Theme: theme, PageSize: m.pageSize}); err != nil {
		m.logger.Warn("saving preferences failed", "error", err)
		return m.setError(errors.Wrap(err, errors.ErrCodeStorageFailure, "could not save preferences"))
	}
	return nil
}

func (m *Model) setStatus(text, color string) tea.Cmd {
	m.statusMsg = text
	m.statusColor = color
	m.statusTimeout = 3
	return clearStatusCmd()
}

func (m *Model) setError(err error) tea.Cmd {
	err = m.errHandler.HandleError(err)
	icon, color := m.errHandler.GetErrorStyle(err)
	return m.setStatus(icon+" "+m.errHandler.FormatError(err), color)
}

// View renders the current view
func (m Model) View() string {
	var mainView string
	switch m.viewMode {
	case ViewDetail:
		mainView = m.renderDetailView()
	case ViewForm:
		mainView = m.renderFormView()
	default:
		if m.tagPicker.IsActive() {
			return m.tagPicker.View()
		}
		mainView = m.renderListView()
	}

	if m.statusMsg != "" {
		status := lipgloss.NewStyle().Foreground(lipgloss.Color(m.statusColor)).Bold(true).Padding(0, 1).Render(m.statusMsg)
		mainView = lipgloss.JoinVertical(lipgloss.Left, mainView, status)
	}
	return AddMainPadding(mainView)
}

func (m Model) renderListView() string {
	elements := []string{CreateMainHeader("Pocket Notes")}

	if m.searching || m.search.Value() != "" {
		elements = append(elements, m.search.View())
	}
	elements = append(elements, CreateSearchIndicator(m.filterSummary()))

	if len(m.result.Items) == 0 {
		elements = append(elements, "", StyleTextMuted.Render("No notes found."))
		if len(m.suggestions) > 0 {
			titles := make([]string, len(m.suggestions))
			for i, s := range m.suggestions {
				titles[i] = fmt.Sprintf("%q", s.Title)
			}
			elements = append(elements, StyleInfo.Render("Did you mean: "+strings.Join(titles, ", ")+"? (d to open)"))
		}
	} else {
		elements = append(elements, "")
		for i, item := range m.result.Items {
			elements = append(elements, m.renderListItem(item, i == m.cursor))
		}
	}

	elements = append(elements, "", m.renderPager())

	essential := []string{"enter open • n new • e edit • * highlight • c copy"}
	additional := []string{
		"/ search • f highlight filter • t tags • s page size • ←/→ page",
		"T theme • q quit",
	}
	elements = append(elements, CreateContextualHelp(essential, additional, m.showExpandedHelp, m.width))
	return lipgloss.JoinVertical(lipgloss.Left, elements...)
}

func (m Model) renderListItem(item query.Item, selected bool) string {
	t := item.Template
	mark := "  "
	if t.Highlighted {
		mark = StyleHighlight.Render("★ ")
	}
	title := CreateOption(t.ListTitle(), selected)
	desc := StyleTextDim.Render("      " + t.ListDescription())
	return lipgloss.JoinVertical(lipgloss.Left, mark+title, desc)
}

func (m Model) filterSummary() string {
	parts := []string{"Filter: " + string(m.highlight)}
	if len(m.tagFilter) > 0 {
		parts = append(parts, "Tags: "+strings.Join(m.tagFilter, " + "))
	}
	parts = append(parts, fmt.Sprintf("%d notes", m.result.TotalItems))
	return strings.Join(parts, " • ")
}

// renderPager renders previous/next markers around a window of page numbers
func (m Model) renderPager() string {
	window := query.PageWindow(m.page, m.result.TotalPages, query.DefaultWindowWidth)
	if len(window) == 0 {
		return StyleTextDim.Render(fmt.Sprintf("Page size %d", m.pageSize))
	}

	var parts []string
	if m.page > 1 {
		parts = append(parts, StylePageOther.Render("‹"))
	}
	for _, p := range window {
		if p == m.page {
			parts = append(parts, StylePageCurrent.Render(fmt.Sprint(p)))
		} else {
			parts = append(parts, StylePageOther.Render(fmt.Sprint(p)))
		}
	}
	if m.page < m.result.TotalPages {
		parts = append(parts, StylePageOther.Render("›"))
	}
	parts = append(parts, StyleTextDim.Render(fmt.Sprintf("  %d per page", m.pageSize)))
	return lipgloss.JoinHorizontal(lipgloss.Center, parts...)
}

func (m Model) renderDetailView() string {
	t, err := m.service.GetByID(m.selectedID)
	if err != nil {
		return "No note selected"
	}

	header := CreateSubPageHeader(t.ListTitle())
	metadata := CreateMetadata(t.ListDescription())

	top, bottom := CreateScrollIndicators(!m.viewport.AtTop(), !m.viewport.AtBottom())
	content := StyleContentContainer.Render(lipgloss.JoinVertical(lipgloss.Left, top, m.viewport.View(), bottom))

	essential := []string{"c copy • 1-9 copy subtopic • * highlight • e edit • Esc back"}
	additional := []string{"↑/↓ scroll • T theme • q quit"}
	help := CreateContextualHelp(essential, additional, m.showExpandedHelp, m.width)

	return lipgloss.JoinVertical(lipgloss.Left, header, metadata, content, help)
}

func (m Model) renderFormView() string {
	if m.form == nil {
		return ""
	}
	title := "New Note"
	if m.form.IsEdit() {
		title = "Edit Note"
	}
	help := CreateContextualHelp(
		[]string{"Tab next field • Ctrl+s save • Esc cancel"},
		[]string{"Ctrl+a add subtopic • Ctrl+d remove subtopic • Space toggle tag • Ctrl+o extract document"},
		true, m.width)
	return lipgloss.JoinVertical(lipgloss.Left, CreateSubPageHeader(title), "", m.form.View(), "", help)
}
