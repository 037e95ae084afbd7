package ui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dpshade/pocket-notes/internal/models"
)

// fieldKind identifies a focusable part of the form
type fieldKind int

const (
	titleField fieldKind = iota
	tagsField
	subtopicNameField
	subtopicDescField
	parsedTextField
	filePathField
)

// formField is one stop in the focus order
type formField struct {
	kind     fieldKind
	subtopic int
}

type subtopicInputs struct {
	name textinput.Model
	desc textinput.Model
}

// NoteForm creates or edits a note
type NoteForm struct {
	editID string // empty when creating

	title      textinput.Model
	vocabulary []string
	tags       []string
	tagCursor  int
	subtopics  []subtopicInputs
	parsedText textarea.Model
	filePath   textinput.Model

	focused int
	errors  map[string]string

	submitted      bool
	extractPending string
	extracting     bool
}

// NewNoteForm creates an empty form with one placeholder subtopic
func NewNoteForm(vocabulary []string) *NoteForm {
	title := textinput.New()
	title.Placeholder = "Note title"
	title.CharLimit = 200
	title.Width = 60

	ta := textarea.New()
	ta.Placeholder = "Text extracted from a document, or anything else worth keeping"
	ta.CharLimit = 0
	ta.MaxHeight = 0
	ta.ShowLineNumbers = false
	ta.SetWidth(80)
	ta.SetHeight(6)

	path := textinput.New()
	path.Placeholder = "/path/to/document.pdf or .docx (Ctrl+o to extract)"
	path.CharLimit = 1024
	path.Width = 60

	f := &NoteForm{
		title:      title,
		vocabulary: append([]string(nil), vocabulary...),
		parsedText: ta,
		filePath:   path,
		errors:     map[string]string{},
	}
	f.setSubtopics(models.PlaceholderSubtopics())
	f.focusCurrent()
	return f
}

// NewEditForm creates a form pre-filled from t
func NewEditForm(vocabulary []string, t models.Template) *NoteForm {
	f := NewNoteForm(vocabulary)
	d := t.Draft()
	f.editID = t.ID
	f.title.SetValue(d.Title)
	f.tags = d.Tags
	f.setSubtopics(d.Subtopics)
	f.parsedText.SetValue(d.ParsedText)
	f.focusCurrent()
	return f
}

// IsEdit reports whether the form edits an existing note
func (f *NoteForm) IsEdit() bool {
	return f.editID != ""
}

// EditID returns the id of the note being edited
func (f *NoteForm) EditID() string {
	return f.editID
}

func (f *NoteForm) setSubtopics(subtopics []models.Subtopic) {
	f.subtopics = make([]subtopicInputs, len(subtopics))
	for i, s := range subtopics {
		f.subtopics[i] = newSubtopicInputs(s)
	}
}

func newSubtopicInputs(s models.Subtopic) subtopicInputs {
	name := textinput.New()
	name.Placeholder = "Subtopic name"
	name.CharLimit = 200
	name.Width = 40
	name.SetValue(s.Name)

	desc := textinput.New()
	desc.Placeholder = "Description"
	desc.CharLimit = 2000
	desc.Width = 70
	desc.SetValue(s.Description)

	return subtopicInputs{name: name, desc: desc}
}

// fields lists the focus order for the current number of subtopics
func (f *NoteForm) fields() []formField {
	out := []formField{{kind: titleField}, {kind: tagsField}}
	for i := range f.subtopics {
		out = append(out, formField{kind: subtopicNameField, subtopic: i}, formField{kind: subtopicDescField, subtopic: i})
	}
	return append(out, formField{kind: parsedTextField}, formField{kind: filePathField})
}

func (f *NoteForm) current() formField {
	fields := f.fields()
	if f.focused < 0 || f.focused >= len(fields) {
		f.focused = 0
	}
	return fields[f.focused]
}

func (f *NoteForm) blurAll() {
	f.title.Blur()
	for i := range f.subtopics {
		f.subtopics[i].name.Blur()
		f.subtopics[i].desc.Blur()
	}
	f.parsedText.Blur()
	f.filePath.Blur()
}

func (f *NoteForm) focusCurrent() {
	f.blurAll()
	switch field := f.current(); field.kind {
	case titleField:
		f.title.Focus()
	case subtopicNameField:
		f.subtopics[field.subtopic].name.Focus()
	case subtopicDescField:
		f.subtopics[field.subtopic].desc.Focus()
	case parsedTextField:
		f.parsedText.Focus()
	case filePathField:
		f.filePath.Focus()
	}
}

func (f *NoteForm) nextField() {
	f.focused = (f.focused + 1) % len(f.fields())
	f.focusCurrent()
}

func (f *NoteForm) prevField() {
	n := len(f.fields())
	f.focused = (f.focused - 1 + n) % n
	f.focusCurrent()
}

func (f *NoteForm) focusSubtopic(i int) {
	for idx, field := range f.fields() {
		if field.kind == subtopicNameField && field.subtopic == i {
			f.focused = idx
			break
		}
	}
	f.focusCurrent()
}

// AddSubtopic appends an empty subtopic and focuses it
func (f *NoteForm) AddSubtopic() {
	f.subtopics = append(f.subtopics, newSubtopicInputs(models.Subtopic{}))
	f.focusSubtopic(len(f.subtopics) - 1)
}

// RemoveSubtopic removes subtopic i. Removing the last one leaves a single
// empty placeholder.
func (f *NoteForm) RemoveSubtopic(i int) {
	if i < 0 || i >= len(f.subtopics) {
		return
	}
	f.setSubtopics(models.RemoveSubtopic(f.subtopicValues(), i))
	f.focusSubtopic(min(i, len(f.subtopics)-1))
}

// ToggleTag checks or unchecks a vocabulary tag
func (f *NoteForm) ToggleTag(tag string) {
	f.tags = models.ToggleTag(f.tags, tag)
}

func (f *NoteForm) subtopicValues() []models.Subtopic {
	out := make([]models.Subtopic, len(f.subtopics))
	for i, s := range f.subtopics {
		out[i] = models.NewSubtopic(strings.TrimSpace(s.name.Value()), strings.TrimSpace(s.desc.Value()))
	}
	return out
}

// Draft returns the form contents. Tags keep vocabulary order.
func (f *NoteForm) Draft() models.Draft {
	tags := make([]string, 0, len(f.tags))
	for _, tag := range f.vocabulary {
		if slices.Contains(f.tags, tag) {
			tags = append(tags, tag)
		}
	}
	return models.Draft{
		Title:      f.title.Value(),
		Subtopics:  f.subtopicValues(),
		Tags:       tags,
		ParsedText: f.parsedText.Value(),
	}
}

// SetErrors shows validation messages keyed by field
func (f *NoteForm) SetErrors(errs map[string]string) {
	if errs == nil {
		errs = map[string]string{}
	}
	f.errors = errs
}

// SetParsedText replaces the parsed text with extracted content
func (f *NoteForm) SetParsedText(text string) {
	f.parsedText.SetValue(text)
	f.extracting = false
}

// ExtractionFailed clears the in-flight marker; the parsed text is kept
func (f *NoteForm) ExtractionFailed() {
	f.extracting = false
}

// TakeExtractRequest returns the file path the user asked to extract, once
func (f *NoteForm) TakeExtractRequest() (string, bool) {
	path := f.extractPending
	f.extractPending = ""
	if path == "" {
		return "", false
	}
	f.extracting = true
	return path, true
}

// TakeSubmit reports whether the user asked to save, once
func (f *NoteForm) TakeSubmit() bool {
	submitted := f.submitted
	f.submitted = false
	return submitted
}

// InTextArea reports whether keys go to the multi-line parsed text
func (f *NoteForm) InTextArea() bool {
	return f.current().kind == parsedTextField
}

// Resize updates form dimensions based on window size
func (f *NoteForm) Resize(width, height int) {
	f.parsedText.SetWidth(max(width-10, 20))
	f.parsedText.SetHeight(max(height-20-2*len(f.subtopics), 3))
}

// Update handles form keys
func (f *NoteForm) Update(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return f.updateFocused(msg)
	}

	field := f.current()
	switch keyMsg.String() {
	case "tab":
		f.nextField()
		return nil
	case "shift+tab":
		f.prevField()
		return nil
	case "ctrl+s":
		f.submitted = true
		return nil
	case "ctrl+a":
		f.AddSubtopic()
		return nil
	case "ctrl+d":
		if field.kind == subtopicNameField || field.kind == subtopicDescField {
			f.RemoveSubtopic(field.subtopic)
		}
		return nil
	case "ctrl+o":
		if path := strings.TrimSpace(f.filePath.Value()); path != "" {
			f.extractPending = path
		}
		return nil
	case "down", "enter":
		if field.kind != parsedTextField {
			f.nextField()
			return nil
		}
	case "up":
		if field.kind != parsedTextField {
			f.prevField()
			return nil
		}
	}

	if field.kind == tagsField {
		switch keyMsg.String() {
		case "left", "h":
			f.tagCursor = max(f.tagCursor-1, 0)
		case "right", "l":
			f.tagCursor = min(f.tagCursor+1, len(f.vocabulary)-1)
		case " ", "space", "x":
			if f.tagCursor < len(f.vocabulary) {
				f.ToggleTag(f.vocabulary[f.tagCursor])
			}
		}
		return nil
	}

	return f.updateFocused(msg)
}

func (f *NoteForm) updateFocused(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch field := f.current(); field.kind {
	case titleField:
		f.title, cmd = f.title.Update(msg)
	case subtopicNameField:
		f.subtopics[field.subtopic].name, cmd = f.subtopics[field.subtopic].name.Update(msg)
	case subtopicDescField:
		f.subtopics[field.subtopic].desc, cmd = f.subtopics[field.subtopic].desc.Update(msg)
	case parsedTextField:
		f.parsedText, cmd = f.parsedText.Update(msg)
	case filePathField:
		f.filePath, cmd = f.filePath.Update(msg)
	}
	return cmd
}

// View renders the form
func (f *NoteForm) View() string {
	field := f.current()
	var b []string

	b = append(b, f.label("Title", field.kind == titleField), f.title.View())
	b = append(b, f.errorLine("title"))

	b = append(b, f.label("Tags", field.kind == tagsField), f.tagsView(field.kind == tagsField))
	b = append(b, f.errorLine(f.firstError("tags[")))

	b = append(b, f.label("Subtopics", field.kind == subtopicNameField || field.kind == subtopicDescField))
	for i, s := range f.subtopics {
		b = append(b, StyleTextMuted.Render(fmt.Sprintf("%d.", i+1))+" "+s.name.View(), "   "+s.desc.View())
		b = append(b, f.errorLine(f.firstError(fmt.Sprintf("subtopics[%d]", i))))
	}
	b = append(b, f.errorLine("subtopics"))

	b = append(b, f.label("Parsed text", field.kind == parsedTextField), f.parsedText.View())

	fileLabel := "Document"
	if f.extracting {
		fileLabel += " " + StyleLoading.Render("extracting...")
	}
	b = append(b, f.label(fileLabel, field.kind == filePathField), f.filePath.View())

	var lines []string
	for _, line := range b {
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (f *NoteForm) label(text string, focused bool) string {
	if focused {
		return StyleHighlight.Render("▶ " + text)
	}
	return StyleFormLabel.Render("  " + text)
}

func (f *NoteForm) tagsView(focused bool) string {
	parts := make([]string, len(f.vocabulary))
	for i, tag := range f.vocabulary {
		box := "[ ]"
		if slices.Contains(f.tags, tag) {
			box = "[x]"
		}
		text := box + " " + tag
		if focused && i == f.tagCursor {
			parts[i] = StyleFocused.Render(text)
		} else {
			parts[i] = StyleUnselected.Render(text)
		}
	}
	return lipgloss.NewStyle().Width(90).Render(strings.Join(parts, " "))
}

func (f *NoteForm) firstError(prefix string) string {
	var keys []string
	for k := range f.errors {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return ""
	}
	slices.Sort(keys)
	return keys[0]
}

func (f *NoteForm) errorLine(field string) string {
	if field == "" {
		return ""
	}
	msg, ok := f.errors[field]
	if !ok {
		return ""
	}
	return StyleFormError.Render("  " + msg)
}
