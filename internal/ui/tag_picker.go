package ui

import (
	"fmt"
	"io"
	"slices"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// TagPickerModal selects the tags a note must carry to be listed
type TagPickerModal struct {
	list           list.Model
	vocabulary     []string
	selected       []string
	isActive       bool
	width          int
	height         int
	applyRequested bool
}

// tagItem implements the list.Item interface for tag selection
type tagItem struct {
	tag      string
	selected bool
}

func (t tagItem) FilterValue() string {
	return t.tag
}

// tagItemDelegate renders one tag per line with a check mark
type tagItemDelegate struct{}

func (d tagItemDelegate) Height() int                               { return 1 }
func (d tagItemDelegate) Spacing() int                              { return 0 }
func (d tagItemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d tagItemDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	item, ok := listItem.(tagItem)
	if !ok {
		return
	}

	title := "[ ] " + item.tag
	if item.selected {
		title = "[x] " + item.tag
	}

	style := StyleText
	if item.selected {
		style = StyleText.Foreground(ColorSuccess)
	}
	if index == m.Index() {
		style = style.Bold(true)
		title = "▶ " + title
	} else {
		title = "  " + title
	}
	fmt.Fprint(w, style.Render(title))
}

// NewTagPickerModal creates a tag picker over vocabulary
func NewTagPickerModal(vocabulary []string) *TagPickerModal {
	l := list.New([]list.Item{}, tagItemDelegate{}, 40, len(vocabulary)+4)
	l.Title = "Filter by tags (all selected must match)"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)

	keyMap := list.DefaultKeyMap()
	keyMap.ShowFullHelp = key.NewBinding(
		key.WithKeys("ctrl+h"),
		key.WithHelp("Ctrl+h", "toggle help"),
	)
	l.KeyMap = keyMap

	tp := &TagPickerModal{
		list:       l,
		vocabulary: append([]string(nil), vocabulary...),
	}
	tp.updateListItems()
	return tp
}

// SetSize updates the modal size
func (tp *TagPickerModal) SetSize(width, height int) {
	tp.width = width
	tp.height = height
	tp.list.SetSize(min(width-4, 50), min(height-6, len(tp.vocabulary)+4))
}

// Show activates the modal with the currently applied tags checked
func (tp *TagPickerModal) Show(selected []string) {
	tp.selected = append([]string(nil), selected...)
	tp.updateListItems()
	tp.isActive = true
	tp.applyRequested = false
}

// IsActive returns whether the modal is active
func (tp *TagPickerModal) IsActive() bool {
	return tp.isActive
}

// ShouldApply reports whether the selection was confirmed; it resets the request
func (tp *TagPickerModal) ShouldApply() bool {
	apply := tp.applyRequested
	tp.applyRequested = false
	return apply
}

// Selected returns the checked tags in vocabulary order
func (tp *TagPickerModal) Selected() []string {
	out := make([]string, 0, len(tp.selected))
	for _, tag := range tp.vocabulary {
		if slices.Contains(tp.selected, tag) {
			out = append(out, tag)
		}
	}
	return out
}

func (tp *TagPickerModal) updateListItems() {
	items := make([]list.Item, len(tp.vocabulary))
	for i, tag := range tp.vocabulary {
		items[i] = tagItem{tag: tag, selected: slices.Contains(tp.selected, tag)}
	}
	tp.list.SetItems(items)
}

// Update handles modal updates
func (tp *TagPickerModal) Update(msg tea.Msg) (*TagPickerModal, tea.Cmd) {
	if !tp.isActive {
		return tp, nil
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "enter":
			tp.applyRequested = true
			tp.isActive = false
			return tp, nil
		case "esc":
			tp.isActive = false
			return tp, nil
		case " ", "space", "x":
			if item, ok := tp.list.SelectedItem().(tagItem); ok {
				if item.selected {
					tp.selected = slices.DeleteFunc(tp.selected, func(s string) bool { return s == item.tag })
				} else {
					tp.selected = append(tp.selected, item.tag)
				}
				tp.updateListItems()
			}
			return tp, nil
		case "ctrl+r":
			tp.selected = nil
			tp.updateListItems()
			return tp, nil
		}
	}

	var cmd tea.Cmd
	tp.list, cmd = tp.list.Update(msg)
	return tp, cmd
}

// View renders the modal
func (tp *TagPickerModal) View() string {
	if !tp.isActive {
		return ""
	}

	instructions := StyleTextDim.Render("Space: toggle • Ctrl+r: clear • Enter: apply • Esc: cancel")
	content := lipgloss.JoinVertical(lipgloss.Left, tp.list.View(), "", instructions)
	return CenterModal(StyleModal.Render(content), tp.width, tp.height)
}
