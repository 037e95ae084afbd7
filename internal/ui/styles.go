package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Design System Colors
var (
	// Primary brand colors
	ColorPrimary   lipgloss.Color
	ColorSecondary lipgloss.Color
	ColorAccent    lipgloss.Color

	// Semantic colors
	ColorSuccess lipgloss.Color
	ColorWarning lipgloss.Color
	ColorError   lipgloss.Color
	ColorInfo    lipgloss.Color

	// Neutral colors
	ColorText       lipgloss.Color
	ColorTextMuted  lipgloss.Color
	ColorTextDim    lipgloss.Color
	ColorBorder     lipgloss.Color
	ColorBackground lipgloss.Color
	ColorSurface    lipgloss.Color
	ColorOverlay    lipgloss.Color
)

// Component Styles, rebuilt by applyTheme
var (
	StyleTitle     lipgloss.Style
	StyleSubtitle  lipgloss.Style
	StyleText      lipgloss.Style
	StyleTextMuted lipgloss.Style
	StyleTextDim   lipgloss.Style

	StyleFocused    lipgloss.Style
	StyleUnselected lipgloss.Style
	StyleHighlight  lipgloss.Style

	StylePageCurrent lipgloss.Style
	StylePageOther   lipgloss.Style

	StyleInfo lipgloss.Style

	StyleModal            lipgloss.Style
	StyleContentContainer lipgloss.Style
	StyleFormLabel        lipgloss.Style
	StyleFormError        lipgloss.Style
	StyleLoading          lipgloss.Style
	StyleSearchIndicator  lipgloss.Style
	StyleMetadata         lipgloss.Style

	StyleScrollIndicator       lipgloss.Style
	StyleScrollIndicatorActive lipgloss.Style
)

func init() {
	applyTheme(true)
}

// applyTheme switches the palette and rebuilds every style from it
func applyTheme(dark bool) {
	if dark {
		setDarkThemeColors()
	} else {
		setLightThemeColors()
	}
	buildStyles()
}

func setDarkThemeColors() {
	// Brand colors - work well on dark backgrounds
	ColorPrimary = lipgloss.Color("205")   // Bright magenta/pink
	ColorSecondary = lipgloss.Color("33")  // Bright cyan/blue
	ColorAccent = lipgloss.Color("214")    // Bright orange/yellow

	ColorSuccess = lipgloss.Color("10")
	ColorWarning = lipgloss.Color("11")
	ColorError = lipgloss.Color("9")
	ColorInfo = lipgloss.Color("12")

	// Neutral colors - high contrast for dark backgrounds
	ColorText = lipgloss.Color("252")
	ColorTextMuted = lipgloss.Color("244")
	ColorTextDim = lipgloss.Color("240")
	ColorBorder = lipgloss.Color("238")
	ColorBackground = lipgloss.Color("235")
	ColorSurface = lipgloss.Color("236")
	ColorOverlay = lipgloss.Color("234")
}

func setLightThemeColors() {
	// Brand colors - adjusted for light backgrounds
	ColorPrimary = lipgloss.Color("125")
	ColorSecondary = lipgloss.Color("24")
	ColorAccent = lipgloss.Color("130")

	ColorSuccess = lipgloss.Color("22")
	ColorWarning = lipgloss.Color("136")
	ColorError = lipgloss.Color("160")
	ColorInfo = lipgloss.Color("24")

	// Neutral colors - high contrast for light backgrounds
	ColorText = lipgloss.Color("232")
	ColorTextMuted = lipgloss.Color("240")
	ColorTextDim = lipgloss.Color("244")
	ColorBorder = lipgloss.Color("248")
	ColorBackground = lipgloss.Color("255")
	ColorSurface = lipgloss.Color("254")
	ColorOverlay = lipgloss.Color("253")
}

func buildStyles() {
	StyleTitle = lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true).Padding(0, 1)
	StyleSubtitle = lipgloss.NewStyle().Foreground(ColorSecondary).Bold(true).Padding(0, 1)
	StyleText = lipgloss.NewStyle().Foreground(ColorText)
	StyleTextMuted = lipgloss.NewStyle().Foreground(ColorTextMuted)
	StyleTextDim = lipgloss.NewStyle().Foreground(ColorTextDim)

	StyleFocused = lipgloss.NewStyle().
		Foreground(lipgloss.Color("15")).
		Background(ColorSecondary).
		Bold(true).
		Padding(0, 1)
	StyleUnselected = lipgloss.NewStyle().Foreground(ColorTextMuted).Padding(0, 1)
	StyleHighlight = lipgloss.NewStyle().Foreground(ColorAccent).Bold(true)

	StylePageCurrent = lipgloss.NewStyle().
		Foreground(lipgloss.Color("15")).
		Background(ColorPrimary).
		Bold(true).
		Padding(0, 1)
	StylePageOther = lipgloss.NewStyle().Foreground(ColorTextMuted).Padding(0, 1)

	StyleInfo = lipgloss.NewStyle().Foreground(ColorInfo).Bold(true).Padding(0, 1)

	StyleModal = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorPrimary).
		Padding(1, 2)
	StyleContentContainer = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Padding(0, 1).
		MarginTop(1)

	StyleFormLabel = lipgloss.NewStyle().Foreground(ColorText).Bold(true)
	StyleFormError = lipgloss.NewStyle().Foreground(ColorError)
	StyleLoading = lipgloss.NewStyle().Foreground(ColorInfo).Italic(true).Padding(0, 1)
	StyleSearchIndicator = lipgloss.NewStyle().
		Foreground(ColorAccent).
		Background(ColorSurface).
		Bold(true).
		Padding(0, 1)
	StyleMetadata = lipgloss.NewStyle().Foreground(ColorTextDim).Padding(0, 1)

	StyleScrollIndicator = lipgloss.NewStyle().Foreground(ColorTextDim).Align(lipgloss.Center)
	StyleScrollIndicatorActive = lipgloss.NewStyle().Foreground(ColorSecondary).Bold(true).Align(lipgloss.Center)
}

// Create header for main page
func CreateMainHeader(titleText string) string {
	return StyleTitle.Render(titleText)
}

// Create header for subpages (back handled via keybind)
func CreateSubPageHeader(titleText string) string {
	return StyleSubtitle.Render(titleText)
}

func CreateMetadata(text string) string {
	return StyleMetadata.Render(text)
}

// Context-aware help with an expandable second block
func CreateContextualHelp(essential []string, additional []string, showExpanded bool, width int) string {
	var lines []string

	firstRowParts := append([]string(nil), essential...)
	if len(additional) > 0 && !showExpanded {
		firstRowParts = append(firstRowParts, "Ctrl+g for more")
	}
	lines = append(lines, truncate(strings.Join(firstRowParts, " • "), width-4))

	if showExpanded {
		for _, row := range additional {
			lines = append(lines, truncate(row, width-4))
		}
	}
	return StyleTextDim.Render(strings.Join(lines, "\n"))
}

// CreateOption renders one selectable line
func CreateOption(label string, isSelected bool) string {
	if isSelected {
		return StyleFocused.Render("▶ " + label)
	}
	return StyleUnselected.Render("  " + label)
}

// CreateSearchIndicator summarizes the active filters
func CreateSearchIndicator(text string) string {
	return StyleSearchIndicator.Render(text)
}

// Modal centering helper
func CenterModal(content string, width, height int) string {
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}

// Add consistent padding to main content (left only)
func AddMainPadding(content string) string {
	return lipgloss.NewStyle().PaddingLeft(2).Render(content)
}

// Create scroll indicators based on scroll state
func CreateScrollIndicators(canScrollUp, canScrollDown bool) (string, string) {
	top := StyleScrollIndicator.Render("─────────")
	if canScrollUp {
		top = StyleScrollIndicatorActive.Render("...")
	}
	bottom := StyleScrollIndicator.Render("─────────")
	if canScrollDown {
		bottom = StyleScrollIndicatorActive.Render("...")
	}
	return top, bottom
}

func truncate(s string, width int) string {
	runes := []rune(s)
	if width <= 3 || len(runes) <= width {
		return s
	}
	return string(runes[:width-3]) + "..."
}
