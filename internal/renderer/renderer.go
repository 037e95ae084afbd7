// Package renderer turns a template into clipboard text, markdown, styled
// terminal output and JSON/YAML exports.
package renderer

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"gopkg.in/yaml.v3"

	"github.com/dpshade/pocket-notes/internal/errors"
	"github.com/dpshade/pocket-notes/internal/models"
)

// Renderer handles template rendering
type Renderer struct {
	template models.Template
}

// NewRenderer creates a new renderer instance
func NewRenderer(tmpl models.Template) *Renderer {
	return &Renderer{template: tmpl}
}

// RenderText renders the whole template in the plain-text clipboard format
func (r *Renderer) RenderText() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Title: %s\nPosted At: %s\n\n", r.template.Title, models.FormatPostedAt(r.template.CreatedAt))
	for i, s := range r.template.Subtopics {
		fmt.Fprintf(&b, "Subtopic %d: %s\nDescription: %s\n\n", i+1, s.Name, s.Description)
	}
	return b.String()
}

// RenderSubtopic returns the description of subtopic index (0-based)
func (r *Renderer) RenderSubtopic(index int) (string, error) {
	if index < 0 || index >= len(r.template.Subtopics) {
		return "", errors.IndexError(index, len(r.template.Subtopics))
	}
	return r.template.Subtopics[index].Description, nil
}

// RenderMarkdown renders the template as a markdown document
func (r *Renderer) RenderMarkdown() string {
	t := r.template
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", t.Title)
	if t.Highlighted {
		b.WriteString("★ **Highlighted**\n\n")
	}
	fmt.Fprintf(&b, "*Posted At: %s*\n\n", models.FormatPostedAt(t.CreatedAt))
	if len(t.Tags) > 0 {
		tags := make([]string, len(t.Tags))
		for i, tag := range t.Tags {
			tags[i] = "`" + tag + "`"
		}
		fmt.Fprintf(&b, "Tags: %s\n\n", strings.Join(tags, " "))
	}

	for i, s := range t.Subtopics {
		fmt.Fprintf(&b, "## %d. %s\n\n%s\n\n", i+1, s.Name, s.Description)
	}

	if strings.TrimSpace(t.ParsedText) != "" {
		fmt.Fprintf(&b, "---\n\n## Parsed Text\n\n```\n%s\n```\n", strings.TrimRight(t.ParsedText, "\n"))
	}
	return b.String()
}

// RenderStyled renders the markdown view for a terminal with the dark or light glamour style
func (r *Renderer) RenderStyled(dark bool, width int) (string, error) {
	style := "light"
	if dark {
		style = "dark"
	}
	tr, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	out, err := tr.Render(r.RenderMarkdown())
	if err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return out, nil
}

// RenderJSON renders the template as indented JSON
func (r *Renderer) RenderJSON() (string, error) {
	return ExportJSON(r.template)
}

// ExportJSON renders v as indented JSON using the storage field names
func ExportJSON(v any) (string, error) {
	jsonBytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal to JSON: %w", err)
	}
	return string(jsonBytes), nil
}

// ExportYAML renders v as YAML
func ExportYAML(v any) (string, error) {
	yamlBytes, err := yaml.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to marshal to YAML: %w", err)
	}
	return string(yamlBytes), nil
}
