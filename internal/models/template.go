package models

import (
	"strings"
	"time"
)

// Template represents a titled note composed of named subtopics
type Template struct {
	ID          string     `json:"id" yaml:"id"`
	Title       string     `json:"title" yaml:"title"`
	Subtopics   []Subtopic `json:"subtopics" yaml:"subtopics"`
	Tags        []string   `json:"tags" yaml:"tags"`
	CreatedAt   time.Time  `json:"createdAt" yaml:"created_at"`
	Highlighted bool       `json:"highlighted" yaml:"highlighted"`
	ParsedText  string     `json:"parsedText,omitempty" yaml:"parsed_text,omitempty"`
}

// Subtopic is a named text block owned by exactly one template
type Subtopic struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
}

// Draft holds the user-editable fields of a template.
// CreatedAt is accepted so callers can round-trip an existing record, but the
// lifecycle never copies it onto a stored template.
type Draft struct {
	Title      string
	Subtopics  []Subtopic
	Tags       []string
	ParsedText string
	CreatedAt  time.Time
}

// Clone returns a deep copy of the template
func (t Template) Clone() Template {
	c := t
	c.Subtopics = append([]Subtopic(nil), t.Subtopics...)
	c.Tags = append([]string(nil), t.Tags...)
	return c
}

// Draft returns the editable fields of the template, for pre-filling an edit form
func (t Template) Draft() Draft {
	subtopics := append([]Subtopic(nil), t.Subtopics...)
	if len(subtopics) == 0 {
		subtopics = PlaceholderSubtopics()
	}
	return Draft{
		Title:      t.Title,
		Subtopics:  subtopics,
		Tags:       append([]string(nil), t.Tags...),
		ParsedText: t.ParsedText,
		CreatedAt:  t.CreatedAt,
	}
}

// HasTag reports whether the template carries the tag (exact match)
func (t Template) HasTag(tag string) bool {
	for _, existing := range t.Tags {
		if existing == tag {
			return true
		}
	}
	return false
}

// HasAllTags reports whether every required tag is present on the template.
// An empty requirement matches every template.
func (t Template) HasAllTags(required []string) bool {
	for _, tag := range required {
		if !t.HasTag(tag) {
			return false
		}
	}
	return true
}

// NewSubtopic creates a subtopic with the given name and description
func NewSubtopic(name, description string) Subtopic {
	return Subtopic{Name: name, Description: description}
}

// IsEmpty reports whether both name and description are blank
func (s Subtopic) IsEmpty() bool {
	return strings.TrimSpace(s.Name) == "" && strings.TrimSpace(s.Description) == ""
}

// PlaceholderSubtopics returns the single empty subtopic a fresh form starts with
func PlaceholderSubtopics() []Subtopic {
	return []Subtopic{{}}
}

// AddSubtopic appends an empty subtopic
func AddSubtopic(subtopics []Subtopic) []Subtopic {
	out := append([]Subtopic(nil), subtopics...)
	return append(out, Subtopic{})
}

// RemoveSubtopic removes the subtopic at index. Removing the last remaining
// subtopic yields one empty placeholder, never an empty sequence. An index out
// of range returns an unchanged copy.
func RemoveSubtopic(subtopics []Subtopic, index int) []Subtopic {
	if index < 0 || index >= len(subtopics) {
		out := append([]Subtopic(nil), subtopics...)
		if len(out) == 0 {
			return PlaceholderSubtopics()
		}
		return out
	}

	out := make([]Subtopic, 0, len(subtopics)-1)
	out = append(out, subtopics[:index]...)
	out = append(out, subtopics[index+1:]...)
	if len(out) == 0 {
		return PlaceholderSubtopics()
	}
	return out
}

// ToggleTag adds the tag when absent and removes it when present
func ToggleTag(tags []string, tag string) []string {
	out := make([]string, 0, len(tags)+1)
	found := false
	for _, t := range tags {
		if t == tag {
			found = true
			continue
		}
		out = append(out, t)
	}
	if !found {
		out = append(out, tag)
	}
	return out
}

// NormalizeTags trims tags and drops blanks and duplicates, keeping first-seen order
func NormalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}
