package models

import (
	"fmt"
	"strings"
	"time"
)

// ListTitle returns the title cleaned for single-line rendering
func (t Template) ListTitle() string {
	if title := cleanString(t.Title); title != "" {
		return title
	}
	return "(untitled)"
}

// ListDescription returns the secondary line shown under a template in lists
func (t Template) ListDescription() string {
	var parts []string

	if !t.CreatedAt.IsZero() {
		parts = append(parts, FormatPostedAt(t.CreatedAt))
	}

	if n := len(t.Subtopics); n > 0 {
		if n == 1 {
			parts = append(parts, "1 subtopic")
		} else {
			parts = append(parts, fmt.Sprintf("%d subtopics", n))
		}
	}

	if tagsStr := joinTags(t.Tags); tagsStr != "" {
		parts = append(parts, "Tags: "+tagsStr)
	}

	var cleaned []string
	for _, part := range parts {
		if c := cleanString(part); c != "" {
			cleaned = append(cleaned, c)
		}
	}
	result := strings.Join(cleaned, " • ")

	// Leave space for the list indicator and margins
	maxTotalLength := 100
	if runes := []rune(result); len(runes) > maxTotalLength {
		result = string(runes[:maxTotalLength-3]) + "..."
	}
	return result
}

// FormatPostedAt renders a timestamp in local time like "June 1st, 2024 12:00 PM"
func FormatPostedAt(t time.Time) string {
	t = t.Local()
	return fmt.Sprintf("%s %s, %d %s", t.Month(), ordinal(t.Day()), t.Year(), t.Format("3:04 PM"))
}

func ordinal(n int) string {
	suffix := "th"
	switch n % 100 {
	case 11, 12, 13:
	default:
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return fmt.Sprintf("%d%s", n, suffix)
}

// cleanString removes problematic characters that might cause rendering issues
func cleanString(s string) string {
	if s == "" {
		return ""
	}

	var b strings.Builder
	for _, r := range s {
		if r == '\n' || r == '\r' || r == '\t' {
			b.WriteRune(' ')
		} else if r >= 32 && r != 127 {
			b.WriteRune(r)
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

func joinTags(tags []string) string {
	return strings.Join(tags, ", ")
}
