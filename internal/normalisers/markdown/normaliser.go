package markdown

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/tablekeep/loresync/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser converts Markdown lore files to plain text.
//
// Normalisation is lossy: code is noise for retrieval, so fenced blocks and
// inline spans are dropped entirely, while link text survives without its
// target. All whitespace collapses to single spaces, which makes the output
// stable against reflowed paragraphs and table alignment.
type Normaliser struct{}

// New creates a new Markdown normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Normalise converts markdown to plain text with whitespace collapsed.
func (n *Normaliser) Normalise(raw []byte) string {
	return stripMarkdown(string(raw))
}

// DeriveTitle extracts a title from the first H1 heading, falling back to
// the file name with its extension dropped and separators spaced.
func (n *Normaliser) DeriveTitle(raw []byte, fileName string) string {
	lines := strings.Split(string(raw), "\n")
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "#"))
		}
	}

	name := filepath.Base(fileName)
	if ext := filepath.Ext(name); ext != "" {
		name = strings.TrimSuffix(name, ext)
	}
	name = strings.ReplaceAll(name, "_", " ")
	name = strings.ReplaceAll(name, "-", " ")
	return strings.TrimSpace(name)
}

// stripMarkdown removes common markdown formatting for plain text content.
// It handles the constructs campaign lore actually uses; anything exotic
// degrades to its raw text rather than failing.
//
//nolint:gocyclo
func stripMarkdown(content string) string {
	// Remove code blocks (```...```)
	codeBlock := regexp.MustCompile("(?s)```.*?```")
	content = codeBlock.ReplaceAllString(content, "")

	// Remove inline code (`code`)
	inlineCode := regexp.MustCompile("`[^`]+`")
	content = inlineCode.ReplaceAllString(content, "")

	// Remove images ![alt](url)
	images := regexp.MustCompile(`!\[[^\]]*\]\([^)]+\)`)
	content = images.ReplaceAllString(content, "")

	// Convert links [text](url) to just text
	links := regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	content = links.ReplaceAllString(content, "$1")

	// Remove heading markers (# ## ### etc)
	headings := regexp.MustCompile(`(?m)^#{1,6}\s+`)
	content = headings.ReplaceAllString(content, "")

	// Remove horizontal rules before emphasis strips their markers
	hr := regexp.MustCompile(`(?m)^[-*_]{3,}\s*$`)
	content = hr.ReplaceAllString(content, "")

	// Remove table separator rows, then de-mark remaining cells
	tableSep := regexp.MustCompile(`(?m)^\s*\|[ :\-|]+\|\s*$`)
	content = tableSep.ReplaceAllString(content, "")
	content = strings.ReplaceAll(content, "|", " ")

	// Remove bold/italic markers
	content = strings.ReplaceAll(content, "**", "")
	content = strings.ReplaceAll(content, "__", "")
	content = strings.ReplaceAll(content, "*", "")
	content = strings.ReplaceAll(content, "_", " ")

	// Remove blockquote markers
	blockquote := regexp.MustCompile(`(?m)^>\s*`)
	content = blockquote.ReplaceAllString(content, "")

	// Remove list markers (- * + and numbered)
	listMarkers := regexp.MustCompile(`(?m)^\s*[-+]\s+`)
	content = listMarkers.ReplaceAllString(content, "")
	numberedList := regexp.MustCompile(`(?m)^\s*\d+\.\s+`)
	content = numberedList.ReplaceAllString(content, "")

	// Collapse all whitespace to single spaces
	whitespace := regexp.MustCompile(`\s+`)
	content = whitespace.ReplaceAllString(content, " ")

	return strings.TrimSpace(content)
}
