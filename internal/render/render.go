// Package render turns generated scripts and setup notes into terminal text.
package render

import (
	"bytes"
	"sort"
	"strings"

	"charm.land/glamour/v2"
	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/aymanbagabas/go-udiff"
	"github.com/mark3labs/scriptwiz/internal/api"
)

// codeBackground matches the surface colour code blocks sit on in the TUI.
const codeBackground = "#313244"

// Highlight syntax highlights source, picking a lexer from fileName and
// falling back to content analysis. It returns source unchanged on failure.
func Highlight(source, fileName string) string {
	lexer := lexers.Match(fileName)
	if lexer == nil {
		lexer = lexers.Analyse(source)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	formatter := formatters.Get("terminal16m")
	if formatter == nil {
		formatter = formatters.Get("terminal256")
	}
	if formatter == nil {
		return source
	}

	baseStyle := styles.Get("monokai")
	if baseStyle == nil {
		baseStyle = styles.Fallback
	}
	bg := chroma.MustParseColour(codeBackground)
	style, err := baseStyle.Builder().Transform(func(entry chroma.StyleEntry) chroma.StyleEntry {
		entry.Background = bg
		return entry
	}).Build()
	if err != nil {
		style = baseStyle
	}

	iterator, err := lexer.Tokenise(nil, source)
	if err != nil {
		return source
	}
	var buf bytes.Buffer
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return source
	}
	return strings.TrimRight(buf.String(), "\n")
}

// Language returns the lexer name chroma would use for fileName, or "text".
func Language(fileName string) string {
	if lexer := lexers.Match(fileName); lexer != nil {
		return lexer.Config().Name
	}
	return "text"
}

// Markdown renders markdown with the dark glamour style, wrapped at width
// (capped at 120). It falls back to the raw content.
func Markdown(content string, width int) string {
	if width > 120 {
		width = 120
	}
	if width <= 0 {
		width = 80
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return content
	}
	rendered, err := r.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimSuffix(rendered, "\n")
}

// Diff returns a unified diff of every script that changed between two
// results, keyed by filename. Identical results give "".
func Diff(previous, current *api.GenerationResult) string {
	before := scriptMap(previous)
	after := scriptMap(current)

	names := make(map[string]struct{}, len(before)+len(after))
	for n := range before {
		names[n] = struct{}{}
	}
	for n := range after {
		names[n] = struct{}{}
	}
	sorted := make([]string, 0, len(names))
	for n := range names {
		sorted = append(sorted, n)
	}
	sort.Strings(sorted)

	var b strings.Builder
	for _, name := range sorted {
		oldLabel, newLabel := "a/"+name, "b/"+name
		if _, ok := before[name]; !ok {
			oldLabel = "/dev/null"
		}
		if _, ok := after[name]; !ok {
			newLabel = "/dev/null"
		}
		b.WriteString(udiff.Unified(oldLabel, newLabel, before[name], after[name]))
	}
	return b.String()
}

func scriptMap(r *api.GenerationResult) map[string]string {
	m := make(map[string]string)
	if r == nil {
		return m
	}
	for _, s := range r.Scripts {
		m[s.Filename] = s.Content
	}
	return m
}
