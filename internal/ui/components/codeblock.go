// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides UI components for the aide TUI.
package components

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"

	"github.com/jeranaias/aide-tui/internal/cmp"
	"github.com/jeranaias/aide-tui/internal/ui/styles"
)

// =============================================================================
// FENCED CODE RENDERING
// =============================================================================

// Assistant replies routinely carry ``` fences. The transcript renders those
// as highlighted segments instead of word-wrapped prose: prose wraps to the
// bubble width, code keeps its line structure and gets chroma colors.

const codeFence = "```"

var (
	// langTagStyle marks the language tag above a highlighted block.
	langTagStyle = lipgloss.NewStyle().Foreground(styles.TextMuted).Background(styles.OverlayDim).Padding(0, 1).Bold(true)

	// inlineCodeStyle styles single `code` spans.
	inlineCodeStyle = lipgloss.NewStyle().Background(styles.SurfaceDim).Foreground(styles.Cyan).Padding(0, 1)
)

// contentSegment is one run of a message body: either prose or the interior
// of a fence.
type contentSegment struct {
	code bool
	lang string
	text string
}

// splitFences cuts a message body into prose and fenced-code segments. The
// language tag after the opening fence is preserved; an unclosed trailing
// fence is treated as code to the end of the message.
func splitFences(content string) []contentSegment {
	var (
		segments []contentSegment
		buf      []string
		inFence   bool
		lang     string
	)

	flush := func() {
		if len(buf) == 0 {
			return
		}
		segments = append(segments, contentSegment{
			code: inFence,
			lang: lang,
			text: strings.Join(buf, "\n"),
		})
		buf = nil
	}

	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(line, codeFence) {
			flush()
			inFence = !inFence
			lang = ""
			if inFence {
				lang = strings.TrimSpace(strings.TrimPrefix(line, codeFence))
			}
			continue
		}
		buf = append(buf, line)
	}
	flush()

	return segments
}

// HasFencedCode reports whether a message body contains a code fence.
func HasFencedCode(content string) bool {
	return strings.Contains(content, codeFence)
}

// RenderMessageContent renders a message body for the transcript: fenced
// segments are syntax-highlighted, prose segments are word-wrapped to width
// and get inline `code` styling.
func RenderMessageContent(content string, width int) string {
	var parts []string
	for _, seg := range splitFences(content) {
		if seg.code {
			parts = append(parts, renderCodeSegment(seg.text, seg.lang, width))
			continue
		}
		prose := strings.Trim(seg.text, "\n")
		if prose == "" {
			continue
		}
		parts = append(parts, styleInlineCode(wordWrap(prose, width)))
	}
	return strings.Join(parts, "\n")
}

// renderCodeSegment highlights one fenced block and fits it to the bubble.
// Code lines are truncated rather than wrapped; wrapping would splice ANSI
// sequences and mangle indentation.
func renderCodeSegment(code, lang string, width int) string {
	width = max(width, 20)

	var out []string
	if lang != "" {
		out = append(out, langTagStyle.Render(lang))
	}

	highlighted := highlightCode(strings.Trim(code, "\n"), lang)
	for _, line := range strings.Split(highlighted, "\n") {
		out = append(out, truncate.String("  "+line, uint(width)))
	}

	return strings.Join(out, "\n")
}

// =============================================================================
// INLINE CODE
// =============================================================================

// RenderInlineCode styles a single `code` span.
func RenderInlineCode(code string) string { return inlineCodeStyle.Render(code) }

// styleInlineCode applies RenderInlineCode to backtick spans, one wrapped
// line at a time. Styling after wrapping keeps the width math on plain
// text; a span split across lines falls back to its literal backtick form.
func styleInlineCode(wrapped string) string {
	lines := strings.Split(wrapped, "\n")
	for i, line := range lines {
		if strings.Contains(line, "`") {
			lines[i] = styleInlineSpans(line)
		}
	}
	return strings.Join(lines, "\n")
}

// styleInlineSpans replaces `code` spans within a single line.
func styleInlineSpans(line string) string {
	var (
		out  strings.Builder
		span strings.Builder
		open bool
	)

	for _, r := range line {
		switch {
		case r == '`' && open:
			out.WriteString(RenderInlineCode(span.String()))
			span.Reset()
			open = false
		case r == '`':
			open = true
		case open:
			span.WriteRune(r)
		default:
			out.WriteRune(r)
		}
	}

	// Unclosed span: restore the literal backtick.
	if open {
		out.WriteString("`")
		out.WriteString(span.String())
	}

	return out.String()
}

// =============================================================================
// SYNTAX HIGHLIGHTING
// =============================================================================

// resolveLexer picks a lexer for a fence: the tag wins, then content
// analysis, then the plain-text fallback.
func resolveLexer(src, lang string) chroma.Lexer {
	if l := lexers.Get(lang); l != nil {
		return chroma.Coalesce(l)
	}
	if l := lexers.Analyse(src); l != nil {
		return chroma.Coalesce(l)
	}
	return lexers.Fallback
}

// highlightCode runs source text through chroma with the terminal256
// formatter. Any tokenize or format error returns the text unstyled. The
// chroma style follows the resolved background so a forced light theme
// gets readable token colors.
func highlightCode(src, lang string) string {
	styleName := "monokailight"
	if lipgloss.HasDarkBackground() {
		styleName = "monokai"
	}
	style := cmp.Or(chromaStyles.Get(styleName), chromaStyles.Fallback)

	it, err := resolveLexer(src, lang).Tokenise(nil, src)
	if err != nil {
		return src
	}

	var sb strings.Builder
	if err := formatters.TTY256.Format(&sb, style, it); err != nil {
		return src
	}

	return strings.TrimRight(sb.String(), "\n")
}
