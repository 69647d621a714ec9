// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"

	"github.com/muesli/reflow/ansi"
)

// =============================================================================
// FENCE SPLITTING TESTS
// =============================================================================

func TestSplitFences(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []contentSegment
	}{
		{
			name:    "prose only",
			content: "hello there",
			want:    []contentSegment{{text: "hello there"}},
		},
		{
			name:    "single fenced block",
			content: "```go\nx := 1\n```",
			want:    []contentSegment{{code: true, lang: "go", text: "x := 1"}},
		},
		{
			name:    "fence without language",
			content: "```\nplain\n```",
			want:    []contentSegment{{code: true, text: "plain"}},
		},
		{
			name:    "prose around code",
			content: "before\n```py\nprint(1)\n```\nafter",
			want: []contentSegment{
				{text: "before"},
				{code: true, lang: "py", text: "print(1)"},
				{text: "after"},
			},
		},
		{
			name:    "unclosed fence runs to end",
			content: "note\n```go\nx := 1",
			want: []contentSegment{
				{text: "note"},
				{code: true, lang: "go", text: "x := 1"},
			},
		},
		{
			name:    "empty fence emits nothing",
			content: "```go\n```",
			want:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitFences(tt.content)
			if len(got) != len(tt.want) {
				t.Fatalf("splitFences() returned %d segments, want %d", len(got), len(tt.want))
			}
			for i, seg := range got {
				if seg.code != tt.want[i].code {
					t.Errorf("segment %d code = %v, want %v", i, seg.code, tt.want[i].code)
				}
				if seg.lang != tt.want[i].lang {
					t.Errorf("segment %d lang = %q, want %q", i, seg.lang, tt.want[i].lang)
				}
				if seg.text != tt.want[i].text {
					t.Errorf("segment %d text = %q, want %q", i, seg.text, tt.want[i].text)
				}
			}
		})
	}
}

func TestHasFencedCode(t *testing.T) {
	if HasFencedCode("plain prose") {
		t.Error("HasFencedCode() = true for plain prose, want false")
	}
	if !HasFencedCode("see:\n```go\nx\n```") {
		t.Error("HasFencedCode() = false for a fenced block, want true")
	}
}

// =============================================================================
// MESSAGE CONTENT RENDERING TESTS
// =============================================================================

func TestRenderMessageContentProse(t *testing.T) {
	// Backtick-free prose renders exactly as word-wrapped text.
	got := RenderMessageContent("one two three four", 9)
	if got != "one two\nthree\nfour" {
		t.Errorf("RenderMessageContent() = %q, want plain wrapped prose", got)
	}
}

func TestRenderMessageContentFenced(t *testing.T) {
	got := RenderMessageContent("Example:\n```go\nfunc main() {}\n```", 60)

	if !strings.Contains(got, "Example:") {
		t.Error("rendered content should keep the prose segment")
	}
	if !strings.Contains(got, "func") {
		t.Error("rendered content should keep the code body")
	}
	if !strings.Contains(got, "go") {
		t.Error("rendered content should carry the language tag")
	}
	if strings.Contains(got, "```") {
		t.Error("fence markers should not survive rendering")
	}
}

func TestRenderMessageContentEmptyFence(t *testing.T) {
	if got := RenderMessageContent("```\n```", 40); got != "" {
		t.Errorf("RenderMessageContent() of an empty fence = %q, want empty", got)
	}
}

func TestRenderCodeSegmentTruncates(t *testing.T) {
	long := strings.Repeat("abcdefghij", 10)
	got := renderCodeSegment(long, "", 20)

	for _, line := range strings.Split(got, "\n") {
		if w := ansi.PrintableRuneWidth(line); w > 20 {
			t.Errorf("code line width = %d, want <= 20", w)
		}
	}
}

// =============================================================================
// INLINE CODE TESTS
// =============================================================================

func TestStyleInlineCode(t *testing.T) {
	tests := []struct {
		name  string
		input string
		check func(t *testing.T, got string)
	}{
		{
			name:  "no backticks unchanged",
			input: "plain prose line",
			check: func(t *testing.T, got string) {
				if got != "plain prose line" {
					t.Errorf("styleInlineCode() = %q, want input unchanged", got)
				}
			},
		},
		{
			name:  "closed span styled",
			input: "run `ls` to list",
			check: func(t *testing.T, got string) {
				if !strings.Contains(got, "ls") {
					t.Error("span text should survive styling")
				}
				if strings.Contains(got, "`") {
					t.Error("closed span should consume its backticks")
				}
			},
		},
		{
			name:  "unclosed span restored",
			input: "stray ` backtick",
			check: func(t *testing.T, got string) {
				if !strings.Contains(got, "`") {
					t.Error("unclosed span should restore the literal backtick")
				}
			},
		},
		{
			name:  "spans scoped per line",
			input: "first `a`\nsecond line",
			check: func(t *testing.T, got string) {
				if !strings.Contains(got, "second line") {
					t.Error("backtick-free lines should pass through untouched")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, styleInlineCode(tt.input))
		})
	}
}

func TestRenderInlineCode(t *testing.T) {
	if got := RenderInlineCode("go.mod"); !strings.Contains(got, "go.mod") {
		t.Errorf("RenderInlineCode() = %q, want it to contain the span text", got)
	}
}

// =============================================================================
// SYNTAX HIGHLIGHTING TESTS
// =============================================================================

func TestHighlightCode(t *testing.T) {
	got := highlightCode("package main", "go")

	// Chroma wraps tokens in escape sequences but never rewrites their text.
	if !strings.Contains(got, "package") {
		t.Error("highlighted output should contain the keyword token")
	}
	if !strings.Contains(got, "main") {
		t.Error("highlighted output should contain the name token")
	}
}

func TestHighlightCodeUnknownLanguage(t *testing.T) {
	got := highlightCode("plain words here", "nosuchlang")

	if got == "" {
		t.Error("unknown language should still produce output")
	}
	if !strings.Contains(got, "plain") {
		t.Error("fallback output should keep the original text")
	}
}
