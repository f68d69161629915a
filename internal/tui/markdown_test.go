package tui

import (
	"strings"
	"testing"
)

func TestMarkdownRenderPlainText(t *testing.T) {
	r := NewMarkdownRenderer(NewTheme("dark"))

	got := r.Render("Hello World", 80)
	if !strings.Contains(got, "Hello World") {
		t.Fatalf("Render = %q", got)
	}
}

func TestMarkdownRenderStripsTags(t *testing.T) {
	r := NewMarkdownRenderer(NewTheme("dark"))

	got := r.Render("# Title\n\nSome **bold** and a list:\n\n- one\n- two\n", 80)
	if strings.Contains(got, "<") {
		t.Fatalf("Render leaked HTML: %q", got)
	}
	for _, want := range []string{"Title", "bold", "one", "two"} {
		if !strings.Contains(got, want) {
			t.Errorf("Render missing %q: %q", want, got)
		}
	}
}

func TestMarkdownRenderCodeBlock(t *testing.T) {
	r := NewMarkdownRenderer(NewTheme("dark"))

	got := r.Render("```go\nfmt.Println(42)\n```", 80)
	if !strings.Contains(got, "42") {
		t.Fatalf("code block content lost: %q", got)
	}
}

func TestMarkdownRenderEntities(t *testing.T) {
	r := NewMarkdownRenderer(NewTheme("dark"))

	got := r.Render("a < b & c > d", 80)
	if !strings.Contains(got, "a < b & c > d") {
		t.Fatalf("entities not decoded: %q", got)
	}
}
