package run

import (
	"strings"
	"testing"
)

func TestAppendInsertsBoundarySpace(t *testing.T) {
	a := NewTextAccumulator(0)
	a.Append("Hello")
	a.Append("World")

	if got := a.String(); got != "Hello World" {
		t.Fatalf("String = %q, want %q", got, "Hello World")
	}
}

func TestAppendSkipsSpaceWhenBoundaryHasWhitespace(t *testing.T) {
	cases := []struct {
		first, second, want string
	}{
		{"Hello ", "World", "Hello World"},
		{"Hello", " World", "Hello World"},
		{"Hello\n", "World", "Hello\nWorld"},
	}
	for _, c := range cases {
		a := NewTextAccumulator(0)
		a.Append(c.first)
		a.Append(c.second)
		if got := a.String(); got != c.want {
			t.Errorf("%q + %q = %q, want %q", c.first, c.second, got, c.want)
		}
	}
}

func TestAppendIgnoresEmptyChunks(t *testing.T) {
	a := NewTextAccumulator(0)
	a.Append("")
	a.Append("x")
	a.Append("")

	if got := a.String(); got != "x" {
		t.Fatalf("String = %q, want %q", got, "x")
	}
}

func TestTrimDropsOldestChunks(t *testing.T) {
	a := NewTextAccumulator(100)
	a.Append(strings.Repeat("a", 90))
	a.Append(strings.Repeat("b", 90))

	if a.Len() > 100 {
		t.Fatalf("Len = %d, want <= 100", a.Len())
	}
	if !strings.Contains(a.String(), "b") {
		t.Fatalf("newest content was dropped: %q", a.String())
	}
	if strings.Contains(a.String(), "a") {
		t.Fatalf("oldest chunk should have been dropped: %q", a.String())
	}
}

func TestTrimSingleOversizedChunkKeepsTail(t *testing.T) {
	a := NewTextAccumulator(10)
	a.Append("0123456789abcdef")

	if a.Len() > 10 {
		t.Fatalf("Len = %d, want <= 10", a.Len())
	}
	if got := a.String(); !strings.HasSuffix(got, "abcdef") {
		t.Fatalf("String = %q, want newest tail retained", got)
	}
}

func TestLargeBufferStaysUnderCap(t *testing.T) {
	a := NewTextAccumulator(0)
	a.Append(strings.Repeat("x", 300000))
	a.Append("Additional content")

	if a.Len() >= 300000 {
		t.Fatalf("Len = %d, want < 300000 after trimming", a.Len())
	}
	if !strings.Contains(a.String(), "Additional content") {
		t.Fatalf("newest chunk missing after trim")
	}
}
