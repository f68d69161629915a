package run

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/muesli/reflow/truncate"
)

// Pre-compiled patterns for the LaTeX-ish artifacts that show up in streamed
// model output.
var (
	inlineMathRe = regexp.MustCompile(`\\\((.*?)\\\)`)
	equationRe   = regexp.MustCompile(`(?s)\\begin\{equation\}(.*?)\\end\{equation\}`)
	textCmdRe    = regexp.MustCompile(`\\text\{([^}]*)\}`)
	boxedRe      = regexp.MustCompile(`\\boxed\{([^}]*)\}`)
	arrayRe      = regexp.MustCompile(`(?s)\\begin\{array\}\{[^}]*\}(.*?)\\end\{array\}`)
	newlineRe    = regexp.MustCompile(`[\r\n]+`)
)

// PrettyArgs renders a value as a compact single-line fragment for step
// summaries. Maps become `"key": "value"` pairs; anything that cannot be
// serialized falls back to its plain string form. The result is truncated to
// maxLen with an ellipsis.
func PrettyArgs(v any, maxLen int) string {
	if v == nil {
		return ""
	}
	var s string
	switch m := v.(type) {
	case map[string]any:
		if len(m) == 0 {
			return ""
		}
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		frags := make([]string, 0, len(keys))
		for _, k := range keys {
			val, err := json.Marshal(m[k])
			if err != nil {
				val = []byte(fmt.Sprintf("%q", fmt.Sprint(m[k])))
			}
			frags = append(frags, fmt.Sprintf("%q: %s", k, val))
		}
		s = strings.Join(frags, ", ")
	default:
		b, err := json.Marshal(v)
		if err != nil {
			s = fmt.Sprint(v)
		} else {
			s = string(b)
		}
	}
	return truncateTail(s, maxLen)
}

// PrettyOut flattens tool output into one summary line: line breaks collapse
// to spaces, paired LaTeX delimiters are stripped, and the result is
// truncated to maxLen with an ellipsis.
func PrettyOut(text string, maxLen int) string {
	if text == "" {
		return ""
	}
	s := newlineRe.ReplaceAllString(text, " ")
	s = equationRe.ReplaceAllString(s, " $1 ")
	s = inlineMathRe.ReplaceAllString(s, "`$1`")
	s = strings.Join(strings.Fields(s), " ")
	return truncateTail(s, maxLen)
}

// NormalizeMarkdown rewrites embedded math notation into a plain
// markdown approximation the terminal renderer can handle.
func NormalizeMarkdown(text string) string {
	if text == "" {
		return ""
	}
	s := text
	s = arrayRe.ReplaceAllStringFunc(s, renderArrayBlock)
	s = textCmdRe.ReplaceAllString(s, "$1")
	s = boxedRe.ReplaceAllString(s, "**$1**")
	s = inlineMathRe.ReplaceAllString(s, "`$1`")
	s = strings.ReplaceAll(s, `\times`, "×")
	s = strings.ReplaceAll(s, `\cdot`, "·")
	return s
}

// renderArrayBlock turns a LaTeX array body into a fenced code block with
// space-aligned columns, one line per row.
func renderArrayBlock(m string) string {
	sub := arrayRe.FindStringSubmatch(m)
	if len(sub) < 2 {
		return m
	}
	rows := strings.Split(sub[1], `\\`)
	var b strings.Builder
	b.WriteString("\n```\n")
	for _, row := range rows {
		cols := strings.Split(row, "&")
		for i := range cols {
			cols[i] = strings.TrimSpace(cols[i])
		}
		line := strings.TrimSpace(strings.Join(cols, "  "))
		if line == "" {
			continue
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("```\n")
	return b.String()
}

func truncateTail(s string, maxLen int) string {
	if maxLen <= 0 || utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	return truncate.StringWithTail(s, uint(maxLen), "…")
}
