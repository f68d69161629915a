package tui

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/alecthomas/chroma"
	"github.com/alecthomas/chroma/formatters"
	"github.com/alecthomas/chroma/lexers"
	"github.com/alecthomas/chroma/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	mdCodeBlockRe  = regexp.MustCompile(`(?s)<pre><code(?: class="language-([a-zA-Z0-9]+)")?>(.*?)</code></pre>`)
	mdInlineCodeRe = regexp.MustCompile(`<code>([^<]+)</code>`)
	mdHeadingRe    = regexp.MustCompile(`<h([1-3])[^>]*>(.*?)</h[1-3]>`)
	mdStrongRe     = regexp.MustCompile(`<strong>(.*?)</strong>`)
	mdEmRe         = regexp.MustCompile(`<em>(.*?)</em>`)
	mdListItemRe   = regexp.MustCompile(`<li>(.*?)</li>`)
	mdTagRe        = regexp.MustCompile(`<[^>]+>`)
	mdBlankRunRe   = regexp.MustCompile(`\n{3,}`)
)

// MarkdownRenderer renders a markdown transcript for the terminal, with
// chroma-highlighted code blocks.
type MarkdownRenderer struct {
	md        goldmark.Markdown
	formatter chroma.Formatter
	codeStyle *chroma.Style
	theme     Theme
}

// NewMarkdownRenderer creates a renderer styled by the given theme.
func NewMarkdownRenderer(theme Theme) *MarkdownRenderer {
	return &MarkdownRenderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(html.WithXHTML()),
		),
		formatter: formatters.Get("terminal256"),
		codeStyle: styles.Get("monokai"),
		theme:     theme,
	}
}

// Render converts markdown to styled terminal text. On any conversion error
// the raw content comes back unchanged; the transcript must always render.
func (r *MarkdownRenderer) Render(content string, width int) string {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(content), &buf); err != nil {
		return content
	}
	return r.terminalize(buf.String(), width)
}

func (r *MarkdownRenderer) terminalize(htmlContent string, width int) string {
	out := htmlContent

	var fenced []string
	out = mdCodeBlockRe.ReplaceAllStringFunc(out, func(m string) string {
		sub := mdCodeBlockRe.FindStringSubmatch(m)
		if len(sub) < 3 {
			return m
		}
		codeWidth := width - 6
		if codeWidth < 20 {
			codeWidth = 20
		}
		block := r.highlight(decodeEntities(sub[2]), sub[1])
		block = r.theme.Panel.Width(codeWidth).Render(block)
		fenced = append(fenced, block)
		return fmt.Sprintf("\n\x00code:%d\x00\n", len(fenced)-1)
	})

	out = mdInlineCodeRe.ReplaceAllStringFunc(out, func(m string) string {
		sub := mdInlineCodeRe.FindStringSubmatch(m)
		if len(sub) < 2 {
			return m
		}
		return r.theme.TitleBusy.Render(decodeEntities(sub[1]))
	})

	out = mdHeadingRe.ReplaceAllStringFunc(out, func(m string) string {
		sub := mdHeadingRe.FindStringSubmatch(m)
		if len(sub) < 3 {
			return m
		}
		return r.theme.Title.Render(mdTagRe.ReplaceAllString(sub[2], "")) + "\n"
	})

	out = mdStrongRe.ReplaceAllStringFunc(out, func(m string) string {
		sub := mdStrongRe.FindStringSubmatch(m)
		if len(sub) < 2 {
			return m
		}
		return lipgloss.NewStyle().Bold(true).Render(sub[1])
	})

	out = mdEmRe.ReplaceAllStringFunc(out, func(m string) string {
		sub := mdEmRe.FindStringSubmatch(m)
		if len(sub) < 2 {
			return m
		}
		return lipgloss.NewStyle().Italic(true).Render(sub[1])
	})

	out = mdListItemRe.ReplaceAllStringFunc(out, func(m string) string {
		sub := mdListItemRe.FindStringSubmatch(m)
		if len(sub) < 2 {
			return m
		}
		return "  • " + mdTagRe.ReplaceAllString(sub[1], "") + "\n"
	})

	out = strings.ReplaceAll(out, "</p>", "\n")
	out = mdTagRe.ReplaceAllString(out, "")
	out = decodeEntities(out)

	for i, block := range fenced {
		out = strings.ReplaceAll(out, fmt.Sprintf("\x00code:%d\x00", i), block)
	}

	out = mdBlankRunRe.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out)
}

func (r *MarkdownRenderer) highlight(code, lang string) string {
	var lexer chroma.Lexer
	if lang != "" {
		lexer = lexers.Get(lang)
	}
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	iterator, err := chroma.Coalesce(lexer).Tokenise(nil, code)
	if err != nil {
		return code
	}
	var buf bytes.Buffer
	if err := r.formatter.Format(&buf, r.codeStyle, iterator); err != nil {
		return code
	}
	return strings.TrimRight(buf.String(), "\n")
}

var entityReplacer = strings.NewReplacer(
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&#39;", "'",
	"&#x27;", "'",
	"&#x60;", "`",
	"&nbsp;", " ",
)

func decodeEntities(s string) string {
	return entityReplacer.Replace(s)
}
