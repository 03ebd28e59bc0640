// Package markdown translates markdown into an HTML body fragment plus a
// heading outline for table-of-contents rendering. The fragment is wrapped
// into a full document by the caller.
package markdown

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"regexp"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
)

// ErrTranslate indicates markdown translation failed.
var ErrTranslate = errors.New("markdown translation failed")

// Heading is one entry of the document outline, in source order.
type Heading struct {
	Level int    // 1..6
	Text  string // plain heading text
	ID    string // anchor id generated by the parser
}

// Precompiled patterns for preprocessing.
var (
	crlfOrCR           = regexp.MustCompile(`\r\n?`)
	multipleBlankLines = regexp.MustCompile(`\n{3,}`)
)

// Translator converts markdown to HTML using goldmark (pure Go).
type Translator struct {
	md goldmark.Markdown
}

// New creates a Translator with GFM extensions, footnotes, auto heading
// IDs, and class-based syntax highlighting (styling comes from an external
// stylesheet).
func New() *Translator {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,      // Tables, strikethrough, autolinks, task lists
			extension.Footnote, // [^1] footnotes
			highlighting.NewHighlighting(
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(true),
				),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(), // Required for TOC anchors
		),
		goldmark.WithRendererOptions(
			html.WithHardWraps(), // Treat newlines as <br>
			html.WithXHTML(),     // Self-closing tags
		),
	)
	return &Translator{md: md}
}

// Translate converts markdown to an HTML body fragment and the heading
// outline. Supports context cancellation via goroutine + select since
// goldmark doesn't natively take a context.
func (t *Translator) Translate(ctx context.Context, content string) (string, []Heading, error) {
	if err := ctx.Err(); err != nil {
		return "", nil, err
	}

	type result struct {
		html    string
		outline []Heading
		err     error
	}

	done := make(chan result, 1)

	go func() {
		source := []byte(preprocess(content))
		doc := t.md.Parser().Parse(text.NewReader(source))

		var outline []Heading
		_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
			if !entering {
				return ast.WalkContinue, nil
			}
			h, ok := n.(*ast.Heading)
			if !ok {
				return ast.WalkContinue, nil
			}
			outline = append(outline, Heading{
				Level: h.Level,
				Text:  string(h.Text(source)),
				ID:    headingID(h),
			})
			return ast.WalkSkipChildren, nil
		})

		var buf bytes.Buffer
		if err := t.md.Renderer().Render(&buf, source, doc); err != nil {
			done <- result{err: fmt.Errorf("%w: %v", ErrTranslate, err)}
			return
		}
		done <- result{html: buf.String(), outline: outline}
	}()

	select {
	case <-ctx.Done():
		return "", nil, ctx.Err()
	case r := <-done:
		return r.html, r.outline, r.err
	}
}

// headingID extracts the id attribute set by parser.WithAutoHeadingID.
func headingID(h *ast.Heading) string {
	v, ok := h.AttributeString("id")
	if !ok {
		return ""
	}
	b, ok := v.([]byte)
	if !ok {
		return ""
	}
	return string(b)
}

// preprocess normalizes line endings and compresses runs of blank lines
// before parsing.
func preprocess(content string) string {
	content = crlfOrCR.ReplaceAllString(content, "\n")
	content = multipleBlankLines.ReplaceAllString(content, "\n\n")
	return content
}
