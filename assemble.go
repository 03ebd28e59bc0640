package mdpress

import (
	"bytes"
	"fmt"
	"html"
	"html/template"
	"strings"

	"github.com/inkforge/mdpress/internal/markdown"
)

// readyFlag is the window property the assembled document sets once fonts
// and asynchronous layout settle. The surface driver polls it.
const readyFlag = "__mdpressReady"

// readinessScript flips the readiness flag. Two animation frames after
// fonts.ready guarantee a painted layout before printing.
const readinessScript = `(function () {
  function settle() {
    requestAnimationFrame(function () {
      requestAnimationFrame(function () { window.` + readyFlag + ` = true; });
    });
  }
  function fontsReady() {
    if (document.fonts && document.fonts.ready) {
      document.fonts.ready.then(settle, settle);
    } else {
      settle();
    }
  }
  if (document.readyState === "complete") {
    fontsReady();
  } else {
    window.addEventListener("load", fontsReady);
  }
})();`

var docTemplate = template.Must(template.New("document").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>{{.ThemeCSS}}</style>
<style>{{.CodeCSS}}</style>
{{- if .TOCCSS}}
<style>{{.TOCCSS}}</style>
{{- end}}
{{- if .CustomCSS}}
<style>{{.CustomCSS}}</style>
{{- end}}
{{- if .WatermarkCSS}}
<style>{{.WatermarkCSS}}</style>
{{- end}}
</head>
<body>
{{- if .TOC}}
{{.TOC}}
{{- end}}
{{.Body}}
<script>{{.Script}}</script>
</body>
</html>`))

type documentData struct {
	Title        string
	ThemeCSS     template.CSS
	CodeCSS      template.CSS
	TOCCSS       template.CSS
	CustomCSS    template.CSS
	WatermarkCSS template.CSS
	TOC          template.HTML
	Body         template.HTML
	Script       template.JS
}

// assembleDocument combines the translated body with theme styling, an
// optional table of contents, an optional watermark overlay, and the
// readiness bootstrap into one self-contained HTML document.
func assembleDocument(body string, outline []markdown.Heading, in Input, themeCSS, codeCSS string) (string, error) {
	data := documentData{
		Title:    docTitle(outline),
		ThemeCSS: template.CSS(themeCSS),
		CodeCSS:  template.CSS(codeCSS),
		Body:     template.HTML(body),
		Script:   template.JS(readinessScript),
	}
	if in.CSS != "" {
		data.CustomCSS = template.CSS(sanitizeCSS(in.CSS))
	}
	if in.Watermark != nil && in.Watermark.Text != "" {
		data.WatermarkCSS = template.CSS(watermarkCSS(in.Watermark.resolved()))
	}
	if in.TOC != nil {
		if nav := tocHTML(outline, in.TOC); nav != "" {
			data.TOC = nav
			data.TOCCSS = tocCSS
		}
	}

	var buf bytes.Buffer
	if err := docTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("assembling document: %w", err)
	}
	return buf.String(), nil
}

// docTitle picks the first top-level heading as the document title.
func docTitle(outline []markdown.Heading) string {
	for _, h := range outline {
		if h.Level == 1 && h.Text != "" {
			return h.Text
		}
	}
	if len(outline) > 0 && outline[0].Text != "" {
		return outline[0].Text
	}
	return "Document"
}

// sanitizeCSS escapes sequences that could break out of a <style> block.
func sanitizeCSS(css string) string {
	return strings.ReplaceAll(css, "</", `<\/`)
}

// tocCSS indents entries by heading level and pushes the body to a fresh
// page after the contents.
const tocCSS = template.CSS(`
.toc { page-break-after: always; }
.toc ul { list-style: none; padding-left: 0; }
.toc li.toc-level-2 { padding-left: 1.2em; }
.toc li.toc-level-3 { padding-left: 2.4em; }
.toc li.toc-level-4 { padding-left: 3.6em; }
.toc li.toc-level-5 { padding-left: 4.8em; }
.toc li.toc-level-6 { padding-left: 6em; }
`)

// tocHTML renders the heading outline as a nav block linking to the
// parser-generated anchors. Headings deeper than MaxDepth or without an
// anchor are skipped; an empty result yields no block.
func tocHTML(outline []markdown.Heading, toc *TOC) template.HTML {
	maxDepth := toc.MaxDepth
	if maxDepth == 0 {
		maxDepth = DefaultTOCDepth
	}
	title := toc.Title
	if title == "" {
		title = "Contents"
	}

	var b strings.Builder
	for _, h := range outline {
		if h.Level > maxDepth || h.ID == "" {
			continue
		}
		fmt.Fprintf(&b, "<li class=\"toc-level-%d\"><a href=\"#%s\">%s</a></li>\n",
			h.Level, html.EscapeString(h.ID), html.EscapeString(h.Text))
	}
	if b.Len() == 0 {
		return ""
	}
	return template.HTML(`<nav class="toc"><h2>` + html.EscapeString(title) + "</h2>\n<ul>\n" + b.String() + "</ul>\n</nav>")
}

// watermarkFontSize is the font size for the watermark text overlay.
const watermarkFontSize = "8rem"

// watermarkCSS generates the diagonal background watermark. position:fixed
// repeats it on every printed page.
func watermarkCSS(w Watermark) string {
	return fmt.Sprintf(`
body::before {
  content: "%s";
  position: fixed;
  top: 50%%;
  left: 50%%;
  transform: translate(-50%%, -50%%) rotate(%.1fdeg);
  font-size: %s;
  font-weight: bold;
  color: %s;
  opacity: %.2f;
  z-index: -1;
  pointer-events: none;
  white-space: nowrap;
  font-family: sans-serif;
}
`, escapeCSSString(breakURLPattern(w.Text)), w.Angle, watermarkFontSize, w.Color, w.Opacity)
}

// escapeCSSString escapes a string for safe use in a CSS content property.
func escapeCSSString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.ReplaceAll(s, "\n", `\A `)
	return s
}

// breakURLPattern replaces dots with ONE DOT LEADER (U+2024) so PDF
// viewers don't turn watermark text into clickable links. The character is
// visually indistinguishable from a period.
func breakURLPattern(text string) string {
	return strings.ReplaceAll(text, ".", "․")
}
