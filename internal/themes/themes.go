// Package themes resolves document and code-highlight theme names to CSS.
// Unknown names fall back to defaults rather than erroring, so a bad theme
// id can never fail a conversion.
package themes

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"strings"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
	gocache "github.com/patrickmn/go-cache"
)

//go:embed styles/*.css
var styleFS embed.FS

// Default theme names.
const (
	DefaultTheme     = "github"
	DefaultCodeTheme = "github"
)

var (
	// ErrStyleNotFound indicates no embedded stylesheet matches the name.
	ErrStyleNotFound = errors.New("style not found")

	// ErrInvalidThemeName indicates a name unsafe to use as a filename.
	ErrInvalidThemeName = errors.New("invalid theme name")
)

// Catalog resolves theme names to stylesheets. Safe for concurrent use.
type Catalog struct {
	codeCSS *gocache.Cache
}

// NewCatalog creates a Catalog. Generated code-highlight CSS is memoized
// for the catalog's lifetime (it is deterministic per style name).
func NewCatalog() *Catalog {
	return &Catalog{codeCSS: gocache.New(gocache.NoExpiration, 0)}
}

// StyleFor returns the document stylesheet for name. Unknown or unsafe
// names fall back to the default theme.
func (c *Catalog) StyleFor(name string) string {
	css, err := loadStyle(name)
	if err != nil {
		css, _ = loadStyle(DefaultTheme)
	}
	return css
}

// CodeStyleFor returns the highlight stylesheet for a chroma style name.
// Unknown names fall back to chroma's fallback style.
func (c *Catalog) CodeStyleFor(name string) string {
	key := strings.ToLower(name)
	if key == "" {
		key = DefaultCodeTheme
	}
	if v, ok := c.codeCSS.Get(key); ok {
		return v.(string)
	}
	css := generateCodeCSS(key)
	c.codeCSS.Set(key, css, gocache.DefaultExpiration)
	return css
}

// Themes lists the embedded document theme names, unordered.
func Themes() []string {
	entries, err := styleFS.ReadDir("styles")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".css"))
	}
	return names
}

func loadStyle(name string) (string, error) {
	if err := validateName(name); err != nil {
		return "", err
	}
	content, err := styleFS.ReadFile("styles/" + strings.ToLower(name) + ".css")
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrStyleNotFound, name)
	}
	return string(content), nil
}

// validateName checks that a theme name is safe for use as a filename:
// no path separators, dots, or traversal characters.
func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidThemeName)
	}
	if strings.ContainsAny(name, "/\\.") {
		return fmt.Errorf("%w: %q", ErrInvalidThemeName, name)
	}
	return nil
}

// generateCodeCSS renders the chroma stylesheet for a style name using
// class-based output, matching the classes the translator emits.
func generateCodeCSS(name string) string {
	style := styles.Get(name) // chroma falls back for unknown names
	formatter := chromahtml.New(chromahtml.WithClasses(true))

	var buf bytes.Buffer
	if err := formatter.WriteCSS(&buf, style); err != nil {
		return ""
	}
	return buf.String()
}
