package mdpress

import (
	"fmt"
	"regexp"
	"strings"
)

// Page size constants.
const (
	PageSizeLetter = "letter"
	PageSizeA4     = "a4"
	PageSizeLegal  = "legal"
)

// Orientation constants.
const (
	OrientationPortrait  = "portrait"
	OrientationLandscape = "landscape"
)

// Margin bounds in inches.
const (
	MinMargin     = 0.25
	MaxMargin     = 3.0
	DefaultMargin = 0.5
)

// Watermark bounds.
const (
	MinWatermarkOpacity     = 0.0
	MaxWatermarkOpacity     = 1.0
	DefaultWatermarkOpacity = 0.08
	DefaultWatermarkAngle   = -45.0
	DefaultWatermarkColor   = "#000000"
)

// TOC depth bounds, matching HTML heading levels.
const (
	MinTOCDepth     = 1
	MaxTOCDepth     = 6
	DefaultTOCDepth = 3
)

// Input contains conversion parameters. Markdown is required; everything
// else falls back to defaults when zero.
type Input struct {
	Markdown  string        // Markdown content (required)
	Theme     string        // Document theme name (unknown falls back to default)
	CodeTheme string        // Code highlight theme name (unknown falls back to default)
	CSS       string        // Custom CSS appended after theme styles (optional)
	Page      *PageSettings // Page settings (optional, nil = defaults)
	Watermark *Watermark    // Watermark overlay (optional)
	TOC       *TOC          // Table of contents (optional, nil = none)
}

// PageSettings configures PDF page dimensions.
type PageSettings struct {
	Size        string  // "letter", "a4", "legal"
	Orientation string  // "portrait", "landscape"
	Margin      float64 // inches, applied to all sides
	PageNumbers bool    // print "page / total" in the footer
}

// DefaultPageSettings returns page settings with default values.
func DefaultPageSettings() *PageSettings {
	return &PageSettings{
		Size:        PageSizeLetter,
		Orientation: OrientationPortrait,
		Margin:      DefaultMargin,
	}
}

// Validate checks that page settings are valid.
// Returns nil if p is nil (nil means use defaults).
// Does not mutate - uses case-insensitive comparison.
func (p *PageSettings) Validate() error {
	if p == nil {
		return nil
	}

	if !isValidPageSize(p.Size) {
		return fmt.Errorf("%w: %q", ErrInvalidPageSize, p.Size)
	}

	if !isValidOrientation(p.Orientation) {
		return fmt.Errorf("%w: %q", ErrInvalidOrientation, p.Orientation)
	}

	if p.Margin < MinMargin || p.Margin > MaxMargin {
		return fmt.Errorf("%w: %.2f (must be between %.2f and %.2f)", ErrInvalidMargin, p.Margin, MinMargin, MaxMargin)
	}

	return nil
}

func isValidPageSize(size string) bool {
	switch strings.ToLower(size) {
	case PageSizeLetter, PageSizeA4, PageSizeLegal:
		return true
	}
	return false
}

func isValidOrientation(orientation string) bool {
	switch strings.ToLower(orientation) {
	case OrientationPortrait, OrientationLandscape:
		return true
	}
	return false
}

// Watermark configures a diagonal text overlay repeated on every page.
type Watermark struct {
	Text    string
	Color   string  // hex color, e.g. "#cc0000"; empty = default
	Opacity float64 // 0 = default
	Angle   float64 // degrees; 0 = default diagonal
}

// hexColorPattern matches 3- and 6-digit hex colors.
var hexColorPattern = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Validate checks watermark settings. Returns nil if w is nil or has no
// text (both mean no watermark).
func (w *Watermark) Validate() error {
	if w == nil || w.Text == "" {
		return nil
	}
	if w.Color != "" && !hexColorPattern.MatchString(w.Color) {
		return fmt.Errorf("%w: %q (must be #rgb or #rrggbb)", ErrInvalidWatermarkColor, w.Color)
	}
	if w.Opacity < MinWatermarkOpacity || w.Opacity > MaxWatermarkOpacity {
		return fmt.Errorf("%w: %.2f (must be between %.2f and %.2f)", ErrInvalidWatermarkOpacity, w.Opacity, MinWatermarkOpacity, MaxWatermarkOpacity)
	}
	return nil
}

// resolved fills zero-valued fields with defaults. Nil-safe.
func (w *Watermark) resolved() Watermark {
	if w == nil {
		return Watermark{}
	}
	r := *w
	if r.Color == "" {
		r.Color = DefaultWatermarkColor
	}
	if r.Opacity == 0 {
		r.Opacity = DefaultWatermarkOpacity
	}
	if r.Angle == 0 {
		r.Angle = DefaultWatermarkAngle
	}
	return r
}

// TOC configures the generated table of contents.
type TOC struct {
	Title    string // heading above the list (empty = "Contents")
	MaxDepth int    // deepest heading level included; 0 = default
}

// Validate checks TOC settings. Returns nil if t is nil (no TOC).
func (t *TOC) Validate() error {
	if t == nil {
		return nil
	}
	if t.MaxDepth != 0 && (t.MaxDepth < MinTOCDepth || t.MaxDepth > MaxTOCDepth) {
		return fmt.Errorf("%w: %d (must be between %d and %d)", ErrInvalidTOCDepth, t.MaxDepth, MinTOCDepth, MaxTOCDepth)
	}
	return nil
}

// Paper dimensions in inches, portrait.
var paperSizes = map[string][2]float64{
	PageSizeLetter: {8.5, 11.0},
	PageSizeA4:     {8.27, 11.69},
	PageSizeLegal:  {8.5, 14.0},
}

// printSpec is the resolved print parameterization handed to a surface
// driver. Dimensions are in inches, portrait; landscape is a flag for the
// print engine rather than swapped dimensions.
type printSpec struct {
	paperWidth  float64
	paperHeight float64
	landscape   bool
	margin      float64
	pageNumbers bool
}

// resolvePrintSpec turns validated page settings into a printSpec,
// filling defaults for nil or zero fields.
func resolvePrintSpec(p *PageSettings) printSpec {
	if p == nil {
		p = DefaultPageSettings()
	}
	size := strings.ToLower(p.Size)
	dims, ok := paperSizes[size]
	if !ok {
		dims = paperSizes[PageSizeLetter]
	}
	margin := p.Margin
	if margin == 0 {
		margin = DefaultMargin
	}
	return printSpec{
		paperWidth:  dims[0],
		paperHeight: dims[1],
		landscape:   strings.ToLower(p.Orientation) == OrientationLandscape,
		margin:      margin,
		pageNumbers: p.PageNumbers,
	}
}
