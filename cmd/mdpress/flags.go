package main

import (
	"os"

	flag "github.com/spf13/pflag"
)

// watermarkAngleSentinel detects if --wm-angle was explicitly set.
// Since 0 is a valid angle (horizontal), an implausible default marks the
// flag as untouched.
const watermarkAngleSentinel = -999.0

// commonFlags holds flags shared across runs.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// poolFlags holds render pool sizing flags.
type poolFlags struct {
	workers  int
	surfaces int
}

// pageFlags holds page layout flags.
type pageFlags struct {
	size        string
	orientation string
	margin      float64
	pageNumbers bool
}

// tocFlags holds table of contents flags.
type tocFlags struct {
	enabled  bool
	title    string
	maxDepth int
}

// watermarkFlags holds watermark flags. Setting text enables the watermark.
type watermarkFlags struct {
	text    string
	color   string
	opacity float64
	angle   float64
}

// styleFlags holds theme and CSS flags.
type styleFlags struct {
	theme     string
	codeTheme string
	cssFile   string
}

// convertFlags holds all flags for a conversion run.
type convertFlags struct {
	common     commonFlags
	output     string
	version    bool
	listThemes bool
	pool       poolFlags
	page       pageFlags
	toc        tocFlags
	watermark  watermarkFlags
	style      styleFlags
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show detailed timing")
}

// addPoolFlags adds pool sizing flags to a FlagSet.
func addPoolFlags(fs *flag.FlagSet, f *poolFlags) {
	fs.IntVarP(&f.workers, "workers", "w", 0, "browser workers (0 = auto)")
	fs.IntVar(&f.surfaces, "surfaces", 0, "render surfaces per worker (0 = default)")
}

// addPageFlags adds page layout flags to a FlagSet.
func addPageFlags(fs *flag.FlagSet, f *pageFlags) {
	fs.StringVarP(&f.size, "page-size", "p", "", "page size: letter, a4, legal")
	fs.StringVar(&f.orientation, "orientation", "", "page orientation: portrait, landscape")
	fs.Float64Var(&f.margin, "margin", 0, "page margin in inches (0.25-3.0)")
	fs.BoolVar(&f.pageNumbers, "page-numbers", false, "print page numbers in the footer")
}

// addTOCFlags adds TOC flags to a FlagSet.
func addTOCFlags(fs *flag.FlagSet, f *tocFlags) {
	fs.BoolVar(&f.enabled, "toc", false, "prepend a table of contents")
	fs.StringVar(&f.title, "toc-title", "", "table of contents heading")
	fs.IntVar(&f.maxDepth, "toc-depth", 0, "max heading depth for TOC (1-6)")
}

// addWatermarkFlags adds watermark flags to a FlagSet.
func addWatermarkFlags(fs *flag.FlagSet, f *watermarkFlags) {
	fs.StringVar(&f.text, "wm-text", "", "watermark text")
	fs.StringVar(&f.color, "wm-color", "", "watermark color (hex)")
	fs.Float64Var(&f.opacity, "wm-opacity", 0, "watermark opacity (0.0-1.0)")
	fs.Float64Var(&f.angle, "wm-angle", watermarkAngleSentinel, "watermark angle in degrees")
}

// addStyleFlags adds theme and CSS flags to a FlagSet.
func addStyleFlags(fs *flag.FlagSet, f *styleFlags) {
	fs.StringVar(&f.theme, "theme", "", "document theme name")
	fs.StringVar(&f.codeTheme, "code-theme", "", "code highlight theme name")
	fs.StringVar(&f.cssFile, "css", "", "additional CSS file")
}

// parseFlags parses CLI flags and returns positional args.
func parseFlags(args []string) (*convertFlags, []string, error) {
	fs := flag.NewFlagSet("mdpress", flag.ContinueOnError)
	f := &convertFlags{}

	fs.StringVarP(&f.output, "output", "o", "", "output file or directory")
	fs.BoolVar(&f.version, "version", false, "show version and exit")
	fs.BoolVar(&f.listThemes, "list-themes", false, "list embedded themes and exit")

	addCommonFlags(fs, &f.common)
	addPoolFlags(fs, &f.pool)
	addPageFlags(fs, &f.page)
	addTOCFlags(fs, &f.toc)
	addWatermarkFlags(fs, &f.watermark)
	addStyleFlags(fs, &f.style)

	fs.Usage = func() { printUsage(os.Stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	return f, fs.Args(), nil
}
