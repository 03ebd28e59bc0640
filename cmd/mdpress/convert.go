package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	mdpress "github.com/inkforge/mdpress"
	"github.com/inkforge/mdpress/internal/config"
)

// Sentinel errors for CLI operations.
var (
	ErrNoInput          = errors.New("no input specified")
	ErrReadMarkdown     = errors.New("failed to read markdown file")
	ErrReadCSS          = errors.New("failed to read CSS file")
	ErrWritePDF         = errors.New("failed to write PDF file")
	ErrInvalidExtension = errors.New("file must have .md or .markdown extension")
)

// File permission constants.
const (
	dirPermissions  = 0o750 // rwxr-x---: owner full, group read+execute
	filePermissions = 0o644 // rw-r--r--: owner read+write, others read
)

// Converter is the conversion interface used by the batch runner.
type Converter interface {
	Convert(ctx context.Context, in mdpress.Input) (*mdpress.Result, error)
}

// Compile-time interface implementation check.
var _ Converter = (*mdpress.Converter)(nil)

// FileToConvert represents a single file to process.
type FileToConvert struct {
	InputPath  string
	OutputPath string
}

// ConversionResult holds the outcome of a single conversion.
type ConversionResult struct {
	InputPath  string
	OutputPath string
	Metrics    mdpress.Metrics
	Err        error
	Duration   time.Duration
}

// runConvert orchestrates a conversion run over the given inputs.
func runConvert(ctx context.Context, inputs []string, flags *convertFlags, cfg *config.Config, conv Converter, concurrency int, env *Environment) error {
	outputDir := resolveOutputDir(flags.output, cfg)

	var files []FileToConvert
	for _, in := range inputs {
		found, err := discoverFiles(in, outputDir)
		if err != nil {
			return fmt.Errorf("discovering files: %w", err)
		}
		files = append(files, found...)
	}
	if len(files) == 0 {
		return fmt.Errorf("no markdown files found in %s", strings.Join(inputs, ", "))
	}

	tmpl, err := buildInput(flags, cfg)
	if err != nil {
		return err
	}

	results := convertBatch(ctx, conv, concurrency, files, tmpl)

	failed, firstErr := printResults(results, flags.common.quiet, flags.common.verbose, env)
	if failed > 0 {
		return fmt.Errorf("%d conversion(s) failed: %w", failed, firstErr)
	}
	return nil
}

// resolveOutputDir determines the output destination from flag or config.
func resolveOutputDir(flagOutput string, cfg *config.Config) string {
	if flagOutput != "" {
		return flagOutput
	}
	return cfg.Output.Dir
}

// discoverFiles finds all markdown files to convert under inputPath.
func discoverFiles(inputPath, outputDir string) ([]FileToConvert, error) {
	info, err := os.Stat(inputPath)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		if err := validateMarkdownExtension(inputPath); err != nil {
			return nil, err
		}
		outPath := resolveOutputPath(inputPath, outputDir, "")
		return []FileToConvert{{InputPath: inputPath, OutputPath: outPath}}, nil
	}

	var files []FileToConvert
	err = filepath.WalkDir(inputPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := filepath.Ext(path)
		if ext != ".md" && ext != ".markdown" {
			return nil
		}
		outPath := resolveOutputPath(path, outputDir, inputPath)
		files = append(files, FileToConvert{InputPath: path, OutputPath: outPath})
		return nil
	})

	return files, err
}

// resolveOutputPath determines the PDF output path for a markdown file.
func resolveOutputPath(inputPath, outputDir, baseInputDir string) string {
	ext := filepath.Ext(inputPath)
	base := strings.TrimSuffix(filepath.Base(inputPath), ext)

	if outputDir == "" {
		return filepath.Join(filepath.Dir(inputPath), base+".pdf")
	}

	if strings.HasSuffix(outputDir, ".pdf") {
		return outputDir
	}

	if baseInputDir != "" {
		relPath, err := filepath.Rel(baseInputDir, inputPath)
		if err == nil {
			relDir := filepath.Dir(relPath)
			return filepath.Join(outputDir, relDir, base+".pdf")
		}
	}

	return filepath.Join(outputDir, base+".pdf")
}

// validateMarkdownExtension checks that the file has a markdown extension.
func validateMarkdownExtension(path string) error {
	ext := filepath.Ext(path)
	if ext != ".md" && ext != ".markdown" {
		return fmt.Errorf("%w: got %q", ErrInvalidExtension, ext)
	}
	return nil
}

// buildInput assembles the conversion input shared by every file in the
// batch. Only Markdown varies per file.
func buildInput(flags *convertFlags, cfg *config.Config) (mdpress.Input, error) {
	in := mdpress.Input{
		Theme:     pickString(flags.style.theme, cfg.Defaults.Theme),
		CodeTheme: pickString(flags.style.codeTheme, cfg.Defaults.CodeTheme),
	}

	if flags.style.cssFile != "" {
		content, err := os.ReadFile(flags.style.cssFile) // #nosec G304 -- user-provided path
		if err != nil {
			return mdpress.Input{}, fmt.Errorf("%w: %v", ErrReadCSS, err)
		}
		in.CSS = string(content)
	}

	in.Page = buildPageSettings(flags.page)
	if err := in.Page.Validate(); err != nil {
		return mdpress.Input{}, err
	}

	wm, err := buildWatermark(flags.watermark)
	if err != nil {
		return mdpress.Input{}, err
	}
	in.Watermark = wm

	if flags.toc.enabled {
		in.TOC = &mdpress.TOC{
			Title:    flags.toc.title,
			MaxDepth: flags.toc.maxDepth,
		}
		if err := in.TOC.Validate(); err != nil {
			return mdpress.Input{}, err
		}
	}

	return in, nil
}

// buildPageSettings creates page settings from flags, nil when untouched
// so library defaults apply. Unset fields are filled with defaults so
// partial flag sets still validate.
func buildPageSettings(f pageFlags) *mdpress.PageSettings {
	if f.size == "" && f.orientation == "" && f.margin == 0 && !f.pageNumbers {
		return nil
	}

	ps := &mdpress.PageSettings{
		Size:        f.size,
		Orientation: f.orientation,
		Margin:      f.margin,
		PageNumbers: f.pageNumbers,
	}
	if ps.Size == "" {
		ps.Size = mdpress.PageSizeLetter
	}
	if ps.Orientation == "" {
		ps.Orientation = mdpress.OrientationPortrait
	}
	if ps.Margin == 0 {
		ps.Margin = mdpress.DefaultMargin
	}
	return ps
}

// buildWatermark creates a watermark from flags. Text is what enables it;
// refinement flags without text are an error the user should hear about.
func buildWatermark(f watermarkFlags) (*mdpress.Watermark, error) {
	refined := f.color != "" || f.opacity != 0 || f.angle != watermarkAngleSentinel
	if f.text == "" {
		if refined {
			return nil, fmt.Errorf("watermark flags require --wm-text")
		}
		return nil, nil
	}

	w := &mdpress.Watermark{
		Text:    f.text,
		Color:   f.color,
		Opacity: f.opacity,
	}
	if f.angle != watermarkAngleSentinel {
		w.Angle = f.angle
	} else {
		w.Angle = mdpress.DefaultWatermarkAngle
	}
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return w, nil
}

func pickString(flagVal, cfgVal string) string {
	if flagVal != "" {
		return flagVal
	}
	return cfgVal
}

// convertBatch processes files concurrently through the shared converter.
// The render pool applies backpressure internally; concurrency only caps
// how many file reads and conversions are in flight at once.
func convertBatch(ctx context.Context, conv Converter, concurrency int, files []FileToConvert, tmpl mdpress.Input) []ConversionResult {
	if len(files) == 0 {
		return nil
	}
	if concurrency < 1 {
		concurrency = 1
	}
	if concurrency > len(files) {
		concurrency = len(files)
	}

	results := make([]ConversionResult, len(files))
	var wg sync.WaitGroup
	jobs := make(chan int, len(files))

	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for idx := range jobs {
				if ctx.Err() != nil {
					results[idx] = ConversionResult{
						InputPath: files[idx].InputPath,
						Err:       ctx.Err(),
					}
					continue
				}
				results[idx] = convertFile(ctx, conv, files[idx], tmpl)
			}
		}()
	}

	for i := range files {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	return results
}

// convertFile processes a single file and returns the result.
func convertFile(ctx context.Context, conv Converter, f FileToConvert, tmpl mdpress.Input) ConversionResult {
	start := time.Now()
	result := ConversionResult{
		InputPath:  f.InputPath,
		OutputPath: f.OutputPath,
	}

	content, err := os.ReadFile(f.InputPath) // #nosec G304 -- discovered path
	if err != nil {
		result.Err = fmt.Errorf("%w: %v", ErrReadMarkdown, err)
		result.Duration = time.Since(start)
		return result
	}

	if err := os.MkdirAll(filepath.Dir(f.OutputPath), dirPermissions); err != nil {
		result.Err = fmt.Errorf("creating output directory: %w", err)
		result.Duration = time.Since(start)
		return result
	}

	in := tmpl
	in.Markdown = string(content)

	res, err := conv.Convert(ctx, in)
	if err != nil {
		result.Err = err
		result.Duration = time.Since(start)
		return result
	}
	result.Metrics = res.Metrics

	// #nosec G306 -- PDFs are meant to be readable
	if err := os.WriteFile(f.OutputPath, res.PDF, filePermissions); err != nil {
		result.Err = fmt.Errorf("%w: %v", ErrWritePDF, err)
	}
	result.Duration = time.Since(start)
	return result
}

// printResults outputs conversion results and returns the failure count
// plus the first failure, for exit code mapping.
func printResults(results []ConversionResult, quiet, verbose bool, env *Environment) (int, error) {
	var succeeded, failed int
	var firstErr error

	for _, r := range results {
		if r.Err != nil {
			failed++
			if firstErr == nil {
				firstErr = r.Err
			}
			fmt.Fprintf(env.Stderr, "FAILED %s: %v\n", r.InputPath, r.Err)
			continue
		}

		succeeded++
		if quiet {
			continue
		}

		if verbose {
			m := r.Metrics
			fmt.Fprintf(env.Stdout, "%s -> %s (%v: wait %v, render %v, extract %v)\n",
				r.InputPath, r.OutputPath, r.Duration.Round(time.Millisecond),
				m.AcquireWait.Round(time.Millisecond),
				m.RenderWait.Round(time.Millisecond),
				m.Extract.Round(time.Millisecond))
		} else {
			fmt.Fprintf(env.Stdout, "Created %s\n", r.OutputPath)
		}
	}

	if !quiet && len(results) > 1 {
		fmt.Fprintf(env.Stdout, "\n%d succeeded, %d failed\n", succeeded, failed)
	}

	return failed, firstErr
}
