package main

// Notes:
// - discoverFiles/resolveOutputPath: table tests over a temp tree.
// - convertBatch/convertFile/runConvert: driven through a mock Converter;
//   the real render path is covered by the library's own tests.
// - printResults: asserted against buffer-backed environments.

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	mdpress "github.com/inkforge/mdpress"
	"github.com/inkforge/mdpress/internal/config"
)

// mockConverter returns a fixed PDF or error and records every input.
type mockConverter struct {
	mu     sync.Mutex
	pdf    []byte
	err    error
	inputs []mdpress.Input
}

var _ Converter = (*mockConverter)(nil)

func (m *mockConverter) Convert(_ context.Context, in mdpress.Input) (*mdpress.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inputs = append(m.inputs, in)

	if m.err != nil {
		return nil, m.err
	}
	pdf := m.pdf
	if pdf == nil {
		pdf = []byte("%PDF-1.4\nmock\n%%EOF")
	}
	return &mdpress.Result{
		PDF:     pdf,
		Metrics: mdpress.Metrics{InputBytes: len(in.Markdown), OutputBytes: len(pdf)},
	}, nil
}

func (m *mockConverter) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.inputs)
}

func (m *mockConverter) input(i int) mdpress.Input {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.inputs[i]
}

func testEnv() (*Environment, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	return &Environment{Stdout: &stdout, Stderr: &stderr}, &stdout, &stderr
}

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("creating %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

// setupTestDir builds a small doc tree: two markdown files at the root,
// one nested, one non-markdown file.
func setupTestDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeTestFile(t, filepath.Join(dir, "doc.md"), "# Doc\n\nbody\n")
	writeTestFile(t, filepath.Join(dir, "notes.markdown"), "# Notes\n")
	writeTestFile(t, filepath.Join(dir, "README.txt"), "not markdown")
	writeTestFile(t, filepath.Join(dir, "nested", "deep.md"), "# Deep\n")
	return dir
}

func TestDiscoverFiles(t *testing.T) {
	t.Parallel()

	t.Run("single file", func(t *testing.T) {
		t.Parallel()

		dir := setupTestDir(t)
		files, err := discoverFiles(filepath.Join(dir, "doc.md"), "")
		if err != nil {
			t.Fatalf("discoverFiles() error = %v", err)
		}
		if len(files) != 1 {
			t.Fatalf("found %d files, want 1", len(files))
		}
		if want := filepath.Join(dir, "doc.pdf"); files[0].OutputPath != want {
			t.Errorf("OutputPath = %q, want %q", files[0].OutputPath, want)
		}
	})

	t.Run("rejects non-markdown file", func(t *testing.T) {
		t.Parallel()

		dir := setupTestDir(t)
		_, err := discoverFiles(filepath.Join(dir, "README.txt"), "")
		if !errors.Is(err, ErrInvalidExtension) {
			t.Errorf("error = %v, want ErrInvalidExtension", err)
		}
	})

	t.Run("missing path", func(t *testing.T) {
		t.Parallel()

		_, err := discoverFiles(filepath.Join(t.TempDir(), "ghost.md"), "")
		if !errors.Is(err, os.ErrNotExist) {
			t.Errorf("error = %v, want os.ErrNotExist", err)
		}
	})

	t.Run("directory walk", func(t *testing.T) {
		t.Parallel()

		dir := setupTestDir(t)
		outDir := filepath.Join(t.TempDir(), "out")

		files, err := discoverFiles(dir, outDir)
		if err != nil {
			t.Fatalf("discoverFiles() error = %v", err)
		}
		if len(files) != 3 {
			t.Fatalf("found %d files, want 3: %+v", len(files), files)
		}

		outputs := make(map[string]string, len(files))
		for _, f := range files {
			rel, err := filepath.Rel(dir, f.InputPath)
			if err != nil {
				t.Fatalf("rel: %v", err)
			}
			outputs[rel] = f.OutputPath
		}
		if want := filepath.Join(outDir, "doc.pdf"); outputs["doc.md"] != want {
			t.Errorf("doc.md -> %q, want %q", outputs["doc.md"], want)
		}
		if want := filepath.Join(outDir, "notes.pdf"); outputs["notes.markdown"] != want {
			t.Errorf("notes.markdown -> %q, want %q", outputs["notes.markdown"], want)
		}
		// Nested structure is preserved under the output directory.
		nested := filepath.Join("nested", "deep.md")
		if want := filepath.Join(outDir, "nested", "deep.pdf"); outputs[nested] != want {
			t.Errorf("nested/deep.md -> %q, want %q", outputs[nested], want)
		}
	})
}

func TestResolveOutputDir(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		flagOutput string
		cfgDir     string
		want       string
	}{
		{"flag takes precedence", "./out/", "./default/", "./out/"},
		{"config fallback", "", "./default/", "./default/"},
		{"both empty", "", "", ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := &config.Config{Output: config.OutputConfig{Dir: tt.cfgDir}}
			if got := resolveOutputDir(tt.flagOutput, cfg); got != tt.want {
				t.Errorf("resolveOutputDir() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolveOutputPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		inputPath    string
		outputDir    string
		baseInputDir string
		want         string
	}{
		{
			name:      "no output dir puts pdf next to source",
			inputPath: "/docs/file.md",
			want:      "/docs/file.pdf",
		},
		{
			name:      "markdown extension stripped",
			inputPath: "/docs/file.markdown",
			want:      "/docs/file.pdf",
		},
		{
			name:      "explicit pdf path used verbatim",
			inputPath: "/docs/file.md",
			outputDir: "/out/custom.pdf",
			want:      "/out/custom.pdf",
		},
		{
			name:         "directory output preserves structure",
			inputPath:    "/docs/sub/file.md",
			outputDir:    "/out",
			baseInputDir: "/docs",
			want:         "/out/sub/file.pdf",
		},
		{
			name:         "file at base lands in output root",
			inputPath:    "/docs/file.md",
			outputDir:    "/out",
			baseInputDir: "/docs",
			want:         "/out/file.pdf",
		},
		{
			name:      "directory output without base is flat",
			inputPath: "/docs/sub/file.md",
			outputDir: "/out",
			want:      "/out/file.pdf",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := resolveOutputPath(tt.inputPath, tt.outputDir, tt.baseInputDir)
			if got != tt.want {
				t.Errorf("resolveOutputPath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidateMarkdownExtension(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path    string
		wantErr bool
	}{
		{"doc.md", false},
		{"doc.markdown", false},
		{"doc.txt", true},
		{"doc", true},
		{"doc.MD", true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()

			err := validateMarkdownExtension(tt.path)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateMarkdownExtension(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidExtension) {
				t.Errorf("error = %v, want ErrInvalidExtension", err)
			}
		})
	}
}

func TestBuildPageSettings(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		flags pageFlags
		want  *mdpress.PageSettings
	}{
		{
			name: "untouched flags yield nil",
		},
		{
			name:  "page numbers alone fill defaults",
			flags: pageFlags{pageNumbers: true},
			want: &mdpress.PageSettings{
				Size:        mdpress.PageSizeLetter,
				Orientation: mdpress.OrientationPortrait,
				Margin:      mdpress.DefaultMargin,
				PageNumbers: true,
			},
		},
		{
			name:  "size alone fills the rest",
			flags: pageFlags{size: "a4"},
			want: &mdpress.PageSettings{
				Size:        "a4",
				Orientation: mdpress.OrientationPortrait,
				Margin:      mdpress.DefaultMargin,
			},
		},
		{
			name:  "explicit values preserved",
			flags: pageFlags{size: "legal", orientation: "landscape", margin: 1.5, pageNumbers: true},
			want: &mdpress.PageSettings{
				Size:        "legal",
				Orientation: "landscape",
				Margin:      1.5,
				PageNumbers: true,
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := buildPageSettings(tt.flags)
			if tt.want == nil {
				if got != nil {
					t.Fatalf("buildPageSettings() = %+v, want nil", got)
				}
				return
			}
			if got == nil || *got != *tt.want {
				t.Errorf("buildPageSettings() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestBuildWatermark(t *testing.T) {
	t.Parallel()

	base := watermarkFlags{angle: watermarkAngleSentinel}

	t.Run("no flags yield nil", func(t *testing.T) {
		t.Parallel()

		w, err := buildWatermark(base)
		if err != nil || w != nil {
			t.Errorf("buildWatermark() = %+v, %v; want nil, nil", w, err)
		}
	})

	t.Run("text enables with default angle", func(t *testing.T) {
		t.Parallel()

		f := base
		f.text = "DRAFT"
		w, err := buildWatermark(f)
		if err != nil {
			t.Fatalf("buildWatermark() error = %v", err)
		}
		if w.Text != "DRAFT" || w.Angle != mdpress.DefaultWatermarkAngle {
			t.Errorf("watermark = %+v", w)
		}
	})

	t.Run("explicit zero angle kept", func(t *testing.T) {
		t.Parallel()

		f := base
		f.text = "DRAFT"
		f.angle = 0
		w, err := buildWatermark(f)
		if err != nil {
			t.Fatalf("buildWatermark() error = %v", err)
		}
		if w.Angle != 0 {
			t.Errorf("Angle = %v, want 0", w.Angle)
		}
	})

	t.Run("refinement flags require text", func(t *testing.T) {
		t.Parallel()

		for name, f := range map[string]watermarkFlags{
			"color":   {color: "#ff0000", angle: watermarkAngleSentinel},
			"opacity": {opacity: 0.5, angle: watermarkAngleSentinel},
			"angle":   {angle: 30},
		} {
			if _, err := buildWatermark(f); err == nil {
				t.Errorf("%s without text: expected error", name)
			} else if !strings.Contains(err.Error(), "--wm-text") {
				t.Errorf("%s error = %v, should mention --wm-text", name, err)
			}
		}
	})

	t.Run("invalid values rejected", func(t *testing.T) {
		t.Parallel()

		f := base
		f.text = "DRAFT"
		f.color = "red"
		if _, err := buildWatermark(f); !errors.Is(err, mdpress.ErrInvalidWatermarkColor) {
			t.Errorf("error = %v, want ErrInvalidWatermarkColor", err)
		}

		f = base
		f.text = "DRAFT"
		f.opacity = 1.5
		if _, err := buildWatermark(f); !errors.Is(err, mdpress.ErrInvalidWatermarkOpacity) {
			t.Errorf("error = %v, want ErrInvalidWatermarkOpacity", err)
		}
	})
}

func TestBuildInput(t *testing.T) {
	t.Parallel()

	t.Run("flag themes override config", func(t *testing.T) {
		t.Parallel()

		flags := defaultFlags()
		flags.style.theme = "slate"
		cfg := &config.Config{Defaults: config.DefaultsConfig{Theme: "github", CodeTheme: "monokai"}}

		in, err := buildInput(&flags, cfg)
		if err != nil {
			t.Fatalf("buildInput() error = %v", err)
		}
		if in.Theme != "slate" {
			t.Errorf("Theme = %q, want slate", in.Theme)
		}
		if in.CodeTheme != "monokai" {
			t.Errorf("CodeTheme = %q, want config fallback monokai", in.CodeTheme)
		}
		if in.Page != nil || in.TOC != nil || in.Watermark != nil {
			t.Errorf("unexpected optional settings: %+v", in)
		}
	})

	t.Run("css file read", func(t *testing.T) {
		t.Parallel()

		cssPath := filepath.Join(t.TempDir(), "extra.css")
		writeTestFile(t, cssPath, "p { margin: 0; }")

		flags := defaultFlags()
		flags.style.cssFile = cssPath

		in, err := buildInput(&flags, config.DefaultConfig())
		if err != nil {
			t.Fatalf("buildInput() error = %v", err)
		}
		if in.CSS != "p { margin: 0; }" {
			t.Errorf("CSS = %q", in.CSS)
		}
	})

	t.Run("missing css file", func(t *testing.T) {
		t.Parallel()

		flags := defaultFlags()
		flags.style.cssFile = filepath.Join(t.TempDir(), "ghost.css")

		_, err := buildInput(&flags, config.DefaultConfig())
		if !errors.Is(err, ErrReadCSS) {
			t.Errorf("error = %v, want ErrReadCSS", err)
		}
	})

	t.Run("toc flags", func(t *testing.T) {
		t.Parallel()

		flags := defaultFlags()
		flags.toc = tocFlags{enabled: true, title: "Index", maxDepth: 2}

		in, err := buildInput(&flags, config.DefaultConfig())
		if err != nil {
			t.Fatalf("buildInput() error = %v", err)
		}
		if in.TOC == nil || in.TOC.Title != "Index" || in.TOC.MaxDepth != 2 {
			t.Errorf("TOC = %+v", in.TOC)
		}
	})

	t.Run("invalid toc depth", func(t *testing.T) {
		t.Parallel()

		flags := defaultFlags()
		flags.toc = tocFlags{enabled: true, maxDepth: 9}

		_, err := buildInput(&flags, config.DefaultConfig())
		if !errors.Is(err, mdpress.ErrInvalidTOCDepth) {
			t.Errorf("error = %v, want ErrInvalidTOCDepth", err)
		}
	})

	t.Run("invalid page size", func(t *testing.T) {
		t.Parallel()

		flags := defaultFlags()
		flags.page.size = "tabloid"

		_, err := buildInput(&flags, config.DefaultConfig())
		if !errors.Is(err, mdpress.ErrInvalidPageSize) {
			t.Errorf("error = %v, want ErrInvalidPageSize", err)
		}
	})
}

func TestConvertBatch(t *testing.T) {
	t.Parallel()

	t.Run("converts all files", func(t *testing.T) {
		t.Parallel()

		dir := setupTestDir(t)
		outDir := filepath.Join(t.TempDir(), "out")
		files, err := discoverFiles(dir, outDir)
		if err != nil {
			t.Fatalf("discoverFiles() error = %v", err)
		}

		mock := &mockConverter{}
		results := convertBatch(context.Background(), mock, 2, files, mdpress.Input{Theme: "github"})

		if len(results) != len(files) {
			t.Fatalf("got %d results, want %d", len(results), len(files))
		}
		for i, r := range results {
			if r.Err != nil {
				t.Errorf("result[%d] error = %v", i, r.Err)
			}
			if r.InputPath != files[i].InputPath {
				t.Errorf("result[%d] input = %q, want %q", i, r.InputPath, files[i].InputPath)
			}
			if _, err := os.Stat(r.OutputPath); err != nil {
				t.Errorf("output %q not written: %v", r.OutputPath, err)
			}
		}
		if mock.calls() != len(files) {
			t.Errorf("converter called %d times, want %d", mock.calls(), len(files))
		}
		// Template fields are shared; markdown varies per file.
		if in := mock.input(0); in.Theme != "github" || in.Markdown == "" {
			t.Errorf("input = %+v", in)
		}
	})

	t.Run("canceled context short-circuits", func(t *testing.T) {
		t.Parallel()

		dir := setupTestDir(t)
		files, err := discoverFiles(dir, "")
		if err != nil {
			t.Fatalf("discoverFiles() error = %v", err)
		}

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		mock := &mockConverter{}
		results := convertBatch(ctx, mock, 2, files, mdpress.Input{})

		for i, r := range results {
			if !errors.Is(r.Err, context.Canceled) {
				t.Errorf("result[%d] error = %v, want context.Canceled", i, r.Err)
			}
		}
		if mock.calls() != 0 {
			t.Errorf("converter called %d times after cancel", mock.calls())
		}
	})

	t.Run("no files", func(t *testing.T) {
		t.Parallel()

		if results := convertBatch(context.Background(), &mockConverter{}, 2, nil, mdpress.Input{}); results != nil {
			t.Errorf("expected nil results, got %v", results)
		}
	})
}

func TestConvertFile(t *testing.T) {
	t.Parallel()

	t.Run("markdown flows into the converter", func(t *testing.T) {
		t.Parallel()

		dir := setupTestDir(t)
		f := FileToConvert{
			InputPath:  filepath.Join(dir, "doc.md"),
			OutputPath: filepath.Join(t.TempDir(), "doc.pdf"),
		}

		mock := &mockConverter{}
		r := convertFile(context.Background(), mock, f, mdpress.Input{Theme: "slate"})
		if r.Err != nil {
			t.Fatalf("convertFile() error = %v", r.Err)
		}

		in := mock.input(0)
		if in.Markdown != "# Doc\n\nbody\n" {
			t.Errorf("Markdown = %q", in.Markdown)
		}
		if in.Theme != "slate" {
			t.Errorf("Theme = %q, want slate", in.Theme)
		}
		if r.Metrics.InputBytes == 0 || r.Metrics.OutputBytes == 0 {
			t.Errorf("metrics not propagated: %+v", r.Metrics)
		}
		if r.Duration <= 0 {
			t.Error("Duration not recorded")
		}
	})

	t.Run("missing input", func(t *testing.T) {
		t.Parallel()

		f := FileToConvert{
			InputPath:  filepath.Join(t.TempDir(), "ghost.md"),
			OutputPath: filepath.Join(t.TempDir(), "ghost.pdf"),
		}
		r := convertFile(context.Background(), &mockConverter{}, f, mdpress.Input{})
		if !errors.Is(r.Err, ErrReadMarkdown) {
			t.Errorf("error = %v, want ErrReadMarkdown", r.Err)
		}
	})

	t.Run("converter error propagates", func(t *testing.T) {
		t.Parallel()

		dir := setupTestDir(t)
		f := FileToConvert{
			InputPath:  filepath.Join(dir, "doc.md"),
			OutputPath: filepath.Join(t.TempDir(), "doc.pdf"),
		}

		want := mdpress.ErrRenderFailed
		r := convertFile(context.Background(), &mockConverter{err: want}, f, mdpress.Input{})
		if !errors.Is(r.Err, want) {
			t.Errorf("error = %v, want %v", r.Err, want)
		}
	})

	t.Run("unwritable output directory", func(t *testing.T) {
		t.Parallel()

		dir := setupTestDir(t)
		blocker := filepath.Join(t.TempDir(), "blocker")
		writeTestFile(t, blocker, "a file, not a directory")

		f := FileToConvert{
			InputPath:  filepath.Join(dir, "doc.md"),
			OutputPath: filepath.Join(blocker, "doc.pdf"),
		}
		r := convertFile(context.Background(), &mockConverter{}, f, mdpress.Input{})
		if r.Err == nil {
			t.Error("expected error creating output directory under a file")
		}
	})
}

func TestPrintResults(t *testing.T) {
	t.Parallel()

	success := ConversionResult{InputPath: "a.md", OutputPath: "a.pdf"}
	failure := ConversionResult{InputPath: "b.md", Err: errors.New("boom")}

	t.Run("default output", func(t *testing.T) {
		t.Parallel()

		env, stdout, stderr := testEnv()
		failed, firstErr := printResults([]ConversionResult{success}, false, false, env)
		if failed != 0 || firstErr != nil {
			t.Errorf("failed = %d, firstErr = %v", failed, firstErr)
		}
		if got := stdout.String(); got != "Created a.pdf\n" {
			t.Errorf("stdout = %q", got)
		}
		if stderr.Len() != 0 {
			t.Errorf("stderr = %q", stderr.String())
		}
	})

	t.Run("quiet suppresses success output", func(t *testing.T) {
		t.Parallel()

		env, stdout, _ := testEnv()
		printResults([]ConversionResult{success}, true, false, env)
		if stdout.Len() != 0 {
			t.Errorf("stdout = %q, want empty", stdout.String())
		}
	})

	t.Run("verbose includes timings", func(t *testing.T) {
		t.Parallel()

		env, stdout, _ := testEnv()
		printResults([]ConversionResult{success}, false, true, env)
		out := stdout.String()
		if !strings.Contains(out, "a.md -> a.pdf") || !strings.Contains(out, "wait") {
			t.Errorf("stdout = %q", out)
		}
	})

	t.Run("failures go to stderr", func(t *testing.T) {
		t.Parallel()

		env, _, stderr := testEnv()
		failed, firstErr := printResults([]ConversionResult{failure}, false, false, env)
		if failed != 1 {
			t.Errorf("failed = %d, want 1", failed)
		}
		if firstErr == nil || firstErr.Error() != "boom" {
			t.Errorf("firstErr = %v", firstErr)
		}
		if out := stderr.String(); !strings.Contains(out, "FAILED b.md") {
			t.Errorf("stderr = %q", out)
		}
	})

	t.Run("batch summary", func(t *testing.T) {
		t.Parallel()

		env, stdout, _ := testEnv()
		failed, firstErr := printResults([]ConversionResult{success, failure}, false, false, env)
		if failed != 1 {
			t.Errorf("failed = %d, want 1", failed)
		}
		if firstErr == nil {
			t.Error("firstErr = nil, want the failure")
		}
		if !strings.Contains(stdout.String(), "1 succeeded, 1 failed") {
			t.Errorf("stdout = %q", stdout.String())
		}
	})

	t.Run("quiet keeps summary silent", func(t *testing.T) {
		t.Parallel()

		env, stdout, _ := testEnv()
		printResults([]ConversionResult{success, failure}, true, false, env)
		if stdout.Len() != 0 {
			t.Errorf("stdout = %q, want empty", stdout.String())
		}
	})
}

func TestRunConvert(t *testing.T) {
	t.Parallel()

	t.Run("end to end over a directory", func(t *testing.T) {
		t.Parallel()

		dir := setupTestDir(t)
		outDir := filepath.Join(t.TempDir(), "out")

		flags, _, err := parseFlags([]string{"-o", outDir, "--theme", "slate"})
		if err != nil {
			t.Fatalf("parseFlags() error = %v", err)
		}

		env, stdout, _ := testEnv()
		mock := &mockConverter{}
		err = runConvert(context.Background(), []string{dir}, flags, config.DefaultConfig(), mock, 2, env)
		if err != nil {
			t.Fatalf("runConvert() error = %v", err)
		}

		if mock.calls() != 3 {
			t.Errorf("converter called %d times, want 3", mock.calls())
		}
		if _, err := os.Stat(filepath.Join(outDir, "nested", "deep.pdf")); err != nil {
			t.Errorf("nested output missing: %v", err)
		}
		if !strings.Contains(stdout.String(), "3 succeeded, 0 failed") {
			t.Errorf("stdout = %q", stdout.String())
		}
	})

	t.Run("failure maps to the underlying error", func(t *testing.T) {
		t.Parallel()

		dir := setupTestDir(t)
		flags, _, err := parseFlags([]string{"-o", t.TempDir()})
		if err != nil {
			t.Fatalf("parseFlags() error = %v", err)
		}

		env, _, _ := testEnv()
		mock := &mockConverter{err: mdpress.ErrRenderTimeout}
		err = runConvert(context.Background(), []string{filepath.Join(dir, "doc.md")}, flags, config.DefaultConfig(), mock, 1, env)
		if err == nil {
			t.Fatal("expected error")
		}
		if !strings.Contains(err.Error(), "1 conversion(s) failed") {
			t.Errorf("error = %v", err)
		}
		// Exit code mapping sees through the batch wrapper.
		if !errors.Is(err, mdpress.ErrRenderTimeout) {
			t.Errorf("error %v does not unwrap to ErrRenderTimeout", err)
		}
		if got := exitCodeFor(err); got != ExitTimeout {
			t.Errorf("exitCodeFor() = %d, want %d", got, ExitTimeout)
		}
	})

	t.Run("no markdown files", func(t *testing.T) {
		t.Parallel()

		empty := t.TempDir()
		flags, _, err := parseFlags(nil)
		if err != nil {
			t.Fatalf("parseFlags() error = %v", err)
		}

		env, _, _ := testEnv()
		err = runConvert(context.Background(), []string{empty}, flags, config.DefaultConfig(), &mockConverter{}, 1, env)
		if err == nil || !strings.Contains(err.Error(), "no markdown files found") {
			t.Errorf("error = %v", err)
		}
	})

	t.Run("invalid page flag stops before converting", func(t *testing.T) {
		t.Parallel()

		dir := setupTestDir(t)
		flags, _, err := parseFlags([]string{"-p", "tabloid"})
		if err != nil {
			t.Fatalf("parseFlags() error = %v", err)
		}

		env, _, _ := testEnv()
		mock := &mockConverter{}
		err = runConvert(context.Background(), []string{filepath.Join(dir, "doc.md")}, flags, config.DefaultConfig(), mock, 1, env)
		if !errors.Is(err, mdpress.ErrInvalidPageSize) {
			t.Errorf("error = %v, want ErrInvalidPageSize", err)
		}
		if mock.calls() != 0 {
			t.Errorf("converter called %d times, want 0", mock.calls())
		}
	})
}
