package mdpress

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/sirupsen/logrus"
)

// Compile-time interface checks
var (
	_ workerDriver  = (*browserWorker)(nil)
	_ surfaceDriver = (*browserSurface)(nil)
)

// launchConfig controls how production browser workers are launched.
type launchConfig struct {
	bin       string
	noSandbox bool
}

// defaultLaunchConfig honors container-friendly environment overrides.
// A pre-installed browser is used when MDPRESS_BROWSER_BIN is set;
// otherwise rod downloads Chromium on first launch.
func defaultLaunchConfig() launchConfig {
	cfg := launchConfig{bin: os.Getenv("MDPRESS_BROWSER_BIN")}

	// NoSandbox required for CI and containerized environments
	if os.Getenv("CI") == "true" || cfg.bin != "" {
		cfg.noSandbox = true
	}
	return cfg
}

// newBrowserFactory returns a workerFactory that launches one headless
// browser per worker and opens perWorker blank pages as its surfaces.
func newBrowserFactory(cfg launchConfig, perWorker int, log logrus.FieldLogger) workerFactory {
	return func() (workerDriver, error) {
		l := launcher.New().Headless(true)
		if cfg.bin != "" {
			l = l.Bin(cfg.bin)
		}
		if cfg.noSandbox {
			l = l.NoSandbox(true)
		}

		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
		}

		browser := rod.New().ControlURL(u)
		if err := browser.Connect(); err != nil {
			l.Kill()
			return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
		}

		w := &browserWorker{launcher: l, browser: browser, log: log}
		for i := 0; i < perWorker; i++ {
			page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
			if err != nil {
				_ = w.close()
				return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
			}
			w.pages = append(w.pages, &browserSurface{page: page, w: w})
		}
		return w, nil
	}
}

// browserWorker drives one headless browser process.
type browserWorker struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
	pages    []surfaceDriver
	log      logrus.FieldLogger
}

func (w *browserWorker) surfaces() []surfaceDriver { return w.pages }

// close shuts the browser down. The launcher kill is a backstop for
// processes that no longer answer the CDP close.
func (w *browserWorker) close() error {
	err := w.browser.Close()
	w.launcher.Kill()
	return err
}

// probeTimeout bounds the liveness check after a failed operation.
const probeTimeout = 2 * time.Second

// alive reports whether the browser still answers CDP calls. Opening and
// closing a page exercises the full target path without touching any
// leased surface.
func (w *browserWorker) alive() bool {
	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	page, err := w.browser.Context(ctx).Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return false
	}
	_ = page.Close()
	return true
}

// readyExpr polls the readiness flag set by the assembled document's
// bootstrap script once fonts and asynchronous layout settle.
const readyExpr = "() => window." + readyFlag + " === true"

// browserSurface drives one page of a browserWorker.
type browserSurface struct {
	page *rod.Page
	w    *browserWorker
}

// setContent resets the page and loads a complete HTML document into it.
// The blank navigation discards window state left by the previous lease.
func (s *browserSurface) setContent(ctx context.Context, html string) error {
	page := s.page.Context(ctx)

	if err := page.Navigate("about:blank"); err != nil {
		return s.classify(ctx, fmt.Errorf("resetting page: %w", err))
	}
	if err := page.WaitLoad(); err != nil {
		return s.classify(ctx, fmt.Errorf("resetting page: %w", err))
	}
	if err := page.SetDocumentContent(html); err != nil {
		return s.classify(ctx, fmt.Errorf("setting document content: %w", err))
	}
	return nil
}

// waitReady suspends until the in-page readiness flag fires or ctx ends.
func (s *browserSurface) waitReady(ctx context.Context) error {
	page := s.page.Context(ctx)

	if err := page.Wait(rod.Eval(readyExpr)); err != nil {
		return s.classify(ctx, fmt.Errorf("waiting for readiness signal: %w", err))
	}
	return nil
}

// printPDF produces the paginated output for the current document.
func (s *browserSurface) printPDF(ctx context.Context, spec printSpec) ([]byte, error) {
	page := s.page.Context(ctx)

	reader, err := page.PDF(printToPDF(spec))
	if err != nil {
		return nil, s.classify(ctx, fmt.Errorf("printing: %w", err))
	}
	buf, err := io.ReadAll(reader)
	if err != nil {
		return nil, s.classify(ctx, fmt.Errorf("reading PDF stream: %w", err))
	}
	return buf, nil
}

// classify decides the scope of a failed operation. Context expiry passes
// through untagged (the pipeline owns deadline semantics); anything else
// is probed, and a browser that no longer answers makes the failure
// worker-scoped.
func (s *browserSurface) classify(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if !s.w.alive() {
		return workerFailure(err)
	}
	return contentFailure(err)
}

// marginBottomWithFooter leaves room for the native page-number footer.
const marginBottomWithFooter = 0.75

// pageNumberFooter is Chrome's native footer template; the pageNumber and
// totalPages classes are filled by the print engine.
const pageNumberFooter = `<div style="font-size: 10px; font-family: sans-serif; color: #aaa; width: 100%; text-align: center;"><span class="pageNumber"></span> / <span class="totalPages"></span></div>`

// printToPDF constructs proto.PagePrintToPDF from a resolved print spec.
func printToPDF(spec printSpec) *proto.PagePrintToPDF {
	marginBottom := spec.margin
	if spec.pageNumbers && marginBottom < marginBottomWithFooter {
		marginBottom = marginBottomWithFooter
	}

	opts := &proto.PagePrintToPDF{
		Landscape:       spec.landscape,
		PaperWidth:      floatPtr(spec.paperWidth),
		PaperHeight:     floatPtr(spec.paperHeight),
		MarginTop:       floatPtr(spec.margin),
		MarginBottom:    floatPtr(marginBottom),
		MarginLeft:      floatPtr(spec.margin),
		MarginRight:     floatPtr(spec.margin),
		PrintBackground: true,
	}

	if spec.pageNumbers {
		opts.DisplayHeaderFooter = true
		opts.HeaderTemplate = "<span></span>" // Empty header
		opts.FooterTemplate = pageNumberFooter
	}

	return opts
}

// floatPtr returns a pointer to a float64 value.
func floatPtr(v float64) *float64 {
	return &v
}
