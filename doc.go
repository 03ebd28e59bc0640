// Package mdpress converts markdown documents to paginated PDF through a
// bounded pool of headless Chrome workers.
//
// # Quick Start
//
// Create a pool, a converter on top of it, convert, and close the pool
// when done:
//
//	pool := mdpress.NewPool(mdpress.PoolConfig{Workers: 2, SurfacesPerWorker: 4})
//	defer pool.Close()
//
//	conv := mdpress.NewConverter(pool)
//	result, err := conv.Convert(ctx, mdpress.Input{
//	    Markdown: "# Hello\n\nWorld",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result.WriteToFile("output.pdf")
//
// A Converter is safe for concurrent use; throughput is bounded by the
// pool's surface capacity (Workers x SurfacesPerWorker). When every
// surface is leased, Convert calls queue in strict arrival order.
//
// # Conversion Pipeline
//
// Convert runs these stages:
//
//  1. Validation (empty content, 5 MiB hard cap, 1 MiB soft warning)
//  2. Markdown translation via goldmark (GFM, footnotes, highlighting)
//  3. Document assembly (theme CSS, custom CSS, watermark, TOC)
//  4. Surface acquisition from the pool
//  5. Render and readiness wait inside the leased browser page
//  6. PDF extraction with page size, orientation, margins
//
// Stages 4-6 share one deadline picked by payload size: 10s below 100 kB,
// 30s below 500 kB, 60s above. The leased surface is released on every
// exit path, including panics and deadline expiry.
//
// # Failure Recovery
//
// A render timeout or a browser-level failure condemns the owning worker:
// its surfaces are retired and a replacement browser restores capacity.
// In-flight conversions on sibling surfaces finish undisturbed. Errors
// carry sentinel values (ErrAcquireTimeout, ErrRenderTimeout, ...) for
// errors.Is checks, and every Result includes per-phase metrics whether or
// not the conversion succeeded.
//
// # Browser Requirements
//
// Rendering requires Chrome/Chromium. go-rod downloads a managed Chromium
// on first launch; set MDPRESS_BROWSER_BIN to use a pre-installed binary
// (containers, CI). The sandbox is disabled automatically when
// MDPRESS_BROWSER_BIN or CI=true is set.
package mdpress
