package mdpress

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/inkforge/mdpress/internal/markdown"
	"github.com/inkforge/mdpress/internal/themes"
)

// translator abstracts markdown translation.
type translator interface {
	Translate(ctx context.Context, content string) (string, []markdown.Heading, error)
}

// styleResolver abstracts theme resolution. Unknown names fall back to
// defaults rather than erroring.
type styleResolver interface {
	StyleFor(name string) string
	CodeStyleFor(name string) string
}

// Compile-time interface implementation checks.
var (
	_ translator    = (*markdown.Translator)(nil)
	_ styleResolver = (*themes.Catalog)(nil)
)

// Converter drives the conversion pipeline against a render pool.
// Create with NewConverter and share across goroutines; concurrency is
// bounded by the pool, not the Converter.
type Converter struct {
	pool       *Pool
	translator translator
	styles     styleResolver
	log        logrus.FieldLogger

	// timeoutFor maps payload size to the tier deadline.
	timeoutFor func(int) time.Duration
}

// Option configures a Converter.
type Option func(*Converter)

// WithLogger sets the logger for conversion events.
func WithLogger(log logrus.FieldLogger) Option {
	return func(c *Converter) {
		if log != nil {
			c.log = log
		}
	}
}

// NewConverter creates a Converter that leases surfaces from pool.
func NewConverter(pool *Pool, opts ...Option) *Converter {
	c := &Converter{
		pool:       pool,
		translator: markdown.New(),
		styles:     themes.NewCatalog(),
		log:        logrus.StandardLogger(),
		timeoutFor: TimeoutFor,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Convert runs the full pipeline: validate, translate and assemble outside
// any lease, then acquire a surface under the tier deadline, render,
// extract, and release. The returned Result carries metrics for every
// phase reached, also when err != nil.
//
// Timeouts are never retried here; callers may retry ErrAcquireTimeout and
// ErrRenderTimeout on their own budget. Recovers from internal panics so
// the release path always runs.
func (c *Converter) Convert(ctx context.Context, input Input) (result *Result, err error) {
	start := time.Now()
	result = &Result{}
	m := &result.Metrics

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrInternal, r)
		}
		m.Total = time.Since(start)
	}()

	m.InputBytes = len(input.Markdown)
	if err := c.validateInput(input); err != nil {
		return result, err
	}
	if m.InputBytes > SoftPayloadBytes {
		c.log.WithFields(logrus.Fields{
			"bytes":     m.InputBytes,
			"threshold": SoftPayloadBytes,
		}).Warn("document exceeds soft payload threshold")
	}

	// Translation and assembly stay outside any lease so surfaces are
	// held only for browser work.
	body, outline, err := c.translator.Translate(ctx, input.Markdown)
	if err != nil {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		return result, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	doc, err := assembleDocument(body, outline, input,
		c.styles.StyleFor(input.Theme), c.styles.CodeStyleFor(input.CodeTheme))
	if err != nil {
		return result, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	// One deadline bounds everything from here: acquire wait, content
	// set, readiness wait, and extraction share the tier budget.
	m.Deadline = c.timeoutFor(m.InputBytes)
	ctx, cancel := context.WithTimeout(ctx, m.Deadline)
	defer cancel()

	phase := time.Now()
	surface, err := c.pool.Acquire(ctx)
	m.AcquireWait = time.Since(phase)
	if err != nil {
		// Nothing leased, nothing to clean up.
		return result, err
	}
	defer c.pool.Release(surface)

	phase = time.Now()
	err = surface.setContent(ctx, doc)
	m.ContentSet = time.Since(phase)
	if err != nil {
		return result, c.renderError(surface, err)
	}

	phase = time.Now()
	err = surface.waitReady(ctx)
	m.RenderWait = time.Since(phase)
	if err != nil {
		return result, c.renderError(surface, err)
	}

	phase = time.Now()
	pdf, err := surface.printPDF(ctx, resolvePrintSpec(input.Page))
	m.Extract = time.Since(phase)
	if err != nil {
		return result, c.renderError(surface, err)
	}

	result.PDF = pdf
	m.OutputBytes = len(pdf)
	return result, nil
}

// validateInput gates every conversion. Size checks run on raw bytes
// before any other processing; a failure here never touches the pool.
func (c *Converter) validateInput(input Input) error {
	if strings.TrimSpace(input.Markdown) == "" {
		return ErrEmptyContent
	}
	if len(input.Markdown) > MaxPayloadBytes {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrPayloadTooLarge, len(input.Markdown), MaxPayloadBytes)
	}
	if err := input.Page.Validate(); err != nil {
		return err
	}
	if err := input.Watermark.Validate(); err != nil {
		return err
	}
	return input.TOC.Validate()
}

// renderError maps a surface failure to the error taxonomy and drives
// pool self-healing. Deadline expiry condemns the worker: an interrupted
// operation leaves unknown in-page state that must never be re-leased.
// Worker-scoped failures condemn too; content-scoped failures leave the
// worker serving.
func (c *Converter) renderError(s *Surface, err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		c.pool.MarkUnhealthy(s)
		return fmt.Errorf("%w: %v", ErrRenderTimeout, err)
	case errors.Is(err, context.Canceled):
		c.pool.MarkUnhealthy(s)
		return err
	case isWorkerFault(err):
		c.pool.MarkUnhealthy(s)
		return fmt.Errorf("%w: %v", ErrRenderFailed, err)
	default:
		return fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}
}
