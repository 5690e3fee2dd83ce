package rendering

import (
	"context"
	"log/slog"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"golang.org/x/sync/semaphore"

	"github.com/jonathan/career-analyzer/internal/types"
)

// PDFRenderer turns an analysis into a PDF document
type PDFRenderer interface {
	Render(ctx context.Context, result *types.AnalysisResult) ([]byte, error)
}

// Letter paper in inches
const (
	paperWidth  = 8.5
	paperHeight = 11
	margin      = 0.5
)

// ChromePDF prints the HTML report with headless Chrome. Each render starts its
// own browser; the semaphore bounds how many run at once.
type ChromePDF struct {
	sem     *semaphore.Weighted
	timeout time.Duration
	logger  *slog.Logger
	opts    []chromedp.ExecAllocatorOption
}

// NewChromePDF creates a renderer allowing concurrency parallel browsers.
func NewChromePDF(concurrency int, timeout time.Duration, logger *slog.Logger) *ChromePDF {
	if concurrency < 1 {
		concurrency = 1
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ChromePDF{
		sem:     semaphore.NewWeighted(int64(concurrency)),
		timeout: timeout,
		logger:  logger,
		opts: append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		),
	}
}

// Render produces the PDF report for result.
func (c *ChromePDF) Render(ctx context.Context, result *types.AnalysisResult) ([]byte, error) {
	html, err := RenderHTML(result)
	if err != nil {
		return nil, err
	}

	if err := c.sem.Acquire(ctx, 1); err != nil {
		return nil, &RenderError{Format: FormatPDF, Message: "renderer busy", Cause: err}
	}
	defer c.sem.Release(1)

	start := time.Now()
	allocCtx, cancel := chromedp.NewExecAllocator(ctx, c.opts...)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, c.timeout)
	defer cancel()

	var pdf []byte
	err = chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, html).Do(ctx)
		}),
		chromedp.WaitReady("body"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(paperWidth).
				WithPaperHeight(paperHeight).
				WithMarginTop(margin).
				WithMarginBottom(margin).
				WithMarginLeft(margin).
				WithMarginRight(margin).
				Do(ctx)
			if err != nil {
				return err
			}
			pdf = buf
			return nil
		}),
	)
	if err != nil {
		return nil, &RenderError{Format: FormatPDF, Message: "browser rendering failed", Cause: err}
	}

	c.logger.Info("pdf rendered", "bytes", len(pdf), "duration", time.Since(start))
	return pdf, nil
}
