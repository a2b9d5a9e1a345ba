package render

import (
	"context"
	"encoding/base64"
	"fmt"
	"html"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"movie-pipeline/utils"
)

// Page is one titled image of the composed document.
type Page struct {
	Title string
	PNG   []byte
}

// Renderer produces chart images and composes them into a document.
type Renderer interface {
	RenderChart(ctx context.Context, c Chart) ([]byte, error)
	Compose(ctx context.Context, title string, pages []Page) ([]byte, error)
	Close()
}

// ChromeRenderer draws charts with go-chart and prints the composed document
// with headless Chrome.
type ChromeRenderer struct {
	logger        *utils.Logger
	browserCtx    context.Context
	cancelAlloc   context.CancelFunc
	cancelBrowser context.CancelFunc
	timeout       time.Duration
}

// NewChromeRenderer starts a headless browser. chromeBin may be empty to
// search the usual install locations.
func NewChromeRenderer(chromeBin string, logger *utils.Logger) (*ChromeRenderer, error) {
	if chromeBin == "" {
		chromeBin = findChromeBinary()
	}
	logger.Info("[render] Using browser binary: %s", chromeBin)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(width, height),
	)
	if chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(chromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))

	// Start the browser now so a missing binary fails here rather than mid-report.
	if err := chromedp.Run(browserCtx); err != nil {
		cancelBrowser()
		cancelAlloc()
		return nil, fmt.Errorf("render: start browser: %w", err)
	}

	return &ChromeRenderer{
		logger:        logger,
		browserCtx:    browserCtx,
		cancelAlloc:   cancelAlloc,
		cancelBrowser: cancelBrowser,
		timeout:       60 * time.Second,
	}, nil
}

// RenderChart returns c as a PNG image.
func (r *ChromeRenderer) RenderChart(ctx context.Context, c Chart) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return PNG(c)
}

// Compose prints a cover page plus one page per image to PDF.
func (r *ChromeRenderer) Compose(ctx context.Context, title string, pages []Page) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var pdf []byte
	err := r.run(
		setContent(DocumentHTML(title, pages)),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(8.27).
				WithPaperHeight(11.69).
				Do(ctx)
			pdf = buf
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("render: compose %q: %w", title, err)
	}
	return pdf, nil
}

// Close shuts the browser down.
func (r *ChromeRenderer) Close() {
	r.cancelBrowser()
	r.cancelAlloc()
}

func (r *ChromeRenderer) run(actions ...chromedp.Action) error {
	tabCtx, cancel := chromedp.NewContext(r.browserCtx)
	defer cancel()
	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, r.timeout)
	defer cancelTimeout()

	return chromedp.Run(tabCtx, append([]chromedp.Action{chromedp.Navigate("about:blank")}, actions...)...)
}

func setContent(doc string) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		tree, err := page.GetFrameTree().Do(ctx)
		if err != nil {
			return err
		}
		return page.SetDocumentContent(tree.Frame.ID, doc).Do(ctx)
	})
}

// DocumentHTML lays out the report: a heading page, then one image per page.
func DocumentHTML(title string, pages []Page) string {
	var b strings.Builder
	b.WriteString(`<!DOCTYPE html><html><head><meta charset="utf-8"><style>`)
	b.WriteString(`body{font-family:Arial,Helvetica,sans-serif;margin:0}`)
	b.WriteString(`.page{page-break-after:always;padding:24px}`)
	b.WriteString(`.page:last-child{page-break-after:auto}`)
	b.WriteString(`h1{text-align:center;font-size:22px}h2{font-size:16px}img{width:100%}`)
	b.WriteString(`</style></head><body>`)
	fmt.Fprintf(&b, `<div class="page"><h1>%s</h1></div>`, esc(title))
	for _, p := range pages {
		fmt.Fprintf(&b, `<div class="page"><h2>%s</h2><img src="data:image/png;base64,%s"/></div>`,
			esc(p.Title), base64.StdEncoding.EncodeToString(p.PNG))
	}
	b.WriteString(`</body></html>`)
	return b.String()
}

func findChromeBinary() string {
	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		return bin
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/opt/google/chrome/google-chrome",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}

func esc(s string) string {
	return html.EscapeString(s)
}
