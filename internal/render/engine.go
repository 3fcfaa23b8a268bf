package render

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/scoutpro/scoutpro-be/internal/player"
)

// Engine rasterizes filled card markup to image bytes
type Engine interface {
	Render(ctx context.Context, markup string) ([]byte, error)
}

// ChromeConfig holds headless Chrome rendering settings
type ChromeConfig struct {
	Width       int
	Height      int
	ChromePath  string // empty uses chromedp's default lookup
	SettleDelay time.Duration
}

// ChromeEngine renders markup by driving headless Chrome through the DevTools
// protocol: set the document content, let resources settle, capture a
// full-viewport screenshot
type ChromeEngine struct {
	config *ChromeConfig
	logger *slog.Logger
}

// NewChromeEngine creates a ChromeEngine. A fresh browser is launched per
// Render call; a launch or capture failure propagates to the caller.
func NewChromeEngine(config *ChromeConfig, logger *slog.Logger) *ChromeEngine {
	if config.Width <= 0 {
		config.Width = 760
	}
	if config.Height <= 0 {
		config.Height = 950
	}
	if config.SettleDelay <= 0 {
		config.SettleDelay = 500 * time.Millisecond
	}

	return &ChromeEngine{
		config: config,
		logger: logger,
	}
}

func (e *ChromeEngine) Render(ctx context.Context, markup string) ([]byte, error) {
	opts := chromedp.DefaultExecAllocatorOptions[:]
	if e.config.ChromePath != "" {
		opts = append(opts, chromedp.ExecPath(e.config.ChromePath))
	}
	opts = append(opts,
		chromedp.NoSandbox,
		chromedp.WindowSize(e.config.Width, e.config.Height),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	start := time.Now()

	var buf []byte
	err := chromedp.Run(browserCtx,
		chromedp.EmulateViewport(int64(e.config.Width), int64(e.config.Height)),
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, markup).Do(ctx)
		}),
		chromedp.WaitReady("body", chromedp.ByQuery),
		// give remote images time to load before capture
		chromedp.Sleep(e.config.SettleDelay),
		chromedp.CaptureScreenshot(&buf),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to render card: %w", err)
	}

	e.logger.Debug("Card rendered",
		slog.Int("width", e.config.Width),
		slog.Int("height", e.config.Height),
		slog.Int("size", len(buf)),
		slog.Duration("elapsed", time.Since(start)),
	)

	return buf, nil
}

// Renderer composes the card template with an Engine
type Renderer struct {
	template string
	engine   Engine
}

// NewRenderer loads the template at templatePath and returns a Renderer over
// the given engine
func NewRenderer(templatePath string, engine Engine) (*Renderer, error) {
	template, err := LoadTemplate(templatePath)
	if err != nil {
		return nil, err
	}

	return &Renderer{
		template: template,
		engine:   engine,
	}, nil
}

// Render fills the template with the player's fields and rasterizes it
func (r *Renderer) Render(ctx context.Context, p *player.Player) ([]byte, error) {
	return r.engine.Render(ctx, Fill(r.template, p))
}
