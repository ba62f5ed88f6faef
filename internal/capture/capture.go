package capture

import (
	"context"
	"encoding/base64"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"flowshot/internal/config"
	"flowshot/internal/logging"
	"flowshot/internal/services"
)

// ErrNoCanvas marks a capture attempt where none of the readiness signals
// appeared before the aggregate deadline.
var ErrNoCanvas = errors.New("no canvas found")

// readinessProbes are tried in priority order; the first selector that
// becomes visible within its timeout wins. The list covers current and older
// engine UI builds.
var readinessProbes = []string{
	`[data-test-id="canvas"]`,
	`.vue-flow__viewport`,
	`.jtk-surface`,
	`#node-view`,
	`canvas`,
}

// fitProbes locate the "fit contents to view" control. Clicking is
// best-effort; builds without the control are fine.
var fitProbes = []string{
	`[data-test-id="zoom-to-fit"]`,
	`.zoom-to-fit`,
}

const (
	loginTimeout  = 15 * time.Second
	fitTimeout    = 2 * time.Second
	postFitSettle = 500 * time.Millisecond
)

// Service drives a headless browser to an imported workflow's canvas view
// and extracts a raster snapshot.
type Service struct {
	cfg    config.Capture
	engine config.Engine
	logger *slog.Logger
}

// New builds a capture service. Engine settings supply the canvas
// credentials (basic auth or form login) the browser needs.
func New(cfg config.Capture, engine config.Engine, logger *slog.Logger) *Service {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Service{
		cfg:    cfg,
		engine: engine,
		logger: logger.With(logging.String(logging.FieldComponent, "capture")),
	}
}

// Capture opens a fresh rendering surface, waits for the canvas at canvasURL
// to become ready, and returns the screenshot bytes. The browser context is
// torn down on every exit path.
func (s *Service) Capture(ctx context.Context, canvasURL string) ([]byte, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.WindowSize(s.cfg.ViewportWidth, s.cfg.ViewportHeight),
	)
	if strings.TrimSpace(s.cfg.ChromePath) != "" {
		opts = append(opts, chromedp.ExecPath(s.cfg.ChromePath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	setup := chromedp.Tasks{
		network.Enable(),
		chromedp.EmulateViewport(int64(s.cfg.ViewportWidth), int64(s.cfg.ViewportHeight)),
	}
	if header := basicAuthHeader(s.engine.BasicAuthUser, s.engine.BasicAuthPassword); header != "" {
		setup = append(setup, network.SetExtraHTTPHeaders(network.Headers{"Authorization": header}))
	}
	if err := chromedp.Run(browserCtx, setup); err != nil {
		return nil, services.Wrap(services.ErrCapture, "capture", "start browser", "", err)
	}

	if s.engine.LoginEmail != "" && s.engine.LoginPassword != "" {
		if err := s.login(browserCtx); err != nil {
			return nil, services.Wrap(services.ErrCapture, "capture", "sign in", "", err)
		}
	}

	if err := chromedp.Run(browserCtx, chromedp.Navigate(canvasURL)); err != nil {
		return nil, services.Wrap(services.ErrCapture, "capture", "navigate", canvasURL, err)
	}

	signal, err := s.waitReady(browserCtx)
	if err != nil {
		if errors.Is(err, ErrNoCanvas) {
			return nil, services.Wrap(services.ErrCapture, "capture", "wait for canvas",
				"no readiness signal appeared", ErrNoCanvas)
		}
		return nil, services.Wrap(services.ErrCapture, "capture", "wait for canvas", "", err)
	}
	s.logger.Debug("canvas ready", logging.Args(logging.String("signal", signal))...)

	// Rendering lags behind DOM readiness, so give the canvas time to draw.
	settle := time.Duration(s.cfg.SettleDelayMS) * time.Millisecond
	if settle > 0 {
		if err := chromedp.Run(browserCtx, chromedp.Sleep(settle)); err != nil {
			return nil, services.Wrap(services.ErrCapture, "capture", "settle", "", err)
		}
	}

	s.fitToView(browserCtx)

	var buf []byte
	shot := chromedp.ActionFunc(func(ctx context.Context) error {
		var shotErr error
		buf, shotErr = s.screenshotParams().Do(ctx)
		return shotErr
	})
	if err := chromedp.Run(browserCtx, shot); err != nil {
		return nil, services.Wrap(services.ErrCapture, "capture", "screenshot", "", err)
	}
	return buf, nil
}

// waitReady tries each readiness probe with its own bounded timeout and
// returns the first selector that appears.
func (s *Service) waitReady(ctx context.Context) (string, error) {
	timeout := time.Duration(s.cfg.SignalTimeoutSeconds) * time.Second
	for _, selector := range readinessProbes {
		probeCtx, cancel := context.WithTimeout(ctx, timeout)
		err := chromedp.Run(probeCtx, chromedp.WaitVisible(selector, chromedp.ByQuery))
		cancel()
		if err == nil {
			return selector, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
	}
	return "", ErrNoCanvas
}

// fitToView clicks the zoom-to-fit control when one is present. Absence is
// not an error.
func (s *Service) fitToView(ctx context.Context) {
	for _, selector := range fitProbes {
		probeCtx, cancel := context.WithTimeout(ctx, fitTimeout)
		err := chromedp.Run(probeCtx,
			chromedp.Click(selector, chromedp.ByQuery, chromedp.NodeVisible),
			chromedp.Sleep(postFitSettle),
		)
		cancel()
		if err == nil {
			return
		}
		if ctx.Err() != nil {
			return
		}
	}
	s.logger.Debug("no fit-to-view control found, keeping default zoom")
}

// login performs the engine's email/password form login so the canvas view
// is reachable with session cookies.
func (s *Service) login(ctx context.Context) error {
	signinURL := strings.TrimRight(s.engine.URL, "/") + "/signin"
	loginCtx, cancel := context.WithTimeout(ctx, loginTimeout)
	defer cancel()
	return chromedp.Run(loginCtx,
		chromedp.Navigate(signinURL),
		chromedp.WaitVisible(`input[type="email"]`, chromedp.ByQuery),
		chromedp.SendKeys(`input[type="email"]`, s.engine.LoginEmail, chromedp.ByQuery),
		chromedp.SendKeys(`input[type="password"]`, s.engine.LoginPassword, chromedp.ByQuery),
		chromedp.Click(`button[type="submit"]`, chromedp.ByQuery),
		chromedp.Sleep(time.Second),
	)
}

// screenshotParams builds the capture request for the configured quality.
// Quality 100 keeps lossless PNG output; lower values switch Chrome to JPEG
// encoding.
func (s *Service) screenshotParams() *page.CaptureScreenshotParams {
	if s.cfg.ImageQuality > 0 && s.cfg.ImageQuality < 100 {
		return page.CaptureScreenshot().
			WithFormat(page.CaptureScreenshotFormatJpeg).
			WithQuality(int64(s.cfg.ImageQuality))
	}
	return page.CaptureScreenshot().WithFormat(page.CaptureScreenshotFormatPng)
}

func basicAuthHeader(user, password string) string {
	if strings.TrimSpace(user) == "" {
		return ""
	}
	credentials := base64.StdEncoding.EncodeToString([]byte(user + ":" + password))
	return "Basic " + credentials
}
