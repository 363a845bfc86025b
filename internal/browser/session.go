// internal/browser/session.go
package browser

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/officialprakashkumarsingh/render/api/schemas"
	"github.com/officialprakashkumarsingh/render/internal/config"
)

// screenshotQuality must stay at 100: chromedp switches the capture format
// from PNG to JPEG for any lower value.
const screenshotQuality = 100

// Session is one live tab in the shared browser process, implementing
// schemas.BrowserSession. It is exclusively owned by a single request and
// must be closed when that request terminates.
type Session struct {
	id     string
	ctx    context.Context
	cancel context.CancelFunc
	logger *zap.Logger
	cfg    config.BrowserConfig

	closeOnce sync.Once
	onClose   func()
}

var _ schemas.BrowserSession = (*Session)(nil)

func newSession(ctx context.Context, cancel context.CancelFunc, cfg config.BrowserConfig, logger *zap.Logger, onClose func()) *Session {
	sessionID := uuid.New().String()
	return &Session{
		id:      sessionID,
		ctx:     ctx,
		cancel:  cancel,
		logger:  logger.With(zap.String("session_id", sessionID)),
		cfg:     cfg,
		onClose: onClose,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// run executes chromedp actions against this tab, bounded by the given
// timeout and honoring cancellation of the caller's context.
func (s *Session) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	opCtx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	return chromedp.Run(opCtx, actions...)
}

// Navigate loads the URL and waits for the document's initial content (the
// body element being ready), not full resource completion.
func (s *Session) Navigate(ctx context.Context, url string) error {
	s.logger.Debug("Navigating.", zap.String("url", url))
	err := s.run(ctx, s.cfg.NavigationTimeout,
		chromedp.ActionFunc(func(c context.Context) error {
			_, _, errText, err := page.Navigate(url).Do(c)
			if err != nil {
				return err
			}
			if errText != "" {
				return fmt.Errorf("page load error: %s", errText)
			}
			return nil
		}),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	if err != nil {
		return fmt.Errorf("navigation to %q failed: %w", url, err)
	}
	return nil
}

// Click clicks the first element matching the selector. chromedp waits for a
// matching node, so a missing element surfaces as a deadline error.
func (s *Session) Click(ctx context.Context, selector string) error {
	err := s.run(ctx, s.cfg.ActionTimeout, chromedp.Click(selector, chromedp.ByQuery))
	if err != nil {
		return fmt.Errorf("click on %q failed: %w", selector, err)
	}
	return nil
}

// ExtractText returns the rendered text content of the page body.
func (s *Session) ExtractText(ctx context.Context) (string, error) {
	var text string
	err := s.run(ctx, s.cfg.ActionTimeout,
		chromedp.Evaluate(`document.body ? document.body.innerText : ""`, &text),
	)
	if err != nil {
		return "", fmt.Errorf("text extraction failed: %w", err)
	}
	return text, nil
}

// ScrollDown scrolls the viewport down by exactly one viewport height.
func (s *Session) ScrollDown(ctx context.Context) error {
	err := s.run(ctx, s.cfg.ActionTimeout,
		chromedp.Evaluate(`window.scrollBy(0, window.innerHeight)`, nil),
	)
	if err != nil {
		return fmt.Errorf("scroll failed: %w", err)
	}
	return nil
}

// Title returns the current page title.
func (s *Session) Title(ctx context.Context) (string, error) {
	var title string
	if err := s.run(ctx, s.cfg.ActionTimeout, chromedp.Title(&title)); err != nil {
		return "", fmt.Errorf("title read failed: %w", err)
	}
	return title, nil
}

// URL returns the current page address.
func (s *Session) URL(ctx context.Context) (string, error) {
	var loc string
	if err := s.run(ctx, s.cfg.ActionTimeout, chromedp.Location(&loc)); err != nil {
		return "", fmt.Errorf("location read failed: %w", err)
	}
	return loc, nil
}

// Back navigates one history entry backward and waits for initial content.
func (s *Session) Back(ctx context.Context) error {
	err := s.run(ctx, s.cfg.NavigationTimeout,
		chromedp.NavigateBack(),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	if err != nil {
		return fmt.Errorf("history back failed: %w", err)
	}
	return nil
}

// Fill focuses the element matching the selector and types the value into it
// as simulated keystrokes.
func (s *Session) Fill(ctx context.Context, selector, value string) error {
	err := s.run(ctx, s.cfg.ActionTimeout,
		chromedp.Focus(selector, chromedp.ByQuery),
		chromedp.SendKeys(selector, value, chromedp.ByQuery),
	)
	if err != nil {
		return fmt.Errorf("fill on %q failed: %w", selector, err)
	}
	return nil
}

// Screenshot captures a full-page PNG of the current page. Quality 100 makes
// chromedp emit PNG; any lower value would produce JPEG bytes under the .png
// name the store generates.
func (s *Session) Screenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	err := s.run(ctx, s.cfg.ActionTimeout, chromedp.FullScreenshot(&buf, screenshotQuality))
	if err != nil {
		return nil, fmt.Errorf("screenshot capture failed: %w", err)
	}
	return buf, nil
}

// Close releases the tab. Idempotent; the manager is notified exactly once.
func (s *Session) Close(ctx context.Context) error {
	s.closeOnce.Do(func() {
		s.logger.Debug("Closing session.")
		s.cancel()
		if s.onClose != nil {
			s.onClose()
		}
	})
	return nil
}
