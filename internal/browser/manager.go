// internal/browser/manager.go
package browser

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/officialprakashkumarsingh/render/api/schemas"
	"github.com/officialprakashkumarsingh/render/internal/config"
)

const (
	launchProbeTimeout  = 30 * time.Second
	shutdownGracePeriod = 15 * time.Second
)

// Manager owns the single shared browser process. The process is launched
// lazily on the first session request; concurrent first requests coordinate
// through initOnce so exactly one process is ever created. Sessions are tabs
// opened against the shared process.
type Manager struct {
	logger *zap.Logger
	cfg    config.BrowserConfig

	// allocatorCtx manages the browser process; browserCtx is the first CDP
	// connection, from which all session tabs derive.
	allocatorCtx    context.Context
	allocatorCancel context.CancelFunc
	browserCtx      context.Context
	browserCancel   context.CancelFunc

	initOnce sync.Once
	initErr  error

	// launch performs the actual browser start; swappable in tests.
	launch func(ctx context.Context) error

	// wg tracks active sessions for a graceful shutdown.
	wg sync.WaitGroup
}

var _ schemas.SessionFactory = (*Manager)(nil)

// NewManager creates a browser manager. Launching the browser is deferred
// until the first session is requested.
func NewManager(cfg config.BrowserConfig, logger *zap.Logger) *Manager {
	m := &Manager{
		logger: logger.Named("browser_manager"),
		cfg:    cfg,
	}
	m.launch = m.launchBrowser
	m.logger.Info("Browser manager created (initialization deferred).")
	return m
}

// initialize launches the browser process exactly once.
func (m *Manager) initialize(ctx context.Context) error {
	m.initOnce.Do(func() {
		m.initErr = m.launch(ctx)
	})
	return m.initErr
}

// launchBrowser builds the allocator, starts the process, and verifies it is
// responsive. The allocator derives from context.Background because the
// process outlives any single request.
func (m *Manager) launchBrowser(ctx context.Context) error {
	m.logger.Info("Launching shared browser process...")

	opts := buildAllocatorOptions(m.cfg)
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	probeCtx, probeCancel := context.WithTimeout(browserCtx, launchProbeTimeout)
	defer probeCancel()

	if err := chromedp.Run(probeCtx, chromedp.Navigate("about:blank")); err != nil {
		browserCancel()
		allocCancel()
		return fmt.Errorf("browser failed to start or respond: %w", err)
	}

	m.allocatorCtx = allocCtx
	m.allocatorCancel = allocCancel
	m.browserCtx = browserCtx
	m.browserCancel = browserCancel

	m.logger.Info("Browser launched successfully and is responsive.")
	return nil
}

// buildAllocatorOptions translates browser configuration into chromedp
// allocator options.
func buildAllocatorOptions(cfg config.BrowserConfig) []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-extensions", true),
	)

	if cfg.DisableGPU {
		opts = append(opts, chromedp.DisableGPU)
	}
	if cfg.IgnoreTLSErrors {
		opts = append(opts, chromedp.Flag("ignore-certificate-errors", true))
	}

	// Flags required for running inside containers.
	if runtime.GOOS == "linux" {
		opts = append(opts,
			chromedp.NoSandbox,
			chromedp.Flag("disable-dev-shm-usage", true),
		)
	}

	// Custom arguments from config, either bare flags or key=value pairs.
	for _, arg := range cfg.Args {
		parts := strings.SplitN(arg, "=", 2)
		flagName := strings.TrimPrefix(parts[0], "--")
		if len(parts) == 2 {
			opts = append(opts, chromedp.Flag(flagName, parts[1]))
		} else {
			opts = append(opts, chromedp.Flag(flagName, true))
		}
	}

	return opts
}

// NewSession opens a fresh tab against the shared browser process,
// initializing the process first if needed.
func (m *Manager) NewSession(ctx context.Context) (schemas.BrowserSession, error) {
	if err := m.initialize(ctx); err != nil {
		return nil, fmt.Errorf("browser initialization failed: %w", err)
	}

	tabCtx, tabCancel := chromedp.NewContext(m.browserCtx)

	// Force target creation now so a broken browser surfaces here rather than
	// on the first tool action.
	probeCtx, probeCancel := context.WithTimeout(tabCtx, launchProbeTimeout)
	defer probeCancel()
	if err := chromedp.Run(probeCtx); err != nil {
		tabCancel()
		return nil, fmt.Errorf("failed to open browser tab: %w", err)
	}

	m.wg.Add(1)
	session := newSession(tabCtx, tabCancel, m.cfg, m.logger, m.wg.Done)
	m.logger.Info("New browsing session created.", zap.String("session_id", session.ID()))
	return session, nil
}

// Shutdown waits for active sessions to finish and then terminates the
// browser process. Safe to call even when the browser never launched.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.logger.Info("Browser manager shutdown initiated.")

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		m.logger.Info("All sessions have completed.")
	case <-ctx.Done():
		m.logger.Warn("Shutdown deadline exceeded. Forcing browser termination.", zap.Error(ctx.Err()))
	}

	if m.browserCancel != nil {
		m.browserCancel()
	}
	if m.allocatorCancel != nil {
		m.allocatorCancel()
		// Wait for the allocator to confirm process termination, bounded by a
		// grace period.
		select {
		case <-m.allocatorCtx.Done():
		case <-time.After(shutdownGracePeriod):
			m.logger.Warn("Timed out waiting for browser process to exit.")
		}
	}

	m.logger.Info("Browser manager shutdown complete.")
	return nil
}
