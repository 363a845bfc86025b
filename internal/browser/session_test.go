package browser

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"

	"github.com/officialprakashkumarsingh/render/internal/config"
)

// Verifies Close releases the tab and notifies the manager exactly once, no
// matter how many times or how concurrently it is called.
func TestSession_CloseIdempotent(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var notifies atomic.Int32
	s := newSession(ctx, cancel, config.BrowserConfig{}, zaptest.NewLogger(t), func() {
		notifies.Add(1)
	})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, s.Close(context.Background()))
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), notifies.Load())
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
}

// Captures must stay PNG to match the .png names the screenshot store
// generates; chromedp emits JPEG for any quality below 100.
func TestScreenshotQualityProducesPNG(t *testing.T) {
	assert.Equal(t, 100, screenshotQuality)
}

func TestSession_IDStable(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s := newSession(ctx, cancel, config.BrowserConfig{}, zaptest.NewLogger(t), nil)

	assert.NotEmpty(t, s.ID())
	assert.Equal(t, s.ID(), s.ID())
}
