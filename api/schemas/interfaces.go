// api/schemas/interfaces.go
package schemas

import "context"

// LLMClient maps an opaque prompt text to a single generated text completion.
// Implementations carry their own sampling configuration; callers treat the
// exchange as text-in/text-out.
type LLMClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// BrowserSession is one live, navigable page (tab) bound to a single request.
// All methods act on the current page state; implementations must be safe to
// close exactly once via Close regardless of prior errors.
type BrowserSession interface {
	// Navigate loads the URL, waiting for the document's initial content rather
	// than full resource completion.
	Navigate(ctx context.Context, url string) error
	// Click clicks the first element matching the CSS selector. It fails when no
	// matching element appears within the action deadline.
	Click(ctx context.Context, selector string) error
	// ExtractText returns the full rendered text content of the page body.
	ExtractText(ctx context.Context) (string, error)
	// ScrollDown scrolls the viewport down by exactly one viewport height.
	ScrollDown(ctx context.Context) error
	// Title returns the current page title.
	Title(ctx context.Context) (string, error)
	// URL returns the current page address.
	URL(ctx context.Context) (string, error)
	// Back navigates one history entry backward, waiting for initial content.
	Back(ctx context.Context) error
	// Fill focuses the element matching the selector and types the value into it
	// as simulated keystrokes.
	Fill(ctx context.Context, selector, value string) error
	// Screenshot captures a full-page image of the current page as PNG bytes.
	Screenshot(ctx context.Context) ([]byte, error)
	// Close releases the page. Idempotent.
	Close(ctx context.Context) error
}

// SessionFactory creates browser sessions against a shared browser process.
type SessionFactory interface {
	NewSession(ctx context.Context) (BrowserSession, error)
}

// ScreenshotStore persists captured screenshots under a caller-supplied name.
// The externally visible retrieval path convention is <base>/screenshots/<name>.
type ScreenshotStore interface {
	Save(name string, data []byte) error
}
