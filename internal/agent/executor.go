// internal/agent/executor.go
package agent

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/officialprakashkumarsingh/render/api/schemas"
	"github.com/officialprakashkumarsingh/render/internal/screenshots"
)

// maxExtractChars bounds the EXTRACT_TEXT observation to keep the transcript
// from growing without limit on text-heavy pages.
const maxExtractChars = 2000

// extractEllipsis marks a truncated extraction. A single character so the
// observation never exceeds maxExtractChars+1.
const extractEllipsis = "…"

// Executor dispatches tool commands against a browsing session and returns
// the textual observation fed back into the transcript. It never mutates
// conversation state.
type Executor struct {
	store  schemas.ScreenshotStore
	logger *zap.Logger
}

// NewExecutor creates the tool dispatch executor.
func NewExecutor(store schemas.ScreenshotStore, logger *zap.Logger) *Executor {
	return &Executor{
		store:  store,
		logger: logger.Named("executor"),
	}
}

// Execute performs the browser action for a tool command and returns its
// observation. Answer and Unknown are not tool commands and must be handled
// by the loop before dispatch; they are rejected here. baseURL is the
// request's externally visible address, needed only to build screenshot
// retrieval URLs.
func (e *Executor) Execute(ctx context.Context, cmd Command, session schemas.BrowserSession, baseURL string) (string, error) {
	switch cmd.Kind {
	case CommandGoto:
		if err := session.Navigate(ctx, cmd.Arg); err != nil {
			return "", &ToolError{Command: cmd.Kind.String(), Err: err}
		}
		return fmt.Sprintf("Navigated to %s", cmd.Arg), nil

	case CommandClick:
		if err := session.Click(ctx, cmd.Arg); err != nil {
			return "", &ToolError{Command: cmd.Kind.String(), Err: err}
		}
		return fmt.Sprintf("Clicked element %s", cmd.Arg), nil

	case CommandExtract:
		text, err := session.ExtractText(ctx)
		if err != nil {
			return "", &ToolError{Command: cmd.Kind.String(), Err: err}
		}
		return truncateText(text), nil

	case CommandScroll:
		if err := session.ScrollDown(ctx); err != nil {
			return "", &ToolError{Command: cmd.Kind.String(), Err: err}
		}
		return "Scrolled down one viewport", nil

	case CommandTitle:
		title, err := session.Title(ctx)
		if err != nil {
			return "", &ToolError{Command: cmd.Kind.String(), Err: err}
		}
		return title, nil

	case CommandURL:
		loc, err := session.URL(ctx)
		if err != nil {
			return "", &ToolError{Command: cmd.Kind.String(), Err: err}
		}
		return loc, nil

	case CommandBack:
		if err := session.Back(ctx); err != nil {
			return "", &ToolError{Command: cmd.Kind.String(), Err: err}
		}
		return "Navigated back", nil

	case CommandFill:
		if err := session.Fill(ctx, cmd.Arg, cmd.Value); err != nil {
			return "", &ToolError{Command: cmd.Kind.String(), Err: err}
		}
		return fmt.Sprintf("Filled element %s", cmd.Arg), nil

	case CommandScreenshot:
		return e.takeScreenshot(ctx, session, baseURL)

	default:
		// Answer and Unknown never reach the executor; the loop routes them
		// before dispatch.
		return "", fmt.Errorf("command %s is not dispatchable", cmd.Kind)
	}
}

func (e *Executor) takeScreenshot(ctx context.Context, session schemas.BrowserSession, baseURL string) (string, error) {
	data, err := session.Screenshot(ctx)
	if err != nil {
		return "", &ToolError{Command: CommandScreenshot.String(), Err: err}
	}

	name := screenshots.GenerateName()
	if err := e.store.Save(name, data); err != nil {
		return "", &ToolError{Command: CommandScreenshot.String(), Err: err}
	}

	e.logger.Debug("Screenshot captured.", zap.String("name", name), zap.Int("bytes", len(data)))
	return fmt.Sprintf("Screenshot saved: %s/screenshots/%s", strings.TrimRight(baseURL, "/"), name), nil
}

// truncateText trims the extracted page text and bounds it to the first
// maxExtractChars characters, appending a single ellipsis marker when
// anything was cut.
func truncateText(text string) string {
	text = strings.TrimSpace(text)
	runes := []rune(text)
	if len(runes) <= maxExtractChars {
		return text
	}
	return string(runes[:maxExtractChars]) + extractEllipsis
}
