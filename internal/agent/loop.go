// internal/agent/loop.go
package agent

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/officialprakashkumarsingh/render/api/schemas"
	"github.com/officialprakashkumarsingh/render/internal/config"
)

// systemPrompt is the command vocabulary and stop instruction seeding every
// transcript. The model must reply with exactly one command per turn.
const systemPrompt = `You are a web browsing agent. You control a real browser by replying with exactly one command on a single line. Available commands:

GOTO_URL <url> - navigate the browser to the URL
CLICK_SELECTOR <css selector> - click the first element matching the selector
EXTRACT_TEXT - read the text content of the current page
SCROLL_DOWN - scroll down by one viewport
GET_TITLE - read the current page title
GET_URL - read the current page URL
GO_BACK - go back one entry in history
FILL_FORM <css selector> | <value> - type the value into the matching element
TAKE_SCREENSHOT - capture a screenshot of the current page
ANSWER: <final answer> - stop browsing and report your final answer

Reply with one command and nothing else. When you have enough information to answer the user's question, reply with ANSWER: followed by the answer.`

// sessionCloseTimeout bounds session release so a wedged tab cannot block the
// request goroutine forever.
const sessionCloseTimeout = 10 * time.Second

// answerMarker is the tool turn recorded for the terminal Answer cycle, so the
// transcript always closes on a complete (assistant, tool) pair.
const answerMarker = "Final answer delivered."

// Controller runs the agent loop for one request at a time: render the
// transcript, call the completion service, parse, dispatch, fold the
// observation back in, and stop on Answer or any failure. A single Controller
// is shared across requests; Run carries no cross-call state.
type Controller struct {
	llm      schemas.LLMClient
	sessions schemas.SessionFactory
	executor *Executor
	cfg      config.AgentConfig
	logger   *zap.Logger
}

// NewController wires the loop controller.
func NewController(llm schemas.LLMClient, sessions schemas.SessionFactory, executor *Executor, cfg config.AgentConfig, logger *zap.Logger) *Controller {
	return &Controller{
		llm:      llm,
		sessions: sessions,
		executor: executor,
		cfg:      cfg,
		logger:   logger.Named("agent"),
	}
}

// Run drives a fresh browsing session until the model answers or a failure
// terminates the loop. Every failure is fatal for the request; nothing is
// retried and failures are not fed back to the model. The session is released
// exactly once on every exit path. baseURL is the request's externally
// visible address, used for screenshot observations.
func (c *Controller) Run(ctx context.Context, query, baseURL string) (answer string, err error) {
	session, err := c.sessions.NewSession(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to acquire browsing session: %w", err)
	}
	defer func() {
		// Release with a background context: the request context may already
		// be dead on the error paths.
		closeCtx, cancel := context.WithTimeout(context.Background(), sessionCloseTimeout)
		defer cancel()
		if closeErr := session.Close(closeCtx); closeErr != nil {
			c.logger.Warn("Failed to close browsing session.", zap.Error(closeErr))
		}
	}()

	transcript := NewTranscript(systemPrompt, query)
	c.logger.Info("Agent loop started.", zap.Int("query_chars", len(query)))

	return c.runLoop(ctx, session, transcript, baseURL)
}

// runLoop drives the iteration cycle against an already-acquired session. The
// transcript is mutated in place; after a terminal Answer it ends on the
// (assistant, answer-marker) pair and nothing is appended past termination.
func (c *Controller) runLoop(ctx context.Context, session schemas.BrowserSession, transcript *Transcript, baseURL string) (string, error) {
	for iteration := 0; ; iteration++ {
		if c.cfg.MaxIterations > 0 && iteration >= c.cfg.MaxIterations {
			return "", fmt.Errorf("agent exceeded the configured limit of %d iterations", c.cfg.MaxIterations)
		}
		if c.cfg.MaxTranscriptBytes > 0 && transcript.Size() > c.cfg.MaxTranscriptBytes {
			return "", fmt.Errorf("agent transcript exceeded the configured limit of %d bytes", c.cfg.MaxTranscriptBytes)
		}

		raw, err := c.llm.Complete(ctx, transcript.Render())
		if err != nil {
			return "", &CompletionError{Err: err}
		}

		cmd := ParseCommand(raw)
		c.logger.Debug("Model command parsed.",
			zap.Int("iteration", iteration),
			zap.Stringer("command", cmd.Kind),
		)

		switch cmd.Kind {
		case CommandAnswer:
			transcript.AppendAssistant(raw)
			transcript.AppendTool(answerMarker)
			c.logger.Info("Agent loop terminated with an answer.", zap.Int("iterations", iteration+1))
			return cmd.Arg, nil
		case CommandUnknown:
			return "", &UnrecognizedCommandError{Raw: cmd.Raw}
		}

		observation, err := c.executor.Execute(ctx, cmd, session, baseURL)
		if err != nil {
			return "", err
		}

		transcript.AppendAssistant(raw)
		transcript.AppendTool(observation)
	}
}
