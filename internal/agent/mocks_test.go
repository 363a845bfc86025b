package agent

import (
	"context"
	"fmt"
	"sync"

	"github.com/officialprakashkumarsingh/render/api/schemas"
)

// -- Shared test doubles --

// stubSession is a configurable BrowserSession double. Unset funcs succeed
// with zero values.
type stubSession struct {
	mu         sync.Mutex
	closeCount int

	navigateFn   func(ctx context.Context, url string) error
	clickFn      func(ctx context.Context, selector string) error
	extractFn    func(ctx context.Context) (string, error)
	scrollFn     func(ctx context.Context) error
	titleFn      func(ctx context.Context) (string, error)
	urlFn        func(ctx context.Context) (string, error)
	backFn       func(ctx context.Context) error
	fillFn       func(ctx context.Context, selector, value string) error
	screenshotFn func(ctx context.Context) ([]byte, error)
}

func (s *stubSession) Navigate(ctx context.Context, url string) error {
	if s.navigateFn != nil {
		return s.navigateFn(ctx, url)
	}
	return nil
}

func (s *stubSession) Click(ctx context.Context, selector string) error {
	if s.clickFn != nil {
		return s.clickFn(ctx, selector)
	}
	return nil
}

func (s *stubSession) ExtractText(ctx context.Context) (string, error) {
	if s.extractFn != nil {
		return s.extractFn(ctx)
	}
	return "", nil
}

func (s *stubSession) ScrollDown(ctx context.Context) error {
	if s.scrollFn != nil {
		return s.scrollFn(ctx)
	}
	return nil
}

func (s *stubSession) Title(ctx context.Context) (string, error) {
	if s.titleFn != nil {
		return s.titleFn(ctx)
	}
	return "", nil
}

func (s *stubSession) URL(ctx context.Context) (string, error) {
	if s.urlFn != nil {
		return s.urlFn(ctx)
	}
	return "", nil
}

func (s *stubSession) Back(ctx context.Context) error {
	if s.backFn != nil {
		return s.backFn(ctx)
	}
	return nil
}

func (s *stubSession) Fill(ctx context.Context, selector, value string) error {
	if s.fillFn != nil {
		return s.fillFn(ctx, selector, value)
	}
	return nil
}

func (s *stubSession) Screenshot(ctx context.Context) ([]byte, error) {
	if s.screenshotFn != nil {
		return s.screenshotFn(ctx)
	}
	return []byte{}, nil
}

func (s *stubSession) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeCount++
	return nil
}

func (s *stubSession) closes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closeCount
}

// stubFactory hands out a single prepared session.
type stubFactory struct {
	session *stubSession
	err     error
}

func (f *stubFactory) NewSession(ctx context.Context) (schemas.BrowserSession, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.session, nil
}

// scriptedLLM replays a fixed sequence of completions and records every
// prompt it was asked to complete.
type scriptedLLM struct {
	mu      sync.Mutex
	replies []string
	err     error
	prompts []string
}

func (l *scriptedLLM) Complete(ctx context.Context, prompt string) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.prompts = append(l.prompts, prompt)
	if l.err != nil {
		return "", l.err
	}
	if len(l.replies) == 0 {
		return "", fmt.Errorf("scripted LLM exhausted after %d prompts", len(l.prompts))
	}
	reply := l.replies[0]
	l.replies = l.replies[1:]
	return reply, nil
}

// memoryStore is an in-memory ScreenshotStore double.
type memoryStore struct {
	mu    sync.Mutex
	saved map[string][]byte
	err   error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{saved: make(map[string][]byte)}
}

func (m *memoryStore) Save(name string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.saved[name] = data
	return nil
}
