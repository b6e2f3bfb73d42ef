package httpserver

import (
	"context"
	"path/filepath"
	"sync"
	"time"
)

type Mux struct {
	entries  map[string]muxEntry
	mu       *sync.RWMutex
	notFound Handler
}

type muxEntry struct {
	h    Handler
	line string
}

func NewMux() *Mux {
	return &Mux{
		entries: make(map[string]muxEntry),
		mu:      &sync.RWMutex{},
	}
}

// Handle is used to register a handler for an exact request line
func (m *Mux) Handle(line string, h Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[line] = muxEntry{
		h:    h,
		line: line,
	}
}

// HandleNotFound registers the handler used when no request line matches.
func (m *Mux) HandleNotFound(h Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.notFound = h
}

// match finds a handler in entries given a request line.
func (m *Mux) match(line string) (h Handler) {
	// only check for exact match for now.
	v, ok := m.entries[line]
	if ok {
		return v.h
	}

	return nil
}

// Serve dispatches the request to the handler whose registered
// request line matches it exactly.
func (m *Mux) Serve(ctx context.Context, req *Request) (*Response, error) {
	h := m.Handler(req)
	return h.Serve(ctx, req)
}

// Handler returns the handler to use for the given request.
// It always returns a non-nil handler.
//
// If there is no registered handler that applies to the request, Handler
// returns the mux's not-found handler, or a bare 404 handler when none
// has been registered.
func (m *Mux) Handler(req *Request) (h Handler) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	h = m.match(req.Line)
	if h == nil {
		if m.notFound != nil {
			return m.notFound
		}
		h = NotFoundHandler()
	}

	return h
}

// NotFound replies with the 404 status line and an empty body.
func NotFound(ctx context.Context, req *Request) (*Response, error) {
	return &Response{Status: StatusNotFound}, nil
}

// NotFoundHandler returns a simple handler that replies with a bare "404 NOT FOUND" response.
func NotFoundHandler() Handler { return HandlerFunc(NotFound) }

// NewFileMux builds the canonical route table over a directory of content
// files: "/" serves hello.html, "/sleep" serves it after the given delay,
// and everything else gets 404.html.
func NewFileMux(contentDir string, sleepFor time.Duration) *Mux {
	hello := FileHandler(StatusOK, filepath.Join(contentDir, "hello.html"))

	m := NewMux()
	m.Handle("GET / HTTP/1.1", hello)
	m.Handle("GET /sleep HTTP/1.1", DelayHandler(sleepFor, hello))
	m.HandleNotFound(FileHandler(StatusNotFound, filepath.Join(contentDir, "404.html")))

	return m
}
