package httpserver

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func staticHandler(status, body string) Handler {
	return HandlerFunc(func(ctx context.Context, req *Request) (*Response, error) {
		return &Response{Status: status, Body: []byte(body)}, nil
	})
}

func TestMux_ExactMatch(t *testing.T) {
	m := NewMux()
	m.Handle("GET / HTTP/1.1", staticHandler(StatusOK, "root"))
	m.Handle("GET /sleep HTTP/1.1", staticHandler(StatusOK, "sleep"))

	resp, err := m.Serve(context.Background(), &Request{Line: "GET / HTTP/1.1"})
	require.NoError(t, err)
	require.Equal(t, "root", string(resp.Body))

	resp, err = m.Serve(context.Background(), &Request{Line: "GET /sleep HTTP/1.1"})
	require.NoError(t, err)
	require.Equal(t, "sleep", string(resp.Body))
}

func TestMux_NoPartialMatch(t *testing.T) {
	m := NewMux()
	m.Handle("GET / HTTP/1.1", staticHandler(StatusOK, "root"))
	m.HandleNotFound(staticHandler(StatusNotFound, "missing"))

	// close but not exact request lines must not match
	for _, line := range []string{"GET /other HTTP/1.1", "GET / HTTP/1.0", "POST / HTTP/1.1", ""} {
		resp, err := m.Serve(context.Background(), &Request{Line: line})
		require.NoError(t, err)
		require.Equal(t, StatusNotFound, resp.Status)
		require.Equal(t, "missing", string(resp.Body))
	}
}

func TestMux_BareNotFoundWithoutHandler(t *testing.T) {
	m := NewMux()

	resp, err := m.Serve(context.Background(), &Request{Line: "GET /anything HTTP/1.1"})
	require.NoError(t, err)
	require.Equal(t, StatusNotFound, resp.Status)
	require.Empty(t, resp.Body)
}

func TestNewFileMux_Routes(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hello.html"), []byte("hello page"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "404.html"), []byte("missing page"), 0o644))

	m := NewFileMux(dir, 0)

	resp, err := m.Serve(context.Background(), &Request{Line: "GET / HTTP/1.1"})
	require.NoError(t, err)
	require.Equal(t, StatusOK, resp.Status)
	require.Equal(t, "hello page", string(resp.Body))

	resp, err = m.Serve(context.Background(), &Request{Line: "GET /sleep HTTP/1.1"})
	require.NoError(t, err)
	require.Equal(t, StatusOK, resp.Status)
	require.Equal(t, "hello page", string(resp.Body))

	resp, err = m.Serve(context.Background(), &Request{Line: "GET /missing HTTP/1.1"})
	require.NoError(t, err)
	require.Equal(t, StatusNotFound, resp.Status)
	require.Equal(t, "missing page", string(resp.Body))
}
