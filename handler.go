package httpserver

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"
)

// Status lines written verbatim on the wire.
const (
	StatusOK       = "HTTP/1.1 200 OK"
	StatusNotFound = "HTTP/1.1 404 NOT FOUND"
)

// Request is a single parsed request line plus the metadata kept about the
// connection it arrived on.
type Request struct {
	// Id is a ULID assigned when the connection is accepted.
	Id string

	// Line is the raw request line with the trailing CRLF stripped.
	Line string

	RemoteAddr string
	ReceivedAt time.Time
}

// Response is a status line plus a verbatim body.
type Response struct {
	Status string
	Body   []byte
}

// WriteTo writes the response as a status line, a Content-Length header
// matching the body's byte length, a blank line, and the body.
func (r *Response) WriteTo(w io.Writer) (int64, error) {
	n, err := fmt.Fprintf(w, "%s\r\nContent-Length: %d\r\n\r\n%s", r.Status, len(r.Body), r.Body)
	return int64(n), err
}

// A Handler turns a request into a response.
//
// Serve should return a non-nil response or a non-nil error. An error
// abandons the connection the request arrived on; nothing is written back.
type Handler interface {
	Serve(context.Context, *Request) (*Response, error)
}

// The HandlerFunc type is an adapter to allow the use of
// ordinary functions as a Handler. If f is a function
// with the appropriate signature, HandlerFunc(f) is a
// Handler that calls f.
type HandlerFunc func(context.Context, *Request) (*Response, error)

// Serve calls fn(ctx, req)
func (fn HandlerFunc) Serve(ctx context.Context, req *Request) (*Response, error) {
	return fn(ctx, req)
}

// FileHandler serves the full contents of one file under the given status
// line. The file is read on every request, so edits show up without a
// restart.
func FileHandler(status, path string) Handler {
	return HandlerFunc(func(ctx context.Context, req *Request) (*Response, error) {
		contents, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("cannot read content file %s: %w", path, err)
		}
		return &Response{Status: status, Body: contents}, nil
	})
}

// DelayHandler waits for d on the worker running the request, then
// delegates to next.
func DelayHandler(d time.Duration, next Handler) Handler {
	return HandlerFunc(func(ctx context.Context, req *Request) (*Response, error) {
		time.Sleep(d)
		return next.Serve(ctx, req)
	})
}
