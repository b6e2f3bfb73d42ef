package httpserver

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/semsion/go-multithreaded-http-server/pool"
)

// Server accepts TCP connections and hands each one to a fixed-size worker
// pool as a single fire-and-forget job. One connection is one job: read the
// request line, route it, write the response, close.
type Server struct {
	mux    *Mux
	pool   pool.Pool
	store  *Store
	logger *slog.Logger

	addr string

	// mu guards listener, which is set by Listen and read by Shutdown
	mu       sync.Mutex
	listener net.Listener

	shutdown sync.Once
}

type Config struct {
	// Addr is the listen address, e.g. "127.0.0.1:7878".
	Addr string

	// Workers is the fixed size of the worker pool; 0 falls back to 4.
	Workers int

	// DbPath enables the sqlite access archive when non-empty and Store is
	// nil.
	DbPath string

	Mux    *Mux
	Store  *Store
	Logger *slog.Logger
}

func NewServer(cfg *Config) (*Server, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(os.Stdout, nil))
	}

	if cfg.Mux == nil {
		cfg.Mux = NewMux()
	}

	if cfg.Workers == 0 {
		cfg.Workers = 4
	}

	if cfg.Store == nil && cfg.DbPath != "" {
		s, err := NewStore(cfg.DbPath, cfg.Logger)
		if err != nil {
			return nil, err
		}
		cfg.Store = s
	}

	s := &Server{
		mux:    cfg.Mux,
		store:  cfg.Store,
		logger: cfg.Logger,
		addr:   cfg.Addr,
		pool:   pool.NewWorkerPool(cfg.Workers, cfg.Logger),
	}

	return s, nil
}

// Listen binds the configured address. Calling it before Serve lets the
// caller learn the bound address when the config used port 0.
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("cannot listen on %s: %w", s.addr, err)
	}

	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	s.logger.Info(fmt.Sprintf("listening on %s", ln.Addr()))
	return nil
}

// Addr returns the bound listen address, or "" before Listen.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Serve accepts connections until the listener is closed by Shutdown,
// submitting one job per connection. Timeout errors from Accept are
// retried with exponential backoff.
func (s *Server) Serve() error {
	s.mu.Lock()
	ln := s.listener
	s.mu.Unlock()

	if ln == nil {
		if err := s.Listen(); err != nil {
			return err
		}
		s.mu.Lock()
		ln = s.listener
		s.mu.Unlock()
	}

	var delay time.Duration
	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				// Shutdown closed the listener
				return nil
			}

			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				if delay == 0 {
					delay = 5 * time.Millisecond
				} else {
					delay *= 2
				}
				if delay > time.Second {
					delay = time.Second
				}
				s.logger.Error(fmt.Sprintf("accept failed: %v; retrying in %v", err, delay))
				time.Sleep(delay)
				continue
			}

			return err
		}
		delay = 0

		if submitErr := s.pool.Submit(func() { s.handleConn(conn) }); submitErr != nil {
			// the pool has been stopped under us; drop the connection
			s.logger.Error(submitErr.Error())
			conn.Close()
		}
	}
}

// handleConn is the body of one connection job. It runs on a pool worker;
// any failure is logged and abandons this connection only, the pool keeps
// serving the rest.
func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()

	req := &Request{
		Id:         ulid.Make().String(),
		RemoteAddr: conn.RemoteAddr().String(),
		ReceivedAt: time.Now(),
	}
	log := s.logger.With("request_id", req.Id)

	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		log.Error(fmt.Sprintf("cannot read request line: %v", err))
		return
	}
	req.Line = strings.TrimRight(line, "\r\n")

	resp, err := s.mux.Serve(context.Background(), req)
	if err != nil {
		log.Error(fmt.Sprintf("handler failed for %q: %v", req.Line, err))
		return
	}

	if _, err = resp.WriteTo(conn); err != nil {
		log.Error(fmt.Sprintf("cannot write response: %v", err))
		return
	}

	s.archive(req, resp, log)
}

// archive records a served request in the access log, when one is
// configured. The response has already been sent, so failures here are
// logged and swallowed.
func (s *Server) archive(req *Request, resp *Response, log *slog.Logger) {
	if s.store == nil {
		return
	}

	record := &Record{
		Id:          req.Id,
		RequestLine: req.Line,
		Status:      resp.Status,
		BodySize:    int64(len(resp.Body)),
		RemoteAddr:  req.RemoteAddr,
		ServedAt:    time.Now().Format(rfc3339Milli),
	}
	if err := s.store.Insert(context.Background(), record); err != nil {
		log.Error(fmt.Sprintf("cannot archive request: %v", err))
	}
}

// Shutdown closes the listener so no further connections are accepted,
// stops the pool (connections already queued are still served), and closes
// the archive store. It blocks until every worker has exited and is a
// no-op after the first call.
func (s *Server) Shutdown() error {
	var err error
	s.shutdown.Do(func() {
		s.logger.Info("shutting down server")

		s.mu.Lock()
		ln := s.listener
		s.mu.Unlock()

		if ln != nil {
			if closeErr := ln.Close(); closeErr != nil && err == nil {
				err = closeErr
			}
		}

		if stopErr := s.pool.Stop(); stopErr != nil && err == nil {
			err = stopErr
		}

		if s.store != nil {
			if closeErr := s.store.Close(); closeErr != nil && err == nil {
				err = closeErr
			}
		}
	})

	return err
}
