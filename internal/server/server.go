package server

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/eternalApril/moonresp/internal/resp"
)

// Server accepts TCP clients and speaks RESP2 with each of them
type Server struct {
	engine *Engine
	logger *zap.Logger
	opts   []resp.Option
	wg     sync.WaitGroup

	mu      sync.Mutex
	conns   map[net.Conn]struct{}
	closing bool
}

// New creates a Server. opts tune the per-connection decoder and encoder
func New(engine *Engine, logger *zap.Logger, opts ...resp.Option) *Server {
	return &Server{
		engine: engine,
		logger: logger,
		opts:   opts,
		conns:  make(map[net.Conn]struct{}),
	}
}

// Serve accepts connections until ctx is cancelled or the listener is closed.
// Cancelling ctx also closes every open connection, idle ones included
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	go func() {
		<-ctx.Done()
		listener.Close() //nolint:errcheck
		s.closeConns()
	}()

	for {
		conn, err := listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			s.logger.Error("accept error", zap.Error(err))
			continue
		}

		if !s.track(conn) {
			conn.Close() //nolint:errcheck
			continue
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer s.untrack(conn)
			s.handleConnection(conn)
		}()
	}
}

// track registers conn as open. It reports false once the server is closing
func (s *Server) track(conn net.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closing {
		return false
	}
	s.conns[conn] = struct{}{}
	return true
}

func (s *Server) untrack(conn net.Conn) {
	s.mu.Lock()
	delete(s.conns, conn)
	s.mu.Unlock()
}

// closeConns closes every open connection, unblocking their pending reads
func (s *Server) closeConns() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closing = true
	for conn := range s.conns {
		conn.Close() //nolint:errcheck
	}
}

// Wait blocks until every connection has finished or timeout elapses.
// It reports whether all connections finished
func (s *Server) Wait(timeout time.Duration) bool {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}

// handleConnection handles a connection for a single user
func (s *Server) handleConnection(conn net.Conn) {
	peer := NewPeer(conn, s.opts...)

	if s.logger.Core().Enabled(zap.DebugLevel) {
		s.logger.Debug("client connected", zap.String("addr", peer.Addr()))
	}

	defer func() {
		peer.Close() //nolint:errcheck
		if s.logger.Core().Enabled(zap.DebugLevel) {
			s.logger.Debug("client disconnected", zap.String("addr", peer.Addr()))
		}
	}()

	for {
		req, err := peer.Read()
		if err != nil {
			switch {
			case errors.Is(err, resp.ErrEOF), errors.Is(err, net.ErrClosed):
			case errors.Is(err, resp.ErrIO):
				s.logger.Warn("read command failed", zap.Error(err))
			default:
				// the stream position is unknown after a malformed frame, so reply and hang up
				s.logger.Warn("protocol error", zap.String("addr", peer.Addr()), zap.Error(err))
				peer.Write(resp.MakeError("ERR Protocol error: " + err.Error())) //nolint:errcheck
			}
			return
		}

		name, args, err := resp.ParseCommand(req)
		if err != nil {
			if err = peer.Write(resp.MakeError("ERR " + err.Error())); err != nil {
				return
			}
			continue
		}

		result := s.engine.Execute(name, args)

		if err = peer.Write(result); err != nil {
			s.logger.Error("error writing response", zap.Error(err))
			return
		}

		if name == "QUIT" {
			return
		}
	}
}
