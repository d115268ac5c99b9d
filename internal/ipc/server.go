package ipc

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"sync"

	"whisperdict/internal/faults"
	"whisperdict/internal/logging"
)

// Handler processes one decoded request and produces the response envelope.
// A returned error is converted into an error response for the client; it
// never tears down the server.
type Handler func(ctx context.Context, msg Message) (Message, error)

// Server accepts connections on a Unix domain socket and answers exactly one
// request per connection.
type Server struct {
	path     string
	logger   *slog.Logger
	listener net.Listener

	mu       sync.Mutex
	handlers map[MessageType]Handler

	ctx      context.Context
	cancel   context.CancelFunc
	acceptWG sync.WaitGroup
}

// NewServer binds the server to the socket path, replacing any stale socket
// file and creating parent directories as needed.
func NewServer(ctx context.Context, path string, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = logging.NewNop()
	}

	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("remove existing socket: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create socket directory: %w", err)
		}
	}

	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen on socket: %w", err)
	}

	serverCtx, cancel := context.WithCancel(ctx)
	return &Server{
		path:     path,
		logger:   logging.NewComponentLogger(logger, "ipc"),
		listener: listener,
		handlers: make(map[MessageType]Handler),
		ctx:      serverCtx,
		cancel:   cancel,
	}, nil
}

// Handle registers the handler invoked for the given request type.
func (s *Server) Handle(t MessageType, h Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[t] = h
}

// Serve starts accepting connections until the server is closed.
func (s *Server) Serve() {
	s.logger.Debug("IPC server listening", logging.String("socket", s.path))
	s.acceptWG.Add(1)
	go func() {
		defer s.acceptWG.Done()
		for {
			conn, err := s.listener.Accept()
			if err != nil {
				select {
				case <-s.ctx.Done():
					return
				default:
				}
				s.logger.Warn("accept failed",
					logging.Error(err),
					logging.String(logging.FieldEventType, "ipc_accept_failed"))
				continue
			}
			go s.handleConn(conn)
		}
	}()
}

// Close stops accepting connections and removes the socket file. Connections
// already accepted finish their single exchange on their own.
func (s *Server) Close() {
	s.cancel()
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.acceptWG.Wait()
	if err := os.RemoveAll(s.path); err != nil {
		s.logger.Warn("failed to remove socket",
			logging.String("socket", s.path),
			logging.Error(err),
			logging.String(logging.FieldEventType, "ipc_socket_cleanup_failed"))
	}
}

// Path returns the bound socket path.
func (s *Server) Path() string {
	return s.path
}

// handleConn performs the one-request, one-response exchange. Decode
// failures and handler faults are answered with an error response rather
// than a silent close.
func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()

	var response Message
	request, err := ReadMessage(conn)
	if err != nil {
		s.logger.Debug("request decode failed", logging.Error(err))
		response = NewErrorMessage(err.Error(), faults.CodeGeneric)
	} else {
		response = s.dispatch(request)
	}

	if err := WriteMessage(conn, response); err != nil {
		s.logger.Debug("response write failed", logging.Error(err))
	}
}

func (s *Server) dispatch(request Message) (response Message) {
	s.mu.Lock()
	handler, ok := s.handlers[request.Type]
	s.mu.Unlock()
	if !ok {
		return NewErrorMessage(
			fmt.Sprintf("%s handler not implemented", request.Type),
			faults.CodeNotImplemented)
	}

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("handler panicked",
				logging.String("type", string(request.Type)),
				logging.Any("panic", r))
			response = NewErrorMessage(fmt.Sprintf("handler error: %v", r), faults.CodeGeneric)
		}
	}()

	reply, err := handler(s.ctx, request)
	if err != nil {
		return NewErrorMessage(err.Error(), faults.Code(err))
	}
	return reply
}
