package control

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"runtime/debug"
	"sync"
	"time"

	"github.com/Norgate-AV/hotpin/internal/logger"
	"github.com/Norgate-AV/hotpin/internal/timeouts"
)

const maxConcurrentConnections = 8

// Server answers control requests accepted from a listener
type Server struct {
	handler Handler
	log     logger.LoggerInterface

	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	listener  net.Listener
	wg        sync.WaitGroup
	connSlots chan struct{}
}

func NewServer(handler Handler, log logger.LoggerInterface) *Server {
	ctx, cancel := context.WithCancel(context.Background())

	return &Server{
		handler:   handler,
		log:       logger.WithComponent(log, "control"),
		ctx:       ctx,
		cancel:    cancel,
		connSlots: make(chan struct{}, maxConcurrentConnections),
	}
}

// Serve starts accepting on l in the background. The server owns l from now on.
func (s *Server) Serve(l net.Listener) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener != nil {
		return errors.New("control server already started")
	}

	if s.ctx.Err() != nil {
		return errors.New("control server stopped")
	}

	s.listener = l
	s.wg.Add(1)
	go s.acceptLoop(l)

	s.log.Debug("Control server listening", slog.String("addr", l.Addr().String()))
	return nil
}

// Stop closes the listener and waits for in-flight requests
func (s *Server) Stop() {
	s.mu.Lock()
	s.cancel()
	l := s.listener
	s.listener = nil
	s.mu.Unlock()

	if l != nil {
		if err := l.Close(); err != nil {
			s.log.Debug("Failed to close control listener", slog.Any("error", err))
		}
	}

	s.wg.Wait()
}

func (s *Server) acceptLoop(l net.Listener) {
	defer s.wg.Done()

	consecutiveErrors := 0
	for {
		conn, err := l.Accept()
		if err != nil {
			if s.ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return
			}

			consecutiveErrors++
			if consecutiveErrors > 10 {
				s.log.Warn("Control accept failing repeatedly", slog.Any("error", err), slog.Int("count", consecutiveErrors))
				time.Sleep(500 * time.Millisecond)
			}

			continue
		}

		consecutiveErrors = 0

		select {
		case s.connSlots <- struct{}{}:
		default:
			_ = writeFrame(conn, Response{Error: "daemon busy, try again", Code: CodeFailed})
			_ = conn.Close()
			continue
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer func() { <-s.connSlots }()

			s.handleConnection(conn)
		}()
	}
}

func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(timeouts.PipeIOTimeout)); err != nil {
		s.log.Debug("Failed to set control deadline", slog.Any("error", err))
		return
	}

	raw, err := readFrame(bufio.NewReaderSize(conn, maxRequestBytes+1), maxRequestBytes)
	if errors.Is(err, io.EOF) {
		return
	}

	if err != nil {
		_ = writeFrame(conn, Response{Error: fmt.Sprintf("invalid request: %v", err), Code: CodeBadRequest})
		return
	}

	req, err := decodeRequest(raw)
	if err != nil {
		_ = writeFrame(conn, Response{Error: fmt.Sprintf("invalid request: %v", err), Code: CodeBadRequest})
		return
	}

	s.log.Debug("Control request", slog.String("command", req.Command), slog.String("title", req.Title))

	if err := writeFrame(conn, s.dispatch(req)); err != nil {
		s.log.Debug("Failed to write control response", slog.Any("error", err))
	}
}

func (s *Server) dispatch(req Request) (resp Response) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("Control handler panicked",
				slog.String("command", req.Command),
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())),
			)

			resp = Response{Error: "internal error", Code: CodeFailed}
		}
	}()

	return s.handler.Handle(req)
}
