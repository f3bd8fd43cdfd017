package comms

import (
	"bufio"
	"context"
	"errors"
	"net"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/danmuck/slotbox/internal/logging"
	"github.com/danmuck/slotbox/internal/object"
	"github.com/danmuck/slotbox/internal/stream"
)

var ErrNoListenAddr = errors.New("comms: listen address required")

// Dispatcher executes one decoded request and writes the response
// bytes, returning the final status for observers.
type Dispatcher interface {
	Dispatch(in stream.DataIn, out stream.DataOut) object.Status
}

// ServerConfig configures the TCP command endpoint.
type ServerConfig struct {
	ListenAddr  string
	ReadTimeout time.Duration
	MaxLineLen  int
}

func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		ListenAddr:  "127.0.0.1:21314",
		ReadTimeout: 5 * time.Minute,
		MaxLineLen:  4096,
	}
}

// Server accepts TCP connections and runs one hex-framed request per
// line against the dispatcher. A connection failure ends that session
// only.
type Server struct {
	cfg     ServerConfig
	disp    Dispatcher
	clients atomic.Int64

	mu sync.Mutex
	ln net.Listener
}

func NewServer(cfg ServerConfig, disp Dispatcher) *Server {
	if cfg.MaxLineLen <= 0 {
		cfg.MaxLineLen = DefaultServerConfig().MaxLineLen
	}
	return &Server{cfg: cfg, disp: disp}
}

// Addr returns the bound listen address, or nil before Serve binds.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Serve listens and accepts until ctx is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	addr := strings.TrimSpace(s.cfg.ListenAddr)
	if addr == "" {
		return ErrNoListenAddr
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	defer ln.Close()
	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()
	logging.Infof("comms.Server.Serve listening addr=%q", ln.Addr())

	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				logging.Infof("comms.Server.Serve shutdown")
				return nil
			}
			return err
		}
		go s.handleConn(conn)
	}
}

// handleConn runs one request line per iteration until the peer goes
// away or a write fails.
func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()
	remote := conn.RemoteAddr().String()
	logging.Infof("comms.Server client connected remote=%q active=%d", remote, s.clients.Add(1))
	defer func() {
		logging.Infof("comms.Server client disconnected remote=%q active=%d", remote, s.clients.Add(-1))
	}()

	sc := bufio.NewScanner(conn)
	sc.Buffer(make([]byte, 0, 256), s.cfg.MaxLineLen)
	w := bufio.NewWriter(conn)
	for {
		if s.cfg.ReadTimeout > 0 {
			_ = conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
		}
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				logging.Warnf("comms.Server read remote=%q err=%v", remote, err)
			}
			return
		}

		out := NewHexOut(w)
		st := s.disp.Dispatch(NewHexIn(sc.Bytes()), out)
		out.Annotate(st.String())
		if err := out.EndResponse(); err != nil {
			logging.Warnf("comms.Server write remote=%q err=%v", remote, err)
			return
		}
		if err := w.Flush(); err != nil {
			logging.Warnf("comms.Server flush remote=%q err=%v", remote, err)
			return
		}
	}
}
