package websocket

import (
	"context"
	"net/http"

	"github.com/golang/glog"
	"golang.org/x/net/websocket"

	fx "github.com/robotalks/bean.go/pkg/framework"
	"github.com/robotalks/bean.go/pkg/l1/comm"
)

// DefaultPath is where the websocket endpoint is served.
const DefaultPath = "/l1"

// Server accepts L1 clients over websocket.
type Server struct {
	Addr     string
	Path     string
	Sessions *comm.Sessions
}

// NewServer creates a Server.
func NewServer(addr string, sessions *comm.Sessions) *Server {
	return &Server{Addr: addr, Path: DefaultPath, Sessions: sessions}
}

// Handler creates the http.Handler serving sessions with ctx.
func (s *Server) Handler(ctx context.Context) http.Handler {
	return websocket.Handler(func(conn *websocket.Conn) {
		s.Sessions.Serve(ctx, conn.Request().RemoteAddr, New(conn))
	})
}

// Run implements Runnable.
func (s *Server) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	path := s.Path
	if path == "" {
		path = DefaultPath
	}
	mux.Handle(path, s.Handler(ctx))
	srv := &http.Server{Addr: s.Addr, Handler: mux}
	glog.Infof("l1: websocket listening on %s%s", s.Addr, path)
	return fx.RunWithContextCloser(ctx, srv, srv.ListenAndServe)
}

// AddToLoop implements LoopAdder.
func (s *Server) AddToLoop(loop *fx.Loop) {
	loop.AddRunnable(s)
}
