package stream

import (
	"context"
	"net"

	"github.com/golang/glog"

	fx "github.com/robotalks/bean.go/pkg/framework"
	"github.com/robotalks/bean.go/pkg/l1/comm"
)

// Server accepts L1 clients over TCP.
type Server struct {
	Addr     string
	Sessions *comm.Sessions

	addrCh chan net.Addr
}

// NewServer creates a Server listening on addr.
func NewServer(addr string, sessions *comm.Sessions) *Server {
	return &Server{Addr: addr, Sessions: sessions, addrCh: make(chan net.Addr, 1)}
}

// Listening returns the listening address once Run has started.
func (s *Server) Listening() <-chan net.Addr {
	return s.addrCh
}

// Run implements Runnable.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return err
	}
	glog.Infof("l1: tcp listening on %s", ln.Addr())
	select {
	case s.addrCh <- ln.Addr():
	default:
	}
	return fx.RunWithContextCloser(ctx, ln, func() error {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return err
			}
			go s.Sessions.Serve(ctx, conn.RemoteAddr().String(), New(conn))
		}
	})
}

// AddToLoop implements LoopAdder.
func (s *Server) AddToLoop(loop *fx.Loop) {
	loop.AddRunnable(s)
}
