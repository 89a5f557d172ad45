package comm

import (
	"context"

	"github.com/golang/glog"

	fx "github.com/robotalks/bean.go/pkg/framework"
)

// Sessions registers each connected client as a Registrar of Mux, so
// the controller receives its commands and it receives all events.
type Sessions struct {
	Mux *RegistrarMux
}

// Serve runs a client session until rw fails or ctx is done. ctx must
// carry the loop control, as the ctx of a loop Runnable does.
func (s *Sessions) Serve(ctx context.Context, name string, rw PacketReadWriter) error {
	reg := &Registrar{}
	reg.Init(rw)
	s.Mux.Add(reg)
	defer s.Mux.Remove(reg)
	glog.Infof("l1: client %s connected", name)
	err := fx.RunWithContextCloser(ctx, reg, func() error { return reg.Run(ctx) })
	glog.Infof("l1: client %s disconnected: %v", name, err)
	return err
}
