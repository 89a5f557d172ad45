package comm

import (
	"context"
	"fmt"

	"github.com/robotalks/bean.go/pkg/l1"
)

// DialFunc opens a packet connection to a controller serving Sessions.
type DialFunc func(context.Context) (PacketConn, error)

// DirectConnector connects to a single controller at a known address,
// without a registry. Discover reports Info only.
type DirectConnector struct {
	Info l1.ControllerInfo
	Dial DialFunc
}

// Discover implements Connector.
func (c *DirectConnector) Discover(ctx context.Context) ([]l1.ControllerInfo, error) {
	return []l1.ControllerInfo{c.Info}, nil
}

// Connect implements Connector. ref must be Info.Ref, an empty ID
// matches as well.
func (c *DirectConnector) Connect(ctx context.Context, ref l1.ControllerRef) (l1.ControllerConn, error) {
	if ref.Type != c.Info.Ref.Type || (ref.ID != "" && ref.ID != c.Info.Ref.ID) {
		return nil, fmt.Errorf("unknown controller %s, only %s is reachable", ref.Name(), c.Info.Ref.Name())
	}
	rw, err := c.Dial(ctx)
	if err != nil {
		return nil, err
	}
	conn := &ControllerConn{}
	conn.Init(rw)
	return conn, nil
}
