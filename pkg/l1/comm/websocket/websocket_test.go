package websocket_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	fx "github.com/robotalks/bean.go/pkg/framework"
	"github.com/robotalks/bean.go/pkg/l1/comm"
	"github.com/robotalks/bean.go/pkg/l1/comm/websocket"
	"github.com/robotalks/bean.go/pkg/l1/msgs"
)

func TestSessionOverWebsocket(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	mux := &comm.RegistrarMux{}
	server := fx.NewLoop()
	server.Interval = 5 * time.Millisecond
	server.Add(&comm.UnsupportedCommands{})
	go server.Run(ctx)

	srv := websocket.NewServer("", &comm.Sessions{Mux: mux})
	ts := httptest.NewServer(srv.Handler(server.WithLoopCtl(ctx)))
	defer ts.Close()

	rw, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(ts.URL, "http"))
	require.NoError(t, err)
	var tooLarge *comm.PacketTooLargeError
	require.True(t, errors.As(rw.WritePacket(make([]byte, comm.MaxPacketSize+1)), &tooLarge))

	conn := &comm.ControllerConn{}
	conn.Init(rw)
	defer conn.Close()
	client := fx.NewLoop()
	client.Interval = 5 * time.Millisecond
	client.Add(conn)
	go client.Run(ctx)

	_, err = conn.Do(ctx, &msgs.LedQuery{})
	require.EqualError(t, err, msgs.ErrUnsupportedCommand.Error())
	require.Equal(t, 1, mux.Len())

	status := &msgs.BeanStatus{}
	status.Name, status.PowerState = "Bean", "asleep"
	require.NoError(t, mux.SendEvent(ctx, status))
	deadline := time.Now().Add(2 * time.Second)
	for {
		if got, ok := conn.Status(); ok {
			require.Equal(t, "asleep", got.PowerState)
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("status not received")
		}
		time.Sleep(time.Millisecond)
	}
}
