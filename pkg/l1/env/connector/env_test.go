package connector

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/bean.go/pkg/l1"
	"github.com/robotalks/bean.go/pkg/l1/comm"
	"github.com/robotalks/bean.go/pkg/l1/comm/mqtt"
)

func TestNewConnectorSchemes(t *testing.T) {
	conf := &Config{Ref: l1.ControllerRef{Type: "bean"}}

	conf.RegistryURL = "mqtt://localhost:1883/bean"
	c, err := conf.NewConnector()
	require.NoError(t, err)
	require.IsType(t, &mqtt.Connector{}, c)

	conf.RegistryURL = "tcp://10.0.0.2:3033"
	c, err = conf.NewConnector()
	require.NoError(t, err)
	direct, ok := c.(*comm.DirectConnector)
	require.True(t, ok)
	require.Equal(t, l1.ControllerRef{Type: "bean", ID: "10.0.0.2:3033"}, direct.Info.Ref)
	infos, err := direct.Discover(context.Background())
	require.NoError(t, err)
	require.Equal(t, []l1.ControllerInfo{direct.Info}, infos)

	conf.RegistryURL = "ws://beand.local:8080/l1"
	conf.Ref.ID = "b1"
	c, err = conf.NewConnector()
	require.NoError(t, err)
	require.Equal(t, "bean/b1", c.(*comm.DirectConnector).Info.Ref.Name())
	require.Equal(t, "ws://beand.local:8080/l1", c.(*comm.DirectConnector).Info.Meta.Description)

	conf.RegistryURL = "udp://localhost:1"
	_, err = conf.NewConnector()
	require.Error(t, err)
}
