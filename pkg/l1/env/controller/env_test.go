package controller

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/bean.go/pkg/l1"
)

func TestNewEnv(t *testing.T) {
	conf := NewConfig()
	conf.Info.Ref = l1.ControllerRef{Type: l1.DefaultControllerType, ID: "b1"}
	conf.MQTTBrokerURL = ""
	_, err := conf.NewEnv()
	require.Error(t, err)

	conf.TCPAddr = "127.0.0.1:0"
	conf.WebsocketAddr = "127.0.0.1:0"
	e, err := conf.NewEnv()
	require.NoError(t, err)
	require.Len(t, e.Servers, 2)
	require.Zero(t, e.Registrar.Len())
	require.Equal(t, e.Registrar, e.Sessions.Mux)

	conf.MQTTBrokerURL = "mqtt://localhost:1883/bean/"
	e, err = conf.NewEnv()
	require.NoError(t, err)
	require.Equal(t, 1, e.Registrar.Len())
	require.Equal(t, []string{conf.MQTTBrokerURL}, e.RegistryURLs)

	conf.Info.Ref.ID = ""
	_, err = conf.NewEnv()
	require.Error(t, err)
}

func TestSetControllerType(t *testing.T) {
	saved := defaultConfig
	defer func() { defaultConfig = saved }()
	SetControllerType("", l1.ControllerMeta{Description: "desk"})
	require.Equal(t, l1.DefaultControllerType, Default().Info.Ref.Type)
	require.Equal(t, "desk", NewConfig().Info.Meta.Description)
}
