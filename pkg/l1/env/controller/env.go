package controller

import (
	"flag"
	"fmt"
	"log"

	fx "github.com/robotalks/bean.go/pkg/framework"
	"github.com/robotalks/bean.go/pkg/l1"
	"github.com/robotalks/bean.go/pkg/l1/comm"
	"github.com/robotalks/bean.go/pkg/l1/comm/mqtt"
	"github.com/robotalks/bean.go/pkg/l1/comm/stream"
	"github.com/robotalks/bean.go/pkg/l1/comm/websocket"
	"github.com/robotalks/bean.go/pkg/l1/env"
)

// Config provides common options to setup an env for L1 controllers.
type Config struct {
	Info l1.ControllerInfo

	// MQTTBrokerURL specifies the MQTT broker to use.
	// e.g. mqtt://host:port/topic-prefix
	MQTTBrokerURL string
	// TCPAddr serves length-prefixed L1 packets over TCP if not empty.
	TCPAddr string
	// WebsocketAddr serves L1 packets over websocket if not empty.
	WebsocketAddr string
}

var defaultConfig = Config{
	Info: l1.ControllerInfo{
		Ref: l1.ControllerRef{Type: l1.DefaultControllerType},
	},
}

func init() {
	defaultConfig.MQTTBrokerURL = env.Getenv(env.EnvMQTTURL, env.DefaultMQTTURL)
	defaultConfig.Info.Ref.ID = env.Getenv(env.EnvID, "")
	if defaultConfig.Info.Ref.ID == "" {
		defaultConfig.Info.Ref.ID = env.MachineID()
	}
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Info.Ref.Type, "type", defaultConfig.Info.Ref.Type, "Controller type")
	flag.StringVar(&defaultConfig.Info.Ref.ID, "id", defaultConfig.Info.Ref.ID, "Controller ID")
	flag.StringVar(&defaultConfig.MQTTBrokerURL, "mqtt", defaultConfig.MQTTBrokerURL, "MQTT broker URL, empty to disable")
	flag.StringVar(&defaultConfig.TCPAddr, "listen-tcp", defaultConfig.TCPAddr, "Serve L1 over TCP on address")
	flag.StringVar(&defaultConfig.WebsocketAddr, "listen-ws", defaultConfig.WebsocketAddr, "Serve L1 over websocket on address")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// SetControllerType should be called in init with basic info about the controller.
// An empty typ keeps l1.DefaultControllerType.
func SetControllerType(typ string, meta l1.ControllerMeta) {
	if typ == "" {
		typ = l1.DefaultControllerType
	}
	defaultConfig.Info.Ref.Type = typ
	defaultConfig.Info.Meta = meta
}

// Env is the env for L1 controllers.
type Env struct {
	Config       *Config
	RegistryURLs []string
	Registrar    *comm.RegistrarMux
	Sessions     *comm.Sessions
	Servers      []fx.Runnable
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// NewEnv creates Env from config.
func (c *Config) NewEnv() (*Env, error) {
	if !c.Info.Ref.IsValid() {
		return nil, fmt.Errorf("controller type and id must be specified")
	}
	e := &Env{
		Config:    c,
		Registrar: &comm.RegistrarMux{},
	}
	e.Sessions = &comm.Sessions{Mux: e.Registrar}
	if c.MQTTBrokerURL != "" {
		reg, err := mqtt.NewRegistrar(c.MQTTBrokerURL, c.Info)
		if err != nil {
			return nil, fmt.Errorf("create MQTT registrar error: %v", err)
		}
		e.Registrar.Add(reg)
		e.RegistryURLs = append(e.RegistryURLs, c.MQTTBrokerURL)
	}
	if c.TCPAddr != "" {
		e.Servers = append(e.Servers, fx.NamedRun("tcp", stream.NewServer(c.TCPAddr, e.Sessions)))
	}
	if c.WebsocketAddr != "" {
		e.Servers = append(e.Servers, fx.NamedRun("websocket", websocket.NewServer(c.WebsocketAddr, e.Sessions)))
	}
	if e.Registrar.Len() == 0 && len(e.Servers) == 0 {
		return nil, fmt.Errorf("at least one registrar or listener is required")
	}
	return e, nil
}

// MustNewEnv creates Env and fails on error.
func (c *Config) MustNewEnv() *Env {
	e, err := c.NewEnv()
	if err != nil {
		log.Fatalln(err)
	}
	return e
}

// AddToLoop adds controllers/runners to loop.
func (e *Env) AddToLoop(loop *fx.Loop) {
	loop.Add(e.Registrar)
	loop.AddRunnable(e.Servers...)
	loop.Add(&comm.UnsupportedCommands{})
}
