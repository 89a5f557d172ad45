package connector

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/url"

	"github.com/robotalks/bean.go/pkg/l1"
	"github.com/robotalks/bean.go/pkg/l1/comm"
	"github.com/robotalks/bean.go/pkg/l1/comm/mqtt"
	"github.com/robotalks/bean.go/pkg/l1/comm/stream"
	"github.com/robotalks/bean.go/pkg/l1/comm/websocket"
	"github.com/robotalks/bean.go/pkg/l1/env"
)

// Config provides common options to setup Connectors.
type Config struct {
	Ref l1.ControllerRef

	// RegistryURL specifies the URL of controller registry.
	// e.g. mqtt://host:port/topic-prefix
	// A single beand is reached directly with tcp://host:port or
	// ws://host:port/l1, where Ref.ID defaults to host:port.
	RegistryURL string
}

var defaultConfig = Config{
	Ref: l1.ControllerRef{Type: l1.DefaultControllerType},
}

func init() {
	defaultConfig.Ref.Type = env.Getenv(env.EnvType, defaultConfig.Ref.Type)
	defaultConfig.Ref.ID = env.Getenv(env.EnvID, defaultConfig.Ref.ID)
	defaultConfig.RegistryURL = env.Getenv(env.EnvRegistryURL,
		env.Getenv(env.EnvMQTTURL, env.DefaultMQTTURL))
}

// SetupFlags sets up command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Ref.Type, "bean-type", defaultConfig.Ref.Type, "Controller type to connect.")
	flag.StringVar(&defaultConfig.Ref.ID, "bean-id", defaultConfig.Ref.ID, "Controller ID to connect.")
	flag.StringVar(&defaultConfig.RegistryURL, "bean-reg", defaultConfig.RegistryURL, "Controller registry URL.")
}

// Default gets the default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// NewConnector creates a Connector using current config.
// Discovery is limited to Ref.Type if set.
func (c *Config) NewConnector() (l1.Connector, error) {
	parsedURL, err := url.Parse(c.RegistryURL)
	if err != nil {
		return nil, fmt.Errorf("invalid registry URL: %v", err)
	}
	switch parsedURL.Scheme {
	case "mqtt", "mqtts":
		connector, err := mqtt.NewConnector(c.RegistryURL)
		if err != nil {
			return nil, err
		}
		connector.Type = c.Ref.Type
		return connector, nil
	case "tcp":
		return c.direct(parsedURL, func(ctx context.Context) (comm.PacketConn, error) {
			return stream.Dial(ctx, parsedURL.Host)
		}), nil
	case "ws", "wss":
		return c.direct(parsedURL, func(ctx context.Context) (comm.PacketConn, error) {
			return websocket.Dial(ctx, c.RegistryURL)
		}), nil
	default:
		return nil, fmt.Errorf("unknown registry URL scheme: %q", parsedURL.Scheme)
	}
}

func (c *Config) direct(u *url.URL, dial comm.DialFunc) *comm.DirectConnector {
	ref := c.Ref
	if ref.Type == "" {
		ref.Type = l1.DefaultControllerType
	}
	if ref.ID == "" {
		ref.ID = u.Host
	}
	return &comm.DirectConnector{
		Info: l1.ControllerInfo{
			Ref:  ref,
			Meta: l1.ControllerMeta{Description: u.String()},
		},
		Dial: dial,
	}
}

// MustNewConnector creates a Connector and fails on error.
func (c *Config) MustNewConnector() l1.Connector {
	conn, err := c.NewConnector()
	if err != nil {
		log.Fatalln(err)
	}
	return conn
}

// Connect directly connects to L1 controller.
// The ID can be omitted with a tcp or ws URL.
func (c *Config) Connect(ctx context.Context) (l1.ControllerConn, error) {
	connector, err := c.NewConnector()
	if err != nil {
		return nil, err
	}
	ref := c.Ref
	if direct, ok := connector.(*comm.DirectConnector); ok {
		ref = direct.Info.Ref
	}
	if !ref.IsValid() {
		return nil, fmt.Errorf("controller type and id must be specified")
	}
	return connector.Connect(ctx, ref)
}
