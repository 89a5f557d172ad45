package main

//go-build: CGO_ENABLED=0

import (
	"context"
	"flag"
	"log"

	"github.com/golang/glog"

	"github.com/robotalks/bean.go/pkg/bean"
	"github.com/robotalks/bean.go/pkg/config"
	"github.com/robotalks/bean.go/pkg/controller"
	"github.com/robotalks/bean.go/pkg/coproc"
	"github.com/robotalks/bean.go/pkg/framework"
	"github.com/robotalks/bean.go/pkg/hal/sim"
	"github.com/robotalks/bean.go/pkg/l1"
	"github.com/robotalks/bean.go/pkg/l1/env"
	envctl "github.com/robotalks/bean.go/pkg/l1/env/controller"
	"github.com/robotalks/bean.go/pkg/link"
)

var (
	configFile string
	serialDev  = env.Getenv(env.EnvSerial, "")
	simMode    bool
)

func init() {
	envctl.SetControllerType(l1.DefaultControllerType, l1.ControllerMeta{Description: "Bean"})
	envctl.SetupFlags()
	flag.StringVar(&configFile, "config", configFile, "YAML configuration file.")
	flag.StringVar(&serialDev, "serial", serialDev, "Serial device of the co-processor.")
	flag.BoolVar(&simMode, "sim", simMode, "Use a simulated co-processor.")
}

// loadConfig merges the config file, the environment and the flags.
// Flags set on the command line win over the file.
func loadConfig() (*config.Config, *envctl.Config) {
	cfg := config.Default()
	if configFile != "" {
		var err error
		if cfg, err = config.Load(configFile); err != nil {
			log.Fatalln(err)
		}
	}
	envConf := envctl.NewConfig()
	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if set["serial"] || cfg.Serial.Device == "" {
		cfg.Serial.Device = serialDev
	}
	if set["sim"] {
		cfg.Serial.Sim = simMode
	}
	if !set["mqtt"] && cfg.MQTTURL != "" {
		envConf.MQTTBrokerURL = cfg.MQTTURL
	}
	cfg.MQTTURL = envConf.MQTTBrokerURL
	if !set["listen-tcp"] && cfg.Listen.TCP != "" {
		envConf.TCPAddr = cfg.Listen.TCP
	}
	cfg.Listen.TCP = envConf.TCPAddr
	if !set["listen-ws"] && cfg.Listen.Websocket != "" {
		envConf.WebsocketAddr = cfg.Listen.Websocket
	}
	cfg.Listen.Websocket = envConf.WebsocketAddr
	if !set["id"] && cfg.Controller.ID != "" {
		envConf.Info.Ref.ID = cfg.Controller.ID
	}
	if cfg.Controller.Description != "" {
		envConf.Info.Meta.Description = cfg.Controller.Description
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalln(err)
	}
	return cfg, envConf
}

// openLink connects the co-processor and returns the Runnable driving
// the link.
func openLink(cfg *config.Config, board *sim.Board) (*link.Serial, framework.Runnable) {
	if cfg.Serial.Sim {
		pair := coproc.NewPair()
		pair.Sim.Handshake, pair.Sim.Scheduler = board, board
		glog.Info("using simulated co-processor")
		return pair.Serial, pair
	}
	serial, port, err := link.Dial(cfg.Serial.Device, cfg.Serial.Baud)
	if err != nil {
		log.Fatalf("open %s: %v", cfg.Serial.Device, err)
	}
	glog.Infof("co-processor on %s at %d baud", cfg.Serial.Device, cfg.Serial.Baud)
	return serial, framework.RunnableFunc(func(ctx context.Context) error {
		return framework.RunWithContextCloser(ctx, port, func() error {
			return serial.Client.Run(ctx)
		})
	})
}

func main() {
	flag.Parse()
	defer glog.Flush()

	cfg, envConf := loadConfig()
	e := envConf.MustNewEnv()

	board := sim.NewBoard(false)
	serial, linkRunner := openLink(cfg, board)
	serial.Timeout = cfg.Link.Timeout

	ctl := controller.New(bean.New(serial, board), e.Registrar)
	ctl.FlushInterval = cfg.Midi.FlushInterval
	ctl.PollInterval = cfg.Midi.PollInterval

	glog.Infof("controller %s, registries %v", envConf.Info.Ref.Name(), e.RegistryURLs)
	loop := framework.NewLoop().Add(e, ctl)
	loop.AddRunnable(framework.Essential(framework.NamedRun("link", linkRunner)))
	runner := framework.NewRunner().HandleSignals()
	err := loop.Run(runner.Context)
	for _, task := range loop.Tasks() {
		glog.Infof("%s: %s %v", task.Name, task.State, task.Err)
	}
	if err != nil && err != context.Canceled {
		glog.Flush()
		log.Fatalln(err)
	}
}
