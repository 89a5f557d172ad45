// Package sh is the interactive shell of beancli. Command sets register
// themselves with AddCmds in init.
package sh

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/abiosoft/ishell"

	fx "github.com/robotalks/bean.go/pkg/framework"
	"github.com/robotalks/bean.go/pkg/l1"
	"github.com/robotalks/bean.go/pkg/l1/comm"
	env "github.com/robotalks/bean.go/pkg/l1/env/connector"
	"github.com/robotalks/bean.go/pkg/l1/msgs"
)

// Shell provides ishell backed interactive shell.
type Shell struct {
	Interactive bool
	OutputJSON  bool
	AutoConnect bool

	Shell  *ishell.Shell
	Config *env.Config
	Loop   *ConnLoop
}

const (
	shellKey          = "$shell"
	unconnectedPrompt = "[none] > "
)

// CommandTimeout is how long DoCommand waits for a result.
const CommandTimeout = 2 * time.Second

var (
	// flags

	evalOnly   bool
	outputJSON bool

	// commands
	commands = []*ishell.Cmd{
		&DiscoverCmd,
		&ConnectCmd,
		&DisconnectCmd,
		&WatchCmd,
	}
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
}

// AddCmds is used by other commands providers during init func.
func AddCmds(cmds ...*ishell.Cmd) {
	commands = append(commands, cmds...)
}

// New creates a new shell.
func New(conf *env.Config) *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,

		Shell:  ishell.New(),
		Config: conf,
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(unconnectedPrompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// MustBeConnected wraps command func requires a connection.
func MustBeConnected(fn func(c *ishell.Context)) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		if ShellFrom(c).Loop == nil {
			c.Err(fmt.Errorf("not connected"))
			return
		}
		fn(c)
	}
}

// DoCommand runs a command, waits up to CommandTimeout and prints the
// reply with its formatter.
func DoCommand(c *ishell.Context, msg fx.Message) error {
	s := ShellFrom(c)
	if s.Loop == nil {
		err := fmt.Errorf("not connected")
		c.Err(err)
		return err
	}
	ctx, cancel := context.WithTimeout(s.Loop.Ctx, CommandTimeout)
	defer cancel()
	reply, err := s.Loop.Do(ctx, msg)
	if err == context.DeadlineExceeded {
		err = fmt.Errorf("command timeout")
	}
	if err != nil {
		c.Err(err)
		return err
	}
	if !s.OutputJSON {
		c.Println(FormatMessage(reply))
		return nil
	}
	out, err := FormatJSON(reply)
	if err != nil {
		c.Err(err)
		return err
	}
	c.Println(out)
	return nil
}

// WithAutoConnect sets AutoConnect.
func (s *Shell) WithAutoConnect(en bool) *Shell {
	s.AutoConnect = en
	return s
}

// DiscoverControllers discovers controllers.
func (s *Shell) DiscoverControllers(filter func(l1.ControllerInfo) bool) (l1.Connector, []l1.ControllerInfo, error) {
	connector, err := s.Config.NewConnector()
	if err != nil {
		return nil, nil, err
	}
	infoList, err := connector.Discover(context.TODO())
	if err != nil {
		return connector, nil, err
	}
	if filter != nil {
		items := make([]l1.ControllerInfo, 0, len(infoList))
		for _, info := range infoList {
			if filter(info) {
				items = append(items, info)
			}
		}
		infoList = items
	}
	return connector, infoList, nil
}

// SelectController discovers controllers and asks for a choice.
func (s *Shell) SelectController(filter func(l1.ControllerInfo) bool) (l1.Connector, *l1.ControllerInfo, error) {
	connector, infoList, err := s.DiscoverControllers(filter)
	if err != nil {
		return nil, nil, err
	}
	if len(infoList) == 0 {
		return connector, nil, nil
	}
	var index int
	if len(infoList) > 1 {
		if !s.Interactive {
			return nil, nil, fmt.Errorf("more than 1 controllers discovered in non-interactive mode")
		}
		items := make([]string, len(infoList))
		for n, info := range infoList {
			items[n] = FormatInfo(info)
		}
		index = s.Shell.MultiChoice(items, "Which one to connect?")
	}

	return connector, &infoList[index], nil
}

// Connect connects controller with ref. The prompt follows the power
// state reported by the Bean.
func (s *Shell) Connect(ref l1.ControllerRef) error {
	connector, err := s.Config.NewConnector()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), CommandTimeout)
	defer cancel()
	conn, err := connector.Connect(ctx, ref)
	if err != nil {
		return err
	}
	s.Disconnect()
	connLoop := NewConnLoop(ref, conn)
	connLoop.Print = func(line string) { s.Shell.Println(line) }
	connLoop.StatusChanged = func(st *msgs.BeanStatus) {
		s.Shell.SetPrompt(Prompt(ref, st))
	}
	s.Loop = connLoop
	s.Shell.SetPrompt(Prompt(ref, nil))
	go connLoop.Run()
	if _, err := connLoop.Do(ctx, &msgs.BeanStatusQuery{}); err != nil {
		s.Shell.Printf("%s: status unavailable: %v\n", ref.Name(), err)
	}
	return nil
}

// Disconnect disconnects current controller.
func (s *Shell) Disconnect() {
	if s.Loop != nil {
		s.Loop.Close()
		s.Loop = nil
		s.Shell.SetPrompt(unconnectedPrompt)
	}
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	if ref, ok := s.autoConnectRef(); ok {
		if s.Interactive {
			s.Shell.Printf("Connecting %s ...\n", ref.Name())
		}
		if err := s.Connect(ref); err != nil {
			log.Fatalf("connect %q failed: %v", ref.Name(), err)
		}
	}

	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			log.Fatalln(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		return
	}
	log.Fatalln("command expected")
}

// autoConnectRef is the configured controller, or the only one reachable
// with a tcp or ws URL.
func (s *Shell) autoConnectRef() (l1.ControllerRef, bool) {
	if !s.AutoConnect {
		return l1.ControllerRef{}, false
	}
	if s.Config.Ref.IsValid() {
		return s.Config.Ref, true
	}
	connector, err := s.Config.NewConnector()
	if err != nil {
		return l1.ControllerRef{}, false
	}
	if direct, ok := connector.(*comm.DirectConnector); ok {
		return direct.Info.Ref, true
	}
	return l1.ControllerRef{}, false
}

// Main is a helper to provide a single call in main.
func Main() {
	flag.Parse()
	New(env.NewConfig()).WithAutoConnect(true).Run(flag.Args()...)
}
