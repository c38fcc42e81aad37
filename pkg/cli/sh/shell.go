// Package sh provides an interactive console to a robot link.
package sh

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"reflect"
	"sync"

	"github.com/abiosoft/ishell"
	"github.com/golang/protobuf/jsonpb"

	"github.com/robotalks/robolink/pkg/env"
	"github.com/robotalks/robolink/pkg/framework"
	"github.com/robotalks/robolink/pkg/l0/comm"
	"github.com/robotalks/robolink/pkg/l0/msgs"
	"github.com/robotalks/robolink/pkg/l0/port"
)

// ErrNotOpen indicates no link is open.
var ErrNotOpen = errors.New("no port opened")

// Shell provides ishell backed interactive console.
type Shell struct {
	Interactive bool
	OutputJSON  bool

	Shell  *ishell.Shell
	Config *env.Config
	Conn   *Conn

	// Printf prints asynchronous output such as received packets.
	Printf func(format string, args ...interface{})
}

// Conn is an opened link with its running loop.
type Conn struct {
	Name   string
	Env    *env.Env
	Loop   *framework.Loop
	Cancel func()

	lock    sync.Mutex
	watches [comm.MaxChannels]bool
}

const (
	shellKey     = "$shell"
	closedPrompt = "[none] > "
)

var (
	evalOnly   bool
	outputJSON bool

	commands = []*ishell.Cmd{
		&PortsCmd,
		&OpenCmd,
		&CloseCmd,
		&SendCmd,
		&DriveCmd,
		&UserCmd,
		&ParamsCmd,
		&GetPoseCmd,
		&ErrorsCmd,
		&StatsCmd,
		&WatchCmd,
	}
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
}

// AddCmds registers additional commands, used during init.
func AddCmds(cmds ...*ishell.Cmd) {
	commands = append(commands, cmds...)
}

// New creates a new shell.
func New(conf *env.Config) *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,
		Shell:       ishell.New(),
		Config:      conf,
	}
	s.Printf = s.Shell.Printf
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(closedPrompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// MustBeOpen wraps command func requires an opened link.
func MustBeOpen(fn func(c *ishell.Context, conn *Conn)) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		conn := ShellFrom(c).Conn
		if conn == nil {
			c.Err(ErrNotOpen)
			return
		}
		fn(c, conn)
	}
}

// Open opens the port in config and starts polling.
func (s *Shell) Open(conf *env.Config) error {
	e, err := conf.NewEnv()
	if err != nil {
		return err
	}
	s.attach(conf.Port, e)
	return nil
}

// OpenWith starts polling on an opened port.
func (s *Shell) OpenWith(name string, p port.Port) {
	s.attach(name, s.Config.NewEnvWith(p))
}

func (s *Shell) attach(name string, e *env.Env) {
	s.Close()
	// flags stay accumulated for the errors command.
	e.Poller.OnErrors = nil
	conn := &Conn{Name: name, Env: e, Loop: s.Config.NewLoop()}
	conn.watches[msgs.ChOutDebug] = true
	for ch := comm.Channel(0); ch < comm.MaxChannels; ch++ {
		e.Link.SetCallbackFunc(ch, func(ch comm.Channel, payload []byte) {
			if conn.Watching(ch) {
				s.Printf("%s\n", s.FormatPacket(ch, payload))
			}
		})
	}
	conn.Loop.Add(e)
	var ctx context.Context
	ctx, conn.Cancel = context.WithCancel(context.Background())
	go conn.Loop.Run(ctx)
	s.Conn = conn
	if s.Shell != nil {
		s.Shell.SetPrompt(fmt.Sprintf("%s > ", name))
	}
}

// Close stops polling and closes the port.
func (s *Shell) Close() {
	if conn := s.Conn; conn != nil {
		s.Conn = nil
		conn.Cancel()
		conn.Env.Close()
		if s.Shell != nil {
			s.Shell.SetPrompt(closedPrompt)
		}
	}
}

// FormatPacket renders a received packet for display.
func (s *Shell) FormatPacket(ch comm.Channel, payload []byte) string {
	msg, err := msgs.Decode(msgs.FromRobot, ch, payload)
	if err != nil {
		return fmt.Sprintf("[%d] % x", ch, payload)
	}
	if lm, ok := msg.(*msgs.LogMessage); ok && !s.OutputJSON {
		return fmt.Sprintf("[%d] %s: %s", ch, lm.Level, lm.Text)
	}
	name := msgs.TypeName(msg)
	if s.OutputJSON {
		if st, err := msgs.ToStruct(msg); err == nil {
			if js, err := (&jsonpb.Marshaler{}).MarshalToString(st); err == nil {
				return fmt.Sprintf(`{"channel":%d,"type":%q,"data":%s}`, ch, name, js)
			}
		}
	}
	return fmt.Sprintf("[%d] %s %+v", ch, name, reflect.Indirect(reflect.ValueOf(msg)).Interface())
}

// Watch enables or disables printing packets received on ch.
func (c *Conn) Watch(ch comm.Channel, on bool) {
	c.lock.Lock()
	c.watches[ch.Masked()] = on
	c.lock.Unlock()
}

// WatchAll enables or disables printing all packets.
func (c *Conn) WatchAll(on bool) {
	c.lock.Lock()
	for n := range c.watches {
		c.watches[n] = on
	}
	c.lock.Unlock()
}

// Watching checks if packets on ch are printed.
func (c *Conn) Watching(ch comm.Channel) bool {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.watches[ch.Masked()]
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	if s.Config.Port != "" {
		if s.Interactive {
			s.Shell.Printf("Opening %s ...\n", s.Config.Port)
		}
		if err := s.Open(s.Config); err != nil {
			log.Printf("open %q failed: %v", s.Config.Port, err)
		}
	}
	defer s.Close()

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

// Main is a helper to provide a single call in main.
func Main() {
	flag.Parse()
	New(env.MustNewConfig()).Run(flag.Args()...)
}
