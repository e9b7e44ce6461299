package sh

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"strconv"

	"github.com/abiosoft/ishell"
	"github.com/golang/glog"

	"github.com/robotalks/tmon/pkg/collector"
	"github.com/robotalks/tmon/pkg/config"
	"github.com/robotalks/tmon/pkg/reading"
	"github.com/robotalks/tmon/pkg/store/sqlite"
)

// Shell provides ishell backed interactive shell.
type Shell struct {
	Interactive bool
	OutputJSON  bool

	Shell  *ishell.Shell
	Config *config.Config
	Conn   *BusConn

	store *sqlite.Store
}

// BusConn is an open serial bus.
type BusConn struct {
	Name   string
	Port   io.Closer
	Bus    *collector.SerialBus
	Cancel func()
}

const (
	shellKey     = "$shell"
	closedPrompt = "[closed] > "
)

var (
	// flags

	evalOnly   bool
	outputJSON bool

	// commands
	commands = []*ishell.Cmd{
		&OpenCmd,
		&CloseCmd,
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
func New(conf *config.Config) *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,

		Shell:  ishell.New(),
		Config: conf,
	}
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

// MustBeOpen wraps command func requires an open bus.
func MustBeOpen(fn func(c *ishell.Context)) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		if ShellFrom(c).Conn == nil {
			c.Err(fmt.Errorf("bus not open"))
			return
		}
		fn(c)
	}
}

// Output prints v as JSON in JSON mode, otherwise the text lines.
func Output(c *ishell.Context, v interface{}, lines ...string) {
	if ShellFrom(c).OutputJSON {
		out, err := json.Marshal(v)
		if err != nil {
			c.Err(err)
			return
		}
		c.Println(string(out))
		return
	}
	for _, line := range lines {
		c.Println(line)
	}
}

// Open opens the serial bus. Empty name uses the configured port.
func (s *Shell) Open(name string, baud int) error {
	serialConf := s.Config.Serial
	if name != "" {
		serialConf.Port = name
	}
	if baud > 0 {
		serialConf.BaudRate = baud
	}
	s.Close()
	port, dir, err := serialConf.Open()
	if err != nil {
		return err
	}
	conn := &BusConn{
		Name: serialConf.Port,
		Port: port,
		Bus:  collector.NewSerialBus(port, dir, s.Config.Poll.InterByte),
	}
	ctx, cancel := context.WithCancel(context.Background())
	conn.Cancel = cancel
	go conn.Bus.Run(ctx)
	s.Conn = conn
	s.Shell.SetPrompt(fmt.Sprintf("%s > ", conn.Name))
	return nil
}

// Close closes the current bus.
func (s *Shell) Close() {
	if s.Conn != nil {
		s.Conn.Cancel()
		s.Conn.Port.Close()
		s.Conn = nil
		s.Shell.SetPrompt(closedPrompt)
	}
}

// Poller creates a poller on the open bus, discarding readings.
func (s *Shell) Poller(addrs ...byte) *collector.Poller {
	p := collector.NewPoller(s.Conn.Bus, reading.Discard, addrs...)
	p.Timeout = s.Config.Poll.Timeout
	p.Retries = s.Config.Poll.Retries
	return p
}

// Store opens the configured database on first use.
func (s *Shell) Store() (*sqlite.Store, error) {
	if s.store == nil {
		store, err := sqlite.Open(s.Config.DB)
		if err != nil {
			return nil, err
		}
		s.store = store
	}
	return s.store, nil
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	defer func() {
		s.Close()
		if s.store != nil {
			s.store.Close()
		}
	}()
	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			glog.Exit(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		return
	}
	glog.Exit("command expected")
}

var (
	// OpenCmd opens the serial bus.
	OpenCmd = ishell.Cmd{
		Name:    "open",
		Aliases: []string{"o"},
		Help:    "[PORT [BAUD]]",
		Func: func(c *ishell.Context) {
			var name string
			var baud int
			if len(c.Args) > 0 {
				name = c.Args[0]
			}
			if len(c.Args) > 1 {
				val, err := strconv.Atoi(c.Args[1])
				if err != nil {
					c.Err(fmt.Errorf("invalid BAUD: %v", err))
					return
				}
				baud = val
			}
			if err := ShellFrom(c).Open(name, baud); err != nil {
				c.Err(err)
			}
		},
	}

	// CloseCmd closes the serial bus.
	CloseCmd = ishell.Cmd{
		Name: "close",
		Help: "",
		Func: func(c *ishell.Context) {
			ShellFrom(c).Close()
		},
	}
)

// Main is a helper to provide a single call in main.
func Main() {
	flag.Parse()
	conf, err := config.Resolve()
	if err != nil {
		glog.Exit(err)
	}
	New(conf).Run(flag.Args()...)
}
