package sh

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/uartframe/pkg/env"
	"github.com/robotalks/uartframe/pkg/l0/comm"
	"github.com/robotalks/uartframe/pkg/l0/frame"
)

// Shell provides ishell backed interactive shell.
type Shell struct {
	Interactive bool
	OutputJSON  bool
	AutoConnect bool
	Timeout     time.Duration

	Shell   *ishell.Shell
	Config  *env.Config
	Conn    *Conn
	History *History
}

// Conn is an open port with a running Client.
type Conn struct {
	Ctx    context.Context
	Cancel func()
	Port   io.ReadWriteCloser
	Client *comm.Client
}

const (
	shellKey          = "$shell"
	unconnectedPrompt = "[none] > "
)

var (
	// flags

	evalOnly   bool
	outputJSON bool
	timeout    = time.Second

	// commands
	commands = []*ishell.Cmd{
		&ConnectCmd,
		&DisconnectCmd,
		&SendCmd,
		&FramesCmd,
	}
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
	flag.DurationVar(&timeout, "timeout", timeout, "Timeout waiting for replies.")
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
		Timeout:     timeout,

		Shell:   ishell.New(),
		Config:  conf,
		History: NewHistory(DefaultHistorySize),
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
		if ShellFrom(c).Conn == nil {
			c.Err(fmt.Errorf("not connected"))
			return
		}
		fn(c)
	}
}

// replyJSON is the JSON form of a reply frame.
type replyJSON struct {
	Sender   byte     `json:"sender"`
	Receiver byte     `json:"receiver"`
	Reply    string   `json:"reply"`
	Fields   []string `json:"fields,omitempty"`
}

// DoCommand sends payload to receiver and prints the reply.
func DoCommand(c *ishell.Context, receiver byte, payload string) (*frame.Frame, error) {
	s := ShellFrom(c)
	if s.Conn == nil {
		err := fmt.Errorf("not connected")
		c.Err(err)
		return nil, err
	}
	ctx, cancel := context.WithTimeout(s.Conn.Ctx, s.Timeout)
	defer cancel()
	res := s.Conn.Client.Wait(ctx, s.Conn.Client.Do(receiver, []byte(payload)))
	if res.Err != nil {
		c.Err(res.Err)
		return nil, res.Err
	}
	s.printReply(c, res.Frame)
	return res.Frame, nil
}

func (s *Shell) printReply(c *ishell.Context, f *frame.Frame) {
	if !s.OutputJSON {
		c.Println(string(f.Data))
		return
	}
	fields := strings.Fields(string(f.Data))
	out := replyJSON{Sender: f.Sender, Receiver: f.Receiver}
	if len(fields) > 0 {
		out.Reply, out.Fields = fields[0], fields[1:]
	}
	encoded, err := json.Marshal(out)
	if err != nil {
		c.Err(err)
		return
	}
	c.Println(string(encoded))
}

// WithAutoConnect sets AutoConnect.
func (s *Shell) WithAutoConnect(en bool) *Shell {
	s.AutoConnect = en
	return s
}

// Connect opens the configured port and starts the client.
func (s *Shell) Connect() error {
	s.Disconnect()
	port, err := s.Config.OpenPort()
	if err != nil {
		return err
	}
	conn := &Conn{Port: port}
	conn.Ctx, conn.Cancel = context.WithCancel(context.Background())
	conn.Client = comm.NewClient(port, s.Config.Host())
	conn.Client.Observer = s.History
	s.Conn = conn

	go func() {
		if err := conn.Client.Run(conn.Ctx); err != nil && conn.Ctx.Err() == nil {
			s.Shell.Printf("connection closed: %v\n", err)
		}
	}()
	go s.printEvents(conn)
	s.Shell.SetPrompt(fmt.Sprintf("%s > ", s.Config.Port))
	return nil
}

func (s *Shell) printEvents(conn *Conn) {
	for {
		select {
		case <-conn.Ctx.Done():
			return
		case f := <-conn.Client.EventChan():
			s.Shell.Printf("EVENT %d: %s\n", f.Sender, f.Data)
		}
	}
}

// Disconnect disconnects current port.
func (s *Shell) Disconnect() {
	if s.Conn != nil {
		s.Conn.Cancel()
		s.Conn.Port.Close()
		s.Conn = nil
		s.Shell.SetPrompt(unconnectedPrompt)
	}
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	if s.AutoConnect {
		if s.Interactive {
			s.Shell.Printf("Connecting %s ...\n", s.Config.Port)
		}
		if err := s.Connect(); err != nil {
			log.Fatalf("connect %q failed: %v", s.Config.Port, err)
		}
	}
	defer s.Disconnect()

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

var (
	// ConnectCmd opens a port.
	ConnectCmd = ishell.Cmd{
		Name:    "connect",
		Aliases: []string{"c"},
		Help:    "[PORT]",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			if len(c.Args) > 0 {
				s.Config.Port = c.Args[0]
			}
			if err := s.Connect(); err != nil {
				c.Err(err)
			}
		},
	}

	// DisconnectCmd closes current port.
	DisconnectCmd = ishell.Cmd{
		Name:    "disconnect",
		Aliases: []string{"d"},
		Help:    "",
		Func: func(c *ishell.Context) {
			ShellFrom(c).Disconnect()
		},
	}

	// SendCmd sends raw text to a receiver and waits for the reply.
	SendCmd = ishell.Cmd{
		Name:    "send",
		Aliases: []string{"s"},
		Help:    "RECEIVER TEXT...",
		Func: MustBeConnected(func(c *ishell.Context) {
			if len(c.Args) < 1 {
				c.Err(fmt.Errorf("RECEIVER required"))
				return
			}
			receiver, err := strconv.ParseUint(c.Args[0], 0, 8)
			if err != nil {
				c.Err(fmt.Errorf("Invalid RECEIVER: %v", err))
				return
			}
			DoCommand(c, byte(receiver), strings.Join(c.Args[1:], " "))
		}),
	}

	// FramesCmd lists recently sent and received frames.
	FramesCmd = ishell.Cmd{
		Name:    "frames",
		Aliases: []string{"hist"},
		Help:    "",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			entries := s.History.Entries()
			if s.OutputJSON {
				out, err := json.Marshal(entries)
				if err != nil {
					c.Err(err)
					return
				}
				c.Println(string(out))
				return
			}
			for _, e := range entries {
				c.Println(e.String())
			}
		},
	}
)

// Main is a helper to provide a single call in main.
func Main() {
	conf, err := env.Parse()
	if err != nil {
		log.Fatalln(err)
	}
	New(conf).WithAutoConnect(true).Run(flag.Args()...)
}
