package sh

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/robolink/pkg/l0/comm"
	"github.com/robotalks/robolink/pkg/l0/msgs"
	"github.com/robotalks/robolink/pkg/l0/port"
)

// ParseChannel parses a channel number in [0, 15].
func ParseChannel(s string) (comm.Channel, error) {
	n, err := strconv.ParseUint(s, 0, 8)
	if err != nil || n >= comm.MaxChannels {
		return 0, fmt.Errorf("invalid channel %q", s)
	}
	return comm.Channel(n), nil
}

// ParseHex parses bytes from hex arguments, e.g. "41 42" or "4142".
func ParseHex(args []string) ([]byte, error) {
	data, err := hex.DecodeString(strings.Join(args, ""))
	if err != nil {
		return nil, fmt.Errorf("invalid hex data: %v", err)
	}
	return data, nil
}

func parseInts(args []string, names ...string) ([]int, error) {
	if len(args) < len(names) {
		return nil, fmt.Errorf("%s required", strings.Join(names, " "))
	}
	vals := make([]int, len(names))
	for n, name := range names {
		val, err := strconv.Atoi(args[n])
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %v", name, err)
		}
		vals[n] = val
	}
	return vals, nil
}

func parseFloats(args []string, names ...string) ([]float32, error) {
	if len(args) < len(names) {
		return nil, fmt.Errorf("%s required", strings.Join(names, " "))
	}
	vals := make([]float32, len(names))
	for n, name := range names {
		val, err := strconv.ParseFloat(args[n], 32)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %v", name, err)
		}
		vals[n] = float32(val)
	}
	return vals, nil
}

func send(c *ishell.Context, conn *Conn, ch comm.Channel, msg msgs.Message) {
	if err := msgs.Send(conn.Env.Link, ch, msg); err != nil {
		c.Err(err)
	}
}

var (
	// PortsCmd lists serial ports.
	PortsCmd = ishell.Cmd{
		Name:    "ports",
		Aliases: []string{"ls"},
		Help:    "",
		Func: func(c *ishell.Context) {
			ports, err := port.ListSerial()
			if err != nil {
				c.Err(err)
				return
			}
			if ShellFrom(c).OutputJSON {
				out, err := json.Marshal(ports)
				if err != nil {
					c.Err(err)
					return
				}
				c.Println(string(out))
				return
			}
			if len(ports) == 0 {
				c.Println("No serial ports found")
				return
			}
			for _, p := range ports {
				if p.IsUSB {
					c.Printf("%s USB %s:%s %s\n", p.Name, p.VID, p.PID, p.SerialNumber)
				} else {
					c.Println(p.Name)
				}
			}
		},
	}

	// OpenCmd opens a port.
	OpenCmd = ishell.Cmd{
		Name:    "open",
		Aliases: []string{"o"},
		Help:    "[PORT|auto|ws://URL] [BAUD]",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			conf := *s.Config
			if len(c.Args) > 0 {
				conf.Port = c.Args[0]
			}
			if len(c.Args) > 1 {
				baud, err := strconv.Atoi(c.Args[1])
				if err != nil {
					c.Err(fmt.Errorf("invalid BAUD: %v", err))
					return
				}
				conf.Baud = baud
			}
			if err := s.Open(&conf); err != nil {
				c.Err(err)
			}
		},
	}

	// CloseCmd closes current port.
	CloseCmd = ishell.Cmd{
		Name:    "close",
		Aliases: []string{"c"},
		Help:    "",
		Func: func(c *ishell.Context) {
			ShellFrom(c).Close()
		},
	}

	// SendCmd sends raw payload.
	SendCmd = ishell.Cmd{
		Name: "send",
		Help: "CH HEX...",
		Func: MustBeOpen(func(c *ishell.Context, conn *Conn) {
			if len(c.Args) < 1 {
				c.Err(fmt.Errorf("CH required"))
				return
			}
			ch, err := ParseChannel(c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			data, err := ParseHex(c.Args[1:])
			if err != nil {
				c.Err(err)
				return
			}
			if err := conn.Env.Link.WritePacket(ch, data); err != nil {
				c.Err(err)
			}
		}),
	}

	// DriveCmd sends DriveCommand.
	DriveCmd = ishell.Cmd{
		Name:    "drive",
		Aliases: []string{"d"},
		Help:    "SPEED STEERING (-8191..8191)",
		Func: MustBeOpen(func(c *ishell.Context, conn *Conn) {
			vals, err := parseInts(c.Args, "SPEED", "STEERING")
			if err != nil {
				c.Err(err)
				return
			}
			send(c, conn, msgs.ChInDrive, msgs.NewDriveCommand(vals[0], vals[1]))
		}),
	}

	// UserCmd sends UserCommand.
	UserCmd = ishell.Cmd{
		Name: "user",
		Help: "ID",
		Func: MustBeOpen(func(c *ishell.Context, conn *Conn) {
			vals, err := parseInts(c.Args, "ID")
			if err != nil {
				c.Err(err)
				return
			}
			if vals[0] < 0 || vals[0] > 0xff {
				c.Err(fmt.Errorf("ID out of range"))
				return
			}
			send(c, conn, msgs.ChInUserCommand, &msgs.UserCommand{ID: uint8(vals[0])})
		}),
	}

	// ParamsCmd sends RobotParameters.
	ParamsCmd = ishell.Cmd{
		Name: "params",
		Help: "AXLE DIST_PER_TICK USER1 USER2",
		Func: MustBeOpen(func(c *ishell.Context, conn *Conn) {
			vals, err := parseFloats(c.Args, "AXLE", "DIST_PER_TICK", "USER1", "USER2")
			if err != nil {
				c.Err(err)
				return
			}
			send(c, conn, msgs.ChInRobotParams, &msgs.RobotParameters{
				AxleWidth: vals[0], DistPerTick: vals[1], User1: vals[2], User2: vals[3],
			})
		}),
	}

	// GetPoseCmd sends a Pose of a tracked marker to the robot.
	GetPoseCmd = ishell.Cmd{
		Name:    "pose",
		Aliases: []string{"p"},
		Help:    "X Y THETA [additional]",
		Func: MustBeOpen(func(c *ishell.Context, conn *Conn) {
			vals, err := parseFloats(c.Args, "X", "Y", "THETA")
			if err != nil {
				c.Err(err)
				return
			}
			req := &msgs.GetPose{}
			if len(c.Args) > 3 && c.Args[3] == "additional" {
				req.AprilTag = msgs.AprilTagAdditional
			}
			send(c, conn, req.ReplyChannel(), &msgs.Pose{X: vals[0], Y: vals[1], Theta: vals[2]})
		}),
	}

	// ErrorsCmd prints and clears link error flags.
	ErrorsCmd = ishell.Cmd{
		Name:    "errors",
		Aliases: []string{"err"},
		Help:    "",
		Func: MustBeOpen(func(c *ishell.Context, conn *Conn) {
			c.Println(conn.Env.Link.GetErrors().String())
		}),
	}

	// StatsCmd prints link counters.
	StatsCmd = ishell.Cmd{
		Name: "stats",
		Help: "",
		Func: MustBeOpen(func(c *ishell.Context, conn *Conn) {
			c.Print(FormatStats(conn.Env.Link.Stats()))
		}),
	}

	// WatchCmd controls printing of received packets.
	WatchCmd = ishell.Cmd{
		Name:    "watch",
		Aliases: []string{"w"},
		Help:    "CH|all|off",
		Func: MustBeOpen(func(c *ishell.Context, conn *Conn) {
			if len(c.Args) < 1 {
				c.Err(fmt.Errorf("CH required"))
				return
			}
			switch c.Args[0] {
			case "all":
				conn.WatchAll(true)
			case "off":
				conn.WatchAll(false)
			default:
				for _, arg := range c.Args {
					ch, err := ParseChannel(arg)
					if err != nil {
						c.Err(err)
						return
					}
					conn.Watch(ch, true)
				}
			}
		}),
	}
)

// FormatStats renders counters of channels with traffic and
// all error categories raised.
func FormatStats(stats *comm.Stats) string {
	var sb strings.Builder
	for ch := comm.Channel(0); ch < comm.MaxChannels; ch++ {
		cs := stats.Channel(ch)
		if cs == (comm.ChannelStats{}) {
			continue
		}
		fmt.Fprintf(&sb, "ch%-2d rx=%d tx=%d undelivered=%d\n", ch, cs.Received, cs.Sent, cs.Undelivered)
	}
	for n := 0; n < comm.NumErrorCategories; n++ {
		f := comm.ErrorFlags(1 << uint(n))
		if count := stats.Errors(f); count > 0 {
			fmt.Fprintf(&sb, "%s=%d\n", f, count)
		}
	}
	return sb.String()
}
