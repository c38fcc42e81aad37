package env

import (
	"fmt"
	"log"
	"strings"

	"github.com/golang/glog"

	"github.com/robotalks/robolink/pkg/bridge/mqtt"
	"github.com/robotalks/robolink/pkg/framework"
	"github.com/robotalks/robolink/pkg/l0/comm"
	"github.com/robotalks/robolink/pkg/l0/port"
)

// Env is an opened robot link.
type Env struct {
	Config *Config
	Port   port.Port
	Link   *comm.Link
	Poller *comm.Poller
}

// OpenPort opens the configured port.
func (c *Config) OpenPort() (port.Port, error) {
	switch name := strings.TrimSpace(c.Port); {
	case name == "":
		return nil, ErrNoPortConfigured
	case strings.HasPrefix(name, "ws://") || strings.HasPrefix(name, "wss://"):
		return opened(port.DialWebsocket(name, ""))
	case name == PortAuto:
		dev, err := port.DetectSerial(c.USBVendor, c.USBProduct)
		if err != nil {
			return nil, fmt.Errorf("detect serial %s:%s: %w", c.USBVendor, c.USBProduct, err)
		}
		return opened(port.OpenSerial(dev, c.Baud))
	default:
		return opened(port.OpenSerial(name, c.Baud))
	}
}

func opened(s *port.Stream, err error) (port.Port, error) {
	if err != nil {
		return nil, err
	}
	return s, nil
}

// LinkOptions returns link options from the config.
func (c *Config) LinkOptions() []comm.Option {
	return []comm.Option{
		comm.WithBufferSize(c.BufferSize),
		comm.WithMaxPayload(c.MaxPayload),
		comm.WithLogBuffers(c.LogBuffers),
	}
}

// NewEnvWith creates an Env on an opened port.
func (c *Config) NewEnvWith(p port.Port) *Env {
	link := comm.NewLink(p, c.LinkOptions()...)
	return &Env{
		Config: c,
		Port:   p,
		Link:   link,
		Poller: &comm.Poller{Link: link, OnErrors: func(flags comm.ErrorFlags) {
			glog.Warningf("link errors: %s", flags)
		}},
	}
}

// NewEnv opens the port and creates the Env.
func (c *Config) NewEnv() (*Env, error) {
	p, err := c.OpenPort()
	if err != nil {
		return nil, err
	}
	return c.NewEnvWith(p), nil
}

// MustNewEnv creates Env and fails on error.
func (c *Config) MustNewEnv() *Env {
	env, err := c.NewEnv()
	if err != nil {
		log.Fatalln(err)
	}
	return env
}

// NewLoop creates a loop with the configured interval.
func (c *Config) NewLoop() *framework.Loop {
	loop := framework.NewLoop()
	loop.Interval = c.Interval
	return loop
}

// NewQueue creates the MQTT queue, nil if no broker is configured.
func (c *Config) NewQueue() (*mqtt.Queue, error) {
	if c.MQTTBrokerURL == "" {
		return nil, nil
	}
	opts, prefix, err := mqtt.ClientOptionsFromURL(c.MQTTBrokerURL)
	if err != nil {
		return nil, fmt.Errorf("invalid MQTT broker URL: %w", err)
	}
	if opts.ClientID == "" {
		opts.SetClientID("robolink:" + c.RobotID)
	}
	return mqtt.NewQueue(opts, prefix), nil
}

// NewBridge creates a bridge of the link to q.
// Drained link errors are also published.
func (e *Env) NewBridge(q mqtt.PubSub) *mqtt.Bridge {
	b := mqtt.NewBridge(e.Link, q, e.Config.RobotID)
	e.Poller.OnErrors = b.ReportErrors
	return b
}

// AddToLoop implements framework.LoopAdder.
func (e *Env) AddToLoop(l *framework.Loop) {
	l.Add(e.Poller)
}

// Close implements io.Closer.
func (e *Env) Close() error {
	return e.Port.Close()
}
