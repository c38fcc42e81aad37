// Package env sets up the link, port and messaging from configuration.
package env

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/robotalks/robolink/pkg/framework"
	"github.com/robotalks/robolink/pkg/l0/comm"
	"github.com/robotalks/robolink/pkg/l0/port"
)

// PortAuto selects the serial port by USB vendor and product id.
const PortAuto = "auto"

// ErrNoPortConfigured indicates no port is specified.
var ErrNoPortConfigured = errors.New("port must be specified")

// Config provides common options to setup a robot link.
type Config struct {
	// ConfigFile is an optional TOML file, values apply unless overridden
	// by command line flags.
	ConfigFile string

	// Port is a serial device, PortAuto, or a ws:// URL.
	Port       string
	Baud       int
	USBVendor  string
	USBProduct string

	Interval   time.Duration
	BufferSize int
	MaxPayload int
	LogBuffers int

	// MQTTBrokerURL specifies the MQTT broker to use.
	// e.g. mqtt://host:port/topic-prefix
	MQTTBrokerURL string
	RobotID       string
}

// fileConfig is the TOML representation of Config.
type fileConfig struct {
	Port       string `toml:"port"`
	Baud       int    `toml:"baud"`
	USBVendor  string `toml:"usb_vid"`
	USBProduct string `toml:"usb_pid"`
	Interval   string `toml:"interval"`
	BufferSize int    `toml:"buffer_size"`
	MaxPayload int    `toml:"max_payload"`
	LogBuffers int    `toml:"log_buffers"`
	MQTT       string `toml:"mqtt"`
	RobotID    string `toml:"robot_id"`
}

var defaultConfig = Config{
	Port:          PortAuto,
	Baud:          port.DefaultBaudRate,
	USBVendor:     "0403",
	USBProduct:    "6015",
	Interval:      framework.DefaultInterval,
	BufferSize:    comm.DefaultBufferSize,
	LogBuffers:    comm.DefaultLogBuffers,
	MQTTBrokerURL: "mqtt://localhost:1883/robo/",
}

func init() {
	if val := os.Getenv("ROBO_PORT"); val != "" {
		defaultConfig.Port = val
	}
	if val, err := strconv.Atoi(os.Getenv("ROBO_BAUD")); err == nil && val > 0 {
		defaultConfig.Baud = val
	}
	if val := os.Getenv("ROBO_MQTT_URL"); val != "" {
		defaultConfig.MQTTBrokerURL = val
	}
	if val := os.Getenv("ROBO_ID"); val != "" {
		defaultConfig.RobotID = val
	} else {
		defaultConfig.RobotID = MachineID()
	}
}

// flag names
const (
	flagConfig     = "config"
	flagPort       = "port"
	flagBaud       = "baud"
	flagVID        = "usb-vid"
	flagPID        = "usb-pid"
	flagInterval   = "interval"
	flagBufferSize = "buffer-size"
	flagMaxPayload = "max-payload"
	flagLogBuffers = "log-buffers"
	flagMQTT       = "mqtt"
	flagID         = "id"
)

// SetupFlags registers command line flags on the default config.
func SetupFlags() {
	SetupFlagSet(flag.CommandLine, &defaultConfig)
}

// SetupFlagSet registers flags on fs for c.
func SetupFlagSet(fs *flag.FlagSet, c *Config) {
	fs.StringVar(&c.ConfigFile, flagConfig, c.ConfigFile, "TOML config file")
	fs.StringVar(&c.Port, flagPort, c.Port, "Serial device, "+PortAuto+" or websocket URL")
	fs.IntVar(&c.Baud, flagBaud, c.Baud, "Serial baud rate")
	fs.StringVar(&c.USBVendor, flagVID, c.USBVendor, "USB vendor id for auto port")
	fs.StringVar(&c.USBProduct, flagPID, c.USBProduct, "USB product id for auto port")
	fs.DurationVar(&c.Interval, flagInterval, c.Interval, "Poll interval")
	fs.IntVar(&c.BufferSize, flagBufferSize, c.BufferSize, "Receive buffer size")
	fs.IntVar(&c.MaxPayload, flagMaxPayload, c.MaxPayload, "Max outgoing payload, 0 for unchecked")
	fs.IntVar(&c.LogBuffers, flagLogBuffers, c.LogBuffers, "Number of log buffers")
	fs.StringVar(&c.MQTTBrokerURL, flagMQTT, c.MQTTBrokerURL, "MQTT broker URL")
	fs.StringVar(&c.RobotID, flagID, c.RobotID, "Robot ID")
}

// Default gets the default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
// If a config file is specified, it's loaded without overriding values
// set by command line flags.
func NewConfig() (*Config, error) {
	conf := defaultConfig
	if conf.ConfigFile == "" {
		return &conf, nil
	}
	explicit := make(map[string]bool)
	if flag.Parsed() {
		flag.Visit(func(f *flag.Flag) { explicit[f.Name] = true })
	}
	if err := conf.load(conf.ConfigFile, explicit); err != nil {
		return nil, err
	}
	return &conf, nil
}

// MustNewConfig creates a Config and fails on error.
func MustNewConfig() *Config {
	conf, err := NewConfig()
	if err != nil {
		log.Fatalln(err)
	}
	return conf
}

// LoadFile applies values from a TOML file.
func (c *Config) LoadFile(path string) error {
	return c.load(path, nil)
}

func (c *Config) load(path string, explicit map[string]bool) error {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return fmt.Errorf("load config %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("load config %s: unknown keys %v", path, undecoded)
	}
	apply := func(key, flagName string) bool {
		return meta.IsDefined(key) && !explicit[flagName]
	}
	if apply("port", flagPort) {
		c.Port = strings.TrimSpace(raw.Port)
	}
	if apply("baud", flagBaud) {
		c.Baud = raw.Baud
	}
	if apply("usb_vid", flagVID) {
		c.USBVendor = strings.TrimSpace(raw.USBVendor)
	}
	if apply("usb_pid", flagPID) {
		c.USBProduct = strings.TrimSpace(raw.USBProduct)
	}
	if apply("interval", flagInterval) {
		d, err := time.ParseDuration(strings.TrimSpace(raw.Interval))
		if err != nil {
			return fmt.Errorf("parse interval: %w", err)
		}
		c.Interval = d
	}
	if apply("buffer_size", flagBufferSize) {
		c.BufferSize = raw.BufferSize
	}
	if apply("max_payload", flagMaxPayload) {
		c.MaxPayload = raw.MaxPayload
	}
	if apply("log_buffers", flagLogBuffers) {
		c.LogBuffers = raw.LogBuffers
	}
	if apply("mqtt", flagMQTT) {
		c.MQTTBrokerURL = strings.TrimSpace(raw.MQTT)
	}
	if apply("robot_id", flagID) {
		c.RobotID = strings.TrimSpace(raw.RobotID)
	}
	return nil
}
