package env

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	fn := filepath.Join(t.TempDir(), "robolink.toml")
	require.NoError(t, os.WriteFile(fn, []byte(content), 0644))
	return fn
}

func TestLoadFile(t *testing.T) {
	fn := writeConfigFile(t, `
port = "/dev/ttyUSB1"
baud = 57600
interval = "25ms"
buffer_size = 1024
max_payload = 300
mqtt = "mqtt://broker:1883/lab/"
robot_id = "bot7"
`)
	conf := Config{Port: PortAuto, USBVendor: "0403", LogBuffers: 4}
	require.NoError(t, conf.LoadFile(fn))
	require.Equal(t, Config{
		Port:          "/dev/ttyUSB1",
		Baud:          57600,
		USBVendor:     "0403",
		Interval:      25 * time.Millisecond,
		BufferSize:    1024,
		MaxPayload:    300,
		LogBuffers:    4,
		MQTTBrokerURL: "mqtt://broker:1883/lab/",
		RobotID:       "bot7",
	}, conf)
}

func TestLoadFileErrors(t *testing.T) {
	var conf Config
	require.Error(t, conf.LoadFile(filepath.Join(t.TempDir(), "missing.toml")))
	require.Error(t, conf.LoadFile(writeConfigFile(t, `interval = "soon"`)))
	require.Error(t, conf.LoadFile(writeConfigFile(t, `unknown = 1`)))
	require.Error(t, conf.LoadFile(writeConfigFile(t, `baud = "fast"`)))
}

func TestFlagsOverrideFile(t *testing.T) {
	fn := writeConfigFile(t, `
port = "/dev/ttyUSB1"
baud = 57600
`)
	conf := Config{Port: PortAuto, Baud: 115200}
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	SetupFlagSet(fs, &conf)
	require.NoError(t, fs.Parse([]string{"-baud", "9600", "-config", fn}))
	explicit := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { explicit[f.Name] = true })
	require.NoError(t, conf.load(conf.ConfigFile, explicit))
	require.Equal(t, "/dev/ttyUSB1", conf.Port)
	require.Equal(t, 9600, conf.Baud)
}

func TestDefaultConfig(t *testing.T) {
	conf, err := NewConfig()
	require.NoError(t, err)
	require.NotSame(t, Default(), conf)
	require.Equal(t, *Default(), *conf)
	require.NotEmpty(t, conf.RobotID)
	require.Positive(t, conf.Interval)
}
