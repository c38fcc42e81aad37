package sh

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/robolink/pkg/env"
	"github.com/robotalks/robolink/pkg/l0/comm"
	"github.com/robotalks/robolink/pkg/l0/msgs"
	"github.com/robotalks/robolink/pkg/l0/port"
)

type output struct {
	lock  sync.Mutex
	lines []string
}

func (o *output) Printf(format string, args ...interface{}) {
	o.lock.Lock()
	o.lines = append(o.lines, strings.TrimSpace(fmt.Sprintf(format, args...)))
	o.lock.Unlock()
}

func (o *output) Lines() []string {
	o.lock.Lock()
	defer o.lock.Unlock()
	return append([]string(nil), o.lines...)
}

func TestParseChannel(t *testing.T) {
	ch, err := ParseChannel("15")
	require.NoError(t, err)
	require.Equal(t, comm.Channel(15), ch)
	ch, err = ParseChannel("0x3")
	require.NoError(t, err)
	require.Equal(t, comm.Channel(3), ch)
	for _, s := range []string{"16", "-1", "x"} {
		_, err = ParseChannel(s)
		require.Error(t, err, s)
	}
}

func TestParseHex(t *testing.T) {
	data, err := ParseHex([]string{"41", "42ff"})
	require.NoError(t, err)
	require.Equal(t, []byte{0x41, 0x42, 0xff}, data)
	data, err = ParseHex(nil)
	require.NoError(t, err)
	require.Empty(t, data)
	_, err = ParseHex([]string{"4"})
	require.Error(t, err)
}

func TestParseNumbers(t *testing.T) {
	ints, err := parseInts([]string{"100", "-20"}, "SPEED", "STEERING")
	require.NoError(t, err)
	require.Equal(t, []int{100, -20}, ints)
	_, err = parseInts([]string{"100"}, "SPEED", "STEERING")
	require.EqualError(t, err, "SPEED STEERING required")

	floats, err := parseFloats([]string{"1.5", "2"}, "X", "Y")
	require.NoError(t, err)
	require.Equal(t, []float32{1.5, 2}, floats)
	_, err = parseFloats([]string{"a", "2"}, "X", "Y")
	require.Error(t, err)
}

func TestFormatPacket(t *testing.T) {
	s := &Shell{}
	pose, err := (&msgs.Pose{X: 1, Y: 2, Theta: 0.5}).MarshalBinary()
	require.NoError(t, err)
	require.Equal(t, "[2] Pose {X:1 Y:2 Theta:0.5}", s.FormatPacket(msgs.ChOutPose, pose))
	require.Equal(t, "[15] 01 02", s.FormatPacket(15, []byte{1, 2}))
	require.Equal(t, "[0] WARNING: hot", s.FormatPacket(msgs.ChOutDebug, append([]byte{byte(comm.LevelWarning)}, "hot"...)))

	s.OutputJSON = true
	out := s.FormatPacket(msgs.ChOutPose, pose)
	require.True(t, strings.HasPrefix(out, `{"channel":2,"type":"Pose","data":{`), out)
	require.Contains(t, out, `"theta":0.5`)
}

func TestFormatStats(t *testing.T) {
	host, robot := port.Pipe()
	hostLink := comm.NewLink(host)
	robotLink := comm.NewLink(robot)
	robotLink.SetCallbackFunc(1, func(comm.Channel, []byte) {})
	require.NoError(t, hostLink.WritePacket(1, []byte{1}))
	require.NoError(t, hostLink.WritePacket(2, []byte{2}))
	robot.Feed(1, comm.DELIM)
	require.NoError(t, robotLink.ReadPackets())
	require.Equal(t,
		"ch1  rx=1 tx=0 undelivered=0\nch2  rx=0 tx=0 undelivered=1\nTOO_SMALL=1\nUNREGISTEREDCHANNEL=1\n",
		FormatStats(robotLink.Stats()))
}

func TestShellWatch(t *testing.T) {
	host, robot := port.Pipe()
	out := &output{}
	s := &Shell{Config: &env.Config{Interval: time.Millisecond}, Printf: out.Printf}
	s.OpenWith("pipe", host)
	defer s.Close()
	conn := s.Conn
	require.NotNil(t, conn)
	require.True(t, conn.Watching(msgs.ChOutDebug))
	require.False(t, conn.Watching(msgs.ChOutPose))

	robotLink := comm.NewLink(robot)
	require.NoError(t, robotLink.Log(comm.LevelInfo, "ready"))
	require.NoError(t, robotLink.WritePacket(msgs.ChOutUserData, []byte{1}))
	require.Eventually(t, func() bool {
		return len(out.Lines()) > 0
	}, time.Second, time.Millisecond)
	require.Equal(t, []string{"[0] INFO: ready"}, out.Lines())

	conn.Watch(msgs.ChOutPose, true)
	require.NoError(t, msgs.Send(robotLink, msgs.ChOutPose, &msgs.Pose{X: 3}))
	require.Eventually(t, func() bool {
		return len(out.Lines()) > 1
	}, time.Second, time.Millisecond)
	require.Equal(t, "[2] Pose {X:3 Y:0 Theta:0}", out.Lines()[1])

	// errors stay sticky until queried.
	host.Feed(1, comm.DELIM)
	require.Eventually(t, func() bool {
		return conn.Env.Link.Stats().Errors(comm.FlagTooSmall) > 0
	}, time.Second, time.Millisecond)
	require.Equal(t, comm.FlagTooSmall, conn.Env.Link.GetErrors())

	conn.WatchAll(false)
	require.False(t, conn.Watching(msgs.ChOutDebug))
	s.Close()
	require.Nil(t, s.Conn)
}
