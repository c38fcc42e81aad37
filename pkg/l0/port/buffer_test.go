package port

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/robolink/pkg/l0/comm"
)

func TestBuffer(t *testing.T) {
	b := NewBuffer()
	require.False(t, b.Available())
	_, err := b.ReadByte()
	require.Equal(t, comm.ErrNoData, err)

	b.Feed(1, 2)
	require.True(t, b.Available())
	v, err := b.ReadByte()
	require.NoError(t, err)
	require.Equal(t, byte(1), v)

	require.NoError(t, b.WriteByte(9))
	require.Equal(t, []byte{9}, b.Bytes())
	require.Empty(t, b.Bytes())

	require.NoError(t, b.Close())
	require.False(t, b.Available())
	require.Equal(t, ErrClosed, b.WriteByte(1))
	_, err = b.ReadByte()
	require.Equal(t, ErrClosed, err)
}

func TestPipeLinks(t *testing.T) {
	host, robot := Pipe()
	hostLink, robotLink := comm.NewLink(host), comm.NewLink(robot)

	var got []string
	robotLink.SetCallbackFunc(1, func(ch comm.Channel, payload []byte) {
		got = append(got, string(payload))
	})
	var logs [][]byte
	hostLink.SetCallbackFunc(comm.DebugChannel, func(ch comm.Channel, payload []byte) {
		logs = append(logs, append([]byte(nil), payload...))
	})

	require.NoError(t, hostLink.WritePacket(1, []byte("drive+")))
	require.NoError(t, robotLink.ReadPackets())
	require.Equal(t, []string{"drive+"}, got)

	require.NoError(t, robotLink.Log(comm.LevelWarning, "battery %d%%", 12))
	require.NoError(t, hostLink.ReadPackets())
	require.Equal(t, [][]byte{append([]byte{byte(comm.LevelWarning)}, "battery 12%"...)}, logs)

	require.Zero(t, hostLink.GetErrors())
	require.Zero(t, robotLink.GetErrors())
}
