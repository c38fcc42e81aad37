package comm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLog(t *testing.T) {
	testCases := []struct {
		name   string
		level  Level
		format string
		args   []interface{}
		expect string
	}{
		{"plain", LevelInfo, "hello", nil, "hello"},
		{"formatted", LevelSevere, "x=%d y=%s", []interface{}{3, "+"}, "x=3 y=+"},
		{"empty", LevelFinest, "", nil, ""},
		{"truncated", LevelWarning, "%s", []interface{}{strings.Repeat("a", 300)}, strings.Repeat("a", MaxLogText)},
		{"exact", LevelConfig, "%s", []interface{}{strings.Repeat("b", MaxLogText)}, strings.Repeat("b", MaxLogText)},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var lb loopback
			link := NewLink(&lb)
			rec := &packetRecorder{}
			link.SetCallback(DebugChannel, rec)
			require.NoError(t, link.Log(tc.level, tc.format, tc.args...))
			require.NoError(t, link.ReadPackets())
			require.Len(t, rec.packets, 1)
			p := rec.packets[0]
			require.Equal(t, DebugChannel, p.Channel)
			require.Equal(t, byte(tc.level), p.Payload[0])
			require.Equal(t, tc.expect, string(p.Payload[1:]))
		})
	}
}

func TestLogOutOfMemory(t *testing.T) {
	var (
		lb    loopback
		errs  ErrorAccumulator
		stats Stats
	)
	w := NewWriter(&lb)
	w.Stats = &stats
	logger := NewLogger(w, &errs, 1)
	held := <-logger.scratch
	require.NoError(t, logger.Log(LevelInfo, "dropped"))
	require.Empty(t, lb.data)
	require.Equal(t, FlagOutOfMemory, errs.Drain())
	require.Equal(t, uint64(1), stats.Errors(FlagOutOfMemory))

	logger.scratch <- held
	require.NoError(t, logger.Log(LevelInfo, "sent"))
	require.NotEmpty(t, lb.data)
	require.Equal(t, ErrorFlags(0), errs.Drain())
}

func TestLogReusesBuffers(t *testing.T) {
	var lb loopback
	logger := NewLogger(NewWriter(&lb), nil, 0)
	require.Len(t, logger.scratch, DefaultLogBuffers)
	for n := 0; n < 10; n++ {
		require.NoError(t, logger.Log(LevelFine, "%d", n))
	}
	require.Len(t, logger.scratch, DefaultLogBuffers)
}

func TestLevelString(t *testing.T) {
	require.Equal(t, "FINEST", LevelFinest.String())
	require.Equal(t, "INFO", LevelInfo.String())
	require.Equal(t, "SEVERE", LevelSevere.String())
	require.Equal(t, "LEVEL(9)", Level(9).String())
}
