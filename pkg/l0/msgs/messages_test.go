package msgs

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/robolink/pkg/l0/comm"
)

func TestMessageSizes(t *testing.T) {
	testCases := []struct {
		msg  Message
		size int
	}{
		{&Telemetry{}, 22},
		{&DriveCommand{}, 4},
		{&Pose{}, 12},
		{&RobotParameters{}, 16},
		{&PathFollowerStatus{}, 17},
		{&PathFollowerControl{Cmd: FollowerStart}, 2},
		{&PathFollowerControl{Points: []Point{{1, 2}, {3, 4}}}, 10},
		{&PathFollowerParameters{}, 5},
		{NewLabyrinthWalls(LabyrinthRows, LabyrinthCols), 16},
		{&GetPose{}, 1},
		{&UserCommand{}, 1},
		{&UserData{}, 28},
		{&LabyrinthCellInfo{}, 3},
		{&LabyrinthWallInfo{}, 4},
		{&LogMessage{Text: "abc"}, 4},
	}
	for _, tc := range testCases {
		t.Run(TypeName(tc.msg), func(t *testing.T) {
			data, err := tc.msg.MarshalBinary()
			require.NoError(t, err)
			require.Len(t, data, tc.size)
		})
	}
}

func TestMessageLayout(t *testing.T) {
	testCases := []struct {
		name   string
		msg    Message
		expect []byte
	}{
		{"drive", &DriveCommand{Speed: 1000, Steering: -2}, []byte{0xe8, 0x03, 0xfe, 0xff}},
		{"pose", &Pose{X: 1, Y: -2, Theta: 0.5}, []byte{0, 0, 0x80, 0x3f, 0, 0, 0, 0xc0, 0, 0, 0, 0x3f}},
		{"params", &PathFollowerParameters{LookaheadDistance: 2, SegmentLimit: 7}, []byte{0, 0, 0, 0x40, 7}},
		{"path", &PathFollowerControl{Cmd: FollowerNewPath, Points: []Point{{X: 1, Y: -1}}}, []byte{0, 1, 1, 0, 0xff, 0xff}},
		{"path ignored", &PathFollowerControl{Cmd: FollowerPause, Points: []Point{{X: 1, Y: -1}}}, []byte{2, 0}},
		{"cell info", &LabyrinthCellInfo{Col: 3, Row: 4, Info: InfoClear}, []byte{3, 4, 0x80}},
		{"wall info", &LabyrinthWallInfo{Col: 1, Row: 2, Dir: West, Info: 5}, []byte{1, 2, 3, 5}},
		{"log", &LogMessage{Level: comm.LevelInfo, Text: "hi"}, []byte{4, 'h', 'i'}},
		{"status", &PathFollowerStatus{Enabled: true, SegStart: Point{1, 2}, SegEnd: Point{3, 4}},
			[]byte{1, 1, 0, 2, 0, 3, 0, 4, 0, 0, 0, 0, 0, 0, 0, 0, 0}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			data, err := tc.msg.MarshalBinary()
			require.NoError(t, err)
			require.Equal(t, tc.expect, data)
		})
	}
}

func TestTelemetryDecode(t *testing.T) {
	data := []byte{
		0x15, 3,
		0x10, 0x00, 0xf0, 0xff,
		100, 0, 200, 0, 0x2c, 0x01, 0x90, 0x01, 0xf4, 0x01,
		0xff, 0x7f,
		0, 0, 0x20, 0x41,
	}
	msg, err := Decode(FromRobot, ChOutTelemetry, data)
	require.NoError(t, err)
	tm := msg.(*Telemetry)
	require.Equal(t, &Telemetry{
		Bumpers: 0x15, Contacts: 3,
		Encoder1: 16, Encoder2: -16,
		Infrared1: 100, Infrared2: 200, Infrared3: 300, Infrared4: 400, Infrared5: 500,
		User1: math.MaxInt16, User2: 10,
	}, tm)
	require.True(t, tm.Bumper(0))
	require.False(t, tm.Bumper(1))
	require.True(t, tm.Bumper(4))
}

func TestDecode(t *testing.T) {
	testCases := []struct {
		route Route
		ch    comm.Channel
		msg   Message
	}{
		{FromRobot, ChOutPose, &Pose{X: 1, Y: 2, Theta: 3}},
		{FromRobot, ChOutUserData, &UserData{Uint16: 1, Uint32: 2, Int16: -3, Int32: -4, Float1: 5}},
		{FromRobot, ChOutGetPose, &GetPose{AprilTag: AprilTagAdditional}},
		{FromRobot, ChOutDebug, &LogMessage{Level: comm.LevelSevere, Text: "boom"}},
		{FromRobot, ChOutLabyCellInfo, &LabyrinthCellInfo{Col: 1, Row: 2, Info: -3}},
		{FromRobot, ChOutLabyWallInfo, &LabyrinthWallInfo{Col: 1, Row: 2, Dir: South, Info: 9}},
		{ToRobot, ChInDrive, &DriveCommand{Speed: -8191, Steering: 8191}},
		{ToRobot, ChInRobotParams, &RobotParameters{AxleWidth: 90, DistPerTick: 0.25}},
		{ToRobot, ChInPathFollowCtrl, &PathFollowerControl{Cmd: FollowerNewPath, Points: []Point{{1, 2}, {-3, -4}}}},
		{ToRobot, ChInPathFollowCtrl, &PathFollowerControl{Cmd: FollowerReset}},
		{ToRobot, ChInPathFollowParams, &PathFollowerParameters{LookaheadDistance: 50, SegmentLimit: 2}},
		{ToRobot, ChInAdditionalPose, &Pose{X: -1}},
		{ToRobot, ChInUserCommand, &UserCommand{ID: 42}},
	}
	for _, tc := range testCases {
		t.Run(tc.route.String()+"/"+TypeName(tc.msg), func(t *testing.T) {
			data, err := tc.msg.MarshalBinary()
			require.NoError(t, err)
			msg, err := Decode(tc.route, tc.ch, data)
			require.NoError(t, err)
			require.Equal(t, tc.msg, msg)
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	_, err := Decode(FromRobot, ChOutRDP, []byte{1})
	require.Equal(t, &ErrUnknownChannel{Route: FromRobot, Channel: ChOutRDP}, err)
	require.EqualError(t, err, "unknown channel: out 7")

	_, err = Decode(ToRobot, 15, nil)
	require.Error(t, err)

	testCases := []struct {
		route Route
		ch    comm.Channel
		data  []byte
	}{
		{FromRobot, ChOutTelemetry, make([]byte, 21)},
		{FromRobot, ChOutPose, make([]byte, 11)},
		{FromRobot, ChOutDebug, nil},
		{FromRobot, ChOutLabyWalls, []byte{7, 7, 0}},
		{ToRobot, ChInDrive, []byte{1}},
		{ToRobot, ChInPathFollowCtrl, []byte{0}},
		{ToRobot, ChInPathFollowCtrl, []byte{0, 2, 1, 1, 1, 1}},
		{ToRobot, ChInUserCommand, nil},
	}
	for _, tc := range testCases {
		_, err := Decode(tc.route, tc.ch, tc.data)
		require.Equalf(t, ErrShortPayload, err, "%s %d", tc.route, tc.ch)
	}
}

type recordWriter struct {
	ch      comm.Channel
	payload []byte
}

func (w *recordWriter) WritePacket(ch comm.Channel, payload []byte) error {
	w.ch, w.payload = ch, payload
	return nil
}

func TestSend(t *testing.T) {
	var w recordWriter
	require.NoError(t, Send(&w, ChInDrive, NewDriveCommand(10000, -10000)))
	require.Equal(t, ChInDrive, w.ch)
	require.Equal(t, []byte{0xff, 0x1f, 0x01, 0xe0}, w.payload)

	long := &PathFollowerControl{Points: make([]Point, MaxPathPoints+1)}
	require.Equal(t, comm.ErrPayloadTooLarge, Send(&w, ChInPathFollowCtrl, long))
}

func TestGetPoseReply(t *testing.T) {
	require.Equal(t, ChInPose, (&GetPose{}).ReplyChannel())
	require.Equal(t, ChInAdditionalPose, (&GetPose{AprilTag: AprilTagAdditional}).ReplyChannel())
}

func TestLogMessageTruncates(t *testing.T) {
	text := make([]byte, 300)
	data, err := (&LogMessage{Text: string(text)}).MarshalBinary()
	require.NoError(t, err)
	require.Len(t, data, comm.MaxLogText+1)
}
