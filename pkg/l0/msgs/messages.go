package msgs

import (
	"bytes"
	"encoding"
	"encoding/binary"
	"errors"

	"github.com/robotalks/robolink/pkg/l0/comm"
)

// ErrShortPayload indicates the payload is smaller than the schema.
var ErrShortPayload = errors.New("payload too short")

// Message is a payload schema.
type Message interface {
	encoding.BinaryMarshaler
	encoding.BinaryUnmarshaler
}

func marshalFixed(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(binary.Size(v))
	if err := binary.Write(&buf, binary.LittleEndian, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func unmarshalFixed(data []byte, v interface{}) error {
	if len(data) < binary.Size(v) {
		return ErrShortPayload
	}
	return binary.Read(bytes.NewReader(data), binary.LittleEndian, v)
}

// Telemetry is the sensor report of the robot.
type Telemetry struct {
	Bumpers   uint8   `json:"bumpers"`
	Contacts  uint8   `json:"contacts"`
	Encoder1  int16   `json:"encoder1"`
	Encoder2  int16   `json:"encoder2"`
	Infrared1 uint16  `json:"infrared1"`
	Infrared2 uint16  `json:"infrared2"`
	Infrared3 uint16  `json:"infrared3"`
	Infrared4 uint16  `json:"infrared4"`
	Infrared5 uint16  `json:"infrared5"`
	User1     int16   `json:"user1"`
	User2     float32 `json:"user2"`
}

// Bumper checks the onset of bumper n in [0, 4].
func (m *Telemetry) Bumper(n uint) bool {
	return m.Bumpers&(1<<n) != 0
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (m *Telemetry) MarshalBinary() ([]byte, error) { return marshalFixed(m) }

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (m *Telemetry) UnmarshalBinary(data []byte) error { return unmarshalFixed(data, m) }

// Drive limits.
const (
	DriveMax int16 = 8191
	DriveMin int16 = -8191
)

// DriveCommand sets speed and steering, both in [DriveMin, DriveMax].
type DriveCommand struct {
	Speed    int16 `json:"speed"`
	Steering int16 `json:"steering"`
}

func clampDrive(v int) int16 {
	switch {
	case v > int(DriveMax):
		return DriveMax
	case v < int(DriveMin):
		return DriveMin
	}
	return int16(v)
}

// NewDriveCommand creates a DriveCommand with values clamped into range.
func NewDriveCommand(speed, steering int) *DriveCommand {
	return &DriveCommand{Speed: clampDrive(speed), Steering: clampDrive(steering)}
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (m *DriveCommand) MarshalBinary() ([]byte, error) { return marshalFixed(m) }

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (m *DriveCommand) UnmarshalBinary(data []byte) error { return unmarshalFixed(data, m) }

// Pose is the position in mm and the heading in radians counter-clockwise
// from the global x-axis.
type Pose struct {
	X     float32 `json:"x"`
	Y     float32 `json:"y"`
	Theta float32 `json:"theta"`
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (m *Pose) MarshalBinary() ([]byte, error) { return marshalFixed(m) }

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (m *Pose) UnmarshalBinary(data []byte) error { return unmarshalFixed(data, m) }

// RobotParameters are tunables for odometry.
type RobotParameters struct {
	AxleWidth   float32 `json:"axleWidth"`
	DistPerTick float32 `json:"distPerTick"`
	User1       float32 `json:"user1"`
	User2       float32 `json:"user2"`
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (m *RobotParameters) MarshalBinary() ([]byte, error) { return marshalFixed(m) }

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (m *RobotParameters) UnmarshalBinary(data []byte) error { return unmarshalFixed(data, m) }

// Point is a point in mm.
type Point struct {
	X int16 `json:"x"`
	Y int16 `json:"y"`
}

// FPoint is a point in mm with fractions.
type FPoint struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
}

// PathFollowerStatus reports the progress of path following.
type PathFollowerStatus struct {
	Enabled   bool   `json:"enabled"`
	SegStart  Point  `json:"segStart"`
	SegEnd    Point  `json:"segEnd"`
	Lookahead FPoint `json:"lookahead"`
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (m *PathFollowerStatus) MarshalBinary() ([]byte, error) { return marshalFixed(m) }

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (m *PathFollowerStatus) UnmarshalBinary(data []byte) error { return unmarshalFixed(data, m) }

// PathFollowerCommand controls the path follower.
type PathFollowerCommand uint8

// Path follower commands.
const (
	FollowerNewPath PathFollowerCommand = iota
	FollowerStart
	FollowerPause
	FollowerReset
)

// MaxPathPoints is the most points a path can carry.
const MaxPathPoints = 0xff

// PathFollowerControl commands the path follower.
// Points are only carried with FollowerNewPath.
type PathFollowerControl struct {
	Cmd    PathFollowerCommand `json:"cmd"`
	Points []Point             `json:"points"`
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (m *PathFollowerControl) MarshalBinary() ([]byte, error) {
	var points []Point
	if m.Cmd == FollowerNewPath {
		points = m.Points
	}
	if len(points) > MaxPathPoints {
		return nil, comm.ErrPayloadTooLarge
	}
	var buf bytes.Buffer
	buf.Grow(2 + 4*len(points))
	buf.WriteByte(byte(m.Cmd))
	buf.WriteByte(byte(len(points)))
	if err := binary.Write(&buf, binary.LittleEndian, points); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (m *PathFollowerControl) UnmarshalBinary(data []byte) error {
	if len(data) < 2 {
		return ErrShortPayload
	}
	m.Cmd, m.Points = PathFollowerCommand(data[0]), nil
	if m.Cmd != FollowerNewPath {
		return nil
	}
	n := int(data[1])
	if len(data) < 2+4*n {
		return ErrShortPayload
	}
	m.Points = make([]Point, n)
	return binary.Read(bytes.NewReader(data[2:]), binary.LittleEndian, m.Points)
}

// PathFollowerParameters tunes the path follower.
type PathFollowerParameters struct {
	LookaheadDistance float32 `json:"lookaheadDistance"`
	SegmentLimit      uint8   `json:"segmentLimit"`
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (m *PathFollowerParameters) MarshalBinary() ([]byte, error) { return marshalFixed(m) }

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (m *PathFollowerParameters) UnmarshalBinary(data []byte) error { return unmarshalFixed(data, m) }

// AprilTag selects the tracked marker.
type AprilTag uint8

// AprilTag types.
const (
	AprilTagMain AprilTag = iota
	AprilTagAdditional
)

// GetPose requests the tracked pose of a marker.
// The answer arrives on ChInPose or ChInAdditionalPose.
type GetPose struct {
	AprilTag AprilTag `json:"aprilTag"`
}

// ReplyChannel returns the channel the requested pose arrives on.
func (m *GetPose) ReplyChannel() comm.Channel {
	if m.AprilTag == AprilTagAdditional {
		return ChInAdditionalPose
	}
	return ChInPose
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (m *GetPose) MarshalBinary() ([]byte, error) { return marshalFixed(m) }

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (m *GetPose) UnmarshalBinary(data []byte) error { return unmarshalFixed(data, m) }

// UserCommand triggers a predefined task.
type UserCommand struct {
	ID uint8 `json:"id"`
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (m *UserCommand) MarshalBinary() ([]byte, error) { return marshalFixed(m) }

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (m *UserCommand) UnmarshalBinary(data []byte) error { return unmarshalFixed(data, m) }

// UserData carries user defined values.
type UserData struct {
	Uint16 uint16  `json:"uint16"`
	Uint32 uint32  `json:"uint32"`
	Int16  int16   `json:"int16"`
	Int32  int32   `json:"int32"`
	Float1 float32 `json:"float1"`
	Float2 float32 `json:"float2"`
	Float3 float32 `json:"float3"`
	Float4 float32 `json:"float4"`
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (m *UserData) MarshalBinary() ([]byte, error) { return marshalFixed(m) }

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (m *UserData) UnmarshalBinary(data []byte) error { return unmarshalFixed(data, m) }

// InfoClear clears displayed cell or wall information.
const InfoClear int8 = -128

// LabyrinthCellInfo annotates a cell.
// Out of range col or row clears all cells.
type LabyrinthCellInfo struct {
	Col  uint8 `json:"col"`
	Row  uint8 `json:"row"`
	Info int8  `json:"info"`
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (m *LabyrinthCellInfo) MarshalBinary() ([]byte, error) { return marshalFixed(m) }

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (m *LabyrinthCellInfo) UnmarshalBinary(data []byte) error { return unmarshalFixed(data, m) }

// LabyrinthWallInfo annotates a wall of a cell.
type LabyrinthWallInfo struct {
	Col  uint8     `json:"col"`
	Row  uint8     `json:"row"`
	Dir  Direction `json:"dir"`
	Info int8      `json:"info"`
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (m *LabyrinthWallInfo) MarshalBinary() ([]byte, error) { return marshalFixed(m) }

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (m *LabyrinthWallInfo) UnmarshalBinary(data []byte) error { return unmarshalFixed(data, m) }

// LogMessage is a log record on the debug channel.
type LogMessage struct {
	Level comm.Level `json:"level"`
	Text  string     `json:"text"`
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (m *LogMessage) MarshalBinary() ([]byte, error) {
	text := m.Text
	if len(text) > comm.MaxLogText {
		text = text[:comm.MaxLogText]
	}
	return append([]byte{byte(m.Level)}, text...), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (m *LogMessage) UnmarshalBinary(data []byte) error {
	if len(data) < 1 {
		return ErrShortPayload
	}
	m.Level, m.Text = comm.Level(data[0]), string(data[1:])
	return nil
}
