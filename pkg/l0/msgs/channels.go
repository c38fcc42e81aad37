package msgs

import (
	"fmt"

	"github.com/robotalks/robolink/pkg/l0/comm"
)

// Route is the direction a payload travels.
type Route uint8

// Routes
const (
	// FromRobot is robot to host.
	FromRobot Route = iota
	// ToRobot is host to robot.
	ToRobot
)

// String implements fmt.Stringer.
func (r Route) String() string {
	switch r {
	case FromRobot:
		return "out"
	case ToRobot:
		return "in"
	}
	return fmt.Sprintf("route(%d)", uint8(r))
}

// Robot to host channels.
const (
	ChOutDebug            comm.Channel = 0x00
	ChOutTelemetry        comm.Channel = 0x01
	ChOutPose             comm.Channel = 0x02
	ChOutPathFollowStatus comm.Channel = 0x03
	ChOutLabyWalls        comm.Channel = 0x04
	ChOutGetPose          comm.Channel = 0x05
	ChOutUserData         comm.Channel = 0x06
	ChOutRDP              comm.Channel = 0x07
	ChOutLabyCellInfo     comm.Channel = 0x08
	ChOutLabyWallInfo     comm.Channel = 0x09
)

// Host to robot channels.
const (
	ChInDebug            comm.Channel = 0x00
	ChInDrive            comm.Channel = 0x01
	ChInRobotParams      comm.Channel = 0x02
	ChInPathFollowCtrl   comm.Channel = 0x03
	ChInPathFollowParams comm.Channel = 0x04
	ChInPose             comm.Channel = 0x05
	ChInUserCommand      comm.Channel = 0x06
	ChInAdditionalPose   comm.Channel = 0x08
)

type factory func() Message

var outMessages = map[comm.Channel]factory{
	ChOutDebug:            func() Message { return &LogMessage{} },
	ChOutTelemetry:        func() Message { return &Telemetry{} },
	ChOutPose:             func() Message { return &Pose{} },
	ChOutPathFollowStatus: func() Message { return &PathFollowerStatus{} },
	ChOutLabyWalls:        func() Message { return &LabyrinthWalls{} },
	ChOutGetPose:          func() Message { return &GetPose{} },
	ChOutUserData:         func() Message { return &UserData{} },
	ChOutLabyCellInfo:     func() Message { return &LabyrinthCellInfo{} },
	ChOutLabyWallInfo:     func() Message { return &LabyrinthWallInfo{} },
}

var inMessages = map[comm.Channel]factory{
	ChInDebug:            func() Message { return &LogMessage{} },
	ChInDrive:            func() Message { return &DriveCommand{} },
	ChInRobotParams:      func() Message { return &RobotParameters{} },
	ChInPathFollowCtrl:   func() Message { return &PathFollowerControl{} },
	ChInPathFollowParams: func() Message { return &PathFollowerParameters{} },
	ChInPose:             func() Message { return &Pose{} },
	ChInUserCommand:      func() Message { return &UserCommand{} },
	ChInAdditionalPose:   func() Message { return &Pose{} },
}

// ErrUnknownChannel indicates no schema is defined for a channel.
type ErrUnknownChannel struct {
	Route   Route
	Channel comm.Channel
}

// Error implements error.
func (e *ErrUnknownChannel) Error() string {
	return fmt.Sprintf("unknown channel: %s %d", e.Route, e.Channel)
}

// Decode parses a payload received on a channel into its message type.
func Decode(route Route, ch comm.Channel, payload []byte) (Message, error) {
	types := outMessages
	if route == ToRobot {
		types = inMessages
	}
	create, ok := types[ch.Masked()]
	if !ok {
		return nil, &ErrUnknownChannel{Route: route, Channel: ch.Masked()}
	}
	msg := create()
	if err := msg.UnmarshalBinary(payload); err != nil {
		return nil, err
	}
	return msg, nil
}

// PacketWriter sends payloads on channels.
type PacketWriter interface {
	WritePacket(comm.Channel, []byte) error
}

// Send encodes msg and writes it on ch.
func Send(w PacketWriter, ch comm.Channel, msg Message) error {
	payload, err := msg.MarshalBinary()
	if err != nil {
		return err
	}
	return w.WritePacket(ch, payload)
}
