// Package mqtt bridges a robot link to a MQTT broker.
//
// Topics, relative to the queue prefix:
//
//	<robot>/raw/<ch>    raw payload received from the robot
//	<robot>/msg/<ch>    decoded payload as a protobuf Struct envelope
//	<robot>/log         log messages as text
//	<robot>/errors      drained link error flags
//	<robot>/cmd/<ch>    payloads to be sent to the robot
package mqtt

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/golang/glog"
	"github.com/golang/protobuf/proto"
	"github.com/golang/protobuf/ptypes"
	structpb "github.com/golang/protobuf/ptypes/struct"

	"github.com/robotalks/robolink/pkg/framework"
	"github.com/robotalks/robolink/pkg/l0/comm"
	"github.com/robotalks/robolink/pkg/l0/msgs"
)

// PubSub is the messaging used by the Bridge.
type PubSub interface {
	Publish(topic string, payload []byte) error
	Subscribe(filter string, handler Handler) (io.Closer, error)
}

// Link is the robot side used by the Bridge.
type Link interface {
	SetCallback(comm.Channel, comm.PacketHandler)
	ClearCallback(comm.Channel)
	WritePacket(comm.Channel, []byte) error
}

// DefaultQueueSize is the default number of pending publications.
const DefaultQueueSize = 256

// Bridge forwards packets between a Link and a PubSub.
// Packets are decoded on the polling goroutine and published from Run.
type Bridge struct {
	Link   Link
	PubSub PubSub
	Robot  string
	// Channels forwarded from robot, all if empty.
	Channels []comm.Channel
	// Now is the clock for envelope timestamps.
	Now func() time.Time
	// QueueSize limits pending publications, DefaultQueueSize if zero.
	// Publications beyond the limit are dropped.
	QueueSize int

	sub       io.Closer
	queueOnce sync.Once
	queue     chan publication
	dropped   uint64
}

type publication struct {
	topic   string
	payload []byte
}

// NewBridge creates a Bridge.
func NewBridge(link Link, ps PubSub, robot string) *Bridge {
	return &Bridge{Link: link, PubSub: ps, Robot: robot, Now: time.Now}
}

// Topic returns the topic of the robot.
func (b *Bridge) Topic(sub ...string) string {
	return strings.Join(append([]string{b.Robot}, sub...), "/")
}

func (b *Bridge) channels() []comm.Channel {
	if len(b.Channels) > 0 {
		return b.Channels
	}
	chs := make([]comm.Channel, comm.MaxChannels)
	for n := range chs {
		chs[n] = comm.Channel(n)
	}
	return chs
}

// Start registers channel callbacks and subscribes to commands.
func (b *Bridge) Start() error {
	sub, err := b.PubSub.Subscribe(b.Topic("cmd", "+"), b.handleCommand)
	if err != nil {
		return err
	}
	b.sub = sub
	for _, ch := range b.channels() {
		b.Link.SetCallback(ch, b)
	}
	return nil
}

// Stop reverts Start.
func (b *Bridge) Stop() error {
	for _, ch := range b.channels() {
		b.Link.ClearCallback(ch)
	}
	if b.sub != nil {
		b.sub.Close()
		b.sub = nil
	}
	return nil
}

// Run implements framework.Runnable.
func (b *Bridge) Run(ctx context.Context) error {
	if err := b.Start(); err != nil {
		return err
	}
	defer b.Stop()
	return b.publishLoop(ctx)
}

func (b *Bridge) publishLoop(ctx context.Context) error {
	queue := b.pending()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case pub := <-queue:
			b.publish(pub)
		}
	}
}

// Drain publishes all pending publications and returns the count.
func (b *Bridge) Drain() int {
	queue := b.pending()
	for n := 0; ; n++ {
		select {
		case pub := <-queue:
			b.publish(pub)
		default:
			return n
		}
	}
}

// Dropped returns the number of publications dropped on a full queue.
func (b *Bridge) Dropped() uint64 {
	return atomic.LoadUint64(&b.dropped)
}

func (b *Bridge) pending() chan publication {
	b.queueOnce.Do(func() {
		size := b.QueueSize
		if size <= 0 {
			size = DefaultQueueSize
		}
		b.queue = make(chan publication, size)
	})
	return b.queue
}

func (b *Bridge) enqueue(topic string, payload []byte) {
	select {
	case b.pending() <- publication{topic: topic, payload: payload}:
	default:
		if atomic.AddUint64(&b.dropped, 1) == 1 || glog.V(2) {
			glog.Warningf("publish queue full, %s dropped", topic)
		}
	}
}

func (b *Bridge) publish(pub publication) {
	if err := b.PubSub.Publish(pub.topic, pub.payload); err != nil {
		glog.Warningf("publish %s: %v", pub.topic, err)
	}
}

// AddToLoop implements framework.LoopAdder.
func (b *Bridge) AddToLoop(l *framework.Loop) {
	l.AddRunnable(framework.NamedRun("bridge", b))
}

// HandlePacket implements comm.PacketHandler.
func (b *Bridge) HandlePacket(ch comm.Channel, payload []byte) {
	chName := strconv.Itoa(int(ch))
	b.enqueue(b.Topic("raw", chName), append([]byte(nil), payload...))
	msg, err := msgs.Decode(msgs.FromRobot, ch, payload)
	if err != nil {
		glog.V(2).Infof("decode channel %d: %v", ch, err)
		return
	}
	envelope, err := b.envelope(ch, msg)
	if err != nil {
		glog.Warningf("envelope %d: %v", ch, err)
	} else {
		b.enqueue(b.Topic("msg", chName), envelope)
	}
	if m, ok := msg.(*msgs.LogMessage); ok {
		b.enqueue(b.Topic("log"), []byte(fmt.Sprintf("%s %s", m.Level, m.Text)))
	}
}

// Envelope fields.
const (
	FieldChannel = "channel"
	FieldType    = "type"
	FieldTime    = "time"
	FieldData    = "data"
)

func (b *Bridge) envelope(ch comm.Channel, msg msgs.Message) ([]byte, error) {
	data, err := msgs.ToStruct(msg)
	if err != nil {
		return nil, err
	}
	ts, err := ptypes.TimestampProto(b.Now())
	if err != nil {
		return nil, err
	}
	env := &structpb.Struct{Fields: map[string]*structpb.Value{
		FieldChannel: {Kind: &structpb.Value_NumberValue{NumberValue: float64(ch)}},
		FieldType:    {Kind: &structpb.Value_StringValue{StringValue: msgs.TypeName(msg)}},
		FieldTime:    {Kind: &structpb.Value_StringValue{StringValue: ptypes.TimestampString(ts)}},
		FieldData:    {Kind: &structpb.Value_StructValue{StructValue: data}},
	}}
	return proto.Marshal(env)
}

// ParseEnvelope decodes a message published on a msg topic.
func ParseEnvelope(data []byte) (*structpb.Struct, error) {
	var env structpb.Struct
	if err := proto.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	return &env, nil
}

// ChannelFromTopic extracts the channel from the last topic level.
func ChannelFromTopic(topic string) (comm.Channel, error) {
	name := topic[strings.LastIndex(topic, "/")+1:]
	n, err := strconv.Atoi(name)
	if err != nil || n < 0 || n >= comm.MaxChannels {
		return 0, &ErrInvalidChannel{Topic: topic}
	}
	return comm.Channel(n), nil
}

func (b *Bridge) handleCommand(topic string, payload []byte) {
	ch, err := ChannelFromTopic(topic)
	if err != nil {
		glog.Warning(err)
		return
	}
	if glog.V(2) {
		glog.Infof("CMD ch=%d len=%d", ch, len(payload))
	}
	if err := b.Link.WritePacket(ch, payload); err != nil {
		glog.Errorf("write channel %d: %v", ch, err)
	}
}

// ReportErrors publishes link error flags.
func (b *Bridge) ReportErrors(flags comm.ErrorFlags) {
	glog.Warningf("link errors: %s", flags)
	b.enqueue(b.Topic("errors"), []byte(flags.String()))
}
