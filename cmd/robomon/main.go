package main

import (
	"flag"
	"log"
	"os"
	"strings"

	"github.com/golang/protobuf/jsonpb"

	"github.com/robotalks/robolink/pkg/bridge/mqtt"
)

var (
	mqttURL = "mqtt://localhost:1883/robo/"
	filter  = "#"
)

func init() {
	if val := os.Getenv("ROBO_MQTT_URL"); val != "" {
		mqttURL = val
	}
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL.")
	flag.StringVar(&filter, "topic", filter, "Topic filter to subscribe.")
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	q, err := mqtt.NewQueueFromURL(mqttURL)
	if err != nil {
		log.Fatalln(err)
	}
	if err := q.Connect(); err != nil {
		log.Fatalln(err)
	}
	defer q.Close()

	marshaler := &jsonpb.Marshaler{}
	_, err = q.Subscribe(filter, func(topic string, payload []byte) {
		switch {
		case strings.Contains(topic, "/msg/"):
			env, err := mqtt.ParseEnvelope(payload)
			if err != nil {
				log.Printf("%s: bad envelope: %v", topic, err)
				return
			}
			out, err := marshaler.MarshalToString(env)
			if err != nil {
				log.Printf("%s: %v", topic, err)
				return
			}
			log.Printf("%s: %s", topic, out)
		case strings.Contains(topic, "/raw/"), strings.Contains(topic, "/cmd/"):
			log.Printf("%s: % x", topic, payload)
		default:
			log.Printf("%s: %s", topic, string(payload))
		}
	})
	if err != nil {
		log.Fatalln(err)
	}
	<-(chan struct{})(nil)
}
