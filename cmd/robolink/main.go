package main

import (
	"flag"
	"log"

	"github.com/golang/glog"

	"github.com/robotalks/robolink/pkg/env"
	"github.com/robotalks/robolink/pkg/framework"
	"github.com/robotalks/robolink/pkg/l0/comm"
)

func init() {
	env.SetupFlags()
}

func main() {
	flag.Parse()
	defer glog.Flush()

	conf := env.MustNewConfig()
	e := conf.MustNewEnv()
	defer e.Close()
	glog.Infof("link opened on %s, robot %s", conf.Port, conf.RobotID)

	loop := conf.NewLoop().Add(e)
	q, err := conf.NewQueue()
	if err != nil {
		log.Fatalln(err)
	}
	if q != nil {
		if err := q.Connect(); err != nil {
			log.Fatalf("connect %s: %v", conf.MQTTBrokerURL, err)
		}
		defer q.Close()
		loop.Add(e.NewBridge(q))
	}

	err = framework.NewRunner().HandleSignals().Go(loop).Wait()
	if err != nil {
		glog.Error(err)
	}
	stats := e.Link.Stats()
	for n := 0; n < comm.MaxChannels; n++ {
		if cs := stats.Channel(comm.Channel(n)); cs.Received+cs.Sent > 0 {
			glog.Infof("ch%d rx=%d tx=%d", n, cs.Received, cs.Sent)
		}
	}
}
