package comm

import (
	"github.com/golang/glog"

	"github.com/robotalks/robolink/pkg/framework"
)

// Poller drains a Link's input on each loop iteration.
type Poller struct {
	Link *Link
	// OnErrors receives non-empty error flags after each poll.
	// Flags are left accumulated if not set.
	OnErrors func(ErrorFlags)
}

// Control implements framework.Controller.
func (p *Poller) Control(framework.ControlContext) error {
	if err := p.Link.ReadPackets(); err != nil && err != ErrConcurrentRead {
		return err
	}
	if p.OnErrors != nil {
		if flags := p.Link.GetErrors(); flags != 0 {
			if glog.V(2) {
				glog.Infof("link errors: %s", flags)
			}
			p.OnErrors(flags)
		}
	}
	return nil
}

// AddToLoop implements framework.LoopAdder.
func (p *Poller) AddToLoop(l *framework.Loop) {
	l.AddController(framework.PrLvSense, p)
}
