package env

import (
	"github.com/denisbrodbeck/machineid"
	"github.com/golang/glog"
)

// fallbackRobotID is used when the machine ID is unavailable.
const fallbackRobotID = "robot"

// MachineID retrieves the unique ID identifying the machine.
func MachineID() string {
	id, err := machineid.ProtectedID("robolink")
	if err != nil {
		glog.Warningf("machine id unavailable: %v", err)
		return fallbackRobotID
	}
	return id[:16]
}
