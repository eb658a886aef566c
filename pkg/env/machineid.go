package env

import (
	"os"

	"github.com/denisbrodbeck/machineid"
	"github.com/golang/glog"
)

const appID = "uartframe"

// MachineID retrieves an ID identifying the machine, hashed per application
// so the raw machine id is not exposed on the broker.
func MachineID() string {
	id, err := machineid.ProtectedID(appID)
	if err == nil {
		return id
	}
	glog.Warningf("machine id unavailable: %v", err)
	if host, err := os.Hostname(); err == nil {
		return host
	}
	return "unknown"
}

// DefaultClientID is the default client id on MQTT brokers.
func DefaultClientID() string {
	id := MachineID()
	if len(id) > 12 {
		id = id[:12]
	}
	return appID + "-" + id
}
