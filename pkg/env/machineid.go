// Package env provides facts about the host machine.
package env

import (
	"os"

	"github.com/denisbrodbeck/machineid"
	"github.com/golang/glog"
)

// MachineID retrieves the unique ID identifying the machine for app.
// The ID is hashed with app so the raw machine ID is never exposed.
// It falls back to the host name when the machine ID is unavailable.
func MachineID(app string) string {
	id, err := machineid.ProtectedID(app)
	if err == nil {
		return id
	}
	glog.Warningf("machine id: %v", err)
	if host, err := os.Hostname(); err == nil {
		return host
	}
	return app
}

// ClientID returns an identifier for app unique on this machine.
func ClientID(app string) string {
	id := MachineID(app)
	if len(id) > 12 {
		id = id[:12]
	}
	return app + "-" + id
}
