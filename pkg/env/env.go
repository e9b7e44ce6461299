// Package env provides identifiers of the host.
package env

import (
	"fmt"
	"os"

	"github.com/denisbrodbeck/machineid"
)

// MachineID retrieves the unique ID identifying the machine, hashed with
// app so it isn't exposed on the network.
func MachineID(app string) (string, error) {
	return machineid.ProtectedID(app)
}

// ClientID builds a client identifier for app. It falls back to the
// hostname and pid when the machine id isn't available.
func ClientID(app string) string {
	if id, err := MachineID(app); err == nil {
		if len(id) > 12 {
			id = id[:12]
		}
		return app + "-" + id
	}
	host, _ := os.Hostname()
	return fmt.Sprintf("%s-%s-%d", app, host, os.Getpid())
}
