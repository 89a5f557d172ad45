// Package env provides environment defaults shared by L1 controllers
// and clients.
package env

import (
	"os"

	"github.com/denisbrodbeck/machineid"
	"github.com/golang/glog"
)

// Environment variables.
const (
	EnvMQTTURL     = "BEAN_MQTT_URL"
	EnvRegistryURL = "BEAN_REGISTRY_URL"
	EnvType        = "BEAN_TYPE"
	EnvID          = "BEAN_ID"
	EnvSerial      = "BEAN_SERIAL"
)

// DefaultMQTTURL is the broker used when nothing is configured.
const DefaultMQTTURL = "mqtt://localhost:1883/bean/"

// appID keys the hashed machine ID so the raw ID is never published.
const appID = "bean.go"

// MachineID retrieves the unique ID identifying the machine. The host
// name is used if the machine ID is not available.
func MachineID() string {
	id, err := machineid.ProtectedID(appID)
	if err == nil {
		if len(id) > 16 {
			id = id[:16]
		}
		return id
	}
	glog.Warningf("machine id unavailable: %v", err)
	if host, err := os.Hostname(); err == nil {
		return host
	}
	return "unknown"
}

// Getenv returns the value of an environment variable or def if unset.
func Getenv(name, def string) string {
	if val := os.Getenv(name); val != "" {
		return val
	}
	return def
}
