package mqtt

import "strings"

// DefaultPrefix is the topic root used when none is configured.
const DefaultPrefix = "liebert-mpx"

// Topics builds the bridge's own MQTT topics under a configurable prefix.
// Value topics are produced by the bridge package and only prefixed here.
//
//	topics := mqtt.Topics{Prefix: "dc1/mpx"}
//	topics.BridgeStatus() // "dc1/mpx/bridge/status"
type Topics struct {
	Prefix string
}

func (t Topics) root() string {
	p := strings.TrimSuffix(t.Prefix, "/")
	if p == "" {
		return DefaultPrefix
	}
	return p
}

// BridgeStatus returns the retained online/offline topic, also used for the LWT.
//
// Example: liebert-mpx/bridge/status
func (t Topics) BridgeStatus() string {
	return t.root() + "/bridge/status"
}

// BridgeHealth returns the topic for periodic health reports.
//
// Example: liebert-mpx/bridge/health
func (t Topics) BridgeHealth() string {
	return t.root() + "/bridge/health"
}

// ReceptacleControl returns the wildcard subscription for receptacle commands.
//
// Example: liebert-mpx/+/+/+/control
func (t Topics) ReceptacleControl() string {
	return t.root() + "/+/+/+/control"
}

// All returns a wildcard covering every topic under the prefix.
func (t Topics) All() string {
	return t.root() + "/#"
}
