// Package mqtt provides the bridge's MQTT broker connection.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - Topic subscriptions with wildcard support
//   - Last Will and Testament (LWT) on <prefix>/bridge/status
//
// Every topic the bridge owns lives under a configurable prefix
// (mqtt.prefix, default "liebert-mpx"). Value topics are built by the
// bridge package; this package only adds the prefix-level helpers in Topics.
//
// # Security Considerations
//
//   - TLS is on by default (cfg.Broker.TLS=true, port 8883)
//   - Credentials are validated against the broker ACL
//   - Message payloads are not encrypted beyond TLS transport
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.Subscribe(client.Topics().ReceptacleControl(), 0, inbox.Handle)
package mqtt
