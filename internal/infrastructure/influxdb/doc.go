// Package influxdb mirrors bridge telemetry into InfluxDB v2.
//
// It wraps the official influxdb-client-go v2 library. The bridge writes
// numeric PDU status values and health report counters through
// WritePointWithTime; MQTT stays the primary output and InfluxDB is an
// optional, write-only sink enabled by influxdb.enabled.
//
// # Usage
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	client.SetOnError(func(err error) {
//	    logger.Warn("influxdb write failed", "error", err)
//	})
//
// # Error Handling
//
// Write operations are non-blocking and batch errors are delivered via a
// callback. Connection and health check errors are returned directly.
package influxdb
