// Package telemetry records Haven operational measurements in InfluxDB.
//
// Two measurements are written: device_state_change (one point per actual
// status transition) and scene_execution (one point per Execute call, with
// per-binding success/failure counts). Writes are asynchronous and
// best-effort; telemetry never blocks or fails a core operation.
//
// Like the MQTT event publisher, the telemetry client is optional: a nil
// *Client is a valid no-op recorder.
package telemetry

import (
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"

	"github.com/havenhome/haven-core/internal/infrastructure/config"
)

// Client writes measurements to InfluxDB using the non-blocking write API.
type Client struct {
	client   influxdb2.Client
	writeAPI api.WriteAPI
}

// Connect creates an InfluxDB client from configuration.
// The underlying write API batches points and retries transient failures.
func Connect(cfg config.TelemetryConfig) *Client {
	client := influxdb2.NewClient(cfg.URL, cfg.Token)
	return &Client{
		client:   client,
		writeAPI: client.WriteAPI(cfg.Org, cfg.Bucket),
	}
}

// RecordStateChange writes one device_state_change point.
// No-op on a nil client.
func (c *Client) RecordStateChange(deviceID, oldStatus, newStatus string) {
	if c == nil {
		return
	}
	p := influxdb2.NewPoint("device_state_change",
		map[string]string{"device_id": deviceID},
		map[string]any{
			"old_status": oldStatus,
			"new_status": newStatus,
		},
		time.Now().UTC(),
	)
	c.writeAPI.WritePoint(p)
}

// RecordSceneExecution writes one scene_execution point.
// No-op on a nil client.
func (c *Client) RecordSceneExecution(sceneID string, total, succeeded, failed int, duration time.Duration) {
	if c == nil {
		return
	}
	p := influxdb2.NewPoint("scene_execution",
		map[string]string{"scene_id": sceneID},
		map[string]any{
			"bindings_total":     total,
			"bindings_succeeded": succeeded,
			"bindings_failed":    failed,
			"duration_ms":        duration.Milliseconds(),
		},
		time.Now().UTC(),
	)
	c.writeAPI.WritePoint(p)
}

// Close flushes buffered points and releases resources.
func (c *Client) Close() {
	if c == nil {
		return
	}
	c.writeAPI.Flush()
	c.client.Close()
}
