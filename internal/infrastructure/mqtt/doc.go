// Package mqtt publishes Haven events to an MQTT broker.
//
// The broker is strictly an outbound notification channel: device status
// transitions and scene execution summaries are published for dashboards
// and third-party integrations to consume. No device communication happens
// here; Haven's device state changes are pure data-layer operations.
//
// The client is optional end to end. Connect is only called when eventing
// is enabled in config, and a nil *Client is a safe no-op publisher, so
// core components can hold one unconditionally.
package mqtt
