// Package device manages simulated smart-home devices and their state.
//
// Devices never involve real network communication: a state change is a
// data-layer write plus an audit log row, with best-effort notifications
// to MQTT, telemetry and the WebSocket hub.
//
// Two status-update paths coexist with deliberately different contracts.
// ApplyState is the scene-execution path: it reports plain success or
// failure as a boolean, reactivates soft-deleted devices, and never
// returns an error for a missing or foreign device. UpdateStatus is the
// direct path and raises ErrNotFound. Both write exactly one audit row
// when, and only when, the stored status actually changes.
//
// Toggle previously read the status and wrote the flipped value in two
// steps, which let concurrent toggles cancel each other out. It now runs
// a conditional update (status must still equal the value that was read)
// under a per-device lock, so concurrent toggles serialize.
package device
