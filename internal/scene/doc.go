// Package scene implements scene composition and execution.
//
// A scene is an ordered set of bindings, each naming a device and the
// state it should take. Composition validates every referenced device
// against the caller's device set before anything persists; one bad
// reference aborts the whole write. Execution walks the bindings in
// stored position order and applies each state through the device
// service, tolerating individual failures so one broken binding never
// blocks the rest of the scene.
package scene
