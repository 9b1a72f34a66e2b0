package mqtt

// Topic layout for Haven events. All topics live under the haven/ prefix:
//
//	haven/system/status                      retained service availability
//	haven/events/device/{id}/status          device status transitions
//	haven/events/scene/{id}/executed         scene execution summaries
//
// These are outbound notification topics for dashboards and integrations.
// Haven never commands physical devices over MQTT; device state changes are
// data-layer operations.

// TopicSystemStatus is the retained service availability topic.
const TopicSystemStatus = "haven/system/status"

// DeviceStatusTopic returns the event topic for a device's status changes.
func DeviceStatusTopic(deviceID string) string {
	return "haven/events/device/" + deviceID + "/status"
}

// SceneExecutedTopic returns the event topic for a scene's execution summaries.
func SceneExecutedTopic(sceneID string) string {
	return "haven/events/scene/" + sceneID + "/executed"
}
