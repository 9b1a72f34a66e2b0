package mqtt

import "errors"

var (
	// ErrConnectionFailed is returned when the initial broker connection fails.
	ErrConnectionFailed = errors.New("mqtt: connection failed")

	// ErrNotConnected is returned when publishing without a broker connection.
	ErrNotConnected = errors.New("mqtt: not connected")

	// ErrInvalidTopic is returned for an empty topic.
	ErrInvalidTopic = errors.New("mqtt: invalid topic")

	// ErrInvalidQoS is returned for a QoS level outside 0-2.
	ErrInvalidQoS = errors.New("mqtt: invalid QoS level")

	// ErrPublishFailed is returned when a publish times out or is rejected.
	ErrPublishFailed = errors.New("mqtt: publish failed")
)
