package device

import "time"

// Type identifies the kind of device. The scene template catalog keys
// its rules off this vocabulary.
type Type string

// Known device types.
const (
	TypeLight      Type = "LIGHT"
	TypeTV         Type = "TV"
	TypeThermostat Type = "THERMOSTAT"
	TypeCamera     Type = "CAMERA"
	TypeSpeaker    Type = "SPEAKER"
	TypeFan        Type = "FAN"
	TypeAC         Type = "AC"
	TypeHeater     Type = "HEATER"
)

// validTypes is the set of accepted device types.
var validTypes = map[Type]bool{
	TypeLight: true, TypeTV: true, TypeThermostat: true, TypeCamera: true,
	TypeSpeaker: true, TypeFan: true, TypeAC: true, TypeHeater: true,
}

// IsValidType reports whether t is a known device type.
func IsValidType(t Type) bool {
	return validTypes[t]
}

// Common status values. Status is free-form text (a thermostat may store
// "22" via a scene's target value path) but ON/OFF dominate.
const (
	StatusOn  = "ON"
	StatusOff = "OFF"
)

// Device represents a simulated smart-home device owned by a single user.
type Device struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	RoomID    string    `json:"room_id,omitempty"`
	Name      string    `json:"name"`
	Type      Type      `json:"type"`
	Status    string    `json:"status"`
	IsOnline  bool      `json:"is_online"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Log is one append-only audit row recording a device state transition.
type Log struct {
	ID          string    `json:"id"`
	DeviceID    string    `json:"device_id"`
	Action      string    `json:"action"`
	OldStatus   string    `json:"old_status"`
	NewStatus   string    `json:"new_status"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// Log actions.
const (
	ActionAdd          = "add"
	ActionStatusChange = "status_change"
)

// StatusInfo is the direct status read/write payload.
type StatusInfo struct {
	Status   string `json:"status"`
	IsOnline bool   `json:"is_online"`
}
