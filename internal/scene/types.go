package scene

import "time"

// Scene is a named, ordered collection of device state bindings owned
// by a single user.
type Scene struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Icon        string    `json:"icon,omitempty"`
	Position    int       `json:"position"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Bindings    []Binding `json:"bindings,omitempty"`
}

// Binding ties one device to the state a scene should put it in.
// Position is caller-supplied ordering data; it is not checked for
// uniqueness or contiguity.
type Binding struct {
	ID          string    `json:"id"`
	SceneID     string    `json:"scene_id"`
	DeviceID    string    `json:"device_id"`
	TargetState string    `json:"target_state"`
	TargetValue string    `json:"target_value,omitempty"`
	Position    int       `json:"position"`
	CreatedAt   time.Time `json:"created_at"`
}

// BindingResult records the outcome of applying one binding during
// scene execution.
type BindingResult struct {
	DeviceID    string `json:"device_id"`
	TargetState string `json:"target_state"`
	Applied     bool   `json:"applied"`
}

// ExecutionSummary aggregates the per-binding outcomes of one run.
type ExecutionSummary struct {
	SceneID    string          `json:"scene_id"`
	Total      int             `json:"total"`
	Succeeded  int             `json:"succeeded"`
	Failed     int             `json:"failed"`
	AllApplied bool            `json:"all_applied"`
	Results    []BindingResult `json:"results"`
}

// maxNameLength is the maximum allowed scene name length.
const maxNameLength = 100

// IsValidName checks if a scene name is non-empty and within length limits.
func IsValidName(name string) bool {
	return name != "" && len(name) <= maxNameLength
}
