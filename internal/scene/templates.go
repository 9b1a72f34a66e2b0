package scene

import "github.com/havenhome/haven-core/internal/device"

// Rule is the state a template assigns to one device type.
type Rule struct {
	State string `json:"state"`
	Value string `json:"value,omitempty"`
}

// Template is a preset scene: a name, a bit of chrome and a rule per
// device type. The catalog replaces what would otherwise be a pile of
// per-preset branching.
type Template struct {
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Icon        string               `json:"icon"`
	Rules       map[device.Type]Rule `json:"rules"`
}

// templates is the fixed preset catalog.
var templates = []Template{
	{
		Name:        "Movie Night",
		Description: "Lights down, screen on",
		Icon:        "🎬",
		Rules: map[device.Type]Rule{
			device.TypeLight:      {State: "OFF"},
			device.TypeTV:         {State: "ON", Value: "75"},
			device.TypeThermostat: {State: "ON", Value: "21"},
		},
	},
	{
		Name:        "Romantic Evening",
		Description: "Dim lighting for a quiet evening",
		Icon:        "❤️",
		Rules: map[device.Type]Rule{
			device.TypeLight: {State: "ON", Value: "15"},
			device.TypeTV:    {State: "OFF"},
		},
	},
	{
		Name:        "Work Mode",
		Description: "Bright light for focused work",
		Icon:        "💼",
		Rules: map[device.Type]Rule{
			device.TypeLight:      {State: "ON", Value: "100"},
			device.TypeTV:         {State: "OFF"},
			device.TypeThermostat: {State: "ON", Value: "22"},
		},
	},
	{
		Name:        "Bedtime",
		Description: "Everything off, heating low",
		Icon:        "🌙",
		Rules: map[device.Type]Rule{
			device.TypeLight:      {State: "OFF"},
			device.TypeTV:         {State: "OFF"},
			device.TypeThermostat: {State: "ON", Value: "19"},
		},
	},
	{
		Name:        "Good Morning",
		Description: "Wake the house up",
		Icon:        "☀️",
		Rules: map[device.Type]Rule{
			device.TypeLight:      {State: "ON", Value: "80"},
			device.TypeThermostat: {State: "ON", Value: "23"},
		},
	},
	{
		Name:        "Party Mode",
		Description: "Bright lights, music up",
		Icon:        "🎉",
		Rules: map[device.Type]Rule{
			device.TypeLight: {State: "ON", Value: "85"},
			device.TypeTV:    {State: "ON", Value: "60"},
		},
	},
	{
		Name:        "Reading Time",
		Description: "Comfortable light for reading",
		Icon:        "📚",
		Rules: map[device.Type]Rule{
			device.TypeLight: {State: "ON", Value: "65"},
			device.TypeTV:    {State: "OFF"},
		},
	},
	{
		Name:        "Workout",
		Description: "Energising light for exercise",
		Icon:        "💪",
		Rules: map[device.Type]Rule{
			device.TypeLight:      {State: "ON", Value: "95"},
			device.TypeTV:         {State: "OFF"},
			device.TypeThermostat: {State: "ON", Value: "20"},
		},
	},
}

// Templates returns the preset catalog in its fixed order.
func Templates() []Template {
	out := make([]Template, len(templates))
	copy(out, templates)
	return out
}

// TemplateByName looks up a preset by its exact name.
func TemplateByName(name string) (Template, bool) {
	for _, t := range templates {
		if t.Name == name {
			return t, true
		}
	}
	return Template{}, false
}

// BindingsFromTemplate emits one binding per device the template has a
// rule for, positions assigned in device order starting at 1. Devices
// whose type has no rule are skipped. Pure; nothing persists here.
func BindingsFromTemplate(tpl Template, devices []device.Device) []Binding {
	bindings := []Binding{}
	position := 1
	for _, d := range devices {
		rule, ok := tpl.Rules[d.Type]
		if !ok {
			continue
		}
		bindings = append(bindings, Binding{
			DeviceID:    d.ID,
			TargetState: rule.State,
			TargetValue: rule.Value,
			Position:    position,
		})
		position++
	}
	return bindings
}
