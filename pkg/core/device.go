package core

// Device is a single discovered device. Records are ephemeral: discovery
// recomputes them on every call, nothing is persisted.
type Device struct {
	ID       string            `json:"id"`                 // adb serial or iOS UDID
	Name     string            `json:"name,omitempty"`     // human-readable name
	Status   string            `json:"status"`             // device, offline, Booted, connected, ...
	Platform string            `json:"platform"`           // Android, iOS
	Props    map[string]string `json:"props,omitempty"`    // extended properties (model, version, ...)
	Emulator bool              `json:"emulator,omitempty"` // simulator/emulator vs physical device
}

// Prop returns an extended property, or "" when the property was not
// parsed from the tool output.
func (d Device) Prop(key string) string {
	return d.Props[key]
}
