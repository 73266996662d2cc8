package models

// ServiceCategory is one entry of the fixed catalog of trade categories.
type ServiceCategory struct {
	Name string `yaml:"name" json:"name"`
	Icon string `yaml:"icon" json:"icon,omitempty"`
}

// ServiceTypes is the built-in catalog of trade categories offered on the
// platform, used when no catalog file is configured.
var ServiceTypes = []ServiceCategory{
	{Name: "Carpenter", Icon: "🪚"},
	{Name: "Electrician", Icon: "⚡"},
	{Name: "Tailor", Icon: "🧵"},
	{Name: "Plumber", Icon: "🔧"},
	{Name: "Painter", Icon: "🎨"},
	{Name: "Mechanic", Icon: "🔩"},
	{Name: "House Maid", Icon: "🧹"},
	{Name: "Mehendi Artist", Icon: "🌿"},
	{Name: "Cobbler", Icon: "👞"},
	{Name: "Washerman", Icon: "🧺"},
	{Name: "Iron Man", Icon: "👔"},
	{Name: "AC Repair", Icon: "❄️"},
}

// IsValidServiceType checks membership in the built-in catalog.
func IsValidServiceType(name string) bool {
	for _, t := range ServiceTypes {
		if t.Name == name {
			return true
		}
	}
	return false
}
