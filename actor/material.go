package actor

// Material holds the surface properties reported with query hits
type Material struct {
	Name        string
	Density     float64
	Restitution float64 // 0= no rebound, 1= perfect restitution

	StaticFriction  float64
	DynamicFriction float64
}

// DefaultMaterial is used by shapes created without materials
var DefaultMaterial = &Material{Name: "Default", Density: 1.0, StaticFriction: 0.7, DynamicFriction: 0.7}
