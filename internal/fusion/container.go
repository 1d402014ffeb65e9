package fusion

// Container is the UI-facing container category reported for a plant.
type Container string

const (
	ContainerPot       Container = "pot"
	ContainerRaisedBed Container = "raised_bed"
	ContainerGround    Container = "ground"
	ContainerUnknown   Container = "unknown"
)

// CanonicalContainer maps a normalized container label onto one of the four
// output categories. Garden beds and grass both count as ground.
func CanonicalContainer(l Label) Container {
	class, ok := l.ContainerClass()
	if !ok {
		return ContainerUnknown
	}
	switch class {
	case ContainerClassPot:
		return ContainerPot
	case ContainerClassRaisedBed:
		return ContainerRaisedBed
	case ContainerClassGardenBed, ContainerClassGrass:
		return ContainerGround
	default:
		return ContainerUnknown
	}
}
