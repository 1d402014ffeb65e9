package fusion

// Association links a plant to the container it most overlaps.
type Association struct {
	Container Container
	// Class is the matched container's vocabulary class, empty when unmatched.
	Class ContainerClass
	Score float64
	// Index points into the container slice passed to Associate, -1 when unmatched.
	Index int
}

// NoContainer is the association of a plant that overlaps no container enough.
var NoContainer = Association{Container: ContainerUnknown, Score: 0, Index: -1}

// Associate returns the container with the strictly greatest IoU against
// plant, or NoContainer when that IoU is below minIoU. On exact ties the first
// container in input order wins. Containers are not exclusive: many plants may
// land in the same one.
//
// The threshold is meant to be small: a plant well inside a large bed has a low
// IoU even though it clearly belongs to it.
func Associate(plant Detection, containers []Detection, minIoU float64) Association {
	best, bestIoU := -1, 0.0
	for i, c := range containers {
		if score := IoU(plant.Box, c.Box); score > bestIoU {
			best, bestIoU = i, score
		}
	}

	if best < 0 || bestIoU < minIoU {
		return NoContainer
	}

	match := containers[best]
	class, _ := match.Label.ContainerClass()
	return Association{
		Container: CanonicalContainer(match.Label),
		Class:     class,
		Score:     bestIoU,
		Index:     best,
	}
}
