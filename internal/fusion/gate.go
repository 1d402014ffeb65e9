package fusion

// Filter narrows a detection list while keeping its order.
type Filter func([]Detection) []Detection

// NewScoreFilter returns a filter that drops detections below conf.
func NewScoreFilter(conf float64) Filter {
	return func(in []Detection) []Detection {
		out := make([]Detection, 0, len(in))
		for _, d := range in {
			if d.Confidence >= conf {
				out = append(out, d)
			}
		}
		return out
	}
}

// NewVocabularyFilter returns a filter that keeps detections whose label
// satisfies member.
func NewVocabularyFilter(member func(Label) bool) Filter {
	return func(in []Detection) []Detection {
		out := make([]Detection, 0, len(in))
		for _, d := range in {
			if member(d.Label) {
				out = append(out, d)
			}
		}
		return out
	}
}

func isPlant(l Label) bool {
	_, ok := l.PlantClass()
	return ok
}

func isContainer(l Label) bool {
	_, ok := l.ContainerClass()
	return ok
}

// Gate splits sanitized detections into plant and container buckets. Plants
// must reach plantMinConfidence; containers are kept at any score. Everything
// else is dropped.
func Gate(dets []Detection, plantMinConfidence float64) (plants, containers []Detection) {
	plants = NewScoreFilter(plantMinConfidence)(NewVocabularyFilter(isPlant)(dets))
	containers = NewVocabularyFilter(isContainer)(dets)
	return plants, containers
}
