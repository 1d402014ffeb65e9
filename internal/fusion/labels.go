package fusion

import "strings"

// Label is a detector class name in the engine's internal vocabulary.
type Label string

// PlantClass is a normalized label the primary detector reports for plants.
type PlantClass string

const (
	PlantGeneric PlantClass = "plant"
	PlantFlower  PlantClass = "flower"
	PlantTree    PlantClass = "tree"
	PlantCactus  PlantClass = "cactus"
)

// ContainerClass is a normalized label the primary detector reports for containers.
type ContainerClass string

const (
	ContainerClassPot       ContainerClass = "pot"
	ContainerClassRaisedBed ContainerClass = "raised_bed"
	ContainerClassGardenBed ContainerClass = "garden_bed"
	ContainerClassGrass     ContainerClass = "grass"
)

// Species is a normalized label the species model can resolve a plant to.
type Species string

const (
	SpeciesBasil      Species = "basil"
	SpeciesGeranium   Species = "geranium"
	SpeciesJasmine    Species = "jasmine"
	SpeciesLavender   Species = "lavender"
	SpeciesLemon      Species = "lemon"
	SpeciesOlive      Species = "olive"
	SpeciesOrange     Species = "orange"
	SpeciesParsley    Species = "parsley"
	SpeciesPeppermint Species = "peppermint"
)

var plantClasses = map[Label]PlantClass{
	"plant":  PlantGeneric,
	"flower": PlantFlower,
	"tree":   PlantTree,
	"cactus": PlantCactus,
}

var containerClasses = map[Label]ContainerClass{
	"pot":        ContainerClassPot,
	"raised_bed": ContainerClassRaisedBed,
	"garden_bed": ContainerClassGardenBed,
	"grass":      ContainerClassGrass,
}

var speciesVocabulary = map[Label]Species{
	"basil":      SpeciesBasil,
	"geranium":   SpeciesGeranium,
	"jasmine":    SpeciesJasmine,
	"lavender":   SpeciesLavender,
	"lemon":      SpeciesLemon,
	"olive":      SpeciesOlive,
	"orange":     SpeciesOrange,
	"parsley":    SpeciesParsley,
	"peppermint": SpeciesPeppermint,
}

// synonyms maps separator-unified names onto the vocabulary above.
var synonyms = map[string]Label{
	"potted_plant":      "plant",
	"houseplant":        "plant",
	"house_plant":       "plant",
	"flowers":           "flower",
	"cacti":             "cactus",
	"plant_pot":         "pot",
	"flowerpot":         "pot",
	"flower_pot":        "pot",
	"planter":           "pot",
	"raisedbed":         "raised_bed",
	"raised_garden_bed": "raised_bed",
	"gardenbed":         "garden_bed",
	"flowerbed":         "garden_bed",
	"flower_bed":        "garden_bed",
	"lawn":              "grass",
	"turf":              "grass",
	"sweet_basil":       "basil",
	"lemon_tree":        "lemon",
	"olive_tree":        "olive",
	"orange_tree":       "orange",
}

var separators = strings.NewReplacer(" ", "_", "-", "_")

// NormalizeLabel lowercases and trims raw, turns spaces and hyphens into
// underscores and resolves known synonyms. Unknown names pass through in
// their normalized form.
func NormalizeLabel(raw string) Label {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = separators.Replace(s)
	if canonical, ok := synonyms[s]; ok {
		return canonical
	}
	return Label(s)
}

// PlantClass reports whether l belongs to the plant vocabulary.
func (l Label) PlantClass() (PlantClass, bool) {
	c, ok := plantClasses[l]
	return c, ok
}

// ContainerClass reports whether l belongs to the container vocabulary.
func (l Label) ContainerClass() (ContainerClass, bool) {
	c, ok := containerClasses[l]
	return c, ok
}

// Species reports whether l belongs to the species vocabulary.
func (l Label) Species() (Species, bool) {
	s, ok := speciesVocabulary[l]
	return s, ok
}
