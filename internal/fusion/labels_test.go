package fusion

import "testing"

func TestNormalizeLabel(t *testing.T) {
	tests := []struct {
		raw      string
		expected Label
	}{
		{"Plant", "plant"},
		{"  Flower ", "flower"},
		{"Potted Plant", "plant"},
		{"potted-plant", "plant"},
		{"Plant_Pot", "pot"},
		{"Raised_Bed", "raised_bed"},
		{"Raised Bed", "raised_bed"},
		{"GardenBed", "garden_bed"},
		{"Garden_Bed", "garden_bed"},
		{"Lawn", "grass"},
		{"Grass", "grass"},
		{"Lemon Tree", "lemon"},
		{"Peppermint", "peppermint"},
		{"", ""},
		{"Traffic Light", "traffic_light"},
	}

	for _, tt := range tests {
		if got := NormalizeLabel(tt.raw); got != tt.expected {
			t.Errorf("NormalizeLabel(%q) = %q, expected %q", tt.raw, got, tt.expected)
		}
	}
}

func TestNormalizeLabel_Idempotent(t *testing.T) {
	for _, raw := range []string{"Potted Plant", "flower-pot", "Raised Bed", "sweet basil", "Dog"} {
		once := NormalizeLabel(raw)
		if twice := NormalizeLabel(string(once)); twice != once {
			t.Errorf("NormalizeLabel not idempotent for %q: %q then %q", raw, once, twice)
		}
	}
}

func TestVocabularyMembership(t *testing.T) {
	for _, l := range []Label{"plant", "flower", "tree", "cactus"} {
		if _, ok := l.PlantClass(); !ok {
			t.Errorf("%q should be a plant class", l)
		}
		if _, ok := l.ContainerClass(); ok {
			t.Errorf("%q should not be a container class", l)
		}
	}
	for _, l := range []Label{"pot", "raised_bed", "garden_bed", "grass"} {
		if _, ok := l.ContainerClass(); !ok {
			t.Errorf("%q should be a container class", l)
		}
		if _, ok := l.PlantClass(); ok {
			t.Errorf("%q should not be a plant class", l)
		}
	}
	for _, l := range []Label{"basil", "geranium", "jasmine", "lavender", "lemon", "olive", "orange", "parsley", "peppermint"} {
		if _, ok := l.Species(); !ok {
			t.Errorf("%q should be a species", l)
		}
	}
	if _, ok := Label("rose").Species(); ok {
		t.Error("rose is not in the species vocabulary")
	}
}
