package ai

import (
	"context"
	"errors"
	"image"
	"path/filepath"
	"strings"
	"testing"

	"gardenvision/internal/config"
	"gardenvision/internal/logger"
)

func TestParseRows(t *testing.T) {
	rows := [][ssdRowWidth]float32{
		{0, 1, 0.9, 0.1, 0.2, 0.5, 0.6},
		{0, 3, 0.04, 0, 0, 1, 1},
		{0, 2, 0.5, 0, 0, 1, 1},
		{0, 7, 0.3, 0.25, 0.25, 0.75, 0.75},
		{0, 1, 0, 0, 0, 0, 0},
	}
	at := func(row, col int) float32 { return rows[row][col] }
	labels := Labels{1: "Plant", 2: "Pot"}

	got := parseRows(len(rows), at, 200, 100, 0.05, labels)
	if len(got) != 3 {
		t.Fatalf("expected 3 detections, got %d", len(got))
	}

	tests := []struct {
		label          string
		x1, y1, x2, y2 float64
	}{
		{"Plant", 20, 20, 100, 60},
		{"Pot", 0, 0, 200, 100},
		{"unknown_7", 50, 25, 150, 75},
	}
	for i, tt := range tests {
		d := got[i]
		if d.Label != tt.label {
			t.Errorf("row %d label = %q, expected %q", i, d.Label, tt.label)
		}
		if !near(d.X1, tt.x1) || !near(d.Y1, tt.y1) || !near(d.X2, tt.x2) || !near(d.Y2, tt.y2) {
			t.Errorf("row %d box = (%v,%v,%v,%v), expected (%v,%v,%v,%v)",
				i, d.X1, d.Y1, d.X2, d.Y2, tt.x1, tt.y1, tt.x2, tt.y2)
		}
	}
}

func TestParseRows_DefaultPrimaryFloorKeepsWeakContainers(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	s := &DetectorService{cfg: cfg.Primary}

	rows := [][ssdRowWidth]float32{
		{0, 1, 0.8, 0.1, 0.1, 0.3, 0.3},
		{0, 2, 0.01, 0, 0, 0.5, 0.5},
	}
	at := func(row, col int) float32 { return rows[row][col] }

	got := parseRows(len(rows), at, 100, 100, s.floor(0), Labels{1: "Plant", 2: "Pot"})
	if len(got) != 2 {
		t.Fatalf("expected the 0.01 pot row to survive, got %d detections", len(got))
	}
	if got[1].Label != "Pot" {
		t.Errorf("second detection = %q, expected Pot", got[1].Label)
	}

	s.cfg.MinConfidence = 0.05
	if f := s.floor(0); f != 0.05 {
		t.Errorf("floor(0) with configured 0.05 = %v", f)
	}
	if f := s.floor(0.5); f != 0.5 {
		t.Errorf("floor(0.5) = %v", f)
	}
}

func near(a, b float64) bool {
	d := a - b
	return d < 1e-3 && d > -1e-3
}

func TestParseLabels(t *testing.T) {
	input := `# garden model
Plant
Flower

5 Raised Bed
6: Garden_Bed
Grass
`
	labels, err := ParseLabels(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseLabels failed: %v", err)
	}

	expected := Labels{0: "Plant", 1: "Flower", 5: "Raised Bed", 6: "Garden_Bed", 7: "Grass"}
	if len(labels) != len(expected) {
		t.Fatalf("expected %d labels, got %v", len(expected), labels)
	}
	for id, name := range expected {
		if labels[id] != name {
			t.Errorf("labels[%d] = %q, expected %q", id, labels[id], name)
		}
	}
	if labels.Name(42) != "unknown_42" {
		t.Errorf("unexpected fallback: %q", labels.Name(42))
	}
}

func TestLoadLabels_Missing(t *testing.T) {
	if _, err := LoadLabels(filepath.Join(t.TempDir(), "labels.txt")); err == nil {
		t.Error("expected error for missing labels file")
	}
}

func TestDetectorService_MissingModel(t *testing.T) {
	dir := t.TempDir()
	s := NewDetectorService("primary", config.ModelConfig{
		ModelPath: filepath.Join(dir, "missing.pb"),
		InputSize: 300,
	}, logger.NewNop())
	defer s.Close()

	if s.Ready() {
		t.Fatal("service should not be ready without a model")
	}
	_, err := s.Detect(context.Background(), image.NewRGBA(image.Rect(0, 0, 10, 10)), 0)
	if !errors.Is(err, ErrNotInitialized) {
		t.Errorf("expected ErrNotInitialized, got %v", err)
	}
}
