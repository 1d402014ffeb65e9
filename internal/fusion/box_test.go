package fusion

import (
	"encoding/json"
	"math"
	"testing"
)

func TestSanitizeBox(t *testing.T) {
	tests := []struct {
		name          string
		x1, y1        float64
		x2, y2        float64
		width, height int
		expected      Box
		ok            bool
	}{
		{"inside", 10.7, 20.2, 50.9, 60.1, 100, 100, Box{10, 20, 50, 60}, true},
		{"negative origin", -15, -3, 40, 40, 100, 100, Box{0, 0, 40, 40}, true},
		{"overflow", 50, 50, 500, 900, 100, 80, Box{50, 50, 99, 79}, true},
		{"zero width", 10, 10, 10.9, 50, 100, 100, Box{}, false},
		{"inverted", 60, 10, 20, 50, 100, 100, Box{}, false},
		{"fully outside", 200, 200, 300, 300, 100, 100, Box{}, false},
		{"fully left", -50, 10, -10, 50, 100, 100, Box{}, false},
		{"NaN", math.NaN(), 0, 10, 10, 100, 100, Box{}, false},
		{"Inf", 0, 0, math.Inf(1), 10, 100, 100, Box{}, false},
		{"empty image", 0, 0, 10, 10, 0, 0, Box{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := SanitizeBox(tt.x1, tt.y1, tt.x2, tt.y2, tt.width, tt.height)
			if ok != tt.ok {
				t.Fatalf("ok = %v, expected %v", ok, tt.ok)
			}
			if ok && got != tt.expected {
				t.Errorf("box = %+v, expected %+v", got, tt.expected)
			}
		})
	}
}

func TestSanitizeBox_Invariant(t *testing.T) {
	const w, h = 64, 48
	coords := []float64{-100, -1, 0, 0.5, 1, 31.9, 47, 48, 63, 64, 1000}
	for _, x1 := range coords {
		for _, x2 := range coords {
			for _, y := range coords {
				b, ok := SanitizeBox(x1, y, x2, y+20, w, h)
				if !ok {
					continue
				}
				if b.X1 < 0 || b.X1 >= b.X2 || b.X2 > w-1 || b.Y1 < 0 || b.Y1 >= b.Y2 || b.Y2 > h-1 {
					t.Fatalf("box %+v violates bounds for %dx%d", b, w, h)
				}
			}
		}
	}
}

func TestIoU(t *testing.T) {
	plant := Box{10, 10, 50, 50}

	if got := IoU(plant, plant); got != 1.0 {
		t.Errorf("IoU(A,A) = %v, expected 1.0", got)
	}

	bed := Box{0, 0, 100, 100}
	if got := IoU(plant, bed); math.Abs(got-0.16) > 1e-12 {
		t.Errorf("IoU(plant, bed) = %v, expected 0.16", got)
	}

	far := Box{200, 200, 210, 210}
	if got := IoU(plant, far); got != 0.0 {
		t.Errorf("disjoint IoU = %v, expected 0", got)
	}

	touching := Box{50, 10, 90, 50}
	if got := IoU(plant, touching); got != 0.0 {
		t.Errorf("edge-touching IoU = %v, expected 0", got)
	}
}

func TestIoU_Symmetric(t *testing.T) {
	boxes := []Box{
		{0, 0, 10, 10},
		{5, 5, 15, 15},
		{0, 0, 100, 30},
		{20, 0, 25, 99},
		{90, 90, 99, 99},
	}
	for _, a := range boxes {
		for _, b := range boxes {
			if IoU(a, b) != IoU(b, a) {
				t.Errorf("IoU(%v,%v) != IoU(%v,%v)", a, b, b, a)
			}
		}
	}
}

func TestBox_JSON(t *testing.T) {
	data, err := json.Marshal(Box{1, 2, 3, 4})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != "[1,2,3,4]" {
		t.Errorf("got %s, expected [1,2,3,4]", data)
	}

	var b Box
	if err := json.Unmarshal([]byte("[5,6,7]"), &b); err == nil {
		t.Error("expected error for 3 coordinates")
	}
}
