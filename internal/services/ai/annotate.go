package ai

import (
	"fmt"
	"image"
	"image/color"

	"gardenvision/internal/fusion"

	"gocv.io/x/gocv"
)

var containerColors = map[fusion.Container]color.RGBA{
	fusion.ContainerPot:       {R: 200, G: 120, B: 40, A: 0},
	fusion.ContainerRaisedBed: {R: 160, G: 60, B: 200, A: 0},
	fusion.ContainerGround:    {R: 40, G: 200, B: 60, A: 0},
	fusion.ContainerUnknown:   {R: 255, G: 0, B: 0, A: 0},
}

// Annotate draws every plant record onto img and returns the JPEG bytes.
func Annotate(img image.Image, records []fusion.PlantRecord) ([]byte, error) {
	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, fmt.Errorf("failed to convert image: %w", err)
	}
	defer mat.Close()

	for _, record := range records {
		c := containerColors[record.Container]
		rect := record.Box.Rect()
		if err := gocv.Rectangle(&mat, rect, c, 2); err != nil {
			return nil, fmt.Errorf("failed to draw rectangle: %w", err)
		}

		pt := image.Pt(rect.Min.X, max(rect.Min.Y-5, 10))
		if err := gocv.PutText(&mat, annotationText(record), pt, gocv.FontHersheySimplex, 0.5, c, 1); err != nil {
			return nil, fmt.Errorf("failed to draw text: %w", err)
		}
	}

	buf, err := gocv.IMEncode(".jpg", mat)
	if err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	defer buf.Close()

	out := make([]byte, len(buf.GetBytes()))
	copy(out, buf.GetBytes())
	return out, nil
}

func annotationText(record fusion.PlantRecord) string {
	text := fmt.Sprintf("%s (%.2f)", record.Label, record.Confidence)
	if record.Container != fusion.ContainerUnknown {
		text += " / " + string(record.Container)
	}
	return text
}
