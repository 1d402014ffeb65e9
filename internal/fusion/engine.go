// Package fusion turns raw object-detector output for one image into a list of
// plants, each tagged with the container it sits in and, where a second model
// can tell, its species.
//
// The pipeline is normalize, sanitize, gate, associate, species cascade and
// assemble. The Engine holds no per-request state; it is safe for concurrent
// use as long as its collaborators are.
package fusion

import (
	"context"
	"fmt"
	"image"

	"golang.org/x/sync/errgroup"
)

// Detector runs an object-detection model over an image. Implementations may
// pre-filter rows below minConfidence.
type Detector interface {
	Detect(ctx context.Context, img image.Image, minConfidence float64) ([]RawDetection, error)
}

// DetectorFunc adapts a plain function to Detector.
type DetectorFunc func(ctx context.Context, img image.Image, minConfidence float64) ([]RawDetection, error)

// Detect calls f.
func (f DetectorFunc) Detect(ctx context.Context, img image.Image, minConfidence float64) ([]RawDetection, error) {
	return f(ctx, img, minConfidence)
}

// CropEncoder turns a cropped plant region into the opaque payload carried by
// PlantRecord.Image.
type CropEncoder interface {
	EncodeCrop(img image.Image) (string, error)
}

// Thresholds are the acceptance limits of the pipeline.
type Thresholds struct {
	PlantMinConfidence   float64
	MinIoU               float64
	SpeciesMinConfidence float64
}

// DefaultThresholds returns the limits the service ships with.
func DefaultThresholds() Thresholds {
	return Thresholds{
		PlantMinConfidence:   0.25,
		MinIoU:               0.05,
		SpeciesMinConfidence: 0.90,
	}
}

// Option configures an Engine.
type Option func(*Engine)

// WithThresholds overrides DefaultThresholds.
func WithThresholds(t Thresholds) Option {
	return func(e *Engine) { e.thresholds = t }
}

// WithSpeciesWorkers lets up to n species classifications run at once.
// Values below 1 mean sequential.
func WithSpeciesWorkers(n int) Option {
	return func(e *Engine) {
		if n < 1 {
			n = 1
		}
		e.workers = n
	}
}

// Engine is the detection fusion pipeline.
type Engine struct {
	primary    Detector
	species    Detector
	encoder    CropEncoder
	thresholds Thresholds
	workers    int
}

// NewEngine builds an engine around its collaborators. species may be nil, in
// which case every plant that is not a cactus gets UnknownSpecies.
func NewEngine(primary, species Detector, encoder CropEncoder, opts ...Option) (*Engine, error) {
	if primary == nil {
		return nil, ErrNoDetector
	}
	if encoder == nil {
		return nil, ErrNoEncoder
	}
	e := &Engine{
		primary:    primary,
		species:    species,
		encoder:    encoder,
		thresholds: DefaultThresholds(),
		workers:    1,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Thresholds returns the limits in effect.
func (e *Engine) Thresholds() Thresholds {
	return e.thresholds
}

// Run invokes the primary detector on img and fuses its output.
func (e *Engine) Run(ctx context.Context, img image.Image) ([]PlantRecord, error) {
	// Containers are kept at any score, so the primary model gets no floor.
	raw, err := e.primary.Detect(ctx, img, 0)
	if err != nil {
		return nil, &ModelError{Stage: StagePrimary, Err: err}
	}
	return e.Fuse(ctx, img, raw)
}

// Fuse runs the pipeline over detections already produced for img. Records
// come back in the order the detector emitted the plants.
func (e *Engine) Fuse(ctx context.Context, img image.Image, raw []RawDetection) ([]PlantRecord, error) {
	bounds := img.Bounds()
	dets := Sanitize(raw, bounds.Dx(), bounds.Dy())
	plants, containers := Gate(dets, e.thresholds.PlantMinConfidence)
	if len(plants) == 0 {
		return []PlantRecord{}, nil
	}

	species := make([]SpeciesResult, len(plants))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, plant := range plants {
		i, plant := i, plant
		g.Go(func() error {
			res, err := classifySpecies(gctx, e.species, img, plant, e.thresholds.SpeciesMinConfidence)
			if err != nil {
				return err
			}
			species[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	records := make([]PlantRecord, 0, len(plants))
	for i, plant := range plants {
		payload, err := e.encoder.EncodeCrop(cropBox(img, plant.Box))
		if err != nil {
			return nil, fmt.Errorf("failed to encode crop %d: %w", i, err)
		}
		assoc := Associate(plant, containers, e.thresholds.MinIoU)
		records = append(records, Assemble(plant, assoc, species[i], payload))
	}
	return records, nil
}
