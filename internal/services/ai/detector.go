package ai

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"sync"

	"gardenvision/internal/config"
	"gardenvision/internal/fusion"
	"gardenvision/internal/logger"

	"gocv.io/x/gocv"
)

// ErrNotInitialized is returned by Detect when the network failed to load.
var ErrNotInitialized = errors.New("detection network not initialized")

// ssdRowWidth is the number of values per detection row of an SSD output:
// [batch, class, confidence, x1, y1, x2, y2] with normalized coordinates.
const ssdRowWidth = 7

// DetectorService runs one OpenCV DNN model. It implements fusion.Detector.
type DetectorService struct {
	name   string
	cfg    config.ModelConfig
	net    gocv.Net
	labels Labels
	ready  bool
	mu     sync.Mutex // gocv.Net is not safe for concurrent Forward calls
	logger *logger.Logger
}

var _ fusion.Detector = (*DetectorService)(nil)

// NewDetectorService loads the model described by cfg. A model that cannot be
// loaded is logged and leaves the service in a state where Detect fails.
func NewDetectorService(name string, cfg config.ModelConfig, logger *logger.Logger) *DetectorService {
	service := &DetectorService{
		name:   name,
		cfg:    cfg,
		labels: Labels{},
		logger: logger,
	}

	if cfg.LabelsPath != "" {
		labels, err := LoadLabels(cfg.LabelsPath)
		if err != nil {
			logger.Warning("Could not load %s labels: %v", name, err)
		} else {
			service.labels = labels
		}
	}

	if err := service.initializeNet(); err != nil {
		logger.Warning("Could not initialize %s network: %v", name, err)
		return service
	}

	return service
}

func (s *DetectorService) initializeNet() error {
	if _, err := os.Stat(s.cfg.ModelPath); os.IsNotExist(err) {
		return fmt.Errorf("model file not found: %s", s.cfg.ModelPath)
	}
	if s.cfg.ConfigPath != "" {
		if _, err := os.Stat(s.cfg.ConfigPath); os.IsNotExist(err) {
			return fmt.Errorf("config file not found: %s", s.cfg.ConfigPath)
		}
	}

	net := gocv.ReadNet(s.cfg.ModelPath, s.cfg.ConfigPath)
	if net.Empty() {
		return fmt.Errorf("failed to load network")
	}
	errBackend := net.SetPreferableBackend(gocv.NetBackendDefault)
	errTarget := net.SetPreferableTarget(gocv.NetTargetCPU)
	if errBackend != nil || errTarget != nil {
		net.Close()
		return fmt.Errorf("failed to set preferable backend or target")
	}

	s.net = net
	s.ready = true
	s.logger.Info("%s network initialized (%d labels)", s.name, len(s.labels))
	return nil
}

// Name identifies the model in logs.
func (s *DetectorService) Name() string {
	return s.name
}

// Ready reports whether the network loaded.
func (s *DetectorService) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready
}

// Detect runs the network over img and returns every row whose confidence is
// at least max(minConfidence, the configured model floor). Coordinates are in
// pixels of img and are not clamped.
func (s *DetectorService) Detect(ctx context.Context, img image.Image, minConfidence float64) ([]fusion.RawDetection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if !s.Ready() {
		return nil, fmt.Errorf("%s: %w", s.name, ErrNotInitialized)
	}

	bounds := img.Bounds()
	if bounds.Empty() {
		return []fusion.RawDetection{}, nil
	}

	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, fmt.Errorf("failed to convert image: %w", err)
	}
	defer mat.Close()

	size := s.cfg.InputSize
	mean := s.cfg.Mean
	blob := gocv.BlobFromImage(mat, s.cfg.Scale, image.Pt(size, size), gocv.NewScalar(mean, mean, mean, 0), s.cfg.SwapRB, false)
	defer blob.Close()

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return nil, fmt.Errorf("%s: %w", s.name, ErrNotInitialized)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.net.SetInput(blob, "")
	output := s.net.Forward("")
	defer output.Close()

	if output.Empty() || output.Total()%ssdRowWidth != 0 {
		return nil, fmt.Errorf("%s: unexpected output shape %v", s.name, output.Size())
	}

	rows := output.Reshape(1, output.Total()/ssdRowWidth)
	defer rows.Close()

	floor := s.floor(minConfidence)
	detections := parseRows(rows.Rows(), rows.GetFloatAt, bounds.Dx(), bounds.Dy(), floor, s.labels)
	s.logger.Info("%s: %d detections above %.2f", s.name, len(detections), floor)
	return detections, nil
}

// floor is the score below which rows are dropped: the caller's request,
// raised to the model's configured minimum.
func (s *DetectorService) floor(requested float64) float64 {
	return max(requested, s.cfg.MinConfidence)
}

// parseRows converts SSD output rows into raw detections scaled to a
// width x height frame. Rows below minConfidence are skipped.
func parseRows(n int, at func(row, col int) float32, width, height int, minConfidence float64, labels Labels) []fusion.RawDetection {
	detections := make([]fusion.RawDetection, 0, n)
	for i := 0; i < n; i++ {
		confidence := float64(at(i, 2))
		if confidence < minConfidence || confidence <= 0 {
			continue
		}
		classID := int(at(i, 1))
		detections = append(detections, fusion.RawDetection{
			Label:      labels.Name(classID),
			Confidence: confidence,
			X1:         float64(at(i, 3)) * float64(width),
			Y1:         float64(at(i, 4)) * float64(height),
			X2:         float64(at(i, 5)) * float64(width),
			Y2:         float64(at(i, 6)) * float64(height),
		})
	}
	return detections
}

// Close releases the network.
func (s *DetectorService) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return nil
	}
	s.ready = false
	return s.net.Close()
}
