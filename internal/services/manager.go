package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"sync"
	"time"

	"gardenvision/internal/fusion"
	"gardenvision/internal/logger"
	"gardenvision/internal/models"
	"gardenvision/internal/repository"
	"gardenvision/internal/services/ai"
	"gardenvision/internal/services/cache"
	"gardenvision/internal/services/media"
	"gardenvision/internal/services/storage"
)

// ErrInvalidImage is returned when an upload cannot be decoded.
var ErrInvalidImage = errors.New("invalid image")

// PredictionCache stores finished predictions by image hash.
type PredictionCache interface {
	GetPrediction(ctx context.Context, hash string) (*models.Prediction, error)
	SetPrediction(ctx context.Context, hash string, prediction *models.Prediction) error
}

// Broadcaster pushes messages to live viewers.
type Broadcaster interface {
	Broadcast(message []byte)
}

// AnnotateFunc renders plant records over an image as JPEG bytes.
type AnnotateFunc func(img image.Image, records []fusion.PlantRecord) ([]byte, error)

// ManagerOptions holds the optional collaborators and tuning of a Manager.
type ManagerOptions struct {
	Cache            PredictionCache
	Annotate         AnnotateFunc
	InferenceTimeout time.Duration
	ArchiveWorkers   int
}

// Manager runs the prediction workflow around the fusion engine.
type Manager struct {
	engine      *fusion.Engine
	photos      repository.PhotoRepository
	plants      repository.PlantRepository
	buffer      *storage.BufferService
	broadcaster Broadcaster
	predictions PredictionCache
	annotate    AnnotateFunc
	timeout     time.Duration
	logger      *logger.Logger

	archiveQueue chan archiveTask
	numWorkers   int
	stopMu       sync.RWMutex
	stopped      bool
	wg           sync.WaitGroup
}

type archiveTask struct {
	Image   image.Image
	Records []fusion.PlantRecord
	Hash    string
}

func NewManager(engine *fusion.Engine, photos repository.PhotoRepository, plants repository.PlantRepository, buffer *storage.BufferService, broadcaster Broadcaster, opts ManagerOptions, logger *logger.Logger) *Manager {
	manager := &Manager{
		engine:       engine,
		photos:       photos,
		plants:       plants,
		buffer:       buffer,
		broadcaster:  broadcaster,
		predictions:  opts.Cache,
		annotate:     opts.Annotate,
		timeout:      opts.InferenceTimeout,
		logger:       logger,
		numWorkers:   max(opts.ArchiveWorkers, 1),
		archiveQueue: make(chan archiveTask, 32),
	}
	if manager.annotate == nil {
		manager.annotate = ai.Annotate
	}

	for i := 0; i < manager.numWorkers; i++ {
		manager.wg.Add(1)
		go manager.archiveWorker(i)
	}

	return manager
}

// Predict runs the full workflow for one uploaded image: cache lookup,
// decode, fusion, persistence, archiving, caching and viewer notification.
func (m *Manager) Predict(ctx context.Context, data []byte, filename string) (*models.Prediction, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, media.ErrEmptyImage)
	}
	hash := cache.ImageHash(data)

	if cached := m.cachedPrediction(ctx, hash); cached != nil {
		stored, err := m.photos.GetByHash(hash)
		if err != nil {
			return nil, err
		}
		if stored != nil && stored.ID == cached.PhotoID {
			m.logger.Info("Cache hit for %s (%s)", filename, hash)
			m.notify(cached, filename)
			return cached, nil
		}
		m.logger.Warning("Cached prediction %s has no stored photo, recomputing", hash)
	}

	img, err := media.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	records, err := m.run(ctx, img)
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	photo := &models.Photo{
		Hash:       hash,
		Filename:   filename,
		Width:      bounds.Dx(),
		Height:     bounds.Dy(),
		FileSize:   int64(len(data)),
		PlantCount: len(records),
	}

	existing, err := m.photos.GetByHash(hash)
	if err != nil {
		return nil, err
	}
	if existing == nil || existing.FilePath == "" {
		photo.FilePath = m.buffer.AddImage(data, storage.FileName(hash, "original"))
	}

	photoID, err := m.photos.Save(photo)
	if err != nil {
		return nil, err
	}

	plants := make([]models.Plant, len(records))
	for i, r := range records {
		plants[i] = models.NewPlant(photoID, i, r)
	}
	if err := m.plants.ReplaceForPhoto(photoID, plants); err != nil {
		return nil, err
	}

	prediction := &models.Prediction{
		Records: records,
		PhotoID: photoID,
		Hash:    hash,
		Width:   photo.Width,
		Height:  photo.Height,
	}

	if m.predictions != nil {
		if err := m.predictions.SetPrediction(ctx, hash, prediction); err != nil {
			m.logger.Warning("Failed to cache prediction %s: %v", hash, err)
		}
	}

	if len(records) > 0 {
		m.enqueueArchive(archiveTask{Image: img, Records: records, Hash: hash})
	}
	m.notify(prediction, filename)

	m.logger.Info("Predicted %d plant(s) in %s (photo %d)", len(records), filename, photoID)
	return prediction, nil
}

// Annotate runs the engine and returns the image with every plant drawn on it.
func (m *Manager) Annotate(ctx context.Context, data []byte) ([]byte, error) {
	img, err := media.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	records, err := m.run(ctx, img)
	if err != nil {
		return nil, err
	}
	return m.annotate(img, records)
}

// Photos returns a page of stored photos and the total matching count.
func (m *Manager) Photos(filter *models.PhotoFilter) ([]models.Photo, int, error) {
	photos, err := m.photos.GetAll(filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := m.photos.GetTotalCount(filter)
	if err != nil {
		return nil, 0, err
	}
	return photos, total, nil
}

// Plants returns the stored plants of a photo, or nil when the photo is unknown.
func (m *Manager) Plants(photoID int64) (*models.Photo, []models.Plant, error) {
	photo, err := m.photos.GetByID(photoID)
	if err != nil || photo == nil {
		return nil, nil, err
	}
	plants, err := m.plants.GetByPhotoID(photoID)
	if err != nil {
		return nil, nil, err
	}
	return photo, plants, nil
}

// Stats summarizes every stored plant.
func (m *Manager) Stats() (*models.PlantStats, error) {
	return m.plants.GetStats()
}

// Engine exposes the fusion engine.
func (m *Manager) Engine() *fusion.Engine {
	return m.engine
}

func (m *Manager) run(ctx context.Context, img image.Image) ([]fusion.PlantRecord, error) {
	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	start := time.Now()
	records, err := m.engine.Run(ctx, img)
	if err != nil {
		m.logger.Error("Fusion failed after %s: %v", time.Since(start), err)
		return nil, err
	}
	return records, nil
}

func (m *Manager) cachedPrediction(ctx context.Context, hash string) *models.Prediction {
	if m.predictions == nil {
		return nil
	}
	cached, err := m.predictions.GetPrediction(ctx, hash)
	if err != nil {
		m.logger.Warning("Cache lookup failed for %s: %v", hash, err)
		return nil
	}
	if cached != nil {
		cached.Cached = true
	}
	return cached
}

func (m *Manager) notify(prediction *models.Prediction, filename string) {
	if m.broadcaster == nil {
		return
	}
	msg, err := json.Marshal(models.NewPredictionEvent(prediction, filename))
	if err != nil {
		m.logger.Error("Failed to encode prediction event: %v", err)
		return
	}
	m.broadcaster.Broadcast(msg)
}

func (m *Manager) enqueueArchive(task archiveTask) {
	m.stopMu.RLock()
	defer m.stopMu.RUnlock()
	if m.stopped {
		return
	}

	select {
	case m.archiveQueue <- task:
	default:
		m.logger.Warning("Archive queue full - skipping annotated copy of %s", task.Hash)
	}
}

// archiveWorker draws the plant boxes on predicted photos and buffers the result.
func (m *Manager) archiveWorker(workerID int) {
	defer m.wg.Done()

	for task := range m.archiveQueue {
		annotated, err := m.annotate(task.Image, task.Records)
		if err != nil {
			m.logger.Error("Worker %d failed to annotate %s: %v", workerID, task.Hash, err)
			continue
		}
		m.buffer.AddImage(annotated, storage.FileName(task.Hash, "annotated"))
	}
}

// Stop drains the archive workers.
func (m *Manager) Stop() {
	m.stopMu.Lock()
	if m.stopped {
		m.stopMu.Unlock()
		return
	}
	m.stopped = true
	close(m.archiveQueue)
	m.stopMu.Unlock()

	m.wg.Wait()
	m.logger.Info("All archive workers stopped")
}
