package storage

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gardenvision/internal/logger"
)

// Image is one pending file write.
type Image struct {
	Filename string
	Data     []byte
}

// BufferService holds uploaded photos in memory and writes them to disk in
// batches.
type BufferService struct {
	imagesDir   string
	images      []Image
	bufferLimit int
	mu          sync.Mutex
	logger      *logger.Logger
}

func NewBufferService(imagesDir string, bufferLimit int, logger *logger.Logger) *BufferService {
	return &BufferService{
		imagesDir:   imagesDir,
		bufferLimit: bufferLimit,
		images:      make([]Image, 0, bufferLimit),
		logger:      logger,
	}
}

// Run flushes the buffer every interval until ctx is done, then flushes once more.
func (s *BufferService) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.FlushImages()
			return
		case <-ticker.C:
			s.FlushImages()
		}
	}
}

// FileName builds the on-disk name for a photo.
func FileName(hash, kind string) string {
	short := hash
	if len(short) > 12 {
		short = short[:12]
	}
	return time.Now().Format("2006-01-02_15-04-05") + "_" + short + "_" + kind + ".jpg"
}

// AddImage queues data under filename and returns the path it will be
// written to. A full buffer is flushed first so no upload is dropped.
func (s *BufferService) AddImage(data []byte, filename string) string {
	s.mu.Lock()
	full := len(s.images) >= s.bufferLimit
	s.mu.Unlock()
	if full {
		s.FlushImages()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.images = append(s.images, Image{Filename: filename, Data: data})
	s.logger.Info("Buffer size: %d/%d", len(s.images), s.bufferLimit)

	return filepath.Join(s.imagesDir, filename)
}

// Pending returns the number of buffered images.
func (s *BufferService) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.images)
}

// FlushImages writes every buffered image to disk.
func (s *BufferService) FlushImages() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.images) == 0 {
		return
	}

	if err := os.MkdirAll(s.imagesDir, 0755); err != nil {
		s.logger.Error("Error creating directory: %v", err)
		return
	}

	written := 0
	for _, image := range s.images {
		fullpath := filepath.Join(s.imagesDir, image.Filename)
		if err := os.WriteFile(fullpath, image.Data, 0644); err != nil {
			s.logger.Error("Error saving image %s: %v", image.Filename, err)
			continue
		}
		written++
	}

	s.logger.Info("Flushed %d/%d images to disk", written, len(s.images))
	s.images = s.images[:0]
}
