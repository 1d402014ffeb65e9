package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gardenvision/internal/logger"
)

func TestBufferService_FlushImages(t *testing.T) {
	dir := t.TempDir()
	s := NewBufferService(dir, 4, logger.NewNop())

	path := s.AddImage([]byte("jpeg-bytes"), "photo.jpg")
	if path != filepath.Join(dir, "photo.jpg") {
		t.Errorf("unexpected path %q", path)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("image should not be on disk before flush")
	}

	s.FlushImages()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("image not flushed: %v", err)
	}
	if string(data) != "jpeg-bytes" {
		t.Errorf("unexpected content %q", data)
	}
	if s.Pending() != 0 {
		t.Errorf("buffer should be empty, has %d", s.Pending())
	}
}

func TestBufferService_FullBufferFlushes(t *testing.T) {
	dir := t.TempDir()
	s := NewBufferService(dir, 2, logger.NewNop())

	s.AddImage([]byte("a"), "a.jpg")
	s.AddImage([]byte("b"), "b.jpg")
	s.AddImage([]byte("c"), "c.jpg")

	if s.Pending() != 1 {
		t.Errorf("expected 1 pending image, got %d", s.Pending())
	}
	for _, name := range []string{"a.jpg", "b.jpg"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("%s should have been flushed: %v", name, err)
		}
	}
}

func TestBufferService_RunFlushesOnCancel(t *testing.T) {
	dir := t.TempDir()
	s := NewBufferService(dir, 8, logger.NewNop())
	s.AddImage([]byte("x"), "x.jpg")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx, time.Hour)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	if _, err := os.Stat(filepath.Join(dir, "x.jpg")); err != nil {
		t.Errorf("pending image should be flushed on shutdown: %v", err)
	}
}

func TestFileName(t *testing.T) {
	name := FileName("0123456789abcdef", "original")
	if !strings.HasSuffix(name, "_0123456789ab_original.jpg") {
		t.Errorf("unexpected name %q", name)
	}
}
