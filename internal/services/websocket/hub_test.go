package websocket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"gardenvision/internal/logger"

	"github.com/gorilla/websocket"
)

func TestHubService_Broadcast(t *testing.T) {
	hub := NewHubService(logger.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.Register(conn)
	}))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer client.Close()

	deadline := time.Now().Add(2 * time.Second)
	for hub.GetClientCount() != 1 {
		if time.Now().After(deadline) {
			t.Fatal("viewer never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	hub.Broadcast([]byte(`{"type":"prediction"}`))

	client.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := client.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage failed: %v", err)
	}
	if string(msg) != `{"type":"prediction"}` {
		t.Errorf("unexpected message %s", msg)
	}
}

func TestHubService_BroadcastNeverBlocks(t *testing.T) {
	hub := NewHubService(logger.NewNop())

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			hub.Broadcast([]byte("x"))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Broadcast blocked without a running hub")
	}
}

func TestHubService_CallsAfterRunReturn(t *testing.T) {
	hub := NewHubService(logger.NewNop())
	ctx, cancel := context.WithCancel(context.Background())

	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()
	cancel()
	<-stopped

	done := make(chan int)
	go func() {
		hub.Unregister(nil)
		done <- hub.GetClientCount()
	}()

	select {
	case n := <-done:
		if n != 0 {
			t.Errorf("expected 0 clients after shutdown, got %d", n)
		}
	case <-time.After(time.Second):
		t.Fatal("hub calls blocked after Run returned")
	}
}
