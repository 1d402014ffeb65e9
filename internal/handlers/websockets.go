package handlers

import (
	"net/http"
	"time"

	"gardenvision/internal/logger"
	"gardenvision/internal/services/websocket"

	gorilla "github.com/gorilla/websocket"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

var Upgrader = gorilla.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ViewWebsocketHandler subscribes a viewer to prediction events.
func ViewWebsocketHandler(hub *websocket.HubService, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		connection, err := Upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Warning("WebSocket upgrade error: %v", err)
			return
		}
		connection.SetReadLimit(512)
		connection.SetReadDeadline(time.Now().Add(pongWait))
		connection.SetPongHandler(func(appData string) error {
			connection.SetReadDeadline(time.Now().Add(pongWait))
			return nil
		})

		hub.Register(connection)
		defer hub.Unregister(connection)

		done := make(chan struct{})
		defer close(done)
		go func() {
			ticker := time.NewTicker(pingPeriod)
			defer ticker.Stop()
			for {
				select {
				case <-done:
					return
				case <-ticker.C:
					if err := connection.WriteControl(gorilla.PingMessage, nil, time.Now().Add(10*time.Second)); err != nil {
						return
					}
				}
			}
		}()

		for {
			if _, _, err := connection.ReadMessage(); err != nil {
				logger.Info("Viewer disconnected: %v", err)
				return
			}
		}
	}
}
