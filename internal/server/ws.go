package server

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/umarshaikh/physiosync/internal/mocap"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// LiveHandler streams tracked wrist samples over WebSocket while a
// capture session is running.
type LiveHandler struct {
	recorder *mocap.Recorder
}

// NewLiveHandler creates a new LiveHandler for the given recorder.
func NewLiveHandler(recorder *mocap.Recorder) *LiveHandler {
	return &LiveHandler{recorder: recorder}
}

// ServeHTTP handles WebSocket upgrade requests and forwards every
// tracked sample until the client disconnects.
func (h *LiveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	samples, cancel := h.recorder.Subscribe()
	defer cancel()

	// Watch for the client closing the connection
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			return
		case sample := <-samples:
			if err := conn.WriteJSON(sample); err != nil {
				return
			}
		}
	}
}
