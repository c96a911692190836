package httpapi

import (
	"net/http"

	"simahasiswa-backend-go/internal/services"

	"github.com/gorilla/websocket"
)

// StudentsSocket streams record snapshots to the client. Each message is the
// full current list, latest state wins; a slow reader only ever misses
// intermediate states, never the final one.
func (s *Server) StudentsSocket(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("token")
	if query == "" {
		WriteServiceError(w, services.ErrUnauthorized("Authentication failed"))
		return
	}
	token, claims, err := s.Tokens.ParseToken(query)
	if err != nil || !token.Valid || claims["typ"] != "access" {
		WriteServiceError(w, services.ErrUnauthorized("Authentication failed"))
		return
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	updates, stop := s.Store.Watch()
	defer func() {
		stop()
		_ = conn.Close()
	}()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	// Watch seeds the stream with the snapshot as of connect time.
	for {
		select {
		case records, ok := <-updates:
			if !ok {
				return
			}
			if err := conn.WriteJSON(records); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
