package httpapi

import (
	"net/http"

	"simahasiswa-backend-go/internal/services"
)

func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	sample := services.CaptureHealth(s.Config.HealthDiskPath)
	WriteJSON(w, http.StatusOK, sample)
}
