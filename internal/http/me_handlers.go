package httpapi

import (
	"encoding/json"
	"net/http"

	"simahasiswa-backend-go/internal/services"
	"simahasiswa-backend-go/internal/session"
)

func (s *Server) Me(w http.ResponseWriter, r *http.Request) {
	userID := CurrentUserID(r)
	user, err := s.Session.UserByID(r.Context(), userID)
	if err != nil {
		WriteServiceError(w, services.ErrNotFound("User not found"))
		return
	}
	WriteJSON(w, http.StatusOK, map[string]*session.UserAccount{"user": user})
}

func (s *Server) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req session.ProfileUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteServiceError(w, services.ErrBadRequest("Invalid payload"))
		return
	}
	if !s.Session.UpdateProfile(r.Context(), req) {
		WriteServiceError(w, services.ErrBadRequest("Failed to update profile"))
		return
	}
	user := s.Session.CurrentUser()
	WriteJSON(w, http.StatusOK, map[string]*session.UserAccount{"user": user})
}
