package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"simahasiswa-backend-go/internal/models"
	"simahasiswa-backend-go/internal/search"
	"simahasiswa-backend-go/internal/services"
	"simahasiswa-backend-go/internal/store"
	"simahasiswa-backend-go/internal/validate"

	"github.com/go-chi/chi/v5"
)

type StudentRequest struct {
	Nama    string `json:"nama"`
	NIM     string `json:"nim"`
	Jurusan string `json:"jurusan"`
}

type StudentListResponse struct {
	Items  []models.StudentRecord `json:"items"`
	Loaded bool                   `json:"loaded"`
}

// ListStudents serves the current snapshot, narrowed by the optional q
// parameter. Filtering happens here, on the snapshot, never in the query.
func (s *Server) ListStudents(w http.ResponseWriter, r *http.Request) {
	records := s.Store.Snapshot()
	if q := r.URL.Query().Get("q"); q != "" {
		records = search.Filter(records, q)
	}
	WriteJSON(w, http.StatusOK, StudentListResponse{
		Items:  records,
		Loaded: s.Store.Loaded(),
	})
}

// CreateStudent validates, then hands the write to the record store. The
// write itself reports its outcome through the notifier, not this response,
// so a valid form is always accepted.
func (s *Server) CreateStudent(w http.ResponseWriter, r *http.Request) {
	input, ok := s.decodeStudent(w, r)
	if !ok {
		return
	}
	s.Store.Create(r.Context(), input)
	WriteJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

func (s *Server) UpdateStudent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "studentId")
	if id == "" {
		WriteServiceError(w, services.ErrBadRequest("Invalid payload"))
		return
	}
	input, ok := s.decodeStudent(w, r)
	if !ok {
		return
	}
	s.Store.Update(r.Context(), id, input)
	WriteJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

func (s *Server) DeleteStudent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "studentId")
	if id == "" {
		WriteServiceError(w, services.ErrBadRequest("Invalid payload"))
		return
	}
	s.Store.Delete(r.Context(), id)
	WriteJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

func (s *Server) decodeStudent(w http.ResponseWriter, r *http.Request) (store.RecordInput, bool) {
	var req StudentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteServiceError(w, services.ErrBadRequest("Invalid payload"))
		return store.RecordInput{}, false
	}
	errs := validate.Student(validate.StudentInput{
		Nama:    req.Nama,
		NIM:     req.NIM,
		Jurusan: req.Jurusan,
	})
	if !errs.Valid() {
		WriteFieldErrors(w, errs)
		return store.RecordInput{}, false
	}
	return store.RecordInput{
		Nama:    strings.TrimSpace(req.Nama),
		NIM:     strings.TrimSpace(req.NIM),
		Jurusan: req.Jurusan,
	}, true
}
