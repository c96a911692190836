package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"simahasiswa-backend-go/internal/services"
	"simahasiswa-backend-go/internal/session"
	"simahasiswa-backend-go/internal/validate"
)

type RegisterRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	Username        string `json:"username"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ResetRequest struct {
	Email string `json:"email"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type TokenResponse struct {
	AccessToken  string               `json:"accessToken"`
	RefreshToken string               `json:"refreshToken"`
	ExpiresAt    int64                `json:"expiresAt"`
	User         *session.UserAccount `json:"user"`
}

// Register runs local validation first; a form that fails it is rejected
// before the identity collaborator is ever contacted.
func (s *Server) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteServiceError(w, services.ErrBadRequest("Invalid payload"))
		return
	}
	errs := validate.Account(validate.AccountInput{
		Email:           strings.TrimSpace(req.Email),
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		Username:        strings.TrimSpace(req.Username),
	}, validate.ModeRegister)
	if !errs.Valid() {
		WriteFieldErrors(w, errs)
		return
	}

	user, ok := s.Session.SignUp(r.Context(), strings.TrimSpace(req.Email), req.Password, strings.TrimSpace(req.Username))
	if !ok {
		WriteServiceError(w, services.ErrBadRequest(s.Session.LastError()))
		return
	}
	s.writeTokenResponse(w, user)
}

func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteServiceError(w, services.ErrBadRequest("Invalid payload"))
		return
	}
	errs := validate.Account(validate.AccountInput{
		Email:    strings.TrimSpace(req.Email),
		Password: req.Password,
	}, validate.ModeLogin)
	if !errs.Valid() {
		WriteFieldErrors(w, errs)
		return
	}

	user, ok := s.Session.SignIn(r.Context(), strings.TrimSpace(req.Email), req.Password)
	if !ok {
		WriteServiceError(w, services.ErrUnauthorized(s.Session.LastError()))
		return
	}
	s.writeTokenResponse(w, user)
}

func (s *Server) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteServiceError(w, services.ErrBadRequest("Invalid payload"))
		return
	}
	errs := validate.Account(validate.AccountInput{Email: strings.TrimSpace(req.Email)}, validate.ModeReset)
	if !errs.Valid() {
		WriteFieldErrors(w, errs)
		return
	}

	if !s.Session.ResetPassword(r.Context(), strings.TrimSpace(req.Email)) {
		WriteServiceError(w, services.ErrBadRequest(s.Session.LastError()))
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"message": "Password reset email sent!"})
}

func (s *Server) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteServiceError(w, services.ErrBadRequest("Authentication failed"))
		return
	}
	token, claims, err := s.Tokens.ParseToken(req.RefreshToken)
	if err != nil || !token.Valid || claims["typ"] != "refresh" {
		WriteServiceError(w, services.ErrUnauthorized("Authentication failed"))
		return
	}
	userID, _ := claims["sub"].(string)
	if userID == "" {
		WriteServiceError(w, services.ErrUnauthorized("Authentication failed"))
		return
	}
	user, err := s.Session.UserByID(r.Context(), userID)
	if err != nil {
		WriteServiceError(w, services.ErrUnauthorized("Authentication failed"))
		return
	}
	s.writeTokenResponse(w, user)
}

func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	s.Session.SignOut(r.Context())
	WriteJSON(w, http.StatusOK, map[string]string{"message": "Logout successful!"})
}

// writeTokenResponse mints the pair for the account the operation itself
// produced; the shared session state is never re-read here, so a competing
// login cannot retarget the response.
func (s *Server) writeTokenResponse(w http.ResponseWriter, user *session.UserAccount) {
	pair, err := s.Tokens.Pair(user.UID, user.Email, user.Role)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresAt:    pair.ExpiresAt,
		User:         user,
	})
}
