package api

import (
	"net/http"

	"github.com/google/uuid"

	identityCommands "github.com/felixgeelhaar/studyload/internal/identity/application/commands"
	identityQueries "github.com/felixgeelhaar/studyload/internal/identity/application/queries"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type profileRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type userResponse struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// handleRegister handles POST /api/v1/auth/register
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.deps.RegisterUser.Handle(r.Context(), identityCommands.RegisterUserCommand{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, userResponse{ID: result.UserID, Name: result.Name, Email: result.Email})
}

// handleLogin handles POST /api/v1/auth/login
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.deps.Auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleGetMe handles GET /api/v1/users/me
func (s *Server) handleGetMe(w http.ResponseWriter, r *http.Request) {
	user, err := s.deps.GetUser.Handle(r.Context(), identityQueries.GetUserQuery{UserID: userIDFrom(r)})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// handleUpdateMe handles PUT /api/v1/users/me
func (s *Server) handleUpdateMe(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.deps.UpdateProfile.Handle(r.Context(), identityCommands.UpdateProfileCommand{
		UserID: userIDFrom(r),
		Name:   req.Name,
		Email:  req.Email,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, userResponse{ID: result.UserID, Name: result.Name, Email: result.Email})
}

// handleGetUserByEmail handles GET /api/v1/users/by-email/{email}
func (s *Server) handleGetUserByEmail(w http.ResponseWriter, r *http.Request) {
	user, err := s.deps.GetUserByEmail.Handle(r.Context(), identityQueries.GetUserByEmailQuery{Email: r.PathValue("email")})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, userResponse{ID: user.ID, Name: user.Name, Email: user.Email})
}
