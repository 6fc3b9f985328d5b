package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/swotlab/swotlab/internal/abtest"
	"github.com/swotlab/swotlab/internal/account"
	"github.com/swotlab/swotlab/internal/analysis"
	"github.com/swotlab/swotlab/internal/swot"
)

const maxBodyBytes = 1 << 20

type HealthResponse struct {
	Status        string `json:"status"`
	AnalysesCount int    `json:"analyses_count"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

type generateRequest struct {
	Competitors json.RawMessage `json:"competitors"`
}

type variantRequest struct {
	Variant string `json:"variant"`
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      UserResponse `json:"user"`
}

func toUserResponse(u *account.User) UserResponse {
	return UserResponse{ID: u.ID, Email: u.Email, CreatedAt: u.CreatedAt}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// decodeBody reads a JSON body into dst. An empty body leaves dst untouched.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return true
		}
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return false
	}
	return true
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:        "ok",
		AnalysesCount: s.analyses.Count(),
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
	})
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, s.analyses.Generate(r.Context(), swot.DecodeCompetitors(req.Competitors)))
}

func (s *Server) handleVariant(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, variantRequest{Variant: string(s.assigner.Assign())})
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	var req variantRequest
	if !decodeBody(w, r, &req) {
		return
	}
	v, ok := abtest.ParseVariant(req.Variant)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid variant")
		return
	}
	s.metrics.RecordView(r.Context(), v)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	var req variantRequest
	if !decodeBody(w, r, &req) {
		return
	}
	s.metrics.RecordConversion(r.Context(), req.Variant)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.metrics.Snapshot().Response())
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeBody(w, r, &req) {
		return
	}

	user, err := s.accounts.Register(r.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, account.ErrEmailTaken):
		writeError(w, http.StatusConflict, err.Error())
		return
	case errors.Is(err, account.ErrInvalidEmail), errors.Is(err, account.ErrWeakPassword), errors.Is(err, account.ErrPasswordTooLong):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		s.requestLogger(r).Error().Err(err).Msg("register failed")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusCreated, toUserResponse(user))
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeBody(w, r, &req) {
		return
	}

	session, err := s.accounts.Login(r.Context(), req.Email, req.Password)
	if errors.Is(err, account.ErrInvalidCredentials) {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	if err != nil {
		s.requestLogger(r).Error().Err(err).Msg("login failed")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	user, _ := s.accounts.Authenticate(r.Context(), session.Token)
	if user == nil {
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	ttl := s.accounts.TTL()
	setSessionCookie(w, session.Token, ttl)
	writeJSON(w, http.StatusOK, LoginResponse{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt(ttl),
		User:      toUserResponse(user),
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if token := sessionToken(r); token != "" {
		s.accounts.Logout(r.Context(), token)
	}
	clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toUserResponse(currentUser(r)))
}

func (s *Server) handleListAnalyses(w http.ResponseWriter, r *http.Request) {
	list := s.analyses.List(currentUser(r).ID)
	if list == nil {
		list = []analysis.Analysis{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleCreateAnalysis(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	a := s.analyses.Create(r.Context(), currentUser(r).ID, swot.DecodeCompetitors(req.Competitors))
	writeJSON(w, http.StatusCreated, a)
}

func (s *Server) handleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	a, err := s.analyses.Get(currentUser(r).ID, r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Analysis not found")
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleUpdateAnalysis(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	a, err := s.analyses.Update(r.Context(), currentUser(r).ID, r.PathValue("id"), swot.DecodeCompetitors(req.Competitors))
	if err != nil {
		writeError(w, http.StatusNotFound, "Analysis not found")
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleDeleteAnalysis(w http.ResponseWriter, r *http.Request) {
	if err := s.analyses.Delete(r.Context(), currentUser(r).ID, r.PathValue("id")); err != nil {
		writeError(w, http.StatusNotFound, "Analysis not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUserMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.analyses.Summary(currentUser(r).ID))
}
