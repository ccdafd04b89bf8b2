package api

import (
	"net/http"

	"github.com/vytor/vocabflash/internal/logger"
)

type createProfileRequest struct {
	Username string `json:"username"`
}

func (s *Server) handleProfiles(w http.ResponseWriter, r *http.Request) {
	profiles, err := s.ProfileService.ListProfiles(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, profiles)
}

func (s *Server) handleCreateProfile(w http.ResponseWriter, r *http.Request) {
	var req createProfileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	profile, err := s.ProfileService.CreateProfile(r.Context(), req.Username)
	if err != nil {
		handleError(w, r, err)
		return
	}

	logger.FromContext(r.Context()).Info("profile ready: id=%d, username=%s", profile.ID, profile.Username)
	writeJSON(w, r, http.StatusCreated, profile)
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, profileFromContext(r.Context()))
}

func (s *Server) handleDeleteProfile(w http.ResponseWriter, r *http.Request) {
	profile := profileFromContext(r.Context())
	if err := s.ProfileService.DeleteProfile(r.Context(), profile.ID); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
