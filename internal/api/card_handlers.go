package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vytor/vocabflash/internal/errors"
	"github.com/vytor/vocabflash/internal/logger"
	"github.com/vytor/vocabflash/internal/models"
	"github.com/vytor/vocabflash/internal/services"
)

type importRequest struct {
	Cards []services.NewCard `json:"cards"`
}

type importResponse struct {
	ImportID string `json:"import_id"`
	Queued   int    `json:"queued"`
}

type masteredRequest struct {
	Mastered *bool `json:"mastered"`
}

type cardsResponse struct {
	Cards []models.Card `json:"cards"`
	Count int           `json:"count"`
}

// cardListResponse is one page of a listing; Total counts every match.
type cardListResponse struct {
	Cards []models.Card `json:"cards"`
	Count int           `json:"count"`
	Total int           `json:"total"`
}

func (s *Server) handleListCards(w http.ResponseWriter, r *http.Request) {
	profile := profileFromContext(r.Context())
	q := r.URL.Query()

	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		handleError(w, r, err)
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		handleError(w, r, err)
		return
	}

	filter := models.CardFilter{
		ProfileID: profile.ID,
		Language:  q.Get("language"),
		Category:  q.Get("category"),
		Limit:     limit,
		Offset:    offset,
	}
	if q.Get("mastered") != "" {
		mastered, err := queryBool(r, "mastered", false)
		if err != nil {
			handleError(w, r, err)
			return
		}
		filter.Mastered = &mastered
	}

	cards, total, err := s.CardService.ListCards(r.Context(), filter)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, cardListResponse{Cards: cards, Count: len(cards), Total: total})
}

func (s *Server) handleCreateCard(w http.ResponseWriter, r *http.Request) {
	profile := profileFromContext(r.Context())

	var req services.NewCard
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	card, err := s.CardService.AddCard(r.Context(), profile.ID, req)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, card)
}

func (s *Server) handleImportCards(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	profile := profileFromContext(r.Context())

	var req importRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	if len(req.Cards) == 0 {
		handleError(w, r, errors.NewValidationError("cards", "must not be empty"))
		return
	}

	id, err := s.JobQueue.EnqueueImport(r.Context(), profile.ID, req.Cards)
	if err != nil {
		log.Warn("import rejected: %v", err)
		handleError(w, r, &errors.AppError{
			Code:    errors.ErrCodeRetryable,
			Message: "import queue is busy, please try again later",
			Status:  http.StatusServiceUnavailable,
			Err:     err,
		})
		return
	}

	w.Header().Set("Location", "/api/profiles/"+chi.URLParam(r, "profileID")+"/imports/"+id)
	writeJSON(w, r, http.StatusAccepted, importResponse{ImportID: id, Queued: len(req.Cards)})
}

func (s *Server) handleImportStatus(w http.ResponseWriter, r *http.Request) {
	profile := profileFromContext(r.Context())
	id := chi.URLParam(r, "importID")

	st, ok := s.JobQueue.ImportStatus(id)
	if !ok || st.ProfileID != profile.ID {
		handleError(w, r, errors.NewNotFoundError("import", id))
		return
	}
	writeJSON(w, r, http.StatusOK, st)
}

func (s *Server) handleGetCard(w http.ResponseWriter, r *http.Request) {
	profile := profileFromContext(r.Context())

	card, err := s.CardService.GetCard(r.Context(), profile.ID, chi.URLParam(r, "cardID"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, card)
}

func (s *Server) handleDeleteCard(w http.ResponseWriter, r *http.Request) {
	profile := profileFromContext(r.Context())

	if err := s.CardService.DeleteCard(r.Context(), profile.ID, chi.URLParam(r, "cardID")); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReviewCard(w http.ResponseWriter, r *http.Request) {
	profile := profileFromContext(r.Context())
	cardID := chi.URLParam(r, "cardID")

	var req services.ReviewInput
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	card, err := s.CardService.ReviewCard(r.Context(), profile.ID, cardID, req)
	if err != nil {
		handleError(w, r, err)
		return
	}

	log := logger.FromContext(r.Context()).WithFields(map[string]any{
		"card_id": cardID,
		"quality": *req.Quality,
	})
	log.Info("card reviewed: next review in %d days", card.IntervalDays)
	writeJSON(w, r, http.StatusOK, card)
}

func (s *Server) handleCardHistory(w http.ResponseWriter, r *http.Request) {
	profile := profileFromContext(r.Context())

	limit, err := queryInt(r, "limit", 50)
	if err != nil {
		handleError(w, r, err)
		return
	}

	history, err := s.CardService.ReviewHistory(r.Context(), profile.ID, chi.URLParam(r, "cardID"), limit)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, history)
}

func (s *Server) handleSetMastered(w http.ResponseWriter, r *http.Request) {
	profile := profileFromContext(r.Context())

	var req masteredRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	if req.Mastered == nil {
		handleError(w, r, errors.NewValidationError("mastered", "is required"))
		return
	}

	card, err := s.CardService.SetMastered(r.Context(), profile.ID, chi.URLParam(r, "cardID"), *req.Mastered)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, card)
}
