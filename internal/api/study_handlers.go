package api

import (
	"net/http"

	"github.com/vytor/vocabflash/internal/services"
)

func deckFromRequest(r *http.Request) services.Deck {
	q := r.URL.Query()
	return services.Deck{
		ProfileID: profileFromContext(r.Context()).ID,
		Language:  q.Get("language"),
		Category:  q.Get("category"),
	}
}

func (s *Server) handleDue(w http.ResponseWriter, r *http.Request) {
	cards, err := s.StudyService.Due(r.Context(), deckFromRequest(r), r.URL.Query().Get("mode"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, cardsResponse{Cards: cards, Count: len(cards)})
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	opts := s.StudyService.DefaultSessionOptions()

	var err error
	if opts.Limit, err = queryInt(r, "limit", opts.Limit); err != nil {
		handleError(w, r, err)
		return
	}
	if opts.MaxNew, err = queryInt(r, "max_new", opts.MaxNew); err != nil {
		handleError(w, r, err)
		return
	}
	if opts.IncludeReview, err = queryBool(r, "review", opts.IncludeReview); err != nil {
		handleError(w, r, err)
		return
	}
	if opts.IncludeNew, err = queryBool(r, "new", opts.IncludeNew); err != nil {
		handleError(w, r, err)
		return
	}

	cards, err := s.StudyService.Session(r.Context(), deckFromRequest(r), opts)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, cardsResponse{Cards: cards, Count: len(cards)})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.StudyService.Stats(r.Context(), deckFromRequest(r))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, stats)
}
