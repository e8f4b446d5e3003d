package http

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vncsmyrnk/chatpoll/internal/core/domain"
	"github.com/vncsmyrnk/chatpoll/internal/core/ports"
)

type PollHandler struct {
	service ports.PollService
}

func NewPollHandler(service ports.PollService) *PollHandler {
	return &PollHandler{
		service: service,
	}
}

// GetPoll returns the rendered view of a poll, with the same visibility
// gating the room sees: no tallies on open hidden-results polls, no
// voter names on confidential ones.
func (h *PollHandler) GetPoll(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		http.Error(w, "missing poll id", http.StatusBadRequest)
		return
	}

	poll, err := h.service.GetPoll(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrPollNotFound) {
			http.Error(w, "poll not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, renderPoll(poll))
}
