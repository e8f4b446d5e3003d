package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/vncsmyrnk/chatpoll/internal/core/command"
	"github.com/vncsmyrnk/chatpoll/internal/core/domain"
	"github.com/vncsmyrnk/chatpoll/internal/core/ports"
)

type CommandHandler struct {
	polls    ports.PollService
	notifier ports.Notifier
	logger   *slog.Logger
}

func NewCommandHandler(polls ports.PollService, notifier ports.Notifier, logger *slog.Logger) *CommandHandler {
	return &CommandHandler{
		polls:    polls,
		notifier: notifier,
		logger:   logger,
	}
}

type commandRequest struct {
	UserID    string  `json:"user_id"`
	UserName  string  `json:"user_name"`
	UTCOffset float64 `json:"utc_offset"`
	Text      string  `json:"text"`
}

type commandResponse struct {
	ResponseType string       `json:"response_type"`
	Text         string       `json:"text,omitempty"`
	Message      *pollMessage `json:"message,omitempty"`
}

// CreatePoll handles the create_poll slash command. Parse and validation
// failures are reported privately to the sender; the command always
// answers 200 so the platform does not retry it.
func (h *CommandHandler) CreatePoll(w http.ResponseWriter, r *http.Request) {
	var req commandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.UserID == "" {
		http.Error(w, "missing user_id", http.StatusBadRequest)
		return
	}

	opts, err := command.Parse(command.Split(req.Text), req.UTCOffset, time.Now())
	if err != nil {
		h.replyEphemeral(w, r, req.UserID, err)
		return
	}

	creator := domain.VoterRef{ID: req.UserID, Name: req.UserName}
	poll, err := h.polls.Create(r.Context(), opts, creator)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidOptions) {
			h.replyEphemeral(w, r, req.UserID, err)
			return
		}
		h.logger.Error("failed to create poll", "user_id", req.UserID, "error", err)
		http.Error(w, "failed to create poll", http.StatusInternalServerError)
		return
	}

	h.logger.Info("poll created", "poll_id", poll.ID, "creator_id", creator.ID)

	msg := renderPoll(poll)
	writeJSON(w, http.StatusOK, commandResponse{
		ResponseType: "in_channel",
		Message:      &msg,
	})
}

func (h *CommandHandler) replyEphemeral(w http.ResponseWriter, r *http.Request, userID string, cause error) {
	if err := h.notifier.NotifyUser(r.Context(), userID, cause.Error()); err != nil {
		h.logger.Warn("failed to notify user", "user_id", userID, "error", err)
	}
	writeJSON(w, http.StatusOK, commandResponse{
		ResponseType: "ephemeral",
		Text:         cause.Error(),
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
