package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/vncsmyrnk/chatpoll/internal/core/domain"
	"github.com/vncsmyrnk/chatpoll/internal/core/ports"
)

// Interaction kinds delivered by the chat platform. Each carries its own
// payload shape; anything outside this set is rejected.
const (
	ActionVote      = "vote"
	ActionCreate    = "create"
	ActionAddChoice = "add_choice"
	ActionFinish    = "finish"
	ActionNotVoted  = "not_voted"
)

type InteractionHandler struct {
	polls    ports.PollService
	votes    ports.VoteService
	notifier ports.Notifier
	logger   *slog.Logger
}

func NewInteractionHandler(polls ports.PollService, votes ports.VoteService, notifier ports.Notifier, logger *slog.Logger) *InteractionHandler {
	return &InteractionHandler{
		polls:    polls,
		votes:    votes,
		notifier: notifier,
		logger:   logger,
	}
}

type userPayload struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type interactionEnvelope struct {
	Action  string          `json:"action"`
	User    userPayload     `json:"user"`
	Payload json.RawMessage `json:"payload"`
}

type votePayload struct {
	PollID string `json:"poll_id"`
	Choice int    `json:"choice"`
}

type finishPayload struct {
	PollID string `json:"poll_id"`
}

type notVotedPayload struct {
	PollID  string        `json:"poll_id"`
	Members []userPayload `json:"members"`
}

type addChoicePayload struct {
	Question string   `json:"question"`
	Choices  []string `json:"choices"`
}

type interactionResponse struct {
	Success      bool         `json:"success"`
	ResponseType string       `json:"response_type,omitempty"`
	Text         string       `json:"text,omitempty"`
	Message      *pollMessage `json:"message,omitempty"`
	Modal        *modalView   `json:"modal,omitempty"`
}

// Handle dispatches a block interaction to its action. All domain
// failures are recovered here: the acting user gets a private
// explanation and the shared poll message is left as is.
func (h *InteractionHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var env interactionEnvelope
	if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if env.User.ID == "" {
		http.Error(w, "missing acting user", http.StatusBadRequest)
		return
	}

	switch env.Action {
	case ActionVote:
		h.vote(w, r, env)
	case ActionFinish:
		h.finish(w, r, env)
	case ActionNotVoted:
		h.notVoted(w, r, env)
	case ActionCreate:
		modal := renderModal("", nil)
		writeJSON(w, http.StatusOK, interactionResponse{Success: true, Modal: &modal})
	case ActionAddChoice:
		h.addChoice(w, r, env)
	default:
		http.Error(w, fmt.Sprintf("unknown action %q", env.Action), http.StatusBadRequest)
	}
}

func (h *InteractionHandler) vote(w http.ResponseWriter, r *http.Request, env interactionEnvelope) {
	var p votePayload
	if err := json.Unmarshal(env.Payload, &p); err != nil {
		http.Error(w, "invalid vote payload", http.StatusBadRequest)
		return
	}

	voter := domain.VoterRef{ID: env.User.ID, Name: env.User.Name}
	poll, err := h.votes.Vote(r.Context(), p.PollID, voter, p.Choice)
	if err != nil {
		h.interactionError(w, r, env.User.ID, err)
		return
	}

	// Acknowledged the same way whether the vote was added or toggled
	// off; the rendered message carries the new state.
	msg := renderPoll(poll)
	writeJSON(w, http.StatusOK, interactionResponse{Success: true, Message: &msg})
}

func (h *InteractionHandler) finish(w http.ResponseWriter, r *http.Request, env interactionEnvelope) {
	var p finishPayload
	if err := json.Unmarshal(env.Payload, &p); err != nil {
		http.Error(w, "invalid finish payload", http.StatusBadRequest)
		return
	}

	poll, err := h.polls.Finish(r.Context(), p.PollID, env.User.ID)
	if err != nil {
		h.interactionError(w, r, env.User.ID, err)
		return
	}

	h.logger.Info("poll finished", "poll_id", poll.ID, "requester_id", env.User.ID)
	msg := renderPoll(poll)
	writeJSON(w, http.StatusOK, interactionResponse{Success: true, Message: &msg})
}

func (h *InteractionHandler) notVoted(w http.ResponseWriter, r *http.Request, env interactionEnvelope) {
	var p notVotedPayload
	if err := json.Unmarshal(env.Payload, &p); err != nil {
		http.Error(w, "invalid not_voted payload", http.StatusBadRequest)
		return
	}

	// Computed against the member list the platform sends with the
	// interaction, not a snapshot taken at poll creation.
	members := make([]domain.VoterRef, len(p.Members))
	for i, m := range p.Members {
		members[i] = domain.VoterRef{ID: m.ID, Name: m.Name}
	}

	missing, err := h.polls.NonVoters(r.Context(), p.PollID, members)
	if err != nil {
		h.interactionError(w, r, env.User.ID, err)
		return
	}

	text := "Everybody has voted"
	if len(missing) > 0 {
		names := make([]string, len(missing))
		for i, m := range missing {
			names[i] = "@" + m.Name
		}
		text = strings.Join(names, ", ") + " didn't vote"
	}
	writeJSON(w, http.StatusOK, interactionResponse{Success: true, ResponseType: "in_channel", Text: text})
}

func (h *InteractionHandler) addChoice(w http.ResponseWriter, r *http.Request, env interactionEnvelope) {
	var p addChoicePayload
	if err := json.Unmarshal(env.Payload, &p); err != nil {
		http.Error(w, "invalid add_choice payload", http.StatusBadRequest)
		return
	}

	modal := renderModal(p.Question, p.Choices)
	writeJSON(w, http.StatusOK, interactionResponse{Success: true, Modal: &modal})
}

// interactionError turns a domain failure into a private notification
// plus an ephemeral response. Unexpected errors, including a missing
// poll record, are logged and reported without detail.
func (h *InteractionHandler) interactionError(w http.ResponseWriter, r *http.Request, userID string, err error) {
	switch {
	case errors.Is(err, domain.ErrPollFinished),
		errors.Is(err, domain.ErrAlreadyFinished),
		errors.Is(err, domain.ErrNotCreator),
		errors.Is(err, domain.ErrInvalidChoice):
		h.notify(r, userID, err.Error())
		writeJSON(w, http.StatusOK, interactionResponse{Success: false, ResponseType: "ephemeral", Text: err.Error()})
	case errors.Is(err, domain.ErrPollNotFound):
		h.logger.Error("poll missing from store", "user_id", userID, "error", err)
		h.notify(r, userID, "Unexpected error: poll not found")
		writeJSON(w, http.StatusOK, interactionResponse{Success: false, ResponseType: "ephemeral", Text: "Unexpected error: poll not found"})
	default:
		h.logger.Error("interaction failed", "user_id", userID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func (h *InteractionHandler) notify(r *http.Request, userID, text string) {
	if err := h.notifier.NotifyUser(r.Context(), userID, text); err != nil {
		h.logger.Warn("failed to notify user", "user_id", userID, "error", err)
	}
}
