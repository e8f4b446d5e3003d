package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vncsmyrnk/chatpoll/internal/adapters/repository/memory"
	"github.com/vncsmyrnk/chatpoll/internal/core/ports"
	"github.com/vncsmyrnk/chatpoll/internal/core/services"
)

type notifierSpy struct {
	mu    sync.Mutex
	notes map[string][]string
}

func newNotifierSpy() *notifierSpy {
	return &notifierSpy{notes: make(map[string][]string)}
}

func (n *notifierSpy) NotifyUser(ctx context.Context, userID, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notes[userID] = append(n.notes[userID], text)
	return nil
}

func (n *notifierSpy) sentTo(userID string) []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.notes[userID]...)
}

type testApp struct {
	store    ports.PollStore
	notifier *notifierSpy
	server   *httptest.Server
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	store := memory.NewPollRepository()
	notifier := newNotifierSpy()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	polls := services.NewPollService(store, noopScheduler{})
	votes := services.NewVoteService(store)

	handler := NewHandler(
		NewCommandHandler(polls, notifier, logger),
		NewInteractionHandler(polls, votes, notifier, logger),
		NewPollHandler(polls),
		RouterOptions{RateLimitRPS: 1000, RateLimitBurst: 1000},
	)

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return &testApp{store: store, notifier: notifier, server: server}
}

type noopScheduler struct{}

func (noopScheduler) ScheduleOnce(ctx context.Context, task ports.FinishTask, when time.Time) error {
	return nil
}

func (a *testApp) postJSON(t *testing.T, path string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)

	resp, err := http.Post(a.server.URL+path, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}
