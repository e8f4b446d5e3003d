package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type RouterOptions struct {
	PlatformSecret string
	RateLimitRPS   float64
	RateLimitBurst int
}

func NewHandler(commandHandler *CommandHandler, interactionHandler *InteractionHandler, pollHandler *PollHandler, opts RouterOptions) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(PlatformAuth(opts.PlatformSecret))

		r.Route("/commands", func(r chi.Router) {
			r.Post("/create_poll", commandHandler.CreatePoll)
		})

		r.With(RateLimit(opts.RateLimitRPS, opts.RateLimitBurst)).
			Post("/interactions", interactionHandler.Handle)

		r.Route("/polls", func(r chi.Router) {
			r.Get("/{id}", pollHandler.GetPoll)
		})
	})

	return r
}
