package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"brainz-training/internal/domain/ports/adapter"
	"brainz-training/internal/infra/logging"
	"brainz-training/internal/usecase"
)

// Server exposes the training-chat store and the auth bootstrap flows as a
// JSON API. It owns no chat state; everything goes through the use cases.
type Server struct {
	trainUC usecase.TrainingUseCase
	authUC  usecase.AuthUseCase
	replier adapter.ReplyAdapter // dashboard companion chat, unpersisted
	auth    *AuthManager         // nil disables the session gate (local/dev)
	baseURL string
	log     *zerolog.Logger
}

func NewServer(
	trainUC usecase.TrainingUseCase,
	authUC usecase.AuthUseCase,
	replier adapter.ReplyAdapter,
	auth *AuthManager,
	baseURL string,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		trainUC: trainUC,
		authUC:  authUC,
		replier: replier,
		auth:    auth,
		baseURL: baseURL,
		log:     logger,
	}
}

// Routes builds the router for the whole API surface.
func (s *Server) Routes() *chi.Mux {
	r := chi.NewRouter()
	r.Use(s.traceMiddleware)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/login", loginHandler(s.authUC, s.auth))
		r.Post("/register", registerHandler(s.authUC, s.auth))
		r.Post("/logout", logoutHandler(s.authUC, s.auth))
	})

	r.Route("/api/user", func(r chi.Router) {
		r.Use(s.sessionMiddleware)
		r.Get("/me", meHandler(s.authUC))
		r.Put("/me", updateMeHandler(s.authUC))
		r.Delete("/me", deleteMeHandler(s.authUC))
	})

	r.Route("/api/v1/companion", func(r chi.Router) {
		r.Use(s.sessionMiddleware)
		r.Get("/greeting", companionGreetingHandler())
		r.Post("/messages", companionSendHandler(s.replier))
	})

	r.Route("/api/v1/chats", func(r chi.Router) {
		r.Use(s.sessionMiddleware)
		r.Get("/", chatsListHandler(s.trainUC))
		r.Post("/", chatsCreateHandler(s.trainUC))
		r.Get("/active", chatActiveHandler(s.trainUC))
		r.Route("/{chatID}", func(r chi.Router) {
			r.Get("/", chatGetHandler(s.trainUC))
			r.Patch("/", chatUpdateHandler(s.trainUC))
			r.Delete("/", chatDeleteHandler(s.trainUC))
			r.Post("/select", chatSelectHandler(s.trainUC))
			r.Post("/messages", chatSendHandler(s.trainUC))
			r.Get("/export", chatExportHandler(s.trainUC))
			r.Get("/share", chatShareHandler(s.trainUC, s.baseURL))
		})
	})

	return r
}

// traceMiddleware stamps each request with a trace id and logs it on the way
// out with whatever ids accumulated in the context.
func (s *Server) traceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := logging.WithTraceID(r.Context(), uuid.NewString())
		start := time.Now()
		next.ServeHTTP(w, r.WithContext(ctx))
		logging.With(ctx, s.log).Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

// sessionMiddleware gates the API behind the session cookie. With no session
// secret configured the gate is off and everything runs as a local app.
func (s *Server) sessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.auth == nil {
			next.ServeHTTP(w, r)
			return
		}
		claims, err := s.auth.ParseFromRequest(r)
		if err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		ctx := logging.WithUser(r.Context(), claims.Username)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
