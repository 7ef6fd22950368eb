package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"

	"github.com/caretaker-api/internal/application/chat"
	"github.com/caretaker-api/internal/application/contact"
	"github.com/caretaker-api/internal/application/entry"
	"github.com/caretaker-api/internal/application/export"
	"github.com/caretaker-api/internal/application/session"
	"github.com/caretaker-api/internal/application/verification"
	"github.com/caretaker-api/internal/application/wellness"
	"github.com/caretaker-api/internal/config"
	jwtinfra "github.com/caretaker-api/internal/infrastructure/jwt"
	"github.com/caretaker-api/internal/transport/http/handler"
	"github.com/caretaker-api/internal/transport/http/middleware"
)

// RouterDeps bundles everything the router needs. JWTProvider may be nil, in
// which case the X-Session-ID header carries the session credential.
type RouterDeps struct {
	Config       *config.Config
	JWTProvider  *jwtinfra.Provider
	Sessions     session.Service
	Entries      entry.Service
	Contacts     contact.Service
	Verification verification.Service
	Chat         chat.Service
	Wellness     wellness.Service
	Export       export.Service
}

func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.Config.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Session-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	auth := middleware.HeaderAuth()
	if deps.JWTProvider != nil {
		auth = middleware.Auth(deps.JWTProvider)
	}

	// Session creation and OTP traffic cost money and are abuse magnets, so
	// they sit behind a tighter per-IP budget than the rest of the API.
	sensitiveLimit := middleware.NewRateLimiter(rate.Limit(1), 5).Limit

	healthHandler := handler.NewHealthHandler()
	sessionHandler := handler.NewSessionHandler(deps.Sessions)
	entryHandler := handler.NewEntryHandler(deps.Entries)
	contactHandler := handler.NewContactHandler(deps.Contacts, deps.Verification)
	verificationHandler := handler.NewVerificationHandler(deps.Verification)
	chatHandler := handler.NewChatHandler(deps.Chat)
	wellnessHandler := handler.NewWellnessHandler(deps.Wellness)
	exportHandler := handler.NewExportHandler(deps.Export)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health-check/{action}", healthHandler.Action)
		r.Post("/health-check/{action}", healthHandler.Action)

		r.With(sensitiveLimit).Post("/sessions", sessionHandler.Create)

		r.Group(func(r chi.Router) {
			r.Use(auth)

			r.Get("/sessions", sessionHandler.Get)
			r.Get("/metrics", sessionHandler.GetMetrics)
			r.Put("/metrics", sessionHandler.UpdateMetrics)

			r.Post("/entries", entryHandler.Create)
			r.Get("/entries", entryHandler.List)
			r.Get("/alerts", entryHandler.Alerts)

			r.Get("/contacts", contactHandler.List)
			r.With(sensitiveLimit).Post("/contacts", contactHandler.Create)
			r.Delete("/contacts/{contactID}", contactHandler.Delete)
			r.With(sensitiveLimit).Post("/contacts/{contactID}/verification/{action}", verificationHandler.Action)

			r.Post("/chat", chatHandler.Send)
			r.Get("/suggestions", wellnessHandler.Suggestions)
			r.Post("/exports", exportHandler.Create)
		})
	})

	return r
}
