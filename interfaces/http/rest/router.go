// Package rest wires the HTTP surface: routing, middleware and handler
// registration.
package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/bbthechange/hangoutsBackend-sub012/interfaces/http/rest/handlers"
	"github.com/bbthechange/hangoutsBackend-sub012/interfaces/http/rest/middleware"
	"github.com/bbthechange/hangoutsBackend-sub012/pkg/auth"
	"github.com/bbthechange/hangoutsBackend-sub012/pkg/observability"
)

// Router creates and configures the HTTP router.
type Router struct {
	groupHandler   *handlers.GroupHandler
	hangoutHandler *handlers.HangoutHandler
	feedHandler    *handlers.FeedHandler
	validator      *auth.JWTValidator
	logger         *zap.Logger
}

// NewRouter creates a new router instance.
func NewRouter(
	groupHandler *handlers.GroupHandler,
	hangoutHandler *handlers.HangoutHandler,
	feedHandler *handlers.FeedHandler,
	validator *auth.JWTValidator,
	logger *zap.Logger,
) *Router {
	return &Router{
		groupHandler:   groupHandler,
		hangoutHandler: hangoutHandler,
		feedHandler:    feedHandler,
		validator:      validator,
		logger:         logger,
	}
}

// Setup configures all routes and middleware.
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))
	router.Use(observability.Middleware)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "If-None-Match", "X-Request-ID"},
		ExposedHeaders:   []string{"ETag", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Get("/health", rt.healthCheck)
	router.Method("GET", "/metrics", observability.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Authenticate(rt.validator))
		r.Use(middleware.CircuitBreaker(middleware.DefaultCircuitBreakerConfig("api"), rt.logger))

		r.Route("/groups", func(r chi.Router) {
			r.Post("/", rt.groupHandler.CreateGroup)
			r.Get("/", rt.groupHandler.ListGroups)
			r.Route("/{groupID}", func(r chi.Router) {
				r.Get("/", rt.groupHandler.GetGroup)
				r.Patch("/", rt.groupHandler.UpdateGroup)
				r.Delete("/", rt.groupHandler.DeleteGroup)
				r.Get("/members", rt.groupHandler.ListMembers)
				r.Post("/members", rt.groupHandler.AddMember)
				r.Delete("/members/{userID}", rt.groupHandler.RemoveMember)
				r.Get("/feed", rt.feedHandler.GetFeed)
				r.Delete("/series/{seriesID}", rt.hangoutHandler.DeleteSeries)
			})
		})

		r.Route("/hangouts", func(r chi.Router) {
			r.Post("/", rt.hangoutHandler.CreateHangout)
			r.Route("/{hangoutID}", func(r chi.Router) {
				r.Get("/", rt.hangoutHandler.GetHangout)
				r.Patch("/", rt.hangoutHandler.UpdateHangout)
				r.Delete("/", rt.hangoutHandler.DeleteHangout)
				r.Put("/groups/{groupID}", rt.hangoutHandler.AssociateGroup)
				r.Delete("/groups/{groupID}", rt.hangoutHandler.DisassociateGroup)
				r.Post("/polls", rt.hangoutHandler.CreatePoll)
				r.Post("/polls/{pollID}/votes", rt.hangoutHandler.CastVote)
				r.Put("/participation", rt.hangoutHandler.SetParticipation)
				r.Delete("/participation", rt.hangoutHandler.ClearParticipation)
				r.Post("/reservation-offers", rt.hangoutHandler.CreateOffer)
				r.Post("/reservation-offers/{offerID}/claim-spot", rt.hangoutHandler.ClaimSpot)
				r.Post("/reservation-offers/{offerID}/unclaim-spot", rt.hangoutHandler.UnclaimSpot)
			})
		})

		r.Post("/series", rt.hangoutHandler.CreateSeries)
	})

	return router
}

func (rt *Router) healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}
