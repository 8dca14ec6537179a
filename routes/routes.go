package routes

import (
	"net/http"

	_ "github.com/Dosada05/chess-tournament/docs"
	"github.com/Dosada05/chess-tournament/handlers"
	"github.com/Dosada05/chess-tournament/middleware"
	"github.com/Dosada05/chess-tournament/services"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	JWTSecret      []byte
	AllowedOrigins []string
}

func SetupRoutes(
	router chi.Router,
	opts Options,
	authHandler *handlers.AuthHandler,
	tournamentHandler *handlers.TournamentHandler,
	playerHandler *handlers.PlayerHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	organizerOnly := []func(http.Handler) http.Handler{
		middleware.Authenticate(opts.JWTSecret),
		middleware.Authorize(services.RoleOrganizer),
	}

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Get("/swagger/*", httpSwagger.WrapHandler)

	router.Post("/auth/login", authHandler.Login)

	router.Route("/tournaments", func(r chi.Router) {
		r.Get("/", tournamentHandler.ListHandler)
		r.With(organizerOnly...).Post("/", tournamentHandler.CreateHandler)

		r.Route("/{tournamentID}", func(r chi.Router) {
			r.Get("/", tournamentHandler.GetByIDHandler)
			r.Get("/standings", tournamentHandler.GetStandingsHandler)
			r.Get("/players/{playerID}/score", tournamentHandler.GetScoreHandler)
			r.Get("/rounds", tournamentHandler.ListRoundsHandler)
			r.Get("/rounds/current", tournamentHandler.GetCurrentRoundHandler)
			r.Get("/rounds/{roundNumber}", tournamentHandler.GetRoundHandler)

			r.Group(func(r chi.Router) {
				r.Use(organizerOnly...)
				r.Post("/players", tournamentHandler.AddPlayerHandler)
				r.Put("/status", tournamentHandler.UpdateStatusHandler)
				r.Put("/rounds/{roundNumber}/matches/{matchIndex}/result", tournamentHandler.RecordResultHandler)
				r.Post("/rounds/current/finish", tournamentHandler.FinishRoundHandler)
			})
		})
	})

	router.Route("/players", func(r chi.Router) {
		r.Get("/", playerHandler.ListHandler)
		r.Get("/{playerID}", playerHandler.GetByIDHandler)
		r.With(organizerOnly...).Post("/", playerHandler.CreateHandler)
	})

	router.Get("/ws/tournaments/{tournamentID}", webSocketHandler.ServeWs)
}
