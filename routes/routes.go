package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/zgamesdev/zgames-backend/handlers"
	"github.com/zgamesdev/zgames-backend/middleware"
	"github.com/zgamesdev/zgames-backend/models"
)

type Handlers struct {
	Auth        *handlers.AuthHandler
	Catalog     *handlers.CatalogHandler
	Tournament  *handlers.TournamentHandler
	Team        *handlers.TeamHandler
	Player      *handlers.PlayerHandler
	Scoring     *handlers.ScoringHandler
	Leaderboard *handlers.LeaderboardHandler
	WebSocket   *handlers.WebSocketHandler
}

// SetupRoutes собирает полный роутер приложения. Чтение открыто всем,
// мутации требуют JWT; удаление турнира — только админу.
func SetupRoutes(h Handlers, jwtSecret string) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authenticated := middleware.Authenticate(jwtSecret)
	adminOnly := middleware.Authorize(string(models.RoleAdmin))

	r.Route("/api", func(api chi.Router) {
		api.Post("/auth/register", h.Auth.Register)
		api.Post("/auth/login", h.Auth.Login)

		api.Get("/animals", h.Catalog.ListAnimals)
		api.Get("/games", h.Catalog.ListGames)
		api.Get("/games/{gameID}", h.Catalog.GetGame)

		api.Route("/tournaments", func(t chi.Router) {
			t.Get("/", h.Tournament.List)
			t.Get("/active", h.Tournament.GetActive)
			t.Get("/{tournamentID}", h.Tournament.Get)

			t.Group(func(protected chi.Router) {
				protected.Use(authenticated)
				protected.Post("/", h.Tournament.Create)
				protected.Put("/{tournamentID}", h.Tournament.Update)
				protected.Patch("/{tournamentID}/status", h.Tournament.UpdateStatus)
				protected.With(adminOnly).Delete("/{tournamentID}", h.Tournament.Delete)

				protected.Post("/{tournamentID}/teams", h.Team.Create)
				protected.Put("/{tournamentID}/teams/{teamID}", h.Team.Rename)
				protected.Delete("/{tournamentID}/teams/{teamID}", h.Team.Delete)
				protected.Put("/{tournamentID}/teams/{teamID}/logo", h.Team.UploadLogo)

				protected.Post("/{tournamentID}/teams/{teamID}/players", h.Player.Create)
				protected.Delete("/{tournamentID}/teams/{teamID}/players/{playerID}", h.Player.Delete)
			})
		})

		api.With(authenticated).Put("/players/{playerID}", h.Player.Update)

		api.Route("/leaderboard", func(lb chi.Router) {
			lb.Get("/", h.Leaderboard.GetCurrent)
			lb.Get("/tournaments/{tournamentID}", h.Leaderboard.GetByTournament)
			lb.Get("/tournaments/{tournamentID}/games/{gameID}", h.Leaderboard.GetByGame)
			lb.With(authenticated).Post("/tournaments/{tournamentID}/games/{gameID}/scores", h.Scoring.RecordScores)
		})
	})

	r.Get("/ws/leaderboard", h.WebSocket.ServeGlobal)
	r.Get("/ws/tournaments/{tournamentID}", h.WebSocket.ServeTournament)

	return r
}
