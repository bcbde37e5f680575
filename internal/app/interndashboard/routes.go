// Package interndashboard собирает приложение дашборда стажёров.
package interndashboard

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/intern-dashboard/internal/config"
	"github.com/magabrotheeeer/intern-dashboard/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/intern-dashboard/internal/http/handlers/auth/logout"
	"github.com/magabrotheeeer/intern-dashboard/internal/http/handlers/auth/refresh"
	"github.com/magabrotheeeer/intern-dashboard/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/intern-dashboard/internal/http/handlers/health"
	"github.com/magabrotheeeer/intern-dashboard/internal/http/handlers/leaderboard/list"
	"github.com/magabrotheeeer/intern-dashboard/internal/http/handlers/user/donate"
	"github.com/magabrotheeeer/intern-dashboard/internal/http/handlers/user/profile"
	"github.com/magabrotheeeer/intern-dashboard/internal/http/middlewarectx"
	authservice "github.com/magabrotheeeer/intern-dashboard/internal/services/auth"
	boardservice "github.com/magabrotheeeer/intern-dashboard/internal/services/leaderboard"
	userservice "github.com/magabrotheeeer/intern-dashboard/internal/services/user"
	"github.com/magabrotheeeer/intern-dashboard/internal/storage/repository"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, cfg *config.Config,
	db *repository.Storage,
	authService *authservice.AuthService,
	userService *userservice.UserService,
	boardService *boardservice.LeaderboardService,
) {
	prod := cfg.IsProd()

	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
		middlewarectx.CORSMiddleware(cfg.ClientURL),
	)

	r.Route("/api", func(r chi.Router) {
		r.Use(middlewarectx.RateLimitMiddleware(logger, cfg.RateLimit))

		// Открытые конечные точки
		r.Get("/health", health.New(logger, db).ServeHTTP)
		r.Post("/auth/register", register.New(logger, authService, prod).ServeHTTP)
		r.Post("/auth/login", login.New(logger, authService, prod).ServeHTTP)
		r.Post("/auth/refresh", refresh.New(logger, authService, prod).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(authService, logger))
			r.Post("/auth/logout", logout.New(logger, authService, prod).ServeHTTP)
			r.Get("/user/profile", profile.New(logger, userService, prod).ServeHTTP)
			r.Patch("/user/donations", donate.New(logger, userService, prod).ServeHTTP)
			r.Get("/leaderboard", list.New(logger, boardService, prod).ServeHTTP)
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
