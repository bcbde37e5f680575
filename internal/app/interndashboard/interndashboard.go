package interndashboard

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/intern-dashboard/internal/cache"
	"github.com/magabrotheeeer/intern-dashboard/internal/config"
	"github.com/magabrotheeeer/intern-dashboard/internal/lib/jwt"
	"github.com/magabrotheeeer/intern-dashboard/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/intern-dashboard/internal/migrations"
	authservice "github.com/magabrotheeeer/intern-dashboard/internal/services/auth"
	boardservice "github.com/magabrotheeeer/intern-dashboard/internal/services/leaderboard"
	userservice "github.com/magabrotheeeer/intern-dashboard/internal/services/user"
	"github.com/magabrotheeeer/intern-dashboard/internal/storage/repository"
)

// App связывает HTTP-сервер с хранилищем, кэшем и брокером сообщений.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	amqp   *amqp.Connection
}

// New собирает приложение: подключает зависимости, накатывает миграции
// и регистрирует маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	amqpConn, err := rabbitmq.Connect(cfg.RabbitMQConnection, 5, 3*time.Second)
	if err != nil {
		return nil, err
	}
	amqpChannel, err := rabbitmq.SetupChannel(amqpConn)
	if err != nil {
		return nil, err
	}

	jwtMaker := jwt.NewJWTMaker(
		cfg.JWTToken.AccessSecretKey,
		cfg.JWTToken.RefreshSecretKey,
		cfg.JWTToken.AccessTokenTTL,
		cfg.JWTToken.RefreshTokenTTL,
	)

	authService := authservice.NewAuthService(db, jwtMaker)
	userService := userservice.NewUserService(logger, db, cacheRedis, rabbitmq.NewPublisher(amqpChannel))
	boardService := boardservice.NewLeaderboardService(db, cacheRedis)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, cfg, db, authService, userService, boardService)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		amqp:   amqpConn,
	}, nil
}

// Run запускает HTTP-сервер и ждёт сигнала завершения.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		if cerr := a.amqp.Close(); cerr != nil {
			a.logger.Error("failed to close rabbitmq connection", slog.Any("err", cerr))
		}
		if cerr := a.db.DB.Close(); cerr != nil {
			a.logger.Error("failed to close database connection", slog.Any("err", cerr))
		}
		return err
	}
}
