// Package notifier собирает воркер уведомлений о наградах.
package notifier

import (
	"context"
	"log/slog"
	"time"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/intern-dashboard/internal/config"
	"github.com/magabrotheeeer/intern-dashboard/internal/lib/rabbitmq"
	notifierservice "github.com/magabrotheeeer/intern-dashboard/internal/services/notifier"
)

// App связывает потребителя очереди с сервисом уведомлений.
type App struct {
	conn            *amqp.Connection
	ch              *amqp.Channel
	notifierService *notifierservice.NotifierService
	logger          *slog.Logger
}

// New подключается к RabbitMQ и готовит воркер к запуску.
func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	conn, err := rabbitmq.Connect(cfg.RabbitMQConnection, 5, 3*time.Second)
	if err != nil {
		return nil, err
	}
	ch, err := rabbitmq.SetupChannel(conn)
	if err != nil {
		conn.Close()
		return nil, err
	}

	return &App{
		conn:            conn,
		ch:              ch,
		notifierService: notifierservice.NewNotifierService(logger),
		logger:          logger,
	}, nil
}

// Run запускает потребителя и ждёт сигнала завершения.
func (a *App) Run(ctx context.Context) error {
	err := rabbitmq.ConsumerMessage(ctx, a.ch, rabbitmq.RewardUnlocksQueue, a.notifierService.HandleRewardUnlocked)
	if err != nil {
		a.logger.Error("failed to start reward unlocks consumer", slog.Any("err", err))
		return err
	}

	<-ctx.Done()
	a.logger.Info("notifier service shutting down gracefully")

	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", slog.Any("err", err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", slog.Any("err", err))
	}
	return nil
}
