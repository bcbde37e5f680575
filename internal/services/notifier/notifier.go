// Package notifier обрабатывает события разблокировки наград из очереди.
//
// Сейчас уведомление пишется в журнал. Точка расширения для почты или
// пушей, формат события стабилен.
package notifier

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"
)

// RewardUnlockedEvent повторяет формат события издателя.
type RewardUnlockedEvent struct {
	UserUID     string    `json:"userUid"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	RewardTitle string    `json:"rewardTitle"`
	Threshold   int64     `json:"threshold"`
	Donations   int64     `json:"donations"`
	UnlockedAt  time.Time `json:"unlockedAt"`
}

// NotifierService отвечает за доставку уведомлений о наградах.
type NotifierService struct {
	log *slog.Logger
}

// NewNotifierService создает новый экземпляр NotifierService.
func NewNotifierService(log *slog.Logger) *NotifierService {
	return &NotifierService{log: log}
}

// HandleRewardUnlocked разбирает событие из очереди и отправляет уведомление.
func (s *NotifierService) HandleRewardUnlocked(body []byte) error {
	const op = "services.notifier.HandleRewardUnlocked"

	var event RewardUnlockedEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if event.UserUID == "" || event.RewardTitle == "" {
		return fmt.Errorf("%s: incomplete event payload", op)
	}

	s.log.Info("reward unlocked notification",
		slog.String("op", op),
		slog.String("uid", event.UserUID),
		slog.String("email", event.Email),
		slog.String("reward", event.RewardTitle),
		slog.Int64("donations", event.Donations),
	)
	return nil
}
