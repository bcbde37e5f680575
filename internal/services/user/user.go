// Package user реализует профиль стажёра и симуляцию пожертвований.
package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/intern-dashboard/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/intern-dashboard/internal/lib/sl"
	"github.com/magabrotheeeer/intern-dashboard/internal/models"
	"github.com/magabrotheeeer/intern-dashboard/internal/services/leaderboard"
	"github.com/magabrotheeeer/intern-dashboard/internal/services/rewards"
	"github.com/magabrotheeeer/intern-dashboard/internal/storage/repository"
)

// Ошибки бизнес-логики профиля.
var (
	ErrUserNotFound  = errors.New("user not found")
	ErrInvalidAmount = errors.New("donation amount must be positive")
)

// UserRepository описывает операции хранилища, нужные профилю.
type UserRepository interface {
	GetUserByUID(ctx context.Context, userUID string) (*models.User, error)
	CountActiveWithMoreDonations(ctx context.Context, donations int64) (int, error)
	UpdateDonations(ctx context.Context, userUID string, donations int64, rewards []models.Reward) error
}

// CacheInvalidator сбрасывает закэшированные страницы рейтинга.
type CacheInvalidator interface {
	InvalidateByPrefix(ctx context.Context, prefix string) error
}

// EventPublisher отправляет события во внешнюю очередь.
type EventPublisher interface {
	Publish(exchange, routingkey string, message any) error
}

// RewardUnlockedEvent - событие разблокировки награды для очереди уведомлений.
type RewardUnlockedEvent struct {
	UserUID     string    `json:"userUid"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	RewardTitle string    `json:"rewardTitle"`
	Threshold   int64     `json:"threshold"`
	Donations   int64     `json:"donations"`
	UnlockedAt  time.Time `json:"unlockedAt"`
}

// Profile - профиль пользователя вместе с производной статистикой.
type Profile struct {
	User            *models.User   `json:"user"`
	Level           string         `json:"level"`
	Rank            int            `json:"rank"`
	DaysActive      int            `json:"daysActive"`
	RewardsUnlocked int            `json:"rewardsUnlocked"`
	NextReward      *models.Reward `json:"nextReward,omitempty"`
	ProgressToNext  float64        `json:"progressToNext"`
}

// DonationResult - итог зачисления пожертвования.
type DonationResult struct {
	Donations      int64           `json:"donations"`
	Level          string          `json:"level"`
	Rewards        []models.Reward `json:"rewards"`
	NewlyUnlocked  []models.Reward `json:"newlyUnlocked,omitempty"`
	ProgressToNext float64         `json:"progressToNext"`
}

// UserService отвечает за бизнес-логику профиля и пожертвований.
type UserService struct {
	log       *slog.Logger
	repo      UserRepository
	cache     CacheInvalidator
	publisher EventPublisher
}

// NewUserService создает новый экземпляр UserService.
func NewUserService(log *slog.Logger, repo UserRepository, cache CacheInvalidator, publisher EventPublisher) *UserService {
	return &UserService{log: log, repo: repo, cache: cache, publisher: publisher}
}

// Profile возвращает профиль пользователя и статистику по нему.
func (s *UserService) Profile(ctx context.Context, userUID string) (*Profile, error) {
	const op = "services.user.Profile"

	user, err := s.repo.GetUserByUID(ctx, userUID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ahead, err := s.repo.CountActiveWithMoreDonations(ctx, user.Donations)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Profile{
		User:            user,
		Level:           rewards.Level(user.Donations),
		Rank:            ahead + 1,
		DaysActive:      int(time.Since(user.CreatedAt).Hours() / 24),
		RewardsUnlocked: rewards.UnlockedCount(user.Rewards),
		NextReward:      rewards.NextLocked(user.Rewards),
		ProgressToNext:  rewards.ProgressToNext(user.Donations, user.Rewards),
	}, nil
}

// AddDonation зачисляет пожертвование, пересчитывает награды и
// сбрасывает кэш рейтинга. Для каждой новой награды публикуется
// событие в очередь уведомлений.
func (s *UserService) AddDonation(ctx context.Context, userUID string, amount int64) (*DonationResult, error) {
	const op = "services.user.AddDonation"

	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	user, err := s.repo.GetUserByUID(ctx, userUID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	updatedDonations := user.Donations + amount
	updatedRewards := rewards.Compute(updatedDonations, time.Now().UTC(), user.Rewards)

	if err := s.repo.UpdateDonations(ctx, userUID, updatedDonations, updatedRewards); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	// промах кэша дешевле устаревшего рейтинга
	if err := s.cache.InvalidateByPrefix(ctx, leaderboard.CacheKeyPrefix); err != nil {
		s.log.Error("failed to invalidate leaderboard cache", sl.Err(err))
	}

	newlyUnlocked := rewards.NewlyUnlocked(user.Rewards, updatedRewards)
	for _, reward := range newlyUnlocked {
		event := RewardUnlockedEvent{
			UserUID:     user.UID,
			Name:        user.Name,
			Email:       user.Email,
			RewardTitle: reward.Title,
			Threshold:   reward.Threshold,
			Donations:   updatedDonations,
			UnlockedAt:  *reward.UnlockedAt,
		}
		if err := s.publisher.Publish(rabbitmq.RewardsExchange, rabbitmq.RewardUnlockedKey, event); err != nil {
			s.log.Error("failed to publish reward unlocked event", sl.Err(err))
		}
	}

	return &DonationResult{
		Donations:      updatedDonations,
		Level:          rewards.Level(updatedDonations),
		Rewards:        updatedRewards,
		NewlyUnlocked:  newlyUnlocked,
		ProgressToNext: rewards.ProgressToNext(updatedDonations, updatedRewards),
	}, nil
}
