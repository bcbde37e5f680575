// Package leaderboard собирает рейтинг активных стажёров по сумме пожертвований.
package leaderboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/magabrotheeeer/intern-dashboard/internal/models"
	"github.com/magabrotheeeer/intern-dashboard/internal/services/rewards"
	"github.com/magabrotheeeer/intern-dashboard/internal/storage/repository"
)

// CacheKeyPrefix - общий префикс ключей кэша рейтинга.
// Инвалидация по нему сбрасывает все закэшированные страницы разом.
const CacheKeyPrefix = "leaderboard"

const (
	cacheTTL     = time.Minute
	DefaultLimit = 10
	MaxLimit     = 100
)

// LeaderboardRepository описывает выборки, нужные для построения рейтинга.
type LeaderboardRepository interface {
	ListActiveTopDonators(ctx context.Context, limit, offset int) ([]*models.User, error)
	CountActiveWithMoreDonations(ctx context.Context, donations int64) (int, error)
	CountActiveUsers(ctx context.Context) (int, error)
	GetUserByUID(ctx context.Context, userUID string) (*models.User, error)
}

// Cache хранит готовые страницы рейтинга.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
}

// Snapshot - страница рейтинга вместе с позицией текущего пользователя.
type Snapshot struct {
	Entries     []models.LeaderboardEntry `json:"leaderboard"`
	Limit       int                       `json:"limit"`
	Skip        int                       `json:"skip"`
	TotalUsers  int                       `json:"totalUsers"`
	CurrentUser *models.LeaderboardEntry  `json:"currentUser,omitempty"`
}

// cachedPage кэшируется без пользовательских пометок,
// поэтому одна страница обслуживает всех.
type cachedPage struct {
	Entries    []models.LeaderboardEntry `json:"entries"`
	TotalUsers int                       `json:"totalUsers"`
}

// LeaderboardService отвечает за бизнес-логику рейтинга.
type LeaderboardService struct {
	repo  LeaderboardRepository
	cache Cache
}

// NewLeaderboardService создает новый экземпляр LeaderboardService.
func NewLeaderboardService(repo LeaderboardRepository, cache Cache) *LeaderboardService {
	return &LeaderboardService{repo: repo, cache: cache}
}

// Snapshot возвращает срез рейтинга. Позиция текущего пользователя
// включается даже когда он не попал в запрошенный срез.
func (s *LeaderboardService) Snapshot(ctx context.Context, currentUID string, limit, skip int) (*Snapshot, error) {
	const op = "services.leaderboard.Snapshot"

	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if skip < 0 {
		skip = 0
	}

	cached, err := s.loadPage(ctx, limit, skip)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result := &Snapshot{
		Entries:    cached.Entries,
		Limit:      limit,
		Skip:       skip,
		TotalUsers: cached.TotalUsers,
	}

	for i := range result.Entries {
		if result.Entries[i].UID == currentUID {
			result.Entries[i].IsCurrentUser = true
		}
	}

	// Позиция текущего пользователя всегда считается по числу тех,
	// кто пожертвовал строго больше: при равных суммах соседи по срезу
	// делят одно место, хотя в самом срезе отображаются по порядку.
	entry, err := s.rankOf(ctx, currentUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	result.CurrentUser = entry

	return result, nil
}

// loadPage читает срез из кэша, при промахе строит его из базы.
func (s *LeaderboardService) loadPage(ctx context.Context, limit, skip int) (*cachedPage, error) {
	key := fmt.Sprintf("%s:limit:%d:skip:%d", CacheKeyPrefix, limit, skip)

	var cached cachedPage
	found, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		return nil, err
	}
	if found {
		return &cached, nil
	}

	users, err := s.repo.ListActiveTopDonators(ctx, limit, skip)
	if err != nil {
		return nil, err
	}
	total, err := s.repo.CountActiveUsers(ctx)
	if err != nil {
		return nil, err
	}

	cached = cachedPage{
		Entries:    make([]models.LeaderboardEntry, 0, len(users)),
		TotalUsers: total,
	}
	for i, user := range users {
		cached.Entries = append(cached.Entries, models.LeaderboardEntry{
			UID:       user.UID,
			Name:      user.Name,
			Donations: user.Donations,
			Level:     rewards.Level(user.Donations),
			CreatedAt: user.CreatedAt,
			Rank:      skip + i + 1,
		})
	}

	if err := s.cache.Set(ctx, key, cached, cacheTTL); err != nil {
		return nil, err
	}
	return &cached, nil
}

// rankOf вычисляет позицию пользователя вне запрошенного среза.
func (s *LeaderboardService) rankOf(ctx context.Context, userUID string) (*models.LeaderboardEntry, error) {
	user, err := s.repo.GetUserByUID(ctx, userUID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, nil
	}

	ahead, err := s.repo.CountActiveWithMoreDonations(ctx, user.Donations)
	if err != nil {
		return nil, err
	}

	return &models.LeaderboardEntry{
		UID:           user.UID,
		Name:          user.Name,
		Donations:     user.Donations,
		Level:         rewards.Level(user.Donations),
		CreatedAt:     user.CreatedAt,
		Rank:          ahead + 1,
		IsCurrentUser: true,
	}, nil
}
