// Package rewards содержит чистую логику уровней и наград.
//
// Уровень и список наград детерминированно вычисляются из накопленной
// суммы пожертвований и нигде не хранятся отдельно от неё.
package rewards

import (
	"time"

	"github.com/magabrotheeeer/intern-dashboard/internal/models"
)

// Названия уровней в порядке возрастания.
const (
	LevelStarter  = "Starter"
	LevelBronze   = "Bronze"
	LevelSilver   = "Silver"
	LevelGold     = "Gold"
	LevelPlatinum = "Platinum"
)

// Пороги уровней и ступеней наград.
const (
	ThresholdBronze   = 1000
	ThresholdSilver   = 2500
	ThresholdGold     = 5000
	ThresholdPlatinum = 10000
)

// tier — фиксированная ступень лестницы наград.
type tier struct {
	title     string
	threshold int64
}

// Фиксированная лестница наград, порядок важен.
var tiers = []tier{
	{title: "Welcome Bonus", threshold: 0},
	{title: "Bronze Badge", threshold: ThresholdBronze},
	{title: "Silver Medal", threshold: ThresholdSilver},
	{title: "Gold Trophy", threshold: ThresholdGold},
	{title: "Platinum Crown", threshold: ThresholdPlatinum},
}

// Level возвращает уровень пользователя по сумме пожертвований.
func Level(donations int64) string {
	switch {
	case donations >= ThresholdPlatinum:
		return LevelPlatinum
	case donations >= ThresholdGold:
		return LevelGold
	case donations >= ThresholdSilver:
		return LevelSilver
	case donations >= ThresholdBronze:
		return LevelBronze
	default:
		return LevelStarter
	}
}

// Compute пересчитывает список наград из суммы пожертвований.
//
// Ступень разблокирована, когда donations >= её порога. Момент
// разблокировки фиксируется один раз: если ступень уже была
// разблокирована в previous, её UnlockedAt сохраняется, иначе
// проставляется now.
func Compute(donations int64, now time.Time, previous []models.Reward) []models.Reward {
	prevUnlockedAt := make(map[string]*time.Time, len(previous))
	for _, r := range previous {
		if r.Unlocked && r.UnlockedAt != nil {
			prevUnlockedAt[r.Title] = r.UnlockedAt
		}
	}

	result := make([]models.Reward, 0, len(tiers))
	for _, t := range tiers {
		reward := models.Reward{
			Title:     t.title,
			Threshold: t.threshold,
			Unlocked:  donations >= t.threshold,
		}
		if reward.Unlocked {
			if at, ok := prevUnlockedAt[t.title]; ok {
				reward.UnlockedAt = at
			} else {
				unlockedAt := now
				reward.UnlockedAt = &unlockedAt
			}
		}
		result = append(result, reward)
	}
	return result
}

// UnlockedCount возвращает количество разблокированных наград.
func UnlockedCount(rewards []models.Reward) int {
	var count int
	for _, r := range rewards {
		if r.Unlocked {
			count++
		}
	}
	return count
}

// NextLocked возвращает первую неразблокированную ступень или nil.
func NextLocked(rewards []models.Reward) *models.Reward {
	for i := range rewards {
		if !rewards[i].Unlocked {
			return &rewards[i]
		}
	}
	return nil
}

// ProgressToNext возвращает процент прогресса к следующей награде,
// 100 — когда все ступени разблокированы.
func ProgressToNext(donations int64, rewards []models.Reward) float64 {
	next := NextLocked(rewards)
	if next == nil {
		return 100
	}
	return float64(donations) / float64(next.Threshold) * 100
}

// NewlyUnlocked возвращает ступени, разблокированные в updated,
// но ещё не разблокированные в previous.
func NewlyUnlocked(previous, updated []models.Reward) []models.Reward {
	wasUnlocked := make(map[string]bool, len(previous))
	for _, r := range previous {
		if r.Unlocked {
			wasUnlocked[r.Title] = true
		}
	}

	var result []models.Reward
	for _, r := range updated {
		if r.Unlocked && !wasUnlocked[r.Title] {
			result = append(result, r)
		}
	}
	return result
}
