// Package referral генерирует реферальные коды для новых пользователей.
//
// Код строится из имени пользователя в нижнем регистре без пробелов
// и четырёх последних цифр текущего времени в миллисекундах,
// что дает детерминированный, но практически уникальный код.
package referral

import (
	"strconv"
	"strings"
	"time"
)

// Generate возвращает реферальный код для имени name на момент времени now.
func Generate(name string, now time.Time) string {
	base := strings.ToLower(strings.Join(strings.Fields(name), ""))
	millis := strconv.FormatInt(now.UnixMilli(), 10)
	return base + millis[len(millis)-4:]
}
