// Package refresh реализует HTTP-обработчик обновления пары токенов.
//
// Предъявленный refresh-токен сверяется с сохранённым на сервере и
// ротируется: старый токен после успешного обновления недействителен.
package refresh

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/intern-dashboard/internal/http/response"
	"github.com/magabrotheeeer/intern-dashboard/internal/lib/sl"
	"github.com/magabrotheeeer/intern-dashboard/internal/services/auth"
)

// Request — структура входных данных для обновления токенов.
type Request struct {
	RefreshToken string `json:"refreshToken"`
}

// Service описывает интерфейс бизнес-логики обновления токенов.
type Service interface {
	Refresh(ctx context.Context, refreshToken string) (auth.TokenPair, error)
}

// Handler обрабатывает HTTP-запросы обновления токенов.
type Handler struct {
	log     *slog.Logger
	service Service
	prod    bool
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service, prod bool) *Handler {
	return &Handler{
		log:     log,
		service: service,
		prod:    prod,
	}
}

// ServeHTTP godoc
// @Summary Обновление пары токенов
// @Description Принимает refresh-токен, возвращает новую пару. Старый refresh-токен отзывается.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Refresh-токен"
// @Success 200 {object} response.Response "Новая пара токенов"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Refresh-токен не передан"
// @Failure 403 {object} response.ErrorResponse "Недействительный refresh-токен"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /api/auth/refresh [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.refresh"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if req.RefreshToken == "" {
		log.Error("refresh token is missing")
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("refresh token required"))
		return
	}

	pair, err := h.service.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidRefreshToken) {
			log.Error("refresh token rejected", sl.Err(err))
			render.Status(r, http.StatusForbidden)
			render.JSON(w, r, response.Error("invalid refresh token"))
			return
		}
		log.Error("token refresh failed", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Internal(err, h.prod))
		return
	}

	log.Info("token pair refreshed")
	render.JSON(w, r, response.OKWithData("tokens refreshed", map[string]any{
		"tokens": pair,
	}))
}
