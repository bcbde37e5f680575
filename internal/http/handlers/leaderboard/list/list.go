// Package list реализует HTTP-обработчик рейтинга пожертвований.
package list

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/intern-dashboard/internal/http/middlewarectx"
	"github.com/magabrotheeeer/intern-dashboard/internal/http/response"
	"github.com/magabrotheeeer/intern-dashboard/internal/lib/sl"
	"github.com/magabrotheeeer/intern-dashboard/internal/services/leaderboard"
)

// Service описывает интерфейс бизнес-логики рейтинга.
type Service interface {
	Snapshot(ctx context.Context, currentUID string, limit, skip int) (*leaderboard.Snapshot, error)
}

// Handler обрабатывает HTTP-запросы рейтинга.
type Handler struct {
	log     *slog.Logger
	service Service
	prod    bool
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service, prod bool) *Handler {
	return &Handler{log: log, service: service, prod: prod}
}

// ServeHTTP godoc
// @Summary Рейтинг пожертвований
// @Description Возвращает срез рейтинга активных пользователей. Позиция текущего пользователя включается даже вне среза.
// @Tags Leaderboard
// @Produce  json
// @Security BearerAuth
// @Param limit query int false "Размер среза, по умолчанию 10"
// @Param skip query int false "Смещение от вершины, по умолчанию 0"
// @Success 200 {object} response.Response "Срез рейтинга"
// @Failure 401 {object} response.ErrorResponse "Пользователь не аутентифицирован"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /api/leaderboard [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.leaderboard.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user identification missing")
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = leaderboard.DefaultLimit
	}
	skip, err := strconv.Atoi(r.URL.Query().Get("skip"))
	if err != nil || skip < 0 {
		skip = 0
	}

	snapshot, err := h.service.Snapshot(r.Context(), userUID, limit, skip)
	if err != nil {
		log.Error("failed to build leaderboard", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Internal(err, h.prod))
		return
	}

	render.JSON(w, r, response.OKWithData("leaderboard loaded", snapshot))
}
