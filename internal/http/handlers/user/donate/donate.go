// Package donate реализует HTTP-обработчик зачисления пожертвований.
//
// Сумма добавляется к накопленному итогу пользователя, награды
// пересчитываются, кэш рейтинга сбрасывается.
package donate

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/intern-dashboard/internal/http/middlewarectx"
	"github.com/magabrotheeeer/intern-dashboard/internal/http/response"
	"github.com/magabrotheeeer/intern-dashboard/internal/lib/sl"
	"github.com/magabrotheeeer/intern-dashboard/internal/services/user"
)

// Request — структура входных данных для пожертвования.
type Request struct {
	Amount int64 `json:"amount" validate:"required,gt=0"`
}

// Service описывает интерфейс бизнес-логики пожертвований.
type Service interface {
	AddDonation(ctx context.Context, userUID string, amount int64) (*user.DonationResult, error)
}

// Handler обрабатывает HTTP-запросы пожертвований.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
	prod     bool
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service, prod bool) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
		prod:     prod,
	}
}

// ServeHTTP godoc
// @Summary Зачисление пожертвования
// @Description Добавляет сумму к итогу пользователя и пересчитывает награды. Возвращает новый итог, уровень и разблокированные награды.
// @Tags User
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body Request true "Сумма пожертвования"
// @Success 200 {object} response.Response "Итог обновлён"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или неположительная сумма"
// @Failure 401 {object} response.ErrorResponse "Пользователь не аутентифицирован"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /api/user/donations [patch]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.donate"

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

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	result, err := h.service.AddDonation(r.Context(), userUID, req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, user.ErrInvalidAmount):
			log.Error("donation amount rejected", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("donation amount must be positive"))
		case errors.Is(err, user.ErrUserNotFound):
			log.Error("donation owner not found", sl.Err(err))
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, response.Error("user not found"))
		default:
			log.Error("failed to add donation", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Internal(err, h.prod))
		}
		return
	}

	log.Info("donation added",
		slog.String("uid", userUID),
		slog.Int64("amount", req.Amount),
		slog.Int64("total", result.Donations))
	render.JSON(w, r, response.OKWithData("donation added", result))
}
