// Package register реализует HTTP-обработчик регистрации стажёров.
//
// В нём определяется структура Request для входных данных, выполняется
// декодирование JSON, валидация полей и проверка сложности пароля, а также
// делегирование регистрации сервису аутентификации. При успехе возвращается
// созданный пользователь вместе с парой токенов, статус 201.
package register

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"unicode"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/intern-dashboard/internal/http/response"
	"github.com/magabrotheeeer/intern-dashboard/internal/lib/sl"
	"github.com/magabrotheeeer/intern-dashboard/internal/models"
	"github.com/magabrotheeeer/intern-dashboard/internal/services/auth"
)

// Request — входные данные для регистрации
type Request struct {
	Name     string `json:"name" validate:"required,min=2,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// Service описывает интерфейс бизнес-логики регистрации.
type Service interface {
	Register(ctx context.Context, name, email, rawPassword string) (*models.User, auth.TokenPair, error)
}

// Handler обрабатывает HTTP-запросы регистрации.
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
// @Summary Регистрация стажёра
// @Description Создаёт пользователя со стартовой суммой пожертвований и реферальным кодом. Возвращает пользователя и пару токенов.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Данные нового пользователя"
// @Success 201 {object} response.Response "Пользователь создан"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или ошибка валидации"
// @Failure 409 {object} response.ErrorResponse "Email уже занят"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /api/auth/register [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.register"

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
	log.Info("request body decoded", slog.String("email", req.Email))

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}
	if msgs := passwordComplexityErrors(req.Password); len(msgs) > 0 {
		log.Error("password complexity check failed")
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.ErrorWithDetails("validation failed", msgs))
		return
	}
	log.Info("all fields are validated")

	user, pair, err := h.service.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrEmailTaken) {
			log.Error("email already registered", sl.Err(err))
			render.Status(r, http.StatusConflict)
			render.JSON(w, r, response.Error("email already registered"))
			return
		}
		log.Error("registration failed", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Internal(err, h.prod))
		return
	}

	log.Info("user registered", slog.String("uid", user.UID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.OKWithData("user registered successfully", map[string]any{
		"user":   user,
		"tokens": pair,
	}))
}

// passwordComplexityErrors проверяет, что пароль содержит прописную и
// строчную буквы и цифру. Теги валидатора такое правило не выражают.
func passwordComplexityErrors(password string) []string {
	var hasUpper, hasLower, hasDigit bool
	for _, c := range password {
		switch {
		case unicode.IsUpper(c):
			hasUpper = true
		case unicode.IsLower(c):
			hasLower = true
		case unicode.IsDigit(c):
			hasDigit = true
		}
	}

	var msgs []string
	if !hasUpper {
		msgs = append(msgs, "field Password must contain an uppercase letter")
	}
	if !hasLower {
		msgs = append(msgs, "field Password must contain a lowercase letter")
	}
	if !hasDigit {
		msgs = append(msgs, "field Password must contain a digit")
	}
	return msgs
}
