package profile_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/intern-dashboard/internal/http/handlers/user/profile"
	"github.com/magabrotheeeer/intern-dashboard/internal/http/middlewarectx"
	"github.com/magabrotheeeer/intern-dashboard/internal/http/response"
	"github.com/magabrotheeeer/intern-dashboard/internal/models"
	"github.com/magabrotheeeer/intern-dashboard/internal/services/user"
)

type ServiceMock struct{ mock.Mock }

func (m *ServiceMock) Profile(ctx context.Context, userUID string) (*user.Profile, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.Profile), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestProfileHandler(t *testing.T) {
	serviceMock := new(ServiceMock)
	serviceMock.On("Profile", mock.Anything, "uid-1").
		Return(&user.Profile{
			User:            &models.User{UID: "uid-1", Name: "Alice"},
			Level:           "Silver",
			Rank:            5,
			DaysActive:      10,
			RewardsUnlocked: 3,
		}, nil).Once()

	handler := profile.New(newNoopLogger(), serviceMock, false)

	req := httptest.NewRequest(http.MethodGet, "/api/user/profile", nil)
	req = req.WithContext(context.WithValue(req.Context(), middlewarectx.UserUID, "uid-1"))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp response.Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.True(t, resp.Success)

	serviceMock.AssertExpectations(t)
}

func TestProfileHandler_Unauthenticated(t *testing.T) {
	handler := profile.New(newNoopLogger(), new(ServiceMock), false)

	req := httptest.NewRequest(http.MethodGet, "/api/user/profile", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProfileHandler_OwnerGone(t *testing.T) {
	serviceMock := new(ServiceMock)
	serviceMock.On("Profile", mock.Anything, "uid-1").Return(nil, user.ErrUserNotFound).Once()

	handler := profile.New(newNoopLogger(), serviceMock, false)

	req := httptest.NewRequest(http.MethodGet, "/api/user/profile", nil)
	req = req.WithContext(context.WithValue(req.Context(), middlewarectx.UserUID, "uid-1"))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	serviceMock.AssertExpectations(t)
}
