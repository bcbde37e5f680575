package list_test

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

	"github.com/magabrotheeeer/intern-dashboard/internal/http/handlers/leaderboard/list"
	"github.com/magabrotheeeer/intern-dashboard/internal/http/middlewarectx"
	"github.com/magabrotheeeer/intern-dashboard/internal/http/response"
	"github.com/magabrotheeeer/intern-dashboard/internal/services/leaderboard"
)

type ServiceMock struct{ mock.Mock }

func (m *ServiceMock) Snapshot(ctx context.Context, currentUID string, limit, skip int) (*leaderboard.Snapshot, error) {
	args := m.Called(ctx, currentUID, limit, skip)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*leaderboard.Snapshot), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newRequest(target string, withUser bool) *http.Request {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if withUser {
		ctx := context.WithValue(req.Context(), middlewarectx.UserUID, "uid-1")
		req = req.WithContext(ctx)
	}
	return req
}

func TestListHandler(t *testing.T) {
	serviceMock := new(ServiceMock)
	serviceMock.On("Snapshot", mock.Anything, "uid-1", 5, 10).
		Return(&leaderboard.Snapshot{Limit: 5, Skip: 10, TotalUsers: 42}, nil).Once()

	handler := list.New(newNoopLogger(), serviceMock, false)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, newRequest("/api/leaderboard?limit=5&skip=10", true))

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp response.Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.True(t, resp.Success)

	serviceMock.AssertExpectations(t)
}

func TestListHandler_DefaultsOnBadQuery(t *testing.T) {
	serviceMock := new(ServiceMock)
	serviceMock.On("Snapshot", mock.Anything, "uid-1", leaderboard.DefaultLimit, 0).
		Return(&leaderboard.Snapshot{Limit: leaderboard.DefaultLimit}, nil).Once()

	handler := list.New(newNoopLogger(), serviceMock, false)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, newRequest("/api/leaderboard?limit=abc&skip=-5", true))

	assert.Equal(t, http.StatusOK, rec.Code)
	serviceMock.AssertExpectations(t)
}

func TestListHandler_Unauthenticated(t *testing.T) {
	handler := list.New(newNoopLogger(), new(ServiceMock), false)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, newRequest("/api/leaderboard", false))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
