package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/intern-dashboard/internal/lib/jwt"
	"github.com/magabrotheeeer/intern-dashboard/internal/lib/password"
	"github.com/magabrotheeeer/intern-dashboard/internal/models"
	"github.com/magabrotheeeer/intern-dashboard/internal/storage/repository"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) CreateUser(ctx context.Context, user models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *RepoMock) GetActiveUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *RepoMock) GetUserByUID(ctx context.Context, userUID string) (*models.User, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *RepoMock) UpdateLoginState(ctx context.Context, userUID, refreshToken string, lastLogin time.Time) error {
	args := m.Called(ctx, userUID, refreshToken, lastLogin)
	return args.Error(0)
}

func (m *RepoMock) UpdateRefreshToken(ctx context.Context, userUID, refreshToken string) error {
	args := m.Called(ctx, userUID, refreshToken)
	return args.Error(0)
}

func (m *RepoMock) ClearRefreshToken(ctx context.Context, userUID string) error {
	args := m.Called(ctx, userUID)
	return args.Error(0)
}

func newTestMaker() *jwt.MakerImpl {
	return jwt.NewJWTMaker("test_access_secret", "test_refresh_secret",
		15*time.Minute, 7*24*time.Hour)
}

func TestAuthService_Register(t *testing.T) {
	repo := new(RepoMock)
	service := NewAuthService(repo, newTestMaker())

	var created models.User
	repo.On("CreateUser", mock.Anything, mock.MatchedBy(func(u models.User) bool {
		created = u
		return u.Email == "alice@example.com" && u.Role == models.RoleIntern
	})).Return(nil).Once()

	user, pair, err := service.Register(context.Background(), "Alice Smith", "Alice@Example.com", "Secret123")
	require.NoError(t, err)
	require.NotNil(t, user)

	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, pair.RefreshToken, created.RefreshToken, "refresh token must be persisted")

	assert.Equal(t, "Alice Smith", created.Name)
	assert.Equal(t, "alice@example.com", created.Email, "email must be lowercased")
	assert.NotEmpty(t, created.UID)
	assert.True(t, created.IsActive)
	assert.NoError(t, password.CompareHash(created.PasswordHash, "Secret123"))
	assert.Contains(t, created.ReferralCode, "alicesmith")

	// стартовая сумма случайна, но в фиксированных границах
	assert.GreaterOrEqual(t, created.Donations, int64(500))
	assert.Less(t, created.Donations, int64(5500))

	// награды пересчитаны от стартовой суммы
	require.Len(t, created.Rewards, 5)
	assert.True(t, created.Rewards[0].Unlocked, "welcome bonus is always unlocked")

	repo.AssertExpectations(t)
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	repo := new(RepoMock)
	service := NewAuthService(repo, newTestMaker())

	repo.On("CreateUser", mock.Anything, mock.Anything).Return(repository.ErrEmailTaken).Once()

	user, pair, err := service.Register(context.Background(), "Bob", "bob@example.com", "Secret123")
	assert.ErrorIs(t, err, ErrEmailTaken)
	assert.Nil(t, user)
	assert.Empty(t, pair.AccessToken)

	repo.AssertExpectations(t)
}

func TestAuthService_Login(t *testing.T) {
	hash, err := password.GetHash("Secret123")
	require.NoError(t, err)

	storedUser := &models.User{
		UID:          "uid-1",
		Name:         "Alice",
		Email:        "alice@example.com",
		PasswordHash: hash,
		Role:         models.RoleIntern,
		IsActive:     true,
	}

	tests := []struct {
		name       string
		email      string
		rawPass    string
		setupMocks func(r *RepoMock)
		wantErr    error
	}{
		{
			name:    "success",
			email:   "alice@example.com",
			rawPass: "Secret123",
			setupMocks: func(r *RepoMock) {
				u := *storedUser
				r.On("GetActiveUserByEmail", mock.Anything, "alice@example.com").Return(&u, nil).Once()
				r.On("UpdateLoginState", mock.Anything, "uid-1", mock.Anything, mock.Anything).Return(nil).Once()
			},
		},
		{
			name:    "unknown email",
			email:   "missing@example.com",
			rawPass: "Secret123",
			setupMocks: func(r *RepoMock) {
				r.On("GetActiveUserByEmail", mock.Anything, "missing@example.com").
					Return(nil, repository.ErrUserNotFound).Once()
			},
			wantErr: ErrInvalidCredentials,
		},
		{
			name:    "wrong password",
			email:   "alice@example.com",
			rawPass: "WrongPass1",
			setupMocks: func(r *RepoMock) {
				u := *storedUser
				r.On("GetActiveUserByEmail", mock.Anything, "alice@example.com").Return(&u, nil).Once()
			},
			wantErr: ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			tt.setupMocks(repo)
			service := NewAuthService(repo, newTestMaker())

			user, pair, err := service.Login(context.Background(), tt.email, tt.rawPass)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, user)
			} else {
				require.NoError(t, err)
				require.NotNil(t, user)
				assert.NotEmpty(t, pair.AccessToken)
				assert.Equal(t, pair.RefreshToken, user.RefreshToken)
				require.NotNil(t, user.LastLogin)
				assert.WithinDuration(t, time.Now(), *user.LastLogin, time.Second)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestAuthService_Login_ErrorsAreIndistinguishable(t *testing.T) {
	hash, err := password.GetHash("Secret123")
	require.NoError(t, err)

	repo := new(RepoMock)
	repo.On("GetActiveUserByEmail", mock.Anything, "missing@example.com").
		Return(nil, repository.ErrUserNotFound).Once()
	repo.On("GetActiveUserByEmail", mock.Anything, "alice@example.com").
		Return(&models.User{UID: "uid-1", Email: "alice@example.com", PasswordHash: hash, IsActive: true}, nil).Once()

	service := NewAuthService(repo, newTestMaker())

	_, _, errUnknown := service.Login(context.Background(), "missing@example.com", "Secret123")
	_, _, errWrongPass := service.Login(context.Background(), "alice@example.com", "WrongPass1")

	// обе ошибки неотличимы для клиента
	assert.Equal(t, errUnknown, errWrongPass)
}

func TestAuthService_Refresh(t *testing.T) {
	maker := newTestMaker()

	_, storedRefresh, err := maker.GeneratePair("uid-1", "alice@example.com", models.RoleIntern)
	require.NoError(t, err)

	user := &models.User{
		UID:          "uid-1",
		Email:        "alice@example.com",
		Role:         models.RoleIntern,
		IsActive:     true,
		RefreshToken: storedRefresh,
	}

	repo := new(RepoMock)
	repo.On("GetUserByUID", mock.Anything, "uid-1").Return(user, nil).Once()
	var rotated string
	repo.On("UpdateRefreshToken", mock.Anything, "uid-1", mock.MatchedBy(func(token string) bool {
		rotated = token
		return token != storedRefresh
	})).Return(nil).Once()

	service := NewAuthService(repo, maker)

	pair, err := service.Refresh(context.Background(), storedRefresh)
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.Equal(t, rotated, pair.RefreshToken)

	// после ротации старый токен больше не совпадает с сохранённым
	user.RefreshToken = pair.RefreshToken
	repo.On("GetUserByUID", mock.Anything, "uid-1").Return(user, nil).Once()

	_, err = service.Refresh(context.Background(), storedRefresh)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)

	repo.AssertExpectations(t)
}

func TestAuthService_Refresh_InvalidTokens(t *testing.T) {
	maker := newTestMaker()
	_, foreignRefresh, err := jwt.NewJWTMaker("other_access", "other_refresh", time.Minute, time.Hour).
		GeneratePair("uid-1", "alice@example.com", models.RoleIntern)
	require.NoError(t, err)

	tests := []struct {
		name       string
		token      string
		setupMocks func(r *RepoMock)
	}{
		{
			name:       "garbage token",
			token:      "not.a.token",
			setupMocks: func(_ *RepoMock) {},
		},
		{
			name:       "wrong signature",
			token:      foreignRefresh,
			setupMocks: func(_ *RepoMock) {},
		},
		{
			name: "inactive user",
			setupMocks: func(r *RepoMock) {
				r.On("GetUserByUID", mock.Anything, "uid-1").
					Return(&models.User{UID: "uid-1", IsActive: false}, nil).Once()
			},
		},
		{
			name: "user deleted",
			setupMocks: func(r *RepoMock) {
				r.On("GetUserByUID", mock.Anything, "uid-1").
					Return(nil, repository.ErrUserNotFound).Once()
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			tt.setupMocks(repo)
			service := NewAuthService(repo, maker)

			token := tt.token
			if token == "" {
				_, token, err = maker.GeneratePair("uid-1", "alice@example.com", models.RoleIntern)
				require.NoError(t, err)
			}

			_, err := service.Refresh(context.Background(), token)
			assert.ErrorIs(t, err, ErrInvalidRefreshToken)
			repo.AssertExpectations(t)
		})
	}
}

func TestAuthService_Authenticate(t *testing.T) {
	maker := newTestMaker()
	access, _, err := maker.GeneratePair("uid-1", "alice@example.com", models.RoleIntern)
	require.NoError(t, err)

	expiredMaker := jwt.NewJWTMaker("test_access_secret", "test_refresh_secret", -time.Hour, time.Hour)
	expiredAccess, _, err := expiredMaker.GeneratePair("uid-1", "alice@example.com", models.RoleIntern)
	require.NoError(t, err)

	tests := []struct {
		name       string
		token      string
		setupMocks func(r *RepoMock)
		wantErr    error
	}{
		{
			name:  "success",
			token: access,
			setupMocks: func(r *RepoMock) {
				r.On("GetUserByUID", mock.Anything, "uid-1").
					Return(&models.User{UID: "uid-1", Email: "alice@example.com", IsActive: true}, nil).Once()
			},
		},
		{
			name:       "expired token",
			token:      expiredAccess,
			setupMocks: func(_ *RepoMock) {},
			wantErr:    ErrTokenExpired,
		},
		{
			name:       "tampered token",
			token:      access + "tampered",
			setupMocks: func(_ *RepoMock) {},
			wantErr:    ErrInvalidToken,
		},
		{
			name:  "inactive user",
			token: access,
			setupMocks: func(r *RepoMock) {
				r.On("GetUserByUID", mock.Anything, "uid-1").
					Return(&models.User{UID: "uid-1", IsActive: false}, nil).Once()
			},
			wantErr: ErrUserNotFound,
		},
		{
			name:  "user deleted",
			token: access,
			setupMocks: func(r *RepoMock) {
				r.On("GetUserByUID", mock.Anything, "uid-1").
					Return(nil, repository.ErrUserNotFound).Once()
			},
			wantErr: ErrUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			tt.setupMocks(repo)
			service := NewAuthService(repo, maker)

			user, err := service.Authenticate(context.Background(), tt.token)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, user)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "uid-1", user.UID)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestAuthService_Logout(t *testing.T) {
	repo := new(RepoMock)
	repo.On("ClearRefreshToken", mock.Anything, "uid-1").Return(nil).Twice()

	service := NewAuthService(repo, newTestMaker())

	// идемпотентность: повторный выход не ошибка
	assert.NoError(t, service.Logout(context.Background(), "uid-1"))
	assert.NoError(t, service.Logout(context.Background(), "uid-1"))

	repo.AssertExpectations(t)
}
