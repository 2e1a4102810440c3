package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"inmobiliaria/server/internal/database"
	"inmobiliaria/server/internal/models"
)

const testSecret = "test-secret-value"

type MockAdminStore struct {
	mock.Mock
}

func (m *MockAdminStore) GetAdminByEmail(ctx context.Context, email string) (*models.Admin, error) {
	args := m.Called(email)
	admin, _ := args.Get(0).(*models.Admin)
	return admin, args.Error(1)
}

func (m *MockAdminStore) CreateAdmin(ctx context.Context, email, passwordHash string) (*models.Admin, error) {
	args := m.Called(email, passwordHash)
	admin, _ := args.Get(0).(*models.Admin)
	return admin, args.Error(1)
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("secreto123")
	require.NoError(t, err)
	assert.NotEqual(t, "secreto123", hash)
	assert.True(t, CheckPasswordHash("secreto123", hash))
	assert.False(t, CheckPasswordHash("otra-clave", hash))
	assert.False(t, CheckPasswordHash("secreto123", "not-a-hash"))
}

func TestTokens_IssueAndParse(t *testing.T) {
	tokens := NewTokens(testSecret, time.Hour)
	admin := &models.Admin{ID: "admin-1", Email: "admin@example.com"}

	signed, expiresAt, err := tokens.Issue(admin)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := tokens.Parse(signed)
	require.NoError(t, err)
	assert.Equal(t, "admin-1", claims.Subject)
	assert.Equal(t, "admin@example.com", claims.Email)
	assert.Equal(t, RoleAdmin, claims.Role)
	assert.Equal(t, TokenIssuer, claims.Issuer)
}

func TestTokens_ParseRejects(t *testing.T) {
	tokens := NewTokens(testSecret, time.Hour)
	admin := &models.Admin{ID: "admin-1", Email: "admin@example.com"}

	signed, _, err := tokens.Issue(admin)
	require.NoError(t, err)

	expired := NewTokens(testSecret, time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expiredToken, _, err := expired.Issue(admin)
	require.NoError(t, err)

	otherSecret, _, err := NewTokens("another-secret", time.Hour).Issue(admin)
	require.NoError(t, err)

	foreign, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role: RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "admin-1",
			Issuer:    "someone-else",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not.a.token"},
		{"empty", ""},
		{"tampered", signed + "x"},
		{"expired", expiredToken},
		{"wrong secret", otherSecret},
		{"wrong issuer", foreign},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tokens.Parse(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestService_Login(t *testing.T) {
	ctx := context.Background()
	hash, err := HashPassword("secreto123")
	require.NoError(t, err)

	store := &MockAdminStore{}
	admin := &models.Admin{ID: "admin-1", Email: "admin@example.com", PasswordHash: hash}
	store.On("GetAdminByEmail", "admin@example.com").Return(admin, nil)
	store.On("GetAdminByEmail", "nobody@example.com").Return(nil, database.ErrNotFound)
	store.On("GetAdminByEmail", "broken@example.com").Return(nil, errors.New("disk I/O error"))

	service := NewService(store, NewTokens(testSecret, time.Hour), nil)

	resp, err := service.Login(ctx, "admin@example.com", "secreto123")
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, admin, resp.Admin)

	claims, err := service.Tokens().Parse(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "admin-1", claims.Subject)

	_, err = service.Login(ctx, "admin@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = service.Login(ctx, "nobody@example.com", "secreto123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = service.Login(ctx, "broken@example.com", "secreto123")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}

func TestService_SeedAdmin(t *testing.T) {
	ctx := context.Background()

	t.Run("creates missing account", func(t *testing.T) {
		store := &MockAdminStore{}
		store.On("GetAdminByEmail", "admin@example.com").Return(nil, database.ErrNotFound)
		store.On("CreateAdmin", "admin@example.com", mock.MatchedBy(func(hash string) bool {
			return CheckPasswordHash("secreto123", hash)
		})).Return(&models.Admin{ID: "admin-1", Email: "admin@example.com"}, nil)

		created, err := NewService(store, NewTokens(testSecret, time.Hour), nil).SeedAdmin(ctx, "admin@example.com", "secreto123")
		require.NoError(t, err)
		assert.True(t, created)
		store.AssertExpectations(t)
	})

	t.Run("keeps existing account", func(t *testing.T) {
		store := &MockAdminStore{}
		store.On("GetAdminByEmail", "admin@example.com").Return(&models.Admin{ID: "admin-1"}, nil)

		created, err := NewService(store, NewTokens(testSecret, time.Hour), nil).SeedAdmin(ctx, "admin@example.com", "secreto123")
		require.NoError(t, err)
		assert.False(t, created)
		store.AssertNotCalled(t, "CreateAdmin", mock.Anything, mock.Anything)
	})

	t.Run("skips when not configured", func(t *testing.T) {
		store := &MockAdminStore{}
		created, err := NewService(store, NewTokens(testSecret, time.Hour), nil).SeedAdmin(ctx, "", "")
		require.NoError(t, err)
		assert.False(t, created)
		store.AssertNotCalled(t, "GetAdminByEmail", mock.Anything)
	})

	t.Run("rejects short password", func(t *testing.T) {
		store := &MockAdminStore{}
		_, err := NewService(store, NewTokens(testSecret, time.Hour), nil).SeedAdmin(ctx, "admin@example.com", "123")
		assert.Error(t, err)
	})
}

func TestRequireAdmin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tokens := NewTokens(testSecret, time.Hour)

	router := gin.New()
	router.GET("/admin", RequireAdmin(tokens), func(c *gin.Context) {
		claims, ok := ClaimsFrom(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"email": claims.Email})
	})

	valid, _, err := tokens.Issue(&models.Admin{ID: "admin-1", Email: "admin@example.com"})
	require.NoError(t, err)

	viewer, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Email: "viewer@example.com",
		Role:  "viewer",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "viewer-1",
			Issuer:    TokenIssuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"valid admin", "Bearer " + valid, http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + valid, http.StatusUnauthorized},
		{"invalid token", "Bearer nope", http.StatusUnauthorized},
		{"wrong role", "Bearer " + viewer, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				assert.Contains(t, w.Body.String(), "admin@example.com")
			}
		})
	}
}
