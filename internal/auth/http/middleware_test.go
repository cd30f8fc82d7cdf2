package http

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authDomain "github.com/allisson/expenses/internal/auth/domain"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type stubClientUseCase struct {
	authenticateFn func(ctx context.Context, apiKey string) (*authDomain.Client, error)
}

func (s *stubClientUseCase) CreateClient(
	ctx context.Context,
	input *authDomain.CreateClientInput,
) (*authDomain.CreateClientOutput, error) {
	return nil, nil
}

func (s *stubClientUseCase) Authenticate(ctx context.Context, apiKey string) (*authDomain.Client, error) {
	return s.authenticateFn(ctx, apiKey)
}

func (s *stubClientUseCase) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	return nil
}

func activeTestClient() *authDomain.Client {
	return &authDomain.Client{
		ID:        uuid.Must(uuid.NewV7()),
		Name:      "test-client",
		OwnerID:   "u1",
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}
}

func newAuthTestRouter(useCase *stubClientUseCase) *gin.Engine {
	router := gin.New()
	router.Use(AuthenticationMiddleware(useCase, testLogger()))
	router.GET("/protected", func(c *gin.Context) {
		client, _ := GetClient(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"owner_id": client.OwnerID})
	})

	return router
}

func TestAuthenticationMiddleware(t *testing.T) {
	client := activeTestClient()

	t.Run("Success", func(t *testing.T) {
		var gotAPIKey string
		useCase := &stubClientUseCase{
			authenticateFn: func(ctx context.Context, apiKey string) (*authDomain.Client, error) {
				gotAPIKey = apiKey
				return client, nil
			},
		}

		router := gin.New()
		router.Use(AuthenticationMiddleware(useCase, testLogger()))
		router.GET("/protected", func(c *gin.Context) {
			contextClient, ok := GetClient(c.Request.Context())
			require.True(t, ok)
			assert.Equal(t, client.ID, contextClient.ID)
			c.Status(http.StatusOK)
		})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+client.ID.String()+".secret")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, client.ID.String()+".secret", gotAPIKey)
	})

	t.Run("CaseInsensitiveBearerPrefix", func(t *testing.T) {
		useCase := &stubClientUseCase{
			authenticateFn: func(ctx context.Context, apiKey string) (*authDomain.Client, error) {
				return client, nil
			},
		}
		router := newAuthTestRouter(useCase)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "bearer "+client.ID.String()+".secret")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("MissingHeader", func(t *testing.T) {
		useCase := &stubClientUseCase{}
		router := newAuthTestRouter(useCase)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("NonBearerScheme", func(t *testing.T) {
		useCase := &stubClientUseCase{}
		router := newAuthTestRouter(useCase)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("EmptyKey", func(t *testing.T) {
		useCase := &stubClientUseCase{}
		router := newAuthTestRouter(useCase)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer ")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("InvalidCredentials", func(t *testing.T) {
		useCase := &stubClientUseCase{
			authenticateFn: func(ctx context.Context, apiKey string) (*authDomain.Client, error) {
				return nil, authDomain.ErrInvalidCredentials
			},
		}
		router := newAuthTestRouter(useCase)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer wrong.key")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("InactiveClient", func(t *testing.T) {
		useCase := &stubClientUseCase{
			authenticateFn: func(ctx context.Context, apiKey string) (*authDomain.Client, error) {
				return nil, authDomain.ErrClientInactive
			},
		}
		router := newAuthTestRouter(useCase)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+client.ID.String()+".secret")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestGetClient(t *testing.T) {
	t.Run("Present", func(t *testing.T) {
		client := activeTestClient()
		ctx := WithClient(context.Background(), client)

		got, ok := GetClient(ctx)
		require.True(t, ok)
		assert.Equal(t, client, got)
	})

	t.Run("Absent", func(t *testing.T) {
		got, ok := GetClient(context.Background())
		assert.False(t, ok)
		assert.Nil(t, got)
	})
}
