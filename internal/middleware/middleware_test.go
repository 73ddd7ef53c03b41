package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crypto_wallet/internal/db/dbtest"
	"crypto_wallet/internal/domain"
	"crypto_wallet/internal/store"
	"crypto_wallet/internal/utils"
)

const secret = "mw-secret"

func init() { gin.SetMode(gin.TestMode) }

func serve(r *gin.Engine, token string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequestIDMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(CtxRequestID)) })

	w := serve(r, "", nil)
	generated := w.Header().Get(HeaderRequestID)
	_, err := uuid.Parse(generated)
	require.NoError(t, err)
	assert.Equal(t, generated, w.Body.String())

	w = serve(r, "", map[string]string{HeaderRequestID: "edge-42"})
	assert.Equal(t, "edge-42", w.Header().Get(HeaderRequestID))
	assert.Equal(t, "edge-42", w.Body.String())
}

func TestJWTAuthMiddleware(t *testing.T) {
	userID := uuid.New()
	token := func(purpose, key string, ttl time.Duration) string {
		tok, err := utils.GenerateJWT(userID, "a@x.com", purpose, key, ttl)
		require.NoError(t, err)
		return tok
	}

	r := gin.New()
	r.GET("/", JWTAuthMiddleware(secret), func(c *gin.Context) {
		id, ok := UserID(c)
		require.True(t, ok)
		c.String(http.StatusOK, id.String())
	})

	tests := []struct {
		name  string
		token string
		code  int
	}{
		{"session", token(utils.PurposeSession, secret, time.Hour), http.StatusOK},
		{"missing", "", http.StatusUnauthorized},
		{"verify purpose", token(utils.PurposeVerify, secret, time.Hour), http.StatusUnauthorized},
		{"wrong key", token(utils.PurposeSession, "other", time.Hour), http.StatusUnauthorized},
		{"expired", token(utils.PurposeSession, secret, -time.Minute), http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(r, tt.token, nil)
			assert.Equal(t, tt.code, w.Code)
			if tt.code == http.StatusOK {
				assert.Equal(t, userID.String(), w.Body.String())
			}
		})
	}
}

func TestAdminOnlyMiddleware(t *testing.T) {
	st := store.New(dbtest.New(t))
	ctx := context.Background()
	admin := &domain.User{Name: "Root", Email: "root@x.com", PasswordHash: "x", Role: domain.RoleAdmin}
	user := &domain.User{Name: "Joe", Email: "joe@x.com", PasswordHash: "x", Role: domain.RoleUser}
	require.NoError(t, st.CreateUser(ctx, admin))
	require.NoError(t, st.CreateUser(ctx, user))

	r := gin.New()
	r.GET("/", JWTAuthMiddleware(secret), AdminOnlyMiddleware(st), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	tests := []struct {
		name string
		id   uuid.UUID
		code int
	}{
		{"admin", admin.ID, http.StatusNoContent},
		{"user", user.ID, http.StatusForbidden},
		{"deleted", uuid.New(), http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok, err := utils.GenerateJWT(tt.id, "", utils.PurposeSession, secret, time.Hour)
			require.NoError(t, err)
			assert.Equal(t, tt.code, serve(r, tok, nil).Code)
		})
	}
}
