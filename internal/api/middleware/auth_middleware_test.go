package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/therone18/SmartParking/internal/service"
)

const testSecret = "test-secret"

func signTestToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func validClaims(role string) jwt.MapClaims {
	now := time.Now()
	return jwt.MapClaims{
		"sub":      "7",
		"exp":      now.Add(time.Hour).Unix(),
		"iat":      now.Unix(),
		"role":     role,
		"username": "nguyenvana",
	}
}

// Authenticate chỉ dùng ValidateToken nên không cần repository thật.
func newTestRouter(extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	authService := service.NewAuthService(nil, testSecret, time.Hour)
	mw := NewAuthMiddleware(authService)

	r := gin.New()
	handlers := []gin.HandlerFunc{mw.Authenticate()}
	handlers = append(handlers, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "không đọc được user từ context"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"user_id": user.ID, "role": user.Role, "username": user.Username})
	})
	r.GET("/protected", handlers...)
	return r
}

func doRequest(r *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set(AuthorizationHeaderKey, authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthenticate(t *testing.T) {
	r := newTestRouter()

	t.Run("token hợp lệ", func(t *testing.T) {
		token := signTestToken(t, testSecret, validClaims("user"))
		w := doRequest(r, "Bearer "+token)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"user_id":7`)
		assert.Contains(t, w.Body.String(), `"username":"nguyenvana"`)
	})

	t.Run("thiếu header", func(t *testing.T) {
		w := doRequest(r, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("sai định dạng header", func(t *testing.T) {
		w := doRequest(r, "chi-co-mot-truong")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("token hết hạn", func(t *testing.T) {
		claims := validClaims("user")
		claims["exp"] = time.Now().Add(-time.Hour).Unix()
		token := signTestToken(t, testSecret, claims)
		w := doRequest(r, "Bearer "+token)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("sai secret", func(t *testing.T) {
		token := signTestToken(t, "other-secret", validClaims("user"))
		w := doRequest(r, "Bearer "+token)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("sub không phải số", func(t *testing.T) {
		claims := validClaims("user")
		claims["sub"] = "abc"
		token := signTestToken(t, testSecret, claims)
		w := doRequest(r, "Bearer "+token)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestAuthorizeRole(t *testing.T) {
	gin.SetMode(gin.TestMode)
	authService := service.NewAuthService(nil, testSecret, time.Hour)
	mw := NewAuthMiddleware(authService)
	r := newTestRouter(mw.AuthorizeRole("admin"))

	t.Run("admin được vào", func(t *testing.T) {
		token := signTestToken(t, testSecret, validClaims("admin"))
		w := doRequest(r, "Bearer "+token)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("user thường bị chặn", func(t *testing.T) {
		token := signTestToken(t, testSecret, validClaims("user"))
		w := doRequest(r, "Bearer "+token)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}
