package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/havenstays/booking-backend/internal/common/jwt"
)

func newTestJWTManager() *jwt.Manager {
	return jwt.NewManager(&jwt.Config{
		Secret:           "test-secret",
		AccessExpireTime: time.Hour,
	})
}

func authTestRouter(mw gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/probe", mw, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"is_admin": IsAdmin(c)})
	})
	return r
}

func doAuthRequest(r *gin.Engine, url, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, url, nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuth_RequiresToken(t *testing.T) {
	manager := newTestJWTManager()
	r := authTestRouter(Auth(manager))

	w := doAuthRequest(r, "/probe", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token, _, err := manager.GenerateToken(1, jwt.RoleGuest, "")
	require.NoError(t, err)
	w = doAuthRequest(r, "/probe", "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)

	// A bare token without the Bearer prefix is also accepted.
	w = doAuthRequest(r, "/probe", token)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doAuthRequest(r, "/probe", "Bearer garbage")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_QueryParameterIsNotACredential(t *testing.T) {
	manager := newTestJWTManager()

	token, _, err := manager.GenerateToken(1, jwt.RoleAdmin, "")
	require.NoError(t, err)

	// Even a valid token in the query string is ignored; only the
	// Authorization header carries credentials.
	r := authTestRouter(Auth(manager))
	w := doAuthRequest(r, "/probe?token="+token, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// OptionalAuth lets the request through without claims, so an
	// opaque ticket token in the query never trips authentication.
	r = authTestRouter(OptionalAuth(manager))
	w = doAuthRequest(r, "/probe?token=tok-3f9a2b", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"is_admin":false`)
}

func TestOptionalAuth_ParsesHeaderWhenPresent(t *testing.T) {
	manager := newTestJWTManager()
	r := authTestRouter(OptionalAuth(manager))

	token, _, err := manager.GenerateToken(1, jwt.RoleAdmin, "")
	require.NoError(t, err)
	w := doAuthRequest(r, "/probe", "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"is_admin":true`)

	// An invalid header never blocks the request.
	w = doAuthRequest(r, "/probe", "Bearer garbage")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"is_admin":false`)
}

func TestAdminAuth(t *testing.T) {
	manager := newTestJWTManager()
	r := authTestRouter(AdminAuth(manager))

	w := doAuthRequest(r, "/probe", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	guest, _, err := manager.GenerateToken(1, jwt.RoleGuest, "")
	require.NoError(t, err)
	w = doAuthRequest(r, "/probe", "Bearer "+guest)
	assert.Equal(t, http.StatusForbidden, w.Code)

	admin, _, err := manager.GenerateToken(2, jwt.RoleAdmin, "")
	require.NoError(t, err)
	w = doAuthRequest(r, "/probe", "Bearer "+admin)
	assert.Equal(t, http.StatusOK, w.Code)

	// An email claim alone also satisfies the admin rule.
	withEmail, _, err := manager.GenerateToken(3, jwt.RoleGuest, "staff@example.com")
	require.NoError(t, err)
	w = doAuthRequest(r, "/probe", "Bearer "+withEmail)
	assert.Equal(t, http.StatusOK, w.Code)
}
