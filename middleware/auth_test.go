package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupRouter() *gin.Engine {
	r := gin.New()
	admin := r.Group("/admin", AuthMiddleware(), AdminOnly())
	admin.GET("/whoami", func(c *gin.Context) {
		id, err := GetUserID(c)
		if err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.String(http.StatusOK, id)
	})
	return r
}

func TestAuth_MissingIdentity(t *testing.T) {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/admin/whoami", nil)
	setupRouter().ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_NonAdminForbidden(t *testing.T) {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/admin/whoami", nil)
	req.Header.Set("X-User-ID", "u-1")
	req.Header.Set("X-User-Role", "retailer")
	setupRouter().ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "Admin role required")
}

func TestAuth_AdminFromHeaders(t *testing.T) {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/admin/whoami", nil)
	req.Header.Set("X-User-ID", "admin-7")
	req.Header.Set("X-User-Role", "admin")
	setupRouter().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "admin-7", w.Body.String())
}

func TestAuth_AdminFromCookies(t *testing.T) {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/admin/whoami", nil)
	req.AddCookie(&http.Cookie{Name: "user_id", Value: "admin-8"})
	req.AddCookie(&http.Cookie{Name: "user_role", Value: "admin"})
	setupRouter().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "admin-8", w.Body.String())
}
