package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront/catalog-api/internal/apperr"
	"github.com/storefront/catalog-api/internal/auth"
	"github.com/storefront/catalog-api/internal/models"
)

type stubResolver map[string]*models.User

func (s stubResolver) CurrentUser(_ context.Context, token string) (*models.User, error) {
	if u, ok := s[token]; ok {
		return u, nil
	}
	return nil, apperr.Token("Token is invalid or expired", nil)
}

var resolver = stubResolver{
	"staff-token":   {ID: 1, Email: "staff@mail.com", IsActive: true, IsStaff: true},
	"regular-token": {ID: 2, Email: "user@mail.com", IsActive: true},
}

func newTestRouter(guards ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AuthMiddleware(resolver))
	handlers := append(guards, func(c *gin.Context) {
		email := ""
		if u := CurrentUser(c); u != nil {
			email = u.Email
		}
		c.JSON(http.StatusOK, gin.H{"email": email})
	})
	r.Any("/thing", handlers...)
	return r
}

func do(r http.Handler, method, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/thing", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	r := newTestRouter()

	w := do(r, http.MethodGet, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"email": ""}`, w.Body.String())

	w = do(r, http.MethodGet, "staff-token")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"email": "staff@mail.com"}`, w.Body.String())

	w = do(r, http.MethodGet, "bogus")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/thing", nil)
	req.Header.Set("Authorization", "Token staff-token")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestStaffOrReadOnly(t *testing.T) {
	r := newTestRouter(StaffOrReadOnly())

	cases := []struct {
		method string
		token  string
		want   int
	}{
		{http.MethodGet, "", http.StatusOK},
		{http.MethodGet, "regular-token", http.StatusOK},
		{http.MethodPost, "", http.StatusUnauthorized},
		{http.MethodPost, "regular-token", http.StatusForbidden},
		{http.MethodDelete, "regular-token", http.StatusForbidden},
		{http.MethodPut, "staff-token", http.StatusOK},
		{http.MethodDelete, "staff-token", http.StatusOK},
	}
	for _, tc := range cases {
		w := do(r, tc.method, tc.token)
		assert.Equal(t, tc.want, w.Code, "%s as %q", tc.method, tc.token)
	}
}

func TestRequireAuthAndRequire(t *testing.T) {
	r := newTestRouter(RequireAuth(), Require(auth.ActionAdmin))

	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "").Code)
	assert.Equal(t, http.StatusForbidden, do(r, http.MethodGet, "staff-token").Code)
}

func TestRespondError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		err  error
		code int
		body string
	}{
		{apperr.Field("email", "taken"), http.StatusBadRequest, `{"error": "taken", "fields": {"email": "taken"}}`},
		{apperr.Conflict("Product has stock available"), http.StatusConflict, `{"error": "Product has stock available"}`},
		{errors.New("db exploded"), http.StatusInternalServerError, `{"error": "Internal server error"}`},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)

		RespondError(c, tc.err)

		assert.Equal(t, tc.code, w.Code)
		assert.JSONEq(t, tc.body, w.Body.String())
		var decoded map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &decoded))
		assert.True(t, c.IsAborted())
	}
}

func TestCORSPreflight(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORSMiddleware("http://localhost:3000"))
	r.GET("/thing", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/thing", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}
