package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/school-records/internal/auth"
	"github.com/iliyamo/school-records/internal/model"
)

const testSecret = "test-jwt-secret"

// gate builds an echo instance with the full authorization gate in front of
// a handler that records whether it ran.
func gate(t *testing.T, roles ...model.Role) (*echo.Echo, *int) {
	t.Helper()
	calls := 0
	e := echo.New()
	h := func(c echo.Context) error {
		calls++
		return c.JSON(http.StatusOK, echo.Map{"status": "success"})
	}
	e.GET("/gated", h, JWTAuth(testSecret), RequireRole(roles...))
	return e, &calls
}

func issue(t *testing.T, role model.Role, ttl time.Duration) string {
	t.Helper()
	token, _, err := auth.IssueToken(testSecret, auth.Identity{ID: 9, Name: "t", Role: role}, ttl)
	require.NoError(t, err)
	return token
}

func TestJWTAuth_MissingHeader(t *testing.T) {
	t.Parallel()

	e, calls := gate(t, model.RoleAdmin)
	req := httptest.NewRequest(http.MethodGet, "/gated", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Zero(t, *calls, "handler must not run without a token")
}

func TestJWTAuth_BadToken(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"garbage", issue(t, model.RoleAdmin, -time.Minute)} {
		e, calls := gate(t, model.RoleAdmin)
		req := httptest.NewRequest(http.MethodGet, "/gated", nil)
		req.Header.Set("Authorization", "Bearer "+raw)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Zero(t, *calls)
	}
}

func TestRequireRole_OutsideAllowList(t *testing.T) {
	t.Parallel()

	e, calls := gate(t, model.RoleAdmin)
	req := httptest.NewRequest(http.MethodGet, "/gated", nil)
	req.Header.Set("Authorization", "Bearer "+issue(t, model.RoleTeacher, time.Hour))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Zero(t, *calls, "handler must not run for a disallowed role")
}

func TestRequireRole_Allowed(t *testing.T) {
	t.Parallel()

	e, calls := gate(t, model.RoleAdmin)
	req := httptest.NewRequest(http.MethodGet, "/gated", nil)
	req.Header.Set("Authorization", "Bearer "+issue(t, model.RoleAdmin, time.Hour))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, *calls)
}

func TestRequireRole_EmptyListAdmitsAnyAuthenticated(t *testing.T) {
	t.Parallel()

	e, calls := gate(t)
	req := httptest.NewRequest(http.MethodGet, "/gated", nil)
	req.Header.Set("Authorization", "Bearer "+issue(t, model.RoleParent, time.Hour))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, *calls)
}

func TestOptionalJWT(t *testing.T) {
	t.Parallel()

	var seen *auth.Identity
	e := echo.New()
	e.GET("/open", func(c echo.Context) error {
		if id, ok := CallerIdentity(c); ok {
			seen = &id
		}
		return c.NoContent(http.StatusOK)
	}, OptionalJWT(testSecret))

	// Without a token the request still passes and no identity is set.
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/open", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, seen)

	// With a token the identity becomes visible to the handler.
	req := httptest.NewRequest(http.MethodGet, "/open", nil)
	req.Header.Set("Authorization", "Bearer "+issue(t, model.RoleTeacher, time.Hour))
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, seen)
	assert.Equal(t, model.RoleTeacher, seen.Role)
}
