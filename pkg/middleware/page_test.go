package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"bizdesk/internal/access"
	"bizdesk/internal/data/entity"
	"bizdesk/internal/usecase"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func servePage(h http.Handler, target string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func adminPage(v SessionVerifier) http.Handler {
	gate := PageGate(v, PageAdminGated, access.AdminRoles, []string{adminCookie, userCookie}, zap.NewNop())
	return gate(okHandler())
}

func TestPageGate_NonAdminSessionGoesToUnauthorized(t *testing.T) {
	v := newFakeVerifier().with("tech", entity.RoleTechnician)

	rec := servePage(adminPage(v), "/admin/dashboard", &http.Cookie{Name: userCookie, Value: "tech"})

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/unauthorized", rec.Header().Get("Location"))
}

func TestPageGate_NoCookieGoesToLoginWithRedirect(t *testing.T) {
	v := newFakeVerifier()

	rec := servePage(adminPage(v), "/admin/dashboard?tab=users")

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/user/auth/login?redirect=%2Fadmin%2Fdashboard%3Ftab%3Dusers", rec.Header().Get("Location"))
}

func TestPageGate_ExpiredAndInvalidLookAlike(t *testing.T) {
	v := newFakeVerifier()
	v.expired["old"] = true

	expired := servePage(adminPage(v), "/admin/dashboard", &http.Cookie{Name: adminCookie, Value: "old"})
	invalid := servePage(adminPage(v), "/admin/dashboard", &http.Cookie{Name: adminCookie, Value: "bogus"})

	assert.Equal(t, http.StatusFound, expired.Code)
	assert.Equal(t, expired.Code, invalid.Code)
	assert.Equal(t, expired.Header().Get("Location"), invalid.Header().Get("Location"))
}

func TestPageGate_AdminForwarded(t *testing.T) {
	v := newFakeVerifier().withAdmin("boss", entity.RoleSuperAdmin)

	rec := servePage(adminPage(v), "/admin/dashboard", &http.Cookie{Name: adminCookie, Value: "boss"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "superadmin", rec.Body.String())
}

func TestPageGate_AdminRoleOnRegularSessionGoesToAdminLogin(t *testing.T) {
	v := newFakeVerifier().with("boss", entity.RoleSuperAdmin)

	rec := servePage(adminPage(v), "/admin/dashboard?tab=users", &http.Cookie{Name: userCookie, Value: "boss"})

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/admin/auth/login?redirect=%2Fadmin%2Fdashboard%3Ftab%3Dusers", rec.Header().Get("Location"))
}

func TestPageGate_Authenticated(t *testing.T) {
	v := newFakeVerifier().with("u", entity.RoleUser)
	h := PageGate(v, PageGated, access.AnyAuthenticated, []string{userCookie}, zap.NewNop())(okHandler())

	rec := servePage(h, "/user/dashboard", &http.Cookie{Name: userCookie, Value: "u"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = servePage(h, "/user/dashboard")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/user/auth/login?redirect=%2Fuser%2Fdashboard", rec.Header().Get("Location"))
}

func TestPageGate_AdminAuthLetsVisitorsThrough(t *testing.T) {
	v := newFakeVerifier().with("boss", entity.RoleEcomAdmin).with("u", entity.RoleUser)
	h := PageGate(v, PageAdminAuth, nil, []string{adminCookie, userCookie}, zap.NewNop())(okHandler())

	rec := servePage(h, "/admin/auth/login")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "visitor", rec.Body.String())

	rec = servePage(h, "/admin/auth/login", &http.Cookie{Name: adminCookie, Value: "boss"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ecomadmin", rec.Body.String())

	rec = servePage(h, "/admin/auth/login", &http.Cookie{Name: userCookie, Value: "u"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user", rec.Body.String())

	rec = servePage(h, "/admin/auth/login", &http.Cookie{Name: adminCookie, Value: "stale"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "visitor", rec.Body.String())
}

func TestPageGate_PublicSkipsVerifier(t *testing.T) {
	v := newFakeVerifier()
	h := PageGate(v, PagePublic, nil, []string{userCookie}, zap.NewNop())(okHandler())

	rec := servePage(h, "/unauthorized", &http.Cookie{Name: userCookie, Value: "whatever"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, v.calls)
}

func TestPageGate_StoreUnavailable(t *testing.T) {
	v := newFakeVerifier()
	v.err = errors.Join(usecase.ErrStoreUnavailable, errors.New("timeout"))

	rec := servePage(adminPage(v), "/admin/dashboard", &http.Cookie{Name: adminCookie, Value: "boss"})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestCORS(t *testing.T) {
	h := CORS([]string{"https://app.example.com"})(okHandler())

	req := httptest.NewRequest(http.MethodOptions, "/api/auth/login", nil)
	req.Header.Set("Origin", "https://app.example.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
