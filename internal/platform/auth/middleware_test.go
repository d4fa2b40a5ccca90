package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

var testSigningKey = []byte("test-signing-key")

func signTestToken(t *testing.T, claims *Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(testSigningKey)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func runMiddleware(mw echo.MiddlewareFunc, req *http.Request) (echo.Context, error) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	handler := mw(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	return c, handler(c)
}

func TestJWTMiddleware_MissingHeader(t *testing.T) {
	mw := JWTMiddleware(JWTConfig{SigningKey: testSigningKey})
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	_, err := runMiddleware(mw, req)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestJWTMiddleware_MalformedHeader(t *testing.T) {
	mw := JWTMiddleware(JWTConfig{SigningKey: testSigningKey})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Basic abc123")

	_, err := runMiddleware(mw, req)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestJWTMiddleware_InvalidToken(t *testing.T) {
	mw := JWTMiddleware(JWTConfig{SigningKey: testSigningKey})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not.a.token")

	_, err := runMiddleware(mw, req)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestJWTMiddleware_ValidToken(t *testing.T) {
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-42",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		TenantID: "practice_nord",
		Name:     "Dr. Martin",
		Roles:    []string{RoleDentist},
	}
	tokenStr := signTestToken(t, claims)

	mw := JWTMiddleware(JWTConfig{SigningKey: testSigningKey})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tokenStr)

	c, err := runMiddleware(mw, req)
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}

	if got := c.Get("jwt_tenant_id"); got != "practice_nord" {
		t.Errorf("expected tenant practice_nord on echo context, got %v", got)
	}

	ctx := c.Request().Context()
	if uid := UserIDFromContext(ctx); uid != "user-42" {
		t.Errorf("expected user-42, got %s", uid)
	}
	if name := UserNameFromContext(ctx); name != "Dr. Martin" {
		t.Errorf("expected Dr. Martin, got %s", name)
	}
	roles := RolesFromContext(ctx)
	if len(roles) != 1 || roles[0] != RoleDentist {
		t.Errorf("expected [dentist], got %v", roles)
	}
}

func TestJWTMiddleware_ExpiredToken(t *testing.T) {
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-42",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	tokenStr := signTestToken(t, claims)

	mw := JWTMiddleware(JWTConfig{SigningKey: testSigningKey})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tokenStr)

	_, err := runMiddleware(mw, req)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for expired token, got %v", err)
	}
}

func TestDevAuthMiddleware_NoHeader(t *testing.T) {
	mw := DevAuthMiddleware()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	c, err := runMiddleware(mw, req)
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}

	ctx := c.Request().Context()
	if uid := UserIDFromContext(ctx); uid != "dev-user" {
		t.Errorf("expected dev-user, got %s", uid)
	}
	roles := RolesFromContext(ctx)
	if len(roles) != 1 || roles[0] != RoleAdmin {
		t.Errorf("expected [admin], got %v", roles)
	}
}

func TestContextHelpers_Empty(t *testing.T) {
	ctx := context.Background()
	if UserIDFromContext(ctx) != "" {
		t.Error("expected empty user id")
	}
	if UserNameFromContext(ctx) != "" {
		t.Error("expected empty user name")
	}
	if RolesFromContext(ctx) != nil {
		t.Error("expected nil roles")
	}
}
