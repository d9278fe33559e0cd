package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

var testKey = []byte("test-signing-key")

func signedToken(t *testing.T, key []byte, username string, expires time.Time) string {
	t.Helper()
	claims := &Claims{
		Username: username,
		UserHash: UserHashFromUsername(username, key),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	return token
}

func runProtected(t *testing.T, token string) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)

	handler := JWT(testKey)(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	if err := handler(ctx); err != nil {
		e.HTTPErrorHandler(err, ctx)
	}
	return rec, ctx
}

func TestJWTAcceptsValidToken(t *testing.T) {
	token := signedToken(t, testKey, "Alice", time.Now().Add(time.Hour))
	rec, ctx := runProtected(t, token)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := ctx.Get("username"); got != "Alice" {
		t.Errorf("username = %v, want Alice", got)
	}
	if got := ctx.Get("user_hash"); got != UserHashFromUsername("Alice", testKey) {
		t.Errorf("user_hash = %v, want deterministic hash", got)
	}
}

func TestJWTRejectsMissingHeader(t *testing.T) {
	rec, _ := runProtected(t, "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestJWTRejectsWrongKey(t *testing.T) {
	token := signedToken(t, []byte("some-other-key"), "Alice", time.Now().Add(time.Hour))
	rec, _ := runProtected(t, token)
	if rec.Code == http.StatusOK {
		t.Error("token signed with the wrong key was accepted")
	}
}

func TestJWTRejectsExpiredToken(t *testing.T) {
	token := signedToken(t, testKey, "Alice", time.Now().Add(-time.Hour))
	rec, _ := runProtected(t, token)
	if rec.Code == http.StatusOK {
		t.Error("expired token was accepted")
	}
}

func TestUserHashNormalizesUsername(t *testing.T) {
	if UserHashFromUsername("Alice", testKey) != UserHashFromUsername("  alice ", testKey) {
		t.Error("hash differs across case/whitespace variants")
	}
	if UserHashFromUsername("alice", testKey) == UserHashFromUsername("bob", testKey) {
		t.Error("different users share a hash")
	}
}
