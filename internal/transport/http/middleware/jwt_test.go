package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"vortexkeep/internal/pkg/jwtutil"
)

const testSecret = "middleware-test-secret"

func newProtectedRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/protected", AuthJWT(testSecret), func(c *gin.Context) {
		identity, ok := IdentityFromContext(c)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "identity missing"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"id":       identity.UserID,
			"username": identity.Username,
			"email":    identity.Email,
		})
	})
	return router
}

func doRequest(router *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestAuthJWT_MissingHeader(t *testing.T) {
	t.Parallel()

	rec := doRequest(newProtectedRouter(), "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for missing header, got %d", rec.Code)
	}
}

func TestAuthJWT_WrongScheme(t *testing.T) {
	t.Parallel()

	rec := doRequest(newProtectedRouter(), "Basic dXNlcjpwYXNz")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for non-bearer scheme, got %d", rec.Code)
	}
}

func TestAuthJWT_EmptyBearerToken(t *testing.T) {
	t.Parallel()

	rec := doRequest(newProtectedRouter(), "Bearer ")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for empty bearer token, got %d", rec.Code)
	}
}

func TestAuthJWT_InvalidToken(t *testing.T) {
	t.Parallel()

	rec := doRequest(newProtectedRouter(), "Bearer not.a.jwt")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for invalid token, got %d", rec.Code)
	}
}

func TestAuthJWT_ExpiredToken(t *testing.T) {
	t.Parallel()

	token, err := jwtutil.GenerateToken(testSecret, -1*time.Minute, 1, "alice", "a@x.com")
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	rec := doRequest(newProtectedRouter(), "Bearer "+token)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for expired token, got %d", rec.Code)
	}
}

func TestAuthJWT_WrongSecret(t *testing.T) {
	t.Parallel()

	token, err := jwtutil.GenerateToken("some-other-secret", time.Hour, 1, "alice", "a@x.com")
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	rec := doRequest(newProtectedRouter(), "Bearer "+token)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for token signed with another key, got %d", rec.Code)
	}
}

func TestAuthJWT_ValidTokenBindsIdentity(t *testing.T) {
	t.Parallel()

	token, err := jwtutil.GenerateToken(testSecret, time.Hour, 42, "alice", "a@x.com")
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	rec := doRequest(newProtectedRouter(), "Bearer "+token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for valid token, got %d: %s", rec.Code, rec.Body.String())
	}

	body := rec.Body.String()
	for _, want := range []string{`"id":42`, `"username":"alice"`, `"email":"a@x.com"`} {
		if !strings.Contains(body, want) {
			t.Fatalf("response %s missing %s", body, want)
		}
	}
}
