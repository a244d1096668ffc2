package jwtutil

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestGenerateAndParse_Success(t *testing.T) {
	t.Parallel()

	secret := "super-secret"

	token, err := GenerateToken(secret, time.Hour, 42, "alice", "a@x.com")
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	claims, err := ParseToken(secret, token)
	if err != nil {
		t.Fatalf("ParseToken error: %v", err)
	}
	if claims.UserID != 42 {
		t.Fatalf("user id mismatch: got %d want 42", claims.UserID)
	}
	if claims.Username != "alice" {
		t.Fatalf("username mismatch: got %q want %q", claims.Username, "alice")
	}
	if claims.Email != "a@x.com" {
		t.Fatalf("email mismatch: got %q want %q", claims.Email, "a@x.com")
	}
}

func TestParseToken_Expired(t *testing.T) {
	t.Parallel()

	secret := "secret"

	token, err := GenerateToken(secret, -1*time.Second, 1, "u1", "u1@x.com")
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	if _, err := ParseToken(secret, token); err == nil {
		t.Fatalf("expected error for expired token, got nil")
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	t.Parallel()

	token, err := GenerateToken("right-secret", time.Hour, 2, "u2", "u2@x.com")
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	if _, err := ParseToken("wrong-secret", token); err == nil {
		t.Fatalf("expected error for invalid signature, got nil")
	}
}

func TestParseToken_MalformedString(t *testing.T) {
	t.Parallel()

	if _, err := ParseToken("k", "not.a.jwt"); err == nil {
		t.Fatalf("expected error for malformed token, got nil")
	}
}

func TestParseToken_RejectsUnsignedAlg(t *testing.T) {
	t.Parallel()

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		UserID:   3,
		Username: "u3",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign with none alg: %v", err)
	}

	if _, err := ParseToken("secret", token); err == nil {
		t.Fatalf("expected error for alg=none token, got nil")
	}
}
