package auth

import (
	"testing"
	"time"
)

func testJWTConfig() *JWTConfig {
	return &JWTConfig{
		Secret:   []byte("test-secret-change-me"),
		Issuer:   "test",
		Audience: "test",
		TTL:      time.Hour,
	}
}

func TestTokenRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer(testJWTConfig())

	token, err := issuer.Issue("alice")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	claims, err := issuer.Verify(token)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if claims.Username != "alice" {
		t.Errorf("expected username 'alice', got %q", claims.Username)
	}
}

func TestVerify_RejectsWrongSecret(t *testing.T) {
	issuer := NewTokenIssuer(testJWTConfig())

	token, err := issuer.Issue("alice")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	otherCfg := testJWTConfig()
	otherCfg.Secret = []byte("a-different-secret")
	other := NewTokenIssuer(otherCfg)

	if _, err := other.Verify(token); err == nil {
		t.Fatalf("expected verification failure with wrong secret")
	}
}

func TestVerify_RejectsExpired(t *testing.T) {
	cfg := testJWTConfig()
	cfg.TTL = -time.Minute
	issuer := NewTokenIssuer(cfg)

	token, err := issuer.Issue("alice")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if _, err := issuer.Verify(token); err == nil {
		t.Fatalf("expected verification failure for expired token")
	}
}

func TestVerify_RejectsGarbage(t *testing.T) {
	issuer := NewTokenIssuer(testJWTConfig())

	if _, err := issuer.Verify("not-a-token"); err == nil {
		t.Fatalf("expected verification failure for malformed token")
	}
}

func TestVerify_RejectsWrongIssuerOrAudience(t *testing.T) {
	issuer := NewTokenIssuer(testJWTConfig())

	token, err := issuer.Issue("alice")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	wrongIssuer := testJWTConfig()
	wrongIssuer.Issuer = "someone-else"
	if _, err := NewTokenIssuer(wrongIssuer).Verify(token); err == nil {
		t.Fatalf("expected verification failure for wrong issuer")
	}

	wrongAudience := testJWTConfig()
	wrongAudience.Audience = "someone-else"
	if _, err := NewTokenIssuer(wrongAudience).Verify(token); err == nil {
		t.Fatalf("expected verification failure for wrong audience")
	}
}
