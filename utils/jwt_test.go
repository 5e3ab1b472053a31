package utils

import (
	"testing"
	"time"

	"ctflab/models"
)

func TestTokenIssuer_RoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)
	user := models.User{ID: 7, Username: "neo", Email: "neo@example.com", Role: models.RoleAdmin}

	token, sessionID, err := issuer.GenerateToken(user)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	claims, err := issuer.ParseToken(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != 7 || claims.Email != "neo@example.com" || claims.Role != models.RoleAdmin {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.ID != sessionID || sessionID == "" {
		t.Fatalf("session id mismatch: %q vs %q", claims.ID, sessionID)
	}
}

func TestTokenIssuer_RejectsWrongSecretAndExpired(t *testing.T) {
	token, _, err := NewTokenIssuer("a", time.Hour).GenerateToken(models.User{ID: 1})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := NewTokenIssuer("b", time.Hour).ParseToken(token); err == nil {
		t.Fatalf("expected signature error")
	}

	expired, _, err := NewTokenIssuer("a", -time.Minute).GenerateToken(models.User{ID: 1})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := NewTokenIssuer("a", time.Hour).ParseToken(expired); err == nil {
		t.Fatalf("expected expiry error")
	}
}
