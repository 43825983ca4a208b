package auth

import (
	"testing"
	"time"
)

func TestCreateAndParse(t *testing.T) {
	secret := []byte("secret")

	tok, err := CreateAccessToken(secret, "user-1", "student", time.Hour)
	if err != nil {
		t.Fatalf("create token: %v", err)
	}

	claims, err := ParseValidate(secret, tok)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.Sub != "user-1" {
		t.Fatalf("expected sub user-1, got %q", claims.Sub)
	}
	if claims.Role != "student" {
		t.Fatalf("expected role student, got %q", claims.Role)
	}
}

func TestParseValidate_WrongSecret(t *testing.T) {
	tok, err := CreateAccessToken([]byte("secret-a"), "user-1", "student", time.Hour)
	if err != nil {
		t.Fatalf("create token: %v", err)
	}

	if _, err := ParseValidate([]byte("secret-b"), tok); err == nil {
		t.Fatalf("expected error for wrong secret, got nil")
	}
}

func TestParseValidate_Expired(t *testing.T) {
	secret := []byte("secret")

	tok, err := CreateAccessToken(secret, "user-1", "student", -time.Minute)
	if err != nil {
		t.Fatalf("create token: %v", err)
	}

	if _, err := ParseValidate(secret, tok); err == nil {
		t.Fatalf("expected error for expired token, got nil")
	}
}
