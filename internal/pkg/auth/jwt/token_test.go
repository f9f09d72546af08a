package jwt

import (
	"testing"
	"time"
)

const testSecret = "test_secret_key"

func TestGenerateAndParseToken(t *testing.T) {
	payload := &Payload{
		Sub:       "6b1f9f0e-3f7a-4a11-9f1e-2c3d4e5f6a7b",
		Username:  "neo",
		PublicKey: "base64pubkey",
		Role:      "user",
	}

	tokenString, err := GenerateToken(payload, testSecret, SessionExpiration)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	parsed, err := ParseToken(tokenString, testSecret)
	if err != nil {
		t.Fatalf("ParseToken failed: %v", err)
	}

	if parsed.Sub != payload.Sub {
		t.Errorf("Sub = %q, want %q", parsed.Sub, payload.Sub)
	}
	if parsed.Username != payload.Username {
		t.Errorf("Username = %q, want %q", parsed.Username, payload.Username)
	}
	if parsed.PublicKey != payload.PublicKey {
		t.Errorf("PublicKey = %q, want %q", parsed.PublicKey, payload.PublicKey)
	}
	if parsed.Role != payload.Role {
		t.Errorf("Role = %q, want %q", parsed.Role, payload.Role)
	}
	if parsed.Issuer != TokenIssuer {
		t.Errorf("Issuer = %q, want %q", parsed.Issuer, TokenIssuer)
	}
}

func TestParseTokenWrongSecret(t *testing.T) {
	tokenString, err := GenerateToken(&Payload{Sub: "x", Username: "y"}, testSecret, time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	if _, err := ParseToken(tokenString, "a_different_secret"); err == nil {
		t.Fatalf("expected verification failure with the wrong secret")
	}
}

func TestParseTokenExpired(t *testing.T) {
	tokenString, err := GenerateToken(&Payload{Sub: "x", Username: "y"}, testSecret, -time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	if _, err := ParseToken(tokenString, testSecret); err == nil {
		t.Fatalf("expected expired token to be rejected")
	}
}

func TestParseTokenGarbage(t *testing.T) {
	if _, err := ParseToken("not.a.token", testSecret); err == nil {
		t.Fatalf("expected malformed token to be rejected")
	}
}
