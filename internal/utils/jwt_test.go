package utils

import (
	"testing"
	"time"
)

func init() {
	SetJWTSecret("unit-test-secret")
}

func TestGenerateToken(t *testing.T) {
	token, err := GenerateToken(1, "reviewer1", "reviewer", 24)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	if len(token) < 50 {
		t.Errorf("token seems too short: %d chars", len(token))
	}
}

func TestGenerateToken_DistinctPerUser(t *testing.T) {
	t1, _ := GenerateToken(1, "reviewer1", "reviewer", 24)
	t2, _ := GenerateToken(2, "reviewer2", "admin", 24)
	if t1 == t2 {
		t.Error("different users should produce different tokens")
	}
}

func TestParseToken_RoundTrip(t *testing.T) {
	token, _ := GenerateToken(42, "reviewer1", "admin", 24)

	claims, err := ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("UserID = %d, expected 42", claims.UserID)
	}
	if claims.Username != "reviewer1" {
		t.Errorf("Username = %q, expected reviewer1", claims.Username)
	}
	if claims.Role != "admin" {
		t.Errorf("Role = %q, expected admin", claims.Role)
	}
}

func TestParseToken_Invalid(t *testing.T) {
	for _, token := range []string{"", "garbage", "a.b.c"} {
		if _, err := ParseToken(token); err == nil {
			t.Errorf("ParseToken(%q) should return error", token)
		}
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	SetJWTSecret("first-secret")
	token, _ := GenerateToken(1, "reviewer1", "reviewer", 24)

	SetJWTSecret("second-secret")
	_, err := ParseToken(token)

	SetJWTSecret("unit-test-secret")

	if err == nil {
		t.Error("ParseToken should fail after a secret rotation")
	}
}

func TestGenerateToken_Expiration(t *testing.T) {
	token, _ := GenerateToken(1, "reviewer1", "reviewer", 2)
	claims, err := ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}

	expectedExpiry := time.Now().Add(2 * time.Hour)
	diff := claims.ExpiresAt.Time.Sub(expectedExpiry)
	if diff < -time.Minute || diff > time.Minute {
		t.Errorf("expiry off by %v", diff)
	}
}
