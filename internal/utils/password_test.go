package utils

import "testing"

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("reviewer-secret-1")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if hash == "" || hash == "reviewer-secret-1" {
		t.Error("HashPassword() must return a non-empty hash distinct from the input")
	}
	if len(hash) < 50 {
		t.Errorf("hash seems too short: %d chars", len(hash))
	}
}

func TestHashPassword_Salted(t *testing.T) {
	h1, _ := HashPassword("samepassword")
	h2, _ := HashPassword("samepassword")
	if h1 == h2 {
		t.Error("same password should produce different hashes (due to salt)")
	}
}

func TestCheckPassword(t *testing.T) {
	hash, _ := HashPassword("correct horse")

	tests := []struct {
		name     string
		password string
		expected bool
	}{
		{"correct password", "correct horse", true},
		{"wrong password", "battery staple", false},
		{"empty password", "", false},
		{"case sensitive", "Correct Horse", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CheckPassword(tt.password, hash); got != tt.expected {
				t.Errorf("CheckPassword(%q) = %v, expected %v", tt.password, got, tt.expected)
			}
		})
	}
}

func TestCheckPassword_MalformedHash(t *testing.T) {
	if CheckPassword("password", "not-a-bcrypt-hash") {
		t.Error("CheckPassword should return false for a malformed hash")
	}
	if CheckPassword("password", "") {
		t.Error("CheckPassword should return false for an empty hash")
	}
}
