package config

import (
	"os"
	"strings"
	"testing"
)

func TestNewPasswordConfig_CostParsing(t *testing.T) {
	tests := []struct {
		name     string
		cost     string
		wantCost int
		wantErr  string
	}{
		{name: "default when unset", cost: "", wantCost: 12},
		{name: "minimum cost", cost: "10", wantCost: 10},
		{name: "maximum cost", cost: "14", wantCost: 14},
		{name: "below minimum", cost: "9", wantErr: "bcrypt cost out of range"},
		{name: "above maximum", cost: "15", wantErr: "bcrypt cost out of range"},
		{name: "negative", cost: "-5", wantErr: "bcrypt cost out of range"},
		{name: "non-numeric", cost: "strong", wantErr: "invalid BCRYPT_COST"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.cost == "" {
				os.Unsetenv("BCRYPT_COST")
			} else {
				t.Setenv("BCRYPT_COST", tt.cost)
			}
			t.Setenv("PASSWORD_PEPPER", "")

			cfg, err := NewPasswordConfig()
			if tt.wantErr != "" {
				if err == nil {
					t.Fatalf("expected error containing %q, got nil", tt.wantErr)
				}
				if !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("error %q does not contain %q", err.Error(), tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cfg.BcryptCost != tt.wantCost {
				t.Errorf("BcryptCost = %d, want %d", cfg.BcryptCost, tt.wantCost)
			}
		})
	}
}

func TestNewPasswordConfig_Pepper(t *testing.T) {
	t.Setenv("BCRYPT_COST", "10")
	t.Setenv("PASSWORD_PEPPER", "kumasi-market-secret")

	cfg, err := NewPasswordConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Pepper != "kumasi-market-secret" {
		t.Errorf("Pepper = %q, want %q", cfg.Pepper, "kumasi-market-secret")
	}
}

func TestHashPassword_RoundTrip(t *testing.T) {
	cfg := &PasswordConfig{BcryptCost: 10}

	hash, err := cfg.HashPassword("akosombo#2024")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if hash == "akosombo#2024" {
		t.Error("hash must not equal the plaintext password")
	}
	if !cfg.VerifyPassword("akosombo#2024", hash) {
		t.Error("VerifyPassword rejected the correct password")
	}
	if cfg.VerifyPassword("akosombo#2025", hash) {
		t.Error("VerifyPassword accepted a wrong password")
	}
}

func TestHashPassword_UniqueSalts(t *testing.T) {
	cfg := &PasswordConfig{BcryptCost: 10}

	first, err := cfg.HashPassword("same-password")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	second, err := cfg.HashPassword("same-password")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if first == second {
		t.Error("two hashes of the same password should differ by salt")
	}
}

func TestVerifyPassword_PepperMismatch(t *testing.T) {
	withPepper := &PasswordConfig{BcryptCost: 10, Pepper: "pepper-a"}
	hash, err := withPepper.HashPassword("farmgate")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}

	if !withPepper.VerifyPassword("farmgate", hash) {
		t.Error("same pepper should verify")
	}

	otherPepper := &PasswordConfig{BcryptCost: 10, Pepper: "pepper-b"}
	if otherPepper.VerifyPassword("farmgate", hash) {
		t.Error("a different pepper must not verify")
	}

	noPepper := &PasswordConfig{BcryptCost: 10}
	if noPepper.VerifyPassword("farmgate", hash) {
		t.Error("verification without the pepper must fail")
	}
}

func TestVerifyPassword_MalformedHash(t *testing.T) {
	cfg := &PasswordConfig{BcryptCost: 10}
	if cfg.VerifyPassword("anything", "not-a-bcrypt-hash") {
		t.Error("malformed stored hash should never verify")
	}
}

func TestHashPassword_EmptyAndUnicode(t *testing.T) {
	cfg := &PasswordConfig{BcryptCost: 10}

	for _, pw := range []string{"", "àkàrà-ọjà", "密码1234"} {
		hash, err := cfg.HashPassword(pw)
		if err != nil {
			t.Fatalf("HashPassword(%q) failed: %v", pw, err)
		}
		if !cfg.VerifyPassword(pw, hash) {
			t.Errorf("round trip failed for %q", pw)
		}
	}
}
