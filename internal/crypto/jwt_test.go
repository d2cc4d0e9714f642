package crypto

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signClaims(t *testing.T, claims Claims, secret string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("SignedString() unexpected error: %v", err)
	}
	return s
}

func TestGenerateToken_Unique(t *testing.T) {
	first, err := GenerateToken("user-1", "test-secret", 0)
	if err != nil {
		t.Fatalf("GenerateToken() unexpected error: %v", err)
	}
	second, err := GenerateToken("user-1", "test-secret", 0)
	if err != nil {
		t.Fatalf("GenerateToken() unexpected error: %v", err)
	}

	if first == "" || second == "" {
		t.Fatal("GenerateToken() returned empty string")
	}
	if first == second {
		t.Error("GenerateToken() issued identical tokens for the same user")
	}
}

func TestValidateTokenValid(t *testing.T) {
	token, err := GenerateToken("user-42", "test-secret", 0)
	if err != nil {
		t.Fatalf("GenerateToken() unexpected error: %v", err)
	}

	claims, err := ValidateToken(token, "test-secret")
	if err != nil {
		t.Fatalf("ValidateToken() unexpected error: %v", err)
	}
	if claims.UserID != "user-42" {
		t.Errorf("ValidateToken() UserID = %q, want %q", claims.UserID, "user-42")
	}
	if claims.ExpiresAt != nil {
		t.Errorf("ValidateToken() ExpiresAt = %v, want nil for zero expiry", claims.ExpiresAt)
	}
}

func TestValidateTokenWithExpiry(t *testing.T) {
	token, err := GenerateToken("user-42", "test-secret", time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken() unexpected error: %v", err)
	}

	claims, err := ValidateToken(token, "test-secret")
	if err != nil {
		t.Fatalf("ValidateToken() unexpected error: %v", err)
	}
	if claims.ExpiresAt == nil {
		t.Fatal("ValidateToken() expected exp claim")
	}
}

func TestValidateTokenExpired(t *testing.T) {
	token, err := GenerateToken("user-42", "test-secret", time.Millisecond)
	if err != nil {
		t.Fatalf("GenerateToken() unexpected error: %v", err)
	}

	time.Sleep(1100 * time.Millisecond)

	if _, err := ValidateToken(token, "test-secret"); err != ErrInvalidToken {
		t.Errorf("ValidateToken() error = %v, want ErrInvalidToken", err)
	}
}

func TestValidateTokenRejected(t *testing.T) {
	secret := "test-secret"
	now := time.Now()

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-valid-token"},
		{
			"wrong issuer",
			signClaims(t, Claims{
				RegisteredClaims: jwt.RegisteredClaims{
					Issuer:   "someone-else",
					Audience: jwt.ClaimStrings{tokenAudience},
					IssuedAt: jwt.NewNumericDate(now),
				},
				UserID: "user-42",
			}, secret),
		},
		{
			"wrong audience",
			signClaims(t, Claims{
				RegisteredClaims: jwt.RegisteredClaims{
					Issuer:   tokenIssuer,
					Audience: jwt.ClaimStrings{"wrong-audience"},
					IssuedAt: jwt.NewNumericDate(now),
				},
				UserID: "user-42",
			}, secret),
		},
		{
			"missing user id",
			signClaims(t, Claims{
				RegisteredClaims: jwt.RegisteredClaims{
					Issuer:   tokenIssuer,
					Audience: jwt.ClaimStrings{tokenAudience},
					IssuedAt: jwt.NewNumericDate(now),
				},
			}, secret),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ValidateToken(tt.token, secret); err != ErrInvalidToken {
				t.Errorf("ValidateToken() error = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestValidateTokenWrongSecret(t *testing.T) {
	token, err := GenerateToken("user-42", "correct-secret", 0)
	if err != nil {
		t.Fatalf("GenerateToken() unexpected error: %v", err)
	}

	if _, err := ValidateToken(token, "wrong-secret"); err != ErrInvalidToken {
		t.Errorf("ValidateToken() error = %v, want ErrInvalidToken", err)
	}
}
