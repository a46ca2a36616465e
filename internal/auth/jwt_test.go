package auth

import "testing"

func TestGenerateAndValidateToken(t *testing.T) {
	secret := []byte("test-secret")

	token, err := GenerateJWT(42, secret)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}

	userID, err := ValidateToken(token, secret)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if userID != 42 {
		t.Fatalf("expected user ID 42, got %d", userID)
	}
}

func TestGenerateJWTRejectsZeroUserID(t *testing.T) {
	if _, err := GenerateJWT(0, []byte("secret")); err == nil {
		t.Fatal("expected error for zero user ID")
	}
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	token, err := GenerateJWT(42, []byte("right-secret"))
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}

	if _, err := ValidateToken(token, []byte("wrong-secret")); err == nil {
		t.Fatal("expected error for wrong secret")
	}
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	if _, err := ValidateToken("not.a.token", []byte("secret")); err == nil {
		t.Fatal("expected error for malformed token")
	}
}
