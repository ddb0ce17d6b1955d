package auth

import (
	"testing"
	"time"
)

func newTestVerifier(t *testing.T) *Verifier {
	t.Helper()
	v, err := NewVerifier("test-secret", "mediaplanner")
	if err != nil {
		t.Fatal(err)
	}
	return v
}

func TestSignVerifyRoundtrip(t *testing.T) {
	v := newTestVerifier(t)
	token, err := v.Sign(Claims{UserID: "u1", Email: "u1@example.com"}, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	claims, err := v.Verify(token)
	if err != nil {
		t.Fatal(err)
	}
	if claims.UserID != "u1" || claims.Email != "u1@example.com" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	v := newTestVerifier(t)
	token, err := v.Sign(Claims{UserID: "u1"}, -2*time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := v.Verify(token); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	v := newTestVerifier(t)
	other, err := NewVerifier("other-secret", "mediaplanner")
	if err != nil {
		t.Fatal(err)
	}
	token, err := other.Sign(Claims{UserID: "u1"}, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := v.Verify(token); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyRejectsWrongIssuer(t *testing.T) {
	v := newTestVerifier(t)
	impostor, err := NewVerifier("test-secret", "someone-else")
	if err != nil {
		t.Fatal(err)
	}
	token, err := impostor.Sign(Claims{UserID: "u1"}, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := v.Verify(token); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyRejectsMissingUserID(t *testing.T) {
	v := newTestVerifier(t)
	token, err := v.Sign(Claims{}, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := v.Verify(token); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyBearer(t *testing.T) {
	v := newTestVerifier(t)
	token, err := v.Sign(Claims{UserID: "u1"}, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := v.VerifyBearer("Bearer " + token); err != nil {
		t.Fatal(err)
	}
	if _, err := v.VerifyBearer(""); err != ErrMissingToken {
		t.Fatalf("expected ErrMissingToken, got %v", err)
	}
	if _, err := v.VerifyBearer(token); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for missing prefix, got %v", err)
	}
}
