package auth

import (
	"errors"
	"net/http"
	"testing"
	"time"
)

func TestIssueAndVerify(t *testing.T) {
	a := NewAuthenticator("secret", time.Minute)
	token, err := a.IssueToken()
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	if err := a.VerifyToken(token); err != nil {
		t.Errorf("VerifyToken: %v", err)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	a := NewAuthenticator("secret", time.Minute)
	b := NewAuthenticator("other", time.Minute)
	token, err := a.IssueToken()
	if err != nil {
		t.Fatal(err)
	}
	if err := b.VerifyToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("err = %v, want ErrInvalidToken", err)
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	a := NewAuthenticator("secret", -time.Minute)
	token, err := a.IssueToken()
	if err != nil {
		t.Fatal(err)
	}
	if err := a.VerifyToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("err = %v, want ErrInvalidToken", err)
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	a := NewAuthenticator("secret", time.Minute)
	if err := a.VerifyToken("not.a.token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("err = %v, want ErrInvalidToken", err)
	}
}

func TestAuthenticateRequest(t *testing.T) {
	a := NewAuthenticator("secret", time.Minute)
	token, err := a.IssueToken()
	if err != nil {
		t.Fatal(err)
	}

	byQuery, _ := http.NewRequest(http.MethodGet, "/ws?token="+token, nil)
	if !a.AuthenticateRequest(byQuery) {
		t.Error("query token rejected")
	}

	byCookie, _ := http.NewRequest(http.MethodGet, "/ws", nil)
	byCookie.AddCookie(&http.Cookie{Name: "token", Value: token})
	if !a.AuthenticateRequest(byCookie) {
		t.Error("cookie token rejected")
	}

	bare, _ := http.NewRequest(http.MethodGet, "/ws", nil)
	if a.AuthenticateRequest(bare) {
		t.Error("request without token accepted")
	}

	bad, _ := http.NewRequest(http.MethodGet, "/ws?token=bogus", nil)
	if a.AuthenticateRequest(bad) {
		t.Error("bogus token accepted")
	}
}
