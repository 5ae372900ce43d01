// auth/auth.go
package auth

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// ErrInvalidToken is returned for tokens that fail signature or claim checks.
var ErrInvalidToken = errors.New("invalid token")

// Authenticator issues and verifies the session tokens that gate the
// websocket endpoint. Verification happens exactly once, before the
// connection handshake.
type Authenticator struct {
	secret []byte
	ttl    time.Duration
}

func NewAuthenticator(secret string, ttl time.Duration) *Authenticator {
	return &Authenticator{secret: []byte(secret), ttl: ttl}
}

// IssueToken signs a fresh HS256 token carrying an anonymous session id.
func (a *Authenticator) IssueToken() (string, error) {
	claims := jwt.MapClaims{
		"session_id": uuid.New().String(),
		"exp":        jwt.NewNumericDate(time.Now().Add(a.ttl)).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

// VerifyToken checks signature and expiry.
func (a *Authenticator) VerifyToken(tokenString string) error {
	parsed, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method %q", token.Method.Alg())
		}
		return a.secret, nil
	})
	if err != nil || !parsed.Valid {
		return ErrInvalidToken
	}
	return nil
}

// AuthenticateRequest evaluates the boolean gate for a websocket upgrade
// request: the token is taken from the "token" query parameter or cookie.
func (a *Authenticator) AuthenticateRequest(r *http.Request) bool {
	token := r.URL.Query().Get("token")
	if token == "" {
		if cookie, err := r.Cookie("token"); err == nil {
			token = cookie.Value
		}
	}
	if token == "" {
		return false
	}
	return a.VerifyToken(token) == nil
}
