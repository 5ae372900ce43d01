// server/server_test.go
package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/wfunc/daifugo/auth"
	"github.com/wfunc/daifugo/logger"
)

func TestMain(m *testing.M) {
	logger.Init()
	m.Run()
}

func TestGetTokenIssuesVerifiableToken(t *testing.T) {
	authn := auth.NewAuthenticator("secret", time.Minute)
	s := NewGameServer(":0", nil, nil, authn, 64)

	rec := httptest.NewRecorder()
	s.handleGetToken(rec, httptest.NewRequest(http.MethodGet, "/get_token", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if err := authn.VerifyToken(body.Token); err != nil {
		t.Errorf("issued token does not verify: %v", err)
	}
}

func TestWebSocketWithoutTokenIsRejected(t *testing.T) {
	authn := auth.NewAuthenticator("secret", time.Minute)
	s := NewGameServer(":0", nil, nil, authn, 64)

	rec := httptest.NewRecorder()
	s.handleWebSocket(rec, httptest.NewRequest(http.MethodGet, "/ws", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}
