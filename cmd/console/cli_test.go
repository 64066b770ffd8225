package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/99minutos/orders-console/internal/core/domain"
	"github.com/99minutos/orders-console/pkg/logger"
)

// ---------------------------------------------------------------------------
// Fake upstream
// ---------------------------------------------------------------------------

type fakeAPI struct {
	mu          sync.Mutex
	token       string
	refreshOK   bool
	created     map[string]any
	transitions []string
	mux         *http.ServeMux
}

func newFakeAPI() *fakeAPI {
	f := &fakeAPI{token: "tok-1", refreshOK: true, mux: http.NewServeMux()}
	user := map[string]any{"id": "u-2", "nome": "Bruno", "email": "bruno@example.com", "role": "agent", "ativo": true}

	f.mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["senha"] != "secret" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Credenciais inválidas"})
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "refresh_token", Value: "r-1"})
		writeJSON(w, http.StatusOK, map[string]any{"access_token": f.currentToken(), "user": user})
	})
	f.mux.HandleFunc("POST /auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		ok := f.refreshOK
		f.mu.Unlock()
		if !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "refresh token expired"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"access_token": f.currentToken()})
	})
	f.mux.HandleFunc("POST /auth/logout", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	f.mux.HandleFunc("GET /auth/me", f.authorized(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, user)
	}))
	f.mux.HandleFunc("GET /ordens", f.authorized(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []map[string]any{
			{"id": "o-1", "cliente": "Acme", "descricao": "Trocar disjuntor", "status": "aberta", "criado_por_id": "u-1", "responsavel_id": "u-2"},
			{"id": "o-2", "cliente": "Globex", "descricao": "Revisão", "status": "em_andamento", "criado_por_id": "u-1", "responsavel_id": "u-9"},
		})
	}))
	f.mux.HandleFunc("POST /ordens", f.authorized(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.mu.Lock()
		f.created = body
		f.mu.Unlock()
		body["id"] = "o-3"
		writeJSON(w, http.StatusCreated, body)
	}))
	f.mux.HandleFunc("POST /ordens/{id}/{action}", f.authorized(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.transitions = append(f.transitions, r.PathValue("id")+" "+r.PathValue("action"))
		f.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]string{"message": "ok"})
	}))
	f.mux.HandleFunc("GET /ordens/reports/daily", f.authorized(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"date": "2026-10-19", "totalOrders": 4, "completedOrders": 3, "completionRate": 75})
	}))
	f.mux.HandleFunc("GET /users", f.authorized(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []map[string]any{
			user,
			{"id": "u-1", "nome": "Ana", "email": "ana@example.com", "role": "admin", "ativo": true},
			{"id": "u-9", "nome": "Caio", "email": "caio@example.com", "role": "agent", "ativo": false},
		})
	}))
	return f
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) { f.mux.ServeHTTP(w, r) }

func (f *fakeAPI) currentToken() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token
}

func (f *fakeAPI) authorized(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+f.currentToken() {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "token expired"})
			return
		}
		next(w, r)
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// setup points the CLI at a fresh fake upstream and a temporary token file.
func setup(t *testing.T) (*fakeAPI, string) {
	t.Helper()
	api := newFakeAPI()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	tokenFile := filepath.Join(t.TempDir(), "session.json")
	prev := env
	env = envconfig.MapLookuper(map[string]string{
		"API_URL":    srv.URL,
		"TOKEN_FILE": tokenFile,
	})
	logger.Reset()
	t.Cleanup(func() {
		env = prev
		logger.Reset()
	})
	return api, tokenFile
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func login(t *testing.T) {
	t.Helper()
	out, err := run(t, "", "login", "--email", "bruno@example.com", "--password", "secret")
	require.NoError(t, err)
	require.Contains(t, out, "Signed in as Bruno (agent)")
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestLoginWhoamiLogout(t *testing.T) {
	_, tokenFile := setup(t)

	login(t)
	_, err := os.Stat(tokenFile)
	require.NoError(t, err, "token file should exist after login")

	out, err := run(t, "", "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Bruno <bruno@example.com>")
	assert.Contains(t, out, "role: agent")

	out, err = run(t, "", "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed out")
	_, err = os.Stat(tokenFile)
	assert.True(t, errors.Is(err, os.ErrNotExist), "token file should be removed on logout")

	_, err = run(t, "", "whoami")
	require.ErrorIs(t, err, domain.ErrUnauthenticated)
	assert.Equal(t, "not signed in, run console login", describe(err))
}

func TestLoginReadsPasswordFromStdin(t *testing.T) {
	setup(t)

	out, err := run(t, "secret\n", "login", "--email", "bruno@example.com")

	require.NoError(t, err)
	assert.Contains(t, out, "Signed in as Bruno")
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	setup(t)

	_, err := run(t, "", "login", "--email", "bruno@example.com", "--password", "nope")

	require.ErrorIs(t, err, domain.ErrInvalidCredentials)
	assert.Equal(t, "Credenciais inválidas", describe(err))
}

func TestLoginWhileSignedIn(t *testing.T) {
	setup(t)
	login(t)

	_, err := run(t, "", "login", "--email", "bruno@example.com", "--password", "secret")

	require.ErrorIs(t, err, domain.ErrAlreadySignedIn)
}

func TestOrdersListAndShow(t *testing.T) {
	setup(t)
	login(t)

	out, err := run(t, "", "orders", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "o-1")
	assert.Contains(t, out, "o-2")
	assert.Contains(t, out, "page 1 of 1 (2 orders)")

	out, err = run(t, "", "orders", "list", "--search", "globex")
	require.NoError(t, err)
	assert.NotContains(t, out, "o-1")
	assert.Contains(t, out, "(1 orders)")

	out, err = run(t, "", "orders", "show", "o-1")
	require.NoError(t, err)
	assert.Contains(t, out, "client:      Acme")
	assert.Contains(t, out, "can manage:  yes")
	assert.Contains(t, out, "Timeline")

	_, err = run(t, "", "orders", "show", "o-404")
	require.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestOrdersListRejectsUnknownStatus(t *testing.T) {
	setup(t)
	login(t)

	_, err := run(t, "", "orders", "list", "--status", "lost")
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, describe(err), `unknown status "lost"`)

	_, err = run(t, "", "orders", "list", "--status", string(domain.StatusInProgress))
	require.NoError(t, err)
}

func TestOrdersCreateAssignsCreatorByDefault(t *testing.T) {
	api, _ := setup(t)
	login(t)

	out, err := run(t, "", "orders", "create", "--client", "Initech", "--description", "Instalar rack")

	require.NoError(t, err)
	assert.Contains(t, out, "Created order o-3 for Initech")
	api.mu.Lock()
	defer api.mu.Unlock()
	assert.Equal(t, "u-2", api.created["responsavel_id"])
	assert.Equal(t, "u-2", api.created["criado_por_id"])
}

func TestOrdersTransitions(t *testing.T) {
	api, _ := setup(t)
	login(t)

	out, err := run(t, "", "orders", "check-in", "o-1")
	require.NoError(t, err)
	assert.Contains(t, out, "Checked in order o-1")

	_, err = run(t, "", "orders", "check-out", "o-2")
	require.ErrorIs(t, err, domain.ErrForbidden, "agents may only move their own orders")

	api.mu.Lock()
	defer api.mu.Unlock()
	assert.Equal(t, []string{"o-1 check-in"}, api.transitions)
}

func TestReportsDaily(t *testing.T) {
	setup(t)
	login(t)

	out, err := run(t, "", "reports", "daily", "--from", "2026-10-19", "--to", "2026-10-19")
	require.NoError(t, err)
	assert.Contains(t, out, "2026-10-19")
	assert.Contains(t, out, "75.0%")

	_, err = run(t, "", "reports", "daily", "--from", "2026-10-20", "--to", "2026-10-19")
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestUsers(t *testing.T) {
	setup(t)
	login(t)

	out, err := run(t, "", "users", "technicians")
	require.NoError(t, err)
	assert.Contains(t, out, "Bruno")
	assert.NotContains(t, out, "Ana")
	assert.NotContains(t, out, "Caio")

	_, err = run(t, "", "users", "list")
	require.ErrorIs(t, err, domain.ErrForbidden)
}

func TestExpiredSession(t *testing.T) {
	api, _ := setup(t)
	login(t)

	api.mu.Lock()
	api.token = "tok-2"
	api.refreshOK = false
	api.mu.Unlock()

	_, err := run(t, "", "orders", "list")

	require.ErrorIs(t, err, domain.ErrSessionExpired)
	assert.Equal(t, "session expired, run console login", describe(err))

	_, err = run(t, "", "whoami")
	require.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestMissingAPIURL(t *testing.T) {
	setup(t)
	env = envconfig.MapLookuper(map[string]string{})

	_, err := run(t, "", "whoami")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "API_URL")
}

func TestServeRequiresSessionSecret(t *testing.T) {
	setup(t)

	_, err := run(t, "", "serve")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "SESSION_SECRET")
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"session expired", domain.ErrSessionExpired, "session expired, run console login"},
		{"not signed in", domain.ErrUnauthenticated, "not signed in, run console login"},
		{"remote message", &domain.RemoteError{StatusCode: 409, Message: "Ordem já concluída"}, "Ordem já concluída"},
		{"plain", errors.New("boom"), "boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, describe(tt.err))
		})
	}
}
