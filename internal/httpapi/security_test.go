package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"caixa/backend/internal/domain"
	"caixa/backend/internal/store/memory"
)

func TestMiddlewareSetsSecurityHeaders(t *testing.T) {
	api := newTestAPI(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	res := httptest.NewRecorder()

	api.Handler().ServeHTTP(res, req)

	if got := res.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Fatalf("expected X-Content-Type-Options nosniff, got %q", got)
	}
	if got := res.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Fatalf("expected X-Frame-Options DENY, got %q", got)
	}
	if got := res.Header().Get("Referrer-Policy"); got == "" {
		t.Fatalf("expected Referrer-Policy to be set")
	}
}

func TestLoginRateLimitReturns429(t *testing.T) {
	api := newTestAPI(t)
	body, _ := json.Marshal(domain.LoginRequest{Username: "admin", Password: "wrong-pass"})

	for i := 0; i < 6; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.RemoteAddr = "127.0.0.1:5000"
		res := httptest.NewRecorder()

		api.Handler().ServeHTTP(res, req)

		if i < 5 && res.Code != http.StatusUnauthorized {
			t.Fatalf("attempt %d expected 401 before limit, got %d", i+1, res.Code)
		}
		if i == 5 && res.Code != http.StatusTooManyRequests {
			t.Fatalf("attempt 6 expected 429, got %d", res.Code)
		}
	}
}

func TestJSONBodyTooLargeRejected(t *testing.T) {
	api := newTestAPI(t)
	veryLong := strings.Repeat("a", (1<<20)+1024)
	body := fmt.Sprintf(`{"username":"%s","password":"x"}`, veryLong)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()

	api.Handler().ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for too large body, got %d", res.Code)
	}
}

func TestClearRequiresManagerPINForOperators(t *testing.T) {
	api := newTestAPI(t)
	token := loginAs(t, api, "operador", "operador123")

	rec := call(t, api, http.MethodPut, "/api/v1/shift/observations", token, map[string]string{"observations": "troco conferido"})
	if rec.Code != http.StatusOK {
		t.Fatalf("set observations: expected 200, got %d", rec.Code)
	}

	rec = call(t, api, http.MethodPost, "/api/v1/shift/clear", token, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("clear without pin: expected 403, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/shift/clear", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-CSRF-Token", fetchCSRFToken(t, api))
	req.Header.Set("X-Manager-PIN", "123456")
	res := httptest.NewRecorder()
	api.Handler().ServeHTTP(res, req)
	if res.Code != http.StatusOK {
		t.Fatalf("clear with pin: expected 200, got %d (%s)", res.Code, res.Body.String())
	}
	state := decodeState(t, res)
	if state.Snapshot.Observations != "" {
		t.Fatalf("expected observations to be cleared, got %q", state.Snapshot.Observations)
	}
	if state.Snapshot.Entries.StartingFloat.Fixed() != "200.00" {
		t.Fatalf("expected default float 200.00 after clear, got %s", state.Snapshot.Entries.StartingFloat.Fixed())
	}
}

func TestTokenFromAnotherTerminalIsRejected(t *testing.T) {
	api := newTestAPI(t)

	otherTill := NewAuthManager(AuthOptions{Secret: "test-secret-key", TokenTTL: time.Hour, Terminal: "caixa-02"}, memory.NewSeeded())
	login, err := otherTill.Login(context.Background(), domain.LoginRequest{Username: "operador", Password: "operador123"})
	if err != nil {
		t.Fatalf("login on caixa-02: %v", err)
	}

	rec := call(t, api, http.MethodPut, "/api/v1/shift/observations", login.AccessToken, map[string]string{"observations": "outro caixa"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for a caixa-02 token on caixa-01, got %d", rec.Code)
	}
}

func TestManagerPINRateLimitReturns429(t *testing.T) {
	api := newTestAPI(t)
	token := loginAs(t, api, "operador", "operador123")
	csrf := fetchCSRFToken(t, api)

	for i := 0; i < 9; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/shift/clear", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("X-CSRF-Token", csrf)
		req.Header.Set("X-Manager-PIN", "000000")
		req.RemoteAddr = "127.0.0.1:5001"
		res := httptest.NewRecorder()

		api.Handler().ServeHTTP(res, req)

		if i < 8 && res.Code != http.StatusForbidden {
			t.Fatalf("attempt %d expected 403 before pin limit, got %d", i+1, res.Code)
		}
		if i == 8 && res.Code != http.StatusTooManyRequests {
			t.Fatalf("attempt 9 expected 429, got %d", res.Code)
		}
	}
}

func TestStateChangingRequestsRequireCSRFToken(t *testing.T) {
	api := newTestAPI(t)
	token := loginAsAdmin(t, api)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/shift/save", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	res := httptest.NewRecorder()
	api.Handler().ServeHTTP(res, req)
	if res.Code != http.StatusForbidden {
		t.Fatalf("expected 403 without csrf token, got %d", res.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/v1/shift/save", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-CSRF-Token", "forged")
	res = httptest.NewRecorder()
	api.Handler().ServeHTTP(res, req)
	if res.Code != http.StatusForbidden {
		t.Fatalf("expected 403 with forged csrf token, got %d", res.Code)
	}

	if !api.validateCSRFToken(api.csrfTokenForHour(time.Now().UTC().Truncate(time.Hour).Add(-time.Hour).Unix())) {
		t.Fatalf("expected previous-hour token to be accepted")
	}
	if api.validateCSRFToken(api.csrfTokenForHour(time.Now().UTC().Truncate(time.Hour).Add(-2 * time.Hour).Unix())) {
		t.Fatalf("expected two-hour-old token to be rejected")
	}
}

func TestMetricsEndpointExposesShiftCounters(t *testing.T) {
	api := newTestAPI(t)
	token := loginAsAdmin(t, api)

	if rec := call(t, api, http.MethodPost, "/api/v1/shift/save", token, nil); rec.Code != http.StatusOK {
		t.Fatalf("save of empty shift: expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	res := httptest.NewRecorder()
	api.Handler().ServeHTTP(res, req)
	if res.Code != http.StatusOK {
		t.Fatalf("metrics: expected 200, got %d", res.Code)
	}
	if !strings.Contains(res.Body.String(), `caixa_shift_saves_total{result="saved"} 1`) {
		t.Fatalf("expected saved counter in metrics output")
	}
}

func TestParsePositiveLimitCaps(t *testing.T) {
	if got := parsePositiveLimit("9999", 50, 200); got != 200 {
		t.Fatalf("expected capped limit 200, got %d", got)
	}
	if got := parsePositiveLimit("", 50, 200); got != 50 {
		t.Fatalf("expected fallback limit 50, got %d", got)
	}
	if got := parsePositiveLimit("invalid", 50, 200); got != 50 {
		t.Fatalf("expected fallback on invalid input, got %d", got)
	}
}

// fetchCSRFToken calls the CSRF token endpoint and returns the token string.
func fetchCSRFToken(t *testing.T, api *API) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/csrf-token", nil)
	res := httptest.NewRecorder()
	api.Handler().ServeHTTP(res, req)
	if res.Code != http.StatusOK {
		t.Fatalf("csrf-token endpoint returned status %d", res.Code)
	}
	var payload map[string]string
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		t.Fatalf("decode csrf-token response failed: %v", err)
	}
	tok := payload["csrf_token"]
	if strings.TrimSpace(tok) == "" {
		t.Fatalf("expected non-empty csrf_token in response")
	}
	return tok
}

func loginAsAdmin(t *testing.T, api *API) string {
	t.Helper()
	return loginAs(t, api, "admin", "admin123")
}

func loginAs(t *testing.T, api *API, username string, password string) string {
	t.Helper()

	body, _ := json.Marshal(domain.LoginRequest{Username: username, Password: password})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()

	api.Handler().ServeHTTP(res, req)
	if res.Code != http.StatusOK {
		t.Fatalf("login as %s failed, status %d", username, res.Code)
	}

	var payload domain.LoginResponse
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		t.Fatalf("decode login response failed: %v", err)
	}
	if strings.TrimSpace(payload.AccessToken) == "" {
		t.Fatalf("expected access token in login response")
	}
	return payload.AccessToken
}
