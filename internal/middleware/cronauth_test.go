package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func cronHandler(secret string) http.Handler {
	return CronSecret(secret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func TestCronSecretAcceptsMatchingToken(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/cron/daily", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	rec := httptest.NewRecorder()

	cronHandler("s3cret").ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestCronSecretRejectsBadToken(t *testing.T) {
	for name, header := range map[string]string{
		"wrong token":   "Bearer nope",
		"no bearer":     "s3cret",
		"empty header":  "",
		"bearer prefix": "Bearer ",
	} {
		req := httptest.NewRequest("GET", "/api/cron/daily", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()

		cronHandler("s3cret").ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s: status = %d, want %d", name, rec.Code, http.StatusUnauthorized)
		}
	}
}

func TestCronSecretLockedWhenUnconfigured(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/cron/daily", nil)
	req.Header.Set("Authorization", "Bearer ")
	rec := httptest.NewRecorder()

	cronHandler("").ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}
