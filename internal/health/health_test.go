package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHealthz_AlwaysOK(t *testing.T) {
	t.Parallel()

	h := New()
	rec := httptest.NewRecorder()
	h.Healthz(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestReadyz_AllCheckersPass(t *testing.T) {
	t.Parallel()

	h := New(
		Ping("sessions", func(context.Context) error { return nil }),
		Ping("voice", func(context.Context) error { return nil }),
	)
	rec := httptest.NewRecorder()
	h.Readyz(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != "ok" || body.Checks["sessions"] != "ok" || body.Checks["voice"] != "ok" {
		t.Fatalf("body = %+v, want all ok", body)
	}
}

func TestReadyz_FailingCheckerReports503(t *testing.T) {
	t.Parallel()

	h := New(
		Ping("sessions", func(context.Context) error { return nil }),
		Ping("redis", func(context.Context) error { return errors.New("connection refused") }),
	)
	rec := httptest.NewRecorder()
	h.Readyz(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}

	var body struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != "fail" {
		t.Fatalf("status field = %q, want fail", body.Status)
	}
	if body.Checks["redis"] == "ok" {
		t.Fatal("failing checker must not report ok")
	}
}

func TestRegister_AddsRoutes(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	New().Register(mux)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /healthz = %d, want 200", rec.Code)
	}
}
