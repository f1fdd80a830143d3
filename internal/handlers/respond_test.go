package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"docextract/internal/apperr"
)

func TestWrapLogsDetailButHidesIt(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	h := &Handler{Logger: zap.New(core)}

	fn := h.wrap("boom", func(w http.ResponseWriter, r *http.Request) error {
		return errors.New("dial tcp 10.0.0.1: connection refused")
	})
	rec := httptest.NewRecorder()
	fn(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d", rec.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["error"] != "Internal server error" || body["status"] != "error" {
		t.Errorf("body = %v", body)
	}

	entries := logs.FilterMessage("Unexpected error").All()
	if len(entries) != 1 {
		t.Fatalf("log entries = %d", len(entries))
	}
	if got := entries[0].ContextMap()["error"]; got != "dial tcp 10.0.0.1: connection refused" {
		t.Errorf("logged error = %v", got)
	}
}

func TestWrapClassifiedError(t *testing.T) {
	h := &Handler{Logger: zap.NewNop()}
	fn := h.wrap("v", func(w http.ResponseWriter, r *http.Request) error {
		return apperr.Validation("No selected file")
	})
	rec := httptest.NewRecorder()
	fn(rec, httptest.NewRequest(http.MethodPost, "/", nil))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d", rec.Code)
	}
	var body map[string]string
	_ = json.NewDecoder(rec.Body).Decode(&body)
	if body["error"] != "No selected file" {
		t.Errorf("body = %v", body)
	}
}

func TestWrapSuccessWritesNothingExtra(t *testing.T) {
	h := New(nil, nil, nil, "m", nil)
	fn := h.wrap("ok", func(w http.ResponseWriter, r *http.Request) error {
		w.WriteHeader(http.StatusNoContent)
		return nil
	})
	rec := httptest.NewRecorder()
	fn(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusNoContent || rec.Body.Len() != 0 {
		t.Errorf("status = %d body = %q", rec.Code, rec.Body.String())
	}
}
