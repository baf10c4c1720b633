package utils

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRespondErrorShape(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondError(rec, http.StatusNotFound, "session not found")

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/json" {
		t.Fatalf("content type = %q", got)
	}
	if !strings.Contains(rec.Body.String(), `{"error":"session not found"}`) {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func TestRespondText(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondText(rec, http.StatusOK, "[상담 요약]")

	if got := rec.Header().Get("Content-Type"); got != "text/plain; charset=utf-8" {
		t.Fatalf("content type = %q", got)
	}
	if rec.Body.String() != "[상담 요약]" {
		t.Fatalf("body = %q", rec.Body.String())
	}
}
