package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestExtractNameFromPath(t *testing.T) {
	name, err := extractNameFromPath("/api/categories/Within%20Kingstown", "/api/categories/")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if name != "Within%20Kingstown" {
		t.Fatalf("unexpected name: %s", name)
	}

	if _, err := extractNameFromPath("/wrong/path", "/api/categories/"); err == nil {
		t.Fatalf("expected error for invalid path")
	}
	if _, err := extractNameFromPath("/api/categories/", "/api/categories/"); err == nil {
		t.Fatalf("expected error for missing name")
	}
}

func TestWriteJSONResponse(t *testing.T) {
	rr := httptest.NewRecorder()
	writeJSONResponse(rr, http.StatusOK, map[string]string{"ok": "true"})

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("unexpected content-type: %s", ct)
	}
	if body := rr.Body.String(); body == "" {
		t.Fatalf("empty body")
	}
}

func TestWriteServiceError_DefaultsToInternal(t *testing.T) {
	rr := httptest.NewRecorder()
	writeServiceError(rr, nil, http.ErrBodyNotAllowed, "Failed")
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
}
