package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/pointkeep/pointkeep/docs"
)

func TestDocsHandler_Serves(t *testing.T) {
	t.Parallel()

	h, err := NewDocsHandler(context.Background(), docs.OpenAPI)
	if err != nil {
		t.Fatalf("NewDocsHandler() error = %v", err)
	}
	r := chi.NewRouter()
	h.Routes(r)

	tests := []struct {
		path        string
		contentType string
	}{
		{"/api-docs", "application/json"},
		{"/api-docs/openapi.json", "application/json"},
		{"/api-docs/openapi.yaml", "application/yaml"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()

			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", rec.Code)
			}
			if got := rec.Header().Get("Content-Type"); got != tt.contentType {
				t.Errorf("Content-Type = %q, want %q", got, tt.contentType)
			}
			if !strings.Contains(rec.Body.String(), "/api/v1/transaction") {
				t.Error("document is missing the transaction path")
			}
		})
	}
}

func TestDocsHandler_JSONIsOpenAPI(t *testing.T) {
	t.Parallel()

	h, err := NewDocsHandler(context.Background(), docs.OpenAPI)
	if err != nil {
		t.Fatalf("NewDocsHandler() error = %v", err)
	}

	rec := httptest.NewRecorder()
	h.JSON(rec, httptest.NewRequest(http.MethodGet, "/api-docs", nil))

	var doc struct {
		OpenAPI string                     `json:"openapi"`
		Paths   map[string]json.RawMessage `json:"paths"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !strings.HasPrefix(doc.OpenAPI, "3.") {
		t.Errorf("openapi = %q, want 3.x", doc.OpenAPI)
	}
	for _, p := range []string{"/api/v1/register", "/api/v1/balance/{userId}", "/api/v1/transaction", "/api/v1/transactions/{userId}"} {
		if _, ok := doc.Paths[p]; !ok {
			t.Errorf("paths missing %s", p)
		}
	}
}

func TestNewDocsHandler_RejectsInvalidDocument(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"not yaml":     "{{{",
		"missing info": "openapi: 3.0.3\npaths: {}\n",
	}
	for name, raw := range tests {
		raw := raw
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			if _, err := NewDocsHandler(context.Background(), []byte(raw)); err == nil {
				t.Error("NewDocsHandler() error = nil, want error")
			}
		})
	}
}
