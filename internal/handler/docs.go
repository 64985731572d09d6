package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
)

// DocsHandler serves the OpenAPI description of the API.
type DocsHandler struct {
	yaml []byte
	json []byte
}

// NewDocsHandler loads and validates an OpenAPI document. A document that
// does not validate is a startup error, not something to serve.
func NewDocsHandler(ctx context.Context, raw []byte) (*DocsHandler, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("load openapi document: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("validate openapi document: %w", err)
	}

	js, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode openapi document: %w", err)
	}

	return &DocsHandler{yaml: raw, json: js}, nil
}

// Routes registers the docs endpoints.
func (h *DocsHandler) Routes(r chi.Router) {
	r.Get("/api-docs", h.JSON)
	r.Get("/api-docs/openapi.json", h.JSON)
	r.Get("/api-docs/openapi.yaml", h.YAML)
}

// JSON serves the document as JSON.
// GET /api-docs, GET /api-docs/openapi.json
func (h *DocsHandler) JSON(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(h.json)
}

// YAML serves the document as written.
// GET /api-docs/openapi.yaml
func (h *DocsHandler) YAML(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(h.yaml)
}
