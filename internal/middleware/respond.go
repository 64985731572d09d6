// Package middleware provides HTTP middleware for the loyalty API.
package middleware

import (
	"encoding/json"
	"net/http"
)

// errorBody mirrors the error envelope the handlers write.
type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorBody{Error: message, Code: code})
}
