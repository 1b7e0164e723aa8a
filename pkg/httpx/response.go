package httpx

import (
	"encoding/json"
	"net/http"
)

// FlowResponse is the uniform body for session flow endpoints.
type FlowResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`

	// Token carries the bare access token on sign-up; empty elsewhere.
	Token string `json:"token,omitempty"`

	// Errors enumerates field-level validation failures on 400 responses.
	Errors map[string]string `json:"errors,omitempty"`
}

// WriteJSON writes a JSON response with the given status code and no-store
// cache headers, as required for responses carrying credentials.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteFlow writes the standard {success, message} body.
func WriteFlow(w http.ResponseWriter, code int, success bool, message string) {
	WriteJSON(w, code, FlowResponse{Success: success, Message: message})
}

// NoCache sets Cache-Control and Pragma headers to prevent caching.
func NoCache(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
}
