package handlers

import (
	"encoding/json"
	"net/http"
)

type errorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func respondError(w http.ResponseWriter, status int, msg, details string) {
	respondJSON(w, status, errorBody{Error: msg, Details: details})
}

// validationError names the offending field in the error message itself.
func validationError(w http.ResponseWriter, field string) {
	respondError(w, http.StatusBadRequest, field+" is missing or invalid", "")
}

// upstreamError surfaces the raw store error for diagnosability; no retry.
func upstreamError(w http.ResponseWriter, err error) {
	respondError(w, http.StatusInternalServerError, "database error", err.Error())
}

func notFound(w http.ResponseWriter) {
	respondError(w, http.StatusNotFound, "not found", "")
}
