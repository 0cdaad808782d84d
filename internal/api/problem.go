package api

import (
	"encoding/json"
	"net/http"
)

// Problem is the error document every non-2xx response carries.
type Problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Detail string `json:"detail"`
	Status int    `json:"status"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondProblem(w http.ResponseWriter, status int, title, detail string) {
	respondJSON(w, status, Problem{
		Type:   "about:blank",
		Title:  title,
		Detail: detail,
		Status: status,
	})
}

// badRequest carries a client-facing validation message. Unlike internal
// errors its detail is safe to expose verbatim.
type badRequest struct {
	detail string
}

func (e *badRequest) Error() string { return e.detail }

func badRequestf(detail string) *badRequest { return &badRequest{detail: detail} }
