// Package httputil holds the JSON response envelope shared by every
// handler.
package httputil

import (
	"encoding/json"
	"net/http"
)

type Response struct {
	Status    string      `json:"status"`
	RequestID string      `json:"request_id,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Error     *ErrorBody  `json:"error,omitempty"`
}

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func WriteJSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(Response{
		Status:    "ok",
		RequestID: RequestID(r),
		Data:      data,
	})
}

func WriteError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(Response{
		Status:    "error",
		RequestID: RequestID(r),
		Error: &ErrorBody{
			Code:    code,
			Message: message,
		},
	})
}
