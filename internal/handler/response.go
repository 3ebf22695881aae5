package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/tarnished-tactics/api/internal/model"
)

// StatusResponse is the body of successful writes
type StatusResponse struct {
	Status string `json:"status"`
	ID     string `json:"id,omitempty"`
}

// WriteJSON writes a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// WriteError writes an {"error": "..."} response
func WriteError(w http.ResponseWriter, err *model.APIError) {
	WriteJSON(w, err.Status, err)
}

// WriteSuccess writes {"status":"success"} plus the id when one is given
func WriteSuccess(w http.ResponseWriter, id string) {
	WriteJSON(w, http.StatusOK, StatusResponse{Status: "success", ID: id})
}

// DecodeJSON decodes a JSON request body into the given struct. An empty
// body leaves v untouched.
func DecodeJSON(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
