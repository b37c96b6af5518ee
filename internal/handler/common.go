package handler

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"bank-management/internal/errors"
)

// envelope is the uniform response shape: success flag, human-readable
// message, and an optional named payload.
type envelope map[string]interface{}

func writeJSON(w http.ResponseWriter, statusCode int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

func writeSuccess(w http.ResponseWriter, statusCode int, message string, payloadKey string, payload interface{}) {
	body := envelope{
		"success": true,
		"message": message,
	}
	if payloadKey != "" {
		body[payloadKey] = payload
	}
	writeJSON(w, statusCode, body)
}

func writeError(w http.ResponseWriter, err error) {
	appErr := errors.From(err)
	writeJSON(w, appErr.HTTPStatus(), envelope{
		"success": false,
		"message": appErr.Message,
		"code":    appErr.Code,
	})
}

// pathID extracts and parses the {id} path variable.
func pathID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		return uuid.Nil, errors.NewAppError(errors.InvalidInput, "invalid id format")
	}
	return id, nil
}
