package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/underneath-app/underneath/internal/domain"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]errorBody{
		"error": {Code: code, Message: message},
	})
}

// businessErrors maps every named business error to its caller-facing
// status and code. Errors constructed at the point of detection in the
// services pass through here unchanged.
var businessErrors = map[error]struct {
	status int
	code   string
}{
	domain.ErrInvitationExists:    {http.StatusBadRequest, "INVITATION_EXISTS"},
	domain.ErrInvalidCode:         {http.StatusBadRequest, "INVALID_CODE"},
	domain.ErrInvitationUsed:      {http.StatusBadRequest, "ALREADY_USED"},
	domain.ErrInvitationExpired:   {http.StatusBadRequest, "EXPIRED"},
	domain.ErrInvitationNotFound:  {http.StatusNotFound, "INVITATION_NOT_FOUND"},
	domain.ErrConnectionExists:    {http.StatusBadRequest, "CONNECTION_EXISTS"},
	domain.ErrDomAlreadyConnected: {http.StatusBadRequest, "DOM_ALREADY_CONNECTED"},
	domain.ErrSubAlreadyConnected: {http.StatusBadRequest, "SUB_ALREADY_CONNECTED"},
	domain.ErrInvalidDom:          {http.StatusBadRequest, "INVALID_DOM"},
	domain.ErrInvalidSub:          {http.StatusBadRequest, "INVALID_SUB"},
	domain.ErrConnectionNotFound:  {http.StatusNotFound, "CONNECTION_NOT_FOUND"},
	domain.ErrConnectionNotActive: {http.StatusBadRequest, "CONNECTION_NOT_ACTIVE"},
	domain.ErrNotConnectionParty:  {http.StatusForbidden, "UNAUTHORIZED"},
}

// writeBusinessError reports whether err was a named business error and,
// if so, writes its mapped response. Callers fall back to their
// operation-specific 500 code when it returns false.
func writeBusinessError(w http.ResponseWriter, err error) bool {
	for sentinel, mapping := range businessErrors {
		if errors.Is(err, sentinel) {
			writeError(w, mapping.status, mapping.code, sentinel.Error())
			return true
		}
	}
	return false
}
