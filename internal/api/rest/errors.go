package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/clintrovert/taskboard/pkg/types"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error   types.ErrorKind `json:"error"`
	Message string          `json:"message"`
}

// StatusFor maps an error kind to its HTTP status code
func StatusFor(kind types.ErrorKind) int {
	switch kind {
	case types.KindTaskNotFound, types.KindManagerNotFound, types.KindPersonNotFound,
		types.KindPriorityNotFound, types.KindStatusNotFound, types.KindTeamNotFound:
		return http.StatusNotFound
	case types.KindStatusAccessDenied, types.KindTaskAccessDenied,
		types.KindTeamAccessDenied, types.KindRoleAccessDenied:
		return http.StatusForbidden
	case types.KindInvalidArgument:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := types.KindOf(err)
	status := StatusFor(kind)

	message := err.Error()
	var te *types.Error
	if errors.As(err, &te) {
		message = te.Message
	}
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.String("kind", string(kind)),
			zap.Error(err),
		)
		if kind == types.KindUnknown {
			message = "internal error"
		}
	}

	writeJSON(w, status, ErrorResponse{Error: kind, Message: message})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
