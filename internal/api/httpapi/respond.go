package httpapi

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/openlease/leasehold/internal/api/httpapi/middleware"
	apperrors "github.com/openlease/leasehold/internal/errors"
)

// errorCodeInvalidRequest marks transport-level request problems: malformed
// JSON, bad path parameters, or a missing caller header. Domain signals use
// the ledger error codes.
const errorCodeInvalidRequest = "INVALID_REQUEST"

type errorResponse struct {
	Status    string `json:"status"`
	ErrorCode string `json:"error_code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("encode response", zap.Error(err))
	}
}

// writeError maps a ledger error to its HTTP status and coded body.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := apperrors.GetCode(err)
	s.writeErrorResponse(w, r, code.HTTPStatus(), string(code), err.Error())
}

func (s *Server) writeInvalidRequest(w http.ResponseWriter, r *http.Request, message string) {
	s.writeErrorResponse(w, r, http.StatusBadRequest, errorCodeInvalidRequest, message)
}

func (s *Server) writeErrorResponse(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	s.writeJSON(w, status, errorResponse{
		Status:    "error",
		ErrorCode: code,
		Message:   message,
		RequestID: middleware.GetRequestID(r),
	})
}
