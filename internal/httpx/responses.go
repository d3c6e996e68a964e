package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"bookcatalog/internal/apperr"
	"bookcatalog/internal/entity"
)

type SuccessResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
	Meta    interface{} `json:"meta,omitempty"`
}

type ErrorResponse struct {
	Success bool              `json:"success"`
	Error   ErrorResponseBody `json:"error"`
	Meta    interface{}       `json:"meta,omitempty"`
}

type ErrorResponseBody struct {
	Code    string        `json:"code"`
	Message string        `json:"message"`
	Details []ErrorDetail `json:"details,omitempty"`
}

type ErrorDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func buildMeta(r *http.Request, customMeta map[string]interface{}) interface{} {
	requestID := RequestIDFrom(r)
	if requestID == "" && customMeta == nil {
		return nil
	}
	meta := make(map[string]interface{})
	if requestID != "" {
		meta["request_id"] = requestID
	}
	for k, v := range customMeta {
		meta[k] = v
	}
	return meta
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func JSONSuccess(w http.ResponseWriter, r *http.Request, data interface{}, meta map[string]interface{}) {
	writeJSON(w, http.StatusOK, SuccessResponse{
		Success: true,
		Data:    data,
		Meta:    buildMeta(r, meta),
	})
}

func JSONSuccessCreated(w http.ResponseWriter, r *http.Request, data interface{}) {
	writeJSON(w, http.StatusCreated, SuccessResponse{
		Success: true,
		Data:    data,
		Meta:    buildMeta(r, nil),
	})
}

func JSONError(w http.ResponseWriter, r *http.Request, statusCode int, code string, message string, details []ErrorDetail) {
	writeJSON(w, statusCode, ErrorResponse{
		Success: false,
		Error: ErrorResponseBody{
			Code:    code,
			Message: message,
			Details: details,
		},
		Meta: buildMeta(r, nil),
	})
}

// WriteError renders a service error. Caller-facing kinds keep their message
// and carry the offending argument as an "invalidArgs" detail; anything else
// is reported as an opaque internal error.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	code := apperr.Code(err)
	status := statusFor(code)
	if status == http.StatusInternalServerError {
		JSONError(w, r, status, code, "Internal server error", nil)
		return
	}

	var details []ErrorDetail
	if arg, ok := apperr.InvalidArg(err); ok {
		details = append(details, ErrorDetail{Field: "invalidArgs", Message: arg})
	}
	var verr *entity.ValidationError
	if errors.As(err, &verr) {
		for _, f := range verr.Fields {
			details = append(details, ErrorDetail{Field: f.Field, Message: f.Message})
		}
	}
	JSONError(w, r, status, code, err.Error(), details)
}

func statusFor(code string) int {
	switch code {
	case "NOT_AUTHENTICATED", "INVALID_TOKEN", "INVALID_CREDENTIALS":
		return http.StatusUnauthorized
	case "BAD_AUTHOR_INPUT", "BAD_BOOK_INPUT", "BAD_USER_INPUT":
		return http.StatusBadRequest
	case "AUTHOR_NOT_FOUND":
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
