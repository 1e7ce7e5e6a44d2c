package errs

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"
)

// Application error codes. Every error a handler can produce maps to exactly
// one of these codes, and every code maps to exactly one HTTP status.
const (
	ECONFLICT     = "conflict"
	EINTERNAL     = "internal"
	EINVALID      = "invalid"
	ENOTFOUND     = "not_found"
	EFORBIDDEN    = "forbidden"
	EUNAUTHORIZED = "unauthorized"
	EAUTH         = "auth"
)

// codes maps error codes to HTTP status codes.
var codes = map[string]int{
	ECONFLICT:     http.StatusConflict,
	EINVALID:      http.StatusBadRequest,
	ENOTFOUND:     http.StatusNotFound,
	EFORBIDDEN:    http.StatusForbidden,
	EUNAUTHORIZED: http.StatusUnauthorized,
	EAUTH:         http.StatusUnauthorized,
	EINTERNAL:     http.StatusInternalServerError,
}

// Error represents an application-specific error. Application errors can be
// unwrapped by the caller to extract the code and the message. Any non-application
// error (such as a database failure) is reported as EINTERNAL, and its details are
// only logged, never shown to the client.
type Error struct {
	// Machine-readable error code.
	Code string

	// Human-readable error message.
	Message string
}

// Error implements the error interface. Not used by the application otherwise.
func (e *Error) Error() string {
	return fmt.Sprintf("simpleTwitter error: code=%s message=%s", e.Code, e.Message)
}

// Errorf is a helper function to return an Error with a given code and formatted message.
func Errorf(code string, format string, args ...interface{}) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// ErrorCode unwraps an application error and returns its code.
// Non-application errors always return EINTERNAL.
func ErrorCode(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Code
	}
	return EINTERNAL
}

// ErrorMessage unwraps an application error and returns its message.
// Non-application errors always return "Internal error.".
func ErrorMessage(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Message
	}
	return "Internal error."
}

// StatusCode returns the HTTP status code belonging to an error code.
func StatusCode(code string) int {
	if v, ok := codes[code]; ok {
		return v
	}
	return http.StatusInternalServerError
}

// IdInvalid is returned for ids that aren't positive integers.
var IdInvalid = Errorf(EINVALID, "Invalid Id format.")

// ReturnError is the central error responder. It writes an error as a json object
// of the form {"status": "error", "message": "..."} along with the HTTP status
// code belonging to the error. Internal errors are logged before they are masked.
func ReturnError(w http.ResponseWriter, r *http.Request, err error) {
	code, message := ErrorCode(err), ErrorMessage(err)
	if code == EINTERNAL {
		LogError(r, err)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(StatusCode(code))
	resp := &ErrorResponse{Status: "error", Message: message}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		LogError(r, err)
	}
}

// ErrorResponse is the json body of every failed request.
type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// LogError logs an error along with the method and path of the request it occurred in.
func LogError(r *http.Request, err error) {
	logrus.WithFields(logrus.Fields{
		"method": r.Method,
		"path":   r.URL.Path,
	}).WithError(err).Error("request failed")
}
