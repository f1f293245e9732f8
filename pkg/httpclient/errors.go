package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/pr-poehali-dev/fashion-store-creation/pkg/errors"
)

// errorBody accepts both error shapes seen from upstream services:
// {"error":"message"} and {"error":{"code":"...","message":"..."}}.
type errorBody struct {
	Error json.RawMessage `json:"error"`
}

type structuredError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ParseResponseError reads and closes the body of a non-2xx response and
// translates it into an error carrying the upstream message.
func ParseResponseError(resp *http.Response, serviceName string) error {
	defer func() { _ = resp.Body.Close() }()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%s returned status %d (failed to read body: %w)", serviceName, resp.StatusCode, err)
	}

	var body errorBody
	if json.Unmarshal(bodyBytes, &body) == nil && len(body.Error) > 0 && string(body.Error) != "null" {
		var msg string
		if json.Unmarshal(body.Error, &msg) == nil {
			return mapStatus(resp.StatusCode, "", msg, serviceName)
		}
		var se structuredError
		if json.Unmarshal(body.Error, &se) == nil {
			return mapStatus(resp.StatusCode, se.Code, se.Message, serviceName)
		}
	}

	return fmt.Errorf("%s returned status %d: %s", serviceName, resp.StatusCode, string(bodyBytes))
}

func mapStatus(status int, code, message, serviceName string) error {
	qualifiedMsg := fmt.Sprintf("%s: %s", serviceName, message)

	switch {
	case status == http.StatusNotFound:
		return apperrors.NotFound(serviceName, message)
	case status == http.StatusBadRequest:
		return apperrors.InvalidInput(qualifiedMsg)
	case status == http.StatusConflict:
		return apperrors.Conflict(qualifiedMsg)
	case status == http.StatusMethodNotAllowed:
		return &apperrors.AppError{Code: "METHOD_NOT_ALLOWED", Message: qualifiedMsg, Status: status, Err: apperrors.ErrMethodNotAllowed}
	case status == http.StatusTooManyRequests:
		return &apperrors.AppError{Code: "RATE_LIMITED", Message: qualifiedMsg, Status: status, Err: apperrors.ErrRateLimited}
	case status == http.StatusServiceUnavailable:
		return apperrors.ServiceUnavailable(qualifiedMsg)
	case status >= 500:
		return fmt.Errorf("%s server error (%d%s): %s", serviceName, status, codeSuffix(code), message)
	default:
		if code == "" {
			code = "UPSTREAM_ERROR"
		}
		return &apperrors.AppError{Code: code, Message: qualifiedMsg, Status: status}
	}
}

func codeSuffix(code string) string {
	if code == "" {
		return ""
	}
	return "/" + code
}

// IsSuccess reports whether status is 2xx.
func IsSuccess(status int) bool {
	return status >= 200 && status < 300
}
