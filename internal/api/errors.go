package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"
)

const maxErrorBody = 300

// RequestFailure is returned for any non-2xx response, transport error or
// undecodable response body.
type RequestFailure struct {
	Method     string
	Path       string
	StatusCode int    // 0 when no response was received
	Status     string // e.g. "404 Not Found"
	Message    string // server-provided detail, if any
	Err        error
}

func (e *RequestFailure) Error() string {
	if e.StatusCode != 0 && e.Err == nil {
		text := strings.TrimSpace(strings.TrimPrefix(e.Status, fmt.Sprint(e.StatusCode)))
		if text == "" {
			text = http.StatusText(e.StatusCode)
		}
		msg := fmt.Sprintf("%s %s: HTTP error %d %s", e.Method, e.Path, e.StatusCode, text)
		if e.Message != "" {
			msg += ": " + e.Message
		}
		return msg
	}
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
}

func (e *RequestFailure) Unwrap() error {
	return e.Err
}

// StatusCode returns the HTTP status carried by err, or 0 if err is not a RequestFailure
// or no response was received.
func StatusCode(err error) int {
	var rf *RequestFailure
	if errors.As(err, &rf) {
		return rf.StatusCode
	}
	return 0
}

// errorMessage pulls a human-readable message out of an error response body.
func errorMessage(body []byte) string {
	var payload struct {
		Detail  any    `json:"detail"`
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		switch d := payload.Detail.(type) {
		case string:
			if d != "" {
				return d
			}
		case nil:
		default:
			if b, err := json.Marshal(d); err == nil {
				return truncate(string(b))
			}
		}
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	return truncate(strings.TrimSpace(string(body)))
}

func truncate(s string) string {
	if utf8.RuneCountInString(s) <= maxErrorBody {
		return s
	}
	return string([]rune(s)[:maxErrorBody]) + "..."
}
