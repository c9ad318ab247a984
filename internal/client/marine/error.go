package marine

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	go_json "github.com/goccy/go-json"
)

// ErrSessionExpired is wrapped by the error returned when the session could
// not be refreshed.
var ErrSessionExpired = errors.New("session expired")

type APIError struct {
	StatusCode int
	Message    string
	// Fields holds per-field messages from validation responses.
	Fields map[string]string
}

func (e *APIError) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("marine api: %d %s", e.StatusCode, e.Message)
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return fmt.Sprintf("marine api: %d %s (%s)", e.StatusCode, e.Message, strings.Join(parts, "; "))
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

func IsUnauthorized(err error) bool {
	return StatusCode(err) == http.StatusUnauthorized
}

func parseAPIError(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    resp.Status,
		}
	}

	var raw map[string]any
	if err := go_json.Unmarshal(body, &raw); err != nil {
		msg := strings.TrimSpace(string(body))
		if msg == "" {
			msg = resp.Status
		}
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    msg,
		}
	}

	apiErr := &APIError{StatusCode: resp.StatusCode}
	for _, key := range []string{"detail", "message", "error"} {
		if s, ok := raw[key].(string); ok && s != "" {
			apiErr.Message = s
			break
		}
	}

	for key, v := range raw {
		switch key {
		case "detail", "message", "error", "code":
			continue
		}
		msg := fieldMessage(v)
		if msg == "" {
			continue
		}
		if key == "non_field_errors" {
			if apiErr.Message == "" {
				apiErr.Message = msg
			}
			continue
		}
		if apiErr.Fields == nil {
			apiErr.Fields = make(map[string]string)
		}
		apiErr.Fields[key] = msg
	}

	if apiErr.Message == "" {
		apiErr.Message = resp.Status
	}
	return apiErr
}

// fieldMessage flattens a DRF field error, which is a string or a list of strings.
func fieldMessage(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []any:
		msgs := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := item.(string); ok {
				msgs = append(msgs, s)
			}
		}
		return strings.Join(msgs, " ")
	default:
		return ""
	}
}
