package api

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	json "github.com/goccy/go-json"
)

// HTTPError reports a non-2xx response. When the body is a JSON object it is
// decoded into Fields (field name -> messages); otherwise Body holds the raw
// text.
type HTTPError struct {
	Method string
	Path   string
	Status int
	Body   string
	Fields map[string][]string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("api %s %s returned status %d", e.Method, e.Path, e.Status)
}

// Detail returns the most useful human text carried by the error: the joined
// field messages when structured, otherwise the trimmed raw body.
func (e *HTTPError) Detail() string {
	if len(e.Fields) > 0 {
		keys := make([]string, 0, len(e.Fields))
		for k := range e.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s: %s", k, strings.Join(e.Fields[k], "; ")))
		}
		return strings.Join(parts, " | ")
	}
	return strings.TrimSpace(e.Body)
}

func newHTTPError(method, path string, status int, body []byte) *HTTPError {
	return &HTTPError{
		Method: method,
		Path:   path,
		Status: status,
		Body:   string(body),
		Fields: parseFieldErrors(body),
	}
}

// FieldErrors returns the structured validation errors carried by err, or nil.
func FieldErrors(err error) map[string][]string {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) && len(httpErr.Fields) > 0 {
		return httpErr.Fields
	}
	return nil
}

// IsStatus reports whether err is an HTTPError with the given status code.
func IsStatus(err error, status int) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.Status == status
}

func parseFieldErrors(body []byte) map[string][]string {
	var parsed map[string]any
	if err := json.Unmarshal(body, &parsed); err != nil || len(parsed) == 0 {
		return nil
	}
	out := make(map[string][]string, len(parsed))
	for field, value := range parsed {
		switch v := value.(type) {
		case []any:
			msgs := make([]string, 0, len(v))
			for _, item := range v {
				msgs = append(msgs, messageString(item))
			}
			out[field] = msgs
		default:
			out[field] = []string{messageString(v)}
		}
	}
	return out
}

func messageString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return ""
	case map[string]any, []any:
		raw, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(raw)
	default:
		return fmt.Sprint(t)
	}
}
