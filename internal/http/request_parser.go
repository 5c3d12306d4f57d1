// Package http provides HTTP server and handler implementations.
//
// This file holds the helpers that turn query strings, path values and JSON
// bodies into typed values, reporting malformed input as 400 errors.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"planner/internal/core"
)

// maxBodyBytes bounds every JSON request body.
const maxBodyBytes = 1 << 20

// requestError is returned for input the handlers cannot use.
type requestError struct {
	status  int
	message string
}

func (e *requestError) Error() string { return e.message }

func badRequest(format string, args ...any) error {
	return &requestError{status: http.StatusBadRequest, message: fmt.Sprintf(format, args...)}
}

// parseScope reads the year and month (1-12) query parameters, defaulting
// each to the month containing now.
func parseScope(query url.Values, now time.Time) (core.Scope, error) {
	scope := core.ScopeOf(now)
	if v := strings.TrimSpace(query.Get("year")); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			return core.Scope{}, badRequest("invalid year %q", v)
		}
		scope.Year = y
	}
	if v := strings.TrimSpace(query.Get("month")); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil {
			return core.Scope{}, badRequest("invalid month %q", v)
		}
		scope.Month = time.Month(m)
	}
	if err := scope.Validate(); err != nil {
		return core.Scope{}, badRequest("%v", err)
	}
	return scope, nil
}

// parseYear reads the year query parameter, defaulting to now's year.
func parseYear(query url.Values, now time.Time) (int, error) {
	v := strings.TrimSpace(query.Get("year"))
	if v == "" {
		return now.Year(), nil
	}
	y, err := strconv.Atoi(v)
	if err != nil {
		return 0, badRequest("invalid year %q", v)
	}
	return y, nil
}

// pathInt parses the named path value as an int.
func pathInt(r *http.Request, name string) (int, error) {
	v := r.PathValue(name)
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, badRequest("invalid %s %q", name, v)
	}
	return n, nil
}

// pathID parses the named path value as an entity id.
func pathID(r *http.Request, name string) (int64, error) {
	v := r.PathValue(name)
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id <= 0 {
		return 0, badRequest("invalid %s %q", name, v)
	}
	return id, nil
}

// decodeJSON reads a single JSON value from the request body into v. PUT
// replaces a whole value and needs a body; on other methods an empty body
// leaves v untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			if r.Method == http.MethodPut {
				return badRequest("request body required")
			}
			return nil
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return &requestError{status: http.StatusRequestEntityTooLarge, message: "request body too large"}
		}
		return badRequest("invalid JSON body: %v", err)
	}
	if dec.More() {
		return badRequest("invalid JSON body: trailing data")
	}
	return nil
}
