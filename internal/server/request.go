package server

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"
)

// Request is one GraphQL operation request.
type Request struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName,omitempty"`
	Variables     map[string]any `json:"variables,omitempty"`
	Extensions    map[string]any `json:"extensions,omitempty"`
}

// requestError rejects a request before any operation runs.
type requestError struct {
	status  int
	message string
}

func badRequest(message string) *requestError {
	return &requestError{http.StatusBadRequest, message}
}

// parseRequest reads the operations of r. batch reports whether the body
// was a JSON array.
func parseRequest(r *http.Request, maxBody int64) (reqs []Request, batch bool, rerr *requestError) {
	if r.Method == http.MethodGet {
		req, rerr := parseQueryString(r)
		if rerr != nil {
			return nil, false, rerr
		}
		return []Request{req}, false, nil
	}

	if ct := r.Header.Get("Content-Type"); ct != "" {
		mt, _, err := mime.ParseMediaType(ct)
		if err != nil || mt != "application/json" {
			return nil, false, &requestError{http.StatusUnsupportedMediaType, "unsupported Content-Type"}
		}
	}
	body := r.Body
	if maxBody > 0 {
		body = http.MaxBytesReader(nil, r.Body, maxBody)
	}
	defer r.Body.Close()
	raw, err := io.ReadAll(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, false, &requestError{http.StatusRequestEntityTooLarge, "body too large"}
		}
		return nil, false, badRequest("failed to read body")
	}

	trimmed := strings.TrimSpace(string(raw))
	if strings.HasPrefix(trimmed, "[") {
		if err := json.Unmarshal(raw, &reqs); err != nil {
			return nil, false, badRequest("invalid JSON")
		}
		if len(reqs) == 0 {
			return nil, false, badRequest("empty batch")
		}
		for _, req := range reqs {
			if req.Query == "" {
				return nil, false, badRequest("no GraphQL query found in the request")
			}
		}
		return reqs, true, nil
	}

	var req Request
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, false, badRequest("invalid JSON")
	}
	if req.Query == "" {
		return nil, false, badRequest("no GraphQL query found in the request")
	}
	return []Request{req}, false, nil
}

func parseQueryString(r *http.Request) (Request, *requestError) {
	q := r.URL.Query()
	req := Request{Query: q.Get("query"), OperationName: q.Get("operationName")}
	if req.Query == "" {
		return req, badRequest("no GraphQL query found in the request")
	}
	if v := q.Get("variables"); v != "" {
		if err := json.Unmarshal([]byte(v), &req.Variables); err != nil {
			return req, badRequest("invalid variables JSON")
		}
	}
	if v := q.Get("extensions"); v != "" {
		if err := json.Unmarshal([]byte(v), &req.Extensions); err != nil {
			return req, badRequest("invalid extensions JSON")
		}
	}
	return req, nil
}
