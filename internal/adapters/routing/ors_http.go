package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// ORS error codes meaning no route exists between the requested points.
const (
	orsCodeRouteNotFound   = 2009
	orsCodeNoRoutablePoint = 2010
	orsErrorBodyLimitBytes = 4096
)

// httpStatusError is a non-2xx ORS response. ORSCode and Message come from
// the JSON error body when ORS sends one.
type httpStatusError struct {
	Code    int
	ORSCode int
	Message string
}

func (e *httpStatusError) Error() string {
	if e.ORSCode != 0 {
		return fmt.Sprintf("ors status %d (code %d): %s", e.Code, e.ORSCode, e.Message)
	}
	return fmt.Sprintf("ors status %d: %s", e.Code, e.Message)
}

// noRoute reports whether ORS rejected the request because the endpoints
// cannot be connected, rather than because the call itself failed.
func (e *httpStatusError) noRoute() bool {
	return e.ORSCode == orsCodeRouteNotFound || e.ORSCode == orsCodeNoRoutablePoint ||
		(e.ORSCode == 0 && e.Code == http.StatusNotFound)
}

// ORS sends either {"error": {"code": n, "message": "..."}} or
// {"error": "..."} depending on which layer rejected the call.
type orsErrorBody struct {
	Error json.RawMessage `json:"error"`
}

type orsErrorDetail struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func parseStatusError(status int, body []byte) *httpStatusError {
	he := &httpStatusError{Code: status, Message: strings.TrimSpace(string(body))}

	var eb orsErrorBody
	if err := json.Unmarshal(body, &eb); err != nil || len(eb.Error) == 0 {
		return he
	}

	var detail orsErrorDetail
	if err := json.Unmarshal(eb.Error, &detail); err == nil && (detail.Code != 0 || detail.Message != "") {
		he.ORSCode = detail.Code
		he.Message = detail.Message
		return he
	}
	var msg string
	if err := json.Unmarshal(eb.Error, &msg); err == nil && msg != "" {
		he.Message = msg
	}
	return he
}

func (o *ORSRouteProvider) newRequest(ctx context.Context, method, url string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Authorization", o.apiKey)
	req.Header.Set("Accept", "application/geo+json, application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// do sends the request once. Responses of 400 and above are drained,
// closed and returned as *httpStatusError.
func (o *ORSRouteProvider) do(req *http.Request) (*http.Response, error) {
	resp, err := o.session.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < http.StatusBadRequest {
		return resp, nil
	}

	defer resp.Body.Close()
	b, _ := io.ReadAll(io.LimitReader(resp.Body, orsErrorBodyLimitBytes))
	return nil, parseStatusError(resp.StatusCode, b)
}
