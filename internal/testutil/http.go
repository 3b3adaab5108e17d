package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"

	"traefiker/internal/errors"
)

// DecodeJSON decodes JSON from a reader
func DecodeJSON(r io.Reader, v interface{}) error {
	return json.NewDecoder(r).Decode(v)
}

// ParseErrorResponse decodes the error envelope written by the server
func ParseErrorResponse(r io.Reader) (*errors.HTTPErrorResponse, error) {
	var errResp errors.HTTPErrorResponse
	if err := DecodeJSON(r, &errResp); err != nil {
		return nil, err
	}
	return &errResp, nil
}

// ServeJSON sends a JSON request straight to handler and records the response
func ServeJSON(handler http.Handler, method, target string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			panic(err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}
