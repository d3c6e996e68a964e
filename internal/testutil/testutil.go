package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"

	"bookcatalog/internal/auth"
	"bookcatalog/internal/entity"
)

const TestJWTSecret = "test-jwt-secret"

// TestUser is a registered user for handler tests.
var TestUser = entity.User{
	ID:            "test-user-id-123",
	Username:      "alice",
	FavoriteGenre: "scifi",
}

// GenerateTestToken signs a bearer token for u with secret.
func GenerateTestToken(secret string, u entity.User) string {
	token, err := auth.NewTokenService(secret).Issue(u.Username, u.ID)
	if err != nil {
		panic(err)
	}
	return token
}

// NewRequest creates a new HTTP request for testing, JSON-encoding body when set.
func NewRequest(method, path string, body interface{}) *http.Request {
	if body == nil {
		return httptest.NewRequest(method, path, nil)
	}
	bodyBytes, _ := json.Marshal(body)
	r := httptest.NewRequest(method, path, bytes.NewReader(bodyBytes))
	r.Header.Set("Content-Type", "application/json")
	return r
}

// NewRequestWithAuth creates a new HTTP request with a bearer token.
func NewRequestWithAuth(method, path string, body interface{}, token string) *http.Request {
	r := NewRequest(method, path, body)
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	return r
}

// RecordResponse is a decoded response envelope.
type RecordResponse struct {
	Code   int
	Header http.Header
	Body   map[string]interface{}
}

// Data returns the envelope's data member.
func (r RecordResponse) Data() interface{} {
	return r.Body["data"]
}

// ErrorCode returns error.code, or "" for success envelopes.
func (r RecordResponse) ErrorCode() string {
	e, _ := r.Body["error"].(map[string]interface{})
	code, _ := e["code"].(string)
	return code
}

func RecordHTTPResponse(w *httptest.ResponseRecorder) RecordResponse {
	return decode(w.Result())
}

// Do sends req through a real client, for tests that run an httptest.Server.
func Do(req *http.Request) (RecordResponse, error) {
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return RecordResponse{}, err
	}
	return decode(resp), nil
}

func decode(result *http.Response) RecordResponse {
	defer result.Body.Close()

	bodyBytes, _ := io.ReadAll(result.Body)

	var bodyMap map[string]interface{}
	if len(bodyBytes) > 0 {
		_ = json.Unmarshal(bodyBytes, &bodyMap)
	}

	return RecordResponse{
		Code:   result.StatusCode,
		Header: result.Header,
		Body:   bodyMap,
	}
}
