package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookcatalog/internal/apperr"
	"bookcatalog/internal/entity"
)

type stubResolver struct {
	user *entity.User
	err  error
}

func (s stubResolver) Resolve(_ context.Context, authorization string) (*entity.User, error) {
	if authorization == "" {
		return nil, nil
	}
	return s.user, s.err
}

func principalEcho() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		JSONSuccess(w, r, PrincipalFrom(r), nil)
	})
}

func TestPrincipalMiddleware(t *testing.T) {
	alice := &entity.User{ID: "u-1", Username: "alice", FavoriteGenre: "scifi"}

	t.Run("anonymous", func(t *testing.T) {
		h := PrincipalMiddleware(stubResolver{})(principalEcho())
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/me", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		var body SuccessResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Nil(t, body.Data)
	})

	t.Run("authenticated", func(t *testing.T) {
		h := PrincipalMiddleware(stubResolver{user: alice})(principalEcho())
		req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
		req.Header.Set("Authorization", "Bearer ok")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"username":"alice"`)
	})

	t.Run("invalid token rejects request", func(t *testing.T) {
		called := false
		h := PrincipalMiddleware(stubResolver{err: fmt.Errorf("%w: bad sig", apperr.ErrInvalidToken)})(
			http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))
		req := httptest.NewRequest(http.MethodGet, "/v1/books", nil)
		req.Header.Set("Authorization", "Bearer forged")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)

		assert.False(t, called)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "INVALID_TOKEN")
	})

	t.Run("lookup failure is internal", func(t *testing.T) {
		h := PrincipalMiddleware(stubResolver{err: errors.New("db down")})(principalEcho())
		req := httptest.NewRequest(http.MethodGet, "/v1/books", nil)
		req.Header.Set("Authorization", "Bearer ok")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestAccessLogMiddleware_RecordsUser(t *testing.T) {
	log, hook := test.NewNullLogger()

	alice := &entity.User{ID: "u-1", Username: "alice"}
	h := Chain(principalEcho(), AccessLogMiddleware(log), PrincipalMiddleware(stubResolver{user: alice}))

	req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	req.Header.Set("Authorization", "Bearer ok")
	h.ServeHTTP(httptest.NewRecorder(), req)

	require.Len(t, hook.AllEntries(), 1)
	entry := hook.LastEntry()
	assert.Equal(t, "u-1", entry.Data["user_id"])
	assert.Equal(t, http.StatusOK, entry.Data["status"])
}

func TestRecoveryMiddleware(t *testing.T) {
	log, hook := test.NewNullLogger()
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}), AccessLogMiddleware(log), RecoveryMiddleware(log))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var panics int
	for _, e := range hook.AllEntries() {
		if e.Message == "panic recovered" {
			panics++
			assert.Equal(t, logrus.ErrorLevel, e.Level)
		}
	}
	assert.Equal(t, 1, panics)
}
