package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testTokenValidator struct {
	valid map[string]string // token -> session id
}

func (v *testTokenValidator) ValidateToken(token string) (SessionIDGetter, error) {
	id, ok := v.valid[token]
	if !ok {
		return nil, fmt.Errorf("invalid token")
	}
	return testClaims(id), nil
}

type testClaims string

func (c testClaims) GetSessionID() string { return string(c) }

func serve(t *testing.T, header string) (*httptest.ResponseRecorder, string, bool) {
	t.Helper()
	validator := &testTokenValidator{valid: map[string]string{"good": "sess-1", "empty": ""}}

	var gotID string
	called := false
	handler := AuthMiddleware(validator)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		id, err := GetSessionID(r)
		require.NoError(t, err)
		gotID = id
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/session", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec, gotID, called
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	rec, id, called := serve(t, "Bearer good")
	assert.True(t, called)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "sess-1", id)
}

func TestAuthMiddleware_CaseInsensitiveScheme(t *testing.T) {
	_, id, called := serve(t, "bearer   good")
	assert.True(t, called)
	assert.Equal(t, "sess-1", id)
}

func TestAuthMiddleware_Rejections(t *testing.T) {
	tests := map[string]string{
		"missing header": "",
		"wrong scheme":   "Basic good",
		"no token":       "Bearer",
		"extra parts":    "Bearer good extra",
		"unknown token":  "Bearer bad",
		"empty session":  "Bearer empty",
	}
	for name, header := range tests {
		t.Run(name, func(t *testing.T) {
			rec, _, called := serve(t, header)
			assert.False(t, called)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.NotEmpty(t, rec.Header().Get("WWW-Authenticate"))

			var body map[string]string
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestGetSessionID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err := GetSessionID(req)
	assert.ErrorIs(t, err, ErrNoSession)

	req = req.WithContext(WithSessionID(context.Background(), "abc"))
	id, err := GetSessionID(req)
	require.NoError(t, err)
	assert.Equal(t, "abc", id)
}
