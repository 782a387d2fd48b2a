// ABOUTME: Tests for the REST transport against an httptest server.
// ABOUTME: Covers auth headers, body encoding, and error surfacing.

package rest

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Get_SetsAuthHeader(t *testing.T) {
	var gotAuth, gotAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotAgent = r.Header.Get("User-Agent")
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := NewClient("secret-token", nil, WithBaseURL(srv.URL))
	raw, err := c.Get(context.Background(), "/gateway/bot")
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(raw))
	assert.Equal(t, "Bot secret-token", gotAuth)
	assert.Contains(t, gotAgent, "unicord")
}

func TestClient_Post_EncodesBody(t *testing.T) {
	var gotMethod, gotPath, gotContentType string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotContentType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"m1"}`))
	}))
	defer srv.Close()

	c := NewClient("t", nil, WithBaseURL(srv.URL))
	raw, err := c.Post(context.Background(), "/channels/ch1/messages", map[string]any{"content": "hi"})
	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/channels/ch1/messages", gotPath)
	assert.Equal(t, "application/json", gotContentType)
	assert.JSONEq(t, `{"content":"hi"}`, string(gotBody))
	assert.JSONEq(t, `{"id":"m1"}`, string(raw))
}

func TestClient_NonSuccessStatusIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"Unknown Channel"}`))
	}))
	defer srv.Close()

	c := NewClient("t", nil, WithBaseURL(srv.URL))
	_, err := c.Get(context.Background(), "/channels/missing")
	require.Error(t, err)

	var restErr *Error
	require.ErrorAs(t, err, &restErr)
	assert.Equal(t, http.StatusNotFound, restErr.Status)
	assert.Contains(t, restErr.Body, "Unknown Channel")
}

func TestClient_Delete(t *testing.T) {
	var gotMethod string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := NewClient("t", nil, WithBaseURL(srv.URL))
	_, err := c.Delete(context.Background(), "/channels/ch1/messages/m1")
	require.NoError(t, err)
	assert.Equal(t, http.MethodDelete, gotMethod)
}

func TestClient_PathWithoutLeadingSlash(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient("t", nil, WithBaseURL(srv.URL))
	_, err := c.Get(context.Background(), "users/@me")
	require.NoError(t, err)
	assert.Equal(t, "/users/@me", gotPath)
}

func TestClient_ContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	c := NewClient("t", nil, WithBaseURL(srv.URL))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Get(ctx, "/slow")
	assert.Error(t, err)
}
