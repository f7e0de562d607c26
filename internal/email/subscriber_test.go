package email

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMailgunSubscriber(t *testing.T) {
	var got *http.Request
	var form map[string][]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		got = r
		form = r.PostForm
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sub := NewMailgunSubscriber(srv.URL, "key-secret", "hackers@hackreg.example")
	err := sub.Subscribe(context.Background(), "Ada Lovelace", "ada@example.com")
	require.NoError(t, err)

	require.NotNil(t, got)
	assert.Equal(t, http.MethodPost, got.Method)
	assert.Equal(t, "/lists/hackers@hackreg.example/members", got.URL.Path)

	user, pass, ok := got.BasicAuth()
	require.True(t, ok)
	assert.Equal(t, "api", user)
	assert.Equal(t, "key-secret", pass)

	assert.Equal(t, []string{"ada@example.com"}, form["address"])
	assert.Equal(t, []string{"Ada Lovelace"}, form["name"])
	assert.Equal(t, []string{"yes"}, form["subscribed"])
	assert.Equal(t, []string{"yes"}, form["upsert"])
}

func TestMailgunSubscriberErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	sub := NewMailgunSubscriber(srv.URL, "bad-key", "hackers@hackreg.example")
	err := sub.Subscribe(context.Background(), "Ada", "ada@example.com")
	assert.ErrorContains(t, err, "unexpected status 401")
}

func TestNoopSubscriber(t *testing.T) {
	assert.NoError(t, NoopSubscriber{}.Subscribe(context.Background(), "Ada", "ada@example.com"))
}
