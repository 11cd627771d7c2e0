package sms

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMobizonClient_Send(t *testing.T) {
	var got url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		got = r.PostForm
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"code":0,"data":{"messageId":"42"}}`))
	}))
	defer srv.Close()

	c := NewMobizonClient("key", "ACME", "NUSA", resty.New())
	c.url = srv.URL

	res, err := c.Send(context.Background(), "77001112233", "Doğrulama kodunuz: 123456")
	require.NoError(t, err)
	assert.True(t, res.Delivered)
	assert.Equal(t, "42", res.ProviderMessageID)
	assert.Equal(t, "key", got.Get("apiKey"))
	assert.Equal(t, "77001112233", got.Get("recipient"))
	assert.Equal(t, "ACME", got.Get("from"))
	assert.Equal(t, "NUSA Doğrulama kodunuz: 123456", got.Get("text"))
}

func TestMobizonClient_ProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"code":1,"message":"bad recipient"}`))
	}))
	defer srv.Close()

	c := NewMobizonClient("key", "", "", resty.New())
	c.url = srv.URL

	res, err := c.Send(context.Background(), "1", "hi")
	require.Error(t, err)
	assert.False(t, res.Delivered)
	assert.Contains(t, err.Error(), "bad recipient")
}

func TestMobilParkClient_Send(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "user", r.PostForm.Get("username"))
		assert.Equal(t, "secret", r.PostForm.Get("password"))
		assert.Equal(t, "5551112222", r.PostForm.Get("to"))
		assert.Equal(t, "sms", r.PostForm.Get("messageType"))
		assert.Equal(t, "SITE", r.PostForm.Get("from"))
		_, _ = w.Write([]byte("OK"))
	}))
	defer srv.Close()

	c := NewMobilParkClient("user", "secret", "SITE", resty.New())
	c.url = srv.URL

	res, err := c.Send(context.Background(), "5551112222", "code")
	require.NoError(t, err)
	assert.True(t, res.Delivered)
	assert.True(t, strings.HasPrefix(res.ProviderMessageID, "mobilpark_"))
}

func TestMobilParkClient_Non200IsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewMobilParkClient("u", "p", "f", resty.New())
	c.url = srv.URL

	res, err := c.Send(context.Background(), "5551112222", "code")
	require.Error(t, err)
	assert.False(t, res.Delivered)
}

func TestSenders_RejectEmptyRecipient(t *testing.T) {
	for name, s := range map[string]Sender{
		"mobizon":   NewMobizonClient("k", "", "", resty.New()),
		"mobilpark": NewMobilParkClient("u", "p", "f", resty.New()),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := s.Send(context.Background(), "  ", "x")
			require.ErrorIs(t, err, ErrNoRecipient)
		})
	}
}

func TestDryRunSender(t *testing.T) {
	res, err := DryRunSender{Sender: "PhoneGate"}.Send(context.Background(), "5551112222", "code 123456")
	require.NoError(t, err)
	assert.True(t, res.Delivered)
	assert.True(t, strings.HasPrefix(res.ProviderMessageID, "dry-run_"))
}
