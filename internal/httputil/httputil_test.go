// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJSONRequest(t *testing.T) {
	req, err := NewJSONRequest(context.Background(), http.MethodPost, "http://example.org/crawl",
		map[string]any{"keyword": "ml"}, "paper-crawler/test")
	require.NoError(t, err)

	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
	assert.Equal(t, "application/json", req.Header.Get("Accept"))
	assert.Equal(t, "paper-crawler/test", req.Header.Get("User-Agent"))

	body, err := io.ReadAll(req.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"keyword":"ml"}`, string(body))
}

func TestNewJSONRequestNoBody(t *testing.T) {
	req, err := NewJSONRequest(context.Background(), http.MethodGet, "http://example.org/health", nil, "")
	require.NoError(t, err)
	assert.Nil(t, req.Body)
	assert.Empty(t, req.Header.Get("Content-Type"))
	assert.Empty(t, req.Header.Get("User-Agent"))
}

func TestNewJSONRequestBadBody(t *testing.T) {
	_, err := NewJSONRequest(context.Background(), http.MethodPost, "http://example.org", make(chan int), "")
	assert.Error(t, err)
}

func TestDecodeJSON(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/bad" {
			fmt.Fprint(w, "<html>not json</html>")
			return
		}
		fmt.Fprint(w, `{"success": true}`)
	}))
	defer ts.Close()

	resp, err := ts.Client().Get(ts.URL)
	require.NoError(t, err)
	defer Drain(resp)
	var v struct{ Success bool }
	require.NoError(t, DecodeJSON(resp, &v))
	assert.True(t, v.Success)

	resp, err = ts.Client().Get(ts.URL + "/bad")
	require.NoError(t, err)
	defer Drain(resp)
	assert.Error(t, DecodeJSON(resp, &v))
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestIsTimeout(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain", errors.New("boom"), false},
		{"deadline", context.DeadlineExceeded, true},
		{"wrapped deadline", fmt.Errorf("post: %w", context.DeadlineExceeded), true},
		{"canceled", context.Canceled, false},
		{"net timeout", fmt.Errorf("read: %w", timeoutErr{}), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTimeout(tt.err))
		})
	}
}

func TestIsTimeoutClientTimeout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer ts.Close()

	client := &http.Client{Timeout: 20 * time.Millisecond}
	_, err := client.Get(ts.URL)
	require.Error(t, err)
	assert.True(t, IsTimeout(err))
}

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	require.NoError(t, WriteJSON(rec, http.StatusCreated, map[string]any{"count": 2}))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var got map[string]any
	require.NoError(t, json.NewDecoder(strings.NewReader(rec.Body.String())).Decode(&got))
	assert.Equal(t, float64(2), got["count"])
}
