package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientAuthHeader(t *testing.T) {
	t.Run("bearer attached when token present", func(t *testing.T) {
		var gotAuth string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			_, _ = w.Write([]byte(`[]`))
		}))
		defer srv.Close()

		client := New(srv.URL, func() string { return "tok-1" })
		_, err := client.Users(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "Bearer tok-1", gotAuth)
	})

	t.Run("anonymous when token absent", func(t *testing.T) {
		var gotAuth string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			_, _ = w.Write([]byte(`[]`))
		}))
		defer srv.Close()

		client := New(srv.URL, func() string { return "" })
		_, err := client.Users(context.Background())
		require.NoError(t, err)
		assert.Empty(t, gotAuth)
	})

	t.Run("token provider re-evaluated per request", func(t *testing.T) {
		var seen []string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = append(seen, r.Header.Get("Authorization"))
			_, _ = w.Write([]byte(`[]`))
		}))
		defer srv.Close()

		token := "first"
		client := New(srv.URL, func() string { return token })

		_, err := client.Users(context.Background())
		require.NoError(t, err)
		token = "second"
		_, err = client.Users(context.Background())
		require.NoError(t, err)

		assert.Equal(t, []string{"Bearer first", "Bearer second"}, seen)
	})
}

func TestConversation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/Chat/u2", r.URL.Path)
		assert.Equal(t, http.MethodGet, r.Method)
		_, _ = w.Write([]byte(`[{"id":"m1","senderId":"u1","content":"hi","createdAt":"2026-01-02T10:00:00Z"}]`))
	}))
	defer srv.Close()

	client := New(srv.URL, nil)
	msgs, err := client.Conversation(context.Background(), "u2")
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "m1", msgs[0].ID)
	assert.Equal(t, "hi", msgs[0].Content)
	assert.Equal(t, time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC), msgs[0].CreatedAt)
}

func TestSendMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/Chat/send", r.URL.Path)

		var body SendMessageRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "u2", body.ReceiverID)
		assert.Equal(t, "hello", body.Content)

		_, _ = w.Write([]byte(`{"id":"m9","senderId":"u1","receiverId":"u2","content":"hello"}`))
	}))
	defer srv.Close()

	client := New(srv.URL, nil)
	msg, err := client.SendMessage(context.Background(), "u2", "hello")
	require.NoError(t, err)
	assert.Equal(t, "m9", msg.ID)
}

func TestMarkNotificationRead(t *testing.T) {
	var gotPath, gotMethod string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMethod = r.Method
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := New(srv.URL, nil)
	require.NoError(t, client.MarkNotificationRead(context.Background(), "n1"))
	assert.Equal(t, "/Notifications/n1/read", gotPath)
	assert.Equal(t, http.MethodPost, gotMethod)
}

func TestChangeTaskStatusBody(t *testing.T) {
	var rawBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var buf [16]byte
		n, _ := r.Body.Read(buf[:])
		rawBody = string(buf[:n])
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := New(srv.URL, nil)
	require.NoError(t, client.ChangeTaskStatus(context.Background(), "t1", StatusInProgress))
	// The server expects the bare numeric enum, not an object.
	assert.Equal(t, "1", rawBody)
}

func TestErrorDecoding(t *testing.T) {
	t.Run("message field", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"message":"receiver not found"}`))
		}))
		defer srv.Close()

		client := New(srv.URL, nil)
		_, err := client.SendMessage(context.Background(), "nobody", "hi")
		require.Error(t, err)

		var apiErr *Error
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusBadRequest, apiErr.Status)
		assert.Equal(t, "receiver not found", apiErr.Message)
	})

	t.Run("problem details title", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"title":"Unauthorized"}`))
		}))
		defer srv.Close()

		client := New(srv.URL, nil)
		_, err := client.Users(context.Background())

		var apiErr *Error
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
		assert.Equal(t, "Unauthorized", apiErr.Message)
	})

	t.Run("unparseable body keeps status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`<html>oops</html>`))
		}))
		defer srv.Close()

		client := New(srv.URL, nil)
		_, err := client.Users(context.Background())

		var apiErr *Error
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	})
}

func TestStatsOverTimeQuery(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	client := New(srv.URL, nil)
	_, err := client.StatsOverTime(context.Background(), "2026-01-01", "2026-02-01")
	require.NoError(t, err)
	assert.Equal(t, "endDate=2026-02-01&startDate=2026-01-01", gotQuery)
}
