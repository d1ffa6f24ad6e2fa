package slack

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ofckit/ofc/internal/domain"
)

func TestGetStatusHappyPath(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users.profile.get", r.URL.Path)
		assert.Equal(t, "Bearer xoxp-test", r.Header.Get("Authorization"))
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "U0123ABCD", r.PostForm.Get("user"))

		fmt.Fprint(w, `{"ok":true,"profile":{"status_text":"Lunch break","status_emoji":":taco:"}}`)
	}))
	defer server.Close()

	client := NewClient(server.Client(), server.URL, "xoxp-test")
	status, err := client.GetStatus(context.Background(), "U0123ABCD")
	require.NoError(t, err)

	assert.Equal(t, domain.RemoteStatus{Text: "Lunch break", Emoji: ":taco:"}, status)
}

func TestSetStatusSendsJSONProfile(t *testing.T) {
	var received struct {
		User    string `json:"user"`
		Profile struct {
			StatusText  string `json:"status_text"`
			StatusEmoji string `json:"status_emoji"`
		} `json:"profile"`
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users.profile.set", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		fmt.Fprint(w, `{"ok":true}`)
	}))
	defer server.Close()

	client := NewClient(server.Client(), server.URL, "xoxp-test")
	err := client.SetStatus(context.Background(), "U0123ABCD", domain.RemoteStatus{Text: "At the office", Emoji: ":office:"})
	require.NoError(t, err)

	assert.Equal(t, "U0123ABCD", received.User)
	assert.Equal(t, "At the office", received.Profile.StatusText)
	assert.Equal(t, ":office:", received.Profile.StatusEmoji)
}

func TestSetStatusClearSendsEmptyFields(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		profile, ok := body["profile"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "", profile["status_text"])
		assert.Equal(t, "", profile["status_emoji"])
		fmt.Fprint(w, `{"ok":true}`)
	}))
	defer server.Close()

	client := NewClient(server.Client(), server.URL, "xoxp-test")
	require.NoError(t, client.SetStatus(context.Background(), "U0123ABCD", domain.RemoteStatus{}))
}

func TestWhoAmI(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth.test", r.URL.Path)
		fmt.Fprint(w, `{"ok":true,"user_id":"U0123ABCD","team":"Office"}`)
	}))
	defer server.Close()

	client := NewClient(server.Client(), server.URL, "xoxp-test")
	user, team, err := client.WhoAmI(context.Background())
	require.NoError(t, err)

	assert.Equal(t, domain.PersonID("U0123ABCD"), user)
	assert.Equal(t, "Office", team)
}

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name    string
		respond func(w http.ResponseWriter)
		wantErr error
	}{
		{
			name:    "ratelimited api error",
			respond: func(w http.ResponseWriter) { fmt.Fprint(w, `{"ok":false,"error":"ratelimited"}`) },
			wantErr: domain.ErrRateLimited,
		},
		{
			name:    "http 429",
			respond: func(w http.ResponseWriter) { w.WriteHeader(http.StatusTooManyRequests) },
			wantErr: domain.ErrRateLimited,
		},
		{
			name:    "user not found",
			respond: func(w http.ResponseWriter) { fmt.Fprint(w, `{"ok":false,"error":"user_not_found"}`) },
			wantErr: domain.ErrPersonNotFound,
		},
		{
			name:    "missing scope",
			respond: func(w http.ResponseWriter) { fmt.Fprint(w, `{"ok":false,"error":"missing_scope"}`) },
			wantErr: domain.ErrForbidden,
		},
		{
			name:    "invalid auth",
			respond: func(w http.ResponseWriter) { fmt.Fprint(w, `{"ok":false,"error":"invalid_auth"}`) },
			wantErr: domain.ErrForbidden,
		},
		{
			name:    "http 401",
			respond: func(w http.ResponseWriter) { w.WriteHeader(http.StatusUnauthorized) },
			wantErr: domain.ErrForbidden,
		},
		{
			name:    "unknown api error is transient",
			respond: func(w http.ResponseWriter) { fmt.Fprint(w, `{"ok":false,"error":"fatal_error"}`) },
			wantErr: domain.ErrTransient,
		},
		{
			name:    "http 500 is transient",
			respond: func(w http.ResponseWriter) { w.WriteHeader(http.StatusInternalServerError) },
			wantErr: domain.ErrTransient,
		},
		{
			name:    "garbage body is transient",
			respond: func(w http.ResponseWriter) { fmt.Fprint(w, `<html>gateway error</html>`) },
			wantErr: domain.ErrTransient,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				tt.respond(w)
			}))
			defer server.Close()

			client := NewClient(server.Client(), server.URL, "xoxp-test")
			_, err := client.GetStatus(context.Background(), "U0123ABCD")
			assert.ErrorIs(t, err, tt.wantErr)

			err = client.SetStatus(context.Background(), "U0123ABCD", domain.RemoteStatus{Text: "x"})
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRateLimitedCarriesRetryAfter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient(server.Client(), server.URL, "xoxp-test")
	err := client.SetStatus(context.Background(), "U0123ABCD", domain.RemoteStatus{Text: "x"})

	require.ErrorIs(t, err, domain.ErrRateLimited)
	var throttle *domain.RateLimitError
	require.ErrorAs(t, err, &throttle)
	assert.Equal(t, 30*time.Second, throttle.After)
}

func TestRateLimitedWithoutHeaderStaysBare(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient(server.Client(), server.URL, "xoxp-test")
	err := client.SetStatus(context.Background(), "U0123ABCD", domain.RemoteStatus{Text: "x"})

	require.ErrorIs(t, err, domain.ErrRateLimited)
	var throttle *domain.RateLimitError
	assert.False(t, errors.As(err, &throttle))
}

func TestGetStatusMissingProfileIsTransient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"ok":true}`)
	}))
	defer server.Close()

	client := NewClient(server.Client(), server.URL, "xoxp-test")
	_, err := client.GetStatus(context.Background(), "U0123ABCD")
	assert.ErrorIs(t, err, domain.ErrTransient)
}

func TestNewClientDefaults(t *testing.T) {
	client := NewClient(nil, "", "xoxp-test")
	assert.Equal(t, DefaultBaseURL, client.baseURL)
	assert.NotNil(t, client.httpClient)
}
