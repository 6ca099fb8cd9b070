package checkin

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adda-backend/internal/capture"
)

func TestClientLoginAndSubmit(t *testing.T) {
	marked := false
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&body)) {
			return
		}
		if body["password"] != "correct horse" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"error":{"code":"UNAUTHORIZED","message":"email or password is incorrect"}}`)
			return
		}
		_, _ = io.WriteString(w, `{"token":"tok-1","user_id":"u1"}`)
	})
	mux.HandleFunc("/api/v1/attendance", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		f, fh, err := r.FormFile("photo")
		if !assert.NoError(t, err) {
			return
		}
		defer f.Close()
		assert.Equal(t, "attendance-1.jpg", fh.Filename)
		assert.Equal(t, "image/jpeg", fh.Header.Get("Content-Type"))
		data, _ := io.ReadAll(f)
		assert.Equal(t, []byte("jpeg-bytes"), data)

		if marked {
			w.WriteHeader(http.StatusConflict)
			_, _ = io.WriteString(w, `{"error":{"code":"ALREADY_MARKED","message":"You have already marked attendance today"}}`)
			return
		}
		marked = true
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"attendance_id":"01HS","user_id":"u1","attended_on":"2024-03-10","photo_url":"https://x/p.jpg"}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := NewClient(srv.URL+"/", nil)
	_, err := c.Login(context.Background(), "a@b.c", "wrong")
	var re *RemoteError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, http.StatusUnauthorized, re.Status)
	assert.Equal(t, "email or password is incorrect", err.Error())

	uid, err := c.Login(context.Background(), "a@b.c", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, "u1", uid)
	assert.Equal(t, "tok-1", c.Token())

	photo := capture.NewArtifact("attendance-1.jpg", "image/jpeg", []byte("jpeg-bytes"), time.Now())
	res, err := c.Submit(context.Background(), photo)
	require.NoError(t, err)
	assert.Equal(t, "https://x/p.jpg", res.PhotoURL)

	_, err = c.Submit(context.Background(), photo)
	assert.True(t, IsAlreadyMarked(err))
}

func TestClientNonJSONError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, nil).Leaderboard(context.Background())
	require.Error(t, err)
	assert.Equal(t, "bad gateway", err.Error())
	assert.False(t, IsAlreadyMarked(err))
}

func TestClientShareLinkDefaultsToMe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/users/me/share", r.URL.Path)
		_, _ = io.WriteString(w, `{"user_id":"u1","url":"https://adda.example/profile/u1"}`)
	}))
	defer srv.Close()

	res, err := NewClient(srv.URL, nil).ShareLink(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "https://adda.example/profile/u1", res.URL)
}
