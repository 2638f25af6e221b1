package tiktok

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestIsTokenExpired(t *testing.T) {
	cases := []struct {
		name      string
		expiresAt time.Time
		expired   bool
	}{
		{"long lived", time.Now().Add(time.Hour), false},
		{"already expired", time.Now().Add(-time.Hour), true},
		{"inside margin", time.Now().Add(time.Minute), true},
		{"just outside margin", time.Now().Add(TokenExpiryMargin + time.Minute), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsTokenExpired(tc.expiresAt); got != tc.expired {
				t.Errorf("IsTokenExpired(%v) = %v, want %v", tc.expiresAt, got, tc.expired)
			}
		})
	}
}

func TestRefreshAccessToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/oauth/token/" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("failed to parse form: %v", err)
		}
		if r.PostForm.Get("grant_type") != "refresh_token" {
			t.Errorf("unexpected grant_type %q", r.PostForm.Get("grant_type"))
		}
		if r.PostForm.Get("refresh_token") != "old-refresh" {
			t.Errorf("unexpected refresh_token %q", r.PostForm.Get("refresh_token"))
		}
		if r.PostForm.Get("client_key") != "key" || r.PostForm.Get("client_secret") != "secret" {
			t.Error("missing client credentials in form")
		}

		json.NewEncoder(w).Encode(TokenData{
			AccessToken:  "new-access",
			RefreshToken: "new-refresh",
			ExpiresIn:    86400,
			OpenID:       "open-1",
		})
	}))
	defer server.Close()

	client := NewClient("key", "secret", server.URL)
	token, err := client.RefreshAccessToken(context.Background(), "old-refresh")
	if err != nil {
		t.Fatalf("RefreshAccessToken failed: %v", err)
	}

	if token.AccessToken != "new-access" || token.RefreshToken != "new-refresh" {
		t.Errorf("unexpected token pair %q / %q", token.AccessToken, token.RefreshToken)
	}
	expiresAt := token.ExpiresAt()
	if expiresAt.Before(time.Now().Add(23 * time.Hour)) {
		t.Errorf("expected expiry roughly a day out, got %v", expiresAt)
	}
}

func TestRefreshAccessTokenAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(TokenData{
			Error:     "invalid_grant",
			ErrorDesc: "refresh token revoked",
		})
	}))
	defer server.Close()

	client := NewClient("key", "secret", server.URL)
	_, err := client.RefreshAccessToken(context.Background(), "revoked")
	if !errors.Is(err, ErrTokenRefresh) {
		t.Fatalf("expected ErrTokenRefresh, got %v", err)
	}
}

func TestRefreshAccessTokenHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "server error", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient("key", "secret", server.URL)
	_, err := client.RefreshAccessToken(context.Background(), "any")
	if !errors.Is(err, ErrTokenRefresh) {
		t.Fatalf("expected ErrTokenRefresh, got %v", err)
	}
}

func TestGetVideoStats(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/video/query/" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer token-1" {
			t.Errorf("unexpected authorization header %q", got)
		}

		var body struct {
			Filters struct {
				VideoIDs []string `json:"video_ids"`
			} `json:"filters"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if len(body.Filters.VideoIDs) != 2 {
			t.Errorf("expected 2 video IDs, got %v", body.Filters.VideoIDs)
		}

		// One of the two requested videos is missing from the response
		w.Write([]byte(`{"data":{"videos":[{"id":"vid-1","view_count":1200,"like_count":80,"comment_count":7,"share_count":3}]},"error":{"code":"ok"}}`))
	}))
	defer server.Close()

	client := NewClient("key", "secret", server.URL)
	stats, err := client.GetVideoStats(context.Background(), "token-1", []string{"vid-1", "vid-2"})
	if err != nil {
		t.Fatalf("GetVideoStats failed: %v", err)
	}

	if len(stats) != 1 {
		t.Fatalf("expected 1 video, got %d", len(stats))
	}
	if stats[0].ID != "vid-1" || stats[0].Views != 1200 || stats[0].Likes != 80 {
		t.Errorf("unexpected stats %+v", stats[0])
	}
}

func TestGetVideoStatsEmptyBatch(t *testing.T) {
	client := NewClient("key", "secret", "http://unreachable.invalid")
	stats, err := client.GetVideoStats(context.Background(), "token", nil)
	if err != nil {
		t.Fatalf("expected nil error for empty batch, got %v", err)
	}
	if stats != nil {
		t.Errorf("expected no stats for empty batch, got %v", stats)
	}
}

func TestGetVideoStatsAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"data":{"videos":[]},"error":{"code":"access_token_invalid","message":"token expired"}}`))
	}))
	defer server.Close()

	client := NewClient("key", "secret", server.URL)
	if _, err := client.GetVideoStats(context.Background(), "bad", []string{"vid-1"}); err == nil {
		t.Fatal("expected error for API error code")
	}
}
