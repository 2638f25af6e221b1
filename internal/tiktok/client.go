package tiktok

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	TikTokOpenAPIURL = "https://open.tiktokapis.com"

	// Tokens are treated as expired this long before their literal expiry so
	// a token checked as valid cannot lapse between the check and its use.
	TokenExpiryMargin = 5 * time.Minute
)

// ErrTokenRefresh marks a failed refresh-token exchange. The caller must treat
// this as terminal for the account until the user re-authenticates.
var ErrTokenRefresh = fmt.Errorf("tiktok: token refresh failed")

type Client struct {
	httpClient   *http.Client
	baseURL      string
	clientKey    string
	clientSecret string
}

// TokenData is a refreshed access/refresh token pair
type TokenData struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	OpenID       string `json:"open_id"`
	Error        string `json:"error"`
	ErrorDesc    string `json:"error_description"`
}

// ExpiresAt converts the relative expiry into an absolute timestamp
func (t *TokenData) ExpiresAt() time.Time {
	return time.Now().Add(time.Duration(t.ExpiresIn) * time.Second)
}

// VideoStatsData holds the counters returned for a single video
type VideoStatsData struct {
	ID       string `json:"id"`
	Views    int64  `json:"view_count"`
	Likes    int64  `json:"like_count"`
	Comments int64  `json:"comment_count"`
	Shares   int64  `json:"share_count"`
}

type videoQueryResponse struct {
	Data struct {
		Videos []VideoStatsData `json:"videos"`
	} `json:"data"`
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func NewClient(clientKey, clientSecret, baseURL string) *Client {
	if baseURL == "" {
		baseURL = TikTokOpenAPIURL
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL:      strings.TrimRight(baseURL, "/"),
		clientKey:    clientKey,
		clientSecret: clientSecret,
	}
}

// IsTokenExpired reports whether an access token expiring at expiresAt should
// be refreshed before use
func IsTokenExpired(expiresAt time.Time) bool {
	return !time.Now().Add(TokenExpiryMargin).Before(expiresAt)
}

// RefreshAccessToken exchanges a refresh token for a new access/refresh pair.
// Persisting the new pair is the caller's responsibility.
func (c *Client) RefreshAccessToken(ctx context.Context, refreshToken string) (*TokenData, error) {
	form := url.Values{}
	form.Set("client_key", c.clientKey)
	form.Set("client_secret", c.clientSecret)
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)

	endpoint := c.baseURL + "/v2/oauth/token/"
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenRefresh, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: status %d - %s", ErrTokenRefresh, resp.StatusCode, string(body))
	}

	var token TokenData
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return nil, fmt.Errorf("%w: malformed response: %v", ErrTokenRefresh, err)
	}

	if token.Error != "" {
		return nil, fmt.Errorf("%w: %s - %s", ErrTokenRefresh, token.Error, token.ErrorDesc)
	}

	if token.AccessToken == "" {
		return nil, fmt.Errorf("%w: empty access token in response", ErrTokenRefresh)
	}

	return &token, nil
}

// GetVideoStats fetches view/like/comment/share counters for a batch of video
// IDs. A video missing from the result was not returned by the platform and
// must be skipped by the caller, not treated as an error.
func (c *Client) GetVideoStats(ctx context.Context, accessToken string, videoIDs []string) ([]VideoStatsData, error) {
	if len(videoIDs) == 0 {
		return nil, nil
	}

	payload := map[string]interface{}{
		"filters": map[string]interface{}{
			"video_ids": videoIDs,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	endpoint := c.baseURL + "/v2/video/query/?fields=id,view_count,like_count,comment_count,share_count"
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch video stats: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("tiktok API error: %d - %s", resp.StatusCode, string(respBody))
	}

	var result videoQueryResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode video stats: %w", err)
	}

	if result.Error.Code != "" && result.Error.Code != "ok" {
		return nil, fmt.Errorf("tiktok API error: %s - %s", result.Error.Code, result.Error.Message)
	}

	return result.Data.Videos, nil
}
