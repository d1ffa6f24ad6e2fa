// Package slack implements the chat status provider over the Slack Web
// API (users.profile.get / users.profile.set / auth.test) with a user
// token carrying users.profile:read and users.profile:write scopes.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ofckit/ofc/internal/domain"
	"github.com/ofckit/ofc/internal/ports"
)

const (
	DefaultBaseURL = "https://slack.com/api"

	maxResponseBytes = 1 << 20
)

type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

var (
	_ ports.StatusProvider = (*Client)(nil)
	_ ports.Identity       = (*Client)(nil)
)

func NewClient(httpClient *http.Client, baseURL, token string) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
	}
}

type profilePayload struct {
	StatusText  string `json:"status_text"`
	StatusEmoji string `json:"status_emoji"`
}

type apiResponse struct {
	OK      bool            `json:"ok"`
	Error   string          `json:"error"`
	Profile *profilePayload `json:"profile"`
	UserID  string          `json:"user_id"`
	Team    string          `json:"team"`
}

func (c *Client) GetStatus(ctx context.Context, id domain.PersonID) (domain.RemoteStatus, error) {
	form := url.Values{"user": {string(id)}}
	resp, err := c.callForm(ctx, "users.profile.get", form)
	if err != nil {
		return domain.RemoteStatus{}, fmt.Errorf("get status for %s: %w", id, err)
	}
	if resp.Profile == nil {
		return domain.RemoteStatus{}, fmt.Errorf("get status for %s: %w: response has no profile", id, domain.ErrTransient)
	}

	return domain.RemoteStatus{
		Text:  resp.Profile.StatusText,
		Emoji: resp.Profile.StatusEmoji,
	}, nil
}

func (c *Client) SetStatus(ctx context.Context, id domain.PersonID, status domain.RemoteStatus) error {
	body := struct {
		User    string         `json:"user"`
		Profile profilePayload `json:"profile"`
	}{
		User: string(id),
		Profile: profilePayload{
			StatusText:  status.Text,
			StatusEmoji: status.Emoji,
		},
	}

	if _, err := c.callJSON(ctx, "users.profile.set", body); err != nil {
		return fmt.Errorf("set status for %s: %w", id, err)
	}

	return nil
}

func (c *Client) WhoAmI(ctx context.Context) (domain.PersonID, string, error) {
	resp, err := c.callForm(ctx, "auth.test", url.Values{})
	if err != nil {
		return "", "", fmt.Errorf("auth test: %w", err)
	}

	return domain.PersonID(resp.UserID), resp.Team, nil
}

func (c *Client) callForm(ctx context.Context, method string, form url.Values) (apiResponse, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+method, strings.NewReader(form.Encode()))
	if err != nil {
		return apiResponse{}, fmt.Errorf("create request: %w", err)
	}
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return c.do(request)
}

func (c *Client) callJSON(ctx context.Context, method string, body any) (apiResponse, error) {
	encoded, err := json.Marshal(body)
	if err != nil {
		return apiResponse{}, fmt.Errorf("encode request: %w", err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+method, bytes.NewReader(encoded))
	if err != nil {
		return apiResponse{}, fmt.Errorf("create request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json; charset=utf-8")

	return c.do(request)
}

func (c *Client) do(request *http.Request) (apiResponse, error) {
	request.Header.Set("Authorization", "Bearer "+c.token)

	response, err := c.httpClient.Do(request)
	if err != nil {
		return apiResponse{}, fmt.Errorf("%w: %v", domain.ErrTransient, err)
	}
	defer response.Body.Close()

	body, err := io.ReadAll(io.LimitReader(response.Body, maxResponseBytes))
	if err != nil {
		return apiResponse{}, fmt.Errorf("%w: read response: %v", domain.ErrTransient, err)
	}

	if response.StatusCode == http.StatusTooManyRequests {
		return apiResponse{}, fmt.Errorf("%w: status %d", rateLimited(response.Header.Get("Retry-After")), response.StatusCode)
	}
	if err := classifyHTTP(response.StatusCode); err != nil {
		return apiResponse{}, fmt.Errorf("%w: status %d", err, response.StatusCode)
	}

	var decoded apiResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return apiResponse{}, fmt.Errorf("%w: decode response: %v", domain.ErrTransient, err)
	}
	if !decoded.OK {
		return apiResponse{}, fmt.Errorf("%w: %s", classifyAPIError(decoded.Error), decoded.Error)
	}

	return decoded, nil
}

func classifyHTTP(status int) error {
	switch {
	case status >= 200 && status <= 299:
		return nil
	case status == http.StatusTooManyRequests:
		return domain.ErrRateLimited
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return domain.ErrForbidden
	default:
		return domain.ErrTransient
	}
}

// rateLimited keeps Slack's Retry-After wait attached to the throttle
// error when the header is present and parsable.
func rateLimited(retryAfter string) error {
	secs, err := strconv.Atoi(strings.TrimSpace(retryAfter))
	if err != nil || secs <= 0 {
		return domain.ErrRateLimited
	}
	return &domain.RateLimitError{After: time.Duration(secs) * time.Second}
}

// classifyAPIError maps Slack's ok:false error strings onto the domain
// taxonomy so the applier can decide what is worth retrying.
func classifyAPIError(code string) error {
	switch code {
	case "ratelimited", "rate_limited":
		return domain.ErrRateLimited
	case "user_not_found", "users_not_found":
		return domain.ErrPersonNotFound
	case "missing_scope", "not_allowed", "invalid_auth", "token_revoked", "token_expired", "account_inactive", "no_permission", "not_authed":
		return domain.ErrForbidden
	default:
		return domain.ErrTransient
	}
}
