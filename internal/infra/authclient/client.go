// File: internal/infra/authclient/client.go
package authclient

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

	"github.com/rs/zerolog"

	"brainz-training/internal/domain"
	"brainz-training/internal/domain/model"
	"brainz-training/internal/domain/ports/adapter"
)

// Compile-time assurance this client satisfies the port
var _ adapter.AuthGateway = (*Client)(nil)

// Client talks to the two external collaborator services: the auth service
// (login/refresh) and the user service (registration/profile). It injects the
// bearer token on every call and transparently refreshes it once on 401.
type Client struct {
	authBase string
	userBase string
	client   *http.Client
	tokens   *TokenStore
	log      *zerolog.Logger
}

func NewClient(authBase, userBase string, timeout time.Duration, tokens *TokenStore, logger *zerolog.Logger) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		authBase: strings.TrimRight(authBase, "/"),
		userBase: strings.TrimRight(userBase, "/"),
		client:   &http.Client{Timeout: timeout},
		tokens:   tokens,
		log:      logger,
	}
}

// Login authenticates against the auth service and stores the token pair.
func (c *Client) Login(ctx context.Context, creds model.Credentials) (*model.AuthTokens, error) {
	var out model.AuthTokens
	if err := c.call(ctx, http.MethodPost, c.authBase+"/api/auth/login", creds, &out, false); err != nil {
		return nil, err
	}
	if err := c.tokens.Set(out.AccessToken, out.RefreshToken); err != nil {
		c.log.Warn().Err(err).Msg("token persistence failed, session won't survive restart")
	}
	return &out, nil
}

// Refresh exchanges the stored refresh token for a new pair.
func (c *Client) Refresh(ctx context.Context) (*model.AuthTokens, error) {
	_, refresh := c.tokens.Tokens()
	if refresh == "" {
		return nil, domain.ErrUnauthorized
	}
	body := struct {
		RefreshToken string `json:"refreshToken"`
	}{RefreshToken: refresh}
	var out model.AuthTokens
	if err := c.call(ctx, http.MethodPost, c.authBase+"/api/auth/refresh", body, &out, false); err != nil {
		c.tokens.Clear()
		return nil, err
	}
	if err := c.tokens.Set(out.AccessToken, out.RefreshToken); err != nil {
		c.log.Warn().Err(err).Msg("token persistence failed")
	}
	return &out, nil
}

// Logout discards the stored tokens. The external services are stateless
// about sessions, so there is nothing to call.
func (c *Client) Logout() {
	c.tokens.Clear()
}

func (c *Client) Register(ctx context.Context, reg model.Registration) (*model.User, error) {
	var out model.User
	if err := c.call(ctx, http.MethodPost, c.userBase+"/api/user/register", reg, &out, false); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Me(ctx context.Context) (*model.User, error) {
	var out model.User
	if err := c.call(ctx, http.MethodGet, c.userBase+"/api/user/me", nil, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateMe(ctx context.Context, user model.User) (*model.User, error) {
	var out model.User
	if err := c.call(ctx, http.MethodPut, c.userBase+"/api/user/me", user, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteMe(ctx context.Context) error {
	return c.call(ctx, http.MethodDelete, c.userBase+"/api/user/me", nil, nil, true)
}

func (c *Client) SearchUser(ctx context.Context, username string) (*model.User, error) {
	var out model.User
	u := c.userBase + "/api/user/search?username=" + url.QueryEscape(username)
	if err := c.call(ctx, http.MethodGet, u, nil, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

// call performs one request/response cycle, retrying exactly once through a
// token refresh when an authorized call comes back 401.
func (c *Client) call(ctx context.Context, method, endpoint string, in, out any, authorized bool) error {
	status, err := c.do(ctx, method, endpoint, in, out)
	if err != nil {
		return err
	}
	if status == http.StatusUnauthorized && authorized {
		if _, err := c.Refresh(ctx); err != nil {
			return domain.ErrUnauthorized
		}
		status, err = c.do(ctx, method, endpoint, in, out)
		if err != nil {
			return err
		}
	}
	switch {
	case status == http.StatusUnauthorized:
		return domain.ErrUnauthorized
	case status == http.StatusNotFound:
		return domain.ErrNotFound
	case status >= 400:
		return fmt.Errorf("%s %s: http %d", method, endpoint, status)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, in, out any) (int, error) {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return 0, err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return 0, err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if access, _ := c.tokens.Tokens(); access != "" {
		req.Header.Set("Authorization", "Bearer "+access)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 300 && out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode %s response: %w", endpoint, err)
		}
	}
	return resp.StatusCode, nil
}
