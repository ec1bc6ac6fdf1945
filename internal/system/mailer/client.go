// Package mailer is the client of the hosted auth and email service that owns
// user identities, invitations and magic links.
package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/complyhub/compliance-management-api/internal/system/config"
	"github.com/complyhub/compliance-management-api/internal/system/constants"
	"github.com/complyhub/compliance-management-api/internal/system/log"
	"github.com/complyhub/compliance-management-api/internal/system/utils"
)

// Client is the identity and email surface used by the user module.
type Client interface {
	// InviteUser creates an invited identity and emails the invitation. It returns the identity id.
	InviteUser(ctx context.Context, email string) (string, error)
	// SendMagicLink emails a sign-in link to an existing identity.
	SendMagicLink(ctx context.Context, email string) error
	// SetBanned revokes or restores sign-in for an identity.
	SetBanned(ctx context.Context, identityID string, banned bool) error
	// DeleteIdentity removes an identity.
	DeleteIdentity(ctx context.Context, identityID string) error
}

// HTTPClient calls the auth service JSON API.
type HTTPClient struct {
	httpClient *http.Client
	config     config.MailerConfig
	logger     *log.Logger
}

type inviteRequest struct {
	Email      string `json:"email"`
	RedirectTo string `json:"redirect_to,omitempty"`
}

type inviteResponse struct {
	ID string `json:"id"`
}

type magicLinkRequest struct {
	Email      string `json:"email"`
	RedirectTo string `json:"redirect_to,omitempty"`
}

type updateUserRequest struct {
	BanDuration string `json:"ban_duration"`
}

type errorResponse struct {
	Message string `json:"msg"`
	Error   string `json:"error_description"`
}

// New returns an HTTP client when the mailer is enabled and a logging stand-in otherwise.
func New(cfg config.MailerConfig) Client {
	if !cfg.Enabled {
		return &disabledClient{logger: log.GetLogger().With(log.String(log.LoggerKeyComponentName, "Mailer"))}
	}
	return NewHTTPClient(cfg, nil)
}

// NewHTTPClient creates the client. A nil httpClient gets one with the configured timeout.
func NewHTTPClient(cfg config.MailerConfig, httpClient *http.Client) *HTTPClient {
	if httpClient == nil {
		timeout := 30 * time.Second
		if cfg.Timeout > 0 {
			timeout = cfg.Timeout
		}
		httpClient = &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}
	return &HTTPClient{
		httpClient: httpClient,
		config:     cfg,
		logger:     log.GetLogger().With(log.String(log.LoggerKeyComponentName, "Mailer")),
	}
}

func (c *HTTPClient) InviteUser(ctx context.Context, email string) (string, error) {
	var out inviteResponse
	if err := c.do(ctx, http.MethodPost, "/invite", inviteRequest{Email: email, RedirectTo: c.config.RedirectTo}, &out); err != nil {
		return "", err
	}
	if out.ID == "" {
		return "", fmt.Errorf("auth service returned no identity id")
	}
	return out.ID, nil
}

func (c *HTTPClient) SendMagicLink(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodPost, "/magiclink", magicLinkRequest{Email: email, RedirectTo: c.config.RedirectTo}, nil)
}

func (c *HTTPClient) SetBanned(ctx context.Context, identityID string, banned bool) error {
	duration := "none"
	if banned {
		duration = "876000h"
	}
	return c.do(ctx, http.MethodPut, "/admin/users/"+url.PathEscape(identityID), updateUserRequest{BanDuration: duration}, nil)
}

func (c *HTTPClient) DeleteIdentity(ctx context.Context, identityID string) error {
	return c.do(ctx, http.MethodDelete, "/admin/users/"+url.PathEscape(identityID), nil, nil)
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set(constants.HeaderContentType, constants.ContentTypeJSON)
	req.Header.Set("Accept", constants.ContentTypeJSON)
	req.Header.Set("apikey", c.config.APIKey)
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	if id := log.CorrelationID(ctx); id != "" {
		req.Header.Set(constants.HeaderCorrelationID, id)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.WithContext(ctx).Error("Auth service call failed", log.String("path", path), log.Error(err))
		return fmt.Errorf("auth service call failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	c.logger.WithContext(ctx).Debug("Auth service response received",
		log.String("path", path),
		log.Int("status", resp.StatusCode),
		log.Any("duration", time.Since(start).String()))

	if resp.StatusCode >= http.StatusBadRequest {
		var apiErr errorResponse
		_ = json.Unmarshal(respBody, &apiErr)
		msg := apiErr.Message
		if msg == "" {
			msg = apiErr.Error
		}
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// APIError is a non-2xx answer from the auth service.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("auth service returned %d: %s", e.StatusCode, e.Message)
}

// disabledClient stands in for the auth service in local setups.
type disabledClient struct {
	logger *log.Logger
}

func (d *disabledClient) InviteUser(ctx context.Context, email string) (string, error) {
	id := utils.GenerateUUID()
	d.logger.WithContext(ctx).Info("Mailer disabled, invitation not sent",
		log.String("email", email), log.String("identity_id", id))
	return id, nil
}

func (d *disabledClient) SendMagicLink(ctx context.Context, email string) error {
	d.logger.WithContext(ctx).Info("Mailer disabled, magic link not sent", log.String("email", email))
	return nil
}

func (d *disabledClient) SetBanned(ctx context.Context, identityID string, banned bool) error {
	d.logger.WithContext(ctx).Debug("Mailer disabled, ban state not propagated",
		log.String("identity_id", identityID), log.Bool("banned", banned))
	return nil
}

func (d *disabledClient) DeleteIdentity(ctx context.Context, identityID string) error {
	d.logger.WithContext(ctx).Debug("Mailer disabled, identity not deleted", log.String("identity_id", identityID))
	return nil
}
