// Package rest is the client for AuraFlow's HTTP API: the durable
// create/read path that the socket layer's fire-and-forget notifications
// ride on top of.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Client talks to the AuraFlow REST API.
type Client struct {
	baseURL string
	http    *http.Client
	token   string
	log     *zerolog.Logger
}

// New builds a Client for baseURL.
func New(baseURL string, logger *zerolog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
		log:     logger,
	}
}

// SetToken installs the JWT sent as the Authorization bearer on subsequent
// requests.
func (c *Client) SetToken(token string) {
	c.token = token
}

// APIError is a non-2xx response from the server.
type APIError struct {
	Status int    `json:"-"`
	Code   string `json:"code"`
	Msg    string `json:"msg"`
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api: %s (%s, http %d)", e.Msg, e.Code, e.Status)
	}
	return fmt.Sprintf("api: http %d", e.Status)
}

// User is an account as returned by the API.
type User struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name,omitempty"`
	Status      string `json:"status,omitempty"`
}

// LoginResponse carries the session token and the authenticated user.
type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Community is a server-side community.
type Community struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	OwnerID int64  `json:"owner_id"`
}

// Channel is a text or voice channel inside a community.
type Channel struct {
	ID          int64  `json:"id"`
	CommunityID int64  `json:"community_id"`
	Name        string `json:"name"`
	ChannelType string `json:"channel_type"`
}

// Message is a persisted chat or direct message.
type Message struct {
	ID         int64  `json:"id"`
	ChannelID  int64  `json:"channel_id,omitempty"`
	SenderID   int64  `json:"sender_id"`
	ReceiverID int64  `json:"receiver_id,omitempty"`
	Content    string `json:"content"`
	Timestamp  string `json:"timestamp"`
}

// FriendRequest is a pending friend request.
type FriendRequest struct {
	ID         int64 `json:"id"`
	SenderID   int64 `json:"sender_id"`
	ReceiverID int64 `json:"receiver_id"`
}

// Login exchanges credentials for a session token and remembers it.
func (c *Client) Login(ctx context.Context, username, password string) (LoginResponse, error) {
	var resp LoginResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/login", map[string]string{
		"username": username,
		"password": password,
	}, &resp)
	if err != nil {
		return LoginResponse{}, err
	}
	c.token = resp.Token
	return resp, nil
}

// Communities lists the communities the user belongs to.
func (c *Client) Communities(ctx context.Context) ([]Community, error) {
	var out []Community
	if err := c.do(ctx, http.MethodGet, "/api/communities", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateCommunity creates a community owned by the caller.
func (c *Client) CreateCommunity(ctx context.Context, name string) (Community, error) {
	var out Community
	err := c.do(ctx, http.MethodPost, "/api/communities", map[string]string{"name": name}, &out)
	return out, err
}

// Channels lists the channels of one community.
func (c *Client) Channels(ctx context.Context, communityID int64) ([]Channel, error) {
	var out []Channel
	path := fmt.Sprintf("/api/communities/%d/channels", communityID)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateChannel creates a channel inside a community.
func (c *Client) CreateChannel(ctx context.Context, communityID int64, name, channelType string) (Channel, error) {
	var out Channel
	path := fmt.Sprintf("/api/communities/%d/channels", communityID)
	err := c.do(ctx, http.MethodPost, path, map[string]string{
		"name":         name,
		"channel_type": channelType,
	}, &out)
	return out, err
}

// SendChannelMessage persists a channel message. Peers learn about it via
// the socket broadcast the caller issues afterwards.
func (c *Client) SendChannelMessage(ctx context.Context, channelID int64, content string) (Message, error) {
	var out Message
	path := fmt.Sprintf("/api/channels/%d/messages", channelID)
	err := c.do(ctx, http.MethodPost, path, map[string]string{"content": content}, &out)
	return out, err
}

// SendDirectMessage persists a direct message to one peer.
func (c *Client) SendDirectMessage(ctx context.Context, receiverID int64, content string) (Message, error) {
	var out Message
	err := c.do(ctx, http.MethodPost, "/api/direct-messages", map[string]any{
		"receiver_id": receiverID,
		"content":     content,
	}, &out)
	return out, err
}

// SendFriendRequest creates a pending friend request.
func (c *Client) SendFriendRequest(ctx context.Context, receiverID int64) (FriendRequest, error) {
	var out FriendRequest
	err := c.do(ctx, http.MethodPost, "/api/friends/requests", map[string]any{
		"receiver_id": receiverID,
	}, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	c.log.Debug().Str("method", method).Str("path", path).Msg("api request")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var wrapper struct {
			Error APIError `json:"error"`
		}
		if decodeErr := json.NewDecoder(resp.Body).Decode(&wrapper); decodeErr == nil {
			apiErr.Code = wrapper.Error.Code
			apiErr.Msg = wrapper.Error.Msg
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
