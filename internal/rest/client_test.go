package rest_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/AbdulRafayPython/AuraFlow-sub001/internal/log"
	"github.com/AbdulRafayPython/AuraFlow-sub001/internal/rest"
)

func TestLoginRemembersToken(t *testing.T) {
	var authHeader string
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode login body: %v", err)
		}
		if req["username"] != "alice" || req["password"] != "secret" {
			t.Fatalf("unexpected credentials %v", req)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"token": "tok-123",
			"user":  map[string]any{"id": 7, "username": "alice"},
		})
	})
	mux.HandleFunc("GET /api/communities", func(w http.ResponseWriter, r *http.Request) {
		authHeader = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode([]map[string]any{})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := rest.New(server.URL, log.Nop())
	resp, err := client.Login(context.Background(), "alice", "secret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.Token != "tok-123" || resp.User.ID != 7 {
		t.Fatalf("login response = %+v", resp)
	}

	if _, err := client.Communities(context.Background()); err != nil {
		t.Fatalf("communities: %v", err)
	}
	if authHeader != "Bearer tok-123" {
		t.Fatalf("authorization header = %q", authHeader)
	}
}

func TestErrorResponseDecoded(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"code": "invalid_credentials", "msg": "unknown user or wrong password"},
		})
	}))
	defer server.Close()

	client := rest.New(server.URL, log.Nop())
	_, err := client.Login(context.Background(), "alice", "nope")
	if err == nil {
		t.Fatal("expected an error")
	}

	var apiErr *rest.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error is %T, want *rest.APIError", err)
	}
	if apiErr.Status != http.StatusUnauthorized {
		t.Fatalf("status = %d", apiErr.Status)
	}
	if apiErr.Code != "invalid_credentials" {
		t.Fatalf("code = %q", apiErr.Code)
	}
}

func TestErrorWithoutBodyStillTyped(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := rest.New(server.URL, log.Nop())
	_, err := client.Communities(context.Background())

	var apiErr *rest.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error is %T, want *rest.APIError", err)
	}
	if apiErr.Status != http.StatusBadGateway {
		t.Fatalf("status = %d", apiErr.Status)
	}
}

func TestSendChannelMessageReturnsPersistedID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/channels/42/messages" {
			t.Fatalf("path = %q", r.URL.Path)
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{
			"id":         100,
			"channel_id": 42,
			"sender_id":  1,
			"content":    "hi",
			"timestamp":  "2026-08-29T12:00:00Z",
		})
	}))
	defer server.Close()

	client := rest.New(server.URL, log.Nop())
	client.SetToken("tok")
	msg, err := client.SendChannelMessage(context.Background(), 42, "hi")
	if err != nil {
		t.Fatalf("send message: %v", err)
	}
	if msg.ID != 100 || msg.ChannelID != 42 {
		t.Fatalf("message = %+v", msg)
	}
}
