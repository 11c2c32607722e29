package whatsapp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mamadbah2/landregistry/internal/config"
)

func TestSendText(t *testing.T) {
	var got textMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v20.0/12345/messages" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer token" {
			t.Errorf("authorization = %q", r.Header.Get("Authorization"))
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"messages":[{"id":"wamid.1"}]}`))
	}))
	defer srv.Close()

	client := NewClient(config.NotificationsConfig{AccessToken: "token", PhoneNumberID: "12345", BaseURL: srv.URL, APIVersion: "v20.0"})
	id, err := client.SendText(context.Background(), "224000", "hello")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if id != "wamid.1" {
		t.Fatalf("id = %q", id)
	}
	if got.To != "224000" || got.Text.Body != "hello" || got.MessagingProduct != "whatsapp" {
		t.Fatalf("payload = %+v", got)
	}
}

func TestSendTextAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"bad recipient","code":131030}}`))
	}))
	defer srv.Close()

	client := NewClient(config.NotificationsConfig{AccessToken: "token", PhoneNumberID: "1", BaseURL: srv.URL, APIVersion: "v20.0"})
	_, err := client.SendText(context.Background(), "x", "hello")
	if err == nil || !strings.Contains(err.Error(), "131030") {
		t.Fatalf("err = %v", err)
	}
}
