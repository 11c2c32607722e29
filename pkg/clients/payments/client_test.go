package payments

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/landregistry/internal/config"
	"github.com/mamadbah2/landregistry/internal/domain/models"
)

func TestSettlePostsSettlement(t *testing.T) {
	var got settlementRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/settlements" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer secret" {
			t.Errorf("authorization = %q", r.Header.Get("Authorization"))
		}
		if r.Header.Get("Idempotency-Key") != "s-1" {
			t.Errorf("idempotency key = %q", r.Header.Get("Idempotency-Key"))
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"s-1","status":"settled"}`))
	}))
	defer srv.Close()

	client := NewClient(config.SettlementConfig{BaseURL: srv.URL + "/", APIKey: "secret"})
	err := client.Settle(context.Background(), models.Settlement{
		ID:       "s-1",
		ParcelID: "Parcel 1",
		Payer:    "0xB",
		Payee:    "0xA",
		Amount:   decimal.RequireFromString("1.5"),
	})
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if got.Payee != "0xA" || got.Payer != "0xB" || got.Amount != "1.5" || got.ParcelID != "Parcel 1" {
		t.Fatalf("gateway received %+v", got)
	}
}

func TestSettleGatewayRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"code":"payee_unreachable","message":"cannot receive"}`))
	}))
	defer srv.Close()

	client := NewClient(config.SettlementConfig{BaseURL: srv.URL})
	err := client.Settle(context.Background(), models.Settlement{ID: "s-1", Amount: decimal.NewFromInt(1)})
	if err == nil || !strings.Contains(err.Error(), "payee_unreachable") {
		t.Fatalf("err = %v", err)
	}
}

func TestSettleUnexpectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"s-1","status":"pending"}`))
	}))
	defer srv.Close()

	client := NewClient(config.SettlementConfig{BaseURL: srv.URL})
	if err := client.Settle(context.Background(), models.Settlement{ID: "s-1", Amount: decimal.NewFromInt(1)}); err == nil {
		t.Fatal("expected error for pending settlement")
	}
}

func TestReverse(t *testing.T) {
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"s-1","status":"reversed"}`))
	}))
	defer srv.Close()

	client := NewClient(config.SettlementConfig{BaseURL: srv.URL})
	if err := client.Reverse(context.Background(), models.Settlement{ID: "s-1"}); err != nil {
		t.Fatalf("reverse: %v", err)
	}
	if path != "/settlements/s-1/reversal" {
		t.Fatalf("path = %q", path)
	}
}
