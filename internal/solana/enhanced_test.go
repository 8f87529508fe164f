package solana

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestEnhancedClient_GetTransfers(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v0/addresses/vaultAddr/transactions/" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("api-key") != "key" {
			t.Errorf("expected api-key=key, got %q", q.Get("api-key"))
		}
		if q.Get("limit") != "50" {
			t.Errorf("expected limit=50, got %q", q.Get("limit"))
		}
		if q.Get("before") != "cursor" {
			t.Errorf("expected before=cursor, got %q", q.Get("before"))
		}

		resp := []map[string]interface{}{
			{
				"signature": "sig1",
				"timestamp": int64(1700000000),
				"nativeTransfers": []map[string]interface{}{
					{"fromUserAccount": "trader", "toUserAccount": "vaultAddr", "amount": int64(1_500_000_000)},
				},
			},
			{"signature": "sig2", "timestamp": int64(1699999000)},
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewEnhancedClient(server.URL+"/", "key")

	txs, err := client.GetTransfers(context.Background(), "vaultAddr", TransfersOpts{Before: "cursor", Limit: 50})
	if err != nil {
		t.Fatalf("GetTransfers: %v", err)
	}

	if len(txs) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(txs))
	}

	if txs[0].Signature != "sig1" || txs[0].Timestamp != 1700000000 {
		t.Errorf("unexpected first record: %+v", txs[0])
	}

	if len(txs[0].NativeTransfers) != 1 {
		t.Fatalf("expected 1 transfer, got %d", len(txs[0].NativeTransfers))
	}

	tr := txs[0].NativeTransfers[0]
	if tr.FromUserAccount != "trader" || tr.ToUserAccount != "vaultAddr" || tr.Amount != 1_500_000_000 {
		t.Errorf("unexpected transfer: %+v", tr)
	}

	if len(txs[1].NativeTransfers) != 0 {
		t.Errorf("expected no transfers on second record, got %d", len(txs[1].NativeTransfers))
	}
}

func TestEnhancedClient_OmitsEmptyCursor(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := r.URL.Query()["before"]; ok {
			t.Error("before must be omitted on the first page")
		}
		w.Write([]byte("[]"))
	}))
	defer server.Close()

	client := NewEnhancedClient(server.URL, "")

	txs, err := client.GetTransfers(context.Background(), "addr", TransfersOpts{Limit: 10})
	if err != nil {
		t.Fatalf("GetTransfers: %v", err)
	}
	if len(txs) != 0 {
		t.Errorf("expected empty page, got %d", len(txs))
	}
}

func TestEnhancedClient_RetryOn429(t *testing.T) {
	var attempts atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`[{"signature":"sig1","timestamp":1}]`))
	}))
	defer server.Close()

	client := NewEnhancedClient(server.URL, "key", WithRetryDelay(time.Millisecond))

	txs, err := client.GetTransfers(context.Background(), "addr", TransfersOpts{Limit: 10})
	if err != nil {
		t.Fatalf("GetTransfers: %v", err)
	}
	if len(txs) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(txs))
	}
	if attempts.Load() != 2 {
		t.Errorf("expected 2 attempts, got %d", attempts.Load())
	}
}

func TestEnhancedClient_ServerErrorExhaustsRetries(t *testing.T) {
	var attempts atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewEnhancedClient(server.URL, "key",
		WithMaxRetries(1),
		WithRetryDelay(time.Millisecond),
	)

	if _, err := client.GetTransfers(context.Background(), "addr", TransfersOpts{}); err == nil {
		t.Fatal("expected error")
	}
	if attempts.Load() != 2 {
		t.Errorf("expected 2 attempts, got %d", attempts.Load())
	}
}
