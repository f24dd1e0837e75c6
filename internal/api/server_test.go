package api_test

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cinderledger/cinder/internal/api"
	"github.com/cinderledger/cinder/internal/identity"
	"github.com/cinderledger/cinder/internal/ledger"
	"github.com/cinderledger/cinder/internal/record"
)

var (
	walletOnce sync.Once
	walletErr  error
	shared     *identity.Wallet
)

func testWallet(t *testing.T) *identity.Wallet {
	t.Helper()
	walletOnce.Do(func() {
		shared, walletErr = identity.NewWallet(nil)
	})
	if walletErr != nil {
		t.Fatalf("generate test wallet: %v", walletErr)
	}
	return shared
}

func setupRouter(t *testing.T) (*gin.Engine, *ledger.Ledger) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	l := ledger.New(zap.NewNop(), ledger.WithTargetPrefix("00"))
	return api.Router(l, zap.NewNop(), api.Config{}), l
}

func postTransfer(t *testing.T, router *gin.Engine, body map[string]any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/transfers", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestSubmitTransfer_201(t *testing.T) {
	router, l := setupRouter(t)
	wallet := testWallet(t)

	rec := record.New(50, wallet.PublicPEM(), "bob")
	sig, err := wallet.Sign(rec)
	if err != nil {
		t.Fatal(err)
	}

	w := postTransfer(t, router, map[string]any{
		"amount":    50,
		"payer":     wallet.PublicPEM(),
		"payee":     "bob",
		"signature": base64.StdEncoding.EncodeToString(sig),
	})

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if got := l.Len(); got != 2 {
		t.Errorf("ledger length = %d, want 2", got)
	}

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp["status"] != "accepted" {
		t.Errorf("status = %v, want accepted", resp["status"])
	}
	if resp["fingerprint"] == "" {
		t.Error("response carries no fingerprint")
	}
}

func TestSubmitTransfer_422_badSignature(t *testing.T) {
	router, l := setupRouter(t)
	wallet := testWallet(t)

	w := postTransfer(t, router, map[string]any{
		"amount":    50,
		"payer":     wallet.PublicPEM(),
		"payee":     "bob",
		"signature": base64.StdEncoding.EncodeToString([]byte("forged")),
	})

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", w.Code, w.Body.String())
	}
	if got := l.Len(); got != 1 {
		t.Errorf("ledger length = %d after rejection, want 1", got)
	}
}

func TestSubmitTransfer_400_malformedIdentity(t *testing.T) {
	router, _ := setupRouter(t)

	w := postTransfer(t, router, map[string]any{
		"amount":    50,
		"payer":     "not-a-pem-key",
		"payee":     "bob",
		"signature": base64.StdEncoding.EncodeToString([]byte("sig")),
	})

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestSubmitTransfer_400_missingFields(t *testing.T) {
	router, _ := setupRouter(t)

	w := postTransfer(t, router, map[string]any{"amount": 50})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestChainOverview_200(t *testing.T) {
	router, _ := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/chain", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if height := int(resp["height"].(float64)); height != 1 {
		t.Errorf("height = %d, want 1 (genesis)", height)
	}
}

func TestChainVerify_200(t *testing.T) {
	router, _ := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/chain/verify", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp["valid"] != true {
		t.Errorf("valid = %v, want true", resp["valid"])
	}
}

func TestGetEntry_200_genesis(t *testing.T) {
	router, _ := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/chain/entries/0", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestGetEntry_404(t *testing.T) {
	router, _ := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/chain/entries/99", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestGetEntry_400_invalidIdx(t *testing.T) {
	router, _ := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/chain/entries/abc", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestHealthz(t *testing.T) {
	router, _ := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestRequestID_header(t *testing.T) {
	router, _ := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Header().Get("X-Request-ID") == "" {
		t.Error("response missing X-Request-ID header")
	}
}
