package api

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"amoeba-trading/intelligence"
	"amoeba-trading/memory"
	"amoeba-trading/notifications"
	"amoeba-trading/realtime"
	"amoeba-trading/websocket"
)

func newTestServer(secret string) *Server {
	bank := memory.NewBank(memory.DefaultOptions())
	return NewServer(
		memory.NewLearner(bank),
		intelligence.NewAssessor(),
		notifications.NewWebhookManager(nil, nil),
		realtime.NewBroker(),
		websocket.NewHub(),
		nil,
		secret,
	)
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	return body
}

func TestWebhookAcceptsJSONObject(t *testing.T) {
	s := newTestServer("")

	payload := `{"symbol":"BTCUSD","direction":"BULLISH","confidence":0.8,"pressure":2.1,"threshold":1.8}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/tradingview", strings.NewReader(payload))
	rec := httptest.NewRecorder()

	s.handleTradingViewWebhook(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["symbol"] != "BTCUSD" {
		t.Errorf("symbol = %v, want BTCUSD", body["symbol"])
	}
	learning, ok := body["pattern_learning"].(map[string]interface{})
	if !ok {
		t.Fatalf("missing pattern_learning in response: %v", body)
	}
	if learning["pattern_id"] == "" {
		t.Error("expected a pattern id in the response")
	}
}

func TestWebhookAcceptsPlainText(t *testing.T) {
	s := newTestServer("")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/tradingview", strings.NewReader("BTC breakout forming"))
	rec := httptest.NewRecorder()

	s.handleTradingViewWebhook(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 for plain text alert", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["symbol"] != "UNKNOWN" {
		t.Errorf("symbol = %v, want UNKNOWN default", body["symbol"])
	}
}

func TestWebhookAcceptsDoubleEncodedJSON(t *testing.T) {
	s := newTestServer("")

	inner := `{"symbol":"ETHUSD","confidence":0.7}`
	outer, _ := json.Marshal(inner)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/tradingview", bytes.NewReader(outer))
	rec := httptest.NewRecorder()

	s.handleTradingViewWebhook(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if body := decodeBody(t, rec); body["symbol"] != "ETHUSD" {
		t.Errorf("symbol = %v, want ETHUSD from inner payload", body["symbol"])
	}
}

func TestWebhookSignatureVerification(t *testing.T) {
	const secret = "topsecret"
	s := newTestServer(secret)
	payload := []byte(`{"symbol":"BTCUSD"}`)

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	valid := hex.EncodeToString(mac.Sum(nil))

	tests := []struct {
		name      string
		signature string
		want      int
	}{
		{"valid signature", valid, http.StatusOK},
		{"wrong signature", "deadbeef", http.StatusUnauthorized},
		{"missing signature", "", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/tradingview", bytes.NewReader(payload))
			if tt.signature != "" {
				req.Header.Set("X-Webhook-Signature", tt.signature)
			}
			rec := httptest.NewRecorder()

			s.handleTradingViewWebhook(rec, req)

			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestReinforceEndpoint(t *testing.T) {
	s := newTestServer("")

	result := s.learner.ProcessSignal("BTCUSD", memory.Signal{
		Pressure: 2.0, Direction: "BULLISH", VolumeSurgeRatio: 1.5,
		Strength: 1.1, Confidence: 0.7, MarketStructure: "NORMAL",
	})

	body, _ := json.Marshal(reinforceRequest{PatternID: result.PatternID, Outcome: 1.0})
	req := httptest.NewRequest(http.MethodPost, "/api/memory/reinforce", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	s.handleReinforce(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if resp := decodeBody(t, rec); resp["updated"] != true {
		t.Errorf("updated = %v, want true for a live pattern", resp["updated"])
	}
}

func TestReinforceUnknownPattern(t *testing.T) {
	s := newTestServer("")

	body, _ := json.Marshal(reinforceRequest{PatternID: "BTCUSD_0_999", Outcome: 1.0})
	req := httptest.NewRequest(http.MethodPost, "/api/memory/reinforce", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	s.handleReinforce(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (miss is not an error)", rec.Code)
	}
	if resp := decodeBody(t, rec); resp["updated"] != false {
		t.Errorf("updated = %v, want false for unknown pattern", resp["updated"])
	}
}

func TestMemoryQueryEndpoint(t *testing.T) {
	s := newTestServer("")

	sig := memory.Signal{
		Pressure: 2.0, Direction: "BULLISH", VolumeSurgeRatio: 1.5,
		Strength: 1.1, Confidence: 0.7, MarketStructure: "NORMAL",
	}
	s.learner.ProcessSignal("BTCUSD", sig)

	body, _ := json.Marshal(memoryQueryRequest{
		Symbol: "BTCUSD",
		Features: map[string]interface{}{
			"pressure":         2.0,
			"volume_surge":     1.5,
			"signal_strength":  1.1,
			"confidence":       0.7,
			"momentum":         "BULLISH",
			"market_structure": "NORMAL",
		},
	})
	req := httptest.NewRequest(http.MethodPost, "/api/memory/query", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	s.handleMemoryQuery(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if resp := decodeBody(t, rec); resp["count"].(float64) != 1 {
		t.Errorf("count = %v, want 1 identical stored pattern", resp["count"])
	}
}

func TestMemoryQueryRequiresSymbol(t *testing.T) {
	s := newTestServer("")

	req := httptest.NewRequest(http.MethodPost, "/api/memory/query", strings.NewReader(`{"features":{}}`))
	rec := httptest.NewRecorder()

	s.handleMemoryQuery(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 without symbol", rec.Code)
	}
}

func TestMemoryStatsEndpoint(t *testing.T) {
	s := newTestServer("")
	s.learner.ProcessSignal("BTCUSD", memory.Signal{Confidence: 0.7, MarketStructure: "NORMAL"})

	req := httptest.NewRequest(http.MethodGet, "/api/memory/stats?symbol=BTCUSD", nil)
	rec := httptest.NewRecorder()

	s.handleMemoryStats(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := decodeBody(t, rec)
	stats, ok := body["statistics"].(map[string]interface{})
	if !ok {
		t.Fatalf("missing statistics: %v", body)
	}
	if stats["total_patterns"].(float64) != 1 {
		t.Errorf("total_patterns = %v, want 1", stats["total_patterns"])
	}
}

func TestSignalHistoryWithoutDatabase(t *testing.T) {
	s := newTestServer("")

	req := httptest.NewRequest(http.MethodGet, "/api/signals/history", nil)
	rec := httptest.NewRecorder()

	s.handleSignalHistory(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503 without database", rec.Code)
	}
}

func TestListenerRegistration(t *testing.T) {
	s := newTestServer("")

	req := httptest.NewRequest(http.MethodPost, "/api/config/listeners",
		strings.NewReader(`{"url":"http://example.com/hook","symbols":["BTCUSD"]}`))
	rec := httptest.NewRecorder()

	s.handleRegisterListener(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/config/listeners", nil)
	rec = httptest.NewRecorder()

	s.handleGetListeners(rec, req)

	if body := decodeBody(t, rec); body["count"].(float64) != 1 {
		t.Errorf("listener count = %v, want 1", body["count"])
	}
}
