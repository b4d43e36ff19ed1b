package api

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"time"

	"amoeba-trading/database"
	"amoeba-trading/memory"
	"amoeba-trading/models"
	"amoeba-trading/notifications"
)

// handleTradingViewWebhook ingests TradingView alerts. Payloads are parsed
// leniently: a JSON object, a JSON-encoded string wrapping an object, or
// plain text all produce an alert, with neutral defaults for anything
// missing.
func (s *Server) handleTradingViewWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "failed to read request body", err)
		return
	}

	if !s.verifySignature(r, body) {
		respondWithError(w, http.StatusUnauthorized, "invalid webhook signature", nil)
		return
	}

	raw := parsePayload(body)
	alert := models.ParseAlert(raw)

	assessment := s.assessor.Assess(alert)

	result := s.learner.ProcessSignal(alert.Symbol, memory.Signal{
		Pressure:         alert.Pressure,
		Direction:        alert.Direction,
		VolumeSurgeRatio: alert.VolumeSurgeRatio,
		Strength:         alert.Strength,
		Confidence:       alert.Confidence,
		MarketStructure:  alert.MarketStructure,
	})

	log.Printf("🍯 Food source assessment: %s score=%.1f/10 sustainability=%s duration=%s",
		alert.Symbol, assessment.Score, assessment.Sustainability, assessment.PredictedDuration)

	response := map[string]interface{}{
		"status":     "success",
		"alert_type": alert.AlertType,
		"symbol":     alert.Symbol,
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
		"food_source_assessment": map[string]interface{}{
			"score":              assessment.Score,
			"grade":              assessment.Rationale["grade"],
			"sustainability":     assessment.Sustainability,
			"predicted_duration": assessment.PredictedDuration,
			"quantity":           assessment.Quantity,
			"quality":            assessment.Quality,
			"confidence":         assessment.Confidence,
			"details":            assessment.Rationale,
		},
		"pattern_learning": result,
	}

	s.broker.Broadcast("signal_processed", response)
	s.hub.Broadcast("signal_processed", response)

	if s.notifier != nil {
		s.notifier.SendAlert(&notifications.AlertPayload{
			Timestamp:          time.Now().UTC(),
			Symbol:             alert.Symbol,
			Direction:          alert.Direction,
			PatternID:          result.PatternID,
			EnhancedConfidence: result.EnhancedConfidence,
			FoodScore:          assessment.Score,
			Grade:              assessment.Rationale["grade"],
			Recommendation:     result.Recommendation,
			Message:            alert.Message,
		})
	}

	if s.repo != nil {
		rec := &database.SignalRecord{
			ProcessedAt:        time.Now().UTC(),
			Symbol:             alert.Symbol,
			PatternID:          result.PatternID,
			Source:             "WEBHOOK",
			Direction:          alert.Direction,
			RawConfidence:      alert.Confidence,
			EnhancedConfidence: result.EnhancedConfidence,
			FoodScore:          assessment.Score,
			Sustainability:     assessment.Sustainability,
			Recommendation:     result.Recommendation,
		}
		if err := s.repo.SaveSignalRecord(rec); err != nil {
			log.Printf("⚠️  Failed to persist webhook signal: %v", err)
		}
	}

	respondJSON(w, http.StatusOK, response)
}

// verifySignature checks the HMAC-SHA256 signature header when a secret is
// configured. Without a secret every delivery is accepted.
func (s *Server) verifySignature(r *http.Request, body []byte) bool {
	if s.webhookSecret == "" {
		return true
	}

	signature := r.Header.Get("X-Webhook-Signature")
	if signature == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(s.webhookSecret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(signature), []byte(expected))
}

// parsePayload coerces whatever arrived into a key/value map. Plain text
// and malformed JSON become a bare message entry.
func parsePayload(body []byte) map[string]interface{} {
	if len(body) == 0 {
		return map[string]interface{}{"message": "Empty payload received"}
	}

	var obj map[string]interface{}
	if err := json.Unmarshal(body, &obj); err == nil {
		return obj
	}

	// TradingView sometimes double-encodes the alert as a JSON string.
	var inner string
	if err := json.Unmarshal(body, &inner); err == nil {
		if err := json.Unmarshal([]byte(inner), &obj); err == nil {
			return obj
		}
		return map[string]interface{}{"message": inner}
	}

	return map[string]interface{}{"message": string(body)}
}

// handleWebhookStatus reports webhook system status
func (s *Server) handleWebhookStatus(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":                    "active",
		"version":                   APIVersion,
		"webhook_secret_configured": s.webhookSecret != "",
	})
}

// handleWebhookTest verifies webhook routing
func (s *Server) handleWebhookTest(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"message":  "Webhook router is working",
		"endpoint": "/api/v1/webhooks/tradingview",
		"status":   "ready",
	})
}

// handleWebhookDebug echoes the incoming request for integration debugging
func (s *Server) handleWebhookDebug(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(io.LimitReader(r.Body, 1<<20))

	headers := make(map[string]string)
	for name := range r.Header {
		headers[name] = r.Header.Get(name)
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"method":       r.Method,
		"url":          r.URL.String(),
		"headers":      headers,
		"raw_body":     string(body),
		"content_type": r.Header.Get("Content-Type"),
	})
}
