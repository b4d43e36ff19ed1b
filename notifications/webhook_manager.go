// Package notifications delivers processed signal results to registered
// listener webhooks.
package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"amoeba-trading/cache"
)

const listenerCacheKey = "notify_listeners"

// Listener is one outbound webhook target with its filters.
type Listener struct {
	URL           string   `json:"url"`
	Symbols       []string `json:"symbols,omitempty"`        // empty = all symbols
	MinConfidence float64  `json:"min_confidence,omitempty"` // 0 = no floor
	AuthHeader    string   `json:"auth_header,omitempty"`
	AuthValue     string   `json:"auth_value,omitempty"`
	RetryCount    int      `json:"retry_count,omitempty"`
	RetryDelaySec int      `json:"retry_delay_seconds,omitempty"`
}

// AlertPayload is the JSON body delivered to listeners.
type AlertPayload struct {
	Timestamp          time.Time              `json:"timestamp"`
	Symbol             string                 `json:"symbol"`
	Direction          string                 `json:"direction"`
	PatternID          string                 `json:"pattern_id"`
	EnhancedConfidence float64                `json:"enhanced_confidence"`
	FoodScore          float64                `json:"food_score"`
	Grade              string                 `json:"grade"`
	Recommendation     string                 `json:"recommendation"`
	Message            string                 `json:"message"`
	Metadata           map[string]interface{} `json:"metadata,omitempty"`
}

// WebhookManager fans processed signals out to listeners.
type WebhookManager struct {
	mu        sync.RWMutex
	listeners []Listener
	redis     *cache.RedisClient
	client    *http.Client
}

// NewWebhookManager creates a manager seeded with listeners for the given
// URLs. Previously registered listeners are restored from Redis when
// available.
func NewWebhookManager(seedURLs []string, redis *cache.RedisClient) *WebhookManager {
	wm := &WebhookManager{
		redis: redis,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	for _, url := range seedURLs {
		wm.listeners = append(wm.listeners, Listener{URL: url, RetryCount: 1})
	}

	// Restore runtime-registered listeners from the previous process life.
	if redis != nil {
		var restored []Listener
		if err := redis.Get(context.Background(), listenerCacheKey, &restored); err == nil {
			wm.listeners = append(wm.listeners, restored...)
			log.Printf("🔔 Restored %d notification listeners from cache", len(restored))
		}
	}

	return wm
}

// Register adds a listener at runtime.
func (wm *WebhookManager) Register(l Listener) error {
	if l.URL == "" {
		return fmt.Errorf("listener url is required")
	}
	if l.RetryCount <= 0 {
		l.RetryCount = 1
	}

	wm.mu.Lock()
	wm.listeners = append(wm.listeners, l)
	snapshot := make([]Listener, len(wm.listeners))
	copy(snapshot, wm.listeners)
	wm.mu.Unlock()

	if wm.redis != nil {
		_ = wm.redis.Set(context.Background(), listenerCacheKey, snapshot, 0)
	}
	return nil
}

// Listeners returns a copy of the current listener set.
func (wm *WebhookManager) Listeners() []Listener {
	wm.mu.RLock()
	defer wm.mu.RUnlock()
	out := make([]Listener, len(wm.listeners))
	copy(out, wm.listeners)
	return out
}

// SendAlert delivers the payload to every listener whose filters match.
// Delivery runs asynchronously per listener.
func (wm *WebhookManager) SendAlert(payload *AlertPayload) {
	listeners := wm.Listeners()
	if len(listeners) == 0 {
		return
	}

	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("⚠️  Failed to marshal notification payload: %v", err)
		return
	}

	for _, l := range listeners {
		if shouldSend(l, payload) {
			go wm.deliver(l, body)
		}
	}
}

func shouldSend(l Listener, payload *AlertPayload) bool {
	if len(l.Symbols) > 0 {
		found := false
		for _, s := range l.Symbols {
			if s == payload.Symbol {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if l.MinConfidence > 0 && payload.EnhancedConfidence < l.MinConfidence {
		return false
	}

	return true
}

func (wm *WebhookManager) deliver(l Listener, body []byte) {
	maxRetries := l.RetryCount
	if maxRetries <= 0 {
		maxRetries = 1
	}

	for attempt := 1; attempt <= maxRetries; attempt++ {
		req, err := http.NewRequest(http.MethodPost, l.URL, bytes.NewBuffer(body))
		if err != nil {
			log.Printf("⚠️  Invalid notification request for %s: %v", l.URL, err)
			return
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("User-Agent", "Amoeba-Trading/1.0")
		if l.AuthHeader != "" {
			req.Header.Set(l.AuthHeader, l.AuthValue)
		}

		resp, err := wm.client.Do(req)
		if err == nil && resp.StatusCode >= 200 && resp.StatusCode < 300 {
			resp.Body.Close()
			return
		}
		if resp != nil {
			resp.Body.Close()
		}

		if attempt < maxRetries {
			delay := l.RetryDelaySec
			if delay <= 0 {
				delay = 5
			}
			time.Sleep(time.Duration(delay) * time.Second)
		}
	}

	log.Printf("⚠️  Notification delivery to %s failed after %d attempts", l.URL, maxRetries)
}
