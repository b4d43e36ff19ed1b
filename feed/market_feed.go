// Package feed polls free market data APIs and pushes the ticks through the
// assessment and pattern learning pipeline, as if they were inbound alerts.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"net/http"
	"time"

	"amoeba-trading/cache"
	"amoeba-trading/database"
	"amoeba-trading/intelligence"
	"amoeba-trading/memory"
	"amoeba-trading/models"
	"amoeba-trading/notifications"
	"amoeba-trading/realtime"
	"amoeba-trading/websocket"
)

const coingeckoBase = "https://api.coingecko.com/api/v3"

// defaultThreshold is the environmental pressure level treated as "active".
const defaultThreshold = 1.8

// MarketFeed periodically fetches real market data and forwards it through
// the intelligence pipeline.
type MarketFeed struct {
	symbols  map[string]string // display symbol -> coingecko coin id
	interval time.Duration

	assessor *intelligence.Assessor
	learner  *memory.Learner
	broker   *realtime.Broker
	hub      *websocket.Hub
	notifier *notifications.WebhookManager
	redis    *cache.RedisClient
	repo     *database.SignalRepository

	client *http.Client
	done   chan bool
}

// New creates a market feed poller. redis and repo may be nil.
func New(symbols map[string]string, interval time.Duration,
	assessor *intelligence.Assessor, learner *memory.Learner,
	broker *realtime.Broker, hub *websocket.Hub,
	notifier *notifications.WebhookManager,
	redis *cache.RedisClient, repo *database.SignalRepository) *MarketFeed {

	return &MarketFeed{
		symbols:  symbols,
		interval: interval,
		assessor: assessor,
		learner:  learner,
		broker:   broker,
		hub:      hub,
		notifier: notifier,
		redis:    redis,
		repo:     repo,
		client:   &http.Client{Timeout: 10 * time.Second},
		done:     make(chan bool),
	}
}

// Start begins the polling loop
func (f *MarketFeed) Start() {
	log.Println("🌊 Market data feed started")

	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	// Initial run
	f.poll()

	for {
		select {
		case <-ticker.C:
			f.poll()
		case <-f.done:
			log.Println("🌊 Market data feed stopped")
			return
		}
	}
}

// Stop stops the polling loop
func (f *MarketFeed) Stop() {
	f.done <- true
}

func (f *MarketFeed) poll() {
	for symbol, coinID := range f.symbols {
		tick, err := f.fetchMarketData(symbol, coinID)
		if err != nil {
			log.Printf("❌ Error fetching %s: %v", symbol, err)
			continue
		}

		f.process(symbol, tick)
	}
}

// marketTick is one normalized market data observation.
type marketTick struct {
	Price          float64
	PriceChange24h float64
	Volume24h      float64
	Alert          *models.Alert
}

func (f *MarketFeed) process(symbol string, tick *marketTick) {
	assessment := f.assessor.Assess(tick.Alert)

	result := f.learner.ProcessSignal(symbol, memory.Signal{
		Pressure:         tick.Alert.Pressure,
		Direction:        tick.Alert.Direction,
		VolumeSurgeRatio: tick.Alert.VolumeSurgeRatio,
		Strength:         tick.Alert.Strength,
		Confidence:       tick.Alert.Confidence,
		MarketStructure:  tick.Alert.MarketStructure,
	})

	update := map[string]interface{}{
		"type":                   "market_update",
		"symbol":                 symbol,
		"price":                  tick.Price,
		"price_change_24h":       tick.PriceChange24h,
		"volume_24h":             tick.Volume24h,
		"environmental_pressure": tick.Alert.Pressure,
		"threshold":              tick.Alert.Threshold,
		"direction":              tick.Alert.Direction,
		"food_source": map[string]interface{}{
			"score":              assessment.Score,
			"grade":              assessment.Rationale["grade"],
			"quantity":           assessment.Quantity,
			"quality":            assessment.Quality,
			"sustainability":     assessment.Sustainability,
			"predicted_duration": assessment.PredictedDuration,
		},
		"pattern_learning": map[string]interface{}{
			"pattern_id":          result.PatternID,
			"enhanced_confidence": result.EnhancedConfidence,
			"recommendation":      result.Recommendation,
		},
		"data_source": "CoinGecko API",
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
	}

	f.broker.Broadcast("market_update", update)
	f.hub.Broadcast("market_update", update)

	if f.redis != nil {
		if err := f.redis.Publish(context.Background(), "amoeba:market_updates", update); err != nil {
			log.Printf("⚠️  Redis publish failed: %v", err)
		}
	}

	if f.notifier != nil {
		f.notifier.SendAlert(&notifications.AlertPayload{
			Timestamp:          time.Now().UTC(),
			Symbol:             symbol,
			Direction:          tick.Alert.Direction,
			PatternID:          result.PatternID,
			EnhancedConfidence: result.EnhancedConfidence,
			FoodScore:          assessment.Score,
			Grade:              assessment.Rationale["grade"],
			Recommendation:     result.Recommendation,
			Message: fmt.Sprintf("📈 %s: $%.2f | 24h: %+.2f%% | Score: %.1f/10",
				symbol, tick.Price, tick.PriceChange24h, assessment.Score),
		})
	}

	if f.repo != nil {
		rec := &database.SignalRecord{
			ProcessedAt:        time.Now().UTC(),
			Symbol:             symbol,
			PatternID:          result.PatternID,
			Source:             "FEED",
			Direction:          tick.Alert.Direction,
			RawConfidence:      tick.Alert.Confidence,
			EnhancedConfidence: result.EnhancedConfidence,
			FoodScore:          assessment.Score,
			Sustainability:     assessment.Sustainability,
			Recommendation:     result.Recommendation,
		}
		if err := f.repo.SaveSignalRecord(rec); err != nil {
			log.Printf("⚠️  Failed to persist feed signal for %s: %v", symbol, err)
		}
	}

	log.Printf("📈 %s: $%.2f | 24h: %+.2f%% | Score: %.1f/10 | Confidence: %.2f",
		symbol, tick.Price, tick.PriceChange24h, assessment.Score, result.EnhancedConfidence)
}

// fetchMarketData pulls current price data from CoinGecko and derives the
// environmental signal fields from it.
func (f *MarketFeed) fetchMarketData(symbol, coinID string) (*marketTick, error) {
	url := fmt.Sprintf("%s/simple/price?ids=%s&vs_currencies=usd&include_24hr_change=true&include_24hr_vol=true",
		coingeckoBase, coinID)

	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; AmoebaTrading/1.0)")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var payload map[string]struct {
		USD          float64 `json:"usd"`
		USD24hChange float64 `json:"usd_24h_change"`
		USD24hVol    float64 `json:"usd_24h_vol"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}

	coin, ok := payload[coinID]
	if !ok {
		return nil, fmt.Errorf("no data for coin %s", coinID)
	}

	return &marketTick{
		Price:          coin.USD,
		PriceChange24h: coin.USD24hChange,
		Volume24h:      coin.USD24hVol,
		Alert:          deriveAlert(symbol, coin.USD24hChange, coin.USD24hVol),
	}, nil
}

// deriveAlert maps raw 24h market movement onto the signal fields the
// assessment and learning pipeline expect.
func deriveAlert(symbol string, change24h, volume24h float64) *models.Alert {
	volatilityPressure := math.Abs(change24h) / 10.0
	volumePressure := math.Min(volume24h/1_000_000_000, 3.0) // volume in billions, capped
	pressure := (volatilityPressure + volumePressure) / 2

	direction := models.DirectionNeutral
	if change24h > 2 {
		direction = models.DirectionBullish
	} else if change24h < -2 {
		direction = models.DirectionBearish
	}

	structure := models.StructureNormal
	if math.Abs(change24h) > 3 {
		structure = models.StructureTrending
	}

	resistance := "NORMAL"
	if math.Abs(change24h) > 5 {
		resistance = "HIGH"
	}

	return &models.Alert{
		Symbol:    symbol,
		Exchange:  "CoinGecko",
		AlertType: "MARKET_FEED",
		Direction: direction,
		Strength:  pressure / defaultThreshold,
		// Bigger moves carry more conviction, capped at 0.9
		Confidence: math.Min(0.9, 0.5+math.Abs(change24h)/20),
		Pressure:   pressure,
		Threshold:  defaultThreshold,

		VolumeSurgeRatio:      math.Min(volumePressure, 2.0),
		VolumeTrendStrength:   1.0,
		InstitutionalHours:    isInstitutionalHours(time.Now().UTC()),
		RangeExpansion:        1.0 + math.Abs(change24h)/100,
		ResistanceLevel:       resistance,
		ConsistentAdvancement: change24h > 1,
		ConsistentDecline:     change24h < -1,
		MarketStructure:       structure,
	}
}

// isInstitutionalHours reports whether the London or New York sessions are
// open.
func isInstitutionalHours(t time.Time) bool {
	hour := t.Hour()
	return hour >= 7 && hour <= 22
}
