package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"amoeba-trading/memory"
	"amoeba-trading/notifications"
)

// handleMemoryStats reports pattern memory statistics, for one symbol when
// ?symbol= is given, otherwise for every active symbol.
func (s *Server) handleMemoryStats(w http.ResponseWriter, r *http.Request) {
	bank := s.learner.Bank()

	if symbol := r.URL.Query().Get("symbol"); symbol != "" {
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"symbol":     symbol,
			"statistics": bank.Statistics(symbol),
		})
		return
	}

	all := make(map[string]memory.Statistics)
	for _, symbol := range bank.ActiveSymbols() {
		all[symbol] = bank.Statistics(symbol)
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"active_symbols": len(all),
		"statistics":     all,
	})
}

// handleMemorySymbols lists symbols currently holding live patterns
func (s *Server) handleMemorySymbols(w http.ResponseWriter, r *http.Request) {
	symbols := s.learner.Bank().ActiveSymbols()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":   len(symbols),
		"symbols": symbols,
	})
}

type memoryQueryRequest struct {
	Symbol    string                 `json:"symbol"`
	Features  map[string]interface{} `json:"features"`
	Threshold float64                `json:"threshold,omitempty"`
}

type memoryMatch struct {
	Pattern   memory.Pattern `json:"pattern"`
	Relevance float64        `json:"relevance"`
}

// handleMemoryQuery retrieves stored patterns similar to an ad-hoc
// environmental state, without storing anything.
func (s *Server) handleMemoryQuery(w http.ResponseWriter, r *http.Request) {
	var req memoryQueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid JSON body", err)
		return
	}
	if req.Symbol == "" {
		respondWithError(w, http.StatusBadRequest, "symbol is required", nil)
		return
	}

	matches := s.learner.Bank().QuerySimilar(req.Symbol, toFeatureVector(req.Features), req.Threshold)

	out := make([]memoryMatch, 0, len(matches))
	for _, m := range matches {
		out = append(out, memoryMatch{Pattern: m.Pattern, Relevance: m.Relevance})
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"symbol":  req.Symbol,
		"count":   len(out),
		"matches": out,
	})
}

// toFeatureVector maps decoded JSON values onto feature variants: numbers,
// strings and booleans become numeric, category and flag features. Anything
// else is dropped.
func toFeatureVector(raw map[string]interface{}) memory.FeatureVector {
	features := make(memory.FeatureVector, len(raw))
	for key, value := range raw {
		switch v := value.(type) {
		case float64:
			features[key] = memory.Number(v)
		case string:
			features[key] = memory.Category(v)
		case bool:
			features[key] = memory.Flag(v)
		}
	}
	return features
}

type reinforceRequest struct {
	PatternID string  `json:"pattern_id"`
	Outcome   float64 `json:"outcome"`
}

// handleReinforce feeds an observed trade outcome back into the pattern that
// produced the signal.
func (s *Server) handleReinforce(w http.ResponseWriter, r *http.Request) {
	var req reinforceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid JSON body", err)
		return
	}
	if req.PatternID == "" {
		respondWithError(w, http.StatusBadRequest, "pattern_id is required", nil)
		return
	}

	updated := s.learner.Bank().Reinforce(req.PatternID, req.Outcome)

	if updated && s.repo != nil {
		if err := s.repo.UpdateOutcome(req.PatternID, req.Outcome); err != nil {
			respondWithError(w, http.StatusInternalServerError, "failed to record outcome", err)
			return
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"pattern_id": req.PatternID,
		"updated":    updated,
	})
}

// handleSignalHistory returns recent processed signals from the audit log
func (s *Server) handleSignalHistory(w http.ResponseWriter, r *http.Request) {
	if s.repo == nil {
		respondWithError(w, http.StatusServiceUnavailable, "signal history requires the database", nil)
		return
	}

	symbol := r.URL.Query().Get("symbol")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	records, err := s.repo.RecentSignals(symbol, limit)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to load signal history", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":   len(records),
		"signals": records,
	})
}

// handleGetListeners lists the registered notification listeners
func (s *Server) handleGetListeners(w http.ResponseWriter, r *http.Request) {
	listeners := s.notifier.Listeners()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":     len(listeners),
		"listeners": listeners,
	})
}

// handleRegisterListener adds a notification listener at runtime
func (s *Server) handleRegisterListener(w http.ResponseWriter, r *http.Request) {
	var l notifications.Listener
	if err := json.NewDecoder(r.Body).Decode(&l); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid JSON body", err)
		return
	}

	if err := s.notifier.Register(l); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error(), err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"status":   "registered",
		"listener": l,
	})
}
