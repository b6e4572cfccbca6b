package main

import (
	"encoding/json"
	"net/http"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/momentfin/ledgersync/internal/logging"
)

type server struct {
	store *store
	hub   *hub
}

func respond(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	payload := map[string]any{"success": true}
	if data != nil {
		payload["data"] = data
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "message": message})
}

func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}

func (s *server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("POST /api/v1/transactions", s.handleCreateTransaction)
	mux.HandleFunc("GET /api/v1/transactions", s.handleListTransactions)
	mux.HandleFunc("PATCH /api/v1/transactions/{id}", s.handleUpdateTransaction)
	mux.HandleFunc("DELETE /api/v1/transactions/{id}", s.handleDeleteTransaction)
	mux.HandleFunc("POST /api/v1/transactions/{id}/restore", s.handleRestoreTransaction)
	mux.HandleFunc("DELETE /api/v1/transactions/{id}/permanent", s.handlePurgeTransaction)

	mux.HandleFunc("GET /api/v1/assets", s.handleListAssets)
	mux.HandleFunc("POST /api/v1/assets", s.handleCreateAsset)
	mux.HandleFunc("PUT /api/v1/assets/{id}", s.handleUpdateAsset)
	mux.HandleFunc("PATCH /api/v1/assets/{id}/balance", s.handlePatchBalance)

	mux.HandleFunc("POST /api/v1/transfers", s.handleCreateTransfer)
	mux.HandleFunc("GET /api/v1/transfers", s.handleListTransfers)

	mux.HandleFunc("GET /api/v1/preferences/currency", s.handleGetPreference)
	mux.HandleFunc("PUT /api/v1/preferences/currency", s.handleSavePreference)

	mux.HandleFunc("GET /ws", s.hub.handleConnect)

	return mux
}

func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respond(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var rec txRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		respondError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if !rec.Amount.IsPositive() {
		respondError(w, http.StatusUnprocessableEntity, "amount must be greater than zero")
		return
	}
	respond(w, http.StatusCreated, s.store.createTransaction(&rec))
}

func (s *server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	s.store.mu.Lock()
	out := make([]*txRecord, 0, len(s.store.transactions))
	for _, rec := range s.store.transactions {
		if rec.IsDeleted && r.URL.Query().Get("include_deleted") != "true" {
			continue
		}
		out = append(out, rec)
	}
	s.store.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	respond(w, http.StatusOK, out)
}

func (s *server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var partial map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&partial); err != nil {
		respondError(w, http.StatusBadRequest, "invalid body")
		return
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	rec, found := s.store.transactions[id]
	if !found {
		respondError(w, http.StatusNotFound, "transaction not found")
		return
	}

	// The mock applies the patch verbatim; balance arithmetic under edits is
	// the engine's concern, not this stub's.
	buf, _ := json.Marshal(rec)
	var merged map[string]json.RawMessage
	_ = json.Unmarshal(buf, &merged)
	for k, v := range partial {
		merged[k] = v
	}
	buf, _ = json.Marshal(merged)
	if err := json.Unmarshal(buf, rec); err != nil {
		respondError(w, http.StatusBadRequest, "invalid field value")
		return
	}
	respond(w, http.StatusOK, rec)
}

func (s *server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if !s.store.setTransactionDeleted(id, true) {
		respondError(w, http.StatusNotFound, "transaction not found or already deleted")
		return
	}
	respond(w, http.StatusOK, nil)
}

func (s *server) handleRestoreTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if !s.store.setTransactionDeleted(id, false) {
		respondError(w, http.StatusNotFound, "transaction not found or not deleted")
		return
	}
	respond(w, http.StatusOK, nil)
}

func (s *server) handlePurgeTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if !s.store.purgeTransaction(id) {
		respondError(w, http.StatusNotFound, "transaction not found")
		return
	}
	respond(w, http.StatusOK, nil)
}

func (s *server) handleListAssets(w http.ResponseWriter, _ *http.Request) {
	s.store.mu.Lock()
	out := make([]*assetRecord, 0, len(s.store.assets))
	for _, a := range s.store.assets {
		out = append(out, a)
	}
	s.store.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	respond(w, http.StatusOK, out)
}

func (s *server) handleCreateAsset(w http.ResponseWriter, r *http.Request) {
	var rec assetRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		respondError(w, http.StatusBadRequest, "invalid body")
		return
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	for _, a := range s.store.assets {
		if a.Name == rec.Name && !a.IsDeleted {
			respondError(w, http.StatusConflict, "asset with this name already exists")
			return
		}
	}
	rec.ID = uuid.New()
	s.store.assets[rec.ID] = &rec
	respond(w, http.StatusCreated, &rec)
}

func (s *server) handleUpdateAsset(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var body assetRecord
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid body")
		return
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	rec, found := s.store.assets[id]
	if !found {
		respondError(w, http.StatusNotFound, "asset not found")
		return
	}
	for _, a := range s.store.assets {
		if a.ID != id && a.Name == body.Name && !a.IsDeleted {
			respondError(w, http.StatusConflict, "asset with this name already exists")
			return
		}
	}
	rec.Name = body.Name
	rec.Type = body.Type
	rec.Balance = body.Balance
	respond(w, http.StatusOK, rec)
}

func (s *server) handlePatchBalance(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var body struct {
		Balance decimal.Decimal `json:"balance"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid body")
		return
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	rec, found := s.store.assets[id]
	if !found {
		respondError(w, http.StatusNotFound, "asset not found")
		return
	}
	rec.Balance = body.Balance
	respond(w, http.StatusOK, rec)
}

func (s *server) handleCreateTransfer(w http.ResponseWriter, r *http.Request) {
	var rec transferRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		respondError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if !rec.Amount.IsPositive() {
		respondError(w, http.StatusUnprocessableEntity, "amount must be greater than zero")
		return
	}
	if rec.FromAsset == rec.ToAsset {
		respondError(w, http.StatusUnprocessableEntity, "cannot transfer to the same account")
		return
	}
	respond(w, http.StatusCreated, s.store.createTransfer(&rec))
}

func (s *server) handleListTransfers(w http.ResponseWriter, _ *http.Request) {
	s.store.mu.Lock()
	out := make([]*transferRecord, len(s.store.transfers))
	copy(out, s.store.transfers)
	s.store.mu.Unlock()
	respond(w, http.StatusOK, out)
}

func (s *server) handleGetPreference(w http.ResponseWriter, r *http.Request) {
	user := r.URL.Query().Get("user")

	s.store.mu.Lock()
	code := s.store.preferences[user]
	s.store.mu.Unlock()

	respond(w, http.StatusOK, map[string]string{"currency": code})
}

// handleSavePreference persists the preference and broadcasts it to every
// session the user has connected, the saving one included. The engine's echo
// suppression is what keeps that loop from spinning.
func (s *server) handleSavePreference(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Currency string `json:"currency"`
		User     string `json:"user"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Currency == "" {
		respondError(w, http.StatusBadRequest, "invalid body")
		return
	}

	s.store.mu.Lock()
	s.store.preferences[body.User] = body.Currency
	s.store.mu.Unlock()

	s.hub.broadcast(body.User, pushMessage{Preference: "currency", Value: body.Currency})
	logging.FromContext(r.Context()).Info("preference saved and broadcast",
		"user", body.User,
		"currency", body.Currency,
	)
	respond(w, http.StatusOK, nil)
}
