package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentfin/ledgersync/internal/domain"
)

func mustDec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "test-token", 2*time.Second)
}

func TestCreateTransactionDecodesEnvelope(t *testing.T) {
	id := uuid.New()
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/transactions", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		var data TransactionData
		require.NoError(t, json.NewDecoder(r.Body).Decode(&data))
		assert.Equal(t, "weekly groceries", data.Title)

		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data": map[string]any{
				"id":          id,
				"title":       data.Title,
				"amount":      "30",
				"type":        "expense",
				"asset_id":    data.AssetID,
				"category_id": data.CategoryID,
				"date":        "2025-06-15",
			},
		})
	})

	tx, err := client.CreateTransaction(context.Background(), TransactionData{
		Title:      "weekly groceries",
		Amount:     mustDec("30"),
		Type:       "expense",
		AssetID:    uuid.New(),
		CategoryID: uuid.New(),
		Date:       "2025-06-15",
	})
	require.NoError(t, err)
	assert.Equal(t, id, tx.RemoteID)
	assert.Equal(t, domain.TransactionTypeExpense, tx.Type)
	assert.True(t, tx.Amount.Equal(mustDec("30")))
	assert.Equal(t, 2025, tx.Date.Year())
}

func TestSuccessFalseIsRemoteRejection(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]any{"success": false, "message": "amount out of range"})
	})

	err := client.DeleteTransaction(context.Background(), uuid.New())
	require.ErrorIs(t, err, domain.ErrRemoteRejected)

	var re *RemoteError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "amount out of range", re.Message)
	assert.Equal(t, http.StatusUnprocessableEntity, re.Status)
}

func TestDuplicateAssetNameIsFriendly(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]any{"success": false, "message": "asset with this name already exists"})
	})

	_, err := client.CreateAsset(context.Background(), AssetData{Name: "Checking", Type: "bank"})
	require.ErrorIs(t, err, domain.ErrAssetNameTaken)
}

func TestUpdateAssetBalanceIsNarrow(t *testing.T) {
	var got map[string]json.RawMessage
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Contains(t, r.URL.Path, "/balance")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(map[string]any{"success": true})
	})

	require.NoError(t, client.UpdateAssetBalance(context.Background(), uuid.New(), mustDec("70")))
	assert.Len(t, got, 1, "the fallback write carries the balance field only")
	_, ok := got["balance"]
	assert.True(t, ok)
}

func TestGetAssetTransfersResolvesBothRefShapes(t *testing.T) {
	fromID := uuid.New()
	toID := uuid.New()
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data": []map[string]any{{
				"id":        uuid.New(),
				"from_asset": fromID, // bare id
				"to_asset": map[string]any{ // embedded object
					"id": toID, "name": "Savings", "type": "bank", "balance": "50",
				},
				"amount":      "20",
				"date":        "2025-06-15",
				"description": "monthly savings",
			}},
		})
	})

	transfers, err := client.GetAssetTransfers(context.Background())
	require.NoError(t, err)
	require.Len(t, transfers, 1)

	tr := transfers[0]
	assert.Equal(t, fromID, tr.FromAsset.ResolvedID())
	assert.Nil(t, tr.FromAsset.Asset)
	require.NotNil(t, tr.ToAsset.Asset)
	assert.Equal(t, toID, tr.ToAsset.ResolvedID())
	assert.Equal(t, "Savings", tr.ToAsset.Asset.Name)
}

func TestGetTransactionsSendsFilters(t *testing.T) {
	assetID := uuid.New()
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, assetID.String(), r.URL.Query().Get("asset_id"))
		assert.Equal(t, "true", r.URL.Query().Get("include_deleted"))
		json.NewEncoder(w).Encode(map[string]any{"success": true, "data": []any{}})
	})

	_, err := client.GetTransactions(context.Background(), TransactionFilters{
		AssetID:        &assetID,
		IncludeDeleted: true,
	})
	require.NoError(t, err)
}

func TestPreferenceRoundTrip(t *testing.T) {
	var savedCode, savedUser string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			assert.Equal(t, "user-1", r.URL.Query().Get("user"))
			json.NewEncoder(w).Encode(map[string]any{"success": true, "data": map[string]string{"currency": "EUR"}})
		case http.MethodPut:
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			savedCode, savedUser = body["currency"], body["user"]
			json.NewEncoder(w).Encode(map[string]any{"success": true})
		}
	})

	ctx := context.Background()
	got, err := client.GetUserCurrencyPreference(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "EUR", got)

	require.NoError(t, client.SaveUserCurrencyPreference(ctx, "JPY", "user-1"))
	assert.Equal(t, "JPY", savedCode)
	assert.Equal(t, "user-1", savedUser)
}
