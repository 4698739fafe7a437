package api

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "github.com/yt20chill/SmileCoin-sub001/pkg/app/errors"
	"github.com/yt20chill/SmileCoin-sub001/pkg/gateway"
	"github.com/yt20chill/SmileCoin-sub001/pkg/indexer"
	"github.com/yt20chill/SmileCoin-sub001/pkg/txstore"
)

type mockGateway struct {
	registerTouristFunc func(ctx context.Context, address, originCountry string, arrivalTime, departureTime int64) (*gateway.TxResult, error)
	transferFunc        func(ctx context.Context, touristID, restaurantAddress string, amount *big.Int) (*gateway.TxResult, error)
}

func (m *mockGateway) RegisterTourist(ctx context.Context, address, originCountry string, arrivalTime, departureTime int64) (*gateway.TxResult, error) {
	if m.registerTouristFunc != nil {
		return m.registerTouristFunc(ctx, address, originCountry, arrivalTime, departureTime)
	}
	return &gateway.TxResult{Hash: "0xabc", BlockNumber: 100, GasUsed: 80000}, nil
}

func (m *mockGateway) RegisterRestaurant(context.Context, string, string) (*gateway.TxResult, error) {
	return &gateway.TxResult{Hash: "0xabc"}, nil
}

func (m *mockGateway) IssueDailyCoins(context.Context, string) (*gateway.TxResult, error) {
	return &gateway.TxResult{Hash: "0xabc"}, nil
}

func (m *mockGateway) TransferToRestaurant(ctx context.Context, touristID, restaurantAddress string, amount *big.Int) (*gateway.TxResult, error) {
	if m.transferFunc != nil {
		return m.transferFunc(ctx, touristID, restaurantAddress, amount)
	}
	return &gateway.TxResult{Hash: "0xabc"}, nil
}

func (m *mockGateway) BurnExpiredCoins(context.Context, string) (*gateway.TxResult, error) {
	return &gateway.TxResult{Hash: "0xabc"}, nil
}

func (m *mockGateway) PollTransaction(context.Context, string) (*gateway.TxResult, error) {
	return &gateway.TxResult{Hash: "0xabc"}, nil
}

func (m *mockGateway) GetBalanceInfo(context.Context, string) (*gateway.BalanceInfo, error) {
	return &gateway.BalanceInfo{Balance: big.NewInt(5)}, nil
}

func (m *mockGateway) GetNetworkStatus(context.Context) (*gateway.NetworkStatus, error) {
	return &gateway.NetworkStatus{BlockNumber: 100}, nil
}

func (m *mockGateway) GetContractConstants(context.Context) (*gateway.ContractConstants, error) {
	return &gateway.ContractConstants{CoinExpiryDays: 14}, nil
}

func (m *mockGateway) GetTouristHistory(context.Context, string, uint64) ([]*gateway.HistoryEntry, error) {
	return nil, nil
}

type mockIndexer struct {
	backfillFunc       func(ctx context.Context, from, to indexer.BlockRef) (*indexer.BackfillResult, error)
	getTransactionFunc func(ctx context.Context, hash string) (*txstore.TransactionRecord, error)
}

func (m *mockIndexer) Backfill(ctx context.Context, from, to indexer.BlockRef) (*indexer.BackfillResult, error) {
	if m.backfillFunc != nil {
		return m.backfillFunc(ctx, from, to)
	}
	return &indexer.BackfillResult{}, nil
}

func (m *mockIndexer) GetTransaction(ctx context.Context, hash string) (*txstore.TransactionRecord, error) {
	if m.getTransactionFunc != nil {
		return m.getTransactionFunc(ctx, hash)
	}
	return nil, apperrors.NotFound("no indexed transaction with hash " + hash)
}

func (m *mockIndexer) GetTransactionsByAddress(context.Context, string, int, int) ([]*txstore.TransactionRecord, error) {
	return nil, nil
}

func (m *mockIndexer) GetTransactionsByType(context.Context, txstore.Type, int, int) ([]*txstore.TransactionRecord, error) {
	return nil, nil
}

func (m *mockIndexer) GetDailyStats(context.Context, time.Time) ([]*txstore.DailyStat, error) {
	return nil, nil
}

func (m *mockIndexer) GetRestaurantEarnings(context.Context, string) ([]*txstore.OriginEarning, error) {
	return nil, nil
}

func serve(t *testing.T, gw ContractGateway, ix EventIndexer, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	router := NewRouter(gw, ix, zap.NewNop())

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRegisterTourist_Created(t *testing.T) {
	rec := serve(t, &mockGateway{}, &mockIndexer{}, http.MethodPost, "/api/v1/tourists",
		`{"address":"0x70997970C51812dc3A010C7d01b50e0d17dc79C8","origin_country":"JP","arrival_time":1700000000,"departure_time":1700600000}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	var result gateway.TxResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "0xabc", result.Hash)
	assert.Equal(t, uint64(100), result.BlockNumber)
}

func TestRegisterTourist_BadJSON(t *testing.T) {
	rec := serve(t, &mockGateway{}, &mockIndexer{}, http.MethodPost, "/api/v1/tourists", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegisterTourist_ValidationErrorMapsTo400(t *testing.T) {
	gw := &mockGateway{
		registerTouristFunc: func(context.Context, string, string, int64, int64) (*gateway.TxResult, error) {
			return nil, apperrors.Validation(apperrors.CodeInvalidAddress, "tourist address is not a valid address")
		},
	}
	rec := serve(t, gw, &mockIndexer{}, http.MethodPost, "/api/v1/tourists", `{"address":"nope"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, apperrors.CodeInvalidAddress, resp["code"])
}

func TestTransfer_PreconditionMapsTo422(t *testing.T) {
	gw := &mockGateway{
		transferFunc: func(context.Context, string, string, *big.Int) (*gateway.TxResult, error) {
			return nil, apperrors.Precondition(apperrors.CodeTransferNotAllowed, "transfer exceeds the restaurant's daily cap")
		},
	}
	rec := serve(t, gw, &mockIndexer{}, http.MethodPost, "/api/v1/transfers",
		`{"tourist_id":"tourist-1","restaurant_address":"0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC","amount":"10"}`)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, apperrors.CodeTransferNotAllowed, resp["code"])
}

func TestTransfer_NonNumericAmount(t *testing.T) {
	rec := serve(t, &mockGateway{}, &mockIndexer{}, http.MethodPost, "/api/v1/transfers",
		`{"tourist_id":"tourist-1","restaurant_address":"0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC","amount":"ten"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetTransaction_NotFoundMapsTo404(t *testing.T) {
	rec := serve(t, &mockGateway{}, &mockIndexer{}, http.MethodGet, "/api/v1/transactions/0xdeadbeef", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListTransactions_RequiresFilter(t *testing.T) {
	rec := serve(t, &mockGateway{}, &mockIndexer{}, http.MethodGet, "/api/v1/transactions", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBackfill_ParsesHeadRef(t *testing.T) {
	var gotFrom, gotTo indexer.BlockRef
	ix := &mockIndexer{
		backfillFunc: func(_ context.Context, from, to indexer.BlockRef) (*indexer.BackfillResult, error) {
			gotFrom, gotTo = from, to
			return &indexer.BackfillResult{FromBlock: 100, ToBlock: 200, Indexed: 3}, nil
		},
	}
	rec := serve(t, &mockGateway{}, ix, http.MethodPost, "/api/v1/indexer/backfill", `{"from":"100","to":"head"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, indexer.Block(100), gotFrom)
	assert.Equal(t, indexer.Head(), gotTo)
}

func TestBackfill_OmittedToDefaultsToHead(t *testing.T) {
	var gotFrom, gotTo indexer.BlockRef
	called := false
	ix := &mockIndexer{
		backfillFunc: func(_ context.Context, from, to indexer.BlockRef) (*indexer.BackfillResult, error) {
			called = true
			gotFrom, gotTo = from, to
			return &indexer.BackfillResult{FromBlock: 100, ToBlock: 200}, nil
		},
	}
	rec := serve(t, &mockGateway{}, ix, http.MethodPost, "/api/v1/indexer/backfill", `{"from":"100"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, called)
	assert.Equal(t, indexer.Block(100), gotFrom)
	assert.Equal(t, indexer.Head(), gotTo)
}

func TestBackfill_RejectsBadRef(t *testing.T) {
	rec := serve(t, &mockGateway{}, &mockIndexer{}, http.MethodPost, "/api/v1/indexer/backfill", `{"from":"abc","to":"head"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealth(t *testing.T) {
	rec := serve(t, &mockGateway{}, &mockIndexer{}, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
