package api

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	apperrors "github.com/yt20chill/SmileCoin-sub001/pkg/app/errors"
	apphttp "github.com/yt20chill/SmileCoin-sub001/pkg/app/http"
	"github.com/yt20chill/SmileCoin-sub001/pkg/gateway"
	"github.com/yt20chill/SmileCoin-sub001/pkg/indexer"
	"github.com/yt20chill/SmileCoin-sub001/pkg/txstore"
)

// ContractGateway is the gateway surface the HTTP layer exposes.
type ContractGateway interface {
	RegisterTourist(ctx context.Context, address, originCountry string, arrivalTime, departureTime int64) (*gateway.TxResult, error)
	RegisterRestaurant(ctx context.Context, address, placeID string) (*gateway.TxResult, error)
	IssueDailyCoins(ctx context.Context, address string) (*gateway.TxResult, error)
	TransferToRestaurant(ctx context.Context, touristID, restaurantAddress string, amount *big.Int) (*gateway.TxResult, error)
	BurnExpiredCoins(ctx context.Context, address string) (*gateway.TxResult, error)
	PollTransaction(ctx context.Context, txHash string) (*gateway.TxResult, error)
	GetBalanceInfo(ctx context.Context, address string) (*gateway.BalanceInfo, error)
	GetNetworkStatus(ctx context.Context) (*gateway.NetworkStatus, error)
	GetContractConstants(ctx context.Context) (*gateway.ContractConstants, error)
	GetTouristHistory(ctx context.Context, address string, fromBlock uint64) ([]*gateway.HistoryEntry, error)
}

// EventIndexer is the mirror query and backfill surface the HTTP layer exposes.
type EventIndexer interface {
	Backfill(ctx context.Context, from, to indexer.BlockRef) (*indexer.BackfillResult, error)
	GetTransaction(ctx context.Context, hash string) (*txstore.TransactionRecord, error)
	GetTransactionsByAddress(ctx context.Context, address string, limit, offset int) ([]*txstore.TransactionRecord, error)
	GetTransactionsByType(ctx context.Context, txType txstore.Type, limit, offset int) ([]*txstore.TransactionRecord, error)
	GetDailyStats(ctx context.Context, day time.Time) ([]*txstore.DailyStat, error)
	GetRestaurantEarnings(ctx context.Context, restaurant string) ([]*txstore.OriginEarning, error)
}

type handler struct {
	gateway ContractGateway
	indexer EventIndexer
	logger  *zap.Logger
}

type registerTouristRequest struct {
	Address       string `json:"address"`
	OriginCountry string `json:"origin_country"`
	ArrivalTime   int64  `json:"arrival_time"`
	DepartureTime int64  `json:"departure_time"`
}

type registerRestaurantRequest struct {
	Address string `json:"address"`
	PlaceID string `json:"place_id"`
}

type transferRequest struct {
	TouristID         string `json:"tourist_id"`
	RestaurantAddress string `json:"restaurant_address"`
	Amount            string `json:"amount"`
}

type backfillRequest struct {
	// Block number as a string, or "head". To defaults to the chain head
	// when omitted.
	From string `json:"from"`
	To   string `json:"to"`
}

func decodeBody(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperrors.Validation(apperrors.CodeInvalidArgument, "request body is not valid JSON")
	}
	return nil
}

func (h *handler) registerTourist(w http.ResponseWriter, r *http.Request) error {
	var req registerTouristRequest
	if err := decodeBody(r, &req); err != nil {
		return err
	}
	result, err := h.gateway.RegisterTourist(r.Context(), req.Address, req.OriginCountry, req.ArrivalTime, req.DepartureTime)
	if err != nil {
		return err
	}
	return apphttp.WriteJSON(w, http.StatusCreated, result)
}

func (h *handler) registerRestaurant(w http.ResponseWriter, r *http.Request) error {
	var req registerRestaurantRequest
	if err := decodeBody(r, &req); err != nil {
		return err
	}
	result, err := h.gateway.RegisterRestaurant(r.Context(), req.Address, req.PlaceID)
	if err != nil {
		return err
	}
	return apphttp.WriteJSON(w, http.StatusCreated, result)
}

func (h *handler) issueDailyCoins(w http.ResponseWriter, r *http.Request) error {
	result, err := h.gateway.IssueDailyCoins(r.Context(), chi.URLParam(r, "address"))
	if err != nil {
		return err
	}
	return apphttp.WriteJSON(w, http.StatusOK, result)
}

func (h *handler) transfer(w http.ResponseWriter, r *http.Request) error {
	var req transferRequest
	if err := decodeBody(r, &req); err != nil {
		return err
	}
	amount, ok := new(big.Int).SetString(req.Amount, 10)
	if !ok {
		return apperrors.Validation(apperrors.CodeInvalidArgument, "amount must be a base-10 integer")
	}
	result, err := h.gateway.TransferToRestaurant(r.Context(), req.TouristID, req.RestaurantAddress, amount)
	if err != nil {
		return err
	}
	return apphttp.WriteJSON(w, http.StatusOK, result)
}

func (h *handler) burnExpiredCoins(w http.ResponseWriter, r *http.Request) error {
	result, err := h.gateway.BurnExpiredCoins(r.Context(), chi.URLParam(r, "address"))
	if err != nil {
		return err
	}
	return apphttp.WriteJSON(w, http.StatusOK, result)
}

func (h *handler) pollTransaction(w http.ResponseWriter, r *http.Request) error {
	result, err := h.gateway.PollTransaction(r.Context(), chi.URLParam(r, "hash"))
	if err != nil {
		return err
	}
	return apphttp.WriteJSON(w, http.StatusOK, result)
}

func (h *handler) balanceInfo(w http.ResponseWriter, r *http.Request) error {
	info, err := h.gateway.GetBalanceInfo(r.Context(), chi.URLParam(r, "address"))
	if err != nil {
		return err
	}
	return apphttp.WriteJSON(w, http.StatusOK, info)
}

func (h *handler) networkStatus(w http.ResponseWriter, r *http.Request) error {
	status, err := h.gateway.GetNetworkStatus(r.Context())
	if err != nil {
		return err
	}
	return apphttp.WriteJSON(w, http.StatusOK, status)
}

func (h *handler) contractConstants(w http.ResponseWriter, r *http.Request) error {
	constants, err := h.gateway.GetContractConstants(r.Context())
	if err != nil {
		return err
	}
	return apphttp.WriteJSON(w, http.StatusOK, constants)
}

func (h *handler) touristHistory(w http.ResponseWriter, r *http.Request) error {
	var fromBlock uint64
	if raw := r.URL.Query().Get("from_block"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return apperrors.Validation(apperrors.CodeInvalidArgument, "from_block must be a block number")
		}
		fromBlock = parsed
	}
	history, err := h.gateway.GetTouristHistory(r.Context(), chi.URLParam(r, "address"), fromBlock)
	if err != nil {
		return err
	}
	return apphttp.WriteJSON(w, http.StatusOK, history)
}

func (h *handler) getTransaction(w http.ResponseWriter, r *http.Request) error {
	rec, err := h.indexer.GetTransaction(r.Context(), chi.URLParam(r, "hash"))
	if err != nil {
		return err
	}
	return apphttp.WriteJSON(w, http.StatusOK, rec)
}

func (h *handler) listTransactions(w http.ResponseWriter, r *http.Request) error {
	q := r.URL.Query()
	limit, offset := parsePage(q.Get("limit"), q.Get("offset"))

	address := q.Get("address")
	txType := q.Get("type")
	switch {
	case address != "" && txType != "":
		return apperrors.Validation(apperrors.CodeInvalidArgument, "filter by either address or type, not both")
	case address != "":
		recs, err := h.indexer.GetTransactionsByAddress(r.Context(), address, limit, offset)
		if err != nil {
			return err
		}
		return apphttp.WriteJSON(w, http.StatusOK, recs)
	case txType != "":
		recs, err := h.indexer.GetTransactionsByType(r.Context(), txstore.Type(txType), limit, offset)
		if err != nil {
			return err
		}
		return apphttp.WriteJSON(w, http.StatusOK, recs)
	default:
		return apperrors.Validation(apperrors.CodeInvalidArgument, "an address or type filter is required")
	}
}

func (h *handler) dailyStats(w http.ResponseWriter, r *http.Request) error {
	day := time.Now().UTC()
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return apperrors.Validation(apperrors.CodeInvalidArgument, "date must be formatted YYYY-MM-DD")
		}
		day = parsed
	}
	stats, err := h.indexer.GetDailyStats(r.Context(), day)
	if err != nil {
		return err
	}
	return apphttp.WriteJSON(w, http.StatusOK, stats)
}

func (h *handler) restaurantEarnings(w http.ResponseWriter, r *http.Request) error {
	earnings, err := h.indexer.GetRestaurantEarnings(r.Context(), chi.URLParam(r, "address"))
	if err != nil {
		return err
	}
	return apphttp.WriteJSON(w, http.StatusOK, earnings)
}

func (h *handler) backfill(w http.ResponseWriter, r *http.Request) error {
	var req backfillRequest
	if err := decodeBody(r, &req); err != nil {
		return err
	}
	from, err := parseBlockRef(req.From)
	if err != nil {
		return err
	}
	to := indexer.Head()
	if req.To != "" {
		if to, err = parseBlockRef(req.To); err != nil {
			return err
		}
	}
	result, err := h.indexer.Backfill(r.Context(), from, to)
	if err != nil {
		return err
	}
	return apphttp.WriteJSON(w, http.StatusOK, result)
}

func parseBlockRef(raw string) (indexer.BlockRef, error) {
	if raw == "head" {
		return indexer.Head(), nil
	}
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return indexer.BlockRef{}, apperrors.Validation(apperrors.CodeInvalidArgument,
			`block reference must be a block number or "head"`)
	}
	return indexer.Block(n), nil
}

func parsePage(rawLimit, rawOffset string) (int, int) {
	limit, _ := strconv.Atoi(rawLimit)
	offset, _ := strconv.Atoi(rawOffset)
	return limit, offset
}
