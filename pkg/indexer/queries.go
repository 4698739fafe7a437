package indexer

import (
	"context"
	"errors"
	"time"

	"github.com/ethereum/go-ethereum/common"

	apperrors "github.com/yt20chill/SmileCoin-sub001/pkg/app/errors"
	"github.com/yt20chill/SmileCoin-sub001/pkg/txstore"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func storeErr(err error) error {
	return apperrors.Infrastructure(err, apperrors.CodeStoreUnavailable, "transaction store query failed")
}

// GetTransaction returns one indexed transaction by hash.
func (ix *Indexer) GetTransaction(ctx context.Context, hash string) (*txstore.TransactionRecord, error) {
	rec, err := ix.store.GetByHash(ctx, hash)
	if err != nil {
		if errors.Is(err, txstore.ErrNotFound) {
			return nil, apperrors.NotFound("no indexed transaction with hash " + hash)
		}
		return nil, storeErr(err)
	}
	return rec, nil
}

// GetTransactionsByAddress lists transactions where the address is sender or
// recipient, newest first.
func (ix *Indexer) GetTransactionsByAddress(ctx context.Context, address string, limit, offset int) ([]*txstore.TransactionRecord, error) {
	if !common.IsHexAddress(address) {
		return nil, apperrors.Validation(apperrors.CodeInvalidAddress, "address is not a valid address")
	}
	limit, offset = clampPage(limit, offset)

	recs, err := ix.store.ListByAddress(ctx, address, limit, offset)
	if err != nil {
		return nil, storeErr(err)
	}
	return recs, nil
}

// GetTransactionsByType lists transactions of one species, newest first.
func (ix *Indexer) GetTransactionsByType(ctx context.Context, txType txstore.Type, limit, offset int) ([]*txstore.TransactionRecord, error) {
	switch txType {
	case txstore.TypeDailyIssuance, txstore.TypeRestaurantTransfer, txstore.TypeExpiration:
	default:
		return nil, apperrors.Validation(apperrors.CodeInvalidArgument, "unknown transaction type "+string(txType))
	}
	limit, offset = clampPage(limit, offset)

	recs, err := ix.store.ListByType(ctx, txType, limit, offset)
	if err != nil {
		return nil, storeErr(err)
	}
	return recs, nil
}

// GetDailyStats returns per-species aggregates for one calendar day.
func (ix *Indexer) GetDailyStats(ctx context.Context, day time.Time) ([]*txstore.DailyStat, error) {
	stats, err := ix.store.DailyStats(ctx, day)
	if err != nil {
		return nil, storeErr(err)
	}
	return stats, nil
}

// GetRestaurantEarnings returns a restaurant's transfer earnings grouped by
// the origin country of the paying tourists.
func (ix *Indexer) GetRestaurantEarnings(ctx context.Context, restaurant string) ([]*txstore.OriginEarning, error) {
	if !common.IsHexAddress(restaurant) {
		return nil, apperrors.Validation(apperrors.CodeInvalidAddress, "restaurant address is not a valid address")
	}
	earnings, err := ix.store.RestaurantEarningsByOrigin(ctx, restaurant)
	if err != nil {
		return nil, storeErr(err)
	}
	return earnings, nil
}
