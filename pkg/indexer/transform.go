package indexer

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/yt20chill/SmileCoin-sub001/internal/metrics"
	"github.com/yt20chill/SmileCoin-sub001/pkg/txstore"
)

var zeroAddress = common.Address{}

// process turns one decoded event into a transaction record and upserts it.
// The transform is pure given the event and the receipt; metadata enrichment
// reads current contract state and is best-effort.
func (ix *Indexer) process(ctx context.Context, job *eventJob) error {
	traceID := uuid.NewString()
	log := job.rawLog()

	receipt, err := ix.chain.TransactionReceipt(ctx, log.TxHash)
	if err != nil {
		return fmt.Errorf("failed to fetch receipt for %s: %w", log.TxHash.Hex(), err)
	}

	gasPrice, err := ix.effectiveGasPrice(ctx, receipt, log.TxHash)
	if err != nil {
		return err
	}

	gasUsed := decimal.NewFromUint64(receipt.GasUsed)
	price := decimal.NewFromBigInt(gasPrice, 0)
	fee := gasUsed.Mul(price)

	rec := &txstore.TransactionRecord{
		Hash:        log.TxHash.Hex(),
		BlockNumber: int64(log.BlockNumber),
		GasUsed:     int64(receipt.GasUsed),
		GasPrice:    price.String(),
		Fee:         fee.String(),
		Type:        job.species,
		Metadata:    txstore.Metadata{},
	}

	// Events are only emitted by successful executions, but the receipt is
	// still the source of truth for status.
	if receipt.Status == types.ReceiptStatusSuccessful {
		rec.Status = txstore.StatusConfirmed
		confirmedAt := ix.now().UTC()
		rec.ConfirmedAt = &confirmedAt
	} else {
		rec.Status = txstore.StatusFailed
	}

	switch job.species {
	case txstore.TypeDailyIssuance:
		ev := job.issued
		rec.FromAddress = zeroAddress.Hex()
		rec.ToAddress = ev.Tourist.Hex()
		rec.Amount = decimal.NewFromBigInt(ev.Amount, 0).String()
		rec.Metadata[txstore.MetaOriginCountry] = ev.OriginCountry
		rec.Metadata[txstore.MetaExpiresAt] = ev.ExpiresAt.Int64()

	case txstore.TypeRestaurantTransfer:
		ev := job.transferred
		rec.FromAddress = ev.Tourist.Hex()
		rec.ToAddress = ev.Restaurant.Hex()
		rec.Amount = decimal.NewFromBigInt(ev.Amount, 0).String()
		ix.enrichTransfer(ctx, rec, ev.Tourist, ev.Restaurant, traceID)

	case txstore.TypeExpiration:
		ev := job.expired
		rec.FromAddress = ev.Tourist.Hex()
		rec.ToAddress = zeroAddress.Hex()
		rec.Amount = decimal.NewFromBigInt(ev.Amount, 0).String()
		ix.enrichExpiration(ctx, rec, ev.Tourist, traceID)

	default:
		return fmt.Errorf("unknown event species %q", job.species)
	}

	if err := ix.store.Upsert(ctx, rec); err != nil {
		return fmt.Errorf("failed to upsert transaction %s: %w", rec.Hash, err)
	}

	metrics.EventsIndexed.WithLabelValues(string(job.species), job.path).Inc()
	metrics.LastIndexedBlock.WithLabelValues(string(job.species)).Set(float64(log.BlockNumber))
	ix.logger.Debug("event indexed",
		zap.String("trace_id", traceID),
		zap.String("species", string(job.species)),
		zap.String("path", job.path),
		zap.String("tx_hash", rec.Hash),
		zap.Int64("block_number", rec.BlockNumber),
	)
	return nil
}

// effectiveGasPrice prefers the receipt's effective price; older nodes omit
// it, in which case the price comes from the transaction itself.
func (ix *Indexer) effectiveGasPrice(ctx context.Context, receipt *types.Receipt, hash common.Hash) (*big.Int, error) {
	if receipt.EffectiveGasPrice != nil && receipt.EffectiveGasPrice.Sign() > 0 {
		return receipt.EffectiveGasPrice, nil
	}
	tx, _, err := ix.chain.TransactionByHash(ctx, hash)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch transaction %s for gas price: %w", hash.Hex(), err)
	}
	return tx.GasPrice(), nil
}

// enrichTransfer attaches the tourist's origin country and the restaurant's
// place id from current contract state. Enrichment failures downgrade to a
// sparser record rather than dropping the event.
func (ix *Indexer) enrichTransfer(ctx context.Context, rec *txstore.TransactionRecord, tourist, restaurant common.Address, traceID string) {
	opts := &bind.CallOpts{Context: ctx}

	if origin, err := ix.contract.TouristOriginCountry(opts, tourist); err != nil {
		ix.logger.Warn("failed to enrich origin country",
			zap.String("trace_id", traceID),
			zap.String("tourist", tourist.Hex()),
			zap.Error(err),
		)
	} else if origin != "" {
		rec.Metadata[txstore.MetaOriginCountry] = origin
	}

	if placeID, err := ix.contract.RestaurantPlaceId(opts, restaurant); err != nil {
		ix.logger.Warn("failed to enrich restaurant place id",
			zap.String("trace_id", traceID),
			zap.String("restaurant", restaurant.Hex()),
			zap.Error(err),
		)
	} else if placeID != "" {
		rec.Metadata[txstore.MetaRestaurantID] = placeID
	}
}

func (ix *Indexer) enrichExpiration(ctx context.Context, rec *txstore.TransactionRecord, tourist common.Address, traceID string) {
	opts := &bind.CallOpts{Context: ctx}
	if origin, err := ix.contract.TouristOriginCountry(opts, tourist); err != nil {
		ix.logger.Warn("failed to enrich origin country",
			zap.String("trace_id", traceID),
			zap.String("tourist", tourist.Hex()),
			zap.Error(err),
		)
	} else if origin != "" {
		rec.Metadata[txstore.MetaOriginCountry] = origin
	}
}
