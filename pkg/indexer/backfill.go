package indexer

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"go.uber.org/zap"

	apperrors "github.com/yt20chill/SmileCoin-sub001/pkg/app/errors"
	"github.com/yt20chill/SmileCoin-sub001/pkg/txstore"
)

// BlockRef names either a concrete block number or the chain head. Head refs
// are resolved once per backfill call so the range is stable even while new
// blocks arrive.
type BlockRef struct {
	head   bool
	number uint64
}

// Block refers to a concrete block number.
func Block(n uint64) BlockRef { return BlockRef{number: n} }

// Head refers to the chain head at resolution time.
func Head() BlockRef { return BlockRef{head: true} }

func (r BlockRef) String() string {
	if r.head {
		return "head"
	}
	return fmt.Sprintf("%d", r.number)
}

// BackfillResult summarizes one backfill run.
type BackfillResult struct {
	FromBlock uint64 `json:"from_block"`
	ToBlock   uint64 `json:"to_block"`
	Indexed   int    `json:"indexed"`
	Failed    int    `json:"failed"`
}

// Backfill replays historical events in [from, to] through the same transform
// and upsert as the live path, so re-running a range is harmless. Species are
// processed independently: a filter failure on one species does not stop the
// others, and a single bad event only increments the failure count.
func (ix *Indexer) Backfill(ctx context.Context, from, to BlockRef) (*BackfillResult, error) {
	fromBlock, toBlock, err := ix.resolveRange(ctx, from, to)
	if err != nil {
		return nil, err
	}
	if fromBlock > toBlock {
		return nil, apperrors.Validation(apperrors.CodeInvalidArgument,
			fmt.Sprintf("backfill range is inverted: from %d, to %d", fromBlock, toBlock))
	}

	ix.logger.Info("backfill started",
		zap.Uint64("from_block", fromBlock),
		zap.Uint64("to_block", toBlock),
	)

	opts := &bind.FilterOpts{Context: ctx, Start: fromBlock, End: &toBlock}
	result := &BackfillResult{FromBlock: fromBlock, ToBlock: toBlock}
	var filterErrs []error

	if events, err := ix.contract.FilterDailyCoinsIssued(opts, nil); err != nil {
		filterErrs = append(filterErrs, fmt.Errorf("issuance filter failed: %w", err))
	} else {
		for _, ev := range events {
			ix.runBackfillJob(ctx, &eventJob{species: txstore.TypeDailyIssuance, path: pathBackfill, issued: ev}, result)
		}
	}

	if events, err := ix.contract.FilterCoinsTransferred(opts, nil, nil); err != nil {
		filterErrs = append(filterErrs, fmt.Errorf("transfer filter failed: %w", err))
	} else {
		for _, ev := range events {
			ix.runBackfillJob(ctx, &eventJob{species: txstore.TypeRestaurantTransfer, path: pathBackfill, transferred: ev}, result)
		}
	}

	if events, err := ix.contract.FilterCoinsExpired(opts, nil); err != nil {
		filterErrs = append(filterErrs, fmt.Errorf("expiration filter failed: %w", err))
	} else {
		for _, ev := range events {
			ix.runBackfillJob(ctx, &eventJob{species: txstore.TypeExpiration, path: pathBackfill, expired: ev}, result)
		}
	}

	ix.logger.Info("backfill finished",
		zap.Uint64("from_block", fromBlock),
		zap.Uint64("to_block", toBlock),
		zap.Int("indexed", result.Indexed),
		zap.Int("failed", result.Failed),
	)

	if len(filterErrs) > 0 {
		return result, apperrors.Infrastructure(errors.Join(filterErrs...),
			apperrors.CodeRPCUnavailable, "backfill completed partially")
	}
	return result, nil
}

func (ix *Indexer) runBackfillJob(ctx context.Context, job *eventJob, result *BackfillResult) {
	if err := ix.process(ctx, job); err != nil {
		result.Failed++
		ix.logger.Error("failed to backfill event",
			zap.String("species", string(job.species)),
			zap.String("tx_hash", job.rawLog().TxHash.Hex()),
			zap.Error(err),
		)
		return
	}
	result.Indexed++
}

// resolveRange pins Head refs to a single head read shared by both bounds.
func (ix *Indexer) resolveRange(ctx context.Context, from, to BlockRef) (uint64, uint64, error) {
	var headNumber uint64
	if from.head || to.head {
		head, err := ix.chain.HeaderByNumber(ctx, nil)
		if err != nil {
			return 0, 0, apperrors.Infrastructure(err, apperrors.CodeRPCUnavailable, "failed to resolve chain head")
		}
		headNumber = head.Number.Uint64()
	}

	fromBlock := from.number
	if from.head {
		fromBlock = headNumber
	}
	toBlock := to.number
	if to.head {
		toBlock = headNumber
	}
	return fromBlock, toBlock, nil
}
