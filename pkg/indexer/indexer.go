// Package indexer mirrors SmileCoin contract events into PostgreSQL. Events
// arrive on two paths, a live subscription and an explicit backfill, and both
// funnel into the same idempotent upsert so overlapping deliveries collapse
// into one row per transaction hash.
package indexer

import (
	"context"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/event"
	"go.uber.org/zap"

	"github.com/yt20chill/SmileCoin-sub001/internal/metrics"
	"github.com/yt20chill/SmileCoin-sub001/pkg/config"
	"github.com/yt20chill/SmileCoin-sub001/pkg/smilecoin"
	"github.com/yt20chill/SmileCoin-sub001/pkg/txstore"
)

const (
	pathLive     = "live"
	pathBackfill = "backfill"

	resubscribeDelay = 5 * time.Second
)

// ChainReader is the subset of ethclient.Client the indexer needs to turn an
// event log into a full transaction record.
type ChainReader interface {
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	TransactionByHash(ctx context.Context, hash common.Hash) (*types.Transaction, bool, error)
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
}

// Binding is the contract surface consumed by the indexer. Satisfied by
// *smilecoin.Contract; mocked in tests.
type Binding interface {
	WatchDailyCoinsIssued(opts *bind.WatchOpts, sink chan<- *smilecoin.DailyCoinsIssued, tourist []common.Address) (event.Subscription, error)
	WatchCoinsTransferred(opts *bind.WatchOpts, sink chan<- *smilecoin.CoinsTransferred, tourist, restaurant []common.Address) (event.Subscription, error)
	WatchCoinsExpired(opts *bind.WatchOpts, sink chan<- *smilecoin.CoinsExpired, tourist []common.Address) (event.Subscription, error)

	FilterDailyCoinsIssued(opts *bind.FilterOpts, tourist []common.Address) ([]*smilecoin.DailyCoinsIssued, error)
	FilterCoinsTransferred(opts *bind.FilterOpts, tourist, restaurant []common.Address) ([]*smilecoin.CoinsTransferred, error)
	FilterCoinsExpired(opts *bind.FilterOpts, tourist []common.Address) ([]*smilecoin.CoinsExpired, error)

	TouristOriginCountry(opts *bind.CallOpts, tourist common.Address) (string, error)
	RestaurantPlaceId(opts *bind.CallOpts, restaurant common.Address) (string, error)
}

// eventJob is one decoded event waiting to be transformed and persisted.
// Exactly one of the payload fields is set, matching species.
type eventJob struct {
	species txstore.Type
	path    string

	issued      *smilecoin.DailyCoinsIssued
	transferred *smilecoin.CoinsTransferred
	expired     *smilecoin.CoinsExpired
}

func (j *eventJob) rawLog() types.Log {
	switch j.species {
	case txstore.TypeDailyIssuance:
		return j.issued.Raw
	case txstore.TypeRestaurantTransfer:
		return j.transferred.Raw
	default:
		return j.expired.Raw
	}
}

// Indexer consumes contract events and maintains the transaction mirror.
type Indexer struct {
	logger   *zap.Logger
	store    txstore.Store
	chain    ChainReader
	contract Binding
	now      func() time.Time

	workers   int
	queueSize int

	mu          sync.Mutex
	running     bool
	cancelWatch context.CancelFunc
	cancelProc  context.CancelFunc
	watchWg     sync.WaitGroup
	workerWg    sync.WaitGroup
	jobs        chan *eventJob
}

// Option configures optional indexer dependencies.
type Option func(*Indexer)

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(ix *Indexer) { ix.logger = logger }
}

// WithClock overrides the wall clock, primarily for tests.
func WithClock(now func() time.Time) Option {
	return func(ix *Indexer) { ix.now = now }
}

// New creates an indexer over the given store, chain connection and contract
// binding.
func New(store txstore.Store, chain ChainReader, contract Binding, cfg config.IndexerConfig, opts ...Option) *Indexer {
	ix := &Indexer{
		logger:    zap.NewNop(),
		store:     store,
		chain:     chain,
		contract:  contract,
		now:       time.Now,
		workers:   cfg.Workers,
		queueSize: cfg.QueueSize,
	}
	if ix.workers <= 0 {
		ix.workers = 4
	}
	if ix.queueSize <= 0 {
		ix.queueSize = 256
	}
	for _, opt := range opts {
		opt(ix)
	}
	return ix
}

// Start launches the worker pool and the live subscriptions for all three
// event species. Calling Start on a running indexer is a no-op.
func (ix *Indexer) Start(ctx context.Context) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if ix.running {
		return nil
	}

	watchCtx, cancelWatch := context.WithCancel(ctx)
	ix.cancelWatch = cancelWatch
	// Workers run on their own context so Stop can drain queued events after
	// the subscriptions are gone.
	procCtx, cancelProc := context.WithCancel(context.Background())
	ix.cancelProc = cancelProc
	ix.jobs = make(chan *eventJob, ix.queueSize)

	for i := 0; i < ix.workers; i++ {
		ix.workerWg.Add(1)
		go ix.worker(procCtx)
	}

	ix.watchWg.Add(3)
	go ix.watchIssued(watchCtx)
	go ix.watchTransferred(watchCtx)
	go ix.watchExpired(watchCtx)

	ix.running = true
	ix.logger.Info("indexer started",
		zap.Int("workers", ix.workers),
		zap.Int("queue_size", ix.queueSize),
	)
	return nil
}

// Stop tears down the subscriptions, drains the events already queued, then
// releases the workers. Calling Stop on a stopped indexer is a no-op.
func (ix *Indexer) Stop() {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if !ix.running {
		return
	}
	ix.cancelWatch()
	ix.watchWg.Wait()
	close(ix.jobs)
	ix.workerWg.Wait()
	ix.cancelProc()
	ix.running = false
	ix.logger.Info("indexer stopped")
}

// Running reports whether the live pipeline is active.
func (ix *Indexer) Running() bool {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return ix.running
}

func (ix *Indexer) worker(ctx context.Context) {
	defer ix.workerWg.Done()
	for job := range ix.jobs {
		metrics.QueueDepth.Set(float64(len(ix.jobs)))
		if err := ix.process(ctx, job); err != nil {
			// One bad event never stalls the pipeline.
			metrics.IndexErrors.WithLabelValues(string(job.species), job.path).Inc()
			ix.logger.Error("failed to index event",
				zap.String("species", string(job.species)),
				zap.String("path", job.path),
				zap.String("tx_hash", job.rawLog().TxHash.Hex()),
				zap.Error(err),
			)
		}
	}
}

// enqueue blocks when the queue is full so a slow store applies backpressure
// to the subscription instead of growing memory without bound.
func (ix *Indexer) enqueue(ctx context.Context, job *eventJob) bool {
	select {
	case ix.jobs <- job:
		metrics.QueueDepth.Set(float64(len(ix.jobs)))
		return true
	case <-ctx.Done():
		return false
	}
}

func (ix *Indexer) sleepRetry(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(resubscribeDelay):
		return true
	}
}

func (ix *Indexer) watchIssued(ctx context.Context) {
	defer ix.watchWg.Done()
	sink := make(chan *smilecoin.DailyCoinsIssued, 16)
	for {
		sub, err := ix.contract.WatchDailyCoinsIssued(&bind.WatchOpts{Context: ctx}, sink, nil)
		if err != nil {
			ix.logger.Warn("issuance subscription failed, retrying", zap.Error(err))
			if !ix.sleepRetry(ctx) {
				return
			}
			continue
		}
		if !ix.pumpIssued(ctx, sink, sub) {
			return
		}
		if !ix.sleepRetry(ctx) {
			return
		}
	}
}

// pumpIssued forwards events until the subscription drops (returns true, so
// the caller resubscribes) or the context is canceled (returns false).
func (ix *Indexer) pumpIssued(ctx context.Context, sink chan *smilecoin.DailyCoinsIssued, sub event.Subscription) bool {
	defer sub.Unsubscribe()
	for {
		select {
		case <-ctx.Done():
			return false
		case err := <-sub.Err():
			ix.logger.Warn("issuance subscription dropped", zap.Error(err))
			return true
		case ev := <-sink:
			if !ix.enqueue(ctx, &eventJob{species: txstore.TypeDailyIssuance, path: pathLive, issued: ev}) {
				return false
			}
		}
	}
}

func (ix *Indexer) watchTransferred(ctx context.Context) {
	defer ix.watchWg.Done()
	sink := make(chan *smilecoin.CoinsTransferred, 16)
	for {
		sub, err := ix.contract.WatchCoinsTransferred(&bind.WatchOpts{Context: ctx}, sink, nil, nil)
		if err != nil {
			ix.logger.Warn("transfer subscription failed, retrying", zap.Error(err))
			if !ix.sleepRetry(ctx) {
				return
			}
			continue
		}
		if !ix.pumpTransferred(ctx, sink, sub) {
			return
		}
		if !ix.sleepRetry(ctx) {
			return
		}
	}
}

func (ix *Indexer) pumpTransferred(ctx context.Context, sink chan *smilecoin.CoinsTransferred, sub event.Subscription) bool {
	defer sub.Unsubscribe()
	for {
		select {
		case <-ctx.Done():
			return false
		case err := <-sub.Err():
			ix.logger.Warn("transfer subscription dropped", zap.Error(err))
			return true
		case ev := <-sink:
			if !ix.enqueue(ctx, &eventJob{species: txstore.TypeRestaurantTransfer, path: pathLive, transferred: ev}) {
				return false
			}
		}
	}
}

func (ix *Indexer) watchExpired(ctx context.Context) {
	defer ix.watchWg.Done()
	sink := make(chan *smilecoin.CoinsExpired, 16)
	for {
		sub, err := ix.contract.WatchCoinsExpired(&bind.WatchOpts{Context: ctx}, sink, nil)
		if err != nil {
			ix.logger.Warn("expiration subscription failed, retrying", zap.Error(err))
			if !ix.sleepRetry(ctx) {
				return
			}
			continue
		}
		if !ix.pumpExpired(ctx, sink, sub) {
			return
		}
		if !ix.sleepRetry(ctx) {
			return
		}
	}
}

func (ix *Indexer) pumpExpired(ctx context.Context, sink chan *smilecoin.CoinsExpired, sub event.Subscription) bool {
	defer sub.Unsubscribe()
	for {
		select {
		case <-ctx.Done():
			return false
		case err := <-sub.Err():
			ix.logger.Warn("expiration subscription dropped", zap.Error(err))
			return true
		case ev := <-sink:
			if !ix.enqueue(ctx, &eventJob{species: txstore.TypeExpiration, path: pathLive, expired: ev}) {
				return false
			}
		}
	}
}
