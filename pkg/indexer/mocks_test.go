package indexer

import (
	"context"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/event"

	"github.com/yt20chill/SmileCoin-sub001/pkg/smilecoin"
	"github.com/yt20chill/SmileCoin-sub001/pkg/txstore"
)

// memStore is an in-memory Store with the same upsert semantics as the
// postgres implementation: first write wins for every column except status
// and confirmed_at.
type memStore struct {
	mu      sync.Mutex
	rows    map[string]*txstore.TransactionRecord
	upserts int

	// beforeUpsert, when set, runs outside the lock at the top of Upsert so
	// tests can stall a worker mid-write.
	beforeUpsert func()
}

func newMemStore() *memStore {
	return &memStore{rows: map[string]*txstore.TransactionRecord{}}
}

func (s *memStore) Upsert(_ context.Context, rec *txstore.TransactionRecord) error {
	if s.beforeUpsert != nil {
		s.beforeUpsert()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upserts++

	key := strings.ToLower(rec.Hash)
	if existing, ok := s.rows[key]; ok {
		existing.Status = rec.Status
		existing.ConfirmedAt = rec.ConfirmedAt
		return nil
	}
	cp := *rec
	s.rows[key] = &cp
	return nil
}

func (s *memStore) GetByHash(_ context.Context, hash string) (*txstore.TransactionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.rows[strings.ToLower(hash)]
	if !ok {
		return nil, txstore.ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (s *memStore) ListByAddress(_ context.Context, address string, limit, offset int) ([]*txstore.TransactionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	addr := strings.ToLower(address)
	var out []*txstore.TransactionRecord
	for _, rec := range s.rows {
		if strings.ToLower(rec.FromAddress) == addr || strings.ToLower(rec.ToAddress) == addr {
			cp := *rec
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *memStore) ListByType(_ context.Context, txType txstore.Type, limit, offset int) ([]*txstore.TransactionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*txstore.TransactionRecord
	for _, rec := range s.rows {
		if rec.Type == txType {
			cp := *rec
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *memStore) DailyStats(context.Context, time.Time) ([]*txstore.DailyStat, error) {
	return nil, nil
}

func (s *memStore) RestaurantEarningsByOrigin(context.Context, string) ([]*txstore.OriginEarning, error) {
	return nil, nil
}

func (s *memStore) rowCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}

func (s *memStore) row(hash string) *txstore.TransactionRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.rows[strings.ToLower(hash)]
	if !ok {
		return nil
	}
	cp := *rec
	return &cp
}

// mockChainReader serves receipts and headers with overridable failures.
type mockChainReader struct {
	mu         sync.Mutex
	headCalls  int
	headNumber int64
	gasUsed    uint64
	gasPrice   int64
	noEffPrice bool
	receiptErr map[common.Hash]error
}

func newMockChainReader() *mockChainReader {
	return &mockChainReader{
		headNumber: 200,
		gasUsed:    80000,
		gasPrice:   30,
		receiptErr: map[common.Hash]error{},
	}
}

func (m *mockChainReader) TransactionReceipt(_ context.Context, txHash common.Hash) (*types.Receipt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.receiptErr[txHash]; ok {
		return nil, err
	}
	receipt := &types.Receipt{
		Status:      types.ReceiptStatusSuccessful,
		BlockNumber: big.NewInt(100),
		GasUsed:     m.gasUsed,
		TxHash:      txHash,
	}
	if !m.noEffPrice {
		receipt.EffectiveGasPrice = big.NewInt(m.gasPrice)
	}
	return receipt, nil
}

func (m *mockChainReader) TransactionByHash(_ context.Context, hash common.Hash) (*types.Transaction, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tx := types.NewTransaction(0, common.Address{}, big.NewInt(0), m.gasUsed, big.NewInt(m.gasPrice), nil)
	return tx, false, nil
}

func (m *mockChainReader) HeaderByNumber(context.Context, *big.Int) (*types.Header, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.headCalls++
	return &types.Header{Number: big.NewInt(m.headNumber)}, nil
}

func (m *mockChainReader) headCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.headCalls
}

// mockContract serves filters from fixed slices and captures live sinks so
// tests can push events through the subscription path.
type mockContract struct {
	mu sync.Mutex

	issued      []*smilecoin.DailyCoinsIssued
	transferred []*smilecoin.CoinsTransferred
	expired     []*smilecoin.CoinsExpired

	filterIssuedErr      error
	filterTransferredErr error
	filterExpiredErr     error

	origins map[common.Address]string
	places  map[common.Address]string

	issuedSink      chan<- *smilecoin.DailyCoinsIssued
	transferredSink chan<- *smilecoin.CoinsTransferred
	expiredSink     chan<- *smilecoin.CoinsExpired
}

func newMockContract() *mockContract {
	return &mockContract{
		origins: map[common.Address]string{},
		places:  map[common.Address]string{},
	}
}

func idleSubscription() event.Subscription {
	return event.NewSubscription(func(quit <-chan struct{}) error {
		<-quit
		return nil
	})
}

func (m *mockContract) WatchDailyCoinsIssued(_ *bind.WatchOpts, sink chan<- *smilecoin.DailyCoinsIssued, _ []common.Address) (event.Subscription, error) {
	m.mu.Lock()
	m.issuedSink = sink
	m.mu.Unlock()
	return idleSubscription(), nil
}

func (m *mockContract) WatchCoinsTransferred(_ *bind.WatchOpts, sink chan<- *smilecoin.CoinsTransferred, _, _ []common.Address) (event.Subscription, error) {
	m.mu.Lock()
	m.transferredSink = sink
	m.mu.Unlock()
	return idleSubscription(), nil
}

func (m *mockContract) WatchCoinsExpired(_ *bind.WatchOpts, sink chan<- *smilecoin.CoinsExpired, _ []common.Address) (event.Subscription, error) {
	m.mu.Lock()
	m.expiredSink = sink
	m.mu.Unlock()
	return idleSubscription(), nil
}

func (m *mockContract) FilterDailyCoinsIssued(opts *bind.FilterOpts, _ []common.Address) ([]*smilecoin.DailyCoinsIssued, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.filterIssuedErr != nil {
		return nil, m.filterIssuedErr
	}
	var out []*smilecoin.DailyCoinsIssued
	for _, ev := range m.issued {
		if inRange(opts, ev.Raw.BlockNumber) {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (m *mockContract) FilterCoinsTransferred(opts *bind.FilterOpts, _, _ []common.Address) ([]*smilecoin.CoinsTransferred, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.filterTransferredErr != nil {
		return nil, m.filterTransferredErr
	}
	var out []*smilecoin.CoinsTransferred
	for _, ev := range m.transferred {
		if inRange(opts, ev.Raw.BlockNumber) {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (m *mockContract) FilterCoinsExpired(opts *bind.FilterOpts, _ []common.Address) ([]*smilecoin.CoinsExpired, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.filterExpiredErr != nil {
		return nil, m.filterExpiredErr
	}
	var out []*smilecoin.CoinsExpired
	for _, ev := range m.expired {
		if inRange(opts, ev.Raw.BlockNumber) {
			out = append(out, ev)
		}
	}
	return out, nil
}

func inRange(opts *bind.FilterOpts, block uint64) bool {
	if block < opts.Start {
		return false
	}
	return opts.End == nil || block <= *opts.End
}

func (m *mockContract) TouristOriginCountry(_ *bind.CallOpts, tourist common.Address) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.origins[tourist], nil
}

func (m *mockContract) RestaurantPlaceId(_ *bind.CallOpts, restaurant common.Address) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.places[restaurant], nil
}

func (m *mockContract) pushIssued(ev *smilecoin.DailyCoinsIssued) bool {
	m.mu.Lock()
	sink := m.issuedSink
	m.mu.Unlock()
	if sink == nil {
		return false
	}
	sink <- ev
	return true
}
