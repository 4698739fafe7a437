package gateway

import (
	"context"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/yt20chill/SmileCoin-sub001/pkg/smilecoin"
)

// mockChainClient implements ChainClient with overridable behaviors and a
// call counter so tests can assert that no network call happened.
type mockChainClient struct {
	mu    sync.Mutex
	calls int

	headerByNumberFunc     func(ctx context.Context, number *big.Int) (*types.Header, error)
	transactionReceiptFunc func(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	suggestGasPriceFunc    func(ctx context.Context) (*big.Int, error)
	pendingNonceAtFunc     func(ctx context.Context, account common.Address) (uint64, error)
}

func (m *mockChainClient) record() {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
}

func (m *mockChainClient) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *mockChainClient) HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error) {
	m.record()
	if m.headerByNumberFunc != nil {
		return m.headerByNumberFunc(ctx, number)
	}
	return &types.Header{Number: big.NewInt(101)}, nil
}

func (m *mockChainClient) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	m.record()
	if m.transactionReceiptFunc != nil {
		return m.transactionReceiptFunc(ctx, txHash)
	}
	return &types.Receipt{
		Status:      types.ReceiptStatusSuccessful,
		BlockNumber: big.NewInt(100),
		GasUsed:     80000,
		TxHash:      txHash,
	}, nil
}

func (m *mockChainClient) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	m.record()
	if m.suggestGasPriceFunc != nil {
		return m.suggestGasPriceFunc(ctx)
	}
	return big.NewInt(30), nil
}

func (m *mockChainClient) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	m.record()
	if m.pendingNonceAtFunc != nil {
		return m.pendingNonceAtFunc(ctx, account)
	}
	return 0, nil
}

// notFoundReceipt makes the client behave as if the transaction was never mined.
func notFoundReceipt(context.Context, common.Hash) (*types.Receipt, error) {
	return nil, ethereum.NotFound
}

// mockBinding implements Binding with overridable behaviors. It counts both
// total calls and submissions so tests can assert short-circuit behavior.
type mockBinding struct {
	mu      sync.Mutex
	calls   int
	submits int

	isTouristRegisteredFunc     func(tourist common.Address) (bool, error)
	isRestaurantRegisteredFunc  func(restaurant common.Address) (bool, error)
	canReceiveDailyCoinsFunc    func(tourist common.Address) (bool, error)
	canTransferToRestaurantFunc func(tourist, restaurant common.Address, amount *big.Int) (bool, error)
	balanceOfFunc               func(account common.Address) (*big.Int, error)
	expiredBalanceOfFunc        func(account common.Address) (*big.Int, error)

	filterDailyCoinsIssuedFunc func(opts *bind.FilterOpts, tourist []common.Address) ([]*smilecoin.DailyCoinsIssued, error)
	filterCoinsTransferredFunc func(opts *bind.FilterOpts, tourist, restaurant []common.Address) ([]*smilecoin.CoinsTransferred, error)
	filterCoinsExpiredFunc     func(opts *bind.FilterOpts, tourist []common.Address) ([]*smilecoin.CoinsExpired, error)
}

func (m *mockBinding) record(submit bool) {
	m.mu.Lock()
	m.calls++
	if submit {
		m.submits++
	}
	m.mu.Unlock()
}

func (m *mockBinding) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *mockBinding) submitCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.submits
}

func newMockTx() *types.Transaction {
	return types.NewTransaction(0, common.HexToAddress("0x00000000000000000000000000000000000000aa"), big.NewInt(0), 300000, big.NewInt(30), nil)
}

func (m *mockBinding) RegisterTourist(opts *bind.TransactOpts, tourist common.Address, originCountry string, arrivalTime, departureTime *big.Int) (*types.Transaction, error) {
	m.record(true)
	return newMockTx(), nil
}

func (m *mockBinding) RegisterRestaurant(opts *bind.TransactOpts, restaurant common.Address, placeId string) (*types.Transaction, error) {
	m.record(true)
	return newMockTx(), nil
}

func (m *mockBinding) IssueDailyCoins(opts *bind.TransactOpts, tourist common.Address) (*types.Transaction, error) {
	m.record(true)
	return newMockTx(), nil
}

func (m *mockBinding) TransferToRestaurant(opts *bind.TransactOpts, restaurant common.Address, amount *big.Int) (*types.Transaction, error) {
	m.record(true)
	return newMockTx(), nil
}

func (m *mockBinding) BurnExpiredCoins(opts *bind.TransactOpts, tourist common.Address) (*types.Transaction, error) {
	m.record(true)
	return newMockTx(), nil
}

func (m *mockBinding) IsTouristRegistered(opts *bind.CallOpts, tourist common.Address) (bool, error) {
	m.record(false)
	if m.isTouristRegisteredFunc != nil {
		return m.isTouristRegisteredFunc(tourist)
	}
	return true, nil
}

func (m *mockBinding) IsRestaurantRegistered(opts *bind.CallOpts, restaurant common.Address) (bool, error) {
	m.record(false)
	if m.isRestaurantRegisteredFunc != nil {
		return m.isRestaurantRegisteredFunc(restaurant)
	}
	return true, nil
}

func (m *mockBinding) CanReceiveDailyCoins(opts *bind.CallOpts, tourist common.Address) (bool, error) {
	m.record(false)
	if m.canReceiveDailyCoinsFunc != nil {
		return m.canReceiveDailyCoinsFunc(tourist)
	}
	return true, nil
}

func (m *mockBinding) CanTransferToRestaurant(opts *bind.CallOpts, tourist, restaurant common.Address, amount *big.Int) (bool, error) {
	m.record(false)
	if m.canTransferToRestaurantFunc != nil {
		return m.canTransferToRestaurantFunc(tourist, restaurant, amount)
	}
	return true, nil
}

func (m *mockBinding) BalanceOf(opts *bind.CallOpts, account common.Address) (*big.Int, error) {
	m.record(false)
	if m.balanceOfFunc != nil {
		return m.balanceOfFunc(account)
	}
	return big.NewInt(0), nil
}

func (m *mockBinding) ExpiredBalanceOf(opts *bind.CallOpts, account common.Address) (*big.Int, error) {
	m.record(false)
	if m.expiredBalanceOfFunc != nil {
		return m.expiredBalanceOfFunc(account)
	}
	return big.NewInt(0), nil
}

func (m *mockBinding) DailyCoinAmount(opts *bind.CallOpts) (*big.Int, error) {
	m.record(false)
	return big.NewInt(5), nil
}

func (m *mockBinding) MaxTransferPerRestaurant(opts *bind.CallOpts) (*big.Int, error) {
	m.record(false)
	return big.NewInt(3), nil
}

func (m *mockBinding) CoinExpiryDays(opts *bind.CallOpts) (*big.Int, error) {
	m.record(false)
	return big.NewInt(14), nil
}

func (m *mockBinding) FilterDailyCoinsIssued(opts *bind.FilterOpts, tourist []common.Address) ([]*smilecoin.DailyCoinsIssued, error) {
	m.record(false)
	if m.filterDailyCoinsIssuedFunc != nil {
		return m.filterDailyCoinsIssuedFunc(opts, tourist)
	}
	return nil, nil
}

func (m *mockBinding) FilterCoinsTransferred(opts *bind.FilterOpts, tourist, restaurant []common.Address) ([]*smilecoin.CoinsTransferred, error) {
	m.record(false)
	if m.filterCoinsTransferredFunc != nil {
		return m.filterCoinsTransferredFunc(opts, tourist, restaurant)
	}
	return nil, nil
}

func (m *mockBinding) FilterCoinsExpired(opts *bind.FilterOpts, tourist []common.Address) ([]*smilecoin.CoinsExpired, error) {
	m.record(false)
	if m.filterCoinsExpiredFunc != nil {
		return m.filterCoinsExpiredFunc(opts, tourist)
	}
	return nil, nil
}
