// Package gateway is the single entry point for state-changing and read-only
// calls against the SmileCoin contract. Every operation runs the same
// pipeline: validate locally, check on-chain preconditions, submit, then wait
// for a confirmed receipt. Failures are classified into the stable error
// taxonomy in pkg/app/errors so callers never see raw RPC errors.
package gateway

import (
	"context"
	"crypto/ecdsa"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/creasty/defaults"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/yt20chill/SmileCoin-sub001/internal/metrics"
	apperrors "github.com/yt20chill/SmileCoin-sub001/pkg/app/errors"
	"github.com/yt20chill/SmileCoin-sub001/pkg/config"
	"github.com/yt20chill/SmileCoin-sub001/pkg/smilecoin"
	"github.com/yt20chill/SmileCoin-sub001/pkg/wallet"
)

// ChainClient is the subset of ethclient.Client the gateway needs.
type ChainClient interface {
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
}

// Binding is the typed contract surface consumed by the gateway. Satisfied by
// *smilecoin.Contract; mocked in tests.
type Binding interface {
	RegisterTourist(opts *bind.TransactOpts, tourist common.Address, originCountry string, arrivalTime, departureTime *big.Int) (*types.Transaction, error)
	RegisterRestaurant(opts *bind.TransactOpts, restaurant common.Address, placeId string) (*types.Transaction, error)
	IssueDailyCoins(opts *bind.TransactOpts, tourist common.Address) (*types.Transaction, error)
	TransferToRestaurant(opts *bind.TransactOpts, restaurant common.Address, amount *big.Int) (*types.Transaction, error)
	BurnExpiredCoins(opts *bind.TransactOpts, tourist common.Address) (*types.Transaction, error)

	IsTouristRegistered(opts *bind.CallOpts, tourist common.Address) (bool, error)
	IsRestaurantRegistered(opts *bind.CallOpts, restaurant common.Address) (bool, error)
	CanReceiveDailyCoins(opts *bind.CallOpts, tourist common.Address) (bool, error)
	CanTransferToRestaurant(opts *bind.CallOpts, tourist, restaurant common.Address, amount *big.Int) (bool, error)
	BalanceOf(opts *bind.CallOpts, account common.Address) (*big.Int, error)
	ExpiredBalanceOf(opts *bind.CallOpts, account common.Address) (*big.Int, error)
	DailyCoinAmount(opts *bind.CallOpts) (*big.Int, error)
	MaxTransferPerRestaurant(opts *bind.CallOpts) (*big.Int, error)
	CoinExpiryDays(opts *bind.CallOpts) (*big.Int, error)

	FilterDailyCoinsIssued(opts *bind.FilterOpts, tourist []common.Address) ([]*smilecoin.DailyCoinsIssued, error)
	FilterCoinsTransferred(opts *bind.FilterOpts, tourist, restaurant []common.Address) ([]*smilecoin.CoinsTransferred, error)
	FilterCoinsExpired(opts *bind.FilterOpts, tourist []common.Address) ([]*smilecoin.CoinsExpired, error)
}

// Dialer establishes the chain connection during Initialize.
type Dialer func(ctx context.Context, cfg *config.ChainConfig) (ChainClient, Binding, error)

// TxResult describes a confirmed state-changing call.
type TxResult struct {
	Hash        string `json:"transaction_hash"`
	BlockNumber uint64 `json:"block_number"`
	GasUsed     uint64 `json:"gas_used"`
}

// settings are the tunables applied on top of the chain config. Zero values
// fall back to the tagged defaults.
type settings struct {
	ConfirmationBlocks  int64         `default:"2" validate:"min=1"`
	ConfirmationTimeout time.Duration `default:"90s" validate:"min=1s"`
	ReceiptPollInterval time.Duration `default:"2s" validate:"min=100ms"`
	GasLimit            uint64        `default:"300000"`
	StaleBlockThreshold time.Duration `default:"2m"`
}

var validate = validator.New()

// Gateway mediates all contract access. It must be initialized exactly once
// before use; any operation invoked earlier fails with a NotInitialized error.
type Gateway struct {
	logger  *zap.Logger
	wallets wallet.Resolver
	now     func() time.Time
	dial    Dialer

	mu          sync.RWMutex
	initialized bool
	set         settings
	client      ChainClient
	contract    Binding
	adminKey    *ecdsa.PrivateKey
	chainID     *big.Int
	maxGasPrice *big.Int
}

// Option configures optional gateway dependencies.
type Option func(*Gateway)

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(g *Gateway) { g.logger = logger }
}

// WithClock overrides the wall clock, primarily for tests.
func WithClock(now func() time.Time) Option {
	return func(g *Gateway) { g.now = now }
}

// WithDialer overrides how the chain connection is established, primarily
// for tests.
func WithDialer(dial Dialer) Option {
	return func(g *Gateway) { g.dial = dial }
}

// New creates an uninitialized gateway. The wallet resolver supplies signing
// keys for tourist-signed operations.
func New(wallets wallet.Resolver, opts ...Option) *Gateway {
	g := &Gateway{
		logger:  zap.NewNop(),
		wallets: wallets,
		now:     time.Now,
		dial:    dialEthclient,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func dialEthclient(ctx context.Context, cfg *config.ChainConfig) (ChainClient, Binding, error) {
	client, err := ethclient.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to dial rpc node at %s: %w", cfg.RPCURL, err)
	}
	contract, err := smilecoin.NewContract(common.HexToAddress(cfg.ContractAddress), client)
	if err != nil {
		client.Close()
		return nil, nil, err
	}
	return client, contract, nil
}

// Initialize validates the chain config, connects to the RPC node and binds
// the contract. It must succeed exactly once; repeat calls are rejected.
func (g *Gateway) Initialize(ctx context.Context, cfg *config.ChainConfig) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.initialized {
		return apperrors.Validation(apperrors.CodeInvalidArgument, "gateway is already initialized")
	}

	if !common.IsHexAddress(cfg.ContractAddress) {
		return apperrors.Validation(apperrors.CodeInvalidAddress, "contract address is not a valid address")
	}
	if cfg.ChainID <= 0 {
		return apperrors.Validation(apperrors.CodeInvalidArgument, "chain id must be positive")
	}

	adminKey, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.AdminPrivateKey, "0x"))
	if err != nil {
		return apperrors.Validation(apperrors.CodeInvalidArgument, "admin private key is not a valid secp256k1 key")
	}

	var maxGasPrice *big.Int
	if cfg.MaxGasPrice != "" {
		maxGasPrice, _ = new(big.Int).SetString(cfg.MaxGasPrice, 10)
		if maxGasPrice == nil || maxGasPrice.Sign() <= 0 {
			return apperrors.Validation(apperrors.CodeInvalidArgument, "max gas price must be a positive integer in wei")
		}
	}

	set := settings{
		ConfirmationBlocks:  cfg.ConfirmationBlocks,
		ConfirmationTimeout: cfg.ConfirmationTimeout,
		ReceiptPollInterval: cfg.ReceiptPollInterval,
		GasLimit:            cfg.GasLimit,
		StaleBlockThreshold: cfg.StaleBlockThreshold,
	}
	if err := defaults.Set(&set); err != nil {
		return apperrors.Validation(apperrors.CodeInvalidArgument, "failed to apply gateway defaults: "+err.Error())
	}
	if err := validate.Struct(&set); err != nil {
		return apperrors.Validation(apperrors.CodeInvalidArgument, "invalid gateway settings: "+err.Error())
	}

	client, contract, err := g.dial(ctx, cfg)
	if err != nil {
		return apperrors.Infrastructure(err, apperrors.CodeRPCUnavailable, "failed to connect to chain")
	}

	g.set = set
	g.client = client
	g.contract = contract
	g.adminKey = adminKey
	g.chainID = big.NewInt(cfg.ChainID)
	g.maxGasPrice = maxGasPrice
	g.initialized = true

	g.logger.Info("gateway initialized",
		zap.String("contract", common.HexToAddress(cfg.ContractAddress).Hex()),
		zap.Int64("chain_id", cfg.ChainID),
		zap.Int64("confirmation_blocks", set.ConfirmationBlocks),
	)
	return nil
}

// ensureInitialized gates every public operation.
func (g *Gateway) ensureInitialized() error {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if !g.initialized {
		return apperrors.NotInitialized()
	}
	return nil
}

func callOpts(ctx context.Context) *bind.CallOpts {
	return &bind.CallOpts{Context: ctx}
}

func rpcErr(err error, message string) error {
	return apperrors.Infrastructure(err, apperrors.CodeRPCUnavailable, message)
}

// transactOpts builds signing options for the given key: nonce and gas price
// come from the node, with the gas price clamped to the configured ceiling.
func (g *Gateway) transactOpts(ctx context.Context, key *ecdsa.PrivateKey) (*bind.TransactOpts, error) {
	auth, err := bind.NewKeyedTransactorWithChainID(key, g.chainID)
	if err != nil {
		return nil, apperrors.Submission(err, "failed to build transactor")
	}
	auth.Context = ctx
	auth.GasLimit = g.set.GasLimit

	nonce, err := g.client.PendingNonceAt(ctx, auth.From)
	if err != nil {
		return nil, rpcErr(err, "failed to fetch pending nonce")
	}
	auth.Nonce = new(big.Int).SetUint64(nonce)

	gasPrice, err := g.client.SuggestGasPrice(ctx)
	if err != nil {
		return nil, rpcErr(err, "failed to fetch gas price")
	}
	if g.maxGasPrice != nil && gasPrice.Cmp(g.maxGasPrice) > 0 {
		gasPrice = g.maxGasPrice
	}
	auth.GasPrice = gasPrice

	return auth, nil
}

// submitAndAwait runs the submit and confirm stages shared by every
// state-changing operation.
func (g *Gateway) submitAndAwait(ctx context.Context, op string, key *ecdsa.PrivateKey, submit func(*bind.TransactOpts) (*types.Transaction, error)) (*TxResult, error) {
	auth, err := g.transactOpts(ctx, key)
	if err != nil {
		metrics.SubmissionsTotal.WithLabelValues(op, "rejected").Inc()
		return nil, err
	}

	tx, err := submit(auth)
	if err != nil {
		metrics.SubmissionsTotal.WithLabelValues(op, "rejected").Inc()
		return nil, apperrors.Submission(err, "node rejected "+op+" submission")
	}

	g.logger.Info("transaction submitted",
		zap.String("operation", op),
		zap.String("tx_hash", tx.Hash().Hex()),
	)

	start := g.now()
	result, err := g.awaitConfirmation(ctx, op, tx.Hash())
	metrics.SubmissionsTotal.WithLabelValues(op, outcomeLabel(err)).Inc()
	if err == nil {
		metrics.ConfirmationDuration.WithLabelValues(op).Observe(g.now().Sub(start).Seconds())
	}
	return result, err
}

// outcomeLabel maps a confirmation result onto the metric status label.
func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return "confirmed"
	case apperrors.IsKind(err, apperrors.KindReverted):
		return "reverted"
	case apperrors.IsKind(err, apperrors.KindConfirmationTimeout):
		return "timeout"
	default:
		return "error"
	}
}

// awaitConfirmation polls for the receipt until the transaction reaches the
// configured confirmation depth. A revert is terminal; a timeout is not - the
// transaction may still confirm, and PollTransaction can pick it up later.
func (g *Gateway) awaitConfirmation(ctx context.Context, op string, hash common.Hash) (*TxResult, error) {
	ctx, cancel := context.WithTimeout(ctx, g.set.ConfirmationTimeout)
	defer cancel()

	ticker := time.NewTicker(g.set.ReceiptPollInterval)
	defer ticker.Stop()

	for {
		receipt, err := g.client.TransactionReceipt(ctx, hash)
		switch {
		case err == nil && receipt != nil:
			if receipt.Status == types.ReceiptStatusFailed {
				g.logger.Warn("transaction reverted",
					zap.String("operation", op),
					zap.String("tx_hash", hash.Hex()),
					zap.Uint64("block_number", receipt.BlockNumber.Uint64()),
				)
				return nil, apperrors.Reverted(hash.Hex())
			}
			confirmed, cerr := g.atDepth(ctx, receipt)
			if cerr != nil {
				g.logger.Debug("head lookup failed, will retry", zap.Error(cerr))
			} else if confirmed {
				g.logger.Info("transaction confirmed",
					zap.String("operation", op),
					zap.String("tx_hash", hash.Hex()),
					zap.Uint64("block_number", receipt.BlockNumber.Uint64()),
					zap.Uint64("gas_used", receipt.GasUsed),
				)
				return &TxResult{
					Hash:        hash.Hex(),
					BlockNumber: receipt.BlockNumber.Uint64(),
					GasUsed:     receipt.GasUsed,
				}, nil
			}
		case err != nil && !errors.Is(err, ethereum.NotFound):
			// Transient RPC failures are retried until the deadline.
			g.logger.Debug("receipt poll failed, will retry",
				zap.String("tx_hash", hash.Hex()),
				zap.Error(err),
			)
		}

		select {
		case <-ctx.Done():
			return nil, apperrors.ConfirmationTimeout(hash.Hex())
		case <-ticker.C:
		}
	}
}

func (g *Gateway) atDepth(ctx context.Context, receipt *types.Receipt) (bool, error) {
	head, err := g.client.HeaderByNumber(ctx, nil)
	if err != nil {
		return false, err
	}
	depth := new(big.Int).Sub(head.Number, receipt.BlockNumber).Int64() + 1
	return depth >= g.set.ConfirmationBlocks, nil
}

// PollTransaction re-runs the confirmation wait for a transaction whose
// earlier confirmation attempt timed out.
func (g *Gateway) PollTransaction(ctx context.Context, txHash string) (*TxResult, error) {
	if err := g.ensureInitialized(); err != nil {
		return nil, err
	}
	if !isTxHash(txHash) {
		return nil, apperrors.Validation(apperrors.CodeInvalidArgument, "transaction hash is not a valid 32-byte hex hash")
	}
	result, err := g.awaitConfirmation(ctx, "poll_transaction", common.HexToHash(txHash))
	metrics.PollsTotal.WithLabelValues(outcomeLabel(err)).Inc()
	return result, err
}

func isTxHash(s string) bool {
	if len(s) != 66 || !strings.HasPrefix(s, "0x") {
		return false
	}
	_, err := hex.DecodeString(s[2:])
	return err == nil
}
