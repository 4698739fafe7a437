package gateway

import (
	"context"
	"math/big"
	"sort"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"

	apperrors "github.com/yt20chill/SmileCoin-sub001/pkg/app/errors"
	"github.com/yt20chill/SmileCoin-sub001/pkg/txstore"
)

// BalanceInfo is the composite balance view for one account.
type BalanceInfo struct {
	Balance         *big.Int `json:"balance"`
	ExpiredBalance  *big.Int `json:"expired_balance"`
	CanReceiveDaily bool     `json:"can_receive_daily"`
}

// NetworkStatus reports chain connectivity and head freshness.
type NetworkStatus struct {
	ChainID        int64         `json:"chain_id"`
	BlockNumber    uint64        `json:"block_number"`
	BlockTimestamp time.Time     `json:"block_timestamp"`
	BlockAge       time.Duration `json:"block_age"`
	Stale          bool          `json:"stale"`
	GasPrice       *big.Int      `json:"gas_price"`
}

// ContractConstants are the economics parameters baked into the contract.
type ContractConstants struct {
	DailyCoinAmount          *big.Int `json:"daily_coin_amount"`
	MaxTransferPerRestaurant *big.Int `json:"max_transfer_per_restaurant"`
	CoinExpiryDays           int64    `json:"coin_expiry_days"`
}

// HistoryEntry is one on-chain event involving a tourist, read straight from
// the chain rather than from the indexed mirror.
type HistoryEntry struct {
	TxHash        string       `json:"transaction_hash"`
	BlockNumber   uint64       `json:"block_number"`
	Type          txstore.Type `json:"type"`
	Amount        *big.Int     `json:"amount"`
	Counterparty  string       `json:"counterparty,omitempty"`
	OriginCountry string       `json:"origin_country,omitempty"`
	ExpiresAt     int64        `json:"expires_at,omitempty"`

	logIndex uint
}

// IsTouristRegistered reports whether the address is a registered tourist.
func (g *Gateway) IsTouristRegistered(ctx context.Context, address string) (bool, error) {
	if err := g.ensureInitialized(); err != nil {
		return false, err
	}
	if !common.IsHexAddress(address) {
		return false, apperrors.Validation(apperrors.CodeInvalidAddress, "address is not a valid address")
	}
	registered, err := g.contract.IsTouristRegistered(callOpts(ctx), common.HexToAddress(address))
	if err != nil {
		return false, rpcErr(err, "failed to check tourist registration")
	}
	return registered, nil
}

// IsRestaurantRegistered reports whether the address is a registered restaurant.
func (g *Gateway) IsRestaurantRegistered(ctx context.Context, address string) (bool, error) {
	if err := g.ensureInitialized(); err != nil {
		return false, err
	}
	if !common.IsHexAddress(address) {
		return false, apperrors.Validation(apperrors.CodeInvalidAddress, "address is not a valid address")
	}
	registered, err := g.contract.IsRestaurantRegistered(callOpts(ctx), common.HexToAddress(address))
	if err != nil {
		return false, rpcErr(err, "failed to check restaurant registration")
	}
	return registered, nil
}

// GetBalance returns the current coin balance of an account.
func (g *Gateway) GetBalance(ctx context.Context, address string) (*big.Int, error) {
	if err := g.ensureInitialized(); err != nil {
		return nil, err
	}
	if !common.IsHexAddress(address) {
		return nil, apperrors.Validation(apperrors.CodeInvalidAddress, "address is not a valid address")
	}
	balance, err := g.contract.BalanceOf(callOpts(ctx), common.HexToAddress(address))
	if err != nil {
		return nil, rpcErr(err, "failed to read balance")
	}
	return balance, nil
}

// GetBalanceInfo returns the balance, expired balance and issuance
// eligibility in one view.
func (g *Gateway) GetBalanceInfo(ctx context.Context, address string) (*BalanceInfo, error) {
	if err := g.ensureInitialized(); err != nil {
		return nil, err
	}
	if !common.IsHexAddress(address) {
		return nil, apperrors.Validation(apperrors.CodeInvalidAddress, "address is not a valid address")
	}

	account := common.HexToAddress(address)
	opts := callOpts(ctx)

	balance, err := g.contract.BalanceOf(opts, account)
	if err != nil {
		return nil, rpcErr(err, "failed to read balance")
	}
	expired, err := g.contract.ExpiredBalanceOf(opts, account)
	if err != nil {
		return nil, rpcErr(err, "failed to read expired balance")
	}
	eligible, err := g.contract.CanReceiveDailyCoins(opts, account)
	if err != nil {
		return nil, rpcErr(err, "failed to check issuance eligibility")
	}

	return &BalanceInfo{
		Balance:         balance,
		ExpiredBalance:  expired,
		CanReceiveDaily: eligible,
	}, nil
}

// GetNetworkStatus reports the chain head and flags it stale when the head
// timestamp lags the wall clock beyond the configured threshold.
func (g *Gateway) GetNetworkStatus(ctx context.Context) (*NetworkStatus, error) {
	if err := g.ensureInitialized(); err != nil {
		return nil, err
	}

	head, err := g.client.HeaderByNumber(ctx, nil)
	if err != nil {
		return nil, rpcErr(err, "failed to read chain head")
	}
	gasPrice, err := g.client.SuggestGasPrice(ctx)
	if err != nil {
		return nil, rpcErr(err, "failed to read gas price")
	}

	blockTime := time.Unix(int64(head.Time), 0)
	age := g.now().Sub(blockTime)

	return &NetworkStatus{
		ChainID:        g.chainID.Int64(),
		BlockNumber:    head.Number.Uint64(),
		BlockTimestamp: blockTime,
		BlockAge:       age,
		Stale:          age > g.set.StaleBlockThreshold,
		GasPrice:       gasPrice,
	}, nil
}

// GetContractConstants reads the contract's economics parameters.
func (g *Gateway) GetContractConstants(ctx context.Context) (*ContractConstants, error) {
	if err := g.ensureInitialized(); err != nil {
		return nil, err
	}

	opts := callOpts(ctx)
	daily, err := g.contract.DailyCoinAmount(opts)
	if err != nil {
		return nil, rpcErr(err, "failed to read daily coin amount")
	}
	maxTransfer, err := g.contract.MaxTransferPerRestaurant(opts)
	if err != nil {
		return nil, rpcErr(err, "failed to read max transfer per restaurant")
	}
	expiryDays, err := g.contract.CoinExpiryDays(opts)
	if err != nil {
		return nil, rpcErr(err, "failed to read coin expiry days")
	}

	return &ContractConstants{
		DailyCoinAmount:          daily,
		MaxTransferPerRestaurant: maxTransfer,
		CoinExpiryDays:           expiryDays.Int64(),
	}, nil
}

// GetTouristHistory reads all events involving one tourist directly from the
// chain, merged across the three species and ordered by block then log index.
func (g *Gateway) GetTouristHistory(ctx context.Context, touristAddress string, fromBlock uint64) ([]*HistoryEntry, error) {
	if err := g.ensureInitialized(); err != nil {
		return nil, err
	}
	if !common.IsHexAddress(touristAddress) {
		return nil, apperrors.Validation(apperrors.CodeInvalidAddress, "tourist address is not a valid address")
	}

	tourist := common.HexToAddress(touristAddress)
	opts := &bind.FilterOpts{Context: ctx, Start: fromBlock}
	filter := []common.Address{tourist}

	issued, err := g.contract.FilterDailyCoinsIssued(opts, filter)
	if err != nil {
		return nil, rpcErr(err, "failed to filter issuance events")
	}
	transferred, err := g.contract.FilterCoinsTransferred(opts, filter, nil)
	if err != nil {
		return nil, rpcErr(err, "failed to filter transfer events")
	}
	expired, err := g.contract.FilterCoinsExpired(opts, filter)
	if err != nil {
		return nil, rpcErr(err, "failed to filter expiration events")
	}

	entries := make([]*HistoryEntry, 0, len(issued)+len(transferred)+len(expired))
	for _, ev := range issued {
		entries = append(entries, &HistoryEntry{
			TxHash:        ev.Raw.TxHash.Hex(),
			BlockNumber:   ev.Raw.BlockNumber,
			Type:          txstore.TypeDailyIssuance,
			Amount:        ev.Amount,
			OriginCountry: ev.OriginCountry,
			ExpiresAt:     ev.ExpiresAt.Int64(),
			logIndex:      ev.Raw.Index,
		})
	}
	for _, ev := range transferred {
		entries = append(entries, &HistoryEntry{
			TxHash:       ev.Raw.TxHash.Hex(),
			BlockNumber:  ev.Raw.BlockNumber,
			Type:         txstore.TypeRestaurantTransfer,
			Amount:       ev.Amount,
			Counterparty: ev.Restaurant.Hex(),
			logIndex:     ev.Raw.Index,
		})
	}
	for _, ev := range expired {
		entries = append(entries, &HistoryEntry{
			TxHash:      ev.Raw.TxHash.Hex(),
			BlockNumber: ev.Raw.BlockNumber,
			Type:        txstore.TypeExpiration,
			Amount:      ev.Amount,
			logIndex:    ev.Raw.Index,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].BlockNumber != entries[j].BlockNumber {
			return entries[i].BlockNumber < entries[j].BlockNumber
		}
		return entries[i].logIndex < entries[j].logIndex
	})
	return entries, nil
}
