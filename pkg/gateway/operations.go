package gateway

import (
	"context"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"

	apperrors "github.com/yt20chill/SmileCoin-sub001/pkg/app/errors"
	"github.com/yt20chill/SmileCoin-sub001/pkg/wallet"
)

// RegisterTourist registers a tourist wallet with its origin country and
// visit window. Signed by the admin key.
func (g *Gateway) RegisterTourist(ctx context.Context, touristAddress, originCountry string, arrivalTime, departureTime int64) (*TxResult, error) {
	if err := g.ensureInitialized(); err != nil {
		return nil, err
	}
	if !common.IsHexAddress(touristAddress) {
		return nil, apperrors.Validation(apperrors.CodeInvalidAddress, "tourist address is not a valid address")
	}
	if originCountry == "" {
		return nil, apperrors.Validation(apperrors.CodeInvalidArgument, "origin country is required")
	}
	if arrivalTime <= 0 || departureTime <= 0 {
		return nil, apperrors.Validation(apperrors.CodeInvalidDates, "arrival and departure times must be positive unix timestamps")
	}
	if departureTime <= arrivalTime {
		return nil, apperrors.Validation(apperrors.CodeInvalidDates, "departure time must be after arrival time")
	}

	tourist := common.HexToAddress(touristAddress)
	registered, err := g.contract.IsTouristRegistered(callOpts(ctx), tourist)
	if err != nil {
		return nil, rpcErr(err, "failed to check tourist registration")
	}
	if registered {
		return nil, apperrors.Precondition(apperrors.CodeAlreadyRegistered, "tourist is already registered")
	}

	return g.submitAndAwait(ctx, "register_tourist", g.adminKey, func(auth *bind.TransactOpts) (*types.Transaction, error) {
		return g.contract.RegisterTourist(auth, tourist, originCountry, big.NewInt(arrivalTime), big.NewInt(departureTime))
	})
}

// RegisterRestaurant registers a restaurant wallet with its external place id.
// Signed by the admin key.
func (g *Gateway) RegisterRestaurant(ctx context.Context, restaurantAddress, placeID string) (*TxResult, error) {
	if err := g.ensureInitialized(); err != nil {
		return nil, err
	}
	if !common.IsHexAddress(restaurantAddress) {
		return nil, apperrors.Validation(apperrors.CodeInvalidAddress, "restaurant address is not a valid address")
	}
	if placeID == "" {
		return nil, apperrors.Validation(apperrors.CodeInvalidArgument, "place id is required")
	}

	restaurant := common.HexToAddress(restaurantAddress)
	registered, err := g.contract.IsRestaurantRegistered(callOpts(ctx), restaurant)
	if err != nil {
		return nil, rpcErr(err, "failed to check restaurant registration")
	}
	if registered {
		return nil, apperrors.Precondition(apperrors.CodeAlreadyRegistered, "restaurant is already registered")
	}

	return g.submitAndAwait(ctx, "register_restaurant", g.adminKey, func(auth *bind.TransactOpts) (*types.Transaction, error) {
		return g.contract.RegisterRestaurant(auth, restaurant, placeID)
	})
}

// IssueDailyCoins issues the daily coin allowance to a registered tourist.
// The contract enforces one issuance per day inside the visit window; the
// eligibility check here avoids paying gas for a guaranteed revert.
func (g *Gateway) IssueDailyCoins(ctx context.Context, touristAddress string) (*TxResult, error) {
	if err := g.ensureInitialized(); err != nil {
		return nil, err
	}
	if !common.IsHexAddress(touristAddress) {
		return nil, apperrors.Validation(apperrors.CodeInvalidAddress, "tourist address is not a valid address")
	}

	tourist := common.HexToAddress(touristAddress)
	registered, err := g.contract.IsTouristRegistered(callOpts(ctx), tourist)
	if err != nil {
		return nil, rpcErr(err, "failed to check tourist registration")
	}
	if !registered {
		return nil, apperrors.Precondition(apperrors.CodeNotRegistered, "tourist is not registered")
	}

	eligible, err := g.contract.CanReceiveDailyCoins(callOpts(ctx), tourist)
	if err != nil {
		return nil, rpcErr(err, "failed to check issuance eligibility")
	}
	if !eligible {
		return nil, apperrors.Precondition(apperrors.CodeNotEligible, "tourist already received today's coins or is outside the visit window")
	}

	return g.submitAndAwait(ctx, "issue_daily_coins", g.adminKey, func(auth *bind.TransactOpts) (*types.Transaction, error) {
		return g.contract.IssueDailyCoins(auth, tourist)
	})
}

// TransferToRestaurant transfers coins from a tourist to a restaurant. The
// transaction is signed with the tourist's own key resolved by id, so the
// contract sees the tourist as msg.sender.
func (g *Gateway) TransferToRestaurant(ctx context.Context, touristID, restaurantAddress string, amount *big.Int) (*TxResult, error) {
	if err := g.ensureInitialized(); err != nil {
		return nil, err
	}
	if touristID == "" {
		return nil, apperrors.Validation(apperrors.CodeInvalidArgument, "tourist id is required")
	}
	if !common.IsHexAddress(restaurantAddress) {
		return nil, apperrors.Validation(apperrors.CodeInvalidAddress, "restaurant address is not a valid address")
	}
	if amount == nil || amount.Sign() <= 0 {
		return nil, apperrors.Validation(apperrors.CodeInvalidArgument, "amount must be positive")
	}

	key, err := g.wallets.Resolve(ctx, touristID)
	if err != nil {
		if errors.Is(err, wallet.ErrKeyNotFound) {
			return nil, apperrors.Precondition(apperrors.CodeNotRegistered, "no wallet found for tourist "+touristID)
		}
		return nil, apperrors.Infrastructure(err, apperrors.CodeWalletUnavailable, "failed to resolve tourist wallet")
	}
	tourist := crypto.PubkeyToAddress(key.PublicKey)
	restaurant := common.HexToAddress(restaurantAddress)

	registered, err := g.contract.IsTouristRegistered(callOpts(ctx), tourist)
	if err != nil {
		return nil, rpcErr(err, "failed to check tourist registration")
	}
	if !registered {
		return nil, apperrors.Precondition(apperrors.CodeNotRegistered, "tourist is not registered")
	}

	registered, err = g.contract.IsRestaurantRegistered(callOpts(ctx), restaurant)
	if err != nil {
		return nil, rpcErr(err, "failed to check restaurant registration")
	}
	if !registered {
		return nil, apperrors.Precondition(apperrors.CodeNotRegistered, "restaurant is not registered")
	}

	allowed, err := g.contract.CanTransferToRestaurant(callOpts(ctx), tourist, restaurant, amount)
	if err != nil {
		return nil, rpcErr(err, "failed to check transfer allowance")
	}
	if !allowed {
		return nil, apperrors.Precondition(apperrors.CodeTransferNotAllowed, "transfer exceeds the tourist balance or the restaurant's daily cap")
	}

	return g.submitAndAwait(ctx, "transfer_to_restaurant", key, func(auth *bind.TransactOpts) (*types.Transaction, error) {
		return g.contract.TransferToRestaurant(auth, restaurant, amount)
	})
}

// BurnExpiredCoins burns a tourist's expired coins. Signed by the admin key.
func (g *Gateway) BurnExpiredCoins(ctx context.Context, touristAddress string) (*TxResult, error) {
	if err := g.ensureInitialized(); err != nil {
		return nil, err
	}
	if !common.IsHexAddress(touristAddress) {
		return nil, apperrors.Validation(apperrors.CodeInvalidAddress, "tourist address is not a valid address")
	}

	tourist := common.HexToAddress(touristAddress)
	registered, err := g.contract.IsTouristRegistered(callOpts(ctx), tourist)
	if err != nil {
		return nil, rpcErr(err, "failed to check tourist registration")
	}
	if !registered {
		return nil, apperrors.Precondition(apperrors.CodeNotRegistered, "tourist is not registered")
	}

	expired, err := g.contract.ExpiredBalanceOf(callOpts(ctx), tourist)
	if err != nil {
		return nil, rpcErr(err, "failed to check expired balance")
	}
	if expired.Sign() <= 0 {
		return nil, apperrors.Precondition(apperrors.CodeNoExpiredCoins, "tourist has no expired coins to burn")
	}

	return g.submitAndAwait(ctx, "burn_expired_coins", g.adminKey, func(auth *bind.TransactOpts) (*types.Transaction, error) {
		return g.contract.BurnExpiredCoins(auth, tourist)
	})
}
