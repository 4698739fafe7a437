// Package smilecoin binds the deployed SmileCoin contract through its ABI.
// The binding is hand-written around bind.BoundContract so the rest of the
// system can consume typed methods and events without abigen output.
package smilecoin

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// ContractABI is the external surface of the SmileCoin contract consumed by
// the gateway and the indexer.
const ContractABI = `[
{"inputs":[{"internalType":"address","name":"tourist","type":"address"},{"internalType":"string","name":"originCountry","type":"string"},{"internalType":"uint256","name":"arrivalTime","type":"uint256"},{"internalType":"uint256","name":"departureTime","type":"uint256"}],"name":"registerTourist","outputs":[],"stateMutability":"nonpayable","type":"function"},
{"inputs":[{"internalType":"address","name":"restaurant","type":"address"},{"internalType":"string","name":"placeId","type":"string"}],"name":"registerRestaurant","outputs":[],"stateMutability":"nonpayable","type":"function"},
{"inputs":[{"internalType":"address","name":"tourist","type":"address"}],"name":"issueDailyCoins","outputs":[],"stateMutability":"nonpayable","type":"function"},
{"inputs":[{"internalType":"address","name":"restaurant","type":"address"},{"internalType":"uint256","name":"amount","type":"uint256"}],"name":"transferToRestaurant","outputs":[],"stateMutability":"nonpayable","type":"function"},
{"inputs":[{"internalType":"address","name":"tourist","type":"address"}],"name":"burnExpiredCoins","outputs":[],"stateMutability":"nonpayable","type":"function"},
{"inputs":[{"internalType":"address","name":"tourist","type":"address"}],"name":"isTouristRegistered","outputs":[{"internalType":"bool","name":"","type":"bool"}],"stateMutability":"view","type":"function"},
{"inputs":[{"internalType":"address","name":"restaurant","type":"address"}],"name":"isRestaurantRegistered","outputs":[{"internalType":"bool","name":"","type":"bool"}],"stateMutability":"view","type":"function"},
{"inputs":[{"internalType":"address","name":"tourist","type":"address"}],"name":"canReceiveDailyCoins","outputs":[{"internalType":"bool","name":"","type":"bool"}],"stateMutability":"view","type":"function"},
{"inputs":[{"internalType":"address","name":"tourist","type":"address"},{"internalType":"address","name":"restaurant","type":"address"},{"internalType":"uint256","name":"amount","type":"uint256"}],"name":"canTransferToRestaurant","outputs":[{"internalType":"bool","name":"","type":"bool"}],"stateMutability":"view","type":"function"},
{"inputs":[{"internalType":"address","name":"account","type":"address"}],"name":"balanceOf","outputs":[{"internalType":"uint256","name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
{"inputs":[{"internalType":"address","name":"account","type":"address"}],"name":"expiredBalanceOf","outputs":[{"internalType":"uint256","name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
{"inputs":[{"internalType":"address","name":"tourist","type":"address"}],"name":"touristOriginCountry","outputs":[{"internalType":"string","name":"","type":"string"}],"stateMutability":"view","type":"function"},
{"inputs":[{"internalType":"address","name":"restaurant","type":"address"}],"name":"restaurantPlaceId","outputs":[{"internalType":"string","name":"","type":"string"}],"stateMutability":"view","type":"function"},
{"inputs":[],"name":"dailyCoinAmount","outputs":[{"internalType":"uint256","name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
{"inputs":[],"name":"maxTransferPerRestaurant","outputs":[{"internalType":"uint256","name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
{"inputs":[],"name":"coinExpiryDays","outputs":[{"internalType":"uint256","name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
{"anonymous":false,"inputs":[{"indexed":true,"internalType":"address","name":"tourist","type":"address"},{"indexed":false,"internalType":"uint256","name":"amount","type":"uint256"},{"indexed":false,"internalType":"string","name":"originCountry","type":"string"},{"indexed":false,"internalType":"uint256","name":"expiresAt","type":"uint256"}],"name":"DailyCoinsIssued","type":"event"},
{"anonymous":false,"inputs":[{"indexed":true,"internalType":"address","name":"tourist","type":"address"},{"indexed":true,"internalType":"address","name":"restaurant","type":"address"},{"indexed":false,"internalType":"uint256","name":"amount","type":"uint256"}],"name":"CoinsTransferred","type":"event"},
{"anonymous":false,"inputs":[{"indexed":true,"internalType":"address","name":"tourist","type":"address"},{"indexed":false,"internalType":"uint256","name":"amount","type":"uint256"}],"name":"CoinsExpired","type":"event"}
]`

// Event names as they appear in the ABI.
const (
	EventDailyCoinsIssued = "DailyCoinsIssued"
	EventCoinsTransferred = "CoinsTransferred"
	EventCoinsExpired     = "CoinsExpired"
)

// Contract is a typed handle to a deployed SmileCoin contract.
type Contract struct {
	address common.Address
	abi     abi.ABI
	bound   *bind.BoundContract
}

// NewContract binds the SmileCoin contract at the given address.
func NewContract(address common.Address, backend bind.ContractBackend) (*Contract, error) {
	parsed, err := abi.JSON(strings.NewReader(ContractABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse SmileCoin ABI: %w", err)
	}
	bound := bind.NewBoundContract(address, parsed, backend, backend, backend)
	return &Contract{
		address: address,
		abi:     parsed,
		bound:   bound,
	}, nil
}

// Address returns the bound contract address.
func (c *Contract) Address() common.Address {
	return c.address
}

// RegisterTourist submits a tourist registration.
func (c *Contract) RegisterTourist(opts *bind.TransactOpts, tourist common.Address, originCountry string, arrivalTime, departureTime *big.Int) (*types.Transaction, error) {
	return c.bound.Transact(opts, "registerTourist", tourist, originCountry, arrivalTime, departureTime)
}

// RegisterRestaurant submits a restaurant registration.
func (c *Contract) RegisterRestaurant(opts *bind.TransactOpts, restaurant common.Address, placeId string) (*types.Transaction, error) {
	return c.bound.Transact(opts, "registerRestaurant", restaurant, placeId)
}

// IssueDailyCoins submits the daily coin issuance for a tourist.
func (c *Contract) IssueDailyCoins(opts *bind.TransactOpts, tourist common.Address) (*types.Transaction, error) {
	return c.bound.Transact(opts, "issueDailyCoins", tourist)
}

// TransferToRestaurant submits a coin transfer. The sender is the signer
// behind opts, not an explicit argument.
func (c *Contract) TransferToRestaurant(opts *bind.TransactOpts, restaurant common.Address, amount *big.Int) (*types.Transaction, error) {
	return c.bound.Transact(opts, "transferToRestaurant", restaurant, amount)
}

// BurnExpiredCoins submits an expired-coin burn for a tourist.
func (c *Contract) BurnExpiredCoins(opts *bind.TransactOpts, tourist common.Address) (*types.Transaction, error) {
	return c.bound.Transact(opts, "burnExpiredCoins", tourist)
}

// IsTouristRegistered reports whether the tourist address is registered.
func (c *Contract) IsTouristRegistered(opts *bind.CallOpts, tourist common.Address) (bool, error) {
	var out []interface{}
	if err := c.bound.Call(opts, &out, "isTouristRegistered", tourist); err != nil {
		return false, err
	}
	return *abi.ConvertType(out[0], new(bool)).(*bool), nil
}

// IsRestaurantRegistered reports whether the restaurant address is registered.
func (c *Contract) IsRestaurantRegistered(opts *bind.CallOpts, restaurant common.Address) (bool, error) {
	var out []interface{}
	if err := c.bound.Call(opts, &out, "isRestaurantRegistered", restaurant); err != nil {
		return false, err
	}
	return *abi.ConvertType(out[0], new(bool)).(*bool), nil
}

// CanReceiveDailyCoins reports whether the tourist is eligible for today's issuance.
func (c *Contract) CanReceiveDailyCoins(opts *bind.CallOpts, tourist common.Address) (bool, error) {
	var out []interface{}
	if err := c.bound.Call(opts, &out, "canReceiveDailyCoins", tourist); err != nil {
		return false, err
	}
	return *abi.ConvertType(out[0], new(bool)).(*bool), nil
}

// CanTransferToRestaurant combines the balance and per-restaurant daily cap
// checks into a single predicate evaluated by the contract.
func (c *Contract) CanTransferToRestaurant(opts *bind.CallOpts, tourist, restaurant common.Address, amount *big.Int) (bool, error) {
	var out []interface{}
	if err := c.bound.Call(opts, &out, "canTransferToRestaurant", tourist, restaurant, amount); err != nil {
		return false, err
	}
	return *abi.ConvertType(out[0], new(bool)).(*bool), nil
}

// BalanceOf returns the current coin balance of an account.
func (c *Contract) BalanceOf(opts *bind.CallOpts, account common.Address) (*big.Int, error) {
	var out []interface{}
	if err := c.bound.Call(opts, &out, "balanceOf", account); err != nil {
		return nil, err
	}
	return *abi.ConvertType(out[0], new(*big.Int)).(**big.Int), nil
}

// ExpiredBalanceOf returns the expired (burnable) coin balance of an account.
func (c *Contract) ExpiredBalanceOf(opts *bind.CallOpts, account common.Address) (*big.Int, error) {
	var out []interface{}
	if err := c.bound.Call(opts, &out, "expiredBalanceOf", account); err != nil {
		return nil, err
	}
	return *abi.ConvertType(out[0], new(*big.Int)).(**big.Int), nil
}

// TouristOriginCountry returns the origin country recorded for a tourist.
func (c *Contract) TouristOriginCountry(opts *bind.CallOpts, tourist common.Address) (string, error) {
	var out []interface{}
	if err := c.bound.Call(opts, &out, "touristOriginCountry", tourist); err != nil {
		return "", err
	}
	return *abi.ConvertType(out[0], new(string)).(*string), nil
}

// RestaurantPlaceId returns the place id recorded for a restaurant.
func (c *Contract) RestaurantPlaceId(opts *bind.CallOpts, restaurant common.Address) (string, error) {
	var out []interface{}
	if err := c.bound.Call(opts, &out, "restaurantPlaceId", restaurant); err != nil {
		return "", err
	}
	return *abi.ConvertType(out[0], new(string)).(*string), nil
}

// DailyCoinAmount returns the amount issued per tourist per day.
func (c *Contract) DailyCoinAmount(opts *bind.CallOpts) (*big.Int, error) {
	var out []interface{}
	if err := c.bound.Call(opts, &out, "dailyCoinAmount"); err != nil {
		return nil, err
	}
	return *abi.ConvertType(out[0], new(*big.Int)).(**big.Int), nil
}

// MaxTransferPerRestaurant returns the per-restaurant daily transfer cap.
func (c *Contract) MaxTransferPerRestaurant(opts *bind.CallOpts) (*big.Int, error) {
	var out []interface{}
	if err := c.bound.Call(opts, &out, "maxTransferPerRestaurant"); err != nil {
		return nil, err
	}
	return *abi.ConvertType(out[0], new(*big.Int)).(**big.Int), nil
}

// CoinExpiryDays returns the number of days before issued coins expire.
func (c *Contract) CoinExpiryDays(opts *bind.CallOpts) (*big.Int, error) {
	var out []interface{}
	if err := c.bound.Call(opts, &out, "coinExpiryDays"); err != nil {
		return nil, err
	}
	return *abi.ConvertType(out[0], new(*big.Int)).(**big.Int), nil
}
