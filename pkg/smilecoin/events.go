package smilecoin

import (
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/event"
)

// DailyCoinsIssued is emitted when a tourist receives the daily issuance.
// The origin country is carried in the event payload itself.
type DailyCoinsIssued struct {
	Tourist       common.Address
	Amount        *big.Int
	OriginCountry string
	ExpiresAt     *big.Int
	Raw           types.Log
}

// CoinsTransferred is emitted when a tourist transfers coins to a restaurant.
type CoinsTransferred struct {
	Tourist    common.Address
	Restaurant common.Address
	Amount     *big.Int
	Raw        types.Log
}

// CoinsExpired is emitted when a tourist's expired coins are burned.
type CoinsExpired struct {
	Tourist common.Address
	Amount  *big.Int
	Raw     types.Log
}

// WatchDailyCoinsIssued subscribes to DailyCoinsIssued events, optionally
// filtered by tourist address.
func (c *Contract) WatchDailyCoinsIssued(opts *bind.WatchOpts, sink chan<- *DailyCoinsIssued, tourist []common.Address) (event.Subscription, error) {
	var touristRule []interface{}
	for _, item := range tourist {
		touristRule = append(touristRule, item)
	}

	logs, sub, err := c.bound.WatchLogs(opts, EventDailyCoinsIssued, touristRule)
	if err != nil {
		return nil, err
	}
	return event.NewSubscription(func(quit <-chan struct{}) error {
		defer sub.Unsubscribe()
		for {
			select {
			case log := <-logs:
				ev := new(DailyCoinsIssued)
				if err := c.bound.UnpackLog(ev, EventDailyCoinsIssued, log); err != nil {
					return err
				}
				ev.Raw = log
				select {
				case sink <- ev:
				case err := <-sub.Err():
					return err
				case <-quit:
					return nil
				}
			case err := <-sub.Err():
				return err
			case <-quit:
				return nil
			}
		}
	}), nil
}

// WatchCoinsTransferred subscribes to CoinsTransferred events, optionally
// filtered by tourist and restaurant addresses.
func (c *Contract) WatchCoinsTransferred(opts *bind.WatchOpts, sink chan<- *CoinsTransferred, tourist, restaurant []common.Address) (event.Subscription, error) {
	var touristRule []interface{}
	for _, item := range tourist {
		touristRule = append(touristRule, item)
	}
	var restaurantRule []interface{}
	for _, item := range restaurant {
		restaurantRule = append(restaurantRule, item)
	}

	logs, sub, err := c.bound.WatchLogs(opts, EventCoinsTransferred, touristRule, restaurantRule)
	if err != nil {
		return nil, err
	}
	return event.NewSubscription(func(quit <-chan struct{}) error {
		defer sub.Unsubscribe()
		for {
			select {
			case log := <-logs:
				ev := new(CoinsTransferred)
				if err := c.bound.UnpackLog(ev, EventCoinsTransferred, log); err != nil {
					return err
				}
				ev.Raw = log
				select {
				case sink <- ev:
				case err := <-sub.Err():
					return err
				case <-quit:
					return nil
				}
			case err := <-sub.Err():
				return err
			case <-quit:
				return nil
			}
		}
	}), nil
}

// WatchCoinsExpired subscribes to CoinsExpired events, optionally filtered by
// tourist address.
func (c *Contract) WatchCoinsExpired(opts *bind.WatchOpts, sink chan<- *CoinsExpired, tourist []common.Address) (event.Subscription, error) {
	var touristRule []interface{}
	for _, item := range tourist {
		touristRule = append(touristRule, item)
	}

	logs, sub, err := c.bound.WatchLogs(opts, EventCoinsExpired, touristRule)
	if err != nil {
		return nil, err
	}
	return event.NewSubscription(func(quit <-chan struct{}) error {
		defer sub.Unsubscribe()
		for {
			select {
			case log := <-logs:
				ev := new(CoinsExpired)
				if err := c.bound.UnpackLog(ev, EventCoinsExpired, log); err != nil {
					return err
				}
				ev.Raw = log
				select {
				case sink <- ev:
				case err := <-sub.Err():
					return err
				case <-quit:
					return nil
				}
			case err := <-sub.Err():
				return err
			case <-quit:
				return nil
			}
		}
	}), nil
}

// FilterDailyCoinsIssued range-queries historical DailyCoinsIssued events.
func (c *Contract) FilterDailyCoinsIssued(opts *bind.FilterOpts, tourist []common.Address) ([]*DailyCoinsIssued, error) {
	var touristRule []interface{}
	for _, item := range tourist {
		touristRule = append(touristRule, item)
	}

	logs, sub, err := c.bound.FilterLogs(opts, EventDailyCoinsIssued, touristRule)
	if err != nil {
		return nil, err
	}
	defer sub.Unsubscribe()

	var events []*DailyCoinsIssued
	for {
		select {
		case log := <-logs:
			ev := new(DailyCoinsIssued)
			if err := c.bound.UnpackLog(ev, EventDailyCoinsIssued, log); err != nil {
				return nil, err
			}
			ev.Raw = log
			events = append(events, ev)
		default:
			return events, nil
		}
	}
}

// FilterCoinsTransferred range-queries historical CoinsTransferred events.
func (c *Contract) FilterCoinsTransferred(opts *bind.FilterOpts, tourist, restaurant []common.Address) ([]*CoinsTransferred, error) {
	var touristRule []interface{}
	for _, item := range tourist {
		touristRule = append(touristRule, item)
	}
	var restaurantRule []interface{}
	for _, item := range restaurant {
		restaurantRule = append(restaurantRule, item)
	}

	logs, sub, err := c.bound.FilterLogs(opts, EventCoinsTransferred, touristRule, restaurantRule)
	if err != nil {
		return nil, err
	}
	defer sub.Unsubscribe()

	var events []*CoinsTransferred
	for {
		select {
		case log := <-logs:
			ev := new(CoinsTransferred)
			if err := c.bound.UnpackLog(ev, EventCoinsTransferred, log); err != nil {
				return nil, err
			}
			ev.Raw = log
			events = append(events, ev)
		default:
			return events, nil
		}
	}
}

// FilterCoinsExpired range-queries historical CoinsExpired events.
func (c *Contract) FilterCoinsExpired(opts *bind.FilterOpts, tourist []common.Address) ([]*CoinsExpired, error) {
	var touristRule []interface{}
	for _, item := range tourist {
		touristRule = append(touristRule, item)
	}

	logs, sub, err := c.bound.FilterLogs(opts, EventCoinsExpired, touristRule)
	if err != nil {
		return nil, err
	}
	defer sub.Unsubscribe()

	var events []*CoinsExpired
	for {
		select {
		case log := <-logs:
			ev := new(CoinsExpired)
			if err := c.bound.UnpackLog(ev, EventCoinsExpired, log); err != nil {
				return nil, err
			}
			ev.Raw = log
			events = append(events, ev)
		default:
			return events, nil
		}
	}
}
