package smilecoin

import (
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContractABIParses(t *testing.T) {
	parsed, err := abi.JSON(strings.NewReader(ContractABI))
	require.NoError(t, err)

	for _, method := range []string{
		"registerTourist",
		"registerRestaurant",
		"issueDailyCoins",
		"transferToRestaurant",
		"burnExpiredCoins",
		"isTouristRegistered",
		"isRestaurantRegistered",
		"canReceiveDailyCoins",
		"canTransferToRestaurant",
		"balanceOf",
		"expiredBalanceOf",
		"touristOriginCountry",
		"restaurantPlaceId",
		"dailyCoinAmount",
		"maxTransferPerRestaurant",
		"coinExpiryDays",
	} {
		_, ok := parsed.Methods[method]
		assert.True(t, ok, "method %s missing from ABI", method)
	}

	for _, event := range []string{
		EventDailyCoinsIssued,
		EventCoinsTransferred,
		EventCoinsExpired,
	} {
		_, ok := parsed.Events[event]
		assert.True(t, ok, "event %s missing from ABI", event)
	}
}

func TestEventIndexedTopics(t *testing.T) {
	parsed, err := abi.JSON(strings.NewReader(ContractABI))
	require.NoError(t, err)

	indexed := func(event string) int {
		n := 0
		for _, input := range parsed.Events[event].Inputs {
			if input.Indexed {
				n++
			}
		}
		return n
	}

	assert.Equal(t, 1, indexed(EventDailyCoinsIssued), "tourist is the only indexed input")
	assert.Equal(t, 2, indexed(EventCoinsTransferred), "tourist and restaurant are indexed")
	assert.Equal(t, 1, indexed(EventCoinsExpired))
}

func TestNewContract(t *testing.T) {
	addr := common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")
	contract, err := NewContract(addr, nil)
	require.NoError(t, err)
	assert.Equal(t, addr, contract.Address())
}
