package addressBook

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	baseFeeRouter = common.HexToAddress("0x2222222222222222222222222222222222222222")
	sender        = common.HexToAddress("0x1111111111111111111111111111111111111111")
)

func Test_StaticAddressBook(t *testing.T) {
	book := NewDefaultAddressBook()

	t.Run("Should resolve the lending pool for a known chain", func(t *testing.T) {
		pool, err := book.GetLendingPool(Chain_Base)
		require.Nil(t, err)
		assert.Equal(t, common.HexToAddress("0xA238Dd80C259a72e81d7e4664a9801593F98d1c5"), pool)
	})

	t.Run("Should fail for an unknown chain", func(t *testing.T) {
		_, err := book.GetLendingPool(999)
		assert.True(t, errors.Is(err, ErrUnknownChain))

		_, err = book.GetReceiptTokens(999)
		assert.True(t, errors.Is(err, ErrUnknownChain))

		_, err = book.GetFeeRouter(999)
		assert.True(t, errors.Is(err, ErrUnknownChain))
	})

	t.Run("Should fail when no fee router is configured", func(t *testing.T) {
		_, err := book.GetFeeRouter(Chain_Base)
		assert.True(t, errors.Is(err, ErrFeeRouterNotConfigured))
	})

	t.Run("Should overlay fee routers without mutating the original", func(t *testing.T) {
		withRouters, err := book.WithFeeRouters(map[uint64]common.Address{Chain_Base: baseFeeRouter})
		require.Nil(t, err)

		router, err := withRouters.GetFeeRouter(Chain_Base)
		require.Nil(t, err)
		assert.Equal(t, baseFeeRouter, router)

		_, err = book.GetFeeRouter(Chain_Base)
		assert.NotNil(t, err)
	})

	t.Run("Should reject fee routers for unknown chains or the zero address", func(t *testing.T) {
		_, err := book.WithFeeRouters(map[uint64]common.Address{999: baseFeeRouter})
		assert.True(t, errors.Is(err, ErrUnknownChain))

		_, err = book.WithFeeRouters(map[uint64]common.Address{Chain_Base: {}})
		assert.NotNil(t, err)
	})

	t.Run("Should return a copy of receipt tokens", func(t *testing.T) {
		tokens, err := book.GetReceiptTokens(Chain_Ethereum)
		require.Nil(t, err)
		require.NotEmpty(t, tokens)
		tokens[0] = common.Address{}

		again, _ := book.GetReceiptTokens(Chain_Ethereum)
		assert.NotEqual(t, common.Address{}, again[0])
	})

	t.Run("Should list supported chains in ascending order", func(t *testing.T) {
		chains := book.SupportedChains()
		assert.Equal(t, []uint64{
			Chain_Ethereum, Chain_Optimism, Chain_Polygon, Chain_Base, Chain_Arbitrum,
		}, chains)
	})

	t.Run("Should reject chains without a lending pool", func(t *testing.T) {
		_, err := NewStaticAddressBook(&ChainAddresses{ChainId: 5})
		assert.NotNil(t, err)

		token := common.HexToAddress("0x3333333333333333333333333333333333333333")
		_, err = NewStaticAddressBook(
			&ChainAddresses{ChainId: 5, LendingPool: baseFeeRouter, ReceiptTokens: []common.Address{token}},
			&ChainAddresses{ChainId: 5, LendingPool: baseFeeRouter, ReceiptTokens: []common.Address{token}},
		)
		assert.NotNil(t, err)
	})

	t.Run("Should reject chains without receipt tokens", func(t *testing.T) {
		_, err := NewStaticAddressBook(&ChainAddresses{ChainId: 5, LendingPool: baseFeeRouter})
		assert.ErrorContains(t, err, "no receipt tokens")
	})

	t.Run("Should ship receipt tokens for every default chain", func(t *testing.T) {
		for _, chainId := range book.SupportedChains() {
			tokens, err := book.GetReceiptTokens(chainId)
			require.Nil(t, err)
			assert.NotEmpty(t, tokens, "chain %d", chainId)

			pool, _ := book.GetLendingPool(chainId)
			for _, token := range tokens {
				assert.NotEqual(t, pool, token, "chain %d", chainId)
				assert.NotEmpty(t, book.Label(chainId, token), "chain %d token %s", chainId, token.Hex())
			}
		}
	})

	t.Run("Should include the major aTokens", func(t *testing.T) {
		cases := map[uint64]string{
			Chain_Ethereum: "0x018008bfb33d285247A21d44E50697654f754e63",
			Chain_Optimism: "0x38d693cE1dF5AaDF7bC62595A37D667aD57922e5",
			Chain_Polygon:  "0x625E7708f30cA75bfd92586e17077590C60eb4cD",
			Chain_Base:     "0x4e65fE4DbA92790696d040ac24Aa414708F5c0AB",
			Chain_Arbitrum: "0x724dc807b04555b71ed48a6896b6F41593b8C637",
		}
		for chainId, token := range cases {
			tokens, err := book.GetReceiptTokens(chainId)
			require.Nil(t, err)
			assert.Contains(t, tokens, common.HexToAddress(token), "chain %d", chainId)
		}
	})

	t.Run("Should label known addresses", func(t *testing.T) {
		assert.Equal(t, "aBasUSDC", book.Label(Chain_Base, common.HexToAddress("0x4e65fE4DbA92790696d040ac24Aa414708F5c0AB")))
		assert.Equal(t, "", book.Label(Chain_Base, sender))
	})
}

func Test_AddressBookCsv(t *testing.T) {
	csv := strings.Join([]string{
		"chain_id,role,address,label",
		"8453,fee_router,0x2222222222222222222222222222222222222222,AppFeeRouter",
		"8453,receipt_token,0x3333333333333333333333333333333333333333,aBasCustom",
		"31337,lending_pool,0x4444444444444444444444444444444444444444,LocalPool",
		"31337,receipt_token,0x6666666666666666666666666666666666666666,aLocalWETH",
		"31337,fee_router,0x5555555555555555555555555555555555555555,",
	}, "\n")

	t.Run("Should parse rows and merge them over the defaults", func(t *testing.T) {
		records, err := ParseCSV(strings.NewReader(csv))
		require.Nil(t, err)
		require.Len(t, records, 5)
		assert.Equal(t, uint64(8453), records[0].ChainId)
		assert.Equal(t, Role_FeeRouter, records[0].Role)

		book, err := NewDefaultAddressBook().WithRecords(records)
		require.Nil(t, err)

		router, err := book.GetFeeRouter(Chain_Base)
		require.Nil(t, err)
		assert.Equal(t, baseFeeRouter, router)

		defaults, err := NewDefaultAddressBook().GetReceiptTokens(Chain_Base)
		require.Nil(t, err)
		tokens, err := book.GetReceiptTokens(Chain_Base)
		require.Nil(t, err)
		assert.Contains(t, tokens, common.HexToAddress("0x3333333333333333333333333333333333333333"))
		assert.Len(t, tokens, len(defaults)+1)

		pool, err := book.GetLendingPool(31337)
		require.Nil(t, err)
		assert.Equal(t, common.HexToAddress("0x4444444444444444444444444444444444444444"), pool)
		assert.Equal(t, "LocalPool", book.Label(31337, pool))
	})

	t.Run("Should load rows from a file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "addresses.csv")
		require.Nil(t, os.WriteFile(path, []byte(csv), 0o600))

		records, err := LoadCSV(path)
		require.Nil(t, err)
		assert.Len(t, records, 5)

		_, err = LoadCSV(filepath.Join(t.TempDir(), "missing.csv"))
		assert.NotNil(t, err)
	})

	t.Run("Should reject invalid rows", func(t *testing.T) {
		cases := map[string]string{
			"bad address":  "8453,fee_router,0x1234,",
			"zero address": "8453,fee_router,0x0000000000000000000000000000000000000000,",
			"unknown role": "8453,treasury,0x2222222222222222222222222222222222222222,",
			"no pool":      "31337,fee_router,0x2222222222222222222222222222222222222222,",
			"no tokens":    "31337,lending_pool,0x4444444444444444444444444444444444444444,",
		}
		for name, row := range cases {
			t.Run(name, func(t *testing.T) {
				records, err := ParseCSV(strings.NewReader("chain_id,role,address,label\n" + row))
				require.Nil(t, err)
				_, err = NewDefaultAddressBook().WithRecords(records)
				assert.NotNil(t, err)
			})
		}
	})
}

func Test_TrustedAddressSet(t *testing.T) {
	book, err := NewDefaultAddressBook().WithFeeRouters(map[uint64]common.Address{Chain_Base: baseFeeRouter})
	require.Nil(t, err)

	set, err := NewTrustedAddressSet(book, Chain_Base, sender)
	require.Nil(t, err)

	t.Run("Should contain the zero address, sender, pool and receipt tokens", func(t *testing.T) {
		pool, _ := book.GetLendingPool(Chain_Base)
		tokens, _ := book.GetReceiptTokens(Chain_Base)

		assert.True(t, set.Contains(common.Address{}))
		assert.True(t, set.Contains(sender))
		assert.True(t, set.Contains(pool))
		for _, token := range tokens {
			assert.True(t, set.Contains(token))
		}
		assert.Equal(t, 3+len(tokens), set.Len())
	})

	t.Run("Should not contain the fee router or strangers", func(t *testing.T) {
		assert.False(t, set.Contains(baseFeeRouter))
		assert.False(t, set.Contains(common.HexToAddress("0x9999999999999999999999999999999999999999")))
	})

	t.Run("Should compare addresses independent of hex case", func(t *testing.T) {
		lower := common.HexToAddress(strings.ToLower("0xA238Dd80C259a72e81d7e4664a9801593F98d1c5"))
		assert.True(t, set.Contains(lower))
	})

	t.Run("Should fail for an unknown chain", func(t *testing.T) {
		_, err := NewTrustedAddressSet(book, 999, sender)
		assert.NotNil(t, err)
	})
}
