package abis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Registry(t *testing.T) {
	registry, err := NewDefaultRegistry()
	require.Nil(t, err)

	t.Run("Should keep interfaces in decode priority order", func(t *testing.T) {
		interfaces := registry.Interfaces()
		require.Len(t, interfaces, 3)

		assert.Equal(t, Classification_LendingPool, interfaces[0].Classification)
		assert.Equal(t, Classification_FungibleToken, interfaces[1].Classification)
		assert.Equal(t, Classification_FeeRouter, interfaces[2].Classification)
	})

	t.Run("Should expose the approve selector for the fungible token interface", func(t *testing.T) {
		d, ok := registry.Get(Classification_FungibleToken)
		require.True(t, ok)

		found := false
		for _, sig := range d.Signatures() {
			if sig.Name == "approve" {
				found = true
				assert.Equal(t, "0x095ea7b3", sig.Selector)
				assert.Equal(t, []string{"address", "uint256"}, sig.Parameters)
			}
		}
		assert.True(t, found)
	})

	t.Run("Should list lending pool signatures with their parameter types", func(t *testing.T) {
		d, ok := registry.Get(Classification_LendingPool)
		require.True(t, ok)

		sigs := map[string][]string{}
		for _, sig := range d.Signatures() {
			sigs[sig.Name] = sig.Parameters
		}
		assert.Equal(t, []string{"address", "uint256", "address", "uint16"}, sigs["supply"])
		assert.Equal(t, []string{"address", "uint256", "address"}, sigs["withdraw"])
		assert.Equal(t, []string{"address", "uint256", "uint256", "uint16", "address"}, sigs["borrow"])
		assert.Equal(t, []string{"address", "uint256", "uint256", "address"}, sigs["repay"])
		assert.Equal(t, []string{"address", "bool"}, sigs["setUserUseReserveAsCollateral"])
	})

	t.Run("Should reject duplicate classifications", func(t *testing.T) {
		d, _ := registry.Get(Classification_FeeRouter)
		_, err := NewRegistry(d, d)
		assert.NotNil(t, err)
	})

	t.Run("Should reject descriptors with an unknown classification", func(t *testing.T) {
		d, _ := registry.Get(Classification_FeeRouter)
		_, err := NewRegistry(&InterfaceDescriptor{Name: "bad", Classification: Classification(42), Abi: d.Abi})
		assert.NotNil(t, err)
	})

	t.Run("Should fail to parse invalid abi json", func(t *testing.T) {
		_, err := ParseAbi(`{"not":"an abi"`)
		assert.NotNil(t, err)

		_, err = ParseAbi(`[]`)
		assert.NotNil(t, err)
	})

	t.Run("Should name classifications", func(t *testing.T) {
		assert.Equal(t, "LendingPool", Classification_LendingPool.String())
		assert.Equal(t, "FungibleToken", Classification_FungibleToken.String())
		assert.Equal(t, "FeeRouter", Classification_FeeRouter.String())
		assert.Equal(t, "Classification(0)", Classification(0).String())
	})
}
