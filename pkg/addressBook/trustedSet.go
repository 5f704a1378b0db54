package addressBook

import (
	"github.com/Layr-Labs/txguard/pkg/utils"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

// TrustedAddressSet holds the endpoints funds may move between for one (chain, sender): the zero
// address, the sender, the chain's lending pool and its receipt tokens. The fee router is not a
// member; it may only receive approvals.
type TrustedAddressSet struct {
	addresses map[common.Address]struct{}
}

// NewTrustedAddressSet builds the set from the book on every call. Lookups that fail make the whole
// set unavailable.
func NewTrustedAddressSet(book AddressBook, chainId uint64, sender common.Address) (*TrustedAddressSet, error) {
	pool, err := book.GetLendingPool(chainId)
	if err != nil {
		return nil, errors.Wrap(err, "failed to resolve lending pool")
	}
	tokens, err := book.GetReceiptTokens(chainId)
	if err != nil {
		return nil, errors.Wrap(err, "failed to resolve receipt tokens")
	}

	set := &TrustedAddressSet{addresses: make(map[common.Address]struct{}, len(tokens)+3)}
	set.addresses[utils.ZeroAddress] = struct{}{}
	set.addresses[sender] = struct{}{}
	set.addresses[pool] = struct{}{}
	for _, token := range tokens {
		set.addresses[token] = struct{}{}
	}
	return set, nil
}

func (s *TrustedAddressSet) Contains(address common.Address) bool {
	_, ok := s.addresses[address]
	return ok
}

func (s *TrustedAddressSet) Len() int {
	return len(s.addresses)
}
