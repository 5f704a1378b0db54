// Package addressBook provides the per-chain reference data the validators trust: the lending pool,
// its receipt tokens and the fee router.
package addressBook

import (
	"fmt"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

var (
	ErrUnknownChain           = errors.New("chain is not supported")
	ErrFeeRouterNotConfigured = errors.New("fee router is not configured for chain")
)

// AddressBook is read-only after construction. Every lookup for a chain it does not know returns
// an error, and callers must treat that as a rejection.
type AddressBook interface {
	GetLendingPool(chainId uint64) (common.Address, error)
	GetReceiptTokens(chainId uint64) ([]common.Address, error)
	GetFeeRouter(chainId uint64) (common.Address, error)
	SupportedChains() []uint64
}

type ChainAddresses struct {
	ChainId       uint64
	Name          string
	LendingPool   common.Address
	ReceiptTokens []common.Address
	// zero when the deployment has not configured one
	FeeRouter common.Address
	Labels    map[common.Address]string
}

func (c *ChainAddresses) clone() *ChainAddresses {
	cp := &ChainAddresses{
		ChainId:       c.ChainId,
		Name:          c.Name,
		LendingPool:   c.LendingPool,
		ReceiptTokens: append([]common.Address{}, c.ReceiptTokens...),
		FeeRouter:     c.FeeRouter,
		Labels:        make(map[common.Address]string, len(c.Labels)),
	}
	for k, v := range c.Labels {
		cp.Labels[k] = v
	}
	return cp
}

// validate rejects a chain the validators could not evaluate: without receipt tokens every supply
// and withdraw would move funds to an untrusted address.
func (c *ChainAddresses) validate() error {
	if c.LendingPool == (common.Address{}) {
		return fmt.Errorf("chain %d has no lending pool", c.ChainId)
	}
	if len(c.ReceiptTokens) == 0 {
		return fmt.Errorf("chain %d has no receipt tokens", c.ChainId)
	}
	return nil
}

func (c *ChainAddresses) addReceiptToken(token common.Address) {
	for _, existing := range c.ReceiptTokens {
		if existing == token {
			return
		}
	}
	c.ReceiptTokens = append(c.ReceiptTokens, token)
}

// StaticAddressBook is an immutable AddressBook. The With* methods return a new book and leave the
// receiver untouched.
type StaticAddressBook struct {
	chains map[uint64]*ChainAddresses
}

var _ AddressBook = (*StaticAddressBook)(nil)

func NewStaticAddressBook(chains ...*ChainAddresses) (*StaticAddressBook, error) {
	book := &StaticAddressBook{chains: make(map[uint64]*ChainAddresses, len(chains))}
	for _, c := range chains {
		if c == nil {
			continue
		}
		if _, exists := book.chains[c.ChainId]; exists {
			return nil, fmt.Errorf("duplicate chain %d in address book", c.ChainId)
		}
		if err := c.validate(); err != nil {
			return nil, err
		}
		book.chains[c.ChainId] = c.clone()
	}
	return book, nil
}

func (b *StaticAddressBook) chain(chainId uint64) (*ChainAddresses, error) {
	c, ok := b.chains[chainId]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownChain, "chain %d", chainId)
	}
	return c, nil
}

func (b *StaticAddressBook) GetLendingPool(chainId uint64) (common.Address, error) {
	c, err := b.chain(chainId)
	if err != nil {
		return common.Address{}, err
	}
	return c.LendingPool, nil
}

func (b *StaticAddressBook) GetReceiptTokens(chainId uint64) ([]common.Address, error) {
	c, err := b.chain(chainId)
	if err != nil {
		return nil, err
	}
	return append([]common.Address{}, c.ReceiptTokens...), nil
}

func (b *StaticAddressBook) GetFeeRouter(chainId uint64) (common.Address, error) {
	c, err := b.chain(chainId)
	if err != nil {
		return common.Address{}, err
	}
	if c.FeeRouter == (common.Address{}) {
		return common.Address{}, errors.Wrapf(ErrFeeRouterNotConfigured, "chain %d", chainId)
	}
	return c.FeeRouter, nil
}

func (b *StaticAddressBook) SupportedChains() []uint64 {
	ids := make([]uint64, 0, len(b.chains))
	for id := range b.chains {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Chain returns a copy of everything known about a chain, for display.
func (b *StaticAddressBook) Chain(chainId uint64) (*ChainAddresses, error) {
	c, err := b.chain(chainId)
	if err != nil {
		return nil, err
	}
	return c.clone(), nil
}

// Label returns the human readable name recorded for an address on a chain, if any.
func (b *StaticAddressBook) Label(chainId uint64, address common.Address) string {
	c, ok := b.chains[chainId]
	if !ok {
		return ""
	}
	return c.Labels[address]
}

// WithFeeRouters sets the fee router for each chain. Every chain must already be in the book.
func (b *StaticAddressBook) WithFeeRouters(routers map[uint64]common.Address) (*StaticAddressBook, error) {
	next := b.copy()
	for chainId, router := range routers {
		c, ok := next.chains[chainId]
		if !ok {
			return nil, errors.Wrapf(ErrUnknownChain, "fee router configured for chain %d", chainId)
		}
		if router == (common.Address{}) {
			return nil, fmt.Errorf("fee router for chain %d is the zero address", chainId)
		}
		c.FeeRouter = router
	}
	return next, nil
}

func (b *StaticAddressBook) copy() *StaticAddressBook {
	next := &StaticAddressBook{chains: make(map[uint64]*ChainAddresses, len(b.chains))}
	for id, c := range b.chains {
		next.chains[id] = c.clone()
	}
	return next
}
