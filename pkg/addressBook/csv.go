package addressBook

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Layr-Labs/txguard/pkg/utils"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"
)

const (
	Role_LendingPool  = "lending_pool"
	Role_ReceiptToken = "receipt_token"
	Role_FeeRouter    = "fee_router"
)

// AddressRecord is one row of an address book file:
//
//	chain_id,role,address,label
//	8453,fee_router,0x...,AppFeeRouter
type AddressRecord struct {
	ChainId uint64 `csv:"chain_id"`
	Role    string `csv:"role"`
	Address string `csv:"address"`
	Label   string `csv:"label,omitempty"`
}

func ParseCSV(r io.Reader) ([]*AddressRecord, error) {
	records := make([]*AddressRecord, 0)
	if err := gocsv.Unmarshal(r, &records); err != nil {
		return nil, errors.Wrap(err, "failed to parse address book csv")
	}
	return records, nil
}

func LoadCSV(path string) ([]*AddressRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open address book file '%s'", path)
	}
	defer f.Close()

	records, err := ParseCSV(f)
	if err != nil {
		return nil, errors.Wrapf(err, "address book file '%s'", path)
	}
	return records, nil
}

// WithRecords applies records over the book. Lending pool and fee router rows replace the existing
// entry, receipt token rows add to it. A chain only the records mention must end up with a lending
// pool and at least one receipt token. Any invalid row rejects the whole set.
func (b *StaticAddressBook) WithRecords(records []*AddressRecord) (*StaticAddressBook, error) {
	next := b.copy()
	for i, r := range records {
		address, err := utils.ParseAddress(r.Address)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		if address == (common.Address{}) {
			return nil, fmt.Errorf("row %d: zero address is not a valid %s", i+1, r.Role)
		}

		c, ok := next.chains[r.ChainId]
		if !ok {
			c = &ChainAddresses{ChainId: r.ChainId, Labels: make(map[common.Address]string)}
			next.chains[r.ChainId] = c
		}

		switch strings.ToLower(strings.TrimSpace(r.Role)) {
		case Role_LendingPool:
			c.LendingPool = address
		case Role_ReceiptToken:
			c.addReceiptToken(address)
		case Role_FeeRouter:
			c.FeeRouter = address
		default:
			return nil, fmt.Errorf("row %d: unknown role '%s'", i+1, r.Role)
		}
		if r.Label != "" {
			c.Labels[address] = r.Label
		}
	}

	for _, c := range next.chains {
		if err := c.validate(); err != nil {
			return nil, err
		}
	}
	return next, nil
}
