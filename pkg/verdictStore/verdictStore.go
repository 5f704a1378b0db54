// Package verdictStore keeps an audit log of every verdict the gatekeeper reaches.
package verdictStore

import (
	"fmt"
	"strings"
	"time"

	"github.com/Layr-Labs/txguard/pkg/gatekeeper"
	"github.com/Layr-Labs/txguard/pkg/postgres/helpers"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrVerdictNotFound = errors.New("verdict not found")

const (
	DefaultListLimit = 50
	MaxListLimit     = 500
)

type Verdict struct {
	Id             string `gorm:"primaryKey"`
	Approved       bool
	Stage          string
	Reason         string
	ChainId        uint64
	Sender         string
	CallTo         string
	CallData       string
	CallValue      string
	Classification string
	FunctionName   string
	CreatedAt      time.Time
}

func (Verdict) TableName() string {
	return "verdicts"
}

// NewVerdictRecord flattens a gatekeeper verdict. Addresses are stored lowercased.
func NewVerdictRecord(v *gatekeeper.Verdict) *Verdict {
	record := &Verdict{
		Id:             v.Id.String(),
		Approved:       v.Approved,
		Stage:          string(v.Stage),
		Reason:         v.Reason,
		ChainId:        v.ChainId,
		Sender:         normalizeAddress(v.Sender),
		CallValue:      "0",
		Classification: v.Classification(),
		FunctionName:   v.FunctionName(),
		CreatedAt:      v.CreatedAt,
	}
	if v.Call != nil {
		record.CallTo = normalizeAddress(v.Call.To)
		record.CallData = hexutil.Encode(v.Call.Data)
		if v.Call.Value != nil {
			record.CallValue = v.Call.Value.String()
		}
	}
	return record
}

type VerdictStore struct {
	Db     *gorm.DB
	Logger *zap.Logger
}

func NewVerdictStore(db *gorm.DB, l *zap.Logger) *VerdictStore {
	return &VerdictStore{
		Db:     db,
		Logger: l,
	}
}

func (s *VerdictStore) InsertVerdict(v *gatekeeper.Verdict) (*Verdict, error) {
	if v == nil {
		return nil, errors.New("verdict is nil")
	}
	record := NewVerdictRecord(v)

	return helpers.WrapTxAndCommit[*Verdict](func(tx *gorm.DB) (*Verdict, error) {
		res := tx.Model(&Verdict{}).Create(record)
		if res.Error != nil {
			return nil, errors.Wrapf(res.Error, "failed to insert verdict '%s'", record.Id)
		}
		return record, nil
	}, s.Db, nil)
}

func (s *VerdictStore) GetVerdictById(id string) (*Verdict, error) {
	var record Verdict
	res := s.Db.Model(&Verdict{}).Where("id = ?", strings.ToLower(id)).Limit(1).Find(&record)
	if res.Error != nil {
		return nil, errors.Wrapf(res.Error, "failed to find verdict '%s'", id)
	}
	if res.RowsAffected == 0 {
		return nil, ErrVerdictNotFound
	}
	return &record, nil
}

// ListVerdictsForSender returns the newest verdicts first. A non-positive limit uses DefaultListLimit.
func (s *VerdictStore) ListVerdictsForSender(sender common.Address, chainId uint64, limit int) ([]*Verdict, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		return nil, fmt.Errorf("limit %d exceeds the maximum of %d", limit, MaxListLimit)
	}

	records := make([]*Verdict, 0)
	res := s.Db.Model(&Verdict{}).
		Where("sender = ? and chain_id = ?", normalizeAddress(sender), chainId).
		Order("created_at desc").
		Limit(limit).
		Find(&records)
	if res.Error != nil {
		return nil, errors.Wrap(res.Error, "failed to list verdicts")
	}
	return records, nil
}

func normalizeAddress(a common.Address) string {
	return strings.ToLower(a.Hex())
}
