package journal

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/LeskaProgrammer/KPO/internal/domain/operation"
)

// ChangeKind names a committed ledger mutation
type ChangeKind string

const (
	ChangeOperationRecorded   ChangeKind = "OPERATION_RECORDED"
	ChangeOperationUpdated    ChangeKind = "OPERATION_UPDATED"
	ChangeOperationDeleted    ChangeKind = "OPERATION_DELETED"
	ChangeBalanceRecalculated ChangeKind = "BALANCE_RECALCULATED"
	ChangeAccountCreated      ChangeKind = "ACCOUNT_CREATED"
	ChangeAccountRenamed      ChangeKind = "ACCOUNT_RENAMED"
	ChangeAccountDeleted      ChangeKind = "ACCOUNT_DELETED"
	ChangeCategoryCreated     ChangeKind = "CATEGORY_CREATED"
	ChangeCategoryUpdated     ChangeKind = "CATEGORY_UPDATED"
	ChangeCategoryDeleted     ChangeKind = "CATEGORY_DELETED"
)

// Change is one entity-level effect of a ledger call
type Change struct {
	Kind        ChangeKind           `json:"kind"`
	AccountID   string               `json:"account_id,omitempty"`
	CategoryID  string               `json:"category_id,omitempty"`
	OperationID string               `json:"operation_id,omitempty"`
	Operation   *operation.Operation `json:"operation,omitempty"`
	Balance     *decimal.Decimal     `json:"balance,omitempty"`
	At          time.Time            `json:"at"`
}

// ChangeSet groups the changes of a single coordinator call; everything in
// one set was persisted together.
type ChangeSet struct {
	ID            string    `json:"id"`
	CorrelationID string    `json:"correlation_id,omitempty"`
	Changes       []Change  `json:"changes"`
	CommittedAt   time.Time `json:"committed_at"`
}

// Empty reports whether the set carries no changes
func (cs ChangeSet) Empty() bool {
	return len(cs.Changes) == 0
}

// PartitionKey keeps the changes of one account ordered on a partitioned log
func (cs ChangeSet) PartitionKey() string {
	for _, c := range cs.Changes {
		if c.AccountID != "" {
			return c.AccountID
		}
	}
	for _, c := range cs.Changes {
		if c.CategoryID != "" {
			return c.CategoryID
		}
	}
	return cs.ID
}

func (cs ChangeSet) Payload() ([]byte, error) {
	return json.Marshal(cs)
}

// DecodeChangeSet parses a payload produced by Payload
func DecodeChangeSet(payload []byte) (ChangeSet, error) {
	var cs ChangeSet
	err := json.Unmarshal(payload, &cs)
	return cs, err
}
