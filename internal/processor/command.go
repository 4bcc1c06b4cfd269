package processor

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/LeskaProgrammer/KPO/internal/domain/shared"
	"github.com/LeskaProgrammer/KPO/internal/ledger"
)

type CommandType string

const (
	CommandRecord      CommandType = "RECORD"
	CommandUpdate      CommandType = "UPDATE"
	CommandDelete      CommandType = "DELETE"
	CommandRecalculate CommandType = "RECALCULATE"
)

// envelope is the wire form of a command message
type envelope struct {
	CommandID     string          `json:"command_id"`
	Type          CommandType     `json:"type"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

type recordPayload struct {
	AccountID   string          `json:"account_id"`
	CategoryID  string          `json:"category_id"`
	Type        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Date        time.Time       `json:"date"`
	Description string          `json:"description,omitempty"`
}

type updatePayload struct {
	OperationID string           `json:"operation_id"`
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	Date        *time.Time       `json:"date,omitempty"`
	Description *string          `json:"description,omitempty"`
	CategoryID  *string          `json:"category_id,omitempty"`
	Type        *string          `json:"type,omitempty"`
}

type operationRef struct {
	OperationID string `json:"operation_id"`
}

type accountRef struct {
	AccountID string `json:"account_id"`
}

// Command is a decoded ledger command. Only the fields of its Type are set.
type Command struct {
	ID            string
	Type          CommandType
	CorrelationID string

	Record      ledger.RecordRequest
	OperationID string
	Patch       ledger.OperationPatch
	AccountID   string
}

var errMissingCommandID = errors.New("command_id is required")

// DecodeCommand parses a command message. Any error means the message can
// never be processed and belongs in the DLQ.
func DecodeCommand(value []byte) (Command, error) {
	var env envelope
	if err := json.Unmarshal(value, &env); err != nil {
		return Command{}, fmt.Errorf("invalid command envelope: %w", err)
	}
	if env.CommandID == "" {
		return Command{}, errMissingCommandID
	}

	cmd := Command{ID: env.CommandID, Type: env.Type, CorrelationID: env.CorrelationID}
	if cmd.CorrelationID == "" {
		cmd.CorrelationID = env.CommandID
	}

	switch env.Type {
	case CommandRecord:
		var p recordPayload
		if err := decodePayload(env.Payload, &p); err != nil {
			return Command{}, err
		}
		typ, err := shared.ParseOperationType(p.Type)
		if err != nil {
			return Command{}, err
		}
		cmd.Record = ledger.RecordRequest{
			AccountID:   p.AccountID,
			CategoryID:  p.CategoryID,
			Type:        typ,
			Amount:      p.Amount,
			Date:        p.Date,
			Description: p.Description,
		}
	case CommandUpdate:
		var p updatePayload
		if err := decodePayload(env.Payload, &p); err != nil {
			return Command{}, err
		}
		cmd.OperationID = p.OperationID
		cmd.Patch = ledger.OperationPatch{
			Amount:      p.Amount,
			Date:        p.Date,
			Description: p.Description,
			CategoryID:  p.CategoryID,
		}
		if p.Type != nil {
			typ, err := shared.ParseOperationType(*p.Type)
			if err != nil {
				return Command{}, err
			}
			cmd.Patch.Type = &typ
		}
	case CommandDelete:
		var p operationRef
		if err := decodePayload(env.Payload, &p); err != nil {
			return Command{}, err
		}
		cmd.OperationID = p.OperationID
	case CommandRecalculate:
		var p accountRef
		if err := decodePayload(env.Payload, &p); err != nil {
			return Command{}, err
		}
		cmd.AccountID = p.AccountID
	default:
		return Command{}, fmt.Errorf("unknown command type %q", env.Type)
	}
	return cmd, nil
}

func decodePayload(raw json.RawMessage, dst any) error {
	if len(raw) == 0 {
		return errors.New("payload is required")
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("invalid payload: %w", err)
	}
	return nil
}
